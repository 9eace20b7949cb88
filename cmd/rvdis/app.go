package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"iter"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/labstack/gommon/log"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sarchlab/rvdis/config"
	"github.com/sarchlab/rvdis/disasm"
)

const appName = "rvdis"

// app holds the global flags shared by every subcommand.
type app struct {
	out    io.Writer
	errOut io.Writer
	logger *log.Logger

	rootFlags  *flag.FlagSet
	configPath string
	isa        string
	regs       string
	fp         bool
	pseudo     bool
	offsetBase bool
	color      bool
	verbose    bool
	debug      bool
}

func newApp(out, errOut io.Writer) *app {
	a := &app{
		out:    out,
		errOut: errOut,
		logger: log.New(appName),
	}
	a.logger.SetOutput(errOut)
	a.logger.SetHeader("${level} ${short_file}:${line}")
	a.logger.SetLevel(log.WARN)

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&a.configPath, "config", "", "path to a YAML or JSON config file")
	fs.StringVar(&a.isa, "isa", "", "instruction set, rv32i or rv32im")
	fs.StringVar(&a.regs, "regs", "", "register names, abi or numeric")
	fs.BoolVar(&a.fp, "fp", false, "render x8 as fp")
	fs.BoolVar(&a.pseudo, "pseudo", false, "collapse pseudo-instructions")
	fs.BoolVar(&a.offsetBase, "offset-base", false, "render loads and jalr as rd, imm(rs1)")
	fs.BoolVar(&a.color, "color", false, "highlight mnemonics")
	fs.BoolVar(&a.verbose, "v", false, "verbose output")
	fs.BoolVar(&a.debug, "debug", false, "dump decoded instructions and SQL queries")
	a.rootFlags = fs

	return a
}

func (a *app) rootCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       appName,
		ShortUsage: appName + " [flags] <subcommand> [args...]",
		ShortHelp:  "Disassemble RV32I machine code.",
		FlagSet:    a.rootFlags,
		Options:    []ff.Option{ff.WithEnvVarPrefix("RVDIS")},
		Subcommands: []*ffcli.Command{
			a.wordCommand(),
			a.binCommand(),
			a.hexCommand(),
			a.elfCommand(),
			a.exportCommand(),
			a.serveCommand(),
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}
}

// resolveConfig merges the config file with explicitly set flags.
func (a *app) resolveConfig() (*config.Config, error) {
	if a.verbose {
		a.logger.SetLevel(log.DEBUG)
	}

	cfg := config.DefaultConfig()
	if a.configPath != "" {
		loaded, err := config.LoadConfig(a.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		a.logger.Debugf("loaded config %s", a.configPath)
	}

	a.rootFlags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "isa":
			cfg.ISA = a.isa
		case "regs":
			cfg.Registers = a.regs
		case "fp":
			cfg.FramePointer = a.fp
		case "pseudo":
			cfg.Pseudo = a.pseudo
		case "offset-base":
			cfg.OffsetBase = a.offsetBase
		case "color":
			cfg.Color = a.color
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// printer writes listing lines, optionally colored.
type printer struct {
	w        io.Writer
	mnemonic *color.Color
	address  *color.Color
	unknown  *color.Color
}

func newPrinter(w io.Writer, colorize bool) *printer {
	p := &printer{
		w:        w,
		mnemonic: color.New(color.FgCyan, color.Bold),
		address:  color.New(color.FgYellow),
		unknown:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.mnemonic, p.address, p.unknown} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) text(l disasm.Line) string {
	if !l.Known() {
		return p.unknown.Sprint(l.Text)
	}
	return p.mnemonic.Sprint(l.Mnemonic) + l.Text[len(l.Mnemonic):]
}

// listing prints "address:  word  text" lines and returns how many were
// written.
func (p *printer) listing(lines iter.Seq[disasm.Line]) (int, error) {
	n := 0
	for l := range lines {
		_, err := fmt.Fprintf(p.w, "%s  %08x  %s\n",
			p.address.Sprintf("%08x:", l.Address), l.Word, p.text(l))
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (a *app) dump(v any) {
	if a.debug {
		spew.Fdump(a.errOut, v)
	}
}
