package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sarchlab/rvdis/config"
	"github.com/sarchlab/rvdis/disasm"
	"github.com/sarchlab/rvdis/listing"
	"github.com/sarchlab/rvdis/loader"
	"github.com/sarchlab/rvdis/server"
)

// source is a run of contiguous instruction words.
type source struct {
	name  string
	base  uint64
	words []uint32
}

func (a *app) loadSources(kind, path string, base uint64) ([]source, error) {
	switch kind {
	case "elf":
		prog, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		a.logger.Debugf("loaded %s: entry 0x%x, %d segments", path, prog.EntryPoint, len(prog.Segments))

		var sources []source
		for _, seg := range prog.ExecutableSegments() {
			sources = append(sources, source{
				name:  fmt.Sprintf("segment 0x%08x", seg.VirtAddr),
				base:  seg.VirtAddr,
				words: seg.Words(),
			})
		}
		if len(sources) == 0 {
			return nil, fmt.Errorf("%s has no executable segments", path)
		}
		return sources, nil

	case "bin":
		prog, err := loader.LoadBinary(path, base)
		if err != nil {
			return nil, err
		}
		seg := prog.Segments[0]
		return []source{{name: filepath.Base(path), base: seg.VirtAddr, words: seg.Words()}}, nil

	case "hex":
		words, err := loader.LoadHex(path)
		if err != nil {
			return nil, err
		}
		return []source{{name: filepath.Base(path), base: base, words: words}}, nil

	default:
		return nil, fmt.Errorf("unknown input kind %q: want elf, bin or hex", kind)
	}
}

func (a *app) printSources(cfg *config.Config, sources []source) error {
	d := cfg.NewDisassembler()
	p := newPrinter(a.out, cfg.Color)

	for i, src := range sources {
		if len(sources) > 1 {
			if i > 0 {
				fmt.Fprintln(a.out)
			}
			fmt.Fprintf(a.out, "%s (%d words):\n", src.name, len(src.words))
		}

		n, err := p.listing(d.Lines(src.base, src.words))
		if err != nil {
			return fmt.Errorf("failed to write listing: %w", err)
		}
		a.logger.Debugf("%s: %d lines", src.name, n)
	}
	return nil
}

func (a *app) fileCommand(kind, shortHelp string, withBase bool) *ffcli.Command {
	fs := flag.NewFlagSet(kind, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	var base uint64
	if withBase {
		fs.Uint64Var(&base, "base", 0, "address of the first word")
	}

	usage := kind + " <file>"
	if withBase {
		usage = kind + " [-base addr] <file>"
	}

	return &ffcli.Command{
		Name:       kind,
		ShortUsage: appName + " " + usage,
		ShortHelp:  shortHelp,
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}
			cfg, err := a.resolveConfig()
			if err != nil {
				return err
			}
			sources, err := a.loadSources(kind, args[0], base)
			if err != nil {
				return err
			}
			return a.printSources(cfg, sources)
		},
	}
}

func (a *app) binCommand() *ffcli.Command {
	return a.fileCommand("bin", "Disassemble a raw little-endian binary image.", true)
}

func (a *app) hexCommand() *ffcli.Command {
	return a.fileCommand("hex", "Disassemble hex instruction words from a text file.", true)
}

func (a *app) elfCommand() *ffcli.Command {
	return a.fileCommand("elf", "Disassemble the executable segments of an RV32 ELF file.", false)
}

func (a *app) wordCommand() *ffcli.Command {
	fs := flag.NewFlagSet("word", flag.ContinueOnError)
	fs.SetOutput(a.errOut)

	return &ffcli.Command{
		Name:       "word",
		ShortUsage: appName + " word <hex>...",
		ShortHelp:  "Disassemble instruction words given on the command line.",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return flag.ErrHelp
			}
			cfg, err := a.resolveConfig()
			if err != nil {
				return err
			}

			words := make([]uint32, len(args))
			for i, arg := range args {
				if words[i], err = loader.ParseWord(arg); err != nil {
					return err
				}
			}

			d := cfg.NewDisassembler()
			p := newPrinter(a.out, cfg.Color)
			for l := range d.Lines(0, words) {
				a.dump(d.Decoder().Decode(l.Word))
				fmt.Fprintln(a.out, p.text(l))
			}
			return nil
		},
	}
}

func (a *app) exportCommand() *ffcli.Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	var (
		dbPath string
		name   string
		base   uint64
	)
	fs.StringVar(&dbPath, "db", "rvdis.db", "SQLite database file")
	fs.StringVar(&name, "name", "", "listing name (default: file name)")
	fs.Uint64Var(&base, "base", 0, "address of the first word for bin and hex input")

	return &ffcli.Command{
		Name:       "export",
		ShortUsage: appName + " export [-db path] [-name n] [-base addr] <elf|bin|hex> <file>",
		ShortHelp:  "Save a listing to a SQLite database.",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return flag.ErrHelp
			}
			kind, path := args[0], args[1]
			if name == "" {
				name = filepath.Base(path)
			}

			cfg, err := a.resolveConfig()
			if err != nil {
				return err
			}
			sources, err := a.loadSources(kind, path, base)
			if err != nil {
				return err
			}

			d := cfg.NewDisassembler()
			var lines []disasm.Line
			for _, src := range sources {
				lines = slices.AppendSeq(lines, d.Lines(src.base, src.words))
			}

			id, err := a.export(ctx, dbPath, name, d.ISA().String(), lines)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved listing %s (%d lines) to %s\n", id, len(lines), dbPath)
			return nil
		},
	}
}

func (a *app) export(ctx context.Context, dbPath, name, isa string, lines []disasm.Line) (string, error) {
	store, err := listing.Open(dbPath, a.debug)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	if err := store.Init(ctx); err != nil {
		return "", err
	}

	id, err := store.Save(ctx, name, isa, lines)
	if err != nil {
		return "", err
	}

	if a.verbose {
		hist, err := store.Histogram(ctx, id)
		if err != nil {
			return "", err
		}
		var parts []string
		for pair := hist.Oldest(); pair != nil; pair = pair.Next() {
			parts = append(parts, fmt.Sprintf("%s=%d", pair.Key, pair.Value))
		}
		a.logger.Debugf("mnemonics: %s", strings.Join(parts, " "))
	}

	return id, nil
}

func (a *app) serveCommand() *ffcli.Command {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	var addr string
	fs.StringVar(&addr, "addr", "", "listen address (default from config)")

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: appName + " serve [-addr host:port]",
		ShortHelp:  "Serve the disassembler over HTTP.",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			cfg, err := a.resolveConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			s := server.New(cfg, a.verbose)

			errc := make(chan error, 1)
			go func() { errc <- s.Start(cfg.Server.Addr) }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("failed to shut down: %w", err)
				}
				return nil
			}
		},
	}
}
