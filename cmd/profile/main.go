// Package main provides a profiling wrapper that disassembles a program
// repeatedly to find rendering bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/rvdis/config"
	"github.com/sarchlab/rvdis/disasm"
	"github.com/sarchlab/rvdis/loader"
	"github.com/sarchlab/rvdis/textcache"
)

var (
	configPath = flag.String("config", "", "path to a YAML or JSON config file")
	cached     = flag.Bool("cache", false, "render through the line cache")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	passes     = flag.Int("passes", 100, "number of passes over the code")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)

	var words []uint32
	for _, seg := range prog.ExecutableSegments() {
		words = append(words, seg.Words()...)
	}

	d := cfg.NewDisassembler()
	var cache *textcache.Cache
	if *cached {
		cache = textcache.New(textcache.Config{
			NumSets: cfg.Cache.NumSets,
			NumWays: cfg.Cache.NumWays,
		}, d)
	}

	start := time.Now()
	lines, unknown := run(d, cache, words, *passes, start.Add(*duration))
	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Words per pass: %d\n", len(words))
	fmt.Printf("Lines rendered: %d\n", lines)
	fmt.Printf("Unknown lines: %d\n", unknown)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if lines > 0 {
		fmt.Printf("Lines/second: %.0f\n", float64(lines)/elapsed.Seconds())
	}
	if cache != nil {
		stats := cache.Stats()
		fmt.Printf("Cache hit rate: %.2f%% (%d evictions)\n", 100*stats.HitRate(), stats.Evictions)
	}
}

// run renders words for the given number of passes or until deadline.
func run(d *disasm.Disassembler, cache *textcache.Cache, words []uint32,
	passes int, deadline time.Time) (lines, unknown uint64) {
	for p := 0; p < passes; p++ {
		if time.Now().After(deadline) {
			fmt.Printf("\nTimeout reached after %d passes - stopping\n", p)
			break
		}

		for _, w := range words {
			var text string
			if cache != nil {
				text = cache.Lookup(w)
			} else {
				text = d.Disassemble(w)
			}
			if text == disasm.UnknownMarker {
				unknown++
			}
			lines++
		}
	}
	return lines, unknown
}
