// Package main provides the entry point for rvdis.
// rvdis is an RV32I disassembler.
//
// For the full CLI, use: go run ./cmd/rvdis
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/rvdis/disasm"
	"github.com/sarchlab/rvdis/loader"
)

func main() {
	if len(os.Args) > 1 {
		for _, arg := range os.Args[1:] {
			word, err := loader.ParseWord(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(disasm.Disassemble(word))
		}
		return
	}

	fmt.Println("rvdis - RV32I disassembler")
	fmt.Println("")
	fmt.Println("Usage: rvdis <hex word>...")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvdis' for the full CLI:")
	fmt.Println("  word       Disassemble words given on the command line")
	fmt.Println("  bin        Disassemble a raw binary image")
	fmt.Println("  hex        Disassemble a hex word file")
	fmt.Println("  elf        Disassemble an RV32 ELF executable")
	fmt.Println("  export     Save a listing to SQLite")
	fmt.Println("  serve      Serve the disassembler over HTTP")
}
