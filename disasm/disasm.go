// Package disasm renders RV32 instruction words as assembly text.
//
// A Disassembler is immutable once built and holds no per-call state, so a
// single instance may be shared across goroutines. Every 32-bit word has a
// rendering: words with unassigned encodings render as UnknownMarker.
//
// Usage:
//
//	fmt.Println(disasm.Disassemble(0x07B00513)) // addi a0, zero, 123
//
//	d := disasm.New(disasm.WithPseudo(true))
//	for line := range d.Lines(0x1000, words) {
//		fmt.Printf("%08x: %s\n", line.Address, line.Text)
//	}
package disasm

import (
	"iter"
	"strings"

	"github.com/sarchlab/rvdis/insts"
)

// UnknownMarker is the rendering of every unassigned encoding.
const UnknownMarker = "unknown"

// Line is one rendered instruction of a listing.
type Line struct {
	Address  uint64
	Word     uint32
	Mnemonic string
	Text     string
}

// Known reports whether the line holds an assigned encoding.
func (l Line) Known() bool {
	return l.Mnemonic != UnknownMarker
}

// Disassembler converts instruction words to text.
type Disassembler struct {
	decoder    *insts.Decoder
	isa        insts.ISA
	style      insts.RegisterStyle
	fp         bool
	pseudo     bool
	offsetBase bool
}

// Option configures a Disassembler.
type Option func(*Disassembler)

// WithISA selects the recognized extensions. The default is rv32im.
func WithISA(isa insts.ISA) Option {
	return func(d *Disassembler) {
		d.isa = isa
	}
}

// WithRegisterStyle selects ABI (a0) or numeric (x10) register names.
func WithRegisterStyle(style insts.RegisterStyle) Option {
	return func(d *Disassembler) {
		d.style = style
	}
}

// WithFramePointer renders x8 as fp instead of s0.
func WithFramePointer(enabled bool) Option {
	return func(d *Disassembler) {
		d.fp = enabled
	}
}

// WithPseudo collapses the canonical encodings of common pseudo-instructions
// (nop, li, mv, not, neg, seqz, snez, beqz, bnez, j, jr, ret).
func WithPseudo(enabled bool) Option {
	return func(d *Disassembler) {
		d.pseudo = enabled
	}
}

// WithOffsetBaseLoads renders loads and jalr as "rd, imm(rs1)" instead of
// "rd, rs1, imm".
func WithOffsetBaseLoads(enabled bool) Option {
	return func(d *Disassembler) {
		d.offsetBase = enabled
	}
}

// New creates a Disassembler. Without options it renders ABI register names,
// the base operand order, and no pseudo-instructions.
func New(opts ...Option) *Disassembler {
	d := &Disassembler{
		isa:   insts.ISADefault,
		style: insts.RegisterStyleABI,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.decoder = insts.NewDecoder(insts.WithISA(d.isa))
	return d
}

// Decoder returns the structured decoder backing the disassembler.
func (d *Disassembler) Decoder() *insts.Decoder {
	return d.decoder
}

// ISA returns the recognized extensions.
func (d *Disassembler) ISA() insts.ISA {
	return d.isa
}

// Disassemble renders a single instruction word.
func (d *Disassembler) Disassemble(word uint32) string {
	var inst insts.Instruction
	d.decoder.DecodeInto(word, &inst)
	mnemonic, operands := d.Render(&inst)
	return join(mnemonic, operands)
}

// Line renders word as the listing line at addr.
func (d *Disassembler) Line(addr uint64, word uint32) Line {
	var inst insts.Instruction
	d.decoder.DecodeInto(word, &inst)
	mnemonic, operands := d.Render(&inst)
	return Line{
		Address:  addr,
		Word:     word,
		Mnemonic: mnemonic,
		Text:     join(mnemonic, operands),
	}
}

// Range lazily renders words in order, one line per word. The sequence may
// be iterated any number of times.
func (d *Disassembler) Range(words []uint32) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, word := range words {
			if !yield(d.Disassemble(word)) {
				return
			}
		}
	}
}

// Stream renders the words produced by src in order. It is restartable
// whenever src is.
func (d *Disassembler) Stream(src iter.Seq[uint32]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for word := range src {
			if !yield(d.Disassemble(word)) {
				return
			}
		}
	}
}

// Lines lazily renders words as a listing whose first word sits at base.
func (d *Disassembler) Lines(base uint64, words []uint32) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for i, word := range words {
			if !yield(d.Line(base+uint64(i)*4, word)) {
				return
			}
		}
	}
}

func join(mnemonic string, operands []string) string {
	if len(operands) == 0 {
		return mnemonic
	}
	return mnemonic + " " + strings.Join(operands, ", ")
}

var defaultDisassembler = New()

// Disassemble renders word with the default options.
func Disassemble(word uint32) string {
	return defaultDisassembler.Disassemble(word)
}

// Range renders words with the default options.
func Range(words []uint32) iter.Seq[string] {
	return defaultDisassembler.Range(words)
}
