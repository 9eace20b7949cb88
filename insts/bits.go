package insts

import (
	"encoding/binary"
	"fmt"
)

// Bits returns bits [hi:lo] of word, right-aligned.
//
// The range is inclusive and 0-indexed from the least significant bit.
// A range with hi < lo or hi > 31 is a programming error and panics.
func Bits(word uint32, hi, lo uint) uint32 {
	if hi < lo || hi > 31 {
		panic(fmt.Sprintf("insts: invalid bit range [%d:%d]", hi, lo))
	}

	width := hi - lo + 1
	if width == 32 {
		return word
	}

	return (word >> lo) & (1<<width - 1)
}

// Bit returns bit n of word as 0 or 1.
func Bit(word uint32, n uint) uint32 {
	return Bits(word, n, n)
}

// SignExtend treats the low width bits of value as a two's-complement
// number and widens it to int32.
func SignExtend(value uint32, width uint) int32 {
	if width == 0 || width > 32 {
		panic(fmt.Sprintf("insts: invalid sign extension width %d", width))
	}

	shift := 32 - width
	return int32(value<<shift) >> shift
}

// Field accessors for the fixed RV32 instruction fields.

// Opcode returns bits [6:0].
func Opcode(word uint32) uint32 { return Bits(word, 6, 0) }

// Rd returns bits [11:7].
func Rd(word uint32) Reg { return Reg(Bits(word, 11, 7)) }

// Funct3 returns bits [14:12].
func Funct3(word uint32) uint32 { return Bits(word, 14, 12) }

// Rs1 returns bits [19:15].
func Rs1(word uint32) Reg { return Reg(Bits(word, 19, 15)) }

// Rs2 returns bits [24:20].
func Rs2(word uint32) Reg { return Reg(Bits(word, 24, 20)) }

// Funct7 returns bits [31:25].
func Funct7(word uint32) uint32 { return Bits(word, 31, 25) }

// Shamt returns the RV32 shift amount, bits [24:20].
func Shamt(word uint32) uint32 { return Bits(word, 24, 20) }

// WordsFromBytes splits a little-endian byte image into instruction words.
// A trailing partial word is ignored.
func WordsFromBytes(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}
