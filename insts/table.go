package insts

import (
	"fmt"
	"strings"
)

// Op represents an RV32 mnemonic.
type Op uint16

// RV32I and M-extension opcodes.
const (
	OpUnknown Op = iota
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpFENCETSO
	OpPAUSE
	OpECALL
	OpEBREAK
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	numOps
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // rd, rs1, rs2, funct3, funct7
	FormatI              // rd, rs1, funct3, imm[11:0]
	FormatS              // rs1, rs2, funct3, imm[11:5|4:0]
	FormatB              // rs1, rs2, funct3, imm[12|10:5|4:1|11]
	FormatU              // rd, imm[31:12]
	FormatJ              // rd, imm[20|10:1|11|19:12]
)

// Layout describes which operands an instruction renders and in what order.
type Layout uint8

// Operand layouts.
const (
	LayoutNone    Layout = iota
	LayoutRegReg         // rd, rs1, rs2
	LayoutRegImm         // rd, rs1, imm
	LayoutShift          // rd, rs1, shamt
	LayoutLoad           // rd, rs1, imm
	LayoutJumpReg        // rd, rs1, imm
	LayoutStore          // rs2, imm(rs1)
	LayoutBranch         // rs1, rs2, imm
	LayoutUpper          // rd, imm[31:12]
	LayoutJump           // rd, imm
	LayoutFence          // pred, succ
	LayoutBare           // no operands
)

// Major opcodes (bits [6:0]).
const (
	OpcodeLoad    uint32 = 0x03
	OpcodeMiscMem uint32 = 0x0F
	OpcodeOpImm   uint32 = 0x13
	OpcodeAUIPC   uint32 = 0x17
	OpcodeStore   uint32 = 0x23
	OpcodeOp      uint32 = 0x33
	OpcodeLUI     uint32 = 0x37
	OpcodeBranch  uint32 = 0x63
	OpcodeJALR    uint32 = 0x67
	OpcodeJAL     uint32 = 0x6F
	OpcodeSystem  uint32 = 0x73
)

// funct7 values that select between sibling mnemonics.
const (
	Funct7Base   uint32 = 0x00
	Funct7Alt    uint32 = 0x20 // SUB, SRA, SRAI
	Funct7MulDiv uint32 = 0x01 // M extension
)

// Exact encodings recognized in the SYSTEM and MISC-MEM groups.
const (
	WordECALL  uint32 = 0x00000073
	WordEBREAK uint32 = 0x00100073
	WordPAUSE  uint32 = 0x0100000F
)

// ISA is a set of enabled instruction-set extensions on top of RV32I.
type ISA uint8

// Extensions.
const (
	ExtM ISA = 1 << iota
)

// Common ISA selections.
const (
	ISABase    ISA = 0
	ISADefault ISA = ExtM
)

// Has reports whether every extension in ext is enabled.
func (isa ISA) Has(ext ISA) bool {
	return isa&ext == ext
}

// String renders the ISA as a RISC-V ISA string such as "rv32im".
func (isa ISA) String() string {
	s := "rv32i"
	if isa.Has(ExtM) {
		s += "m"
	}
	return s
}

// ParseISA parses an ISA string such as "rv32i" or "rv32im".
func ParseISA(s string) (ISA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ISADefault, nil
	}
	if !strings.HasPrefix(s, "rv32i") {
		return ISABase, fmt.Errorf("unsupported ISA %q: must start with rv32i", s)
	}

	var isa ISA
	for _, c := range s[len("rv32i"):] {
		switch c {
		case 'm':
			isa |= ExtM
		default:
			return ISABase, fmt.Errorf("unsupported ISA extension %q in %q", c, s)
		}
	}
	return isa, nil
}

// Entry is the result of a FormatTable lookup.
type Entry struct {
	Op     Op
	Format Format
	Layout Layout
}

type opInfo struct {
	name   string
	layout Layout
}

var ops = [numOps]opInfo{
	OpUnknown:  {"unknown", LayoutNone},
	OpLUI:      {"lui", LayoutUpper},
	OpAUIPC:    {"auipc", LayoutUpper},
	OpJAL:      {"jal", LayoutJump},
	OpJALR:     {"jalr", LayoutJumpReg},
	OpBEQ:      {"beq", LayoutBranch},
	OpBNE:      {"bne", LayoutBranch},
	OpBLT:      {"blt", LayoutBranch},
	OpBGE:      {"bge", LayoutBranch},
	OpBLTU:     {"bltu", LayoutBranch},
	OpBGEU:     {"bgeu", LayoutBranch},
	OpLB:       {"lb", LayoutLoad},
	OpLH:       {"lh", LayoutLoad},
	OpLW:       {"lw", LayoutLoad},
	OpLBU:      {"lbu", LayoutLoad},
	OpLHU:      {"lhu", LayoutLoad},
	OpSB:       {"sb", LayoutStore},
	OpSH:       {"sh", LayoutStore},
	OpSW:       {"sw", LayoutStore},
	OpADDI:     {"addi", LayoutRegImm},
	OpSLTI:     {"slti", LayoutRegImm},
	OpSLTIU:    {"sltiu", LayoutRegImm},
	OpXORI:     {"xori", LayoutRegImm},
	OpORI:      {"ori", LayoutRegImm},
	OpANDI:     {"andi", LayoutRegImm},
	OpSLLI:     {"slli", LayoutShift},
	OpSRLI:     {"srli", LayoutShift},
	OpSRAI:     {"srai", LayoutShift},
	OpADD:      {"add", LayoutRegReg},
	OpSUB:      {"sub", LayoutRegReg},
	OpSLL:      {"sll", LayoutRegReg},
	OpSLT:      {"slt", LayoutRegReg},
	OpSLTU:     {"sltu", LayoutRegReg},
	OpXOR:      {"xor", LayoutRegReg},
	OpSRL:      {"srl", LayoutRegReg},
	OpSRA:      {"sra", LayoutRegReg},
	OpOR:       {"or", LayoutRegReg},
	OpAND:      {"and", LayoutRegReg},
	OpFENCE:    {"fence", LayoutFence},
	OpFENCETSO: {"fence.tso", LayoutBare},
	OpPAUSE:    {"pause", LayoutBare},
	OpECALL:    {"ecall", LayoutBare},
	OpEBREAK:   {"ebreak", LayoutBare},
	OpMUL:      {"mul", LayoutRegReg},
	OpMULH:     {"mulh", LayoutRegReg},
	OpMULHSU:   {"mulhsu", LayoutRegReg},
	OpMULHU:    {"mulhu", LayoutRegReg},
	OpDIV:      {"div", LayoutRegReg},
	OpDIVU:     {"divu", LayoutRegReg},
	OpREM:      {"rem", LayoutRegReg},
	OpREMU:     {"remu", LayoutRegReg},
}

// String returns the assembler mnemonic.
func (op Op) String() string {
	if op >= numOps {
		return ops[OpUnknown].name
	}
	return ops[op].name
}

// Layout returns the operand layout of the mnemonic.
func (op Op) Layout() Layout {
	if op >= numOps {
		return LayoutNone
	}
	return ops[op].layout
}

// String returns the single-letter format name.
func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

// funct3Table names the mnemonic for each funct3 value; OpUnknown marks an
// unassigned slot.
type funct3Table [8]Op

// group is the coarse classification selected by the major opcode.
type group struct {
	format Format

	// op is set when the opcode alone names the instruction.
	op Op

	// byFunct3 is consulted when funct7 plays no role.
	byFunct3 funct3Table

	// byFunct7 is consulted for the funct3 slots listed in funct7Slots.
	byFunct7    map[uint32]funct3Table
	funct7Slots [8]bool

	// exact handles groups whose members are matched on more than funct3.
	exact func(word uint32) Op
}

var groups = map[uint32]*group{
	OpcodeLUI:   {format: FormatU, op: OpLUI},
	OpcodeAUIPC: {format: FormatU, op: OpAUIPC},
	OpcodeJAL:   {format: FormatJ, op: OpJAL},
	OpcodeJALR: {
		format:   FormatI,
		byFunct3: funct3Table{0: OpJALR},
	},
	OpcodeBranch: {
		format: FormatB,
		byFunct3: funct3Table{
			0: OpBEQ, 1: OpBNE, 4: OpBLT, 5: OpBGE, 6: OpBLTU, 7: OpBGEU,
		},
	},
	OpcodeLoad: {
		format: FormatI,
		byFunct3: funct3Table{
			0: OpLB, 1: OpLH, 2: OpLW, 4: OpLBU, 5: OpLHU,
		},
	},
	OpcodeStore: {
		format: FormatS,
		byFunct3: funct3Table{
			0: OpSB, 1: OpSH, 2: OpSW,
		},
	},
	OpcodeOpImm: {
		format: FormatI,
		byFunct3: funct3Table{
			0: OpADDI, 2: OpSLTI, 3: OpSLTIU, 4: OpXORI, 6: OpORI, 7: OpANDI,
		},
		funct7Slots: [8]bool{1: true, 5: true},
		byFunct7: map[uint32]funct3Table{
			Funct7Base: {1: OpSLLI, 5: OpSRLI},
			Funct7Alt:  {5: OpSRAI},
		},
	},
	OpcodeOp: {
		format:      FormatR,
		funct7Slots: [8]bool{true, true, true, true, true, true, true, true},
		byFunct7: map[uint32]funct3Table{
			Funct7Base: {OpADD, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpOR, OpAND},
			Funct7Alt:  {0: OpSUB, 5: OpSRA},
		},
	},
	OpcodeMiscMem: {format: FormatI, exact: decodeMiscMem},
	OpcodeSystem:  {format: FormatI, exact: decodeSystem},
}

// extensionFunct7 holds the funct7-keyed rows each extension adds to a
// major opcode.
var extensionFunct7 = map[ISA]map[uint32]map[uint32]funct3Table{
	ExtM: {
		OpcodeOp: {
			Funct7MulDiv: {OpMUL, OpMULH, OpMULHSU, OpMULHU, OpDIV, OpDIVU, OpREM, OpREMU},
		},
	},
}

// decodeMiscMem recognizes FENCE and its FENCE.TSO and PAUSE hints.
// Format: fm[31:28] | pred[27:24] | succ[23:20] | rs1 | 000 | rd | 0001111
func decodeMiscMem(word uint32) Op {
	if Funct3(word) != 0 {
		return OpUnknown
	}
	if word == WordPAUSE {
		return OpPAUSE
	}

	fm := Bits(word, 31, 28)
	pred := Bits(word, 27, 24)
	succ := Bits(word, 23, 20)

	switch fm {
	case 0b0000:
		return OpFENCE
	case 0b1000:
		if pred == 0b0011 && succ == 0b0011 {
			return OpFENCETSO
		}
	}
	return OpUnknown
}

// decodeSystem recognizes ECALL and EBREAK. Both are matched on the whole
// word; CSR instructions are not supported.
func decodeSystem(word uint32) Op {
	switch word {
	case WordECALL:
		return OpECALL
	case WordEBREAK:
		return OpEBREAK
	default:
		return OpUnknown
	}
}

// Lookup resolves the mnemonic and format of word under the given ISA.
// The second result is false when the opcode, or the opcode together with
// funct3 and funct7, is unassigned.
func Lookup(word uint32, isa ISA) (Entry, bool) {
	g, ok := groups[Opcode(word)]
	if !ok {
		return Entry{}, false
	}

	op := g.resolve(word, isa)
	if op == OpUnknown {
		return Entry{}, false
	}

	return Entry{Op: op, Format: g.format, Layout: op.Layout()}, true
}

func (g *group) resolve(word uint32, isa ISA) Op {
	switch {
	case g.op != OpUnknown:
		return g.op
	case g.exact != nil:
		return g.exact(word)
	}

	funct3 := Funct3(word)
	if !g.funct7Slots[funct3] {
		return g.byFunct3[funct3]
	}

	funct7 := Funct7(word)
	if row, ok := g.byFunct7[funct7]; ok {
		return row[funct3]
	}

	for ext, opcodes := range extensionFunct7 {
		if !isa.Has(ext) {
			continue
		}
		if row, ok := opcodes[Opcode(word)][funct7]; ok {
			return row[funct3]
		}
	}

	return OpUnknown
}

// Ops returns every assigned mnemonic in declaration order.
func Ops() []Op {
	out := make([]Op, 0, numOps-1)
	for op := OpUnknown + 1; op < numOps; op++ {
		out = append(out, op)
	}
	return out
}
