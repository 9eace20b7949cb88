package disasm

import (
	"strconv"

	"github.com/sarchlab/rvdis/insts"
)

// Render returns the mnemonic and ordered operands of a decoded instruction.
func (d *Disassembler) Render(inst *insts.Instruction) (string, []string) {
	if !inst.Known() {
		return UnknownMarker, nil
	}

	if d.pseudo {
		if mnemonic, operands, ok := d.pseudoForm(inst); ok {
			return mnemonic, operands
		}
	}

	return inst.Op.String(), d.operands(inst)
}

func (d *Disassembler) operands(inst *insts.Instruction) []string {
	switch inst.Layout {
	case insts.LayoutRegReg:
		return []string{d.reg(inst.Rd), d.reg(inst.Rs1), d.reg(inst.Rs2)}
	case insts.LayoutRegImm, insts.LayoutShift:
		return []string{d.reg(inst.Rd), d.reg(inst.Rs1), imm(inst.Imm)}
	case insts.LayoutLoad, insts.LayoutJumpReg:
		if d.offsetBase {
			return []string{d.reg(inst.Rd), d.mem(inst.Imm, inst.Rs1)}
		}
		return []string{d.reg(inst.Rd), d.reg(inst.Rs1), imm(inst.Imm)}
	case insts.LayoutStore:
		return []string{d.reg(inst.Rs2), d.mem(inst.Imm, inst.Rs1)}
	case insts.LayoutBranch:
		return []string{d.reg(inst.Rs1), d.reg(inst.Rs2), imm(inst.Imm)}
	case insts.LayoutUpper:
		return []string{d.reg(inst.Rd), upper(inst.Imm)}
	case insts.LayoutJump:
		return []string{d.reg(inst.Rd), imm(inst.Imm)}
	case insts.LayoutFence:
		return []string{fenceSet(inst.Pred), fenceSet(inst.Succ)}
	default:
		return nil
	}
}

func (d *Disassembler) reg(r insts.Reg) string {
	return r.Name(d.style, d.fp)
}

func (d *Disassembler) mem(offset int32, base insts.Reg) string {
	return imm(offset) + "(" + d.reg(base) + ")"
}

func imm(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// upper renders the 20-bit field of a U-type immediate, the value an
// assembler expects as the lui/auipc operand.
func upper(v int32) string {
	return strconv.FormatUint(uint64(uint32(v)>>12), 10)
}

// fenceSet renders a FENCE ordering set as a subset of "iorw".
func fenceSet(set uint8) string {
	if set == 0 {
		return "0"
	}

	s := make([]byte, 0, 4)
	for i, c := range "iorw" {
		if set&(0b1000>>i) != 0 {
			s = append(s, byte(c))
		}
	}
	return string(s)
}
