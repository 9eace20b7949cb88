package disasm

import "github.com/sarchlab/rvdis/insts"

// pseudoForm recognizes the canonical expansion of a pseudo-instruction.
// Only the forms listed on WithPseudo are collapsed.
func (d *Disassembler) pseudoForm(inst *insts.Instruction) (string, []string, bool) {
	zero := insts.RegZero

	switch inst.Op {
	case insts.OpADDI:
		switch {
		case inst.Rd == zero && inst.Rs1 == zero && inst.Imm == 0:
			return "nop", nil, true
		case inst.Rs1 == zero:
			return "li", []string{d.reg(inst.Rd), imm(inst.Imm)}, true
		case inst.Imm == 0:
			return "mv", []string{d.reg(inst.Rd), d.reg(inst.Rs1)}, true
		}
	case insts.OpXORI:
		if inst.Imm == -1 {
			return "not", []string{d.reg(inst.Rd), d.reg(inst.Rs1)}, true
		}
	case insts.OpSLTIU:
		if inst.Imm == 1 {
			return "seqz", []string{d.reg(inst.Rd), d.reg(inst.Rs1)}, true
		}
	case insts.OpSUB:
		if inst.Rs1 == zero {
			return "neg", []string{d.reg(inst.Rd), d.reg(inst.Rs2)}, true
		}
	case insts.OpSLTU:
		if inst.Rs1 == zero {
			return "snez", []string{d.reg(inst.Rd), d.reg(inst.Rs2)}, true
		}
	case insts.OpBEQ:
		if inst.Rs2 == zero {
			return "beqz", []string{d.reg(inst.Rs1), imm(inst.Imm)}, true
		}
	case insts.OpBNE:
		if inst.Rs2 == zero {
			return "bnez", []string{d.reg(inst.Rs1), imm(inst.Imm)}, true
		}
	case insts.OpJAL:
		if inst.Rd == zero {
			return "j", []string{imm(inst.Imm)}, true
		}
	case insts.OpJALR:
		if inst.Rd != zero || inst.Imm != 0 {
			break
		}
		if inst.Rs1 == insts.RegRA {
			return "ret", nil, true
		}
		return "jr", []string{d.reg(inst.Rs1)}, true
	}

	return "", nil, false
}
