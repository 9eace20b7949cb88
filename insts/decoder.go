package insts

// Instruction represents a decoded RV32 instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format
	Layout Layout // Operand rendering layout
	Raw    uint32 // Undecoded instruction word

	// Register fields. Which ones are meaningful depends on Format.
	Rd  Reg // Destination register
	Rs1 Reg // First source register
	Rs2 Reg // Second source register

	// Secondary opcode fields
	Funct3 uint8
	Funct7 uint8

	// Imm is the sign-extended immediate for I/S/B/U/J formats. For shifts
	// it holds the shift amount; for U-type it holds the upper-placed value.
	Imm int32

	// Pred and Succ are the FENCE ordering sets (bit 3..0 = I, O, R, W).
	Pred uint8
	Succ uint8
}

// Known reports whether the word decoded to an assigned encoding.
func (i *Instruction) Known() bool {
	return i.Op != OpUnknown
}

// Decoder decodes RV32 machine code into instructions.
type Decoder struct {
	isa ISA
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithISA selects the enabled extensions. The default is ISADefault.
func WithISA(isa ISA) DecoderOption {
	return func(d *Decoder) {
		d.isa = isa
	}
}

// NewDecoder creates a new RV32 instruction decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{isa: ISADefault}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ISA returns the extensions the decoder recognizes.
func (d *Decoder) ISA() ISA {
	return d.isa
}

// Decode decodes a 32-bit RV32 instruction word. Every word decodes; words
// with unassigned encodings come back with Op set to OpUnknown.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{}
	d.DecodeInto(word, inst)
	return inst
}

// DecodeInto decodes word into inst, overwriting every field.
func (d *Decoder) DecodeInto(word uint32, inst *Instruction) {
	*inst = Instruction{Raw: word}

	entry, ok := Lookup(word, d.isa)
	if !ok {
		return
	}

	inst.Op = entry.Op
	inst.Format = entry.Format
	inst.Layout = entry.Layout

	switch entry.Format {
	case FormatR:
		inst.Rd = Rd(word)
		inst.Rs1 = Rs1(word)
		inst.Rs2 = Rs2(word)
		inst.Funct3 = uint8(Funct3(word))
		inst.Funct7 = uint8(Funct7(word))
	case FormatI:
		inst.Rd = Rd(word)
		inst.Rs1 = Rs1(word)
		inst.Funct3 = uint8(Funct3(word))
		inst.Imm = ImmI(word)
	case FormatS:
		inst.Rs1 = Rs1(word)
		inst.Rs2 = Rs2(word)
		inst.Funct3 = uint8(Funct3(word))
		inst.Imm = ImmS(word)
	case FormatB:
		inst.Rs1 = Rs1(word)
		inst.Rs2 = Rs2(word)
		inst.Funct3 = uint8(Funct3(word))
		inst.Imm = ImmB(word)
	case FormatU:
		inst.Rd = Rd(word)
		inst.Imm = ImmU(word)
	case FormatJ:
		inst.Rd = Rd(word)
		inst.Imm = ImmJ(word)
	}

	switch entry.Layout {
	case LayoutShift:
		inst.Imm = int32(Shamt(word))
		inst.Funct7 = uint8(Funct7(word))
	case LayoutFence:
		inst.Pred = uint8(Bits(word, 27, 24))
		inst.Succ = uint8(Bits(word, 23, 20))
	}
}
