package insts

// Immediate reconstructs the sign-extended immediate carried by word in
// the given format. R-type instructions (and FormatUnknown) carry none and
// yield 0.
func Immediate(word uint32, format Format) int32 {
	switch format {
	case FormatI:
		return ImmI(word)
	case FormatS:
		return ImmS(word)
	case FormatB:
		return ImmB(word)
	case FormatU:
		return ImmU(word)
	case FormatJ:
		return ImmJ(word)
	default:
		return 0
	}
}

// ImmI decodes imm[11:0] = inst[31:20].
func ImmI(word uint32) int32 {
	return SignExtend(Bits(word, 31, 20), 12)
}

// ImmS decodes imm[11:5|4:0] = inst[31:25|11:7].
func ImmS(word uint32) int32 {
	imm := Bits(word, 31, 25)<<5 |
		Bits(word, 11, 7)
	return SignExtend(imm, 12)
}

// ImmB decodes imm[12|10:5|4:1|11] = inst[31|30:25|11:8|7].
// Bit 0 is always zero, so the offset is even.
func ImmB(word uint32) int32 {
	imm := Bit(word, 31)<<12 |
		Bit(word, 7)<<11 |
		Bits(word, 30, 25)<<5 |
		Bits(word, 11, 8)<<1
	return SignExtend(imm, 13)
}

// ImmU decodes imm[31:12] = inst[31:12] with the low 12 bits cleared.
func ImmU(word uint32) int32 {
	return int32(Bits(word, 31, 12) << 12)
}

// ImmJ decodes imm[20|10:1|11|19:12] = inst[31|30:21|20|19:12].
// Bit 0 is always zero, so the offset is even.
func ImmJ(word uint32) int32 {
	imm := Bit(word, 31)<<20 |
		Bits(word, 19, 12)<<12 |
		Bit(word, 20)<<11 |
		Bits(word, 30, 21)<<1
	return SignExtend(imm, 21)
}
