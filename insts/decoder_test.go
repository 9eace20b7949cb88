package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdis/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	It("should default to rv32im", func() {
		Expect(decoder.ISA()).To(Equal(insts.ISADefault))
	})

	Describe("I-type", func() {
		// ADDI X10, X0, 123  -> 0x07B00513
		// Encoding: imm=0x07B, rs1=0, funct3=000, rd=10, opcode=0010011
		It("should decode ADDI X10, X0, 123", func() {
			inst := decoder.Decode(0x07B00513)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Rd).To(Equal(insts.Reg(10)))
			Expect(inst.Rs1).To(Equal(insts.RegZero))
			Expect(inst.Imm).To(Equal(int32(123)))
			Expect(inst.Raw).To(Equal(uint32(0x07B00513)))
			Expect(inst.Known()).To(BeTrue())
		})

		// LW X12, 10(X11)    -> 0x00A5A603
		It("should decode LW X12, 10(X11)", func() {
			inst := decoder.Decode(0x00A5A603)

			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Rd).To(Equal(insts.Reg(12)))
			Expect(inst.Rs1).To(Equal(insts.Reg(11)))
			Expect(inst.Imm).To(Equal(int32(10)))
			Expect(inst.Layout).To(Equal(insts.LayoutLoad))
		})

		// JALR X4, 12(X8)    -> 0x00C40267
		It("should decode JALR X4, 12(X8)", func() {
			inst := decoder.Decode(0x00C40267)

			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(insts.Reg(4)))
			Expect(inst.Rs1).To(Equal(insts.Reg(8)))
			Expect(inst.Imm).To(Equal(int32(12)))
		})

		// SRAI X10, X10, 3   -> 0x40355513
		It("should decode SRAI with the shift amount as immediate", func() {
			inst := decoder.Decode(0x40355513)

			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Imm).To(Equal(int32(3)))
			Expect(inst.Funct7).To(Equal(uint8(0x20)))
		})
	})

	Describe("R-type", func() {
		// SUB X10, X10, X11  -> 0x40B50533
		It("should decode SUB X10, X10, X11", func() {
			inst := decoder.Decode(0x40B50533)

			Expect(inst.Op).To(Equal(insts.OpSUB))
			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Rd).To(Equal(insts.Reg(10)))
			Expect(inst.Rs1).To(Equal(insts.Reg(10)))
			Expect(inst.Rs2).To(Equal(insts.Reg(11)))
			Expect(inst.Imm).To(BeZero())
		})

		// MUL X10, X11, X12  -> 0x02C58533
		It("should decode MUL on the default ISA", func() {
			inst := decoder.Decode(0x02C58533)
			Expect(inst.Op).To(Equal(insts.OpMUL))
		})

		It("should not decode MUL on the base ISA", func() {
			inst := insts.NewDecoder(insts.WithISA(insts.ISABase)).Decode(0x02C58533)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
		})
	})

	Describe("S-type", func() {
		// SB X11, 9(X12)     -> 0x00B604A3
		It("should decode SB X11, 9(X12)", func() {
			inst := decoder.Decode(0x00B604A3)

			Expect(inst.Op).To(Equal(insts.OpSB))
			Expect(inst.Rs1).To(Equal(insts.Reg(12)))
			Expect(inst.Rs2).To(Equal(insts.Reg(11)))
			Expect(inst.Imm).To(Equal(int32(9)))
			Expect(inst.Rd).To(Equal(insts.RegZero))
		})
	})

	Describe("B-type", func() {
		// BEQ X10, X11, -8   -> 0xFEB50CE3
		It("should decode BEQ with a negative offset", func() {
			inst := decoder.Decode(0xFEB50CE3)

			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Rs1).To(Equal(insts.Reg(10)))
			Expect(inst.Rs2).To(Equal(insts.Reg(11)))
			Expect(inst.Imm).To(Equal(int32(-8)))
		})
	})

	Describe("U-type and J-type", func() {
		// AUIPC X1, 1243     -> 0x004DB097
		It("should decode AUIPC X1, 1243", func() {
			inst := decoder.Decode(0x004DB097)

			Expect(inst.Op).To(Equal(insts.OpAUIPC))
			Expect(inst.Rd).To(Equal(insts.RegRA))
			Expect(inst.Imm).To(Equal(int32(1243 << 12)))
		})

		// JAL X30, 164       -> 0x0A400F6F
		It("should decode JAL X30, 164", func() {
			inst := decoder.Decode(0x0A400F6F)

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(insts.Reg(30)))
			Expect(inst.Imm).To(Equal(int32(164)))
		})
	})

	Describe("FENCE", func() {
		It("should decode the ordering sets", func() {
			// fence rw, w
			inst := decoder.Decode(0x0310000F)

			Expect(inst.Op).To(Equal(insts.OpFENCE))
			Expect(inst.Pred).To(Equal(uint8(0b0011)))
			Expect(inst.Succ).To(Equal(uint8(0b0001)))
		})
	})

	Describe("Unknown instructions", func() {
		It("should return OpUnknown with only the raw word set", func() {
			inst := decoder.Decode(0xFFFFFFFF)

			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Format).To(Equal(insts.FormatUnknown))
			Expect(inst.Raw).To(Equal(uint32(0xFFFFFFFF)))
			Expect(inst.Known()).To(BeFalse())
		})
	})

	Describe("DecodeInto", func() {
		It("should overwrite a previously decoded instruction", func() {
			var inst insts.Instruction
			decoder.DecodeInto(0x40B50533, &inst)
			decoder.DecodeInto(0x00000073, &inst)

			Expect(inst.Op).To(Equal(insts.OpECALL))
			Expect(inst.Rs2).To(Equal(insts.RegZero))
		})

		It("should agree with Decode", func() {
			var inst insts.Instruction
			for word := uint32(0); word < 1<<31; word += 0x00FEDC3 {
				decoder.DecodeInto(word, &inst)
				Expect(inst).To(Equal(*decoder.Decode(word)))
			}
		})
	})

	It("should be deterministic", func() {
		for _, word := range []uint32{0x07B00513, 0xFEB50CE3, 0xDEADBEEF} {
			Expect(decoder.Decode(word)).To(Equal(decoder.Decode(word)))
		}
	})
})
