package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdis/insts"
)

var _ = Describe("Format table", func() {
	lookup := func(word uint32) insts.Entry {
		entry, ok := insts.Lookup(word, insts.ISADefault)
		ExpectWithOffset(1, ok).To(BeTrue(), "word %#08x should be assigned", word)
		return entry
	}

	DescribeTable("register-immediate group",
		func(funct3 uint32, op insts.Op) {
			entry := lookup(encodeI(insts.OpcodeOpImm, funct3, 5, 6, 42))
			Expect(entry.Op).To(Equal(op))
			Expect(entry.Format).To(Equal(insts.FormatI))
			Expect(entry.Layout).To(Equal(insts.LayoutRegImm))
		},
		Entry("addi", uint32(0), insts.OpADDI),
		Entry("slti", uint32(2), insts.OpSLTI),
		Entry("sltiu", uint32(3), insts.OpSLTIU),
		Entry("xori", uint32(4), insts.OpXORI),
		Entry("ori", uint32(6), insts.OpORI),
		Entry("andi", uint32(7), insts.OpANDI),
	)

	DescribeTable("shift-immediate variants",
		func(funct3, funct7 uint32, op insts.Op) {
			entry := lookup(encodeR(insts.OpcodeOpImm, funct3, funct7, 5, 6, 3))
			Expect(entry.Op).To(Equal(op))
			Expect(entry.Layout).To(Equal(insts.LayoutShift))
		},
		Entry("slli", uint32(1), insts.Funct7Base, insts.OpSLLI),
		Entry("srli", uint32(5), insts.Funct7Base, insts.OpSRLI),
		Entry("srai", uint32(5), insts.Funct7Alt, insts.OpSRAI),
	)

	DescribeTable("register-register group",
		func(funct3, funct7 uint32, op insts.Op) {
			entry := lookup(encodeR(insts.OpcodeOp, funct3, funct7, 5, 6, 7))
			Expect(entry.Op).To(Equal(op))
			Expect(entry.Format).To(Equal(insts.FormatR))
		},
		Entry("add", uint32(0), insts.Funct7Base, insts.OpADD),
		Entry("sub", uint32(0), insts.Funct7Alt, insts.OpSUB),
		Entry("sll", uint32(1), insts.Funct7Base, insts.OpSLL),
		Entry("slt", uint32(2), insts.Funct7Base, insts.OpSLT),
		Entry("sltu", uint32(3), insts.Funct7Base, insts.OpSLTU),
		Entry("xor", uint32(4), insts.Funct7Base, insts.OpXOR),
		Entry("srl", uint32(5), insts.Funct7Base, insts.OpSRL),
		Entry("sra", uint32(5), insts.Funct7Alt, insts.OpSRA),
		Entry("or", uint32(6), insts.Funct7Base, insts.OpOR),
		Entry("and", uint32(7), insts.Funct7Base, insts.OpAND),
		Entry("mul", uint32(0), insts.Funct7MulDiv, insts.OpMUL),
		Entry("mulh", uint32(1), insts.Funct7MulDiv, insts.OpMULH),
		Entry("mulhsu", uint32(2), insts.Funct7MulDiv, insts.OpMULHSU),
		Entry("mulhu", uint32(3), insts.Funct7MulDiv, insts.OpMULHU),
		Entry("div", uint32(4), insts.Funct7MulDiv, insts.OpDIV),
		Entry("divu", uint32(5), insts.Funct7MulDiv, insts.OpDIVU),
		Entry("rem", uint32(6), insts.Funct7MulDiv, insts.OpREM),
		Entry("remu", uint32(7), insts.Funct7MulDiv, insts.OpREMU),
	)

	DescribeTable("loads",
		func(funct3 uint32, op insts.Op) {
			entry := lookup(encodeI(insts.OpcodeLoad, funct3, 5, 6, -4))
			Expect(entry.Op).To(Equal(op))
			Expect(entry.Layout).To(Equal(insts.LayoutLoad))
		},
		Entry("lb", uint32(0), insts.OpLB),
		Entry("lh", uint32(1), insts.OpLH),
		Entry("lw", uint32(2), insts.OpLW),
		Entry("lbu", uint32(4), insts.OpLBU),
		Entry("lhu", uint32(5), insts.OpLHU),
	)

	DescribeTable("stores",
		func(funct3 uint32, op insts.Op) {
			entry := lookup(encodeS(insts.OpcodeStore, funct3, 2, 1, 8))
			Expect(entry.Op).To(Equal(op))
			Expect(entry.Format).To(Equal(insts.FormatS))
		},
		Entry("sb", uint32(0), insts.OpSB),
		Entry("sh", uint32(1), insts.OpSH),
		Entry("sw", uint32(2), insts.OpSW),
	)

	DescribeTable("branches",
		func(funct3 uint32, op insts.Op) {
			entry := lookup(encodeB(insts.OpcodeBranch, funct3, 10, 11, 16))
			Expect(entry.Op).To(Equal(op))
			Expect(entry.Format).To(Equal(insts.FormatB))
		},
		Entry("beq", uint32(0), insts.OpBEQ),
		Entry("bne", uint32(1), insts.OpBNE),
		Entry("blt", uint32(4), insts.OpBLT),
		Entry("bge", uint32(5), insts.OpBGE),
		Entry("bltu", uint32(6), insts.OpBLTU),
		Entry("bgeu", uint32(7), insts.OpBGEU),
	)

	It("should classify jumps and upper immediates by opcode alone", func() {
		Expect(lookup(encodeU(insts.OpcodeLUI, 9, 123)).Op).To(Equal(insts.OpLUI))
		Expect(lookup(encodeU(insts.OpcodeAUIPC, 1, 1243)).Op).To(Equal(insts.OpAUIPC))
		Expect(lookup(encodeJ(insts.OpcodeJAL, 1, 8)).Format).To(Equal(insts.FormatJ))
		Expect(lookup(encodeI(insts.OpcodeJALR, 0, 4, 8, 12)).Op).To(Equal(insts.OpJALR))
	})

	It("should recognize the fence family", func() {
		Expect(lookup(0x0FF0000F).Op).To(Equal(insts.OpFENCE))
		Expect(lookup(0x8330000F).Op).To(Equal(insts.OpFENCETSO))
		Expect(lookup(insts.WordPAUSE).Op).To(Equal(insts.OpPAUSE))
	})

	It("should recognize environment calls by exact word", func() {
		Expect(lookup(insts.WordECALL).Op).To(Equal(insts.OpECALL))
		Expect(lookup(insts.WordEBREAK).Op).To(Equal(insts.OpEBREAK))
	})

	Describe("unassigned encodings", func() {
		DescribeTable("should report not found",
			func(word uint32) {
				_, ok := insts.Lookup(word, insts.ISADefault)
				Expect(ok).To(BeFalse())
			},
			Entry("all zeros", uint32(0x00000000)),
			Entry("all ones", uint32(0xFFFFFFFF)),
			Entry("unlisted opcode", uint32(0x0000007F)),
			Entry("compressed quadrant", uint32(0x00004501)),
			Entry("jalr funct3=1", uint32(0x00C41267)),
			Entry("branch funct3=2", uint32(0x00B52063)),
			Entry("load funct3=3", uint32(0x0000B003)),
			Entry("store funct3=3", uint32(0x00B63023)),
			Entry("sub funct3=1", uint32(0x40001033)),
			Entry("op funct7=0x7f", uint32(0xFE000033)),
			Entry("slli funct7=0x20", uint32(0x40001013)),
			Entry("srli funct7=0x01", uint32(0x02005013)),
			Entry("csrrw", uint32(0x34011073)),
			Entry("ecall with rd set", uint32(0x000000F3)),
			Entry("fence.i", uint32(0x0000100F)),
			Entry("reserved fence mode", uint32(0x4FF0000F)),
		)

		It("should leave M-extension words unassigned on the base ISA", func() {
			_, ok := insts.Lookup(0x02C58533, insts.ISABase)
			Expect(ok).To(BeFalse())

			entry, ok := insts.Lookup(0x02C58533, insts.ISADefault)
			Expect(ok).To(BeTrue())
			Expect(entry.Op).To(Equal(insts.OpMUL))
		})
	})

	Describe("mnemonics", func() {
		It("should name every assigned op uniquely", func() {
			seen := map[string]bool{}
			for _, op := range insts.Ops() {
				name := op.String()
				Expect(name).NotTo(Equal("unknown"))
				Expect(seen).NotTo(HaveKey(name))
				seen[name] = true
			}
			Expect(seen).To(HaveLen(50))
		})

		It("should name out of range ops unknown", func() {
			Expect(insts.Op(9999).String()).To(Equal("unknown"))
		})
	})

	Describe("ParseISA", func() {
		It("should parse base and M", func() {
			isa, err := insts.ParseISA("rv32i")
			Expect(err).NotTo(HaveOccurred())
			Expect(isa).To(Equal(insts.ISABase))

			isa, err = insts.ParseISA("RV32IM")
			Expect(err).NotTo(HaveOccurred())
			Expect(isa.Has(insts.ExtM)).To(BeTrue())
			Expect(isa.String()).To(Equal("rv32im"))
		})

		It("should default to rv32im", func() {
			isa, err := insts.ParseISA("")
			Expect(err).NotTo(HaveOccurred())
			Expect(isa).To(Equal(insts.ISADefault))
		})

		It("should reject other bases and extensions", func() {
			_, err := insts.ParseISA("rv64i")
			Expect(err).To(HaveOccurred())
			_, err = insts.ParseISA("rv32imc")
			Expect(err).To(HaveOccurred())
		})
	})
})
