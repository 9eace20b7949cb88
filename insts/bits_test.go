package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdis/insts"
)

var _ = Describe("Bitfield extraction", func() {
	Describe("Bits", func() {
		It("should extract the full word", func() {
			Expect(insts.Bits(0xDEADBEEF, 31, 0)).To(Equal(uint32(0xDEADBEEF)))
		})

		It("should extract a low range", func() {
			Expect(insts.Bits(0xFFFF, 15, 0)).To(Equal(uint32(0xFFFF)))
			Expect(insts.Bits(0x07B00513, 6, 0)).To(Equal(uint32(0x13)))
		})

		It("should right-align a middle range", func() {
			Expect(insts.Bits(0x1F0, 8, 4)).To(Equal(uint32(0x1F)))
			Expect(insts.Bits(0x6E50206F, 31, 21)).To(Equal(uint32(0b1101110010)))
		})

		It("should extract single bits", func() {
			Expect(insts.Bits(12004, 11, 11)).To(Equal(uint32(1)))
			Expect(insts.Bit(0x80000000, 31)).To(Equal(uint32(1)))
			Expect(insts.Bit(0x80000000, 30)).To(Equal(uint32(0)))
		})

		It("should treat the word as unsigned", func() {
			Expect(insts.Bits(0xFFFFFFFF, 31, 20)).To(Equal(uint32(0xFFF)))
		})

		It("should panic on an inverted range", func() {
			Expect(func() { insts.Bits(0, 3, 4) }).To(Panic())
		})

		It("should panic on a range past bit 31", func() {
			Expect(func() { insts.Bits(0, 32, 0) }).To(Panic())
		})
	})

	Describe("SignExtend", func() {
		It("should keep positive values", func() {
			Expect(insts.SignExtend(0x07B, 12)).To(Equal(int32(123)))
		})

		It("should replicate the sign bit", func() {
			Expect(insts.SignExtend(0xFFF, 12)).To(Equal(int32(-1)))
			Expect(insts.SignExtend(0x800, 12)).To(Equal(int32(-2048)))
			Expect(insts.SignExtend(0x1000, 13)).To(Equal(int32(-4096)))
		})

		It("should be the identity at full width", func() {
			Expect(insts.SignExtend(0xFFFFFFFE, 32)).To(Equal(int32(-2)))
		})
	})

	Describe("Field accessors", func() {
		// addi a0, zero, 123
		const word = 0x07B00513

		It("should extract the fixed fields", func() {
			Expect(insts.Opcode(word)).To(Equal(insts.OpcodeOpImm))
			Expect(insts.Rd(word)).To(Equal(insts.Reg(10)))
			Expect(insts.Funct3(word)).To(Equal(uint32(0)))
			Expect(insts.Rs1(word)).To(Equal(insts.RegZero))
			Expect(insts.Rs2(word)).To(Equal(insts.Reg(0x1B)))
			Expect(insts.Funct7(word)).To(Equal(uint32(0x03)))
		})
	})

	Describe("WordsFromBytes", func() {
		It("should read little-endian words", func() {
			words := insts.WordsFromBytes([]byte{
				0x13, 0x05, 0xB0, 0x07,
				0x73, 0x00, 0x00, 0x00,
			})
			Expect(words).To(Equal([]uint32{0x07B00513, 0x00000073}))
		})

		It("should drop a trailing partial word", func() {
			words := insts.WordsFromBytes([]byte{0x73, 0x00, 0x00, 0x00, 0x01, 0x02})
			Expect(words).To(HaveLen(1))
		})

		It("should return no words for short input", func() {
			Expect(insts.WordsFromBytes(nil)).To(BeEmpty())
		})
	})
})
