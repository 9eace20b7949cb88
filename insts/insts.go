// Package insts provides RV32I instruction definitions and decoding.
//
// This package implements decoding of 32-bit RISC-V machine code into
// structured instruction representations. It supports:
//   - Integer register-immediate: ADDI, SLTI, SLTIU, XORI, ORI, ANDI, SLLI, SRLI, SRAI
//   - Integer register-register: ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND
//   - Loads and stores: LB, LH, LW, LBU, LHU, SB, SH, SW
//   - Control transfer: JAL, JALR, BEQ, BNE, BLT, BGE, BLTU, BGEU
//   - Upper immediates: LUI, AUIPC
//   - Memory ordering and environment calls: FENCE, FENCE.TSO, PAUSE, ECALL, EBREAK
//   - The M extension (MUL, MULH, MULHSU, MULHU, DIV, DIVU, REM, REMU), kept in
//     its own table and enabled by default
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x07B00513) // ADDI X10, X0, 123
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
//
// Everything in this package is a pure function of its inputs. Tables are
// built once at package initialization and never written afterwards, so a
// Decoder may be shared across goroutines freely.
package insts
