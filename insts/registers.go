package insts

import "fmt"

// Reg is a 5-bit integer register index (x0-x31).
type Reg uint8

// Well-known registers.
const (
	RegZero Reg = 0
	RegRA   Reg = 1
	RegSP   Reg = 2
	RegFP   Reg = 8
)

// RegisterStyle selects how register operands are rendered.
type RegisterStyle uint8

// Register naming styles.
const (
	RegisterStyleABI     RegisterStyle = iota // zero, ra, sp, ... t6
	RegisterStyleNumeric                      // x0, x1, ... x31
)

// abiNames holds the calling-convention alias of each register.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// ABIName returns the ABI alias of the register. x8 is reported as s0.
func (r Reg) ABIName() string {
	return abiNames[r.index()]
}

// NumericName returns the architectural name xN.
func (r Reg) NumericName() string {
	return fmt.Sprintf("x%d", r.index())
}

// Name renders the register in the given style. When fp is set, x8 renders
// as fp rather than s0 in the ABI style.
func (r Reg) Name(style RegisterStyle, fp bool) string {
	if style == RegisterStyleNumeric {
		return r.NumericName()
	}
	if fp && r == RegFP {
		return "fp"
	}
	return r.ABIName()
}

// String implements fmt.Stringer using the ABI name.
func (r Reg) String() string {
	return r.ABIName()
}

func (r Reg) index() int {
	if r > 31 {
		panic(fmt.Sprintf("insts: register index %d out of range", r))
	}
	return int(r)
}

// ParseRegisterStyle maps a configuration string to a RegisterStyle.
func ParseRegisterStyle(s string) (RegisterStyle, error) {
	switch s {
	case "", "abi":
		return RegisterStyleABI, nil
	case "numeric", "x":
		return RegisterStyleNumeric, nil
	default:
		return RegisterStyleABI, fmt.Errorf("unknown register style %q", s)
	}
}

// String returns the configuration name of the style.
func (s RegisterStyle) String() string {
	if s == RegisterStyleNumeric {
		return "numeric"
	}
	return "abi"
}
