package cpu

import "github.com/mellified/dotmatrix/pkg/bits"

// Flag is a bit index into the F register. The low nibble of F is
// always zero.
type Flag = uint8

const (
	FlagZero      Flag = 7
	FlagSubtract  Flag = 6
	FlagHalfCarry Flag = 5
	FlagCarry     Flag = 4
)

// setFlag sets the given flag.
func (c *CPU) setFlag(flag Flag) {
	c.F = bits.Set(c.F, flag) & 0xF0
}

// clearFlag clears the given flag.
func (c *CPU) clearFlag(flag Flag) {
	c.F = bits.Reset(c.F, flag) & 0xF0
}

// putFlag sets or clears the given flag.
func (c *CPU) putFlag(flag Flag, on bool) {
	if on {
		c.setFlag(flag)
	} else {
		c.clearFlag(flag)
	}
}

// isFlagSet reports whether the given flag is set.
func (c *CPU) isFlagSet(flag Flag) bool {
	return bits.Test(c.F, flag)
}

// shouldZeroFlag sets the zero flag iff the value is 0.
func (c *CPU) shouldZeroFlag(value uint8) {
	c.putFlag(FlagZero, value == 0)
}

// carryValue returns the carry flag as 0 or 1.
func (c *CPU) carryValue() uint8 {
	if c.isFlagSet(FlagCarry) {
		return 1
	}
	return 0
}
