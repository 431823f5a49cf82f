package cpu

// and performs A & n.
//
//	AND n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	C - Reset.
func (c *CPU) and(value uint8) {
	c.A &= value
	c.clearFlag(FlagSubtract)
	c.setFlag(FlagHalfCarry)
	c.clearFlag(FlagCarry)
	c.shouldZeroFlag(c.A)
}

// or performs A | n.
//
//	OR n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) or(value uint8) {
	c.A |= value
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.clearFlag(FlagCarry)
	c.shouldZeroFlag(c.A)
}

// xor performs A ^ n.
//
//	XOR n
func (c *CPU) xor(value uint8) {
	c.A ^= value
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.clearFlag(FlagCarry)
	c.shouldZeroFlag(c.A)
}

// complement flips every bit of A.
//
//	CPL
//
// Flags affected:
//
//	N - Set.
//	H - Set.
func (c *CPU) complement() {
	c.A = ^c.A
	c.setFlag(FlagSubtract)
	c.setFlag(FlagHalfCarry)
}

// complementCarry flips the carry flag.
//
//	CCF
func (c *CPU) complementCarry() {
	c.putFlag(FlagCarry, !c.isFlagSet(FlagCarry))
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
}

// setCarry sets the carry flag.
//
//	SCF
func (c *CPU) setCarry() {
	c.setFlag(FlagCarry)
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
}
