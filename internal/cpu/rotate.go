package cpu

// The prefixed rotate and shift variants set the zero flag from
// their result; the unprefixed accumulator forms always clear it.

// rotateLeft rotates left, bit 7 into both carry and bit 0.
//
//	RLC n
func (c *CPU) rotateLeft(value uint8) uint8 {
	carry := value >> 7
	result := value<<1 | carry
	c.putFlag(FlagCarry, carry == 1)
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.shouldZeroFlag(result)
	return result
}

// rotateRight rotates right, bit 0 into both carry and bit 7.
//
//	RRC n
func (c *CPU) rotateRight(value uint8) uint8 {
	carry := value & 1
	result := value>>1 | carry<<7
	c.putFlag(FlagCarry, carry == 1)
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.shouldZeroFlag(result)
	return result
}

// rotateLeftThroughCarry rotates left through the carry flag.
//
//	RL n
func (c *CPU) rotateLeftThroughCarry(value uint8) uint8 {
	result := value<<1 | c.carryValue()
	c.putFlag(FlagCarry, value&0x80 != 0)
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.shouldZeroFlag(result)
	return result
}

// rotateRightThroughCarry rotates right through the carry flag.
//
//	RR n
func (c *CPU) rotateRightThroughCarry(value uint8) uint8 {
	result := value>>1 | c.carryValue()<<7
	c.putFlag(FlagCarry, value&1 != 0)
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.shouldZeroFlag(result)
	return result
}

// rotateLeftAccumulator is the unprefixed RLCA: zero flag cleared.
func (c *CPU) rotateLeftAccumulator() {
	c.A = c.rotateLeft(c.A)
	c.clearFlag(FlagZero)
}

// rotateRightAccumulator is the unprefixed RRCA: zero flag cleared.
func (c *CPU) rotateRightAccumulator() {
	c.A = c.rotateRight(c.A)
	c.clearFlag(FlagZero)
}

// rotateLeftAccumulatorThroughCarry is the unprefixed RLA.
func (c *CPU) rotateLeftAccumulatorThroughCarry() {
	c.A = c.rotateLeftThroughCarry(c.A)
	c.clearFlag(FlagZero)
}

// rotateRightAccumulatorThroughCarry is the unprefixed RRA.
func (c *CPU) rotateRightAccumulatorThroughCarry() {
	c.A = c.rotateRightThroughCarry(c.A)
	c.clearFlag(FlagZero)
}

// shiftLeftArithmetic shifts left into carry, bit 0 becomes 0.
//
//	SLA n
func (c *CPU) shiftLeftArithmetic(value uint8) uint8 {
	result := value << 1
	c.putFlag(FlagCarry, value&0x80 != 0)
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.shouldZeroFlag(result)
	return result
}

// shiftRightArithmetic shifts right into carry, bit 7 is preserved.
//
//	SRA n
func (c *CPU) shiftRightArithmetic(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.putFlag(FlagCarry, value&1 != 0)
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.shouldZeroFlag(result)
	return result
}

// shiftRightLogical shifts right into carry, bit 7 becomes 0.
//
//	SRL n
func (c *CPU) shiftRightLogical(value uint8) uint8 {
	result := value >> 1
	c.putFlag(FlagCarry, value&1 != 0)
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.shouldZeroFlag(result)
	return result
}

// swap exchanges the nibbles.
//
//	SWAP n
func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.clearFlag(FlagSubtract)
	c.clearFlag(FlagHalfCarry)
	c.clearFlag(FlagCarry)
	c.shouldZeroFlag(result)
	return result
}

// testBit tests a bit, leaving the carry flag alone.
//
//	BIT b, n
//
// Flags affected:
//
//	Z - Set if the bit is 0.
//	N - Reset.
//	H - Set.
//	C - Not affected.
func (c *CPU) testBit(value uint8, position uint8) {
	c.shouldZeroFlag(value >> position & 1)
	c.clearFlag(FlagSubtract)
	c.setFlag(FlagHalfCarry)
}
