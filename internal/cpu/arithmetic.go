package cpu

// add adds two bytes and an optional carry, updating all four flags.
//
//	ADD A, n / ADC A, n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(a, b, carry uint8) uint8 {
	result := uint16(a) + uint16(b) + uint16(carry)
	c.putFlag(FlagHalfCarry, a&0xF+b&0xF+carry > 0xF)
	c.putFlag(FlagCarry, result > 0xFF)
	c.clearFlag(FlagSubtract)
	c.shouldZeroFlag(uint8(result))
	return uint8(result)
}

// sub subtracts a byte and an optional borrow from a, updating all
// four flags.
//
//	SUB n / SBC A, n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
func (c *CPU) sub(a, b, carry uint8) uint8 {
	result := uint16(a) - uint16(b) - uint16(carry)
	c.putFlag(FlagHalfCarry, a&0xF < b&0xF+carry)
	c.putFlag(FlagCarry, uint16(b)+uint16(carry) > uint16(a))
	c.setFlag(FlagSubtract)
	c.shouldZeroFlag(uint8(result))
	return uint8(result)
}

func (c *CPU) addN(value uint8) {
	c.A = c.add(c.A, value, 0)
}

func (c *CPU) addNCarry(value uint8) {
	c.A = c.add(c.A, value, c.carryValue())
}

func (c *CPU) subtractN(value uint8) {
	c.A = c.sub(c.A, value, 0)
}

func (c *CPU) subtractNCarry(value uint8) {
	c.A = c.sub(c.A, value, c.carryValue())
}

// compare subtracts without storing the result.
//
//	CP n
func (c *CPU) compare(value uint8) {
	c.sub(c.A, value, 0)
}

// increment adds one, preserving the carry flag.
//
//	INC n
func (c *CPU) increment(value uint8) uint8 {
	result := value + 1
	c.putFlag(FlagHalfCarry, value&0xF == 0xF)
	c.clearFlag(FlagSubtract)
	c.shouldZeroFlag(result)
	return result
}

// decrement subtracts one, preserving the carry flag.
//
//	DEC n
func (c *CPU) decrement(value uint8) uint8 {
	result := value - 1
	c.putFlag(FlagHalfCarry, value&0xF == 0)
	c.setFlag(FlagSubtract)
	c.shouldZeroFlag(result)
	return result
}

// addHL adds a register pair into HL.
//
//	ADD HL, rr
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addHL(value uint16) {
	hl := c.HL.Uint16()
	result := uint32(hl) + uint32(value)
	c.putFlag(FlagHalfCarry, hl&0x0FFF+value&0x0FFF > 0x0FFF)
	c.putFlag(FlagCarry, result > 0xFFFF)
	c.clearFlag(FlagSubtract)
	c.HL.SetUint16(uint16(result))
}

// addSPSigned adds a signed byte to SP, with flags computed on the
// low byte as the hardware does.
//
//	ADD SP, e / LD HL, SP+e
func (c *CPU) addSPSigned(offset uint8) uint16 {
	sp := c.SP
	c.putFlag(FlagHalfCarry, sp&0xF+uint16(offset)&0xF > 0xF)
	c.putFlag(FlagCarry, sp&0xFF+uint16(offset) > 0xFF)
	c.clearFlag(FlagZero)
	c.clearFlag(FlagSubtract)
	return sp + uint16(int8(offset))
}

// daa re-normalizes the accumulator after a binary coded decimal
// operation, using the subtract, half-carry and carry flags. The
// carry flag is sticky upward.
func (c *CPU) daa() {
	a := uint16(c.A)
	if !c.isFlagSet(FlagSubtract) {
		if c.isFlagSet(FlagCarry) || a > 0x99 {
			a += 0x60
			c.setFlag(FlagCarry)
		}
		if c.isFlagSet(FlagHalfCarry) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if c.isFlagSet(FlagCarry) {
			a -= 0x60
		}
		if c.isFlagSet(FlagHalfCarry) {
			a -= 0x06
		}
	}
	c.A = uint8(a)
	c.clearFlag(FlagHalfCarry)
	c.shouldZeroFlag(c.A)
}
