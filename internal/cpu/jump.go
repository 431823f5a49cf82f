package cpu

import "github.com/mellified/dotmatrix/pkg/bits"

// jumpAbsolute jumps to the immediate address when the condition
// holds.
//
//	JP nn / JP cc, nn
func (c *CPU) jumpAbsolute(condition bool, operands []byte) {
	if condition {
		c.PC = bits.ToUint16(operands[1], operands[0])
		c.branched = true
	}
}

// jumpRelative adds the signed offset to PC when the condition
// holds.
//
//	JR e / JR cc, e
func (c *CPU) jumpRelative(condition bool, offset uint8) {
	if condition {
		c.PC = uint16(int32(c.PC) + int32(int8(offset)))
		c.branched = true
	}
}

// call pushes the return address and jumps when the condition
// holds. The shadow call stack records the return address for the
// debugger.
//
//	CALL nn / CALL cc, nn
func (c *CPU) call(condition bool, operands []byte) {
	if condition {
		c.callStack = append(c.callStack, c.PC)
		c.push(c.PC)
		c.PC = bits.ToUint16(operands[1], operands[0])
		c.branched = true
	}
}

// ret pops the return address when the condition holds.
//
//	RET / RET cc / RETI
func (c *CPU) ret(condition bool) {
	if condition {
		c.PC = c.pop()
		if n := len(c.callStack); n > 0 {
			c.callStack = c.callStack[:n-1]
		}
		c.branched = true
	}
}

// rst calls into one of the fixed restart vectors.
//
//	RST n
func (c *CPU) rst(vector uint16) {
	c.callStack = append(c.callStack, c.PC)
	c.push(c.PC)
	c.PC = vector
}
