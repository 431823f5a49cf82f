package cpu

import (
	"fmt"

	"github.com/mellified/dotmatrix/pkg/bits"
)

// InstructionSetCB holds the 256 opcodes behind the 0xCB prefix:
// rotates, shifts, swaps and the bit test/reset/set grids. The
// whole space is regular, so the table is generated.
var InstructionSetCB = [256]Instruction{}

// cbOps maps each block of eight prefixed opcodes at 0x00-0x3F to
// its operation.
var cbOps = [8]struct {
	name string
	fn   func(c *CPU, value uint8) uint8
}{
	{"RLC", func(c *CPU, v uint8) uint8 { return c.rotateLeft(v) }},
	{"RRC", func(c *CPU, v uint8) uint8 { return c.rotateRight(v) }},
	{"RL", func(c *CPU, v uint8) uint8 { return c.rotateLeftThroughCarry(v) }},
	{"RR", func(c *CPU, v uint8) uint8 { return c.rotateRightThroughCarry(v) }},
	{"SLA", func(c *CPU, v uint8) uint8 { return c.shiftLeftArithmetic(v) }},
	{"SRA", func(c *CPU, v uint8) uint8 { return c.shiftRightArithmetic(v) }},
	{"SWAP", func(c *CPU, v uint8) uint8 { return c.swap(v) }},
	{"SRL", func(c *CPU, v uint8) uint8 { return c.shiftRightLogical(v) }},
}

func generateCBInstructions() {
	// rotates, shifts and swap
	for op := uint8(0); op < 8; op++ {
		for src := uint8(0); src < 8; src++ {
			opcode := op*8 + src
			name := cbOps[op].name + " " + registerNames[src]
			fn := cbOps[op].fn

			if src == 6 {
				InstructionSetCB[opcode] = Instruction{name, 2, 16, 0, func(c *CPU, _ []byte) {
					c.write8(c.HL.Uint16(), fn(c, c.read8(c.HL.Uint16())))
				}}
			} else {
				src := src
				InstructionSetCB[opcode] = Instruction{name, 2, 8, 0, func(c *CPU, _ []byte) {
					*c.registerIndex(src) = fn(c, *c.registerIndex(src))
				}}
			}
		}
	}

	// BIT, RES and SET grids
	for bit := uint8(0); bit < 8; bit++ {
		for src := uint8(0); src < 8; src++ {
			bit, src := bit, src
			bitOp := 0x40 + bit*8 + src
			resOp := 0x80 + bit*8 + src
			setOp := 0xC0 + bit*8 + src

			if src == 6 {
				InstructionSetCB[bitOp] = Instruction{fmt.Sprintf("BIT %d, (HL)", bit), 2, 12, 0, func(c *CPU, _ []byte) {
					c.testBit(c.read8(c.HL.Uint16()), bit)
				}}
				InstructionSetCB[resOp] = Instruction{fmt.Sprintf("RES %d, (HL)", bit), 2, 16, 0, func(c *CPU, _ []byte) {
					c.write8(c.HL.Uint16(), bits.Reset(c.read8(c.HL.Uint16()), bit))
				}}
				InstructionSetCB[setOp] = Instruction{fmt.Sprintf("SET %d, (HL)", bit), 2, 16, 0, func(c *CPU, _ []byte) {
					c.write8(c.HL.Uint16(), bits.Set(c.read8(c.HL.Uint16()), bit))
				}}
				continue
			}

			InstructionSetCB[bitOp] = Instruction{fmt.Sprintf("BIT %d, %s", bit, registerNames[src]), 2, 8, 0, func(c *CPU, _ []byte) {
				c.testBit(*c.registerIndex(src), bit)
			}}
			InstructionSetCB[resOp] = Instruction{fmt.Sprintf("RES %d, %s", bit, registerNames[src]), 2, 8, 0, func(c *CPU, _ []byte) {
				*c.registerIndex(src) = bits.Reset(*c.registerIndex(src), bit)
			}}
			InstructionSetCB[setOp] = Instruction{fmt.Sprintf("SET %d, %s", bit, registerNames[src]), 2, 8, 0, func(c *CPU, _ []byte) {
				*c.registerIndex(src) = bits.Set(*c.registerIndex(src), bit)
			}}
		}
	}
}
