package cpu

import "github.com/mellified/dotmatrix/internal/scheduler"

// Instruction describes one opcode: its mnemonic, encoded size,
// base duration in cycles and the surcharge applied when a
// conditional branch is taken.
type Instruction struct {
	Name         string
	Length       uint8
	Cycles       uint8
	BranchCycles uint8
	Execute      func(c *CPU, operands []byte)
}

// InstructionSet holds the 256 primary opcodes. Entries with a nil
// Execute are holes in the instruction space; hitting one crashes
// the CPU with a sticky message.
var InstructionSet = [256]Instruction{
	0x00: {"NOP", 1, 4, 0, func(c *CPU, _ []byte) {}},
	0x01: {"LD BC, d16", 3, 12, 0, func(c *CPU, operands []byte) {
		c.C, c.B = operands[0], operands[1]
	}},
	0x02: {"LD (BC), A", 1, 8, 0, func(c *CPU, _ []byte) {
		c.write8(c.BC.Uint16(), c.A)
	}},
	0x03: {"INC BC", 1, 8, 0, func(c *CPU, _ []byte) {
		c.BC.SetUint16(c.BC.Uint16() + 1)
	}},
	0x04: {"INC B", 1, 4, 0, func(c *CPU, _ []byte) { c.B = c.increment(c.B) }},
	0x05: {"DEC B", 1, 4, 0, func(c *CPU, _ []byte) { c.B = c.decrement(c.B) }},
	0x06: {"LD B, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.B = operands[0] }},
	0x07: {"RLCA", 1, 4, 0, func(c *CPU, _ []byte) { c.rotateLeftAccumulator() }},
	0x08: {"LD (a16), SP", 3, 20, 0, func(c *CPU, operands []byte) {
		c.write16(uint16(operands[1])<<8|uint16(operands[0]), c.SP)
	}},
	0x09: {"ADD HL, BC", 1, 8, 0, func(c *CPU, _ []byte) { c.addHL(c.BC.Uint16()) }},
	0x0A: {"LD A, (BC)", 1, 8, 0, func(c *CPU, _ []byte) { c.A = c.read8(c.BC.Uint16()) }},
	0x0B: {"DEC BC", 1, 8, 0, func(c *CPU, _ []byte) {
		c.BC.SetUint16(c.BC.Uint16() - 1)
	}},
	0x0C: {"INC C", 1, 4, 0, func(c *CPU, _ []byte) { c.C = c.increment(c.C) }},
	0x0D: {"DEC C", 1, 4, 0, func(c *CPU, _ []byte) { c.C = c.decrement(c.C) }},
	0x0E: {"LD C, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.C = operands[0] }},
	0x0F: {"RRCA", 1, 4, 0, func(c *CPU, _ []byte) { c.rotateRightAccumulator() }},

	// low power states; the second byte of STOP is skipped
	0x10: {"STOP", 2, 4, 0, func(c *CPU, _ []byte) { c.halted = true }},
	0x11: {"LD DE, d16", 3, 12, 0, func(c *CPU, operands []byte) {
		c.E, c.D = operands[0], operands[1]
	}},
	0x12: {"LD (DE), A", 1, 8, 0, func(c *CPU, _ []byte) {
		c.write8(c.DE.Uint16(), c.A)
	}},
	0x13: {"INC DE", 1, 8, 0, func(c *CPU, _ []byte) {
		c.DE.SetUint16(c.DE.Uint16() + 1)
	}},
	0x14: {"INC D", 1, 4, 0, func(c *CPU, _ []byte) { c.D = c.increment(c.D) }},
	0x15: {"DEC D", 1, 4, 0, func(c *CPU, _ []byte) { c.D = c.decrement(c.D) }},
	0x16: {"LD D, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.D = operands[0] }},
	0x17: {"RLA", 1, 4, 0, func(c *CPU, _ []byte) { c.rotateLeftAccumulatorThroughCarry() }},
	0x18: {"JR r8", 2, 12, 0, func(c *CPU, operands []byte) {
		c.jumpRelative(true, operands[0])
	}},
	0x19: {"ADD HL, DE", 1, 8, 0, func(c *CPU, _ []byte) { c.addHL(c.DE.Uint16()) }},
	0x1A: {"LD A, (DE)", 1, 8, 0, func(c *CPU, _ []byte) { c.A = c.read8(c.DE.Uint16()) }},
	0x1B: {"DEC DE", 1, 8, 0, func(c *CPU, _ []byte) {
		c.DE.SetUint16(c.DE.Uint16() - 1)
	}},
	0x1C: {"INC E", 1, 4, 0, func(c *CPU, _ []byte) { c.E = c.increment(c.E) }},
	0x1D: {"DEC E", 1, 4, 0, func(c *CPU, _ []byte) { c.E = c.decrement(c.E) }},
	0x1E: {"LD E, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.E = operands[0] }},
	0x1F: {"RRA", 1, 4, 0, func(c *CPU, _ []byte) { c.rotateRightAccumulatorThroughCarry() }},

	0x20: {"JR NZ, r8", 2, 8, 4, func(c *CPU, operands []byte) {
		c.jumpRelative(!c.isFlagSet(FlagZero), operands[0])
	}},
	0x21: {"LD HL, d16", 3, 12, 0, func(c *CPU, operands []byte) {
		c.L, c.H = operands[0], operands[1]
	}},
	0x22: {"LD (HL+), A", 1, 8, 0, func(c *CPU, _ []byte) {
		c.write8(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}},
	0x23: {"INC HL", 1, 8, 0, func(c *CPU, _ []byte) {
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}},
	0x24: {"INC H", 1, 4, 0, func(c *CPU, _ []byte) { c.H = c.increment(c.H) }},
	0x25: {"DEC H", 1, 4, 0, func(c *CPU, _ []byte) { c.H = c.decrement(c.H) }},
	0x26: {"LD H, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.H = operands[0] }},
	0x27: {"DAA", 1, 4, 0, func(c *CPU, _ []byte) { c.daa() }},
	0x28: {"JR Z, r8", 2, 8, 4, func(c *CPU, operands []byte) {
		c.jumpRelative(c.isFlagSet(FlagZero), operands[0])
	}},
	0x29: {"ADD HL, HL", 1, 8, 0, func(c *CPU, _ []byte) { c.addHL(c.HL.Uint16()) }},
	0x2A: {"LD A, (HL+)", 1, 8, 0, func(c *CPU, _ []byte) {
		c.A = c.read8(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}},
	0x2B: {"DEC HL", 1, 8, 0, func(c *CPU, _ []byte) {
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}},
	0x2C: {"INC L", 1, 4, 0, func(c *CPU, _ []byte) { c.L = c.increment(c.L) }},
	0x2D: {"DEC L", 1, 4, 0, func(c *CPU, _ []byte) { c.L = c.decrement(c.L) }},
	0x2E: {"LD L, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.L = operands[0] }},
	0x2F: {"CPL", 1, 4, 0, func(c *CPU, _ []byte) { c.complement() }},

	0x30: {"JR NC, r8", 2, 8, 4, func(c *CPU, operands []byte) {
		c.jumpRelative(!c.isFlagSet(FlagCarry), operands[0])
	}},
	0x31: {"LD SP, d16", 3, 12, 0, func(c *CPU, operands []byte) {
		c.SP = uint16(operands[1])<<8 | uint16(operands[0])
	}},
	0x32: {"LD (HL-), A", 1, 8, 0, func(c *CPU, _ []byte) {
		c.write8(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}},
	0x33: {"INC SP", 1, 8, 0, func(c *CPU, _ []byte) { c.SP++ }},
	0x34: {"INC (HL)", 1, 12, 0, func(c *CPU, _ []byte) {
		c.write8(c.HL.Uint16(), c.increment(c.read8(c.HL.Uint16())))
	}},
	0x35: {"DEC (HL)", 1, 12, 0, func(c *CPU, _ []byte) {
		c.write8(c.HL.Uint16(), c.decrement(c.read8(c.HL.Uint16())))
	}},
	0x36: {"LD (HL), d8", 2, 12, 0, func(c *CPU, operands []byte) {
		c.write8(c.HL.Uint16(), operands[0])
	}},
	0x37: {"SCF", 1, 4, 0, func(c *CPU, _ []byte) { c.setCarry() }},
	0x38: {"JR C, r8", 2, 8, 4, func(c *CPU, operands []byte) {
		c.jumpRelative(c.isFlagSet(FlagCarry), operands[0])
	}},
	0x39: {"ADD HL, SP", 1, 8, 0, func(c *CPU, _ []byte) { c.addHL(c.SP) }},
	0x3A: {"LD A, (HL-)", 1, 8, 0, func(c *CPU, _ []byte) {
		c.A = c.read8(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}},
	0x3B: {"DEC SP", 1, 8, 0, func(c *CPU, _ []byte) { c.SP-- }},
	0x3C: {"INC A", 1, 4, 0, func(c *CPU, _ []byte) { c.A = c.increment(c.A) }},
	0x3D: {"DEC A", 1, 4, 0, func(c *CPU, _ []byte) { c.A = c.decrement(c.A) }},
	0x3E: {"LD A, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.A = operands[0] }},
	0x3F: {"CCF", 1, 4, 0, func(c *CPU, _ []byte) { c.complementCarry() }},

	0x76: {"HALT", 1, 4, 0, func(c *CPU, _ []byte) { c.halted = true }},

	0xC0: {"RET NZ", 1, 8, 12, func(c *CPU, _ []byte) { c.ret(!c.isFlagSet(FlagZero)) }},
	0xC1: {"POP BC", 1, 12, 0, func(c *CPU, _ []byte) { c.BC.SetUint16(c.pop()) }},
	0xC2: {"JP NZ, a16", 3, 12, 4, func(c *CPU, operands []byte) {
		c.jumpAbsolute(!c.isFlagSet(FlagZero), operands)
	}},
	0xC3: {"JP a16", 3, 16, 0, func(c *CPU, operands []byte) {
		c.jumpAbsolute(true, operands)
	}},
	0xC4: {"CALL NZ, a16", 3, 12, 12, func(c *CPU, operands []byte) {
		c.call(!c.isFlagSet(FlagZero), operands)
	}},
	0xC5: {"PUSH BC", 1, 16, 0, func(c *CPU, _ []byte) { c.push(c.BC.Uint16()) }},
	0xC6: {"ADD A, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.addN(operands[0]) }},
	0xC7: {"RST 00H", 1, 16, 0, func(c *CPU, _ []byte) { c.rst(0x00) }},
	0xC8: {"RET Z", 1, 8, 12, func(c *CPU, _ []byte) { c.ret(c.isFlagSet(FlagZero)) }},
	0xC9: {"RET", 1, 16, 0, func(c *CPU, _ []byte) { c.ret(true) }},
	0xCA: {"JP Z, a16", 3, 12, 4, func(c *CPU, operands []byte) {
		c.jumpAbsolute(c.isFlagSet(FlagZero), operands)
	}},
	// 0xCB is the prefix; Step dispatches into InstructionSetCB
	0xCC: {"CALL Z, a16", 3, 12, 12, func(c *CPU, operands []byte) {
		c.call(c.isFlagSet(FlagZero), operands)
	}},
	0xCD: {"CALL a16", 3, 24, 0, func(c *CPU, operands []byte) {
		c.call(true, operands)
	}},
	0xCE: {"ADC A, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.addNCarry(operands[0]) }},
	0xCF: {"RST 08H", 1, 16, 0, func(c *CPU, _ []byte) { c.rst(0x08) }},

	0xD0: {"RET NC", 1, 8, 12, func(c *CPU, _ []byte) { c.ret(!c.isFlagSet(FlagCarry)) }},
	0xD1: {"POP DE", 1, 12, 0, func(c *CPU, _ []byte) { c.DE.SetUint16(c.pop()) }},
	0xD2: {"JP NC, a16", 3, 12, 4, func(c *CPU, operands []byte) {
		c.jumpAbsolute(!c.isFlagSet(FlagCarry), operands)
	}},
	0xD4: {"CALL NC, a16", 3, 12, 12, func(c *CPU, operands []byte) {
		c.call(!c.isFlagSet(FlagCarry), operands)
	}},
	0xD5: {"PUSH DE", 1, 16, 0, func(c *CPU, _ []byte) { c.push(c.DE.Uint16()) }},
	0xD6: {"SUB d8", 2, 8, 0, func(c *CPU, operands []byte) { c.subtractN(operands[0]) }},
	0xD7: {"RST 10H", 1, 16, 0, func(c *CPU, _ []byte) { c.rst(0x10) }},
	0xD8: {"RET C", 1, 8, 12, func(c *CPU, _ []byte) { c.ret(c.isFlagSet(FlagCarry)) }},
	0xD9: {"RETI", 1, 16, 0, func(c *CPU, _ []byte) {
		c.ret(true)
		c.enableInterrupts()
	}},
	0xDA: {"JP C, a16", 3, 12, 4, func(c *CPU, operands []byte) {
		c.jumpAbsolute(c.isFlagSet(FlagCarry), operands)
	}},
	0xDC: {"CALL C, a16", 3, 12, 12, func(c *CPU, operands []byte) {
		c.call(c.isFlagSet(FlagCarry), operands)
	}},
	0xDE: {"SBC A, d8", 2, 8, 0, func(c *CPU, operands []byte) { c.subtractNCarry(operands[0]) }},
	0xDF: {"RST 18H", 1, 16, 0, func(c *CPU, _ []byte) { c.rst(0x18) }},

	0xE0: {"LDH (a8), A", 2, 12, 0, func(c *CPU, operands []byte) {
		c.write8(0xFF00+uint16(operands[0]), c.A)
	}},
	0xE1: {"POP HL", 1, 12, 0, func(c *CPU, _ []byte) { c.HL.SetUint16(c.pop()) }},
	0xE2: {"LD (C), A", 1, 8, 0, func(c *CPU, _ []byte) {
		c.write8(0xFF00+uint16(c.C), c.A)
	}},
	0xE5: {"PUSH HL", 1, 16, 0, func(c *CPU, _ []byte) { c.push(c.HL.Uint16()) }},
	0xE6: {"AND d8", 2, 8, 0, func(c *CPU, operands []byte) { c.and(operands[0]) }},
	0xE7: {"RST 20H", 1, 16, 0, func(c *CPU, _ []byte) { c.rst(0x20) }},
	0xE8: {"ADD SP, r8", 2, 16, 0, func(c *CPU, operands []byte) {
		c.SP = c.addSPSigned(operands[0])
	}},
	0xE9: {"JP (HL)", 1, 4, 0, func(c *CPU, _ []byte) { c.PC = c.HL.Uint16() }},
	0xEA: {"LD (a16), A", 3, 16, 0, func(c *CPU, operands []byte) {
		c.write8(uint16(operands[1])<<8|uint16(operands[0]), c.A)
	}},
	0xEE: {"XOR d8", 2, 8, 0, func(c *CPU, operands []byte) { c.xor(operands[0]) }},
	0xEF: {"RST 28H", 1, 16, 0, func(c *CPU, _ []byte) { c.rst(0x28) }},

	0xF0: {"LDH A, (a8)", 2, 12, 0, func(c *CPU, operands []byte) {
		c.A = c.read8(0xFF00 + uint16(operands[0]))
	}},
	0xF1: {"POP AF", 1, 12, 0, func(c *CPU, _ []byte) {
		c.AF.SetUint16(c.pop())
		c.F &= 0xF0 // the low nibble of F never holds bits
	}},
	0xF2: {"LD A, (C)", 1, 8, 0, func(c *CPU, _ []byte) {
		c.A = c.read8(0xFF00 + uint16(c.C))
	}},
	0xF3: {"DI", 1, 4, 0, func(c *CPU, _ []byte) { c.disableInterrupts() }},
	0xF5: {"PUSH AF", 1, 16, 0, func(c *CPU, _ []byte) { c.push(c.AF.Uint16()) }},
	0xF6: {"OR d8", 2, 8, 0, func(c *CPU, operands []byte) { c.or(operands[0]) }},
	0xF7: {"RST 30H", 1, 16, 0, func(c *CPU, _ []byte) { c.rst(0x30) }},
	0xF8: {"LD HL, SP+r8", 2, 12, 0, func(c *CPU, operands []byte) {
		c.HL.SetUint16(c.addSPSigned(operands[0]))
	}},
	0xF9: {"LD SP, HL", 1, 8, 0, func(c *CPU, _ []byte) { c.SP = c.HL.Uint16() }},
	0xFA: {"LD A, (a16)", 3, 16, 0, func(c *CPU, operands []byte) {
		c.A = c.read8(uint16(operands[1])<<8 | uint16(operands[0]))
	}},
	0xFB: {"EI", 1, 4, 0, func(c *CPU, _ []byte) { c.enableInterrupts() }},
	0xFE: {"CP d8", 2, 8, 0, func(c *CPU, operands []byte) { c.compare(operands[0]) }},
	0xFF: {"RST 38H", 1, 16, 0, func(c *CPU, _ []byte) { c.rst(0x38) }},
}

// enableInterrupts sets IME and queues a dispatch check at the
// current cycle.
func (c *CPU) enableInterrupts() {
	c.irq.IME = true
	c.s.ScheduleEvent(scheduler.HandleInterrupts, 0)
}

// disableInterrupts clears IME.
func (c *CPU) disableInterrupts() {
	c.irq.IME = false
}

// registerNames indexes the 3-bit register encoding; index 6 is the
// memory pseudo register.
var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// init fills the regular blocks of the primary table: the 8-bit
// loads at 0x40-0x7F and the accumulator arithmetic at 0x80-0xBF.
func init() {
	generateLoadInstructions()
	generateArithmeticInstructions()
	generateCBInstructions()
}

func generateLoadInstructions() {
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 + dst*8 + src
			if opcode == 0x76 {
				continue // HALT lives in the middle of the block
			}
			name := "LD " + registerNames[dst] + ", " + registerNames[src]

			switch {
			case dst == 6:
				src := src
				InstructionSet[opcode] = Instruction{name, 1, 8, 0, func(c *CPU, _ []byte) {
					c.write8(c.HL.Uint16(), *c.registerIndex(src))
				}}
			case src == 6:
				dst := dst
				InstructionSet[opcode] = Instruction{name, 1, 8, 0, func(c *CPU, _ []byte) {
					*c.registerIndex(dst) = c.read8(c.HL.Uint16())
				}}
			default:
				dst, src := dst, src
				InstructionSet[opcode] = Instruction{name, 1, 4, 0, func(c *CPU, _ []byte) {
					*c.registerIndex(dst) = *c.registerIndex(src)
				}}
			}
		}
	}
}

// aluOps maps each block of eight opcodes at 0x80-0xBF to its
// accumulator operation.
var aluOps = [8]struct {
	name string
	fn   func(c *CPU, value uint8)
}{
	{"ADD A,", func(c *CPU, v uint8) { c.addN(v) }},
	{"ADC A,", func(c *CPU, v uint8) { c.addNCarry(v) }},
	{"SUB", func(c *CPU, v uint8) { c.subtractN(v) }},
	{"SBC A,", func(c *CPU, v uint8) { c.subtractNCarry(v) }},
	{"AND", func(c *CPU, v uint8) { c.and(v) }},
	{"XOR", func(c *CPU, v uint8) { c.xor(v) }},
	{"OR", func(c *CPU, v uint8) { c.or(v) }},
	{"CP", func(c *CPU, v uint8) { c.compare(v) }},
}

func generateArithmeticInstructions() {
	for op := uint8(0); op < 8; op++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x80 + op*8 + src
			name := aluOps[op].name + " " + registerNames[src]
			fn := aluOps[op].fn

			if src == 6 {
				InstructionSet[opcode] = Instruction{name, 1, 8, 0, func(c *CPU, _ []byte) {
					fn(c, c.read8(c.HL.Uint16()))
				}}
			} else {
				src := src
				InstructionSet[opcode] = Instruction{name, 1, 4, 0, func(c *CPU, _ []byte) {
					fn(c, *c.registerIndex(src))
				}}
			}
		}
	}
}
