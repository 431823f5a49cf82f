// Package cpu provides the instruction interpreter: the register
// file, the flag bank, both opcode tables and the interrupt dispatch
// protocol.
package cpu

import (
	"fmt"

	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/mmu"
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

// ClockSpeed is the clock rate in cycles per second.
const ClockSpeed = 4194304

// interruptDispatchCycles is the cost of vectoring through the
// interrupt table.
const interruptDispatchCycles = 20

// CPU executes instructions against the memory map and reacts to
// the interrupt controller between them.
type CPU struct {
	Registers
	PC uint16
	SP uint16

	halted bool

	// crashMessage is sticky: once the interpreter hits an opcode it
	// cannot execute, it reports the reason here and refuses to run
	// until a debugger clears it.
	crashMessage string

	// callStack shadows CALL/RST/interrupt dispatch and RET, for
	// debugger consumption only.
	callStack []uint16

	// branched is set by conditional instructions when taken, so the
	// surcharge from the instruction table is applied.
	branched bool

	// extraCycles accumulates costs incurred outside instruction
	// execution, such as interrupt dispatch.
	extraCycles uint8

	bus *mmu.MMU
	irq *interrupts.Service
	s   *scheduler.Scheduler
}

// NewCPU returns a CPU executing against the given memory map. The
// interrupt dispatch handler is registered on the scheduler here.
func NewCPU(bus *mmu.MMU, irq *interrupts.Service, s *scheduler.Scheduler) *CPU {
	c := &CPU{
		bus: bus,
		irq: irq,
		s:   s,
	}
	c.BC = &RegisterPair{&c.B, &c.C}
	c.DE = &RegisterPair{&c.D, &c.E}
	c.HL = &RegisterPair{&c.H, &c.L}
	c.AF = &RegisterPair{&c.A, &c.F}

	s.RegisterEvent(scheduler.HandleInterrupts, c.handleInterrupts)

	return c
}

// Crashed returns the sticky crash message, or "" while the CPU is
// healthy.
func (c *CPU) Crashed() string {
	return c.crashMessage
}

// ClearCrash resets the crash state; the debugger uses this to
// resume after inspecting a fault.
func (c *CPU) ClearCrash() {
	c.crashMessage = ""
}

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool {
	return c.halted
}

// CallStack returns the shadow stack of return addresses, most
// recent last. Debugger interface only.
func (c *CPU) CallStack() []uint16 {
	return c.callStack
}

func (c *CPU) crash(format string, args ...interface{}) {
	c.crashMessage = fmt.Sprintf(format, args...)
}

// Step executes one instruction, or burns four cycles while halted
// or crashed, and returns the cycles consumed.
func (c *CPU) Step() uint8 {
	cycles := c.extraCycles
	c.extraCycles = 0

	if c.crashMessage != "" {
		return cycles + 4
	}
	if c.halted {
		// halt ends as soon as an interrupt is both flagged and
		// enabled, no matter the IME state
		if !c.irq.Pending() {
			return cycles + 4
		}
		c.halted = false
	}

	opcode := c.bus.Read(c.PC)
	instr := InstructionSet[opcode]
	if opcode == 0xCB {
		instr = InstructionSetCB[c.bus.Read(c.PC+1)]
	}
	if instr.Execute == nil {
		c.crash("unknown opcode %#02x at %#04x", opcode, c.PC)
		return cycles + 4
	}

	var operands [2]byte
	for i := uint16(1); i < uint16(instr.Length); i++ {
		operands[i-1] = c.bus.Read(c.PC + i)
	}
	c.PC += uint16(instr.Length)

	c.branched = false
	instr.Execute(c, operands[:])

	cycles += instr.Cycles
	if c.branched {
		cycles += instr.BranchCycles
	}
	return cycles
}

// handleInterrupts runs as a scheduler event, so dispatch can only
// preempt the CPU at an instruction boundary.
func (c *CPU) handleInterrupts() {
	if !c.irq.Pending() {
		return
	}
	// a pending, enabled interrupt releases halt even with IME off
	c.halted = false
	if !c.irq.IME {
		return
	}

	for i := uint8(0); i < 5; i++ {
		mask := uint8(1) << i
		if c.irq.Flag&c.irq.Enable&mask == 0 {
			continue
		}
		c.dispatchInterrupt(i, mask)
		break
	}
}

func (c *CPU) dispatchInterrupt(source uint8, mask uint8) {
	returnAddress := c.PC

	c.SP--
	c.bus.Write(c.SP, uint8(returnAddress>>8))
	c.SP--
	c.bus.Write(c.SP, uint8(returnAddress))

	// pushing the high byte can land on the enable register itself;
	// when that write cleared this source, the jump goes to 0x0000
	// and the request stays flagged in IF
	if c.irq.Enable&mask == 0 {
		c.PC = 0x0000
	} else {
		c.PC = interrupts.Vectors[source]
		c.callStack = append(c.callStack, returnAddress)
		c.irq.Flag &^= mask
	}

	c.irq.IME = false
	c.extraCycles += interruptDispatchCycles
}

// read8 loads a byte through the memory map.
func (c *CPU) read8(address uint16) uint8 {
	return c.bus.Read(address)
}

// write8 stores a byte through the memory map.
func (c *CPU) write8(address uint16, value uint8) {
	c.bus.Write(address, value)
}

// read16 loads a 16-bit value as two byte accesses, low first.
func (c *CPU) read16(address uint16) uint16 {
	return uint16(c.read8(address)) | uint16(c.read8(address+1))<<8
}

// write16 stores a 16-bit value as two byte accesses, low first.
func (c *CPU) write16(address uint16, value uint16) {
	c.write8(address, uint8(value))
	c.write8(address+1, uint8(value>>8))
}

// push stores a 16-bit value on the stack, high byte first.
func (c *CPU) push(value uint16) {
	c.SP--
	c.write8(c.SP, uint8(value>>8))
	c.SP--
	c.write8(c.SP, uint8(value))
}

// pop removes a 16-bit value from the stack, low byte first.
func (c *CPU) pop() uint16 {
	low := c.read8(c.SP)
	c.SP++
	high := c.read8(c.SP)
	c.SP++
	return uint16(high)<<8 | uint16(low)
}

var _ types.Stater = (*CPU)(nil)

func (c *CPU) Save(s *types.State) {
	s.Write8(c.A)
	s.Write8(c.F)
	s.Write8(c.B)
	s.Write8(c.C)
	s.Write8(c.D)
	s.Write8(c.E)
	s.Write8(c.H)
	s.Write8(c.L)
	s.Write16(c.SP)
	s.Write16(c.PC)
	s.WriteBool(c.halted)
	s.Write16(uint16(len(c.callStack)))
	for _, addr := range c.callStack {
		s.Write16(addr)
	}
}

func (c *CPU) Load(s *types.State) {
	c.A = s.Read8()
	c.F = s.Read8()
	c.B = s.Read8()
	c.C = s.Read8()
	c.D = s.Read8()
	c.E = s.Read8()
	c.H = s.Read8()
	c.L = s.Read8()
	c.SP = s.Read16()
	c.PC = s.Read16()
	c.halted = s.ReadBool()
	n := int(s.Read16())
	c.callStack = make([]uint16, n)
	for i := 0; i < n; i++ {
		c.callStack[i] = s.Read16()
	}
}
