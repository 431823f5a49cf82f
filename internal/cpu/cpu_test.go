package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellified/dotmatrix/internal/cartridge"
	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/mmu"
	"github.com/mellified/dotmatrix/internal/scheduler"
)

// stubDevice backs a handful of ports during CPU tests.
type stubDevice struct{ data map[uint16]uint8 }

func newStubDevice() *stubDevice { return &stubDevice{data: map[uint16]uint8{}} }

func (d *stubDevice) Read(address uint16) uint8 {
	if v, ok := d.data[address]; ok {
		return v
	}
	return 0xFF
}

func (d *stubDevice) Write(address uint16, value uint8) { d.data[address] = value }

type testSystem struct {
	cpu *CPU
	bus *mmu.MMU
	s   *scheduler.Scheduler
	irq *interrupts.Service
}

// newTestCPU wires a CPU against internal RAM; programs are staged
// at 0xC000 since the cartridge window is read only.
func newTestCPU(t *testing.T) *testSystem {
	t.Helper()
	s := scheduler.NewScheduler()
	irq := interrupts.NewService(s)
	bus := mmu.NewMMU(cartridge.NewEmptyCartridge(), irq, nil)
	bus.AttachJoypad(newStubDevice())
	bus.AttachSerial(newStubDevice())
	bus.AttachTimer(newStubDevice())
	bus.AttachVideo(newStubDevice())
	bus.AttachSound(newStubDevice())

	c := NewCPU(bus, irq, s)
	c.PC = 0xC000
	c.SP = 0xDFFE
	return &testSystem{cpu: c, bus: bus, s: s, irq: irq}
}

// load stages a program at 0xC000.
func (ts *testSystem) load(program ...byte) {
	for i, b := range program {
		ts.bus.Write(0xC000+uint16(i), b)
	}
}

// step executes one instruction and drains due events.
func (ts *testSystem) step() uint8 {
	cycles := ts.cpu.Step()
	ts.s.Tick(uint64(cycles))
	return cycles
}

func TestCPU_TableShape(t *testing.T) {
	for opcode, instr := range InstructionSet {
		if instr.Execute == nil {
			continue
		}
		assert.NotEmpty(t, instr.Name, "opcode %#02x", opcode)
		assert.Contains(t, []uint8{1, 2, 3}, instr.Length, "opcode %#02x", opcode)
		assert.NotZero(t, instr.Cycles, "opcode %#02x", opcode)
	}
	for opcode, instr := range InstructionSetCB {
		require.NotNil(t, instr.Execute, "prefixed opcode %#02x missing", opcode)
		assert.Equal(t, uint8(2), instr.Length, "prefixed opcode %#02x", opcode)
	}
}

// every non-control-flow instruction must advance PC by exactly its
// decoded size.
func TestCPU_SizeMatchesConsumedBytes(t *testing.T) {
	controlFlow := map[uint8]bool{
		0x18: true, 0x20: true, 0x28: true, 0x30: true, 0x38: true,
		0xC0: true, 0xC2: true, 0xC3: true, 0xC4: true, 0xC7: true,
		0xC8: true, 0xC9: true, 0xCA: true, 0xCC: true, 0xCD: true, 0xCF: true,
		0xD0: true, 0xD2: true, 0xD4: true, 0xD7: true, 0xD8: true,
		0xD9: true, 0xDA: true, 0xDC: true, 0xDF: true,
		0xE7: true, 0xE9: true, 0xEF: true,
		0xF7: true, 0xFF: true,
		0x76: true, 0x10: true, // halt states
	}

	for opcode := 0; opcode < 256; opcode++ {
		instr := InstructionSet[opcode]
		if instr.Execute == nil || controlFlow[uint8(opcode)] {
			continue
		}
		ts := newTestCPU(t)
		ts.load(uint8(opcode), 0x00, 0x00)
		ts.step()
		assert.Equal(t, uint16(0xC000)+uint16(instr.Length), ts.cpu.PC, "opcode %#02x (%s)", opcode, instr.Name)
	}
}

func TestCPU_UnknownOpcodeCrashes(t *testing.T) {
	ts := newTestCPU(t)
	ts.load(0xD3)

	ts.step()
	assert.Contains(t, ts.cpu.Crashed(), "unknown opcode")

	// crash is sticky: the CPU idles instead of executing
	pc := ts.cpu.PC
	assert.Equal(t, uint8(4), ts.step())
	assert.Equal(t, pc, ts.cpu.PC)

	ts.cpu.ClearCrash()
	assert.Empty(t, ts.cpu.Crashed())
}

func TestCPU_FlagLowNibbleAlwaysZero(t *testing.T) {
	ts := newTestCPU(t)

	// POP AF with a poisoned low nibble on the stack
	ts.cpu.SP = 0xD000
	ts.bus.Write(0xD000, 0xFF)
	ts.bus.Write(0xD001, 0x12)
	ts.load(0xF1)
	ts.step()

	assert.Equal(t, uint8(0xF0), ts.cpu.F)
	assert.Equal(t, uint8(0x12), ts.cpu.A)
}

func TestCPU_HaltBurnsFourCycles(t *testing.T) {
	ts := newTestCPU(t)
	ts.load(0x76)
	ts.step()
	require.True(t, ts.cpu.Halted())

	assert.Equal(t, uint8(4), ts.step())
	assert.True(t, ts.cpu.Halted())
}

func TestCPU_HaltReleasedByPendingInterrupt(t *testing.T) {
	ts := newTestCPU(t)
	ts.load(0x76, 0x00) // HALT; NOP

	ts.step()
	require.True(t, ts.cpu.Halted())

	// flagged and enabled, IME off: halt ends, no dispatch
	ts.irq.Enable = 1 << interrupts.TimerFlag
	ts.irq.Request(interrupts.TimerFlag)
	ts.s.Tick(0)
	ts.step()

	assert.False(t, ts.cpu.Halted())
	assert.Equal(t, uint16(0xC002), ts.cpu.PC, "NOP after HALT executed")
}

func TestCPU_LoadBetweenRegisters(t *testing.T) {
	ts := newTestCPU(t)
	ts.cpu.B = 0x42
	ts.load(0x78) // LD A, B
	ts.step()
	assert.Equal(t, uint8(0x42), ts.cpu.A)
}

func TestCPU_LoadThroughHL(t *testing.T) {
	ts := newTestCPU(t)
	ts.cpu.HL.SetUint16(0xD100)
	ts.bus.Write(0xD100, 0x99)

	ts.load(0x7E) // LD A, (HL)
	ts.step()
	assert.Equal(t, uint8(0x99), ts.cpu.A)

	ts.cpu.A = 0x55
	ts.load(0x77) // LD (HL), A
	ts.cpu.PC = 0xC000
	ts.step()
	assert.Equal(t, uint8(0x55), ts.bus.Read(0xD100))
}

func TestCPU_SixteenBitLoadsAreLittleEndian(t *testing.T) {
	ts := newTestCPU(t)
	ts.cpu.SP = 0xABCD
	ts.load(0x08, 0x00, 0xD1) // LD (a16), SP
	ts.step()

	assert.Equal(t, uint8(0xCD), ts.bus.Read(0xD100), "low byte first")
	assert.Equal(t, uint8(0xAB), ts.bus.Read(0xD101))
}

func TestCPU_PushPopOrder(t *testing.T) {
	ts := newTestCPU(t)
	ts.cpu.SP = 0xD010
	ts.cpu.BC.SetUint16(0x1234)

	ts.load(0xC5) // PUSH BC
	ts.step()
	assert.Equal(t, uint16(0xD00E), ts.cpu.SP)
	assert.Equal(t, uint8(0x12), ts.bus.Read(0xD00F), "high byte at SP-1")
	assert.Equal(t, uint8(0x34), ts.bus.Read(0xD00E), "low byte at SP-2")

	ts.cpu.PC = 0xC000
	ts.load(0xD1) // POP DE
	ts.step()
	assert.Equal(t, uint16(0x1234), ts.cpu.DE.Uint16())
	assert.Equal(t, uint16(0xD010), ts.cpu.SP)
}

func TestCPU_PrefixedInstructions(t *testing.T) {
	ts := newTestCPU(t)
	ts.cpu.B = 0x80

	ts.load(0xCB, 0x00) // RLC B
	cycles := ts.step()
	assert.Equal(t, uint8(8), cycles)
	assert.Equal(t, uint8(0x01), ts.cpu.B)
	assert.True(t, ts.cpu.isFlagSet(FlagCarry))
	assert.Equal(t, uint16(0xC002), ts.cpu.PC)
}

func TestCPU_BitTest(t *testing.T) {
	ts := newTestCPU(t)
	ts.cpu.C = 0x08
	ts.cpu.setFlag(FlagCarry)

	ts.load(0xCB, 0x59) // BIT 3, C
	ts.step()
	assert.False(t, ts.cpu.isFlagSet(FlagZero))
	assert.True(t, ts.cpu.isFlagSet(FlagHalfCarry))
	assert.True(t, ts.cpu.isFlagSet(FlagCarry), "carry preserved by BIT")

	ts.cpu.PC = 0xC000
	ts.load(0xCB, 0x61) // BIT 4, C
	ts.step()
	assert.True(t, ts.cpu.isFlagSet(FlagZero))
}

func TestCPU_SaveLoadRoundTrip(t *testing.T) {
	ts := newTestCPU(t)
	ts.cpu.A = 0x11
	ts.cpu.F = 0xF0
	ts.cpu.HL.SetUint16(0x8001)
	ts.cpu.PC = 0x1234
	ts.cpu.callStack = []uint16{0x0150, 0x0200}

	st := newState(t, ts.cpu)

	other := newTestCPU(t)
	other.cpu.Load(st)
	assert.Equal(t, ts.cpu.A, other.cpu.A)
	assert.Equal(t, ts.cpu.F, other.cpu.F)
	assert.Equal(t, ts.cpu.PC, other.cpu.PC)
	assert.Equal(t, ts.cpu.callStack, other.cpu.CallStack())
}
