package gameboy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellified/dotmatrix/internal/joypad"
	"github.com/mellified/dotmatrix/internal/ppu"
	"github.com/mellified/dotmatrix/internal/types"
)

// testROM builds a minimal two-bank image whose entry point runs the
// given code, falling into a tight loop afterwards.
func testROM(t *testing.T, code ...byte) []byte {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:], "GBTEST")
	rom[0x0147] = 0x00 // no controller
	rom[0x0148] = 0x00 // two banks
	rom[0x0149] = 0x00 // no RAM
	copy(rom[0x0100:], code)
	// jump back to the start of the staged code
	end := 0x0100 + len(code)
	rom[end] = 0xC3
	rom[end+1] = 0x00
	rom[end+2] = 0x01
	return rom
}

func newTestGB(t *testing.T, code ...byte) *GameBoy {
	t.Helper()
	g, err := NewGameBoy(testROM(t, code...))
	require.NoError(t, err)
	return g
}

func TestGameBoy_PostBootState(t *testing.T) {
	g := newTestGB(t)

	assert.Equal(t, uint16(0x01B0), g.CPU.AF.Uint16())
	assert.Equal(t, uint16(0x0013), g.CPU.BC.Uint16())
	assert.Equal(t, uint16(0x00D8), g.CPU.DE.Uint16())
	assert.Equal(t, uint16(0x014D), g.CPU.HL.Uint16())
	assert.Equal(t, uint16(0xFFFE), g.CPU.SP)
	assert.Equal(t, uint16(0x0100), g.CPU.PC)

	assert.Equal(t, uint8(0x91), g.MMU.Read(0xFF40), "display on after boot")
	assert.Equal(t, uint8(0xFC), g.MMU.Read(0xFF47))
}

func TestGameBoy_TickAdvancesTime(t *testing.T) {
	g := newTestGB(t, 0x00) // NOP

	before := g.Scheduler.Cycle()
	cycles := g.Tick()
	assert.Equal(t, uint8(4), cycles)
	assert.Equal(t, before+4, g.Scheduler.Cycle())
}

func TestGameBoy_RunFrameCompletesAFrame(t *testing.T) {
	g := newTestGB(t)

	frames := 0
	g.SetVideoSink(func(frame *[144][160]uint8, bgp, obp0, obp1 ppu.Palette) {
		frames++
	})

	g.RunFrame()
	assert.Equal(t, 1, frames)
}

func TestGameBoy_StateHashDeterministic(t *testing.T) {
	a := newTestGB(t)
	b := newTestGB(t)

	require.Equal(t, a.StateHash(), b.StateHash(), "fresh cores must hash identically")

	for i := 0; i < 100; i++ {
		a.Tick()
		b.Tick()
	}
	assert.Equal(t, a.StateHash(), b.StateHash(), "lockstep runs stay identical")
}

func TestGameBoy_SaveLoadRoundTrip(t *testing.T) {
	g := newTestGB(t)

	// run a while, snapshot, run on, rewind, run the same stretch
	for i := 0; i < 5000; i++ {
		g.Tick()
	}
	snapshot := g.SaveState()

	for i := 0; i < 3000; i++ {
		g.Tick()
	}
	first := g.StateHash()

	require.NoError(t, g.LoadState(snapshot))
	for i := 0; i < 3000; i++ {
		g.Tick()
	}
	assert.Equal(t, first, g.StateHash(), "replayed stretch reaches the same state")
}

func TestGameBoy_SaveLoadIdempotent(t *testing.T) {
	g := newTestGB(t)
	for i := 0; i < 1000; i++ {
		g.Tick()
	}

	first := g.SaveState()
	require.NoError(t, g.LoadState(first))
	second := g.SaveState()
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestGameBoy_LoadStateRejectsWrongCartridge(t *testing.T) {
	g := newTestGB(t)
	st := g.SaveState()

	otherROM := testROM(t)
	otherROM[0x2000] = 0xAB // different image content
	other, err := NewGameBoy(otherROM)
	require.NoError(t, err)

	err = other.LoadState(st)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCodec)
}

func TestGameBoy_LoadStateRejectsGarbage(t *testing.T) {
	g := newTestGB(t)

	err := g.LoadState(types.StateFromBytes([]byte{0x01, 0x02}))
	assert.ErrorIs(t, err, ErrCodec)
}

func TestGameBoy_Breakpoint(t *testing.T) {
	g := newTestGB(t, 0x00, 0x00) // NOP; NOP; JP 0x0100

	g.SetBreakpoint(0x0102)
	g.RunFrame()
	assert.True(t, g.HitBreakpoint)
	assert.Equal(t, uint16(0x0102), g.CPU.PC)

	g.ClearBreakpoint(0x0102)
	assert.False(t, g.HitBreakpoint)
}

func TestGameBoy_InterruptedPredicateStopsRun(t *testing.T) {
	g := newTestGB(t)

	calls := 0
	g.SetInterrupted(func() bool {
		calls++
		return calls > 10
	})
	g.RunFrame()
	assert.Equal(t, 11, calls, "run returned at the first true")
}

func TestGameBoy_KeyEventsReachJoypad(t *testing.T) {
	g := newTestGB(t)

	g.DeliverKeyEvents([]joypad.Event{{Button: joypad.ButtonStart, Pressed: true}})
	// select the button bank, then run past the next joypad poll
	g.MMU.Write(0xFF00, 0x10)
	for i := 0; i < 200; i++ {
		g.Tick()
	}

	v := g.MMU.Read(0xFF00)
	assert.Zero(t, v&0x08, "start reads as 0 once polled")
}

func TestGameBoy_ReplayRecordsAndReplays(t *testing.T) {
	rec, err := NewGameBoy(testROM(t), WithReplayRecording())
	require.NoError(t, err)

	rec.DeliverKeyEvents([]joypad.Event{{Button: joypad.ButtonA, Pressed: true}})
	for i := 0; i < 500; i++ {
		rec.Tick()
	}
	replay := rec.ReplayBytes()
	require.NotEmpty(t, replay)

	play, err := NewGameBoy(testROM(t), WithReplayPlayback(replay))
	require.NoError(t, err)
	play.MMU.Write(0xFF00, 0x10)
	for i := 0; i < 1000; i++ {
		play.Tick()
	}
	v := play.MMU.Read(0xFF00)
	assert.Zero(t, v&0x01, "replayed press of A visible on the wire")
}

func TestGameBoy_CrashIsSticky(t *testing.T) {
	g := newTestGB(t, 0xD3) // hole in the opcode space

	g.RunFrame()
	assert.Contains(t, g.CPU.Crashed(), "unknown opcode")
}
