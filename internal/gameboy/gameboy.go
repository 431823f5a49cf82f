// Package gameboy assembles the emulation core: the CPU, the memory
// map, every device and the scheduler that sequences them. It owns
// the public surface a front-end drives.
package gameboy

import (
	"fmt"

	"github.com/mellified/dotmatrix/internal/apu"
	"github.com/mellified/dotmatrix/internal/cartridge"
	"github.com/mellified/dotmatrix/internal/cpu"
	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/joypad"
	"github.com/mellified/dotmatrix/internal/mmu"
	"github.com/mellified/dotmatrix/internal/ppu"
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/serial"
	"github.com/mellified/dotmatrix/internal/timer"
	"github.com/mellified/dotmatrix/pkg/log"
)

// ClockSpeed is the master clock in cycles per second.
const ClockSpeed = cpu.ClockSpeed

// FrameCycles is the length of one full display frame.
const FrameCycles = 456 * 154

// joypadPollPeriod is how often accumulated key events reach the
// joypad.
const joypadPollPeriod = 456

// stateMagic opens every save-state stream.
const stateMagic = 0x53474D44 // "DMGS"

const stateVersion = 1

// GameBoy is the assembled core. It is a single value owned by the
// host; nothing in here is a process-wide singleton.
type GameBoy struct {
	CPU        *cpu.CPU
	MMU        *mmu.MMU
	PPU        *ppu.PPU
	APU        *apu.APU
	Timer      *timer.Controller
	Serial     *serial.Controller
	Joypad     joypad.Joypad
	Interrupts *interrupts.Service
	Scheduler  *scheduler.Scheduler
	Cart       *cartridge.Cartridge

	log log.Logger

	pendingKeys []joypad.Event
	frameDone   bool
	onFrame     ppu.FrameCallback

	// interrupted is consulted between instructions so a debugger
	// can regain control of a long run.
	interrupted func() bool

	breakpoints map[uint16]bool

	// HitBreakpoint is set when execution stopped on a breakpoint.
	HitBreakpoint bool
}

// NewGameBoy builds a core around the given ROM image and brings it
// up in the post-BIOS state.
func NewGameBoy(rom []byte, opts ...Opt) (*GameBoy, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNull()
	}

	cartOpts := []cartridge.Option{cartridge.WithLogger(o.logger)}
	if o.savPath != "" {
		cartOpts = append(cartOpts, cartridge.WithSaveFile(o.savPath))
	}
	cart, err := cartridge.NewCartridge(rom, cartOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoverage, err)
	}

	g, err := build(cart, &o)
	if err != nil {
		return nil, err
	}
	g.reset()
	return g, nil
}

// build wires the components without touching their power-on state.
func build(cart *cartridge.Cartridge, o *options) (*GameBoy, error) {
	s := scheduler.NewScheduler()
	irq := interrupts.NewService(s)
	bus := mmu.NewMMU(cart, irq, o.logger)

	g := &GameBoy{
		MMU:         bus,
		APU:         apu.NewAPU(s),
		Timer:       timer.NewController(irq, s),
		Serial:      serial.NewController(irq, s),
		Interrupts:  irq,
		Scheduler:   s,
		Cart:        cart,
		log:         o.logger,
		breakpoints: map[uint16]bool{},
	}
	g.PPU = ppu.NewPPU(bus, irq, s)
	g.CPU = cpu.NewCPU(bus, irq, s)

	plain := joypad.NewPlain(irq)
	switch {
	case o.recordReplay:
		g.Joypad = joypad.NewRecorder(plain, cart.Title(), cart.Hash())
	case o.replayData != nil:
		player, err := joypad.NewPlayer(plain, o.replayData, cart.Hash(), o.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReplay, err)
		}
		g.Joypad = player
	default:
		g.Joypad = plain
	}

	bus.AttachJoypad(deviceAdapter{g.Joypad})
	bus.AttachSerial(g.Serial)
	bus.AttachTimer(g.Timer)
	bus.AttachVideo(g.PPU)
	bus.AttachSound(g.APU)

	if o.serialSink != nil {
		g.Serial.AttachSink(o.serialSink)
	}

	g.PPU.SetFrameCallback(func(frame *[ppu.ScreenHeight][ppu.ScreenWidth]uint8, bgp, obp0, obp1 ppu.Palette) {
		g.frameDone = true
		if g.onFrame != nil {
			g.onFrame(frame, bgp, obp0, obp1)
		}
	})

	s.RegisterEvent(scheduler.DriveJoypad, g.driveJoypad)
	s.ScheduleEvent(scheduler.DriveJoypad, joypadPollPeriod)

	return g, nil
}

// SetVideoSink installs the host video sink, invoked at most once
// per VBlank with the finished frame and the palettes in effect.
func (g *GameBoy) SetVideoSink(cb ppu.FrameCallback) {
	g.onFrame = cb
}

// reset puts the machine in the state a real BIOS leaves behind.
func (g *GameBoy) reset() {
	c := g.CPU
	c.AF.SetUint16(0x01B0)
	c.BC.SetUint16(0x0013)
	c.DE.SetUint16(0x00D8)
	c.HL.SetUint16(0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100

	g.Interrupts.Flag = 0x01

	for _, w := range postBootWrites {
		g.MMU.Write(w.address, w.value)
	}
}

// postBootWrites are the I/O port values the boot sequence leaves
// behind.
var postBootWrites = []struct {
	address uint16
	value   uint8
}{
	{0xFF26, 0x80}, // sound powered on before the channel registers
	{0xFF10, 0x80},
	{0xFF11, 0xBF},
	{0xFF12, 0xF3},
	{0xFF14, 0xBF},
	{0xFF16, 0x3F},
	{0xFF17, 0x00},
	{0xFF19, 0xBF},
	{0xFF1A, 0x7F},
	{0xFF1B, 0xFF},
	{0xFF1C, 0x9F},
	{0xFF1E, 0xBF},
	{0xFF20, 0xFF},
	{0xFF21, 0x00},
	{0xFF22, 0x00},
	{0xFF23, 0xBF},
	{0xFF24, 0x77},
	{0xFF25, 0xF3},
	{0xFF47, 0xFC}, // BGP
	{0xFF48, 0xFF}, // OBP0
	{0xFF49, 0xFF}, // OBP1
	{0xFF40, 0x91}, // LCDC last: switches the display on
}

// deviceAdapter exposes a Joypad as an MMU device.
type deviceAdapter struct{ joypad.Joypad }

func (g *GameBoy) driveJoypad() {
	g.Joypad.Tick(g.Scheduler.Cycle(), g.pendingKeys)
	g.pendingKeys = g.pendingKeys[:0]
	g.Scheduler.ScheduleEvent(scheduler.DriveJoypad, joypadPollPeriod)
}

// Tick executes one instruction, or a four cycle halt nudge, then
// delivers every event that has come due. It never blocks.
func (g *GameBoy) Tick() uint8 {
	cycles := g.CPU.Step()
	g.Scheduler.Tick(uint64(cycles))

	if len(g.breakpoints) > 0 && g.breakpoints[g.CPU.PC] {
		g.HitBreakpoint = true
	}
	return cycles
}

// RunFrame runs until the picture generator completes a frame. With
// the display off it falls back to two frames' worth of cycles. The
// run also ends early on a crash, a breakpoint or the interrupted
// predicate.
func (g *GameBoy) RunFrame() {
	g.frameDone = false
	start := g.Scheduler.Cycle()
	for !g.frameDone && g.Scheduler.Cycle()-start < FrameCycles*2 {
		g.Tick()
		if g.CPU.Crashed() != "" || g.HitBreakpoint {
			return
		}
		if g.interrupted != nil && g.interrupted() {
			return
		}
	}
}

// DeliverKeyEvents queues host key events; the joypad consumes them
// at its next polling tick.
func (g *GameBoy) DeliverKeyEvents(events []joypad.Event) {
	g.pendingKeys = append(g.pendingKeys, events...)
}

// SetInterrupted installs the predicate a debugger uses to stop a
// long run at the next instruction boundary.
func (g *GameBoy) SetInterrupted(fn func() bool) {
	g.interrupted = fn
}

// SetBreakpoint arms a breakpoint at the given address.
func (g *GameBoy) SetBreakpoint(address uint16) {
	g.breakpoints[address] = true
}

// ClearBreakpoint disarms a breakpoint.
func (g *GameBoy) ClearBreakpoint(address uint16) {
	delete(g.breakpoints, address)
	g.HitBreakpoint = false
}

// ReplayBytes returns the recording stream when the core was built
// with replay recording, else nil.
func (g *GameBoy) ReplayBytes() []byte {
	if r, ok := g.Joypad.(*joypad.Recorder); ok {
		return r.Bytes()
	}
	return nil
}
