// Package ppu provides the picture generator: the per-scanline mode
// state machine, the scanline renderer and the sprite attribute DMA
// engine.
package ppu

import (
	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/mmu"
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

const (
	// ScreenWidth is the width of the visible area in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the visible area in pixels.
	ScreenHeight = 144

	// visibleLines is the number of rendered scanlines per frame;
	// lines up to lastLine are the vertical blanking period.
	visibleLines = 144
	lastLine     = 153

	// per-line mode durations; one full line is 456 cycles
	mode2Cycles = 77
	mode3Cycles = 175
	mode0Cycles = 204
	lineCycles  = mode2Cycles + mode3Cycles + mode0Cycles

	// line 153 reports LY=0 after only 8 cycles
	line153Short = 8
)

// modes of the per-line state machine, visible in STAT bits 0-1.
const (
	modeHBlank uint8 = iota
	modeVBlank
	modeOAMSearch
	modePixelTransfer
)

// FrameCallback receives the finished frame at each VBlank, along
// with the palettes in effect.
type FrameCallback func(frame *[ScreenHeight][ScreenWidth]uint8, bgp, obp0, obp1 Palette)

// PPU owns video memory, sprite attribute memory and the display
// register file.
type PPU struct {
	// register file
	lcdc uint8
	stat uint8
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	vram [0x2000]byte
	oam  [0xA0]byte

	frame      [ScreenHeight][ScreenWidth]uint8
	windowLine uint8

	bus *mmu.MMU
	irq *interrupts.Service
	s   *scheduler.Scheduler

	// DMA is the sprite attribute DMA engine, mapped at 0xFF46.
	DMA *DMA

	onFrame FrameCallback
}

// NewPPU returns a picture generator bound to the given memory map,
// interrupt service and scheduler. The display starts disabled; the
// post-BIOS LCDC write brings it up.
func NewPPU(bus *mmu.MMU, irq *interrupts.Service, s *scheduler.Scheduler) *PPU {
	p := &PPU{
		bus: bus,
		irq: irq,
		s:   s,
	}
	p.DMA = NewDMA(bus, p, s)

	s.RegisterEvent(scheduler.PPUStartOAMSearch, p.enterMode2)
	s.RegisterEvent(scheduler.PPUStartPixelTransfer, p.enterMode3)
	s.RegisterEvent(scheduler.PPUStartHBlank, p.enterMode0)
	s.RegisterEvent(scheduler.PPUStartVBlank, p.enterMode1)
	s.RegisterEvent(scheduler.PPUAdvanceLine, p.advanceLine)
	s.RegisterEvent(scheduler.PPULine153Start, p.line153Start)
	s.RegisterEvent(scheduler.PPULine153Continue, p.line153Continue)
	s.RegisterEvent(scheduler.PPUEndVBlank, p.endVBlank)

	return p
}

// SetFrameCallback installs the sink notified at each VBlank.
func (p *PPU) SetFrameCallback(cb FrameCallback) {
	p.onFrame = cb
}

// Frame returns the most recently completed frame.
func (p *PPU) Frame() *[ScreenHeight][ScreenWidth]uint8 {
	return &p.frame
}

// Enabled reports whether the display is switched on (LCDC bit 7).
func (p *PPU) Enabled() bool {
	return p.lcdc&types.Bit7 != 0
}

func (p *PPU) mode() uint8 {
	return p.stat & 0x03
}

// setMode updates STAT and fires the matching STAT interrupt source.
func (p *PPU) setMode(mode uint8) {
	p.stat = p.stat&^uint8(0x03) | mode

	var source uint8
	switch mode {
	case modeHBlank:
		source = types.Bit3
	case modeVBlank:
		source = types.Bit4
	case modeOAMSearch:
		source = types.Bit5
	default:
		return // no STAT source for pixel transfer
	}
	if p.stat&source != 0 {
		p.irq.Request(interrupts.LCDFlag)
	}
}

// checkLYC updates the coincidence bit and fires the LYC source on a
// fresh match.
func (p *PPU) checkLYC() {
	if p.ly == p.lyc {
		wasSet := p.stat&types.Bit2 != 0
		p.stat |= types.Bit2
		if !wasSet && p.stat&types.Bit6 != 0 {
			p.irq.Request(interrupts.LCDFlag)
		}
	} else {
		p.stat &^= types.Bit2
	}
}

// enterMode2 begins a visible line: sprite attribute memory is
// borrowed while sprites are searched.
func (p *PPU) enterMode2() {
	p.bus.Borrow(mmu.RegionOAM)
	p.setMode(modeOAMSearch)
	p.checkLYC()
	p.s.ScheduleEvent(scheduler.PPUStartPixelTransfer, mode2Cycles)
}

// enterMode3 renders the line into the framebuffer; character data
// and both background maps join the borrow set.
func (p *PPU) enterMode3() {
	p.bus.Borrow(mmu.RegionTileData)
	p.bus.Borrow(mmu.RegionBGMap1)
	p.bus.Borrow(mmu.RegionBGMap2)
	p.setMode(modePixelTransfer)
	p.renderScanline()
	p.s.ScheduleEvent(scheduler.PPUStartHBlank, mode3Cycles)
}

// enterMode0 releases every borrow for the horizontal blank.
func (p *PPU) enterMode0() {
	p.releaseBorrows()
	p.setMode(modeHBlank)
	p.s.ScheduleEvent(scheduler.PPUAdvanceLine, mode0Cycles)
}

// advanceLine steps LY at the end of a line, both in the visible
// area and during the vertical blank.
func (p *PPU) advanceLine() {
	p.ly++
	switch {
	case p.ly == visibleLines:
		p.s.ScheduleEvent(scheduler.PPUStartVBlank, 0)
	case p.ly == lastLine:
		p.checkLYC()
		p.s.ScheduleEvent(scheduler.PPULine153Start, line153Short)
	case p.ly > visibleLines:
		p.checkLYC()
		p.s.ScheduleEvent(scheduler.PPUAdvanceLine, lineCycles)
	default:
		p.enterMode2()
	}
}

// enterMode1 starts the vertical blank: the frame is complete.
func (p *PPU) enterMode1() {
	p.setMode(modeVBlank)
	p.checkLYC()
	p.irq.Request(interrupts.VBlankFlag)
	p.windowLine = 0

	if p.onFrame != nil {
		p.onFrame(&p.frame, ByteToPalette(p.bgp), ByteToPalette(p.obp0), ByteToPalette(p.obp1))
	}
	p.s.ScheduleEvent(scheduler.PPUAdvanceLine, lineCycles)
}

// line153Start reports LY=0 early while the final blank line plays
// out.
func (p *PPU) line153Start() {
	p.ly = 0
	p.checkLYC()
	p.s.ScheduleEvent(scheduler.PPULine153Continue, lineCycles-line153Short)
}

func (p *PPU) line153Continue() {
	p.s.ScheduleEvent(scheduler.PPUEndVBlank, 0)
}

// endVBlank wraps back to the top of the frame.
func (p *PPU) endVBlank() {
	p.enterMode2()
}

func (p *PPU) releaseBorrows() {
	p.bus.Release(mmu.RegionTileData)
	p.bus.Release(mmu.RegionBGMap1)
	p.bus.Release(mmu.RegionBGMap2)
	if !p.DMA.Active() {
		p.bus.Release(mmu.RegionOAM)
	}
}

// displayOn restarts the mode machine after LCDC bit 7 goes high.
func (p *PPU) displayOn() {
	p.ly = 0
	p.checkLYC()
	p.s.ScheduleEvent(scheduler.PPUStartOAMSearch, mode0Cycles)
}

// displayOff drops every pending generator event and parks the
// machine in mode 0 at line 0.
func (p *PPU) displayOff() {
	p.s.DescheduleMatching(func(e scheduler.EventType) bool {
		return e >= scheduler.PPUStartOAMSearch && e <= scheduler.PPUEndVBlank
	})
	p.releaseBorrows()
	p.ly = 0
	p.stat &^= 0x03
}

// writeOAM is the DMA engine's direct path into sprite attribute
// memory, bypassing borrow checks.
func (p *PPU) writeOAM(offset uint16, value uint8) {
	p.oam[offset] = value
}

// Read returns the value at the given address: video memory, sprite
// attribute memory or a display register.
func (p *PPU) Read(address uint16) uint8 {
	switch {
	case address >= 0x8000 && address < 0xA000:
		return p.vram[address-0x8000]
	case address >= 0xFE00 && address < 0xFEA0:
		return p.oam[address-0xFE00]
	}
	switch address {
	case types.LCDC:
		return p.lcdc
	case types.STAT:
		return p.stat | types.Bit7
	case types.SCY:
		return p.scy
	case types.SCX:
		return p.scx
	case types.LY:
		return p.ly
	case types.LYC:
		return p.lyc
	case types.DMA:
		return p.DMA.Read(address)
	case types.BGP:
		return p.bgp
	case types.OBP0:
		return p.obp0
	case types.OBP1:
		return p.obp1
	case types.WY:
		return p.wy
	case types.WX:
		return p.wx
	}
	return 0xFF
}

// Write sets the value at the given address.
func (p *PPU) Write(address uint16, value uint8) {
	switch {
	case address >= 0x8000 && address < 0xA000:
		p.vram[address-0x8000] = value
		return
	case address >= 0xFE00 && address < 0xFEA0:
		p.oam[address-0xFE00] = value
		return
	}
	switch address {
	case types.LCDC:
		wasOn := p.Enabled()
		p.lcdc = value
		if wasOn && !p.Enabled() {
			p.displayOff()
		} else if !wasOn && p.Enabled() {
			p.displayOn()
		}
	case types.STAT:
		// only the interrupt source bits are writable
		p.stat = p.stat&0x07 | value&0x78
	case types.SCY:
		p.scy = value
	case types.SCX:
		p.scx = value
	case types.LY:
		// read only
	case types.LYC:
		p.lyc = value
		p.checkLYC()
	case types.DMA:
		p.DMA.Write(address, value)
	case types.BGP:
		p.bgp = value
	case types.OBP0:
		p.obp0 = value
	case types.OBP1:
		p.obp1 = value
	case types.WY:
		p.wy = value
	case types.WX:
		p.wx = value
	}
}

var _ types.Stater = (*PPU)(nil)

func (p *PPU) Save(s *types.State) {
	s.Write8(p.lcdc)
	s.Write8(p.stat)
	s.Write8(p.scy)
	s.Write8(p.scx)
	s.Write8(p.ly)
	s.Write8(p.lyc)
	s.Write8(p.bgp)
	s.Write8(p.obp0)
	s.Write8(p.obp1)
	s.Write8(p.wy)
	s.Write8(p.wx)
	s.Write8(p.windowLine)
	s.WriteData(p.vram[:])
	s.WriteData(p.oam[:])
	p.DMA.Save(s)
}

func (p *PPU) Load(s *types.State) {
	p.lcdc = s.Read8()
	p.stat = s.Read8()
	p.scy = s.Read8()
	p.scx = s.Read8()
	p.ly = s.Read8()
	p.lyc = s.Read8()
	p.bgp = s.Read8()
	p.obp0 = s.Read8()
	p.obp1 = s.Read8()
	p.wy = s.Read8()
	p.wx = s.Read8()
	p.windowLine = s.Read8()
	s.ReadData(p.vram[:])
	s.ReadData(p.oam[:])
	p.DMA.Load(s)
}
