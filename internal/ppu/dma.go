package ppu

import (
	"github.com/mellified/dotmatrix/internal/mmu"
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

// oamSize is the number of bytes a transfer copies into sprite
// attribute memory.
const oamSize = 160

// DMA copies 160 bytes from guest memory into sprite attribute
// memory, one byte per cycle. The sprite attribute region is
// borrowed for the duration, so CPU reads of it return 0xFF.
type DMA struct {
	value  uint8
	source uint16
	offset uint16
	active bool

	bus *mmu.MMU
	ppu *PPU
	s   *scheduler.Scheduler
}

// NewDMA returns a DMA engine writing into the given picture
// generator's sprite attribute memory.
func NewDMA(bus *mmu.MMU, p *PPU, s *scheduler.Scheduler) *DMA {
	d := &DMA{bus: bus, ppu: p, s: s}
	s.RegisterEvent(scheduler.DMAStartTransfer, d.start)
	s.RegisterEvent(scheduler.DMADriveTransfer, d.drive)
	return d
}

// Read returns the last value written to the DMA register.
func (d *DMA) Read(uint16) uint8 {
	return d.value
}

// Write latches the source page and enqueues the transfer start at
// the current cycle.
func (d *DMA) Write(_ uint16, value uint8) {
	d.value = value
	d.s.ScheduleEvent(scheduler.DMAStartTransfer, 0)
}

// Active reports whether a transfer is in progress.
func (d *DMA) Active() bool {
	return d.active
}

func (d *DMA) start() {
	// a second transfer while one is running is ignored
	if d.active {
		return
	}
	source := uint16(d.value) << 8
	if source >= 0xE000 {
		// map the echo region back onto internal RAM
		source -= 0x2000
	}
	d.source = source
	d.offset = 0
	d.active = true
	d.bus.Borrow(mmu.RegionOAM)
	d.s.ScheduleEvent(scheduler.DMADriveTransfer, 1)
}

func (d *DMA) drive() {
	d.ppu.writeOAM(d.offset, d.bus.ReadUnchecked(d.source+d.offset))
	d.offset++
	if d.offset < oamSize {
		d.s.ScheduleEvent(scheduler.DMADriveTransfer, 1)
		return
	}
	d.active = false
	d.bus.Release(mmu.RegionOAM)
}

var _ types.Stater = (*DMA)(nil)

func (d *DMA) Save(s *types.State) {
	s.Write8(d.value)
	s.Write16(d.source)
	s.Write16(d.offset)
	s.WriteBool(d.active)
}

func (d *DMA) Load(s *types.State) {
	d.value = s.Read8()
	d.source = s.Read16()
	d.offset = s.Read16()
	d.active = s.ReadBool()
}
