// Package mmu provides the memory map of the emulation core: a pure
// routing layer from 16-bit addresses to the backing device. The MMU
// is unaware of what the devices do; it only knows which address
// ranges they claim and which regions are currently borrowed by the
// picture generator.
package mmu

import (
	"github.com/mellified/dotmatrix/internal/cartridge"
	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/types"
	"github.com/mellified/dotmatrix/pkg/log"
)

// Device is the interface the MMU uses to reach the memory mapped
// hardware behind an address range.
type Device interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Region identifies a borrowable memory region. While a region is
// borrowed by the picture generator, CPU reads return 0xFF and
// writes are dropped.
type Region uint8

const (
	// RegionTileData is character data at [0x8000,0x9800).
	RegionTileData Region = iota
	// RegionBGMap1 is the first background map at [0x9800,0x9C00).
	RegionBGMap1
	// RegionBGMap2 is the second background map at [0x9C00,0xA000).
	RegionBGMap2
	// RegionOAM is sprite attribute memory at [0xFE00,0xFEA0).
	RegionOAM
	regionCount
)

// MMU routes reads and writes across the guest address space.
type MMU struct {
	Cart *cartridge.Cartridge

	wram [0x2000]byte
	hram [0x7F]byte

	joypad Device
	serial Device
	timer  Device
	video  Device
	sound  Device
	irq    *interrupts.Service

	borrowed [regionCount]bool

	Log log.Logger
}

// NewMMU returns an MMU routing to the given cartridge. Devices are
// attached separately to break the construction cycle between the
// CPU, the devices and the memory map.
func NewMMU(cart *cartridge.Cartridge, irq *interrupts.Service, logger log.Logger) *MMU {
	if logger == nil {
		logger = log.NewNull()
	}
	return &MMU{
		Cart: cart,
		irq:  irq,
		Log:  logger,
	}
}

// AttachJoypad attaches the joypad register at 0xFF00.
func (m *MMU) AttachJoypad(d Device) { m.joypad = d }

// AttachSerial attaches the serial registers at 0xFF01-0xFF02.
func (m *MMU) AttachSerial(d Device) { m.serial = d }

// AttachTimer attaches the divider and timer registers at 0xFF04-0xFF07.
func (m *MMU) AttachTimer(d Device) { m.timer = d }

// AttachVideo attaches the picture generator: video memory, sprite
// attribute memory and the registers at 0xFF40-0xFF4B.
func (m *MMU) AttachVideo(d Device) { m.video = d }

// AttachSound attaches the sound registers at 0xFF10-0xFF3F.
func (m *MMU) AttachSound(d Device) { m.sound = d }

// Borrow marks a region as in use by the picture generator.
func (m *MMU) Borrow(r Region) { m.borrowed[r] = true }

// Release returns a region to the CPU.
func (m *MMU) Release(r Region) { m.borrowed[r] = false }

// ReleaseAll returns every region to the CPU.
func (m *MMU) ReleaseAll() {
	for i := range m.borrowed {
		m.borrowed[i] = false
	}
}

// Borrowed reports whether a region is currently borrowed.
func (m *MMU) Borrowed(r Region) bool { return m.borrowed[r] }

// region maps an address to its borrowable region, if any.
func (m *MMU) region(address uint16) (Region, bool) {
	switch {
	case address >= 0x8000 && address < 0x9800:
		return RegionTileData, true
	case address >= 0x9800 && address < 0x9C00:
		return RegionBGMap1, true
	case address >= 0x9C00 && address < 0xA000:
		return RegionBGMap2, true
	case address >= 0xFE00 && address < 0xFEA0:
		return RegionOAM, true
	}
	return 0, false
}

// Read returns the value at the given address, honoring borrows.
// Reads outside any backing yield 0xFF.
func (m *MMU) Read(address uint16) uint8 {
	if r, ok := m.region(address); ok && m.borrowed[r] {
		return 0xFF
	}
	return m.ReadUnchecked(address)
}

// ReadUnchecked routes a read without consulting borrow flags. The
// DMA engine uses it while it holds the sprite attribute borrow.
func (m *MMU) ReadUnchecked(address uint16) uint8 {
	switch {
	case address < 0x8000:
		return m.Cart.Read(address)
	case address < 0xA000:
		return m.video.Read(address)
	case address < 0xC000:
		return m.Cart.Read(address)
	case address < 0xE000:
		return m.wram[address-0xC000]
	case address < 0xFE00:
		// echo of the first 7680 bytes of internal RAM
		return m.wram[address-0xE000]
	case address < 0xFEA0:
		return m.video.Read(address)
	case address < 0xFF00:
		return 0xFF
	case address < 0xFF80:
		return m.readPort(address)
	case address < 0xFFFF:
		return m.hram[address-0xFF80]
	default:
		return m.irq.Read(address)
	}
}

// Write routes a write to the given address, honoring borrows.
// Writes outside any backing are dropped.
func (m *MMU) Write(address uint16, value uint8) {
	if r, ok := m.region(address); ok && m.borrowed[r] {
		return
	}
	switch {
	case address < 0x8000:
		m.Cart.Write(address, value)
	case address < 0xA000:
		m.video.Write(address, value)
	case address < 0xC000:
		m.Cart.Write(address, value)
	case address < 0xE000:
		m.wram[address-0xC000] = value
	case address < 0xFE00:
		m.wram[address-0xE000] = value
	case address < 0xFEA0:
		m.video.Write(address, value)
	case address < 0xFF00:
		// unusable region
	case address < 0xFF80:
		m.writePort(address, value)
	case address < 0xFFFF:
		m.hram[address-0xFF80] = value
	default:
		m.irq.Write(address, value)
	}
}

// WriteOAM stores directly into sprite attribute memory, bypassing
// borrow flags. Used by the DMA engine.
func (m *MMU) WriteOAM(address uint16, value uint8) {
	m.video.Write(address, value)
}

func (m *MMU) readPort(address uint16) uint8 {
	switch {
	case address == types.P1:
		return m.joypad.Read(address)
	case address == types.SB || address == types.SC:
		return m.serial.Read(address)
	case address >= types.DIV && address <= types.TAC:
		return m.timer.Read(address)
	case address == types.IF:
		return m.irq.Read(address)
	case address >= types.NR10 && address <= types.WaveRAMEnd:
		return m.sound.Read(address)
	case address >= types.LCDC && address <= types.WX:
		return m.video.Read(address)
	}
	return 0xFF
}

func (m *MMU) writePort(address uint16, value uint8) {
	switch {
	case address == types.P1:
		m.joypad.Write(address, value)
	case address == types.SB || address == types.SC:
		m.serial.Write(address, value)
	case address >= types.DIV && address <= types.TAC:
		m.timer.Write(address, value)
	case address == types.IF:
		m.irq.Write(address, value)
	case address >= types.NR10 && address <= types.WaveRAMEnd:
		m.sound.Write(address, value)
	case address >= types.LCDC && address <= types.WX:
		m.video.Write(address, value)
	default:
		m.Log.Debugf("mmu: dropped write %#02x to unmapped port %#04x", value, address)
	}
}

var _ types.Stater = (*MMU)(nil)

func (m *MMU) Save(s *types.State) {
	s.WriteData(m.wram[:])
	s.WriteData(m.hram[:])
	for i := range m.borrowed {
		s.WriteBool(m.borrowed[i])
	}
}

func (m *MMU) Load(s *types.State) {
	s.ReadData(m.wram[:])
	s.ReadData(m.hram[:])
	for i := range m.borrowed {
		m.borrowed[i] = s.ReadBool()
	}
}
