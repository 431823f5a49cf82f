// Package cartridge provides the cartridge view of the guest address
// space: banked ROM, optional cartridge RAM and the family of bank
// controllers that multiplex them into [0x0000,0x8000) and
// [0xA000,0xC000).
package cartridge

import (
	"fmt"

	"github.com/mellified/dotmatrix/internal/types"
	"github.com/mellified/dotmatrix/pkg/log"
	"github.com/mellified/dotmatrix/pkg/storage"
	"github.com/mellified/dotmatrix/pkg/utils"
)

// MemoryBankController observes guest writes to the ROM window as
// protocol messages and routes reads through the selected banks.
type MemoryBankController interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)

	// RAM access for battery save files.
	SaveRAM() []byte
	LoadRAM([]byte)

	types.Stater
}

// Cartridge couples a parsed header with the bank controller the
// header declares.
type Cartridge struct {
	MemoryBankController

	header Header
}

// Option configures cartridge construction.
type Option func(*options)

type options struct {
	savPath string
	store   storage.Storage
	logger  log.Logger
}

// WithSaveFile enables battery-backed RAM mirroring to the given
// stream name.
func WithSaveFile(path string) Option {
	return func(o *options) { o.savPath = path }
}

// WithStorage overrides the persistent storage the battery mirrors
// into. The default is the host filesystem.
func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.store = s }
}

// WithLogger routes battery I/O errors to the given logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewCartridge parses the header of the given ROM image and attaches
// the matching bank controller. A malformed header or an unsupported
// controller type is rejected.
func NewCartridge(rom []byte, opts ...Option) (*Cartridge, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	header, err := parseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("cartridge: %w", err)
	}
	header.Hash = utils.RomHash(rom)

	var bat *battery
	if header.CartridgeType.hasBattery() && o.savPath != "" {
		size := header.RAMSize
		if header.CartridgeType == MBC2 || header.CartridgeType == MBC2BATT {
			size = mbc2RAMSize
		}
		store := o.store
		if store == nil {
			store = storage.Dir("")
		}
		bat = newBattery(store, o.savPath, size, o.logger)
	}

	c := &Cartridge{header: header}
	switch header.CartridgeType {
	case ROM:
		c.MemoryBankController = newROMOnly(rom)
	case MBC1, MBC1RAM, MBC1RAMBATT:
		c.MemoryBankController = newMBC1(rom, header, bat)
	case MBC2, MBC2BATT:
		c.MemoryBankController = newMBC2(rom, bat)
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		c.MemoryBankController = newMBC3(rom, header, bat)
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		c.MemoryBankController = newMBC5(rom, header, bat)
	default:
		return nil, fmt.Errorf("cartridge: controller type %#02x not supported", uint8(header.CartridgeType))
	}

	if bat != nil {
		if saved := bat.load(); saved != nil {
			c.LoadRAM(saved)
		}
	}

	return c, nil
}

// NewEmptyCartridge returns a cartridge with no image inserted. All
// reads yield 0xFF.
func NewEmptyCartridge() *Cartridge {
	rom := make([]byte, 2*bankSize)
	for i := range rom {
		rom[i] = 0xFF
	}
	return &Cartridge{
		MemoryBankController: newROMOnly(rom),
	}
}

// Header returns the parsed header view.
func (c *Cartridge) Header() Header {
	return c.header
}

// Title returns the cartridge title.
func (c *Cartridge) Title() string {
	return c.header.Title
}

// Hash returns the content hash of the inserted ROM image.
func (c *Cartridge) Hash() uint32 {
	return c.header.Hash
}

// ramOffset computes the linear offset of a RAM window access, given
// the selected bank. Out-of-range accesses wrap on the bank count.
func ramOffset(bank uint8, address uint16, size int) (int, bool) {
	if size == 0 {
		return 0, false
	}
	banks := size / 0x2000
	if banks == 0 {
		banks = 1
	}
	offset := int(bank)%banks*0x2000 + int(address-0xA000)
	if offset >= size {
		return 0, false
	}
	return offset, true
}

// romOnly is the controller-less cartridge: two fixed banks, reads
// pass through, writes are dropped.
type romOnly struct {
	rom []byte
}

func newROMOnly(rom []byte) *romOnly {
	return &romOnly{rom: rom}
}

func (r *romOnly) Read(address uint16) uint8 {
	if int(address) < len(r.rom) && address < 0x8000 {
		return r.rom[address]
	}
	return 0xFF
}

func (r *romOnly) Write(uint16, uint8) {}

func (r *romOnly) SaveRAM() []byte   { return nil }
func (r *romOnly) LoadRAM([]byte)    {}
func (r *romOnly) Save(*types.State) {}
func (r *romOnly) Load(*types.State) {}
