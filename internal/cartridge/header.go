package cartridge

import (
	"fmt"
)

// Type identifies the bank controller declared in the cartridge
// header at 0x0147.
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC2              Type = 0x05
	MBC2BATT          Type = 0x06
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
)

func (t Type) String() string {
	switch t {
	case ROM:
		return "ROM"
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return "MBC1"
	case MBC2, MBC2BATT:
		return "MBC2"
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		return "MBC3"
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		return "MBC5"
	}
	return fmt.Sprintf("Type(%#02x)", uint8(t))
}

// hasBattery reports whether the controller mirrors cartridge RAM to
// persistent storage.
func (t Type) hasBattery() bool {
	switch t {
	case MBC1RAMBATT, MBC2BATT, MBC3TIMERBATT, MBC3TIMERRAMBATT, MBC3RAMBATT,
		MBC5RAMBATT, MBC5RUMBLERAMBATT:
		return true
	}
	return false
}

const (
	bankSize       = 0x4000
	titleRange     = 0x0134
	titleLength    = 16
	typeAddress    = 0x0147
	romSizeAddress = 0x0148
	ramSizeAddress = 0x0149
)

// Header is the parsed view of the cartridge header at 0x0134-0x0149,
// plus the content hash of the full image.
type Header struct {
	// Title is the null-terminated game title.
	Title string
	// Hash is the 32-bit rolling hash of the whole ROM image, used to
	// verify save-state and replay compatibility.
	Hash uint32
	// CartridgeType selects which bank controller the cartridge carries.
	CartridgeType Type
	// ROMSize is the declared ROM size in bytes.
	ROMSize int
	// RAMSize is the declared cartridge RAM size in bytes.
	RAMSize int
}

// parseHeader decodes the header fields from a full ROM image. The
// image length must agree with the declared bank count.
func parseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, fmt.Errorf("image too small for a header: %d bytes", len(rom))
	}
	if len(rom)%bankSize != 0 {
		return Header{}, fmt.Errorf("image length %d is not a multiple of %d", len(rom), bankSize)
	}

	h := Header{CartridgeType: Type(rom[typeAddress])}

	title := rom[titleRange : titleRange+titleLength]
	end := len(title)
	for i, c := range title {
		if c == 0 {
			end = i
			break
		}
	}
	h.Title = string(title[:end])

	banks, err := romBanks(rom[romSizeAddress])
	if err != nil {
		return Header{}, err
	}
	h.ROMSize = banks * bankSize
	if h.ROMSize != len(rom) {
		return Header{}, fmt.Errorf("header declares %d banks but image holds %d", banks, len(rom)/bankSize)
	}

	switch rom[ramSizeAddress] {
	case 0x00:
		h.RAMSize = 0
	case 0x01:
		h.RAMSize = 2 * 1024
	case 0x02:
		h.RAMSize = 8 * 1024
	case 0x03:
		h.RAMSize = 32 * 1024
	default:
		return Header{}, fmt.Errorf("unknown RAM size code %#02x", rom[ramSizeAddress])
	}

	return h, nil
}

func romBanks(code uint8) (int, error) {
	switch {
	case code <= 0x08:
		return 2 << code, nil
	case code == 0x52:
		return 72, nil
	case code == 0x53:
		return 80, nil
	case code == 0x54:
		return 96, nil
	}
	return 0, fmt.Errorf("unknown ROM size code %#02x", code)
}

func (h Header) String() string {
	return fmt.Sprintf("%s (%s) ROM: %dkB RAM: %dkB", h.Title, h.CartridgeType, h.ROMSize/1024, h.RAMSize/1024)
}
