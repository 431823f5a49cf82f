package cartridge

import (
	"github.com/mellified/dotmatrix/internal/types"
)

// mbc2RAMSize is the on-chip RAM: 512 half-byte cells.
const mbc2RAMSize = 512

// mbc2 carries its RAM on the controller itself, addressed as 512
// nibbles. Bit 8 of the write address distinguishes the RAM-enable
// register (clear) from the ROM-bank register (set).
type mbc2 struct {
	rom []byte
	ram []byte
	bat *battery

	ramg    bool
	romBank uint8
}

func newMBC2(rom []byte, bat *battery) *mbc2 {
	return &mbc2{
		rom:     rom,
		ram:     make([]byte, mbc2RAMSize),
		bat:     bat,
		romBank: 1,
	}
}

func (m *mbc2) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.rom[address]
	case address < 0x8000:
		bank := int(m.romBank) % (len(m.rom) / bankSize)
		return m.rom[bank*bankSize+int(address-0x4000)]
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg {
			return 0xFF
		}
		// only the low nibble is backed; the high nibble reads as 1
		return m.ram[(address-0xA000)%mbc2RAMSize] | 0xF0
	}
	return 0xFF
}

func (m *mbc2) Write(address uint16, value uint8) {
	switch {
	case address < 0x4000:
		if address&0x0100 == 0 {
			m.ramg = value&0x0F == 0x0A
		} else {
			value &= 0x0F
			if value == 0 {
				value = 1
			}
			m.romBank = value
		}
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg {
			return
		}
		offset := (address - 0xA000) % mbc2RAMSize
		m.ram[offset] = value | 0xF0
		if m.bat != nil {
			m.bat.write(int64(offset), value|0xF0)
		}
	}
}

func (m *mbc2) SaveRAM() []byte {
	return m.ram
}

func (m *mbc2) LoadRAM(data []byte) {
	copy(m.ram, data)
}

var _ types.Stater = (*mbc2)(nil)

func (m *mbc2) Save(s *types.State) {
	s.WriteData(m.ram)
	s.WriteBool(m.ramg)
	s.Write8(m.romBank)
}

func (m *mbc2) Load(s *types.State) {
	s.ReadData(m.ram)
	m.ramg = s.ReadBool()
	m.romBank = s.Read8()
}
