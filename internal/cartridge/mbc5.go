package cartridge

import (
	"github.com/mellified/dotmatrix/internal/types"
)

// mbc5 widens the ROM bank index to 9 bits, split across two
// registers, and drops the zero-to-one remap of the earlier
// controllers: bank 0 can be mapped into the switchable window.
type mbc5 struct {
	rom []byte
	ram []byte
	bat *battery

	ramg bool
	// romBank holds the full 9-bit index. [0x2000,0x3000) writes the
	// low 8 bits, [0x3000,0x4000) bit 8.
	romBank uint16
	ramBank uint8
}

func newMBC5(rom []byte, header Header, bat *battery) *mbc5 {
	return &mbc5{
		rom:     rom,
		ram:     make([]byte, header.RAMSize),
		bat:     bat,
		romBank: 1,
	}
}

func (m *mbc5) Read(address uint16) uint8 {
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
		if offset, ok := ramOffset(m.ramBank, address, len(m.ram)); ok {
			return m.ram[offset]
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc5) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramg = value&0x0F == 0x0A
	case address < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case address < 0x4000:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case address < 0x6000:
		m.ramBank = value & 0x0F
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg {
			return
		}
		if offset, ok := ramOffset(m.ramBank, address, len(m.ram)); ok {
			m.ram[offset] = value
			if m.bat != nil {
				m.bat.write(int64(offset), value)
			}
		}
	}
}

func (m *mbc5) SaveRAM() []byte {
	return m.ram
}

func (m *mbc5) LoadRAM(data []byte) {
	copy(m.ram, data)
}

var _ types.Stater = (*mbc5)(nil)

func (m *mbc5) Save(s *types.State) {
	s.WriteData(m.ram)
	s.WriteBool(m.ramg)
	s.Write16(m.romBank)
	s.Write8(m.ramBank)
}

func (m *mbc5) Load(s *types.State) {
	s.ReadData(m.ram)
	m.ramg = s.ReadBool()
	m.romBank = s.Read16()
	m.ramBank = s.Read8()
}
