package cartridge

import (
	"github.com/mellified/dotmatrix/internal/types"
)

// mbc1 supports up to 2MB of ROM and 32kB of banked RAM.
type mbc1 struct {
	rom []byte
	ram []byte
	bat *battery

	// ramg enables access to cartridge RAM. Access is disabled by
	// default and enabled by writing 0b1010 to the low nibble of
	// [0x0000,0x2000).
	ramg bool

	// bank1 is the 5-bit low field of the ROM bank index, written at
	// [0x2000,0x4000). Writing 0 selects 1 instead, so banks 0x00,
	// 0x20, 0x40 and 0x60 can never appear in the switchable window.
	bank1 uint8

	// bank2 is the 2-bit field written at [0x4000,0x6000). It serves
	// as ROM bank bits 5-6 or as the RAM bank index, depending on mode.
	bank2 uint8

	// mode selects how bank2 is used: false routes it to the ROM bank
	// index, true to the RAM bank index. Written at [0x6000,0x8000).
	mode bool
}

func newMBC1(rom []byte, header Header, bat *battery) *mbc1 {
	return &mbc1{
		rom:   rom,
		ram:   make([]byte, header.RAMSize),
		bat:   bat,
		bank1: 0x01,
	}
}

func (m *mbc1) romBank() int {
	bank := int(m.bank1)
	if !m.mode {
		bank |= int(m.bank2) << 5
	}
	return bank % (len(m.rom) / bankSize)
}

func (m *mbc1) ramBank() uint8 {
	if m.mode {
		return m.bank2
	}
	return 0
}

func (m *mbc1) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.rom[address]
	case address < 0x8000:
		return m.rom[m.romBank()*bankSize+int(address-0x4000)]
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg {
			return 0xFF
		}
		if offset, ok := ramOffset(m.ramBank(), address, len(m.ram)); ok {
			return m.ram[offset]
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramg = value&0x0F == 0x0A
	case address < 0x4000:
		value &= 0x1F
		if value == 0 {
			value = 1
		}
		m.bank1 = value
	case address < 0x6000:
		m.bank2 = value & 0b11
	case address < 0x8000:
		m.mode = value != 0
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg {
			return
		}
		if offset, ok := ramOffset(m.ramBank(), address, len(m.ram)); ok {
			m.ram[offset] = value
			if m.bat != nil {
				m.bat.write(int64(offset), value)
			}
		}
	}
}

func (m *mbc1) SaveRAM() []byte {
	return m.ram
}

func (m *mbc1) LoadRAM(data []byte) {
	copy(m.ram, data)
}

var _ types.Stater = (*mbc1)(nil)

func (m *mbc1) Save(s *types.State) {
	s.WriteData(m.ram)
	s.WriteBool(m.ramg)
	s.Write8(m.bank1)
	s.Write8(m.bank2)
	s.WriteBool(m.mode)
}

func (m *mbc1) Load(s *types.State) {
	s.ReadData(m.ram)
	m.ramg = s.ReadBool()
	m.bank1 = s.Read8()
	m.bank2 = s.Read8()
	m.mode = s.ReadBool()
}
