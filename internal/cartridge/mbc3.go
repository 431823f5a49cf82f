package cartridge

import (
	"github.com/mellified/dotmatrix/internal/types"
)

// mbc3 extends the bank field to 7 bits and multiplexes the RAM
// window between RAM banks and the real-time-clock registers. Clock
// tracking itself is not modelled; RTC selections read as 0xFF.
type mbc3 struct {
	rom []byte
	ram []byte
	bat *battery

	ramg    bool
	romBank uint8
	// ramBank selects a RAM bank for values 0x00-0x07; values
	// 0x08-0x0C select an RTC register instead.
	ramBank uint8
	latched bool
}

func newMBC3(rom []byte, header Header, bat *battery) *mbc3 {
	return &mbc3{
		rom:     rom,
		ram:     make([]byte, header.RAMSize),
		bat:     bat,
		romBank: 1,
	}
}

func (m *mbc3) rtcSelected() bool {
	return m.ramBank >= 0x08 && m.ramBank <= 0x0C
}

func (m *mbc3) Read(address uint16) uint8 {
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
		if m.rtcSelected() {
			return 0xFF
		}
		if offset, ok := ramOffset(m.ramBank, address, len(m.ram)); ok {
			return m.ram[offset]
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramg = value&0x0F == 0x0A
	case address < 0x4000:
		value &= 0x7F
		if value == 0 {
			value = 1
		}
		m.romBank = value
	case address < 0x6000:
		m.ramBank = value & 0x0F
	case address < 0x8000:
		// clock latch; the latched registers are not modelled
		m.latched = value != 0
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg || m.rtcSelected() {
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

func (m *mbc3) SaveRAM() []byte {
	return m.ram
}

func (m *mbc3) LoadRAM(data []byte) {
	copy(m.ram, data)
}

var _ types.Stater = (*mbc3)(nil)

func (m *mbc3) Save(s *types.State) {
	s.WriteData(m.ram)
	s.WriteBool(m.ramg)
	s.Write8(m.romBank)
	s.Write8(m.ramBank)
	s.WriteBool(m.latched)
}

func (m *mbc3) Load(s *types.State) {
	s.ReadData(m.ram)
	m.ramg = s.ReadBool()
	m.romBank = s.Read8()
	m.ramBank = s.Read8()
	m.latched = s.ReadBool()
}
