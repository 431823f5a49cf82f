package types

// HardwareAddress is the address of a memory mapped hardware register.
type HardwareAddress = uint16

const (
	// P1 is the joypad register. The upper nibble selects which of
	// the two key banks is visible in the lower nibble.
	P1 HardwareAddress = 0xFF00
	// SB is the serial transfer data register.
	SB HardwareAddress = 0xFF01
	// SC is the serial transfer control register.
	SC HardwareAddress = 0xFF02
	// DIV is the divider register, incrementing every 256 cycles.
	DIV HardwareAddress = 0xFF04
	// TIMA is the timer counter register.
	TIMA HardwareAddress = 0xFF05
	// TMA is the timer modulo register, loaded into TIMA on overflow.
	TMA HardwareAddress = 0xFF06
	// TAC is the timer control register.
	TAC HardwareAddress = 0xFF07
	// IF is the interrupt flag register.
	IF HardwareAddress = 0xFF0F

	// NR10 is the channel 1 sweep register.
	NR10 HardwareAddress = 0xFF10
	// NR11 is the channel 1 sound length/wave duty register.
	NR11 HardwareAddress = 0xFF11
	// NR12 is the channel 1 volume envelope register.
	NR12 HardwareAddress = 0xFF12
	// NR13 is the channel 1 frequency low register.
	NR13 HardwareAddress = 0xFF13
	// NR14 is the channel 1 frequency high/trigger register.
	NR14 HardwareAddress = 0xFF14
	// NR21 is the channel 2 sound length/wave duty register.
	NR21 HardwareAddress = 0xFF16
	// NR22 is the channel 2 volume envelope register.
	NR22 HardwareAddress = 0xFF17
	// NR23 is the channel 2 frequency low register.
	NR23 HardwareAddress = 0xFF18
	// NR24 is the channel 2 frequency high/trigger register.
	NR24 HardwareAddress = 0xFF19
	// NR30 is the channel 3 DAC enable register.
	NR30 HardwareAddress = 0xFF1A
	// NR31 is the channel 3 sound length register.
	NR31 HardwareAddress = 0xFF1B
	// NR32 is the channel 3 output level register.
	NR32 HardwareAddress = 0xFF1C
	// NR33 is the channel 3 frequency low register.
	NR33 HardwareAddress = 0xFF1D
	// NR34 is the channel 3 frequency high/trigger register.
	NR34 HardwareAddress = 0xFF1E
	// NR41 is the channel 4 sound length register.
	NR41 HardwareAddress = 0xFF20
	// NR42 is the channel 4 volume envelope register.
	NR42 HardwareAddress = 0xFF21
	// NR43 is the channel 4 polynomial counter register.
	NR43 HardwareAddress = 0xFF22
	// NR44 is the channel 4 counter/trigger register.
	NR44 HardwareAddress = 0xFF23
	// NR50 is the master volume register.
	NR50 HardwareAddress = 0xFF24
	// NR51 is the output terminal selection register.
	NR51 HardwareAddress = 0xFF25
	// NR52 is the sound on/off register.
	NR52 HardwareAddress = 0xFF26
	// WaveRAMStart is the first byte of channel 3 wave pattern RAM.
	WaveRAMStart HardwareAddress = 0xFF30
	// WaveRAMEnd is the last byte of channel 3 wave pattern RAM.
	WaveRAMEnd HardwareAddress = 0xFF3F

	// LCDC is the LCD control register.
	LCDC HardwareAddress = 0xFF40
	// STAT is the LCD status register.
	STAT HardwareAddress = 0xFF41
	// SCY is the background scroll Y register.
	SCY HardwareAddress = 0xFF42
	// SCX is the background scroll X register.
	SCX HardwareAddress = 0xFF43
	// LY is the current scanline register.
	LY HardwareAddress = 0xFF44
	// LYC is the scanline compare register.
	LYC HardwareAddress = 0xFF45
	// DMA is the sprite attribute DMA trigger register.
	DMA HardwareAddress = 0xFF46
	// BGP is the background palette register.
	BGP HardwareAddress = 0xFF47
	// OBP0 is the first sprite palette register.
	OBP0 HardwareAddress = 0xFF48
	// OBP1 is the second sprite palette register.
	OBP1 HardwareAddress = 0xFF49
	// WY is the window Y position register.
	WY HardwareAddress = 0xFF4A
	// WX is the window X position register (offset by 7).
	WX HardwareAddress = 0xFF4B

	// IE is the interrupt enable register.
	IE HardwareAddress = 0xFFFF
)

// Bit constants for register decoding.
const (
	Bit0 uint8 = 1 << iota
	Bit1
	Bit2
	Bit3
	Bit4
	Bit5
	Bit6
	Bit7
)
