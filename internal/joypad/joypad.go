// Package joypad provides the joypad register: eight edge-filtered
// buttons projected into two selectable 4-bit banks. Recording and
// playback variants wrap the plain joypad for input replays.
package joypad

import (
	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/types"
)

// Button is one of the eight physical buttons.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonStart
	ButtonSelect
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	buttonCount
)

// Event is a button state transition delivered to the joypad.
type Event struct {
	Button  Button
	Pressed bool
}

// bank selects which button group is visible in the low nibble of
// the register.
type bank uint8

const (
	bankNeither bank = iota
	bankDirections
	bankButtons
	bankBoth
)

// Joypad is the interface shared by the plain joypad and its replay
// variants. Tick is called every polling period with the key events
// accumulated since the last poll.
type Joypad interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(now uint64, events []Event)

	types.Stater
}

// Plain is the ordinary joypad fed directly by the host.
type Plain struct {
	pressed [buttonCount]bool
	bank    bank

	irq *interrupts.Service
}

// NewPlain returns a joypad with no buttons pressed and both banks
// deselected.
func NewPlain(irq *interrupts.Service) *Plain {
	return &Plain{irq: irq}
}

// Tick applies the accumulated events. Redundant transitions — a
// release of an unpressed button, a press of a held one — are
// filtered out before they touch the state.
func (p *Plain) Tick(now uint64, events []Event) {
	for _, e := range events {
		if p.pressed[e.Button] == e.Pressed {
			continue
		}
		p.pressed[e.Button] = e.Pressed
		if e.Pressed && p.selected(e.Button) {
			p.irq.Request(interrupts.JoypadFlag)
		}
	}
}

func (p *Plain) selected(b Button) bool {
	switch p.bank {
	case bankBoth:
		return true
	case bankDirections:
		return b >= ButtonUp
	case bankButtons:
		return b < ButtonUp
	}
	return false
}

func (p *Plain) directionBits() uint8 {
	var v uint8
	if p.pressed[ButtonDown] {
		v |= types.Bit3
	}
	if p.pressed[ButtonUp] {
		v |= types.Bit2
	}
	if p.pressed[ButtonLeft] {
		v |= types.Bit1
	}
	if p.pressed[ButtonRight] {
		v |= types.Bit0
	}
	return v
}

func (p *Plain) buttonBits() uint8 {
	var v uint8
	if p.pressed[ButtonStart] {
		v |= types.Bit3
	}
	if p.pressed[ButtonSelect] {
		v |= types.Bit2
	}
	if p.pressed[ButtonB] {
		v |= types.Bit1
	}
	if p.pressed[ButtonA] {
		v |= types.Bit0
	}
	return v
}

// Read projects the pressed state through the bank selector. A
// pressed button reads as 0 on the wire.
func (p *Plain) Read(uint16) uint8 {
	var selectBits, buttons uint8
	switch p.bank {
	case bankDirections:
		selectBits = types.Bit4
		buttons = p.directionBits()
	case bankButtons:
		selectBits = types.Bit5
		buttons = p.buttonBits()
	case bankBoth:
		selectBits = types.Bit4 | types.Bit5
		buttons = p.directionBits() | p.buttonBits()
	}
	return (0xC0 | ^selectBits&0x30) | ^buttons&0x0F
}

// Write sets the bank selector from bits 4 and 5; a cleared bit
// selects the corresponding bank.
func (p *Plain) Write(_ uint16, value uint8) {
	dir := value&types.Bit4 == 0
	btn := value&types.Bit5 == 0
	switch {
	case dir && btn:
		p.bank = bankBoth
	case dir:
		p.bank = bankDirections
	case btn:
		p.bank = bankButtons
	default:
		p.bank = bankNeither
	}
}

var _ Joypad = (*Plain)(nil)

func (p *Plain) Save(s *types.State) {
	for i := range p.pressed {
		s.WriteBool(p.pressed[i])
	}
	s.Write8(uint8(p.bank))
}

func (p *Plain) Load(s *types.State) {
	for i := range p.pressed {
		p.pressed[i] = s.ReadBool()
	}
	p.bank = bank(s.Read8())
}
