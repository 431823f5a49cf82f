// Package interrupts provides the interrupt controller: the IF/IE
// flag pair, the master-enable latch and the vector table used by
// the CPU when dispatching.
package interrupts

import (
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

// Flag is the bit index of an interrupt source in IF and IE.
type Flag = uint8

const (
	// VBlankFlag is raised when the picture generator enters mode 1.
	VBlankFlag Flag = 0
	// LCDFlag is raised by the STAT interrupt sources.
	LCDFlag Flag = 1
	// TimerFlag is raised when the timer counter overflows.
	TimerFlag Flag = 2
	// SerialFlag is raised when a serial transfer completes.
	SerialFlag Flag = 3
	// JoypadFlag is raised on a selected-bank button press.
	JoypadFlag Flag = 4
)

// Vectors holds the dispatch address for each interrupt source, in
// priority order.
var Vectors = [5]uint16{0x0040, 0x0048, 0x0050, 0x0058, 0x0060}

// Service holds the state of the interrupt controller.
type Service struct {
	// Flag is the interrupt request register at 0xFF0F. Only the low
	// five bits are backed; the rest read as 1.
	Flag uint8
	// Enable is the interrupt enable register at 0xFFFF.
	Enable uint8
	// IME is the master enable latch toggled by EI, DI and RETI.
	IME bool

	s *scheduler.Scheduler
}

// NewService returns a new interrupt controller bound to the given
// scheduler. Every change to the request state enqueues a dispatch
// check so the CPU is preempted at the next instruction boundary.
func NewService(s *scheduler.Scheduler) *Service {
	return &Service{s: s}
}

// Request raises the given interrupt source and schedules a dispatch
// check at the current cycle.
func (s *Service) Request(flag Flag) {
	s.Flag |= 1 << flag
	s.s.ScheduleEvent(scheduler.HandleInterrupts, 0)
}

// Pending reports whether any requested interrupt is also enabled.
// This is what releases the CPU from halt, independently of IME.
func (s *Service) Pending() bool {
	return s.Flag&s.Enable&0x1F != 0
}

// Read returns the value of the given controller register.
func (s *Service) Read(address uint16) uint8 {
	switch address {
	case types.IF:
		return s.Flag | 0xE0
	case types.IE:
		return s.Enable
	}
	return 0xFF
}

// Write sets the given controller register and schedules a dispatch
// check, since enabling a source can make a pending request fire.
func (s *Service) Write(address uint16, value uint8) {
	switch address {
	case types.IF:
		s.Flag = value & 0x1F
	case types.IE:
		s.Enable = value
	}
	s.s.ScheduleEvent(scheduler.HandleInterrupts, 0)
}

var _ types.Stater = (*Service)(nil)

func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
	st.WriteBool(s.IME)
}

func (s *Service) Load(st *types.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
	s.IME = st.ReadBool()
}
