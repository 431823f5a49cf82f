// Package serial provides the serial transfer registers. No link
// cable partner is modelled: transfers complete against a
// disconnected peer, shifting in 0xFF. Outgoing bytes can be routed
// to a sink, which is how test programs print their results.
package serial

import (
	"io"

	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

// transferCycles is the time for one byte at the normal clock: 8
// bits at 512 cycles each.
const transferCycles = 8 * 512

// Controller owns the SB and SC registers.
type Controller struct {
	data    uint8
	control uint8

	irq *interrupts.Service
	s   *scheduler.Scheduler

	// sink receives each transferred byte. May be nil.
	sink io.Writer
}

// NewController returns a serial controller bound to the scheduler.
func NewController(irq *interrupts.Service, s *scheduler.Scheduler) *Controller {
	c := &Controller{irq: irq, s: s}
	s.RegisterEvent(scheduler.SerialTransfer, c.finishTransfer)
	return c
}

// AttachSink routes outgoing bytes to the given writer.
func (c *Controller) AttachSink(w io.Writer) {
	c.sink = w
}

func (c *Controller) finishTransfer() {
	if c.sink != nil {
		_, _ = c.sink.Write([]byte{c.data})
	}
	// nothing on the other end of the cable
	c.data = 0xFF
	c.control &^= types.Bit7
	c.irq.Request(interrupts.SerialFlag)
}

// Read returns the value of the given serial register.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case types.SB:
		return c.data
	case types.SC:
		return c.control | 0x7E
	}
	return 0xFF
}

// Write sets the given serial register. Starting a transfer with the
// internal clock schedules its completion.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case types.SB:
		c.data = value
	case types.SC:
		c.control = value & (types.Bit7 | types.Bit0)
		if value&types.Bit7 != 0 && value&types.Bit0 != 0 {
			c.s.ScheduleEvent(scheduler.SerialTransfer, transferCycles)
		}
	}
}

var _ types.Stater = (*Controller)(nil)

func (c *Controller) Save(s *types.State) {
	s.Write8(c.data)
	s.Write8(c.control)
}

func (c *Controller) Load(s *types.State) {
	c.data = s.Read8()
	c.control = s.Read8()
}
