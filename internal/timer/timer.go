// Package timer provides the divider and the configurable timer,
// the two tick sources feeding the timer-overflow interrupt.
package timer

import (
	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

const divPeriod = 256

// timaPeriods maps the 2-bit speed selector of the control register
// to the tick period in cycles.
var timaPeriods = [4]uint64{1024, 16, 64, 256}

// Controller owns the DIV, TIMA, TMA and TAC registers.
type Controller struct {
	div  uint8
	tima uint8
	tma  uint8
	tac  uint8

	irq *interrupts.Service
	s   *scheduler.Scheduler
}

// NewController returns a timer bound to the scheduler. The divider
// starts ticking immediately; the timer only once enabled via TAC.
func NewController(irq *interrupts.Service, s *scheduler.Scheduler) *Controller {
	c := &Controller{irq: irq, s: s}

	s.RegisterEvent(scheduler.DividerTick, c.divTick)
	s.RegisterEvent(scheduler.TimerTick, c.timaTick)
	s.ScheduleEvent(scheduler.DividerTick, divPeriod)

	return c
}

func (c *Controller) divTick() {
	c.div++
	c.s.ScheduleEvent(scheduler.DividerTick, divPeriod)
}

func (c *Controller) timaTick() {
	c.tima++
	if c.tima == 0 {
		// overflow: reload from the modulo register and raise the
		// interrupt at this very cycle
		c.tima = c.tma
		c.irq.Request(interrupts.TimerFlag)
	}
	c.s.ScheduleEvent(scheduler.TimerTick, c.speed())
}

func (c *Controller) enabled() bool {
	return c.tac&types.Bit2 != 0
}

func (c *Controller) speed() uint64 {
	return timaPeriods[c.tac&0b11]
}

// Read returns the value of the given timer register.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case types.DIV:
		return c.div
	case types.TIMA:
		return c.tima
	case types.TMA:
		return c.tma
	case types.TAC:
		return c.tac | 0xF8
	}
	return 0xFF
}

// Write sets the given timer register. Writing the control register
// drops any outstanding tick and, when the timer is still enabled,
// starts a fresh period from the current cycle.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case types.DIV:
		// any write resets the divider
		c.div = 0
	case types.TIMA:
		c.tima = value
	case types.TMA:
		c.tma = value
	case types.TAC:
		c.tac = value & 0x07
		c.s.DescheduleEvent(scheduler.TimerTick)
		if c.enabled() {
			c.s.ScheduleEvent(scheduler.TimerTick, c.speed())
		}
	}
}

var _ types.Stater = (*Controller)(nil)

func (c *Controller) Save(s *types.State) {
	s.Write8(c.div)
	s.Write8(c.tima)
	s.Write8(c.tma)
	s.Write8(c.tac)
}

func (c *Controller) Load(s *types.State) {
	c.div = s.Read8()
	c.tima = s.Read8()
	c.tma = s.Read8()
	c.tac = s.Read8()
}
