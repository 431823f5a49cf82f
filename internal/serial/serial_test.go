package serial

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mellified/dotmatrix/internal/interrupts"
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

func newTestSerial() (*Controller, *scheduler.Scheduler, *interrupts.Service) {
	s := scheduler.NewScheduler()
	s.RegisterEvent(scheduler.HandleInterrupts, func() {})
	irq := interrupts.NewService(s)
	return NewController(irq, s), s, irq
}

func TestSerial_TransferCompletes(t *testing.T) {
	c, s, irq := newTestSerial()

	var out bytes.Buffer
	c.AttachSink(&out)

	c.Write(types.SB, 'H')
	c.Write(types.SC, 0x81)

	s.Tick(transferCycles - 1)
	assert.Equal(t, uint8('H'), c.Read(types.SB), "transfer still in flight")

	s.Tick(1)
	assert.Equal(t, "H", out.String())
	assert.Equal(t, uint8(0xFF), c.Read(types.SB), "disconnected peer shifts in 0xFF")
	assert.Zero(t, c.Read(types.SC)&types.Bit7, "transfer bit cleared")
	assert.NotZero(t, irq.Flag&(1<<interrupts.SerialFlag))
}

func TestSerial_ExternalClockNeverCompletes(t *testing.T) {
	c, s, irq := newTestSerial()

	c.Write(types.SB, 'X')
	c.Write(types.SC, 0x80) // external clock: no partner, no transfer

	s.Tick(transferCycles * 2)
	assert.Equal(t, uint8('X'), c.Read(types.SB))
	assert.Zero(t, irq.Flag)
}

func TestSerial_SaveLoad(t *testing.T) {
	c, _, _ := newTestSerial()
	c.Write(types.SB, 0x42)

	st := types.NewState()
	c.Save(st)

	loaded, _, _ := newTestSerial()
	loaded.Load(st)
	assert.Equal(t, uint8(0x42), loaded.Read(types.SB))
}
