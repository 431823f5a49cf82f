package interrupts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

func TestService_RequestSetsFlagAndSchedules(t *testing.T) {
	s := scheduler.NewScheduler()
	irq := NewService(s)

	dispatched := false
	s.RegisterEvent(scheduler.HandleInterrupts, func() { dispatched = true })

	irq.Request(TimerFlag)
	assert.Equal(t, uint8(1<<TimerFlag), irq.Flag)

	s.Tick(0)
	assert.True(t, dispatched)
}

func TestService_Pending(t *testing.T) {
	s := scheduler.NewScheduler()
	s.RegisterEvent(scheduler.HandleInterrupts, func() {})
	irq := NewService(s)

	irq.Request(VBlankFlag)
	assert.False(t, irq.Pending(), "request without enable should not be pending")

	irq.Write(types.IE, 1<<VBlankFlag)
	assert.True(t, irq.Pending())
}

func TestService_RegisterReads(t *testing.T) {
	s := scheduler.NewScheduler()
	s.RegisterEvent(scheduler.HandleInterrupts, func() {})
	irq := NewService(s)

	irq.Write(types.IF, 0xFF)
	// only five sources are backed; the upper bits read as 1
	assert.Equal(t, uint8(0xFF), irq.Read(types.IF))
	assert.Equal(t, uint8(0x1F), irq.Flag)

	irq.Write(types.IE, 0xAB)
	assert.Equal(t, uint8(0xAB), irq.Read(types.IE))
}

func TestService_SaveLoad(t *testing.T) {
	s := scheduler.NewScheduler()
	s.RegisterEvent(scheduler.HandleInterrupts, func() {})
	irq := NewService(s)
	irq.Flag = 0x05
	irq.Enable = 0x1F
	irq.IME = true

	st := types.NewState()
	irq.Save(st)

	loaded := NewService(s)
	loaded.Load(st)
	assert.Equal(t, irq.Flag, loaded.Flag)
	assert.Equal(t, irq.Enable, loaded.Enable)
	assert.Equal(t, irq.IME, loaded.IME)
}
