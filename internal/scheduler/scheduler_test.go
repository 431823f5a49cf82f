package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellified/dotmatrix/internal/types"
)

func TestScheduler_OrderIsStable(t *testing.T) {
	s := NewScheduler()

	var fired []EventType
	record := func(e EventType) func() {
		return func() { fired = append(fired, e) }
	}

	s.RegisterEvent(DividerTick, record(DividerTick))
	s.RegisterEvent(TimerTick, record(TimerTick))
	s.RegisterEvent(DriveJoypad, record(DriveJoypad))
	s.RegisterEvent(SerialTransfer, record(SerialTransfer))

	// same deadline: insertion order must be preserved
	s.ScheduleEvent(TimerTick, 100)
	s.ScheduleEvent(DividerTick, 100)
	s.ScheduleEvent(SerialTransfer, 50)
	s.ScheduleEvent(DriveJoypad, 100)

	s.Tick(100)

	assert.Equal(t, []EventType{SerialTransfer, TimerTick, DividerTick, DriveJoypad}, fired)
}

func TestScheduler_EarlyReturn(t *testing.T) {
	s := NewScheduler()

	fired := false
	s.RegisterEvent(TimerTick, func() { fired = true })
	s.ScheduleEvent(TimerTick, 200)

	s.Tick(100)
	assert.False(t, fired, "event fired before its deadline")

	s.Tick(100)
	assert.True(t, fired, "event did not fire at its deadline")
}

func TestScheduler_RescheduleMoves(t *testing.T) {
	s := NewScheduler()

	count := 0
	s.RegisterEvent(TimerTick, func() { count++ })

	s.ScheduleEvent(TimerTick, 10)
	s.ScheduleEvent(TimerTick, 500)

	s.Tick(100)
	assert.Equal(t, 0, count, "stale deadline fired after reschedule")

	s.Tick(400)
	assert.Equal(t, 1, count)
}

func TestScheduler_Deschedule(t *testing.T) {
	s := NewScheduler()

	fired := false
	s.RegisterEvent(TimerTick, func() { fired = true })
	s.ScheduleEvent(TimerTick, 10)
	s.DescheduleEvent(TimerTick)

	s.Tick(100)
	assert.False(t, fired)
	assert.False(t, s.Scheduled(TimerTick))
}

func TestScheduler_DescheduleMatching(t *testing.T) {
	s := NewScheduler()

	var fired []EventType
	for _, e := range []EventType{PPUStartOAMSearch, PPUStartHBlank, TimerTick} {
		e := e
		s.RegisterEvent(e, func() { fired = append(fired, e) })
		s.ScheduleEvent(e, 10)
	}

	s.DescheduleMatching(func(e EventType) bool {
		return e >= PPUStartOAMSearch && e <= PPUEndVBlank
	})

	s.Tick(100)
	assert.Equal(t, []EventType{TimerTick}, fired)
}

func TestScheduler_EventReschedulesItself(t *testing.T) {
	s := NewScheduler()

	count := 0
	s.RegisterEvent(DividerTick, func() {
		count++
		if count < 4 {
			s.ScheduleEvent(DividerTick, 256)
		}
	})
	s.ScheduleEvent(DividerTick, 256)

	s.Tick(256 * 4)
	assert.Equal(t, 4, count)
}

func TestScheduler_Until(t *testing.T) {
	s := NewScheduler()
	s.RegisterEvent(TimerTick, func() {})
	s.ScheduleEvent(TimerTick, 64)

	assert.Equal(t, uint64(64), s.Until(TimerTick))
	assert.Equal(t, uint64(0), s.Until(DriveJoypad))
}

func TestScheduler_SaveLoadRoundTrip(t *testing.T) {
	s := NewScheduler()
	s.RegisterEvent(TimerTick, func() {})
	s.RegisterEvent(DividerTick, func() {})

	s.Tick(1000)
	s.ScheduleEvent(TimerTick, 64)
	s.ScheduleEvent(DividerTick, 256)

	st := types.NewState()
	s.Save(st)

	loaded := NewScheduler()
	var fired []EventType
	loaded.RegisterEvent(TimerTick, func() { fired = append(fired, TimerTick) })
	loaded.RegisterEvent(DividerTick, func() { fired = append(fired, DividerTick) })
	loaded.Load(st)

	require.Equal(t, uint64(1000), loaded.Cycle())
	assert.Equal(t, uint64(64), loaded.Until(TimerTick))
	assert.Equal(t, uint64(256), loaded.Until(DividerTick))

	loaded.Tick(256)
	assert.Equal(t, []EventType{TimerTick, DividerTick}, fired)
}

func TestScheduler_Skip(t *testing.T) {
	s := NewScheduler()

	fired := false
	s.RegisterEvent(TimerTick, func() { fired = true })
	s.ScheduleEvent(TimerTick, 512)

	s.Skip()
	assert.True(t, fired)
	assert.Equal(t, uint64(512), s.Cycle())
}
