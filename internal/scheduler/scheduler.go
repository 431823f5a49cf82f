// Package scheduler provides the event queue that sequences every
// device in the emulation core. Devices register a handler per event
// type and schedule deadlines relative to the current cycle; after each CPU
// instruction the queue drains every event that has come due.
package scheduler

import (
	"container/heap"
	"math"

	"github.com/mellified/dotmatrix/internal/types"
)

// Scheduler is a priority queue of events keyed by the cycle at
// which they should be executed. Events scheduled for the same cycle
// fire in the order they were inserted.
type Scheduler struct {
	cycles uint64
	seq    uint64

	queue  eventQueue
	events [eventTypes]*Event

	nextEventAt uint64
}

// NewScheduler returns an empty scheduler. Events are pre-allocated
// per type so that scheduling never allocates on the hot path.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue:       make(eventQueue, 0, eventTypes),
		nextEventAt: math.MaxUint64,
	}
	for i := EventType(0); i < eventTypes; i++ {
		s.events[i] = &Event{eventType: i, index: -1}
	}
	return s
}

// Cycle returns the current cycle count.
func (s *Scheduler) Cycle() uint64 {
	return s.cycles
}

// RegisterEvent registers the function to be called when an event of
// the given type comes due. Handlers are registered once at wiring
// time to avoid allocating a closure per scheduled event.
func (s *Scheduler) RegisterEvent(eventType EventType, fn func()) {
	s.events[eventType].handler = fn
}

// ScheduleEvent schedules an event to fire in the given number of
// cycles from now. If the event type is already pending it is moved.
func (s *Scheduler) ScheduleEvent(eventType EventType, cycles uint64) {
	e := s.events[eventType]
	if e.index >= 0 {
		heap.Remove(&s.queue, e.index)
	}
	e.cycle = s.cycles + cycles
	e.seq = s.seq
	s.seq++
	heap.Push(&s.queue, e)
	s.nextEventAt = s.queue[0].cycle
}

// DescheduleEvent removes a pending event of the given type. It is a
// no-op when the event is not pending.
func (s *Scheduler) DescheduleEvent(eventType EventType) {
	e := s.events[eventType]
	if e.index < 0 {
		return
	}
	heap.Remove(&s.queue, e.index)
	s.updateNext()
}

// DescheduleMatching removes every pending event whose type satisfies
// the predicate. Used when the screen is switched off or the timer is
// reconfigured.
func (s *Scheduler) DescheduleMatching(match func(EventType) bool) {
	for i := EventType(0); i < eventTypes; i++ {
		if s.events[i].index >= 0 && match(i) {
			heap.Remove(&s.queue, s.events[i].index)
		}
	}
	s.updateNext()
}

// Scheduled reports whether an event of the given type is pending.
func (s *Scheduler) Scheduled(eventType EventType) bool {
	return s.events[eventType].index >= 0
}

// Until returns the number of cycles until the given event fires, or
// 0 when it is not pending.
func (s *Scheduler) Until(eventType EventType) uint64 {
	e := s.events[eventType]
	if e.index < 0 {
		return 0
	}
	return e.cycle - s.cycles
}

// Tick advances the scheduler by the given number of cycles and
// executes every event that has come due, in deadline order with
// ties broken by insertion order.
func (s *Scheduler) Tick(c uint64) {
	s.cycles += c
	if s.nextEventAt > s.cycles {
		return
	}
	s.doEvents()
}

// Skip jumps the current cycle forward to the next pending event and
// executes it, so that emulated time advances at event granularity
// instead of instruction granularity. The core's own halt handling
// does not use it; a halted CPU burns four cycles per step.
func (s *Scheduler) Skip() {
	if len(s.queue) == 0 {
		return
	}
	s.cycles = s.queue[0].cycle
	s.doEvents()
}

// doEvents drains every event due at or before the current cycle.
// Each handler observes the cycle counter at its own deadline, so an
// event rescheduling itself keeps an exact cadence no matter how far
// time advanced in one tick.
func (s *Scheduler) doEvents() {
	target := s.cycles
	for len(s.queue) > 0 && s.queue[0].cycle <= target {
		e := heap.Pop(&s.queue).(*Event)
		s.cycles = e.cycle
		e.handler()
	}
	s.cycles = target
	s.updateNext()
}

func (s *Scheduler) updateNext() {
	if len(s.queue) == 0 {
		s.nextEventAt = math.MaxUint64
	} else {
		s.nextEventAt = s.queue[0].cycle
	}
}

var _ types.Stater = (*Scheduler)(nil)

// Save writes the cycle counter and every pending event. Deadlines
// are stored as offsets from the current cycle so a loaded state can
// rebase onto any cycle counter.
func (s *Scheduler) Save(st *types.State) {
	st.Write64(s.cycles)
	st.Write8(uint8(len(s.queue)))

	// snapshot in firing order so FIFO ties survive a round trip
	ordered := make([]*Event, len(s.queue))
	copy(ordered, s.queue)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].cycle < ordered[i].cycle ||
				(ordered[j].cycle == ordered[i].cycle && ordered[j].seq < ordered[i].seq) {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	for _, e := range ordered {
		st.Write8(uint8(e.eventType))
		st.Write64(e.cycle - s.cycles)
	}
}

// Load restores the cycle counter and pending events. Handlers are
// not serialized; they survive in the registration table.
func (s *Scheduler) Load(st *types.State) {
	for len(s.queue) > 0 {
		heap.Pop(&s.queue)
	}
	s.cycles = st.Read64()
	n := int(st.Read8())
	for i := 0; i < n; i++ {
		eventType := EventType(st.Read8())
		offset := st.Read64()
		s.ScheduleEvent(eventType, offset)
	}
	s.updateNext()
}

// eventQueue implements heap.Interface ordered by (cycle, seq).
type eventQueue []*Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].cycle != q[j].cycle {
		return q[i].cycle < q[j].cycle
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *eventQueue) Push(x any) {
	e := x.(*Event)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	e.index = -1
	old[n-1] = nil
	*q = old[:n-1]
	return e
}
