//go:generate go run golang.org/x/tools/cmd/stringer -type=EventType -output=event_string.go
package scheduler

// EventType identifies the device action an Event performs when it
// comes due. The set is closed so events stay cheap to dispatch and
// trivial to serialize.
type EventType uint8

const (
	DividerTick EventType = iota
	DriveJoypad
	TimerTick
	TimerReload

	HandleInterrupts
	SerialTransfer

	DMAStartTransfer
	DMADriveTransfer

	PPUStartOAMSearch
	PPUStartPixelTransfer
	PPUStartHBlank
	PPUStartVBlank
	PPUAdvanceLine
	PPULine153Start
	PPULine153Continue
	PPUEndVBlank

	APUFrameSequencer
	APUSample

	eventTypes
)

// Event is a single scheduled action. Only one instance of each
// EventType is pending at a time; rescheduling a pending type moves
// it to the new deadline.
type Event struct {
	cycle     uint64
	seq       uint64
	eventType EventType
	handler   func()

	index int // heap bookkeeping
}
