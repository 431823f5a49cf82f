// Package display defines the host video surface: a driver renders
// finished frames and reports input events back to the front-end.
package display

import (
	"github.com/mellified/dotmatrix/internal/ppu"
)

// Frame is one finished picture, one display shade per pixel.
type Frame = [ppu.ScreenHeight][ppu.ScreenWidth]uint8

// EventKind classifies a host input event.
type EventKind uint8

const (
	// EventQuit asks the front-end to shut down.
	EventQuit EventKind = iota
	// EventKeyDown and EventKeyUp carry a key name.
	EventKeyDown
	EventKeyUp
)

// Event is one host input event. Key carries the host key name for
// key events.
type Event struct {
	Kind EventKind
	Key  string
}

// Driver is a renderer backend.
type Driver interface {
	// Init brings the surface up at the given integer scale.
	Init(title string, scale int, shades [4]uint32) error
	// Render presents a finished frame. Called once per VBlank.
	Render(frame *Frame) error
	// PollEvents drains pending host input.
	PollEvents() []Event
	// Close releases the surface.
	Close()
}
