// Package terminal provides a tcell display driver that renders
// frames as half-block characters, two pixels per cell. Useful on
// hosts without a windowing system.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/mellified/dotmatrix/internal/ppu"
	"github.com/mellified/dotmatrix/pkg/display"
)

// Driver renders into a tcell screen.
type Driver struct {
	screen tcell.Screen
	colors [4]tcell.Color

	events chan display.Event
	done   chan struct{}
}

// New returns an uninitialized terminal driver.
func New() *Driver {
	return &Driver{
		events: make(chan display.Event, 64),
		done:   make(chan struct{}),
	}
}

func (d *Driver) Init(title string, scale int, shades [4]uint32) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	d.screen = screen
	for i, c := range shades {
		d.colors[i] = tcell.NewHexColor(int32(c))
	}

	go d.pumpEvents()
	return nil
}

// pumpEvents translates tcell events onto the driver channel until
// the screen is closed.
func (d *Driver) pumpEvents() {
	for {
		event := d.screen.PollEvent()
		if event == nil {
			return
		}
		switch e := event.(type) {
		case *tcell.EventKey:
			if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
				d.push(display.Event{Kind: display.EventQuit})
				continue
			}
			// terminals report no key releases; synthesize both edges
			name := keyName(e)
			d.push(display.Event{Kind: display.EventKeyDown, Key: name})
			d.push(display.Event{Kind: display.EventKeyUp, Key: name})
		case *tcell.EventResize:
			d.screen.Sync()
		}
	}
}

func keyName(e *tcell.EventKey) string {
	switch e.Key() {
	case tcell.KeyUp:
		return "Up"
	case tcell.KeyDown:
		return "Down"
	case tcell.KeyLeft:
		return "Left"
	case tcell.KeyRight:
		return "Right"
	case tcell.KeyEnter:
		return "Return"
	case tcell.KeyTab:
		return "Tab"
	case tcell.KeyF2:
		return "F2"
	case tcell.KeyF3:
		return "F3"
	case tcell.KeyF4:
		return "F4"
	case tcell.KeyRune:
		return string(e.Rune())
	}
	return ""
}

func (d *Driver) push(e display.Event) {
	select {
	case d.events <- e:
	default:
	}
}

func (d *Driver) Render(frame *display.Frame) error {
	for y := 0; y < ppu.ScreenHeight; y += 2 {
		for x := 0; x < ppu.ScreenWidth; x++ {
			top := d.colors[frame[y][x]&0x03]
			bottom := d.colors[frame[y+1][x]&0x03]
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			d.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
	d.screen.Show()
	return nil
}

func (d *Driver) PollEvents() []display.Event {
	var events []display.Event
	for {
		select {
		case e := <-d.events:
			events = append(events, e)
		default:
			return events
		}
	}
}

func (d *Driver) Close() {
	d.screen.Fini()
}

var _ display.Driver = (*Driver)(nil)
