// Package emulator is the host loop: it owns the core, paces frames
// against the wall clock, routes input to the joypad and frames to
// the display driver.
package emulator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mellified/dotmatrix/internal/gameboy"
	"github.com/mellified/dotmatrix/internal/joypad"
	"github.com/mellified/dotmatrix/internal/ppu"
	"github.com/mellified/dotmatrix/internal/types"
	"github.com/mellified/dotmatrix/pkg/config"
	"github.com/mellified/dotmatrix/pkg/display"
	"github.com/mellified/dotmatrix/pkg/log"
	"github.com/mellified/dotmatrix/pkg/storage"
)

// frameDuration is the wall-clock budget of one emulated frame.
const frameDuration = time.Second * gameboy.FrameCycles / gameboy.ClockSpeed

// saveStateName is the file the quick save keys operate on.
const saveStateName = "save_state.bin"

// Emulator couples a core with a display driver and the host input
// mapping.
type Emulator struct {
	gb     *gameboy.GameBoy
	driver display.Driver
	cfg    config.Config
	log    log.Logger

	keymap map[string]joypad.Button

	store       storage.Storage
	unthrottled bool
	frame       *display.Frame
}

// New assembles an emulator around an already constructed core.
// Quick saves land in the given storage under saveStateName.
func New(gb *gameboy.GameBoy, driver display.Driver, cfg config.Config, logger log.Logger, store storage.Storage) *Emulator {
	if logger == nil {
		logger = log.NewNull()
	}
	e := &Emulator{
		gb:          gb,
		driver:      driver,
		cfg:         cfg,
		log:         logger,
		unthrottled: cfg.Unthrottled,
		store:       store,
		keymap: map[string]joypad.Button{
			cfg.Keys.A:      joypad.ButtonA,
			cfg.Keys.B:      joypad.ButtonB,
			cfg.Keys.Start:  joypad.ButtonStart,
			cfg.Keys.Select: joypad.ButtonSelect,
			cfg.Keys.Up:     joypad.ButtonUp,
			cfg.Keys.Down:   joypad.ButtonDown,
			cfg.Keys.Left:   joypad.ButtonLeft,
			cfg.Keys.Right:  joypad.ButtonRight,
		},
	}
	gb.SetVideoSink(func(frame *[ppu.ScreenHeight][ppu.ScreenWidth]uint8, _, _, _ ppu.Palette) {
		e.frame = frame
	})
	return e
}

// Run drives the core until the user quits or the CPU crashes.
func (e *Emulator) Run() error {
	if err := e.driver.Init(e.gb.Cart.Title(), e.cfg.Scale, e.cfg.Palette); err != nil {
		return err
	}
	defer e.driver.Close()

	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		if quit := e.handleInput(); quit {
			return nil
		}

		e.gb.RunFrame()
		if msg := e.gb.CPU.Crashed(); msg != "" {
			return fmt.Errorf("cpu crashed: %s", msg)
		}

		if e.frame != nil {
			if err := e.driver.Render(e.frame); err != nil {
				return err
			}
		}

		if !e.unthrottled {
			<-ticker.C
		}
	}
}

// handleInput drains host events, translating pad keys for the core
// and acting on the emulator control keys.
func (e *Emulator) handleInput() (quit bool) {
	var pad []joypad.Event
	for _, event := range e.driver.PollEvents() {
		switch event.Kind {
		case display.EventQuit:
			return true
		case display.EventKeyDown:
			switch event.Key {
			case "F2":
				e.saveState()
			case "F3":
				e.loadState()
			case "F4":
				e.unthrottled = !e.unthrottled
				e.log.Infof("throttle %v", !e.unthrottled)
			default:
				if button, ok := e.keymap[event.Key]; ok {
					pad = append(pad, joypad.Event{Button: button, Pressed: true})
				}
			}
		case display.EventKeyUp:
			if button, ok := e.keymap[event.Key]; ok {
				pad = append(pad, joypad.Event{Button: button, Pressed: false})
			}
		}
	}
	if len(pad) > 0 {
		e.gb.DeliverKeyEvents(pad)
	}
	return false
}

func (e *Emulator) saveState() {
	f, err := e.store.Open(storage.Write, saveStateName)
	if err != nil {
		e.log.Errorf("save state: %v", err)
		return
	}
	defer f.Close()

	if err := f.Truncate(0); err != nil {
		e.log.Errorf("save state: %v", err)
		return
	}
	if _, err := f.Write(e.gb.SaveState().Bytes()); err != nil {
		e.log.Errorf("save state: %v", err)
		return
	}
	e.log.Infof("state saved to %s", saveStateName)
}

func (e *Emulator) loadState() {
	f, err := e.store.Open(storage.Read, saveStateName)
	if err != nil {
		e.log.Errorf("load state: %v", err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		e.log.Errorf("load state: %v", err)
		return
	}
	if err := e.gb.LoadState(types.StateFromBytes(raw)); err != nil {
		e.log.Errorf("load state: %v", err)
		return
	}
	e.log.Infof("state loaded from %s", saveStateName)
}

// DefaultStateDir is where quick saves land when the caller has no
// better location: next to the ROM.
func DefaultStateDir(romPath string) string {
	dir := filepath.Dir(romPath)
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return dir
}
