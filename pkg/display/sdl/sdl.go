// Package sdl provides the SDL2 display driver.
package sdl

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/mellified/dotmatrix/internal/ppu"
	"github.com/mellified/dotmatrix/pkg/display"
)

// Driver renders frames into an SDL2 window.
type Driver struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	shades [4]uint32
	pixels [ppu.ScreenWidth * ppu.ScreenHeight * 4]byte
}

// New returns an uninitialized SDL driver.
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Init(title string, scale int, shades [4]uint32) error {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	d.shades = shades

	var err error
	d.window, err = sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(ppu.ScreenWidth*scale), int32(ppu.ScreenHeight*scale),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	d.renderer, err = sdl.CreateRenderer(d.window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	if err := d.renderer.SetLogicalSize(ppu.ScreenWidth, ppu.ScreenHeight); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	d.texture, err = d.renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING, ppu.ScreenWidth, ppu.ScreenHeight)
	if err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	return nil
}

func (d *Driver) Render(frame *display.Frame) error {
	i := 0
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			c := d.shades[frame[y][x]&0x03]
			d.pixels[i] = byte(c >> 16)
			d.pixels[i+1] = byte(c >> 8)
			d.pixels[i+2] = byte(c)
			d.pixels[i+3] = 0xFF
			i += 4
		}
	}

	if err := d.texture.Update(nil, d.pixels[:], ppu.ScreenWidth*4); err != nil {
		return err
	}
	if err := d.renderer.Copy(d.texture, nil, nil); err != nil {
		return err
	}
	d.renderer.Present()
	return nil
}

func (d *Driver) PollEvents() []display.Event {
	var events []display.Event
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			events = append(events, display.Event{Kind: display.EventQuit})
		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			kind := display.EventKeyDown
			if e.Type == sdl.KEYUP {
				kind = display.EventKeyUp
			}
			events = append(events, display.Event{
				Kind: kind,
				Key:  sdl.GetKeyName(e.Keysym.Sym),
			})
		}
	}
	return events
}

func (d *Driver) Close() {
	if d.texture != nil {
		_ = d.texture.Destroy()
	}
	if d.renderer != nil {
		_ = d.renderer.Destroy()
	}
	if d.window != nil {
		_ = d.window.Destroy()
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
}

var _ display.Driver = (*Driver)(nil)
