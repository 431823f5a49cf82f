// Package config loads front-end settings from a TOML file.
// Everything has a default so a missing file is not an error.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the front-end configuration.
type Config struct {
	// Display selects the renderer backend: "sdl" or "terminal".
	Display string `toml:"display"`
	// Scale multiplies the native 160x144 resolution.
	Scale int `toml:"scale"`
	// Unthrottled disables frame pacing.
	Unthrottled bool `toml:"unthrottled"`
	// Palette holds the four display shades as 0xRRGGBB values,
	// lightest first.
	Palette [4]uint32 `toml:"palette"`

	Keys Keys `toml:"keys"`
}

// Keys maps host key names onto the eight pad buttons.
type Keys struct {
	A      string `toml:"a"`
	B      string `toml:"b"`
	Start  string `toml:"start"`
	Select string `toml:"select"`
	Up     string `toml:"up"`
	Down   string `toml:"down"`
	Left   string `toml:"left"`
	Right  string `toml:"right"`
}

// Default is the configuration used when no file is present.
func Default() Config {
	return Config{
		Display: "sdl",
		Scale:   4,
		Palette: [4]uint32{0xE0F8D0, 0x88C070, 0x346856, 0x081820},
		Keys: Keys{
			A:      "z",
			B:      "x",
			Start:  "Return",
			Select: "Tab",
			Up:     "Up",
			Down:   "Down",
			Left:   "Left",
			Right:  "Right",
		},
	}
}

// Load reads the file at path over the defaults. A missing file
// returns the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
