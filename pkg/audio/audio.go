// Package audio provides the SDL2 audio sink consuming the sound
// controller's PCM stream.
package audio

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/mellified/dotmatrix/internal/apu"
)

// Player queues interleaved stereo samples onto an SDL audio device.
type Player struct {
	device sdl.AudioDeviceID
}

// NewPlayer opens the default audio device at the controller's
// sample rate.
func NewPlayer() (*Player, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}

	spec := &sdl.AudioSpec{
		Freq:     apu.SampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 2,
		Samples:  2048,
	}
	device, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	sdl.PauseAudioDevice(device, false)

	return &Player{device: device}, nil
}

// PushSamples queues a PCM frame. Once the queue is a few frames
// deep, older data is dropped so latency stays bounded.
func (p *Player) PushSamples(samples []uint8) {
	if sdl.GetQueuedAudioSize(p.device) > uint32(apu.SampleRate) {
		sdl.ClearQueuedAudio(p.device)
	}
	_ = sdl.QueueAudio(p.device, samples)
}

// Close shuts the device down.
func (p *Player) Close() {
	sdl.CloseAudioDevice(p.device)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
}

var _ apu.Sink = (*Player)(nil)
