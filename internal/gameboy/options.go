package gameboy

import (
	"io"

	"github.com/mellified/dotmatrix/pkg/log"
)

// Opt configures a GameBoy at construction time.
type Opt func(*options)

type options struct {
	logger     log.Logger
	savPath    string
	serialSink io.Writer

	recordReplay bool
	replayData   []byte
}

// WithLogger routes core diagnostics to the given logger.
func WithLogger(l log.Logger) Opt {
	return func(o *options) { o.logger = l }
}

// WithSaveFile enables battery RAM mirroring to the given path.
func WithSaveFile(path string) Opt {
	return func(o *options) { o.savPath = path }
}

// WithSerialSink routes serial output to the given writer. Test
// programs report their results this way.
func WithSerialSink(w io.Writer) Opt {
	return func(o *options) { o.serialSink = w }
}

// WithReplayRecording records every joypad frame for later playback.
func WithReplayRecording() Opt {
	return func(o *options) { o.recordReplay = true }
}

// WithReplayPlayback replaces host input with the given recording.
func WithReplayPlayback(data []byte) Opt {
	return func(o *options) { o.replayData = data }
}
