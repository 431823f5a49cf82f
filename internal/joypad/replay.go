package joypad

import (
	"fmt"

	"github.com/mellified/dotmatrix/internal/types"
	"github.com/mellified/dotmatrix/pkg/log"
)

const replayVersion = 1

// writeReplayHeader prepends the fixed replay header: version,
// cartridge title and content hash.
func writeReplayHeader(s *types.State, title string, hash uint32) {
	s.Write8(replayVersion)
	s.Write8(uint8(len(title)))
	s.WriteData([]byte(title))
	s.Write32(hash)
}

// readReplayHeader consumes and validates the header, returning the
// recorded title and hash.
func readReplayHeader(s *types.State) (string, uint32, error) {
	if s.Remaining() < 2 {
		return "", 0, fmt.Errorf("replay: truncated header")
	}
	if v := s.Read8(); v != replayVersion {
		return "", 0, fmt.Errorf("replay: unsupported version %d", v)
	}
	n := int(s.Read8())
	if s.Remaining() < n+4 {
		return "", 0, fmt.Errorf("replay: truncated header")
	}
	title := make([]byte, n)
	s.ReadData(title)
	return string(title), s.Read32(), nil
}

// Recorder wraps a plain joypad and appends every polling frame that
// carried events to a replay stream.
type Recorder struct {
	*Plain

	stream *types.State
}

// NewRecorder starts a recording for the cartridge identified by
// title and hash.
func NewRecorder(inner *Plain, title string, hash uint32) *Recorder {
	s := types.NewState()
	writeReplayHeader(s, title, hash)
	return &Recorder{Plain: inner, stream: s}
}

// Tick records the frame and forwards it to the wrapped joypad.
func (r *Recorder) Tick(now uint64, events []Event) {
	if len(events) > 0 {
		r.stream.Write64(now)
		r.stream.Write8(uint8(len(events)))
		for _, e := range events {
			r.stream.Write8(uint8(e.Button))
			r.stream.WriteBool(e.Pressed)
		}
	}
	r.Plain.Tick(now, events)
}

// Bytes returns the replay stream recorded so far.
func (r *Recorder) Bytes() []byte {
	return r.stream.Bytes()
}

// Player wraps a plain joypad and replaces host input with frames
// from a recorded stream, applied when emulated time reaches each
// frame's timestamp.
type Player struct {
	*Plain

	stream *types.State
	log    log.Logger

	nextTime uint64
	nextSet  []Event
	done     bool
}

// NewPlayer opens a replay stream. A hash mismatch against the
// loaded cartridge is reported but playback continues.
func NewPlayer(inner *Plain, raw []byte, hash uint32, logger log.Logger) (*Player, error) {
	if logger == nil {
		logger = log.NewNull()
	}
	s := types.StateFromBytes(raw)
	title, recordedHash, err := readReplayHeader(s)
	if err != nil {
		return nil, err
	}
	if recordedHash != hash {
		logger.Errorf("replay: recorded for %q (hash %08x), cartridge hash is %08x", title, recordedHash, hash)
	}

	p := &Player{Plain: inner, stream: s, log: logger}
	p.advance()
	return p, nil
}

func (p *Player) advance() {
	if p.stream.Remaining() < 9 {
		p.done = true
		return
	}
	p.nextTime = p.stream.Read64()
	n := int(p.stream.Read8())
	p.nextSet = make([]Event, 0, n)
	for i := 0; i < n; i++ {
		b := Button(p.stream.Read8())
		pressed := p.stream.ReadBool()
		p.nextSet = append(p.nextSet, Event{Button: b, Pressed: pressed})
	}
}

// Tick ignores host events and applies recorded frames that have
// come due.
func (p *Player) Tick(now uint64, _ []Event) {
	for !p.done && now >= p.nextTime {
		p.Plain.Tick(now, p.nextSet)
		p.advance()
	}
	p.Plain.Tick(now, nil)
}
