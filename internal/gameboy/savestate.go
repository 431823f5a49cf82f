package gameboy

import (
	"fmt"

	"github.com/cespare/xxhash"

	"github.com/mellified/dotmatrix/internal/types"
)

// SaveState serializes the entire core as a self-describing byte
// stream. ROM banks are excluded; only the cartridge hash is
// embedded so a load can verify it targets the same image.
func (g *GameBoy) SaveState() *types.State {
	s := types.NewState()
	s.Write32(stateMagic)
	s.Write8(stateVersion)
	s.Write32(g.Cart.Hash())

	g.Scheduler.Save(s)
	g.CPU.Save(s)
	g.Interrupts.Save(s)
	g.MMU.Save(s)
	g.Timer.Save(s)
	g.Serial.Save(s)
	g.Joypad.Save(s)
	g.PPU.Save(s)
	g.APU.Save(s)
	g.Cart.Save(s)

	return s
}

// LoadState replaces all mutable core state with the decoded one.
// The already loaded ROM banks stay attached to the controller; a
// hash mismatch rejects the stream before anything is touched.
func (g *GameBoy) LoadState(s *types.State) error {
	s.ResetPosition()
	if s.Remaining() < 9 {
		return fmt.Errorf("%w: truncated state", ErrCodec)
	}
	if magic := s.Read32(); magic != stateMagic {
		return fmt.Errorf("%w: bad magic %#08x", ErrCodec, magic)
	}
	if version := s.Read8(); version != stateVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCodec, version)
	}
	if hash := s.Read32(); hash != g.Cart.Hash() {
		return fmt.Errorf("%w: state was taken from a different cartridge (%08x != %08x)",
			ErrCodec, hash, g.Cart.Hash())
	}

	g.Scheduler.Load(s)
	g.CPU.Load(s)
	g.Interrupts.Load(s)
	g.MMU.Load(s)
	g.Timer.Load(s)
	g.Serial.Load(s)
	g.Joypad.Load(s)
	g.PPU.Load(s)
	g.APU.Load(s)
	g.Cart.Load(s)

	g.pendingKeys = g.pendingKeys[:0]
	g.frameDone = false

	return nil
}

// StateHash is a 64-bit digest of the serialized core, used to
// compare runs for determinism.
func (g *GameBoy) StateHash() uint64 {
	return xxhash.Sum64(g.SaveState().Bytes())
}
