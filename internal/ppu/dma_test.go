package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellified/dotmatrix/internal/types"
)

func TestDMA_TransfersAllOfOAM(t *testing.T) {
	r := newTestPPU(t)

	// stage a recognisable pattern in internal RAM at 0xC000
	for i := uint16(0); i < oamSize; i++ {
		r.bus.Write(0xC000+i, uint8(i)^0x5A)
	}

	r.ppu.Write(types.DMA, 0xC0)
	r.s.Tick(0) // start event
	r.s.Tick(oamSize)

	for i := uint16(0); i < oamSize; i++ {
		require.Equal(t, uint8(i)^0x5A, r.ppu.oam[i], "byte %d", i)
	}
	assert.False(t, r.ppu.DMA.Active())
	assert.Equal(t, uint8(0xC0), r.ppu.Read(types.DMA), "register reads back the last value")
}

func TestDMA_OAMBorrowedDuringTransfer(t *testing.T) {
	r := newTestPPU(t)

	r.bus.Write(0xC000, 0x42)
	r.ppu.Write(types.DMA, 0xC0)
	r.s.Tick(0)

	// mid transfer: CPU reads of sprite attribute memory return 0xFF
	r.s.Tick(80)
	assert.True(t, r.ppu.DMA.Active())
	assert.Equal(t, uint8(0xFF), r.bus.Read(0xFE00))

	r.s.Tick(80)
	assert.False(t, r.ppu.DMA.Active())
	assert.Equal(t, uint8(0x42), r.bus.Read(0xFE00))
}

func TestDMA_OneBytePerCycle(t *testing.T) {
	r := newTestPPU(t)

	for i := uint16(0); i < oamSize; i++ {
		r.bus.Write(0xC000+i, 0x11)
	}
	r.ppu.Write(types.DMA, 0xC0)
	r.s.Tick(0)

	r.s.Tick(10)
	assert.Equal(t, uint8(0x11), r.ppu.oam[9])
	assert.Equal(t, uint8(0x00), r.ppu.oam[10])
}

func TestDMA_EchoSourceAdjusted(t *testing.T) {
	r := newTestPPU(t)

	r.bus.Write(0xC000, 0x77)
	// 0xE0 names the echo region; the engine reads 0xC000 instead
	r.ppu.Write(types.DMA, 0xE0)
	r.s.Tick(0)
	r.s.Tick(oamSize)

	assert.Equal(t, uint8(0x77), r.ppu.oam[0])
}

func TestDMA_SecondTransferIgnored(t *testing.T) {
	r := newTestPPU(t)

	r.bus.Write(0xC000, 0xAA)
	r.bus.Write(0xD000, 0xBB)

	r.ppu.Write(types.DMA, 0xC0)
	r.s.Tick(0)
	r.s.Tick(10)

	// restarting mid-flight must not retarget the running transfer
	r.ppu.Write(types.DMA, 0xD0)
	r.s.Tick(oamSize)

	assert.Equal(t, uint8(0xAA), r.ppu.oam[0])
}

func TestDMA_SaveLoad(t *testing.T) {
	r := newTestPPU(t)

	r.ppu.Write(types.DMA, 0xC0)
	r.s.Tick(0)
	r.s.Tick(10)

	st := types.NewState()
	r.ppu.DMA.Save(st)

	loaded := newTestPPU(t)
	loaded.ppu.DMA.Load(st)
	assert.True(t, loaded.ppu.DMA.Active())
	assert.Equal(t, uint8(0xC0), loaded.ppu.DMA.Read(0))
}
