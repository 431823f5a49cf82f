package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mellified/dotmatrix/internal/types"
)

// loadTile writes a tile whose rows all carry the given shade in
// every pixel.
func loadTile(p *PPU, offset uint16, shade uint8) {
	var lo, hi uint8
	if shade&0x01 != 0 {
		lo = 0xFF
	}
	if shade&0x02 != 0 {
		hi = 0xFF
	}
	for row := uint16(0); row < 8; row++ {
		p.vram[offset+row*2] = lo
		p.vram[offset+row*2+1] = hi
	}
}

func setupRender(t *testing.T) *testRig {
	r := newTestPPU(t)
	r.ppu.Write(types.BGP, 0xE4) // identity palette
	r.ppu.Write(types.OBP0, 0xE4)
	r.ppu.Write(types.OBP1, 0x1B) // reversed palette
	return r
}

func TestRenderer_BackgroundTile(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 1*16, 3)
	// map position (0,0) uses tile 1
	r.ppu.vram[0x1800] = 1

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit0
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(3), r.ppu.frame[0][0])
	assert.Equal(t, uint8(3), r.ppu.frame[0][7])
	assert.Equal(t, uint8(0), r.ppu.frame[0][8], "next map entry is tile 0")
}

func TestRenderer_BackgroundScroll(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 1*16, 2)
	r.ppu.vram[0x1800+1] = 1 // second map column

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit0
	r.ppu.scx = 8
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(2), r.ppu.frame[0][0], "scroll shifts the second tile into view")
}

func TestRenderer_SignedTileAddressing(t *testing.T) {
	r := setupRender(t)

	// tile -1 in the signed code area lives at 0x1000 - 16
	loadTile(r.ppu, 0x1000-16, 1)
	r.ppu.vram[0x1800] = 0xFF

	r.ppu.lcdc = types.Bit7 | types.Bit0 // bit 4 clear: signed area
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(1), r.ppu.frame[0][0])
}

func TestRenderer_SecondBackgroundMap(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 1*16, 3)
	r.ppu.vram[0x1C00] = 1

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit3 | types.Bit0
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(3), r.ppu.frame[0][0])
}

func TestRenderer_PaletteRemap(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 1*16, 1)
	r.ppu.vram[0x1800] = 1

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit0
	r.ppu.Write(types.BGP, 0x1B) // shade 1 -> 2
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(2), r.ppu.frame[0][0])
}

func TestRenderer_Window(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 1*16, 3)
	r.ppu.vram[0x1C00] = 1 // window uses its own code area selection

	r.ppu.lcdc = types.Bit7 | types.Bit6 | types.Bit5 | types.Bit4 | types.Bit0
	r.ppu.wy = 0
	r.ppu.wx = 7 + 80 // window origin at x=80
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(0), r.ppu.frame[0][79], "left of window shows background")
	assert.Equal(t, uint8(3), r.ppu.frame[0][80])
}

func TestRenderer_Sprite(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 2*16, 2)
	// sprite at screen (4, 0) using tile 2
	r.ppu.oam[0] = 16
	r.ppu.oam[1] = 12
	r.ppu.oam[2] = 2
	r.ppu.oam[3] = 0

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit1 | types.Bit0
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(0), r.ppu.frame[0][3])
	assert.Equal(t, uint8(2), r.ppu.frame[0][4])
	assert.Equal(t, uint8(2), r.ppu.frame[0][11])
	assert.Equal(t, uint8(0), r.ppu.frame[0][12])
}

func TestRenderer_SpriteSecondPalette(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 2*16, 1)
	r.ppu.oam[0] = 16
	r.ppu.oam[1] = 8
	r.ppu.oam[2] = 2
	r.ppu.oam[3] = spritePalette

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit1 | types.Bit0
	r.ppu.ly = 0
	r.ppu.renderScanline()

	// OBP1 is 0x1B: shade 1 maps to 2
	assert.Equal(t, uint8(2), r.ppu.frame[0][0])
}

func TestRenderer_SpriteBehindBackground(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 1*16, 3) // opaque background
	loadTile(r.ppu, 2*16, 1)
	r.ppu.vram[0x1800] = 1
	r.ppu.oam[0] = 16
	r.ppu.oam[1] = 12 // straddles the tile boundary at x=8
	r.ppu.oam[2] = 2
	r.ppu.oam[3] = spritePriority

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit1 | types.Bit0
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(3), r.ppu.frame[0][4], "sprite hides behind background shades 1-3")
	assert.Equal(t, uint8(1), r.ppu.frame[0][8], "but shows over background shade 0")
}

func TestRenderer_SpriteLimitPerLine(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 2*16, 1)
	// twelve sprites on line 0, spread horizontally
	for i := 0; i < 12; i++ {
		r.ppu.oam[i*4] = 16
		r.ppu.oam[i*4+1] = uint8(8 + i*8)
		r.ppu.oam[i*4+2] = 2
		r.ppu.oam[i*4+3] = 0
	}

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit1 | types.Bit0
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(1), r.ppu.frame[0][9*8], "tenth sprite drawn")
	assert.Equal(t, uint8(0), r.ppu.frame[0][10*8], "eleventh sprite dropped")
}

func TestRenderer_TallSprites(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 4*16, 1) // top half
	loadTile(r.ppu, 5*16, 2) // bottom half
	r.ppu.oam[0] = 16
	r.ppu.oam[1] = 8
	r.ppu.oam[2] = 4
	r.ppu.oam[3] = 0

	r.ppu.lcdc = types.Bit7 | types.Bit4 | types.Bit2 | types.Bit1 | types.Bit0

	r.ppu.ly = 0
	r.ppu.renderScanline()
	assert.Equal(t, uint8(1), r.ppu.frame[0][0])

	r.ppu.ly = 8
	r.ppu.renderScanline()
	assert.Equal(t, uint8(2), r.ppu.frame[8][0])
}

func TestRenderer_BackgroundDisabled(t *testing.T) {
	r := setupRender(t)

	loadTile(r.ppu, 1*16, 3)
	r.ppu.vram[0x1800] = 1

	r.ppu.lcdc = types.Bit7 | types.Bit4 // bit 0 clear
	r.ppu.ly = 0
	r.ppu.renderScanline()

	assert.Equal(t, uint8(0), r.ppu.frame[0][0], "blank line when background disabled")
}
