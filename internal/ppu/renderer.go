package ppu

import (
	"github.com/mellified/dotmatrix/internal/types"
)

// spritesPerLine is the hardware limit on sprites drawn on a single
// scanline.
const spritesPerLine = 10

// sprite is one decoded entry of sprite attribute memory.
type sprite struct {
	y     int
	x     int
	tile  uint8
	flags uint8
}

const (
	spritePriority uint8 = types.Bit7 // behind background shades 1-3
	spriteFlipY    uint8 = types.Bit6
	spriteFlipX    uint8 = types.Bit5
	spritePalette  uint8 = types.Bit4
)

// renderScanline draws the current line into the framebuffer:
// background, then window, then sprites.
func (p *PPU) renderScanline() {
	if p.ly >= ScreenHeight {
		return
	}

	// shades before palette mapping, used for sprite priority
	var rawLine [ScreenWidth]uint8

	if p.lcdc&types.Bit0 != 0 {
		p.renderBackground(&rawLine)
		if p.lcdc&types.Bit5 != 0 && p.ly >= p.wy && p.wx < ScreenWidth+7 {
			p.renderWindow(&rawLine)
			p.windowLine++
		}
	} else {
		bg := ByteToPalette(p.bgp)
		for x := 0; x < ScreenWidth; x++ {
			p.frame[p.ly][x] = bg[0]
		}
	}

	if p.lcdc&types.Bit1 != 0 {
		p.renderSprites(&rawLine)
	}
}

// tileRow fetches one row of a tile as its two bit planes.
func (p *PPU) tileRow(tileDataOffset uint16, row uint8) (lo, hi uint8) {
	return p.vram[tileDataOffset+uint16(row)*2], p.vram[tileDataOffset+uint16(row)*2+1]
}

// tileDataOffset resolves a tile index through the active code area:
// region 1 indexes unsigned from 0x8000, region 2 signed from 0x9000.
func (p *PPU) tileDataOffset(index uint8) uint16 {
	if p.lcdc&types.Bit4 != 0 {
		return uint16(index) * 16
	}
	return uint16(0x1000 + int(int8(index))*16)
}

func (p *PPU) renderBackground(rawLine *[ScreenWidth]uint8) {
	mapBase := uint16(0x1800)
	if p.lcdc&types.Bit3 != 0 {
		mapBase = 0x1C00
	}
	bg := ByteToPalette(p.bgp)

	y := p.scy + p.ly
	tileRowIdx := uint16(y/8) * 32
	for x := 0; x < ScreenWidth; x++ {
		mapX := p.scx + uint8(x)
		index := p.vram[mapBase+tileRowIdx+uint16(mapX/8)]
		lo, hi := p.tileRow(p.tileDataOffset(index), y%8)

		bit := 7 - mapX%8
		shade := (hi>>bit&1)<<1 | lo>>bit&1
		rawLine[x] = shade
		p.frame[p.ly][x] = bg[shade]
	}
}

func (p *PPU) renderWindow(rawLine *[ScreenWidth]uint8) {
	mapBase := uint16(0x1800)
	if p.lcdc&types.Bit6 != 0 {
		mapBase = 0x1C00
	}
	bg := ByteToPalette(p.bgp)

	startX := int(p.wx) - 7
	y := p.windowLine
	tileRowIdx := uint16(y/8) * 32
	for x := 0; x < ScreenWidth; x++ {
		if x < startX {
			continue
		}
		winX := uint8(x - startX)
		index := p.vram[mapBase+tileRowIdx+uint16(winX/8)]
		lo, hi := p.tileRow(p.tileDataOffset(index), y%8)

		bit := 7 - winX%8
		shade := (hi>>bit&1)<<1 | lo>>bit&1
		rawLine[x] = shade
		p.frame[p.ly][x] = bg[shade]
	}
}

// lineSprites collects the first ten sprites covering the current
// line, in attribute memory order.
func (p *PPU) lineSprites(height int) []sprite {
	var sprites []sprite
	for i := 0; i < len(p.oam) && len(sprites) < spritesPerLine; i += 4 {
		s := sprite{
			y:     int(p.oam[i]) - 16,
			x:     int(p.oam[i+1]) - 8,
			tile:  p.oam[i+2],
			flags: p.oam[i+3],
		}
		if int(p.ly) >= s.y && int(p.ly) < s.y+height {
			sprites = append(sprites, s)
		}
	}
	return sprites
}

func (p *PPU) renderSprites(rawLine *[ScreenWidth]uint8) {
	height := 8
	if p.lcdc&types.Bit2 != 0 {
		height = 16
	}

	for _, s := range p.lineSprites(height) {
		row := uint8(int(p.ly) - s.y)
		if s.flags&spriteFlipY != 0 {
			row = uint8(height-1) - row
		}

		tile := s.tile
		if height == 16 {
			// in 8x16 mode the tile index ignores its low bit
			tile &= 0xFE
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}

		// sprites always index unsigned from 0x8000
		lo, hi := p.tileRow(uint16(tile)*16, row)

		palette := ByteToPalette(p.obp0)
		if s.flags&spritePalette != 0 {
			palette = ByteToPalette(p.obp1)
		}

		for px := 0; px < 8; px++ {
			x := s.x + px
			if x < 0 || x >= ScreenWidth {
				continue
			}
			bit := uint8(7 - px)
			if s.flags&spriteFlipX != 0 {
				bit = uint8(px)
			}
			shade := (hi>>bit&1)<<1 | lo>>bit&1
			if shade == 0 {
				continue // transparent
			}
			if s.flags&spritePriority != 0 && rawLine[x] != 0 {
				continue // behind non-zero background
			}
			p.frame[p.ly][x] = palette[shade]
		}
	}
}
