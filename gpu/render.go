package gpu

import "sort"

// tileAddr returns the VRAM address of tile index's data, honoring LCDC
// bit 4's unsigned/signed addressing mode (0x8000 unsigned, else 0x9000
// signed, per spec.md §4.4's control-register table). This mode only ever
// applies to BG/Window lookups; OBJ tiles always use spriteTileAddr.
func (g *GPU) tileAddr(index byte) uint16 {
	if g.tileDataLowBase {
		return tileDataLow + uint16(index)*16
	}
	return uint16(int32(tileDataHigh) + int32(int8(index))*16)
}

// spriteTileAddr returns the VRAM address of a sprite tile. OBJ tile
// indices are always unsigned against 0x8000 on real hardware, regardless
// of LCDC bit 4 (which only steers BG/Window addressing).
func (g *GPU) spriteTileAddr(index byte) uint16 {
	return tileDataLow + uint16(index)*16
}

// tilePixel decodes the 2bpp planar color index (0-3, palette-independent)
// of the pixel at (col,row) within the tile whose data starts at addr.
func (g *GPU) tilePixel(addr uint16, row, col int) byte {
	off := addr - vramStart
	lowByte := g.vram[off+uint16(row*2)]
	highByte := g.vram[off+uint16(row*2+1)]
	bit := uint(7 - col)
	lo := (lowByte >> bit) & 1
	hi := (highByte >> bit) & 1
	return hi<<1 | lo
}

func (g *GPU) tileMapIndex(mapHi bool, tileRow, tileCol int) byte {
	base := uint16(0x9800)
	if mapHi {
		base = 0x9C00
	}
	off := base - vramStart + uint16(tileRow*32+tileCol)
	return g.vram[off]
}

func applyPalette(palette byte, colorIndex byte) byte {
	return (palette >> (colorIndex * 2)) & 0x03
}

// renderScanline paints the full 256-pixel background row into g.bg (spec.md
// §3's background composition buffer), then composites window and sprites
// for the visible 160-pixel window of the current line directly into
// g.frame. This follows spec.md §4.4 point 3-4's literal background
// algorithm; window and sprite compositing are the supplement described in
// SPEC_FULL.md, additive over it.
func (g *GPU) renderScanline() {
	bgY := int(g.ly+g.scy) & 0xFF
	tileRow := bgY / 8
	rowInTile := bgY % 8
	for bgX := 0; bgX < bgMapSize; bgX++ {
		tileCol := bgX / 8
		colInTile := bgX % 8
		idx := g.tileMapIndex(g.bgTileMapHi, tileRow, tileCol)
		color := g.tilePixel(g.tileAddr(idx), rowInTile, colInTile)
		g.bg[bgY*bgMapSize+bgX] = color
	}

	windowActive := g.windowEnable && g.ly >= g.wy
	windowLine := int(g.ly) - int(g.wy)

	for x := 0; x < Width; x++ {
		var colorIndex byte
		if g.bgEnable {
			bgX := (int(g.scx) + x) & 0xFF
			colorIndex = g.bg[bgY*bgMapSize+bgX]
		}

		if windowActive {
			wx := int(g.wx) - 7
			if x >= wx {
				wTileRow := windowLine / 8
				wRowInTile := windowLine % 8
				wCol := x - wx
				wTileCol := wCol / 8
				wColInTile := wCol % 8
				idx := g.tileMapIndex(g.windowTileMapHi, wTileRow, wTileCol)
				colorIndex = g.tilePixel(g.tileAddr(idx), wRowInTile, wColInTile)
			}
		}

		shade := applyPalette(g.bgp, colorIndex)
		g.frame[int(g.ly)*Width+x] = shade
	}

	if g.spriteEnable {
		g.renderSprites()
	}
}

// spriteHeight returns 8 or 16 depending on LCDC bit 2.
func (g *GPU) spriteHeight() int {
	if g.spriteSize8x16 {
		return 16
	}
	return 8
}

// renderSprites composites up to 10 OAM entries that intersect the current
// scanline, in OAM order with lower X (and then lower OAM index) winning
// ties, matching original hardware priority. Color index 0 is transparent
// for sprites regardless of palette.
func (g *GPU) renderSprites() {
	height := g.spriteHeight()
	type visible struct {
		oamIndex int
		x, y     int
		tile     byte
		attrs    byte
	}
	var onLine []visible
	for i := 0; i < 40 && len(onLine) < 10; i++ {
		base := i * 4
		y := int(g.oam[base]) - 16
		x := int(g.oam[base+1]) - 8
		if int(g.ly) < y || int(g.ly) >= y+height {
			continue
		}
		onLine = append(onLine, visible{
			oamIndex: i,
			x:        x,
			y:        y,
			tile:     g.oam[base+2],
			attrs:    g.oam[base+3],
		})
	}
	sort.SliceStable(onLine, func(i, j int) bool { return onLine[i].x < onLine[j].x })
	var claimed [Width]bool

	for _, s := range onLine {
		row := int(g.ly) - s.y
		yFlip := s.attrs&0x40 != 0
		xFlip := s.attrs&0x20 != 0
		behindBG := s.attrs&0x80 != 0
		palette := g.obp0
		if s.attrs&0x10 != 0 {
			palette = g.obp1
		}

		tile := s.tile
		if height == 16 {
			tile &^= 0x01 // the top/bottom tile pair shares the low bit, per hardware
		}
		effRow := row
		if yFlip {
			effRow = height - 1 - row
		}
		tileOffset := effRow / 8
		rowInTile := effRow % 8

		for col := 0; col < 8; col++ {
			px := s.x + col
			if px < 0 || px >= Width {
				continue
			}
			effCol := col
			if xFlip {
				effCol = 7 - col
			}
			colorIndex := g.tilePixel(g.spriteTileAddr(tile+byte(tileOffset)), rowInTile, effCol)
			if colorIndex == 0 {
				continue // transparent
			}
			if claimed[px] {
				continue // a higher-priority sprite already owns this pixel
			}
			claimed[px] = true
			if behindBG {
				bgX := (int(g.scx) + px) & 0xFF
				bgY := int(g.ly+g.scy) & 0xFF
				if g.bg[bgY*bgMapSize+bgX] != 0 {
					continue // background wins when it's non-zero and sprite is behind it
				}
			}
			g.frame[int(g.ly)*Width+px] = applyPalette(palette, colorIndex)
		}
	}
}

// composeFrame is a hook point for a full-frame post-process; the current
// implementation paints directly into g.frame per scanline, so there is
// nothing left to do at V-Blank. System does not call it: it detects a
// ready frame by watching CurrentLine reach Height.
func (g *GPU) composeFrame() {}
