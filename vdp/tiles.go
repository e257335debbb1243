package vdp

import "loopy/swab"

// bgMapDims returns (tiles-wide, tiles-tall) for the four geometries
// spec §3 names: 64x64, 64x32, 32x64, 32x32.
func bgMapDims(mapSize uint8) (w, h int) {
	switch mapSize & 3 {
	case 0:
		return 64, 64
	case 1:
		return 64, 32
	case 2:
		return 32, 64
	default:
		return 32, 32
	}
}

// tilemapLayout returns the byte offset of BG0's map, BG1's map and the
// shared tile-data region, per spec §4.7: "If BG maps are shared, both BGs
// share the single map region and tile data starts immediately after;
// otherwise BG1's map follows BG0's and data doubles in offset."
func (v *VDP) tilemapLayout() (bg0Map, bg1Map, tileData int) {
	mapW, mapH := bgMapDims(v.bgMapSize)
	mapBytes := mapW * mapH * 2
	if v.bgShared {
		return 0, 0, mapBytes
	}
	return 0, mapBytes, mapBytes * 2
}

// decodeTilemapEntry unpacks a 16-bit big-endian tilemap entry (spec §3:
// "11-bit tile index, 1-bit screen (A/B), 2-bit palette descriptor,
// x-flip, y-flip"), LSB-first: tileIndex is bits 0-10, screen bit 11,
// palDesc bits 12-13, xFlip bit 14, yFlip bit 15.
type tilemapEntry struct {
	tileIndex uint16
	screen    screenSel
	palDesc   uint8
	xFlip     bool
	yFlip     bool
}

func decodeTilemapEntry(raw uint16) tilemapEntry {
	return tilemapEntry{
		tileIndex: raw & 0x7FF,
		screen:    screenSel((raw >> 11) & 1),
		palDesc:   uint8((raw >> 12) & 3),
		xFlip:     (raw>>14)&1 != 0,
		yFlip:     (raw>>15)&1 != 0,
	}
}

// bgPixel returns the composited 8-bit palette index for BG layer bg (0 or
// 1) at output column x on scanline y, or 0 (transparent) if nothing to
// draw. Tile index 0 pixels are always transparent regardless of palette
// (spec §8, "Testable Properties").
func (v *VDP) bgPixel(bg int, x, y int) (idx uint8, screen screenSel, opaque bool) {
	layer := &v.bg[bg]
	mapW, mapH := bgMapDims(v.bgMapSize)
	tileSize := int(layer.tileSize)
	if tileSize == 0 {
		tileSize = 8
	}

	worldX := (x + int(layer.scrollX)) % (mapW * tileSize)
	worldY := (y + int(layer.scrollY)) % (mapH * tileSize)
	if worldX < 0 {
		worldX += mapW * tileSize
	}
	if worldY < 0 {
		worldY += mapH * tileSize
	}

	tileCol := worldX / tileSize
	tileRow := worldY / tileSize
	fineX := worldX % tileSize
	fineY := worldY % tileSize

	bg0Map, bg1Map, tileData := v.tilemapLayout()
	mapBase := bg0Map
	if bg == 1 {
		mapBase = bg1Map
	}
	entryOff := mapBase + (tileRow*mapW+tileCol)*2
	if entryOff+2 > len(v.TileVRAM) {
		return 0, screenA, false
	}
	raw := swab.R16(v.TileVRAM[entryOff : entryOff+2])
	entry := decodeTilemapEntry(raw)

	is8bit := bg == 0 && v.bg0Is8Bit
	if entry.xFlip {
		fineX = tileSize - 1 - fineX
	}
	if entry.yFlip {
		fineY = tileSize - 1 - fineY
	}

	var pixel uint8
	if is8bit {
		bytesPerTile := tileSize * tileSize
		tileOff := tileData + int(layer.tileBase) + int(entry.tileIndex)*bytesPerTile
		off := tileOff + fineY*tileSize + fineX
		if off < 0 || off >= len(v.TileVRAM) {
			return 0, entry.screen, false
		}
		pixel = v.TileVRAM[off]
	} else {
		bytesPerTile := tileSize * tileSize / 2
		tileOff := tileData + int(layer.tileBase) + int(entry.tileIndex)*bytesPerTile
		rowBytes := tileSize / 2
		byteOff := tileOff + fineY*rowBytes + fineX/2
		if byteOff < 0 || byteOff >= len(v.TileVRAM) {
			return 0, entry.screen, false
		}
		b := v.TileVRAM[byteOff]
		if fineX%2 == 0 {
			pixel = b >> 4 // high nibble first (spec §4.7)
		} else {
			pixel = b & 0xF
		}
	}

	if pixel == 0 {
		return 0, entry.screen, false
	}

	if is8bit {
		return pixel, entry.screen, true
	}
	subPal := uint8(layer.palSel>>(uint(entry.palDesc)*4)) & 0xF
	return subPal<<4 | pixel, entry.screen, true
}

// objDims returns the pixel width/height for the four sprite sizes spec §3
// names: 8x8, 16x16, 16x32, 32x32.
func objDims(sizeField uint16) (w, h int) {
	switch sizeField & 3 {
	case 0:
		return 8, 8
	case 1:
		return 16, 16
	case 2:
		return 16, 32
	default:
		return 32, 32
	}
}

type objEntry struct {
	x         int
	y         int
	w, h      int
	palDesc   uint8
	xFlip     bool
	yFlip     bool
	tileIndex uint8
}

func decodeObjEntry(raw uint32) objEntry {
	x := int((raw >> 23) & 0x1FF)
	highY := (raw >> 22) & 1
	sizeField := uint16((raw >> 20) & 3)
	palDesc := uint8((raw >> 18) & 3)
	xFlip := (raw>>17)&1 != 0
	yFlip := (raw>>16)&1 != 0
	yLow := uint8((raw >> 8) & 0xFF)
	tileIdx := uint8(raw & 0xFF)

	w, h := objDims(sizeField)
	y := int(highY)<<8 | int(yLow)
	return objEntry{x: x, y: y, w: w, h: h, palDesc: palDesc, xFlip: xFlip, yFlip: yFlip, tileIndex: tileIdx}
}

// objAt returns the object attribute entry with the given rotated id
// (spec §4.7: "each selecting IDs by range using the rotating id_offs").
func (v *VDP) objAt(id int) objEntry {
	rotated := (id + int(v.objIDOffs)) & 0x7F
	off := rotated * 4
	raw := swab.R32(v.OAM[off : off+4])
	return decodeObjEntry(raw)
}

// objLayerPixel returns the composited 8-bit palette index for OBJ layer
// layer (0 or 1) at column x on scanline y. OBJ 0 has highest priority, so
// entries are scanned in reverse (rotated) id order with no early exit:
// each opaque hit overwrites the previous one, so the last write (lowest
// id) wins — spec §8's worked example (two OBJ-0 entries overlapping; the
// lower id wins).
func (v *VDP) objLayerPixel(layer int, x, y int) (idx uint8, opaque bool) {
	ls := &v.obj[layer]
	rangeStart, rangeEnd := 0, 63
	if layer == 1 {
		rangeStart, rangeEnd = 64, 127
	}

	found := false
	var winner uint8
	for id := rangeEnd; id >= rangeStart; id-- {
		e := v.objAt(id)
		wrapY := (y - e.y) & 0x1FF
		if wrapY < 0 || wrapY >= e.h {
			continue
		}
		dx := x - e.x
		if dx < 0 || dx >= e.w {
			continue
		}
		fx, fy := dx, wrapY
		if e.xFlip {
			fx = e.w - 1 - dx
		}
		if e.yFlip {
			fy = e.h - 1 - wrapY
		}

		bytesPerTile := e.w * e.h / 2
		tileOff := v.objTileDataBase() + int(ls.tileOffset) + int(e.tileIndex)*bytesPerTile
		rowBytes := e.w / 2
		byteOff := tileOff + fy*rowBytes + fx/2
		if byteOff < 0 || byteOff >= len(v.TileVRAM) {
			continue
		}
		b := v.TileVRAM[byteOff]
		var pixel uint8
		if fx%2 == 0 {
			pixel = b >> 4
		} else {
			pixel = b & 0xF
		}
		if pixel == 0 {
			continue
		}
		subPal := uint8(ls.palSel>>(uint(e.palDesc)*4)) & 0xF
		winner = subPal<<4 | pixel
		found = true
	}
	return winner, found
}

// objTileDataBase places OBJ tile graphics immediately after the BG's
// shared tile-data region (spec §4.7: "Tile data follows the BG's data
// region with a per-layer tile-index offset").
func (v *VDP) objTileDataBase() int {
	_, _, tileData := v.tilemapLayout()
	return tileData
}
