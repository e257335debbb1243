package vdp

import (
	"loopy/emu/log"
	"loopy/swab"
)

// Layer-enable bitmask bits (spec §4.7's "layer-enable bitmask").
const (
	enableBG0     = 1 << 0
	enableBG1     = 1 << 1
	enableBitmap0 = 1 << 2
	enableBitmap1 = 1 << 3
	enableBitmap2 = 1 << 4
	enableBitmap3 = 1 << 5
	enableObj0    = 1 << 6
	enableObj1    = 1 << 7
)

type layerKind int

const (
	layerBG0 layerKind = iota
	layerBG1
	layerBitmap
	layerObj0
	layerObj1
)

type drawStep struct {
	kind    layerKind
	bitmapN int // valid when kind == layerBitmap
}

// drawOrder builds the bottom-to-top composition order described by spec
// §4.7: three configurable priority bits (bitmap_prio, bg0_prio, obj0_prio)
// determine where BG0 and OBJ0 sit relative to the two bitmap pairs and
// BG1/OBJ1, which are otherwise fixed.
func (v *VDP) drawOrder() []drawStep {
	lowPair, highPair := [2]int{0, 1}, [2]int{2, 3}
	if v.bitmapPrio != 0 {
		lowPair, highPair = highPair, lowPair
	}

	var order []drawStep
	pushObj0 := func(tier uint8) {
		if v.obj0Prio == tier {
			order = append(order, drawStep{kind: layerObj0})
		}
	}

	pushObj0(3)
	order = append(order, drawStep{kind: layerBG1})
	if !v.bg0Prio {
		order = append(order, drawStep{kind: layerBG0})
	}
	pushObj0(2)
	order = append(order, drawStep{kind: layerBitmap, bitmapN: lowPair[0]}, drawStep{kind: layerBitmap, bitmapN: lowPair[1]})
	pushObj0(1)
	order = append(order, drawStep{kind: layerBitmap, bitmapN: highPair[0]}, drawStep{kind: layerBitmap, bitmapN: highPair[1]})
	if v.bg0Prio {
		order = append(order, drawStep{kind: layerBG0})
	}
	order = append(order, drawStep{kind: layerObj1})
	pushObj0(0)

	return order
}

func (v *VDP) layerEnabled(mask uint16) bool { return v.layerEnable&mask != 0 }

// putScreen writes idx into the target screen(s); screen buffers act as a
// painter's algorithm across the draw order (spec §4.7: "Screens are
// cleared to 0 at start of line").
func putScreen(screen screenSel, x int, idx uint8, a, b *[DisplayWidth]uint8) {
	if screen == screenA || screen == screenBoth {
		a[x] = idx
	}
	if screen == screenB || screen == screenBoth {
		b[x] = idx
	}
}

// drawScanline implements spec §4.7's per-scanline pipeline: clear the two
// screens, draw every enabled layer bottom-to-top into them, run display
// capture if armed, then compose the final ARGB1555 pixel row.
func (v *VDP) drawScanline(y int) {
	for x := 0; x < DisplayWidth; x++ {
		v.screenLineA[x] = 0
		v.screenLineB[x] = 0
	}

	for _, step := range v.drawOrder() {
		switch step.kind {
		case layerBG0, layerBG1:
			n := 0
			mask := uint16(enableBG0)
			if step.kind == layerBG1 {
				n, mask = 1, enableBG1
			}
			if !v.layerEnabled(mask) {
				continue
			}
			for x := 0; x < DisplayWidth; x++ {
				idx, screen, opaque := v.bgPixel(n, x, y)
				if !opaque {
					continue
				}
				putScreen(screen, x, idx, &v.screenLineA, &v.screenLineB)
			}

		case layerBitmap:
			n := step.bitmapN
			if !v.layerEnabled(uint16(enableBitmap0) << uint(n)) {
				continue
			}
			pairIdx := 0
			if n >= 2 {
				pairIdx = 1
			}
			var tmp [DisplayWidth]uint8
			var opaque [DisplayWidth]bool
			v.drawBitmapLine(n, y, &tmp, &opaque)
			for x := 0; x < DisplayWidth; x++ {
				if !opaque[x] {
					continue
				}
				putScreen(v.bitmapScreenMode[pairIdx], x, tmp[x], &v.screenLineA, &v.screenLineB)
			}

		case layerObj0, layerObj1:
			n := 0
			mask := uint16(enableObj0)
			if step.kind == layerObj1 {
				n, mask = 1, enableObj1
			}
			if !v.layerEnabled(mask) {
				continue
			}
			for x := 0; x < DisplayWidth; x++ {
				idx, opaque := v.objLayerPixel(n, x, y)
				if !opaque {
					continue
				}
				putScreen(v.obj[n].screenMode, x, idx, &v.screenLineA, &v.screenLineB)
			}
		}
	}

	v.runCapture(y)
	v.composeLine(y)
}

// paletteColor looks up a nonzero 8-bit palette index's RGB555 color.
func (v *VDP) paletteColor(idx uint8) uint16 {
	off := int(idx) * 2
	return swab.R16(v.Palette[off : off+2])
}

func splitRGB555(c uint16) (r, g, b uint16) {
	return (c >> 10) & 0x1F, (c >> 5) & 0x1F, c & 0x1F
}

func clamp5(v int16) uint16 {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint16(v)
}

func joinRGB555(r, g, b int16) uint16 {
	return clamp5(r)<<10 | clamp5(g)<<5 | clamp5(b)
}

// screenColor resolves a screen's paletted pixel to an RGB555 color: index
// 0 is transparent and shows the screen's backdrop (spec §8's worked
// example: palette[0] must NOT be shown for a transparent pixel).
func (v *VDP) screenColor(idx uint8, backdrop uint16) uint16 {
	if idx == 0 {
		return backdrop
	}
	return v.paletteColor(idx)
}

// composeLine forms the final ARGB1555 output row from screens A and B,
// per spec §4.7's color-math/overlay modes.
func (v *VDP) composeLine(y int) {
	base := y * DisplayWidth
	for x := 0; x < DisplayWidth; x++ {
		aIdx, bIdx := v.screenLineA[x], v.screenLineB[x]
		if v.screenBBackdropOnly {
			bIdx = 0
		}
		a := v.screenColor(aIdx, v.backdropA)
		b := v.screenColor(bIdx, v.backdropB)

		var out uint16
		switch {
		case v.dispMode == 0 || v.dispMode == 1:
			out = v.colorMath(a, b)
		case v.dispMode == 4 || v.dispMode == 5:
			// Overlay: one screen shows except where the other has a
			// non-zero index, which takes priority (spec §4.7).
			if bIdx != 0 {
				out = b
			} else {
				out = a
			}
		default:
			out = a
		}
		v.display[base+x] = out | 0x8000 // opaque alpha bit set
	}
}

func (v *VDP) colorMath(a, b uint16) uint16 {
	ar, ag, ab := splitRGB555(a)
	br, bg, bb := splitRGB555(b)

	var r, g, bl int16
	if v.blendSubtractive {
		r = int16(ar) - int16(br)
		g = int16(ag) - int16(bg)
		bl = int16(ab) - int16(bb)
	} else {
		r = int16(ar) + int16(br)
		g = int16(ag) + int16(bg)
		bl = int16(ab) + int16(bb)
	}
	if v.blendHalf {
		r, g, bl = r/2, g/2, bl/2
	}
	return joinRGB555(r, g, bl)
}

// runCapture implements spec §4.7's display capture: format 0x03 snapshots
// screen A's 8-bit palette indices (before palette lookup) into the
// capture buffer, then clears the one-shot enable bit.
func (v *VDP) runCapture(y int) {
	if !v.captureEnable || uint16(y) != v.captureScanline {
		return
	}
	if v.captureFormat == 0x03 {
		copy(v.Capture, v.screenLineA[:])
	} else {
		log.ModVDP.WarnZ("unsupported capture format").Uint8("format", v.captureFormat).End()
	}
	v.captureEnable = false
}
