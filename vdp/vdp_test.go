package vdp

import (
	"testing"

	"loopy/intc"
	"loopy/sched"
	"loopy/swab"
)

func newTestVDP() *VDP {
	dom := sched.NewDomain("test")
	ic := intc.New()
	return New(dom, ic, intc.SourceIRQ0)
}

// TestBGTransparency verifies that a BG tile index of 0 is transparent and
// the composed pixel falls back to the screen's backdrop color, never to
// palette index 0's stored color (spec §8, "Testable Properties" #3).
func TestBGTransparency(t *testing.T) {
	v := newTestVDP()
	v.bgMapSize = 3 // 32x32 tiles
	v.bg[0].tileSize = 8
	v.backdropA = 0x1234 & 0x7FFF

	// Palette index 0 is deliberately given a bogus non-backdrop color to
	// prove it is never displayed for a transparent pixel.
	swab.W16(v.Palette[0:2], 0x7FFF)

	// BG0 map entry (0,0): tile index 0, screen A, no flips -> transparent.
	swab.W16(v.TileVRAM[0:2], 0)

	v.layerEnable = enableBG0
	v.dispMode = 0xFF // neither color-math nor overlay: shows screen A directly

	idx, screen, opaque := v.bgPixel(0, 0, 0)
	if opaque {
		t.Fatalf("tile index 0 should be transparent, got idx=%d screen=%d", idx, screen)
	}

	v.drawScanline(0)
	got := v.display[0] &^ 0x8000
	want := v.backdropA
	if got != want {
		t.Fatalf("composed pixel = %#04x, want backdrop %#04x", got, want)
	}
}

// TestObjPriorityIDOffset verifies that with two overlapping OBJ-0 entries,
// changing id_offs changes which entry's tile wins the overlap (spec §8
// worked example #4).
func TestObjPriorityIDOffset(t *testing.T) {
	v := newTestVDP()
	v.obj[0].tileOffset = 0
	v.obj[0].palSel = 0x1111

	writeObj := func(id int, x, y int, tileIdx uint8) {
		var raw uint32
		raw |= uint32(x&0x1FF) << 23
		raw |= uint32((y>>8)&1) << 22
		raw |= 0 << 20 // 8x8
		raw |= 0 << 18 // palDesc 0
		raw |= uint32(y&0xFF) << 8
		raw |= uint32(tileIdx)
		off := id * 4
		swab.W32(v.OAM[off:off+4], raw)
	}

	// Two fully-overlapping 8x8 OBJ-0 entries at (10,10): id 0 uses tile 1,
	// id 1 uses tile 2. Give each tile a distinct nonzero pixel so the
	// winner is identifiable.
	writeObj(0, 10, 10, 1)
	writeObj(1, 10, 10, 2)

	base := v.objTileDataBase()
	setTilePixel := func(tileIdx uint8, val uint8) {
		// 8x8 4bpp tile: 32 bytes, pixel (0,0) is the high nibble of byte 0.
		off := base + int(tileIdx)*32
		v.TileVRAM[off] = val << 4
	}
	setTilePixel(1, 0xA)
	setTilePixel(2, 0xB)

	v.objIDOffs = 0
	idx, opaque := v.objLayerPixel(0, 10, 10)
	if !opaque {
		t.Fatal("expected an opaque OBJ pixel")
	}
	if idx&0xF != 0xA {
		t.Fatalf("id_offs=0: expected lowest-id entry (id 0, tile 1) to win, got idx=%#x", idx)
	}

	v.objIDOffs = 1
	idx, opaque = v.objLayerPixel(0, 10, 10)
	if !opaque {
		t.Fatal("expected an opaque OBJ pixel")
	}
	if idx&0xF != 0xB {
		t.Fatalf("id_offs=1: expected rotated lowest-id entry (id 1, tile 2) to win, got idx=%#x", idx)
	}
}

// TestDMAFill verifies that writing to the DMA trigger region for line y
// fills that scanline of bitmap VRAM, replacing only the dma_mask bits of
// each byte with dma_value's corresponding bits (spec §8 worked example #6).
func TestDMAFill(t *testing.T) {
	v := newTestVDP()
	for i := 0; i < DisplayWidth; i++ {
		v.BitmapVRAM[5*DisplayWidth+i] = 0x0F
	}
	v.dmaMask = 0xF0
	v.dmaValue = 0xA0

	v.Write16(mmioBase+offDMATrigger+uint32(5*2), 0)

	for i := 0; i < DisplayWidth; i++ {
		got := v.BitmapVRAM[5*DisplayWidth+i]
		if got != 0xAF {
			t.Fatalf("byte %d after DMA fill = %#02x, want %#02x", i, got, 0xAF)
		}
	}

	// A different scanline must be untouched.
	for i := 0; i < DisplayWidth; i++ {
		if v.BitmapVRAM[6*DisplayWidth+i] != 0 {
			t.Fatalf("scanline 6 unexpectedly modified at byte %d", i)
		}
	}
}

// TestVSyncWrap verifies vcount wraps into the documented negative region on
// VSYNC entry and that FrameEnded latches until the next ArmFrame.
func TestVSyncWrap(t *testing.T) {
	v := newTestVDP()
	v.vcount = DisplayHeight - 1
	v.onLineAdvance(0, 0)

	if !v.FrameEnded() {
		t.Fatal("expected FrameEnded after crossing DisplayHeight")
	}
	if v.vcount&0x100 == 0 {
		t.Fatalf("expected vcount to wrap into negative half, got %d", v.vcount)
	}

	v.ArmFrame()
	if v.FrameEnded() {
		t.Fatal("ArmFrame should clear the end-of-frame flag")
	}
}

// TestRegisterRoundTrip exercises the MMIO surface for a representative
// register from each group.
func TestRegisterRoundTrip(t *testing.T) {
	v := newTestVDP()

	v.Write16(mmioBase+offCtrl+0x08, 0x123)
	if got := v.Read16(mmioBase + offCtrl + 0x08); got != 0x123 {
		t.Fatalf("captureScanline round-trip = %#x, want 0x123", got)
	}

	v.Write16(mmioBase+offBitmap+0x00, 0x0055)
	if got := v.bitmap[0].scrollX; got != 0x0055 {
		t.Fatalf("bitmap[0].scrollX = %#x, want 0x55", got)
	}

	v.Write16(mmioBase+offDisplay+0x04, 0x00FF)
	if v.layerEnable != 0x00FF {
		t.Fatalf("layerEnable = %#x, want 0xFF", v.layerEnable)
	}

	v.Write8(mmioBase+offDMACtrl+0x00, 0xAB)
	if v.dmaMask != 0xAB {
		t.Fatalf("dmaMask via Write8 = %#x, want 0xAB", v.dmaMask)
	}
}
