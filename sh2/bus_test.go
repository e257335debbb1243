package sh2

import "testing"

func TestReadWriteRoundTripPage(t *testing.T) {
	b := NewBus()
	ram := make([]byte, 0x1000)
	b.MapPage(0x01000000, ram)

	b.Write32(0x01000100, 0xAABBCCDD)
	if got := b.Read32(0x01000100); got != 0xAABBCCDD {
		t.Errorf("Read32 = %#08x, want %#08x", got, 0xAABBCCDD)
	}
	if got := b.Read16(0x01000100); got != 0xAABB {
		t.Errorf("Read16 = %#04x, want %#04x", got, 0xAABB)
	}
	if got := b.Read8(0x01000100); got != 0xAA {
		t.Errorf("Read8 = %#02x, want %#02x", got, 0xAA)
	}
}

func TestBigEndianBackingStore(t *testing.T) {
	b := NewBus()
	ram := make([]byte, 0x1000)
	b.MapPage(0x01000000, ram)

	b.Write16(0x01000000, 0x1234)
	if ram[0] != 0x12 || ram[1] != 0x34 {
		t.Errorf("backing = %02x %02x, want big-endian 12 34", ram[0], ram[1])
	}
}

func TestDistinctRegionsDoNotAlias(t *testing.T) {
	b := NewBus()
	ram := make([]byte, 0x1000)
	sram := make([]byte, 0x1000)
	b.MapPage(0x01000000, ram)
	b.MapPage(0x02000000, sram)

	b.Write8(0x01000000, 0x42)
	if got := b.Read8(0x02000000); got != 0 {
		t.Errorf("cart SRAM read after RAM write = %#02x, want 0 (regions must not alias)", got)
	}
}

func TestTranslateDropsOnlyBits28To31(t *testing.T) {
	if got := translate(0x0F000123); got != 0x0F000123 {
		t.Errorf("translate(on-chip) = %#08x, want unchanged 0x0F000123", got)
	}
	if got := translate(0xF1000123); got != 0x01000123 {
		t.Errorf("translate(with bits 28-31 set) = %#08x, want 0x01000123", got)
	}
}

type fakeMMIO struct {
	r8  uint8
	w8  uint8
	w8a uint32
}

func (f *fakeMMIO) Read8(addr uint32) uint8     { return f.r8 }
func (f *fakeMMIO) Write8(addr uint32, v uint8) { f.w8, f.w8a = v, addr }
func (f *fakeMMIO) Read16(addr uint32) uint16   { return uint16(f.r8) }
func (f *fakeMMIO) Write16(addr uint32, v uint16) {}
func (f *fakeMMIO) Read32(addr uint32) uint32   { return uint32(f.r8) }
func (f *fakeMMIO) Write32(addr uint32, v uint32) {}

func TestUnmappedReadReturnsZero(t *testing.T) {
	b := NewBus()
	if got := b.Read32(0x04058000); got != 0 {
		t.Errorf("unmapped Read32 = %#08x, want 0", got)
	}
}

func TestMMIODispatch(t *testing.T) {
	b := NewBus()
	dev := &fakeMMIO{r8: 0x55}
	b.AddMMIO("test", 0x04058000, 0x04060000, dev)

	if got := b.Read8(0x04058010); got != 0x55 {
		t.Errorf("Read8 via MMIO = %#02x, want 0x55", got)
	}
	b.Write8(0x04058020, 0x99)
	if dev.w8 != 0x99 || dev.w8a != 0x04058020 {
		t.Errorf("Write8 via MMIO got val=%#02x addr=%#08x", dev.w8, dev.w8a)
	}
}
