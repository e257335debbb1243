package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/jx"
)

func makeHeader(sramStart, sramEnd uint32) []byte {
	data := make([]byte, 0x20)
	putBE32(data[offSRAMStart:], sramStart)
	putBE32(data[offSRAMEnd:], sramEnd)
	return data
}

func putBE32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func TestDecodeDerivesSRAMSize(t *testing.T) {
	data := makeHeader(0x2000000, 0x2001FFF)
	rom, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if rom.SRAMSize != 0x2000 {
		t.Errorf("SRAMSize = %#x, want 0x2000", rom.SRAMSize)
	}
}

func TestDecodeRejectsInvertedRange(t *testing.T) {
	data := makeHeader(0x2001FFF, 0x2000000)
	if _, err := Decode(data); err == nil {
		t.Error("expected error for inverted SRAM range")
	}
}

func TestLoadSRAMPadsShortFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.sav")
	if err := os.WriteFile(path, []byte{0x01, 0x02}, 0o644); err != nil {
		t.Fatal(err)
	}

	blob := LoadSRAM(path, 8)
	want := []byte{0x01, 0x02, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	for i := range want {
		if blob[i] != want[i] {
			t.Fatalf("blob = %x, want %x", blob, want)
		}
	}
}

func TestLoadSRAMTruncatesLongFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.sav")
	long := make([]byte, 16)
	for i := range long {
		long[i] = byte(i)
	}
	if err := os.WriteFile(path, long, 0o644); err != nil {
		t.Fatal(err)
	}

	blob := LoadSRAM(path, 4)
	if len(blob) != 4 {
		t.Fatalf("len(blob) = %d, want 4", len(blob))
	}
	for i := 0; i < 4; i++ {
		if blob[i] != byte(i) {
			t.Errorf("blob[%d] = %#x, want %#x", i, blob[i], i)
		}
	}
}

func TestLoadSRAMMissingFileIsAllOnes(t *testing.T) {
	blob := LoadSRAM(filepath.Join(t.TempDir(), "missing.sav"), 4)
	for i, b := range blob {
		if b != 0xFF {
			t.Errorf("blob[%d] = %#x, want 0xFF", i, b)
		}
	}
}

func TestCommitSRAMRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.sav")
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	CommitSRAM(path, want)
	got := LoadSRAM(path, len(want))
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got = %x, want %x", got, want)
		}
	}
}

func TestWriteInfoJSONIncludesDerivedFields(t *testing.T) {
	data := makeHeader(0x2000000, 0x2001FFF)
	rom, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	var w jx.Writer
	rom.WriteInfoJSON(&w)

	var dec jx.Decoder
	dec.ResetBytes(w.Buf)
	var sramSize int
	if err := dec.Obj(func(d *jx.Decoder, key string) error {
		if key == "sram_size" {
			v, err := d.Int()
			if err != nil {
				return err
			}
			sramSize = v
			return nil
		}
		return d.Skip()
	}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sramSize != 0x2000 {
		t.Errorf("sram_size = %#x, want 0x2000", sramSize)
	}
}
