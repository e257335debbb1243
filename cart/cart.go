// Package cart implements cartridge ROM/SRAM mapping and SRAM persistence
// (spec §4.5 budget line, §6 "ROM formats"/"Persisted state").
//
// Grounded on arl-nestor/ines.Rom's Open/ReadFrom shape (read the whole
// file, decode a small fixed header, slice out the payload) for ROM
// loading, generalized from iNES's PRG/CHR split to the Loopy's single
// flat ROM image plus a header-derived SRAM address range.
package cart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/jx"

	"loopy/emu/log"
)

// Header field offsets (spec §6): big-endian 32-bit pointers defining the
// SRAM address range.
const (
	offSRAMStart = 0x10
	offSRAMEnd   = 0x14
)

// ROM is a loaded cartridge image plus its derived SRAM sizing.
type ROM struct {
	Data []byte

	SRAMStart uint32
	SRAMEnd   uint32
	SRAMSize  int
}

// Open reads a cartridge ROM file and derives its SRAM range from the
// header (spec §6): sram_size = header[0x14] - header[0x10] + 1.
func Open(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func Decode(data []byte) (*ROM, error) {
	if len(data) < offSRAMEnd+4 {
		return nil, fmt.Errorf("cart: rom too small to contain a header (%d bytes)", len(data))
	}
	r := &ROM{Data: data}
	r.SRAMStart = be32(data[offSRAMStart:])
	r.SRAMEnd = be32(data[offSRAMEnd:])
	if r.SRAMEnd < r.SRAMStart {
		return nil, fmt.Errorf("cart: invalid SRAM range [%#x, %#x]", r.SRAMStart, r.SRAMEnd)
	}
	r.SRAMSize = int(r.SRAMEnd-r.SRAMStart) + 1
	return r, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// WriteInfoJSON streams the ROM header's derived fields as JSON, backing
// the `loopy rom-info` CLI subcommand (SPEC_FULL.md §11).
func (r *ROM) WriteInfoJSON(w *jx.Writer) {
	w.ObjStart()
	w.FieldStart("rom_size")
	w.Int(len(r.Data))
	w.Comma()
	w.FieldStart("sram_start")
	w.UInt32(r.SRAMStart)
	w.Comma()
	w.FieldStart("sram_end")
	w.UInt32(r.SRAMEnd)
	w.Comma()
	w.FieldStart("sram_size")
	w.Int(r.SRAMSize)
	w.ObjEnd()
}

// SavPath returns the sibling .sav file path for a ROM path (spec §6:
// "SRAM loaded from a sibling .sav file (same basename)").
func SavPath(romPath string) string {
	ext := filepath.Ext(romPath)
	return strings.TrimSuffix(romPath, ext) + ".sav"
}

// LoadSRAM reads path's .sav file and right-pads (with 0xFF) or truncates
// it to size (spec §6). A missing file yields a freshly-erased (all 0xFF)
// blob of size bytes.
func LoadSRAM(path string, size int) []byte {
	blob := make([]byte, size)
	for i := range blob {
		blob[i] = 0xFF
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.ModCart.WarnZ("failed to read SRAM file").String("path", path).Error("err", err).End()
		}
		return blob
	}
	copy(blob, data) // truncates implicitly if data is longer than blob
	return blob
}

// CommitSRAM writes blob to path, best-effort (spec §5, §7: "failure to
// write the .sav file is logged but does not interrupt emulation").
func CommitSRAM(path string, blob []byte) {
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		log.ModCart.WarnZ("failed to write SRAM file").String("path", path).Error("err", err).End()
	}
}

// Cart owns a loaded ROM image and its live SRAM blob, and is the page
// backing registered with sh2.Bus for the cartridge ROM and SRAM regions
// (spec §3, address map 0x02000000.../0x06000000...).
type Cart struct {
	rom  *ROM
	sram []byte

	savPath        string
	framesSinceSave int
}

// LoadFile opens romPath and its sibling .sav file.
func LoadFile(romPath string) (*Cart, error) {
	rom, err := Open(romPath)
	if err != nil {
		return nil, err
	}
	savPath := SavPath(romPath)
	return &Cart{
		rom:     rom,
		sram:    LoadSRAM(savPath, rom.SRAMSize),
		savPath: savPath,
	}, nil
}

func (c *Cart) ROM() []byte  { return c.rom.Data }
func (c *Cart) SRAM() []byte { return c.sram }
func (c *Cart) Info() *ROM   { return c.rom }

// Tick advances the cart's periodic-commit counter by one frame, writing
// the SRAM blob back once every commitFrames frames (spec §5: "once per
// ~60 frames and on shutdown").
func (c *Cart) Tick(commitFrames int) {
	c.framesSinceSave++
	if c.framesSinceSave >= commitFrames {
		c.framesSinceSave = 0
		c.Commit()
	}
}

// Commit writes the current SRAM blob back to the .sav file immediately.
func (c *Cart) Commit() {
	CommitSRAM(c.savPath, c.sram)
}
