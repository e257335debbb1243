// Package dump implements the optional serial debug dump described in spec
// §6: a snapshot of the VDP's memories written to disk at VSYNC, gated by
// emu/config's Debug.DumpOnVSync (SPEC_FULL.md §12).
//
// No teacher or pack file writes this exact framed-region format, so the
// binary layout is transcribed directly from spec §6's prose (magic,
// then a sequence of big-endian {addr, length, data_width} headers each
// followed by length raw bytes) using encoding/binary for the header
// fields.
package dump

import (
	"encoding/binary"
	"io"
	"os"
)

// magic is the file's fixed 8-byte header (spec §6: `"LPSTATE\0"`).
var magic = [8]byte{'L', 'P', 'S', 'T', 'A', 'T', 'E', 0}

// Region names one named memory block to dump, with the bus address it is
// reported under.
type Region struct {
	Addr uint32
	Data []byte
}

// Snapshot is a caller-built request naming which VDP memories to dump. The
// exact set spec §6 names is bitmap VRAM, tile VRAM, palette and OAM.
type Snapshot struct {
	Regions []Region
}

const dataWidth16 = 2

// Write encodes snap to w in the framed-region format spec §6 describes:
// magic, then for each region a big-endian {addr uint32, length uint32,
// data_width uint16} header followed by the raw bytes.
func Write(w io.Writer, snap Snapshot) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	var header [10]byte
	for _, r := range snap.Regions {
		binary.BigEndian.PutUint32(header[0:4], r.Addr)
		binary.BigEndian.PutUint32(header[4:8], uint32(len(r.Data)))
		binary.BigEndian.PutUint16(header[8:10], dataWidth16)
		if _, err := w.Write(header[:]); err != nil {
			return err
		}
		if _, err := w.Write(r.Data); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes snap to path, creating or truncating it. Failure is the
// caller's to decide whether to log or propagate (spec §7 doesn't classify
// this dump as best-effort the way SRAM writeback is, since it's an
// explicitly opted-into debug feature).
func WriteFile(path string, snap Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, snap)
}
