package dump

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWriteFramesEachRegion(t *testing.T) {
	var buf bytes.Buffer
	snap := Snapshot{Regions: []Region{
		{Addr: 0x1000, Data: []byte{1, 2, 3, 4}},
		{Addr: 0x2000, Data: []byte{0xAA}},
	}}
	if err := Write(&buf, snap); err != nil {
		t.Fatal(err)
	}

	got := buf.Bytes()
	if !bytes.Equal(got[:8], magic[:]) {
		t.Fatalf("magic = %v, want %v", got[:8], magic)
	}
	off := 8

	addr := binary.BigEndian.Uint32(got[off:])
	length := binary.BigEndian.Uint32(got[off+4:])
	width := binary.BigEndian.Uint16(got[off+8:])
	if addr != 0x1000 || length != 4 || width != dataWidth16 {
		t.Fatalf("region 0 header = {%#x, %d, %d}, want {0x1000, 4, 2}", addr, length, width)
	}
	off += 10
	if !bytes.Equal(got[off:off+4], []byte{1, 2, 3, 4}) {
		t.Fatalf("region 0 data = %v, want [1 2 3 4]", got[off:off+4])
	}
	off += 4

	addr = binary.BigEndian.Uint32(got[off:])
	length = binary.BigEndian.Uint32(got[off+4:])
	if addr != 0x2000 || length != 1 {
		t.Fatalf("region 1 header = {%#x, %d}, want {0x2000, 1}", addr, length)
	}
}
