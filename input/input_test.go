package input

import "testing"

type fakeKeys struct {
	pressed map[Button]bool
}

func (f fakeKeys) IsPressed(b Button) bool { return f.pressed[b] }

func TestPresenceBitSetWhenPluggedIn(t *testing.T) {
	p := New(nil, true)
	w := p.word()
	if w&(1<<Presence) == 0 {
		t.Error("expected presence bit set")
	}
}

func TestPresenceBitClearWhenNotPluggedIn(t *testing.T) {
	p := New(nil, false)
	w := p.word()
	if w&(1<<Presence) != 0 {
		t.Error("expected presence bit clear")
	}
}

func TestButtonBitsReflectKeys(t *testing.T) {
	keys := fakeKeys{pressed: map[Button]bool{A: true, Up: true}}
	p := New(keys, false)
	w := p.word()
	if w&(1<<A) == 0 {
		t.Error("expected A bit set")
	}
	if w&(1<<Up) == 0 {
		t.Error("expected Up bit set")
	}
	if w&(1<<B) != 0 {
		t.Error("expected B bit clear")
	}
}

func TestRead16Offset0x010PacksTwoNibbles(t *testing.T) {
	// Presence is pad-word bit 0 (first nibble); A is pad-word bit 4 (second
	// nibble). Offset 0x010 should surface the first nibble at output bits
	// 0-3 and the second nibble at output bits 8-11.
	keys := fakeKeys{pressed: map[Button]bool{A: true}}
	p := New(keys, true)

	got := p.Read16(0x010)
	if got&0xF != 1 {
		t.Errorf("low nibble = %#x, want 1 (Presence)", got&0xF)
	}
	if (got>>8)&0xF != 1 {
		t.Errorf("bits 8-11 = %#x, want 1 (A, the pad word's second nibble)", (got>>8)&0xF)
	}
	if (got>>4)&0xF != 0 {
		t.Errorf("bits 4-7 should be zero in offset 0x010's output, got %#x", (got>>4)&0xF)
	}
}

func TestRead16Offset0x012ReturnsUpperByte(t *testing.T) {
	keys := fakeKeys{pressed: map[Button]bool{Right: true}} // Right = bit 11
	p := New(keys, false)
	got := p.Read16(0x012)
	if got&(1<<(int(Right)-8)) == 0 {
		t.Errorf("offset 0x012 = %#x, want Right's bit visible at bit %d", got, int(Right)-8)
	}
}
