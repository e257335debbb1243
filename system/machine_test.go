package system

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"loopy/emu/config"
	"loopy/input"
)

type fakeKeys struct{ pressed map[input.Button]bool }

func (k fakeKeys) IsPressed(b input.Button) bool { return k.pressed[b] }

type fakeDisplay struct{ frames int }

func (d *fakeDisplay) Present(pixels []uint16) { d.frames++ }

func writeTestROM(t *testing.T, dir string) string {
	t.Helper()
	rom := make([]byte, 0x20)
	binary.BigEndian.PutUint32(rom[0x10:], 0)
	binary.BigEndian.PutUint32(rom[0x14:], 0xFF) // 256-byte SRAM
	path := filepath.Join(dir, "game.rom")
	if err := os.WriteFile(path, rom, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestBIOS(t *testing.T, dir string) string {
	t.Helper()
	// Filled with NOP (0x0009) and ending in a BRA to itself (0xAFFF, with
	// a NOP delay slot), so the CPU never runs past the 32 KiB image into
	// unmapped memory and halts on an invalid decode: RunFrame's loop must
	// be driven by real elapsed time, not by the CPU stopping.
	image := make([]byte, 32*1024)
	for i := 0; i+1 < len(image); i += 2 {
		image[i], image[i+1] = 0x00, 0x09
	}
	image[len(image)-4], image[len(image)-3] = 0xAF, 0xFF
	path := filepath.Join(dir, "bios.rom")
	if err := os.WriteFile(path, image, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	dir := t.TempDir()
	m, err := New(Options{
		Config:         config.Default(),
		GameROMPath:    writeTestROM(t, dir),
		BIOSROMPath:    writeTestBIOS(t, dir),
		Keys:           fakeKeys{pressed: map[input.Button]bool{}},
		Display:        &fakeDisplay{},
		AudioOutRate:   48000,
		AudioBufferLen: 512,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewWiresEveryRegion(t *testing.T) {
	m := newTestMachine(t)
	if m.cpu == nil || m.bus == nil || m.vdp == nil {
		t.Fatal("New left core fields nil")
	}
}

func TestRunFrameAdvancesUntilFrameEnd(t *testing.T) {
	m := newTestMachine(t)
	display := m.display.(*fakeDisplay)
	m.RunFrame()
	if display.frames != 1 {
		t.Errorf("frames presented = %d, want 1", display.frames)
	}
	if !m.vdp.FrameEnded() {
		t.Error("RunFrame returned before the VDP's frame-end flag was set")
	}
}

func TestSetPausedSkipsRunFrame(t *testing.T) {
	m := newTestMachine(t)
	m.SetPaused(true)
	before := m.domain.Now()
	m.RunFrame()
	if m.domain.Now() != before {
		t.Error("RunFrame advanced the domain while paused")
	}
}

func TestStopCommitsSRAM(t *testing.T) {
	m := newTestMachine(t)
	m.cart.SRAM()[0] = 0xAB
	m.Stop()
}
