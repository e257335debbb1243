package bios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAcceptsExactSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bios.bin")
	if err := os.WriteFile(path, make([]byte, Size), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != Size {
		t.Errorf("len(data) = %d, want %d", len(data), Size)
	}
}

func TestLoadRejectsWrongSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bios.bin")
	if err := os.WriteFile(path, make([]byte, Size-1), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for undersized BIOS ROM")
	}
}
