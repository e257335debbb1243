// Package bios loads and validates the Loopy's BIOS ROM image (spec §6):
// a fixed 32 KiB raw binary mapped at address 0.
package bios

import (
	"fmt"
	"os"
)

// Size is the BIOS ROM's exact required length (spec §6: "raw binary of
// exactly 32 KiB").
const Size = 32 * 1024

// InitialPC is a mirror of the BIOS entry point (spec §6, §9 Open
// Questions: whether the real reset vector comes from address 0 is left
// to the BIOS).
const InitialPC = 0x0E000480

// Load reads a BIOS ROM file and validates its size. A size mismatch is
// classed as fatal (spec §7: "SRAM or BIOS size mismatch"); Load only
// reports the error, leaving the kill-the-run decision to the caller
// (cmd/loopy reports it through checkf and exits with status 1), the same split
// ines.Open/main.go use for a malformed ROM.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) != Size {
		return nil, fmt.Errorf("bios: %s is %d bytes, want %d", path, len(data), Size)
	}
	return data, nil
}
