// Package config holds the Loopy emulator's non-positional, non-ROM
// settings (SPEC_FULL.md §10.2): the CLI's ROM paths stay positional
// arguments (game and BIOS mandatory, sound ROM optional), everything else
// that would otherwise clutter the
// CLI surface lives in an optional TOML file.
//
// Grounded on arl-nestor/emu.LoadConfigOrDefault's shape (BurntSushi/toml
// decode of an optional file over default values; here only an empty path
// yields the defaults, and a file that cannot be read or decoded is
// returned as an error), trimmed to
// the settings this machine actually has: cartridge SRAM-commit cadence and
// the debug dump toggle, versus arl-nestor's video/input/general sections
// that have no analogue here (display/input are host collaborators, not
// configuration).
package config

import (
	"github.com/BurntSushi/toml"
)

// Config is decoded from an optional TOML file passed via the CLI's
// --config flag.
type Config struct {
	Cart  CartConfig  `toml:"cart"`
	Debug DebugConfig `toml:"debug"`
}

// CartConfig controls cartridge SRAM persistence (spec §5: "the Cart
// component writes the SRAM blob to the host once per ~60 frames").
type CartConfig struct {
	SRAMCommitFrames int `toml:"sram_commit_frames"`
}

// DebugConfig controls the optional serial debug dump (spec §6).
type DebugConfig struct {
	DumpOnVSync bool   `toml:"dump_on_vsync"`
	DumpPath    string `toml:"dump_path"`
}

// Default returns the configuration used when no --config file is given.
func Default() Config {
	return Config{
		Cart: CartConfig{SRAMCommitFrames: 60},
		Debug: DebugConfig{
			DumpOnVSync: false,
			DumpPath:    "emudump.bin",
		},
	}
}

// Load decodes path into a Config seeded with Default's values, so a file
// that only overrides one field leaves the rest at their defaults. path ==
// "" returns Default() outright (no --config flag given).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
