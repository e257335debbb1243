package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want Default() %+v", cfg, Default())
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loopy.toml")
	if err := os.WriteFile(path, []byte("[debug]\ndump_on_vsync = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug.DumpOnVSync {
		t.Error("dump_on_vsync not applied from file")
	}
	if cfg.Cart.SRAMCommitFrames != Default().Cart.SRAMCommitFrames {
		t.Errorf("SRAMCommitFrames = %d, want default %d unaffected by an unrelated override",
			cfg.Cart.SRAMCommitFrames, Default().Cart.SRAMCommitFrames)
	}
}
