package system

import "loopy/emu/dump"

// dumpState writes the VDP memories spec §6 names for the serial debug
// dump (bitmap VRAM, tile VRAM, palette, OAM) to path.
func (m *Machine) dumpState(path string) error {
	snap := dump.Snapshot{Regions: []dump.Region{
		{Addr: bitmapVRAMBase, Data: m.vdp.BitmapVRAM},
		{Addr: tileVRAMBase, Data: m.vdp.TileVRAM},
		{Addr: paletteBase, Data: m.vdp.Palette},
		{Addr: oamBase, Data: m.vdp.OAM},
	}}
	return dump.WriteFile(path, snap)
}
