// Package sh2 implements the CPU interpreter and paged bus for the Loopy's
// SH-1/SH-2-class CPU (spec §4.1, §4.2, §4.3).
//
// Grounded on arl-nestor/hw/hwio's Device pattern for MMIO dispatch-by-range
// callbacks, but the page table itself (Bus.pages) has no teacher analogue:
// the NES maps its 64 KiB space with a handful of fixed banks, while the
// Loopy's 28-bit space is built from a handful of large direct-backed
// regions (RAM, ROM, VRAM) plus several small MMIO blocks, so a flat
// 4 KiB-granularity LUT (one entry per page) is the natural fit.
package sh2

import (
	"loopy/emu/log"
	"loopy/swab"
)

const pageShift = 12
const pageSize = 1 << pageShift
const pageMask = pageSize - 1

// Page is a borrowed reference to a big-endian backing array (spec §9,
// "Ownership of the page table": pages are borrowed, released at shutdown,
// and must outlive the bus).
type Page struct {
	Backing []byte
}

// MMIODevice handles reads/writes that fall outside any mapped page.
// Subsystem packages (intc, dmac, itu, sci, vdp, synth, input) implement
// this to claim their address ranges; cartridge and BIOS memory are mapped
// as pages instead.
type MMIODevice interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, val uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, val uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, val uint32)
}

type mmioRegion struct {
	start, end uint32 // [start, end), in translated address space
	dev        MMIODevice
	name       string
}

// Bus is the paged 28-bit effective address space described in spec §4.1.
type Bus struct {
	pages  [1 << (28 - pageShift)]*Page
	mmio   []mmioRegion
	mod    log.Module
}

func NewBus() *Bus {
	return &Bus{mod: log.ModBus}
}

// MapPage maps consecutive 4 KiB page slots to backing, starting at addr
// (already translated / page-aligned). backing may be shorter than the
// mapped span; accesses beyond its length return zero.
//
// Each 4 KiB slot gets its own Page holding the matching sub-slice of
// backing, rather than every slot sharing the whole thing: lookupPage's
// offset is always page-relative (0..pageMask), so a shared full-length
// Backing would make every slot alias backing's first 4 KiB.
func (b *Bus) MapPage(addr uint32, backing []byte) {
	start := addr >> pageShift
	if len(backing) == 0 {
		b.pages[start] = &Page{}
		return
	}
	for off := 0; off < len(backing); off += pageSize {
		end := off + pageSize
		if end > len(backing) {
			end = len(backing)
		}
		b.pages[start] = &Page{Backing: backing[off:end]}
		start++
	}
}

// AddMMIO registers dev to handle [start, end) in translated address space.
func (b *Bus) AddMMIO(name string, start, end uint32, dev MMIODevice) {
	b.mmio = append(b.mmio, mmioRegion{start: start, end: end, dev: dev, name: name})
}

// translate implements spec §4.1's address-translation rule: bits 28-31
// are ignored, leaving a 28-bit effective address. Each region keeps its
// own bits 24-27 rather than having them stripped, so distinct regions
// (BIOS, RAM, cartridge SRAM/ROM, VDP, on-chip peripherals) never alias
// onto one another through this step. A region's own within-region
// mirroring (spec §3: RAM's 512 KiB backing repeating across its reserved
// span) is instead the mapped page table's concern -- MapPage maps only
// as many pages as the backing needs, so addresses past the end of a
// region's live backing simply read as unmapped rather than wrapping.
func translate(addr uint32) uint32 {
	return addr & 0x0FFFFFFF
}

func (b *Bus) lookupPage(ea uint32) (*Page, uint32) {
	idx := ea >> pageShift
	off := ea & pageMask
	return b.pages[idx], off
}

func (b *Bus) findMMIO(ea uint32) MMIODevice {
	for i := range b.mmio {
		if ea >= b.mmio[i].start && ea < b.mmio[i].end {
			return b.mmio[i].dev
		}
	}
	return nil
}

func (b *Bus) unmapped(op string, ea uint32) {
	b.mod.WarnZ("unmapped bus access").String("op", op).Hex32("addr", ea).End()
}

func (b *Bus) Read8(addr uint32) uint8 {
	ea := translate(addr)
	page, off := b.lookupPage(ea)
	if page != nil {
		if int(off) < len(page.Backing) {
			return page.Backing[off]
		}
		return 0
	}
	if dev := b.findMMIO(ea); dev != nil {
		return dev.Read8(ea)
	}
	b.unmapped("read8", ea)
	return 0
}

func (b *Bus) Write8(addr uint32, val uint8) {
	ea := translate(addr)
	page, off := b.lookupPage(ea)
	if page != nil {
		if int(off) < len(page.Backing) {
			page.Backing[off] = val
		}
		return
	}
	if dev := b.findMMIO(ea); dev != nil {
		dev.Write8(ea, val)
		return
	}
	b.unmapped("write8", ea)
}

func (b *Bus) Read16(addr uint32) uint16 {
	ea := translate(addr) &^ 1
	page, off := b.lookupPage(ea)
	if page != nil {
		if int(off)+2 <= len(page.Backing) {
			return swab.R16(page.Backing[off : off+2])
		}
		return 0
	}
	if dev := b.findMMIO(ea); dev != nil {
		return dev.Read16(ea)
	}
	b.unmapped("read16", ea)
	return 0
}

func (b *Bus) Write16(addr uint32, val uint16) {
	ea := translate(addr) &^ 1
	page, off := b.lookupPage(ea)
	if page != nil {
		if int(off)+2 <= len(page.Backing) {
			swab.W16(page.Backing[off:off+2], val)
		}
		return
	}
	if dev := b.findMMIO(ea); dev != nil {
		dev.Write16(ea, val)
		return
	}
	b.unmapped("write16", ea)
}

func (b *Bus) Read32(addr uint32) uint32 {
	ea := translate(addr) &^ 3
	page, off := b.lookupPage(ea)
	if page != nil {
		if int(off)+4 <= len(page.Backing) {
			return swab.R32(page.Backing[off : off+4])
		}
		return 0
	}
	if dev := b.findMMIO(ea); dev != nil {
		return dev.Read32(ea)
	}
	b.unmapped("read32", ea)
	return 0
}

func (b *Bus) Write32(addr uint32, val uint32) {
	ea := translate(addr) &^ 3
	page, off := b.lookupPage(ea)
	if page != nil {
		if int(off)+4 <= len(page.Backing) {
			swab.W32(page.Backing[off:off+4], val)
		}
		return
	}
	if dev := b.findMMIO(ea); dev != nil {
		dev.Write32(ea, val)
		return
	}
	b.unmapped("write32", ea)
}
