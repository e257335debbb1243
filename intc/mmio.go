package intc

// mmioBase/mmioEnd claim the INTC's slice of the on-chip peripheral region
// (spec §3: "SH-1 on-chip peripherals: OCPM I/O and ORAM"). Grounded on
// the reference SH-2 on-chip peripheral module's INTC_START/INTC_END
// constants (0xF84-0xF90), rebased onto the bus's on-chip window
// (spec §4.1: bits 24-27 == 0xF stops address translation).
const (
	mmioBase = 0x0F000F84
	mmioEnd  = 0x0F000F90

	offIPRA = 0x00 // ITU0/ITU1/DMAC group priorities, real hardware's packed register
	offIPRB = 0x02 // extension: ITU2/ITU3/ITU4/SCI0 priorities, 4 bits each
	offIPRC = 0x04 // extension: SCI1 priority in bits 12-15
	offSel  = 0x08 // extension: index into selectable, chosen for offVal
	offVal  = 0x0A // extension: priority value written to the source in offSel
)

// selectable lists the sources reachable through the offSel/offVal register
// pair; the value written to offSel is an index into this fixed list, whose
// order (IRQn, SCI, ITU, DMAC, PRT/WDT/REF) differs from the Source
// constants' own order (spec doesn't name a
// hardware register for IRQn/SCI/ITU2-4 priorities; the reference module
// only wires the IPRA-equivalent register, so the rest of this
// controller's priorities are exposed through a Loopy-internal extension).
var selectable = [...]Source{
	SourceIRQ0, SourceIRQ1, SourceIRQ2, SourceIRQ3,
	SourceIRQ4, SourceIRQ5, SourceIRQ6, SourceIRQ7,
	SourceSCI0, SourceSCI1,
	SourceITU0, SourceITU1, SourceITU2, SourceITU3, SourceITU4,
	SourceDMAC0, SourceDMAC1, SourceDMAC2, SourceDMAC3,
	SourcePRT, SourceWDT, SourceREF,
}

// Read16/Write16 implement sh2.MMIODevice for the packed priority registers
// (spec §4.3's INTC).
func (c *Controller) Read16(addr uint32) uint16 {
	switch addr - mmioBase {
	case offIPRA:
		return uint16(c.Priority(SourceDMAC0))<<12 | uint16(c.Priority(SourceDMAC2))<<8 |
			uint16(c.Priority(SourceITU0))<<4 | uint16(c.Priority(SourceITU1))
	case offIPRB:
		return uint16(c.Priority(SourceITU2))<<12 | uint16(c.Priority(SourceITU3))<<8 |
			uint16(c.Priority(SourceITU4))<<4 | uint16(c.Priority(SourceSCI0))
	case offIPRC:
		return uint16(c.Priority(SourceSCI1)) << 12
	case offSel:
		return uint16(c.selected)
	case offVal:
		if int(c.selected) < len(selectable) {
			return uint16(c.Priority(selectable[c.selected]))
		}
		return 0
	default:
		return 0
	}
}

func (c *Controller) Write16(addr uint32, val uint16) {
	switch addr - mmioBase {
	case offIPRA:
		c.SetPriority(SourceDMAC0, int(val>>12))
		c.SetPriority(SourceDMAC1, int(val>>12))
		c.SetPriority(SourceDMAC2, int((val>>8)&0xF))
		c.SetPriority(SourceDMAC3, int((val>>8)&0xF))
		c.SetPriority(SourceITU0, int((val>>4)&0xF))
		c.SetPriority(SourceITU1, int(val&0xF))
	case offIPRB:
		c.SetPriority(SourceITU2, int(val>>12))
		c.SetPriority(SourceITU3, int((val>>8)&0xF))
		c.SetPriority(SourceITU4, int((val>>4)&0xF))
		c.SetPriority(SourceSCI0, int(val&0xF))
	case offIPRC:
		c.SetPriority(SourceSCI1, int(val>>12))
	case offSel:
		c.selected = int(val)
	case offVal:
		if c.selected >= 0 && c.selected < len(selectable) {
			c.SetPriority(selectable[c.selected], int(val))
		}
	}
}

func (c *Controller) Read8(addr uint32) uint8 {
	return uint8(c.Read16(addr&^1) >> ((addr & 1) * 8))
}

func (c *Controller) Write8(addr uint32, val uint8) {
	cur := c.Read16(addr &^ 1)
	shift := (addr & 1) * 8
	mask := uint16(0xFF) << shift
	c.Write16(addr&^1, (cur&^mask)|(uint16(val)<<shift))
}

func (c *Controller) Read32(addr uint32) uint32 {
	return uint32(c.Read16(addr))<<16 | uint32(c.Read16(addr+2))
}

func (c *Controller) Write32(addr uint32, val uint32) {
	c.Write16(addr, uint16(val>>16))
	c.Write16(addr+2, uint16(val))
}

// MMIORange reports the address range Controller claims, for wiring into
// sh2.Bus.AddMMIO by system.Machine.
func MMIORange() (start, end uint32) { return mmioBase, mmioEnd }
