package dmac

// mmioBase/mmioEnd claim the DMAC's slice of the on-chip peripheral region.
// Grounded on the reference SH-2 on-chip peripheral module's
// DMAC_START/DMAC_END (0xF40-0xF80) and its DMA-controller module's
// per-channel layout: each of the four channels occupies 0x10 bytes (src
// addr32 @0x00, dst addr32 @0x04, count16 @0x0A, ctrl16 @0x0E), plus a
// global (unused by this simplified core) control word at 0x08.
const (
	mmioBase = 0x0F000F40
	mmioEnd  = 0x0F000F80

	chanStride = 0x10
	offSrc     = 0x00
	offDst     = 0x04
	offCount   = 0x0A
	offCtrl    = 0x0E
	offGlobal  = 0x08
)

func (c *Controller) Read16(addr uint32) uint16 {
	off := addr - mmioBase
	if off == offGlobal {
		return c.globalCtrl
	}
	n := int(off / chanStride)
	if n >= len(c.ch) {
		return 0
	}
	switch off % chanStride {
	case offCount:
		return c.Count(n)
	case offCtrl:
		return uint16(c.Control(n))
	case offSrc:
		return uint16(c.Source(n) >> 16)
	case offSrc + 2:
		return uint16(c.Source(n))
	case offDst:
		return uint16(c.Destination(n) >> 16)
	case offDst + 2:
		return uint16(c.Destination(n))
	default:
		return 0
	}
}

func (c *Controller) Write16(addr uint32, val uint16) {
	off := addr - mmioBase
	if off == offGlobal {
		c.globalCtrl = val
		return
	}
	n := int(off / chanStride)
	if n >= len(c.ch) {
		return
	}
	switch off % chanStride {
	case offCount:
		c.SetCount(n, val)
	case offCtrl:
		c.SetControl(n, uint32(val))
	case offSrc:
		c.SetSource(n, uint32(val)<<16|uint32(uint16(c.Source(n))))
	case offSrc + 2:
		c.SetSource(n, c.Source(n)&0xFFFF0000|uint32(val))
	case offDst:
		c.SetDestination(n, uint32(val)<<16|uint32(uint16(c.Destination(n))))
	case offDst + 2:
		c.SetDestination(n, c.Destination(n)&0xFFFF0000|uint32(val))
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
	off := addr - mmioBase
	n := int(off / chanStride)
	if n < len(c.ch) {
		switch off % chanStride {
		case offSrc:
			return c.Source(n)
		case offDst:
			return c.Destination(n)
		}
	}
	return uint32(c.Read16(addr))<<16 | uint32(c.Read16(addr+2))
}

func (c *Controller) Write32(addr uint32, val uint32) {
	off := addr - mmioBase
	n := int(off / chanStride)
	if n < len(c.ch) {
		switch off % chanStride {
		case offSrc:
			c.SetSource(n, val)
			return
		case offDst:
			c.SetDestination(n, val)
			return
		}
	}
	c.Write16(addr, uint16(val>>16))
	c.Write16(addr+2, uint16(val))
}

// MMIORange reports the address range Controller claims, for wiring into
// sh2.Bus.AddMMIO by system.Machine.
func MMIORange() (start, end uint32) { return mmioBase, mmioEnd }
