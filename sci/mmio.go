package sci

// mmioBase/mmioEnd claim the SCI's slice of the on-chip peripheral region.
// Grounded on the reference SH-2 on-chip peripheral module's
// SERIAL_START/SERIAL_END (0xEC0-0xED0) and its serial-port module's
// per-port layout: each port occupies 8 bytes (mode, bit-rate factor,
// ctrl, TDR, status, in that order).
const (
	mmioBase = 0x0F000EC0
	mmioEnd  = 0x0F000ED0

	portStride = 0x08

	regMode      = 0x00
	regBitFactor = 0x01
	regCtrl      = 0x02
	regTDR       = 0x03
	regStatus    = 0x04
)

func (c *Controller) Read8(addr uint32) uint8 {
	off := addr - mmioBase
	n := int(off / portStride)
	if n >= numPorts {
		return 0
	}
	switch off % portStride {
	case regMode:
		return c.Mode(n)
	case regBitFactor:
		return c.BitFactor(n)
	case regCtrl:
		return c.Control(n)
	case regStatus:
		return c.Status(n)
	default:
		return 0
	}
}

func (c *Controller) Write8(addr uint32, val uint8) {
	off := addr - mmioBase
	n := int(off / portStride)
	if n >= numPorts {
		return
	}
	switch off % portStride {
	case regMode:
		c.SetMode(n, val)
	case regBitFactor:
		c.SetBitFactor(n, val)
	case regCtrl:
		c.SetControl(n, val)
	case regTDR:
		c.WriteTDR(n, val)
	case regStatus:
		// Status is read-only on real hardware (spec §4.6 names only
		// TX-empty); writes are ignored.
	}
}

func (c *Controller) Read16(addr uint32) uint16 {
	return uint16(c.Read8(addr))<<8 | uint16(c.Read8(addr+1))
}

func (c *Controller) Write16(addr uint32, val uint16) {
	c.Write8(addr, uint8(val>>8))
	c.Write8(addr+1, uint8(val))
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
