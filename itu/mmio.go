package itu

// mmioBase/mmioEnd claim the ITU's slice of the on-chip peripheral region.
// Grounded on the reference SH-2 on-chip peripheral module's
// TIMER_START/TIMER_END (0xF00-0xF40) and its timer module's register
// layout: shared registers (master enable, sync ctrl, mode) at 0x00-0x02,
// then five timers. The reference layout spaces timers 3 and 4
// irregularly to fit extra capture registers this core doesn't model
// (spec §4.4 only names two compare registers per timer); here every
// timer uses the same uniform 0x0A-byte block starting at 0x04.
const (
	mmioBase = 0x0F000F00
	mmioEnd  = 0x0F000F40

	offEnable = 0x00
	offSync   = 0x01
	offMode   = 0x02

	timersStart = 0x04
	timerStride = 0x0A

	regCtrl      = 0x00
	regIOCtrl    = 0x01
	regIntEnable = 0x02
	regIntFlag   = 0x03
	regCounter   = 0x04
	regCompareA  = 0x06
	regCompareB  = 0x08
)

func (c *Controller) Read8(addr uint32) uint8 {
	off := addr - mmioBase
	if off < timersStart {
		switch off {
		case offEnable:
			var m uint8
			for i := range c.timers {
				if c.timers[i].enabled {
					m |= 1 << uint(i)
				}
			}
			return m
		case offSync:
			return 0
		case offMode:
			return 0
		default:
			return 0
		}
	}

	rel := off - timersStart
	n := int(rel / timerStride)
	if n >= numTimers {
		return 0
	}
	switch rel % timerStride {
	case regCtrl:
		return uint8(c.timers[n].clockShift) | uint8(c.timers[n].edgeMode)<<3 | uint8(c.timers[n].clearMode)<<5
	case regIntEnable:
		return c.timers[n].ieMask
	case regIntFlag:
		return c.InterruptFlags(n)
	case regCounter:
		return uint8(c.Counter(n) >> 8)
	case regCounter + 1:
		return uint8(c.Counter(n))
	default:
		return 0
	}
}

func (c *Controller) Write8(addr uint32, val uint8) {
	off := addr - mmioBase
	if off < timersStart {
		switch off {
		case offEnable:
			c.SetMasterEnable(val != 0)
			for i := 0; i < numTimers; i++ {
				c.SetEnabled(i, val&(1<<uint(i)) != 0)
			}
		}
		return
	}

	rel := off - timersStart
	n := int(rel / timerStride)
	if n >= numTimers {
		return
	}
	switch rel % timerStride {
	case regCtrl:
		c.SetClockShift(n, uint(val&0x7))
		c.SetEdgeMode(n, int((val>>3)&0x3))
		c.SetClearMode(n, int((val>>5)&0x3))
	case regIntEnable:
		c.SetInterruptEnable(n, val)
	case regIntFlag:
		// Original hardware semantics: writing 0 to a bit clears that flag,
		// writing 1 leaves it (spec doesn't name this register directly).
		c.AckInterruptFlags(n, ^val)
	case regCounter:
		cur := c.Counter(n)
		c.SetCounter(n, uint16(val)<<8|(cur&0xFF))
	case regCounter + 1:
		cur := c.Counter(n)
		c.SetCounter(n, cur&0xFF00|uint16(val))
	}
}

func (c *Controller) Read16(addr uint32) uint16 {
	off := addr - mmioBase
	if off < timersStart {
		return uint16(c.Read8(addr))<<8 | uint16(c.Read8(addr+1))
	}
	rel := off - timersStart
	n := int(rel / timerStride)
	if n >= numTimers {
		return 0
	}
	switch rel % timerStride {
	case regCounter:
		return c.Counter(n)
	case regCompareA:
		return c.Compare(n, 0)
	case regCompareB:
		return c.Compare(n, 1)
	default:
		return uint16(c.Read8(addr))<<8 | uint16(c.Read8(addr+1))
	}
}

func (c *Controller) Write16(addr uint32, val uint16) {
	off := addr - mmioBase
	if off < timersStart {
		c.Write8(addr, uint8(val>>8))
		c.Write8(addr+1, uint8(val))
		return
	}
	rel := off - timersStart
	n := int(rel / timerStride)
	if n >= numTimers {
		return
	}
	switch rel % timerStride {
	case regCounter:
		c.SetCounter(n, val)
	case regCompareA:
		c.SetCompare(n, 0, val)
	case regCompareB:
		c.SetCompare(n, 1, val)
	default:
		c.Write8(addr, uint8(val>>8))
		c.Write8(addr+1, uint8(val))
	}
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
