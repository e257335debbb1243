package sh2

// Shift and rotate instructions (spec §4.2), all single-bit or fixed-width
// on Rn in place. ROTL/ROTR, ROTCL/ROTCR, SHAR and SHLL/SHLR route the bit
// shifted out through T; SHLL2/8/16 and SHLR2/8 don't touch T at all.

func rotl(c *CPU, n int) {
	v := c.R[n]
	c.SetT(v&0x80000000 != 0)
	c.R[n] = (v << 1) | (v >> 31)
}

func rotr(c *CPU, n int) {
	v := c.R[n]
	c.SetT(v&1 != 0)
	c.R[n] = (v >> 1) | (v << 31)
}

func rotcl(c *CPU, n int) {
	v := c.R[n]
	carryIn := uint32(0)
	if c.T() {
		carryIn = 1
	}
	c.SetT(v&0x80000000 != 0)
	c.R[n] = (v << 1) | carryIn
}

func rotcr(c *CPU, n int) {
	v := c.R[n]
	carryIn := uint32(0)
	if c.T() {
		carryIn = 0x80000000
	}
	c.SetT(v&1 != 0)
	c.R[n] = (v >> 1) | carryIn
}

func shar(c *CPU, n int) {
	v := int32(c.R[n])
	c.SetT(v&1 != 0)
	c.R[n] = uint32(v >> 1)
}

func shll(c *CPU, n int) {
	v := c.R[n]
	c.SetT(v&0x80000000 != 0)
	c.R[n] = v << 1
}

func shlr(c *CPU, n int) {
	v := c.R[n]
	c.SetT(v&1 != 0)
	c.R[n] = v >> 1
}

func shll2(c *CPU, n int)  { c.R[n] <<= 2 }
func shlr2(c *CPU, n int)  { c.R[n] >>= 2 }
func shll8(c *CPU, n int)  { c.R[n] <<= 8 }
func shlr8(c *CPU, n int)  { c.R[n] >>= 8 }
func shll16(c *CPU, n int) { c.R[n] <<= 16 }
