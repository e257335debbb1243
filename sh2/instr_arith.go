package sh2

// Arithmetic and compare instructions (spec §4.2). Every CMP/* sets T and
// leaves Rn/Rm unmodified; ADD/SUB leave T alone (the scoped subset has no
// carry-propagating ADDC/SUBC).

func add(c *CPU, n, m int) {
	c.R[n] += c.R[m]
}

func addImm(c *CPU, n int, imm8 uint8) {
	c.R[n] += uint32(int32(int8(imm8)))
}

func sub(c *CPU, n, m int) {
	c.R[n] -= c.R[m]
}

func cmpEq(c *CPU, n, m int) {
	c.SetT(c.R[n] == c.R[m])
}

func cmpEqImm(c *CPU, imm8 uint8) {
	c.SetT(c.R[0] == uint32(int32(int8(imm8))))
}

func cmpHS(c *CPU, n, m int) {
	c.SetT(c.R[n] >= c.R[m])
}

func cmpGE(c *CPU, n, m int) {
	c.SetT(int32(c.R[n]) >= int32(c.R[m]))
}

func cmpGT(c *CPU, n, m int) {
	c.SetT(int32(c.R[n]) > int32(c.R[m]))
}

func cmpPL(c *CPU, n int) {
	c.SetT(int32(c.R[n]) > 0)
}

func cmpPZ(c *CPU, n int) {
	c.SetT(int32(c.R[n]) >= 0)
}

func extsB(c *CPU, n, m int) {
	c.R[n] = uint32(int32(int8(c.R[m])))
}

func extsW(c *CPU, n, m int) {
	c.R[n] = uint32(int32(int16(c.R[m])))
}

func extuB(c *CPU, n, m int) {
	c.R[n] = uint32(uint8(c.R[m]))
}

func extuW(c *CPU, n, m int) {
	c.R[n] = uint32(uint16(c.R[m]))
}

// muluw implements MULU.W: the 16-bit unsigned halves of Rm/Rn multiply into
// a 32-bit product stored entirely in MACL (spec's scoped subset has no
// 64-bit MAC accumulation, so MACH is left untouched).
func muluw(c *CPU, n, m int) {
	c.MACL = (c.R[n] & 0xFFFF) * (c.R[m] & 0xFFFF)
}
