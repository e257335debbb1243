package sh2

func and(c *CPU, n, m int) {
	c.R[n] &= c.R[m]
}

func andImm(c *CPU, imm8 uint8) {
	c.R[0] &= uint32(imm8)
}

func or(c *CPU, n, m int) {
	c.R[n] |= c.R[m]
}

func orImm(c *CPU, imm8 uint8) {
	c.R[0] |= uint32(imm8)
}

func tst(c *CPU, n, m int) {
	c.SetT(c.R[n]&c.R[m] == 0)
}

func tstImm(c *CPU, imm8 uint8) {
	c.SetT(c.R[0]&uint32(imm8) == 0)
}
