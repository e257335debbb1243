package sh2

// System control instructions (spec §4.2): moves between general registers
// and the control/system registers SR, GBR, VBR, MACH, MACL, PR, plus NOP
// and SETT. The .L forms move through memory via @Rm+ / @-Rn.

func ldcSR(c *CPU, m int)  { c.WriteSR(c.R[m]) }
func ldcGBR(c *CPU, m int) { c.GBR = c.R[m] }
func ldcVBR(c *CPU, m int) { c.VBR = c.R[m] }

func ldclSR(c *CPU, m int) {
	c.WriteSR(c.bus.Read32(c.R[m]))
	c.R[m] += 4
}

func ldclGBR(c *CPU, m int) {
	c.GBR = c.bus.Read32(c.R[m])
	c.R[m] += 4
}

func ldclVBR(c *CPU, m int) {
	c.VBR = c.bus.Read32(c.R[m])
	c.R[m] += 4
}

func ldsMACH(c *CPU, m int) { c.MACH = c.R[m] }
func ldsMACL(c *CPU, m int) { c.MACL = c.R[m] }
func ldsPR(c *CPU, m int)   { c.PR = c.R[m] }

func ldslMACH(c *CPU, m int) {
	c.MACH = c.bus.Read32(c.R[m])
	c.R[m] += 4
}

func ldslMACL(c *CPU, m int) {
	c.MACL = c.bus.Read32(c.R[m])
	c.R[m] += 4
}

func ldslPR(c *CPU, m int) {
	c.PR = c.bus.Read32(c.R[m])
	c.R[m] += 4
}

func stcSR(c *CPU, n int)  { c.R[n] = c.SR }
func stcGBR(c *CPU, n int) { c.R[n] = c.GBR }
func stcVBR(c *CPU, n int) { c.R[n] = c.VBR }

func stclSR(c *CPU, n int) {
	c.R[n] -= 4
	c.bus.Write32(c.R[n], c.SR)
}

func stclGBR(c *CPU, n int) {
	c.R[n] -= 4
	c.bus.Write32(c.R[n], c.GBR)
}

func stclVBR(c *CPU, n int) {
	c.R[n] -= 4
	c.bus.Write32(c.R[n], c.VBR)
}

func stsMACH(c *CPU, n int) { c.R[n] = c.MACH }
func stsMACL(c *CPU, n int) { c.R[n] = c.MACL }
func stsPR(c *CPU, n int)   { c.R[n] = c.PR }

func stslMACH(c *CPU, n int) {
	c.R[n] -= 4
	c.bus.Write32(c.R[n], c.MACH)
}

func stslMACL(c *CPU, n int) {
	c.R[n] -= 4
	c.bus.Write32(c.R[n], c.MACL)
}

func stslPR(c *CPU, n int) {
	c.R[n] -= 4
	c.bus.Write32(c.R[n], c.PR)
}

func nop(c *CPU) {}

func sett(c *CPU) { c.SetT(true) }
