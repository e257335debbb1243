package sh2

// Control-transfer instructions (spec §4.2-§4.3). BRA, BSR, JMP, JSR and RTS
// take a one-instruction delay slot: by the time their handler runs, PC
// already points at the delay-slot instruction (CPU.step advanced past the
// branch opcode before calling Execute), so these record pendingTarget and
// leave PC alone -- CPU.step runs the delay slot next, then applies
// pendingTarget as the new PC. BF and BT have no delay slot and just
// overwrite PC immediately when taken.

func bra(c *CPU, disp int32) {
	c.pendingTarget = uint32(int32(c.PC) + disp*2)
	c.pendingJump = true
}

func bsr(c *CPU, disp int32) {
	c.PR = c.PC
	c.pendingTarget = uint32(int32(c.PC) + disp*2)
	c.pendingJump = true
}

func jmp(c *CPU, m int) {
	c.pendingTarget = c.R[m]
	c.pendingJump = true
}

func jsr(c *CPU, m int) {
	c.PR = c.PC
	c.pendingTarget = c.R[m]
	c.pendingJump = true
}

// rts returns to the instruction after the delay slot of the BSR/JSR that
// set PR: PR holds the delay slot's own address, so the return lands two
// bytes past it.
func rts(c *CPU) {
	c.pendingTarget = c.PR + 2
	c.pendingJump = true
}

func bt(c *CPU, disp int32) {
	if c.T() {
		c.PC = uint32(int32(c.PC) + disp*2)
	}
}

func bf(c *CPU, disp int32) {
	if !c.T() {
		c.PC = uint32(int32(c.PC) + disp*2)
	}
}
