package sh2

// Data transfer instructions (spec §4.2). CPU.step already advanced PC past
// the opcode before any of these run, so none of them touch PC themselves.

func movImm(c *CPU, n int, imm8 uint8) {
	c.R[n] = uint32(int32(int8(imm8)))
}

func movReg(c *CPU, n, m int) {
	c.R[n] = c.R[m]
}

// movLoadPCWord implements MOV.W @(disp,PC),Rn: disp is unsigned, scaled by
// 2, relative to the architectural PC (spec §3: instruction address + 4).
// c.PC holds instrAddr+2 while a handler runs (cpu.go's step already
// advanced past the opcode), so the architectural PC is c.PC+2.
func movLoadPCWord(c *CPU, n int, imm8 uint8) {
	addr := c.PC + 2 + uint32(imm8)*2
	c.R[n] = uint32(int32(int16(c.bus.Read16(addr))))
}

// movLoadPCLong implements MOV.L @(disp,PC),Rn: same architectural-PC base
// as movLoadPCWord, long-aligned before the displacement is added.
func movLoadPCLong(c *CPU, n int, imm8 uint8) {
	base := (c.PC + 2) &^ 3
	addr := base + uint32(imm8)*4
	c.R[n] = c.bus.Read32(addr)
}

func movLoad(c *CPU, n, m, size int) {
	addr := c.R[m]
	switch size {
	case 1:
		c.R[n] = uint32(int32(int8(c.bus.Read8(addr))))
	case 2:
		c.R[n] = uint32(int32(int16(c.bus.Read16(addr))))
	case 4:
		c.R[n] = c.bus.Read32(addr)
	}
}

func movStore(c *CPU, n, m, size int) {
	addr := c.R[n]
	switch size {
	case 1:
		c.bus.Write8(addr, uint8(c.R[m]))
	case 2:
		c.bus.Write16(addr, uint16(c.R[m]))
	case 4:
		c.bus.Write32(addr, c.R[m])
	}
}

// movStorePreDecLong implements MOV.L Rm,@-Rn: Rn is predecremented by 4
// before the store (spec's "pre-decrement long" data transfer form).
func movStorePreDecLong(c *CPU, n, m int) {
	c.R[n] -= 4
	c.bus.Write32(c.R[n], c.R[m])
}

func movLoadPostInc(c *CPU, n, m, size int) {
	addr := c.R[m]
	switch size {
	case 1:
		c.R[n] = uint32(int32(int8(c.bus.Read8(addr))))
	case 2:
		c.R[n] = uint32(int32(int16(c.bus.Read16(addr))))
	case 4:
		c.R[n] = c.bus.Read32(addr)
	}
	if n != m {
		c.R[m] += uint32(size)
	}
}

// movLoadDisp4/movStoreDisp4 implement the general-register, scale-4
// displacement forms: MOV.L @(disp,Rm),Rn and MOV.L Rm,@(disp,Rn). Word-sized
// general-register-displacement MOV has no encoding on this CPU; only the R0
// forms exist for byte/word (movLoadDispR0/movStoreDispR0 below).
func movLoadDisp4(c *CPU, n, m, disp int) {
	c.R[n] = c.bus.Read32(c.R[m] + uint32(disp)*4)
}

func movStoreDisp4(c *CPU, n, m, disp int) {
	c.bus.Write32(c.R[n]+uint32(disp)*4, c.R[m])
}

func movLoadDispR0(c *CPU, m int, disp int32, size int) {
	addr := c.R[m] + uint32(disp)*uint32(size)
	if size == 1 {
		c.R[0] = uint32(int32(int8(c.bus.Read8(addr))))
	} else {
		c.R[0] = uint32(int32(int16(c.bus.Read16(addr))))
	}
}

func movStoreDispR0(c *CPU, n int, disp int32, size int) {
	addr := c.R[n] + uint32(disp)*uint32(size)
	if size == 1 {
		c.bus.Write8(addr, uint8(c.R[0]))
	} else {
		c.bus.Write16(addr, uint16(c.R[0]))
	}
}

func movLoadIndexed(c *CPU, n, m, size int) {
	addr := c.R[m] + c.R[0]
	switch size {
	case 1:
		c.R[n] = uint32(int32(int8(c.bus.Read8(addr))))
	case 2:
		c.R[n] = uint32(int32(int16(c.bus.Read16(addr))))
	case 4:
		c.R[n] = c.bus.Read32(addr)
	}
}

func movStoreIndexed(c *CPU, n, m, size int) {
	addr := c.R[n] + c.R[0]
	switch size {
	case 1:
		c.bus.Write8(addr, uint8(c.R[m]))
	case 2:
		c.bus.Write16(addr, uint16(c.R[m]))
	case 4:
		c.bus.Write32(addr, c.R[m])
	}
}

func movLoadGBR(c *CPU, disp int32, size int) {
	addr := c.GBR + uint32(disp)*uint32(size)
	switch size {
	case 1:
		c.R[0] = uint32(int32(int8(c.bus.Read8(addr))))
	case 2:
		c.R[0] = uint32(int32(int16(c.bus.Read16(addr))))
	case 4:
		c.R[0] = c.bus.Read32(addr)
	}
}

func movStoreGBR(c *CPU, disp int32, size int) {
	addr := c.GBR + uint32(disp)*uint32(size)
	switch size {
	case 1:
		c.bus.Write8(addr, uint8(c.R[0]))
	case 2:
		c.bus.Write16(addr, uint16(c.R[0]))
	case 4:
		c.bus.Write32(addr, c.R[0])
	}
}

// mova implements MOVA @(disp,PC),R0: R0 gets the effective address, not a
// loaded value -- the architectural PC (c.PC+2, see movLoadPCWord), rounded
// down to a long boundary, then displaced by disp*4.
func mova(c *CPU, imm8 uint8) {
	base := (c.PC + 2) &^ 3
	c.R[0] = base + uint32(imm8)*4
}

func movt(c *CPU, n int) {
	if c.T() {
		c.R[n] = 1
	} else {
		c.R[n] = 0
	}
}

func swapW(c *CPU, n, m int) {
	v := c.R[m]
	c.R[n] = (v >> 16) | (v << 16)
}

func xtrct(c *CPU, n, m int) {
	c.R[n] = (c.R[n] >> 16) | (c.R[m] << 16)
}
