package sh2

import (
	"loopy/emu/log"
	"loopy/intc"
	"loopy/sched"
)

// SR field layout (spec §3, §4.2): bit 0 is T, bits 4-7 are the 4-bit
// interrupt mask. Writes to SR are masked to 0x3F3 (spec §4.2).
const (
	srTMask     = 0x001
	srIMaskMask = 0x0F0
	srIMaskPos  = 4
	srWriteMask = 0x3F3
)

// Exception vectors below 0x40 are not valid targets for RaiseException
// (spec §7: "CPU exception with vector < 0x40" is fatal).
const minExceptionVector = 0x40

// CPU is the SH-1/SH-2-class interpreter described in spec §4.2-§4.3. PC
// always holds the address of the next instruction to fetch -- the same
// convention arl-nestor's 6502 core uses (fetch at PC, PC++, then run the
// handler). BRA, BSR, JMP, JSR and RTS take a one-instruction delay slot
// (spec §4.2/§4.3): their handlers don't touch PC directly. Instead they
// record pendingTarget and let step's main loop run the delay-slot
// instruction — which by then sees PC already pointing at itself — before
// landing on pendingTarget. BF and BT have no delay slot and just overwrite
// PC in place when taken.
//
// Grounded on arl-nestor/hw/cpu.go's shape (registers + Cycles counter +
// function-pointer opcode table + Run(until)), adapted from 6502 to SH-2:
// 16 general registers instead of A/X/Y, a single 16-bit opcode dispatch
// instead of an 8-bit one, and delay-slot bookkeeping the 6502 has no
// analogue for.
type CPU struct {
	R [16]uint32

	PC uint32
	PR uint32

	MACH, MACL uint32
	GBR, VBR   uint32
	SR         uint32

	pendingJump   bool
	pendingTarget uint32

	bus    *Bus
	domain *sched.Domain
	intc   *intc.Controller

	interruptHandle    sched.FuncHandle
	interruptScheduled bool

	halted bool
}

func NewCPU(bus *Bus, domain *sched.Domain, ic *intc.Controller) *CPU {
	c := &CPU{bus: bus, domain: domain, intc: ic}
	c.interruptHandle = domain.Register("sh2.interrupt_entry", c.onInterruptEntry)
	return c
}

// Reset sets the CPU to its power-on state. initialPC is the architectural
// (non-biased) reset vector; spec §6 names 0x0E000480 as the Loopy's.
func (c *CPU) Reset(initialPC uint32) {
	c.R = [16]uint32{}
	c.PR = 0
	c.MACH, c.MACL = 0, 0
	c.GBR, c.VBR = 0, 0
	c.SR = 0xF0 // interrupt mask = 15: every source starts masked.
	c.PC = initialPC
	c.pendingJump = false
	c.halted = false
}

func (c *CPU) T() bool         { return c.SR&srTMask != 0 }
func (c *CPU) SetT(v bool) {
	if v {
		c.SR |= srTMask
	} else {
		c.SR &^= srTMask
	}
}

func (c *CPU) IMask() int { return int((c.SR & srIMaskMask) >> srIMaskPos) }

func (c *CPU) setIMask(p int) {
	if p < 0 {
		p = 0
	}
	if p > 15 {
		p = 15
	}
	c.SR = (c.SR &^ srIMaskMask) | uint32(p)<<srIMaskPos
}

// WriteSR implements spec §4.2: "Writes to SR must mask to 0x3F3 and
// re-evaluate interrupt admissibility."
func (c *CPU) WriteSR(val uint32) {
	c.SR = val & srWriteMask
}

func (c *CPU) IsHalted() bool { return c.halted }

func (c *CPU) halt() { c.halted = true }

// Run executes instructions until the domain's current slice is exhausted
// or the CPU halts. Non-goal (spec §1): no cycle counting below instruction
// granularity, so every step is charged exactly one CPU cycle (a
// delay-slotted branch and its delay-slot instruction run in one step).
func (c *CPU) Run() {
	for !c.halted && c.domain.Now() < c.domain.SliceEnd() {
		c.step()
		c.domain.Advance(1)
		c.checkInterrupt()
	}
}

func (c *CPU) step() {
	opcode := c.bus.Read16(c.PC)
	c.PC += 2
	c.exec(opcode)
	if c.pendingJump {
		slotOp := c.bus.Read16(c.PC)
		c.PC += 2
		c.exec(slotOp)
		c.PC = c.pendingTarget
		c.pendingJump = false
	}
}

func (c *CPU) exec(opcode uint16) {
	if !Execute(c, opcode) {
		log.ModCPU.ErrorZ("invalid instruction decode").
			Hex16("opcode", opcode).
			Hex32("pc", c.PC-2).
			End()
		c.halt()
	}
}

func (c *CPU) checkInterrupt() {
	if c.interruptScheduled {
		return
	}
	vector, priority, ok := c.intc.Pending()
	if !ok || priority <= c.IMask() {
		return
	}
	c.interruptScheduled = true
	// Deferred one cycle (spec §4.3) so that the instruction which raised
	// the pending bit completes before entry is taken.
	c.domain.Post(c.interruptHandle, 1, int64(vector)<<8|int64(priority))
}

func (c *CPU) onInterruptEntry(param int64, _ int64) {
	c.interruptScheduled = false
	vector := int(param >> 8)
	priority := int(param & 0xFF)
	src, ok := c.intc.PendingSource()
	if !ok {
		return
	}
	// Ack the source on entry: without this, an edge source like VSYNC's
	// NMI or the VDP's compare IRQ0 (spec §3, §4.3) stays pending forever
	// and re-enters on every subsequent instruction instead of firing once
	// per edge.
	c.intc.Deassert(src)
	c.raiseException(vector, priority, true)
}

// RaiseException implements spec §4.3's exception entry for a synchronous
// (non-interrupt) fault: push SR then the return PC, fetch the vector,
// redirect PC.
func (c *CPU) RaiseException(vector int) {
	if vector < minExceptionVector {
		log.ModCPU.FatalZ("exception vector below 0x40").Int("vector", vector).End()
		c.halt()
		return
	}
	c.raiseException(vector, -1, false)
}

func (c *CPU) raiseException(vector int, priority int, isInterrupt bool) {
	c.R[15] -= 4
	c.bus.Write32(c.R[15], c.SR)
	c.R[15] -= 4
	// checkInterrupt only runs between complete instructions (never inside
	// a delay slot pair), so PC already holds the correct resume address
	// here; no delay-slot correction is needed.
	c.bus.Write32(c.R[15], c.PC)

	if isInterrupt {
		c.setIMask(priority)
	}

	vecAddr := c.VBR + uint32(vector)*4
	target := c.bus.Read32(vecAddr)
	c.PC = target
}
