// Package system wires the individually-tested peripheral packages
// (sh2, intc, dmac, itu, sci, vdp, synth, cart, bios, input) into one
// runnable Loopy machine and drives it one frame at a time (spec §2, §4.9).
//
// Grounded on arl-nestor/emu's now-removed Machine (Launch/RunOneFrame/
// SetPause/Reset/Stop over an atomic pause/stop pair, one host-driven frame
// call at a time), adapted from the NES's single 6502+PPU+APU domain split
// to the Loopy's one shared scheduler domain feeding CPU, ITU, SCI and VDP
// events, plus a synth clocked independently by the host audio thread
// (spec §5).
package system

import (
	"fmt"
	"os"
	"sync/atomic"

	"loopy/bios"
	"loopy/cart"
	"loopy/dmac"
	"loopy/emu/config"
	"loopy/emu/log"
	"loopy/input"
	"loopy/intc"
	"loopy/itu"
	"loopy/sched"
	"loopy/sci"
	"loopy/sh2"
	"loopy/synth"
	"loopy/vdp"
)

// Address map (spec §3). Regions keep their own bits 24-27, so distinct
// regions never alias through sh2.Bus's translation step.
const (
	biosBase = 0x00000000
	ramBase  = 0x01000000
	ramSize  = 512 * 1024

	cartSRAMBase = 0x02000000
	cartROMBase  = 0x06000000

	// biosBootAliasBase resolves spec §9's open question of how
	// bios.InitialPC (0x0E000480) reaches the BIOS image mapped at
	// biosBase: the same backing is mapped a second time here, so PC
	// lands on offset 0x480 of the BIOS at boot (DESIGN.md, `system`).
	biosBootAliasBase = 0x0E000000

	bitmapVRAMBase = 0x04000000
	tileVRAMBase   = 0x04040000
	oamBase        = 0x04050000
	paletteBase    = 0x04051000
	captureBase    = 0x04052000

	// padBase/padEnd fall inside the VDP's own MMIO window
	// (0x04058000-0x04060000, spec §3); Pad must be registered with the
	// bus before VDP so its narrower range wins the dispatch.
	padBase = 0x0405D000
	padEnd  = 0x0405D020

	// TimerefFrequency is the rate (spec §4.8, "time reference") at which
	// the CPU domain nudges the synth's audio-clock correction.
	TimerefFrequency = 100

	// MaxSliceLength bounds one driver step (spec §4.9's top-level loop);
	// the shared domain's next-event-delta already bounds each step
	// tightly, so this only caps a step when the next pending event is
	// farther away than this or nothing is scheduled.
	MaxSliceLength = sched.FCPU / 1000
)

// DisplaySink receives one composited frame per emulated VSYNC (spec §6:
// "the emulator pushes completed frames to a host-supplied sink" instead
// of owning a window itself). Grounded on arl-nestor/emu.Output's
// BeginFrame/EndFrame push shape, collapsed to a single call since the
// VDP already produces a complete frame buffer at once.
type DisplaySink interface {
	Present(pixels []uint16)
}

// AudioSink is the host's audio-device output (spec §1: "the host supplies
// ... an audio-sample sink"). The audio thread drives PumpAudio itself, on
// its own schedule -- the emulator never pushes samples unprompted (spec
// §5: "the audio thread calls GenSample directly").
type AudioSink interface {
	WriteSample(left, right float32)
}

// Machine owns every peripheral and the bus/scheduler that connect them,
// and drives the system forward one frame at a time.
type Machine struct {
	cfg config.Config

	domain *sched.Domain
	bus    *sh2.Bus
	cpu    *sh2.CPU
	intc   *intc.Controller
	dmac   *dmac.Controller
	itu    *itu.Controller
	sci    *sci.Controller
	vdp    *vdp.VDP
	synth  *synth.Player
	pad    *input.Pad
	cart   *cart.Cart

	ram []byte

	display DisplaySink

	timerefHandle sched.FuncHandle

	paused int32
	stop   int32
}

// Options gathers the host-supplied collaborators and ROM paths a Machine
// needs at bring-up. Positional ROM paths mirror the CLI surface spec §6
// describes (game ROM, BIOS ROM, optional sound ROM).
type Options struct {
	Config config.Config

	GameROMPath  string
	BIOSROMPath  string
	SoundROMPath string

	Keys    input.Keys
	Display DisplaySink

	AudioOutRate   float64
	AudioBufferLen int
}

// New brings up a complete Machine: loads the BIOS, cartridge and sound
// ROM, maps every backing region and MMIO device onto the bus, and wires
// the cross-package collaborations spec §5 describes (VDP NMI into the
// CPU's interrupt controller, one SCI port's completed bytes into the
// synth's MIDI input, a periodic time-reference tick into the synth).
func New(opts Options) (*Machine, error) {
	biosImage, err := bios.Load(opts.BIOSROMPath)
	if err != nil {
		return nil, fmt.Errorf("system: loading BIOS: %w", err)
	}
	c, err := cart.LoadFile(opts.GameROMPath)
	if err != nil {
		return nil, fmt.Errorf("system: loading cartridge: %w", err)
	}
	var soundROM []byte
	if opts.SoundROMPath != "" {
		soundROM, err = os.ReadFile(opts.SoundROMPath)
		if err != nil {
			return nil, fmt.Errorf("system: loading sound ROM: %w", err)
		}
	}

	m := &Machine{
		cfg:  opts.Config,
		ram:  make([]byte, ramSize),
		cart: c,
	}

	m.domain = sched.NewDomain("cpu")
	m.bus = sh2.NewBus()
	m.intc = intc.New()
	m.dmac = dmac.New(m.bus, m.intc)
	m.itu = itu.New(m.domain, m.intc)
	m.sci = sci.New(m.domain)
	m.vdp = vdp.New(m.domain, m.intc, intc.SourceNMI)
	m.synth = synth.NewPlayer(soundROM, opts.AudioOutRate, opts.AudioBufferLen)
	m.pad = input.New(opts.Keys, true)
	m.cpu = sh2.NewCPU(m.bus, m.domain, m.intc)
	m.display = opts.Display

	m.bus.MapPage(biosBase, biosImage)
	m.bus.MapPage(biosBootAliasBase, biosImage)
	m.bus.MapPage(ramBase, m.ram)
	m.bus.MapPage(cartSRAMBase, m.cart.SRAM())
	m.bus.MapPage(cartROMBase, m.cart.ROM())
	m.bus.MapPage(bitmapVRAMBase, m.vdp.BitmapVRAM)
	m.bus.MapPage(tileVRAMBase, m.vdp.TileVRAM)
	m.bus.MapPage(oamBase, m.vdp.OAM)
	m.bus.MapPage(paletteBase, m.vdp.Palette)
	m.bus.MapPage(captureBase, m.vdp.Capture)

	m.bus.AddMMIO("pad", padBase, padEnd, m.pad)
	vdpStart, vdpEnd := vdp.MMIORange()
	m.bus.AddMMIO("vdp", vdpStart, vdpEnd, m.vdp)
	synthStart, synthEnd := synth.MMIORange()
	m.bus.AddMMIO("synth", synthStart, synthEnd, m.synth)
	sciStart, sciEnd := sci.MMIORange()
	m.bus.AddMMIO("sci", sciStart, sciEnd, m.sci)
	ituStart, ituEnd := itu.MMIORange()
	m.bus.AddMMIO("itu", ituStart, ituEnd, m.itu)
	dmacStart, dmacEnd := dmac.MMIORange()
	m.bus.AddMMIO("dmac", dmacStart, dmacEnd, m.dmac)
	intcStart, intcEnd := intc.MMIORange()
	m.bus.AddMMIO("intc", intcStart, intcEnd, m.intc)

	m.sci.SetCallback(0, func(b uint8) { m.synth.MIDIIn(b) })

	m.timerefHandle = m.domain.Register("system.timeref", m.onTimeref)
	m.domain.Post(m.timerefHandle, sched.ConvertFreq(1, TimerefFrequency), 0)

	m.cpu.Reset(bios.InitialPC)

	return m, nil
}

func (m *Machine) onTimeref(_ int64, _ int64) {
	m.synth.TimeReference(1.0 / TimerefFrequency)
	m.domain.Post(m.timerefHandle, sched.ConvertFreq(1, TimerefFrequency), 0)
}

// RunFrame drives the machine forward through one emulated video frame
// (spec §2's per-frame control flow): arm the VDP's end-of-frame flag,
// then repeatedly run the shared domain for the smaller of its
// next-event delta and MaxSliceLength until that flag is set.
func (m *Machine) RunFrame() {
	if atomic.LoadInt32(&m.paused) != 0 {
		return
	}
	m.vdp.ArmFrame()
	for !m.vdp.FrameEnded() {
		if m.cpu.IsHalted() {
			log.ModSys.WarnZ("cpu halted, frame abandoned").End()
			return
		}
		slice := m.domain.NextEventDelta(MaxSliceLength)
		m.domain.RunSlice(slice, m.cpu.Run)
		m.domain.Step()
	}
	if m.display != nil {
		m.display.Present(m.vdp.Display())
	}
	m.cart.Tick(m.cfg.Cart.SRAMCommitFrames)
	if m.cfg.Debug.DumpOnVSync {
		if err := m.dumpState(m.cfg.Debug.DumpPath); err != nil {
			log.ModSys.WarnZ("debug dump failed").Error("err", err).End()
		}
	}
}

// SetPaused toggles whether RunFrame advances the machine.
func (m *Machine) SetPaused(p bool) {
	var v int32
	if p {
		v = 1
	}
	atomic.StoreInt32(&m.paused, v)
}

// Paused reports whether the machine is currently paused.
func (m *Machine) Paused() bool { return atomic.LoadInt32(&m.paused) != 0 }

// Halted reports whether the CPU stopped on an invalid instruction decode
// (spec §7: "CPU exception with vector < 0x40" and invalid decodes are
// fatal). RunFrame stops driving the machine once this is true.
func (m *Machine) Halted() bool { return m.cpu.IsHalted() }

// Reset re-enters the BIOS entry point without reloading the cartridge or
// clearing SRAM (spec §6: "reset re-enters the BIOS").
func (m *Machine) Reset() {
	m.cpu.Reset(bios.InitialPC)
}

// Stop commits cartridge SRAM one last time (spec §5: "on shutdown").
// Callers should stop invoking RunFrame after calling this.
func (m *Machine) Stop() {
	m.cart.Commit()
}

// Synth exposes the synth engine directly, for hosts that want lower-level
// access than PumpAudio (spec §5: the audio thread calls GenSample
// itself rather than the emulator pushing samples to it).
func (m *Machine) Synth() *synth.Player { return m.synth }

// PumpAudio generates n stereo frames and writes each to sink. Called from
// the host's audio callback thread only -- never from the goroutine
// driving RunFrame (spec §5's cross-thread concurrency model).
func (m *Machine) PumpAudio(sink AudioSink, n int) {
	for i := 0; i < n; i++ {
		l, r := m.synth.GenSample()
		sink.WriteSample(l, r)
	}
}
