package synth

import (
	"sync/atomic"
)

// Tuning of the A4 reference note; sets the synth's native sample rate
// (spec §4.8: "synth rate ~= TUNING * 192 Hz").
const Tuning = 442.0

// MixLevel is the post-amplification listening level (spec §4.8's original
// hardware measurement put a comfortable level around 0.7-0.8).
const MixLevel = 0.7

// MuteFadeMS is the linear mute ramp duration (spec §4.8, "Mute fade").
const MuteFadeMS = 30.0

// midiEventPeriod is how often (in output samples) the audio callback
// drains the retiming queue (spec §4.8).
const midiEventPeriod = 64

// Player wraps the voice-bank core with resampling to a host output rate,
// the EQ chain, MIDI retiming, control-register handling and mute fading —
// everything the audio callback and the emulator thread interact with
// (spec §4.8, §5 concurrency model, §6 audio sink).
type Player struct {
	synth *Synth

	toneFilter *biquad
	dcBlock    *biquad

	mixLevel float64
	outRate  float64
	synthRate float64
	bufferSize int

	interpolationStep float64
	rawL, rawR        int32
	currentSample     [2]float64
	lastSample        [2]float64

	outSampleCount int64 // audio-thread-owned

	timeReferenceSamples int64 // cross-thread: emulator writes, audio thread reads
	haveTimeReference    int32 // atomic bool

	buttonsLast        int
	channelConfigState int
	inDemo             bool

	muteTarget, muteLevel float64

	ring midiRing
}

// NewPlayer builds a synth engine over romData, producing stereo samples at
// outRate Hz with a nominal buffer of bufferSize frames (used only for the
// time-reference correction window, spec §4.8).
func NewPlayer(romData []byte, outRate float64, bufferSize int) *Player {
	synthRate := Tuning * 192
	p := &Player{
		synth:      New(romData, synthRate),
		mixLevel:   MixLevel,
		outRate:    outRate,
		synthRate:  synthRate,
		bufferSize: bufferSize,
		muteLevel:  1,
		muteTarget: 1,
	}
	p.toneFilter = newBiquad(synthRate, 8247, 1.67, false)
	p.dcBlock = newBiquad(outRate, 20, 0.7, true)
	return p
}

// GenSample produces one interleaved stereo output frame. Called from the
// host audio thread only (spec §5).
func (p *Player) GenSample() (left, right float32) {
	if p.outSampleCount&(midiEventPeriod-1) == 0 {
		p.handleMIDIEvents()
	}

	p.interpolationStep += p.synthRate / p.outRate
	for p.interpolationStep >= 1 {
		p.lastSample[0], p.lastSample[1] = p.currentSample[0], p.currentSample[1]
		l, r := p.synth.GenSample()
		sample := [2]float64{float64(l) / 32768, float64(r) / 32768}
		p.toneFilter.process(&sample)
		p.currentSample[0], p.currentSample[1] = sample[0], sample[1]
		p.interpolationStep--
	}

	var mix [2]float64
	mix[0] = (p.lastSample[0] + (p.currentSample[0]-p.lastSample[0])*p.interpolationStep) * 6.8 * p.mixLevel
	mix[1] = (p.lastSample[1] + (p.currentSample[1]-p.lastSample[1])*p.interpolationStep) * 6.8 * p.mixLevel
	p.dcBlock.process(&mix)

	p.stepMuteFade()
	mix[0] *= p.muteLevel
	mix[1] *= p.muteLevel

	atomic.AddInt64(&p.outSampleCount, 1)
	return float32(clampFloat(mix[0], -1, 1)), float32(clampFloat(mix[1], -1, 1))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p *Player) stepMuteFade() {
	if p.muteLevel == p.muteTarget {
		return
	}
	step := 1000.0 / (MuteFadeMS * p.outRate)
	if p.muteLevel < p.muteTarget {
		p.muteLevel = clampFloat(p.muteLevel+step, 0, p.muteTarget)
	} else {
		p.muteLevel = clampFloat(p.muteLevel-step, p.muteTarget, 1)
	}
}

// SetMuted arms the mute fade toward silence or full volume.
func (p *Player) SetMuted(mute bool) {
	if mute {
		p.muteTarget = 0
	} else {
		p.muteTarget = 1
	}
}

// TimeReference advances the retiming clock by delta seconds of emulated
// CPU time, called at TIMEREF_FREQUENCY = 100 Hz from the CPU scheduler
// domain (spec §4.8, §5: "originates from the emulator thread").
func (p *Player) TimeReference(delta float64) {
	atomic.StoreInt32(&p.haveTimeReference, 1)
	now := atomic.LoadInt64(&p.outSampleCount)
	ref := atomic.LoadInt64(&p.timeReferenceSamples)
	if delta > 0 {
		ref += int64(delta * p.outRate)
	}
	if ref < now {
		ref = now
	} else if hi := now + 2*int64(p.bufferSize); ref > hi {
		ref = hi
	}
	ref += (now + int64(p.bufferSize) - ref + 32) >> 6
	atomic.StoreInt64(&p.timeReferenceSamples, ref)
}

// SetControlRegister handles the 16-bit sound control register write
// (spec §6): one-shot buttons in bits 0-5, one-hot volume-slider groups in
// bits 6-8 and 9-11.
func (p *Player) SetControlRegister(creg uint16) {
	c := int(creg) & 0xFFF

	volSw0 := (c >> 6) & 7
	volSw1 := (c >> 9) & 7
	switch {
	case volSw0&1 != 0:
		p.synth.SetVolumeSlider(0, 2)
	case volSw0&2 != 0:
		p.synth.SetVolumeSlider(0, 3)
	case volSw0&4 != 0:
		p.synth.SetVolumeSlider(0, 4)
	}
	switch {
	case volSw1&1 != 0:
		p.synth.SetVolumeSlider(1, 2)
	case volSw1&2 != 0:
		p.synth.SetVolumeSlider(1, 3)
	case volSw1&4 != 0:
		p.synth.SetVolumeSlider(1, 4)
	}

	buttons := c & 63
	pushed := buttons &^ p.buttonsLast
	p.buttonsLast = buttons

	const (
		btnDemo = 1 << 0
		btnCH3  = 1 << 1
		btnEXT  = 1 << 3
		btnCH4  = 1 << 2
		btnON   = 1 << 4
		btnMIDI = 1 << 5
	)

	if pushed&btnON != 0 {
		p.channelConfigState = 0
		p.synth.SetChannelConfiguration(false, false)
		p.synth.ResetChannels(true)
	}
	if pushed&btnDemo != 0 {
		p.inDemo = !p.inDemo
		if p.inDemo {
			p.synth.ResetChannels(false)
		}
	}
	if pushed&btnMIDI != 0 && p.channelConfigState == 0 {
		p.channelConfigState = 1
		p.synth.SetChannelConfiguration(false, false)
		p.synth.ResetChannels(true)
	}
	if pushed&btnEXT != 0 {
		// Rhythm-preset content is out of scope (spec §1 Non-goals); the
		// register bit still latches into buttonsLast above.
	}
	if pushed&btnCH4 != 0 && (p.channelConfigState == 1 || p.channelConfigState == 3) {
		p.synth.SetChannelConfiguration(true, true)
		p.synth.ResetChannels(false)
		p.channelConfigState = 4
	}
	if pushed&btnCH3 != 0 && p.channelConfigState == 1 {
		p.synth.SetChannelConfiguration(true, false)
		p.synth.ResetChannels(false)
		p.channelConfigState = 3
	}
}

// MIDIIn enqueues one MIDI byte for retimed delivery to the synth core, or
// discards it (returning true) while in keyboard/demo mode, matching the
// original firmware's "no MIDI in these modes" behavior.
func (p *Player) MIDIIn(b byte) bool {
	if p.inDemo || p.channelConfigState == 0 {
		return true
	}
	return p.ring.push(b, atomic.LoadInt64(&p.timeReferenceSamples))
}

func (p *Player) handleMIDIEvents() {
	haveRef := atomic.LoadInt32(&p.haveTimeReference) != 0
	p.ring.drain(p.outSampleCount, haveRef, p.synth.ProcessMIDINow)
}

// mmioBase/mmioEnd are the sound control register's address range (spec
// §3's address map: 0x04080000-0x040A0000).
const mmioBase = 0x04080000
const mmioEnd = 0x040A0000

// Read16/Write16 implement loopy/sh2.MMIODevice for the sound control
// register, mirrored across its whole range like the real MMIO decoder
// (spec §4.1's "region mirroring" applies uniformly to on-chip peripherals).
func (p *Player) Read16(addr uint32) uint16 { return uint16(p.buttonsLast) }

func (p *Player) Write16(addr uint32, val uint16) { p.SetControlRegister(val) }

func (p *Player) Read8(addr uint32) uint8 {
	return uint8(p.Read16(addr&^1) >> ((addr & 1) * 8))
}

func (p *Player) Write8(addr uint32, val uint8) {
	cur := p.Read16(addr &^ 1)
	shift := (addr & 1) * 8
	mask := uint16(0xFF) << shift
	p.Write16(addr&^1, (cur&^mask)|(uint16(val)<<shift))
}

func (p *Player) Read32(addr uint32) uint32 {
	return uint32(p.Read16(addr))<<16 | uint32(p.Read16(addr+2))
}

func (p *Player) Write32(addr uint32, val uint32) {
	p.Write16(addr, uint16(val>>16))
	p.Write16(addr+2, uint16(val))
}

// MMIORange reports the address range Player claims, for wiring into
// sh2.Bus.AddMMIO by system.Machine.
func MMIORange() (start, end uint32) { return mmioBase, mmioEnd }
