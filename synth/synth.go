// Package synth implements the Loopy's uPD937-derived wavetable synth: a
// 32-voice sample-playback engine driven by MIDI-style channel messages,
// with per-voice volume and pitch envelope generators clocked from the
// sample loop itself (spec §4.8).
//
// No teacher or pack example implements a wavetable synth, so the voice
// and envelope state machines are transcribed directly from the ROM
// layout and update-order spec §4.8 and the reverse-engineered reference
// implementation describe; the surrounding driving discipline (MMIO
// surface, structured logging) follows the same idiom as loopy/vdp.
package synth

import "loopy/emu/log"

// Hard-coded ROM table offsets, fixed by the uPD937 firmware layout and
// not derivable from any ROM header (spec §4.8).
const (
	hcRateTable  = 0x1000
	hcVolTable   = 0x1400
	hcPitchTable = 0x1600
	hcInstDesc   = 0x2200
	hcKeymaps    = 0x3DA0
	numBanks     = 1
)

const numVoices = 32
const numChannels = 4

// volumeSliderLevels are the 5 slider positions (0 = mute) scaled to 4096,
// approximated from measured hardware output levels.
var volumeSliderLevels = [5]int{0, 2048, 2580, 3251, 4096}

type voice struct {
	channel, note   int
	active          bool
	sustained       bool
	pitch           int
	volume          int
	volumeTarget    int
	volumeRateMul   int
	volumeRateDiv   int
	volumeRateCount int
	volumeDown      bool

	volumeEnv, volumeEnvStep, volumeEnvDelay int

	pitchEnv                                     int
	pitchEnvStep, pitchEnvDelay                  int
	pitchEnvValue, pitchEnvRate, pitchEnvTarget  int

	sampleStart, sampleEnd, sampleLoop int
	samplePtr, sampleFract             int
	sampleLastVal                      int
}

type channel struct {
	midiEnabled bool
	mute        bool
	firstVoice  int
	voiceCount  int
	sustain     bool

	instrument     int
	partialsOffset int
	keymapNo       int
	layered        bool

	bendOffset, bendValue int
	allocateNext          int
}

// Synth is the uPD937 voice-bank core: everything driven by the sample
// loop and by MIDI channel messages, at the synth's native sample rate.
// It has no notion of host audio buffers or resampling (see Player for
// that layer).
type Synth struct {
	rom     []byte
	romMask int

	ptrPartials, ptrPitchEnv, ptrVolEnv, ptrSampDesc, ptrDemoSong uint32

	voices   [numVoices]voice
	channels [numChannels]channel

	volumeSlider [2]int

	clk2Counter       int
	delayUpdatePhase  int
	sampleCount       uint32
	synthesisRate     float64

	midiStatus        int
	midiRunningStatus int
	midiParamBytes    [8]byte
	midiParamCount    int
	midiInSysex       bool
}

// New pads romData to the next power of two and builds a synth over it,
// running its envelope/sample clocks at synthesisRate Hz.
func New(romData []byte, synthesisRate float64) *Synth {
	size := 1
	for size < len(romData) {
		size <<= 1
	}
	rom := make([]byte, size)
	copy(rom, romData)

	s := &Synth{
		rom:           rom,
		romMask:       size - 1,
		synthesisRate: synthesisRate,
	}
	s.ptrPartials = uint32(s.readROM16(0)) * 32
	s.ptrPitchEnv = uint32(s.readROM16(2)) * 32
	s.ptrVolEnv = uint32(s.readROM16(4)) * 32
	s.ptrSampDesc = uint32(s.readROM16(6)) * 32
	s.ptrDemoSong = uint32(s.readROM16(8)) * 32

	for c := 0; c < numChannels; c++ {
		s.progChg(c, 0)
	}
	s.SetChannelConfiguration(false, false)
	s.volumeSlider[0], s.volumeSlider[1] = 4, 4
	return s
}

func (s *Synth) readROM8(offset int) int {
	return int(s.rom[offset&s.romMask])
}

func (s *Synth) readROM16(offset int) int {
	return int(s.rom[(offset+1)&s.romMask])<<8 | int(s.rom[offset&s.romMask])
}

func (s *Synth) readROM24(offset int) int {
	return int(s.rom[(offset+2)&s.romMask])<<16 | int(s.rom[(offset+1)&s.romMask])<<8 | int(s.rom[offset&s.romMask])
}

// GenSample advances the sample loop by one tick and returns the summed
// left/right mix, clipped to ±32767 (spec §4.8 "Sample loop" step 4).
func (s *Synth) GenSample() (left, right int32) {
	s.updateSample()
	out := [2]int{}
	for lr := 0; lr < 2; lr++ {
		accum := 0
		for v := lr; v < numVoices; v += 2 {
			vo := &s.voices[v]
			ch := &s.channels[vo.channel]
			if vo.volume == 0 || ch.mute {
				continue
			}
			sample := vo.sampleLastVal
			next := (s.readROM16(vo.samplePtr*2) >> 4) - 0x800
			delta := ((next - sample) * vo.sampleFract) / 0x8000
			sample += delta
			sample = (sample * vo.volume) / 65536
			if vo.channel > 0 {
				group := 0
				if vo.channel == 3 {
					group = 1
				}
				sample = (sample * volumeSliderLevels[s.volumeSlider[group]]) / 4096
			}
			accum += sample
		}
		out[lr] = clampInt(accum, -32767, 32767)
	}
	return int32(out[0]), int32(out[1])
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetChannelConfiguration switches between keyboard mode (all 24 voices on
// channel 0) and MIDI mode (channels split 12/8/4/8 with the "all" flag
// gating whether channel 3 receives messages) per spec §4.8.
func (s *Synth) SetChannelConfiguration(multi, all bool) {
	if multi {
		s.channels[0] = channel{firstVoice: 0, voiceCount: 12, midiEnabled: true}
		s.channels[1] = channel{firstVoice: 12, voiceCount: 8, midiEnabled: true}
		s.channels[2] = channel{firstVoice: 20, voiceCount: 4, midiEnabled: true}
		s.channels[3] = channel{firstVoice: 24, voiceCount: 8, midiEnabled: all}
	} else {
		s.channels[0] = channel{firstVoice: 0, voiceCount: 24, midiEnabled: true}
		s.channels[1] = channel{}
		s.channels[2] = channel{}
		s.channels[3] = channel{}
	}
	for v := range s.voices {
		s.voices[v].channel = 0
	}
	for c := 1; c < numChannels; c++ {
		for v := 0; v < s.channels[c].voiceCount; v++ {
			s.voices[s.channels[c].firstVoice+v].channel = c
		}
	}
}

func (s *Synth) SetVolumeSlider(group, slider int) {
	s.volumeSlider[clampInt(group, 0, 1)] = clampInt(slider, 0, 4)
}

func (s *Synth) SetChannelMuted(ch int, mute bool) {
	if ch < 0 || ch >= numChannels {
		return
	}
	s.channels[ch].mute = mute
}

func (s *Synth) ResetChannels(clearProgram bool) {
	p := 128
	if clearProgram {
		p = 0
	}
	for c := 0; c < numChannels; c++ {
		s.progChg(c, p)
	}
}

func (s *Synth) updateSample() {
	if s.sampleCount%384 == 0 {
		s.updateVolumeEnvelopes()
	}

	const clk2Mul = 15625
	const clk2Divp = 128
	clk2Div := int(clk2Divp*s.synthesisRate + 0.5)
	s.clk2Counter += clk2Mul
	if s.clk2Counter >= clk2Div {
		s.updatePitchEnvelopes()
		s.clk2Counter -= clk2Div
	}

	for i := range s.voices {
		vo := &s.voices[i]
		vo.volumeRateCount++
		if vo.volumeRateCount >= vo.volumeRateDiv {
			vo.volumeRateCount = 0
			if vo.volumeDown {
				vo.volume = clampInt(maxInt(vo.volumeTarget, vo.volume-vo.volumeRateMul), 0, 65535)
			} else {
				vo.volume = clampInt(minInt(vo.volumeTarget, vo.volume+vo.volumeRateMul), 0, 65535)
			}
		}
		if vo.volume > 0 {
			pitch := vo.pitch + vo.pitchEnvValue/16 + s.channels[vo.channel].bendOffset
			vo.sampleFract += s.readROM16(int(s.ptrPitchTable()) + pitch*2)
			if vo.sampleFract >= 0x8000 {
				vo.sampleFract -= 0x8000
				vo.sampleLastVal = (s.readROM16(vo.samplePtr*2) >> 4) - 0x800
				vo.samplePtr++
			}
			if vo.samplePtr > vo.sampleEnd {
				vo.samplePtr = vo.sampleLoop
			}
		}
	}
	s.sampleCount++
}

func (s *Synth) ptrPitchTable() uint32 { return hcPitchTable }
func (s *Synth) ptrRateTable() uint32  { return hcRateTable }
func (s *Synth) ptrVolTable() uint32   { return hcVolTable }
func (s *Synth) ptrInstDesc() uint32   { return hcInstDesc }
func (s *Synth) ptrKeymaps() uint32    { return hcKeymaps }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (s *Synth) updateVolumeEnvelopes() {
	s.delayUpdatePhase = (s.delayUpdatePhase + 1) & 1
	for i := range s.voices {
		vo := &s.voices[i]
		changed := false
		if vo.volumeEnvDelay > 0 {
			if s.delayUpdatePhase == 0 {
				vo.volumeEnvDelay--
			}
			if vo.volumeEnvDelay > 0 {
				continue
			}
			if vo.active {
				changed = true
			}
		}
		if vo.volumeEnvStep < 16 && vo.volume > 0 && !vo.active {
			vo.volumeEnvStep |= 16
			changed = true
		} else if (vo.volume <= vo.volumeTarget && vo.volumeDown) || (vo.volume >= vo.volumeTarget && !vo.volumeDown) {
			if vo.volumeTarget > 0 && vo.volumeRateMul != 0 {
				vo.volumeEnvStep = ((vo.volumeEnvStep+1)&15 | (vo.volumeEnvStep & 16))
				changed = true
			}
		}

		alreadyReset := false
		for changed {
			changed = false
			envRate := s.readROM8(int(s.ptrVolEnv) + vo.volumeEnv*64 + vo.volumeEnvStep*2 + 0)
			envTarget := s.readROM8(int(s.ptrVolEnv) + vo.volumeEnv*64 + vo.volumeEnvStep*2 + 1)
			envDown := envRate >= 128
			envRate &= 127
			envVolumeTarget := s.readROM16(int(s.ptrVolTable()) + envTarget*2)

			vo.volumeDown = envDown
			switch {
			case envRate == 127:
				vo.volumeRateMul, vo.volumeRateDiv = 0xFFFF, 1
			case envRate == 0 && envDown:
				vo.volumeRateMul, vo.volumeRateDiv = 0, 1
			case envVolumeTarget == 0 && !envDown && !alreadyReset:
				// Loop idiom for a "00 00" first step: real firmware would
				// spin forever here.
				vo.volumeEnvStep &= 16
				alreadyReset = true
				changed = true
			default:
				r := envRate*2 + 2
				vo.volumeRateMul = s.readROM16(int(s.ptrRateTable()) + r*4 + 0)
				vo.volumeRateDiv = s.readROM8(int(s.ptrRateTable())+r*4+2) + 1
			}
			vo.volumeTarget = envVolumeTarget
		}
	}
}

func (s *Synth) updatePitchEnvelopes() {
	for i := range s.voices {
		vo := &s.voices[i]
		if vo.volume == 0 {
			continue
		}
		changed := false
		if vo.pitchEnvDelay > 0 {
			vo.pitchEnvDelay--
			if vo.pitchEnvDelay > 0 {
				continue
			}
			changed = true
		}

		if vo.pitchEnvRate != 0 {
			vo.pitchEnvValue += vo.pitchEnvRate
			var reached bool
			if vo.pitchEnvRate > 0 {
				reached = vo.pitchEnvValue >= vo.pitchEnvTarget
			} else {
				reached = vo.pitchEnvValue <= vo.pitchEnvTarget
			}
			if reached {
				vo.pitchEnvValue = vo.pitchEnvTarget
				vo.pitchEnvStep++
				if vo.pitchEnvStep >= 8 {
					vo.pitchEnvStep = 1
				}
				changed = true
			}
		}

		alreadyLooped := false
		for changed && vo.pitchEnvStep < 8 {
			changed = false
			envRate := s.readROM16(int(s.ptrPitchEnv) + vo.pitchEnv*32 + vo.pitchEnvStep*4 + 0)
			envTarget := s.readROM16(int(s.ptrPitchEnv) + vo.pitchEnv*32 + vo.pitchEnvStep*4 + 2)
			loopFlag := envRate&0x2000 != 0
			envDown := envRate&0x1000 != 0
			envRate &= 0xFFF
			if loopFlag {
				vo.pitchEnvStep = envRate & 7
				changed = !alreadyLooped
				alreadyLooped = true
			} else {
				if envDown {
					vo.pitchEnvRate = -envRate
					vo.pitchEnvTarget -= envTarget * 16
				} else {
					vo.pitchEnvRate = envRate
					vo.pitchEnvTarget += envTarget * 16
				}
			}
		}
	}
}

func (s *Synth) getFreeVoice(c int) int {
	ch := &s.channels[c]
	ret := ch.firstVoice + ch.allocateNext
	for i := 0; i < ch.voiceCount; i++ {
		if !s.voices[ret].active {
			break
		}
		ch.allocateNext++
		if ch.allocateNext >= ch.voiceCount {
			ch.allocateNext = 0
		}
		ret = ch.firstVoice + ch.allocateNext
	}
	ch.allocateNext++
	if ch.allocateNext >= ch.voiceCount {
		ch.allocateNext = 0
	}
	return ret
}

func (s *Synth) noteOn(chIdx, note int) {
	if chIdx < 0 || chIdx >= numChannels {
		return
	}
	ch := &s.channels[chIdx]
	note &= 127
	noteRanged := note
	for noteRanged < 36 {
		noteRanged += 12
	}
	for noteRanged > 96 {
		noteRanged -= 12
	}

	partialAddr := ch.partialsOffset
	voicesPerNote := 2
	if ch.layered {
		voicesPerNote = 4
	}

	keymapByte := (noteRanged - 36) / 2
	keymapShift := ((noteRanged - 36) & 1) * 4
	keymapVal := (s.readROM8(int(s.ptrKeymaps())+ch.keymapNo*32+keymapByte) >> keymapShift) & 0xF

	partialAddr += keymapVal * voicesPerNote * 3
	partialAddr *= 2

	for vn := 0; vn < voicesPerNote; vn++ {
		vo := &s.voices[s.getFreeVoice(chIdx)]

		vo.pitchEnv = s.readROM16(int(s.ptrPartials) + partialAddr + 0)
		vo.volumeEnv = s.readROM16(int(s.ptrPartials) + partialAddr + 2)
		sampleDesc := s.readROM16(int(s.ptrPartials) + partialAddr + 4)

		vo.sampleStart = s.readROM24(int(s.ptrSampDesc) + sampleDesc*10 + 1)
		vo.sampleEnd = s.readROM24(int(s.ptrSampDesc) + sampleDesc*10 + 4)
		vo.sampleLoop = s.readROM24(int(s.ptrSampDesc) + sampleDesc*10 + 7)

		vo.samplePtr = vo.sampleStart
		vo.sampleFract = 0
		vo.sampleLastVal = 0

		vo.note = note
		sampleNote := s.readROM8(int(s.ptrSampDesc) + sampleDesc*10)
		if sampleNote > 0 {
			vo.pitch = (noteRanged - sampleNote) * 32
		} else {
			vo.pitch = 0x200
		}

		vo.volume = 0
		vo.volumeTarget = 0
		vo.volumeRateMul = 0
		vo.volumeRateDiv = 1
		vo.volumeDown = false
		vo.volumeEnvDelay = 0
		vo.volumeEnvStep = 0

		envRate := s.readROM8(int(s.ptrVolEnv) + vo.volumeEnv*64 + 0)
		envTarget := s.readROM8(int(s.ptrVolEnv) + vo.volumeEnv*64 + 1)
		if envTarget == 0 {
			vo.volumeEnvDelay = envRate + 1
			vo.volumeEnvStep = 1
		} else {
			vo.volumeDown = envRate >= 128
			envRate &= 127
			vo.volumeTarget = s.readROM16(int(s.ptrVolTable()) + envTarget*2)
			if envRate == 127 {
				vo.volumeRateMul, vo.volumeRateDiv = 0xFFFF, 1
			} else {
				r := envRate*2 + 2
				vo.volumeRateMul = s.readROM16(int(s.ptrRateTable()) + r*4 + 0)
				vo.volumeRateDiv = s.readROM8(int(s.ptrRateTable())+r*4+2) + 1
			}
		}

		pitchInitial := s.readROM16(int(s.ptrPitchEnv) + vo.pitchEnv*32 + 0)
		if pitchInitial >= 0x1000 {
			pitchInitial = -(pitchInitial & 0xFFF)
		} else {
			pitchInitial &= 0xFFF
		}
		vo.pitchEnvValue = pitchInitial * 16
		vo.pitchEnvTarget = vo.pitchEnvValue
		vo.pitchEnvRate = 0
		vo.pitchEnvDelay = s.readROM16(int(s.ptrPitchEnv)+vo.pitchEnv*32+2) + 1
		vo.pitchEnvStep = 1

		vo.active = true
		vo.sustained = false

		partialAddr += 6
	}
}

func (s *Synth) noteOff(chIdx, note int) {
	if chIdx < 0 || chIdx >= numChannels {
		return
	}
	ch := &s.channels[chIdx]
	note &= 127
	voicesPerNote := 2
	if ch.layered {
		voicesPerNote = 4
	}
	for v := ch.firstVoice; v < ch.firstVoice+ch.voiceCount; v += voicesPerNote {
		vo := &s.voices[v]
		if vo.note == note && vo.active && !vo.sustained {
			for i := 0; i < voicesPerNote; i++ {
				if ch.sustain {
					s.voices[v+i].sustained = true
				} else {
					s.voices[v+i].active = false
				}
			}
			break
		}
	}
}

func (s *Synth) progChg(chIdx, prog int) {
	if chIdx < 0 || chIdx >= numChannels {
		return
	}
	ch := &s.channels[chIdx]
	for v := ch.firstVoice; v < ch.firstVoice+ch.voiceCount; v++ {
		vo := &s.voices[v]
		vo.active = false
		vo.sustained = false
		vo.volumeRateMul = (vo.volume + 511) / 512
		vo.volumeRateDiv = 1
		vo.volumeTarget = 0
		vo.volumeDown = true
		vo.volumeEnvStep = 16
	}
	ch.allocateNext = 0
	if prog < 0 || prog > 109 {
		return
	}
	prog = midiProgToBank(prog, 0)
	ch.instrument = prog
	ch.partialsOffset = s.readROM16(int(s.ptrInstDesc()) + prog*4 + 0)
	ch.keymapNo = s.readROM8(int(s.ptrInstDesc()) + prog*4 + 2)
	flags := s.readROM8(int(s.ptrInstDesc()) + prog*4 + 3)
	ch.layered = flags&0x10 != 0
}

func (s *Synth) pitchBend(chIdx, bendByte int) {
	if chIdx < 0 || chIdx >= numChannels {
		return
	}
	ch := &s.channels[chIdx]
	ch.bendValue = bendByte - 128
	ch.bendOffset = s.readROM8(int(s.ptrRateTable())+bendByte*4+3) - 128
}

func (s *Synth) controlChgSustain(chIdx int, sustain bool) {
	if chIdx < 0 || chIdx >= numChannels {
		return
	}
	ch := &s.channels[chIdx]
	ch.sustain = sustain
	if !sustain {
		for i := ch.firstVoice; i < ch.firstVoice+ch.voiceCount; i++ {
			if s.voices[i].sustained {
				s.voices[i].sustained = false
				s.voices[i].active = false
			}
		}
	}
}

func midiProgToBank(prog, bankSelect int) int {
	if prog < 10 {
		return prog + bankSelect*10
	}
	return prog - 10 + bankSelect*100 + numBanks*10
}

// ProcessMIDINow feeds one already-retimed MIDI byte into the status-byte
// parser (spec §4.8: "the audio callback... feeding bytes into the
// synth's status-byte parser"). Must only be called from the audio
// thread's retiming-queue drain.
func (s *Synth) ProcessMIDINow(b byte) {
	m := int(b)
	if m >= 0x80 {
		if m == 0xF0 && !s.midiInSysex {
			s.midiInSysex = true
		}
		if m == 0xF7 && s.midiInSysex {
			s.midiInSysex = false
		}
		if m < 0xF8 {
			s.midiStatus = m
			s.midiRunningStatus = 0
			if m < 0xF0 {
				s.midiRunningStatus = m
			}
			s.midiParamCount = 0
		}
		return
	}

	if s.midiParamCount >= len(s.midiParamBytes) || s.midiStatus == 0 {
		return
	}
	s.midiParamBytes[s.midiParamCount] = byte(m & 0x7F)
	s.midiParamCount++
	if s.midiInSysex {
		return
	}

	statusHi := s.midiStatus >> 4
	if statusHi == 0xF {
		return
	}

	channel := s.midiStatus & 0x0F
	messageSize := 2
	if statusHi == 0xC || statusHi == 0xD {
		messageSize = 1
	}
	if s.midiParamCount < messageSize {
		return
	}

	if s.channels[channel].midiEnabled {
		p0, p1 := int(s.midiParamBytes[0]), int(s.midiParamBytes[1])
		switch statusHi {
		case 0x8:
			s.noteOff(channel, p0)
		case 0x9:
			if p1 > 0 {
				s.noteOn(channel, p0)
			} else {
				s.noteOff(channel, p0)
			}
		case 0xA:
			log.ModSynth.WarnZ("unhandled MIDI message: key pressure").End()
		case 0xB:
			if p0 == 0x40 {
				s.controlChgSustain(channel, p1 >= 0x40)
			} else {
				log.ModSynth.WarnZ("unhandled control change").Uint8("cc", uint8(p0)).End()
			}
		case 0xC:
			s.progChg(channel, p0)
		case 0xD:
			log.ModSynth.WarnZ("unhandled MIDI message: channel pressure").End()
		case 0xE:
			s.pitchBend(channel, (p1<<1)|(p1>>6))
		}
	}
	s.midiParamCount = 0
	s.midiStatus = s.midiRunningStatus
}
