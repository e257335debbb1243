package synth

import "testing"

func TestROMPaddedToPowerOfTwo(t *testing.T) {
	s := New(make([]byte, 5), 84864)
	if len(s.rom) != 8 {
		t.Fatalf("rom size = %d, want 8", len(s.rom))
	}
	if s.romMask != 7 {
		t.Fatalf("romMask = %d, want 7", s.romMask)
	}
}

func TestVolumeSliderClamping(t *testing.T) {
	s := New(make([]byte, 4), 84864)
	s.SetVolumeSlider(5, 99)
	if s.volumeSlider[1] != 4 {
		t.Fatalf("out-of-range group/slider not clamped: got %d, want 4", s.volumeSlider[1])
	}
	s.SetVolumeSlider(-3, -3)
	if s.volumeSlider[0] != 0 {
		t.Fatalf("negative group/slider not clamped: got %d, want 0", s.volumeSlider[0])
	}
}

func TestChannelConfigurationKeyboardMode(t *testing.T) {
	s := New(make([]byte, 4), 84864)
	s.SetChannelConfiguration(false, false)
	if s.channels[0].voiceCount != 24 || !s.channels[0].midiEnabled {
		t.Fatalf("keyboard mode should collapse 24 voices onto channel 0, got %+v", s.channels[0])
	}
	for v := 0; v < numVoices; v++ {
		if s.voices[v].channel != 0 {
			t.Fatalf("voice %d assigned to channel %d in keyboard mode, want 0", v, s.voices[v].channel)
		}
	}
}

func TestChannelConfigurationMIDIMode(t *testing.T) {
	s := New(make([]byte, 4), 84864)
	s.SetChannelConfiguration(true, true)

	wantCounts := [numChannels]int{12, 8, 4, 8}
	for c, want := range wantCounts {
		if s.channels[c].voiceCount != want {
			t.Fatalf("channel %d voiceCount = %d, want %d", c, s.channels[c].voiceCount, want)
		}
	}
	// Voice 12 should belong to channel 1 (first_voice for channel 1 is 12).
	if s.voices[12].channel != 1 {
		t.Fatalf("voice 12 channel = %d, want 1", s.voices[12].channel)
	}
}

func TestMIDIRingOrderAndOverflow(t *testing.T) {
	var r midiRing
	for i := 0; i < midiQueueCapacity-1; i++ {
		if !r.push(byte(i), int64(i)) {
			t.Fatalf("push %d unexpectedly failed before capacity", i)
		}
	}
	if r.push(0xFF, 999) {
		t.Fatal("push should fail once the ring is full")
	}

	var drained []byte
	r.drain(int64(midiQueueCapacity), true, func(b byte) { drained = append(drained, b) })
	if len(drained) != midiQueueCapacity-1 {
		t.Fatalf("drained %d events, want %d", len(drained), midiQueueCapacity-1)
	}
	for i, b := range drained {
		if b != byte(i) {
			t.Fatalf("drained[%d] = %d, want %d (order not preserved)", i, b, i)
		}
	}
}

func TestMIDIRingRespectsTimestampGate(t *testing.T) {
	var r midiRing
	r.push(1, 100)
	r.push(2, 200)

	var drained []byte
	r.drain(150, true, func(b byte) { drained = append(drained, b) })
	if len(drained) != 1 || drained[0] != 1 {
		t.Fatalf("expected only the due event to drain, got %v", drained)
	}

	r.drain(200, true, func(b byte) { drained = append(drained, b) })
	if len(drained) != 2 || drained[1] != 2 {
		t.Fatalf("expected the second event to drain once due, got %v", drained)
	}
}

func TestControlRegisterOneShotButtonsEdgeTriggered(t *testing.T) {
	p := NewPlayer(make([]byte, 4), 48000, 2048)

	p.SetControlRegister(1 << 5) // MIDI button pressed
	if p.channelConfigState != 1 {
		t.Fatalf("MIDI button should enter channel-config state 1, got %d", p.channelConfigState)
	}

	// Holding the button (no rising edge) must not re-trigger CH3/CH4 logic.
	state := p.channelConfigState
	p.SetControlRegister(1 << 5)
	if p.channelConfigState != state {
		t.Fatalf("holding the button should not re-fire the transition, state changed to %d", p.channelConfigState)
	}

	p.SetControlRegister((1 << 5) | (1 << 1)) // CH3 pressed alongside MIDI still held
	if p.channelConfigState != 3 {
		t.Fatalf("CH3 button should move to channel-config state 3, got %d", p.channelConfigState)
	}
}

func TestBiquadDCBlockAttenuatesConstantInput(t *testing.T) {
	f := newBiquad(48000, 20, 0.7, true)
	var out [2]float64
	for i := 0; i < 4000; i++ {
		out = [2]float64{1, 1}
		f.process(&out)
	}
	if out[0] > 0.05 {
		t.Fatalf("DC-blocking filter left %.4f of a constant input after settling", out[0])
	}
}
