package synth

import "math"

// biquad is a second-order RBJ-style low/high-pass filter run independently
// over two channels (spec §4.8's "EQ chain"): a tone LPF at the synth rate
// and a DC-blocking HPF at the output rate share this implementation.
type biquad struct {
	fs, fc, q float64
	hp        bool

	a1, a2, b0, b1, b2 float64

	x1, x2, y1, y2 [2]float64
}

func newBiquad(fs, fc, q float64, hp bool) *biquad {
	b := &biquad{fs: fs, fc: fc, q: q, hp: hp}
	b.updateCoefficients()
	return b
}

func (b *biquad) process(sample *[2]float64) {
	for c := 0; c < 2; c++ {
		x0 := sample[c]
		y0 := b.b0*x0 + b.b1*b.x1[c] + b.b2*b.x2[c] - b.a1*b.y1[c] - b.a2*b.y2[c]
		b.x2[c] = b.x1[c]
		b.x1[c] = x0
		b.y2[c] = b.y1[c]
		b.y1[c] = y0
		sample[c] = y0
	}
}

// updateCoefficients derives the canonical RBJ low/high-pass coefficients
// from K = tan(pi*fc/fs) (spec §4.8).
func (b *biquad) updateCoefficients() {
	k := math.Tan(math.Pi * b.fc / b.fs)
	w := k * k
	alpha := 1 + (k / b.q) + w
	b.a1 = 2 * (w - 1) / alpha
	b.a2 = (1 - (k / b.q) + w) / alpha
	if b.hp {
		b.b0 = 1 / alpha
		b.b2 = b.b0
		b.b1 = -2 * b.b0
	} else {
		b.b0 = w / alpha
		b.b2 = b.b0
		b.b1 = 2 * b.b0
	}
}
