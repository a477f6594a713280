// Package dsp holds the sample-rate primitives the multiband processor is
// built from: biquad filters, the LR4 crossover, gain/level helpers, and
// envelope-follower based dynamics (compressor, wideband AGC).
package dsp

import "math"

// butterworthQ is 1/sqrt(2), the Q factor giving a maximally flat
// (Butterworth) response for a single biquad stage.
const butterworthQ = 0.7071067811865476

// Biquad is a Direct-Form-II-Transposed biquad filter with independent
// state per channel. Coefficients are normalized by a0 at construction so
// process never divides.
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32
	z1, z2     [2]float32
}

// Lowpass builds a 2nd-order Butterworth lowpass at freq for sampleRate.
func Lowpass(freq, sampleRate float32) Biquad {
	omega := 2 * math.Pi * float64(freq) / float64(sampleRate)
	cosw := float32(math.Cos(omega))
	sinw := float32(math.Sin(omega))
	alpha := sinw / (2 * butterworthQ)

	b0 := (1 - cosw) / 2
	b1 := 1 - cosw
	b2 := (1 - cosw) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

// Highpass builds a 2nd-order Butterworth highpass at freq for sampleRate.
func Highpass(freq, sampleRate float32) Biquad {
	omega := 2 * math.Pi * float64(freq) / float64(sampleRate)
	cosw := float32(math.Cos(omega))
	sinw := float32(math.Sin(omega))
	alpha := sinw / (2 * butterworthQ)

	b0 := (1 + cosw) / 2
	b1 := -(1 + cosw)
	b2 := (1 + cosw) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

// HighpassQ builds a 2nd-order highpass at an arbitrary Q, used by the
// K-weighting filter's subsonic stage where Q departs from Butterworth.
func HighpassQ(freq, q, sampleRate float32) Biquad {
	omega := 2 * math.Pi * float64(freq) / float64(sampleRate)
	cosw := float32(math.Cos(omega))
	sinw := float32(math.Sin(omega))
	alpha := sinw / (2 * q)

	b0 := (1 + cosw) / 2
	b1 := -(1 + cosw)
	b2 := (1 + cosw) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

// Peaking builds an RBJ peaking EQ biquad: a boost/cut of gainDB centered
// at freq with bandwidth controlled by q.
func Peaking(freq, q, gainDB, sampleRate float32) Biquad {
	a := float32(math.Pow(10, float64(gainDB)/40))
	omega := 2 * math.Pi * float64(freq) / float64(sampleRate)
	cosw := float32(math.Cos(omega))
	sinw := float32(math.Sin(omega))
	alpha := sinw / (2 * q)

	b0 := 1 + alpha*a
	b1 := -2 * cosw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw
	a2 := 1 - alpha/a

	return normalize(b0, b1, b2, a0, a1, a2)
}

// HighShelf builds an RBJ high-shelf biquad boosting/cutting by gainDB
// above freq, used by the K-weighting filter's first stage.
func HighShelf(freq, gainDB, sampleRate float32) Biquad {
	a := float32(math.Pow(10, float64(gainDB)/40))
	omega := 2 * math.Pi * float64(freq) / float64(sampleRate)
	cosw := float32(math.Cos(omega))
	sinw := float32(math.Sin(omega))
	const shelfSlope = 1.0
	alpha := sinw / 2 * float32(math.Sqrt(float64((a+1/a)*(1/shelfSlope-1)+2)))
	twoSqrtAAlpha := 2 * float32(math.Sqrt(float64(a))) * alpha

	b0 := a * ((a + 1) + (a-1)*cosw + twoSqrtAAlpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cosw)
	b2 := a * ((a + 1) + (a-1)*cosw - twoSqrtAAlpha)
	a0 := (a + 1) - (a-1)*cosw + twoSqrtAAlpha
	a1 := 2 * ((a - 1) - (a+1)*cosw)
	a2 := (a + 1) - (a-1)*cosw - twoSqrtAAlpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

func normalize(b0, b1, b2, a0, a1, a2 float32) Biquad {
	return Biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// Process runs one sample through the filter for the given channel
// (0 or 1), using Direct Form II Transposed state update. No allocation.
func (f *Biquad) Process(input float32, channel int) float32 {
	output := f.b0*input + f.z1[channel]
	f.z1[channel] = f.b1*input - f.a1*output + f.z2[channel]
	f.z2[channel] = f.b2*input - f.a2*output
	return output
}

// Reset zeroes the filter's state for both channels.
func (f *Biquad) Reset() {
	f.z1 = [2]float32{}
	f.z2 = [2]float32{}
}
