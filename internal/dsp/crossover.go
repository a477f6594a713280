package dsp

// LR4Crossover is a Linkwitz-Riley 4th-order crossover: two cascaded
// Butterworth biquads per branch, giving 24dB/oct slopes whose low+high
// outputs sum to unity magnitude at the crossover frequency.
type LR4Crossover struct {
	lp1, lp2 Biquad
	hp1, hp2 Biquad
}

// NewLR4Crossover builds a crossover at freq for the given sampleRate.
func NewLR4Crossover(freq, sampleRate float32) LR4Crossover {
	return LR4Crossover{
		lp1: Lowpass(freq, sampleRate),
		lp2: Lowpass(freq, sampleRate),
		hp1: Highpass(freq, sampleRate),
		hp2: Highpass(freq, sampleRate),
	}
}

// Split filters input into (low, high) band samples for channel.
func (c *LR4Crossover) Split(input float32, channel int) (low, high float32) {
	low1 := c.lp1.Process(input, channel)
	low = c.lp2.Process(low1, channel)

	high1 := c.hp1.Process(input, channel)
	high = c.hp2.Process(high1, channel)

	return low, high
}

// Reset zeroes all four internal biquad states.
func (c *LR4Crossover) Reset() {
	c.lp1.Reset()
	c.lp2.Reset()
	c.hp1.Reset()
	c.hp2.Reset()
}
