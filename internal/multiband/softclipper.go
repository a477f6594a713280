package multiband

import (
	"math"

	"github.com/bassaes67/engine/internal/dsp"
)

const maxOversample = 4

// SoftClipper is the final brick-wall safety stage placed after output
// gain: hard clamp, a quadratic soft-knee, or a tanh saturation curve,
// with optional linear-interpolation oversampling for intersample peaks.
type SoftClipper struct {
	ceiling    float32
	knee       float32
	mode       ClipMode
	oversample int
	enabled    bool
	sampleRate float32

	upsampleBuf [2][maxOversample]float32
	prevSample  [2]float32
}

// NewSoftClipper builds a disabled clipper defaulting to -0.1dBFS/soft.
func NewSoftClipper(sampleRate float32) *SoftClipper {
	return &SoftClipper{
		ceiling:    dsp.DBToLinear(-0.1),
		knee:       0.1,
		mode:       ClipSoft,
		oversample: 1,
		sampleRate: sampleRate,
	}
}

// SetParams updates the clipper's ceiling/knee/mode/oversample factor.
func (c *SoftClipper) SetParams(ceilingDB, kneeDB float32, mode ClipMode, oversample int) {
	if ceilingDB < -6 {
		ceilingDB = -6
	}
	if ceilingDB > 0 {
		ceilingDB = 0
	}
	if kneeDB < 0 {
		kneeDB = 0
	}
	if kneeDB > 6 {
		kneeDB = 6
	}
	c.ceiling = dsp.DBToLinear(ceilingDB)
	knee := dsp.DBToLinear(kneeDB) - 1
	if knee < 0.001 {
		knee = 0.001
	}
	c.knee = knee
	c.mode = mode
	if oversample < 1 {
		oversample = 1
	}
	if oversample > maxOversample {
		oversample = maxOversample
	}
	c.oversample = oversample
}

func (c *SoftClipper) SetEnabled(e bool) { c.enabled = e }
func (c *SoftClipper) IsEnabled() bool   { return c.enabled }

// LatencyMs returns the clipper's oversampling-induced latency.
func (c *SoftClipper) LatencyMs() float32 {
	if c.oversample > 1 {
		return 0.5 * 1000 / c.sampleRate
	}
	return 0
}

func (c *SoftClipper) clipSample(input float32) float32 {
	switch c.mode {
	case ClipHard:
		if input > c.ceiling {
			return c.ceiling
		}
		if input < -c.ceiling {
			return -c.ceiling
		}
		return input
	case ClipTanh:
		if absf(input) < c.ceiling*0.5 {
			return input
		}
		scaled := input / c.ceiling
		return c.ceiling * float32(math.Tanh(float64(scaled)))
	default: // ClipSoft
		absIn := absf(input)
		sign := float32(1)
		if input < 0 {
			sign = -1
		}
		switch {
		case absIn <= c.ceiling-c.knee:
			return input
		case absIn >= c.ceiling+c.knee:
			return sign * c.ceiling
		default:
			x := absIn - (c.ceiling - c.knee)
			knee2 := 2 * c.knee
			out := absIn - (x*x)/(2*knee2)
			if out > c.ceiling {
				out = c.ceiling
			}
			return sign * out
		}
	}
}

// ProcessStereo clips a stereo sample pair, with optional oversampling
// that catches intersample peaks the linear-interpolated upsample exposes.
func (c *SoftClipper) ProcessStereo(left, right float32) (float32, float32) {
	if !c.enabled {
		return left, right
	}

	if c.oversample <= 1 {
		return c.clipSample(left), c.clipSample(right)
	}

	factor := c.oversample
	for i := 0; i < factor; i++ {
		t := float32(i+1) / float32(factor)
		c.upsampleBuf[0][i] = c.prevSample[0]*(1-t) + left*t
		c.upsampleBuf[1][i] = c.prevSample[1]*(1-t) + right*t
	}
	c.prevSample[0] = left
	c.prevSample[1] = right

	for i := 0; i < factor; i++ {
		c.upsampleBuf[0][i] = c.clipSample(c.upsampleBuf[0][i])
		c.upsampleBuf[1][i] = c.clipSample(c.upsampleBuf[1][i])
	}

	return c.upsampleBuf[0][factor-1], c.upsampleBuf[1][factor-1]
}

// Reset clears interpolation history.
func (c *SoftClipper) Reset() {
	c.prevSample = [2]float32{}
	c.upsampleBuf = [2][maxOversample]float32{}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
