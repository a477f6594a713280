package multiband

import "math"

func log10(v float64) float64 { return math.Log10(v) }
func pow10(v float64) float64 { return math.Pow(10, v) }
