package system

import "math"

const (
	kib = 1024.0
	mib = kib * 1024
	gib = mib * 1024
)

// GB converts bytes to GiB rounded to two decimal places.
func GB(bytes uint64) float64 {
	return Round(float64(bytes)/gib, 2)
}

// MB converts bytes to MiB rounded to two decimal places.
func MB(bytes uint64) float64 {
	return Round(float64(bytes)/mib, 2)
}

func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ClampPercent bounds p to [0, 100]. NaN becomes 0.
func ClampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
