package mtn

import "math"

const uradPerRad = 1_000_000.0

// URadToDegrees converts a stored joint angle in microradians to degrees.
func URadToDegrees(v int32) float64 {
	return float64(v) * 180 / (uradPerRad * math.Pi)
}

// DegreesToURad converts degrees to microradians, truncating toward zero.
// Values outside the int32 range saturate.
func DegreesToURad(d float64) int32 {
	v := math.Trunc(d * uradPerRad * math.Pi / 180)
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// Padding returns the number of zero bytes that move offset to the next
// multiple of align.
func Padding(offset int64, align int64) int64 {
	if align <= 0 {
		return 0
	}
	return (align - offset%align) % align
}
