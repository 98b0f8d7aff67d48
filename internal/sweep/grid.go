package sweep

import "math"

// LogSpace returns num geometrically spaced values from start to stop
// inclusive. Both endpoints must be positive; invalid arguments yield
// nil.
func LogSpace(start, stop float64, num int) []float64 {
	if num <= 0 || start <= 0 || stop <= 0 {
		return nil
	}
	out := make([]float64, num)
	out[0] = start
	if num == 1 {
		return out
	}
	la := math.Log10(start)
	step := (math.Log10(stop) - la) / float64(num-1)
	for i := 1; i < num-1; i++ {
		out[i] = math.Pow(10, la+float64(i)*step)
	}
	out[num-1] = stop
	return out
}

// CurveGrid is the feedback grid for lifetime curves: dense through
// the noise-dominated decade, then sparser across the bistable range.
func CurveGrid() []float64 {
	grid := LogSpace(0.1, 1.0, 10)
	return append(grid, LogSpace(1.2, 4.0, 8)...)
}

// CompareGrid is the wide three-decade feedback grid used when
// comparing recruitment variants.
func CompareGrid() []float64 {
	return LogSpace(0.1, 100, 30)
}
