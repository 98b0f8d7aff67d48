package sweep

import (
	"math"
	"testing"
)

func TestLogSpaceEndpointsAndSpacing(t *testing.T) {
	grid := LogSpace(0.1, 100, 30)
	if len(grid) != 30 {
		t.Fatalf("grid length %d, want 30", len(grid))
	}
	if grid[0] != 0.1 || grid[29] != 100 {
		t.Fatalf("grid endpoints %v..%v, want 0.1..100", grid[0], grid[29])
	}
	ratio := grid[1] / grid[0]
	for i := 1; i < len(grid); i++ {
		if grid[i] <= grid[i-1] {
			t.Fatalf("grid not increasing at %d: %v <= %v", i, grid[i], grid[i-1])
		}
		r := grid[i] / grid[i-1]
		if math.Abs(r-ratio) > 1e-9 {
			t.Fatalf("grid not geometric at %d: ratio %v, want %v", i, r, ratio)
		}
	}
}

func TestLogSpaceDegenerateArguments(t *testing.T) {
	if got := LogSpace(0.5, 2, 1); len(got) != 1 || got[0] != 0.5 {
		t.Fatalf("single-point grid: %v", got)
	}
	if got := LogSpace(0.5, 2, 0); got != nil {
		t.Fatalf("zero-point grid: %v", got)
	}
	if got := LogSpace(0, 2, 5); got != nil {
		t.Fatalf("grid from zero: %v", got)
	}
	if got := LogSpace(0.5, -1, 5); got != nil {
		t.Fatalf("grid to negative: %v", got)
	}
}

func TestCurveGridComposition(t *testing.T) {
	grid := CurveGrid()
	if len(grid) != 18 {
		t.Fatalf("curve grid length %d, want 18", len(grid))
	}
	if grid[0] != 0.1 || grid[9] != 1.0 || grid[10] != 1.2 || grid[17] != 4.0 {
		t.Fatalf("curve grid anchors: %v %v %v %v", grid[0], grid[9], grid[10], grid[17])
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] <= grid[i-1] {
			t.Fatalf("curve grid not increasing at %d", i)
		}
	}
}

func TestCompareGridSpansThreeDecades(t *testing.T) {
	grid := CompareGrid()
	if len(grid) != 30 {
		t.Fatalf("compare grid length %d, want 30", len(grid))
	}
	if grid[0] != 0.1 || grid[len(grid)-1] != 100 {
		t.Fatalf("compare grid endpoints %v..%v", grid[0], grid[len(grid)-1])
	}
}
