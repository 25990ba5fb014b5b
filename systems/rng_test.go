package systems

import "testing"

func TestRNGReseedRestartsStream(t *testing.T) {
	r := NewRNG(42)
	first := []float64{r.Float64(), r.Float64(), r.Float64()}
	r.Reseed(42)
	for i, want := range first {
		if got := r.Float64(); got != want {
			t.Fatalf("draw %d after reseed = %v, want %v", i, got, want)
		}
	}
	if r.Seed() != 42 {
		t.Errorf("Seed() = %d, want 42", r.Seed())
	}
}

func TestRNGPick(t *testing.T) {
	r := NewRNG(3)
	tests := []struct {
		name    string
		weights []float64
		allowed map[int]bool
	}{
		{"single positive", []float64{0, 0, 5, 0}, map[int]bool{2: true}},
		{"negative skipped", []float64{-1, 1, 0}, map[int]bool{1: true}},
		{"all zero is uniform", []float64{0, 0, 0}, map[int]bool{0: true, 1: true, 2: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				if got := r.Pick(tt.weights); !tt.allowed[got] {
					t.Fatalf("Pick(%v) = %d", tt.weights, got)
				}
			}
		})
	}
}

func TestRNGPickProportions(t *testing.T) {
	r := NewRNG(11)
	weights := []float64{1, 3}
	var counts [2]int
	const n = 20000
	for i := 0; i < n; i++ {
		counts[r.Pick(weights)]++
	}
	frac := float64(counts[1]) / n
	if frac < 0.72 || frac > 0.78 {
		t.Errorf("weight-3 share = %.3f, want about 0.75", frac)
	}
}

func TestRNGRangeBounds(t *testing.T) {
	r := NewRNG(5)
	for i := 0; i < 1000; i++ {
		v := r.Range(-2, 3)
		if v < -2 || v >= 3 {
			t.Fatalf("Range(-2,3) = %v", v)
		}
	}
	if r.Intn(0) != 0 {
		t.Error("Intn(0) should be 0")
	}
}
