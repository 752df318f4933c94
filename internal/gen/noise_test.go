package gen

import (
	"math"
	"testing"
)

func TestNoise2DDeterministic(t *testing.T) {
	ng1 := NewNoiseGenerator(12345)
	ng2 := NewNoiseGenerator(12345)

	for i := 0; i < 100; i++ {
		x := float64(i) * 0.1
		y := float64(i) * 0.2
		if ng1.Noise2D(x, y) != ng2.Noise2D(x, y) {
			t.Fatalf("Noise2D not deterministic at (%f, %f)", x, y)
		}
	}
}

func TestNoise2DRange(t *testing.T) {
	ng := NewNoiseGenerator(42)

	for i := 0; i < 10000; i++ {
		x := float64(i)*0.37 - 500
		y := float64(i)*0.53 - 500
		v := ng.Noise2D(x, y)
		if v < -1.0 || v > 1.0 {
			t.Fatalf("Noise2D(%f, %f) = %f, out of [-1,1]", x, y, v)
		}
	}
}

func TestDifferentSeedsDifferentNoise(t *testing.T) {
	ng1 := NewNoiseGenerator(1)
	ng2 := NewNoiseGenerator(2)

	different := false
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.1
		y := float64(i) * 0.2
		if ng1.Noise2D(x, y) != ng2.Noise2D(x, y) {
			different = true
			break
		}
	}
	if !different {
		t.Error("different seeds should produce different noise")
	}
}

func TestNoise2DSmoothness(t *testing.T) {
	ng := NewNoiseGenerator(456)

	prev := ng.Noise2D(0, 0)
	step := 0.01
	for i := 1; i < 1000; i++ {
		x := float64(i) * step
		curr := ng.Noise2D(x, 0)
		diff := math.Abs(curr - prev)
		if diff > 0.1 {
			t.Fatalf("noise changed too rapidly at x=%f: diff=%f", x, diff)
		}
		prev = curr
	}
}
