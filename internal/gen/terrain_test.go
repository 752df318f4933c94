package gen

import (
	"math"
	"testing"
)

func TestTerrainGeneratorDeterministic(t *testing.T) {
	g1 := NewTerrainGenerator("seed", DefaultTerrainParams())
	g2 := NewTerrainGenerator("seed", DefaultTerrainParams())

	for i := 0; i < 100; i++ {
		x := float64(i)*13.7 - 500
		z := float64(i)*7.3 - 300
		if g1.HeightAt(x, z) != g2.HeightAt(x, z) {
			t.Fatalf("HeightAt not deterministic at (%f, %f)", x, z)
		}
	}
}

func TestTerrainParamsDefaults(t *testing.T) {
	// Zero-valued params fall back to defaults instead of producing a
	// degenerate flat or divide-by-zero surface.
	g := NewTerrainGenerator("seed", TerrainParams{})
	ref := NewTerrainGenerator("seed", DefaultTerrainParams())

	if g.HeightAt(37, 91) != ref.HeightAt(37, 91) {
		t.Error("zero params should behave like defaults")
	}
}

func TestGenerateSamplesMatchHeightAt(t *testing.T) {
	g := NewTerrainGenerator("seed", DefaultTerrainParams())
	hf := g.Generate(2, -1, 100)

	step := hf.Size / float64(hf.Res)
	for iz := 0; iz <= hf.Res; iz++ {
		for ix := 0; ix <= hf.Res; ix++ {
			wx := hf.OriginX + float64(ix)*step
			wz := hf.OriginZ + float64(iz)*step
			want := g.HeightAt(wx, wz)
			got := hf.Heights[iz*(hf.Res+1)+ix]
			if got != want {
				t.Fatalf("sample (%d,%d) = %f, want %f", ix, iz, got, want)
			}
		}
	}
}

func TestHeightAtInterpolatesExactlyAtSamples(t *testing.T) {
	g := NewTerrainGenerator("seed", DefaultTerrainParams())
	hf := g.Generate(0, 0, 100)

	step := hf.Size / float64(hf.Res)
	for iz := 0; iz <= hf.Res; iz++ {
		for ix := 0; ix <= hf.Res; ix++ {
			wx := hf.OriginX + float64(ix)*step
			wz := hf.OriginZ + float64(iz)*step
			want := hf.Heights[iz*(hf.Res+1)+ix]
			got := hf.HeightAt(wx, wz)
			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("HeightAt(%f, %f) = %f, want %f", wx, wz, got, want)
			}
		}
	}
}

func TestHeightAtClampsOutsideChunk(t *testing.T) {
	g := NewTerrainGenerator("seed", DefaultTerrainParams())
	hf := g.Generate(0, 0, 100)

	corner := hf.Heights[0]
	if got := hf.HeightAt(-50, -50); got != corner {
		t.Errorf("far outside query = %f, want corner sample %f", got, corner)
	}

	far := hf.HeightAt(1e6, 1e6)
	last := hf.Heights[len(hf.Heights)-1]
	if far != last {
		t.Errorf("opposite corner query = %f, want %f", far, last)
	}
}

func TestAdjacentChunksShareEdges(t *testing.T) {
	// Terrain is sampled from one global noise field, so the right edge
	// of chunk (0,0) must equal the left edge of chunk (1,0) sample for
	// sample. Seams would be visible otherwise.
	g := NewTerrainGenerator("seed", DefaultTerrainParams())
	left := g.Generate(0, 0, 100)
	right := g.Generate(1, 0, 100)

	w := left.Res + 1
	for iz := 0; iz <= left.Res; iz++ {
		a := left.Heights[iz*w+left.Res]
		b := right.Heights[iz*w]
		if a != b {
			t.Fatalf("edge mismatch at row %d: %f vs %f", iz, a, b)
		}
	}
}

func TestHeightWithinAmplitudeBound(t *testing.T) {
	p := DefaultTerrainParams()
	g := NewTerrainGenerator("seed", p)

	// Geometric series bound on the octave sum.
	bound := 0.0
	amp := p.Amplitude
	for o := 0; o < p.Octaves; o++ {
		bound += amp
		amp *= p.Persistence
	}

	for i := 0; i < 1000; i++ {
		x := float64(i)*17.3 - 8000
		z := float64(i)*11.9 - 8000
		h := g.HeightAt(x, z)
		if math.Abs(h) > bound {
			t.Fatalf("height %f at (%f, %f) exceeds bound %f", h, x, z, bound)
		}
	}
}
