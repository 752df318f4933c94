package gen

// 2D simplex noise after Ken Perlin's reference algorithm.
// Output range is [-1, 1].

// grad2 are gradient vectors for 2D simplex noise.
var grad2 = [8][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

// NoiseGenerator produces deterministic simplex noise from a seed.
type NoiseGenerator struct {
	perm [512]int
}

// NewNoiseGenerator creates a noise generator with a seeded permutation table.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	ng := &NoiseGenerator{}

	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates shuffle with a seed-derived LCG.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		if j < 0 {
			j = -j
		}
		p[i], p[j] = p[j], p[i]
	}

	// Double the permutation table for wrapping.
	for i := 0; i < 512; i++ {
		ng.perm[i] = p[i&255]
	}
	return ng
}

// Noise2D returns 2D simplex noise for the given coordinates.
// Output is in the range [-1, 1].
func (ng *NoiseGenerator) Noise2D(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	// Skew input space to determine simplex cell.
	s := (x + y) * f2
	i := fastFloor(x + s)
	j := fastFloor(y + s)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	// Determine which triangle of the cell we are in.
	var i1, j1 int
	if x0 > y0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	gi0 := ng.perm[ii+ng.perm[jj]] & 7
	gi1 := ng.perm[ii+i1+ng.perm[jj+j1]] & 7
	gi2 := ng.perm[ii+1+ng.perm[jj+1]] & 7

	var n0, n1, n2 float64

	t0 := 0.5 - x0*x0 - y0*y0
	if t0 >= 0 {
		t0 *= t0
		n0 = t0 * t0 * dot2(grad2[gi0], x0, y0)
	}

	t1 := 0.5 - x1*x1 - y1*y1
	if t1 >= 0 {
		t1 *= t1
		n1 = t1 * t1 * dot2(grad2[gi1], x1, y1)
	}

	t2 := 0.5 - x2*x2 - y2*y2
	if t2 >= 0 {
		t2 *= t2
		n2 = t2 * t2 * dot2(grad2[gi2], x2, y2)
	}

	return 70.0 * (n0 + n1 + n2)
}

func fastFloor(x float64) int {
	i := int(x)
	if x < float64(i) {
		return i - 1
	}
	return i
}

func dot2(g [2]float64, x, y float64) float64 {
	return g[0]*x + g[1]*y
}
