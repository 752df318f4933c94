package gen

// TerrainParams controls the fractal noise used for terrain height.
type TerrainParams struct {
	Octaves     int
	Frequency   float64
	Amplitude   float64
	Persistence float64
	Lacunarity  float64
	Resolution  int // height samples per chunk edge
}

// DefaultTerrainParams returns gently rolling terrain suitable for a runner.
func DefaultTerrainParams() TerrainParams {
	return TerrainParams{
		Octaves:     4,
		Frequency:   0.004,
		Amplitude:   8.0,
		Persistence: 0.5,
		Lacunarity:  2.0,
		Resolution:  16,
	}
}

// Heightfield is the generated terrain surface for one chunk: a square
// grid of height samples covering [OriginX, OriginX+Size) x
// [OriginZ, OriginZ+Size).
type Heightfield struct {
	OriginX float64
	OriginZ float64
	Size    float64
	Res     int       // cells per edge; (Res+1)^2 samples
	Heights []float64 // row-major, (Res+1)*(Res+1)
}

// HeightAt bilinearly interpolates the surface height at a world
// position. Positions outside the chunk clamp to the nearest edge.
func (h *Heightfield) HeightAt(wx, wz float64) float64 {
	step := h.Size / float64(h.Res)
	fx := (wx - h.OriginX) / step
	fz := (wz - h.OriginZ) / step

	if fx < 0 {
		fx = 0
	}
	if fz < 0 {
		fz = 0
	}
	max := float64(h.Res)
	if fx > max {
		fx = max
	}
	if fz > max {
		fz = max
	}

	ix := int(fx)
	iz := int(fz)
	if ix >= h.Res {
		ix = h.Res - 1
	}
	if iz >= h.Res {
		iz = h.Res - 1
	}
	tx := fx - float64(ix)
	tz := fz - float64(iz)

	w := h.Res + 1
	h00 := h.Heights[iz*w+ix]
	h10 := h.Heights[iz*w+ix+1]
	h01 := h.Heights[(iz+1)*w+ix]
	h11 := h.Heights[(iz+1)*w+ix+1]

	top := h00 + (h10-h00)*tx
	bot := h01 + (h11-h01)*tx
	return top + (bot-top)*tz
}

// TerrainGenerator produces deterministic heightfields from a world seed.
type TerrainGenerator struct {
	noise  *NoiseGenerator
	params TerrainParams
}

// NewTerrainGenerator creates a terrain generator. Zero-valued params
// fields fall back to defaults so a partial level definition still works.
func NewTerrainGenerator(worldSeed string, params TerrainParams) *TerrainGenerator {
	def := DefaultTerrainParams()
	if params.Octaves <= 0 {
		params.Octaves = def.Octaves
	}
	if params.Frequency <= 0 {
		params.Frequency = def.Frequency
	}
	if params.Amplitude <= 0 {
		params.Amplitude = def.Amplitude
	}
	if params.Persistence <= 0 {
		params.Persistence = def.Persistence
	}
	if params.Lacunarity <= 0 {
		params.Lacunarity = def.Lacunarity
	}
	if params.Resolution <= 0 {
		params.Resolution = def.Resolution
	}
	return &TerrainGenerator{
		noise:  NewNoiseGenerator(WorldSeed64(worldSeed)),
		params: params,
	}
}

// HeightAt samples the fractal surface height at a world position,
// independent of chunk boundaries. Adjacent chunks share edge samples
// because the noise field is global.
func (g *TerrainGenerator) HeightAt(wx, wz float64) float64 {
	sum := 0.0
	freq := g.params.Frequency
	amp := g.params.Amplitude
	for o := 0; o < g.params.Octaves; o++ {
		sum += g.noise.Noise2D(wx*freq, wz*freq) * amp
		freq *= g.params.Lacunarity
		amp *= g.params.Persistence
	}
	return sum
}

// Generate builds the heightfield for one chunk.
func (g *TerrainGenerator) Generate(cx, cz int32, chunkSize float64) *Heightfield {
	res := g.params.Resolution
	hf := &Heightfield{
		OriginX: float64(cx) * chunkSize,
		OriginZ: float64(cz) * chunkSize,
		Size:    chunkSize,
		Res:     res,
		Heights: make([]float64, (res+1)*(res+1)),
	}
	step := chunkSize / float64(res)
	for iz := 0; iz <= res; iz++ {
		wz := hf.OriginZ + float64(iz)*step
		for ix := 0; ix <= res; ix++ {
			wx := hf.OriginX + float64(ix)*step
			hf.Heights[iz*(res+1)+ix] = g.HeightAt(wx, wz)
		}
	}
	return hf
}
