package world

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/openrunner/engine/internal/data"
	"github.com/openrunner/engine/internal/gen"
	"github.com/openrunner/engine/internal/metrics"
)

// ChunkManager is the state machine governing which chunks exist. It
// coordinates procedural generation, pooling, spatial registration,
// and enemy/hazard lifecycles. Per chunk key the lifecycle is
// Unloaded → queued-for-load → Loaded → queued-for-unload → Unloaded;
// only Loaded and Unloaded are externally observable, the queued
// states exist purely as queue membership.
//
// Single-goroutine access only (game loop) — no locks.

// Tuning supplies the difficulty ramp: multipliers as a function of
// distance from the world origin, plus a per-object-type density
// override applied before sampling. Implementations must be pure so
// chunk generation stays deterministic.
type Tuning interface {
	DensityMultiplier(dist float64) float64
	SpeedMultiplier(dist float64) float64
	AdjustPlacementDensity(typeName string, base, dist float64) float64
}

// NeutralTuning is the no-script fallback: everything at 1.0, every
// density unchanged.
type NeutralTuning struct{}

func (NeutralTuning) DensityMultiplier(float64) float64 { return 1.0 }
func (NeutralTuning) SpeedMultiplier(float64) float64   { return 1.0 }
func (NeutralTuning) AdjustPlacementDensity(_ string, base, _ float64) float64 {
	return base
}

// Collectible and magnet tuning, world units and radians.
const (
	collectibleSpinRate = 2.0  // idle spin, radians per second
	magnetRange         = 12.0 // attraction starts inside this range
	magnetMaxStep       = 30.0 // attraction speed cap, units per second
	collectRange        = 2.0  // proximity pickup threshold
)

// Params wires a ChunkManager. Level, Scene, Grid, Pools, Builder,
// Enemies and Log are required; a manager without its collaborators
// would silently misbehave, so construction fails instead.
type Params struct {
	Seed           string
	ChunkSize      float64
	RenderDistance int

	Level   *data.LevelDef
	Scene   Scene
	Grid    *SpatialGrid
	Pools   *ObjectPoolManager
	Builder *Builder
	Enemies EnemyLifecycle
	Tuning  Tuning // nil = NeutralTuning
	Log     *zap.Logger

	// OnCollect, if set, fires after a successful collection with the
	// object's score value. Score/points accounting lives outside the
	// streaming core.
	OnCollect func(score int)
}

type ChunkManager struct {
	seed       string
	chunkSize  float64
	renderDist int

	level      *data.LevelDef
	scene      Scene
	grid       *SpatialGrid
	pools      *ObjectPoolManager
	builder    *Builder
	enemies    EnemyLifecycle
	tuning     Tuning
	log        *zap.Logger
	onCollect  func(int)
	terrainGen *gen.TerrainGenerator

	placeTypes []gen.PlacementType
	enemySet   map[string]struct{}

	loaded map[ChunkKey]*ChunkRecord

	loadQueue   []ChunkKey
	loadSet     map[ChunkKey]struct{}
	unloadQueue []ChunkKey
	unloadSet   map[ChunkKey]struct{}

	lastChunk ChunkKey
	hasLast   bool

	observerX float64
	observerZ float64
}

func NewChunkManager(p Params) (*ChunkManager, error) {
	if p.Level == nil {
		return nil, fmt.Errorf("chunk manager: no level definition")
	}
	if p.Scene == nil {
		return nil, fmt.Errorf("chunk manager: no scene")
	}
	if p.Grid == nil {
		return nil, fmt.Errorf("chunk manager: no spatial grid")
	}
	if p.Pools == nil {
		return nil, fmt.Errorf("chunk manager: no object pool manager")
	}
	if p.Builder == nil {
		return nil, fmt.Errorf("chunk manager: no renderable builder")
	}
	if p.Enemies == nil {
		return nil, fmt.Errorf("chunk manager: no enemy lifecycle")
	}
	if p.Log == nil {
		return nil, fmt.Errorf("chunk manager: no logger")
	}
	if p.Seed == "" {
		return nil, fmt.Errorf("chunk manager: empty world seed")
	}
	if p.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk manager: chunk size %v", p.ChunkSize)
	}
	if p.RenderDistance < 0 {
		return nil, fmt.Errorf("chunk manager: render distance %d", p.RenderDistance)
	}
	if p.Tuning == nil {
		p.Tuning = NeutralTuning{}
	}

	m := &ChunkManager{
		seed:       p.Seed,
		chunkSize:  p.ChunkSize,
		renderDist: p.RenderDistance,
		level:      p.Level,
		scene:      p.Scene,
		grid:       p.Grid,
		pools:      p.Pools,
		builder:    p.Builder,
		enemies:    p.Enemies,
		tuning:     p.Tuning,
		log:        p.Log,
		onCollect:  p.OnCollect,
		terrainGen: gen.NewTerrainGenerator(p.Seed, gen.TerrainParams{
			Octaves:     p.Level.Terrain.Octaves,
			Frequency:   p.Level.Terrain.Frequency,
			Amplitude:   p.Level.Terrain.Amplitude,
			Persistence: p.Level.Terrain.Persistence,
			Lacunarity:  p.Level.Terrain.Lacunarity,
			Resolution:  p.Level.Terrain.Resolution,
		}),
		loaded:    make(map[ChunkKey]*ChunkRecord),
		loadSet:   make(map[ChunkKey]struct{}),
		unloadSet: make(map[ChunkKey]struct{}),
		enemySet:  make(map[string]struct{}),
	}

	for _, t := range p.Level.EnemyTypes {
		m.enemySet[t] = struct{}{}
	}
	for _, o := range p.Level.Objects {
		m.placeTypes = append(m.placeTypes, gen.PlacementType{
			Name:           o.Name,
			Density:        o.Density,
			MinDistance:    o.MinDistance,
			MinScale:       o.MinScale,
			MaxScale:       o.MaxScale,
			RandomRotation: o.RandomRotation,
			Collidable:     o.Collidable,
			ScoreValue:     o.ScoreValue,
		})
	}

	return m, nil
}

// Update reports the observer's position for this frame. It computes
// the required chunk set and adjusts the load/unload queues; actual
// loading and unloading drains one operation per Tick.
func (m *ChunkManager) Update(x, z float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(z) || math.IsInf(z, 0) {
		m.log.Warn("update: non-finite observer position",
			zap.Float64("x", x), zap.Float64("z", z))
		return
	}
	m.observerX, m.observerZ = x, z

	current := KeyForPosition(x, z, m.chunkSize)
	if m.hasLast && current == m.lastChunk {
		// Observer stayed inside its chunk: nothing to diff.
		return
	}
	m.lastChunk = current
	m.hasLast = true

	required := make(map[ChunkKey]struct{})
	for dx := -int32(m.renderDist); dx <= int32(m.renderDist); dx++ {
		for dz := -int32(m.renderDist); dz <= int32(m.renderDist); dz++ {
			required[ChunkKey{X: current.X + dx, Z: current.Z + dz}] = struct{}{}
		}
	}

	// Load intent wins over a stale unload intent for the same key,
	// and symmetrically for unloads.
	for key := range required {
		if _, ok := m.loaded[key]; ok {
			if _, pending := m.unloadSet[key]; pending {
				m.cancelUnload(key)
			}
			continue
		}
		if _, pending := m.loadSet[key]; pending {
			continue
		}
		if _, pending := m.unloadSet[key]; pending {
			m.cancelUnload(key)
		}
		m.loadSet[key] = struct{}{}
		m.loadQueue = append(m.loadQueue, key)
	}

	for key := range m.loaded {
		if _, need := required[key]; need {
			continue
		}
		if _, pending := m.unloadSet[key]; pending {
			continue
		}
		if _, pending := m.loadSet[key]; pending {
			m.cancelLoad(key)
		}
		m.unloadSet[key] = struct{}{}
		m.unloadQueue = append(m.unloadQueue, key)
	}

	// Drop queued loads that fell out of the required set before they
	// ever ran (observer swept past them).
	for i := 0; i < len(m.loadQueue); {
		key := m.loadQueue[i]
		if _, need := required[key]; !need {
			m.cancelLoad(key)
			continue
		}
		i++
	}

	m.syncGauges()
}

func (m *ChunkManager) cancelLoad(key ChunkKey) {
	delete(m.loadSet, key)
	for i, k := range m.loadQueue {
		if k == key {
			m.loadQueue = append(m.loadQueue[:i], m.loadQueue[i+1:]...)
			break
		}
	}
}

func (m *ChunkManager) cancelUnload(key ChunkKey) {
	delete(m.unloadSet, key)
	for i, k := range m.unloadQueue {
		if k == key {
			m.unloadQueue = append(m.unloadQueue[:i], m.unloadQueue[i+1:]...)
			break
		}
	}
}

// Tick drains exactly one queued operation, preferring unloads so
// resources are freed before new ones are claimed. Returns true when
// an operation ran. The driving loop calls this once per cooperative
// turn until Draining reports false.
func (m *ChunkManager) Tick() bool {
	if len(m.unloadQueue) > 0 {
		key := m.unloadQueue[0]
		m.unloadQueue = m.unloadQueue[1:]
		delete(m.unloadSet, key)
		m.unloadChunk(key)
		m.syncGauges()
		return true
	}
	if len(m.loadQueue) > 0 {
		key := m.loadQueue[0]
		m.loadQueue = m.loadQueue[1:]
		delete(m.loadSet, key)
		m.loadChunk(key)
		m.syncGauges()
		return true
	}
	return false
}

// Draining reports whether queued work remains.
func (m *ChunkManager) Draining() bool {
	return len(m.loadQueue) > 0 || len(m.unloadQueue) > 0
}

// DrainAll runs queued operations to completion. Tests and level
// transitions use it; the frame loop never should.
func (m *ChunkManager) DrainAll() {
	for m.Tick() {
	}
}

// LoadInitialChunks populates the world around the observer's current
// position synchronously, before the first rendered frame. Progress is
// reported per chunk for a loading screen.
func (m *ChunkManager) LoadInitialChunks(progress func(loaded, total int)) {
	center := KeyForPosition(m.observerX, m.observerZ, m.chunkSize)
	m.lastChunk = center
	m.hasLast = true

	side := 2*m.renderDist + 1
	total := side * side
	done := 0
	for dx := -int32(m.renderDist); dx <= int32(m.renderDist); dx++ {
		for dz := -int32(m.renderDist); dz <= int32(m.renderDist); dz++ {
			key := ChunkKey{X: center.X + dx, Z: center.Z + dz}
			// Consume any intent a prior Update queued for this key, so
			// the per-frame Tick never replays a load that already ran
			// here synchronously.
			m.cancelLoad(key)
			m.cancelUnload(key)
			if _, ok := m.loaded[key]; !ok {
				m.loadChunk(key)
			}
			done++
			if progress != nil {
				progress(done, total)
			}
		}
	}
	m.syncGauges()
}

// loadChunk generates and assembles one chunk. Individual placement
// failures are logged and skipped; the record is stored only after all
// placements are processed, so a chunk is never partially observable.
func (m *ChunkManager) loadChunk(key ChunkKey) {
	if _, ok := m.loaded[key]; ok {
		// Loading twice would orphan the existing record's handles in
		// the scene and grid and register duplicates on top.
		m.log.Warn("load: chunk already loaded", zap.Stringer("chunk", key))
		return
	}
	start := time.Now()

	centerX := (float64(key.X) + 0.5) * m.chunkSize
	centerZ := (float64(key.Z) + 0.5) * m.chunkSize
	dist := math.Hypot(centerX, centerZ)
	densityMul := m.tuning.DensityMultiplier(dist)

	terrain := &Terrain{
		Key:   key,
		Field: m.terrainGen.Generate(key.X, key.Z, m.chunkSize),
	}

	// Per-type density overrides apply before sampling; both hooks are
	// pure functions of distance, so generation stays deterministic.
	types := make([]gen.PlacementType, len(m.placeTypes))
	copy(types, m.placeTypes)
	for i := range types {
		types[i].Density = m.tuning.AdjustPlacementDensity(types[i].Name, types[i].Density, dist)
	}

	placements, skipped := gen.PlaceObjects(m.seed, key.X, key.Z, m.chunkSize, types, densityMul)
	if skipped > 0 {
		m.log.Debug("placement sampling gave up on some objects",
			zap.Stringer("chunk", key), zap.Int("skipped", skipped))
		metrics.PlacementsSkipped.Add(float64(skipped))
	}

	rec := &ChunkRecord{Key: key, Terrain: terrain}

	for _, pl := range placements {
		y := terrain.Field.HeightAt(pl.X, pl.Z)

		if _, isEnemy := m.enemySet[pl.Type]; isEnemy {
			e, err := m.enemies.SpawnOrRecycle(pl.Type, pl.X, pl.Z, key)
			if err != nil {
				m.log.Warn("enemy spawn failed",
					zap.Stringer("chunk", key), zap.String("type", pl.Type), zap.Error(err))
				continue
			}
			rec.Enemies = append(rec.Enemies, e)
			continue
		}

		tmpl := m.level.Template(pl.Type)
		if tmpl == nil {
			m.log.Warn("placement for unknown object type",
				zap.Stringer("chunk", key), zap.String("type", pl.Type))
			continue
		}

		if tmpl.Pool == "hazards" {
			h, err := m.buildHazard(tmpl, pl, y, key, len(rec.Hazards))
			if err != nil {
				m.log.Warn("hazard construction failed",
					zap.Stringer("chunk", key), zap.String("type", pl.Type), zap.Error(err))
				continue
			}
			rec.Hazards = append(rec.Hazards, h)
			continue
		}

		handle, err := m.acquireHandle(tmpl)
		if err != nil {
			m.log.Warn("object construction failed",
				zap.Stringer("chunk", key), zap.String("type", pl.Type), zap.Error(err))
			continue
		}
		handle.X, handle.Y, handle.Z = pl.X, y, pl.Z
		handle.Scale = pl.Scale
		handle.RotationY = pl.RotationY
		handle.Visible = true
		handle.Chunk = key
		handle.Index = len(rec.Objects)
		m.scene.Add(handle)
		m.grid.Add(handle)

		rec.Objects = append(rec.Objects, &ObjectRecord{
			Type:        pl.Type,
			X:           pl.X,
			Y:           y,
			Z:           pl.Z,
			Scale:       pl.Scale,
			RotationY:   pl.RotationY,
			Collidable:  pl.Collidable,
			ScoreValue:  pl.ScoreValue,
			MinDistance: pl.MinDistance,
			Pool:        tmpl.Pool,
			Subtype:     tmpl.Subtype,
			Handle:      handle,
		})
	}

	m.loaded[key] = rec
	metrics.ChunkLoadDuration.Observe(time.Since(start).Seconds())
	m.log.Debug("chunk loaded",
		zap.Stringer("chunk", key),
		zap.Int("objects", len(rec.Objects)),
		zap.Int("enemies", len(rec.Enemies)),
		zap.Int("hazards", len(rec.Hazards)))
}

// acquireHandle reuses a pooled renderable when one of the right
// subtype is available and structurally complete, otherwise builds
// fresh. Incomplete pooled handles are disposed, not reused.
func (m *ChunkManager) acquireHandle(tmpl *data.ObjectTemplate) (*Renderable, error) {
	for {
		r, ok := m.pools.Get(tmpl.Pool, tmpl.Subtype)
		if !ok {
			break
		}
		if r.Parts != tmpl.Parts || r.Disposed {
			m.log.Warn("pooled handle structurally incomplete, rebuilding",
				zap.String("pool", tmpl.Pool), zap.String("subtype", tmpl.Subtype),
				zap.Uint64("id", r.ID))
			r.Dispose()
			continue
		}
		return r, nil
	}
	return m.builder.Build(ObjectTemplate{
		Name:    tmpl.Name,
		Pool:    tmpl.Pool,
		Subtype: tmpl.Subtype,
		Parts:   tmpl.Parts,
	})
}

func (m *ChunkManager) buildHazard(tmpl *data.ObjectTemplate, pl gen.Placement, y float64, key ChunkKey, index int) (*Hazard, error) {
	handle, err := m.acquireHandle(tmpl)
	if err != nil {
		return nil, err
	}
	handle.X, handle.Y, handle.Z = pl.X, y, pl.Z
	handle.Scale = pl.Scale
	handle.RotationY = pl.RotationY
	handle.Visible = true
	handle.Chunk = key
	handle.Index = index
	m.scene.Add(handle)
	m.grid.Add(handle)
	return &Hazard{
		Handle: handle,
		Speed:  hazardBaseSpeed * m.tuning.SpeedMultiplier(math.Hypot(pl.X, pl.Z)),
	}, nil
}

// unloadChunk reverses loadChunk: terrain disposed, still-active
// objects and hazards detached and repooled, enemies released.
// Unloading an absent key logs a warning and is a no-op.
func (m *ChunkManager) unloadChunk(key ChunkKey) {
	rec, ok := m.loaded[key]
	if !ok {
		m.log.Warn("unload: chunk not loaded", zap.Stringer("chunk", key))
		return
	}
	start := time.Now()

	rec.Terrain.Disposed = true

	for _, obj := range rec.Objects {
		if obj.Handle == nil {
			continue // collected, already detached
		}
		m.scene.Remove(obj.Handle)
		m.grid.Remove(obj.Handle)
		obj.Handle.Detach()
		m.pools.Put(obj.Pool, obj.Handle)
		obj.Handle = nil
	}

	for _, e := range rec.Enemies {
		m.enemies.Release(e)
	}

	for _, h := range rec.Hazards {
		if h.Handle == nil {
			continue
		}
		m.scene.Remove(h.Handle)
		m.grid.Remove(h.Handle)
		h.Handle.Detach()
		m.pools.Put("hazards", h.Handle)
		h.Handle = nil
	}

	delete(m.loaded, key)
	metrics.ChunkUnloadDuration.Observe(time.Since(start).Seconds())
	m.log.Debug("chunk unloaded", zap.Stringer("chunk", key))
}

// TerrainsNear returns terrain pieces from the 3x3 block of chunks
// centered on the chunk containing the position. Grounding and
// collision raycasts consume this; only loaded chunks contribute.
func (m *ChunkManager) TerrainsNear(x, z float64) []*Terrain {
	center := KeyForPosition(x, z, m.chunkSize)
	out := make([]*Terrain, 0, 9)
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			if rec, ok := m.loaded[ChunkKey{X: center.X + dx, Z: center.Z + dz}]; ok {
				out = append(out, rec.Terrain)
			}
		}
	}
	return out
}

// HeightAt returns the loaded-terrain surface height at a position,
// falling back to the generator's noise field when the chunk is not
// loaded (queries can slightly outrun streaming).
func (m *ChunkManager) HeightAt(x, z float64) float64 {
	if rec, ok := m.loaded[KeyForPosition(x, z, m.chunkSize)]; ok {
		return rec.Terrain.Field.HeightAt(x, z)
	}
	return m.terrainGen.HeightAt(x, z)
}

// CollectObject collects the indexed object if it exists, is
// non-collidable, has an active handle, and was not already collected.
// Idempotent: every call after the first success returns false with no
// side effects. The caller emits any score event.
func (m *ChunkManager) CollectObject(key ChunkKey, index int) bool {
	rec, ok := m.loaded[key]
	if !ok {
		return false
	}
	if index < 0 || index >= len(rec.Objects) {
		return false
	}
	obj := rec.Objects[index]
	if obj.Collidable || obj.Collected || obj.Handle == nil {
		return false
	}

	m.scene.Remove(obj.Handle)
	m.grid.Remove(obj.Handle)
	obj.Handle.Detach()
	m.pools.Put(obj.Pool, obj.Handle)
	obj.Handle = nil
	obj.Collected = true

	metrics.ObjectsCollected.Inc()
	if m.onCollect != nil {
		m.onCollect(obj.ScoreValue)
	}
	return true
}

// LoadedCount returns the number of loaded chunks.
func (m *ChunkManager) LoadedCount() int {
	return len(m.loaded)
}

// LoadedKeys returns the currently loaded chunk keys, unordered.
func (m *ChunkManager) LoadedKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(m.loaded))
	for k := range m.loaded {
		keys = append(keys, k)
	}
	return keys
}

// QueueDepths returns the pending load and unload counts.
func (m *ChunkManager) QueueDepths() (loads, unloads int) {
	return len(m.loadQueue), len(m.unloadQueue)
}

// Reset tears down the whole world: every chunk unloaded, pools
// drained and disposed. Level change path, not frame path.
func (m *ChunkManager) Reset() {
	m.loadQueue = nil
	m.unloadQueue = nil
	m.loadSet = make(map[ChunkKey]struct{})
	m.unloadSet = make(map[ChunkKey]struct{})
	for key := range m.loaded {
		m.unloadChunk(key)
	}
	m.pools.Clear()
	m.hasLast = false
	m.syncGauges()
}

func (m *ChunkManager) syncGauges() {
	metrics.ChunksLoaded.Set(float64(len(m.loaded)))
	metrics.LoadQueueDepth.Set(float64(len(m.loadQueue)))
	metrics.UnloadQueueDepth.Set(float64(len(m.unloadQueue)))
	metrics.ActiveObjects.Set(float64(m.grid.Len()))
	for _, name := range m.pools.PoolNames() {
		metrics.PooledObjects.WithLabelValues(name).Set(float64(m.pools.Size(name)))
	}
}
