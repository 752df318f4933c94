package world

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

// Enemy behavior differences between types are a handful of numeric
// overrides, so an enemy is one record composed of a movement policy
// and a grounding policy, not a type hierarchy.

// MovementPolicy holds per-type movement tuning.
type MovementPolicy struct {
	Speed        float64 // world units per second
	TurnRate     float64 // radians per second
	AggroRange   float64 // chase the observer inside this range
	WanderRadius float64 // leash distance from spawn point while idle
}

// GroundingPolicy holds per-type terrain-following tuning.
type GroundingPolicy struct {
	Offset   float64 // height above the terrain surface
	Animated bool    // whether the renderable carries an animation rig
}

// EnemyPolicy pairs the two for one enemy type.
type EnemyPolicy struct {
	Movement  MovementPolicy
	Grounding GroundingPolicy
}

// Enemy is one live enemy instance. Spawned or recycled per chunk
// load, released on chunk unload.
type Enemy struct {
	ID      uint64
	Type    string
	X, Y, Z float64
	Heading float64 // radians, world XZ plane
	SpawnX  float64
	SpawnZ  float64
	Chunk   ChunkKey

	Movement  MovementPolicy
	Grounding GroundingPolicy
}

// TerrainSource is the slice of the chunk manager the enemy system
// consumes for grounding: nearby terrain pieces around a position.
type TerrainSource interface {
	TerrainsNear(x, z float64) []*Terrain
}

// EnemyLifecycle is the collaborator the chunk manager delegates
// enemy-type placements to. The chunk manager owns when enemies exist;
// this owns what they are and how they behave.
type EnemyLifecycle interface {
	SpawnOrRecycle(typ string, x, z float64, key ChunkKey) (*Enemy, error)
	Release(e *Enemy)
}

// EnemyManager is the default EnemyLifecycle: a per-type policy table,
// a recycle stack, and a wander/chase update loop.
type EnemyManager struct {
	policies map[string]EnemyPolicy
	active   map[uint64]*Enemy
	reserve  []*Enemy
	terrain  TerrainSource
	rng      *rand.Rand
	log      *zap.Logger
	nextID   uint64
}

func NewEnemyManager(log *zap.Logger, rngSeed int64) *EnemyManager {
	return &EnemyManager{
		policies: make(map[string]EnemyPolicy),
		active:   make(map[uint64]*Enemy),
		rng:      rand.New(rand.NewSource(rngSeed)),
		log:      log,
	}
}

// RegisterPolicy installs the behavior policy for an enemy type.
// Adding a type is a table entry.
func (m *EnemyManager) RegisterPolicy(typ string, p EnemyPolicy) {
	m.policies[typ] = p
}

// SetTerrainSource wires the grounding query after construction; the
// chunk manager and enemy manager reference each other, so one side
// has to be connected late.
func (m *EnemyManager) SetTerrainSource(ts TerrainSource) {
	m.terrain = ts
}

// SpawnOrRecycle activates an enemy of the given type at a position,
// reusing a parked instance when one is available.
func (m *EnemyManager) SpawnOrRecycle(typ string, x, z float64, key ChunkKey) (*Enemy, error) {
	pol, ok := m.policies[typ]
	if !ok {
		return nil, fmt.Errorf("no policy for enemy type %q", typ)
	}

	var e *Enemy
	if n := len(m.reserve); n > 0 {
		e = m.reserve[n-1]
		m.reserve = m.reserve[:n-1]
	} else {
		m.nextID++
		e = &Enemy{ID: m.nextID}
	}

	e.Type = typ
	e.X, e.Z = x, z
	e.SpawnX, e.SpawnZ = x, z
	e.Heading = m.rng.Float64() * 2 * math.Pi
	e.Chunk = key
	e.Movement = pol.Movement
	e.Grounding = pol.Grounding
	e.Y = m.groundHeight(x, z) + pol.Grounding.Offset

	m.active[e.ID] = e
	return e, nil
}

// Release parks an enemy for recycling. Unknown handles log a warning
// and are dropped rather than double-parked.
func (m *EnemyManager) Release(e *Enemy) {
	if e == nil {
		return
	}
	if _, ok := m.active[e.ID]; !ok {
		m.log.Warn("enemy release: not active", zap.Uint64("id", e.ID), zap.String("type", e.Type))
		return
	}
	delete(m.active, e.ID)
	m.reserve = append(m.reserve, e)
}

// ActiveCount returns the number of live enemies.
func (m *EnemyManager) ActiveCount() int {
	return len(m.active)
}

// ReserveCount returns the number of parked enemies.
func (m *EnemyManager) ReserveCount() int {
	return len(m.reserve)
}

// Update advances every active enemy by dt seconds: chase the observer
// inside aggro range, otherwise wander on a leash around the spawn
// point, always following the terrain surface.
func (m *EnemyManager) Update(obsX, obsZ, dt float64) {
	for _, e := range m.active {
		dx := obsX - e.X
		dz := obsZ - e.Z
		distSq := dx*dx + dz*dz

		var wantHeading float64
		aggro := e.Movement.AggroRange
		if aggro > 0 && distSq < aggro*aggro {
			wantHeading = math.Atan2(dz, dx)
		} else {
			// Leash: head home when past the wander radius, else
			// drift with occasional random turns.
			hx := e.SpawnX - e.X
			hz := e.SpawnZ - e.Z
			if e.Movement.WanderRadius > 0 && hx*hx+hz*hz > e.Movement.WanderRadius*e.Movement.WanderRadius {
				wantHeading = math.Atan2(hz, hx)
			} else {
				if m.rng.Float64() < 0.02 {
					e.Heading += (m.rng.Float64() - 0.5) * math.Pi / 2
				}
				wantHeading = e.Heading
			}
		}

		e.Heading = turnToward(e.Heading, wantHeading, e.Movement.TurnRate*dt)
		e.X += math.Cos(e.Heading) * e.Movement.Speed * dt
		e.Z += math.Sin(e.Heading) * e.Movement.Speed * dt
		e.Y = m.groundHeight(e.X, e.Z) + e.Grounding.Offset
	}
}

func (m *EnemyManager) groundHeight(x, z float64) float64 {
	if m.terrain == nil {
		return 0
	}
	for _, t := range m.terrain.TerrainsNear(x, z) {
		if x >= t.Field.OriginX && x < t.Field.OriginX+t.Field.Size &&
			z >= t.Field.OriginZ && z < t.Field.OriginZ+t.Field.Size {
			return t.Field.HeightAt(x, z)
		}
	}
	return 0
}

// turnToward rotates current toward want by at most maxDelta radians.
func turnToward(current, want, maxDelta float64) float64 {
	diff := math.Mod(want-current+3*math.Pi, 2*math.Pi) - math.Pi
	if diff > maxDelta {
		diff = maxDelta
	} else if diff < -maxDelta {
		diff = -maxDelta
	}
	return current + diff
}
