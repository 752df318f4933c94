package gen

import (
	"math"
	"math/rand"
)

// maxPlacementAttempts bounds rejection sampling per object. An object
// that cannot find a spot after this many tries is skipped, not fatal.
const maxPlacementAttempts = 10

// PlacementType describes one object category eligible for placement
// in a chunk. Copied from the level definition at manager construction.
type PlacementType struct {
	Name           string
	Density        float64 // expected instances per chunk at multiplier 1.0
	MinDistance    float64 // minimum separation between same-type instances
	MinScale       float64
	MaxScale       float64
	RandomRotation bool
	Collidable     bool
	ScoreValue     int
}

// Placement is one resolved object position inside a chunk.
type Placement struct {
	Type        string
	X, Z        float64 // world coordinates
	Scale       float64
	RotationY   float64
	Collidable  bool
	ScoreValue  int
	MinDistance float64
}

// PlaceObjects deterministically produces the ordered placement list
// for one chunk. The sequence depends only on (worldSeed, cx, cz) and
// the type list; densityMul scales instance counts (difficulty ramp)
// and is itself a pure function of chunk coordinates at the call site.
// Returns the placements and the number of instances skipped because
// rejection sampling ran out of attempts.
func PlaceObjects(worldSeed string, cx, cz int32, chunkSize float64, types []PlacementType, densityMul float64) ([]Placement, int) {
	rng := rand.New(rand.NewSource(ChunkSeed(worldSeed, cx, cz, "objects")))

	originX := float64(cx) * chunkSize
	originZ := float64(cz) * chunkSize

	var out []Placement
	skipped := 0

	for _, pt := range types {
		want := pt.Density * densityMul
		count := int(want)
		if rng.Float64() < want-float64(count) {
			count++
		}

		// Start of this type's accepted positions, for the separation check.
		typeStart := len(out)

		for n := 0; n < count; n++ {
			placed := false
			for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
				x := originX + rng.Float64()*chunkSize
				z := originZ + rng.Float64()*chunkSize
				if pt.MinDistance > 0 && tooClose(out[typeStart:], x, z, pt.MinDistance) {
					continue
				}
				scale := pt.MinScale
				if pt.MaxScale > pt.MinScale {
					scale += rng.Float64() * (pt.MaxScale - pt.MinScale)
				}
				rotY := 0.0
				if pt.RandomRotation {
					rotY = rng.Float64() * 2 * math.Pi
				}
				out = append(out, Placement{
					Type:        pt.Name,
					X:           x,
					Z:           z,
					Scale:       scale,
					RotationY:   rotY,
					Collidable:  pt.Collidable,
					ScoreValue:  pt.ScoreValue,
					MinDistance: pt.MinDistance,
				})
				placed = true
				break
			}
			if !placed {
				skipped++
			}
		}
	}
	return out, skipped
}

func tooClose(placed []Placement, x, z, minDist float64) bool {
	for i := range placed {
		dx := placed[i].X - x
		dz := placed[i].Z - z
		if dx*dx+dz*dz < minDist*minDist {
			return true
		}
	}
	return false
}
