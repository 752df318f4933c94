package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/openrunner/engine/internal/gen"
)

// ChunkKey identifies one chunk by integer chunk coordinates.
type ChunkKey struct {
	X int32
	Z int32
}

// String renders the key as "x,z", the form used in logs and by
// external callers holding collection references.
func (k ChunkKey) String() string {
	return fmt.Sprintf("%d,%d", k.X, k.Z)
}

// ParseChunkKey parses the "x,z" string form.
func ParseChunkKey(s string) (ChunkKey, error) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return ChunkKey{}, fmt.Errorf("chunk key %q: missing comma", s)
	}
	x, err := strconv.ParseInt(s[:i], 10, 32)
	if err != nil {
		return ChunkKey{}, fmt.Errorf("chunk key %q: %w", s, err)
	}
	z, err := strconv.ParseInt(s[i+1:], 10, 32)
	if err != nil {
		return ChunkKey{}, fmt.Errorf("chunk key %q: %w", s, err)
	}
	return ChunkKey{X: int32(x), Z: int32(z)}, nil
}

// KeyForPosition maps a world position to its chunk key by floored
// division, so negative coordinates land in the correct chunk.
func KeyForPosition(x, z, chunkSize float64) ChunkKey {
	return ChunkKey{
		X: int32(math.Floor(x / chunkSize)),
		Z: int32(math.Floor(z / chunkSize)),
	}
}

// Terrain is the ground renderable for one chunk. Not pooled: built on
// load, disposed on unload.
type Terrain struct {
	Key      ChunkKey
	Field    *gen.Heightfield
	Disposed bool
}

// ObjectRecord is one placed non-enemy, non-hazard entity in a chunk.
// Handle becomes nil once the object is collected or the chunk
// unloads; Collected is terminal until a full chunk reload.
type ObjectRecord struct {
	Type        string
	X, Y, Z     float64
	Scale       float64
	RotationY   float64
	Collidable  bool
	Collected   bool
	ScoreValue  int
	MinDistance float64
	Pool        string
	Subtype     string
	Handle      *Renderable
}

// ChunkRecord is everything a loaded chunk owns. Records are only ever
// stored in the loaded map fully constructed; the transitional states
// of the chunk lifecycle exist purely as queue membership.
type ChunkRecord struct {
	Key     ChunkKey
	Terrain *Terrain
	Objects []*ObjectRecord
	Enemies []*Enemy
	Hazards []*Hazard
}
