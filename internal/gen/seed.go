package gen

import (
	"encoding/binary"
	"hash/fnv"
)

// ChunkSeed derives a deterministic sub-seed from the world seed, chunk
// coordinates, and a purpose tag ("objects", "terrain", ...). The same
// inputs always produce the same seed, so per-chunk random sequences
// are reproducible regardless of generation order.
func ChunkSeed(worldSeed string, cx, cz int32, purpose string) int64 {
	h := fnv.New64a()
	h.Write([]byte(worldSeed))

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(cx))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(cz))
	h.Write(buf[:])

	h.Write([]byte(purpose))
	return int64(h.Sum64())
}

// WorldSeed64 collapses a world seed string to an int64 for components
// that take a numeric seed (noise permutation tables).
func WorldSeed64(worldSeed string) int64 {
	h := fnv.New64a()
	h.Write([]byte(worldSeed))
	return int64(h.Sum64())
}
