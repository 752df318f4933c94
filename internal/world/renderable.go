package world

import (
	"fmt"
)

// Renderable is an opaque drawable handle. The engine owns its
// placement and lifecycle; what it looks like is the renderer's
// business. A handle is always in exactly one of three states:
// active in a chunk, parked in a pool stack, or disposed.
//
// Back-references are key-based (owning chunk key + object index)
// rather than pointers, so disposal order stays explicit and there are
// no ownership cycles between chunk records and handles.
type Renderable struct {
	ID      uint64
	Type    string // object template name ("rock", "coin", ...)
	Pool    string // pool it returns to when detached
	Subtype string
	Parts   int // sub-mesh count; checked before pooled reuse

	X, Y, Z   float64
	Scale     float64
	RotationY float64

	Visible  bool
	Disposed bool

	// Owning chunk + index into its object records while active.
	// Zero value when pooled.
	Chunk ChunkKey
	Index int
}

// Detach clears the active-world placement state before a handle goes
// back to a pool. Scene and grid removal are the caller's contract.
func (r *Renderable) Detach() {
	r.Visible = false
	r.Chunk = ChunkKey{}
	r.Index = 0
}

// Dispose marks the handle's underlying resources as released.
func (r *Renderable) Dispose() {
	r.Disposed = true
	r.Visible = false
}

// Scene is the renderer-side collaborator: it owns drawing, the engine
// only tells it what exists. Implementations must tolerate duplicate
// removes (unload paths can race collection within one frame).
type Scene interface {
	Add(r *Renderable)
	Remove(r *Renderable)
}

// MemScene is an in-memory Scene used by the simulation driver and
// tests. It tracks membership only.
type MemScene struct {
	objects map[uint64]*Renderable
}

func NewMemScene() *MemScene {
	return &MemScene{objects: make(map[uint64]*Renderable)}
}

func (s *MemScene) Add(r *Renderable) {
	s.objects[r.ID] = r
}

func (s *MemScene) Remove(r *Renderable) {
	delete(s.objects, r.ID)
}

// Has reports whether a handle is currently in the scene.
func (s *MemScene) Has(r *Renderable) bool {
	_, ok := s.objects[r.ID]
	return ok
}

// Count returns the number of objects in the scene.
func (s *MemScene) Count() int {
	return len(s.objects)
}

// BuildFunc constructs a fresh renderable for one object type.
type BuildFunc func(id uint64, tmpl ObjectTemplate) (*Renderable, error)

// ObjectTemplate is the construction-relevant slice of a level object
// definition, passed to build functions.
type ObjectTemplate struct {
	Name    string
	Pool    string
	Subtype string
	Parts   int
}

// Builder is the renderable-construction collaborator: a dispatch
// table from object type to construction function, so adding a type is
// a table entry rather than a switch arm.
type Builder struct {
	byType map[string]BuildFunc
	nextID uint64
}

func NewBuilder() *Builder {
	return &Builder{byType: make(map[string]BuildFunc)}
}

// Register installs a construction function for a type, replacing any
// previous entry.
func (b *Builder) Register(typeName string, fn BuildFunc) {
	b.byType[typeName] = fn
}

// Build constructs a fresh renderable for the template, using the
// registered function for its type or a plain default.
func (b *Builder) Build(tmpl ObjectTemplate) (*Renderable, error) {
	b.nextID++
	if fn, ok := b.byType[tmpl.Name]; ok {
		r, err := fn(b.nextID, tmpl)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", tmpl.Name, err)
		}
		return r, nil
	}
	return &Renderable{
		ID:      b.nextID,
		Type:    tmpl.Name,
		Pool:    tmpl.Pool,
		Subtype: tmpl.Subtype,
		Parts:   tmpl.Parts,
		Scale:   1,
	}, nil
}
