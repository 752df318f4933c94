package world

import (
	"errors"
	"strings"
	"testing"
)

func TestBuilderDefaultConstruction(t *testing.T) {
	b := NewBuilder()
	r, err := b.Build(ObjectTemplate{Name: "rock", Pool: "obstacles", Subtype: "rock", Parts: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Type != "rock" || r.Pool != "obstacles" || r.Subtype != "rock" || r.Parts != 1 {
		t.Errorf("default build lost template fields: %+v", r)
	}
	if r.Scale != 1 {
		t.Errorf("default scale = %f, want 1", r.Scale)
	}
}

func TestBuilderUniqueIDs(t *testing.T) {
	b := NewBuilder()
	seen := map[uint64]bool{}
	for i := 0; i < 50; i++ {
		r, err := b.Build(ObjectTemplate{Name: "rock"})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate ID %d", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestBuilderRegisteredFunc(t *testing.T) {
	b := NewBuilder()
	b.Register("cactus", func(id uint64, tmpl ObjectTemplate) (*Renderable, error) {
		return &Renderable{ID: id, Type: tmpl.Name, Pool: tmpl.Pool, Subtype: tmpl.Subtype, Parts: 2, Scale: 1}, nil
	})

	r, err := b.Build(ObjectTemplate{Name: "cactus", Pool: "obstacles", Subtype: "cactus", Parts: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Parts != 2 {
		t.Errorf("registered func not used: Parts = %d, want 2", r.Parts)
	}
}

func TestBuilderErrorNamesType(t *testing.T) {
	b := NewBuilder()
	boom := errors.New("mesh missing")
	b.Register("cactus", func(uint64, ObjectTemplate) (*Renderable, error) {
		return nil, boom
	})

	_, err := b.Build(ObjectTemplate{Name: "cactus"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error chain lost the cause: %v", err)
	}
	if !strings.Contains(err.Error(), "cactus") {
		t.Errorf("error %q should name the object type", err)
	}
}

func TestDetachClearsPlacement(t *testing.T) {
	r := &Renderable{ID: 1, Visible: true, Chunk: ChunkKey{3, 4}, Index: 7}
	r.Detach()
	if r.Visible {
		t.Error("detached handle still visible")
	}
	if (r.Chunk != ChunkKey{}) || r.Index != 0 {
		t.Errorf("detached handle kept its chunk reference: %v/%d", r.Chunk, r.Index)
	}
}

func TestMemSceneMembership(t *testing.T) {
	s := NewMemScene()
	r := &Renderable{ID: 1}
	s.Add(r)
	if !s.Has(r) || s.Count() != 1 {
		t.Fatal("added handle not present")
	}
	s.Remove(r)
	s.Remove(r) // duplicate remove is allowed
	if s.Has(r) || s.Count() != 0 {
		t.Fatal("removed handle still present")
	}
}
