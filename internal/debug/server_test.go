package debug

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/openrunner/engine/internal/world"
)

func TestHealthEndpoint(t *testing.T) {
	s := NewServer("127.0.0.1:0", 10, zap.NewNop())
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want \"ok\"", rec.Body.String())
	}
}

func TestSnapshotEndpointServesLatest(t *testing.T) {
	s := NewServer("127.0.0.1:0", 10, zap.NewNop())
	s.Publish(world.Snapshot{LoadedChunks: 81, CurrentChunk: "0,1", ObserverZ: 150})

	rec := httptest.NewRecorder()
	s.handleSnapshot(rec, httptest.NewRequest("GET", "/snapshot", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var snap world.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.LoadedChunks != 81 || snap.CurrentChunk != "0,1" || snap.ObserverZ != 150 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestPublishOverwritesLatest(t *testing.T) {
	s := NewServer("127.0.0.1:0", 10, zap.NewNop())
	s.Publish(world.Snapshot{LoadedChunks: 1})
	s.Publish(world.Snapshot{LoadedChunks: 2})

	rec := httptest.NewRecorder()
	s.handleSnapshot(rec, httptest.NewRequest("GET", "/snapshot", nil))

	var snap world.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.LoadedChunks != 2 {
		t.Errorf("LoadedChunks = %d, want the latest publish", snap.LoadedChunks)
	}
}

func TestPublishNeverBlocksOnSlowClient(t *testing.T) {
	s := NewServer("127.0.0.1:0", 10, zap.NewNop())

	// A client whose send buffer is full and whose write loop is not
	// draining. Publish must drop frames for it, not stall the caller.
	c := &wsClient{send: make(chan world.Snapshot, 1)}
	c.send <- world.Snapshot{}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	// Hangs here, and times out the test, if Publish can block.
	for i := 0; i < 100; i++ {
		s.Publish(world.Snapshot{LoadedChunks: i})
	}

	rec := httptest.NewRecorder()
	s.handleSnapshot(rec, httptest.NewRequest("GET", "/snapshot", nil))
	var snap world.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.LoadedChunks != 99 {
		t.Errorf("latest = %d, want 99", snap.LoadedChunks)
	}
}
