package debug

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/openrunner/engine/internal/world"
)

// Server exposes metrics, health, and a websocket feed of engine
// snapshots. The game loop publishes snapshots through Publish; the
// server never touches engine state directly, so the single-goroutine
// contract on the world package holds.
type Server struct {
	addr       string
	snapshotHz int
	log        *zap.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	latest  world.Snapshot
	httpSrv *http.Server
}

type wsClient struct {
	conn *websocket.Conn
	send chan world.Snapshot
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
	// Local observability endpoint; same-origin policy is the bind
	// address being loopback by default.
	CheckOrigin: func(*http.Request) bool { return true },
}

func NewServer(addr string, snapshotHz int, log *zap.Logger) *Server {
	if snapshotHz <= 0 {
		snapshotHz = 10
	}
	return &Server{
		addr:       addr,
		snapshotHz: snapshotHz,
		log:        log,
		clients:    make(map[*wsClient]struct{}),
	}
}

// Start runs the HTTP server in its own goroutine.
func (s *Server) Start() {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", s.handleHealth)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/ws", s.handleWS)

	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("debug server", zap.Error(err))
		}
	}()
}

// Stop closes the HTTP server and all websocket clients.
func (s *Server) Stop() {
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()
}

// Publish hands the latest snapshot to connected clients. Non-blocking:
// a client that cannot keep up drops frames, never the game loop.
func (s *Server) Publish(snap world.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	for c := range s.clients {
		select {
		case c.send <- snap:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := s.latest
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	c := &wsClient{conn: conn, send: make(chan world.Snapshot, 4)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writeLoop(c)
	go s.readLoop(c)
}

// writeLoop streams snapshots to one client, rate limited so a burst
// of ticks cannot flood a slow consumer.
func (s *Server) writeLoop(c *wsClient) {
	limiter := rate.NewLimiter(rate.Limit(s.snapshotHz), 1)
	defer s.drop(c)
	for snap := range c.send {
		if !limiter.Allow() {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteJSON(snap); err != nil {
			return
		}
	}
}

// readLoop exists to notice the client going away.
func (s *Server) readLoop(c *wsClient) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) drop(c *wsClient) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}
