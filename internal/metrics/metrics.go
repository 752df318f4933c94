package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Streaming-subsystem instruments. Bounded cardinality only: pool
// names come from the level definition, never from user input.
var (
	ChunksLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "world_chunks_loaded",
		Help: "Chunks currently loaded",
	})

	LoadQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "world_load_queue_depth",
		Help: "Chunks waiting to load",
	})

	UnloadQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "world_unload_queue_depth",
		Help: "Chunks waiting to unload",
	})

	ActiveObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "world_active_objects",
		Help: "Renderable handles registered in the spatial grid",
	})

	PooledObjects = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "world_pooled_objects",
		Help: "Inactive handles parked per pool",
	}, []string{"pool"})

	ObjectsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "world_objects_collected_total",
		Help: "Collectibles picked up",
	})

	PlacementsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "world_placements_skipped_total",
		Help: "Object placements abandoned by rejection sampling",
	})

	ChunkLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "world_chunk_load_duration_seconds",
		Help:    "Time spent loading one chunk",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	})

	ChunkUnloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "world_chunk_unload_duration_seconds",
		Help:    "Time spent unloading one chunk",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005},
	})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
)
