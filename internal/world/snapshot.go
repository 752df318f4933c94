package world

// Snapshot is a point-in-time summary of the streaming subsystem for
// the debug feed and startup stats. Values are copies; holding a
// snapshot keeps nothing alive.
type Snapshot struct {
	ObserverX     float64 `json:"observer_x"`
	ObserverZ     float64 `json:"observer_z"`
	CurrentChunk  string  `json:"current_chunk"`
	LoadedChunks  int     `json:"loaded_chunks"`
	PendingLoads  int     `json:"pending_loads"`
	PendingUnload int     `json:"pending_unloads"`
	ActiveObjects int     `json:"active_objects"`
	PooledObjects int     `json:"pooled_objects"`
	OccupiedCells int     `json:"occupied_cells"`
}

// Snapshot captures the current streaming state.
func (m *ChunkManager) Snapshot() Snapshot {
	return Snapshot{
		ObserverX:     m.observerX,
		ObserverZ:     m.observerZ,
		CurrentChunk:  m.lastChunk.String(),
		LoadedChunks:  len(m.loaded),
		PendingLoads:  len(m.loadQueue),
		PendingUnload: len(m.unloadQueue),
		ActiveObjects: m.grid.Len(),
		PooledObjects: m.pools.TotalSize(),
		OccupiedCells: m.grid.CellCount(),
	}
}
