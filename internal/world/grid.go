package world

// SpatialGrid is a uniform-cell spatial index over world XZ positions.
// Query cost is proportional to occupied cells in range, not to total
// world population. Cell size is fixed at construction; it is a tuning
// parameter (too small inflates bookkeeping, too large degrades query
// selectivity), not a correctness one.
// Accessed only from the game loop goroutine — no locks.

type gridCell struct {
	cx int32
	cz int32
}

func toCellCoord(v, cellSize float64) int32 {
	c := v / cellSize
	i := int32(c)
	if c < float64(i) {
		return i - 1
	}
	return i
}

// SpatialGrid tracks which renderable handles occupy which cells. Each
// tracked handle's last-known cell is stored so removal needs no scan
// and updates have an O(1) same-cell fast path.
type SpatialGrid struct {
	cellSize float64
	cells    map[gridCell]map[*Renderable]struct{}
	known    map[*Renderable]gridCell
}

func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[gridCell]map[*Renderable]struct{}),
		known:    make(map[*Renderable]gridCell),
	}
}

func (g *SpatialGrid) cellFor(x, z float64) gridCell {
	return gridCell{cx: toCellCoord(x, g.cellSize), cz: toCellCoord(z, g.cellSize)}
}

// Add places a handle into the grid at its current position.
func (g *SpatialGrid) Add(r *Renderable) {
	k := g.cellFor(r.X, r.Z)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[*Renderable]struct{})
		g.cells[k] = cell
	}
	cell[r] = struct{}{}
	g.known[r] = k
}

// Remove takes a handle out of the grid using its stored cell. No-op
// if the handle was never added.
func (g *SpatialGrid) Remove(r *Renderable) {
	k, ok := g.known[r]
	if !ok {
		return
	}
	delete(g.known, r)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, r)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Update recomputes the handle's cell from its current position and
// moves it if the cell changed. Anything that moves a registered
// handle must call this afterwards — the grid cannot see the move.
func (g *SpatialGrid) Update(r *Renderable) {
	old, ok := g.known[r]
	if !ok {
		g.Add(r)
		return
	}
	k := g.cellFor(r.X, r.Z)
	if k == old {
		return
	}
	cell := g.cells[old]
	if cell != nil {
		delete(cell, r)
		if len(cell) == 0 {
			delete(g.cells, old)
		}
	}
	nc := g.cells[k]
	if nc == nil {
		nc = make(map[*Renderable]struct{})
		g.cells[k] = nc
	}
	nc[r] = struct{}{}
	g.known[r] = k
}

// QueryNear returns all handles in the square block of cells of side
// 2*ringCells+1 centered on the position's cell. Callers do their own
// fine-grained distance filtering.
func (g *SpatialGrid) QueryNear(x, z float64, ringCells int) []*Renderable {
	center := g.cellFor(x, z)
	var result []*Renderable
	for dx := int32(-ringCells); dx <= int32(ringCells); dx++ {
		for dz := int32(-ringCells); dz <= int32(ringCells); dz++ {
			k := gridCell{cx: center.cx + dx, cz: center.cz + dz}
			for r := range g.cells[k] {
				result = append(result, r)
			}
		}
	}
	return result
}

// Len returns the number of tracked handles.
func (g *SpatialGrid) Len() int {
	return len(g.known)
}

// CellCount returns the number of occupied cells.
func (g *SpatialGrid) CellCount() int {
	return len(g.cells)
}
