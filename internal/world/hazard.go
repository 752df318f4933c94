package world

// Hazard is a dynamic, non-enemy, collidable entity with its own
// per-frame movement: the tumbleweed. Its renderable handle comes from
// the "hazards" pool and goes back there when the hazard deactivates
// or its chunk unloads.
type Hazard struct {
	Handle *Renderable // nil once returned to the pool

	VelX, VelZ float64
	Speed      float64
	Rolling    bool // activated by observer proximity
}

// Hazard tuning. Distances in world units, relative to the observer.
const (
	hazardBaseSpeed     = 10.0  // rolling speed at difficulty 1.0
	hazardActivateRange = 120.0 // start rolling when the observer is this close
	hazardLeadDistance  = 30.0  // aim point ahead of the observer
	hazardRetireRange   = 80.0  // deactivate this far behind the aim point
	hazardTurnRate      = 1.5   // radians per second steering clamp
	hazardSpinRate      = 3.0   // visual roll, radians per second
)
