package world

import (
	"math"
)

// Per-frame cosmetic and behavioral passes over loaded chunks. These
// are chunk-scoped, so they live with the manager rather than as a
// separate system.

// UpdateCollectibles spins active collectibles and pulls those inside
// magnet range toward the observer, with speed weighted by inverse
// distance and capped. Objects crossing the collection radius are
// collected through the normal CollectObject path.
func (m *ChunkManager) UpdateCollectibles(obsX, obsY, obsZ, dt float64) {
	for key, rec := range m.loaded {
		for i, obj := range rec.Objects {
			if obj.Collidable || obj.Collected || obj.Handle == nil {
				continue
			}
			h := obj.Handle
			h.RotationY += collectibleSpinRate * dt

			dx := obsX - h.X
			dy := obsY - h.Y
			dz := obsZ - h.Z
			dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

			if dist < collectRange {
				m.CollectObject(key, i)
				continue
			}
			if dist < magnetRange {
				// Pull speed grows as the object closes in.
				step := magnetMaxStep * dt * (1 - dist/magnetRange)
				if step > dist {
					step = dist
				}
				h.X += dx / dist * step
				h.Y += dy / dist * step
				h.Z += dz / dist * step
				m.grid.Update(h)
			}
		}
	}
}

// UpdateHazards advances rolling hazards: dormant ones wake when the
// observer approaches, active ones steer toward a lead point ahead of
// the observer while following the terrain surface, and ones left far
// behind are detached and repooled.
func (m *ChunkManager) UpdateHazards(obsX, obsZ, dt float64) {
	for _, rec := range m.loaded {
		for _, hz := range rec.Hazards {
			if hz.Handle == nil {
				continue
			}
			h := hz.Handle
			dx := obsX - h.X
			dz := obsZ - h.Z
			dist := math.Hypot(dx, dz)

			if !hz.Rolling {
				if dist > hazardActivateRange {
					continue
				}
				hz.Rolling = true
				if dist > 0 {
					hz.VelX = dx / dist * hz.Speed
					hz.VelZ = dz / dist * hz.Speed
				} else {
					// Observer exactly on the hazard: roll forward
					// rather than dividing by zero.
					hz.VelX = 0
					hz.VelZ = hz.Speed
				}
			}

			// Steer toward a point ahead of the observer so hazards
			// cross the path instead of tail-chasing.
			leadZ := obsZ + hazardLeadDistance
			wantHeading := math.Atan2(leadZ-h.Z, obsX-h.X)
			heading := turnToward(math.Atan2(hz.VelZ, hz.VelX), wantHeading, hazardTurnRate*dt)
			hz.VelX = math.Cos(heading) * hz.Speed
			hz.VelZ = math.Sin(heading) * hz.Speed

			h.X += hz.VelX * dt
			h.Z += hz.VelZ * dt
			h.Y = m.HeightAt(h.X, h.Z) + h.Scale
			h.RotationY += hazardSpinRate * dt
			m.grid.Update(h)

			// Left well behind the observer: park the handle until the
			// chunk reloads it.
			if h.Z < obsZ-hazardRetireRange {
				m.scene.Remove(h)
				m.grid.Remove(h)
				h.Detach()
				m.pools.Put("hazards", h)
				hz.Handle = nil
				hz.Rolling = false
			}
		}
	}
}
