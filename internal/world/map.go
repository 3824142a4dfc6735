package world

import "math"

// Map holds the static geometry of the simulation area: its bounds and the
// obstacle set used for sight and reachability queries. A Map is immutable
// after construction, so it is safe to query from any goroutine.
type Map struct {
	width     float64
	height    float64
	obstacles []Obstacle
}

const (
	// DefaultWidth and DefaultHeight bound the play area in world units.
	DefaultWidth  = 100.0
	DefaultHeight = 100.0

	// ActorHalf is the half-extent of an actor, used as padding so agents
	// never path into a wall they cannot stand against.
	ActorHalf = 0.5
)

// NewMap builds a map with the given bounds and obstacles. Non-positive
// dimensions fall back to the defaults.
func NewMap(width, height float64, obstacles []Obstacle) *Map {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Map{
		width:     width,
		height:    height,
		obstacles: append([]Obstacle(nil), obstacles...),
	}
}

// Dimensions returns the map bounds.
func (m *Map) Dimensions() (float64, float64) {
	if m == nil {
		return DefaultWidth, DefaultHeight
	}
	return m.width, m.height
}

// Obstacles returns the obstacle set for snapshotting.
func (m *Map) Obstacles() []Obstacle {
	if m == nil {
		return nil
	}
	return m.obstacles
}

// ClampToBounds pulls a point inside the playable area.
func (m *Map) ClampToBounds(p Vec2) Vec2 {
	width, height := m.Dimensions()
	return Vec2{
		X: Clamp(p.X, ActorHalf, width-ActorHalf),
		Y: Clamp(p.Y, ActorHalf, height-ActorHalf),
	}
}

// Reachable reports whether an actor can stand at the point: in bounds and
// not inside any obstacle.
func (m *Map) Reachable(p Vec2) bool {
	if m == nil {
		return true
	}
	if p.X < ActorHalf || p.X > m.width-ActorHalf || p.Y < ActorHalf || p.Y > m.height-ActorHalf {
		return false
	}
	for _, obs := range m.obstacles {
		if obs.Contains(p, ActorHalf) {
			return false
		}
	}
	return true
}

// LineOfSight reports whether the straight segment from a to b crosses no
// obstacle rectangle.
func (m *Map) LineOfSight(a, b Vec2) bool {
	if m == nil {
		return true
	}
	for _, obs := range m.obstacles {
		if segmentIntersectsAABB(a, b, obs.X, obs.Y, obs.X+obs.Width, obs.Y+obs.Height) {
			return false
		}
	}
	return true
}

// segmentIntersectsAABB runs a slab test for the segment a->b against the
// box (minX,minY)-(maxX,maxY).
func segmentIntersectsAABB(a, b Vec2, minX, minY, maxX, maxY float64) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y

	tMin := 0.0
	tMax := 1.0

	if math.Abs(dx) < 1e-12 {
		if a.X < minX || a.X > maxX {
			return false
		}
	} else {
		invD := 1.0 / dx
		t1 := (minX - a.X) * invD
		t2 := (maxX - a.X) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	if math.Abs(dy) < 1e-12 {
		if a.Y < minY || a.Y > maxY {
			return false
		}
	} else {
		invD := 1.0 / dy
		t1 := (minY - a.Y) * invD
		t2 := (maxY - a.Y) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	return tMax >= 0 && tMin <= 1
}
