package sim

import (
	"emberwatch/server/internal/behavior"
	"emberwatch/server/internal/world"
)

const arriveEpsilon = 0.05

// Mover is the kinematic locomotion backend for one agent. It owns the
// agent's transform and integrates movement each tick; the behavior core
// drives it through the behavior.Locomotion contract. Not safe for concurrent
// use; the engine serializes access under its tick lock.
type Mover struct {
	worldMap *world.Map

	pos    behavior.Vec2
	facing behavior.Vec2

	dest    *behavior.Vec2
	pursuit behavior.Target

	speed          float64
	fastMultiplier float64
	fast           bool
	enabled        bool
	windup         bool

	// onArrive fires once when a MoveTo destination is reached.
	onArrive func()
}

func NewMover(m *world.Map, pos behavior.Vec2, speed, fastMultiplier float64) *Mover {
	if speed <= 0 {
		speed = 1
	}
	if fastMultiplier < 1 {
		fastMultiplier = 1
	}
	return &Mover{
		worldMap:       m,
		pos:            pos,
		facing:         behavior.Vec2{X: 1, Y: 0},
		speed:          speed,
		fastMultiplier: fastMultiplier,
		enabled:        true,
	}
}

func (m *Mover) Position() behavior.Vec2 { return m.pos }

func (m *Mover) Facing() behavior.Vec2 { return m.facing }

func (m *Mover) StopMovement() {
	m.dest = nil
	m.pursuit = nil
}

func (m *Mover) MoveTo(point behavior.Vec2) {
	p := point
	m.dest = &p
	m.pursuit = nil
}

func (m *Mover) MoveToward(target behavior.Target) {
	if target == nil {
		return
	}
	m.pursuit = target
	m.dest = nil
}

func (m *Mover) FaceToward(point behavior.Vec2) {
	dir := point.Sub(m.pos)
	if dir.Length() == 0 {
		return
	}
	m.facing = dir.Normalized()
}

func (m *Mover) SetFastMovement(enabled bool) { m.fast = enabled }

func (m *Mover) PrepareAttackWindup() {
	m.StopMovement()
	m.windup = true
}

func (m *Mover) ResumeAfterAttack() { m.windup = false }

func (m *Mover) SetMovementEnabled(enabled bool) {
	m.enabled = enabled
	if !enabled {
		m.StopMovement()
	}
}

func (m *Mover) IsMoving() bool {
	return m.dest != nil || m.pursuit != nil
}

func (m *Mover) IsReachable(point behavior.Vec2) bool {
	if m.worldMap == nil {
		return true
	}
	return m.worldMap.Reachable(point)
}

// Update integrates one tick of movement. Arrival at a MoveTo destination
// fires the onArrive callback after the transform settles.
func (m *Mover) Update(dt float64) {
	if !m.enabled || m.windup || dt <= 0 {
		return
	}

	var goal behavior.Vec2
	switch {
	case m.pursuit != nil:
		if !m.pursuit.Alive() {
			m.pursuit = nil
			return
		}
		goal = m.pursuit.Position()
	case m.dest != nil:
		goal = *m.dest
	default:
		return
	}

	delta := goal.Sub(m.pos)
	distance := delta.Length()
	if distance <= arriveEpsilon {
		m.settle(goal)
		return
	}

	speed := m.speed
	if m.fast {
		speed *= m.fastMultiplier
	}
	stepLen := speed * dt
	if stepLen >= distance {
		m.settle(goal)
		return
	}

	dir := delta.Scale(1 / distance)
	next := m.pos.Add(dir.Scale(stepLen))
	if m.worldMap != nil {
		if !m.worldMap.Reachable(next) {
			// Blocked; hold position rather than clip into geometry.
			return
		}
		next = m.worldMap.ClampToBounds(next)
	}
	m.pos = next
	m.facing = dir
}

func (m *Mover) settle(goal behavior.Vec2) {
	if m.worldMap != nil && !m.worldMap.Reachable(goal) {
		m.StopMovement()
		return
	}
	m.pos = goal
	arrived := m.dest != nil
	m.StopMovement()
	if arrived && m.onArrive != nil {
		m.onArrive()
	}
}
