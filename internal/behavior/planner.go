package behavior

import "math"

const (
	randomPatrolAttempts = 6

	fleeProjectDistance  = 10.0
	fleeFallbackDistance = 5.0
	fleeFallbackSteps    = 4
)

// advancePatrol picks the next patrol destination and issues the move. A
// non-empty fixed waypoint list takes priority and cycles; otherwise a random
// reachable point near home is sampled, falling back to home itself when no
// sample lands clear.
func (c *Controller) advancePatrol() {
	loco := c.deps.Locomotion
	if loco == nil {
		return
	}

	if len(c.patrolPoints) > 0 {
		c.patrolIndex = (c.patrolIndex + 1) % len(c.patrolPoints)
		loco.MoveTo(c.patrolPoints[c.patrolIndex])
		return
	}

	for i := 0; i < randomPatrolAttempts; i++ {
		angle := c.rng.Float64() * 2 * math.Pi
		distance := c.cfg.PatrolRange * math.Sqrt(c.rng.Float64())
		point := c.home.Add(Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(distance))
		if loco.IsReachable(point) {
			loco.MoveTo(point)
			return
		}
	}
	loco.MoveTo(c.home)
}

// issueFlee computes a destination away from the threat and issues the move.
// The primary candidate projects ten units along the target-to-self
// direction; failing that, four directions rotated in quarter turns are
// tried at five units. With no reachable candidate no command is issued this
// tick; the next tick retries.
func (c *Controller) issueFlee() {
	loco := c.deps.Locomotion
	if loco == nil {
		return
	}

	away := c.fleeDirection()
	if (away == Vec2{}) {
		return
	}

	pos := c.position()
	primary := pos.Add(away.Scale(fleeProjectDistance))
	if loco.IsReachable(primary) {
		loco.MoveTo(primary)
		return
	}

	for i := 1; i <= fleeFallbackSteps; i++ {
		rotated := away.Rotated(float64(i) * math.Pi / 2)
		candidate := pos.Add(rotated.Scale(fleeFallbackDistance))
		if loco.IsReachable(candidate) {
			loco.MoveTo(candidate)
			return
		}
	}
}

// fleeDirection is the unit vector from the threat toward the agent. With no
// live target the stale last-known position stands in; with no perception at
// all a random direction is used so a cornered agent still scatters.
func (c *Controller) fleeDirection() Vec2 {
	pos := c.position()

	var threat Vec2
	switch {
	case c.liveTarget() != nil:
		threat = c.liveTarget().Position()
	case c.perception.everSeen:
		threat = c.perception.lastKnown
	default:
		angle := c.rng.Float64() * 2 * math.Pi
		return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
	}

	away := pos.Sub(threat).Normalized()
	if (away == Vec2{}) {
		angle := c.rng.Float64() * 2 * math.Pi
		away = Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
	}
	return away
}
