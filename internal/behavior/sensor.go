package behavior

import worldpkg "emberwatch/server/internal/world"

// sense runs one perception pass. The candidate is the tracked target when
// one exists, otherwise the world's primary hostile. A successful sighting
// (in range, in the facing cone, unobstructed) refreshes the last-known
// record and, outside combat, signals engagement. A failed sighting never
// clears the target: loss of sight is handled purely by the combat timeout,
// so the agent keeps pursuing stale last-known data in between.
func (c *Controller) sense() {
	candidate := c.perception.target
	if candidate == nil && c.deps.World != nil {
		candidate = c.deps.World.PrimaryHostile()
	}

	if candidate != nil && candidate.Alive() && c.canSee(candidate) {
		c.perception.target = candidate
		c.perception.lastKnown = candidate.Position()
		c.perception.lastSeen = c.clock
		c.perception.everSeen = true
		if !c.inCombat {
			c.EnterCombat()
		}
	}

	if c.inCombat && c.clock-c.perception.lastSeen > c.cfg.CombatTimeout {
		c.ExitCombat()
	}
}

// canSee checks range, field of view and line of sight against the target.
func (c *Controller) canSee(target Target) bool {
	pos := c.position()
	targetPos := target.Position()

	distance := Dist(pos, targetPos)
	if distance > c.cfg.DetectionRange {
		return false
	}

	if distance > 0 {
		toTarget := targetPos.Sub(pos)
		if worldpkg.AngleBetween(c.facing(), toTarget) > c.cfg.FieldOfView/2 {
			return false
		}
	}

	if c.deps.World != nil && !c.deps.World.LineOfSight(pos, targetPos) {
		return false
	}
	return true
}

func (c *Controller) facing() Vec2 {
	if c.deps.Locomotion == nil {
		return Vec2{}
	}
	return c.deps.Locomotion.Facing()
}
