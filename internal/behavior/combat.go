package behavior

// attackerSearchRadius bounds how far from a damage source the agent looks
// for the hostile that hit it.
const attackerSearchRadius = 5.0

// EnterCombat engages the agent: marks it in combat, solicits help once per
// engagement when enabled, and forces the chase.
func (c *Controller) EnterCombat() {
	if c == nil || c.state == StateDead {
		return
	}
	c.inCombat = true
	if c.cfg.HelpEnabled && !c.calledForHelp {
		c.CallForHelp()
		c.calledForHelp = true
	}
	c.transition(StateChasing)
}

// ExitCombat disengages: clears the in-combat flag and the tracked target,
// then sends the agent back toward home.
func (c *Controller) ExitCombat() {
	if c == nil || c.state == StateDead {
		return
	}
	c.inCombat = false
	c.perception.target = nil
	c.transition(StateReturning)
}

// SetTarget installs a hostile and engages immediately. A nil target is
// equivalent to ClearTarget.
func (c *Controller) SetTarget(target Target) {
	if c == nil || c.state == StateDead {
		return
	}
	if target == nil {
		c.ClearTarget()
		return
	}
	c.perception.target = target
	c.perception.lastKnown = target.Position()
	c.perception.lastSeen = c.clock
	c.perception.everSeen = true
	c.EnterCombat()
}

// ClearTarget drops the current hostile and disengages.
func (c *Controller) ClearTarget() {
	c.ExitCombat()
}

// OnTakeDamage reacts to incoming damage. Outside combat the agent tries to
// resolve an attacker near the damage source and engages it. Taking damage
// always refreshes the last-seen clock, in or out of combat, so a pummeled
// agent never forgets its attacker mid-fight.
func (c *Controller) OnTakeDamage(amount float64, source Vec2) {
	if c == nil || c.state == StateDead {
		return
	}
	_ = amount

	if !c.inCombat && c.deps.World != nil {
		if attacker := c.deps.World.NearestHostile(source, attackerSearchRadius); attacker != nil {
			c.perception.target = attacker
			c.perception.lastKnown = attacker.Position()
			c.perception.everSeen = true
			c.EnterCombat()
		}
	}
	c.perception.lastSeen = c.clock
}

// performAttack resolves one swing against the target. The critical roll
// happens exactly once per invocation and the rolled value is both applied
// and reported.
func (c *Controller) performAttack(target Target) {
	if target == nil {
		return
	}
	c.triggerCue(CueAttack)

	damage := c.cfg.BaseDamage
	critical := c.cfg.CriticalChance > 0 && c.rng.Float64()*100 < c.cfg.CriticalChance
	if critical {
		damage *= c.cfg.CriticalDamage / 100
	}

	target.ApplyDamage(damage)
	if c.deps.Events != nil {
		c.deps.Events.DamageDealt(damage, critical, target.Position())
	}
	if c.deps.Audio != nil {
		c.deps.Audio.PlayAt(SoundAttack, c.position())
	}
}
