package behavior

// CallForHelp recruits idle allies within the help-call range into combat
// against the agent's current target. Allies already in combat are skipped.
// The broadcast only ever calls each ally's own entry point; it never touches
// another agent's state directly.
func (c *Controller) CallForHelp() {
	if c == nil || c.deps.World == nil {
		return
	}
	target := c.perception.target
	recruited := 0
	for _, ally := range c.deps.World.AlliesWithin(c.position(), c.cfg.HelpCallRange) {
		if ally == nil || ally.InCombat() {
			continue
		}
		ally.RespondToHelpCall(target)
		recruited++
	}
	if c.deps.Events != nil {
		c.deps.Events.HelpRequested(recruited)
	}
}

// RespondToHelpCall adopts an ally's target and engages. Agents already in
// combat, dead agents and invalid targets ignore the call.
func (c *Controller) RespondToHelpCall(target Target) {
	if c == nil || c.inCombat || c.state == StateDead {
		return
	}
	if target == nil || !target.Alive() {
		return
	}
	c.perception.target = target
	c.perception.lastKnown = target.Position()
	c.perception.lastSeen = c.clock
	c.perception.everSeen = true
	c.EnterCombat()
}
