package behavior

import (
	"math/rand"
	"time"
)

const (
	// attackStateDuration bounds how long the machine lingers in Attacking
	// before bouncing back to Chasing; an attack is a brief interruption,
	// not a persistent state.
	attackStateDuration = 1.0
	fleeDuration        = 5.0
	homeArriveRadius    = 2.0
)

// Controller owns one agent's behavior: current state, timers, perception and
// combat bookkeeping. It is not safe for concurrent use; the owning agent's
// update loop must be the only caller of Advance, and the public operations
// are meant for the same simulation goroutine.
type Controller struct {
	cfg  Config
	deps Collaborators
	rng  *rand.Rand

	home  Vec2
	state State

	// clock is accumulated simulation time in seconds.
	clock       float64
	stateTimer  float64
	patrolTimer float64

	perception    PerceptionRecord
	inCombat      bool
	calledForHelp bool
	lastAttack    float64

	patrolEnabled bool
	patrolPoints  []Vec2
	patrolIndex   int

	search *searchTask
}

// NewController builds a controller anchored at the locomotion collaborator's
// current position. A nil rng falls back to a time-seeded source.
func NewController(cfg Config, deps Collaborators, rng *rand.Rand) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &Controller{
		cfg:           cfg,
		deps:          deps,
		rng:           rng,
		state:         StateIdle,
		patrolEnabled: cfg.PatrolEnabled,
		patrolIndex:   -1,
		lastAttack:    -cfg.AttackCooldown,
	}
	if deps.Locomotion != nil {
		c.home = deps.Locomotion.Position()
	}
	return c
}

// Advance runs one decision pass: sense, apply forced transitions, then run
// the current state's per-tick behavior. dt is the elapsed simulation time in
// seconds since the previous pass.
func (c *Controller) Advance(dt float64) {
	if c == nil || c.state == StateDead {
		return
	}
	c.clock += dt
	c.stateTimer += dt
	c.patrolTimer += dt

	c.sense()
	c.applyForcedTransitions()
	if c.state == StateDead {
		return
	}
	c.tickState(dt)
}

// applyForcedTransitions evaluates the priority-ordered transition rules.
// First match wins; state-specific logic still runs afterwards against the
// possibly-changed state.
func (c *Controller) applyForcedTransitions() {
	if !c.alive() {
		c.transition(StateDead)
		return
	}

	if c.cfg.FleeEnabled && c.healthFraction() <= c.cfg.FleeHealthThreshold && c.state != StateFleeing {
		c.transition(StateFleeing)
		return
	}

	if c.DistanceFromHome() > c.cfg.ReturnDistance && c.state != StateReturning {
		c.ExitCombat()
		return
	}

	// While fleeing, proximity must not drag the agent back into melee;
	// leaving Fleeing is governed by its own tick rules.
	if c.state == StateFleeing {
		return
	}

	if c.inCombat {
		if target := c.liveTarget(); target != nil {
			if Dist(c.position(), target.Position()) <= c.cfg.AttackRange {
				c.transition(StateAttacking)
			} else {
				c.transition(StateChasing)
			}
		}
	}
}

func (c *Controller) tickState(dt float64) {
	switch c.state {
	case StateIdle:
		if c.patrolEnabled && c.stateTimer >= c.cfg.PatrolWaitTime {
			c.transition(StatePatrol)
		}
	case StatePatrol:
		if !c.isMoving() && c.patrolTimer >= c.cfg.PatrolWaitTime {
			c.advancePatrol()
			c.patrolTimer = 0
		}
	case StateChasing:
		c.tickChase(dt)
	case StateAttacking:
		c.tickAttack()
	case StateReturning:
		if !c.isMoving() || c.DistanceFromHome() <= homeArriveRadius {
			c.perception.target = nil
			c.calledForHelp = false
			if c.patrolEnabled && !c.cfg.IdleAfterReturn {
				c.transition(StatePatrol)
			} else {
				c.transition(StateIdle)
			}
		}
	case StateFleeing:
		if c.stateTimer >= fleeDuration || c.healthFraction() > c.cfg.FleeHealthThreshold {
			c.transition(StateReturning)
		} else if !c.isMoving() {
			c.issueFlee()
		}
	}
}

func (c *Controller) tickChase(dt float64) {
	if c.search != nil {
		c.tickSearch(dt)
		return
	}
	if target := c.liveTarget(); target != nil {
		// Pursuit uses the live reference; the last-known record is only
		// refreshed by an actual sighting in sense.
		if loco := c.deps.Locomotion; loco != nil {
			loco.MoveToward(target)
			loco.FaceToward(target.Position())
		}
		return
	}
	if c.perception.everSeen {
		c.moveTo(c.perception.lastKnown)
	}
}

func (c *Controller) tickAttack() {
	if target := c.liveTarget(); target != nil {
		if loco := c.deps.Locomotion; loco != nil {
			loco.FaceToward(target.Position())
		}
		if c.clock-c.lastAttack >= c.cfg.AttackCooldown {
			c.performAttack(target)
			c.lastAttack = c.clock
		}
	}
	if c.stateTimer >= attackStateDuration {
		c.transition(StateChasing)
	}
}

// transition switches states, firing exit and enter hooks. Transitions into
// the current state are no-ops, and nothing leaves StateDead. Any transition
// aborts a pending search.
func (c *Controller) transition(to State) {
	if c.state == to || c.state == StateDead {
		return
	}
	from := c.state
	c.exitState(from)
	c.state = to
	c.stateTimer = 0
	c.search = nil
	c.enterState(to)
	if c.deps.Events != nil {
		c.deps.Events.StateChanged(from, to)
	}
}

func (c *Controller) enterState(state State) {
	loco := c.deps.Locomotion
	switch state {
	case StateIdle:
		if loco != nil {
			loco.StopMovement()
		}
		c.triggerCue(CueIdle)
	case StatePatrol:
		c.advancePatrol()
		c.patrolTimer = 0
	case StateChasing:
		if loco != nil {
			loco.SetFastMovement(true)
		}
		c.triggerCue(CueAlert)
	case StateAttacking:
		if loco != nil {
			loco.PrepareAttackWindup()
		}
	case StateReturning:
		if loco != nil {
			loco.SetFastMovement(false)
			loco.MoveTo(c.home)
		}
	case StateFleeing:
		if loco != nil {
			loco.SetFastMovement(true)
		}
		c.issueFlee()
	case StateDead:
		if loco != nil {
			loco.SetMovementEnabled(false)
		}
		c.triggerCue(CueDie)
		if c.deps.Audio != nil {
			c.deps.Audio.PlayAt(SoundDeath, c.position())
		}
	}
}

func (c *Controller) exitState(state State) {
	loco := c.deps.Locomotion
	if loco == nil {
		return
	}
	switch state {
	case StateAttacking:
		loco.ResumeAfterAttack()
	case StateChasing, StateFleeing:
		loco.SetFastMovement(false)
	}
}

// SetPatrolPoints installs a fixed waypoint loop. An empty list reverts the
// agent to random patrol around home.
func (c *Controller) SetPatrolPoints(points []Vec2) {
	c.patrolPoints = append([]Vec2(nil), points...)
	c.patrolIndex = -1
}

// SetPatrolEnabled toggles patrolling at runtime.
func (c *Controller) SetPatrolEnabled(enabled bool) {
	c.patrolEnabled = enabled
}

// OnReachedDestination is called by the host when a move-to completes. While
// chasing, arriving with the target gone (or long unseen) kicks off the
// search circuit around the last-known position.
func (c *Controller) OnReachedDestination() {
	if c == nil || c.state != StateChasing {
		return
	}
	if c.search != nil {
		c.search.arrive()
		return
	}
	if target := c.liveTarget(); target != nil && c.clock-c.perception.lastSeen <= searchStaleSight {
		return
	}
	c.startSearch()
}

// State returns the current behavior state.
func (c *Controller) State() State {
	if c == nil {
		return StateIdle
	}
	return c.state
}

// Target returns the currently tracked hostile, or nil.
func (c *Controller) Target() Target {
	if c == nil {
		return nil
	}
	return c.perception.target
}

// InCombat reports whether the agent is engaged.
func (c *Controller) InCombat() bool {
	return c != nil && c.inCombat
}

// HasCalledForHelp reports whether help was solicited this engagement.
func (c *Controller) HasCalledForHelp() bool {
	return c != nil && c.calledForHelp
}

// LastKnownTargetPosition returns the last position at which a target was
// directly perceived; ok is false when nothing was ever seen.
func (c *Controller) LastKnownTargetPosition() (Vec2, bool) {
	if c == nil || !c.perception.everSeen {
		return Vec2{}, false
	}
	return c.perception.lastKnown, true
}

// TimeSinceSeen returns seconds since the target was last directly perceived;
// ok is false when nothing was ever seen.
func (c *Controller) TimeSinceSeen() (float64, bool) {
	if c == nil || !c.perception.everSeen {
		return 0, false
	}
	return c.clock - c.perception.lastSeen, true
}

// DistanceFromHome returns the agent's distance from its spawn anchor.
func (c *Controller) DistanceFromHome() float64 {
	if c == nil {
		return 0
	}
	return Dist(c.position(), c.home)
}

// Home returns the spawn anchor position.
func (c *Controller) Home() Vec2 {
	if c == nil {
		return Vec2{}
	}
	return c.home
}

func (c *Controller) position() Vec2 {
	if c.deps.Locomotion == nil {
		return Vec2{}
	}
	return c.deps.Locomotion.Position()
}

func (c *Controller) isMoving() bool {
	return c.deps.Locomotion != nil && c.deps.Locomotion.IsMoving()
}

func (c *Controller) moveTo(point Vec2) {
	if c.deps.Locomotion != nil {
		c.deps.Locomotion.MoveTo(point)
	}
}

func (c *Controller) alive() bool {
	if c.deps.Stats == nil {
		return true
	}
	return c.deps.Stats.Alive()
}

func (c *Controller) healthFraction() float64 {
	if c.deps.Stats == nil {
		return 1
	}
	return c.deps.Stats.HealthFraction()
}

func (c *Controller) triggerCue(cue Cue) {
	if c.deps.Animation != nil {
		c.deps.Animation.Trigger(cue)
	}
}

// liveTarget returns the tracked target only while its reference is valid; a
// destroyed target counts as absent, not as an error.
func (c *Controller) liveTarget() Target {
	target := c.perception.target
	if target == nil || !target.Alive() {
		return nil
	}
	return target
}
