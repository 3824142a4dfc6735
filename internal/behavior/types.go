// Package behavior implements the per-agent decision core: target sensing,
// the seven-state behavior machine, combat policy, movement intent planning
// and the cooperative help broadcast. The package owns no world state of its
// own; everything it touches goes through the collaborator contracts below,
// which the host injects at construction.
package behavior

import worldpkg "emberwatch/server/internal/world"

// Vec2 aliases the shared world vector type.
type Vec2 = worldpkg.Vec2

// Dist returns the Euclidean distance between two points.
func Dist(a, b Vec2) float64 {
	return worldpkg.Dist(a, b)
}

// State enumerates the behavior machine states. Exactly one is active per
// agent; StateDead is terminal.
type State uint8

const (
	StateIdle State = iota
	StatePatrol
	StateChasing
	StateAttacking
	StateReturning
	StateFleeing
	StateDead
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StatePatrol:    "patrol",
	StateChasing:   "chasing",
	StateAttacking: "attacking",
	StateReturning: "returning",
	StateFleeing:   "fleeing",
	StateDead:      "dead",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Cue identifies an animation trigger. The closed enum replaces string-keyed
// animator triggers so hosts cannot misspell one.
type Cue uint8

const (
	CueIdle Cue = iota
	CueAlert
	CueAttack
	CueDie
)

var cueNames = [...]string{
	CueIdle:   "idle",
	CueAlert:  "alert",
	CueAttack: "attack",
	CueDie:    "die",
}

func (c Cue) String() string {
	if int(c) < len(cueNames) {
		return cueNames[c]
	}
	return "unknown"
}

// Sound identifies an audio clip the core can request.
type Sound uint8

const (
	SoundAttack Sound = iota
	SoundDeath
)

var soundNames = [...]string{
	SoundAttack: "attack",
	SoundDeath:  "death",
}

func (s Sound) String() string {
	if int(s) < len(soundNames) {
		return soundNames[s]
	}
	return "unknown"
}

// Target is a perceivable hostile entity. Implementations are owned by the
// host; the core only reads position/liveness and applies damage through it.
type Target interface {
	ID() string
	Position() Vec2
	Alive() bool
	ApplyDamage(amount float64)
}

// Locomotion is the movement collaborator. The agent's transform belongs to
// it; the core reads position and facing and issues intents.
type Locomotion interface {
	Position() Vec2
	Facing() Vec2
	StopMovement()
	MoveTo(point Vec2)
	MoveToward(target Target)
	FaceToward(point Vec2)
	SetFastMovement(enabled bool)
	PrepareAttackWindup()
	ResumeAfterAttack()
	SetMovementEnabled(enabled bool)
	IsMoving() bool
	IsReachable(point Vec2) bool
}

// Stats exposes the agent's own vitals.
type Stats interface {
	// HealthFraction is in [0,1].
	HealthFraction() float64
	Alive() bool
}

// Animation receives fire-and-forget cue triggers.
type Animation interface {
	Trigger(cue Cue)
}

// Audio plays positional one-shot sounds.
type Audio interface {
	PlayAt(sound Sound, at Vec2)
}

// Responder is the surface one agent exposes to allies recruiting it into
// combat. Controller implements it; recruitment always goes through the
// receiving agent's own entry point, never through its fields.
type Responder interface {
	InCombat() bool
	RespondToHelpCall(target Target)
}

// World provides registry and spatial queries. Queries are synchronous and
// side-effect free.
type World interface {
	// PrimaryHostile returns the current primary hostile entity, or nil.
	PrimaryHostile() Target
	// NearestHostile returns the closest hostile within radius of at, or nil.
	NearestHostile(at Vec2, radius float64) Target
	// AlliesWithin returns allied agents within radius of at, excluding the
	// querying agent itself.
	AlliesWithin(at Vec2, radius float64) []Responder
	// LineOfSight reports whether the segment between the points is clear of
	// sight-blocking geometry.
	LineOfSight(from, to Vec2) bool
}

// Events receives behavior telemetry. Consumed externally; all methods are
// fire-and-forget.
type Events interface {
	StateChanged(from, to State)
	DamageDealt(amount float64, critical bool, at Vec2)
	HelpRequested(allies int)
}

// Collaborators bundles the injected services. Any field may be nil; the
// controller degrades the dependent operations to no-ops.
type Collaborators struct {
	Locomotion Locomotion
	Stats      Stats
	Animation  Animation
	Audio      Audio
	World      World
	Events     Events
}

// Config carries the tunable parameters supplied at construction. Distances
// are world units, durations seconds, percentages in [0,100].
type Config struct {
	DetectionRange float64
	// FieldOfView is the full cone angle in degrees, centered on facing.
	FieldOfView    float64
	AttackRange    float64
	AttackCooldown float64
	// CombatTimeout is how long the agent stays engaged without seeing the
	// target before giving up.
	CombatTimeout float64
	// ReturnDistance is the leash range from home.
	ReturnDistance float64

	FleeEnabled bool
	// FleeHealthThreshold is a health fraction in [0,1].
	FleeHealthThreshold float64

	HelpEnabled   bool
	HelpCallRange float64

	PatrolEnabled  bool
	PatrolWaitTime float64
	PatrolRange    float64
	// IdleAfterReturn selects Idle instead of Patrol once the agent is back
	// at its post.
	IdleAfterReturn bool

	BaseDamage float64
	// CriticalChance is a percentage in [0,100).
	CriticalChance float64
	// CriticalDamage is the crit multiplier as a percentage, e.g. 200 doubles.
	CriticalDamage float64
}

// PerceptionRecord is the sensor's memory. Last-known data persists after the
// target is lost so the agent can investigate a stale position.
type PerceptionRecord struct {
	target    Target
	lastKnown Vec2
	lastSeen  float64
	everSeen  bool
}
