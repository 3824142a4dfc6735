package behavior

import (
	"math/rand"
)

// fakeLocomotion records every intent the controller issues and lets tests
// script the readback surface (moving flag, reachability).
type fakeLocomotion struct {
	pos    Vec2
	facing Vec2
	moving bool

	reachable func(Vec2) bool

	movedTo      []Vec2
	movedToward  []string
	facedToward  []Vec2
	stops        int
	windups      int
	resumes      int
	fastChanges  []bool
	moveEnabled  []bool
	lastMoveDest Vec2
}

func newFakeLocomotion(pos Vec2) *fakeLocomotion {
	return &fakeLocomotion{pos: pos, facing: Vec2{X: 1}}
}

func (f *fakeLocomotion) Position() Vec2 { return f.pos }
func (f *fakeLocomotion) Facing() Vec2   { return f.facing }
func (f *fakeLocomotion) StopMovement()  { f.stops++; f.moving = false }
func (f *fakeLocomotion) MoveTo(point Vec2) {
	f.movedTo = append(f.movedTo, point)
	f.lastMoveDest = point
	f.moving = true
}
func (f *fakeLocomotion) MoveToward(target Target) {
	f.movedToward = append(f.movedToward, target.ID())
	f.moving = true
}
func (f *fakeLocomotion) FaceToward(point Vec2)     { f.facedToward = append(f.facedToward, point) }
func (f *fakeLocomotion) SetFastMovement(on bool)   { f.fastChanges = append(f.fastChanges, on) }
func (f *fakeLocomotion) PrepareAttackWindup()      { f.windups++ }
func (f *fakeLocomotion) ResumeAfterAttack()        { f.resumes++ }
func (f *fakeLocomotion) SetMovementEnabled(b bool) { f.moveEnabled = append(f.moveEnabled, b) }
func (f *fakeLocomotion) IsMoving() bool            { return f.moving }
func (f *fakeLocomotion) IsReachable(point Vec2) bool {
	if f.reachable == nil {
		return true
	}
	return f.reachable(point)
}

type fakeStats struct {
	health float64
	alive  bool
}

func (f *fakeStats) HealthFraction() float64 { return f.health }
func (f *fakeStats) Alive() bool             { return f.alive }

type fakeTarget struct {
	id     string
	pos    Vec2
	alive  bool
	damage []float64
}

func (f *fakeTarget) ID() string                 { return f.id }
func (f *fakeTarget) Position() Vec2             { return f.pos }
func (f *fakeTarget) Alive() bool                { return f.alive }
func (f *fakeTarget) ApplyDamage(amount float64) { f.damage = append(f.damage, amount) }

type fakeWorld struct {
	primary Target
	nearest Target
	allies  []Responder
	// blocked makes every line-of-sight query fail.
	blocked bool
}

func (f *fakeWorld) PrimaryHostile() Target { return f.primary }
func (f *fakeWorld) NearestHostile(at Vec2, radius float64) Target {
	if f.nearest == nil || !f.nearest.Alive() {
		return nil
	}
	if Dist(at, f.nearest.Position()) > radius {
		return nil
	}
	return f.nearest
}
func (f *fakeWorld) AlliesWithin(Vec2, float64) []Responder { return f.allies }
func (f *fakeWorld) LineOfSight(Vec2, Vec2) bool            { return !f.blocked }

type recordedTransition struct {
	from State
	to   State
}

type fakeEvents struct {
	transitions []recordedTransition
	damage      []float64
	crits       []bool
	helpCalls   []int
}

func (f *fakeEvents) StateChanged(from, to State) {
	f.transitions = append(f.transitions, recordedTransition{from: from, to: to})
}
func (f *fakeEvents) DamageDealt(amount float64, critical bool, at Vec2) {
	f.damage = append(f.damage, amount)
	f.crits = append(f.crits, critical)
}
func (f *fakeEvents) HelpRequested(allies int) { f.helpCalls = append(f.helpCalls, allies) }

type fakeAnimation struct {
	cues []Cue
}

func (f *fakeAnimation) Trigger(cue Cue) { f.cues = append(f.cues, cue) }

type fakeAudio struct {
	sounds []Sound
}

func (f *fakeAudio) PlayAt(sound Sound, at Vec2) { f.sounds = append(f.sounds, sound) }

// rig bundles a controller with its fakes.
type rig struct {
	ctrl   *Controller
	loco   *fakeLocomotion
	stats  *fakeStats
	world  *fakeWorld
	events *fakeEvents
	anim   *fakeAnimation
	audio  *fakeAudio
}

func testConfig() Config {
	return Config{
		DetectionRange:      10,
		FieldOfView:         180,
		AttackRange:         2,
		AttackCooldown:      2,
		CombatTimeout:       5,
		ReturnDistance:      20,
		FleeHealthThreshold: 0.2,
		HelpCallRange:       10,
		PatrolWaitTime:      3,
		PatrolRange:         8,
		BaseDamage:          10,
		CriticalChance:      0,
		CriticalDamage:      200,
	}
}

func newRig(cfg Config) *rig {
	loco := newFakeLocomotion(Vec2{X: 50, Y: 50})
	stats := &fakeStats{health: 1, alive: true}
	world := &fakeWorld{}
	events := &fakeEvents{}
	anim := &fakeAnimation{}
	audio := &fakeAudio{}
	ctrl := NewController(cfg, Collaborators{
		Locomotion: loco,
		Stats:      stats,
		World:      world,
		Events:     events,
		Animation:  anim,
		Audio:      audio,
	}, rand.New(rand.NewSource(1)))
	return &rig{ctrl: ctrl, loco: loco, stats: stats, world: world, events: events, anim: anim, audio: audio}
}

// step advances the controller in fixed increments until total time elapses.
func (r *rig) step(total, dt float64) {
	for elapsed := 0.0; elapsed < total; elapsed += dt {
		r.ctrl.Advance(dt)
	}
}
