package behavior

import (
	"math/rand"
	"testing"
)

func newAlly(pos Vec2) (*Controller, *fakeLocomotion) {
	loco := newFakeLocomotion(pos)
	ctrl := NewController(testConfig(), Collaborators{
		Locomotion: loco,
		Stats:      &fakeStats{health: 1, alive: true},
	}, rand.New(rand.NewSource(2)))
	return ctrl, loco
}

func TestCallForHelpRecruitsOnlyIdleAllies(t *testing.T) {
	cfg := testConfig()
	cfg.HelpEnabled = true
	r := newRig(cfg)

	busyA, _ := newAlly(Vec2{X: 52, Y: 50})
	busyB, _ := newAlly(Vec2{X: 48, Y: 50})
	idle, _ := newAlly(Vec2{X: 50, Y: 47})
	busyA.SetTarget(&fakeTarget{id: "other", pos: Vec2{X: 40, Y: 40}, alive: true})
	busyB.SetTarget(&fakeTarget{id: "other", pos: Vec2{X: 40, Y: 40}, alive: true})
	r.world.allies = []Responder{busyA, busyB, idle}

	target := &fakeTarget{id: "p", pos: Vec2{X: 55, Y: 50}, alive: true}
	busyTargetBefore := busyA.Target()
	r.ctrl.SetTarget(target)

	if idle.Target() != target {
		t.Fatalf("idle ally must adopt the shared target")
	}
	if got := idle.State(); got != StateChasing {
		t.Fatalf("recruited ally must enter chasing, got %v", got)
	}
	if busyA.Target() != busyTargetBefore {
		t.Fatalf("busy ally must keep its own target")
	}
	if len(r.events.helpCalls) != 1 || r.events.helpCalls[0] != 1 {
		t.Fatalf("expected exactly one recruit reported, got %v", r.events.helpCalls)
	}
}

func TestHelpCalledOncePerEngagement(t *testing.T) {
	cfg := testConfig()
	cfg.HelpEnabled = true
	r := newRig(cfg)
	target := &fakeTarget{id: "p", pos: Vec2{X: 55, Y: 50}, alive: true}
	r.world.primary = target

	r.step(2, 0.1)
	if len(r.events.helpCalls) != 1 {
		t.Fatalf("help must be broadcast once per engagement, got %d", len(r.events.helpCalls))
	}
}

func TestRespondToHelpCallIgnoredWhileEngaged(t *testing.T) {
	r := newRig(testConfig())
	own := &fakeTarget{id: "own", pos: Vec2{X: 55, Y: 50}, alive: true}
	r.ctrl.SetTarget(own)

	r.ctrl.RespondToHelpCall(&fakeTarget{id: "other", pos: Vec2{X: 40, Y: 40}, alive: true})
	if r.ctrl.Target() != own {
		t.Fatalf("engaged agent must ignore help calls")
	}
}

func TestRespondToHelpCallRejectsInvalidTarget(t *testing.T) {
	r := newRig(testConfig())
	r.ctrl.RespondToHelpCall(nil)
	if r.ctrl.InCombat() {
		t.Fatalf("nil target must not engage")
	}
	r.ctrl.RespondToHelpCall(&fakeTarget{id: "dead", pos: Vec2{X: 40, Y: 40}, alive: false})
	if r.ctrl.InCombat() {
		t.Fatalf("dead target must not engage")
	}
}
