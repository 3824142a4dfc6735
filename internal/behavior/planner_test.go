package behavior

import (
	"math"
	"testing"
)

func TestPatrolCyclesFixedWaypoints(t *testing.T) {
	cfg := testConfig()
	cfg.PatrolEnabled = true
	r := newRig(cfg)
	points := []Vec2{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 60, Y: 60}}
	r.ctrl.SetPatrolPoints(points)

	for cycle := 0; cycle < 2; cycle++ {
		for _, want := range points {
			r.ctrl.advancePatrol()
			if got := r.loco.lastMoveDest; got != want {
				t.Fatalf("cycle %d: expected waypoint %v, got %v", cycle, want, got)
			}
		}
	}
}

func TestPatrolRandomSamplesNearHome(t *testing.T) {
	r := newRig(testConfig())
	for i := 0; i < 20; i++ {
		r.ctrl.advancePatrol()
		dest := r.loco.lastMoveDest
		if d := Dist(dest, r.ctrl.Home()); d > r.ctrl.cfg.PatrolRange+1e-9 {
			t.Fatalf("random patrol point %v is %f from home, beyond range %f", dest, d, r.ctrl.cfg.PatrolRange)
		}
	}
}

func TestPatrolFallsBackToHomeWhenUnreachable(t *testing.T) {
	r := newRig(testConfig())
	r.loco.reachable = func(Vec2) bool { return false }
	r.ctrl.advancePatrol()
	if got := r.loco.lastMoveDest; got != r.ctrl.Home() {
		t.Fatalf("expected fallback to home, got %v", got)
	}
}

func TestFleeProjectsAwayFromTarget(t *testing.T) {
	r := newRig(testConfig())
	target := &fakeTarget{id: "p", pos: Vec2{X: 55, Y: 50}, alive: true}
	r.ctrl.SetTarget(target)

	r.ctrl.issueFlee()
	want := Vec2{X: 40, Y: 50} // ten units along target->self
	got := r.loco.lastMoveDest
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
		t.Fatalf("expected flee destination %v, got %v", want, got)
	}
}

func TestFleeTriesRotatedFallbacks(t *testing.T) {
	r := newRig(testConfig())
	target := &fakeTarget{id: "p", pos: Vec2{X: 55, Y: 50}, alive: true}
	r.ctrl.SetTarget(target)

	// Reject the primary projection and the first two rotations; only the
	// candidate five units toward +Y is standable.
	r.loco.reachable = func(p Vec2) bool {
		return math.Abs(p.X-50) < 1 && p.Y > 50
	}
	r.ctrl.issueFlee()
	want := Vec2{X: 50, Y: 55}
	got := r.loco.lastMoveDest
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
		t.Fatalf("expected rotated flee destination %v, got %v", want, got)
	}
}

func TestFleeIssuesNothingWhenCornered(t *testing.T) {
	r := newRig(testConfig())
	target := &fakeTarget{id: "p", pos: Vec2{X: 55, Y: 50}, alive: true}
	r.ctrl.SetTarget(target)
	moves := len(r.loco.movedTo)

	r.loco.reachable = func(Vec2) bool { return false }
	r.ctrl.issueFlee()
	if len(r.loco.movedTo) != moves {
		t.Fatalf("cornered flee must not issue a move command")
	}
}
