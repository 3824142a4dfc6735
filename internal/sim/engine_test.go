package sim

import (
	"testing"

	"emberwatch/server/internal/behavior"
	"emberwatch/server/internal/world"
)

func newTestEngine(t *testing.T, obstacles []world.Obstacle) *Engine {
	t.Helper()
	return NewEngine(Config{
		Map:  world.NewMap(100, 100, obstacles),
		Seed: 1,
	})
}

func (e *Engine) agentByID(t *testing.T, id string) *Agent {
	t.Helper()
	agent, ok := e.agents[id]
	if !ok {
		t.Fatalf("agent %q not found", id)
	}
	return agent
}

func TestSpawnAgentUnknownArchetype(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.SpawnAgent("no-such-thing", behavior.Vec2{X: 50, Y: 50}, nil); err == nil {
		t.Fatalf("expected error for unknown archetype")
	}
}

func TestSpawnRejectsBlockedPositions(t *testing.T) {
	wall := world.Obstacle{ID: "wall", X: 40, Y: 40, Width: 10, Height: 10}
	e := newTestEngine(t, []world.Obstacle{wall})

	if _, err := e.SpawnAgent("sentry", behavior.Vec2{X: 45, Y: 45}, nil); err == nil {
		t.Fatalf("expected error for home inside obstacle")
	}
	if _, err := e.SpawnPlayer(behavior.Vec2{X: 45, Y: 45}); err == nil {
		t.Fatalf("expected error for player spawn inside obstacle")
	}
}

func TestApplyMoveIntentMovesPlayer(t *testing.T) {
	e := newTestEngine(t, nil)
	id, err := e.SpawnPlayer(behavior.Vec2{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("spawn player: %v", err)
	}

	// Intent vectors are normalized before use.
	if err := e.ApplyMoveIntent(id, behavior.Vec2{X: 10, Y: 0}); err != nil {
		t.Fatalf("apply intent: %v", err)
	}
	e.Step(0.5)

	snap := e.Snapshot()
	if len(snap.Players) != 1 {
		t.Fatalf("players in snapshot = %d, want 1", len(snap.Players))
	}
	if got := snap.Players[0].X; got != 52 {
		t.Fatalf("player x = %v, want 52 (speed 4 for 0.5s)", got)
	}

	if err := e.ApplyMoveIntent("missing", behavior.Vec2{X: 1, Y: 0}); err == nil {
		t.Fatalf("expected error for unknown player")
	}
}

func TestStrikeHitsClosestAgentAndProvokesIt(t *testing.T) {
	e := newTestEngine(t, nil)
	nearID, err := e.SpawnAgent("sentry", behavior.Vec2{X: 51, Y: 50}, nil)
	if err != nil {
		t.Fatalf("spawn agent: %v", err)
	}
	farID, err := e.SpawnAgent("sentry", behavior.Vec2{X: 10, Y: 10}, nil)
	if err != nil {
		t.Fatalf("spawn agent: %v", err)
	}
	playerID, err := e.SpawnPlayer(behavior.Vec2{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("spawn player: %v", err)
	}

	if err := e.Strike(playerID); err != nil {
		t.Fatalf("strike: %v", err)
	}

	near := e.agentByID(t, nearID)
	far := e.agentByID(t, farID)
	if got := near.health.Current(); got != 85 {
		t.Fatalf("near agent health = %v, want 85", got)
	}
	if got := far.health.Current(); got != 100 {
		t.Fatalf("far agent health = %v, want 100", got)
	}
	if !near.ctrl.InCombat() {
		t.Fatalf("struck agent did not engage its attacker")
	}
	if target := near.ctrl.Target(); target == nil || target.ID() != playerID {
		t.Fatalf("struck agent target = %v, want the striking player", target)
	}
}

func TestStepDrivesDetectionChaseAndKill(t *testing.T) {
	e := newTestEngine(t, nil)
	agentID, err := e.SpawnAgent("sentry", behavior.Vec2{X: 50, Y: 50}, nil)
	if err != nil {
		t.Fatalf("spawn agent: %v", err)
	}
	playerID, err := e.SpawnPlayer(behavior.Vec2{X: 55, Y: 50})
	if err != nil {
		t.Fatalf("spawn player: %v", err)
	}

	ctrl := e.agentByID(t, agentID).ctrl
	const dt = 1.0 / 15

	e.Step(dt)
	if !ctrl.InCombat() {
		t.Fatalf("agent did not detect the player in front of it")
	}
	if got := ctrl.State(); got != behavior.StateChasing {
		t.Fatalf("state after detection = %v, want chasing", got)
	}

	playerDead := false
	for i := 0; i < 15*120; i++ {
		e.Step(dt)
		snap := e.Snapshot()
		if snap.Players[0].ID == playerID && !snap.Players[0].Alive {
			playerDead = true
			break
		}
	}
	if !playerDead {
		t.Fatalf("agent never killed a stationary player")
	}

	// With the target gone the combat timeout unwinds the engagement and the
	// agent settles back at its post.
	settled := false
	for i := 0; i < 15*60; i++ {
		e.Step(dt)
		state := ctrl.State()
		if state == behavior.StateIdle || state == behavior.StatePatrol {
			settled = true
			break
		}
	}
	if !settled {
		t.Fatalf("agent never disengaged after the kill, state = %v", ctrl.State())
	}
	if ctrl.InCombat() {
		t.Fatalf("agent still flagged in combat after settling")
	}

	stats := e.TelemetrySnapshot()
	if stats.DamageDealt == 0 {
		t.Fatalf("telemetry recorded no damage")
	}
	if stats.Deaths == 0 {
		t.Fatalf("telemetry recorded no deaths")
	}
	if stats.StateTransitions == 0 {
		t.Fatalf("telemetry recorded no state transitions")
	}
}

func TestHelpBroadcastRecruitsNearbyIdleAgents(t *testing.T) {
	e := newTestEngine(t, nil)
	callerID, err := e.SpawnAgent("sentry", behavior.Vec2{X: 50, Y: 50}, nil)
	if err != nil {
		t.Fatalf("spawn agent: %v", err)
	}
	// Ally behind the caller, outside its own detection cone.
	allyID, err := e.SpawnAgent("sentry", behavior.Vec2{X: 44, Y: 50}, nil)
	if err != nil {
		t.Fatalf("spawn agent: %v", err)
	}
	if _, err := e.SpawnPlayer(behavior.Vec2{X: 55, Y: 50}); err != nil {
		t.Fatalf("spawn player: %v", err)
	}

	e.Step(1.0 / 15)

	caller := e.agentByID(t, callerID)
	ally := e.agentByID(t, allyID)
	if !caller.ctrl.InCombat() {
		t.Fatalf("caller did not engage")
	}
	if !caller.ctrl.HasCalledForHelp() {
		t.Fatalf("caller did not broadcast for help")
	}
	if !ally.ctrl.InCombat() {
		t.Fatalf("ally within help range was not recruited")
	}
}

func TestRemovePlayerDropsItFromQueries(t *testing.T) {
	e := newTestEngine(t, nil)
	id, err := e.SpawnPlayer(behavior.Vec2{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("spawn player: %v", err)
	}
	e.RemovePlayer(id)

	snap := e.Snapshot()
	if len(snap.Players) != 0 {
		t.Fatalf("players after removal = %d, want 0", len(snap.Players))
	}
	if target := e.nearestPlayer(behavior.Vec2{X: 50, Y: 50}, -1); target != nil {
		t.Fatalf("removed player still visible to queries")
	}
	// Removing twice is a no-op.
	e.RemovePlayer(id)
}

func TestRemovePlayerDisengagesEngagedAgents(t *testing.T) {
	e := newTestEngine(t, nil)
	agentID, err := e.SpawnAgent("sentry", behavior.Vec2{X: 50, Y: 50}, nil)
	if err != nil {
		t.Fatalf("spawn agent: %v", err)
	}
	playerID, err := e.SpawnPlayer(behavior.Vec2{X: 55, Y: 50})
	if err != nil {
		t.Fatalf("spawn player: %v", err)
	}

	ctrl := e.agentByID(t, agentID).ctrl
	const dt = 1.0 / 15

	e.Step(dt)
	if !ctrl.InCombat() {
		t.Fatalf("agent did not engage the player")
	}
	target := ctrl.Target()
	if target == nil {
		t.Fatalf("engaged agent has no target")
	}

	e.RemovePlayer(playerID)
	if target.Alive() {
		t.Fatalf("removed player must read as dead to agents still holding it")
	}

	disengaged := false
	for i := 0; i < 15*15; i++ {
		e.Step(dt)
		if !ctrl.InCombat() {
			disengaged = true
			break
		}
	}
	if !disengaged {
		t.Fatalf("agent never disengaged from the removed player, state = %v", ctrl.State())
	}

	stats := e.TelemetrySnapshot()
	if stats.DamageDealt != 0 {
		t.Fatalf("agent dealt %d damage to a removed player", stats.DamageDealt)
	}
	if stats.Deaths != 0 {
		t.Fatalf("leaving the world recorded %d deaths, want 0", stats.Deaths)
	}
}

func TestDamageTelemetryTracksCriticalHits(t *testing.T) {
	e := newTestEngine(t, nil)
	agentID, err := e.SpawnAgent("sentry", behavior.Vec2{X: 50, Y: 50}, nil)
	if err != nil {
		t.Fatalf("spawn agent: %v", err)
	}

	bridge := &eventsBridge{engine: e, agent: e.agentByID(t, agentID)}
	bridge.DamageDealt(20, true, behavior.Vec2{X: 55, Y: 50})
	bridge.DamageDealt(10, false, behavior.Vec2{X: 55, Y: 50})

	stats := e.TelemetrySnapshot()
	if stats.DamageDealt != 30 {
		t.Fatalf("damage dealt = %d, want 30", stats.DamageDealt)
	}
	if stats.CriticalHits != 1 {
		t.Fatalf("critical hits = %d, want 1", stats.CriticalHits)
	}
}

func TestSnapshotCarriesAgentState(t *testing.T) {
	wall := world.Obstacle{ID: "wall", X: 10, Y: 10, Width: 4, Height: 4}
	e := newTestEngine(t, []world.Obstacle{wall})
	agentID, err := e.SpawnAgent("sentry", behavior.Vec2{X: 50, Y: 50}, nil)
	if err != nil {
		t.Fatalf("spawn agent: %v", err)
	}

	snap := e.Snapshot()
	if len(snap.Agents) != 1 {
		t.Fatalf("agents in snapshot = %d, want 1", len(snap.Agents))
	}
	view := snap.Agents[0]
	if view.ID != agentID || view.Archetype != "sentry" {
		t.Fatalf("agent view identity wrong: %+v", view)
	}
	if view.State != "idle" {
		t.Fatalf("agent state = %q, want idle", view.State)
	}
	if view.Health != view.MaxHealth {
		t.Fatalf("fresh agent not at full health: %+v", view)
	}
	if len(snap.Obstacles) != 1 {
		t.Fatalf("obstacles in snapshot = %d, want 1", len(snap.Obstacles))
	}
}
