package sim

import (
	"context"

	"emberwatch/server/internal/behavior"
	"emberwatch/server/logging"
	"emberwatch/server/logging/behaviorlog"
)

// worldAdapter exposes engine registry and spatial queries to one agent's
// behavior controller. Queries run under the engine tick lock, so no extra
// synchronization is needed.
type worldAdapter struct {
	engine *Engine
	self   *Agent
}

func (w *worldAdapter) PrimaryHostile() behavior.Target {
	return w.engine.nearestPlayer(w.self.Position(), -1)
}

func (w *worldAdapter) NearestHostile(at behavior.Vec2, radius float64) behavior.Target {
	return w.engine.nearestPlayer(at, radius)
}

func (w *worldAdapter) AlliesWithin(at behavior.Vec2, radius float64) []behavior.Responder {
	var allies []behavior.Responder
	for _, agent := range w.engine.agents {
		if agent == w.self {
			continue
		}
		if behavior.Dist(at, agent.Position()) <= radius {
			allies = append(allies, agent.ctrl)
		}
	}
	return allies
}

func (w *worldAdapter) LineOfSight(from, to behavior.Vec2) bool {
	return w.engine.worldMap.LineOfSight(from, to)
}

var _ behavior.World = (*worldAdapter)(nil)

// eventsBridge forwards behavior telemetry into the event log and the
// counter block.
type eventsBridge struct {
	engine *Engine
	agent  *Agent
}

func (b *eventsBridge) actorRef() logging.EntityRef {
	return logging.EntityRef{ID: b.agent.id, Kind: logging.EntityKindAgent}
}

func (b *eventsBridge) StateChanged(from, to behavior.State) {
	b.engine.counters.RecordStateTransition()
	behaviorlog.StateChanged(context.Background(), b.engine.publisher, b.engine.tick, b.actorRef(), from.String(), to.String())
}

func (b *eventsBridge) DamageDealt(amount float64, critical bool, at behavior.Vec2) {
	b.engine.counters.RecordDamage(amount, critical)
	target := logging.EntityRef{Kind: logging.EntityKindPlayer}
	if t := b.agent.ctrl.Target(); t != nil {
		target.ID = t.ID()
	}
	behaviorlog.Damage(context.Background(), b.engine.publisher, b.engine.tick, b.actorRef(), target, amount, critical)
}

func (b *eventsBridge) HelpRequested(allies int) {
	b.engine.counters.RecordHelpCall()
	behaviorlog.HelpCall(context.Background(), b.engine.publisher, b.engine.tick, b.actorRef(), allies)
}

var _ behavior.Events = (*eventsBridge)(nil)

// animBridge records animation cues as debug events so headless runs can
// still observe them.
type animBridge struct {
	engine *Engine
	agent  *Agent
}

func (b *animBridge) Trigger(cue behavior.Cue) {
	if b.engine.publisher == nil {
		return
	}
	b.engine.publisher.Publish(context.Background(), logging.Event{
		Type:     "behavior.animation_cue",
		Tick:     b.engine.tick,
		Actor:    logging.EntityRef{ID: b.agent.id, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryBehavior,
		Payload:  map[string]string{"cue": cue.String()},
	})
}

var _ behavior.Animation = (*animBridge)(nil)

type audioBridge struct {
	engine *Engine
	agent  *Agent
}

func (b *audioBridge) PlayAt(sound behavior.Sound, at behavior.Vec2) {
	if b.engine.publisher == nil {
		return
	}
	b.engine.publisher.Publish(context.Background(), logging.Event{
		Type:     "behavior.sound",
		Tick:     b.engine.tick,
		Actor:    logging.EntityRef{ID: b.agent.id, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryBehavior,
		Payload:  map[string]any{"sound": sound.String(), "x": at.X, "y": at.Y},
	})
}

var _ behavior.Audio = (*audioBridge)(nil)
