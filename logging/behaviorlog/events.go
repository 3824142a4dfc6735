// Package behaviorlog defines the event types emitted by the agent decision
// layer and helpers for publishing them.
package behaviorlog

import (
	"context"

	"emberwatch/server/logging"
)

const (
	// EventStateChanged is emitted every time an agent's state machine
	// transitions.
	EventStateChanged logging.EventType = "behavior.state_changed"
	// EventDamage is emitted when an agent's attack lands.
	EventDamage logging.EventType = "combat.damage"
	// EventHelpCall is emitted when an agent broadcasts a help request.
	EventHelpCall logging.EventType = "behavior.help_call"
	// EventSpawn is emitted when an actor enters the world.
	EventSpawn logging.EventType = "lifecycle.spawn"
	// EventDeath is emitted when an actor dies.
	EventDeath logging.EventType = "lifecycle.death"
)

type StateChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func StateChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, from, to string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStateChanged,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryBehavior,
		Payload:  StateChangedPayload{From: from, To: to},
	})
}

type DamagePayload struct {
	Amount   float64 `json:"amount"`
	Critical bool    `json:"critical"`
}

func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, amount float64, critical bool) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  DamagePayload{Amount: amount, Critical: critical},
	})
}

type HelpCallPayload struct {
	Responders int `json:"responders"`
}

func HelpCall(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, responders int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventHelpCall,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehavior,
		Payload:  HelpCallPayload{Responders: responders},
	})
}

type SpawnPayload struct {
	Archetype string  `json:"archetype,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

func Spawn(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, archetype string, x, y float64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpawn,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  SpawnPayload{Archetype: archetype, X: x, Y: y},
	})
}

func Death(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDeath,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}
