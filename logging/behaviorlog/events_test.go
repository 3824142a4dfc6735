package behaviorlog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"emberwatch/server/logging"
	"emberwatch/server/logging/behaviorlog"
)

func recorder(events *[]logging.Event) logging.Publisher {
	return logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		*events = append(*events, event)
	})
}

func TestStateChangedPayload(t *testing.T) {
	var events []logging.Event
	actor := logging.EntityRef{ID: "agent-1", Kind: logging.EntityKindAgent}

	behaviorlog.StateChanged(context.Background(), recorder(&events), 42, actor, "Idle", "Chasing")

	require.Len(t, events, 1)
	require.Equal(t, behaviorlog.EventStateChanged, events[0].Type)
	require.Equal(t, uint64(42), events[0].Tick)
	require.Equal(t, logging.SeverityDebug, events[0].Severity)
	payload, ok := events[0].Payload.(behaviorlog.StateChangedPayload)
	require.True(t, ok)
	require.Equal(t, "Idle", payload.From)
	require.Equal(t, "Chasing", payload.To)
}

func TestDamageCarriesTargetAndCritFlag(t *testing.T) {
	var events []logging.Event
	actor := logging.EntityRef{ID: "agent-1", Kind: logging.EntityKindAgent}
	target := logging.EntityRef{ID: "player-1", Kind: logging.EntityKindPlayer}

	behaviorlog.Damage(context.Background(), recorder(&events), 5, actor, target, 20, true)

	require.Len(t, events, 1)
	require.Equal(t, behaviorlog.EventDamage, events[0].Type)
	require.Equal(t, []logging.EntityRef{target}, events[0].Targets)
	payload, ok := events[0].Payload.(behaviorlog.DamagePayload)
	require.True(t, ok)
	require.Equal(t, 20.0, payload.Amount)
	require.True(t, payload.Critical)
}

func TestHelpersTolerateNilPublisher(t *testing.T) {
	actor := logging.EntityRef{ID: "agent-1", Kind: logging.EntityKindAgent}
	require.NotPanics(t, func() {
		behaviorlog.StateChanged(context.Background(), nil, 0, actor, "Idle", "Dead")
		behaviorlog.Damage(context.Background(), nil, 0, actor, actor, 1, false)
		behaviorlog.HelpCall(context.Background(), nil, 0, actor, 0)
		behaviorlog.Spawn(context.Background(), nil, 0, actor, "sentry", 0, 0)
		behaviorlog.Death(context.Background(), nil, 0, actor)
	})
}
