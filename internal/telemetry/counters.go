// Package telemetry tracks lightweight runtime counters for the simulation
// and transport layers. All methods are safe for concurrent use.
package telemetry

import (
	"sync/atomic"
	"time"
)

type Counters struct {
	ticks              atomic.Uint64
	tickDurationMicros atomic.Int64
	stateTransitions   atomic.Uint64
	damageDealt        atomic.Uint64
	criticalHits       atomic.Uint64
	helpCalls          atomic.Uint64
	deaths             atomic.Uint64
	bytesSent          atomic.Uint64
	snapshotsSent      atomic.Uint64
	lastBroadcastBytes atomic.Uint64
}

type Snapshot struct {
	Ticks              uint64 `json:"ticks"`
	TickDurationMicros int64  `json:"tickDurationMicros"`
	StateTransitions   uint64 `json:"stateTransitions"`
	DamageDealt        uint64 `json:"damageDealt"`
	CriticalHits       uint64 `json:"criticalHits"`
	HelpCalls          uint64 `json:"helpCalls"`
	Deaths             uint64 `json:"deaths"`
	BytesSent          uint64 `json:"bytesSent"`
	SnapshotsSent      uint64 `json:"snapshotsSent"`
	LastBroadcastBytes uint64 `json:"lastBroadcastBytes"`
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) RecordTick(duration time.Duration) {
	if c == nil {
		return
	}
	c.ticks.Add(1)
	micros := duration.Microseconds()
	if micros < 0 {
		micros = 0
	}
	c.tickDurationMicros.Store(micros)
}

func (c *Counters) RecordStateTransition() {
	if c == nil {
		return
	}
	c.stateTransitions.Add(1)
}

func (c *Counters) RecordDamage(amount float64, critical bool) {
	if c == nil {
		return
	}
	if amount < 0 {
		amount = 0
	}
	c.damageDealt.Add(uint64(amount))
	if critical {
		c.criticalHits.Add(1)
	}
}

func (c *Counters) RecordHelpCall() {
	if c == nil {
		return
	}
	c.helpCalls.Add(1)
}

func (c *Counters) RecordDeath() {
	if c == nil {
		return
	}
	c.deaths.Add(1)
}

func (c *Counters) RecordBroadcast(bytes int) {
	if c == nil {
		return
	}
	if bytes < 0 {
		bytes = 0
	}
	c.bytesSent.Add(uint64(bytes))
	c.snapshotsSent.Add(1)
	c.lastBroadcastBytes.Store(uint64(bytes))
}

func (c *Counters) Ticks() uint64 {
	if c == nil {
		return 0
	}
	return c.ticks.Load()
}

func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Ticks:              c.ticks.Load(),
		TickDurationMicros: c.tickDurationMicros.Load(),
		StateTransitions:   c.stateTransitions.Load(),
		DamageDealt:        c.damageDealt.Load(),
		CriticalHits:       c.criticalHits.Load(),
		HelpCalls:          c.helpCalls.Load(),
		Deaths:             c.deaths.Load(),
		BytesSent:          c.bytesSent.Load(),
		SnapshotsSent:      c.snapshotsSent.Load(),
		LastBroadcastBytes: c.lastBroadcastBytes.Load(),
	}
}
