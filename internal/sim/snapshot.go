package sim

import (
	"emberwatch/server/internal/telemetry"
	"emberwatch/server/internal/world"
)

// Snapshot is the wire-ready view of the world broadcast to clients.
type Snapshot struct {
	Tick      uint64           `json:"tick"`
	Players   []PlayerView     `json:"players"`
	Agents    []AgentView      `json:"agents"`
	Obstacles []world.Obstacle `json:"obstacles,omitempty"`
}

type PlayerView struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	Alive  bool    `json:"alive"`
}

type AgentView struct {
	ID            string  `json:"id"`
	Archetype     string  `json:"archetype"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	FacingX       float64 `json:"facingX"`
	FacingY       float64 `json:"facingY"`
	State         string  `json:"state"`
	Health        float64 `json:"health"`
	MaxHealth     float64 `json:"maxHealth"`
	InCombat      bool    `json:"inCombat"`
	CalledForHelp bool    `json:"calledForHelp"`
	TargetID      string  `json:"targetId,omitempty"`
}

// Snapshot captures the current world state. Obstacles are included so a
// client can render the map without a separate fetch.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Tick:      e.tick,
		Players:   make([]PlayerView, 0, len(e.playerOrder)),
		Agents:    make([]AgentView, 0, len(e.agentOrder)),
		Obstacles: e.worldMap.Obstacles(),
	}
	for _, id := range e.playerOrder {
		p := e.players[id]
		snap.Players = append(snap.Players, PlayerView{
			ID:     p.id,
			X:      p.pos.X,
			Y:      p.pos.Y,
			Health: p.health.Current(),
			Alive:  p.Alive(),
		})
	}
	for _, id := range e.agentOrder {
		a := e.agents[id]
		pos := a.mover.Position()
		facing := a.mover.Facing()
		view := AgentView{
			ID:            a.id,
			Archetype:     a.archetype,
			X:             pos.X,
			Y:             pos.Y,
			FacingX:       facing.X,
			FacingY:       facing.Y,
			State:         a.ctrl.State().String(),
			Health:        a.health.Current(),
			MaxHealth:     a.health.Max(),
			InCombat:      a.ctrl.InCombat(),
			CalledForHelp: a.ctrl.HasCalledForHelp(),
		}
		if target := a.ctrl.Target(); target != nil {
			view.TargetID = target.ID()
		}
		snap.Agents = append(snap.Agents, view)
	}
	return snap
}

// TelemetrySnapshot returns the current counter values.
func (e *Engine) TelemetrySnapshot() telemetry.Snapshot {
	return e.counters.Snapshot()
}
