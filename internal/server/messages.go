package server

import "emberwatch/server/internal/sim"

// clientMessage is the envelope for everything a client sends over the
// websocket. Type selects which fields matter.
type clientMessage struct {
	Type string  `json:"type"`
	DX   float64 `json:"dx,omitempty"`
	DY   float64 `json:"dy,omitempty"`
}

const (
	messageMove   = "move"
	messageStrike = "strike"
)

type stateMessage struct {
	Type     string       `json:"type"`
	Snapshot sim.Snapshot `json:"snapshot"`
}

type joinResponse struct {
	ID       string       `json:"id"`
	Snapshot sim.Snapshot `json:"snapshot"`
}
