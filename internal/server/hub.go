// Package server exposes the simulation over HTTP and websockets: clients
// join, stream world snapshots, and send move and strike intents back.
package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"emberwatch/server/internal/behavior"
	"emberwatch/server/internal/sim"
	"emberwatch/server/internal/telemetry"
)

// Hub owns the live subscriber set and fans world snapshots out to it.
type Hub struct {
	engine   *sim.Engine
	logger   *zap.Logger
	counters *telemetry.Counters

	mu          sync.Mutex
	subscribers map[string]*subscriber

	spawn behavior.Vec2
}

type subscriber struct {
	conn *websocket.Conn
	// mu serializes writes; reads stay on the connection's own goroutine.
	mu sync.Mutex
}

func (s *subscriber) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(messageType, data)
}

type HubConfig struct {
	Engine      *sim.Engine
	Logger      *zap.Logger
	Counters    *telemetry.Counters
	PlayerSpawn behavior.Vec2
}

func NewHub(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	counters := cfg.Counters
	if counters == nil {
		counters = telemetry.NewCounters()
	}
	return &Hub{
		engine:      cfg.Engine,
		logger:      logger,
		counters:    counters,
		subscribers: make(map[string]*subscriber),
		spawn:       cfg.PlayerSpawn,
	}
}

// Join spawns a player and returns its identity with the current snapshot.
func (h *Hub) Join() (joinResponse, error) {
	id, err := h.engine.SpawnPlayer(h.spawn)
	if err != nil {
		return joinResponse{}, err
	}
	h.logger.Info("player joined", zap.String("player", id))
	return joinResponse{ID: id, Snapshot: h.engine.Snapshot()}, nil
}

// Subscribe attaches a websocket connection to a joined player. An existing
// connection for the same player is displaced.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) *subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.subscribers[playerID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	h.subscribers[playerID] = sub
	return sub
}

// Disconnect tears down sub and, when it still owns the registration for
// playerID, removes the player from the world. A subscriber displaced by a
// reconnect no longer owns the registration; its teardown must leave the
// replacement and the player untouched.
func (h *Hub) Disconnect(playerID string, sub *subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	owner := h.subscribers[playerID] == sub
	if owner {
		delete(h.subscribers, playerID)
	}
	h.mu.Unlock()

	sub.conn.Close()
	if !owner {
		return
	}
	h.engine.RemovePlayer(playerID)
	h.logger.Info("player left", zap.String("player", playerID))
}

// BroadcastLoop pushes a snapshot to every subscriber at the given interval
// until ctx is cancelled.
func (h *Hub) BroadcastLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.broadcast()
		}
	}
}

func (h *Hub) broadcast() {
	data, err := json.Marshal(stateMessage{Type: "state", Snapshot: h.engine.Snapshot()})
	if err != nil {
		h.logger.Error("marshal snapshot", zap.Error(err))
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.write(websocket.TextMessage, data); err != nil {
			h.logger.Warn("snapshot write failed, dropping subscriber",
				zap.String("player", id), zap.Error(err))
			h.Disconnect(id, sub)
		}
	}
	if len(subs) > 0 {
		h.counters.RecordBroadcast(len(data) * len(subs))
	}
}

// SubscriberCount reports the number of attached connections.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
