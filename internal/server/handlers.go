package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"emberwatch/server/internal/behavior"
	"emberwatch/server/logging"
)

type HandlerConfig struct {
	// RouterStats, when set, is included in the diagnostics payload.
	RouterStats func() logging.RouterStats
	TickRate    int
}

// NewHandler builds the HTTP surface: health, diagnostics, join, and the
// websocket endpoint.
func NewHandler(hub *Hub, cfg HandlerConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		payload := struct {
			Status      string `json:"status"`
			ServerTime  int64  `json:"serverTime"`
			Tick        uint64 `json:"tick"`
			TickRate    int    `json:"tickRate"`
			Subscribers int    `json:"subscribers"`
			Telemetry   any    `json:"telemetry"`
			Logging     any    `json:"logging,omitempty"`
		}{
			Status:      "ok",
			ServerTime:  time.Now().UnixMilli(),
			Tick:        hub.engine.Tick(),
			TickRate:    cfg.TickRate,
			Subscribers: hub.SubscriberCount(),
			Telemetry:   hub.engine.TelemetrySnapshot(),
		}
		if cfg.RouterStats != nil {
			payload.Logging = cfg.RouterStats()
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		join, err := hub.Join()
		if err != nil {
			httpError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, join)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("id")
		if playerID == "" {
			httpError(w, "missing id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn("websocket upgrade failed",
				zap.String("player", playerID), zap.Error(err))
			return
		}

		sub := hub.Subscribe(playerID, conn)
		defer hub.Disconnect(playerID, sub)

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg clientMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				hub.logger.Debug("discarding malformed message",
					zap.String("player", playerID), zap.Error(err))
				continue
			}
			switch msg.Type {
			case messageMove:
				if err := hub.engine.ApplyMoveIntent(playerID, behavior.Vec2{X: msg.DX, Y: msg.DY}); err != nil {
					return
				}
			case messageStrike:
				if err := hub.engine.Strike(playerID); err != nil {
					hub.logger.Debug("strike rejected",
						zap.String("player", playerID), zap.Error(err))
				}
			}
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	w.Write([]byte(message))
}
