package websocket

import (
	"time"

	"github.com/sysocial/sysocial-backend/internal/gateway"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is the only message clients send.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "services.snapshot"
	EventPong     Event = "pong"
)

// SnapshotResponse carries the status of every backend.
type SnapshotResponse struct {
	Event     Event                   `json:"event"`
	Healthy   bool                    `json:"healthy"`
	Services  []gateway.ServiceStatus `json:"services"`
	Timestamp time.Time               `json:"timestamp"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
