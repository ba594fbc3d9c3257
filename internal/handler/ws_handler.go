package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sysocial/sysocial-backend/internal/gateway"
	"github.com/sysocial/sysocial-backend/internal/response"
	ws "github.com/sysocial/sysocial-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams backend status snapshots.
type WSHandler struct {
	gateway  *GatewayHandler
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(gw *GatewayHandler, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		gateway:  gw,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// StatusStream godoc
// WS /services/stream
// Sends a snapshot on connect and after every health-check cycle. Clients may
// send {"action":"ping"} or {"action":"refresh"}.
func (h *WSHandler) StatusStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("request_id", response.RequestID(c)).Logger()
	wsLog.Info().Msg("Status subscriber connected")

	updates, cancel := h.gateway.board.Subscribe()
	defer cancel()

	// gorilla/websocket allows one concurrent writer, so the reader hands
	// client requests to this goroutine instead of writing itself.
	actions := make(chan ws.Action, 4)
	done := make(chan struct{})
	ws.KeepAlive(conn)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case actions <- msg.Action:
			default:
			}
		}
	}()

	if err := h.writeSnapshot(conn, h.gateway.snapshot()); err != nil {
		return
	}

	ping := time.NewTicker(ws.PingPeriod)
	defer ping.Stop()

	for {
		var err error
		select {
		case <-done:
			wsLog.Debug().Msg("Status subscriber disconnected")
			return
		case <-updates:
			err = h.writeSnapshot(conn, h.gateway.snapshot())
		case action := <-actions:
			switch action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionRefresh:
				err = h.writeSnapshot(conn, h.gateway.snapshot())
			default:
				err = ws.WriteError(conn, "unknown action: "+string(action))
			}
		case <-ping.C:
			err = ws.WritePing(conn)
		}
		if err != nil {
			wsLog.Debug().Err(err).Msg("Write failed, closing")
			return
		}
	}
}

func (h *WSHandler) writeSnapshot(conn *websocket.Conn, snap gateway.Snapshot) error {
	return ws.WriteTyped(conn, ws.SnapshotResponse{
		Event:     ws.EventSnapshot,
		Healthy:   snap.Healthy(),
		Services:  snap.List(),
		Timestamp: time.Now().UTC(),
	})
}
