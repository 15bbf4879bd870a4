package previews

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"profileplus/internal/profiles"
	"profileplus/internal/shared/telemetry"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Event is the message pushed to preview viewers.
type Event struct {
	Type    string                 `json:"type"`
	Profile profiles.PublicProfile `json:"profile"`
}

// Handler serves the preview websocket.
type Handler struct {
	Channel        *Channel
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewHandler constructs a Handler. Origins outside allowedOrigins are
// refused unless they match the request host.
func NewHandler(ch *Channel, allowedOrigins []string) *Handler {
	h := &Handler{Channel: ch, allowedOrigins: allowedOrigins}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// RegisterRoutes attaches the websocket route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/public/profiles/:id/preview/ws", h.Serve)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Serve upgrades the request and streams preview writes for :id.
func (h *Handler) Serve(c *gin.Context) {
	id := c.Param("id")
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		telemetry.Warn("preview.upgrade_failed", map[string]any{"profile_id": id, "error": err})
		return
	}
	defer conn.Close()

	updates, cancel := h.Channel.Hub.Subscribe(id)
	defer cancel()

	if current := h.Channel.Current(c.Request.Context(), id); current != nil {
		if err := writeEvent(conn, *current); err != nil {
			return
		}
	}

	closed := make(chan struct{})
	go readLoop(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case p, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"))
				return
			}
			if err := writeEvent(conn, p); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed and
// signals when the peer goes away.
func readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, p profiles.Profile) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(Event{Type: "preview", Profile: profiles.ToPublic(p, false)})
}
