package ws

import (
	"net/http"
	"sync"

	"chromacast/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Handler upgrades HTTP requests to WebSocket consumers. Each upgraded
// connection becomes a sink in the same registry as the TCP consumers
// and receives the identical newline-terminated payloads.
type Handler struct {
	registry ports.Broadcaster
	logger   *zap.SugaredLogger
}

func NewHandler(registry ports.Broadcaster, logger *zap.SugaredLogger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/ws", h.Subscribe)
}

func (h *Handler) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed",
			"remote_addr", c.Request.RemoteAddr,
			"error", err,
		)
		return
	}

	sink := &wsSink{conn: conn}
	h.registry.Register(sink)

	// Drain inbound frames so close handshakes and pings are processed;
	// consumers are write-only from our side.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// wsSink adapts a WebSocket connection to ports.Sink. WebSocket messages
// are already framed, so the newline lives inside the text message and
// Flush is a no-op. gorilla allows one concurrent writer; the registry's
// mutex already serializes broadcasts, the sink mutex additionally
// covers the close path.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) WriteLine(payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, append([]byte(payload), '\n'))
}

func (s *wsSink) Flush() error {
	return nil
}

func (s *wsSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func (s *wsSink) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}
