package wsbridge

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bnema/tabbridge/internal/application"
)

const (
	defaultWriteWait       = 10 * time.Second
	defaultPongWait        = 60 * time.Second
	defaultPingInterval    = 25 * time.Second
	defaultMaxMessageBytes = 1 << 20
)

// Config tunes the peer socket. Zero values select the defaults.
type Config struct {
	WriteWait       time.Duration
	PongWait        time.Duration
	PingInterval    time.Duration
	MaxMessageBytes int64
}

func (c *Config) applyDefaults() {
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}
	if c.PingInterval <= 0 {
		c.PingInterval = defaultPingInterval
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = defaultMaxMessageBytes
	}
}

// Handler upgrades extension connections, attaches them to the hub and
// runs their frame loops until disconnect.
type Handler struct {
	hub      *application.Hub
	logger   *zap.Logger
	cfg      Config
	upgrader websocket.Upgrader
}

func NewHandler(hub *application.Hub, logger *zap.Logger, cfg Config) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	return &Handler{
		hub:    hub,
		logger: logger,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     allowPeerOrigin,
		},
	}
}

// allowPeerOrigin admits extension pages and local tooling. Extension
// contexts send chrome-extension:// or moz-extension:// origins;
// non-browser clients usually send none.
func allowPeerOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if strings.HasPrefix(origin, "chrome-extension://") || strings.HasPrefix(origin, "moz-extension://") {
		return true
	}

	return strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1")
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade peer connection", zap.Error(err))
		return
	}

	p := newPeer(conn, h.cfg.WriteWait)
	p.id = h.hub.AttachPeer(p)

	if err := p.writeFrame(frame{
		Type:      frameConnectionEstablished,
		PeerID:    string(p.id),
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		h.logger.Warn("send connection greeting",
			zap.String("peer_id", string(p.id)),
			zap.Error(err),
		)
		h.hub.DetachPeer(p.id)
		return
	}

	go h.pingLoop(p)
	h.readLoop(p)
}

func (h *Handler) readLoop(p *peer) {
	defer h.hub.DetachPeer(p.id)

	p.conn.SetReadLimit(h.cfg.MaxMessageBytes)
	_ = p.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("peer connection dropped",
					zap.String("peer_id", string(p.id)),
					zap.Error(err),
				)
			}
			return
		}
		h.handleFrame(p, data)
	}
}

func (h *Handler) handleFrame(p *peer, data []byte) {
	f, err := parseFrame(data)
	if err != nil {
		h.logger.Warn("malformed peer frame",
			zap.String("peer_id", string(p.id)),
			zap.Error(err),
		)
		return
	}

	switch f.Type {
	case frameAIResponse:
		if f.RequestID == "" {
			h.logger.Warn("reply frame without request id", zap.String("peer_id", string(p.id)))
			return
		}
		h.hub.ResolveSuccess(f.RequestID, f.Response)
	case frameError:
		if f.RequestID == "" {
			h.logger.Warn("error frame without request id", zap.String("peer_id", string(p.id)))
			return
		}
		h.hub.ResolveError(f.RequestID, f.Error)
	case framePing:
		if err := p.writeFrame(frame{Type: framePong}); err != nil {
			h.logger.Warn("answer keepalive",
				zap.String("peer_id", string(p.id)),
				zap.Error(err),
			)
		}
	case framePong:
		// Keepalive echo from the peer, nothing to route.
	default:
		h.logger.Warn("unrecognized frame type",
			zap.String("peer_id", string(p.id)),
			zap.String("type", f.Type),
		)
	}
}

func (h *Handler) pingLoop(p *peer) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.writeControl(websocket.PingMessage); err != nil {
				return
			}
		case <-p.done:
			return
		}
	}
}
