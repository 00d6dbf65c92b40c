package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	jwtauth "github.com/lookupdesk/backend/internal/infrastructure/auth"
	"github.com/lookupdesk/backend/internal/infrastructure/config"
)

// TokenValidator validates the bearer token presented in the auth frame
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*jwtauth.Claims, error)
}

const moderatorRole = "moderator"

// Hub tracks authenticated websocket connections and pushes frames to
// them. One connection per user: a reconnect replaces the previous
// socket and the replaced one is closed.
type Hub struct {
	cfg       config.RealtimeConfig
	validator TokenValidator
	logger    *zap.Logger
	upgrader  websocket.Upgrader

	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	closed  bool
}

type client struct {
	userID uuid.UUID
	role   string
	conn   *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewHub creates a hub. The hub is constructed once at startup and
// injected into the websocket handler and the notifier.
func NewHub(cfg config.RealtimeConfig, validator TokenValidator, logger *zap.Logger) *Hub {
	return &Hub{
		cfg:       cfg,
		validator: validator,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[uuid.UUID]*client),
	}
}

// HandleConnection upgrades the HTTP request and runs the connection
// lifecycle: auth frame, registration, then the read and write pumps.
// Blocks until the connection is gone.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c, err := h.authenticate(conn)
	if err != nil {
		h.logger.Debug("websocket auth failed", zap.Error(err))
		h.rejectConn(conn, "authentication failed")
		return
	}

	h.register(c)
	h.logger.Info("websocket client connected",
		zap.String("user_id", c.userID.String()),
		zap.String("role", c.role),
	)

	go c.writePump(h)
	c.readPump(h)
}

// authenticate waits for the auth frame within the configured deadline.
// The claimed userId must match the token subject.
func (h *Hub) authenticate(conn *websocket.Conn) (*client, error) {
	if err := conn.SetReadDeadline(time.Now().Add(h.cfg.AuthTimeout)); err != nil {
		return nil, err
	}

	var frame AuthFrame
	if err := conn.ReadJSON(&frame); err != nil {
		return nil, err
	}
	if frame.Type != FrameTypeAuth {
		return nil, errFirstFrameNotAuth
	}

	claims, err := h.validator.ValidateAccessToken(frame.Token)
	if err != nil {
		return nil, err
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, err
	}
	if frame.UserID != claims.UserID {
		return nil, errIdentityMismatch
	}

	if err := conn.SetReadDeadline(time.Now().Add(h.pongWait())); err != nil {
		return nil, err
	}

	return &client{
		userID: userID,
		role:   claims.Role,
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBufferSize),
	}, nil
}

// register stores the client, displacing any previous connection of the
// same user (last write wins).
func (h *Hub) register(c *client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.close()
		return
	}
	previous := h.clients[c.userID]
	h.clients[c.userID] = c
	h.mu.Unlock()

	if previous != nil {
		previous.close()
	}

	ack, err := json.Marshal(AuthOKFrame{Type: FrameTypeAuthOK, UserID: c.userID.String()})
	if err == nil {
		c.enqueue(ack, h.logger)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.userID] == c {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()
	c.close()
}

// SendToUser pushes a frame to the user's connection if one exists.
// Returns false when the user is not connected.
func (h *Hub) SendToUser(userID uuid.UUID, frame interface{}) bool {
	h.mu.RLock()
	c := h.clients[userID]
	h.mu.RUnlock()
	if c == nil {
		return false
	}

	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to marshal frame", zap.Error(err))
		return false
	}
	return c.enqueue(data, h.logger)
}

// BroadcastToModerators pushes a frame to every connected moderator
func (h *Hub) BroadcastToModerators(frame interface{}) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to marshal frame", zap.Error(err))
		return
	}

	h.mu.RLock()
	moderators := make([]*client, 0)
	for _, c := range h.clients {
		if c.role == moderatorRole {
			moderators = append(moderators, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range moderators {
		c.enqueue(data, h.logger)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsConnected reports whether the user has a live connection
func (h *Hub) IsConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Close disconnects every client and rejects further registrations
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[uuid.UUID]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// rejectConn closes the socket with a policy violation close frame
func (h *Hub) rejectConn(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(h.cfg.WriteTimeout)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = conn.Close()
}

func (h *Hub) pongWait() time.Duration {
	return h.cfg.HeartbeatInterval * 2
}

// enqueue offers a frame to the client's buffered send channel. A full
// buffer drops the frame rather than blocking the caller; the mutex
// keeps the send from racing with connection teardown.
func (c *client) enqueue(data []byte, logger *zap.Logger) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		logger.Warn("send buffer full, dropping frame",
			zap.String("user_id", c.userID.String()),
		)
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.conn.Close()
}

// readPump consumes inbound frames. Clients send nothing meaningful
// after the auth frame, so the pump only services pongs and detects
// disconnects.
func (c *client) readPump(h *Hub) {
	defer h.unregister(c)

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.pongWait()))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains the send channel and keeps the connection alive with
// periodic pings
func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				deadline := time.Now().Add(h.cfg.WriteTimeout)
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
