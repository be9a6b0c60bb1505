package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/relay-service/internal/domain"
	"github.com/cwrk-planet/relay-service/internal/relay"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Authenticator resolves a bearer credential to an identity, rejecting
// invalid, expired and blocked ones.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type Server struct {
	upgrader websocket.Upgrader
	router   *relay.Router
	auth     Authenticator

	pingEvery time.Duration
}

func NewServer(router *relay.Router, auth Authenticator) *Server {
	return &Server{
		router: router,
		auth:   auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws?access_token=...
// Authentication happens before the upgrade; a rejected credential never
// reaches the event router.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("access_token"))
	if token == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}

	user, err := s.auth.Authenticate(r.Context(), token)
	if err != nil {
		slog.Debug("ws auth rejected", "err", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, user.ID)
	s.router.Connect(r.Context(), c)

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	// the request context may already be unwinding; cleanup persistence
	// must still run
	s.router.Disconnect(context.Background(), c)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "user", user.ID, "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var ev relay.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		s.router.HandleEvent(ctx, c, ev)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn      *websocket.Conn
	id        string
	userID    string
	sendMu    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(c *websocket.Conn, userID string) *wsConn {
	return &wsConn{
		conn:   c,
		id:     uuid.NewString(),
		userID: userID,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(ev relay.Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(ev)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.conn.Close()
}

func (c *wsConn) ID() string     { return c.id }
func (c *wsConn) UserID() string { return c.userID }
