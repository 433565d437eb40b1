// Package ws implements the live messaging gateway: one websocket per
// client, authenticated in-band, with best-effort push delivery to the
// receiver's registered connection.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/collegebuddy/backend/internal/model/chat"
	authservice "github.com/collegebuddy/backend/internal/service/auth"
	"github.com/collegebuddy/backend/internal/service/realtime"
	"github.com/collegebuddy/backend/internal/store"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Handler upgrades connections and runs the per-connection event loop.
type Handler struct {
	st       *store.Store
	authSvc  *authservice.Service
	registry *realtime.Registry
	upgrader websocket.Upgrader
}

// New creates the gateway handler.
func New(st *store.Store, authSvc *authservice.Service, registry *realtime.Registry) *Handler {
	return &Handler{
		st:       st,
		authSvc:  authSvc,
		registry: registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundEvent struct {
	Type  string          `json:"type"`
	Token string          `json:"token,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundEvent struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// client pairs a websocket connection with a write lock, since pushes arrive
// from other connections' handlers while this connection's own loop replies.
// The lock is also the identity the registry compares on removal.
type client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	userID string
}

// WriteJSON serialises writes on the underlying connection.
func (c *client) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Close closes the transport.
func (c *client) Close() error {
	return c.conn.Close()
}

// handleWebSocket owns one connection from upgrade to close. Events on a
// single connection are handled strictly in order; the registry mediates all
// cross-connection traffic.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	defer conn.Close()
	defer h.registry.Unregister(c)

	log.Printf("[ws] new connection from %s", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		var evt inboundEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			h.sendError(c, "invalid message format")
			continue
		}

		h.handleEvent(ctx, c, &evt)
	}
}

func (h *Handler) handleEvent(ctx context.Context, c *client, evt *inboundEvent) {
	switch evt.Type {
	case "authenticate":
		h.handleAuthenticate(ctx, c, evt.Token)
	case "sendMessage":
		h.handleSendMessage(ctx, c, evt.Data)
	default:
		h.sendError(c, "unsupported message type: "+evt.Type)
	}
}

// handleAuthenticate resolves the token to an account and registers the
// connection for live delivery. A failed attempt leaves the connection open
// and unauthenticated; the client may retry.
func (h *Handler) handleAuthenticate(ctx context.Context, c *client, token string) {
	claims, err := h.authSvc.VerifyToken(token)
	if err != nil {
		h.sendError(c, "Authentication failed")
		return
	}

	u, err := h.st.GetUser(ctx, claims.UserID)
	if err != nil {
		h.sendError(c, "Authentication failed")
		return
	}

	c.userID = u.ID
	h.registry.Register(u.ID, c)
	log.Printf("[ws] authenticated user=%s", u.ID)

	h.send(c, outboundEvent{Type: "authenticated", UserID: u.ID})
}

// handleSendMessage persists the draft first, then attempts live delivery to
// the receiver. The push is best-effort: a receiver without a registered open
// connection is a no-op, never an error. The sender always gets a
// messageSent confirmation carrying the persisted record.
func (h *Handler) handleSendMessage(ctx context.Context, c *client, raw json.RawMessage) {
	if c.userID == "" {
		h.sendError(c, "not authenticated")
		return
	}

	var draft chat.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		h.sendError(c, "invalid message payload")
		return
	}
	if draft.SenderID == "" {
		draft.SenderID = c.userID
	}
	if draft.ReceiverID == "" || draft.Content == "" {
		h.sendError(c, "receiverId and content are required")
		return
	}

	msg, err := h.st.CreateMessage(ctx, draft)
	if err != nil {
		// The redundant durable-write endpoint is the client's safety net
		// for this case; there is no protocol event for a failed persist.
		log.Printf("[ws] persist message failed sender=%s: %v", draft.SenderID, err)
		return
	}

	if receiver, ok := h.registry.Lookup(msg.ReceiverID); ok {
		if err := receiver.WriteJSON(outboundEvent{Type: "newMessage", Data: msg}); err != nil {
			log.Printf("[ws] push to %s failed: %v", msg.ReceiverID, err)
		}
	}

	h.send(c, outboundEvent{Type: "messageSent", Data: msg})
}

func (h *Handler) send(c *client, evt outboundEvent) {
	if err := c.WriteJSON(evt); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}

func (h *Handler) sendError(c *client, message string) {
	h.send(c, outboundEvent{Type: "error", Message: message})
}

// pingLoop keeps the connection alive past read deadlines. WriteControl is
// safe to call concurrently with WriteJSON.
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
