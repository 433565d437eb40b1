// Package client is a Go client for the College Buddy backend that speaks
// both transports the protocol requires: the REST API for durable writes and
// conversation fetches, and the websocket channel for live delivery. It
// reconciles the two sources with pkg/timeline exactly like the web client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/collegebuddy/backend/internal/model/chat"
	"github.com/collegebuddy/backend/internal/model/user"
	"github.com/collegebuddy/backend/pkg/timeline"
)

var ErrNotAuthenticated = errors.New("client is not authenticated")

// Client talks to one backend on behalf of one logged-in user.
type Client struct {
	baseURL   string
	httpc     *http.Client
	window    time.Duration
	windowSet bool

	token  string
	userID string

	mu   sync.Mutex
	conn *websocket.Conn
	live []chat.Message
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithDedupWindow pins the reconciler's dedup tolerance, overriding whatever
// the server advertises.
func WithDedupWindow(d time.Duration) Option {
	return func(c *Client) {
		c.window = d
		c.windowSet = true
	}
}

// New builds a client for the backend at baseURL (e.g. "http://host:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   http.DefaultClient,
		window:  timeline.DefaultWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserID returns the id of the logged-in user.
func (c *Client) UserID() string {
	return c.userID
}

type sessionResponse struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// Login authenticates against the REST API and keeps the issued token for
// subsequent calls and the live-channel handshake.
func (c *Client) Login(ctx context.Context, email, password string) (user.User, error) {
	var resp sessionResponse
	err := c.postJSON(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return user.User{}, err
	}
	c.token = resp.Token
	c.userID = resp.User.ID
	return resp.User, nil
}

// Register creates an account and keeps the issued token like Login.
func (c *Client) Register(ctx context.Context, username, email, password, name string) (user.User, error) {
	var resp sessionResponse
	err := c.postJSON(ctx, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"name":     name,
	}, &resp)
	if err != nil {
		return user.User{}, err
	}
	c.token = resp.Token
	c.userID = resp.User.ID
	return resp.User, nil
}

type wsEvent struct {
	Type    string          `json:"type"`
	Token   string          `json:"token,omitempty"`
	UserID  string          `json:"userId,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Connect dials the websocket endpoint, performs the in-band authenticate
// handshake, and starts accumulating pushed newMessage events.
func (c *Client) Connect(ctx context.Context) error {
	if c.token == "" {
		return ErrNotAuthenticated
	}

	// Adopt the deployment's dedup tolerance unless the caller pinned one.
	if !c.windowSet {
		var cfg struct {
			DedupWindowMs int64 `json:"dedupWindowMs"`
		}
		if err := c.getJSON(ctx, "/api/config", &cfg); err == nil && cfg.DedupWindowMs >= 0 {
			c.window = time.Duration(cfg.DedupWindowMs) * time.Millisecond
		}
	}

	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}

	if err := conn.WriteJSON(map[string]string{"type": "authenticate", "token": c.token}); err != nil {
		conn.Close()
		return fmt.Errorf("send authenticate: %w", err)
	}

	// The first event is either the ack or an auth error.
	var evt wsEvent
	if err := conn.ReadJSON(&evt); err != nil {
		conn.Close()
		return fmt.Errorf("read handshake reply: %w", err)
	}
	if evt.Type != "authenticated" {
		conn.Close()
		return fmt.Errorf("handshake rejected: %s", evt.Message)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// readLoop accumulates pushed messages until the connection dies.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var evt wsEvent
		if err := conn.ReadJSON(&evt); err != nil {
			return
		}
		// Only pushes for the receiving side feed the timeline; the sender's
		// own copy arrives through the durable-write response.
		if evt.Type != "newMessage" {
			continue
		}
		var msg chat.Message
		if err := json.Unmarshal(evt.Data, &msg); err != nil {
			continue
		}
		c.mu.Lock()
		c.live = append(c.live, msg)
		c.mu.Unlock()
	}
}

// Send composes a message through both write paths: a best-effort live
// sendMessage event plus the durable REST write that guarantees persistence.
// The returned message is the durable copy.
func (c *Client) Send(ctx context.Context, draft chat.Draft) (chat.Message, error) {
	if c.token == "" {
		return chat.Message{}, ErrNotAuthenticated
	}
	if draft.SenderID == "" {
		draft.SenderID = c.userID
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		payload, err := json.Marshal(draft)
		if err == nil {
			_ = conn.WriteJSON(wsEvent{Type: "sendMessage", Data: payload})
		}
	}

	var msg chat.Message
	if err := c.postJSON(ctx, "/api/messages", draft, &msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// Live returns a snapshot of the messages pushed over the live channel since
// Connect.
func (c *Client) Live() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Message, len(c.live))
	copy(out, c.live)
	return out
}

// Conversation fetches the durable conversation with otherUserID and merges
// it with the live events received so far.
func (c *Client) Conversation(ctx context.Context, otherUserID string) ([]chat.Message, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}

	var fetched []chat.Message
	if err := c.getJSON(ctx, "/api/messages?otherUserId="+otherUserID, &fetched); err != nil {
		return nil, err
	}

	c.mu.Lock()
	live := make([]chat.Message, len(c.live))
	copy(live, c.live)
	c.mu.Unlock()

	return timeline.Merge(c.userID, otherUserID, fetched, live, c.window), nil
}

// Close tears down the live channel. The REST side needs no teardown.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, apiErr.Error)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
