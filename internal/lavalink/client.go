// Package lavalink implements a client for the Lavalink v3 protocol: a
// websocket stream for node lifecycle and playback events, and a REST
// surface for loading tracks and driving per-guild players.
package lavalink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gorilla/websocket"
)

// clientName identifies this library to the node during the handshake.
const clientName = "hydrogen/1.0.0"

// DefaultTimeout bounds the websocket handshake and each REST call when the
// config does not say otherwise.
const DefaultTimeout = 5 * time.Second

// Status describes the lifecycle of a node connection.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Node is the surface the rest of the bot drives. *Client implements it; the
// indirection keeps playback logic testable without a live node.
type Node interface {
	// Address returns the node's host:port.
	Address() string

	// SessionID returns the websocket session id, or "" before ready.
	SessionID() string

	// Status returns the connection lifecycle state.
	Status() Status

	// LoadTracks resolves an identifier (URL or search expression) into
	// playable tracks.
	LoadTracks(ctx context.Context, identifier string) (*LoadResult, error)

	// UpdatePlayer creates or mutates the guild's player on the node. With
	// noReplace the node ignores a new track while one is already playing.
	UpdatePlayer(ctx context.Context, guildID snowflake.ID, noReplace bool, update PlayerUpdate) (*Player, error)

	// GetPlayer fetches the guild's player, or nil when the node has none.
	GetPlayer(ctx context.Context, guildID snowflake.ID) (*Player, error)

	// DestroyPlayer removes the guild's player from the node.
	DestroyPlayer(ctx context.Context, guildID snowflake.ID) error
}

// Equal reports whether two nodes refer to the same connection: same
// address, same session and same status.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Address() == b.Address() && a.SessionID() == b.SessionID() && a.Status() == b.Status()
}

// Config describes how to reach a single Lavalink node.
type Config struct {
	// Address is the node's host:port.
	Address string

	// Password authenticates the websocket handshake and every REST call.
	Password string

	// Secure selects wss/https schemes.
	Secure bool

	// UserID is the bot's Discord user id, sent during the handshake.
	UserID snowflake.ID

	// Timeout bounds the handshake and each REST call. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the REST client, e.g. to instrument transports.
	// nil uses a plain client.
	HTTPClient *http.Client

	// Handler receives node lifecycle and playback events. Required.
	Handler EventHandler
}

// Client is a connection to one Lavalink node. Create it with NewClient and
// bring it online with Connect; REST calls fail with ErrNotReady until the
// node has confirmed the websocket session.
type Client struct {
	cfg  Config
	http *http.Client

	mu        sync.RWMutex
	conn      *websocket.Conn
	status    Status
	sessionID string
}

var _ Node = (*Client)(nil)

// NewClient prepares a client for the given node without dialing it.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		status: StatusDisconnected,
	}
}

// Address returns the node's host:port.
func (c *Client) Address() string {
	return c.cfg.Address
}

// SessionID returns the websocket session id, or "" before ready.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Status returns the connection lifecycle state.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Connect dials the node's websocket, starts the read loop and waits for the
// ready frame. On timeout the socket is closed and ErrNotReady returned.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusDisconnected {
		c.mu.Unlock()
		return fmt.Errorf("lavalink: node %s: already %s", c.cfg.Address, c.status)
	}
	c.status = StatusConnecting
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Authorization", c.cfg.Password)
	header.Set("User-Id", c.cfg.UserID.String())
	header.Set("Client-Name", clientName)

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.Timeout}
	conn, resp, err := dialer.DialContext(ctx, c.websocketURL(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		c.mu.Lock()
		c.status = StatusDisconnected
		c.mu.Unlock()
		return fmt.Errorf("lavalink: node %s: dial: %w", c.cfg.Address, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	ready := make(chan struct{})
	go c.readLoop(conn, ready)

	select {
	case <-ready:
		return nil
	case <-time.After(c.cfg.Timeout):
		conn.Close()
		return fmt.Errorf("lavalink: node %s: no ready frame within %s: %w", c.cfg.Address, c.cfg.Timeout, ErrNotReady)
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
}

// Close tears down the websocket. The read loop notices and reports the
// disconnect through the handler.
func (c *Client) Close() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// readLoop consumes frames until the socket errors, then marks the client
// disconnected and notifies the handler. Malformed frames are dropped.
func (c *Client) readLoop(conn *websocket.Conn, ready chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			c.mu.Lock()
			c.conn = nil
			c.status = StatusDisconnected
			c.sessionID = ""
			c.mu.Unlock()
			slog.Warn("lavalink node disconnected", "node", c.cfg.Address, "error", err)
			c.cfg.Handler.OnDisconnect(c)
			return
		}
		c.handleMessage(data, ready)
	}
}

func (c *Client) handleMessage(data []byte, ready chan struct{}) {
	var base struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		slog.Warn("discarding malformed node frame", "node", c.cfg.Address, "error", err)
		return
	}

	switch base.Op {
	case opReady:
		var msg readyMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("discarding malformed ready frame", "node", c.cfg.Address, "error", err)
			return
		}
		c.mu.Lock()
		c.sessionID = msg.SessionID
		c.status = StatusConnected
		c.mu.Unlock()
		select {
		case <-ready:
		default:
			close(ready)
		}
		c.cfg.Handler.OnReady(c, msg.Resumed)

	case opPlayerUpdate:
		handler, ok := c.cfg.Handler.(PlayerUpdateHandler)
		if !ok {
			return
		}
		var msg PlayerUpdateMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("discarding malformed playerUpdate frame", "node", c.cfg.Address, "error", err)
			return
		}
		handler.OnPlayerUpdate(c, msg)

	case opStats:
		handler, ok := c.cfg.Handler.(StatsHandler)
		if !ok {
			return
		}
		var msg Stats
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("discarding malformed stats frame", "node", c.cfg.Address, "error", err)
			return
		}
		handler.OnStats(c, msg)

	case opEvent:
		c.handleEvent(data)

	default:
		slog.Debug("ignoring unknown node op", "node", c.cfg.Address, "op", base.Op)
	}
}

func (c *Client) handleEvent(data []byte) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		slog.Warn("discarding malformed event frame", "node", c.cfg.Address, "error", err)
		return
	}

	fail := func(err error) {
		slog.Warn("discarding malformed event frame",
			"node", c.cfg.Address,
			"type", base.Type,
			"error", err,
		)
	}

	switch base.Type {
	case eventTrackStart:
		var ev TrackStartEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			fail(err)
			return
		}
		c.cfg.Handler.OnTrackStart(c, ev)

	case eventTrackEnd:
		var ev TrackEndEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			fail(err)
			return
		}
		c.cfg.Handler.OnTrackEnd(c, ev)

	case eventTrackException:
		handler, ok := c.cfg.Handler.(TrackExceptionHandler)
		if !ok {
			return
		}
		var ev TrackExceptionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			fail(err)
			return
		}
		handler.OnTrackException(c, ev)

	case eventTrackStuck:
		handler, ok := c.cfg.Handler.(TrackStuckHandler)
		if !ok {
			return
		}
		var ev TrackStuckEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			fail(err)
			return
		}
		handler.OnTrackStuck(c, ev)

	case eventWebSocketClosed:
		handler, ok := c.cfg.Handler.(WebSocketClosedHandler)
		if !ok {
			return
		}
		var ev WebSocketClosedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			fail(err)
			return
		}
		handler.OnWebSocketClosed(c, ev)

	default:
		slog.Debug("ignoring unknown node event", "node", c.cfg.Address, "type", base.Type)
	}
}

// LoadTracks resolves an identifier into playable tracks.
func (c *Client) LoadTracks(ctx context.Context, identifier string) (*LoadResult, error) {
	if _, err := c.checkReady(); err != nil {
		return nil, err
	}

	var out LoadResult
	path := "/v3/loadtracks?identifier=" + url.QueryEscape(identifier)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePlayer creates or mutates the guild's player on the node.
func (c *Client) UpdatePlayer(ctx context.Context, guildID snowflake.ID, noReplace bool, update PlayerUpdate) (*Player, error) {
	sessionID, err := c.checkReady()
	if err != nil {
		return nil, err
	}

	var out Player
	path := fmt.Sprintf("/v3/sessions/%s/players/%s?noReplace=%t", sessionID, guildID, noReplace)
	if err := c.do(ctx, http.MethodPatch, path, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPlayer fetches the guild's player. A node 404 means the player does not
// exist and yields (nil, nil).
func (c *Client) GetPlayer(ctx context.Context, guildID snowflake.ID) (*Player, error) {
	sessionID, err := c.checkReady()
	if err != nil {
		return nil, err
	}

	var out Player
	path := fmt.Sprintf("/v3/sessions/%s/players/%s", sessionID, guildID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// DestroyPlayer removes the guild's player from the node.
func (c *Client) DestroyPlayer(ctx context.Context, guildID snowflake.ID) error {
	sessionID, err := c.checkReady()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/v3/sessions/%s/players/%s", sessionID, guildID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// checkReady snapshots the session id, failing unless the node is connected
// and the session is known.
func (c *Client) checkReady() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.status != StatusConnected || c.sessionID == "" {
		return "", fmt.Errorf("lavalink: node %s: %w", c.cfg.Address, ErrNotReady)
	}
	return c.sessionID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("lavalink: encode %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.restURL(path), reqBody)
	if err != nil {
		return fmt.Errorf("lavalink: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", c.cfg.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("lavalink: node %s: %s %s: %w", c.cfg.Address, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("lavalink: node %s: read response: %w", c.cfg.Address, err)
	}

	return c.decode(resp.StatusCode, data, out)
}

// decode applies the node response contract: a body that decodes as the
// expected type wins, otherwise a body that decodes as the node's error
// document becomes a *RestError, otherwise the response is invalid.
func (c *Client) decode(status int, data []byte, out any) error {
	if out != nil {
		if err := strictUnmarshal(data, out); err == nil {
			return nil
		}
	} else if status >= 200 && status < 300 {
		return nil
	}

	var restErr RestError
	if err := json.Unmarshal(data, &restErr); err == nil && restErr.Status != 0 {
		return &restErr
	}

	return &InvalidResponseError{Node: c.cfg.Address, Status: status, Body: snippet(data)}
}

// strictUnmarshal rejects documents with fields the target type does not
// declare, so the node's error document never half-decodes as a result type.
func strictUnmarshal(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func snippet(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}

func (c *Client) restURL(path string) string {
	scheme := "http"
	if c.cfg.Secure {
		scheme = "https"
	}
	return scheme + "://" + c.cfg.Address + path
}

func (c *Client) websocketURL() string {
	scheme := "ws"
	if c.cfg.Secure {
		scheme = "wss"
	}
	return scheme + "://" + c.cfg.Address + "/v3/websocket"
}
