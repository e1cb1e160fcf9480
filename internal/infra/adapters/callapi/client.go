package callapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qrave1/RoomMeet/internal/application/constant"
	"github.com/qrave1/RoomMeet/internal/conference"
	"github.com/qrave1/RoomMeet/internal/domain/events"
	"github.com/qrave1/RoomMeet/internal/infra/ports/http/dto"
)

const (
	requestTimeout = 15 * time.Second
	writeWait      = 10 * time.Second

	reconnectAttempts = 3
	reconnectDelay    = time.Second

	subscriptionBuffer = 16
)

type liveCall struct {
	callType string
	callID   string
}

type subscription struct {
	callID string
	ch     chan conference.CallEvent
	done   chan struct{}
	once   sync.Once
}

// Client talks to the RoomMeet backend over HTTP and keeps one WebSocket for
// pushed call events. The JWT cookie set by Login is shared by both.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	dialer  *websocket.Dialer

	reconnectDelay time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	live   *liveCall
	closed bool

	writeMu sync.Mutex

	subMu  sync.Mutex
	subs   map[uint64]*subscription
	states map[string]conference.CallingState
	nextID uint64
}

func New(serverURL string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}

	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", base.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Jar: jar, Timeout: requestTimeout},
		dialer: &websocket.Dialer{
			Jar:              jar,
			HandshakeTimeout: requestTimeout,
		},
		reconnectDelay: reconnectDelay,
		subs:           make(map[uint64]*subscription),
		states:         make(map[string]conference.CallingState),
	}, nil
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", dto.RegisterRequest{Username: username, Password: password}, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: username, Password: password}, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*conference.User, error) {
	var resp dto.GetMeResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &resp); err != nil {
		return nil, err
	}

	return &conference.User{
		ID:    resp.ID.String(),
		Name:  resp.Username,
		Image: resp.Image,
	}, nil
}

// ListUpcoming returns scheduled calls of the signed-in user ordered by start time.
func (c *Client) ListUpcoming(ctx context.Context) ([]conference.CallInfo, error) {
	var resp dto.ListCallsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/calls?filter=upcoming", nil, &resp); err != nil {
		return nil, err
	}

	calls := make([]conference.CallInfo, 0, len(resp.Calls))
	for _, call := range resp.Calls {
		info, err := callInfoFromResponse(call)
		if err != nil {
			return nil, err
		}

		calls = append(calls, info)
	}

	return calls, nil
}

// Call returns a handle without touching the network.
func (c *Client) Call(callType, id string) conference.CallHandle {
	return &callHandle{client: c, callType: callType, id: id}
}

// Connect opens the event socket. It is a no-op while a socket is open.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	closed, connected := c.closed, c.conn != nil
	c.mu.Unlock()

	if closed {
		return ErrClosed
	}

	if connected {
		return nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	return c.install(conn)
}

// Close drops the event socket and stops reconnecting.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.live = nil
	c.closed = true
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	c.writeMu.Unlock()

	return conn.Close()
}

// dial must be called without c.mu held.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL := *c.baseURL
	if wsURL.Scheme == "https" {
		wsURL.Scheme = "wss"
	} else {
		wsURL.Scheme = "ws"
	}
	wsURL.Path += "/api/v1/ws"

	conn, resp, err := c.dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial websocket: %w", &APIError{Status: resp.StatusCode})
		}

		return nil, fmt.Errorf("dial websocket: %w", err)
	}

	return conn, nil
}

// install makes conn the event socket. A socket installed meanwhile by
// another caller wins and conn is closed.
func (c *Client) install(conn *websocket.Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		conn.Close()
		return ErrClosed
	}

	if c.conn != nil {
		conn.Close()
		return nil
	}

	c.conn = conn

	go c.readLoop(conn)

	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.connectionLost(conn, err)
			return
		}

		var msg events.Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("unmarshal backend event", slog.Any(constant.Error, err))
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) handleMessage(msg *events.Message) {
	switch msg.Type {
	case events.TypeCallingState:
		var ev events.CallingStateEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("unmarshal calling state", slog.Any(constant.Error, err))
			return
		}

		state := conference.ParseCallingState(ev.State)

		switch state {
		case conference.CallingStateLeft, conference.CallingStateEnded, conference.CallingStateIdle:
			c.mu.Lock()
			if c.live != nil && c.live.callID == ev.CallID {
				c.live = nil
			}
			c.mu.Unlock()
		}

		c.dispatch(conference.CallEvent{Kind: conference.EventCallingState, CallID: ev.CallID, State: state})

	case events.TypeMembersUpdated:
		var ev events.MembersUpdatedEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("unmarshal members updated", slog.Any(constant.Error, err))
			return
		}

		c.dispatch(conference.CallEvent{Kind: conference.EventMembersUpdated, CallID: ev.CallID})

	case events.TypeError:
		var ev events.ErrorEvent
		_ = json.Unmarshal(msg.Data, &ev)

		slog.Warn("backend error event", slog.String("message", ev.Message))

	case events.TypePong:
	default:
		slog.Debug("unknown backend event", slog.String("type", msg.Type))
	}
}

// connectionLost reconnects in the background when the user was in a call.
func (c *Client) connectionLost(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}

	c.conn = nil
	live, closed := c.live, c.closed
	c.mu.Unlock()

	conn.Close()

	if closed {
		return
	}

	slog.Warn("event socket lost", slog.Any(constant.Error, err))

	if live != nil {
		go c.reconnect(*live)
	}
}

func (c *Client) reconnect(live liveCall) {
	c.dispatch(conference.CallEvent{
		Kind:   conference.EventCallingState,
		CallID: live.callID,
		State:  conference.CallingStateReconnecting,
	})

	for attempt := 1; attempt <= reconnectAttempts; attempt++ {
		time.Sleep(time.Duration(attempt) * c.reconnectDelay)

		if !c.stillLive(live) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		err := c.Connect(ctx)
		cancel()

		if err == nil && !c.stillLive(live) {
			return
		}

		if err == nil {
			err = c.sendJoin(live)
		}

		if err == nil {
			return
		}

		slog.Warn("reconnect event socket", slog.Int("attempt", attempt), slog.Any(constant.Error, err))
	}

	c.mu.Lock()
	if c.live != nil && *c.live == live {
		c.live = nil
	}
	c.mu.Unlock()

	c.dispatch(conference.CallEvent{
		Kind:   conference.EventCallingState,
		CallID: live.callID,
		State:  conference.CallingStateLeft,
	})
}

func (c *Client) stillLive(live liveCall) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.closed && c.live != nil && *c.live == live
}

func (c *Client) join(ctx context.Context, live liveCall) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.live = &live
	c.mu.Unlock()

	c.dispatch(conference.CallEvent{
		Kind:   conference.EventCallingState,
		CallID: live.callID,
		State:  conference.CallingStateConnecting,
	})

	return c.sendJoin(live)
}

func (c *Client) sendJoin(live liveCall) error {
	msg, err := events.NewMessage(events.TypeJoin, events.JoinEvent{CallType: live.callType, CallID: live.callID})
	if err != nil {
		return err
	}

	return c.send(msg)
}

func (c *Client) forget(callID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.live != nil && c.live.callID == callID {
		c.live = nil
	}
}

func (c *Client) send(msg events.Message) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("send %s: event socket is not connected", msg.Type)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}

	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}

	return nil
}

func (c *Client) subscribe(callID string) (<-chan conference.CallEvent, func()) {
	sub := &subscription{
		callID: callID,
		ch:     make(chan conference.CallEvent, subscriptionBuffer),
		done:   make(chan struct{}),
	}

	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = sub

	if state, ok := c.states[callID]; ok {
		sub.ch <- conference.CallEvent{Kind: conference.EventCallingState, CallID: callID, State: state}
	}
	c.subMu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			close(sub.done)

			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}

	return sub.ch, cancel
}

// dispatch delivers ev to every subscriber of its call in arrival order.
// A slow subscriber holds back the stream until it reads or cancels.
// The last calling state of each call is replayed to later subscribers.
func (c *Client) dispatch(ev conference.CallEvent) {
	c.subMu.Lock()
	if ev.Kind == conference.EventCallingState {
		c.states[ev.CallID] = ev.State
	}

	targets := make([]*subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		if sub.callID == ev.CallID {
			targets = append(targets, sub)
		}
	}
	c.subMu.Unlock()

	for _, sub := range targets {
		select {
		case sub.ch <- ev:
		case <-sub.done:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}

		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	return nil
}
