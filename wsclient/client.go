// Package wsclient keeps a notification channel open from the client side.
//
// A Client dials the server's /ws endpoint, marks the local feed stale on
// every NEW_ACTIVITY signal and, when the connection drops or cannot be
// established, reconnects after an exponential backoff. Close stops it for
// good, cancelling any pending reconnect.
package wsclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/ws"
)

const writeWait = 10 * time.Second

// State is the connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	AwaitingReconnect
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case AwaitingReconnect:
		return "awaiting_reconnect"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is the part of *websocket.Conn the client uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Dialer opens a Conn. Dial must return promptly once ctx is cancelled.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// GorillaDialer dials with gorilla/websocket.
type GorillaDialer struct {
	Dialer *websocket.Dialer
}

func (d GorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Invalidator is told when cached data should be re-fetched.
type Invalidator interface {
	MarkStale()
}

// Options configures a Client. URL and Invalidator are required.
type Options struct {
	URL          string
	Dialer       Dialer
	Invalidator  Invalidator
	PingInterval time.Duration // 0 disables client pings
	// PongWait bounds the silence tolerated from the server: every pong or
	// frame pushes the read deadline this far out. Defaults to twice
	// PingInterval; with pings disabled there is no deadline.
	PongWait time.Duration
	MinDelay     time.Duration
	MaxDelay     time.Duration
	Logger       *zap.Logger

	// OnStateChange runs under the client's lock on every transition and
	// must not call back into the Client.
	OnStateChange func(State)
}

type stopper interface {
	Stop() bool
}

// Client is the reconnecting notification channel.
//
// Transitions:
//
//	Disconnected      --Start-->            Connecting
//	Connecting        --dial ok-->          Connected (backoff reset)
//	Connecting        --dial failed-->      AwaitingReconnect
//	Connected         --read error/silence-> AwaitingReconnect
//	AwaitingReconnect --timer-->            Connecting
//	any               --Close-->            Closed
//
// All state lives under mu. gen counts dial attempts: a dial or timer
// callback that finds gen moved on, or the state Closed, drops its result.
// At most one of timer and cancelDial is set at a time.
type Client struct {
	opts Options
	log  *zap.Logger

	mu         sync.Mutex
	state      State
	backoff    *Backoff
	conn       Conn
	timer      stopper
	cancelDial context.CancelFunc
	gen        uint64

	afterFunc func(d time.Duration, f func()) stopper
}

func New(opts Options) *Client {
	if opts.Dialer == nil {
		opts.Dialer = GorillaDialer{}
	}
	if opts.MinDelay <= 0 {
		opts.MinDelay = DefaultMinDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	if opts.PongWait <= 0 && opts.PingInterval > 0 {
		opts.PongWait = 2 * opts.PingInterval
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		opts:    opts,
		log:     log,
		state:   Disconnected,
		backoff: NewBackoff(opts.MinDelay, opts.MaxDelay),
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// State returns the current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins connecting in the background. It does nothing unless the
// client is Disconnected.
func (c *Client) Start() {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return
	}
	c.setState(Connecting)
	c.mu.Unlock()

	go c.connect()
}

// Close tears the client down: the pending reconnect timer is stopped, an
// in-flight dial is cancelled and the open connection is closed. A timer
// that fires afterwards finds the client Closed and does nothing.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return nil
	}
	c.setState(Closed)

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}

	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}

func (c *Client) setState(s State) {
	if c.state == s {
		return
	}
	c.log.Debug("state change", zap.Stringer("from", c.state), zap.Stringer("to", s))
	c.state = s
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(s)
	}
}

// connect makes one dial attempt. On success the connection is served on
// its own goroutine; on failure a reconnect is scheduled.
func (c *Client) connect() {
	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		return
	}
	c.setState(Connecting)
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelDial = cancel
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	conn, err := c.opts.Dialer.Dial(ctx, c.opts.URL)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed || gen != c.gen {
		if conn != nil {
			conn.Close()
		}
		return
	}
	c.cancelDial = nil

	if err != nil {
		c.log.Debug("dial failed", zap.Error(err))
		c.scheduleReconnect()
		return
	}

	c.conn = conn
	c.backoff.Reset()
	c.setState(Connected)
	c.log.Info("notification channel connected")

	go c.serve(conn)
}

// scheduleReconnect must be called with mu held.
func (c *Client) scheduleReconnect() {
	delay := c.backoff.Next()
	c.setState(AwaitingReconnect)
	gen := c.gen

	c.timer = c.afterFunc(delay, func() {
		c.mu.Lock()
		if c.state != AwaitingReconnect || c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.timer = nil
		c.mu.Unlock()

		c.connect()
	})
	c.log.Debug("reconnect scheduled", zap.Duration("delay", delay))
}

// serve reads until the connection fails, then schedules a reconnect
// unless the client was closed meanwhile. A server that goes silent
// without closing the socket is caught by the read deadline.
func (c *Client) serve(conn Conn) {
	if c.opts.PongWait > 0 {
		conn.SetPongHandler(func(string) error { return c.extendDeadline(conn) })
		if err := c.extendDeadline(conn); err != nil {
			c.log.Debug("set read deadline", zap.Error(err))
		}
	}

	stop := make(chan struct{})
	if c.opts.PingInterval > 0 {
		go c.pingLoop(conn, stop)
	}

	err := c.readLoop(conn)
	close(stop)
	conn.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed || c.conn != conn {
		return
	}
	c.conn = nil
	c.log.Info("notification channel lost", zap.Error(err))
	c.scheduleReconnect()
}

func (c *Client) readLoop(conn Conn) error {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if c.opts.PongWait > 0 {
			if err := c.extendDeadline(conn); err != nil {
				return err
			}
		}
		if messageType == websocket.TextMessage && string(data) == ws.SignalNewActivity {
			c.opts.Invalidator.MarkStale()
		}
	}
}

func (c *Client) extendDeadline(conn Conn) error {
	return conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
}

func (c *Client) pingLoop(conn Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.log.Debug("ping failed", zap.Error(err))
				}
				return
			}
		case <-stop:
			return
		}
	}
}
