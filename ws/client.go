package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBufferSize = 16

	// Clients only need ping frames; anything else above this rate is abuse.
	inboundRate  = rate.Limit(1)
	inboundBurst = 5
)

// Client is one WebSocket connection of a user.
//
// Each connection runs two goroutines: ReadPump owns reads and liveness,
// WritePump is the only writer of data frames. They share nothing but the
// conn and the send channel. The hub closes send to end the connection;
// WritePump then sends a close frame and closes the conn, which stops
// ReadPump.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	mu     sync.Mutex

	pingInterval time.Duration
	pongWait     time.Duration
	inbound      *rate.Limiter
	log          *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID string, opts Options, log *zap.Logger) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		userID:       userID,
		send:         make(chan []byte, sendBufferSize),
		pingInterval: opts.PingInterval,
		pongWait:     opts.PongWait,
		inbound:      rate.NewLimiter(inboundRate, inboundBurst),
		log:          log.With(zap.String("user_id", userID)),
	}
}

// ReadPump keeps the read side alive. Each pong from the client extends the
// read deadline; a client silent for pongWait is disconnected. Data frames
// carry no meaning and are discarded, subject to a rate limit.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	extend := func() error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	}
	if err := extend(); err != nil {
		c.log.Warn("failed to set read deadline", zap.Error(err))
		return
	}
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("unexpected close", zap.Error(err))
			}
			return
		}

		if !c.inbound.Allow() {
			c.log.Warn("client flooding, closing connection")
			c.writeMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "rate limit"))
			return
		}

		if err := extend(); err != nil {
			return
		}
	}
}

// WritePump is the only writer of data frames. It drains send and pings the
// client every pingInterval.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// hub closed the channel
				c.writeMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.writeMessage(websocket.TextMessage, message); err != nil {
				c.log.Debug("write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := c.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
