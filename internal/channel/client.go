// internal/channel/client.go
package channel

import (
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one push-channel subscription, addressed by session id. The
// server emits JSON frames of the shape {"event": ..., "data": ...}; the
// channel provides no acknowledgement, sequencing or replay, so a reopened
// channel only sees subsequently emitted frames.
type Client struct {
	sessionID string
	conn      *websocket.Conn
	onFrame   func(raw []byte)

	mu     sync.Mutex
	closed bool
}

// Dial connects the push channel for a session against the server base URL
// (http or https; the scheme is switched to ws/wss). Received frames are
// delivered to onFrame from the read loop goroutine until the channel closes.
func Dial(baseURL, sessionID string, onFrame func(raw []byte)) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws/sessions/" + sessionID

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial push channel: %w", err)
	}

	c := &Client{
		sessionID: sessionID,
		conn:      conn,
		onFrame:   onFrame,
	}
	go c.readPump()
	return c, nil
}

// readPump delivers frames until the connection errors or is closed locally.
// Transport errors are logged and end the pump; they never propagate.
func (c *Client) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()

			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[Channel] Read error for session %s: %v", c.sessionID, err)
			}
			return
		}
		c.onFrame(data)
	}
}

// Close shuts the channel down. Closing an already-closed channel is a
// no-op, not an error.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}
