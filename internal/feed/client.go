package feed

import (
	"context"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 32
	pingInterval   = 30 * time.Second
)

// Client is one feed subscriber connection.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

// Handler returns an HTTP handler that upgrades the connection and streams
// feed events until the client goes away.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			hub.logger.Warn("feed accept", "error", err)
			return
		}

		c := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBufferSize)}
		c.run(r.Context())
	}
}

func (c *Client) run(ctx context.Context) {
	c.hub.subscribe(c)
	defer c.hub.unsubscribe(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards inbound messages; the feed is one-way. It returns when
// the connection closes, which tears the client down.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
