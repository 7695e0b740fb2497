package websocket

import (
	"context"
	"slices"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/elms/internal/model"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is one dashboard connection.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	role model.Role
	send chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, role model.Role) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		role: role,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *Client) hasRole(roles []model.Role) bool {
	return slices.Contains(roles, c.role)
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards incoming frames. Dashboards only listen; chat goes
// through the REST endpoints.
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
