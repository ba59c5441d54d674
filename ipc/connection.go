package ipc

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Handler answers one host message. A nil envelope means no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection is the controller's end of one game host socket. Messages are
// handled strictly in arrival order: a tick is fully answered before the
// next frame is read.
type Connection struct {
	conn   net.Conn
	routes map[string]Handler

	// Player is filled in by the hello handler and only used for logging.
	Player string

	mu   sync.Mutex
	sent int
}

func NewConnection(conn net.Conn) *Connection {
	return &Connection{conn: conn, routes: make(map[string]Handler)}
}

// Handle routes messages of msgType to h, replacing any earlier route.
func (c *Connection) Handle(msgType string, h Handler) {
	c.routes[msgType] = h
}

// Send writes one intent to the host.
func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := WriteEnvelope(c.conn, env); err != nil {
		return err
	}
	c.sent++
	return nil
}

// Sent counts the frames written so far, replies included.
func (c *Connection) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Serve reads host messages until the socket closes and always closes it on
// return. A clean hangup returns nil.
func (c *Connection) Serve() error {
	defer c.conn.Close()
	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Info("host disconnected", "player", c.Player)
				return nil
			}
			return err
		}
		if err := c.dispatch(env); err != nil {
			return err
		}
	}
}

// dispatch runs the route for env. A failing handler is answered with an
// error ack so the host never waits on a tick that will not come; only a
// failed write ends the session.
func (c *Connection) dispatch(env Envelope) error {
	h, ok := c.routes[env.Type]
	if !ok {
		slog.Warn("unrouted host message", "type", env.Type, "player", c.Player)
		return nil
	}
	reply, err := h(env)
	if err != nil {
		slog.Error("host message failed", "type", env.Type, "player", c.Player, "error", err)
		nack, nerr := NewEnvelope(TypeAck, AckMessage{Status: "error"})
		if nerr != nil {
			return nerr
		}
		reply = &nack
	}
	if reply == nil {
		return nil
	}
	if err := c.write(*reply); err != nil {
		return err
	}
	slog.Debug("replied", "type", reply.Type, "to", env.Type, "player", c.Player)
	return nil
}
