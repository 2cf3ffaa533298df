package ipc

import (
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection represents a single game client talking to the agent.
// Each game gets its own connection, tagged with a session id.
type Connection struct {
	conn     net.Conn
	handlers map[string]Handler
	Session  string
	Log      zerolog.Logger
}

func NewConnection(conn net.Conn, session string, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
		Session:  session,
		Log:      log.With().Str("session", session).Logger(),
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

// Close ends the connection, unblocking ReadLoop.
func (c *Connection) Close() error { return c.conn.Close() }

// ReadLoop blocks until the connection closes or errors. It owns the conn lifetime
// so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				c.Log.Info().Msg("connection closed")
			} else {
				c.Log.Info().Err(err).Msg("connection read ended")
			}
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			c.Log.Warn().Str("type", env.Type).Msg("no handler for message type")
			continue
		}

		resp, err := handler(env)
		if err != nil {
			c.Log.Error().Str("type", env.Type).Err(err).Msg("handler error")
			continue
		}

		if resp != nil {
			if err := WriteEnvelope(c.conn, *resp); err != nil {
				c.Log.Error().Str("type", resp.Type).Err(err).Msg("failed to send response")
				return
			}
			c.Log.Trace().Str("type", resp.Type).Msg("sent response")
		}
	}
}
