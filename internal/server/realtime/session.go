package realtime

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
)

// SessionManager owns a connection once it is upgraded. Attach blocks for
// the life of the session; the connection is closed when it returns.
type SessionManager interface {
	Attach(ctx context.Context, c *Conn) error
}

// SessionManagerFunc adapts a function to SessionManager.
type SessionManagerFunc func(ctx context.Context, c *Conn) error

// Attach implements SessionManager.
func (f SessionManagerFunc) Attach(ctx context.Context, c *Conn) error {
	return f(ctx, c)
}

// Discard reads and drops every message until the peer goes away.
var Discard SessionManager = SessionManagerFunc(func(ctx context.Context, c *Conn) error {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return readErr(err)
		}
	}
})

// readErr maps the normal ways a session ends to nil.
func readErr(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return nil
	}
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}
