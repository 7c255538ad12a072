package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/playgate/internal/core/domain"
)

// Conn is one live websocket connection. Writes are serialized; reads must
// come from a single goroutine, the SessionManager's.
type Conn struct {
	id         string
	ws         *websocket.Conn
	claims     *domain.Claims
	remoteAddr string
	writeWait  time.Duration
	logger     *slog.Logger

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(id string, ws *websocket.Conn, claims *domain.Claims, remoteAddr string, writeWait time.Duration, logger *slog.Logger) *Conn {
	return &Conn{
		id:         id,
		ws:         ws,
		claims:     claims,
		remoteAddr: remoteAddr,
		writeWait:  writeWait,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// ID returns the connection ID.
func (c *Conn) ID() string { return c.id }

// Claims returns the verified claims, or nil when the handshake did not
// require a credential.
func (c *Conn) Claims() *domain.Claims { return c.claims }

// RemoteAddr returns the client address seen at upgrade.
func (c *Conn) RemoteAddr() string { return c.remoteAddr }

// Logger returns a logger tagged with the connection ID.
func (c *Conn) Logger() *slog.Logger { return c.logger }

// Done is closed when the connection is closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// ReadMessage reads the next data message. Control frames are handled
// internally.
func (c *Conn) ReadMessage() (messageType int, data []byte, err error) {
	return c.ws.ReadMessage()
}

// WriteMessage sends one data message.
func (c *Conn) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteMessage(messageType, data)
}

// WriteJSON sends v as a text message.
func (c *Conn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteJSON(v)
}

// Close sends a close frame with code and reason and closes the socket.
// Only the first call has an effect.
func (c *Conn) Close(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(c.writeWait))
		err = c.ws.Close()
	})
	return err
}

// keepAlive arms the read deadline, extends it on every pong and pings the
// peer every interval until the connection closes.
func (c *Conn) keepAlive(interval, pongWait time.Duration) {
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait)); err != nil {
					c.logger.Debug("ping failed", "error", err)
					return
				}
			}
		}
	}()
}
