// Package wsbridge adapts a gorilla/websocket connection to the relay
// transport, so websocket clients join the same hub as raw TCP clients. One
// text frame carries one message unit; the framing replaces the newline.
package wsbridge

import (
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ledzpl/relay/internal/relay"
)

// Conn wraps a websocket connection into a relay.Conn.
type Conn struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

var _ relay.Conn = (*Conn)(nil)

// New wraps conn in the websocket transport.
func New(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// Recv blocks until the next text frame arrives. Non-text data frames are
// skipped; control frames are handled by the websocket library.
func (c *Conn) Recv() (string, error) {
	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if typ != websocket.TextMessage {
			continue
		}
		return string(data), nil
	}
}

// Send writes one text frame, serializing concurrent writers.
func (c *Conn) Send(msg string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// Close shuts the underlying connection down. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr reports the remote endpoint of the underlying connection.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
