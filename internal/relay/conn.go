package relay

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
)

// Conn is a generic transport carrying one message unit at a time between
// the server and a client.
type Conn interface {
	// Recv blocks until the next message unit arrives.
	Recv() (string, error)

	// Send writes one message unit. Implementations must serialize
	// concurrent calls so interleaved writes cannot corrupt the stream.
	Send(msg string) error

	// Close shuts the transport down. Safe to call more than once.
	Close() error

	// RemoteAddr reports the remote endpoint of the transport.
	RemoteAddr() net.Addr
}

// lineConn adapts a raw net.Conn into a Conn where one message unit is one
// newline-terminated UTF-8 line.
type lineConn struct {
	conn   net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewLineConn wraps conn in the line-delimited transport.
func NewLineConn(conn net.Conn) Conn {
	return &lineConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (c *lineConn) Recv() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			// The peer closed without a trailing newline; deliver the
			// final partial line, the next Recv reports EOF.
			return trimLine(line), nil
		}
		return "", err
	}
	return trimLine(line), nil
}

func (c *lineConn) Send(msg string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err := io.WriteString(c.conn, msg+"\n")
	return err
}

func (c *lineConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *lineConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func trimLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
