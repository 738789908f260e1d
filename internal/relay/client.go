package relay

import (
	"fmt"
	"net"
	"strconv"
)

// ClientID identifies one live connection. It is the remote ephemeral port
// of the client's socket, which the operating system keeps unique among
// simultaneously open connections.
type ClientID uint16

func (id ClientID) String() string {
	return strconv.Itoa(int(id))
}

// ClientIDFromAddr derives the identifier for a connection from its remote
// address.
func ClientIDFromAddr(addr net.Addr) (ClientID, error) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("relay: cannot derive client id from %T address %q", addr, addr)
	}
	return ClientID(tcpAddr.Port), nil
}

// Message is one unit of text read from a sender, queued for delivery to
// every other client.
type Message struct {
	Sender ClientID
	Text   string
}

// Client pairs a ClientID with its outbound delivery channel. The hub owns
// the entry; the client's session consumes the receive side only.
type Client struct {
	ID ClientID

	send chan Message
}

// Send returns the outbound message channel for the client.
func (c *Client) Send() <-chan Message {
	return c.send
}

// tryDeliver places a message onto the outbound channel without blocking.
func (c *Client) tryDeliver(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		// Drop when the receiver is too slow; keeps the fan-out responsive.
		return false
	}
}
