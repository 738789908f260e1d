package relay

import (
	"log"
	"sync"
)

// HandleConn runs the full lifecycle for one accepted connection: derive the
// client id from the remote address, register it with the hub, and relay
// messages until the peer goes away. It blocks until the session is fully
// torn down, so callers normally invoke it on its own goroutine.
func HandleConn(hub *Hub, conn Conn, logger *log.Logger) {
	id, err := ClientIDFromAddr(conn.RemoteAddr())
	if err != nil {
		logger.Printf("relay: rejecting connection: %v", err)
		_ = conn.Close()
		return
	}

	RunSession(hub, id, conn, logger)
}

// RunSession registers id with the hub and runs the session over conn.
func RunSession(hub *Hub, id ClientID, conn Conn, logger *log.Logger) {
	client, err := hub.Register(id)
	if err != nil {
		logger.Printf("relay: rejecting %s: %v", conn.RemoteAddr(), err)
		_ = conn.Close()
		return
	}

	logger.Printf("connected %s %s", conn.RemoteAddr(), id)

	s := &session{
		hub:    hub,
		conn:   conn,
		client: client,
		logger: logger,
	}
	s.run()
}

// session owns one client's two duties: reading inbound messages off the
// transport and draining the outbound queue back onto it. The transport's
// Send serializes the two write paths against each other.
type session struct {
	hub    *Hub
	conn   Conn
	client *Client
	logger *log.Logger

	workers  sync.WaitGroup
	teardown sync.Once
}

func (s *session) run() {
	defer s.cleanupSession()

	if err := s.conn.Send(formatLogin(s.client.ID)); err != nil {
		return
	}

	s.startOutboundRelay()
	s.readLoop()
}

// startOutboundRelay drains the client's outbound queue onto the transport.
// The loop ends when the hub closes the queue at unregister time.
func (s *session) startOutboundRelay() {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		for msg := range s.client.Send() {
			if err := s.conn.Send(formatRelay(msg)); err != nil {
				// A fatal write means the peer is gone; closing the
				// transport unblocks the read loop as well.
				s.terminate()
				return
			}
		}
	}()
}

func (s *session) readLoop() {
	for {
		text, err := s.conn.Recv()
		if err != nil {
			return
		}

		s.logger.Printf("message %s %s", s.client.ID, text)
		s.hub.Broadcast(s.client.ID, text)

		if err := s.conn.Send(ackMessage); err != nil {
			return
		}
	}
}

// terminate removes the client from the hub before closing the transport,
// so no broadcast can target this session once its socket is gone. Both
// duties may call it; only the first has any effect.
func (s *session) terminate() {
	s.teardown.Do(func() {
		s.hub.Unregister(s.client.ID)
		_ = s.conn.Close()
	})
}

func (s *session) cleanupSession() {
	s.terminate()
	s.workers.Wait()
}
