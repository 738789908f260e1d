// Package tcpserver wraps the lifecycle of a plain TCP listener: bind,
// accept loop, and context-driven shutdown. What happens on each accepted
// connection is left entirely to the handler.
package tcpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
)

// ConnHandler handles one accepted connection. It runs on its own goroutine
// and owns the connection's lifetime.
type ConnHandler func(conn net.Conn)

// Server wraps the TCP listener lifecycle.
type Server struct {
	Addr string

	logger *log.Logger
}

// New creates a Server listening on addr.
func New(addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		Addr:   addr,
		logger: logger,
	}
}

// ListenAndServe binds to s.Addr and accepts connections until the context
// is cancelled. Only the bind error is fatal; failures accepting a single
// connection are logged and the loop continues.
func (s *Server) ListenAndServe(ctx context.Context, handler ConnHandler) error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("tcpserver: listen %q: %w", s.Addr, err)
	}

	return s.Serve(ctx, listener, handler)
}

// Serve accepts connections on listener until the context is cancelled. It
// takes ownership of the listener and closes it on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener, handler ConnHandler) error {
	defer listener.Close()

	if handler == nil {
		return errors.New("tcpserver: connection handler required")
	}

	shutdown := make(chan struct{})
	defer close(shutdown)

	go func() {
		select {
		case <-ctx.Done():
			if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Printf("tcpserver: listener close error: %v", err)
			}
		case <-shutdown:
		}
	}()

	s.logger.Printf("tcpserver: listening on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			s.logger.Printf("tcpserver: accept error: %v", err)
			continue
		}

		go handler(conn)
	}
}
