// Package wsserver exposes the relay over WebSocket: an HTTP listener with a
// single upgrade endpoint that hands each upgraded connection to a handler.
package wsserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

// Path is the HTTP path clients upgrade on.
const Path = "/ws"

// ConnHandler handles one upgraded connection. It runs on the request's
// goroutine and owns the connection's lifetime.
type ConnHandler func(conn *websocket.Conn)

// Server wraps the HTTP listener and upgrade lifecycle.
type Server struct {
	Addr string

	logger   *log.Logger
	upgrader websocket.Upgrader
}

// New creates a Server listening on addr.
func New(addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		Addr:   addr,
		logger: logger,
		upgrader: websocket.Upgrader{
			// The relay has no origin policy; any client may connect,
			// exactly as on the raw TCP port.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ListenAndServe binds to s.Addr and serves upgrade requests until the
// context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, handler ConnHandler) error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("wsserver: listen %q: %w", s.Addr, err)
	}

	return s.Serve(ctx, listener, handler)
}

// Serve accepts upgrade requests on listener until the context is cancelled.
// It takes ownership of the listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener, handler ConnHandler) error {
	if handler == nil {
		listener.Close()
		return errors.New("wsserver: connection handler required")
	}

	mux := http.NewServeMux()
	mux.HandleFunc(Path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Printf("wsserver: upgrade failed: %v", err)
			return
		}
		handler(conn)
	})

	httpServer := &http.Server{Handler: mux}

	shutdown := make(chan struct{})
	defer close(shutdown)

	go func() {
		select {
		case <-ctx.Done():
			if err := httpServer.Close(); err != nil {
				s.logger.Printf("wsserver: close error: %v", err)
			}
		case <-shutdown:
		}
	}()

	s.logger.Printf("wsserver: listening on %s%s", listener.Addr(), Path)

	err := httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
