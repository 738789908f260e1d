package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	flag "github.com/spf13/pflag"

	"github.com/ledzpl/relay/internal/relay"
	"github.com/ledzpl/relay/internal/wsbridge"
	"github.com/ledzpl/relay/pkg/tcpserver"
	"github.com/ledzpl/relay/pkg/wsserver"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8888", "TCP address the relay listens on")
	wsAddr := flag.String("ws-addr", "", "Optional HTTP address for the WebSocket gateway (disabled when empty)")
	queueDepth := flag.Int("queue-depth", 16, "Per-client outbound queue capacity")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	color.Cyan("relay: line-delimited TCP broadcast server")

	hub := relay.NewHub(
		relay.WithLogger(logger),
		relay.WithQueueDepth(*queueDepth),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *wsAddr != "" {
		gateway := wsserver.New(*wsAddr, logger)
		go func() {
			err := gateway.ListenAndServe(ctx, func(conn *websocket.Conn) {
				relay.HandleConn(hub, wsbridge.New(conn), logger)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("websocket gateway stopped with error: %v", err)
			}
		}()
	}

	server := tcpserver.New(*addr, logger)
	err := server.ListenAndServe(ctx, func(conn net.Conn) {
		relay.HandleConn(hub, relay.NewLineConn(conn), logger)
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("server stopped with error: %v", err)
	}
}
