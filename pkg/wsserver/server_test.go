package wsserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestServeUpgradesAndHandsOffConnections(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := New(listener.Addr().String(), testLogger())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, listener, func(conn *websocket.Conn) {
			defer conn.Close()
			typ, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			conn.WriteMessage(typ, data)
		})
	}()

	url := fmt.Sprintf("ws://%s%s", listener.Addr(), Path)
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "ping", string(data))
	client.Close()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

func TestServeRequiresHandler(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := New(listener.Addr().String(), testLogger())
	require.Error(t, server.Serve(context.Background(), listener, nil))
}
