package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHubBroadcastDeliversToOtherClients(t *testing.T) {
	hub := NewHub()

	alice, err := hub.Register(100)
	require.NoError(t, err)
	bob, err := hub.Register(200)
	require.NoError(t, err)
	carol, err := hub.Register(300)
	require.NoError(t, err)

	delivered := hub.Broadcast(alice.ID, "hello world")
	require.Equal(t, 2, delivered)

	for _, recipient := range []*Client{bob, carol} {
		select {
		case msg := <-recipient.Send():
			require.Equal(t, Message{Sender: 100, Text: "hello world"}, msg)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client %s timed out waiting for broadcast", recipient.ID)
		}
	}

	select {
	case unexpected := <-alice.Send():
		t.Fatalf("sender should not receive its own message, got %q", unexpected.Text)
	default:
	}
}

func TestHubRegisterRejectsDuplicateID(t *testing.T) {
	hub := NewHub()

	first, err := hub.Register(100)
	require.NoError(t, err)

	_, err = hub.Register(100)
	require.ErrorIs(t, err, ErrDuplicateID)

	// The original registration must be intact.
	require.Equal(t, 1, hub.ClientCount())
	hub.Broadcast(200, "still here")
	select {
	case msg := <-first.Send():
		require.Equal(t, "still here", msg.Text)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(100)
	require.NoError(t, err)

	hub.Unregister(client.ID)

	select {
	case _, ok := <-client.Send():
		require.False(t, ok, "channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for channel closure")
	}
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(100)
	require.NoError(t, err)

	hub.Unregister(client.ID)
	require.NotPanics(t, func() { hub.Unregister(client.ID) })
	require.Equal(t, 0, hub.ClientCount())

	// Unregistering an id that never existed is also a no-op.
	require.NotPanics(t, func() { hub.Unregister(999) })
}

func TestHubBroadcastSkipsUnregisteredClient(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(100)
	require.NoError(t, err)
	_, err = hub.Register(200)
	require.NoError(t, err)
	carol, err := hub.Register(300)
	require.NoError(t, err)

	hub.Unregister(200)

	delivered := hub.Broadcast(100, "after part")
	require.Equal(t, 1, delivered)

	select {
	case msg := <-carol.Send():
		require.Equal(t, "after part", msg.Text)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestHubRegisterReusesFreedID(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(100)
	require.NoError(t, err)

	hub.Unregister(100)

	fresh, err := hub.Register(100)
	require.NoError(t, err)

	hub.Broadcast(200, "welcome back")
	select {
	case msg := <-fresh.Send():
		require.Equal(t, "welcome back", msg.Text)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestHubBroadcastNeverBlocksOnFullQueue(t *testing.T) {
	hub := NewHub(WithQueueDepth(1))

	_, err := hub.Register(100)
	require.NoError(t, err)
	slow, err := hub.Register(200)
	require.NoError(t, err)
	fast, err := hub.Register(300)
	require.NoError(t, err)

	// Fill the slow client's queue; it never drains.
	require.Equal(t, 2, hub.Broadcast(100, "m1"))
	drainClient(fast)

	done := make(chan int)
	go func() { done <- hub.Broadcast(100, "m2") }()

	select {
	case delivered := <-done:
		require.Equal(t, 1, delivered, "only the fast client had queue space")
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full queue")
	}

	select {
	case msg := <-fast.Send():
		require.Equal(t, "m2", msg.Text)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for broadcast")
	}
	require.Len(t, slow.Send(), 1, "slow client keeps only the first message")
}

func TestHubClientCountTracksRegistrations(t *testing.T) {
	hub := NewHub()
	require.Equal(t, 0, hub.ClientCount())

	for i, id := range []ClientID{100, 200, 300} {
		_, err := hub.Register(id)
		require.NoError(t, err)
		require.Equal(t, i+1, hub.ClientCount())
	}

	hub.Unregister(200)
	require.Equal(t, 2, hub.ClientCount())
}

func drainClient(c *Client) {
	for {
		select {
		case <-c.Send():
		default:
			return
		}
	}
}
