package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(zap.NewNop())
	go h.Run()
	t.Cleanup(h.Shutdown)
	return h
}

func fakeClient(h *Hub, userID string, buffer int) *Client {
	return &Client{hub: h, userID: userID, send: make(chan []byte, buffer)}
}

func register(t *testing.T, h *Hub, clients ...*Client) {
	t.Helper()
	for _, c := range clients {
		require.True(t, h.Register(c))
	}
}

func TestNotifyUserFanOut(t *testing.T) {
	h := startHub(t)

	a1, a2, a3 := fakeClient(h, "alice", 4), fakeClient(h, "alice", 4), fakeClient(h, "alice", 4)
	b := fakeClient(h, "bob", 4)
	register(t, h, a1, a2, a3, b)
	require.Eventually(t, func() bool {
		return h.ConnectionCount("alice") == 3 && h.ConnectionCount("bob") == 1
	}, time.Second, time.Millisecond)

	h.NotifyUser("alice")

	for _, c := range []*Client{a1, a2, a3} {
		select {
		case msg := <-c.send:
			assert.Equal(t, SignalNewActivity, string(msg))
		default:
			t.Fatal("connection did not receive the signal")
		}
	}
	assert.Empty(t, b.send)
}

func TestNotifyUserWithoutConnections(t *testing.T) {
	h := startHub(t)
	assert.NotPanics(t, func() { h.NotifyUser("nobody") })
}

func TestFullBufferDropsConnection(t *testing.T) {
	h := startHub(t)

	slow := fakeClient(h, "alice", 1)
	fast := fakeClient(h, "alice", 4)
	register(t, h, slow, fast)
	require.Eventually(t, func() bool { return h.ConnectionCount("alice") == 2 }, time.Second, time.Millisecond)

	h.NotifyUser("alice")
	h.NotifyUser("alice")

	require.Eventually(t, func() bool { return h.ConnectionCount("alice") == 1 }, time.Second, time.Millisecond)

	// the slow client's channel is closed after its buffered signal
	<-slow.send
	_, open := <-slow.send
	assert.False(t, open)

	assert.Len(t, fast.send, 2)
}

func TestLifecycleCallbacks(t *testing.T) {
	h := NewHub(zap.NewNop())
	first := make(chan string, 1)
	gone := make(chan string, 1)
	h.OnUserFirstConnect(func(userID string) { first <- userID })
	h.OnUserFullyDisconnected(func(userID string) { gone <- userID })
	go h.Run()
	defer h.Shutdown()

	c1, c2 := fakeClient(h, "alice", 1), fakeClient(h, "alice", 1)
	register(t, h, c1, c2)
	assert.Equal(t, "alice", <-first)

	h.unregisterClient(c1)
	h.unregisterClient(c2)
	assert.Equal(t, "alice", <-gone)
	assert.Zero(t, h.ConnectionCount("alice"))
	assert.Empty(t, first)
}

func TestShutdown(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	c := fakeClient(h, "alice", 1)
	register(t, h, c)
	require.Eventually(t, func() bool { return h.ConnectionCount("alice") == 1 }, time.Second, time.Millisecond)

	h.Shutdown()
	_, open := <-c.send
	assert.False(t, open)

	assert.False(t, h.Register(fakeClient(h, "bob", 1)))
	assert.NotPanics(t, h.Shutdown)
}

func TestRegistrationRacingShutdownIsClosed(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.Shutdown()

	// Run had already taken this client off the register channel
	late := fakeClient(h, "alice", 1)
	h.addClient(late)

	_, open := <-late.send
	assert.False(t, open)
	assert.Zero(t, h.ConnectionCount("alice"))

	// the late client's read pump still unregisters without blocking or
	// closing send a second time
	assert.NotPanics(t, func() { h.unregisterClient(late) })
}
