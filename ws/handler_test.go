package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// tokens are the user id itself
type fakeValidator struct{}

func (fakeValidator) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	if token == "bad" {
		return nil, errors.New("invalid")
	}
	return &models.TokenClaims{UserID: token}, nil
}

func newTestServer(t *testing.T, opts Options) (*Hub, string) {
	t.Helper()
	hub := startHub(t)
	h := NewHandler(hub, fakeValidator{}, opts, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, base, token string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandlerBroadcastReachesEveryConnectionOfUser(t *testing.T) {
	hub, base := newTestServer(t, Options{PingInterval: time.Minute, PongWait: 2 * time.Minute})

	alice := []*websocket.Conn{dial(t, base, "alice"), dial(t, base, "alice"), dial(t, base, "alice")}
	bob := dial(t, base, "bob")

	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alice") == 3 && hub.ConnectionCount("bob") == 1
	}, 2*time.Second, 5*time.Millisecond)

	hub.NotifyUser("alice")

	for _, conn := range alice {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		mt, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, mt)
		assert.Equal(t, SignalNewActivity, string(msg))
	}

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's signal")
}

func TestHandlerRejectsBadToken(t *testing.T) {
	_, base := newTestServer(t, Options{PingInterval: time.Minute, PongWait: 2 * time.Minute})

	_, resp, err := websocket.DefaultDialer.Dial(base+"?token=bad", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlerSendsPingsAndUnregistersOnClose(t *testing.T) {
	hub, base := newTestServer(t, Options{PingInterval: 20 * time.Millisecond, PongWait: time.Second})

	conn := dial(t, base, "alice")
	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})

	// reading drives control frame handling
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping from server")
	}

	require.Eventually(t, func() bool { return hub.ConnectionCount("alice") == 1 }, time.Second, 5*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount("alice") == 0 }, 2*time.Second, 5*time.Millisecond)
}
