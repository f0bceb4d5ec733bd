package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialChannel(t *testing.T, server *httptest.Server, channelID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + channelID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestBridgeForwardsToSubscribedChannelOnly(t *testing.T) {
	bridge := NewBridge()

	r := chi.NewRouter()
	r.Get("/ws/{channelId}", bridge.HandleSubscribe)
	server := httptest.NewServer(r)
	defer server.Close()

	connA := dialChannel(t, server, "chan-a")
	defer connA.Close()
	connB := dialChannel(t, server, "chan-b")
	defer connB.Close()

	// Registration happens during the upgrade handshake, so both are live.
	bridge.fanOut("chan-a", []byte(`{"event":"turn_chunk","data":{"chunk":"Hi","done":false}}`))

	connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := connA.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"chunk":"Hi"`)

	// The other channel sees nothing.
	connB.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err)
}

func TestBridgeDropsClosedSubscribers(t *testing.T) {
	bridge := NewBridge()

	r := chi.NewRouter()
	r.Get("/ws/{channelId}", bridge.HandleSubscribe)
	server := httptest.NewServer(r)
	defer server.Close()

	conn := dialChannel(t, server, "chan-a")
	conn.Close()

	// Give the read loop a moment to notice the close.
	require.Eventually(t, func() bool {
		bridge.mu.Lock()
		defer bridge.mu.Unlock()
		return len(bridge.subs["chan-a"]) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Publishing into an empty channel is a no-op, not a panic.
	bridge.fanOut("chan-a", []byte(`{}`))
}
