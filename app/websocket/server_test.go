package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHub starts the hub loop, serves the upgrade handler over httptest
// and connects one real client
func newTestHub(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()

	s := NewServer(0)
	go s.run()

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Registration happens on the hub goroutine after the upgrade
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	return s, conn
}

func TestBroadcastDeliversRunSummary(t *testing.T) {
	s, conn := newTestHub(t)

	s.Broadcast(TypeRunSummary, map[string]interface{}{
		"run_id":      "run-1",
		"restaurants": 3,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeRunSummary, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Contains(t, string(msg.Data), "run-1")
}

func TestBroadcastDeliversNotification(t *testing.T) {
	s, conn := newTestHub(t)

	s.Broadcast(TypeNotification, map[string]interface{}{"title": "Draft order created"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeNotification, msg.Type)
}
