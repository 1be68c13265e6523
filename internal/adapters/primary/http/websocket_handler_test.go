package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/certdrive/realtime-gateway/internal/adapters/primary/websocket"
	"github.com/certdrive/realtime-gateway/internal/auth"
	"github.com/certdrive/realtime-gateway/internal/config"
	"github.com/certdrive/realtime-gateway/internal/core/domain"
)

const testSecret = "test-secret-that-is-long-enough!"

type gatewayFixture struct {
	hub    *wsAdapter.Hub
	tm     *auth.TokenManager
	server *httptest.Server
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	logger := newTestLogger()
	hub := wsAdapter.NewHub(logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	tm := auth.NewTokenManager(testSecret, time.Hour)
	cfg := &config.Config{
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		App: config.AppConfig{Environment: "development"},
	}

	handler := NewWebSocketHandler(hub, tm, cfg, logger)

	r := chi.NewRouter()
	r.Get("/ws", handler.ServeHTTP)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &gatewayFixture{hub: hub, tm: tm, server: server}
}

// dial opens a websocket connection, optionally authenticated as userID.
func (f *gatewayFixture) dial(t *testing.T, userID string) *gws.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	if userID != "" {
		token, err := f.tm.GenerateToken(userID, "driver")
		require.NoError(t, err)
		wsURL += "?token=" + token
	}

	conn, resp, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readEvent(t *testing.T, conn *gws.Conn) wireEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event wireEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func assertNoEvent(t *testing.T, conn *gws.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var event wireEvent
	err := conn.ReadJSON(&event)
	assert.Error(t, err, "expected no event, got %+v", event)
}

func TestWebSocketHandler_RejectsInvalidToken(t *testing.T) {
	f := newGatewayFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=garbage"
	conn, resp, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	if conn != nil {
		_ = conn.Close()
	}
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketHandler_PresenceLifecycle(t *testing.T) {
	f := newGatewayFixture(t)

	conn := f.dial(t, "drv_1001")

	require.Eventually(t, func() bool {
		return f.hub.IsUserOnline("drv_1001")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, f.hub.ConnectedUsersCount())

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return !f.hub.IsUserOnline("drv_1001")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, f.hub.ConnectedUsersCount())
}

func TestWebSocketHandler_ApplicationUpdateScenario(t *testing.T) {
	f := newGatewayFixture(t)

	// u1 connects and joins the application room.
	u1 := f.dial(t, "u1")
	require.Eventually(t, func() bool {
		return f.hub.IsUserOnline("u1")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, u1.WriteJSON(map[string]interface{}{
		"type":    "joinRoom",
		"payload": map[string]string{"room": "application:42", "userId": "u1"},
	}))

	ack := readEvent(t, u1)
	assert.Equal(t, "roomJoined", ack.Type)
	assert.JSONEq(t, `{"room":"application:42"}`, string(ack.Payload))

	// u2 connects and emits an application update for u1.
	u2 := f.dial(t, "u2")
	require.Eventually(t, func() bool {
		return f.hub.IsUserOnline("u2")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, u2.WriteJSON(map[string]interface{}{
		"type": "applicationUpdate",
		"payload": map[string]string{
			"applicationId": "42",
			"driverId":      "u1",
			"status":        "approved",
		},
	}))

	// u1 receives the event exactly twice: targeted plus room broadcast.
	for i := 0; i < 2; i++ {
		event := readEvent(t, u1)
		assert.Equal(t, "applicationStatusChanged", event.Type)
		assert.JSONEq(t, `{"applicationId":"42","driverId":"u1","status":"approved"}`, string(event.Payload))
	}
	assertNoEvent(t, u1)

	// u2 is not a room member and not the driver: nothing arrives.
	assertNoEvent(t, u2)
}

func TestWebSocketHandler_AnonymousConnection(t *testing.T) {
	f := newGatewayFixture(t)

	// No token: the connection is anonymous but can still join rooms.
	conn := f.dial(t, "")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "joinRoom",
		"payload": map[string]string{"room": "hiring:metro"},
	}))

	ack := readEvent(t, conn)
	assert.Equal(t, "roomJoined", ack.Type)

	// Anonymous connections receive room broadcasts.
	f.hub.BroadcastToRoom("hiring:metro", "positionsOpened", map[string]int{"count": 2})

	event := readEvent(t, conn)
	assert.Equal(t, "positionsOpened", event.Type)

	// But they are not in the presence registry.
	assert.Equal(t, 0, f.hub.ConnectedUsersCount())
}

func TestWebSocketHandler_NotificationDelivery(t *testing.T) {
	f := newGatewayFixture(t)

	conn := f.dial(t, "drv_1001")
	require.Eventually(t, func() bool {
		return f.hub.IsUserOnline("drv_1001")
	}, 2*time.Second, 10*time.Millisecond)

	f.hub.RouteNotification(domain.NotificationPayload{
		UserID:  "drv_1001",
		Message: "Your medical check was verified",
		Type:    "info",
	})

	event := readEvent(t, conn)
	assert.Equal(t, "notification", event.Type)

	var payload struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "Your medical check was verified", payload.Message)
	assert.Equal(t, "info", payload.Type)

	_, err := time.Parse(time.RFC3339, payload.Timestamp)
	assert.NoError(t, err)
}
