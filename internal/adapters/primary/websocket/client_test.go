package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certdrive/realtime-gateway/internal/core/domain"
)

func TestClient_HandleIncomingMessage(t *testing.T) {
	t.Run("joinRoom message joins and acks", func(t *testing.T) {
		h := newTestHub()
		c := newTestClient(h, "drv_1001")
		h.registerClient(c)

		c.handleIncomingMessage([]byte(`{"type":"joinRoom","payload":{"room":"application:42","userId":"drv_1001"}}`))

		events := drainEvents(c)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventRoomJoined, events[0].Type)
		assert.Equal(t, 1, h.ClientsInRoom("application:42"))
	})

	t.Run("jobRequestUpdate message routes to recipients", func(t *testing.T) {
		h := newTestHub()
		sender := newTestClient(h, "emp_42")
		driver := newTestClient(h, "drv_1001")
		h.registerClient(sender)
		h.registerClient(driver)

		sender.handleIncomingMessage([]byte(`{"type":"jobRequestUpdate","payload":{"jobRequestId":"jr_7","status":"offered","driverId":"drv_1001"}}`))

		events := drainEvents(driver)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventJobRequestStatusChanged, events[0].Type)
		assert.Empty(t, drainEvents(sender))
	})

	t.Run("applicationUpdate message triggers dual delivery", func(t *testing.T) {
		h := newTestHub()
		sender := newTestClient(h, "emp_42")
		driver := newTestClient(h, "drv_1001")
		h.registerClient(sender)
		h.registerClient(driver)
		h.JoinRoom(driver, domain.JoinRoomPayload{Room: "application:42", UserID: "drv_1001"})
		drainEvents(driver)

		sender.handleIncomingMessage([]byte(`{"type":"applicationUpdate","payload":{"applicationId":"42","status":"approved","driverId":"drv_1001"}}`))

		events := drainEvents(driver)
		require.Len(t, events, 2)
		for _, event := range events {
			assert.Equal(t, domain.EventApplicationStatusChanged, event.Type)
		}
		assert.Empty(t, drainEvents(sender))
	})

	t.Run("sendNotification message is fire-and-forget", func(t *testing.T) {
		h := newTestHub()
		sender := newTestClient(h, "adm_1")
		h.registerClient(sender)

		// Target is offline: nothing is sent and the sender gets no error.
		sender.handleIncomingMessage([]byte(`{"type":"sendNotification","payload":{"userId":"drv_offline","message":"hi","type":"info"}}`))
		assert.Empty(t, drainEvents(sender))
	})

	t.Run("malformed messages are dropped without panic", func(t *testing.T) {
		h := newTestHub()
		c := newTestClient(h, "drv_1001")
		h.registerClient(c)

		c.handleIncomingMessage([]byte(`not json`))
		c.handleIncomingMessage([]byte(`{"type":"joinRoom","payload":"not an object"}`))
		c.handleIncomingMessage([]byte(`{"type":"applicationUpdate","payload":{"status":"approved"}}`))
		c.handleIncomingMessage([]byte(`{"type":"somethingElse","payload":{}}`))

		assert.Empty(t, drainEvents(c))
		assert.Equal(t, 0, h.RoomCount())
	})
}

func TestClient_RoomBookkeeping(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, "drv_1001")

	c.AddRoom("a")
	c.AddRoom("b")
	assert.True(t, c.InRoom("a"))
	assert.ElementsMatch(t, []string{"a", "b"}, c.Rooms())

	c.RemoveRoom("a")
	assert.False(t, c.InRoom("a"))
	assert.ElementsMatch(t, []string{"b"}, c.Rooms())
}

func TestClient_CloseSendIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, "drv_1001")

	c.CloseSend()
	c.CloseSend() // must not panic

	_, open := <-c.Send
	assert.False(t, open)
}
