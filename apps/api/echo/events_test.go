package echoapi

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/state"
)

func TestEventsAPI(t *testing.T) {
	app, env := setup(t)
	srv := httptest.NewServer(app)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return app.hub.count() == 1 }, time.Second, 10*time.Millisecond)

	read := func() state.Event {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var e state.Event
		require.NoError(t, json.Unmarshal(data, &e))
		return e
	}

	b := env.AddBus(t, "Coach", 50)
	assert.Equal(t, state.Event{Kind: state.Added, Collection: "buses", ID: b.ID}, read())

	m := env.AddMovement(t, movement.Monday, "CS101", 30)
	assert.Equal(t, state.Event{Kind: state.Added, Collection: "movements", ID: m.ID}, read())

	_, err = env.Planner.Delete(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, state.Event{Kind: state.Removed, Collection: "movements", ID: m.ID}, read())

	// closing the hub disconnects the clients
	app.hub.close()
	assert.Equal(t, 0, app.hub.count())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestEventHub_slowClient(t *testing.T) {
	hub := newEventHub(nil)
	c := &eventClient{hub: hub, send: make(chan []byte, 1)}
	require.True(t, hub.register(c))

	hub.broadcast(state.Event{Kind: state.Loaded, Collection: "buses"})
	assert.Equal(t, 1, hub.count())

	// the buffer is full: the client is dropped instead of blocking the publisher
	hub.broadcast(state.Event{Kind: state.Loaded, Collection: "rooms"})
	assert.Equal(t, 0, hub.count())

	hub.close()
	assert.False(t, hub.register(&eventClient{hub: hub, send: make(chan []byte, 1)}))
}
