package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/srm-sim/internal/contracts"
)

func TestHub_PublishOnlyToSession(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe("a")
	b := hub.Subscribe("b")
	defer a.Close()
	defer b.Close()

	n := hub.Publish(TurnEvent("a", &contracts.TurnReport{Day: 3}))
	assert.Equal(t, 1, n)

	ev := <-a.C
	assert.Equal(t, EventTurn, ev.Kind)
	assert.Equal(t, 3, ev.Report.Day)

	select {
	case <-b.C:
		t.Fatal("subscriber of another session received the event")
	default:
	}
}

func TestHub_SlowSubscriberDrops(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("s")
	defer sub.Close()

	for i := 0; i < subscriberBuffer; i++ {
		require.Equal(t, 1, hub.Publish(TurnEvent("s", &contracts.TurnReport{Day: i})))
	}
	assert.Equal(t, 0, hub.Publish(TurnEvent("s", &contracts.TurnReport{Day: 99})))
}

func TestHub_CloseSession(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("s")
	require.Equal(t, 1, hub.Subscribers("s"))

	hub.CloseSession("s")
	assert.Equal(t, 0, hub.Subscribers("s"))

	ev, ok := <-sub.C
	require.True(t, ok)
	assert.Equal(t, EventClosed, ev.Kind)

	_, ok = <-sub.C
	assert.False(t, ok)

	// Closing again after the session is gone must not panic
	sub.Close()
}

func TestHub_Serve(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "s1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(TurnEvent("s1", &contracts.TurnReport{Day: 1, Events: []string{"hello"}}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventTurn, ev.Kind)
	assert.Equal(t, "s1", ev.SessionID)
	assert.Equal(t, []string{"hello"}, ev.Report.Events)

	hub.CloseSession("s1")
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventClosed, ev.Kind)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
