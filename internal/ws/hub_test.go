package ws

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

// wsTestServer upgrades every request and registers the connection for
// the user named in the path, running both pumps like the handler does.
func wsTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimPrefix(r.URL.Path, "/ws/")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn, userID)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return &event
}

func TestSendToUser_ReachesAllOfTheUsersConnections(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	srv := wsTestServer(t, hub)
	defer srv.Close()

	first := dial(t, srv, "user-1")
	defer first.Close()
	second := dial(t, srv, "user-1")
	defer second.Close()

	// registration goes through the hub loop; give it a beat
	time.Sleep(50 * time.Millisecond)

	hub.SendToUser("user-1", &Event{
		Type:    EventDraftSaved,
		Payload: map[string]string{"question_id": "q-1"},
	})

	for _, conn := range []*websocket.Conn{first, second} {
		event := readEvent(t, conn)
		assert.Equal(t, EventDraftSaved, event.Type)
		payload := event.Payload.(map[string]interface{})
		assert.Equal(t, "q-1", payload["question_id"])
	}
}

func TestSendToUser_DoesNotLeakToOtherUsers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	srv := wsTestServer(t, hub)
	defer srv.Close()

	target := dial(t, srv, "user-1")
	defer target.Close()
	bystander := dial(t, srv, "user-2")
	defer bystander.Close()

	time.Sleep(50 * time.Millisecond)

	hub.SendToUser("user-1", &Event{Type: EventMaterialPublished})

	event := readEvent(t, target)
	assert.Equal(t, EventMaterialPublished, event.Type)

	// The other user's connection stays silent
	require.NoError(t, bystander.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := bystander.ReadMessage()
	assert.Error(t, err)
}

func TestSendToUser_NoConnectionsIsANoop(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	// Must not block or panic with nobody registered
	hub.SendToUser("user-ghost", &Event{Type: EventDraftSaved})
}
