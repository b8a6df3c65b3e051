package realtime_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sapcca/client/internal/models"
	"sapcca/client/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relayStub is a one-connection relay: it records outbound client events and
// can push inbound ones.
type relayStub struct {
	srv *httptest.Server

	mu     sync.Mutex
	conn   *websocket.Conn
	events []models.Envelope
	ready  chan struct{}
}

func newRelayStub(t *testing.T) *relayStub {
	t.Helper()
	stub := &relayStub{ready: make(chan struct{})}
	upgrader := websocket.Upgrader{}

	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		stub.mu.Lock()
		stub.conn = conn
		stub.mu.Unlock()
		close(stub.ready)

		for {
			var env models.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			stub.mu.Lock()
			stub.events = append(stub.events, env)
			stub.mu.Unlock()
		}
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

func (s *relayStub) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *relayStub) push(t *testing.T, msg models.Message) {
	t.Helper()
	select {
	case <-s.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("relay stub never saw a connection")
	}
	env, err := models.WrapEvent(models.EventNewMessage, msg)
	require.NoError(t, err)
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NoError(t, s.conn.WriteJSON(env))
}

// eventNames waits until at least n events arrived and returns their names
// with decoded rooms.
func (s *relayStub) eventNames(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		if len(s.events) >= n {
			names := make([]string, 0, len(s.events))
			for _, env := range s.events {
				var room models.RoomEvent
				_ = json.Unmarshal(env.Data, &room)
				names = append(names, env.Event+":"+room.Room)
			}
			s.mu.Unlock()
			return names
		}
		s.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("relay stub saw %d events, wanted %d", len(s.events), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestChannel_JoinLeavesPreviousRoomFirst(t *testing.T) {
	stub := newRelayStub(t)
	ch := realtime.NewChannel(stub.url())
	require.NoError(t, ch.Connect())
	defer ch.Close()

	ch.JoinRoom("chat_5_9")
	ch.JoinRoom("chat_5_11")

	got := stub.eventNames(t, 3)
	assert.Equal(t, []string{
		"join_room:chat_5_9",
		"leave_room:chat_5_9",
		"join_room:chat_5_11",
	}, got)
	assert.Equal(t, "chat_5_11", ch.CurrentRoom())
}

func TestChannel_JoinSameRoomIsIdempotent(t *testing.T) {
	stub := newRelayStub(t)
	ch := realtime.NewChannel(stub.url())
	require.NoError(t, ch.Connect())
	defer ch.Close()

	ch.JoinRoom("chat_5_9")
	ch.JoinRoom("chat_5_9")

	got := stub.eventNames(t, 1)
	assert.Equal(t, []string{"join_room:chat_5_9"}, got)
}

func TestChannel_LeaveRoomNoOpWhenNotMember(t *testing.T) {
	stub := newRelayStub(t)
	ch := realtime.NewChannel(stub.url())
	require.NoError(t, ch.Connect())
	defer ch.Close()

	ch.JoinRoom("chat_5_9")
	ch.LeaveRoom("chat_5_11") // not a member, must not emit anything
	ch.LeaveRoom("chat_5_9")

	got := stub.eventNames(t, 2)
	assert.Equal(t, []string{"join_room:chat_5_9", "leave_room:chat_5_9"}, got)
	assert.Empty(t, ch.CurrentRoom())
}

func TestChannel_SendMessagePayload(t *testing.T) {
	stub := newRelayStub(t)
	ch := realtime.NewChannel(stub.url())
	require.NoError(t, ch.Connect())
	defer ch.Close()

	ch.SendMessage("chat_5_9", 5, 9, "hello")

	stub.eventNames(t, 1)
	stub.mu.Lock()
	env := stub.events[0]
	stub.mu.Unlock()

	assert.Equal(t, models.EventSendMessage, env.Event)
	var payload models.SendEvent
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, models.SendEvent{Room: "chat_5_9", Sender: 5, Receiver: 9, Text: "hello"}, payload)
}

func TestChannel_DispatchesInboundPush(t *testing.T) {
	stub := newRelayStub(t)
	ch := realtime.NewChannel(stub.url())

	received := make(chan models.Message, 1)
	ch.OnMessage(func(m models.Message) { received <- m })
	require.NoError(t, ch.Connect())
	defer ch.Close()

	ch.JoinRoom("chat_5_9")
	stub.push(t, models.Message{From: 9, To: 5, Text: "hi", Time: "2026-01-02T10:00:00"})

	select {
	case msg := <-received:
		assert.Equal(t, 9, msg.From)
		assert.Equal(t, "hi", msg.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("push never reached the handler")
	}
}

func TestChannel_ConnectIsIdempotent(t *testing.T) {
	stub := newRelayStub(t)
	ch := realtime.NewChannel(stub.url())
	require.NoError(t, ch.Connect())
	defer ch.Close()

	require.NoError(t, ch.Connect())
	assert.True(t, ch.Connected())
}

func TestChannel_DegradedModeIsSilent(t *testing.T) {
	ch := realtime.NewChannel("ws://127.0.0.1:1/ws")
	err := ch.Connect()
	require.Error(t, err)

	// Everything must be a safe no-op without a transport, and no
	// membership may be recorded for a room that was never subscribed.
	ch.JoinRoom("chat_5_9")
	assert.Empty(t, ch.CurrentRoom())

	ch.SendMessage("chat_5_9", 5, 9, "hello")
	ch.LeaveRoom("chat_5_9")
	ch.Close()

	assert.False(t, ch.Connected())
	assert.Empty(t, ch.CurrentRoom())
}
