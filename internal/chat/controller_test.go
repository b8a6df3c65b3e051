package chat_test

import (
	"context"
	"testing"
	"time"

	"sapcca/client/internal/api"
	"sapcca/client/internal/chat"
	"sapcca/client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const selfID = 5

var peer = models.Contact{ID: 9, DisplayName: "Grace"}

type harness struct {
	gateway *MockGateway
	relay   *fakeRelay
	ctrl    *chat.Controller
	snaps   chan chat.Snapshot
	cancel  context.CancelFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		gateway: new(MockGateway),
		relay:   &fakeRelay{},
		snaps:   make(chan chat.Snapshot, 32),
	}
	h.ctrl = chat.NewController(selfID, h.gateway, h.relay, func(s chat.Snapshot) {
		h.snaps <- s
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go h.ctrl.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func (h *harness) next(t *testing.T) chat.Snapshot {
	t.Helper()
	select {
	case s := <-h.snaps:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot rendered in time")
		return chat.Snapshot{}
	}
}

// nextOpen skips intermediate snapshots until the controller reaches Open.
func (h *harness) nextOpen(t *testing.T) chat.Snapshot {
	t.Helper()
	for {
		s := h.next(t)
		if s.State == chat.StateOpen {
			return s
		}
	}
}

// quietT is a mock.TestingT that swallows failures, so mock assertions can
// be polled without failing the test.
type quietT struct{}

func (quietT) Logf(string, ...interface{})   {}
func (quietT) Errorf(string, ...interface{}) {}
func (quietT) FailNow()                      {}

// waitForGatewayCalls blocks until the gateway has recorded n calls of
// method. The controller runs its fetches on their own goroutines, so this
// pins down which expectation a WaitUntil-blocked call has consumed before
// the test registers another expectation for the same method and arguments.
func (h *harness) waitForGatewayCalls(t *testing.T, method string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.gateway.AssertNumberOfCalls(quietT{}, method, n) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("gateway %s was not called %d times in time", method, n)
}

func texts(messages []models.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Text)
	}
	return out
}

func TestController_OpenLoadsHistoryInServerOrder(t *testing.T) {
	h := newHarness(t)
	history := []models.Message{
		{ID: 1, From: 5, To: 9, Text: "first", Time: "t1"},
		{ID: 2, From: 9, To: 5, Text: "second", Time: "t2"},
	}
	h.gateway.On("ChatHistory", mock.Anything, 9).Return(history, nil).Once()

	h.ctrl.Open(peer)

	opening := h.next(t)
	assert.Equal(t, chat.StateOpening, opening.State)
	assert.Equal(t, "chat_5_9", opening.RoomKey)
	assert.Empty(t, opening.Messages)

	open := h.nextOpen(t)
	assert.Equal(t, []string{"first", "second"}, texts(open.Messages))
	assert.NoError(t, open.Err)

	assert.Equal(t, []string{"join:chat_5_9"}, h.relay.calls())
}

func TestController_OpenSwitchDiscardsStaleHistory(t *testing.T) {
	h := newHarness(t)
	release := make(chan time.Time)

	// The fetch for peer 9 resolves only after peer 11 is already open.
	h.gateway.On("ChatHistory", mock.Anything, 9).
		WaitUntil(release).
		Return([]models.Message{{From: 9, To: 5, Text: "stale", Time: "t0"}}, nil).Once()
	h.gateway.On("ChatHistory", mock.Anything, 11).
		Return([]models.Message{{From: 11, To: 5, Text: "fresh", Time: "t1"}}, nil).Once()

	h.ctrl.Open(peer)
	h.next(t) // Opening for 9

	other := models.Contact{ID: 11, DisplayName: "Linus"}
	h.ctrl.Open(other)
	h.next(t) // Opening for 11

	open := h.nextOpen(t)
	assert.Equal(t, 11, open.Peer.ID)
	assert.Equal(t, []string{"fresh"}, texts(open.Messages))

	// Now let the slow fetch resolve; it must not be rendered into the
	// new conversation.
	close(release)
	h.ctrl.HandlePush(models.Message{From: 11, To: 5, Text: "live", Time: "t2"})
	after := h.next(t)
	assert.Equal(t, 11, after.Peer.ID)
	assert.Equal(t, []string{"fresh", "live"}, texts(after.Messages))

	// Membership moved with the conversation: the channel was asked to
	// join each room exactly once, in order.
	assert.Equal(t, []string{"join:chat_5_9", "join:chat_5_11"}, h.relay.calls())
}

func TestController_SlowOpenFetchDoesNotOverwriteSendReload(t *testing.T) {
	h := newHarness(t)
	release := make(chan time.Time)

	// The conversation's initial fetch resolves only after a send has
	// already reloaded the history.
	h.gateway.On("ChatHistory", mock.Anything, 9).
		WaitUntil(release).
		Return([]models.Message{}, nil).Once()

	h.ctrl.Open(peer)
	h.next(t) // Opening
	// Make sure the blocked expectation above was consumed by the open
	// fetch before registering a second ChatHistory expectation for the
	// same peer.
	h.waitForGatewayCalls(t, "ChatHistory", 1)

	h.gateway.On("SendMessage", mock.Anything, 9, "hello").
		Return(api.SendReceipt{ID: 1, Timestamp: "t1"}, nil).Once()
	h.gateway.On("ChatHistory", mock.Anything, 9).
		Return([]models.Message{{ID: 1, From: 5, To: 9, Text: "hello", Time: "t1"}}, nil).Once()

	h.ctrl.Send("hello")
	reloaded := h.nextOpen(t)
	assert.Equal(t, []string{"hello"}, texts(reloaded.Messages))

	// The pre-send fetch resolves late; it must not roll the list back to
	// the empty pre-send history.
	close(release)
	h.ctrl.HandlePush(models.Message{From: 9, To: 5, Text: "reply", Time: "t2"})
	after := h.next(t)
	assert.Equal(t, []string{"hello", "reply"}, texts(after.Messages))
}

func TestController_EnqueueNeverBlocksAfterShutdown(t *testing.T) {
	h := newHarness(t)
	h.cancel()

	// Well past the event buffer's capacity; every call must return even
	// though nothing consumes the channel anymore.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.ctrl.HandlePush(models.Message{From: 9, To: 5, Text: "late", Time: "t0"})
		}
		h.ctrl.Send("late")
		h.ctrl.Close()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked after the reducer stopped")
	}
}

func TestController_HistoryFailureOpensEmptyWithError(t *testing.T) {
	h := newHarness(t)
	h.gateway.On("ChatHistory", mock.Anything, 9).
		Return(nil, &api.APIError{Status: 500, Message: "boom"}).Once()

	h.ctrl.Open(peer)
	h.next(t) // Opening

	open := h.nextOpen(t)
	assert.Error(t, open.Err)
	assert.Empty(t, open.Messages)
}

func TestController_PushFiltering(t *testing.T) {
	h := newHarness(t)
	h.gateway.On("ChatHistory", mock.Anything, 9).
		Return([]models.Message{{From: 9, To: 5, Text: "old", Time: "t0"}}, nil).Once()

	h.ctrl.Open(peer)
	h.next(t)
	h.nextOpen(t)

	// A push for a different room, one from the user themselves, and a
	// duplicate of a history message are all dropped without a render.
	h.ctrl.HandlePush(models.Message{From: 7, To: 5, Text: "wrong room", Time: "t1"})
	h.ctrl.HandlePush(models.Message{From: 5, To: 9, Text: "own echo", Time: "t1"})
	h.ctrl.HandlePush(models.Message{From: 9, To: 5, Text: "old", Time: "t0"})

	// This one qualifies.
	h.ctrl.HandlePush(models.Message{From: 9, To: 5, Text: "new", Time: "t2"})

	s := h.next(t)
	assert.Equal(t, []string{"old", "new"}, texts(s.Messages))

	// And a second delivery of the same push renders nothing further.
	h.ctrl.HandlePush(models.Message{From: 9, To: 5, Text: "new", Time: "t2"})
	h.ctrl.HandlePush(models.Message{From: 9, To: 5, Text: "tail", Time: "t3"})
	s = h.next(t)
	assert.Equal(t, []string{"old", "new", "tail"}, texts(s.Messages))
}

func TestController_PushWhileIdleIsDropped(t *testing.T) {
	h := newHarness(t)
	h.ctrl.HandlePush(models.Message{From: 9, To: 5, Text: "early", Time: "t0"})

	// Open afterwards; the dropped push must not resurface.
	h.gateway.On("ChatHistory", mock.Anything, 9).Return([]models.Message{}, nil).Once()
	h.ctrl.Open(peer)
	h.next(t)
	open := h.nextOpen(t)
	assert.Empty(t, open.Messages)
}

func TestController_SendWhitespaceIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.gateway.On("ChatHistory", mock.Anything, 9).Return([]models.Message{}, nil).Once()

	h.ctrl.Open(peer)
	h.next(t)
	h.nextOpen(t)

	h.ctrl.Send("   \t  ")

	// Drive one more transition through the reducer so the send event has
	// definitely been consumed before asserting.
	h.ctrl.HandlePush(models.Message{From: 9, To: 5, Text: "x", Time: "t1"})
	h.next(t)

	h.gateway.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_SendWhileIdleIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Send("hello")

	h.gateway.On("ChatHistory", mock.Anything, 9).Return([]models.Message{}, nil).Once()
	h.ctrl.Open(peer)
	h.next(t)
	h.nextOpen(t)

	h.gateway.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_SendPersistsFansOutAndReloads(t *testing.T) {
	h := newHarness(t)
	h.gateway.On("ChatHistory", mock.Anything, 9).
		Return([]models.Message{}, nil).Once()

	h.ctrl.Open(peer)
	h.next(t)
	h.nextOpen(t)

	h.gateway.On("SendMessage", mock.Anything, 9, "hello").
		Return(api.SendReceipt{ID: 42, Timestamp: "t1"}, nil).Once()
	h.gateway.On("ChatHistory", mock.Anything, 9).
		Return([]models.Message{{ID: 42, From: 5, To: 9, Text: "hello", Time: "t1"}}, nil).Once()

	h.ctrl.Send("  hello  ")

	reloaded := h.nextOpen(t)
	assert.Equal(t, []string{"hello"}, texts(reloaded.Messages))

	h.gateway.AssertExpectations(t)
	assert.Equal(t, []string{"join:chat_5_9", "send:chat_5_9:hello"}, h.relay.calls())
}

func TestController_SendFailureSurfacesErrorWithoutFanOut(t *testing.T) {
	h := newHarness(t)
	h.gateway.On("ChatHistory", mock.Anything, 9).Return([]models.Message{}, nil).Once()

	h.ctrl.Open(peer)
	h.next(t)
	h.nextOpen(t)

	h.gateway.On("SendMessage", mock.Anything, 9, "hello").
		Return(api.SendReceipt{}, &api.APIError{Status: 500, Message: "down"}).Once()

	h.ctrl.Send("hello")

	s := h.next(t)
	assert.Error(t, s.Err)
	assert.Empty(t, s.Messages)
	assert.Equal(t, []string{"join:chat_5_9"}, h.relay.calls(), "no fan-out after a failed persist")
}

func TestController_CloseLeavesRoomAndGoesIdle(t *testing.T) {
	h := newHarness(t)
	h.gateway.On("ChatHistory", mock.Anything, 9).Return([]models.Message{}, nil).Once()

	h.ctrl.Open(peer)
	h.next(t)
	h.nextOpen(t)

	h.ctrl.Close()
	s := h.next(t)
	assert.Equal(t, chat.StateIdle, s.State)
	assert.Empty(t, s.RoomKey)
	assert.Equal(t, []string{"join:chat_5_9", "leave:chat_5_9"}, h.relay.calls())
}
