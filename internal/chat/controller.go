// Package chat owns the active conversation: it reconciles the one-shot
// REST history with the relay's live push stream and mediates outbound
// sends.
//
// All state lives on a single reducer goroutine fed by an event channel, so
// the open/close/push/send state machine is testable without any UI. The
// rendered sequence is always the last fetched history followed by the live
// messages that arrived after it, with duplicate identities collapsed.
package chat

import (
	"context"
	"strings"

	"sapcca/client/internal/api"
	"sapcca/client/internal/models"
)

// Gateway is the REST slice the controller needs; *api.Client satisfies it.
type Gateway interface {
	ChatHistory(ctx context.Context, peerID int) ([]models.Message, error)
	SendMessage(ctx context.Context, receiverID int, text string) (api.SendReceipt, error)
}

// Relay is the room-membership slice of the real-time channel;
// *realtime.Channel satisfies it.
type Relay interface {
	JoinRoom(room string)
	LeaveRoom(room string)
	SendMessage(room string, sender, receiver int, text string)
}

// State is the conversation lifecycle phase.
type State int

const (
	// StateIdle: no conversation open.
	StateIdle State = iota
	// StateOpening: a peer is selected and the history fetch is in flight.
	StateOpening
	// StateOpen: history resolved (or failed); live pushes are appended.
	StateOpen
)

// Snapshot is an immutable copy of the controller state handed to the
// render callback after every transition.
type Snapshot struct {
	State    State
	Peer     models.Contact
	RoomKey  string
	Messages []models.Message
	// Err is the most recent fetch or send failure, cleared by the next
	// successful transition. Surfaced as a notification, never retried.
	Err error
}

type conversation struct {
	peer     models.Contact
	roomKey  string
	messages []models.Message
	seen     map[string]struct{}
}

// Internal events. Everything that mutates state arrives here.
type event interface{}

type openEvent struct{ peer models.Contact }

type closeEvent struct{}

type sendEvent struct{ text string }

type pushEvent struct{ msg models.Message }

// historyEvent carries the conversation generation and the per-fetch
// sequence its fetch was started under. A result is applied only when both
// are still current, so neither a fetch for a previous conversation nor an
// older fetch within the same conversation can overwrite a newer list.
type historyEvent struct {
	gen      uint64
	seq      uint64
	messages []models.Message
	err      error
}

// sentEvent reports a successful REST persist; the reducer answers it with a
// fresh history fetch.
type sentEvent struct {
	gen uint64
}

type errorEvent struct {
	gen uint64
	err error
}

// Controller runs the chat session state machine.
type Controller struct {
	self    int
	gateway Gateway
	relay   Relay
	render  func(Snapshot)

	events chan event
	done   chan struct{}

	// Reducer-owned; touched only on the Run goroutine.
	state    State
	gen      uint64
	fetchSeq uint64
	conv     *conversation
	err      error
}

// NewController builds a controller for the authenticated user selfID.
// render may be nil; when set it is invoked on the reducer goroutine after
// every transition.
func NewController(selfID int, gateway Gateway, relay Relay, render func(Snapshot)) *Controller {
	return &Controller{
		self:    selfID,
		gateway: gateway,
		relay:   relay,
		render:  render,
		events:  make(chan event, 64),
		done:    make(chan struct{}),
		state:   StateIdle,
	}
}

// Run consumes events until ctx is cancelled. Call it exactly once, on its
// own goroutine.
func (c *Controller) Run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.reduce(ctx, ev)
		}
	}
}

// post enqueues an event, giving up once Run has returned so callers like
// the relay's read pump can never block on a stopped reducer.
func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Open replaces the active conversation with one for peer: the previous
// room is left, the new one joined, and a history fetch starts.
func (c *Controller) Open(peer models.Contact) {
	c.post(openEvent{peer: peer})
}

// Close ends the active conversation and returns to Idle.
func (c *Controller) Close() {
	c.post(closeEvent{})
}

// Send submits a message for the active conversation. Whitespace-only text
// is a no-op.
func (c *Controller) Send(text string) {
	c.post(sendEvent{text: text})
}

// HandlePush is the relay dispatch callback; wire it to the channel's
// OnMessage. Safe to call from any goroutine, even after Run has stopped.
func (c *Controller) HandlePush(msg models.Message) {
	c.post(pushEvent{msg: msg})
}

func (c *Controller) reduce(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case openEvent:
		c.gen++
		c.err = nil
		c.state = StateOpening
		roomKey := models.RoomKey(c.self, ev.peer.ID)
		c.conv = &conversation{
			peer:    ev.peer,
			roomKey: roomKey,
			seen:    make(map[string]struct{}),
		}
		// JoinRoom leaves the previous room internally, so membership
		// never spans two conversations.
		c.relay.JoinRoom(roomKey)
		c.fetchSeq++
		go c.fetchHistory(ctx, c.gen, c.fetchSeq, ev.peer.ID)

	case closeEvent:
		if c.conv != nil {
			c.relay.LeaveRoom(c.conv.roomKey)
		}
		c.gen++ // in-flight fetches for the closed conversation go stale
		c.conv = nil
		c.err = nil
		c.state = StateIdle

	case historyEvent:
		if ev.gen != c.gen || ev.seq != c.fetchSeq || c.conv == nil {
			return // a newer Open, Close or fetch superseded it; discard
		}
		c.state = StateOpen
		if ev.err != nil {
			c.err = ev.err
			c.conv.messages = nil
			c.conv.seen = make(map[string]struct{})
			break
		}
		c.err = nil
		c.conv.messages = ev.messages
		c.conv.seen = make(map[string]struct{}, len(ev.messages))
		for _, m := range ev.messages {
			c.conv.seen[m.Key()] = struct{}{}
		}

	case pushEvent:
		if !c.accepts(ev.msg) {
			return // no render, no mutation
		}
		c.conv.messages = append(c.conv.messages, ev.msg)
		c.conv.seen[ev.msg.Key()] = struct{}{}

	case sendEvent:
		text := strings.TrimSpace(ev.text)
		if text == "" || c.conv == nil {
			return
		}
		conv := c.conv
		go c.persistAndFanOut(ctx, c.gen, conv.peer.ID, conv.roomKey, text)
		return // nothing rendered until a result comes back

	case sentEvent:
		if ev.gen != c.gen || c.conv == nil {
			return // the conversation changed while the persist ran
		}
		// The reload gets a fresh sequence so any fetch still in flight
		// from before the send goes stale.
		c.fetchSeq++
		go c.fetchHistory(ctx, c.gen, c.fetchSeq, c.conv.peer.ID)
		return

	case errorEvent:
		if ev.gen != c.gen {
			return
		}
		c.err = ev.err
	}

	c.renderSnapshot()
}

// accepts filters a live push: only an Open conversation renders it, only
// for its own room, never for the user's own echoes (the send path
// reconciles those through the history reload), and never twice for the
// same identity.
func (c *Controller) accepts(msg models.Message) bool {
	if c.state != StateOpen || c.conv == nil {
		return false
	}
	if models.RoomKey(msg.From, msg.To) != c.conv.roomKey {
		return false
	}
	if msg.From == c.self {
		return false
	}
	if _, dup := c.conv.seen[msg.Key()]; dup {
		return false
	}
	return true
}

func (c *Controller) fetchHistory(ctx context.Context, gen, seq uint64, peerID int) {
	messages, err := c.gateway.ChatHistory(ctx, peerID)
	c.post(historyEvent{gen: gen, seq: seq, messages: messages, err: err})
}

// persistAndFanOut runs the dual write: REST persist first (the durable
// path), then the relay fan-out. The history reload is requested through the
// reducer so it is issued under a fresh fetch sequence.
func (c *Controller) persistAndFanOut(ctx context.Context, gen uint64, peerID int, roomKey, text string) {
	if _, err := c.gateway.SendMessage(ctx, peerID, text); err != nil {
		c.post(errorEvent{gen: gen, err: err})
		return
	}
	c.relay.SendMessage(roomKey, c.self, peerID, text)
	c.post(sentEvent{gen: gen})
}

func (c *Controller) renderSnapshot() {
	if c.render == nil {
		return
	}
	c.render(c.snapshot())
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{State: c.state, Err: c.err}
	if c.conv != nil {
		snap.Peer = c.conv.peer
		snap.RoomKey = c.conv.roomKey
		snap.Messages = append([]models.Message(nil), c.conv.messages...)
	}
	return snap
}
