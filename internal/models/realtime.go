package models

import "encoding/json"

// Relay event names. Outbound events are emitted by the client, new_message
// is the only inbound push.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventNewMessage  = "new_message"
)

// Envelope is the wire frame for every relay event: a name plus a payload
// decoded lazily by the receiver.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RoomEvent is the payload of join_room and leave_room.
type RoomEvent struct {
	Room string `json:"room"`
}

// SendEvent is the payload of send_message: a fire-and-forget fan-out
// request. The relay does not persist it; the REST send path does.
type SendEvent struct {
	Room     string `json:"room"`
	Sender   int    `json:"sender"`
	Receiver int    `json:"receiver"`
	Text     string `json:"text"`
}

// Message pushed by the relay decodes directly into Message via the
// new_message payload, which carries from/to/text/time.

// WrapEvent marshals a payload into an Envelope ready for the wire.
func WrapEvent(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}
