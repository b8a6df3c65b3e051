// Package realtime maintains the client's single connection to the message
// relay: room-scoped subscription management and push delivery of new
// messages.
package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"sapcca/client/internal/config"
	"sapcca/client/internal/models"

	"github.com/gorilla/websocket"
)

// Handler receives every inbound new_message push. It runs on the read-pump
// goroutine; implementations must be concurrency-safe and cheap.
type Handler func(models.Message)

// Channel is the client side of the relay connection. One Channel exists per
// process; Connect is idempotent and every method degrades to a no-op when
// the relay is unreachable, so the client keeps working REST-only.
type Channel struct {
	url    string
	dialer *websocket.Dialer

	mu          sync.Mutex
	conn        *websocket.Conn
	send        chan models.Envelope
	done        chan struct{}
	connected   bool
	currentRoom string
	handler     Handler
}

// NewChannel builds a channel for the given websocket URL. No I/O happens
// until Connect.
func NewChannel(url string) *Channel {
	return &Channel{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: config.WriteWait},
	}
}

// OnMessage registers the single inbound dispatch callback. Must be called
// before Connect.
func (c *Channel) OnMessage(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// Connect establishes the transport and starts the pumps. Calling it again
// while connected is a no-op. A dial failure is returned so the caller can
// log it once; the channel stays usable in degraded mode.
func (c *Channel) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}

	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	c.conn = conn
	c.send = make(chan models.Envelope, config.SendBuffer)
	c.done = make(chan struct{})
	c.connected = true

	go c.readPump(conn, c.done)
	go c.writePump(conn, c.send, c.done)
	return nil
}

// Connected reports whether the transport is up.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// CurrentRoom returns the room this client is subscribed to, or "".
func (c *Channel) CurrentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRoom
}

// JoinRoom subscribes to room, leaving the previous room first. Leave and
// join are enqueued under one lock so no interleaving caller can observe two
// simultaneous memberships.
func (c *Channel) JoinRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Degraded mode subscribes to nothing, so it must also record nothing.
	if !c.connected || c.currentRoom == room {
		return
	}
	if c.currentRoom != "" {
		c.enqueueLocked(models.EventLeaveRoom, models.RoomEvent{Room: c.currentRoom})
	}
	c.enqueueLocked(models.EventJoinRoom, models.RoomEvent{Room: room})
	c.currentRoom = room
}

// LeaveRoom relinquishes the subscription; no-op if not a member of room.
func (c *Channel) LeaveRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.currentRoom != room {
		return
	}
	c.enqueueLocked(models.EventLeaveRoom, models.RoomEvent{Room: room})
	c.currentRoom = ""
}

// SendMessage pushes a fire-and-forget fan-out request. No acknowledgement,
// no retry; persistence is the REST path's job.
func (c *Channel) SendMessage(room string, sender, receiver int, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueueLocked(models.EventSendMessage, models.SendEvent{
		Room:     room,
		Sender:   sender,
		Receiver: receiver,
		Text:     text,
	})
}

// enqueueLocked queues an outbound event. Drops silently when degraded or
// when the write pump is saturated; callers hold c.mu.
func (c *Channel) enqueueLocked(event string, payload any) {
	if !c.connected {
		return
	}
	env, err := models.WrapEvent(event, payload)
	if err != nil {
		log.Printf("realtime: encode %s: %v", event, err)
		return
	}
	select {
	case c.send <- env:
	default:
		log.Printf("realtime: send buffer full, dropping %s", event)
	}
}

// Close tears the connection down. Safe to call when never connected.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	c.connected = false
	c.currentRoom = ""
	close(c.done)
	c.conn.Close()
}

// markDisconnected flips the channel into degraded mode after a pump
// failure. Room membership is forgotten; the relay dropped it with the
// connection.
func (c *Channel) markDisconnected(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn || !c.connected {
		return
	}
	c.connected = false
	c.currentRoom = ""
	close(c.done)
	conn.Close()
}

func (c *Channel) readPump(conn *websocket.Conn, done chan struct{}) {
	defer c.markDisconnected(conn)

	conn.SetReadLimit(config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(config.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read: %v", err)
			}
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("realtime: bad frame: %v", err)
			continue
		}
		if env.Event != models.EventNewMessage {
			continue
		}

		var msg models.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			log.Printf("realtime: bad new_message payload: %v", err)
			continue
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(msg)
		}
	}
}

func (c *Channel) writePump(conn *websocket.Conn, send chan models.Envelope, done chan struct{}) {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.markDisconnected(conn)
	}()

	for {
		select {
		case env := <-send:
			conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := conn.WriteJSON(env); err != nil {
				log.Printf("realtime: write: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
