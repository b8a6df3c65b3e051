package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"sapcca/client/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveRelay upgrades the connection and shuttles envelopes: join_room and
// leave_room maintain room membership, send_message fans out new_message to
// every member of the room including the sender's other tabs. Nothing is
// persisted here.
func (s *server) serveRelay(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("relay: upgrade: %v", err)
		return
	}
	defer func() {
		s.dropConn(conn)
		conn.Close()
	}()

	for {
		var env models.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("relay: read: %v", err)
			}
			return
		}

		switch env.Event {
		case models.EventJoinRoom:
			var ev models.RoomEvent
			if json.Unmarshal(env.Data, &ev) == nil && ev.Room != "" {
				s.joinRoom(ev.Room, conn)
			}
		case models.EventLeaveRoom:
			var ev models.RoomEvent
			if json.Unmarshal(env.Data, &ev) == nil && ev.Room != "" {
				s.leaveRoom(ev.Room, conn)
			}
		case models.EventSendMessage:
			var ev models.SendEvent
			if err := json.Unmarshal(env.Data, &ev); err != nil {
				continue
			}
			s.broadcast(ev)
		}
	}
}

func (s *server) joinRoom(room string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[room] == nil {
		s.rooms[room] = make(map[*websocket.Conn]bool)
	}
	s.rooms[room][conn] = true
}

func (s *server) leaveRoom(room string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if members := s.rooms[room]; members != nil {
		delete(members, conn)
		if len(members) == 0 {
			delete(s.rooms, room)
		}
	}
}

// dropConn removes a closed connection from every room it was a member of.
func (s *server) dropConn(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for room, members := range s.rooms {
		delete(members, conn)
		if len(members) == 0 {
			delete(s.rooms, room)
		}
	}
}

func (s *server) broadcast(ev models.SendEvent) {
	push, err := models.WrapEvent(models.EventNewMessage, models.Message{
		From: ev.Sender,
		To:   ev.Receiver,
		Text: ev.Text,
		Time: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("relay: encode push: %v", err)
		return
	}

	s.mu.Lock()
	members := make([]*websocket.Conn, 0, len(s.rooms[ev.Room]))
	for conn := range s.rooms[ev.Room] {
		members = append(members, conn)
	}
	s.mu.Unlock()

	for _, conn := range members {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(push); err != nil {
			log.Printf("relay: push: %v", err)
			s.dropConn(conn)
			conn.Close()
		}
	}
}
