// Package models defines the data shapes exchanged with the SAPCCA backend.
// All structs mirror the JSON the REST API produces; nothing here is mutated
// locally except by replacing whole values fetched from the server.
package models

import (
	"fmt"
	"strings"
)

// Identity is the authenticated user as returned by the auth and profile
// endpoints. It is owned by the session store, created on login and replaced
// wholesale on profile reload.
type Identity struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// Profile is the full view of the current user from GET /api/profile.
type Profile struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	RegistrationNumber string `json:"registration_number"`
	Avatar             string `json:"avatar"`
	Role               string `json:"role"`
}

// Identity projects the profile down to the session-cached identity.
func (p Profile) Identity() Identity {
	return Identity{ID: p.ID, Name: p.Name, Email: p.Email, Avatar: p.Avatar}
}

// Contact is a read-only projection of an accepted friend.
type Contact struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Email       string `json:"email"`
}

// PendingRequest is an incoming friend request (the current user is the
// receiver). The ignored collection uses the same shape.
type PendingRequest struct {
	RequestID    int    `json:"request_id"`
	SenderID     int    `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	SenderAvatar string `json:"sender_avatar"`
	Timestamp    string `json:"timestamp"`
}

// OutgoingRequest is a friend request sent by the current user that the
// other side has not answered yet.
type OutgoingRequest struct {
	RequestID      int    `json:"request_id"`
	ReceiverID     int    `json:"receiver_id"`
	ReceiverName   string `json:"receiver_name"`
	ReceiverAvatar string `json:"receiver_avatar"`
	Timestamp      string `json:"timestamp"`
}

// Message is a single chat message. Historical messages come from the REST
// history endpoint, live ones from the relay; both decode into this shape.
// Time is the server's ISO-8601 timestamp and is never parsed, only
// displayed and compared for identity.
type Message struct {
	ID   int    `json:"id,omitempty"`
	From int    `json:"from"`
	To   int    `json:"to,omitempty"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// Key is the message's identity for duplicate suppression. The relay does
// not echo server-assigned IDs, so identity is the (from, to, text, time)
// tuple: a message arriving both via a history reload and via a live push
// collapses to one key.
func (m Message) Key() string {
	return fmt.Sprintf("%d|%d|%s|%s", m.From, m.To, m.Text, m.Time)
}

// RoomKey derives the deterministic pairing key for a 1-on-1 chat between
// two user IDs. Both participants compute the same key independently:
// RoomKey(a, b) == RoomKey(b, a).
func RoomKey(a, b int) string {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("chat_%d_%d", lo, hi)
}

// DisplayNameOrID returns the contact's display name, falling back to the
// numeric ID when the backend sent an empty name.
func (c Contact) DisplayNameOrID() string {
	if strings.TrimSpace(c.DisplayName) == "" {
		return fmt.Sprintf("#%d", c.ID)
	}
	return c.DisplayName
}
