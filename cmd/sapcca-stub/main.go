// Command sapcca-stub is an in-memory stand-in for the SAPCCA backend, so
// the terminal client can be developed and demoed without the real service.
// It mints JWTs, serves the REST surface from in-memory tables and relays
// socket events room to room. It implements surface shape only, not the
// backend's business rules.
package main

import (
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type user struct {
	ID                 int
	Name               string
	Email              string
	Password           string
	RegistrationNumber string
}

type pendingSignup struct {
	Name               string
	Password           string
	RegistrationNumber string
	OTP                string
	Expires            time.Time
}

type friendRequest struct {
	ID         int
	SenderID   int
	ReceiverID int
	Status     string // "pending", "accepted", "rejected"
	Timestamp  time.Time
}

type message struct {
	ID        int
	From      int
	To        int
	Text      string
	Timestamp time.Time
}

type server struct {
	secret []byte

	mu             sync.Mutex
	users          map[int]*user
	byEmail        map[string]int
	pending        map[string]pendingSignup
	requests       []*friendRequest
	messages       []*message
	rooms          map[string]map[*websocket.Conn]bool
	nextUserID     int
	nextRequestID  int
	nextMessageID  int
}

func newServer(secret string) *server {
	return &server{
		secret:        []byte(secret),
		users:         make(map[int]*user),
		byEmail:       make(map[string]int),
		pending:       make(map[string]pendingSignup),
		rooms:         make(map[string]map[*websocket.Conn]bool),
		nextUserID:    1,
		nextRequestID: 1,
		nextMessageID: 1,
	}
}

func main() {
	addr := os.Getenv("SAPCCA_STUB_ADDR")
	if addr == "" {
		addr = ":5000"
	}
	secret := os.Getenv("SAPCCA_STUB_SECRET")
	if secret == "" {
		secret = "dev-only-secret"
	}

	s := newServer(secret)

	r := gin.Default()
	r.POST("/api/auth/register", s.register)
	r.POST("/api/auth/verify-otp", s.verifyOTP)
	r.POST("/api/auth/login", s.login)

	authed := r.Group("/", s.requireAuth)
	authed.GET("/api/profile", s.profile)
	authed.POST("/api/profile/update", s.updateProfile)
	authed.GET("/api/friends/list", s.friendsList)
	authed.GET("/api/friends/pending", s.pendingRequests)
	authed.GET("/api/friends/outgoing", s.outgoingRequests)
	authed.GET("/api/friends/ignored", s.ignoredRequests)
	authed.POST("/api/friends/request", s.sendRequest)
	authed.POST("/api/friends/accept", s.requestAction("accept"))
	authed.POST("/api/friends/reject", s.requestAction("reject"))
	authed.POST("/api/friends/cancel", s.requestAction("cancel"))
	authed.POST("/api/friends/delete", s.requestAction("delete"))
	authed.GET("/api/messages/chat/:peer", s.chatHistory)
	authed.POST("/api/messages/send", s.sendMessage)

	r.GET("/ws", s.serveRelay)

	srv := &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("sapcca-stub listening on %s", addr)
	log.Fatal(srv.ListenAndServe())
}
