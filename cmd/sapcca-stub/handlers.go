package main

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// stubOTP is the fixed one-time code; the real backend mails it, the stub
// logs it.
const stubOTP = "12345"

func (s *server) mintToken(userID int) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.Itoa(userID),
		"exp": time.Now().Add(72 * time.Hour).Unix(),
		"iss": "sapcca-stub",
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireAuth validates the bearer token and stores the user ID on the
// context.
func (s *server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	token, err := jwt.Parse(header[len("Bearer "):], func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
		return
	}
	userID, err := strconv.Atoi(sub)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
		return
	}
	c.Set("userID", userID)
}

func currentUser(c *gin.Context) int {
	return c.GetInt("userID")
}

func (s *server) register(c *gin.Context) {
	var body struct {
		Name               string `json:"name" binding:"required"`
		Email              string `json:"email" binding:"required"`
		Password           string `json:"password" binding:"required"`
		RegistrationNumber string `json:"registration_number"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing field"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[body.Email]; exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	s.pending[body.Email] = pendingSignup{
		Name:               body.Name,
		Password:           body.Password,
		RegistrationNumber: body.RegistrationNumber,
		OTP:                stubOTP,
		Expires:            time.Now().Add(10 * time.Minute),
	}
	c.JSON(http.StatusCreated, gin.H{"message": "OTP sent (stub: use " + stubOTP + ")", "email": body.Email})
}

func (s *server) verifyOTP(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing field"})
		return
	}

	s.mu.Lock()
	signup, ok := s.pending[body.Email]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "No pending registration for this email"})
		return
	}
	if time.Now().After(signup.Expires) {
		delete(s.pending, body.Email)
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired. Please register again."})
		return
	}
	if body.OTP != signup.OTP {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		return
	}

	u := &user{
		ID:                 s.nextUserID,
		Name:               signup.Name,
		Email:              body.Email,
		Password:           signup.Password,
		RegistrationNumber: signup.RegistrationNumber,
	}
	s.nextUserID++
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	delete(s.pending, body.Email)
	s.mu.Unlock()

	token, err := s.mintToken(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    gin.H{"id": u.ID, "name": u.Name, "email": u.Email},
	})
}

func (s *server) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing field"})
		return
	}

	s.mu.Lock()
	id, ok := s.byEmail[body.Email]
	var u *user
	if ok {
		u = s.users[id]
	}
	s.mu.Unlock()

	if u == nil || u.Password != body.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := s.mintToken(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": u.ID, "name": u.Name, "email": u.Email},
	})
}

func (s *server) profile(c *gin.Context) {
	s.mu.Lock()
	u := s.users[currentUser(c)]
	s.mu.Unlock()
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                  u.ID,
		"name":                u.Name,
		"email":               u.Email,
		"registration_number": u.RegistrationNumber,
		"avatar":              "",
		"role":                "user",
	})
}

func (s *server) updateProfile(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[currentUser(c)]
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if body.Name != "" {
		u.Name = body.Name
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (s *server) friendsList(c *gin.Context) {
	uid := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	friends := []gin.H{}
	for _, req := range s.requests {
		if req.Status != "accepted" {
			continue
		}
		var friendID int
		switch uid {
		case req.SenderID:
			friendID = req.ReceiverID
		case req.ReceiverID:
			friendID = req.SenderID
		default:
			continue
		}
		if friend := s.users[friendID]; friend != nil {
			friends = append(friends, gin.H{
				"id":           friend.ID,
				"display_name": friend.Name,
				"avatar_url":   "",
				"email":        friend.Email,
			})
		}
	}
	c.JSON(http.StatusOK, friends)
}

func (s *server) pendingRequests(c *gin.Context) {
	s.listRequests(c, "pending", false)
}

func (s *server) ignoredRequests(c *gin.Context) {
	s.listRequests(c, "rejected", false)
}

func (s *server) outgoingRequests(c *gin.Context) {
	s.listRequests(c, "pending", true)
}

// listRequests renders requests where the current user is the receiver
// (incoming collections) or the sender (outgoing).
func (s *server) listRequests(c *gin.Context, status string, asSender bool) {
	uid := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []gin.H{}
	for _, req := range s.requests {
		if req.Status != status {
			continue
		}
		if asSender {
			if req.SenderID != uid {
				continue
			}
			receiver := s.users[req.ReceiverID]
			name := "Unknown User"
			if receiver != nil {
				name = receiver.Name
			}
			out = append(out, gin.H{
				"request_id":      req.ID,
				"receiver_id":     req.ReceiverID,
				"receiver_name":   name,
				"receiver_avatar": "",
				"timestamp":       req.Timestamp.Format(time.RFC3339),
			})
			continue
		}
		if req.ReceiverID != uid {
			continue
		}
		sender := s.users[req.SenderID]
		name := "Unknown User"
		if sender != nil {
			name = sender.Name
		}
		out = append(out, gin.H{
			"request_id":    req.ID,
			"sender_id":     req.SenderID,
			"sender_name":   name,
			"sender_avatar": "",
			"timestamp":     req.Timestamp.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

func (s *server) sendRequest(c *gin.Context) {
	var body struct {
		Identifier string `json:"identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing 'identifier' in request body"})
		return
	}
	uid := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	var target *user
	if id, err := strconv.Atoi(body.Identifier); err == nil {
		target = s.users[id]
	} else if id, ok := s.byEmail[body.Identifier]; ok {
		target = s.users[id]
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found with the provided identifier"})
		return
	}
	if target.ID == uid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send request to self"})
		return
	}
	for _, req := range s.requests {
		if samePair(req, uid, target.ID) {
			switch req.Status {
			case "pending":
				c.JSON(http.StatusConflict, gin.H{"message": "Friend request already pending"})
			case "accepted":
				c.JSON(http.StatusConflict, gin.H{"message": "Users are already friends"})
			default:
				c.JSON(http.StatusConflict, gin.H{"message": "Existing relationship found with status: " + req.Status})
			}
			return
		}
	}

	s.requests = append(s.requests, &friendRequest{
		ID:         s.nextRequestID,
		SenderID:   uid,
		ReceiverID: target.ID,
		Status:     "pending",
		Timestamp:  time.Now(),
	})
	s.nextRequestID++
	c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent"})
}

func samePair(req *friendRequest, a, b int) bool {
	return (req.SenderID == a && req.ReceiverID == b) ||
		(req.SenderID == b && req.ReceiverID == a)
}

// requestAction handles accept/reject/cancel/delete, all of which share the
// {request_id} body and differ only in who may act and the resulting state.
func (s *server) requestAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			RequestID int `json:"request_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'request_id' in request body"})
			return
		}
		uid := currentUser(c)

		s.mu.Lock()
		defer s.mu.Unlock()

		idx := -1
		for i, req := range s.requests {
			if req.ID == body.RequestID {
				idx = i
				break
			}
		}
		if idx == -1 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found"})
			return
		}
		req := s.requests[idx]

		switch action {
		case "accept":
			if req.ReceiverID != uid {
				c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized action on this request"})
				return
			}
			if req.Status != "pending" {
				c.JSON(http.StatusConflict, gin.H{"error": "Request is not pending (status: " + req.Status + ")"})
				return
			}
			req.Status = "accepted"
			c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
		case "reject":
			if req.ReceiverID != uid {
				c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized action on this request"})
				return
			}
			req.Status = "rejected"
			c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected"})
		case "cancel":
			if req.SenderID != uid {
				c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized action on this request"})
				return
			}
			s.requests = append(s.requests[:idx], s.requests[idx+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Friend request cancelled"})
		case "delete":
			if req.ReceiverID != uid {
				c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized action on this request"})
				return
			}
			s.requests = append(s.requests[:idx], s.requests[idx+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Friend request deleted"})
		}
	}
}

func (s *server) chatHistory(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("peer"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid peer id"})
		return
	}
	uid := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[peerID] == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	history := []gin.H{}
	for _, m := range s.messages {
		if (m.From == uid && m.To == peerID) || (m.From == peerID && m.To == uid) {
			history = append(history, gin.H{
				"id":   m.ID,
				"from": m.From,
				"to":   m.To,
				"text": m.Text,
				"time": m.Timestamp.Format(time.RFC3339),
			})
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i]["time"].(string) < history[j]["time"].(string)
	})
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

func (s *server) sendMessage(c *gin.Context) {
	var body struct {
		ReceiverID int    `json:"receiver_id" binding:"required"`
		Message    string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	uid := currentUser(c)

	s.mu.Lock()
	if s.users[body.ReceiverID] == nil {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "Receiver not found"})
		return
	}
	m := &message{
		ID:        s.nextMessageID,
		From:      uid,
		To:        body.ReceiverID,
		Text:      body.Message,
		Timestamp: time.Now(),
	}
	s.nextMessageID++
	s.messages = append(s.messages, m)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":   "sent",
		"id":        m.ID,
		"timestamp": m.Timestamp.Format(time.RFC3339),
	})
}
