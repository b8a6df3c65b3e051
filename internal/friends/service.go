// Package friends renders-side glue for the friend graph: it fetches the
// request collections, caches them for display and forwards accept, reject,
// cancel and delete intents. Consistency of the graph itself is the
// backend's job; every action is followed by a refetch rather than a local
// mutation.
package friends

import (
	"context"
	"sync"

	"sapcca/client/internal/models"
)

// Gateway is the REST slice the service needs; *api.Client satisfies it.
type Gateway interface {
	Friends(ctx context.Context) ([]models.Contact, error)
	PendingRequests(ctx context.Context) ([]models.PendingRequest, error)
	OutgoingRequests(ctx context.Context) ([]models.OutgoingRequest, error)
	IgnoredRequests(ctx context.Context) ([]models.PendingRequest, error)
	SendFriendRequest(ctx context.Context, identifier string) error
	AcceptRequest(ctx context.Context, requestID int) error
	RejectRequest(ctx context.Context, requestID int) error
	CancelRequest(ctx context.Context, requestID int) error
	DeleteRequest(ctx context.Context, requestID int) error
}

// Service caches the latest fetched collections for rendering.
type Service struct {
	gateway Gateway

	mu       sync.RWMutex
	contacts []models.Contact
	pending  []models.PendingRequest
	outgoing []models.OutgoingRequest
	ignored  []models.PendingRequest
}

// NewService builds a friend-relationship service over the gateway.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// RefreshContacts fetches the accepted contact list.
func (s *Service) RefreshContacts(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.gateway.Friends(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.contacts = contacts
	s.mu.Unlock()
	return contacts, nil
}

// RefreshPending fetches incoming requests.
func (s *Service) RefreshPending(ctx context.Context) ([]models.PendingRequest, error) {
	requests, err := s.gateway.PendingRequests(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.pending = requests
	s.mu.Unlock()
	return requests, nil
}

// RefreshOutgoing fetches requests sent by the current user.
func (s *Service) RefreshOutgoing(ctx context.Context) ([]models.OutgoingRequest, error) {
	requests, err := s.gateway.OutgoingRequests(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.outgoing = requests
	s.mu.Unlock()
	return requests, nil
}

// RefreshIgnored fetches requests the user has rejected.
func (s *Service) RefreshIgnored(ctx context.Context) ([]models.PendingRequest, error) {
	requests, err := s.gateway.IgnoredRequests(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.ignored = requests
	s.mu.Unlock()
	return requests, nil
}

// Contacts returns the cached contact list.
func (s *Service) Contacts() []models.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Contact(nil), s.contacts...)
}

// Request sends a new friend request addressed by email or numeric ID.
func (s *Service) Request(ctx context.Context, identifier string) error {
	return s.gateway.SendFriendRequest(ctx, identifier)
}

// Accept accepts a pending request and refreshes both the pending list and
// the contact list, since the sender becomes a contact.
func (s *Service) Accept(ctx context.Context, requestID int) error {
	if err := s.gateway.AcceptRequest(ctx, requestID); err != nil {
		return err
	}
	if _, err := s.RefreshPending(ctx); err != nil {
		return err
	}
	_, err := s.RefreshContacts(ctx)
	return err
}

// Reject moves a pending request to the ignored collection.
func (s *Service) Reject(ctx context.Context, requestID int) error {
	if err := s.gateway.RejectRequest(ctx, requestID); err != nil {
		return err
	}
	_, err := s.RefreshPending(ctx)
	return err
}

// Cancel withdraws an outgoing request.
func (s *Service) Cancel(ctx context.Context, requestID int) error {
	if err := s.gateway.CancelRequest(ctx, requestID); err != nil {
		return err
	}
	_, err := s.RefreshOutgoing(ctx)
	return err
}

// Delete permanently removes an ignored request.
func (s *Service) Delete(ctx context.Context, requestID int) error {
	if err := s.gateway.DeleteRequest(ctx, requestID); err != nil {
		return err
	}
	_, err := s.RefreshIgnored(ctx)
	return err
}
