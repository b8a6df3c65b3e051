package api

import (
	"context"

	"sapcca/client/internal/models"
)

// Friends fetches the accepted contact list.
func (c *Client) Friends(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := c.get(ctx, "/api/friends/list", &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

type pendingEnvelope struct {
	Requests []models.PendingRequest `json:"requests"`
}

type outgoingEnvelope struct {
	Requests []models.OutgoingRequest `json:"requests"`
}

// PendingRequests fetches incoming friend requests awaiting an answer.
func (c *Client) PendingRequests(ctx context.Context) ([]models.PendingRequest, error) {
	var envelope pendingEnvelope
	if err := c.get(ctx, "/api/friends/pending", &envelope); err != nil {
		return nil, err
	}
	return envelope.Requests, nil
}

// OutgoingRequests fetches requests the current user has sent.
func (c *Client) OutgoingRequests(ctx context.Context) ([]models.OutgoingRequest, error) {
	var envelope outgoingEnvelope
	if err := c.get(ctx, "/api/friends/outgoing", &envelope); err != nil {
		return nil, err
	}
	return envelope.Requests, nil
}

// IgnoredRequests fetches requests the current user has rejected; they share
// the pending wire shape.
func (c *Client) IgnoredRequests(ctx context.Context) ([]models.PendingRequest, error) {
	var envelope pendingEnvelope
	if err := c.get(ctx, "/api/friends/ignored", &envelope); err != nil {
		return nil, err
	}
	return envelope.Requests, nil
}

// SendFriendRequest addresses a new request by email or numeric ID.
func (c *Client) SendFriendRequest(ctx context.Context, identifier string) error {
	return c.post(ctx, "/api/friends/request", map[string]string{"identifier": identifier}, nil)
}

func (c *Client) requestAction(ctx context.Context, action string, requestID int) error {
	return c.post(ctx, "/api/friends/"+action, map[string]int{"request_id": requestID}, nil)
}

// AcceptRequest accepts a pending request.
func (c *Client) AcceptRequest(ctx context.Context, requestID int) error {
	return c.requestAction(ctx, "accept", requestID)
}

// RejectRequest moves a pending request to the ignored collection.
func (c *Client) RejectRequest(ctx context.Context, requestID int) error {
	return c.requestAction(ctx, "reject", requestID)
}

// CancelRequest withdraws an outgoing request.
func (c *Client) CancelRequest(ctx context.Context, requestID int) error {
	return c.requestAction(ctx, "cancel", requestID)
}

// DeleteRequest permanently removes an ignored request.
func (c *Client) DeleteRequest(ctx context.Context, requestID int) error {
	return c.requestAction(ctx, "delete", requestID)
}
