package api

import (
	"context"
	"fmt"

	"sapcca/client/internal/models"
)

type historyEnvelope struct {
	Messages []models.Message `json:"messages"`
}

// ChatHistory fetches the full conversation with peerID, oldest first
// (server-assigned order). An empty conversation is an empty slice, not an
// error.
func (c *Client) ChatHistory(ctx context.Context, peerID int) ([]models.Message, error) {
	var envelope historyEnvelope
	if err := c.get(ctx, fmt.Sprintf("/api/messages/chat/%d", peerID), &envelope); err != nil {
		return nil, err
	}
	return envelope.Messages, nil
}

// SendReceipt is the backend's acknowledgement of a persisted message.
type SendReceipt struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
}

// SendMessage persists a message via REST. This is the durable path; the
// relay's fan-out is separate and fire-and-forget.
func (c *Client) SendMessage(ctx context.Context, receiverID int, text string) (SendReceipt, error) {
	body := map[string]any{"receiver_id": receiverID, "message": text}
	var receipt SendReceipt
	if err := c.post(ctx, "/api/messages/send", body, &receipt); err != nil {
		return SendReceipt{}, err
	}
	return receipt, nil
}
