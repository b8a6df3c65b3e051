package chat_test

import (
	"context"
	"sync"

	"sapcca/client/internal/api"
	"sapcca/client/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a testify mock of the REST slice the controller uses.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ChatHistory(ctx context.Context, peerID int) ([]models.Message, error) {
	args := m.Called(ctx, peerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockGateway) SendMessage(ctx context.Context, receiverID int, text string) (api.SendReceipt, error) {
	args := m.Called(ctx, receiverID, text)
	return args.Get(0).(api.SendReceipt), args.Error(1)
}

// fakeRelay records room membership calls in order.
type fakeRelay struct {
	mu  sync.Mutex
	ops []string
}

func (r *fakeRelay) JoinRoom(room string) { r.record("join:" + room) }

func (r *fakeRelay) LeaveRoom(room string) { r.record("leave:" + room) }

func (r *fakeRelay) SendMessage(room string, sender, receiver int, text string) {
	r.record("send:" + room + ":" + text)
}

func (r *fakeRelay) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *fakeRelay) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}
