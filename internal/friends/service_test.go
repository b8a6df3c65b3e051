package friends_test

import (
	"context"
	"testing"

	"sapcca/client/internal/api"
	"sapcca/client/internal/friends"
	"sapcca/client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Friends(ctx context.Context) ([]models.Contact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contact), args.Error(1)
}

func (m *MockGateway) PendingRequests(ctx context.Context) ([]models.PendingRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingRequest), args.Error(1)
}

func (m *MockGateway) OutgoingRequests(ctx context.Context) ([]models.OutgoingRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OutgoingRequest), args.Error(1)
}

func (m *MockGateway) IgnoredRequests(ctx context.Context) ([]models.PendingRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingRequest), args.Error(1)
}

func (m *MockGateway) SendFriendRequest(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

func (m *MockGateway) AcceptRequest(ctx context.Context, requestID int) error {
	return m.Called(ctx, requestID).Error(0)
}

func (m *MockGateway) RejectRequest(ctx context.Context, requestID int) error {
	return m.Called(ctx, requestID).Error(0)
}

func (m *MockGateway) CancelRequest(ctx context.Context, requestID int) error {
	return m.Called(ctx, requestID).Error(0)
}

func (m *MockGateway) DeleteRequest(ctx context.Context, requestID int) error {
	return m.Called(ctx, requestID).Error(0)
}

func TestService_AcceptRefreshesPendingAndContacts(t *testing.T) {
	gateway := new(MockGateway)
	svc := friends.NewService(gateway)
	ctx := context.Background()

	gateway.On("AcceptRequest", ctx, 3).Return(nil).Once()
	gateway.On("PendingRequests", ctx).Return([]models.PendingRequest{}, nil).Once()
	gateway.On("Friends", ctx).Return([]models.Contact{{ID: 7, DisplayName: "Linus"}}, nil).Once()

	require.NoError(t, svc.Accept(ctx, 3))

	gateway.AssertExpectations(t)
	contacts := svc.Contacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, "Linus", contacts[0].DisplayName)
}

func TestService_ActionFailureSkipsRefresh(t *testing.T) {
	gateway := new(MockGateway)
	svc := friends.NewService(gateway)
	ctx := context.Background()

	gateway.On("RejectRequest", ctx, 3).
		Return(&api.APIError{Status: 404, Message: "Friend request not found"}).Once()

	err := svc.Reject(ctx, 3)
	assert.Error(t, err)
	gateway.AssertNotCalled(t, "PendingRequests", mock.Anything)
}

func TestService_CancelRefreshesOutgoing(t *testing.T) {
	gateway := new(MockGateway)
	svc := friends.NewService(gateway)
	ctx := context.Background()

	gateway.On("CancelRequest", ctx, 4).Return(nil).Once()
	gateway.On("OutgoingRequests", ctx).Return([]models.OutgoingRequest{}, nil).Once()

	require.NoError(t, svc.Cancel(ctx, 4))
	gateway.AssertExpectations(t)
}

func TestService_DeleteRefreshesIgnored(t *testing.T) {
	gateway := new(MockGateway)
	svc := friends.NewService(gateway)
	ctx := context.Background()

	gateway.On("DeleteRequest", ctx, 8).Return(nil).Once()
	gateway.On("IgnoredRequests", ctx).Return([]models.PendingRequest{}, nil).Once()

	require.NoError(t, svc.Delete(ctx, 8))
	gateway.AssertExpectations(t)
}

func TestService_ContactsReturnsCopy(t *testing.T) {
	gateway := new(MockGateway)
	svc := friends.NewService(gateway)
	ctx := context.Background()

	gateway.On("Friends", ctx).Return([]models.Contact{{ID: 1, DisplayName: "Ada"}}, nil).Once()
	_, err := svc.RefreshContacts(ctx)
	require.NoError(t, err)

	contacts := svc.Contacts()
	contacts[0].DisplayName = "mutated"
	assert.Equal(t, "Ada", svc.Contacts()[0].DisplayName)
}
