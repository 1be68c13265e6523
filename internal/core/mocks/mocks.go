package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/certdrive/realtime-gateway/internal/core/domain"
	"github.com/certdrive/realtime-gateway/internal/core/ports"
)

// MockEventGateway is a mock implementation of ports.EventGateway
type MockEventGateway struct {
	mock.Mock
}

func NewMockEventGateway() *MockEventGateway {
	return &MockEventGateway{}
}

func (m *MockEventGateway) RouteJobRequestUpdate(payload domain.JobRequestUpdatePayload) {
	m.Called(payload)
}

func (m *MockEventGateway) RouteApplicationUpdate(payload domain.ApplicationUpdatePayload) {
	m.Called(payload)
}

func (m *MockEventGateway) RouteNotification(payload domain.NotificationPayload) ports.Delivery {
	args := m.Called(payload)
	return args.Get(0).(ports.Delivery)
}

func (m *MockEventGateway) BroadcastToRoom(room string, event domain.EventType, data interface{}) {
	m.Called(room, event, data)
}

func (m *MockEventGateway) SendToUser(userID string, event domain.EventType, data interface{}) ports.Delivery {
	args := m.Called(userID, event, data)
	return args.Get(0).(ports.Delivery)
}

func (m *MockEventGateway) ConnectedUsersCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockEventGateway) IsUserOnline(userID string) bool {
	args := m.Called(userID)
	return args.Bool(0)
}
