package lookup

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lookupdesk/backend/internal/domain/identity"
	"github.com/lookupdesk/backend/internal/domain/lookup"
	"github.com/lookupdesk/backend/internal/domain/shared"
)

// MockServiceRequestRepository is a mock implementation of lookup.ServiceRequestRepository
type MockServiceRequestRepository struct {
	mock.Mock
}

func (m *MockServiceRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*lookup.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lookup.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]lookup.ServiceRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lookup.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) Save(ctx context.Context, req *lookup.ServiceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockServiceRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServiceRequestRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceRequestRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]lookup.ServiceRequest, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lookup.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) CountByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceRequestRepository) FindByStatus(ctx context.Context, status lookup.RequestStatus, filter shared.Filter) ([]lookup.ServiceRequest, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lookup.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) CountByStatus(ctx context.Context, status lookup.RequestStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockDeliveredDataRepository is a mock implementation of lookup.DeliveredDataRepository
type MockDeliveredDataRepository struct {
	mock.Mock
}

func (m *MockDeliveredDataRepository) Save(ctx context.Context, record *lookup.DeliveredData) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDeliveredDataRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]lookup.DeliveredData, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lookup.DeliveredData), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, role identity.UserRole) ([]*identity.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockPusher is a mock implementation of RealtimePusher
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) SendToUser(userID uuid.UUID, frame interface{}) bool {
	args := m.Called(userID, frame)
	return args.Bool(0)
}

func (m *MockPusher) BroadcastToModerators(frame interface{}) {
	m.Called(frame)
}
