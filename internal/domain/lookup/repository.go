package lookup

import (
	"context"

	"github.com/google/uuid"

	"github.com/lookupdesk/backend/internal/domain/shared"
)

// ServiceRequestRepository defines persistence for service requests
type ServiceRequestRepository interface {
	shared.Repository[ServiceRequest]
	// FindByUserID returns the requests owned by a user, newest first
	FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]ServiceRequest, error)
	// CountByUserID counts the requests owned by a user
	CountByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
	// FindByStatus returns requests in the given status, newest first
	FindByStatus(ctx context.Context, status RequestStatus, filter shared.Filter) ([]ServiceRequest, error)
	// CountByStatus counts the requests in the given status
	CountByStatus(ctx context.Context, status RequestStatus) (int64, error)
}

// DeliveredDataRepository defines persistence for the delivery ledger.
// The ledger is append-only; its records go away only when the owning
// request is deleted, as part of ServiceRequestRepository.Delete.
type DeliveredDataRepository interface {
	// Save appends a ledger record
	Save(ctx context.Context, record *DeliveredData) error
	// FindByRequestID returns the full ledger of a request, oldest first
	FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]DeliveredData, error)
}
