package lookup

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lookupdesk/backend/internal/domain/identity"
	"github.com/lookupdesk/backend/internal/domain/lookup"
	"github.com/lookupdesk/backend/internal/domain/shared"
)

// DeliveryService appends result data to requests and advances their
// lifecycle
type DeliveryService struct {
	requestRepo lookup.ServiceRequestRepository
	ledgerRepo  lookup.DeliveredDataRepository
	userRepo    identity.UserRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	requestRepo lookup.ServiceRequestRepository,
	ledgerRepo lookup.DeliveredDataRepository,
	userRepo identity.UserRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *DeliveryService {
	return &DeliveryService{
		requestRepo: requestRepo,
		ledgerRepo:  ledgerRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Deliver appends one ledger record and advances the request status.
// Completeness is recomputed from the full ledger, so repeated or
// out-of-order deliveries are harmless.
func (s *DeliveryService) Deliver(ctx context.Context, input DeliverInput) (*DeliveryView, error) {
	req, err := s.requestRepo.FindByID(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if !req.CanAcceptDelivery() {
		return nil, shared.NewDomainError("REQUEST_REJECTED", "Rejected requests cannot receive deliveries")
	}

	dataType := lookup.DataCategory(input.DataType)
	if !req.NeedsCategory(dataType) {
		return nil, shared.NewDomainError("INVALID_DATA_TYPE", "The request did not pay for this data type")
	}

	record, err := lookup.NewDeliveredData(input.RequestID, dataType, input.DataContent, input.ModeratorID)
	if err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.Save(ctx, record); err != nil {
		s.logger.Error("failed to append delivery record", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save delivery")
	}

	ledger, err := s.ledgerRepo.FindByRequestID(ctx, input.RequestID)
	if err != nil {
		s.logger.Error("failed to load delivery ledger", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load deliveries")
	}

	if err := req.AdvanceOnDelivery(lookup.CoveredCategories(ledger)); err != nil {
		return nil, err
	}
	req.AddDomainEvent(lookup.NewDataDeliveredEvent(req, record))

	if err := s.requestRepo.Save(ctx, req); err != nil {
		s.logger.Error("failed to save request after delivery", zap.Error(err))
		return nil, err
	}

	events := req.GetDomainEvents()
	if len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Error("failed to publish delivery events", zap.Error(err))
		}
		req.ClearDomainEvents()
	}

	s.logger.Info("data delivered",
		zap.String("request_id", req.ID.String()),
		zap.String("data_type", dataType.String()),
		zap.String("status", req.Status.String()),
	)

	view := viewFromDelivery(record, "")
	return &view, nil
}

// ListByRequest returns the delivery ledger of a request, oldest first,
// annotated with deliverer names. Customers can only read their own
// ledger.
func (s *DeliveryService) ListByRequest(ctx context.Context, requestID, callerID uuid.UUID, isModerator bool) ([]DeliveryView, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !isModerator && req.UserID != callerID {
		return nil, shared.ErrForbidden
	}

	records, err := s.ledgerRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string)
	views := make([]DeliveryView, len(records))
	for i := range records {
		rec := &records[i]
		name, cached := names[rec.DeliveredBy]
		if !cached {
			if moderator, err := s.userRepo.FindByID(ctx, rec.DeliveredBy); err == nil {
				name = moderator.Name
			}
			names[rec.DeliveredBy] = name
		}
		views[i] = viewFromDelivery(rec, name)
	}
	return views, nil
}
