package lookup

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lookupdesk/backend/internal/domain/lookup"
	"github.com/lookupdesk/backend/internal/domain/shared"
	"github.com/lookupdesk/backend/internal/domain/shared/valueobject"
)

// ServiceRequestService handles submission and administration of
// lookup requests
type ServiceRequestService struct {
	requestRepo lookup.ServiceRequestRepository
	ledgerRepo  lookup.DeliveredDataRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewServiceRequestService creates a new ServiceRequestService
func NewServiceRequestService(
	requestRepo lookup.ServiceRequestRepository,
	ledgerRepo lookup.DeliveredDataRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ServiceRequestService {
	return &ServiceRequestService{
		requestRepo: requestRepo,
		ledgerRepo:  ledgerRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Submit validates and persists a new request for the given customer
func (s *ServiceRequestService) Submit(ctx context.Context, userID uuid.UUID, input SubmitRequestInput) (*ServiceRequestView, error) {
	draft := lookup.ServiceRequestDraft{
		SourceType:          lookup.SourceType(input.SourceType),
		IMEI:                input.IMEI,
		PhoneNumber:         input.PhoneNumber,
		LastUsedPhoneNumber: input.LastUsedPhoneNumber,
		DataNeeded:          toCategories(input.DataNeeded),
		ServiceTypes:        toServiceKeys(input.ServiceTypes),
		ServiceCharge:       input.ServiceCharge,
		PaymentMethod:       input.PaymentMethod,
		TrxID:               input.TrxID,
		AdditionalNote:      input.AdditionalNote,
	}

	req, err := lookup.NewServiceRequest(userID, draft)
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.Save(ctx, req); err != nil {
		s.logger.Error("failed to save service request", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save request")
	}

	s.publishEvents(ctx, req)

	s.logger.Info("service request submitted",
		zap.String("request_id", req.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("source_type", req.SourceType.String()),
		zap.String("charge", req.ServiceCharge.String()),
	)

	view := viewFromRequest(req)
	return &view, nil
}

// Get returns one request. Customers can only see their own requests;
// moderators can see all.
func (s *ServiceRequestService) Get(ctx context.Context, requestID, callerID uuid.UUID, isModerator bool) (*ServiceRequestView, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !isModerator && req.UserID != callerID {
		return nil, shared.ErrForbidden
	}
	view := viewFromRequest(req)
	return &view, nil
}

// ListMine returns the caller's own requests, newest first
func (s *ServiceRequestService) ListMine(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[ServiceRequestView], error) {
	requests, err := s.requestRepo.FindByUserID(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.requestRepo.CountByUserID(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return paginatedViews(requests, total, filter), nil
}

// ListAll returns all requests for moderators, newest first
func (s *ServiceRequestService) ListAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[ServiceRequestView], error) {
	requests, err := s.requestRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.requestRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return paginatedViews(requests, total, filter), nil
}

// SetStatus applies a moderator's explicit status decision
func (s *ServiceRequestService) SetStatus(ctx context.Context, input SetStatusInput) (*ServiceRequestView, error) {
	req, err := s.requestRepo.FindByID(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if err := req.OverrideStatus(lookup.RequestStatus(input.Status), input.Notes); err != nil {
		return nil, err
	}

	if err := s.requestRepo.Save(ctx, req); err != nil {
		s.logger.Error("failed to save status override", zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, req)

	s.logger.Info("service request status set",
		zap.String("request_id", req.ID.String()),
		zap.String("status", req.Status.String()),
	)

	view := viewFromRequest(req)
	return &view, nil
}

// Delete removes a request together with its delivery ledger
func (s *ServiceRequestService) Delete(ctx context.Context, requestID uuid.UUID) error {
	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		return err
	}
	s.logger.Info("service request deleted", zap.String("request_id", requestID.String()))
	return nil
}

// Stats returns request counts per status
func (s *ServiceRequestService) Stats(ctx context.Context) (*StatsView, error) {
	stats := StatsView{ByStatus: make(map[string]int64, 4)}
	for _, status := range lookup.AllStatuses() {
		count, err := s.requestRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[status.String()] = count
		stats.Total += count
	}
	return &stats, nil
}

// Prices returns the current service price table
func (s *ServiceRequestService) Prices() PriceView {
	table := lookup.Prices()
	prices := make(map[string]int64, len(table))
	for k, v := range table {
		prices[k.String()] = v
	}
	return PriceView{Prices: prices, Currency: string(valueobject.DefaultCurrency)}
}

func (s *ServiceRequestService) publishEvents(ctx context.Context, req *lookup.ServiceRequest) {
	events := req.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish request events", zap.Error(err))
	}
	req.ClearDomainEvents()
}

func paginatedViews(requests []lookup.ServiceRequest, total int64, filter shared.Filter) *shared.Paginated[ServiceRequestView] {
	views := make([]ServiceRequestView, len(requests))
	for i := range requests {
		views[i] = viewFromRequest(&requests[i])
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	result := shared.NewPaginated(views, total, page, pageSize)
	return &result
}

func toCategories(values []string) []lookup.DataCategory {
	out := make([]lookup.DataCategory, len(values))
	for i, v := range values {
		out[i] = lookup.DataCategory(v)
	}
	return out
}

func toServiceKeys(values []string) []lookup.ServiceKey {
	out := make([]lookup.ServiceKey, len(values))
	for i, v := range values {
		out[i] = lookup.ServiceKey(v)
	}
	return out
}
