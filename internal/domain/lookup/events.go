package lookup

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lookupdesk/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeServiceRequest = "ServiceRequest"

// Event type constants
const (
	EventTypeServiceRequestCreated       = "ServiceRequestCreated"
	EventTypeServiceRequestStatusChanged = "ServiceRequestStatusChanged"
	EventTypeDataDelivered               = "DataDelivered"
)

// ServiceRequestCreatedEvent is raised when a customer submits a request
type ServiceRequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID       `json:"request_id"`
	UserID        uuid.UUID       `json:"user_id"`
	SourceType    SourceType      `json:"source_type"`
	DataNeeded    CategoryList    `json:"data_needed"`
	ServiceTypes  ServiceKeyList  `json:"service_types"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Status        RequestStatus   `json:"status"`
}

// NewServiceRequestCreatedEvent creates a new ServiceRequestCreatedEvent
func NewServiceRequestCreatedEvent(req *ServiceRequest) *ServiceRequestCreatedEvent {
	return &ServiceRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceRequestCreated, AggregateTypeServiceRequest, req.ID),
		RequestID:       req.ID,
		UserID:          req.UserID,
		SourceType:      req.SourceType,
		DataNeeded:      req.DataNeeded,
		ServiceTypes:    req.ServiceTypes,
		ServiceCharge:   req.ServiceCharge,
		Status:          req.Status,
	}
}

// EventType returns the event type name
func (e *ServiceRequestCreatedEvent) EventType() string {
	return EventTypeServiceRequestCreated
}

// ServiceRequestStatusChangedEvent is raised on every status change,
// whether automatic or by moderator override
type ServiceRequestStatusChangedEvent struct {
	shared.BaseDomainEvent
	RequestID      uuid.UUID     `json:"request_id"`
	UserID         uuid.UUID     `json:"user_id"`
	FromStatus     RequestStatus `json:"from_status"`
	ToStatus       RequestStatus `json:"to_status"`
	ModeratorNotes string        `json:"moderator_notes,omitempty"`
}

// NewServiceRequestStatusChangedEvent creates a new ServiceRequestStatusChangedEvent
func NewServiceRequestStatusChangedEvent(req *ServiceRequest, from RequestStatus) *ServiceRequestStatusChangedEvent {
	return &ServiceRequestStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceRequestStatusChanged, AggregateTypeServiceRequest, req.ID),
		RequestID:       req.ID,
		UserID:          req.UserID,
		FromStatus:      from,
		ToStatus:        req.Status,
		ModeratorNotes:  req.ModeratorNotes,
	}
}

// EventType returns the event type name
func (e *ServiceRequestStatusChangedEvent) EventType() string {
	return EventTypeServiceRequestStatusChanged
}

// DataDeliveredEvent is raised when a moderator posts a ledger record
type DataDeliveredEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID    `json:"request_id"`
	UserID      uuid.UUID    `json:"user_id"`
	DeliveryID  uuid.UUID    `json:"delivery_id"`
	DataType    DataCategory `json:"data_type"`
	DeliveredBy uuid.UUID    `json:"delivered_by"`
}

// NewDataDeliveredEvent creates a new DataDeliveredEvent
func NewDataDeliveredEvent(req *ServiceRequest, delivery *DeliveredData) *DataDeliveredEvent {
	return &DataDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataDelivered, AggregateTypeServiceRequest, req.ID),
		RequestID:       req.ID,
		UserID:          req.UserID,
		DeliveryID:      delivery.ID,
		DataType:        delivery.DataType,
		DeliveredBy:     delivery.DeliveredBy,
	}
}

// EventType returns the event type name
func (e *DataDeliveredEvent) EventType() string {
	return EventTypeDataDelivered
}
