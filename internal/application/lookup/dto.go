package lookup

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lookupdesk/backend/internal/domain/lookup"
)

// SubmitRequestInput contains the client-submitted fields of a new request
type SubmitRequestInput struct {
	SourceType          string
	IMEI                string
	PhoneNumber         string
	LastUsedPhoneNumber string
	DataNeeded          []string
	ServiceTypes        []string
	ServiceCharge       decimal.Decimal
	PaymentMethod       string
	TrxID               string
	AdditionalNote      string
}

// ServiceRequestView is the client-facing shape of a request
type ServiceRequestView struct {
	ID                  uuid.UUID       `json:"id"`
	UserID              uuid.UUID       `json:"userId"`
	SourceType          string          `json:"sourceType"`
	IMEI                string          `json:"imei,omitempty"`
	PhoneNumber         string          `json:"phoneNumber,omitempty"`
	LastUsedPhoneNumber string          `json:"lastUsedPhoneNumber,omitempty"`
	DataNeeded          []string        `json:"dataNeeded"`
	ServiceTypes        []string        `json:"serviceTypes"`
	ServiceCharge       decimal.Decimal `json:"serviceCharge"`
	ServiceChargeAmount string          `json:"serviceChargeAmount"`
	PaymentMethod       string          `json:"paymentMethod"`
	TrxID               string          `json:"trxId"`
	AdditionalNote      string          `json:"additionalNote,omitempty"`
	Status              string          `json:"status"`
	ModeratorNotes      string          `json:"moderatorNotes,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	ApprovedAt          *time.Time      `json:"approvedAt,omitempty"`
	CompletedAt         *time.Time      `json:"completedAt,omitempty"`
	RejectedAt          *time.Time      `json:"rejectedAt,omitempty"`
}

// SetStatusInput contains a moderator's explicit status decision
type SetStatusInput struct {
	RequestID uuid.UUID
	Status    string
	Notes     string
}

// DeliverInput contains one delivery of result data
type DeliverInput struct {
	RequestID   uuid.UUID
	DataType    string
	DataContent string
	ModeratorID uuid.UUID
}

// DeliveryView is the client-facing shape of a ledger record
type DeliveryView struct {
	ID            uuid.UUID `json:"id"`
	RequestID     uuid.UUID `json:"requestId"`
	DataType      string    `json:"dataType"`
	DataContent   string    `json:"dataContent"`
	DeliveredBy   uuid.UUID `json:"deliveredBy"`
	DeliveredName string    `json:"deliveredByName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PriceView exposes the service price table
type PriceView struct {
	Prices   map[string]int64 `json:"prices"`
	Currency string           `json:"currency"`
}

// StatsView exposes request counts per status for the moderator dashboard
type StatsView struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}

func viewFromRequest(req *lookup.ServiceRequest) ServiceRequestView {
	dataNeeded := make([]string, len(req.DataNeeded))
	for i, c := range req.DataNeeded {
		dataNeeded[i] = c.String()
	}
	serviceTypes := make([]string, len(req.ServiceTypes))
	for i, k := range req.ServiceTypes {
		serviceTypes[i] = k.String()
	}
	return ServiceRequestView{
		ID:                  req.ID,
		UserID:              req.UserID,
		SourceType:          req.SourceType.String(),
		IMEI:                req.IMEI,
		PhoneNumber:         req.PhoneNumber,
		LastUsedPhoneNumber: req.LastUsedPhoneNumber,
		DataNeeded:          dataNeeded,
		ServiceTypes:        serviceTypes,
		ServiceCharge:       req.ServiceCharge,
		ServiceChargeAmount: req.GetServiceChargeMoney().String(),
		PaymentMethod:       req.PaymentMethod,
		TrxID:               req.TrxID,
		AdditionalNote:      req.AdditionalNote,
		Status:              req.Status.String(),
		ModeratorNotes:      req.ModeratorNotes,
		CreatedAt:           req.CreatedAt,
		UpdatedAt:           req.UpdatedAt,
		ApprovedAt:          req.ApprovedAt,
		CompletedAt:         req.CompletedAt,
		RejectedAt:          req.RejectedAt,
	}
}

func viewFromDelivery(rec *lookup.DeliveredData, deliveredName string) DeliveryView {
	return DeliveryView{
		ID:            rec.ID,
		RequestID:     rec.RequestID,
		DataType:      rec.DataType.String(),
		DataContent:   rec.DataContent,
		DeliveredBy:   rec.DeliveredBy,
		DeliveredName: deliveredName,
		CreatedAt:     rec.CreatedAt,
	}
}
