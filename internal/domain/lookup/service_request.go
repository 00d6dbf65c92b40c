package lookup

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lookupdesk/backend/internal/domain/shared"
	"github.com/lookupdesk/backend/internal/domain/shared/valueobject"
)

const maxAdditionalNoteLength = 500

// optional keys a phone-number request may carry; an IMEI request may
// carry these on top of the mandatory base key
var optionalServiceKeys = []ServiceKey{
	ServiceNumberToLocation,
	ServiceNumberToNID,
	ServiceNumberToCallList3Months,
	ServiceNumberToCallList6Months,
}

func isOptionalServiceKey(key ServiceKey) bool {
	for _, k := range optionalServiceKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ServiceRequestDraft carries the client-submitted fields of a new request
type ServiceRequestDraft struct {
	SourceType          SourceType
	IMEI                string
	PhoneNumber         string
	LastUsedPhoneNumber string
	DataNeeded          []DataCategory
	ServiceTypes        []ServiceKey
	ServiceCharge       decimal.Decimal
	PaymentMethod       string
	TrxID               string
	AdditionalNote      string
}

// ServiceRequest represents a paid lookup order aggregate root.
// It is created by a customer submission and advanced by moderator
// deliveries or explicit moderator overrides.
type ServiceRequest struct {
	shared.BaseAggregateRoot
	UserID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceType          SourceType      `gorm:"type:varchar(20);not null"`
	IMEI                string          `gorm:"type:varchar(20)"`
	PhoneNumber         string          `gorm:"type:varchar(20)"`
	LastUsedPhoneNumber string          `gorm:"type:varchar(20)"`
	DataNeeded          CategoryList    `gorm:"type:text;not null"`
	ServiceTypes        ServiceKeyList  `gorm:"type:text;not null"`
	ServiceCharge       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod       string          `gorm:"type:varchar(50);not null"`
	TrxID               string          `gorm:"type:varchar(100);not null"`
	AdditionalNote      string          `gorm:"type:varchar(500)"`
	Status              RequestStatus   `gorm:"type:varchar(20);not null;index"`
	ModeratorNotes      string          `gorm:"type:text"`
	ApprovedAt          *time.Time
	CompletedAt         *time.Time
	RejectedAt          *time.Time
}

// NewServiceRequest validates a draft and creates a pending request.
//
// The charge is recomputed server-side from the price table and must
// match the client-declared charge exactly; the declared dataNeeded set
// must be exactly the categories the chosen service keys pay for. Both
// checks reject tampered or stale submissions.
func NewServiceRequest(userID uuid.UUID, draft ServiceRequestDraft) (*ServiceRequest, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !draft.SourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Source type must be imei or phoneNumber")
	}
	if len(draft.DataNeeded) == 0 {
		return nil, shared.NewDomainError("EMPTY_DATA_NEEDED", "At least one data category is required")
	}
	if len(draft.ServiceTypes) == 0 {
		return nil, shared.NewDomainError("EMPTY_SERVICE_TYPES", "At least one service type is required")
	}

	expected := make(map[DataCategory]bool, len(draft.ServiceTypes)+1)

	switch draft.SourceType {
	case SourceIMEI:
		if draft.IMEI == "" {
			return nil, shared.NewDomainError("MISSING_IMEI", "IMEI is required for imei source type")
		}
		if !IsValidIMEI(draft.IMEI) {
			return nil, shared.NewDomainError("INVALID_IMEI", "IMEI must be exactly 15 digits")
		}
		// imeiToNumber is the mandatory base key; everything else must
		// be one of the optional number-derived keys
		hasBase := false
		for _, key := range draft.ServiceTypes {
			if key == ServiceIMEIToNumber {
				hasBase = true
				continue
			}
			if !isOptionalServiceKey(key) {
				return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", "Invalid service type: "+key.String())
			}
			c, _ := CategoryOf(key)
			expected[c] = true
		}
		if !hasBase {
			return nil, shared.NewDomainError("MISSING_BASE_SERVICE", "IMEI requests must include the imeiToNumber service")
		}
		expected[CategoryNumber] = true

	case SourcePhoneNumber:
		if draft.PhoneNumber == "" {
			return nil, shared.NewDomainError("MISSING_PHONE_NUMBER", "Phone number is required for phoneNumber source type")
		}
		if !IsValidPhoneNumber(draft.PhoneNumber) {
			return nil, shared.NewDomainError("INVALID_PHONE_NUMBER", "Phone number must be a valid 11-digit number starting with 01")
		}
		for _, key := range draft.ServiceTypes {
			if !isOptionalServiceKey(key) {
				return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", "Invalid service type: "+key.String())
			}
			c, _ := CategoryOf(key)
			expected[c] = true
		}
	}

	// dataNeeded must match the derived set by membership and cardinality
	if len(draft.DataNeeded) != len(expected) {
		return nil, shared.NewDomainError("DATA_NEEDED_MISMATCH", "Data needed does not match the selected services")
	}
	seen := make(map[DataCategory]bool, len(draft.DataNeeded))
	for _, c := range draft.DataNeeded {
		if !expected[c] || seen[c] {
			return nil, shared.NewDomainError("DATA_NEEDED_MISMATCH", "Data needed does not match the selected services")
		}
		seen[c] = true
	}

	charge, err := ComputeCharge(draft.ServiceTypes)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", err.Error())
	}
	if !charge.Equal(draft.ServiceCharge) {
		return nil, shared.NewDomainError("SERVICE_CHARGE_MISMATCH", "Service charge does not match the price of the selected services")
	}

	if draft.PaymentMethod == "" {
		return nil, shared.NewDomainError("MISSING_PAYMENT_METHOD", "Payment method is required")
	}
	if len(draft.TrxID) < 8 {
		return nil, shared.NewDomainError("INVALID_TRX_ID", "Transaction ID must be at least 8 characters")
	}
	if len(draft.AdditionalNote) > maxAdditionalNoteLength {
		return nil, shared.NewDomainError("INVALID_NOTE", "Additional note cannot exceed 500 characters")
	}

	req := &ServiceRequest{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		UserID:              userID,
		SourceType:          draft.SourceType,
		IMEI:                draft.IMEI,
		PhoneNumber:         draft.PhoneNumber,
		LastUsedPhoneNumber: draft.LastUsedPhoneNumber,
		DataNeeded:          CategoryList(draft.DataNeeded),
		ServiceTypes:        ServiceKeyList(draft.ServiceTypes),
		ServiceCharge:       charge,
		PaymentMethod:       draft.PaymentMethod,
		TrxID:               draft.TrxID,
		AdditionalNote:      draft.AdditionalNote,
		Status:              StatusPending,
	}

	req.AddDomainEvent(NewServiceRequestCreatedEvent(req))

	return req, nil
}

// TableName returns the database table name
func (r *ServiceRequest) TableName() string {
	return "service_requests"
}

// GetServiceChargeMoney returns the charge as a Money value object
func (r *ServiceRequest) GetServiceChargeMoney() valueobject.Money {
	return valueobject.NewMoneyBDT(r.ServiceCharge)
}

// CanAcceptDelivery reports whether the request can receive ledger records
func (r *ServiceRequest) CanAcceptDelivery() bool {
	return r.Status != StatusRejected
}

// NeedsCategory reports whether the given category was paid for
func (r *ServiceRequest) NeedsCategory(c DataCategory) bool {
	return r.DataNeeded.Contains(c)
}

// IsFullyDelivered reports whether every needed category appears in the
// covered set. The check is a pure function of the full ledger, so
// recomputing it after every delivery is idempotent.
func (r *ServiceRequest) IsFullyDelivered(covered map[DataCategory]bool) bool {
	for _, c := range r.DataNeeded {
		if !covered[c] {
			return false
		}
	}
	return true
}

// AdvanceOnDelivery applies the automatic lifecycle rules after a
// ledger append. covered holds the categories present in the full
// ledger, including the record just written.
func (r *ServiceRequest) AdvanceOnDelivery(covered map[DataCategory]bool) error {
	event := FirstDelivery()
	if r.IsFullyDelivered(covered) {
		event = AllDelivered()
	}

	next, err := Transition(r.Status, event)
	if err != nil {
		return err
	}
	if next == r.Status {
		return nil
	}
	prev := r.Status
	r.setStatus(next)
	r.AddDomainEvent(NewServiceRequestStatusChangedEvent(r, prev))
	return nil
}

// OverrideStatus applies an explicit moderator decision. It bypasses
// the automatic rules and may move the request backward. Rejecting a
// request requires a note explaining the decision to the customer.
func (r *ServiceRequest) OverrideStatus(target RequestStatus, notes string) error {
	if target == StatusRejected && strings.TrimSpace(notes) == "" {
		return shared.NewDomainError("MISSING_REJECTION_NOTE", "A note is required when rejecting a request")
	}
	next, err := Transition(r.Status, ModeratorSet(target))
	if err != nil {
		return err
	}
	changed := next != r.Status
	if notes != "" {
		r.ModeratorNotes = notes
		r.UpdatedAt = time.Now()
	}
	if !changed {
		return nil
	}
	prev := r.Status
	r.setStatus(next)
	r.AddDomainEvent(NewServiceRequestStatusChangedEvent(r, prev))
	return nil
}

func (r *ServiceRequest) setStatus(next RequestStatus) {
	now := time.Now()
	r.Status = next
	r.UpdatedAt = now
	switch next {
	case StatusApproved:
		r.ApprovedAt = &now
	case StatusCompleted:
		r.CompletedAt = &now
	case StatusRejected:
		r.RejectedAt = &now
	}
}
