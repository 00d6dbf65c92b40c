package lookup

import (
	"github.com/google/uuid"

	"github.com/lookupdesk/backend/internal/domain/shared"
)

// DeliveredData is one append-only ledger record of result data handed
// to a customer. Records are never updated or deleted individually;
// the whole ledger goes away only when its request is deleted.
type DeliveredData struct {
	shared.BaseEntity
	RequestID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	DataType    DataCategory `gorm:"type:varchar(30);not null"`
	DataContent string       `gorm:"type:text;not null"`
	DeliveredBy uuid.UUID    `gorm:"type:uuid;not null"`
}

// TableName returns the database table name
func (d *DeliveredData) TableName() string {
	return "delivered_data"
}

// NewDeliveredData creates a ledger record for a request
func NewDeliveredData(requestID uuid.UUID, dataType DataCategory, dataContent string, deliveredBy uuid.UUID) (*DeliveredData, error) {
	if requestID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Request ID cannot be empty")
	}
	if !dataType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DATA_TYPE", "Unknown data type: "+dataType.String())
	}
	if dataContent == "" {
		return nil, shared.NewDomainError("EMPTY_DATA_CONTENT", "Data content cannot be empty")
	}
	if deliveredBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MODERATOR", "Delivering moderator ID cannot be empty")
	}

	return &DeliveredData{
		BaseEntity:  shared.NewBaseEntity(),
		RequestID:   requestID,
		DataType:    dataType,
		DataContent: dataContent,
		DeliveredBy: deliveredBy,
	}, nil
}

// CoveredCategories folds a ledger into the set of categories that
// have at least one delivery
func CoveredCategories(records []DeliveredData) map[DataCategory]bool {
	covered := make(map[DataCategory]bool, len(records))
	for _, rec := range records {
		covered[rec.DataType] = true
	}
	return covered
}
