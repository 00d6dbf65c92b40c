package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lookupdesk/backend/internal/domain/lookup"
)

// GormDeliveredDataRepository implements lookup.DeliveredDataRepository using GORM
type GormDeliveredDataRepository struct {
	db *gorm.DB
}

// NewGormDeliveredDataRepository creates a new GormDeliveredDataRepository
func NewGormDeliveredDataRepository(db *gorm.DB) *GormDeliveredDataRepository {
	return &GormDeliveredDataRepository{db: db}
}

// Save appends a ledger record
func (r *GormDeliveredDataRepository) Save(ctx context.Context, record *lookup.DeliveredData) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByRequestID returns the full ledger of a request, oldest first
func (r *GormDeliveredDataRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]lookup.DeliveredData, error) {
	var records []lookup.DeliveredData
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

var _ lookup.DeliveredDataRepository = (*GormDeliveredDataRepository)(nil)
