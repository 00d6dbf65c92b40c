package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lookupdesk/backend/internal/domain/lookup"
	"github.com/lookupdesk/backend/internal/domain/shared"
)

// GormServiceRequestRepository implements lookup.ServiceRequestRepository using GORM
type GormServiceRequestRepository struct {
	db *gorm.DB
}

// NewGormServiceRequestRepository creates a new GormServiceRequestRepository
func NewGormServiceRequestRepository(db *gorm.DB) *GormServiceRequestRepository {
	return &GormServiceRequestRepository{db: db}
}

// FindByID finds a service request by ID
func (r *GormServiceRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*lookup.ServiceRequest, error) {
	var req lookup.ServiceRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindAll returns service requests matching the filter, newest first by default
func (r *GormServiceRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]lookup.ServiceRequest, error) {
	var requests []lookup.ServiceRequest
	query := r.applyFilter(r.db.WithContext(ctx).Model(&lookup.ServiceRequest{}), filter)
	query = applySortAndPagination(query, filter, ServiceRequestSortFields)
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Save persists a service request. New requests are inserted; existing ones
// are updated with an optimistic version check on the mutable columns.
func (r *GormServiceRequestRepository) Save(ctx context.Context, req *lookup.ServiceRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&lookup.ServiceRequest{}).Where("id = ?", req.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return tx.Create(req).Error
		}

		currentVersion := req.Version
		result := tx.Model(&lookup.ServiceRequest{}).
			Where("id = ? AND version = ?", req.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":          req.Status,
				"moderator_notes": req.ModeratorNotes,
				"approved_at":     req.ApprovedAt,
				"completed_at":    req.CompletedAt,
				"rejected_at":     req.RejectedAt,
				"version":         currentVersion + 1,
				"updated_at":      time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		req.Version = currentVersion + 1
		return nil
	})
}

// Delete removes a service request and its delivery ledger
func (r *GormServiceRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).Delete(&lookup.DeliveredData{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&lookup.ServiceRequest{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts service requests matching the filter
func (r *GormServiceRequestRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&lookup.ServiceRequest{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByUserID returns the requests owned by a user
func (r *GormServiceRequestRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]lookup.ServiceRequest, error) {
	var requests []lookup.ServiceRequest
	query := r.applyFilter(r.db.WithContext(ctx).Model(&lookup.ServiceRequest{}), filter).
		Where("user_id = ?", userID)
	query = applySortAndPagination(query, filter, ServiceRequestSortFields)
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// CountByUserID counts the requests owned by a user
func (r *GormServiceRequestRepository) CountByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&lookup.ServiceRequest{}), filter).
		Where("user_id = ?", userID)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByStatus returns requests in the given status
func (r *GormServiceRequestRepository) FindByStatus(ctx context.Context, status lookup.RequestStatus, filter shared.Filter) ([]lookup.ServiceRequest, error) {
	var requests []lookup.ServiceRequest
	query := r.db.WithContext(ctx).Model(&lookup.ServiceRequest{}).
		Where("status = ?", status)
	query = applySortAndPagination(query, filter, ServiceRequestSortFields)
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// CountByStatus counts the requests in the given status
func (r *GormServiceRequestRepository) CountByStatus(ctx context.Context, status lookup.RequestStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&lookup.ServiceRequest{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormServiceRequestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if sourceType, ok := filter.Filters["source_type"]; ok {
		query = query.Where("source_type = ?", sourceType)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("phone_number LIKE ? OR imei LIKE ? OR trx_id LIKE ?", pattern, pattern, pattern)
	}
	return query
}

// applySortAndPagination applies whitelisted ordering and page-based limits
func applySortAndPagination(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	sortBy := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortBy + " " + sortOrder)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

var _ lookup.ServiceRequestRepository = (*GormServiceRequestRepository)(nil)
