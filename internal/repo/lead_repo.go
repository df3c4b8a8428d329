// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Lead model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a lead is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruralweb/leadgen-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// FindLatestLeadByEmail returns the most recent lead (by creation time) with
// the given email, or ErrNotFound.
func FindLatestLeadByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Lead, error) {
	var out domain.Lead
	err := db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at desc").
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindLatestLeadBySession returns the most recent lead (by creation time)
// captured under the given session id, or ErrNotFound.
func FindLatestLeadBySession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Lead, error) {
	var out domain.Lead
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertLead persists a new lead. The ID and timestamps are assigned here;
// the caller fills everything else.
func InsertLead(ctx context.Context, db *gorm.DB, lead *domain.Lead) error {
	lead.ID = uuid.NewString()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}
	return db.WithContext(ctx).Create(lead).Error
}

// UpdateLead applies the given column updates to the lead with id and stamps
// updated_at. Callers build the update map with only the columns they intend
// to overwrite; absent columns keep their stored values.
func UpdateLead(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountLeads returns the total number of captured leads.
func CountLeads(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Lead{}).Count(&total).Error
	return total, err
}
