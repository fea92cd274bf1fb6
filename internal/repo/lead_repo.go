// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Lead model.
// Leads are append-only: rows are inserted once by the ingestion pipeline and
// never mutated afterward.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
)

// CreateLead inserts a lead row, assigning its UUID and creation time.
// Returns ErrDuplicate when a row for the same external lead id already
// exists; the unique index is the authoritative safeguard against racing
// webhook deliveries.
func CreateLead(db *gorm.DB, lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if err := db.Create(lead).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindLeadByExternalID fetches a lead by its Graph API leadgen id.
func FindLeadByExternalID(ctx context.Context, db *gorm.DB, leadID string) (*domain.Lead, error) {
	var l domain.Lead
	err := db.WithContext(ctx).Where("lead_id = ?", leadID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLead fetches a lead by primary key with its matched ad preloaded.
func GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.Lead, error) {
	var l domain.Lead
	err := db.WithContext(ctx).Preload("Ad").Where("id = ?", id).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CountLeads returns the total number of lead rows.
func CountLeads(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Lead{}).Count(&total).Error
	return total, err
}

// ListLeadsPage returns a page of leads, newest first, with matched ads
// preloaded for name enrichment.
func ListLeadsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Lead, error) {
	var out []domain.Lead
	err := db.WithContext(ctx).
		Preload("Ad").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
