// Package services – LeadService
//
// This file implements the LeadService: read-only access to the append-only
// lead audit log plus the aggregate delivery statistics.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/repo"
)

// LeadService exposes lead reads; leads are only ever written by the
// ingestion pipeline.
type LeadService struct {
	DB *gorm.DB
}

// ListPage returns a page of leads (newest first) and the total count.
func (s *LeadService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Lead, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountLeads(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Lead{}, 0, nil
	}

	items, err := repo.ListLeadsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// Get fetches one lead by id with its matched ad preloaded.
func (s *LeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	l, err := repo.GetLead(ctx, s.DB, id)
	if err == repo.ErrNotFound {
		return nil, ErrLeadNotFound
	}
	return l, err
}

// Stats returns aggregate delivery statistics.
func (s *LeadService) Stats(ctx context.Context) (*repo.LeadStats, error) {
	return repo.LeadStatsSummary(ctx, s.DB)
}
