// Package services – AdService
//
// This file implements the AdService, which owns the local ad mirror: the
// management reads, explicit deletion, and the upsert/deactivate sync pass
// against the Graph API. Sync never deletes rows — ads missing upstream are
// only flagged inactive, so their leads and history survive.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/graph"
	"github.com/leadpilot/go-leadgen-backend/internal/repo"
)

// adSyncRuns counts sync executions by result.
var adSyncRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ad_sync_runs_total",
		Help: "Total ad sync executions by result.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(adSyncRuns)
}

// SyncStats summarizes one sync pass.
type SyncStats struct {
	Total       int   `json:"total"`
	Created     int   `json:"created"`
	Updated     int   `json:"updated"`
	Deactivated int64 `json:"deactivated"`
}

// AdService provides management operations over the mirrored ads and the
// sync pass shared by the scheduler and the manual sync endpoint.
type AdService struct {
	DB    *gorm.DB
	Graph graph.API
}

// List returns ads (optionally filtered by active flag) plus the set of ad
// ids that own a template, for has_template enrichment.
func (s *AdService) List(ctx context.Context, isActive *bool) ([]domain.Ad, map[string]bool, error) {
	ads, err := repo.ListAds(ctx, s.DB, isActive)
	if err != nil {
		return nil, nil, err
	}
	withTemplates, err := repo.ListTemplateAdRefs(ctx, s.DB)
	if err != nil {
		return nil, nil, err
	}
	return ads, withTemplates, nil
}

// Get fetches one ad by id.
func (s *AdService) Get(ctx context.Context, id string) (*domain.Ad, error) {
	ad, err := repo.GetAd(ctx, s.DB, id)
	if err == repo.ErrNotFound {
		return nil, ErrAdNotFound
	}
	return ad, err
}

// Delete removes an ad and, through FK cascades, its template and leads.
func (s *AdService) Delete(ctx context.Context, id string) error {
	err := repo.DeleteAd(ctx, s.DB, id)
	if err == repo.ErrNotFound {
		return ErrAdNotFound
	}
	return err
}

// Sync pulls the account's ads from the Graph API and reconciles the mirror:
// upstream ads are upserted and re-activated, local active ads missing
// upstream are deactivated. The whole pass commits atomically.
func (s *AdService) Sync(ctx context.Context) (*SyncStats, error) {
	tr := otel.Tracer("services/AdService")
	ctx, span := tr.Start(ctx, "Sync")
	defer span.End()

	ads, err := s.Graph.FetchActiveAds(ctx)
	if err != nil {
		adSyncRuns.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(ads) == 0 {
		log.Warn().Msg("no ads fetched from facebook")
	}

	stats := &SyncStats{Total: len(ads)}
	now := time.Now().UTC()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make([]string, 0, len(ads))
		for _, a := range ads {
			if a.ID == "" {
				continue
			}
			seen = append(seen, a.ID)
			created, err := repo.UpsertAd(tx, repo.AdUpsert{
				AdID:         a.ID,
				AdName:       a.Name,
				CampaignID:   a.Campaign.ID,
				CampaignName: a.Campaign.Name,
				AdsetID:      a.Adset.ID,
				AdsetName:    a.Adset.Name,
				Status:       a.Status,
			}, now)
			if err != nil {
				return err
			}
			if created {
				stats.Created++
			} else {
				stats.Updated++
			}
		}

		deactivated, err := repo.DeactivateAdsNotIn(tx, seen)
		if err != nil {
			return err
		}
		stats.Deactivated = deactivated
		return nil
	})
	if err != nil {
		adSyncRuns.WithLabelValues("db_error").Inc()
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("sync.created", stats.Created),
		attribute.Int("sync.updated", stats.Updated),
		attribute.Int64("sync.deactivated", stats.Deactivated),
	)
	adSyncRuns.WithLabelValues("ok").Inc()
	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int64("deactivated", stats.Deactivated).
		Msg("ad sync completed")
	return stats, nil
}
