// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Ad model,
// including the upsert/deactivate semantics used by the sync job.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
)

// AdUpsert carries the upstream fields applied by UpsertAd.
type AdUpsert struct {
	AdID         string
	AdName       string
	CampaignID   string
	CampaignName string
	AdsetID      string
	AdsetName    string
	Status       string
}

// FindAdByExternalID fetches an ad by its Graph API identifier.
func FindAdByExternalID(ctx context.Context, db *gorm.DB, adID string) (*domain.Ad, error) {
	var ad domain.Ad
	err := db.WithContext(ctx).Where("ad_id = ?", adID).First(&ad).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// GetAd fetches an ad by primary key.
func GetAd(ctx context.Context, db *gorm.DB, id string) (*domain.Ad, error) {
	var ad domain.Ad
	err := db.WithContext(ctx).Where("id = ?", id).First(&ad).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// ListAds returns ads ordered newest first, optionally filtered by the
// active flag.
func ListAds(ctx context.Context, db *gorm.DB, isActive *bool) ([]domain.Ad, error) {
	var out []domain.Ad
	q := db.WithContext(ctx).Order("created_at DESC, id DESC")
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}
	err := q.Find(&out).Error
	return out, err
}

// DeleteAd removes an ad; the template and leads referencing it are
// cascade-deleted by the schema's FK constraints.
func DeleteAd(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Ad{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertAd creates the ad if absent, otherwise refreshes name/status,
// re-activates it and stamps last_synced_at. Returns whether a row was
// created.
func UpsertAd(db *gorm.DB, f AdUpsert, now time.Time) (created bool, err error) {
	var ad domain.Ad
	err = db.Where("ad_id = ?", f.AdID).First(&ad).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ad = domain.Ad{
			ID:           uuid.NewString(),
			AdID:         f.AdID,
			AdName:       f.AdName,
			CampaignID:   f.CampaignID,
			CampaignName: f.CampaignName,
			AdsetID:      f.AdsetID,
			AdsetName:    f.AdsetName,
			Status:       f.Status,
			Platform:     "facebook",
			IsActive:     true,
			LastSyncedAt: now,
		}
		return true, db.Create(&ad).Error
	case err != nil:
		return false, err
	}

	updates := map[string]any{
		"is_active":      true,
		"last_synced_at": now,
		"status":         f.Status,
	}
	if f.AdName != "" {
		updates["ad_name"] = f.AdName
	}
	return false, db.Model(&ad).Updates(updates).Error
}

// DeactivateAdsNotIn clears the active flag on every active ad whose external
// id is absent from seen. Rows are never deleted by this path.
func DeactivateAdsNotIn(db *gorm.DB, seen []string) (int64, error) {
	q := db.Model(&domain.Ad{}).Where("is_active = ?", true)
	if len(seen) > 0 {
		q = q.Where("ad_id NOT IN ?", seen)
	}
	res := q.Update("is_active", false)
	return res.RowsAffected, res.Error
}

// ListAdExternalIDs returns all known external ad ids.
func ListAdExternalIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).Model(&domain.Ad{}).Pluck("ad_id", &ids).Error
	return ids, err
}
