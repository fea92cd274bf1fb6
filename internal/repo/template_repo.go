// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// MessageTemplate model.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
)

// FindActiveTemplateForAd returns the active template owned by the given ad
// row (primary key reference), or ErrNotFound.
func FindActiveTemplateForAd(ctx context.Context, db *gorm.DB, adRef string) (*domain.MessageTemplate, error) {
	var t domain.MessageTemplate
	err := db.WithContext(ctx).
		Where("ad_ref = ? AND is_active = ?", adRef, true).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindTemplateByAdRef returns the template owned by the given ad regardless
// of its active flag, or ErrNotFound.
func FindTemplateByAdRef(ctx context.Context, db *gorm.DB, adRef string) (*domain.MessageTemplate, error) {
	var t domain.MessageTemplate
	err := db.WithContext(ctx).Where("ad_ref = ?", adRef).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTemplate fetches a template by primary key.
func GetTemplate(ctx context.Context, db *gorm.DB, id string) (*domain.MessageTemplate, error) {
	var t domain.MessageTemplate
	err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates returns all templates, newest first.
func ListTemplates(ctx context.Context, db *gorm.DB) ([]domain.MessageTemplate, error) {
	var out []domain.MessageTemplate
	err := db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// CreateTemplate inserts a new template row. Returns ErrDuplicate when the ad
// already owns a template (unique ad_ref).
func CreateTemplate(ctx context.Context, db *gorm.DB, adRef, name, text string, variables domain.StringMap, isActive bool) (*domain.MessageTemplate, error) {
	t := &domain.MessageTemplate{
		ID:           uuid.NewString(),
		AdRef:        adRef,
		TemplateName: name,
		MessageText:  text,
		Variables:    variables,
		IsActive:     isActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return t, nil
}

// UpdateTemplate applies the given column updates to a template by id.
func UpdateTemplate(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.MessageTemplate{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTemplate removes a template by id.
func DeleteTemplate(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.MessageTemplate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTemplateAdRefs returns the set of ad primary keys that own a template.
// Used to enrich ad listings with a has_template flag.
func ListTemplateAdRefs(ctx context.Context, db *gorm.DB) (map[string]bool, error) {
	var refs []string
	if err := db.WithContext(ctx).Model(&domain.MessageTemplate{}).Pluck("ad_ref", &refs).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(refs))
	for _, r := range refs {
		out[r] = true
	}
	return out, nil
}
