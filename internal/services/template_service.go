// Package services – TemplateService
//
// This file implements the TemplateService, which manages message templates:
// per-ad creation (at most one template per ad), partial updates, deletion,
// and rendering previews against sample lead data.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/repo"
	"github.com/leadpilot/go-leadgen-backend/internal/template"
)

// CreateTemplateInput is the payload for creating a template.
type CreateTemplateInput struct {
	AdID         string
	TemplateName string
	MessageText  string
	Variables    domain.StringMap
	IsActive     *bool
}

// UpdateTemplateInput carries optional field updates; nil fields are left
// unchanged.
type UpdateTemplateInput struct {
	TemplateName *string
	MessageText  *string
	Variables    *domain.StringMap
	IsActive     *bool
}

// PreviewResult is the rendering preview for a template.
type PreviewResult struct {
	Original     string   `json:"original"`
	Preview      string   `json:"preview"`
	Placeholders []string `json:"placeholders"`
}

// TemplateService provides message template management.
type TemplateService struct {
	DB *gorm.DB
}

// List returns all templates, newest first.
func (s *TemplateService) List(ctx context.Context) ([]domain.MessageTemplate, error) {
	return repo.ListTemplates(ctx, s.DB)
}

// Get fetches one template by id.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.MessageTemplate, error) {
	t, err := repo.GetTemplate(ctx, s.DB, id)
	if err == repo.ErrNotFound {
		return nil, ErrTemplateNotFound
	}
	return t, err
}

// Create validates that the target ad exists and has no template yet, then
// inserts the new template.
func (s *TemplateService) Create(ctx context.Context, in CreateTemplateInput) (*domain.MessageTemplate, error) {
	if _, err := repo.GetAd(ctx, s.DB, in.AdID); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrAdNotFound
		}
		return nil, err
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	t, err := repo.CreateTemplate(ctx, s.DB, in.AdID, strings.TrimSpace(in.TemplateName), in.MessageText, in.Variables, isActive)
	if err == repo.ErrDuplicate {
		return nil, ErrTemplateExists
	}
	return t, err
}

// Update applies the provided fields and returns the refreshed template.
func (s *TemplateService) Update(ctx context.Context, id string, in UpdateTemplateInput) (*domain.MessageTemplate, error) {
	updates := map[string]any{}
	if in.TemplateName != nil {
		updates["template_name"] = strings.TrimSpace(*in.TemplateName)
	}
	if in.MessageText != nil {
		updates["message_text"] = *in.MessageText
	}
	if in.Variables != nil {
		updates["variables"] = *in.Variables
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if len(updates) > 0 {
		if err := repo.UpdateTemplate(ctx, s.DB, id, updates); err != nil {
			if err == repo.ErrNotFound {
				return nil, ErrTemplateNotFound
			}
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a template by id.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	err := repo.DeleteTemplate(ctx, s.DB, id)
	if err == repo.ErrNotFound {
		return ErrTemplateNotFound
	}
	return err
}

// Preview renders the template against sample lead data, resolving values
// with the same precedence the pipeline uses (lead data over variables).
func (s *TemplateService) Preview(ctx context.Context, id string, leadData map[string]string) (*PreviewResult, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if leadData == nil {
		leadData = map[string]string{
			"first_name": "John",
			"last_name":  "Doe",
			"email":      "john.doe@example.com",
			"phone":      "+1234567890",
		}
	}
	return &PreviewResult{
		Original:     t.MessageText,
		Preview:      template.Fill(t.MessageText, leadData, t.Variables),
		Placeholders: template.ExtractPlaceholders(t.MessageText),
	}, nil
}
