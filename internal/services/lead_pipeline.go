// Package services – LeadPipeline
//
// This file implements the lead ingestion pipeline: the per-event transaction
// that turns one leadgen webhook notification into exactly one persisted Lead
// row. Every path through the pipeline is terminal — duplicate skip, unmatched
// ad, fetch failure, missing template, send failure, or success — and each
// terminal state other than duplicate writes a single append-only Lead.
//
// Failures never propagate to the webhook caller: the HTTP handler always
// acknowledges accepted payloads so Facebook does not enter a redelivery
// storm. Anything that goes wrong below the transport is either recorded on
// the Lead row or logged.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/graph"
	"github.com/leadpilot/go-leadgen-backend/internal/repo"
	"github.com/leadpilot/go-leadgen-backend/internal/template"
)

// Error annotations persisted on terminal Lead rows.
const (
	msgAdNotFound  = "Ad not found in database"
	msgFetchFailed = "Failed to fetch lead data from Facebook"
	msgNoTemplate  = "No active message template found"
	msgSendFailed  = "Failed to send message via Messenger"
)

// leadOutcomes counts pipeline terminal states by outcome label.
var leadOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "leadgen_events_total",
		Help: "Total processed leadgen events by terminal outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(leadOutcomes)
}

// LeadgenEvent is one leadgen change extracted from a webhook delivery.
type LeadgenEvent struct {
	LeadgenID string
	AdID      string
	FormID    string
	PageID    string
}

// LeadPipeline orchestrates deduplication, ad lookup, lead fetch, template
// rendering, and message dispatch for incoming leadgen events.
type LeadPipeline struct {
	DB    *gorm.DB
	Graph graph.API
}

// Process runs the ingestion state machine for one event. It returns the
// persisted Lead, or (nil, nil) when the event was a duplicate and skipped.
// The returned error covers storage failures only; upstream failures are
// absorbed into the Lead's error annotation.
func (p *LeadPipeline) Process(ctx context.Context, ev LeadgenEvent) (*domain.Lead, error) {
	tr := otel.Tracer("services/LeadPipeline")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(
			attribute.String("leadgen.id", ev.LeadgenID),
			attribute.String("ad.id", ev.AdID),
		),
	)
	defer span.End()

	lg := log.With().Str("leadgen_id", ev.LeadgenID).Str("ad_id", ev.AdID).Logger()
	lg.Info().Msg("processing lead")

	// 1) Duplicate check. The unique index on lead_id is the authoritative
	// guard; this lookup just avoids pointless upstream calls.
	if _, err := repo.FindLeadByExternalID(ctx, p.DB, ev.LeadgenID); err == nil {
		lg.Info().Msg("lead already processed")
		leadOutcomes.WithLabelValues("duplicate").Inc()
		return nil, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	// 2) Ad lookup.
	ad, err := repo.FindAdByExternalID(ctx, p.DB, ev.AdID)
	if errors.Is(err, repo.ErrNotFound) {
		lg.Warn().Msg("ad not found in database")
		return p.persist(ctx, "unmatched_ad", &domain.Lead{
			LeadID:       ev.LeadgenID,
			ErrorMessage: msgAdNotFound,
		})
	}
	if err != nil {
		return nil, err
	}

	// 3) Lead field-data fetch.
	lead, err := p.Graph.FetchLead(ctx, ev.LeadgenID)
	if err != nil || lead == nil {
		lg.Error().Err(err).Msg("failed to fetch lead data")
		return p.persist(ctx, "fetch_failed", &domain.Lead{
			LeadID:       ev.LeadgenID,
			AdRef:        &ad.ID,
			ErrorMessage: msgFetchFailed,
		})
	}

	// 4) Derive user identity from the form fields.
	userFBID := lead.ID
	userName := deriveUserName(lead.Fields)

	// 5) Active template lookup.
	tpl, err := repo.FindActiveTemplateForAd(ctx, p.DB, ad.ID)
	if errors.Is(err, repo.ErrNotFound) {
		lg.Warn().Msg("no active template for ad")
		return p.persist(ctx, "no_template", &domain.Lead{
			LeadID:       ev.LeadgenID,
			AdRef:        &ad.ID,
			UserFBID:     userFBID,
			UserName:     userName,
			ErrorMessage: msgNoTemplate,
			FormData:     lead.Fields,
		})
	}
	if err != nil {
		return nil, err
	}

	// 6) Render.
	text := template.Fill(tpl.MessageText, lead.Fields, tpl.Variables)

	// 7) Dispatch.
	success := p.Graph.SendMessage(ctx, userFBID, text)

	// 8) Persist outcome.
	row := &domain.Lead{
		LeadID:      ev.LeadgenID,
		AdRef:       &ad.ID,
		UserFBID:    userFBID,
		UserName:    userName,
		MessageSent: success,
		MessageText: text,
		FormData:    lead.Fields,
	}
	outcome := "sent"
	if success {
		now := time.Now().UTC()
		row.MessageSentAt = &now
	} else {
		row.ErrorMessage = msgSendFailed
		outcome = "send_failed"
	}

	persisted, err := p.persist(ctx, outcome, row)
	if err == nil && persisted != nil {
		lg.Info().Bool("message_sent", success).Msg("lead processed")
	}
	return persisted, err
}

// persist writes the terminal Lead row in its own transaction. A duplicate
// insert means a concurrent delivery won the race; it is absorbed as a skip.
func (p *LeadPipeline) persist(ctx context.Context, outcome string, lead *domain.Lead) (*domain.Lead, error) {
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.CreateLead(tx, lead)
	})
	if errors.Is(err, repo.ErrDuplicate) {
		log.Info().Str("leadgen_id", lead.LeadID).Msg("lead inserted by concurrent delivery")
		leadOutcomes.WithLabelValues("duplicate").Inc()
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("leadgen_id", lead.LeadID).Msg("failed to persist lead")
		return nil, err
	}
	leadOutcomes.WithLabelValues(outcome).Inc()
	return lead, nil
}

// deriveUserName prefers an explicit full_name answer, falling back to
// "first_name last_name" with surrounding whitespace trimmed.
func deriveUserName(fields map[string]string) string {
	if full := fields["full_name"]; full != "" {
		return full
	}
	return strings.TrimSpace(fields["first_name"] + " " + fields["last_name"])
}
