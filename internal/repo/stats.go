// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides aggregate queries used by the lead
// statistics endpoint.
package repo

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
)

// AdLeadCount pairs an ad name with the number of leads captured for it.
type AdLeadCount struct {
	AdName string `json:"ad_name"`
	Count  int64  `json:"count"`
}

// LeadStats aggregates delivery outcomes across all leads.
type LeadStats struct {
	TotalLeads     int64         `json:"total_leads"`
	MessagesSent   int64         `json:"messages_sent"`
	MessagesFailed int64         `json:"messages_failed"`
	SuccessRate    float64       `json:"success_rate"`
	LeadsByAd      []AdLeadCount `json:"leads_by_ad"`
}

// LeadStatsSummary computes totals, failure counts, the send success rate
// (percentage, two decimals), and a per-ad breakdown for matched leads.
func LeadStatsSummary(ctx context.Context, db *gorm.DB) (*LeadStats, error) {
	var stats LeadStats

	q := db.WithContext(ctx).Model(&domain.Lead{})
	if err := q.Count(&stats.TotalLeads).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&domain.Lead{}).
		Where("message_sent = ?", true).
		Count(&stats.MessagesSent).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&domain.Lead{}).
		Where("message_sent = ? AND error_message IS NOT NULL AND error_message <> ''", false).
		Count(&stats.MessagesFailed).Error; err != nil {
		return nil, err
	}

	if stats.TotalLeads > 0 {
		rate := float64(stats.MessagesSent) / float64(stats.TotalLeads) * 100
		stats.SuccessRate = math.Round(rate*100) / 100
	}

	err := db.WithContext(ctx).Model(&domain.Lead{}).
		Select("ads.ad_name AS ad_name, COUNT(leads.id) AS count").
		Joins("JOIN ads ON ads.id = leads.ad_ref").
		Group("ads.id").
		Scan(&stats.LeadsByAd).Error
	if err != nil {
		return nil, err
	}
	if stats.LeadsByAd == nil {
		stats.LeadsByAd = []AdLeadCount{}
	}
	return &stats, nil
}
