// Package domain defines the persistence models for ads, message templates,
// and leads. These types are mapped with GORM and form the core data layer
// of the leadgen auto-responder.
package domain

import (
	"time"
)

// Ad is the local mirror of a Facebook/Instagram ad. Rows are created and
// refreshed by the periodic sync job; ads that disappear upstream are only
// deactivated, never deleted by sync. Deleting an ad through the management
// API cascades to its template and leads.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - AdID: the external (Graph API) ad identifier; unique, used for lookups
//     from webhook events.
//   - CampaignID/CampaignName, AdsetID/AdsetName: upstream grouping metadata.
//   - Platform: ad platform, defaults to "facebook".
//   - IsActive: cleared by sync when the ad no longer appears upstream.
//   - LastSyncedAt: when the sync job last saw this ad.
type Ad struct {
	ID           string    `json:"id"             gorm:"type:char(36);primaryKey"`
	AdID         string    `json:"ad_id"          gorm:"type:varchar(100);not null;uniqueIndex:ux_ads_ad_id"`
	AdName       string    `json:"ad_name"        gorm:"type:varchar(255);not null"`
	CampaignID   string    `json:"campaign_id"    gorm:"type:varchar(100)"`
	CampaignName string    `json:"campaign_name"  gorm:"type:varchar(255)"`
	AdsetID      string    `json:"adset_id"       gorm:"type:varchar(100)"`
	AdsetName    string    `json:"adset_name"     gorm:"type:varchar(255)"`
	Status       string    `json:"status"         gorm:"type:varchar(50)"`
	Platform     string    `json:"platform"       gorm:"type:varchar(50);default:facebook"`
	IsActive     bool      `json:"is_active"      gorm:"not null;index"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Ad.
func (Ad) TableName() string { return "ads" }

// MessageTemplate holds the reply text sent to a lead, with {{placeholder}}
// tokens resolved at send time from the lead's form fields and the template's
// own variable overrides. Each ad owns at most one template (unique ad_ref).
type MessageTemplate struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	AdRef        string    `json:"ad_id"         gorm:"column:ad_ref;type:char(36);not null;uniqueIndex:ux_templates_ad_ref"`
	TemplateName string    `json:"template_name" gorm:"type:varchar(255);not null"`
	MessageText  string    `json:"message_text"  gorm:"type:text;not null"`
	Variables    StringMap `json:"variables"     gorm:"type:text"`
	IsActive     bool      `json:"is_active"     gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Ad is the owning ad. Templates are cascade-deleted when their ad is
	// removed via the management API.
	Ad Ad `json:"-" gorm:"foreignKey:AdRef;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for MessageTemplate.
func (MessageTemplate) TableName() string { return "message_templates" }

// Lead is the append-only audit record written once per unique leadgen event.
// Exactly one row exists per external lead id; a duplicate webhook delivery is
// a no-op, enforced both by the pipeline's existence check and the unique
// index on lead_id as a backstop against concurrent deliveries.
//
// AdRef is nullable: a lead may arrive for an ad the sync job has not mirrored
// yet, in which case the row records the failure in ErrorMessage.
type Lead struct {
	ID            string     `json:"id"              gorm:"type:char(36);primaryKey"`
	LeadID        string     `json:"lead_id"         gorm:"type:varchar(100);not null;uniqueIndex:ux_leads_lead_id"`
	AdRef         *string    `json:"ad_id"           gorm:"column:ad_ref;type:char(36);index"`
	UserFBID      string     `json:"user_fb_id"      gorm:"type:varchar(100)"`
	UserName      string     `json:"user_name"       gorm:"type:varchar(255)"`
	MessageSent   bool       `json:"message_sent"    gorm:"not null"`
	MessageText   string     `json:"message_text"    gorm:"type:text"`
	MessageSentAt *time.Time `json:"message_sent_at"`
	ErrorMessage  string     `json:"error_message,omitempty" gorm:"type:text"`
	FormData      StringMap  `json:"form_data"       gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"`

	// Ad is the matched ad, when one was mirrored at ingestion time.
	Ad *Ad `json:"-" gorm:"foreignKey:AdRef;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string { return "leads" }
