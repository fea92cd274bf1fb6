// Package graph implements the outbound Facebook Graph API client used for
// the ad mirror, lead field-data fetches, and Messenger message dispatch.
//
// The client is deliberately thin: callers get either parsed payloads or an
// error; retry policy is left to the upstream webhook provider.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/leadpilot/go-leadgen-backend/internal/config"
)

// maxAdsPerSync caps pagination so a bad paging cursor can never loop forever.
const maxAdsPerSync = 1000

// adsPageLimit is the per-page record count requested from the ads edge.
const adsPageLimit = 100

// ErrNotConfigured is returned when a call requires credentials that are
// absent from the configuration.
var ErrNotConfigured = errors.New("graph: credentials not configured")

// NamedRef is an id/name pair as returned for campaign and adset expansions.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AdFields is one record from the ad account's ads edge.
type AdFields struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Campaign NamedRef `json:"campaign"`
	Adset    NamedRef `json:"adset"`
}

// LeadData is the parsed leadgen object: the lead's Graph id plus its form
// answers flattened to a name → first-value map.
type LeadData struct {
	ID          string
	CreatedTime string
	Fields      map[string]string
}

// API is the outbound contract consumed by the sync and ingestion services.
type API interface {
	// FetchActiveAds pulls the account's ads (ACTIVE and PAUSED), following
	// pagination up to a hard cap.
	FetchActiveAds(ctx context.Context) ([]AdFields, error)

	// FetchLead retrieves a submitted lead's field data by leadgen id.
	FetchLead(ctx context.Context, leadgenID string) (*LeadData, error)

	// SendMessage dispatches a Messenger text message. It reports true only
	// when the upstream response confirms delivery with a message id.
	SendMessage(ctx context.Context, recipientID, text string) bool
}

// Client talks to the Graph API over HTTP.
type Client struct {
	cfg  config.FacebookConfig
	http *http.Client
}

// NewClient builds a Client from configuration. A nil httpClient falls back
// to http.DefaultClient.
func NewClient(cfg config.FacebookConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, http: httpClient}
}

// versioned returns "<base>/<version>/<path>".
func (c *Client) versioned(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.cfg.GraphBaseURL, c.cfg.GraphVersion, strings.TrimPrefix(path, "/"))
}

// FetchActiveAds implements API.
func (c *Client) FetchActiveAds(ctx context.Context) ([]AdFields, error) {
	if c.cfg.AccessToken == "" || c.cfg.AdAccountID == "" {
		log.Warn().Msg("facebook credentials not configured")
		return nil, ErrNotConfigured
	}

	// effective_status must be a JSON-encoded array, not a repeated param.
	statusFilter, _ := json.Marshal([]string{"ACTIVE", "PAUSED"})

	params := url.Values{}
	params.Set("access_token", c.cfg.AccessToken)
	params.Set("fields", "id,name,status,campaign{id,name},adset{id,name}")
	params.Set("effective_status", string(statusFilter))
	params.Set("limit", fmt.Sprint(adsPageLimit))

	next := c.versioned(fmt.Sprintf("act_%s/ads", c.cfg.AdAccountID)) + "?" + params.Encode()

	var all []AdFields
	for next != "" {
		var page struct {
			Data   []AdFields `json:"data"`
			Paging struct {
				Next string `json:"next"`
			} `json:"paging"`
		}
		if err := c.getJSON(ctx, next, &page); err != nil {
			log.Error().Err(err).Msg("facebook ads fetch failed")
			return nil, err
		}
		all = append(all, page.Data...)
		log.Info().Int("page", len(page.Data)).Int("total", len(all)).Msg("fetched ads page")

		if len(all) >= maxAdsPerSync {
			log.Warn().Int("cap", maxAdsPerSync).Msg("reached ad pagination cap")
			break
		}
		next = page.Paging.Next
	}

	log.Info().Int("count", len(all)).Msg("fetched ads from facebook")
	return all, nil
}

// FetchLead implements API.
func (c *Client) FetchLead(ctx context.Context, leadgenID string) (*LeadData, error) {
	if c.cfg.AccessToken == "" {
		log.Warn().Msg("facebook access token not configured")
		return nil, ErrNotConfigured
	}
	if leadgenID == "" {
		return nil, errors.New("graph: empty leadgen id")
	}

	params := url.Values{}
	params.Set("access_token", c.cfg.AccessToken)
	params.Set("fields", "id,created_time,field_data")

	var raw struct {
		ID          string `json:"id"`
		CreatedTime string `json:"created_time"`
		FieldData   []struct {
			Name   string   `json:"name"`
			Values []string `json:"values"`
		} `json:"field_data"`
	}
	if err := c.getJSON(ctx, c.versioned(leadgenID)+"?"+params.Encode(), &raw); err != nil {
		log.Error().Err(err).Str("leadgen_id", leadgenID).Msg("facebook lead fetch failed")
		return nil, err
	}

	fields := make(map[string]string, len(raw.FieldData))
	for _, f := range raw.FieldData {
		if len(f.Values) > 0 {
			fields[f.Name] = f.Values[0]
		}
	}
	return &LeadData{ID: raw.ID, CreatedTime: raw.CreatedTime, Fields: fields}, nil
}

// SendMessage implements API.
func (c *Client) SendMessage(ctx context.Context, recipientID, text string) bool {
	if c.cfg.PageAccessToken == "" {
		log.Warn().Msg("page access token not configured")
		return false
	}
	if recipientID == "" || text == "" {
		log.Error().Msg("recipient id and message text are required")
		return false
	}

	payload := map[string]any{
		"recipient": map[string]string{"id": recipientID},
		"message":   map[string]string{"text": text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	endpoint := c.versioned("me/messages") + "?access_token=" + url.QueryEscape(c.cfg.PageAccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("messenger api error")
		return false
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("body", string(data)).Msg("messenger api error")
		return false
	}

	var result struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(data, &result); err != nil || result.MessageID == "" {
		log.Warn().Str("body", string(data)).Msg("no message_id in messenger response")
		return false
	}

	log.Info().Str("recipient", recipientID).Str("message_id", result.MessageID).Msg("message sent")
	return true
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graph: unexpected status %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}
