package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/graph"
	"github.com/leadpilot/go-leadgen-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newHandlerDB opens a throwaway SQLite database with the full schema.
func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("handlers_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Ad{}, &domain.MessageTemplate{}, &domain.Lead{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// stubGraph is a minimal graph.API double for transport tests.
type stubGraph struct {
	lead   *graph.LeadData
	sendOK bool
}

func (s *stubGraph) FetchActiveAds(ctx context.Context) ([]graph.AdFields, error) { return nil, nil }
func (s *stubGraph) FetchLead(ctx context.Context, id string) (*graph.LeadData, error) {
	if s.lead == nil {
		return nil, fmt.Errorf("no lead scripted")
	}
	return s.lead, nil
}
func (s *stubGraph) SendMessage(ctx context.Context, recipientID, text string) bool {
	return s.sendOK
}

func newWebhookRouter(t *testing.T, db *gorm.DB, g graph.API) *gin.Engine {
	t.Helper()
	r := gin.New()
	h := NewWebhookHandler(&services.LeadPipeline{DB: db, Graph: g}, "verify-me", "app-secret")
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	return r
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerify_EchoesChallenge(t *testing.T) {
	r := newWebhookRouter(t, newHandlerDB(t), &stubGraph{})

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "12345" {
		t.Fatalf("body = %q, want raw challenge", w.Body.String())
	}
}

func TestWebhookVerify_RejectsBadToken(t *testing.T) {
	r := newWebhookRouter(t, newHandlerDB(t), &stubGraph{})

	cases := []string{
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1",
		"/webhook?hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=1",
		"/webhook",
	}
	for _, url := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("%s: status = %d, want 403", url, w.Code)
		}
	}
}

func TestWebhookReceive_RejectsBadSignature(t *testing.T) {
	db := newHandlerDB(t)
	r := newWebhookRouter(t, db, &stubGraph{})

	body := []byte(`{"object":"page","entry":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody(body, "wrong-secret"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	// Missing header entirely must also be rejected.
	req = httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("no header: status = %d, want 403", w.Code)
	}
}

func TestWebhookReceive_RejectsMalformedJSON(t *testing.T) {
	r := newWebhookRouter(t, newHandlerDB(t), &stubGraph{})

	body := []byte(`{not json`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody(body, "app-secret"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestWebhookReceive_ProcessesLeadgenEvents(t *testing.T) {
	db := newHandlerDB(t)
	if err := db.Create(&domain.Ad{ID: "ad-1", AdID: "fb-ad-1", AdName: "A", IsActive: true}).Error; err != nil {
		t.Fatalf("seed ad: %v", err)
	}
	if err := db.Create(&domain.MessageTemplate{
		ID: "t1", AdRef: "ad-1", TemplateName: "w", MessageText: "Hi {{first_name}}", IsActive: true,
	}).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}

	g := &stubGraph{
		lead:   &graph.LeadData{ID: "psid-1", Fields: map[string]string{"first_name": "Ada"}},
		sendOK: true,
	}
	r := newWebhookRouter(t, db, g)

	body := []byte(`{
		"object": "page",
		"entry": [{
			"id": "p1",
			"changes": [
				{"field": "leadgen", "value": {"leadgen_id": "lg-1", "ad_id": "fb-ad-1"}},
				{"field": "feed", "value": {}}
			]
		}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody(body, "app-secret"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}

	var lead domain.Lead
	if err := db.Where("lead_id = ?", "lg-1").First(&lead).Error; err != nil {
		t.Fatalf("lead row missing: %v", err)
	}
	if !lead.MessageSent || lead.MessageText != "Hi Ada" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
}

func TestWebhookReceive_AlwaysAcksProcessingFailures(t *testing.T) {
	db := newHandlerDB(t)
	r := newWebhookRouter(t, db, &stubGraph{}) // no ad seeded: unmatched

	body := []byte(`{
		"object": "page",
		"entry": [{"id": "p1", "changes": [{"field": "leadgen", "value": {"leadgen_id": "lg-1", "ad_id": "nope"}}]}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody(body, "app-secret"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when processing records a failure", w.Code)
	}

	var lead domain.Lead
	if err := db.Where("lead_id = ?", "lg-1").First(&lead).Error; err != nil {
		t.Fatalf("lead row missing: %v", err)
	}
	if lead.ErrorMessage != "Ad not found in database" {
		t.Fatalf("ErrorMessage = %q", lead.ErrorMessage)
	}
}
