package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/repo"
	"github.com/leadpilot/go-leadgen-backend/internal/services"
)

func newLeadRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	h := NewLeadHandler(&services.LeadService{DB: db})
	r.GET("/leads", h.List)
	r.GET("/leads/stats", h.Stats)
	r.GET("/leads/:id", h.Get)
	return r
}

func TestLeadList_PaginatesAndEnriches(t *testing.T) {
	db := newHandlerDB(t)
	if err := db.Create(&domain.Ad{ID: "ad-1", AdID: "fb-1", AdName: "Summer"}).Error; err != nil {
		t.Fatalf("seed ad: %v", err)
	}
	adRef := "ad-1"
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		l := &domain.Lead{
			LeadID:    fmt.Sprintf("lg-%d", i),
			AdRef:     &adRef,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.CreateLead(db, l); err != nil {
			t.Fatalf("seed lead: %v", err)
		}
	}
	r := newLeadRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leads?page=1&page_size=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var page struct {
		Items []struct {
			LeadID string `json:"lead_id"`
			AdName string `json:"ad_name"`
		} `json:"items"`
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || page.Page != 1 || page.PageSize != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected envelope: %+v", page)
	}
	if page.Items[0].LeadID != "lg-2" {
		t.Fatalf("expected newest first, got %+v", page.Items)
	}
	if page.Items[0].AdName != "Summer" {
		t.Fatalf("expected ad_name enrichment, got %+v", page.Items[0])
	}
}

func TestLeadList_DefaultsOnJunkParams(t *testing.T) {
	r := newLeadRouter(newHandlerDB(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leads?page=banana&page_size=-5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var page struct {
		Page     int `json:"page"`
		PageSize int `json:"page_size"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Page != 1 || page.PageSize != 50 {
		t.Fatalf("unexpected defaults: %+v", page)
	}
}

func TestLeadGet(t *testing.T) {
	db := newHandlerDB(t)
	lead := &domain.Lead{LeadID: "lg-1", UserName: "Ada"}
	if err := repo.CreateLead(db, lead); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := newLeadRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leads/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: status = %d, want 404", w.Code)
	}
}

func TestLeadStats(t *testing.T) {
	db := newHandlerDB(t)
	for i, sent := range []bool{true, false} {
		l := &domain.Lead{LeadID: fmt.Sprintf("lg-%d", i), MessageSent: sent}
		if !sent {
			l.ErrorMessage = "Failed to send message via Messenger"
		}
		if err := repo.CreateLead(db, l); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	r := newLeadRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leads/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats repo.LeadStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalLeads != 2 || stats.MessagesSent != 1 || stats.MessagesFailed != 1 || stats.SuccessRate != 50 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
