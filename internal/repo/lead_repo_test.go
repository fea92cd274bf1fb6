package repo

import (
	"context"
	"testing"
	"time"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
)

func TestCreateLead_AssignsIDAndTimestamp(t *testing.T) {
	db := newTestDB(t)
	start := time.Now().UTC().Add(-time.Minute)

	lead := &domain.Lead{
		LeadID:   "lg-1",
		UserFBID: "u-1",
		UserName: "Ada",
		FormData: domain.StringMap{"email": "ada@example.com"},
	}
	if err := CreateLead(db, lead); err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if lead.ID == "" {
		t.Fatalf("expected generated id")
	}
	if lead.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset: %v", lead.CreatedAt)
	}

	got, err := FindLeadByExternalID(context.Background(), db, "lg-1")
	if err != nil {
		t.Fatalf("FindLeadByExternalID: %v", err)
	}
	if got.UserName != "Ada" || got.FormData["email"] != "ada@example.com" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestCreateLead_DuplicateLeadID(t *testing.T) {
	db := newTestDB(t)
	if err := CreateLead(db, &domain.Lead{LeadID: "lg-1"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := CreateLead(db, &domain.Lead{LeadID: "lg-1"}); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetLead_PreloadsAd(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&domain.Ad{ID: "ad-1", AdID: "fb-1", AdName: "Summer"}).Error; err != nil {
		t.Fatalf("seed ad: %v", err)
	}
	adRef := "ad-1"
	lead := &domain.Lead{LeadID: "lg-1", AdRef: &adRef}
	if err := CreateLead(db, lead); err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	got, err := GetLead(context.Background(), db, lead.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.Ad == nil || got.Ad.AdName != "Summer" {
		t.Fatalf("expected preloaded ad, got %+v", got.Ad)
	}

	if _, err := GetLead(context.Background(), db, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListLeadsPage_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"lg-1", "lg-2", "lg-3"} {
		l := &domain.Lead{LeadID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := CreateLead(db, l); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	total, err := CountLeads(context.Background(), db)
	if err != nil || total != 3 {
		t.Fatalf("CountLeads = %d, %v", total, err)
	}

	page, err := ListLeadsPage(context.Background(), db, 0, 2)
	if err != nil {
		t.Fatalf("ListLeadsPage: %v", err)
	}
	if len(page) != 2 || page[0].LeadID != "lg-3" || page[1].LeadID != "lg-2" {
		t.Fatalf("unexpected page: %+v", page)
	}

	rest, err := ListLeadsPage(context.Background(), db, 2, 2)
	if err != nil {
		t.Fatalf("ListLeadsPage offset: %v", err)
	}
	if len(rest) != 1 || rest[0].LeadID != "lg-1" {
		t.Fatalf("unexpected tail page: %+v", rest)
	}
}
