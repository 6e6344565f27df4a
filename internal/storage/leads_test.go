package storage

import (
	"errors"
	"testing"
)

func TestSaveAndGetLead(t *testing.T) {
	s := openTestStore(t)

	id, err := s.SaveLead(Lead{
		Name:              "Jane Doe",
		Contact:           "jane@example.com",
		ProjectType:       "e-commerce website",
		ProjectDetails:    "for my bakery, around 200 products",
		EstimatedBudget:   "$3k-$6k",
		EstimatedTimeline: "2-3 months",
		FollowUpConsent:   true,
	})
	if err != nil {
		t.Fatalf("SaveLead: %v", err)
	}
	if id == 0 {
		t.Fatal("SaveLead returned zero id")
	}

	got, err := s.GetLead(id)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.Name != "Jane Doe" || got.Contact != "jane@example.com" {
		t.Errorf("GetLead = %+v, want Jane Doe / jane@example.com", got)
	}
	if !got.FollowUpConsent {
		t.Error("FollowUpConsent not persisted")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set by store")
	}
}

func TestSaveLeadOptionalFieldsAbsent(t *testing.T) {
	s := openTestStore(t)

	id, err := s.SaveLead(Lead{
		Name:        "Bob",
		Contact:     "555-123-4567",
		ProjectType: "unknown",
	})
	if err != nil {
		t.Fatalf("SaveLead: %v", err)
	}

	got, err := s.GetLead(id)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.ProjectDetails != "" || got.EstimatedBudget != "" || got.EstimatedTimeline != "" {
		t.Errorf("optional fields should be empty, got %+v", got)
	}
	if got.FollowUpConsent {
		t.Error("FollowUpConsent should default to false")
	}
}

func TestGetLeadNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetLead(42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLead(42) error = %v, want ErrNotFound", err)
	}
}

func TestListLeadsNewestFirst(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.SaveLead(Lead{Name: name, Contact: "x@example.com", ProjectType: "CRM system"}); err != nil {
			t.Fatalf("SaveLead(%s): %v", name, err)
		}
	}

	leads, err := s.ListLeads()
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	if len(leads) != 3 {
		t.Fatalf("len(leads) = %d, want 3", len(leads))
	}
	if leads[0].Name != "third" || leads[2].Name != "first" {
		t.Errorf("leads not newest-first: %s, %s, %s", leads[0].Name, leads[1].Name, leads[2].Name)
	}
}
