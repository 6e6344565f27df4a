package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProjectEstimate is one row of the budget/timeline reference table. The
// project type is the canonical label used as the join key everywhere else:
// lead records and resolver output either carry one of these labels or the
// literal "unknown".
type ProjectEstimate struct {
	ID              int64     `json:"id"`
	ProjectType     string    `json:"project_type"`
	BudgetRange     string    `json:"budget_range"`
	TypicalTimeline string    `json:"typical_timeline"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Lead is a qualified prospect captured from a conversation or submitted via
// the API. Written once; there is no update path.
type Lead struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Contact           string    `json:"contact"`
	ProjectType       string    `json:"project_type"`
	ProjectDetails    string    `json:"project_details,omitempty"`
	EstimatedBudget   string    `json:"estimated_budget,omitempty"`
	EstimatedTimeline string    `json:"estimated_timeline,omitempty"`
	FollowUpConsent   bool      `json:"follow_up_consent"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
