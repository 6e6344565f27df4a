package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveLead inserts a lead and returns its assigned id. Timestamps are set
// here; callers never supply them.
func (s *Store) SaveLead(l Lead) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		INSERT INTO leads (name, contact, project_type, project_details, estimated_budget, estimated_timeline, follow_up_consent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Name, l.Contact, l.ProjectType, nullable(l.ProjectDetails),
		nullable(l.EstimatedBudget), nullable(l.EstimatedTimeline),
		l.FollowUpConsent, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting lead: %w", err)
	}
	return res.LastInsertId()
}

// GetLead returns the lead with the given id, or ErrNotFound.
func (s *Store) GetLead(id int64) (Lead, error) {
	row := s.db.QueryRow(`
		SELECT id, name, contact, project_type, project_details, estimated_budget, estimated_timeline, follow_up_consent, created_at, updated_at
		FROM leads WHERE id = ?`, id,
	)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return Lead{}, ErrNotFound
	}
	return l, err
}

// ListLeads returns all leads, newest first.
func (s *Store) ListLeads() ([]Lead, error) {
	rows, err := s.db.Query(`
		SELECT id, name, contact, project_type, project_details, estimated_budget, estimated_timeline, follow_up_consent, created_at, updated_at
		FROM leads ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var l Lead
	var details, budget, timeline sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&l.ID, &l.Name, &l.Contact, &l.ProjectType, &details, &budget, &timeline, &l.FollowUpConsent, &createdAt, &updatedAt)
	if err != nil {
		return Lead{}, err
	}
	l.ProjectDetails = details.String
	l.EstimatedBudget = budget.String
	l.EstimatedTimeline = timeline.String
	if l.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Lead{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if l.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Lead{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return l, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
