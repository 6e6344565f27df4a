package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// seedEstimates is the fixed initial reference set inserted into an empty
// project_estimates table.
var seedEstimates = []ProjectEstimate{
	{ProjectType: "e-commerce website", BudgetRange: "$3k-$6k", TypicalTimeline: "2-3 months"},
	{ProjectType: "mobile restaurant app", BudgetRange: "$5k-$8k", TypicalTimeline: "3-4 months"},
	{ProjectType: "CRM system", BudgetRange: "$4k-$7k", TypicalTimeline: "4-6 months"},
	{ProjectType: "chatbot integration", BudgetRange: "$2k-$4k", TypicalTimeline: "2-3 months"},
	{ProjectType: "custom logistics", BudgetRange: "$10k-$20k", TypicalTimeline: "5-6 months"},
}

// SeedIfEmpty inserts the initial estimate rows when the table has zero rows.
// Calling it against an already-populated table is a no-op, so startup can run
// it unconditionally.
func (s *Store) SeedIfEmpty() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM project_estimates").Scan(&count); err != nil {
		return fmt.Errorf("counting estimates: %w", err)
	}
	if count > 0 {
		return nil
	}

	slog.Info("seeding project estimates", "rows", len(seedEstimates))
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range seedEstimates {
		if _, err := tx.Exec(`
			INSERT INTO project_estimates (project_type, budget_range, typical_timeline, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			e.ProjectType, e.BudgetRange, e.TypicalTimeline, now, now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("seeding estimate %q: %w", e.ProjectType, err)
		}
	}
	return tx.Commit()
}

// ListProjectTypes returns all distinct project type labels. The result is
// ordered lexicographically so that downstream first-match scans are
// deterministic. An empty table yields an empty slice, not an error.
func (s *Store) ListProjectTypes() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT project_type FROM project_estimates ORDER BY project_type")
	if err != nil {
		return nil, fmt.Errorf("listing project types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// LookupEstimate finds the estimate whose project type contains the query as a
// case-insensitive substring. When several rows match, the lexicographically
// first project type wins. Returns ErrNotFound when nothing matches.
func (s *Store) LookupEstimate(query string) (ProjectEstimate, error) {
	var e ProjectEstimate
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, project_type, budget_range, typical_timeline, created_at, updated_at
		FROM project_estimates
		WHERE instr(lower(project_type), lower(?)) > 0
		ORDER BY project_type
		LIMIT 1`, query,
	).Scan(&e.ID, &e.ProjectType, &e.BudgetRange, &e.TypicalTimeline, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return ProjectEstimate{}, ErrNotFound
	}
	if err != nil {
		return ProjectEstimate{}, fmt.Errorf("looking up estimate: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return ProjectEstimate{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return ProjectEstimate{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return e, nil
}

// ListEstimates returns every estimate row ordered by project type.
func (s *Store) ListEstimates() ([]ProjectEstimate, error) {
	rows, err := s.db.Query(`
		SELECT id, project_type, budget_range, typical_timeline, created_at, updated_at
		FROM project_estimates
		ORDER BY project_type`)
	if err != nil {
		return nil, fmt.Errorf("listing estimates: %w", err)
	}
	defer rows.Close()

	var ests []ProjectEstimate
	for rows.Next() {
		var e ProjectEstimate
		var createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.ProjectType, &e.BudgetRange, &e.TypicalTimeline, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		ests = append(ests, e)
	}
	return ests, rows.Err()
}

// AddEstimate inserts a new estimate row and returns its id. Labels are not
// required to be unique; overlapping labels only widen what LookupEstimate can
// match.
func (s *Store) AddEstimate(projectType, budgetRange, typicalTimeline string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		INSERT INTO project_estimates (project_type, budget_range, typical_timeline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		projectType, budgetRange, typicalTimeline, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting estimate: %w", err)
	}
	return res.LastInsertId()
}
