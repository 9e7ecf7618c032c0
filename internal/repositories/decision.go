package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/shared"
)

var _ models.Repository[*models.DecisionRecord] = (*DecisionRepository)(nil)

// ErrDecisionNotFound is returned when no live journal entry has the requested ID.
var ErrDecisionNotFound = errors.New("decision not found")

const decisionColumns = `id, sequence, username, candidate_id, title, year, decision, submit_error, created_at, updated_at, deleted_at`

// DecisionRepository implements models.Repository[*models.DecisionRecord] for the local journal.
type DecisionRepository struct {
	db *sql.DB
}

// NewDecisionRepository creates a new DecisionRepository with the given database connection
func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Create inserts a new [models.DecisionRecord] with generated ID and sequence
func (r *DecisionRepository) Create(record *models.DecisionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "decisions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO decisions (id, sequence, username, candidate_id, title, year, decision, submit_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		record.Username(),
		record.CandidateID().String(),
		record.Title(),
		record.Year(),
		record.Decision().String(),
		nullString(record.SubmitError()),
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit decision: %w", err)
	}

	record.SetID(id)
	record.SetSequence(sequence)
	return nil
}

// Get retrieves a decision by ID, excluding soft-deleted entries
func (r *DecisionRepository) Get(id string) (*models.DecisionRecord, error) {
	query := `SELECT ` + decisionColumns + ` FROM decisions WHERE id = ? AND deleted_at IS NULL`

	record, err := scanDecision(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDecisionNotFound, id)
	}
	return record, err
}

// Update rewrites the mutable fields of a decision (its submission outcome).
func (r *DecisionRepository) Update(record *models.DecisionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	query := `
		UPDATE decisions
		SET decision = ?, submit_error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, record.Decision().String(), nullString(record.SubmitError()), now, record.ID())
	if err != nil {
		return fmt.Errorf("failed to update decision: %w", err)
	}
	return expectOneRow(result, record.ID())
}

// Delete soft-deletes a decision by ID
func (r *DecisionRepository) Delete(id string) error {
	query := `UPDATE decisions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete decision: %w", err)
	}
	return expectOneRow(result, id)
}

// List retrieves live decisions in sequence order.
//
// Supported criteria: "username" (string), "decision" ([models.Decision]), "candidate_id" ([models.ID] or string),
// "failed" (bool: only entries whose submission failed).
func (r *DecisionRepository) List(criteria map[string]any) ([]*models.DecisionRecord, error) {
	query := `SELECT ` + decisionColumns + ` FROM decisions WHERE deleted_at IS NULL`
	args := []any{}

	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}

	if decision, ok := criteria["decision"].(models.Decision); ok {
		query += " AND decision = ?"
		args = append(args, decision.String())
	}

	switch id := criteria["candidate_id"].(type) {
	case models.ID:
		query += " AND candidate_id = ?"
		args = append(args, id.String())
	case string:
		query += " AND candidate_id = ?"
		args = append(args, id)
	}

	if failed, ok := criteria["failed"].(bool); ok && failed {
		query += " AND submit_error IS NOT NULL"
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var records []*models.DecisionRecord
	for rows.Next() {
		record, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanDecision reads one row of [decisionColumns] from a [sql.Row] or [sql.Rows].
func scanDecision(s scanner) (*models.DecisionRecord, error) {
	var (
		id          string
		sequence    int
		username    string
		candidateID string
		title       string
		year        int
		decision    string
		submitError sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &username, &candidateID, &title, &year, &decision, &submitError, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan decision: %w", err)
	}

	d, err := models.ParseDecision(decision)
	if err != nil {
		return nil, fmt.Errorf("corrupt decision row %s: %w", id, err)
	}

	candidate := models.Candidate{ID: models.ID(candidateID), Title: title, Year: year}
	record := models.NewDecisionRecord(sequence, username, candidate, d, nil)
	record.SetID(id)
	record.SetSubmitError(submitError.String)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", ErrDecisionNotFound, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
