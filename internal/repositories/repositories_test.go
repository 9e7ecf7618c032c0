package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newRecord(username, id, title string, d models.Decision, submitErr error) *models.DecisionRecord {
	return models.NewDecisionRecord(0, username, models.Candidate{ID: models.ID(id), Title: title, Year: 1995}, d, submitErr)
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	next := func(t *testing.T, table string, commit bool) (int, error) {
		t.Helper()
		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("failed to begin transaction: %v", err)
		}
		seq, err := NextSequence(tx, table)
		if commit && err == nil {
			if err := tx.Commit(); err != nil {
				t.Fatalf("failed to commit: %v", err)
			}
			return seq, nil
		}
		tx.Rollback()
		return seq, err
	}

	for want := 1; want <= 3; want++ {
		got, err := next(t, "decisions", true)
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}

	t.Run("rolled back numbers are reused", func(t *testing.T) {
		if got, err := next(t, "decisions", false); err != nil || got != 4 {
			t.Fatalf("expected 4 inside the transaction, got %d (%v)", got, err)
		}
		if got, err := next(t, "decisions", true); err != nil || got != 4 {
			t.Errorf("expected 4 after rollback, got %d (%v)", got, err)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		if _, err := next(t, "nope", false); err == nil {
			t.Error("expected error for missing sequence table")
		}
	})
}

func TestDecisionRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewDecisionRepository(setupTestDB(t))
		record := newRecord("alice", "7", "Heat", models.Like, nil)

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create decision: %v", err)
		}
		if record.ID() == "" {
			t.Error("ID should be set after creation")
		}
		if record.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", record.Sequence())
		}
	})

	t.Run("failed insert does not consume a sequence", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewDecisionRepository(db)

		if _, err := db.Exec("DROP TABLE decisions"); err != nil {
			t.Fatalf("failed to drop table: %v", err)
		}
		record := newRecord("alice", "7", "Heat", models.Like, nil)
		if err := repo.Create(record); err == nil {
			t.Fatal("expected insert error")
		}
		if record.ID() != "" || record.Sequence() != 0 {
			t.Errorf("record should be untouched, got id %q sequence %d", record.ID(), record.Sequence())
		}

		var value int
		if err := db.QueryRow("SELECT value FROM decisions_sequence WHERE id = 1").Scan(&value); err != nil {
			t.Fatalf("failed to read sequence: %v", err)
		}
		if value != 0 {
			t.Errorf("expected sequence to stay at 0, got %d", value)
		}
	})

	t.Run("Create rejects invalid records", func(t *testing.T) {
		repo := NewDecisionRepository(setupTestDB(t))
		if err := repo.Create(newRecord("alice", "", "Heat", models.Like, nil)); err == nil {
			t.Error("expected validation error for missing candidate id")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewDecisionRepository(setupTestDB(t))
		record := newRecord("alice", "7", "Heat", models.Dislike, errors.New("server responded with status 500"))
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create decision: %v", err)
		}

		got, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get decision: %v", err)
		}
		if got.CandidateID() != "7" || got.Title() != "Heat" || got.Year() != 1995 {
			t.Errorf("unexpected record %+v", got)
		}
		if got.Decision() != models.Dislike {
			t.Errorf("expected dislike, got %v", got.Decision())
		}
		if got.Submitted() || got.SubmitError() != "server responded with status 500" {
			t.Errorf("expected submit error to round trip, got %q", got.SubmitError())
		}
		if got.Username() != "alice" {
			t.Errorf("expected alice, got %s", got.Username())
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewDecisionRepository(setupTestDB(t))
		if _, err := repo.Get("missing"); !errors.Is(err, ErrDecisionNotFound) {
			t.Errorf("expected ErrDecisionNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewDecisionRepository(setupTestDB(t))
		record := newRecord("alice", "7", "Heat", models.Like, errors.New("timeout"))
		repo.Create(record)

		record.SetSubmitError("")
		if err := repo.Update(record); err != nil {
			t.Fatalf("failed to update: %v", err)
		}

		got, _ := repo.Get(record.ID())
		if !got.Submitted() {
			t.Errorf("expected submitted after clearing error, got %q", got.SubmitError())
		}
	})

	t.Run("Delete is soft", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewDecisionRepository(db)
		record := newRecord("alice", "7", "Heat", models.Like, nil)
		repo.Create(record)

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(record.ID()); !errors.Is(err, ErrDecisionNotFound) {
			t.Errorf("deleted record should not be returned, got %v", err)
		}
		if err := repo.Delete(record.ID()); !errors.Is(err, ErrDecisionNotFound) {
			t.Errorf("second delete should fail, got %v", err)
		}

		var count int
		db.QueryRow("SELECT COUNT(*) FROM decisions WHERE deleted_at IS NOT NULL").Scan(&count)
		if count != 1 {
			t.Errorf("expected row to be kept, got %d", count)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewDecisionRepository(setupTestDB(t))
		repo.Create(newRecord("alice", "1", "Heat", models.Like, nil))
		repo.Create(newRecord("alice", "2", "Ronin", models.Dislike, errors.New("boom")))
		repo.Create(newRecord("bob", "1", "Heat", models.Dislike, nil))

		tests := []struct {
			name     string
			criteria map[string]any
			want     []string
		}{
			{"all", nil, []string{"1", "2", "1"}},
			{"by username", map[string]any{"username": "alice"}, []string{"1", "2"}},
			{"by decision", map[string]any{"decision": models.Dislike}, []string{"2", "1"}},
			{"by candidate", map[string]any{"candidate_id": models.ID("1")}, []string{"1", "1"}},
			{"by candidate string", map[string]any{"candidate_id": "2"}, []string{"2"}},
			{"failed only", map[string]any{"failed": true}, []string{"2"}},
			{"combined", map[string]any{"username": "bob", "decision": models.Like}, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				records, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("List failed: %v", err)
				}
				if len(records) != len(tt.want) {
					t.Fatalf("expected %d records, got %d", len(tt.want), len(records))
				}
				for i, r := range records {
					if r.CandidateID().String() != tt.want[i] {
						t.Errorf("record %d: expected candidate %s, got %s", i, tt.want[i], r.CandidateID())
					}
				}
			})
		}
	})
}

func TestDecisionJournal(t *testing.T) {
	ctx := context.Background()
	repo := NewDecisionRepository(setupTestDB(t))
	journal := NewDecisionJournal(repo, "alice")
	other := NewDecisionJournal(repo, "bob")

	heat := models.Candidate{ID: "7", Title: "Heat", Year: 1995}
	if err := journal.RecordDecision(ctx, heat, models.Like, nil); err != nil {
		t.Fatalf("RecordDecision failed: %v", err)
	}
	if err := journal.RecordDecision(ctx, models.Candidate{ID: "8", Title: "Ronin"}, models.Dislike, errors.New("offline")); err != nil {
		t.Fatalf("RecordDecision failed: %v", err)
	}
	other.RecordDecision(ctx, heat, models.Dislike, nil)

	t.Run("entries are per account", func(t *testing.T) {
		entries, err := journal.Entries(false)
		if err != nil {
			t.Fatalf("Entries failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Title() != "Heat" || entries[0].Decision() != models.Like {
			t.Errorf("unexpected first entry %s %v", entries[0].Title(), entries[0].Decision())
		}
	})

	t.Run("failed only", func(t *testing.T) {
		entries, _ := journal.Entries(true)
		if len(entries) != 1 || entries[0].SubmitError() != "offline" {
			t.Errorf("expected the failed submission, got %d entries", len(entries))
		}
	})

	t.Run("invalid candidate", func(t *testing.T) {
		if err := journal.RecordDecision(ctx, models.Candidate{}, models.Like, nil); err == nil {
			t.Error("expected error for empty candidate")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := journal.RecordDecision(cctx, heat, models.Like, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
