package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/mmx/internal/models"
)

// DecisionJournal records swipe decisions in a [DecisionRepository] on behalf of one account.
//
// It satisfies the session recorder hook.
type DecisionJournal struct {
	repo     *DecisionRepository
	username string
}

// NewDecisionJournal creates a journal writing entries for username.
func NewDecisionJournal(repo *DecisionRepository, username string) *DecisionJournal {
	return &DecisionJournal{repo: repo, username: username}
}

// RecordDecision journals decision on candidate along with the submission error, if any.
func (j *DecisionJournal) RecordDecision(ctx context.Context, candidate models.Candidate, decision models.Decision, submitErr error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	record := models.NewDecisionRecord(0, j.username, candidate, decision, submitErr)
	if err := j.repo.Create(record); err != nil {
		return fmt.Errorf("failed to journal decision: %w", err)
	}
	return nil
}

// Entries lists this account's journaled decisions, oldest first. failedOnly keeps entries whose submission failed.
func (j *DecisionJournal) Entries(failedOnly bool) ([]*models.DecisionRecord, error) {
	return j.repo.List(map[string]any{"username": j.username, "failed": failedOnly})
}
