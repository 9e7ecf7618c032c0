package models

import (
	"fmt"
	"time"
)

// DecisionRecord is a swipe decision submitted from this machine, persisted in the local journal.
//
// SubmitError holds the backend error text when the submission failed; the decision is journaled either way.
type DecisionRecord struct {
	id          string
	sequence    int
	username    string
	candidateID ID
	title       string
	year        int
	decision    Decision
	submitError string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

var _ Model = (*DecisionRecord)(nil)

// NewDecisionRecord creates a journal entry for decision on candidate.
func NewDecisionRecord(sequence int, username string, candidate Candidate, decision Decision, submitErr error) *DecisionRecord {
	now := time.Now()
	r := &DecisionRecord{
		sequence:    sequence,
		username:    username,
		candidateID: candidate.ID,
		title:       candidate.Title,
		year:        candidate.Year,
		decision:    decision,
		createdAt:   now,
		updatedAt:   now,
	}
	if submitErr != nil {
		r.submitError = submitErr.Error()
	}
	return r
}

func (r *DecisionRecord) ID() string           { return r.id }
func (r *DecisionRecord) Sequence() int        { return r.sequence }
func (r *DecisionRecord) Username() string     { return r.username }
func (r *DecisionRecord) CandidateID() ID      { return r.candidateID }
func (r *DecisionRecord) Title() string        { return r.title }
func (r *DecisionRecord) Year() int            { return r.year }
func (r *DecisionRecord) Decision() Decision   { return r.decision }
func (r *DecisionRecord) SubmitError() string  { return r.submitError }
func (r *DecisionRecord) Submitted() bool      { return r.submitError == "" }
func (r *DecisionRecord) CreatedAt() time.Time { return r.createdAt }
func (r *DecisionRecord) UpdatedAt() time.Time { return r.updatedAt }
func (r *DecisionRecord) DeletedAt() *time.Time {
	return r.deletedAt
}

func (r *DecisionRecord) SetID(id string)               { r.id = id }
func (r *DecisionRecord) SetSequence(seq int)           { r.sequence = seq }
func (r *DecisionRecord) SetCreatedAt(t time.Time)      { r.createdAt = t }
func (r *DecisionRecord) SetUpdatedAt(t time.Time)      { r.updatedAt = t }
func (r *DecisionRecord) SetDeletedAt(t *time.Time)     { r.deletedAt = t }
func (r *DecisionRecord) SetSubmitError(message string) { r.submitError = message }

// Validate checks the fields the journal schema requires.
func (r *DecisionRecord) Validate() error {
	if r.candidateID == "" {
		return fmt.Errorf("candidate id is required")
	}
	if r.title == "" {
		return fmt.Errorf("title is required")
	}
	if r.decision != Like && r.decision != Dislike {
		return fmt.Errorf("invalid decision %d", r.decision)
	}
	return nil
}
