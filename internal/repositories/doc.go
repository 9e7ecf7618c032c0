// Package repositories implements SQLite persistence for the local decision journal.
//
// [DecisionRepository] implements models.Repository[*models.DecisionRecord] with soft deletes: deleted rows keep
// their data and are excluded from queries by default. [DecisionJournal] adapts the repository to the swipe
// session's recorder hook so every submitted decision, successful or not, is journaled.
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// [NextSequence] advances a per-table counter inside the caller's transaction, so a sequence number is
// consumed only when the row that carries it is committed.
package repositories
