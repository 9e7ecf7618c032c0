// Package models defines domain entities and persistence interfaces for the mmx movie matcher client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs decoded from the backend's JSON
//   - [Candidate] : The movie presented for a swipe decision
//   - [Progress] : Seen/unseen counters for the current user
//   - [Match] : A movie liked by every compared user
//   - [LibraryMovie] : A catalogue entry with likes and the users who have not seen it yet
//   - [SearchResult] : An OMDb search hit that can be added to the catalogue
//   - [User], [HistoryEntry] : Account listing and per-user decision history
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [DecisionRecord] : A decision submitted from this machine, kept in the local journal
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
