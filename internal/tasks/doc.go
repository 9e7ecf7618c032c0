// Package tasks runs operations that need several backend calls.
//
// # Operations
//
// [Engine] exposes three of them:
//
//  1. [Engine.Matches] : movies liked by every selected user
//     - Resolves usernames to IDs via the user listing (all users when none are named)
//     - Requires at least two users
//     - Sorts matches by how many users liked them
//
//  2. [Engine.Import] : bulk add titles to the catalogue
//     - Searches each title and adds the first hit
//     - A worker pool shares one [rate.Limiter] to stay under the search quota
//     - Per-title failures are reported, never fatal
//
//  3. [Engine.Dump] : raw responses of every read-only endpoint, for backups and debugging
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends use select with default, so a slow or
// absent reader never blocks the work.
package tasks
