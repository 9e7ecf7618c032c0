// Package session implements the swipe session: fetch a movie, show it, take a like or dislike, move on.
//
// # State
//
// A [Controller] is always in exactly one [State]:
//
//	Loading ──► Ready(candidate) ──decision──► Loading
//	   │
//	   ├──► Exhausted ──retry──► Loading
//	   └──► Failed(message) ──retry──► Loading
//
// Exhausted is reached when the backend reports there is nothing left to judge. It is an expected end
// rather than an error, so renderers can congratulate instead of warn.
//
// # Best-effort calls
//
// The remaining-movies counter and the decision write never change the state. Their failures are logged
// and the session moves on: a failed like/dislike still advances to the next movie and is not retried.
// The counter is refreshed in its own goroutine on every fetch and nothing waits for it, so a hung
// counts endpoint leaves the counter stale but never holds up a candidate.
// An optional [DecisionRecorder] keeps a local journal of what was submitted and whether it failed.
//
// # Overlapping fetches
//
// Every fetch takes the next sequence number when it starts. When it completes, its result is applied
// only if that number is still the latest, so the most recently issued fetch always decides the final state.
// [Controller.Retry] checks the state and enters Loading under one lock, so of two overlapping retries only
// the first fetches.
package session
