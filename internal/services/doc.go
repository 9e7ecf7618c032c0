// Package services talks to the movie matcher backend.
//
// # Authenticated Fetch
//
// [Client] issues JSON requests. When built with a [TokenStore] it wraps its transport in [oauth2.Transport],
// which attaches "Authorization: Bearer <token>" to every request. The store is read per request, so logging
// in or out takes effect without rebuilding the client. [MemoryTokenStore] lives for one process;
// [FileTokenStore] persists the token under ~/.mmx between invocations.
//
// # Error Handling
//
// Every failed request returns exactly one of:
//   - [*HTTPError] : the server answered outside 2xx (status + body)
//   - [*NetworkError] : the request went out but no usable response came back
//   - [*RequestSetupError] : the request was never sent (bad URL, unencodable body, no token)
//
// [UserMessage] maps these to display text: the server's JSON "message"/"error" field first, then
// [NoResponseMessage], then the raw error text.
//
// # Movie Service
//
// [MovieService] implements [MovieAPI] over the backend routes. Two responses are translated into
// sentinel errors from the shared package:
//   - [shared.ErrNoMoreCandidates] : 404 from the next-movie route (the user has seen everything)
//   - [shared.ErrNoSearchResults] : 404 or an empty list from search
package services
