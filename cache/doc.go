// Package cache holds the most recent value of a periodically recomputed
// result and decides when it is still fresh enough to serve.
//
// It provides three small pieces:
//
//   - Store: a single value behind an atomic pointer. Readers see either the
//     previous value or the new one, never a partial update.
//   - Policy: the freshness window that decides whether a stored value may be
//     served without recomputation.
//   - Guard: a non-blocking try-lock that keeps at most one recomputation in
//     flight. Callers that lose the race skip, they never wait.
package cache
