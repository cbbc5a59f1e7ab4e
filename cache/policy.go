package cache

import "time"

// DefaultFreshnessWindow is the age under which a stored snapshot is served
// without recomputation.
const DefaultFreshnessWindow = 5 * time.Second

// Policy configures freshness decisions.
type Policy struct {
	// FreshnessWindow is the maximum age of a value that may be served.
	// Zero disables serving from cache.
	FreshnessWindow time.Duration
}

// DefaultPolicy returns the default freshness policy (5s window).
func DefaultPolicy() Policy {
	return Policy{FreshnessWindow: DefaultFreshnessWindow}
}

// NoCachePolicy returns a policy under which nothing is ever fresh.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if cached values may be served at all.
func (p Policy) ShouldCache() bool {
	return p.FreshnessWindow > 0
}

// IsFresh reports whether a value generated at generatedAt may still be
// served at now. A value stamped in the future counts as fresh.
func (p Policy) IsFresh(generatedAt, now time.Time) bool {
	if !p.ShouldCache() || generatedAt.IsZero() {
		return false
	}
	return now.Sub(generatedAt) < p.FreshnessWindow
}

// Age returns how old a value generated at generatedAt is at now, clamped at zero.
func (p Policy) Age(generatedAt, now time.Time) time.Duration {
	age := now.Sub(generatedAt)
	if age < 0 {
		return 0
	}
	return age
}
