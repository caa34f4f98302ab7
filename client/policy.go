package client

import "strings"

// Policy is the routing policy of the request pipeline: which paths are
// credential-exempt, which skip the busy counter, and which 404s are valid
// domain states. Policy is data passed to the constructor, not behavior
// scattered through call sites.
type Policy struct {
	// ExemptPrefixes never carry a credential and never trigger a refresh.
	// A 401 from them passes through unmodified.
	ExemptPrefixes []string

	// LowNoisePrefixes skip the busy counter so background polling does not
	// flicker the UI. Exempt paths are implicitly low-noise.
	LowNoisePrefixes []string

	// Allowlisted404Prefixes are paths whose 404 responses propagate without
	// a user-facing notification.
	Allowlisted404Prefixes []string
}

// DefaultPolicy returns the policy for the ShipMate API surface.
func DefaultPolicy() Policy {
	return Policy{
		ExemptPrefixes: []string{
			"/auth/login",
			"/auth/register",
			"/auth/refresh",
			"/auth/logout",
			"/auth/verify-email",
			"/auth/reset-password",
			"/auth/forgot-password",
		},
		LowNoisePrefixes: []string{
			"/notifications/me/unread-count",
			"/bookings/me/active",
		},
		Allowlisted404Prefixes: []string{
			"/drivers/me",
			"/insurance/shipments/",
		},
	}
}

func (p Policy) isEmpty() bool {
	return len(p.ExemptPrefixes) == 0 && len(p.LowNoisePrefixes) == 0 && len(p.Allowlisted404Prefixes) == 0
}

// IsExempt reports whether path is credential-exempt.
func (p Policy) IsExempt(path string) bool {
	return matchPrefix(p.ExemptPrefixes, path)
}

// IsLowNoise reports whether path skips the busy counter.
func (p Policy) IsLowNoise(path string) bool {
	return p.IsExempt(path) || matchPrefix(p.LowNoisePrefixes, path)
}

// Allows404 reports whether a 404 from path is a valid domain state.
func (p Policy) Allows404(path string) bool {
	return matchPrefix(p.Allowlisted404Prefixes, path)
}

func matchPrefix(prefixes []string, path string) bool {
	// Match against the path only, not the query string.
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
