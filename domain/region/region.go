// Package region normalizes ISO 3166-1 alpha-2 region codes supplied by clients.
package region

import (
	"regexp"
	"strings"

	"trend-api/domain/model"
)

// DefaultRegion is served whenever a caller supplies an unusable region or is region-locked.
const DefaultRegion = "US"

var alpha2 = regexp.MustCompile(`^[A-Z]{2}$`)

// Normalize uppercases raw and returns it when it is exactly two ASCII letters.
// Any other shape silently falls back to DefaultRegion.
func Normalize(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !alpha2.MatchString(code) {
		return DefaultRegion
	}
	return code
}

// LockForTier coerces free callers to DefaultRegion.
func LockForTier(code string, tier model.AccessTier) string {
	if !tier.IsPaid() {
		return DefaultRegion
	}
	return code
}
