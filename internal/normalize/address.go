package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FingerprintAddress returns a stable digest for a postal address, used as
// the natural key for venue deduplication. The function is total: malformed
// or empty fields normalize to empty components rather than erroring.
//
// Components are joined with a newline, which cannot survive the whitespace
// normalization inside any component, so field boundaries are unambiguous.
func FingerprintAddress(street, city, state, zip string) string {
	joined := strings.Join([]string{
		normalizeComponent(street),
		normalizeComponent(city),
		normalizeComponent(state),
		normalizeComponent(zip),
	}, "\n")

	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// normalizeComponent trims, collapses internal whitespace runs to a single
// space, and lowercases one address field.
func normalizeComponent(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
