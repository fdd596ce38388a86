/**
 * @description
 * Pure input validators shared by every mutating endpoint. Each function takes
 * a value and returns a boolean; the handlers run every validator for a
 * request and collect all failures into a per-field error map instead of
 * short-circuiting on the first one.
 *
 * Numeric validators accept float64 because the values arrive as JSON numbers;
 * integrality is part of what they check.
 */

package app

import (
	"math"
	"regexp"
	"strings"
)

// Five years in seconds. Due dates beyond this horizon are rejected as
// unbounded far-future values.
const maxFutureSeconds = 5 * 365 * 24 * 60 * 60

const maxDiscountBps = 10000

var (
	ledgerAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	hexHashPattern       = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
	emailPattern         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// IsValidLedgerAddress reports whether s is a ledger address: "0x" followed by
// exactly 64 hex characters.
func IsValidLedgerAddress(s string) bool {
	return ledgerAddressPattern.MatchString(s)
}

// IsValidHexHash reports whether s is a bare 64-character hex digest.
func IsValidHexHash(s string) bool {
	return hexHashPattern.MatchString(s)
}

// IsValidContentID reports whether s looks like a content identifier for the
// document store: minimum length 10 and a recognized CID prefix.
func IsValidContentID(s string) bool {
	return len(s) >= 10 && (strings.HasPrefix(s, "Qm") || strings.HasPrefix(s, "bafy"))
}

// IsPositiveInteger reports whether v is an integral value greater than zero.
func IsPositiveInteger(v float64) bool {
	return v == math.Trunc(v) && v > 0
}

// IsFutureTimestamp reports whether ts (unix seconds) is strictly after now
// and within the five-year horizon.
func IsFutureTimestamp(ts float64, now int64) bool {
	if ts != math.Trunc(ts) {
		return false
	}
	t := int64(ts)
	return t > now && t < now+maxFutureSeconds
}

// IsValidDiscountBps reports whether v is an integral discount rate in
// basis points, inclusive range [0, 10000].
func IsValidDiscountBps(v float64) bool {
	return v == math.Trunc(v) && v >= 0 && v <= maxDiscountBps
}

// IsValidEmail is a light-weight shape check, not full RFC 5322 validation.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
