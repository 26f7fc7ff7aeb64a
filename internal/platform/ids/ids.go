// Package ids produces the textual entity identifiers used across the
// system: a prefix followed by a zero-padded, strictly increasing integer
// (C01, AG01, L001, PAYMENT001). Sequences are per entity namespace; the
// next value is derived from the highest existing identifier, never from a
// row count, so deleted identifiers are never reused.
package ids

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Pad widths per identifier kind.
const (
	CustomerWidth = 2
	AgentWidth    = 2
	ClaimWidth    = 2
	PolicyWidth   = 3
	PaymentWidth  = 3
)

// Prefixes per identifier kind. Policy prefixes come from
// core.PolicyType.IDPrefix.
const (
	CustomerPrefix = "C"
	AgentPrefix    = "AG"
	ClaimPrefix    = "C" // claims table namespace, distinct from customer IDs
	PaymentPrefix  = "PAYMENT"
)

// Next returns the identifier following lastID. An empty lastID starts the
// sequence at 1. A lastID that does not carry the prefix or whose suffix is
// not an integer is an error; callers fall back to Timestamp so allocation
// never blocks a workflow.
func Next(prefix string, width int, lastID string) (string, error) {
	if lastID == "" {
		return format(prefix, width, 1), nil
	}
	if !strings.HasPrefix(lastID, prefix) {
		return "", fmt.Errorf("id %q does not match prefix %q", lastID, prefix)
	}
	n, err := strconv.Atoi(lastID[len(prefix):])
	if err != nil {
		return "", fmt.Errorf("malformed id %q: %w", lastID, err)
	}
	return format(prefix, width, n+1), nil
}

// Timestamp is the availability fallback: prefix plus a compact UTC stamp.
// It trades strict sequentiality for never failing outright.
func Timestamp(prefix string, t time.Time) string {
	return prefix + t.UTC().Format("20060102150405")
}

func format(prefix string, width, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}
