// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package sec

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail folds an email address into its canonical stored form.
//
// # Why NFKC?
//
// Visually identical Unicode sequences (composed vs. decomposed accents,
// full-width Latin) must map to the same account. NFKC normalization plus
// lower-casing closes the homograph gap that plain ToLower leaves open.
func NormalizeEmail(email string) string {
	folded := norm.NFKC.String(strings.TrimSpace(email))
	return strings.ToLower(folded)
}
