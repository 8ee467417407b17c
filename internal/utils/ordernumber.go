// Package utils holds small helpers shared across the service layer.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// orderSuffixBytes is the entropy behind an order number's random part.
// Three bytes render as six hex characters, 24 bits: enough that a
// collision within one day of realistic order volume is negligible, and
// the unique index plus one regeneration retry covers the rest.
const orderSuffixBytes = 3

// OrderNumber builds a human-readable order number of the form
// "PREFIX-YYYYMMDD-XXXXXX".  The date is the creation date in the
// storefront's local calendar; the suffix is drawn from crypto/rand and
// upper-cased for readability.
func OrderNumber(prefix string, localDate time.Time) (string, error) {
	b := make([]byte, orderSuffixBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("order number suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s",
		prefix,
		localDate.Format("20060102"),
		strings.ToUpper(hex.EncodeToString(b)),
	), nil
}
