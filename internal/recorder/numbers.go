package recorder

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const (
	invoicePrefix = "INV"
	orderPrefix   = "RO"
	// numberAttempts bounds regeneration after a unique-constraint clash.
	numberAttempts = 3
)

// Number formats a document number such as INV-250314-093012-9f3a.
func Number(prefix string, at time.Time, suffix string) string {
	return prefix + "-" + at.Format("060102-150405") + "-" + suffix
}

func randomSuffix() string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return "0000"
	}
	return hex.EncodeToString(b)
}
