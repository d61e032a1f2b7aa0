// Package xid issues prefixed, time-ordered identifiers for invoices,
// sessions, and other records created by this service.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}

// InvoiceNumber formats the sequential, date-scoped invoice number. The
// caller owns the per-date counter.
func InvoiceNumber(date string, seq int) string {
	compact := ""
	for _, r := range date {
		if r >= '0' && r <= '9' {
			compact += string(r)
		}
	}
	return fmt.Sprintf("INV-%s-%d", compact, seq)
}
