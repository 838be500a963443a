// Package model defines the core domain types used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
)

// Row represents a single uploaded transaction row awaiting categorization.
// Index is stable within one uploaded file.
type Row struct {
	Raw         map[string]string
	Date        string
	Amount      string
	Description string
	Category    string
	Index       int
	Mapped      bool
}

// Eligible reports whether the row carries the fields required for
// categorization.
func (r Row) Eligible() bool {
	return r.Date != "" && r.Amount != "" && r.Description != ""
}

// ContentHash returns the hash used to key a progress file to the upload it
// was created from.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum)
}
