package model

import "time"

// Example is one previously confirmed mapping, used for in-context learning.
// Sequences of examples are ordered newest first.
type Example struct {
	ConfirmedAt time.Time
	Date        string
	Amount      string
	Description string
	Category    string
}
