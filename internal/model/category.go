package model

import (
	"strings"
	"time"
)

// Category represents a valid budget category.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int
	IsActive  bool
}

// CategorySet is the ordered, externally owned vocabulary of valid category
// names. Canonical form is case-sensitive; order is preserved for prompt
// rendering.
type CategorySet []string

// Contains reports whether name is present in its exact canonical form.
func (s CategorySet) Contains(name string) bool {
	for _, c := range s {
		if c == name {
			return true
		}
	}
	return false
}

// CanonicalFold returns the canonical form matching name case-insensitively,
// or "" when no member matches.
func (s CategorySet) CanonicalFold(name string) string {
	for _, c := range s {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return ""
}

// DefaultCategories are seeded on first run, matching the stock budget
// buckets.
var DefaultCategories = CategorySet{
	"Food & Groceries",
	"Transportation",
	"Entertainment",
	"Utilities",
	"Healthcare",
	"Shopping",
	"Subscriptions",
	"Savings",
	"Investments",
	"Other",
}
