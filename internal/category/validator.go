// Package category validates LLM-proposed category names against the known
// category set. It never invents a category: every accepted value is a member
// of the set in its canonical casing.
package category

import (
	"strings"

	"github.com/pkozlov/bucketeer/internal/model"
)

// Status is the outcome of validating one candidate name.
type Status int

// Validation statuses.
const (
	// StatusMatched means the candidate matched a known category exactly.
	StatusMatched Status = iota
	// StatusCorrected means the candidate matched after case folding or
	// normalization; Category holds the canonical form.
	StatusCorrected
	// StatusRejected means no known category matched.
	StatusRejected
)

// Validation is the result of checking a candidate against the category set.
type Validation struct {
	// Category is the canonical category name, empty when rejected.
	Category string
	// Corrections notes the transformations applied, in order.
	Corrections []string
	Status      Status
}

// Normalizer is the configurable cleanup policy applied before the fallback
// match. The default trims outer whitespace, strips surrounding punctuation
// and quotes, and collapses internal whitespace runs to a single space.
type Normalizer func(string) string

// DefaultNormalizer implements the stock cleanup policy.
func DefaultNormalizer(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ".,;:!?\"'`()[]")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// Validator checks candidate names against a known category set.
type Validator struct {
	normalize Normalizer
}

// NewValidator creates a validator with the given normalization policy.
// A nil policy selects DefaultNormalizer.
func NewValidator(n Normalizer) *Validator {
	if n == nil {
		n = DefaultNormalizer
	}
	return &Validator{normalize: n}
}

// Validate checks candidate against known. Pure function over its inputs.
func (v *Validator) Validate(candidate string, known model.CategorySet) Validation {
	if res, ok := v.match(candidate, known, nil); ok {
		return res
	}

	normalized := v.normalize(candidate)
	if normalized == candidate || normalized == "" {
		return Validation{Status: StatusRejected}
	}

	if res, ok := v.match(normalized, known, []string{"normalized"}); ok {
		res.Status = StatusCorrected
		return res
	}

	return Validation{Status: StatusRejected}
}

func (v *Validator) match(candidate string, known model.CategorySet, corrections []string) (Validation, bool) {
	if known.Contains(candidate) {
		status := StatusMatched
		if len(corrections) > 0 {
			status = StatusCorrected
		}
		return Validation{Category: candidate, Corrections: corrections, Status: status}, true
	}

	if canonical := known.CanonicalFold(candidate); canonical != "" {
		return Validation{
			Category:    canonical,
			Corrections: append(corrections, "case normalized"),
			Status:      StatusCorrected,
		}, true
	}

	return Validation{}, false
}
