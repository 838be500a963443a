// Package parse extracts structured category assignments from the raw text
// replies of the generation service. Parsing is tolerant: commentary lines
// are skipped and answers for rows that were never asked are discarded.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkozlov/bucketeer/internal/category"
	"github.com/pkozlov/bucketeer/internal/model"
)

// Row-line grammar: "Row <int>: <text>", case-insensitive on "Row", tolerant
// of surrounding whitespace.
var rowLineRe = regexp.MustCompile(`(?i)^\s*row\s+(\d+)\s*:\s*(.+?)\s*$`)

// Reasons reported for per-row parse failures.
const (
	ReasonNoResponse   = "no response"
	ReasonUnrecognized = "unrecognized category"
)

// Result is the parsed outcome for a single row.
type Result struct {
	// Category is the canonical category name; empty when Reason is set.
	Category string
	// Note carries correction notes (e.g. "case normalized") worth surfacing
	// to a human reviewer.
	Note string
	// Reason is the failure reason, empty on success.
	Reason string
}

// Parser converts generation replies to per-row results.
type Parser struct {
	validator *category.Validator
}

// NewParser creates a parser using the given validator. A nil validator
// selects the default normalization policy.
func NewParser(v *category.Validator) *Parser {
	if v == nil {
		v = category.NewValidator(nil)
	}
	return &Parser{validator: v}
}

// ParseBatchResponse extracts one result per expected index from raw.
// Lines that do not match the row grammar are ignored; matched lines for
// unexpected indices are discarded; expected indices with no matching line
// report ReasonNoResponse.
func (p *Parser) ParseBatchResponse(raw string, expected []int, known model.CategorySet) map[int]Result {
	wanted := make(map[int]bool, len(expected))
	for _, idx := range expected {
		wanted[idx] = true
	}

	results := make(map[int]Result, len(expected))

	for _, line := range strings.Split(raw, "\n") {
		m := rowLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		idx, err := strconv.Atoi(m[1])
		if err != nil || !wanted[idx] {
			continue
		}
		if _, seen := results[idx]; seen {
			// First answer wins when the model repeats a row.
			continue
		}

		results[idx] = p.validate(m[2], known)
	}

	for _, idx := range expected {
		if _, ok := results[idx]; !ok {
			results[idx] = Result{Reason: ReasonNoResponse}
		}
	}

	return results
}

// ParseSingleResponse treats the entire trimmed reply as the candidate
// category.
func (p *Parser) ParseSingleResponse(raw string, known model.CategorySet) Result {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return Result{Reason: ReasonNoResponse}
	}
	return p.validate(candidate, known)
}

func (p *Parser) validate(candidate string, known model.CategorySet) Result {
	v := p.validator.Validate(candidate, known)
	switch v.Status {
	case category.StatusMatched:
		return Result{Category: v.Category}
	case category.StatusCorrected:
		return Result{Category: v.Category, Note: strings.Join(v.Corrections, ", ")}
	default:
		return Result{Reason: ReasonUnrecognized}
	}
}
