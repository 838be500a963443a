// Package analytics aggregates mapping progress and spending totals over a
// progress document. Amounts are parsed with shopspring/decimal so currency
// sums stay exact.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkozlov/bucketeer/internal/progress"
)

// Stats summarizes how far categorization has progressed.
type Stats struct {
	CategoryBreakdown map[string]int `json:"category_breakdown"`
	FileName          string         `json:"file_name"`
	LastUpdated       string         `json:"last_updated"`
	TotalRows         int            `json:"total_rows"`
	MappedRows        int            `json:"mapped_rows"`
	RemainingRows     int            `json:"remaining_rows"`
}

// Compute tallies mapped rows and the per-category breakdown.
func Compute(f *progress.File) Stats {
	stats := Stats{
		CategoryBreakdown: make(map[string]int),
		FileName:          f.FileName,
		LastUpdated:       f.LastUpdated,
		TotalRows:         len(f.Rows),
	}

	for _, state := range f.Rows {
		if !state.Mapped {
			continue
		}
		stats.MappedRows++
		stats.CategoryBreakdown[state.Category]++
	}
	stats.RemainingRows = stats.TotalRows - stats.MappedRows

	return stats
}

// MonthlyTotal is the spend in one category during one calendar month.
type MonthlyTotal struct {
	Month    string          `json:"month"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	time.RFC3339,
}

// MonthlySpending sums confirmed row amounts per category per month, sorted
// by month then category. Rows whose date or amount cannot be parsed are
// skipped.
func MonthlySpending(f *progress.File) []MonthlyTotal {
	type key struct {
		month    string
		category string
	}
	totals := make(map[key]decimal.Decimal)

	for _, row := range f.AllRows() {
		if !row.Mapped || row.Category == "" {
			continue
		}
		month, ok := monthOf(row.Date)
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(cleanAmount(row.Amount))
		if err != nil {
			continue
		}
		k := key{month: month, category: row.Category}
		totals[k] = totals[k].Add(amount)
	}

	out := make([]MonthlyTotal, 0, len(totals))
	for k, total := range totals {
		out = append(out, MonthlyTotal{Month: k.month, Category: k.category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})

	return out
}

func monthOf(date string) (string, bool) {
	date = strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01"), true
		}
	}
	return "", false
}

// cleanAmount strips currency symbols and thousands separators.
func cleanAmount(s string) string {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-") || strings.HasPrefix(s, "($")
	s = strings.Trim(s, "()-$")
	s = strings.ReplaceAll(s, ",", "")
	if neg {
		s = "-" + s
	}
	return s
}
