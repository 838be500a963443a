package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkozlov/bucketeer/internal/progress"
)

func doc() *progress.File {
	return &progress.File{
		FileName:    "jan.csv",
		LastUpdated: "2024-02-01T10:00:00Z",
		TotalRows:   5,
		Rows: map[string]progress.RowState{
			"0": {
				Data:     map[string]string{"date": "2024-01-05", "amount": "75.00", "description": "CVS"},
				Category: "Healthcare",
				Mapped:   true,
			},
			"1": {
				Data:     map[string]string{"date": "2024-01-06", "amount": "32.45", "description": "Chipotle"},
				Category: "Food & Groceries",
				Mapped:   true,
			},
			"2": {
				Data:     map[string]string{"date": "2024-01-20", "amount": "$1,200.00", "description": "Whole Foods"},
				Category: "Food & Groceries",
				Mapped:   true,
			},
			"3": {
				Data:     map[string]string{"date": "2024-02-02", "amount": "12.00", "description": "Netflix"},
				Category: "Subscriptions",
				Mapped:   true,
			},
			"4": {
				Data: map[string]string{"date": "2024-02-03", "amount": "50.00", "description": "Shell"},
			},
		},
	}
}

func TestCompute(t *testing.T) {
	stats := Compute(doc())

	assert.Equal(t, "jan.csv", stats.FileName)
	assert.Equal(t, "2024-02-01T10:00:00Z", stats.LastUpdated)
	assert.Equal(t, 5, stats.TotalRows)
	assert.Equal(t, 4, stats.MappedRows)
	assert.Equal(t, 1, stats.RemainingRows)
	assert.Equal(t, map[string]int{
		"Healthcare":       1,
		"Food & Groceries": 2,
		"Subscriptions":    1,
	}, stats.CategoryBreakdown)
}

func TestComputeEmpty(t *testing.T) {
	stats := Compute(&progress.File{Rows: map[string]progress.RowState{}})

	assert.Zero(t, stats.TotalRows)
	assert.Zero(t, stats.MappedRows)
	assert.Empty(t, stats.CategoryBreakdown)
}

func TestMonthlySpending(t *testing.T) {
	totals := MonthlySpending(doc())
	require.Len(t, totals, 3)

	assert.Equal(t, "2024-01", totals[0].Month)
	assert.Equal(t, "Food & Groceries", totals[0].Category)
	assert.True(t, totals[0].Total.Equal(decimal.RequireFromString("1232.45")),
		"got %s", totals[0].Total)

	assert.Equal(t, "2024-01", totals[1].Month)
	assert.Equal(t, "Healthcare", totals[1].Category)
	assert.True(t, totals[1].Total.Equal(decimal.RequireFromString("75.00")))

	assert.Equal(t, "2024-02", totals[2].Month)
	assert.Equal(t, "Subscriptions", totals[2].Category)
	assert.True(t, totals[2].Total.Equal(decimal.RequireFromString("12.00")))
}

func TestMonthlySpendingSkipsUnparseable(t *testing.T) {
	f := &progress.File{
		Rows: map[string]progress.RowState{
			"0": {
				Data:     map[string]string{"date": "not a date", "amount": "10.00"},
				Category: "Other",
				Mapped:   true,
			},
			"1": {
				Data:     map[string]string{"date": "2024-01-05", "amount": "n/a"},
				Category: "Other",
				Mapped:   true,
			},
		},
	}

	assert.Empty(t, MonthlySpending(f))
}

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"75.00", "75.00"},
		{"$75.00", "75.00"},
		{"-75.00", "-75.00"},
		{"-$75.00", "-75.00"},
		{"$1,234.56", "1234.56"},
		{"($20.00)", "-20.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanAmount(tt.in), "input %q", tt.in)
	}
}
