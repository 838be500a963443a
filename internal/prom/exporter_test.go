package prom

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	total      int
	mapped     int
	byCategory map[string]int
	err        error
}

func (f *fakeSource) MappingStats() (int, int, map[string]int, error) {
	return f.total, f.mapped, f.byCategory, f.err
}

func TestExporterCollect(t *testing.T) {
	src := &fakeSource{
		total:  10,
		mapped: 4,
		byCategory: map[string]int{
			"Healthcare":       1,
			"Food & Groceries": 3,
		},
	}
	e := NewExporter("bucketeer", src)

	expected := `
# HELP bucketeer_rows_total Rows in the uploaded file
# TYPE bucketeer_rows_total gauge
bucketeer_rows_total 10
# HELP bucketeer_rows_mapped Rows with a confirmed category
# TYPE bucketeer_rows_mapped gauge
bucketeer_rows_mapped 4
# HELP bucketeer_category_rows Confirmed rows per category
# TYPE bucketeer_category_rows gauge
bucketeer_category_rows{category="Food & Groceries"} 3
bucketeer_category_rows{category="Healthcare"} 1
# HELP bucketeer_status_scrape_errors Scrapes that failed to read the progress file
# TYPE bucketeer_status_scrape_errors counter
bucketeer_status_scrape_errors 0
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected)))
}

func TestExporterCollectError(t *testing.T) {
	e := NewExporter("bucketeer", &fakeSource{err: errors.New("no progress file")})

	expected := `
# HELP bucketeer_status_scrape_errors Scrapes that failed to read the progress file
# TYPE bucketeer_status_scrape_errors counter
bucketeer_status_scrape_errors 1
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected)))
}

func TestExporterConcurrentScrapes(t *testing.T) {
	e := NewExporter("bucketeer", &fakeSource{err: errors.New("no progress file")})

	const scrapes = 8
	var wg sync.WaitGroup
	for i := 0; i < scrapes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := make(chan prometheus.Metric, 8)
			go func() {
				e.Collect(ch)
				close(ch)
			}()
			for range ch {
			}
		}()
	}
	wg.Wait()

	// The comparison itself performs one more failing scrape.
	expected := `
# HELP bucketeer_status_scrape_errors Scrapes that failed to read the progress file
# TYPE bucketeer_status_scrape_errors counter
bucketeer_status_scrape_errors 9
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected)))
}

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("bucketeer")
	m.Register(reg)

	m.Requests.WithLabelValues("upload", "200").Inc()
	m.RowOutcomes.WithLabelValues("ASSIGNED").Add(5)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("upload", "200")))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.RowOutcomes.WithLabelValues("ASSIGNED")))
}
