// Package prom exposes Prometheus metrics for the categorization service.
package prom

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource reports the current mapping state. The exporter reads it on
// every scrape so the gauges always reflect the progress file.
type StatsSource interface {
	MappingStats() (total, mapped int, byCategory map[string]int, err error)
}

// Exporter is a prometheus.Collector over the progress document.
type Exporter struct {
	RowsTotal    *prometheus.Desc
	RowsMapped   *prometheus.Desc
	CategoryRows *prometheus.Desc
	ScrapeErrors *prometheus.Desc

	source StatsSource

	// Scrapes run concurrently under promhttp.
	scrapeErrors atomic.Uint64
}

func NewExporter(namespace string, source StatsSource) *Exporter {
	return &Exporter{
		RowsTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "rows", "total"),
			"Rows in the uploaded file",
			nil,
			nil,
		),
		RowsMapped: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "rows", "mapped"),
			"Rows with a confirmed category",
			nil,
			nil,
		),
		CategoryRows: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "category", "rows"),
			"Confirmed rows per category",
			[]string{"category"},
			nil,
		),
		ScrapeErrors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "status", "scrape_errors"),
			"Scrapes that failed to read the progress file",
			nil,
			nil,
		),
		source: source,
	}
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.RowsTotal
	ch <- e.RowsMapped
	ch <- e.CategoryRows
	ch <- e.ScrapeErrors
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	total, mapped, byCategory, err := e.source.MappingStats()
	if err != nil {
		e.scrapeErrors.Add(1)
	} else {
		ch <- prometheus.MustNewConstMetric(e.RowsTotal, prometheus.GaugeValue, float64(total))
		ch <- prometheus.MustNewConstMetric(e.RowsMapped, prometheus.GaugeValue, float64(mapped))
		for category, count := range byCategory {
			ch <- prometheus.MustNewConstMetric(e.CategoryRows, prometheus.GaugeValue, float64(count), category)
		}
	}
	ch <- prometheus.MustNewConstMetric(e.ScrapeErrors, prometheus.CounterValue, float64(e.scrapeErrors.Load()))
}
