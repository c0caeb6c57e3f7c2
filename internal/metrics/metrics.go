package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bikeshare_dataset_rows",
			Help: "Rows loaded from each input dataset",
		},
		[]string{"dataset"},
	)

	SourceFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bikeshare_source_fetch_seconds",
			Help:    "Remote dataset fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scheme"},
	)

	ReportBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bikeshare_report_build_seconds",
			Help:    "Time taken to build the report from loaded datasets",
			Buckets: prometheus.DefBuckets,
		},
	)

	ChartRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_chart_renders_total",
			Help: "Total chart renders by chart and status",
		},
		[]string{"chart", "status"},
	)

	SnapshotsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_snapshots_saved_total",
			Help: "Report snapshots written to the store",
		},
		[]string{"result"},
	)
)
