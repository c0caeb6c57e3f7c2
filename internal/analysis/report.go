// Package analysis turns the loaded daily and hourly datasets into the
// report: previews, findings, correlation, temperature buckets, hourly totals,
// busy/quiet classification, count distribution and conclusions.
//
// Every step runs once, in order, and the first failure aborts the build.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lox/bikeshare/internal/dataset"
	"github.com/lox/bikeshare/internal/metrics"
	"github.com/lox/bikeshare/internal/models"
)

// Report is built once and never modified afterwards.
type Report struct {
	Title         string                     `json:"title"`
	Intro         string                     `json:"intro"`
	Settings      Settings                   `json:"settings"`
	DailySource   string                     `json:"daily_source"`
	HourlySource  string                     `json:"hourly_source"`
	Previews      []models.Preview           `json:"previews"`
	Quality       []models.Quality           `json:"quality"`
	Findings      []string                   `json:"findings"`
	Correlation   models.CorrelationMatrix   `json:"correlation"`
	Temperature   []models.TemperatureBucket `json:"temperature"`
	Uncategorized int                        `json:"uncategorized"`
	Hourly        []models.HourlyAggregate   `json:"hourly"`
	BusyHours     []int                      `json:"busy_hours"`
	Distribution  []models.BoxStats          `json:"distribution"`
	Conclusions   []string                   `json:"conclusions"`
	Caption       string                     `json:"caption"`
	Fingerprint   string                     `json:"fingerprint"`

	Daily []models.DailyRecord  `json:"-"`
	Rides []models.HourlyRecord `json:"-"`
}

type Inputs struct {
	Daily  *dataset.Dataset
	Hourly *dataset.Dataset
}

// Build runs every report step over already loaded datasets.
func Build(in Inputs, s Settings) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if in.Daily == nil || in.Hourly == nil {
		return nil, errors.New("build report: both datasets are required")
	}

	r := &Report{
		Title:        Title,
		Intro:        Intro,
		Settings:     s,
		DailySource:  in.Daily.Source,
		HourlySource: in.Hourly.Source,
		Previews: []models.Preview{
			in.Daily.Preview(s.PreviewRows),
			in.Hourly.Preview(s.PreviewRows),
		},
		Conclusions: Conclusions(),
		Caption:     Caption,
	}

	daily, err := in.Daily.DailyRecords()
	if err != nil {
		return nil, fmt.Errorf("daily records: %w", err)
	}
	hourly, err := in.Hourly.HourlyRecords()
	if err != nil {
		return nil, fmt.Errorf("hourly records: %w", err)
	}

	for _, ds := range []*dataset.Dataset{in.Daily, in.Hourly} {
		q, err := AssessQuality(ds)
		if err != nil {
			return nil, fmt.Errorf("assess %s: %w", ds.Name, err)
		}
		r.Quality = append(r.Quality, q)
	}
	r.Findings = Findings(r.Quality)

	r.Correlation, err = Correlate(in.Daily, "dteday")
	if err != nil {
		return nil, fmt.Errorf("correlation: %w", err)
	}

	r.Daily, r.Temperature, r.Uncategorized = CategorizeTemperature(daily, s)

	r.Hourly = ClassifyHours(AggregateHourly(hourly), s.BusyThreshold)
	r.BusyHours = BusyHours(r.Hourly)

	r.Rides, err = AssignClusters(hourly, r.Hourly)
	if err != nil {
		return nil, fmt.Errorf("assign clusters: %w", err)
	}
	r.Distribution = Distribution(r.Rides)

	r.Fingerprint, err = fingerprint(r)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	return r, nil
}

// fingerprint hashes the chart data, so unchanged inputs and settings give
// the same value on every run.
func fingerprint(r *Report) (string, error) {
	b, err := json.Marshal(struct {
		Settings     Settings
		Previews     []models.Preview
		Findings     []string
		Correlation  models.CorrelationMatrix
		Temperature  []models.TemperatureBucket
		Hourly       []models.HourlyAggregate
		Distribution []models.BoxStats
	}{r.Settings, r.Previews, r.Findings, r.Correlation, r.Temperature, r.Hourly, r.Distribution})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Generator loads both datasets and builds the report.
type Generator struct {
	fetcher  *dataset.Fetcher
	settings Settings
	logger   *zap.Logger
}

func NewGenerator(fetcher *dataset.Fetcher, settings Settings, logger *zap.Logger) *Generator {
	return &Generator{fetcher: fetcher, settings: settings, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, dailySrc, hourlySrc string) (*Report, error) {
	daily, err := dataset.Load(ctx, g.fetcher, dataset.Daily, dailySrc)
	if err != nil {
		return nil, fmt.Errorf("load daily: %w", err)
	}
	g.logger.Info("dataset loaded",
		zap.String("dataset", daily.Name),
		zap.String("source", dailySrc),
		zap.Int("rows", daily.Len()))

	hourly, err := dataset.Load(ctx, g.fetcher, dataset.Hourly, hourlySrc)
	if err != nil {
		return nil, fmt.Errorf("load hourly: %w", err)
	}
	g.logger.Info("dataset loaded",
		zap.String("dataset", hourly.Name),
		zap.String("source", hourlySrc),
		zap.Int("rows", hourly.Len()))

	start := time.Now()
	report, err := Build(Inputs{Daily: daily, Hourly: hourly}, g.settings)
	if err != nil {
		return nil, err
	}
	metrics.ReportBuildDuration.Observe(time.Since(start).Seconds())

	if report.Uncategorized > 0 {
		g.logger.Warn("temperatures outside bucket range",
			zap.Int("rows", report.Uncategorized),
			zap.Float64s("bins", g.settings.TemperatureBins))
	}
	g.logger.Info("report built",
		zap.String("fingerprint", report.Fingerprint),
		zap.Ints("busy_hours", report.BusyHours),
		zap.Duration("took", time.Since(start)))
	return report, nil
}
