// Package charts renders the report's figures as PNG images.
//
// Bar charts are drawn with go-chart. The correlation heatmap and the count
// boxplot are drawn with gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/metrics"
)

const (
	Correlation  = "correlation"
	Temperature  = "temperature"
	Hourly       = "hourly"
	Clusters     = "clusters"
	Distribution = "distribution"

	// Card is the share image. It is not part of the page.
	Card = "card"
)

// Names lists the charts in page order.
var Names = []string{Correlation, Temperature, Hourly, Clusters, Distribution}

var ErrUnknownChart = errors.New("unknown chart")

const (
	Width  = 1000
	Height = 600
)

type renderFunc func(r *analysis.Report) ([]byte, error)

var renderers = map[string]renderFunc{
	Correlation:  RenderHeatmap,
	Temperature:  RenderTemperature,
	Hourly:       RenderHourly,
	Clusters:     RenderClusters,
	Distribution: RenderBoxplot,
	Card:         RenderCard,
}

// Renderer renders charts for one report and keeps the PNG bytes. The report
// never changes, so each chart is rendered at most once.
type Renderer struct {
	report *analysis.Report
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string][]byte
}

func NewRenderer(report *analysis.Report, logger *zap.Logger) *Renderer {
	return &Renderer{
		report: report,
		logger: logger,
		cache:  make(map[string][]byte),
	}
}

func (r *Renderer) Render(name string) ([]byte, error) {
	render, ok := renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if png, ok := r.cache[name]; ok {
		return png, nil
	}

	png, err := render(r.report)
	if err != nil {
		metrics.ChartRendersTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	metrics.ChartRendersTotal.WithLabelValues(name, "ok").Inc()
	r.logger.Debug("chart rendered", zap.String("chart", name), zap.Int("bytes", len(png)))

	r.cache[name] = png
	return png, nil
}

// RenderAll renders every chart, stopping at the first failure.
func (r *Renderer) RenderAll() (map[string][]byte, error) {
	out := make(map[string][]byte, len(Names))
	for _, name := range Names {
		png, err := r.Render(name)
		if err != nil {
			return nil, err
		}
		out[name] = png
	}
	return out, nil
}
