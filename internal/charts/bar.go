package charts

import (
	"bytes"
	"errors"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/models"
)

var (
	skyBlue = drawing.ColorFromHex("87ceeb")
	red     = drawing.ColorFromHex("ff0000")
	blue    = drawing.ColorFromHex("0000ff")
)

// ClusterColor is the bar colour for a busy/quiet label.
func ClusterColor(c models.Cluster) drawing.Color {
	if c == models.ClusterBusy {
		return red
	}
	return blue
}

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   c,
		StrokeColor: c,
		StrokeWidth: 1,
	}
}

func RenderTemperature(r *analysis.Report) ([]byte, error) {
	bars := make([]chart.Value, len(r.Temperature))
	for i, b := range r.Temperature {
		v := 0.0
		if b.Mean != nil {
			v = *b.Mean
		}
		bars[i] = chart.Value{Label: b.Label, Value: v, Style: barStyle(skyBlue)}
	}
	return renderBars("Average Bike Rentals by Temperature Range", "Average rentals", bars, 120)
}

func RenderHourly(r *analysis.Report) ([]byte, error) {
	bars := make([]chart.Value, len(r.Hourly))
	for i, a := range r.Hourly {
		bars[i] = chart.Value{Label: strconv.Itoa(a.Hour), Value: a.Count, Style: barStyle(skyBlue)}
	}
	return renderBars("Total Bike Rentals by Hour of Day", "Total rentals", bars, 28)
}

func RenderClusters(r *analysis.Report) ([]byte, error) {
	bars := make([]chart.Value, len(r.Hourly))
	for i, a := range r.Hourly {
		bars[i] = chart.Value{Label: strconv.Itoa(a.Hour), Value: a.Count, Style: barStyle(ClusterColor(a.Cluster))}
	}
	return renderBars("Busy vs Quiet Hours by Bike Rentals", "Rentals", bars, 28)
}

func renderBars(title, yName string, bars []chart.Value, barWidth int) ([]byte, error) {
	if len(bars) == 0 {
		return nil, errors.New("no bars to draw")
	}
	maxV := 0.0
	for _, b := range bars {
		if !math.IsNaN(b.Value) && b.Value > maxV {
			maxV = b.Value
		}
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		BarWidth:   barWidth,
		BarSpacing: 8,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.Style{FontSize: 9},
		YAxis: chart.YAxis{
			Name:  yName,
			Style: chart.Style{FontSize: 9},
			Range: &chart.ContinuousRange{Min: 0, Max: niceCeil(maxV)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// niceCeil rounds v up to 1, 2 or 5 times a power of ten, so the y axis ends
// on a round number. Non-positive values give 1.
func niceCeil(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	// Log10 can land just below an exact power of ten.
	if exp*10 <= v {
		exp *= 10
	}
	for _, m := range []float64{1, 2, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}
