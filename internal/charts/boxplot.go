package charts

import (
	"errors"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/models"
)

var boxColors = []color.RGBA{
	{76, 114, 176, 255},
	{221, 132, 82, 255},
	{85, 168, 104, 255},
	{196, 78, 82, 255},
}

// clusterBoxes draws precomputed box statistics, one box per cluster at
// x = 0, 1, .... plotter.BoxPlot computes its own quartiles, which would not
// match the figures reported alongside the chart.
type clusterBoxes struct {
	stats []models.BoxStats
	width vg.Length
}

func (b clusterBoxes) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	line := draw.LineStyle{Color: color.Gray{Y: 60}, Width: vg.Points(1)}
	glyph := draw.GlyphStyle{Color: color.Gray{Y: 60}, Radius: vg.Points(2.5), Shape: draw.RingGlyph{}}

	for i, s := range b.stats {
		if s.Count == 0 {
			continue
		}
		x := trX(float64(i))
		x0, x1 := x-b.width/2, x+b.width/2
		q1, q3 := trY(s.Q1), trY(s.Q3)

		box := []vg.Point{{X: x0, Y: q1}, {X: x1, Y: q1}, {X: x1, Y: q3}, {X: x0, Y: q3}}
		c.FillPolygon(boxColors[i%len(boxColors)], box)
		c.StrokeLines(line, append(box, box[0]))
		c.StrokeLine2(line, x0, trY(s.Median), x1, trY(s.Median))

		lo, hi := trY(s.WhiskerLow), trY(s.WhiskerHigh)
		capHalf := b.width / 4
		c.StrokeLine2(line, x, q1, x, lo)
		c.StrokeLine2(line, x, q3, x, hi)
		c.StrokeLine2(line, x-capHalf, lo, x+capHalf, lo)
		c.StrokeLine2(line, x-capHalf, hi, x+capHalf, hi)

		for _, o := range s.Outliers {
			c.DrawGlyph(glyph, vg.Point{X: x, Y: trY(o)})
		}
	}
}

func (b clusterBoxes) DataRange() (xmin, xmax, ymin, ymax float64) {
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, s := range b.stats {
		if s.Count == 0 {
			continue
		}
		ymin = math.Min(ymin, s.Min)
		ymax = math.Max(ymax, s.Max)
	}
	if math.IsInf(ymin, 0) {
		ymin, ymax = 0, 1
	}
	return -0.5, float64(len(b.stats)) - 0.5, math.Min(ymin, 0), ymax
}

// RenderBoxplot draws one box per cluster: quartile box, median line, Tukey
// whiskers and outlier markers.
func RenderBoxplot(r *analysis.Report) ([]byte, error) {
	stats := r.Distribution
	if len(stats) == 0 {
		return nil, errors.New("no distribution to draw")
	}

	p := plot.New()
	p.Title.Text = "Distribution of Bike Rentals by Cluster (Busy vs Quiet Hours)"
	p.X.Label.Text = "cluster"
	p.Y.Label.Text = "cnt"

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	slot := px(Width) / vg.Length(len(stats)+1)
	p.Add(clusterBoxes{stats: stats, width: slot * 0.6})

	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = s.Cluster.Label() + " (n=" + strconv.Itoa(s.Count) + ")"
	}
	p.NominalX(names...)

	img := newPlotImage(Width, Height)
	p.Draw(draw.New(img))
	return encodePlot(img)
}
