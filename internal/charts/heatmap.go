package charts

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/models"
)

const heatLegendWidth = 110

// corrGrid exposes a correlation matrix as a plotter.GridXYZ with the first
// column at the top. Min and Max pin the colour scale to [-1, 1].
type corrGrid struct {
	m models.CorrelationMatrix
}

func (g corrGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 { return g.m.Values[g.row(r)][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
func (g corrGrid) Min() float64       { return -1 }
func (g corrGrid) Max() float64       { return 1 }

// row maps a plot row, counted from the bottom, to a matrix row.
func (g corrGrid) row(r int) int {
	return len(g.m.Columns) - 1 - r
}

// coolwarm is the diverging blue-red colour map over [-1, 1].
func coolwarm() palette.ColorMap {
	cm := moreland.SmoothBlueRed()
	cm.SetMax(1)
	cm.SetMin(-1)
	return cm
}

// RenderHeatmap draws the correlation matrix as an annotated grid coloured on
// a fixed [-1, 1] diverging scale, with a colour bar on the right.
func RenderHeatmap(r *analysis.Report) ([]byte, error) {
	m := r.Correlation
	n := len(m.Columns)
	if n == 0 {
		return nil, errors.New("no numeric columns to correlate")
	}
	grid := corrGrid{m: m}
	cm := coolwarm()

	p := plot.New()
	p.Title.Text = "Correlation Between Variables (day.csv)"

	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = nanGrey
	p.Add(hm)

	labels, err := cellLabels(grid, cm)
	if err != nil {
		return nil, err
	}
	p.Add(labels)

	xTicks := make([]plot.Tick, n)
	yTicks := make([]plot.Tick, n)
	for i := 0; i < n; i++ {
		xTicks[i] = plot.Tick{Value: float64(i), Label: m.Columns[i]}
		yTicks[i] = plot.Tick{Value: float64(i), Label: m.Columns[grid.row(i)]}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: 255})
	bar.HideX()
	bar.Y.Padding = 0

	img := newPlotImage(Width, Height)
	dc := draw.New(img)
	legend := px(heatLegendWidth)
	p.Draw(draw.Crop(dc, 0, -legend, 0, 0))
	bar.Draw(draw.Crop(dc, px(Width)-legend+vg.Points(10), 0, px(60), -px(50)))

	return encodePlot(img)
}

// cellLabels annotates each cell with its coefficient to two decimals, in
// black or white depending on the cell colour.
func cellLabels(g corrGrid, cm palette.ColorMap) (*plotter.Labels, error) {
	cols, rows := g.Dims()
	xys := make(plotter.XYs, 0, cols*rows)
	strs := make([]string, 0, cols*rows)
	fills := make([]color.Color, 0, cols*rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			v := g.Z(c, r)
			xys = append(xys, plotter.XY{X: g.X(c), Y: g.Y(r)})
			if math.IsNaN(v) {
				strs = append(strs, "nan")
				fills = append(fills, nanGrey)
				continue
			}
			strs = append(strs, fmt.Sprintf("%.2f", v))
			fill, err := cm.At(math.Max(-1, math.Min(1, v)))
			if err != nil {
				return nil, fmt.Errorf("colour for %v: %w", v, err)
			}
			fills = append(fills, fill)
		}
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: strs})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
		labels.TextStyle[i].Color = textOn(fills[i])
	}
	return labels, nil
}

// textOn picks black or white text for legibility on bg.
func textOn(bg color.Color) color.Color {
	r, g, b, _ := bg.RGBA()
	lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
	if lum < 0.5 {
		return color.White
	}
	return color.Black
}
