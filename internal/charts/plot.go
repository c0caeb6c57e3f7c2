package charts

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

const dpi = 96

var nanGrey = color.RGBA{200, 200, 200, 255}

// px converts a pixel size at dpi into a plot length.
func px(n int) vg.Length {
	return vg.Length(n) * vg.Inch / dpi
}

func newPlotImage(w, h int) *vgimg.Canvas {
	return vgimg.NewWith(vgimg.UseWH(px(w), px(h)), vgimg.UseDPI(dpi))
}

func encodePlot(img *vgimg.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
