package charts

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

var white = color.RGBA{255, 255, 255, 255}

// canvas is the RGBA image behind the share card.
type canvas struct {
	img *image.RGBA
}

func newCanvas(w, h int) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return &canvas{img: img}
}

func (c *canvas) hLine(x0, x1, y int, col color.Color) {
	draw.Draw(c.img, image.Rect(min(x0, x1), y, max(x0, x1)+1, y+1), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
