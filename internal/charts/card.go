package charts

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/models"
)

// Open Graph share card dimensions.
const (
	CardWidth  = 1200
	CardHeight = 630
)

var (
	cardTitle     font.Face
	cardBig       font.Face
	cardBody      font.Face
	cardFontsOnce sync.Once
	cardFontErr   error
)

func loadCardFonts() error {
	cardFontsOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			cardFontErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			cardFontErr = fmt.Errorf("parse bold font: %w", err)
			return
		}

		faces := []struct {
			dst  *font.Face
			f    *opentype.Font
			size float64
		}{
			{&cardTitle, bold, 48},
			{&cardBig, bold, 140},
			{&cardBody, regular, 34},
		}
		for _, fc := range faces {
			*fc.dst, err = opentype.NewFace(fc.f, &opentype.FaceOptions{
				Size:    fc.size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				cardFontErr = fmt.Errorf("create %.0fpt face: %w", fc.size, err)
				return
			}
		}
	})
	return cardFontErr
}

// RenderCard draws the share image: the peak hour, its total and the busy
// hours, over a dark gradient.
func RenderCard(r *analysis.Report) ([]byte, error) {
	if err := loadCardFonts(); err != nil {
		return nil, err
	}
	if len(r.Hourly) == 0 {
		return nil, errors.New("no hourly totals")
	}

	c := newCanvas(CardWidth, CardHeight)
	for y := 0; y < CardHeight; y++ {
		p := float64(y) / CardHeight
		c.hLine(0, CardWidth, y, color.RGBA{uint8(20 + p*10), uint8(30 + p*15), uint8(48 + p*20), 255})
	}

	peak := r.Hourly[0]
	for _, h := range r.Hourly[1:] {
		if h.Count > peak.Count {
			peak = h
		}
	}

	light := color.RGBA{200, 205, 215, 255}
	drawCardText(c.img, r.Title, 60, 100, white, cardTitle)
	drawCardText(c.img, fmt.Sprintf("%02d:00", peak.Hour), 60, 300, color.RGBA{255, 99, 71, 255}, cardBig)
	drawCardText(c.img, fmt.Sprintf("Peak hour, %s rentals in total", groupThousands(peak.Count)), 60, 360, white, cardBody)
	drawCardText(c.img, busyLine(r), 60, 430, light, cardBody)
	drawCardText(c.img, r.Caption, 60, CardHeight-40, light, cardBody)

	return c.encode()
}

func busyLine(r *analysis.Report) string {
	if len(r.BusyHours) == 0 {
		return fmt.Sprintf("No hour is above %s rentals", groupThousands(r.Settings.BusyThreshold))
	}
	hours := make([]string, len(r.BusyHours))
	for i, h := range r.BusyHours {
		hours[i] = fmt.Sprintf("%02d", h)
	}
	return fmt.Sprintf("%s: %s", models.ClusterBusy.Label(), strings.Join(hours, ", "))
}

func drawCardText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// groupThousands formats a whole count as 1,234,567.
func groupThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
