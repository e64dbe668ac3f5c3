// Package plots renders the report figures as base64-encoded PNGs:
// volcano, PCA and heatmap views of the table itself, the optional
// pathway enrichment chart, and one composite panel per model procedure.
package plots

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"github.com/fogleman/gg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"bioreport/internal/config"
	"bioreport/internal/infrastructure"
	"bioreport/pkg/contracts/domain"
)

// Renderer turns analysis outcomes into report figures.
type Renderer struct {
	cfg     config.AnalysisConfig
	logger  *slog.Logger
	metrics *infrastructure.Metrics
}

// NewRenderer builds a renderer. metrics may be nil in tests.
func NewRenderer(cfg config.AnalysisConfig, logger *slog.Logger, metrics *infrastructure.Metrics) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{cfg: cfg, logger: logger, metrics: metrics}
}

// Point colors shared across figures.
var (
	colorNotSig = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x80}
	colorUp     = color.NRGBA{R: 0xd6, G: 0x28, B: 0x28, A: 0xb3}
	colorDown   = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xb3}
	colorBar    = color.NRGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}

	// classPalette colors class and cluster assignments.
	classPalette = []color.Color{
		color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		color.NRGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		color.NRGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		color.NRGBA{R: 0xd6, G: 0x28, B: 0x28, A: 0xff},
		color.NRGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
		color.NRGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	}
)

func classColor(class int) color.Color {
	if class < 0 {
		class = 0
	}
	return classPalette[class%len(classPalette)]
}

// renderImage rasterizes one plot at the given size in inches.
func renderImage(p *plot.Plot, widthIn, heightIn float64) image.Image {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(100),
	)
	p.Draw(draw.New(c))
	return c.Image()
}

func encodeBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// finish wraps an image into a Plot and records the render.
func (r *Renderer) finish(name, typ, description string, img image.Image) (*domain.Plot, error) {
	encoded, err := encodeBase64(img)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.PlotsRendered.WithLabelValues(typ).Inc()
	}
	return &domain.Plot{
		Name:        name,
		Type:        typ,
		ImageBase64: encoded,
		Description: description,
	}, nil
}

// placeholderImage draws a titled gray-text panel for figures whose input
// data is missing.
func placeholderImage(title string, lines ...string) image.Image {
	const w, h = 800, 600
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, w/2, 40, 0.5, 0.5)

	dc.SetRGB(0.5, 0.5, 0.5)
	y := float64(h)/2 - float64(len(lines))*10
	for _, line := range lines {
		dc.DrawStringAnchored(line, w/2, y, 0.5, 0.5)
		y += 20
	}
	return dc.Image()
}

// newPanelContext returns a white-backed drawing context for hand-drawn
// panels such as the confusion matrix grid.
func newPanelContext(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	return dc
}

// composeRow lays panel images side by side on a white canvas with a
// shared title line.
func composeRow(title string, panels ...image.Image) image.Image {
	width, height := 0, 0
	for _, p := range panels {
		b := p.Bounds()
		width += b.Dx()
		if b.Dy() > height {
			height = b.Dy()
		}
	}

	const titleBar = 30
	dc := gg.NewContext(width, height+titleBar)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, float64(width)/2, titleBar/2, 0.5, 0.5)

	x := 0
	for _, p := range panels {
		dc.DrawImage(p, x, titleBar)
		x += p.Bounds().Dx()
	}
	return dc.Image()
}
