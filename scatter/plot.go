package scatter

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/tsawler/caption-scatter/embedding"
)

// renderDPI maps the pixel-based Config size onto the plot canvas
const renderDPI = 96

// markerColor matches the usual default series color of scatter figures
var markerColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// viewData projects each embedded point onto the view plane and pairs it
// with its caption. Label i always belongs to point i.
func viewData(points []embedding.Point3, captions []string) plotter.XYLabels {
	xys := make(plotter.XYs, len(points))
	labels := make([]string, len(points))
	for i, p := range points {
		v := projectView(p, defaultAzimuthDeg, defaultElevationDeg)
		xys[i] = plotter.XY{X: v.X, Y: v.Y}
		labels[i] = captions[i]
	}
	return plotter.XYLabels{XYs: xys, Labels: labels}
}

// renderScatter draws the projected point cloud with caption annotations
// onto a Width x Height pixel canvas and returns the rasterized image
func renderScatter(points []embedding.Point3, captions []string, cfg Config) (image.Image, error) {
	data := viewData(points, captions)

	p := plot.New()
	p.HideAxes()

	sc, err := plotter.NewScatter(data.XYs)
	if err != nil {
		return nil, fmt.Errorf("failed to build scatter plotter: %w", err)
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Color = markerColor

	labels, err := plotter.NewLabels(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build label plotter: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(float64(cfg.CaptionSize))
		labels.TextStyle[i].Color = color.Black
	}

	p.Add(sc, labels)

	// Pad the data range so captions on the hull are not clipped at the
	// canvas edge
	xmin, xmax, ymin, ymax := plotter.XYRange(data.XYs)
	p.X.Min, p.X.Max = padRange(xmin, xmax)
	p.Y.Min, p.Y.Max = padRange(ymin, ymax)

	canvas := vgimg.NewWith(
		vgimg.UseWH(pixelLength(cfg.Width), pixelLength(cfg.Height)),
		vgimg.UseDPI(renderDPI),
	)
	p.Draw(draw.New(canvas))

	return canvas.Image(), nil
}

func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 0.5, hi + 0.5
	}
	pad := span * 0.05
	return lo - pad, hi + pad
}

// pixelLength converts a pixel count to canvas length at renderDPI
func pixelLength(px int) vg.Length {
	return vg.Length(px) * vg.Inch / renderDPI
}
