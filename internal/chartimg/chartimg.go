// Package chartimg draws a timeline chart description as a static PNG or SVG
// image, for clients that cannot run the interactive chart.
package chartimg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

// Format is the output image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat accepts "png" or "svg".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case PNG, "":
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// DefaultWidth is used when the caller passes a non-positive width.
const DefaultWidth = 1200

// Render writes c to w. An empty chart renders as a blank canvas.
func Render(w io.Writer, c timeline.Chart, format Format, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	height := c.Layout.Height
	if height <= 0 {
		height = timeline.ChartHeight
	}

	if len(c.Data) == 0 {
		return blank(w, format, width, height)
	}

	graph, err := build(c)
	if err != nil {
		return err
	}
	graph.Width = width
	graph.Height = height

	renderer := chart.PNG
	if format == SVG {
		renderer = chart.SVG
	}
	return graph.Render(renderer, w)
}

func build(c timeline.Chart) (chart.Chart, error) {
	start, err := time.Parse(timeline.DateLayout, c.Layout.XAxis.Range[0])
	if err != nil {
		return chart.Chart{}, fmt.Errorf("x range start: %w", err)
	}
	end, err := time.Parse(timeline.DateLayout, c.Layout.XAxis.Range[1])
	if err != nil {
		return chart.Chart{}, fmt.Errorf("x range end: %w", err)
	}

	series := make([]chart.Series, 0, len(c.Data)+1)
	labels := chart.AnnotationSeries{}
	for _, s := range c.Data {
		ts := chart.TimeSeries{
			Name: s.Name,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    float64(s.Marker.Size) / 2,
				DotColor:    parseColor(s.Marker.Color),
			},
			XValues: make([]time.Time, 0, len(s.X)),
			YValues: make([]float64, 0, len(s.Y)),
		}
		for i, x := range s.X {
			d, err := time.Parse(timeline.DateLayout, x)
			if err != nil {
				return chart.Chart{}, fmt.Errorf("series %q point %d: %w", s.Name, i, err)
			}
			ts.XValues = append(ts.XValues, d)
			ts.YValues = append(ts.YValues, float64(s.Y[i]))
			labels.Annotations = append(labels.Annotations, chart.Value2{
				XValue: chart.TimeToFloat64(d),
				YValue: float64(s.Y[i]),
				Label:  s.Text[i],
			})
		}
		series = append(series, ts)
	}
	series = append(series, labels)

	ticks := make([]chart.Tick, len(c.Layout.YAxis.TickVals))
	for i, v := range c.Layout.YAxis.TickVals {
		ticks[i] = chart.Tick{Value: float64(v), Label: c.Layout.YAxis.TickText[i]}
	}
	lanes := len(ticks)
	// go-chart never returns when given a single explicit tick.
	if lanes == 1 {
		ticks = append(ticks, chart.Tick{Value: 0.5, Label: ""})
	}

	graph := chart.Chart{
		Title: c.Layout.Title.Text,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           c.Layout.XAxis.Title.Text,
			ValueFormatter: dateFormatter,
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(start),
				Max: chart.TimeToFloat64(end),
			},
		},
		YAxis: chart.YAxis{
			Name:  c.Layout.YAxis.Title.Text,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(lanes) - 0.5},
			Ticks: ticks,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph, nil
}

func dateFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return time.Unix(0, int64(f)).UTC().Format(timeline.DateLayout)
	}
	return ""
}

// parseColor reads the "rgba(r, g, b, a)" strings produced by the renderer.
func parseColor(s string) drawing.Color {
	var r, g, b uint8
	var a float64
	if _, err := fmt.Sscanf(s, "rgba(%d, %d, %d, %g)", &r, &g, &b, &a); err != nil {
		return drawing.ColorBlack
	}
	return drawing.Color{R: r, G: g, B: b, A: uint8(a * 255)}
}

func blank(w io.Writer, format Format, width, height int) error {
	if format == SVG {
		_, err := fmt.Fprintf(w,
			`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="100%%" height="100%%" fill="white"/></svg>`,
			width, height)
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
