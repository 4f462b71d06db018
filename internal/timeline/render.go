package timeline

import "fmt"

// Fixed presentation settings of the dashboard chart.
const (
	RangeStart = "2023-01-01"
	RangeEnd   = "2024-12-31"

	ChartHeight   = 500
	MarkerSize    = 12
	OutlineWidth  = 2
	OutlineColor  = "black"
	LabelLayout   = "01-02"
	colorAlpha    = 0.7
	redFactor     = 70
	greenFactor   = 120
	blueFactor    = 180
	channelModulo = 255
)

// DefaultLabels are the chart texts used when no locale is chosen.
var DefaultLabels = Labels{
	Title: "我的大事件线 (2023-2024)",
	XAxis: "日期",
	YAxis: "事件类型",
}

// Category is a distinct category value with its derived lane and color.
type Category struct {
	Name  string `json:"name"`
	Lane  int    `json:"lane"`
	Color string `json:"color"`
}

// CategoryColor returns the display color for the category at ordinal index.
func CategoryColor(index int) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)",
		(index*redFactor)%channelModulo,
		(index*greenFactor)%channelModulo,
		(index*blueFactor)%channelModulo,
		colorAlpha)
}

// Categories lists the distinct categories of table in first-seen order.
func Categories(table Table) []Category {
	seen := make(map[string]bool)
	out := make([]Category, 0)
	for _, e := range table {
		if seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		lane := len(out)
		out = append(out, Category{Name: e.Category, Lane: lane, Color: CategoryColor(lane)})
	}
	return out
}

// Option adjusts a render.
type Option func(*renderOptions)

type renderOptions struct {
	labels Labels
}

// WithLabels overrides the title and axis texts.
func WithLabels(labels Labels) Option {
	return func(o *renderOptions) {
		o.labels = labels
	}
}

// Render builds the chart description for table. It never fails; an empty
// table yields a chart without series.
func Render(table Table, opts ...Option) Chart {
	o := renderOptions{labels: DefaultLabels}
	for _, opt := range opts {
		opt(&o)
	}

	categories := Categories(table)
	partitions := make(map[string][]Event, len(categories))
	for _, e := range table {
		partitions[e.Category] = append(partitions[e.Category], e)
	}

	series := make([]Series, 0, len(categories))
	tickVals := make([]int, 0, len(categories))
	tickText := make([]string, 0, len(categories))
	for _, c := range categories {
		series = append(series, buildSeries(c, partitions[c.Name]))
		tickVals = append(tickVals, c.Lane)
		tickText = append(tickText, c.Name)
	}

	return Chart{
		Data: series,
		Layout: Layout{
			Title: Title{Text: o.labels.Title, X: 0.5},
			XAxis: XAxis{
				Title: Title{Text: o.labels.XAxis},
				Range: [2]string{RangeStart, RangeEnd},
			},
			YAxis: YAxis{
				Title:    Title{Text: o.labels.YAxis},
				TickVals: tickVals,
				TickText: tickText,
			},
			PlotBGColor: "white",
			HoverMode:   "closest",
			ShowLegend:  true,
			Template:    "plotly_white",
			Height:      ChartHeight,
			AutoSize:    true,
		},
	}
}

func buildSeries(c Category, events []Event) Series {
	s := Series{
		Type:         "scatter",
		Mode:         "markers+text",
		Name:         c.Name,
		X:            make([]string, len(events)),
		Y:            make([]int, len(events)),
		Text:         make([]string, len(events)),
		TextPosition: make([]Placement, len(events)),
		HoverText:    make([]string, len(events)),
		HoverInfo:    "text+x",
		Marker: Marker{
			Size:  MarkerSize,
			Color: c.Color,
			Line:  MarkerLine{Width: OutlineWidth, Color: OutlineColor},
		},
	}
	for i, e := range events {
		s.X[i] = e.Date.Format(DateLayout)
		s.Y[i] = c.Lane
		s.Text[i] = e.Date.Format(LabelLayout)
		s.TextPosition[i] = PlacementFor(i)
		s.HoverText[i] = e.Description
	}
	return s
}

// PlacementFor returns the label placement of the i-th event within its
// category: bottom for even positions, top for odd ones.
func PlacementFor(i int) Placement {
	if i%2 == 0 {
		return PlacementBottom
	}
	return PlacementTop
}
