package timeline

import "time"

// DateLayout is the wire format for event dates.
const DateLayout = "2006-01-02"

// Event represents a single dated entry on the timeline
type Event struct {
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
}

// NewEvent builds an Event with the date truncated to a UTC calendar day.
func NewEvent(date time.Time, category, description string) Event {
	return Event{
		Date:        Day(date),
		Category:    category,
		Description: description,
	}
}

// Day drops the clock part of t and returns midnight UTC of the same calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MustDate parses a YYYY-MM-DD literal. It panics on malformed input and is
// meant for built-in tables only.
func MustDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Table is an ordered list of events in source row order.
type Table []Event

// Clone returns a copy that shares no backing array with t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Equal reports whether both tables hold the same events in the same order.
func (t Table) Equal(other Table) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if !t[i].Date.Equal(other[i].Date) ||
			t[i].Category != other[i].Category ||
			t[i].Description != other[i].Description {
			return false
		}
	}
	return true
}

// Placement is the plotly text position of a marker label.
type Placement string

const (
	PlacementBottom Placement = "bottom center"
	PlacementTop    Placement = "top center"
)

// Labels carries the human readable chart texts.
type Labels struct {
	Title string `json:"title"`
	XAxis string `json:"x_axis"`
	YAxis string `json:"y_axis"`
}

// Chart is a plotly figure: one scatter trace per category plus layout.
type Chart struct {
	Data   []Series `json:"data"`
	Layout Layout   `json:"layout"`
}

// Series is one scatter trace holding every event of a category.
type Series struct {
	Type         string      `json:"type"`
	Mode         string      `json:"mode"`
	Name         string      `json:"name"`
	X            []string    `json:"x"`
	Y            []int       `json:"y"`
	Text         []string    `json:"text"`
	TextPosition []Placement `json:"textposition"`
	HoverText    []string    `json:"hovertext"`
	HoverInfo    string      `json:"hoverinfo"`
	Marker       Marker      `json:"marker"`
}

// Marker styles the points of a series.
type Marker struct {
	Size  int        `json:"size"`
	Color string     `json:"color"`
	Line  MarkerLine `json:"line"`
}

// MarkerLine is the outline drawn around each marker.
type MarkerLine struct {
	Width int    `json:"width"`
	Color string `json:"color"`
}

// Layout holds the chart-level settings.
type Layout struct {
	Title       Title  `json:"title"`
	XAxis       XAxis  `json:"xaxis"`
	YAxis       YAxis  `json:"yaxis"`
	PlotBGColor string `json:"plot_bgcolor"`
	HoverMode   string `json:"hovermode"`
	ShowLegend  bool   `json:"showlegend"`
	Template    string `json:"template"`
	Height      int    `json:"height"`
	AutoSize    bool   `json:"autosize"`
}

// Title is a plotly title object.
type Title struct {
	Text string  `json:"text"`
	X    float64 `json:"x,omitempty"`
}

// XAxis is the date axis.
type XAxis struct {
	Title Title     `json:"title"`
	Range [2]string `json:"range"`
}

// YAxis is the lane axis; tick values are lanes and tick texts category names.
type YAxis struct {
	Title    Title    `json:"title"`
	TickVals []int    `json:"tickvals"`
	TickText []string `json:"ticktext"`
}
