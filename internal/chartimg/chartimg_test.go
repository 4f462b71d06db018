package chartimg

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

func sample() timeline.Chart {
	return timeline.Render(timeline.Table{
		timeline.NewEvent(timeline.MustDate("2023-01-01"), "Milestone", "kickoff"),
		timeline.NewEvent(timeline.MustDate("2023-05-01"), "Routine", "review"),
		timeline.NewEvent(timeline.MustDate("2024-03-15"), "Milestone", "launch"),
	})
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": PNG, "png": PNG, " SVG ": SVG} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("gif")
	assert.Error(t, err)
	assert.Equal(t, "image/svg+xml", SVG.ContentType())
	assert.Equal(t, "image/png", PNG.ContentType())
}

func TestRender_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample(), PNG, 800))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, timeline.ChartHeight, img.Bounds().Dy())
}

func TestRender_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample(), SVG, 0))

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Milestone")
	assert.Contains(t, out, "05-01")
}

func TestRender_EmptyIsBlank(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, timeline.Render(nil), PNG, 300))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	buf.Reset()
	require.NoError(t, Render(&buf, timeline.Render(nil), SVG, 300))
	assert.Contains(t, buf.String(), `width="300"`)
}

func TestRender_SingleCategory(t *testing.T) {
	tables := map[string]timeline.Table{
		"one event": {
			timeline.NewEvent(timeline.MustDate("2023-03-01"), "A", "x"),
		},
		"several events": {
			timeline.NewEvent(timeline.MustDate("2023-03-01"), "A", "x"),
			timeline.NewEvent(timeline.MustDate("2023-09-01"), "A", "y"),
			timeline.NewEvent(timeline.MustDate("2024-02-01"), "A", "z"),
		},
	}
	for name, table := range tables {
		for _, format := range []Format{PNG, SVG} {
			t.Run(name+"/"+string(format), func(t *testing.T) {
				var buf bytes.Buffer
				done := make(chan error, 1)
				go func() { done <- Render(&buf, timeline.Render(table), format, 400) }()

				select {
				case err := <-done:
					require.NoError(t, err)
					assert.NotZero(t, buf.Len())
				case <-time.After(10 * time.Second):
					t.Fatal("render did not return")
				}
			})
		}
	}
}

func TestRender_BadRange(t *testing.T) {
	c := sample()
	c.Layout.XAxis.Range[0] = "yesterday"
	assert.Error(t, Render(&bytes.Buffer{}, c, PNG, 0))
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, drawing.Color{R: 70, G: 120, B: 180, A: 178}, parseColor("rgba(70, 120, 180, 0.7)"))
	assert.Equal(t, drawing.ColorBlack, parseColor("not a colour"))
}
