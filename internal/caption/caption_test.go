package caption

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduce_ShapeFollowsScript(t *testing.T) {
	lines := Produce(0)

	require.Len(t, lines, len(Script))
	for i, line := range lines {
		assert.Equal(t, Script[i], line.Text())
		assert.Equal(t, i*2, line.DelaySeconds)
	}
	assert.Equal(t, "0s", lines[0].Delay())
	assert.Equal(t, "10s", lines[5].Delay())
}

func TestProduce_FragmentIndexes(t *testing.T) {
	lines := Produce(3)

	second := lines[1]
	n := len([]rune(Script[1]))
	require.Len(t, second.Fragments, n)
	for j, f := range second.Fragments {
		assert.Equal(t, n+j, f.Index)
	}
	assert.Equal(t, "每", second.Fragments[0].Text)
}

func TestProduce_Deterministic(t *testing.T) {
	assert.Equal(t, Produce(4), Produce(4))
}

func TestProduce_SameOutputAcrossThreshold(t *testing.T) {
	before := Produce(Threshold() - 1)
	after := Produce(Threshold())
	later := Produce(Threshold() * 10)

	assert.Equal(t, before, after)
	assert.Equal(t, after, later)
}

func TestComplete(t *testing.T) {
	assert.Equal(t, 12, Threshold())
	assert.False(t, Complete(0))
	assert.False(t, Complete(11))
	assert.True(t, Complete(12))
	assert.True(t, Complete(100))
}

func TestSplit_Graphemes(t *testing.T) {
	assert.Equal(t, []string{"a", "e\u0301", "\u4e2d"}, split("ae\u0301\u4e2d"))
	assert.Equal(t, []string{"\u00e9", "x"}, split("\u00e9x"))
	assert.Equal(t, []string{"👍🏽", "!"}, split("👍🏽!"))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Produce(0)))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)

	lines := doc.Find("div.motivational-line")
	assert.Equal(t, len(Script), lines.Length())

	style, _ := lines.Eq(2).Attr("style")
	assert.Contains(t, style, "animation-delay: 4s")

	words := lines.Eq(1).Find("span.motivational-word")
	assert.Equal(t, len([]rune(Script[1])), words.Length())
	first, _ := words.First().Attr("style")
	assert.Contains(t, first, "--index: 25")
	assert.Equal(t, "每", words.First().Text())
}

func TestHTML_EscapesText(t *testing.T) {
	out, err := HTML([]Line{{Fragments: []Fragment{{Text: "<b>", Index: 0}}}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;b&gt;")
}
