// Package caption produces the animated caption shown above the chart.
//
// The caption is a fixed script. Every sentence becomes a line and every
// grapheme cluster of a sentence becomes a fragment carrying the index that the
// stylesheet uses to stagger its fade-in.
package caption

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Script is the caption text, one entry per line.
var Script = []string{
	"2024年，岁月匆匆，回望过往，心中涌动着感激与希望。",
	"每一滴汗水，每一段努力，都在岁月的河流中留下痕迹。",
	"曾经的坚持与拼搏，化作了今天的坚韧与信心。",
	"感谢自己，感谢每一个奋斗的瞬间，感谢所有支持的人。",
	"未来的路充满未知，但我已准备好迎接一切挑战。",
	"每一步都在创造新的故事，属于我，属于我们的篇章。",
}

// secondsPerLine is the start delay added for each following line.
const secondsPerLine = 2

// Fragment is one grapheme of a line.
type Fragment struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Line is one sentence of the caption.
type Line struct {
	DelaySeconds int        `json:"delay_seconds"`
	Fragments    []Fragment `json:"fragments"`
}

// Delay is the CSS animation-delay value of the line.
func (l Line) Delay() string {
	return fmt.Sprintf("%ds", l.DelaySeconds)
}

// Text joins the fragments back into the sentence.
func (l Line) Text() string {
	var b strings.Builder
	for _, f := range l.Fragments {
		b.WriteString(f.Text)
	}
	return b.String()
}

// Threshold is the tick count after which the animation counts as complete.
func Threshold() int {
	return len(Script) * secondsPerLine
}

// Complete reports whether tick has reached Threshold.
func Complete(tick int) bool {
	return tick >= Threshold()
}

// Produce returns the caption lines for tick.
//
// The result does not depend on tick; completion only tells the caller when
// to stop its timer.
func Produce(tick int) []Line {
	// TODO: decide whether a completed animation should freeze or clear the
	// caption; both branches render the full script for now.
	if Complete(tick) {
		return build(Script)
	}
	return build(Script)
}

func build(script []string) []Line {
	lines := make([]Line, 0, len(script))
	for i, sentence := range script {
		graphemes := split(sentence)
		fragments := make([]Fragment, len(graphemes))
		for j, g := range graphemes {
			fragments[j] = Fragment{Text: g, Index: i*len(graphemes) + j}
		}
		lines = append(lines, Line{DelaySeconds: i * secondsPerLine, Fragments: fragments})
	}
	return lines
}

// split breaks s into grapheme clusters.
func split(s string) []string {
	out := make([]string, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
