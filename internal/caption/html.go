package caption

import (
	"html/template"
	"io"
	"strings"
)

var linesTmpl = template.Must(template.New("caption").Parse(
	`{{range .}}<div class="motivational-line" style="animation-delay: {{.Delay}}">` +
		`{{range .Fragments}}<span class="motivational-word" style="--index: {{.Index}}">{{.Text}}</span>{{end}}` +
		`</div>{{end}}`))

// WriteHTML renders lines as the caption markup used by the page stylesheet.
func WriteHTML(w io.Writer, lines []Line) error {
	return linesTmpl.Execute(w, lines)
}

// HTML renders lines for embedding into a parent template.
func HTML(lines []Line) (template.HTML, error) {
	var b strings.Builder
	if err := WriteHTML(&b, lines); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
