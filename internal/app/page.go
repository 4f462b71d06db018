package app

import (
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/klabast/wb-services/event-timeline/internal/caption"
	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

var pageFuncs = template.FuncMap{
	"ms": func(d time.Duration) int64 { return d.Milliseconds() },
}

// PageData feeds the index template.
type PageData struct {
	Lang            string
	Text            locale.Page
	Caption         template.HTML
	Chart           timeline.Chart
	TemplateURL     string
	AudioSrc        string
	CaptionInterval time.Duration
	CaptionMaxTicks int
}

func (s *Server) pageData(r *http.Request, loc locale.Locale) (PageData, error) {
	lines, err := caption.HTML(caption.Produce(0))
	if err != nil {
		return PageData{}, err
	}
	lang := loc.Tag.String()
	return PageData{
		Lang:            lang,
		Text:            loc.Page,
		Caption:         lines,
		Chart:           renderChart(r.Context(), s.store.GetCurrent(), loc),
		TemplateURL:     "/download-template?lang=" + url.QueryEscape(lang),
		AudioSrc:        AudioPath,
		CaptionInterval: s.cfg.CaptionInterval,
		CaptionMaxTicks: s.cfg.CaptionMaxTicks,
	}, nil
}
