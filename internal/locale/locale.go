// Package locale holds the label sets of the dashboard and picks one per request.
package locale

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

// Locale bundles every user-visible text that depends on language.
type Locale struct {
	Tag     language.Tag
	Chart   timeline.Labels
	Headers Headers
	Page    Page
	// Template is the sample table written into the downloadable template.
	Template timeline.Table
}

// Headers are the spreadsheet column labels in fixed column order.
type Headers struct {
	Date        string
	Category    string
	Description string
}

// Row returns the headers in column order.
func (h Headers) Row() []string {
	return []string{h.Date, h.Category, h.Description}
}

// Page holds the texts of the HTML page.
type Page struct {
	Heading  string
	Upload   string
	Download string
}

// Chinese is the default locale; its texts match the original dashboard.
var Chinese = Locale{
	Tag: language.Chinese,
	Chart: timeline.Labels{
		Title: "我的大事件线 (2023-2024)",
		XAxis: "日期",
		YAxis: "事件类型",
	},
	Headers: Headers{Date: "日期", Category: "事件类型", Description: "事件描述"},
	Page: Page{
		Heading:  "我的大事件线 (2023-2024)",
		Upload:   "上传自己的大事件（Excel文件）",
		Download: "下载 Excel 模板",
	},
	Template: timeline.Table{
		timeline.NewEvent(timeline.MustDate("2023-01-01"), "重要事件", "描述1"),
		timeline.NewEvent(timeline.MustDate("2023-05-01"), "日常任务", "描述2"),
		timeline.NewEvent(timeline.MustDate("2023-12-25"), "节假日", "描述3"),
	},
}

// English mirrors Chinese for en clients.
var English = Locale{
	Tag: language.English,
	Chart: timeline.Labels{
		Title: "My Major Events (2023-2024)",
		XAxis: "date",
		YAxis: "category",
	},
	Headers: Headers{Date: "date", Category: "category", Description: "description"},
	Page: Page{
		Heading:  "My Major Events (2023-2024)",
		Upload:   "Upload your events (Excel file)",
		Download: "Download Excel template",
	},
	Template: timeline.Table{
		timeline.NewEvent(timeline.MustDate("2023-01-01"), "Milestone", "Description 1"),
		timeline.NewEvent(timeline.MustDate("2023-05-01"), "Routine", "Description 2"),
		timeline.NewEvent(timeline.MustDate("2023-12-25"), "Holiday", "Description 3"),
	},
}

// All lists the supported locales.
var All = []Locale{Chinese, English}

// HeaderAliases maps every accepted, lower-cased column label to its column
// index (0 date, 1 category, 2 description).
var HeaderAliases = map[string]int{
	"日期":          0,
	"date":        0,
	"事件类型":        1,
	"category":    1,
	"type":        1,
	"事件描述":        2,
	"description": 2,
}

// Matcher negotiates a Locale from explicit choices and Accept-Language.
type Matcher struct {
	locales []Locale
	matcher language.Matcher
}

// NewMatcher builds a Matcher preferring the locale named by fallback
// ("zh", "en", ...) when nothing else matches.
func NewMatcher(fallback string) *Matcher {
	preferred := Lookup(fallback)
	locales := []Locale{preferred}
	for _, l := range All {
		if l.Tag != preferred.Tag {
			locales = append(locales, l)
		}
	}
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.Tag
	}
	return &Matcher{locales: locales, matcher: language.NewMatcher(tags)}
}

// Default returns the fallback locale.
func (m *Matcher) Default() Locale {
	return m.locales[0]
}

// Match picks a locale for the given language preferences, most explicit first.
func (m *Matcher) Match(prefs ...string) Locale {
	_, index := language.MatchStrings(m.matcher, prefs...)
	if index < 0 || index >= len(m.locales) {
		return m.locales[0]
	}
	return m.locales[index]
}

// ForRequest uses the lang query parameter, then Accept-Language.
func (m *Matcher) ForRequest(r *http.Request) Locale {
	return m.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// Lookup returns the locale for a language code, Chinese if unknown.
func Lookup(code string) Locale {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return Chinese
	}
	base, _ := tag.Base()
	for _, l := range All {
		lb, _ := l.Tag.Base()
		if lb == base {
			return l
		}
	}
	return Chinese
}
