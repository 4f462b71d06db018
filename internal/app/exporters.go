package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/logger"
	"github.com/klabast/wb-services/event-timeline/internal/spreadsheet"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

// writeString writes to w and logs any error (helper for ICS generation)
func writeString(w io.Writer, s string) {
	if _, err := io.WriteString(w, s); err != nil {
		logger.Warn("Error writing to response", nil, err)
	}
}

func attachment(w http.ResponseWriter, ext string) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportStem+"."+ext))
}

// escapeICS escapes text values per RFC 5545.
func escapeICS(s string) string {
	return strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`).Replace(s)
}

// eventUID is stable for a given date, category and description.
func eventUID(e timeline.Event) string {
	return fmt.Sprintf("%s-%s@%s", e.Date.Format("20060102"), ETag([]byte(e.Category+"\x00"+e.Description))[1:17], ICSDomain)
}

func writeVEvent(w io.Writer, e timeline.Event, stamp time.Time) {
	writeString(w, "BEGIN:VEVENT\r\n")
	writeString(w, "UID:"+eventUID(e)+"\r\n")
	writeString(w, "DTSTAMP:"+stamp.UTC().Format("20060102T150405Z")+"\r\n")
	writeString(w, "DTSTART;VALUE=DATE:"+e.Date.Format("20060102")+"\r\n")
	writeString(w, "DTEND;VALUE=DATE:"+e.Date.AddDate(0, 0, 1).Format("20060102")+"\r\n")
	writeString(w, "SUMMARY:"+escapeICS(e.Description)+"\r\n")
	writeString(w, "CATEGORIES:"+escapeICS(e.Category)+"\r\n")
}

// GenerateICS writes the events as an iCalendar attachment. The query
// parameters remindDays (days before) and remindAt (HH:MM) add one alarm per
// event.
func GenerateICS(w http.ResponseWriter, r *http.Request, title string, events timeline.Table) {
	remindAt := r.URL.Query().Get("remindAt")
	remindDays, err := strconv.Atoi(r.URL.Query().Get("remindDays"))
	if err != nil || remindDays < 0 {
		remindDays = 0
	}

	w.Header().Set("Content-Type", ContentTypeICS)
	attachment(w, "ics")

	now := time.Now()
	writeString(w, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n")
	writeString(w, "PRODID:"+ICSProductID+"\r\n")
	writeString(w, "X-WR-CALNAME:"+escapeICS(title)+"\r\n")
	writeString(w, "CALSCALE:GREGORIAN\r\n")
	for _, e := range events {
		writeVEvent(w, e, now)
		if remindAt != "" {
			AddAlarm(w, e.Date, remindDays, remindAt, e.Description)
		}
		writeString(w, "END:VEVENT\r\n")
	}
	writeString(w, "END:VCALENDAR\r\n")
}

// AddAlarm adds an alarm/reminder to an ICS event
func AddAlarm(w io.Writer, eventDate time.Time, daysBefore int, alarmTime string, description string) {
	// Parse alarm time (HH:MM format)
	hourStr, minuteStr, ok := strings.Cut(alarmTime, ":")
	if !ok {
		return
	}
	hour, err1 := strconv.Atoi(hourStr)
	minute, err2 := strconv.Atoi(minuteStr)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return
	}

	// All-day events start at midnight; the trigger is relative to that.
	eventStart := timeline.Day(eventDate)
	alarmDate := eventStart.AddDate(0, 0, -daysBefore)
	alarmDateTime := time.Date(alarmDate.Year(), alarmDate.Month(), alarmDate.Day(), hour, minute, 0, 0, time.UTC)

	totalMinutes := int(alarmDateTime.Sub(eventStart).Minutes())
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	days := totalMinutes / (24 * 60)
	hours := totalMinutes % (24 * 60) / 60
	minutes := totalMinutes % 60

	writeString(w, "BEGIN:VALARM\r\n")
	writeString(w, "ACTION:DISPLAY\r\n")
	writeString(w, "DESCRIPTION:"+escapeICS(description)+"\r\n")
	writeString(w, fmt.Sprintf("TRIGGER:%sP%dDT%dH%dM\r\n", sign, days, hours, minutes))
	writeString(w, "END:VALARM\r\n")
}

// GenerateSubscriptionICS writes an inline iCalendar feed for calendar
// subscriptions: no attachment header, no alarms, with a refresh hint.
func GenerateSubscriptionICS(w http.ResponseWriter, title string, events timeline.Table) {
	w.Header().Set("Content-Type", ContentTypeICS)

	now := time.Now()
	writeString(w, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n")
	writeString(w, "PRODID:"+ICSProductID+"\r\n")
	writeString(w, "METHOD:PUBLISH\r\n")
	writeString(w, "X-WR-CALNAME:"+escapeICS(title)+"\r\n")
	writeString(w, "CALSCALE:GREGORIAN\r\n")
	writeString(w, "X-PUBLISHED-TTL:"+FeedRefresh+"\r\n")
	for _, e := range events {
		writeVEvent(w, e, now)
		writeString(w, "END:VEVENT\r\n")
	}
	writeString(w, "END:VCALENDAR\r\n")
}

// GenerateCSV writes the events as CSV with localized headers.
func GenerateCSV(w http.ResponseWriter, headers locale.Headers, events timeline.Table) {
	w.Header().Set("Content-Type", ContentTypeCSV)
	attachment(w, "csv")

	cw := csv.NewWriter(w)
	if err := cw.Write(headers.Row()); err != nil {
		logger.Warn("Error writing CSV header", nil, err)
		return
	}
	for _, e := range events {
		if err := cw.Write([]string{e.Date.Format(timeline.DateLayout), e.Category, e.Description}); err != nil {
			logger.Warn("Error writing CSV row", nil, err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Warn("Error flushing CSV export", nil, err)
	}
}

// GenerateJSON writes the events as a JSON document.
func GenerateJSON(w http.ResponseWriter, source string, events timeline.Table) {
	doc := ExportDocument{
		Source:     source,
		ExportedAt: time.Now().UTC(),
		Events:     make([]ExportedEvent, 0, len(events)),
	}
	for _, e := range events {
		doc.Events = append(doc.Events, ExportedEvent{
			Date:        e.Date.Format(timeline.DateLayout),
			Category:    e.Category,
			Description: e.Description,
		})
	}

	body, err := sonic.Marshal(doc)
	if err != nil {
		logger.Error("Error encoding JSON export", nil, err)
		http.Error(w, ErrFailedToGenerate, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	attachment(w, "json")
	if _, err := w.Write(body); err != nil {
		logger.Warn("Error writing JSON export", nil, err)
	}
}

// GenerateXLSX writes the events as a workbook in the upload layout, so an
// export can be uploaded again unchanged.
func GenerateXLSX(w http.ResponseWriter, headers locale.Headers, events timeline.Table) {
	data, err := spreadsheet.EncodeTable(events, headers)
	if err != nil {
		logger.Error("Error encoding XLSX export", nil, err)
		http.Error(w, ErrFailedToGenerate, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	attachment(w, "xlsx")
	if _, err := w.Write(data); err != nil {
		logger.Warn("Error writing XLSX export", nil, err)
	}
}
