package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/spreadsheet"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

func sampleEvents() timeline.Table {
	return timeline.Table{
		timeline.NewEvent(timeline.MustDate("2023-01-15"), "Milestone", "Kickoff"),
		timeline.NewEvent(timeline.MustDate("2023-01-20"), "Routine", "Review, part 1"),
	}
}

func TestGenerateICS(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/events/export?format=ics&remindDays=1&remindAt=19:00", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "My Major Events", sampleEvents())

	resp := w.Result()
	body := w.Body.String()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="events.ics"` {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ICSProductID,
		"X-WR-CALNAME:My Major Events",
		"BEGIN:VEVENT",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(body, field) {
			t.Errorf("ICS output missing required field: %s", field)
		}
	}

	if !strings.Contains(body, "DTSTART;VALUE=DATE:20230115") {
		t.Error("Event should be all-day (DTSTART;VALUE=DATE)")
	}
	if !strings.Contains(body, "DTEND;VALUE=DATE:20230116") {
		t.Error("All-day event should end on next day")
	}
	if !strings.Contains(body, "SUMMARY:Kickoff") {
		t.Error("Missing event summary for Kickoff")
	}
	if !strings.Contains(body, `SUMMARY:Review\, part 1`) {
		t.Error("Commas in summaries must be escaped")
	}
	if !strings.Contains(body, "CATEGORIES:Routine") {
		t.Error("Missing category")
	}

	if got := strings.Count(body, "BEGIN:VALARM"); got != 2 {
		t.Errorf("Expected 2 alarms, got %d", got)
	}
	if !strings.Contains(body, "TRIGGER:-P0DT5H0M") {
		t.Error("Alarm missing TRIGGER with negative duration")
	}
}

func TestGenerateICS_NoReminder(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/events/export?format=ics", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "t", sampleEvents())

	if strings.Contains(w.Body.String(), "BEGIN:VALARM") {
		t.Error("No alarm expected without remindAt")
	}
}

func TestAddAlarm(t *testing.T) {
	tests := []struct {
		name        string
		eventDate   time.Time
		daysBefore  int
		alarmTime   string
		description string
		wantTrigger string
	}{
		{
			name:        "2 days before at 18:00",
			eventDate:   time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			daysBefore:  2,
			alarmTime:   "18:00",
			description: "Kickoff",
			wantTrigger: "-P1DT6H0M",
		},
		{
			name:        "1 day before at 19:00",
			eventDate:   time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			daysBefore:  1,
			alarmTime:   "19:00",
			description: "Review",
			wantTrigger: "-P0DT5H0M",
		},
		{
			name:        "Same day at 07:00",
			eventDate:   time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			daysBefore:  0,
			alarmTime:   "07:00",
			description: "Holiday",
			wantTrigger: "P0DT7H0M",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			AddAlarm(&buf, tt.eventDate, tt.daysBefore, tt.alarmTime, tt.description)

			output := buf.String()
			if !strings.Contains(output, "BEGIN:VALARM") || !strings.Contains(output, "END:VALARM") {
				t.Error("Missing VALARM block")
			}
			if !strings.Contains(output, "ACTION:DISPLAY") {
				t.Error("Missing ACTION:DISPLAY")
			}
			if !strings.Contains(output, "TRIGGER:"+tt.wantTrigger) {
				t.Errorf("Expected TRIGGER:%s, got output:\n%s", tt.wantTrigger, output)
			}
			if !strings.Contains(output, tt.description) {
				t.Errorf("Missing description: %s", tt.description)
			}
		})
	}
}

func TestAddAlarm_InvalidTime(t *testing.T) {
	for _, alarmTime := range []string{"", "7", "aa:bb", "25:00", "12:75"} {
		var buf bytes.Buffer
		AddAlarm(&buf, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), 0, alarmTime, "x")
		if buf.Len() != 0 {
			t.Errorf("Expected no alarm for %q, got %q", alarmTime, buf.String())
		}
	}
}

func TestGenerateCSV(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateCSV(w, locale.English.Headers, sampleEvents())

	resp := w.Result()
	body := w.Body.String()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Expected Content-Type text/csv, got %s", ct)
	}
	if !strings.HasPrefix(body, "date,category,description\n") {
		t.Errorf("Missing CSV header, got %q", body)
	}
	if !strings.Contains(body, "2023-01-15,Milestone,Kickoff\n") {
		t.Error("Missing first event in CSV")
	}
	if !strings.Contains(body, `2023-01-20,Routine,"Review, part 1"`) {
		t.Error("Descriptions with commas must be quoted")
	}
}

func TestGenerateCSV_ChineseHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateCSV(w, locale.Chinese.Headers, nil)

	if body := w.Body.String(); body != "日期,事件类型,事件描述\n" {
		t.Errorf("Unexpected CSV %q", body)
	}
}

func TestGenerateJSON(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateJSON(w, "upload:mine.xlsx", sampleEvents()[:1])

	resp := w.Result()
	body := w.Body.String()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}
	if !strings.Contains(body, `"source":"upload:mine.xlsx"`) {
		t.Error("Missing source in JSON")
	}
	if !strings.Contains(body, `{"date":"2023-01-15","category":"Milestone","description":"Kickoff"}`) {
		t.Errorf("Missing event in JSON: %s", body)
	}
}

func TestGenerateXLSX_RoundTrips(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateXLSX(w, locale.English.Headers, sampleEvents())

	if ct := w.Result().Header.Get("Content-Type"); ct != spreadsheet.ContentType {
		t.Errorf("Unexpected Content-Type %s", ct)
	}
	table, err := spreadsheet.Decode(w.Body.Bytes())
	if err != nil {
		t.Fatalf("export should decode: %v", err)
	}
	if !table.Equal(sampleEvents()) {
		t.Errorf("round trip mismatch: %+v", table)
	}
}
