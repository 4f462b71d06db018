// Package spreadsheet converts between xlsx workbooks and event tables.
//
// Decode reads the first sheet of an uploaded workbook. Columns are located by
// their header label, so their order in the sheet does not matter. Any problem
// with the workbook rejects the whole upload with a *ParseError.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

const (
	// TemplateFilename is the download name of the template workbook.
	TemplateFilename = "events_template.xlsx"
	// ContentType is the MIME type of xlsx workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// SheetName is the single sheet written by the encoder.
	SheetName = "Sheet1"

	dateNumFmt = "yyyy-mm-dd"
	columns    = 3
)

// ParseError reports an upload that could not be turned into an event table.
type ParseError struct {
	Reason string
	// Row is the 1-based sheet row, 0 when the error is not tied to a row.
	Row int
	Err error
}

func (e *ParseError) Error() string {
	msg := "parse spreadsheet: " + e.Reason
	if e.Row > 0 {
		msg = fmt.Sprintf("%s (row %d)", msg, e.Row)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err carries a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Decode parses an xlsx workbook into an event table preserving row order.
func Decode(data []byte) (timeline.Table, error) {
	if len(data) == 0 {
		return nil, &ParseError{Reason: "empty file"}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Reason: "unreadable workbook", Err: err}
	}
	defer f.Close() // nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Reason: "reading rows", Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Reason: "sheet is empty"}
	}

	index, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	table := make(timeline.Table, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blank(row) {
			continue
		}

		rawDate := cell(row, index[0])
		date, err := ParseDate(rawDate)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("invalid date %q", rawDate), Row: rowNum, Err: err}
		}

		category := cell(row, index[1])
		if category == "" {
			return nil, &ParseError{Reason: "missing category", Row: rowNum}
		}

		table = append(table, timeline.NewEvent(date, category, cell(row, index[2])))
	}

	return table, nil
}

// columnIndex maps the three logical columns to their position in header.
func columnIndex(header []string) ([columns]int, error) {
	index := [columns]int{-1, -1, -1}
	for pos, label := range header {
		col, ok := locale.HeaderAliases[strings.ToLower(strings.TrimSpace(label))]
		if !ok || index[col] >= 0 {
			continue
		}
		index[col] = pos
	}

	var missing []string
	names := locale.Chinese.Headers.Row()
	for col, pos := range index {
		if pos < 0 {
			missing = append(missing, names[col])
		}
	}
	if len(missing) > 0 {
		return index, &ParseError{Reason: "missing columns " + strings.Join(missing, ", ")}
	}
	return index, nil
}

func cell(row []string, pos int) string {
	if pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// textDateLayouts are tried in order for date cells stored as text.
var textDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/06",
	"01/02/2006",
	"1/2/2006",
	"2006.01.02",
	"2006年1月2日",
}

// ParseDate coerces a raw cell value into a calendar day. Numbers are Excel
// serial dates (1900 system); anything else must match a known text layout.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(serial) || serial < 1 || serial > maxExcelSerial {
			return time.Time{}, fmt.Errorf("serial date %v out of range", serial)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return timeline.Day(t), nil
	}

	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return timeline.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date layout")
}

// maxExcelSerial is 9999-12-31, the last day Excel can represent.
const maxExcelSerial = 2958465

// EncodeTemplate writes the fixed template table of the default locale.
func EncodeTemplate() ([]byte, error) {
	return EncodeTemplateFor(locale.Chinese)
}

// EncodeTemplateFor writes the template table of loc with its header labels.
func EncodeTemplateFor(loc locale.Locale) ([]byte, error) {
	return EncodeTable(loc.Template, loc.Headers)
}

// EncodeTable writes table as a single-sheet workbook with the given headers.
func EncodeTable(table timeline.Table, headers locale.Headers) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	sheet := f.GetSheetName(0)
	if sheet != SheetName {
		if err := f.SetSheetName(sheet, SheetName); err != nil {
			return nil, fmt.Errorf("naming sheet: %w", err)
		}
	}

	header := make([]interface{}, 0, columns)
	for _, h := range headers.Row() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	numFmt := dateNumFmt
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, fmt.Errorf("creating date style: %w", err)
	}

	for i, e := range table {
		rowNum := i + 2
		start, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		row := []interface{}{e.Date, e.Category, e.Description}
		if err := f.SetSheetRow(SheetName, start, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", rowNum, err)
		}
		if err := f.SetCellStyle(SheetName, start, start, dateStyle); err != nil {
			return nil, fmt.Errorf("styling row %d: %w", rowNum, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "C", 20); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
