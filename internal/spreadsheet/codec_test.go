package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

// workbook builds an xlsx file from literal cell rows.
func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecode_TemplateRoundTrip(t *testing.T) {
	data, err := EncodeTemplate()
	require.NoError(t, err)

	table, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, table, 3)
	assert.True(t, locale.Chinese.Template.Equal(table), "got %+v", table)
}

func TestDecode_EnglishTemplateRoundTrip(t *testing.T) {
	data, err := EncodeTemplateFor(locale.English)
	require.NoError(t, err)

	table, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, locale.English.Template.Equal(table))
}

func TestEncodeTemplate_Layout(t *testing.T) {
	data, err := EncodeTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close() // nolint:errcheck

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"日期", "事件类型", "事件描述"}, rows[0])
	assert.Equal(t, []string{"2023-01-01", "重要事件", "描述1"}, rows[1])
	assert.Equal(t, []string{"2023-12-25", "节假日", "描述3"}, rows[3])
}

func TestDecode_ColumnsByLabel(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"Description", "Extra", "Type", "Date"},
		{"launch", "x", "work", "2024-03-05"},
		{"trip", "y", "life", "2024/07/01"},
	})

	table, err := Decode(data)
	require.NoError(t, err)

	want := timeline.Table{
		timeline.NewEvent(timeline.MustDate("2024-03-05"), "work", "launch"),
		timeline.NewEvent(timeline.MustDate("2024-07-01"), "life", "trip"),
	}
	assert.True(t, want.Equal(table), "got %+v", table)
}

func TestDecode_DateCells(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"日期", "事件类型", "事件描述"},
		{time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), "a", "time value"},
		{44927, "a", "serial number"},
		{"2023年12月25日", "b", "chinese text"},
	})

	table, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, table, 3)

	assert.Equal(t, timeline.MustDate("2023-05-01"), table[0].Date)
	assert.Equal(t, timeline.MustDate("2023-01-01"), table[1].Date)
	assert.Equal(t, timeline.MustDate("2023-12-25"), table[2].Date)
}

func TestDecode_SkipsBlankRowsAndAllowsEmptyDescription(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"date", "category", "description"},
		{"2023-01-01", "a"},
		{"", "", ""},
		{"2023-01-02", "b", "two"},
	})

	table, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "", table[0].Description)
	assert.Equal(t, "b", table[1].Category)
}

func TestDecode_HeaderOnly(t *testing.T) {
	data := workbook(t, [][]interface{}{{"date", "category", "description"}})

	table, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		row  int
	}{
		{
			name: "empty payload",
			data: func(t *testing.T) []byte { return nil },
		},
		{
			name: "corrupt bytes",
			data: func(t *testing.T) []byte { return []byte("definitely not a workbook") },
		},
		{
			name: "missing column",
			data: func(t *testing.T) []byte {
				return workbook(t, [][]interface{}{{"date", "category"}, {"2023-01-01", "a"}})
			},
		},
		{
			name: "empty sheet",
			data: func(t *testing.T) []byte { return workbook(t, nil) },
		},
		{
			name: "bad date",
			data: func(t *testing.T) []byte {
				return workbook(t, [][]interface{}{
					{"date", "category", "description"},
					{"2023-01-01", "a", "ok"},
					{"someday", "a", "bad"},
				})
			},
			row: 3,
		},
		{
			name: "NaN date",
			data: func(t *testing.T) []byte {
				return workbook(t, [][]interface{}{
					{"date", "category", "description"},
					{"NaN", "a", "not a number"},
				})
			},
			row: 2,
		},
		{
			name: "serial past year 9999",
			data: func(t *testing.T) []byte {
				return workbook(t, [][]interface{}{
					{"date", "category", "description"},
					{"2023-01-01", "a", "ok"},
					{"2958466", "a", "too late"},
				})
			},
			row: 3,
		},
		{
			name: "missing category",
			data: func(t *testing.T) []byte {
				return workbook(t, [][]interface{}{
					{"date", "category", "description"},
					{"2023-01-01", "", "no category"},
				})
			},
			row: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Decode(tt.data(t))
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, IsParseError(err))

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.row, pe.Row)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "2023-01-01", want: "2023-01-01"},
		{raw: " 2023/05/01 ", want: "2023-05-01"},
		{raw: "2023-12-25 13:45:00", want: "2023-12-25"},
		{raw: "2024-02-29T08:00:00Z", want: "2024-02-29"},
		{raw: "1/2/06", want: "2006-01-02"},
		{raw: "45291", want: "2023-12-31"},
		{raw: "45291.75", want: "2023-12-31"},
		{raw: "", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "tomorrow", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "Inf", wantErr: true},
		{raw: "-Inf", wantErr: true},
		{raw: "0.5", wantErr: true},
		{raw: "1e300", wantErr: true},
		{raw: "2958466", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(timeline.DateLayout))
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Reason: "invalid date", Row: 4}
	assert.Equal(t, "parse spreadsheet: invalid date (row 4)", err.Error())
}
