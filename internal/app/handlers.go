package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/attribute"

	"github.com/klabast/wb-services/event-timeline/internal/caption"
	"github.com/klabast/wb-services/event-timeline/internal/chartimg"
	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/logger"
	"github.com/klabast/wb-services/event-timeline/internal/spreadsheet"
	"github.com/klabast/wb-services/event-timeline/internal/telemetry"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

// renderChart builds the chart of table with the labels of loc.
func renderChart(ctx context.Context, table timeline.Table, loc locale.Locale) timeline.Chart {
	_, span := telemetry.Start(ctx, "chart.render", attribute.Int("events", len(table)))
	start := time.Now()
	chart := timeline.Render(table, timeline.WithLabels(loc.Chart))
	logger.RecordTiming(MetricChartRender, time.Since(start))
	telemetry.End(span, nil)
	return chart
}

// ServeIndex serves the dashboard page
func (s *Server) ServeIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	loc := s.locales.ForRequest(r)
	data, err := s.pageData(r, loc)
	if err != nil {
		logger.Error("Error building page", nil, err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		logger.Error("Error rendering page", nil, err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeHTML)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn("Error writing index HTML", nil, err)
	}
}

// HandleTemplate serves the spreadsheet template as an attachment
func (s *Server) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	loc := s.locales.ForRequest(r)
	_, span := telemetry.Start(r.Context(), "template.encode", attribute.String("locale", loc.Tag.String()))
	data, err := spreadsheet.EncodeTemplateFor(loc)
	telemetry.End(span, err)
	if err != nil {
		logger.Error("Error generating template", logger.Fields{"locale": loc.Tag.String()}, err)
		http.Error(w, ErrFailedToTemplate, http.StatusInternalServerError)
		return
	}

	logger.IncrCounter(MetricTemplateDownload)
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+spreadsheet.TemplateFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logger.Warn("Error writing template", nil, err)
	}
}

// HandleChart returns the chart of the active dataset
func (s *Server) HandleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	chart := renderChart(r.Context(), s.store.GetCurrent(), s.locales.ForRequest(r))
	body, err := sonic.Marshal(chart)
	if err != nil {
		logger.Error("Error encoding chart", nil, err)
		http.Error(w, ErrFailedToRender, http.StatusInternalServerError)
		return
	}

	etag := ETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept-Language")
	if NotModified(r, etag) {
		logger.IncrCounter(MetricChartNotModified)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	if _, err := w.Write(body); err != nil {
		logger.Warn("Error writing chart", nil, err)
	}
}

// HandleUpload replaces the active dataset with an uploaded workbook and
// returns the new chart. A workbook that cannot be read leaves the dataset
// unchanged; the response is then the chart of the unchanged dataset.
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	start := time.Now()
	defer func() { logger.RecordTiming(MetricUploadDuration, time.Since(start)) }()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, ErrUploadTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, ErrInvalidUpload, http.StatusBadRequest)
		return
	}
	var req UploadRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		http.Error(w, ErrInvalidUpload, http.StatusBadRequest)
		return
	}

	loc := s.locales.ForRequest(r)
	if req.Contents == "" {
		writeJSON(w, r, http.StatusOK, renderChart(r.Context(), s.store.GetCurrent(), loc))
		return
	}

	fields := logger.Fields{"filename": req.Filename}
	ctx, span := telemetry.Start(r.Context(), "upload.apply", attribute.String("filename", req.Filename))

	_, data, err := DecodeDataURI(req.Contents)
	if err != nil {
		telemetry.End(span, err)
		logger.IncrCounter(MetricUploadDecodeErr)
		logger.Warn("Upload is not a base64 data URI", fields, err)
		writeJSON(w, r, http.StatusOK, renderChart(ctx, s.store.GetCurrent(), loc))
		return
	}

	table, err := s.store.ApplyUpload(req.Filename, data)
	telemetry.End(span, err)
	if err != nil {
		logger.IncrCounter(MetricUploadParseError)
		logger.Warn("Upload could not be parsed, keeping current events", fields, err)
	} else {
		logger.IncrCounter(MetricUploadOK)
		fields["events"] = len(table)
		logger.Info("Upload applied", fields)
	}
	writeJSON(w, r, http.StatusOK, renderChart(ctx, table, loc))
}

// HandleCaption returns the caption lines for ?tick=N
func (s *Server) HandleCaption(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	tick := 0
	if raw := r.URL.Query().Get("tick"); raw != "" {
		var err error
		tick, err = strconv.Atoi(raw)
		if err != nil || tick < 0 {
			http.Error(w, ErrInvalidTick, http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, r, http.StatusOK, CaptionResponse{
		Tick:       tick,
		Complete:   caption.Complete(tick) || (s.cfg.CaptionMaxTicks > 0 && tick >= s.cfg.CaptionMaxTicks),
		IntervalMS: s.cfg.CaptionInterval.Milliseconds(),
		MaxTicks:   s.cfg.CaptionMaxTicks,
		Lines:      caption.Produce(tick),
	})
}

// HandleExport handles export downloads in CSV, JSON, ICS or XLSX format.
// Query params: format, categories (comma-separated filter)
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snap := s.store.Snapshot()
	events := FilterByCategory(snap.Table, r.URL.Query().Get("categories"))
	loc := s.locales.ForRequest(r)
	format := strings.ToLower(r.URL.Query().Get("format"))

	switch format {
	case "csv":
		GenerateCSV(w, loc.Headers, events)
	case "json":
		GenerateJSON(w, snap.Source, events)
	case "ics":
		GenerateICS(w, r, loc.Chart.Title, events)
	case "xlsx":
		GenerateXLSX(w, loc.Headers, events)
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}
	logger.IncrCounter(MetricExport + format)
}

// HandleSubscribe serves the active dataset as a calendar subscription feed
func (s *Server) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	events := FilterByCategory(s.store.GetCurrent(), r.URL.Query().Get("categories"))
	GenerateSubscriptionICS(w, s.locales.ForRequest(r).Chart.Title, events)
}

// HandleImage serves the chart as /timeline.png or /timeline.svg
func (s *Server) HandleImage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	format, err := chartimg.ParseFormat(strings.TrimPrefix(path.Ext(r.URL.Path), "."))
	if err != nil {
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}
	width := 0
	if raw := r.URL.Query().Get("width"); raw != "" {
		width, err = strconv.Atoi(raw)
		if err != nil || width < 0 || width > 4096 {
			http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
			return
		}
	}

	chart := renderChart(r.Context(), s.store.GetCurrent(), s.locales.ForRequest(r))
	var buf bytes.Buffer
	if err := chartimg.Render(&buf, chart, format, width); err != nil {
		logger.Error("Error rendering chart image", logger.Fields{"format": string(format)}, err)
		http.Error(w, ErrFailedToRender, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn("Error writing chart image", nil, err)
	}
}

// HandleStatus reports the dataset source and process metrics
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap := s.store.Snapshot()
	writeJSON(w, r, http.StatusOK, StatusResponse{
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt,
		EventCount: len(snap.Table),
		Categories: timeline.Categories(snap.Table),
		Metrics:    logger.MetricsSnapshot(),
	})
}
