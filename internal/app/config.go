package app

// Constants
const (
	// MaxUploadBytes caps the upload request body, data URI included.
	MaxUploadBytes = 10 << 20

	AudioPath   = "/assets/7260.mp3"
	ExportStem  = "events"
	FeedRefresh = "PT1H"

	// Error messages
	ErrInvalidFormat    = "Invalid format"
	ErrInvalidTick      = "Invalid tick"
	ErrInvalidUpload    = "Invalid upload request"
	ErrUploadTooLarge   = "Upload too large"
	ErrInternalServer   = "Internal server error"
	ErrFailedToGenerate = "Failed to generate export"
	ErrFailedToRender   = "Failed to render chart"
	ErrFailedToTemplate = "Failed to generate template"
	ErrMethodNotAllowed = "Method not allowed"
	ErrNotFound         = "Not found"

	// Content types
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeICS  = "text/calendar; charset=utf-8"

	// ICS constants
	ICSProductID = "-//Event Timeline//Dashboard//EN"
	ICSDomain    = "event-timeline.local"
)

// Metric names
const (
	MetricUploadOK         = "upload.ok"
	MetricUploadParseError = "upload.parse_error"
	MetricUploadDecodeErr  = "upload.decode_error"
	MetricUploadDuration   = "upload.duration"
	MetricChartRender      = "chart.render"
	MetricChartNotModified = "chart.not_modified"
	MetricTemplateDownload = "template.download"
	MetricExport           = "export."
)
