package app

import (
	"time"

	"github.com/klabast/wb-services/event-timeline/internal/caption"
	"github.com/klabast/wb-services/event-timeline/internal/logger"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

// UploadRequest is the body of POST /api/upload. Contents is a data URI of
// the form "<type>;base64,<payload>".
type UploadRequest struct {
	Contents string `json:"contents"`
	Filename string `json:"filename"`
}

// CaptionResponse is returned by GET /api/caption.
type CaptionResponse struct {
	Tick       int            `json:"tick"`
	Complete   bool           `json:"complete"`
	IntervalMS int64          `json:"interval_ms"`
	MaxTicks   int            `json:"max_ticks"`
	Lines      []caption.Line `json:"lines"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Source     string              `json:"source"`
	LoadedAt   time.Time           `json:"loaded_at"`
	EventCount int                 `json:"event_count"`
	Categories []timeline.Category `json:"categories"`
	Metrics    logger.Snapshot     `json:"metrics"`
}

// ExportDocument is the JSON export of the active dataset.
type ExportDocument struct {
	Source     string          `json:"source"`
	ExportedAt time.Time       `json:"exported_at"`
	Events     []ExportedEvent `json:"events"`
}

// ExportedEvent is one event with its date in wire format.
type ExportedEvent struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
}
