// Package app serves the timeline dashboard over HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/klabast/wb-services/event-timeline/internal/config"
	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/logger"
	"github.com/klabast/wb-services/event-timeline/internal/store"
)

// IndexTemplate is the path of the page template inside the static files.
const IndexTemplate = "static/index.html"

// Server holds the dashboard state shared by all handlers.
type Server struct {
	cfg     config.Config
	store   *store.Store
	locales *locale.Matcher
	static  fs.FS
	page    *template.Template
	http    *http.Server
}

// NewServer builds a Server. static must contain IndexTemplate and the files
// served under /static/.
func NewServer(cfg config.Config, st *store.Store, static fs.FS) (*Server, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("http address is required")
	}
	page, err := template.New("index.html").Funcs(pageFuncs).ParseFS(static, IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		store:   st,
		locales: locale.NewMatcher(cfg.Locale),
		static:  static,
		page:    page,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return s, nil
}

// Routes returns the dashboard handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.ServeIndex)
	mux.HandleFunc("/download-template", s.HandleTemplate)
	mux.HandleFunc("/api/chart", s.HandleChart)
	mux.HandleFunc("/api/upload", s.HandleUpload)
	mux.HandleFunc("/api/caption", s.HandleCaption)
	mux.HandleFunc("/api/events/export", s.HandleExport)
	mux.HandleFunc("/api/subscribe", s.HandleSubscribe)
	mux.HandleFunc("/api/status", s.HandleStatus)
	mux.HandleFunc("/timeline.png", s.HandleImage)
	mux.HandleFunc("/timeline.svg", s.HandleImage)

	mux.Handle("/static/", http.FileServer(http.FS(s.static)))
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.cfg.AssetsDir))))

	return logRequests(mux)
}

// ListenAndServe serves HTTP traffic until ctx is cancelled or the server
// stops. Shutdown waits at most the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.http.ListenAndServe()
	}()

	logger.Info("Starting event timeline", logger.Fields{
		"addr":         s.cfg.Addr,
		"default_file": s.cfg.DefaultFile,
		"locale":       s.locales.Default().Tag.String(),
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("Stopped event timeline", nil)
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs each request at debug level and records its latency.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		logger.RecordTiming("http.request", elapsed)
		logger.Debug("HTTP request", logger.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": elapsed.String(),
		})
	})
}
