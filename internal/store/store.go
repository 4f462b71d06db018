// Package store keeps the active event table of the dashboard.
//
// The table is held behind an atomic pointer and only ever replaced as a whole,
// so readers always observe a complete table without locking.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/klabast/wb-services/event-timeline/internal/spreadsheet"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

// Source labels of a snapshot.
const (
	SourceBuiltin      = "builtin"
	SourceUploadPrefix = "upload:"
)

// Snapshot is one installed table with its provenance.
type Snapshot struct {
	Table    timeline.Table
	Source   string
	LoadedAt time.Time
}

// StartupLoadError reports that the optional default file could not be used.
type StartupLoadError struct {
	Path string
	Err  error
}

func (e *StartupLoadError) Error() string {
	return fmt.Sprintf("load default dataset %s: %v", e.Path, e.Err)
}

func (e *StartupLoadError) Unwrap() error {
	return e.Err
}

// Missing reports whether the default file simply does not exist.
func (e *StartupLoadError) Missing() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// DecodeFunc turns raw spreadsheet bytes into a table.
type DecodeFunc func([]byte) (timeline.Table, error)

// Store holds the active event table.
type Store struct {
	current atomic.Pointer[Snapshot]
	builtin timeline.Table
	decode  DecodeFunc
	now     func() time.Time
}

// New creates a Store serving builtin until something else is installed.
func New(builtin timeline.Table) *Store {
	s := &Store{
		builtin: builtin.Clone(),
		decode:  spreadsheet.Decode,
		now:     time.Now,
	}
	s.install(s.builtin, SourceBuiltin)
	return s
}

// GetCurrent returns the active table. The caller must not modify it.
func (s *Store) GetCurrent() timeline.Table {
	return s.current.Load().Table
}

// Snapshot returns the active table with its source and load time.
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// ReplaceWith installs table as the active one.
func (s *Store) ReplaceWith(table timeline.Table) {
	s.install(table, "replace")
}

func (s *Store) install(table timeline.Table, source string) {
	s.current.Store(&Snapshot{
		Table:    table.Clone(),
		Source:   source,
		LoadedAt: s.now(),
	})
}

// LoadDefault installs the table found at path, or the builtin table when the
// file is missing or unreadable. A non-nil error is informational only; the
// store is always usable afterwards.
func (s *Store) LoadDefault(path string) error {
	if path == "" {
		s.install(s.builtin, SourceBuiltin)
		return nil
	}

	table, err := readTable(path, s.decode)
	if err != nil {
		s.install(s.builtin, SourceBuiltin)
		return &StartupLoadError{Path: path, Err: err}
	}

	s.install(table, path)
	return nil
}

func readTable(path string, decode DecodeFunc) (timeline.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// ApplyUpload decodes an uploaded workbook and installs it. On failure the
// active table is left untouched and returned along with the decode error.
func (s *Store) ApplyUpload(filename string, data []byte) (timeline.Table, error) {
	table, err := s.decode(data)
	if err != nil {
		return s.GetCurrent(), err
	}
	s.install(table, SourceUploadPrefix+filename)
	return s.GetCurrent(), nil
}
