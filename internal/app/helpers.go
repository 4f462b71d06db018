package app

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"golang.org/x/crypto/blake2b"

	"github.com/klabast/wb-services/event-timeline/internal/logger"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, ErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// NotModified reports whether the request already holds etag.
func NotModified(r *http.Request, etag string) bool {
	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		if c := strings.TrimSpace(candidate); c == etag || c == "*" {
			return true
		}
	}
	return false
}

// writeJSON encodes v with sonic and writes it with an ETag.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	body, err := sonic.Marshal(v)
	if err != nil {
		logger.Error("Error encoding response", logger.Fields{"path": r.URL.Path}, err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.Header().Set("ETag", ETag(body))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Warn("Error writing response", logger.Fields{"path": r.URL.Path}, err)
	}
}

// ErrMalformedDataURI is returned when upload contents lack the base64 marker.
var ErrMalformedDataURI = errors.New("malformed data URI")

// DecodeDataURI extracts the payload of "<type>;base64,<payload>". A leading
// "data:" scheme is accepted.
func DecodeDataURI(contents string) (mediaType string, data []byte, err error) {
	header, payload, ok := strings.Cut(contents, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, ErrMalformedDataURI
	}
	mediaType = strings.TrimPrefix(strings.TrimSuffix(header, ";base64"), "data:")
	data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return mediaType, nil, fmt.Errorf("decode payload: %w", err)
	}
	return mediaType, data, nil
}

// FilterByCategory keeps the events whose category is listed in the
// comma-separated filter. An empty filter keeps everything.
func FilterByCategory(table timeline.Table, filter string) timeline.Table {
	if filter == "" {
		return table
	}
	keep := make(map[string]bool)
	for _, c := range strings.Split(filter, ",") {
		keep[strings.TrimSpace(c)] = true
	}
	var filtered timeline.Table
	for _, e := range table {
		if keep[e.Category] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
