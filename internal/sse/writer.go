package sse

import (
	"fmt"
	"net/http"
	"sync"
)

// Writer serializes Server-Sent Events onto an http.ResponseWriter,
// flushing after every event. A mutex serializes event writes against
// keep-alive comments emitted from a separate goroutine.
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares w for SSE output. Returns an error if the
// ResponseWriter does not support flushing.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	return &Writer{w: w, flusher: flusher}, nil
}

// WriteHeaders sets the standard SSE response headers. Must be called
// before the first event.
func (s *Writer) WriteHeaders() {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Disable nginx buffering
}

// WriteEvent writes one SSE event. Event and id lines are emitted only
// when non-empty; data is emitted verbatim as a single data: line.
func (s *Writer) WriteEvent(event, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return fmt.Errorf("write event line: %w", err)
		}
	}
	if id != "" {
		if _, err := fmt.Fprintf(s.w, "id: %s\n", id); err != nil {
			return fmt.Errorf("write id line: %w", err)
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write data line: %w", err)
	}

	s.flusher.Flush()
	return nil
}

// WriteData writes a bare data-only event.
func (s *Writer) WriteData(data []byte) error {
	return s.WriteEvent("", "", data)
}

// WriteKeepAlive writes an SSE comment (": keepalive") and probes the
// connection with a zero-byte write so closed connections surface as an
// error instead of silently buffering.
func (s *Writer) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// SSE spec: lines starting with : are comments, ignored by clients
	if _, err := fmt.Fprintf(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}

	s.flusher.Flush()

	if _, err := s.w.Write([]byte{}); err != nil {
		return fmt.Errorf("connection closed: %w", err)
	}

	return nil
}
