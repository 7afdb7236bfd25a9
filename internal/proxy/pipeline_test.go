package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"nova/internal/sse"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWriter(t *testing.T) (*sse.Writer, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	w, err := sse.NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return w, rec
}

// errReader yields some data then fails, simulating an upstream
// connection dropped mid-stream.
type errReader struct {
	data string
	err  error
	read bool
}

func (r *errReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, r.err
}

func (r *errReader) Close() error { return nil }

// failWriter breaks the client connection after a fixed number of
// successful writes.
type failWriter struct {
	*httptest.ResponseRecorder
	succeed int
	writes  int
}

func (w *failWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > w.succeed {
		return 0, errors.New("broken pipe")
	}
	return w.ResponseRecorder.Write(p)
}

func TestPumpForwardsUntilEOF(t *testing.T) {
	upstream := "data: {\"event\":\"message\",\"answer\":\"a\"}\n\n" +
		"data: {\"event\":\"workflow_finished\"}\n\n" +
		"data: {\"event\":\"message\",\"answer\":\"b\"}\n\n"

	w, rec := newTestWriter(t)
	body := io.NopCloser(strings.NewReader(upstream))

	result := Pump(context.Background(), w, body, &MessageFilter{}, testLogger())

	if result.State != StateClosed {
		t.Errorf("state = %q, want %q", result.State, StateClosed)
	}
	if result.FramesForwarded != 2 {
		t.Errorf("frames forwarded = %d, want 2", result.FramesForwarded)
	}

	out := rec.Body.String()
	if !strings.Contains(out, `"answer":"a"`) || !strings.Contains(out, `"answer":"b"`) {
		t.Errorf("response missing forwarded frames: %q", out)
	}
	if strings.Contains(out, "workflow_finished") {
		t.Errorf("dropped frame leaked to client: %q", out)
	}
}

func TestPumpDoneSentinelDoesNotEndStream(t *testing.T) {
	// Frames after [DONE] must still be read; only EOF ends iteration
	upstream := "data: {\"event\":\"message\",\"answer\":\"before\"}\n\n" +
		"data: [DONE]\n\n" +
		"data: {\"event\":\"message\",\"answer\":\"after\"}\n\n"

	w, rec := newTestWriter(t)
	body := io.NopCloser(strings.NewReader(upstream))

	result := Pump(context.Background(), w, body, &MessageFilter{forwardDone: true}, testLogger())

	if result.State != StateClosed {
		t.Errorf("state = %q, want %q", result.State, StateClosed)
	}
	if result.FramesForwarded != 3 {
		t.Errorf("frames forwarded = %d, want 3", result.FramesForwarded)
	}
	if !strings.Contains(rec.Body.String(), `"answer":"after"`) {
		t.Error("frame after [DONE] was not forwarded")
	}
}

func TestPumpUpstreamError(t *testing.T) {
	body := &errReader{
		data: "data: {\"event\":\"message\",\"answer\":\"partial\"}\n\n",
		err:  errors.New("connection reset"),
	}

	w, _ := newTestWriter(t)
	result := Pump(context.Background(), w, body, &MessageFilter{}, testLogger())

	if result.State != StateErrored {
		t.Errorf("state = %q, want %q", result.State, StateErrored)
	}
	if result.FramesForwarded != 1 {
		t.Errorf("frames forwarded = %d, want 1", result.FramesForwarded)
	}
}

func TestPumpCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := &errReader{
		data: "data: {\"event\":\"message\",\"answer\":\"x\"}\n\n",
		err:  context.Canceled,
	}

	w, _ := newTestWriter(t)
	result := Pump(ctx, w, body, &MessageFilter{}, testLogger())

	if result.State != StateCancelled {
		t.Errorf("state = %q, want %q", result.State, StateCancelled)
	}
}

func TestPumpClientDisconnect(t *testing.T) {
	upstream := "data: {\"event\":\"message\",\"answer\":\"a\"}\n\n" +
		"data: {\"event\":\"message\",\"answer\":\"b\"}\n\n" +
		"data: {\"event\":\"message\",\"answer\":\"c\"}\n\n"

	fw := &failWriter{ResponseRecorder: httptest.NewRecorder(), succeed: 1}
	w, err := sse.NewWriter(fw)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	body := io.NopCloser(strings.NewReader(upstream))
	result := Pump(context.Background(), w, body, &MessageFilter{}, testLogger())

	if result.State != StateCancelled {
		t.Errorf("state = %q, want %q", result.State, StateCancelled)
	}
	if result.FramesForwarded != 1 {
		t.Errorf("frames forwarded = %d, want 1", result.FramesForwarded)
	}
}
