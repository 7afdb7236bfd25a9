package proxy

import (
	"context"
	"io"
	"log/slog"

	"nova/internal/sse"
	"nova/internal/upstream"
)

// State is the terminal state of one proxied stream.
type State string

const (
	// StateClosed - upstream reached EOF and every forwarded frame was
	// delivered.
	StateClosed State = "closed"
	// StateErrored - the upstream read failed mid-stream. The client sees
	// a truncated stream.
	StateErrored State = "errored"
	// StateCancelled - the client disconnected; the upstream body was
	// drained and closed.
	StateCancelled State = "cancelled"
)

// Result summarizes one pump run.
type Result struct {
	State           State
	FramesForwarded int
}

// Pump reads SSE frames from the upstream body, applies the transform,
// and writes surviving frames to the client until EOF, upstream error, or
// client disconnect. Frames are forwarded in upstream order, one write
// and flush per frame, no coalescing.
//
// The upstream request must be bound to ctx so a client disconnect
// cancels the upstream read as well.
func Pump(ctx context.Context, writer *sse.Writer, body io.ReadCloser, transform Transform, logger *slog.Logger) Result {
	defer body.Close()

	scanner := upstream.NewScanner(body)
	forwarded := 0

	for {
		frame := scanner.Next()
		if frame == nil {
			break
		}

		out, ok := transform.Apply(frame)
		if !ok {
			continue
		}

		if err := writer.WriteEvent(out.Event, out.ID, out.Data); err != nil {
			logger.Debug("client disconnected during stream",
				"frames_forwarded", forwarded,
				"error", err,
			)
			// Drain upstream so the connection can be reused
			io.Copy(io.Discard, body)
			return Result{State: StateCancelled, FramesForwarded: forwarded}
		}
		forwarded++
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			// The read failed because the request context was cancelled:
			// client went away, not an upstream fault
			logger.Debug("stream cancelled by client",
				"frames_forwarded", forwarded,
			)
			return Result{State: StateCancelled, FramesForwarded: forwarded}
		}
		logger.Error("upstream read failed mid-stream",
			"frames_forwarded", forwarded,
			"error", err,
		)
		return Result{State: StateErrored, FramesForwarded: forwarded}
	}

	return Result{State: StateClosed, FramesForwarded: forwarded}
}
