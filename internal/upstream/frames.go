package upstream

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// doneSentinel is the literal payload some providers send to mark the end
// of a stream. It is not JSON and must not end iteration by itself; the
// stream ends only at EOF.
const doneSentinel = "[DONE]"

// Frame is one parsed upstream SSE event: the optional event: and id:
// field lines plus the data payload. Data is the raw bytes after
// "data: ", joined with newlines when the event spans multiple data
// lines.
type Frame struct {
	Event string
	ID    string
	Data  []byte
}

// IsDone reports whether the frame carries the [DONE] sentinel.
func (f *Frame) IsDone() bool {
	return string(bytes.TrimSpace(f.Data)) == doneSentinel
}

// EventType returns the discriminator for the frame: the event: field
// line when present, otherwise the "event" key of the JSON data payload.
// Returns empty string for non-JSON payloads without an event line.
func (f *Frame) EventType() string {
	if f.Event != "" {
		return f.Event
	}
	return gjson.GetBytes(f.Data, "event").String()
}

// Scanner reads SSE frames off an upstream response body. Frames are
// delimited by blank lines; a trailing frame without a terminating blank
// line is still yielded at EOF. Scanning is byte-oriented, so multi-byte
// UTF-8 sequences split across transport chunks are never corrupted.
type Scanner struct {
	scanner *bufio.Scanner
	pending *Frame
	err     error
}

// maxLineBytes bounds a single SSE line. Generous enough for full
// artifact payloads embedded in one data line.
const maxLineBytes = 1 << 20

// NewScanner creates a Scanner over an upstream body.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Scanner{scanner: s}
}

// Next returns the next frame, or nil at end of stream. Call Err after a
// nil return to distinguish EOF from a read failure.
func (s *Scanner) Next() *Frame {
	var frame *Frame

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())

		// Blank line terminates the current event
		if line == "" {
			if frame != nil {
				return frame
			}
			continue
		}

		// Comment line, ignored per the SSE spec
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		if frame == nil {
			frame = &Frame{}
		}

		switch field {
		case "event":
			frame.Event = value
		case "id":
			frame.ID = value
		case "data":
			if frame.Data == nil {
				frame.Data = []byte(value)
			} else {
				frame.Data = append(append(frame.Data, '\n'), value...)
			}
		default:
			// Unknown field names are ignored, matching browser
			// EventSource behavior
		}
	}

	if err := s.scanner.Err(); err != nil {
		s.err = err
		return nil
	}

	// EOF without a trailing blank line still yields the last frame
	return frame
}

// Err returns the read error that ended the stream, or nil for clean EOF.
func (s *Scanner) Err() error {
	return s.err
}

// splitField splits "data: {...}" into name and value. The value keeps
// everything after the first colon with one optional leading space
// stripped, so payloads containing colons survive intact.
func splitField(line string) (string, string) {
	name, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return name, strings.TrimPrefix(value, " ")
}
