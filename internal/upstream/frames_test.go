package upstream

import (
	"strings"
	"testing"
)

func collectFrames(t *testing.T, input string) []*Frame {
	t.Helper()
	s := NewScanner(strings.NewReader(input))
	var frames []*Frame
	for {
		f := s.Next()
		if f == nil {
			break
		}
		frames = append(frames, f)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected scanner error: %v", err)
	}
	return frames
}

func TestScannerParsesFrames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Frame
	}{
		{
			name:  "single data frame",
			input: "data: {\"event\":\"message\",\"answer\":\"hi\"}\n\n",
			want: []Frame{
				{Data: []byte(`{"event":"message","answer":"hi"}`)},
			},
		},
		{
			name:  "event and id field lines",
			input: "event: update\nid: 42\ndata: {\"x\":1}\n\n",
			want: []Frame{
				{Event: "update", ID: "42", Data: []byte(`{"x":1}`)},
			},
		},
		{
			name:  "multiple frames in order",
			input: "data: one\n\ndata: two\n\ndata: three\n\n",
			want: []Frame{
				{Data: []byte("one")},
				{Data: []byte("two")},
				{Data: []byte("three")},
			},
		},
		{
			name:  "multi-line data joined with newline",
			input: "data: first\ndata: second\n\n",
			want: []Frame{
				{Data: []byte("first\nsecond")},
			},
		},
		{
			name:  "trailing frame without blank line still yielded",
			input: "data: last",
			want: []Frame{
				{Data: []byte("last")},
			},
		},
		{
			name:  "comment lines skipped",
			input: ": keepalive\n\ndata: payload\n\n",
			want: []Frame{
				{Data: []byte("payload")},
			},
		},
		{
			name:  "colons inside payload survive",
			input: "data: {\"url\":\"https://example.com\"}\n\n",
			want: []Frame{
				{Data: []byte(`{"url":"https://example.com"}`)},
			},
		},
		{
			name:  "done sentinel is a normal frame",
			input: "data: {\"event\":\"message\"}\n\ndata: [DONE]\n\n",
			want: []Frame{
				{Data: []byte(`{"event":"message"}`)},
				{Data: []byte("[DONE]")},
			},
		},
		{
			name:  "empty input yields nothing",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectFrames(t, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("frame count = %d, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].Event != want.Event {
					t.Errorf("frame %d event = %q, want %q", i, got[i].Event, want.Event)
				}
				if got[i].ID != want.ID {
					t.Errorf("frame %d id = %q, want %q", i, got[i].ID, want.ID)
				}
				if string(got[i].Data) != string(want.Data) {
					t.Errorf("frame %d data = %q, want %q", i, got[i].Data, want.Data)
				}
			}
		})
	}
}

func TestFrameIsDone(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{name: "exact sentinel", data: "[DONE]", want: true},
		{name: "sentinel with surrounding space", data: " [DONE] ", want: true},
		{name: "json payload", data: `{"event":"message"}`, want: false},
		{name: "empty", data: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Frame{Data: []byte(tt.data)}
			if got := f.IsDone(); got != tt.want {
				t.Errorf("IsDone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrameEventType(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{
			name:  "event field line wins",
			frame: Frame{Event: "ping", Data: []byte(`{"event":"message"}`)},
			want:  "ping",
		},
		{
			name:  "falls back to json event key",
			frame: Frame{Data: []byte(`{"event":"text_chunk"}`)},
			want:  "text_chunk",
		},
		{
			name:  "non-json payload without event line",
			frame: Frame{Data: []byte("[DONE]")},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.EventType(); got != tt.want {
				t.Errorf("EventType() = %q, want %q", got, tt.want)
			}
		})
	}
}
