package proxy

import (
	"fmt"
	"testing"

	"github.com/tidwall/gjson"

	"nova/internal/upstream"
)

func TestMessageFilterForwardsOnlyMessageEvents(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		forward bool
	}{
		{
			name:    "message event forwarded",
			data:    `{"event":"message","answer":"hello"}`,
			forward: true,
		},
		{
			name:    "workflow event dropped",
			data:    `{"event":"workflow_started","task_id":"t1"}`,
			forward: false,
		},
		{
			name:    "node event dropped",
			data:    `{"event":"node_finished"}`,
			forward: false,
		},
		{
			name:    "message_end dropped",
			data:    `{"event":"message_end","metadata":{}}`,
			forward: false,
		},
		{
			name:    "non-json payload forwarded raw",
			data:    "upstream exploded: 502",
			forward: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &MessageFilter{}
			out, ok := tr.Apply(&upstream.Frame{Data: []byte(tt.data)})
			if ok != tt.forward {
				t.Fatalf("forward = %v, want %v", ok, tt.forward)
			}
			if ok && string(out.Data) != tt.data {
				t.Errorf("data = %q, want %q", out.Data, tt.data)
			}
		})
	}
}

func TestMessageFilterPreservesOrderAndCount(t *testing.T) {
	tr := &MessageFilter{}

	const n = 10
	var forwarded []string
	for i := 0; i < n; i++ {
		data := []byte(fmt.Sprintf(`{"event":"message","answer":"chunk-%d"}`, i))
		out, ok := tr.Apply(&upstream.Frame{Data: data})
		if !ok {
			t.Fatalf("frame %d not forwarded", i)
		}
		forwarded = append(forwarded, gjson.GetBytes(out.Data, "answer").String())
	}

	if len(forwarded) != n {
		t.Fatalf("forwarded %d frames, want %d", len(forwarded), n)
	}
	for i, answer := range forwarded {
		want := fmt.Sprintf("chunk-%d", i)
		if answer != want {
			t.Errorf("frame %d answer = %q, want %q", i, answer, want)
		}
	}
}

func TestMessageFilterStampsConversationID(t *testing.T) {
	tr := &MessageFilter{stampConversation: true}

	// First frame carries no conversation_id and is forwarded as-is
	out, ok := tr.Apply(&upstream.Frame{Data: []byte(`{"event":"message","answer":"a"}`)})
	if !ok {
		t.Fatal("first frame not forwarded")
	}
	if cid := gjson.GetBytes(out.Data, "conversation_id").String(); cid != "" {
		t.Errorf("premature stamp: conversation_id = %q", cid)
	}

	// A dropped frame carries the conversation_id; the filter must still
	// observe it
	_, ok = tr.Apply(&upstream.Frame{Data: []byte(`{"event":"workflow_started","conversation_id":"conv-1"}`)})
	if ok {
		t.Fatal("workflow frame should be dropped")
	}

	// Subsequent forwarded frames are stamped, overriding their own value
	out, ok = tr.Apply(&upstream.Frame{Data: []byte(`{"event":"message","answer":"b","conversation_id":"other"}`)})
	if !ok {
		t.Fatal("second message frame not forwarded")
	}
	if cid := gjson.GetBytes(out.Data, "conversation_id").String(); cid != "conv-1" {
		t.Errorf("conversation_id = %q, want %q", cid, "conv-1")
	}

	// The first observed value is sticky
	out, _ = tr.Apply(&upstream.Frame{Data: []byte(`{"event":"message","answer":"c","conversation_id":"conv-2"}`)})
	if cid := gjson.GetBytes(out.Data, "conversation_id").String(); cid != "conv-1" {
		t.Errorf("stamp not sticky: conversation_id = %q, want %q", cid, "conv-1")
	}
}

func TestMessageFilterDoneSentinel(t *testing.T) {
	done := &upstream.Frame{Data: []byte("[DONE]")}

	withDone := &MessageFilter{forwardDone: true}
	out, ok := withDone.Apply(done)
	if !ok {
		t.Fatal("[DONE] should be forwarded when forward_done is set")
	}
	if string(out.Data) != "[DONE]" {
		t.Errorf("data = %q, want [DONE] verbatim", out.Data)
	}

	withoutDone := &MessageFilter{forwardDone: false}
	if _, ok := withoutDone.Apply(done); ok {
		t.Error("[DONE] should be dropped when forward_done is not set")
	}
}

func TestTextChunkRewrite(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		forward    bool
		wantAnswer string
	}{
		{
			name:       "text_chunk rewritten to message",
			data:       `{"event":"text_chunk","data":{"text":"rewritten"}}`,
			forward:    true,
			wantAnswer: "rewritten",
		},
		{
			name:    "workflow events dropped",
			data:    `{"event":"workflow_started"}`,
			forward: false,
		},
		{
			name:       "missing text yields empty answer",
			data:       `{"event":"text_chunk","data":{}}`,
			forward:    true,
			wantAnswer: "",
		},
		{
			name:    "non-json forwarded raw",
			data:    "plain error text",
			forward: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &TextChunkRewrite{}
			out, ok := tr.Apply(&upstream.Frame{Data: []byte(tt.data)})
			if ok != tt.forward {
				t.Fatalf("forward = %v, want %v", ok, tt.forward)
			}
			if !ok {
				return
			}
			if !gjson.ValidBytes(out.Data) {
				if string(out.Data) != tt.data {
					t.Errorf("raw forward data = %q, want %q", out.Data, tt.data)
				}
				return
			}
			if event := gjson.GetBytes(out.Data, "event").String(); event != "message" {
				t.Errorf("event = %q, want message", event)
			}
			if answer := gjson.GetBytes(out.Data, "answer").String(); answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", answer, tt.wantAnswer)
			}
		})
	}
}

func TestTextChunkRewriteStampsConversationID(t *testing.T) {
	tr := &TextChunkRewrite{stampConversation: true}

	_, ok := tr.Apply(&upstream.Frame{Data: []byte(`{"event":"workflow_started","conversation_id":"conv-9"}`)})
	if ok {
		t.Fatal("workflow frame should be dropped")
	}

	out, ok := tr.Apply(&upstream.Frame{Data: []byte(`{"event":"text_chunk","data":{"text":"x"}}`)})
	if !ok {
		t.Fatal("text_chunk not forwarded")
	}
	if cid := gjson.GetBytes(out.Data, "conversation_id").String(); cid != "conv-9" {
		t.Errorf("conversation_id = %q, want conv-9", cid)
	}
}

func TestPassthroughForwardsVerbatim(t *testing.T) {
	tr := &Passthrough{}

	frame := &upstream.Frame{Event: "custom", ID: "7", Data: []byte(`{"anything":"goes"}`)}
	out, ok := tr.Apply(frame)
	if !ok {
		t.Fatal("frame not forwarded")
	}
	if out.Event != "custom" || out.ID != "7" {
		t.Errorf("event/id = %q/%q, want custom/7", out.Event, out.ID)
	}
	if string(out.Data) != string(frame.Data) {
		t.Errorf("data = %q, want %q", out.Data, frame.Data)
	}

	done, ok := tr.Apply(&upstream.Frame{Data: []byte("[DONE]")})
	if !ok || string(done.Data) != "[DONE]" {
		t.Error("[DONE] must pass through verbatim")
	}
}

func TestNewTransform(t *testing.T) {
	tests := []struct {
		name      string
		transform string
		wantErr   bool
	}{
		{name: "message filter", transform: upstream.TransformMessageFilter},
		{name: "text chunk rewrite", transform: upstream.TransformTextChunkRewrite},
		{name: "passthrough", transform: upstream.TransformPassthrough},
		{name: "unknown", transform: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransform(&upstream.RoutePolicy{Transform: tt.transform})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
