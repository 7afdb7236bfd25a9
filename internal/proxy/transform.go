package proxy

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"nova/internal/upstream"
)

// OutFrame is one event headed for the client. Event and ID are only set
// by the passthrough transform; the JSON-shaping transforms emit bare
// data frames.
type OutFrame struct {
	Event string
	ID    string
	Data  []byte
}

// Transform decides, per upstream frame, whether to forward it and in
// what shape. Implementations are per-request: conversation stamping is
// stateful.
//
// Parse-failure policy is uniform across transforms: a data payload that
// is not valid JSON is forwarded raw rather than silently dropped, so
// upstream diagnostics reach the client instead of vanishing.
type Transform interface {
	Apply(frame *upstream.Frame) (*OutFrame, bool)
}

// NewTransform builds the transform named by a route policy.
func NewTransform(policy *upstream.RoutePolicy) (Transform, error) {
	switch policy.Transform {
	case upstream.TransformMessageFilter:
		return &MessageFilter{
			stampConversation: policy.StampConversation,
			forwardDone:       policy.ForwardDone,
		}, nil
	case upstream.TransformTextChunkRewrite:
		return &TextChunkRewrite{
			stampConversation: policy.StampConversation,
			forwardDone:       policy.ForwardDone,
		}, nil
	case upstream.TransformPassthrough:
		return &Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unknown transform %q", policy.Transform)
	}
}

// MessageFilter forwards only frames whose event discriminator is
// "message". When stamping is enabled, the first non-empty
// conversation_id observed on any frame (forwarded or not) is written
// onto every forwarded frame from then on, overriding whatever the
// frame itself carries.
type MessageFilter struct {
	stampConversation bool
	forwardDone       bool
	conversationID    string
}

func (t *MessageFilter) Apply(frame *upstream.Frame) (*OutFrame, bool) {
	if frame.Data == nil {
		return nil, false
	}

	if frame.IsDone() {
		if !t.forwardDone {
			return nil, false
		}
		return &OutFrame{Data: frame.Data}, true
	}

	if !gjson.ValidBytes(frame.Data) {
		// Unparseable payloads are forwarded raw, not dropped
		return &OutFrame{Data: frame.Data}, true
	}

	t.observeConversation(frame.Data)

	if frame.EventType() != "message" {
		return nil, false
	}

	return &OutFrame{Data: t.stamp(frame.Data)}, true
}

func (t *MessageFilter) observeConversation(data []byte) {
	if !t.stampConversation || t.conversationID != "" {
		return
	}
	if cid := gjson.GetBytes(data, "conversation_id").String(); cid != "" {
		t.conversationID = cid
	}
}

func (t *MessageFilter) stamp(data []byte) []byte {
	if !t.stampConversation || t.conversationID == "" {
		return data
	}
	stamped, err := sjson.SetBytes(data, "conversation_id", t.conversationID)
	if err != nil {
		return data
	}
	return stamped
}

// TextChunkRewrite forwards only "text_chunk" frames, reshaped into the
// message frame shape the canvas UI consumes: event rewritten to
// "message" and data.text copied to a top-level answer field.
type TextChunkRewrite struct {
	stampConversation bool
	forwardDone       bool
	conversationID    string
}

func (t *TextChunkRewrite) Apply(frame *upstream.Frame) (*OutFrame, bool) {
	if frame.Data == nil {
		return nil, false
	}

	if frame.IsDone() {
		if !t.forwardDone {
			return nil, false
		}
		return &OutFrame{Data: frame.Data}, true
	}

	if !gjson.ValidBytes(frame.Data) {
		return &OutFrame{Data: frame.Data}, true
	}

	if t.stampConversation && t.conversationID == "" {
		if cid := gjson.GetBytes(frame.Data, "conversation_id").String(); cid != "" {
			t.conversationID = cid
		}
	}

	if frame.EventType() != "text_chunk" {
		return nil, false
	}

	data := frame.Data
	text := gjson.GetBytes(data, "data.text").String()

	data, err := sjson.SetBytes(data, "event", "message")
	if err != nil {
		return nil, false
	}
	data, err = sjson.SetBytes(data, "answer", text)
	if err != nil {
		return nil, false
	}
	if t.stampConversation && t.conversationID != "" {
		if stamped, err := sjson.SetBytes(data, "conversation_id", t.conversationID); err == nil {
			data = stamped
		}
	}

	return &OutFrame{Data: data}, true
}

// Passthrough forwards every recognized SSE field verbatim, including
// event:/id: lines and the [DONE] sentinel. Used by the agent route,
// whose client consumes the upstream protocol directly.
type Passthrough struct{}

func (t *Passthrough) Apply(frame *upstream.Frame) (*OutFrame, bool) {
	if frame.Data == nil && frame.Event == "" && frame.ID == "" {
		return nil, false
	}
	return &OutFrame{
		Event: frame.Event,
		ID:    frame.ID,
		Data:  frame.Data,
	}, true
}
