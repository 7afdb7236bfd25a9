package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nova/internal/domain"
	"nova/internal/domain/models"
	"nova/internal/domain/services"
)

// SyncState reconciles persisted rows for one thread against a
// client-supplied full snapshot. Everything after the ownership check
// runs in a single transaction: a failure anywhere rolls the thread back
// to its pre-call state, so a failed message insert can never leave the
// thread emptied by the preceding delete.
func (s *threadService) SyncState(ctx context.Context, threadID, userID string, snapshot *services.StateSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: missing state snapshot", domain.ErrValidation)
	}

	// Ownership check before any writes. A thread owned by someone else
	// reports not-found, indistinguishable from absence.
	if _, err := s.threadRepo.GetByID(ctx, threadID, userID); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if snapshot.Values.Artifact != nil {
			if err := s.syncArtifact(txCtx, threadID, snapshot.Values.Artifact); err != nil {
				return err
			}
		}

		if snapshot.Values.Messages != nil {
			if err := s.syncMessages(txCtx, threadID, *snapshot.Values.Messages); err != nil {
				return err
			}
		}

		// Stamped unconditionally, even for a no-op snapshot
		return s.threadRepo.Touch(txCtx, threadID)
	})
	if err != nil {
		s.logger.Error("thread state sync failed",
			"thread_id", threadID,
			"error", err,
		)
		return err
	}

	return nil
}

// syncArtifact appends the snapshot's content versions to the thread's
// active artifact, creating the artifact first if the thread has none.
// Indices are assigned server-side: maxExisting+1, +2, ... in array
// order, under the artifact row lock taken by MaxContentIndex.
func (s *threadService) syncArtifact(ctx context.Context, threadID string, snap *services.ArtifactSnapshot) error {
	artifact, err := s.artifactRepo.GetLatestByThread(ctx, threadID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		initialIndex := snap.CurrentIndex
		if initialIndex <= 0 {
			initialIndex = 1
		}
		artifact = &models.Artifact{
			ThreadID:     threadID,
			CurrentIndex: initialIndex,
		}
		if err := s.artifactRepo.Create(ctx, artifact); err != nil {
			return err
		}
	}

	if len(snap.Contents) == 0 {
		// No new versions; the pointer may still move to an already
		// existing version
		if snap.CurrentIndex > 0 && snap.CurrentIndex != artifact.CurrentIndex {
			return s.artifactRepo.SetCurrentIndex(ctx, artifact.ID, snap.CurrentIndex)
		}
		return nil
	}

	maxIndex, err := s.artifactRepo.MaxContentIndex(ctx, artifact.ID)
	if err != nil {
		return err
	}

	contents := make([]models.ArtifactContent, 0, len(snap.Contents))
	for i, c := range snap.Contents {
		contentType := c.Type
		if contentType != models.ArtifactTypeCode {
			contentType = models.ArtifactTypeText
		}
		contents = append(contents, models.ArtifactContent{
			ArtifactID:   artifact.ID,
			Index:        maxIndex + i + 1,
			Type:         contentType,
			Title:        c.Title,
			FullMarkdown: c.FullMarkdown,
			Code:         c.Code,
			Language:     c.Language,
		})
	}

	if err := s.artifactRepo.InsertContents(ctx, contents); err != nil {
		return err
	}

	lastIndex := maxIndex + len(contents)
	if err := s.artifactRepo.SetCurrentIndex(ctx, artifact.ID, lastIndex); err != nil {
		return err
	}

	s.logger.Debug("artifact contents appended",
		"artifact_id", artifact.ID,
		"new_versions", len(contents),
		"current_index", lastIndex,
	)

	return nil
}

// syncMessages replaces the thread's message set with the snapshot's,
// wholesale. Messages with empty content are dropped before numbering,
// so sequence numbers stay gap-free over the surviving list.
func (s *threadService) syncMessages(ctx context.Context, threadID string, raw []map[string]interface{}) error {
	messages := make([]models.Message, 0, len(raw))
	for _, m := range raw {
		msg, ok := normalizeMessage(m)
		if !ok {
			continue
		}
		msg.ThreadID = threadID
		msg.SequenceNumber = len(messages) + 1
		messages = append(messages, msg)
	}

	if err := s.messageRepo.DeleteByThread(ctx, threadID); err != nil {
		return err
	}

	return s.messageRepo.InsertAll(ctx, messages)
}

// normalizeMessage converts one incoming message, in either of the two
// wire shapes, into a Message row. Returns false for messages whose
// resolved content is absent or blank; those are dropped entirely rather
// than persisted as holes.
//
// Shape 1, plain: {type|role, content, tool_calls?, ...}
// Shape 2, LangChain constructor envelope:
//
//	{lc: 1, type: "constructor", id: [..., "HumanMessage"], kwargs: {...}}
func normalizeMessage(raw map[string]interface{}) (models.Message, bool) {
	fields := raw
	msgType := ""

	if isConstructorEnvelope(raw) {
		if kwargs, ok := raw["kwargs"].(map[string]interface{}); ok {
			fields = kwargs
		} else {
			fields = map[string]interface{}{}
		}
		msgType = typeFromConstructorID(raw["id"])
	}

	if msgType == "" {
		msgType = resolveMessageType(fields)
	}

	content, ok := stringifyContent(fields["content"])
	if !ok {
		return models.Message{}, false
	}

	return models.Message{
		Type:             msgType,
		Content:          content,
		ToolCalls:        toMapSlice(fields["tool_calls"]),
		AdditionalKwargs: toMap(fields["additional_kwargs"]),
		ResponseMetadata: toMap(fields["response_metadata"]),
		UsageMetadata:    toMap(fields["usage_metadata"]),
	}, true
}

func isConstructorEnvelope(raw map[string]interface{}) bool {
	if _, hasLC := raw["lc"]; !hasLC {
		return false
	}
	t, _ := raw["type"].(string)
	return t == "constructor"
}

// typeFromConstructorID maps the last element of a LangChain constructor
// id path ("HumanMessage", "AIMessageChunk", ...) to a message type.
func typeFromConstructorID(id interface{}) string {
	path, ok := id.([]interface{})
	if !ok || len(path) == 0 {
		return ""
	}
	name, ok := path[len(path)-1].(string)
	if !ok {
		return ""
	}

	switch {
	case strings.HasPrefix(name, "Human"):
		return models.MessageTypeHuman
	case strings.HasPrefix(name, "AI"):
		return models.MessageTypeAI
	case strings.HasPrefix(name, "System"):
		return models.MessageTypeSystem
	default:
		return ""
	}
}

// resolveMessageType reads an explicit type field, falls back to mapping
// an OpenAI-style role, and defaults to human.
func resolveMessageType(fields map[string]interface{}) string {
	if t, ok := fields["type"].(string); ok {
		switch t {
		case models.MessageTypeHuman, models.MessageTypeAI, models.MessageTypeSystem:
			return t
		}
	}

	if role, ok := fields["role"].(string); ok {
		switch role {
		case "user":
			return models.MessageTypeHuman
		case "assistant":
			return models.MessageTypeAI
		case "system":
			return models.MessageTypeSystem
		}
	}

	return models.MessageTypeHuman
}

// stringifyContent renders message content to the stored text form:
// strings pass through, structured content is JSON-serialized. Returns
// false for nil content or content that is blank after stringification.
func stringifyContent(content interface{}) (string, bool) {
	if content == nil {
		return "", false
	}

	var text string
	if s, ok := content.(string); ok {
		text = s
	} else {
		encoded, err := json.Marshal(content)
		if err != nil {
			return "", false
		}
		text = string(encoded)
	}

	if strings.TrimSpace(text) == "" {
		return "", false
	}

	return text, true
}

func toMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func toMapSlice(v interface{}) []map[string]interface{} {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	result := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			result = append(result, m)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
