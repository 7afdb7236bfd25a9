package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"nova/internal/domain"
	"nova/internal/domain/models"
	"nova/internal/domain/repositories"
	"nova/internal/domain/services"
)

// In-memory fakes. The transaction manager runs the function directly;
// transactional rollback itself is the database's job, the tests here
// cover the orchestration around it.

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.calls++
	return fn(ctx)
}

type fakeThreadRepo struct {
	thread  *models.Thread
	touched int
}

func (f *fakeThreadRepo) Create(ctx context.Context, thread *models.Thread) error { return nil }

func (f *fakeThreadRepo) GetByID(ctx context.Context, id, userID string) (*models.Thread, error) {
	if f.thread == nil || f.thread.ID != id || f.thread.UserID != userID {
		return nil, &domain.NotFoundError{Message: "thread not found"}
	}
	return f.thread, nil
}

func (f *fakeThreadRepo) List(ctx context.Context, userID string) ([]models.Thread, error) {
	return nil, nil
}

func (f *fakeThreadRepo) Update(ctx context.Context, thread *models.Thread) error { return nil }

func (f *fakeThreadRepo) Touch(ctx context.Context, id string) error {
	f.touched++
	return nil
}

func (f *fakeThreadRepo) Delete(ctx context.Context, id, userID string) error { return nil }

type fakeMessageRepo struct {
	stored    []models.Message
	deletes   int
	insertErr error
}

func (f *fakeMessageRepo) ListByThread(ctx context.Context, threadID string) ([]models.Message, error) {
	return f.stored, nil
}

func (f *fakeMessageRepo) DeleteByThread(ctx context.Context, threadID string) error {
	f.deletes++
	f.stored = nil
	return nil
}

func (f *fakeMessageRepo) InsertAll(ctx context.Context, messages []models.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.stored = append(f.stored, messages...)
	return nil
}

type fakeArtifactRepo struct {
	artifact *models.Artifact
	contents []models.ArtifactContent
	created  int
}

func (f *fakeArtifactRepo) Create(ctx context.Context, artifact *models.Artifact) error {
	f.created++
	artifact.ID = "artifact-new"
	f.artifact = artifact
	return nil
}

func (f *fakeArtifactRepo) GetLatestByThread(ctx context.Context, threadID string) (*models.Artifact, error) {
	if f.artifact == nil {
		return nil, &domain.NotFoundError{Message: "artifact not found"}
	}
	return f.artifact, nil
}

func (f *fakeArtifactRepo) MaxContentIndex(ctx context.Context, artifactID string) (int, error) {
	max := 0
	for _, c := range f.contents {
		if c.Index > max {
			max = c.Index
		}
	}
	return max, nil
}

func (f *fakeArtifactRepo) InsertContents(ctx context.Context, contents []models.ArtifactContent) error {
	f.contents = append(f.contents, contents...)
	return nil
}

func (f *fakeArtifactRepo) SetCurrentIndex(ctx context.Context, artifactID string, index int) error {
	if f.artifact != nil {
		f.artifact.CurrentIndex = index
	}
	return nil
}

func (f *fakeArtifactRepo) ListContents(ctx context.Context, artifactID string) ([]models.ArtifactContent, error) {
	return f.contents, nil
}

func newSyncFixture() (*threadService, *fakeThreadRepo, *fakeMessageRepo, *fakeArtifactRepo, *fakeTxManager) {
	threadRepo := &fakeThreadRepo{
		thread: &models.Thread{ID: "thread-1", UserID: "user-1"},
	}
	messageRepo := &fakeMessageRepo{}
	artifactRepo := &fakeArtifactRepo{}
	txManager := &fakeTxManager{}

	svc := &threadService{
		threadRepo:   threadRepo,
		messageRepo:  messageRepo,
		artifactRepo: artifactRepo,
		txManager:    txManager,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return svc, threadRepo, messageRepo, artifactRepo, txManager
}

func strPtr(s string) *string { return &s }

func TestSyncStateAppendsArtifactContents(t *testing.T) {
	svc, _, _, artifactRepo, _ := newSyncFixture()
	artifactRepo.artifact = &models.Artifact{ID: "artifact-1", ThreadID: "thread-1", CurrentIndex: 2}
	artifactRepo.contents = []models.ArtifactContent{
		{ArtifactID: "artifact-1", Index: 1},
		{ArtifactID: "artifact-1", Index: 2},
	}

	snapshot := &services.StateSnapshot{
		Values: services.StateValues{
			Artifact: &services.ArtifactSnapshot{
				Contents: []services.ArtifactContentSnapshot{
					{Type: "text", Title: "v3", FullMarkdown: strPtr("# Three")},
					{Type: "code", Title: "v4", Code: strPtr("print(4)"), Language: strPtr("python")},
				},
			},
		},
	}

	if err := svc.SyncState(context.Background(), "thread-1", "user-1", snapshot); err != nil {
		t.Fatalf("SyncState: %v", err)
	}

	if len(artifactRepo.contents) != 4 {
		t.Fatalf("content count = %d, want 4", len(artifactRepo.contents))
	}
	if artifactRepo.contents[2].Index != 3 || artifactRepo.contents[3].Index != 4 {
		t.Errorf("new indices = %d,%d, want 3,4",
			artifactRepo.contents[2].Index, artifactRepo.contents[3].Index)
	}
	if artifactRepo.contents[3].Type != models.ArtifactTypeCode {
		t.Errorf("second new content type = %q, want code", artifactRepo.contents[3].Type)
	}
	if artifactRepo.artifact.CurrentIndex != 4 {
		t.Errorf("current index = %d, want 4", artifactRepo.artifact.CurrentIndex)
	}
	if artifactRepo.created != 0 {
		t.Errorf("artifact created %d times, want 0", artifactRepo.created)
	}
}

func TestSyncStateCreatesArtifactWhenMissing(t *testing.T) {
	svc, _, _, artifactRepo, _ := newSyncFixture()

	snapshot := &services.StateSnapshot{
		Values: services.StateValues{
			Artifact: &services.ArtifactSnapshot{
				Contents: []services.ArtifactContentSnapshot{
					{Type: "text", Title: "v1", FullMarkdown: strPtr("one")},
					{Type: "text", Title: "v2", FullMarkdown: strPtr("two")},
					{Type: "text", Title: "v3", FullMarkdown: strPtr("three")},
				},
			},
		},
	}

	if err := svc.SyncState(context.Background(), "thread-1", "user-1", snapshot); err != nil {
		t.Fatalf("SyncState: %v", err)
	}

	if artifactRepo.created != 1 {
		t.Fatalf("artifact created %d times, want 1", artifactRepo.created)
	}
	for i, c := range artifactRepo.contents {
		if c.Index != i+1 {
			t.Errorf("content %d index = %d, want %d", i, c.Index, i+1)
		}
	}
	if artifactRepo.artifact.CurrentIndex != 3 {
		t.Errorf("current index = %d, want 3", artifactRepo.artifact.CurrentIndex)
	}
}

func TestSyncStateMovesPointerWithoutNewContents(t *testing.T) {
	svc, _, _, artifactRepo, _ := newSyncFixture()
	artifactRepo.artifact = &models.Artifact{ID: "artifact-1", ThreadID: "thread-1", CurrentIndex: 3}
	artifactRepo.contents = []models.ArtifactContent{
		{ArtifactID: "artifact-1", Index: 1},
		{ArtifactID: "artifact-1", Index: 2},
		{ArtifactID: "artifact-1", Index: 3},
	}

	snapshot := &services.StateSnapshot{
		Values: services.StateValues{
			Artifact: &services.ArtifactSnapshot{CurrentIndex: 2},
		},
	}

	if err := svc.SyncState(context.Background(), "thread-1", "user-1", snapshot); err != nil {
		t.Fatalf("SyncState: %v", err)
	}

	if len(artifactRepo.contents) != 3 {
		t.Errorf("content count changed: %d", len(artifactRepo.contents))
	}
	if artifactRepo.artifact.CurrentIndex != 2 {
		t.Errorf("current index = %d, want 2", artifactRepo.artifact.CurrentIndex)
	}
}

func TestSyncStateReplacesMessages(t *testing.T) {
	svc, _, messageRepo, _, _ := newSyncFixture()
	messageRepo.stored = []models.Message{
		{ThreadID: "thread-1", Type: models.MessageTypeHuman, Content: "old", SequenceNumber: 1},
	}

	messages := []map[string]interface{}{
		{"role": "user", "content": "question"},
		{"role": "assistant", "content": nil}, // dropped
		{"role": "assistant", "content": "answer"},
		{"role": "user", "content": "   "}, // blank, dropped
	}
	snapshot := &services.StateSnapshot{
		Values: services.StateValues{Messages: &messages},
	}

	if err := svc.SyncState(context.Background(), "thread-1", "user-1", snapshot); err != nil {
		t.Fatalf("SyncState: %v", err)
	}

	if messageRepo.deletes != 1 {
		t.Errorf("deletes = %d, want 1", messageRepo.deletes)
	}
	if len(messageRepo.stored) != 2 {
		t.Fatalf("stored %d messages, want 2", len(messageRepo.stored))
	}

	first, second := messageRepo.stored[0], messageRepo.stored[1]
	if first.Type != models.MessageTypeHuman || first.Content != "question" || first.SequenceNumber != 1 {
		t.Errorf("first message = %+v", first)
	}
	if second.Type != models.MessageTypeAI || second.Content != "answer" || second.SequenceNumber != 2 {
		t.Errorf("second message = %+v", second)
	}
}

func TestSyncStateEmptyMessagesClearsThread(t *testing.T) {
	svc, _, messageRepo, _, _ := newSyncFixture()
	messageRepo.stored = []models.Message{
		{ThreadID: "thread-1", Content: "old", SequenceNumber: 1},
	}

	empty := []map[string]interface{}{}
	snapshot := &services.StateSnapshot{
		Values: services.StateValues{Messages: &empty},
	}

	if err := svc.SyncState(context.Background(), "thread-1", "user-1", snapshot); err != nil {
		t.Fatalf("SyncState: %v", err)
	}

	if len(messageRepo.stored) != 0 {
		t.Errorf("stored %d messages, want 0", len(messageRepo.stored))
	}
}

func TestSyncStateAbsentMessagesLeftAlone(t *testing.T) {
	svc, threadRepo, messageRepo, _, _ := newSyncFixture()
	messageRepo.stored = []models.Message{
		{ThreadID: "thread-1", Content: "kept", SequenceNumber: 1},
	}

	snapshot := &services.StateSnapshot{}

	if err := svc.SyncState(context.Background(), "thread-1", "user-1", snapshot); err != nil {
		t.Fatalf("SyncState: %v", err)
	}

	if messageRepo.deletes != 0 {
		t.Errorf("deletes = %d, want 0", messageRepo.deletes)
	}
	if len(messageRepo.stored) != 1 {
		t.Errorf("stored %d messages, want 1", len(messageRepo.stored))
	}
	// updated_at is stamped even for a no-op snapshot
	if threadRepo.touched != 1 {
		t.Errorf("touched = %d, want 1", threadRepo.touched)
	}
}

func TestSyncStateForeignThreadReportsNotFound(t *testing.T) {
	svc, _, messageRepo, _, txManager := newSyncFixture()

	messages := []map[string]interface{}{
		{"role": "user", "content": "hi"},
	}
	snapshot := &services.StateSnapshot{
		Values: services.StateValues{Messages: &messages},
	}

	err := svc.SyncState(context.Background(), "thread-1", "intruder", snapshot)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
	if txManager.calls != 0 {
		t.Errorf("transaction ran %d times, want 0", txManager.calls)
	}
	if messageRepo.deletes != 0 {
		t.Error("messages were deleted despite ownership failure")
	}
}

func TestSyncStateNilSnapshotRejected(t *testing.T) {
	svc, _, _, _, _ := newSyncFixture()

	err := svc.SyncState(context.Background(), "thread-1", "user-1", nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSyncStateInsertFailurePropagates(t *testing.T) {
	svc, _, messageRepo, _, _ := newSyncFixture()
	messageRepo.insertErr = errors.New("insert failed")

	messages := []map[string]interface{}{
		{"role": "user", "content": "hi"},
	}
	snapshot := &services.StateSnapshot{
		Values: services.StateValues{Messages: &messages},
	}

	if err := svc.SyncState(context.Background(), "thread-1", "user-1", snapshot); err == nil {
		t.Fatal("expected error from failed insert")
	}
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]interface{}
		wantOK      bool
		wantType    string
		wantContent string
	}{
		{
			name:        "plain with explicit type",
			raw:         map[string]interface{}{"type": "ai", "content": "hello"},
			wantOK:      true,
			wantType:    models.MessageTypeAI,
			wantContent: "hello",
		},
		{
			name:        "role user maps to human",
			raw:         map[string]interface{}{"role": "user", "content": "hi"},
			wantOK:      true,
			wantType:    models.MessageTypeHuman,
			wantContent: "hi",
		},
		{
			name:        "role system maps to system",
			raw:         map[string]interface{}{"role": "system", "content": "be brief"},
			wantOK:      true,
			wantType:    models.MessageTypeSystem,
			wantContent: "be brief",
		},
		{
			name:        "missing type defaults to human",
			raw:         map[string]interface{}{"content": "untyped"},
			wantOK:      true,
			wantType:    models.MessageTypeHuman,
			wantContent: "untyped",
		},
		{
			name:   "nil content dropped",
			raw:    map[string]interface{}{"role": "assistant", "content": nil},
			wantOK: false,
		},
		{
			name:   "blank content dropped",
			raw:    map[string]interface{}{"role": "user", "content": "  \n "},
			wantOK: false,
		},
		{
			name: "constructor envelope human",
			raw: map[string]interface{}{
				"lc":   float64(1),
				"type": "constructor",
				"id":   []interface{}{"langchain_core", "messages", "HumanMessage"},
				"kwargs": map[string]interface{}{
					"content": "from envelope",
				},
			},
			wantOK:      true,
			wantType:    models.MessageTypeHuman,
			wantContent: "from envelope",
		},
		{
			name: "constructor envelope ai chunk",
			raw: map[string]interface{}{
				"lc":   float64(1),
				"type": "constructor",
				"id":   []interface{}{"langchain_core", "messages", "AIMessageChunk"},
				"kwargs": map[string]interface{}{
					"content": "streamed",
				},
			},
			wantOK:      true,
			wantType:    models.MessageTypeAI,
			wantContent: "streamed",
		},
		{
			name:        "structured content json-serialized",
			raw:         map[string]interface{}{"role": "user", "content": []interface{}{map[string]interface{}{"type": "text", "text": "block"}}},
			wantOK:      true,
			wantType:    models.MessageTypeHuman,
			wantContent: `[{"text":"block","type":"text"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := normalizeMessage(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if msg.Type != tt.wantType {
				t.Errorf("type = %q, want %q", msg.Type, tt.wantType)
			}
			if msg.Content != tt.wantContent {
				t.Errorf("content = %q, want %q", msg.Content, tt.wantContent)
			}
		})
	}
}
