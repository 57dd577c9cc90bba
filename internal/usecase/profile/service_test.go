package profile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/store"
)

type mockContent struct {
	settings  store.Settings
	stories   []domain.Story
	documents []domain.Document

	settingsErr error
}

func (m *mockContent) Settings(context.Context) (store.Settings, error) {
	return m.settings, m.settingsErr
}

func (m *mockContent) Stories(context.Context) ([]domain.Story, error) {
	return m.stories, nil
}

func (m *mockContent) Documents(context.Context) ([]domain.Document, error) {
	return m.documents, nil
}

type mockEmbedder struct {
	calls    int
	lastText string
	err      error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.Embedding, error) {
	m.calls++
	m.lastText = text
	if m.err != nil {
		return domain.Embedding{}, m.err
	}
	return domain.Embedding{Vector: []float32{1, 0, 0}, Hash: domain.HashText(text)}, nil
}

func TestBuildProfileText_FieldOrder(t *testing.T) {
	text := BuildProfileText(
		"my resume",
		"my context",
		[]domain.Story{{Title: "Outage", Content: "fixed it"}},
		[]domain.Document{{Name: "review.pdf", Content: "full text"}},
	)

	resumeAt := strings.Index(text, "my resume")
	contextAt := strings.Index(text, "my context")
	storyAt := strings.Index(text, "fixed it")
	docAt := strings.Index(text, "full text")
	for name, at := range map[string]int{"resume": resumeAt, "context": contextAt, "story": storyAt, "document": docAt} {
		if at < 0 {
			t.Fatalf("%s missing from profile text", name)
		}
	}
	if !(resumeAt < contextAt && contextAt < storyAt && storyAt < docAt) {
		t.Errorf("field order wrong: resume=%d context=%d story=%d doc=%d", resumeAt, contextAt, storyAt, docAt)
	}
}

func TestBuildProfileText_DocumentSummary(t *testing.T) {
	text := BuildProfileText("resume", "", nil, []domain.Document{
		{Name: "long.pdf", Content: "the full body", Summary: "the summary", UseSummary: true},
	})
	if strings.Contains(text, "the full body") {
		t.Error("document marked UseSummary must not contribute full content")
	}
	if !strings.Contains(text, "the summary") {
		t.Error("document summary missing")
	}
}

func TestProfileVector_CacheHitSkipsEmbedder(t *testing.T) {
	content := &mockContent{settings: store.Settings{ResumeText: "resume"}}
	emb := &mockEmbedder{}
	svc := New(content, emb, zap.NewNop())

	ctx := context.Background()
	if _, err := svc.ProfileVector(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ProfileVector(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 1 {
		t.Errorf("identical inputs must hit the cache, embedder called %d times", emb.calls)
	}
}

func TestProfileVector_InputChangeReembeds(t *testing.T) {
	content := &mockContent{settings: store.Settings{ResumeText: "resume"}}
	emb := &mockEmbedder{}
	svc := New(content, emb, zap.NewNop())

	ctx := context.Background()
	if _, err := svc.ProfileVector(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content.stories = []domain.Story{{ID: "s1", Content: "new story", CreatedAt: time.Now()}}
	if _, err := svc.ProfileVector(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 2 {
		t.Errorf("changed inputs must re-embed, embedder called %d times", emb.calls)
	}
	if !strings.Contains(emb.lastText, "new story") {
		t.Error("re-embedded text must include the new story")
	}
}

func TestProfileVector_InvalidateForcesReembed(t *testing.T) {
	content := &mockContent{settings: store.Settings{ResumeText: "resume"}}
	emb := &mockEmbedder{}
	svc := New(content, emb, zap.NewNop())

	ctx := context.Background()
	if _, err := svc.ProfileVector(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.Invalidate()
	if _, err := svc.ProfileVector(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 2 {
		t.Errorf("invalidate must force a re-embed, embedder called %d times", emb.calls)
	}
}

func TestProfileVector_EmptyResume(t *testing.T) {
	content := &mockContent{settings: store.Settings{ResumeText: "   \n "}}
	emb := &mockEmbedder{}
	svc := New(content, emb, zap.NewNop())

	_, err := svc.ProfileVector(context.Background())
	if !errors.Is(err, domain.ErrProfileUnavailable) {
		t.Fatalf("expected ErrProfileUnavailable, got %v", err)
	}
	if emb.calls != 0 {
		t.Error("empty resume must not reach the embedder")
	}
}

func TestProfileVector_EmbedErrorNotCached(t *testing.T) {
	content := &mockContent{settings: store.Settings{ResumeText: "resume"}}
	emb := &mockEmbedder{err: errors.New("provider down")}
	svc := New(content, emb, zap.NewNop())

	ctx := context.Background()
	if _, err := svc.ProfileVector(ctx); err == nil {
		t.Fatal("expected error")
	}

	emb.err = nil
	if _, err := svc.ProfileVector(ctx); err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if emb.calls != 2 {
		t.Errorf("failed embed must not poison the cache, embedder called %d times", emb.calls)
	}
}
