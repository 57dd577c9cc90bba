package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/index"
	"github.com/rshaham/job-hunt-buddy/internal/pipeline"
	"github.com/rshaham/job-hunt-buddy/internal/store/memory"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/improvements"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/indexer"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/match"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/profile"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/retrieval"
)

// stubEmbedder satisfies every embedding consumer with a fixed vector.
type stubEmbedder struct{ ready bool }

func (s *stubEmbedder) Ready() bool { return s.ready }

func (s *stubEmbedder) Embed(_ context.Context, text string) (domain.Embedding, error) {
	return domain.Embedding{Vector: []float32{1, 0, 0}, Hash: domain.HashText(text)}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]pipeline.ItemResult, error) {
	out := make([]pipeline.ItemResult, len(texts))
	for i, text := range texts {
		emb, _ := s.Embed(ctx, text)
		out[i] = pipeline.ItemResult{Embedding: emb}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	logger := zap.NewNop()
	st := memory.New()
	ix := index.New()
	emb := &stubEmbedder{ready: true}

	profileSvc := profile.New(st, emb, logger)
	matchSvc := match.New(profileSvc, emb, match.Options{
		RawFloor: 0.30, RawCeiling: 0.65, ScoreFloor: 40, ScoreCeiling: 95,
		RequirementsWeight: 0.6, MinSectionChars: 80,
	}, logger)
	retrievalSvc := retrieval.New(emb, ix, st, retrieval.Options{
		MaxStories: 8, MaxDocuments: 3, PerQueryLimit: 5, MinSimilarity: 0.3,
	}, logger)
	improvementsSvc := improvements.New(st, improvements.Options{
		MaxJobsWindow: 5, MinChangeChars: 20, SimilarityCeiling: 0.8, MaxResults: 10,
	}, logger)
	indexerSvc := indexer.New(st, emb, ix, logger)

	return NewServer(st, matchSvc, retrievalSvc, improvementsSvc, indexerSvc, emb, logger), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPI_SettingsAndStories(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Router(nil)

	rec := doJSON(t, h, http.MethodPut, "/v1/settings", settingsRequest{ResumeText: "my resume"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("PUT settings: got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/stories", storyRequest{Title: "Outage", Content: "fixed it"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST story: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created domain.Story
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode story: %v", err)
	}
	if created.ID == "" {
		t.Error("story must get a generated ID")
	}

	stories, _ := st.Stories(context.Background())
	if len(stories) != 1 {
		t.Fatalf("expected 1 stored story, got %d", len(stories))
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/stories/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE story: got %d", rec.Code)
	}
}

func TestAPI_ScoreJobs(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router(nil)

	doJSON(t, h, http.MethodPut, "/v1/settings", settingsRequest{ResumeText: "engineer resume"})
	rec := doJSON(t, h, http.MethodPost, "/v1/jobs", jobRequest{ID: "j1", Title: "Backend", Description: "build Go services"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST job: got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/jobs/score", scoreRequest{})
	if rec.Code != http.StatusOK {
		t.Fatalf("score: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []scoreResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].JobID != "j1" {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
	if resp.Results[0].Status != string(domain.MatchComplete) {
		t.Errorf("expected complete status, got %s", resp.Results[0].Status)
	}
	if resp.Results[0].Grade == "" {
		t.Error("score result must carry a grade")
	}
}

func TestAPI_ScoreWithoutResume(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Router(nil)

	st.PutJob(domain.Job{ID: "j1", Description: "desc"})
	rec := doJSON(t, h, http.MethodPost, "/v1/jobs/score", scoreRequest{JobIDs: []string{"j1"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("score: got %d", rec.Code)
	}
	var resp struct {
		Results []scoreResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Results[0].Status != string(domain.MatchError) {
		t.Errorf("missing resume must surface as an errored result, got %+v", resp.Results[0])
	}
	if resp.Results[0].Error != domain.ErrProfileUnavailable.Error() {
		t.Errorf("error message must be the safe sentinel text, got %q", resp.Results[0].Error)
	}
}

func TestAPI_UnknownJob(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router(nil)

	rec := doJSON(t, h, http.MethodPost, "/v1/jobs/score", scoreRequest{JobIDs: []string{"missing"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job must 404, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/jobs/missing/improvements", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job improvements must 404, got %d", rec.Code)
	}
}

func TestAPI_SyncThenRetrieveContext(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Router(nil)

	doJSON(t, h, http.MethodPut, "/v1/settings", settingsRequest{ResumeText: "resume"})
	doJSON(t, h, http.MethodPost, "/v1/stories", storyRequest{Title: "Scaling", Content: "scaled the fleet"})
	st.PutJob(domain.Job{ID: "j1", Title: "SRE", Description: "keep it up", Requirements: "scaling experience"})

	rec := doJSON(t, h, http.MethodPost, "/v1/index/sync", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync: got %d, body %s", rec.Code, rec.Body.String())
	}
	var report indexer.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Indexed != 1 {
		t.Fatalf("expected 1 indexed item, got %+v", report)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/retrieval/context", contextRequest{
		Task:  string(domain.TaskCoverLetter),
		JobID: "j1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("context: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Context            string `json:"context"`
		UsedSemanticSearch bool   `json:"used_semantic_search"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.UsedSemanticSearch {
		t.Error("expected a semantic pass")
	}
	if resp.Context == "" {
		t.Error("expected rendered context")
	}
}

func TestAPI_ContextValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router(nil)

	rec := doJSON(t, h, http.MethodPost, "/v1/retrieval/context", contextRequest{Task: "nonsense", JobID: "j1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown task must 400, got %d", rec.Code)
	}
}

func TestAPI_HealthReportsPipelineState(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router(nil)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: got %d", rec.Code)
	}
	var resp struct {
		Status        string `json:"status"`
		PipelineReady bool   `json:"pipeline_ready"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || !resp.PipelineReady {
		t.Errorf("unexpected health payload: %+v", resp)
	}
}
