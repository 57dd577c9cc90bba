package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	logpkg "github.com/rshaham/job-hunt-buddy/internal/logger"
	"github.com/rshaham/job-hunt-buddy/internal/store"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/retrieval"
)

type settingsRequest struct {
	ResumeText        string `json:"resume_text"`
	AdditionalContext string `json:"additional_context"`
}

// handlePutSettings replaces the candidate settings wholesale.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	s.store.SetSettings(store.Settings{
		ResumeText:        req.ResumeText,
		AdditionalContext: req.AdditionalContext,
	})
	w.WriteHeader(http.StatusNoContent)
}

type storyRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handlePostStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Story content is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	st := domain.Story{ID: req.ID, Title: req.Title, Content: req.Content, CreatedAt: time.Now().UTC()}
	s.store.PutStory(st)
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteStory(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type documentRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	Summary    string `json:"summary"`
	UseSummary bool   `json:"use_summary"`
}

func (s *Server) handlePostDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Document content is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	d := domain.Document{
		ID:         req.ID,
		Name:       req.Name,
		Content:    req.Content,
		Summary:    req.Summary,
		UseSummary: req.UseSummary,
		CreatedAt:  time.Now().UTC(),
	}
	s.store.PutDocument(d)
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteDocument(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type jobRequest struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Description    string `json:"description"`
	Requirements   string `json:"requirements"`
	OriginalResume string `json:"original_resume"`
	TailoredResume string `json:"tailored_resume"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.Jobs(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handlePostJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Job description is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	job := jobFromRequest(req)
	job.CreatedAt = now
	job.UpdatedAt = now
	s.store.PutJob(job)
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handlePutJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := s.store.Job(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	req.ID = id

	job := jobFromRequest(req)
	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = time.Now().UTC()
	s.store.PutJob(job)
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteJob(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func jobFromRequest(req jobRequest) domain.Job {
	return domain.Job{
		ID:             req.ID,
		Title:          req.Title,
		Company:        req.Company,
		Description:    req.Description,
		Requirements:   req.Requirements,
		OriginalResume: req.OriginalResume,
		TailoredResume: req.TailoredResume,
	}
}

func (s *Server) handleIndexSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.indexer.SyncAll(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContext(r.Context()).Info("Index sync complete",
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	writeJSON(w, http.StatusOK, report)
}

type scoreRequest struct {
	JobIDs []string `json:"job_ids"`
}

type scoreResult struct {
	JobID                 string `json:"job_id"`
	Score                 int    `json:"score"`
	Grade                 string `json:"grade"`
	Status                string `json:"status"`
	UsedRequirementsSplit bool   `json:"used_requirements_split"`
	Error                 string `json:"error,omitempty"`
}

// handleScoreJobs scores the named jobs, or every tracked job when the body
// names none. An empty body means score everything.
func (s *Server) handleScoreJobs(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	var jobs []domain.Job
	if len(req.JobIDs) == 0 {
		all, err := s.store.Jobs(r.Context())
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		jobs = all
	} else {
		for _, id := range req.JobIDs {
			job, err := s.store.Job(r.Context(), id)
			if err != nil {
				s.handleDomainError(w, err)
				return
			}
			jobs = append(jobs, job)
		}
	}

	results := s.match.ScoreJobs(r.Context(), jobs)
	out := make([]scoreResult, len(results))
	for i, res := range results {
		out[i] = scoreResult{
			JobID:                 res.JobID,
			Score:                 res.Score,
			Grade:                 res.Grade,
			Status:                string(res.Status),
			UsedRequirementsSplit: res.UsedRequirementsSplit,
		}
		if res.Err != nil {
			out[i].Error = safeDomainMessage(res.Err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

type contextRequest struct {
	Task                string   `json:"task"`
	JobID               string   `json:"job_id"`
	Gaps                []string `json:"gaps"`
	MissingKeywords     []string `json:"missing_keywords"`
	Questions           []string `json:"questions"`
	UserMessage         string   `json:"user_message"`
	IncludeImprovements bool     `json:"include_improvements"`
}

// handleRetrievalContext runs a retrieval pass and renders the prompt
// context for the requested task.
func (s *Server) handleRetrievalContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	task := domain.Task(req.Task)
	if !task.Valid() {
		writeError(w, http.StatusBadRequest, "validation_failed", "Unknown task: "+req.Task)
		return
	}

	job, err := s.store.Job(r.Context(), req.JobID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.retrieval.Retrieve(r.Context(), retrieval.Request{
		Task:            task,
		Job:             job,
		Gaps:            req.Gaps,
		MissingKeywords: req.MissingKeywords,
		Questions:       req.Questions,
		UserMessage:     req.UserMessage,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	guidance := ""
	if req.IncludeImprovements {
		guidance, err = s.improvements.GuidanceFor(r.Context(), job.ID)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"context":              retrieval.FormatContext(task, res, settings.AdditionalContext, guidance),
		"used_semantic_search": res.UsedSemanticSearch,
		"queries_used":         len(res.QueriesUsed),
		"stories":              len(res.Stories),
		"documents":            len(res.Documents),
	})
}

type improvementResponse struct {
	Type      string `json:"type"`
	Original  string `json:"original"`
	Improved  string `json:"improved"`
	SourceJob string `json:"source_job"`
}

func improvementsToResponse(imps []domain.Improvement) []improvementResponse {
	out := make([]improvementResponse, len(imps))
	for i, imp := range imps {
		out[i] = improvementResponse{
			Type:      string(imp.Type),
			Original:  imp.Original,
			Improved:  imp.Improved,
			SourceJob: imp.SourceJob,
		}
	}
	return out
}

// handleListImprovements returns everything mined across the job window.
func (s *Server) handleListImprovements(w http.ResponseWriter, r *http.Request) {
	imps, err := s.improvements.Extract(r.Context(), "")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"improvements": improvementsToResponse(imps)})
}

// handleJobImprovements returns the improvements mined for a job from its
// predecessors.
func (s *Server) handleJobImprovements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Job(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	imps, err := s.improvements.Extract(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"improvements": improvementsToResponse(imps)})
}
