// Package improvements mines reusable resume rewrites from past AI-tailored
// resumes so the lessons carry forward to new applications.
package improvements

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/store"
)

// Options tunes mining breadth and the noise filters.
type Options struct {
	// MaxJobsWindow is how many recent tailored jobs feed the mining pass.
	MaxJobsWindow int
	// MinChangeChars is the shortest improved span worth keeping.
	MinChangeChars int
	// SimilarityCeiling is the token-overlap ratio above which a rewrite
	// counts as formatting churn, and above which two rewrites count as
	// duplicates of each other.
	SimilarityCeiling float64
	// MaxResults caps a mining pass.
	MaxResults int
}

// ContentReader supplies the jobs and the baseline resume.
type ContentReader interface {
	Settings(ctx context.Context) (store.Settings, error)
	Jobs(ctx context.Context) ([]domain.Job, error)
}

// Service mines and renders resume improvements.
type Service struct {
	content ContentReader
	opts    Options
	logger  *zap.Logger
}

// New creates an improvements service.
func New(content ContentReader, opts Options, logger *zap.Logger) *Service {
	return &Service{content: content, opts: opts, logger: logger}
}

// Extract mines improvements from past jobs, excluding currentJobID so a
// job never learns from its own tailoring. Jobs are consulted newest first
// within the window; a job missing its own original resume diffs against
// the baseline resume from settings. Results are deduplicated across jobs
// and capped.
func (s *Service) Extract(ctx context.Context, currentJobID string) ([]domain.Improvement, error) {
	settings, err := s.content.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	jobs, err := s.content.Jobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}

	policy := filterPolicy{
		minChangeChars:    s.opts.MinChangeChars,
		similarityCeiling: s.opts.SimilarityCeiling,
	}

	var out []domain.Improvement
	seen := 0
	for _, job := range jobs {
		if seen >= s.opts.MaxJobsWindow {
			break
		}
		if job.ID == currentJobID || strings.TrimSpace(job.TailoredResume) == "" {
			continue
		}
		original := job.OriginalResume
		if strings.TrimSpace(original) == "" {
			original = settings.ResumeText
		}
		if strings.TrimSpace(original) == "" || original == job.TailoredResume {
			continue
		}
		seen++

		for _, pair := range changePairs(original, job.TailoredResume) {
			if !policy.keep(pair, job.Company) {
				continue
			}
			if s.isDuplicate(out, pair) {
				continue
			}
			out = append(out, domain.Improvement{
				Type:      classify(pair),
				Original:  pair.original,
				Improved:  pair.improved,
				SourceJob: job.ID,
			})
			if len(out) >= s.opts.MaxResults {
				s.logger.Debug("Improvement mining hit result cap",
					zap.Int("max_results", s.opts.MaxResults))
				return out, nil
			}
		}
	}
	return out, nil
}

// GuidanceFor renders the mined improvements for prompt use. An empty
// string means there is nothing worth teaching yet.
func (s *Service) GuidanceFor(ctx context.Context, jobID string) (string, error) {
	imps, err := s.Extract(ctx, jobID)
	if err != nil {
		return "", err
	}
	return Render(imps), nil
}

// isDuplicate reports whether an equivalent rewrite was already mined from
// another job.
func (s *Service) isDuplicate(existing []domain.Improvement, pair changePair) bool {
	for _, imp := range existing {
		if tokenOverlap(imp.Improved, pair.improved) >= s.opts.SimilarityCeiling {
			return true
		}
	}
	return false
}
