// Package match scores tracked jobs against the candidate profile.
package match

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/metrics"
)

// Options tunes the score blend and the presentation band.
type Options struct {
	// RawFloor and RawCeiling bound the useful cosine range for the
	// embedding model in use. Raw similarities at or below the floor
	// present as ScoreFloor; at or above the ceiling as ScoreCeiling.
	RawFloor   float64
	RawCeiling float64

	ScoreFloor   int
	ScoreCeiling int

	// RequirementsWeight is the share of the blend given to the
	// requirements sub-embedding when a requirements section exists.
	RequirementsWeight float64

	// MinSectionChars is the minimum length a requirements section must
	// have to be trusted as a standalone scoring signal.
	MinSectionChars int
}

// Service computes match scores.
type Service struct {
	profile ProfileSource
	embed   Embedder
	opts    Options
	logger  *zap.Logger
}

// New creates a match scorer.
func New(profile ProfileSource, embed Embedder, opts Options, logger *zap.Logger) *Service {
	return &Service{profile: profile, embed: embed, opts: opts, logger: logger}
}

// Score computes a single job's match against the candidate profile. When
// the job has a usable requirements section it is embedded separately and
// blended with the full-description similarity; otherwise the full
// description carries the whole score.
func (s *Service) Score(ctx context.Context, job domain.Job) (domain.MatchResult, error) {
	profileVec, err := s.profile.ProfileVector(ctx)
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("profile vector: %w", err)
	}

	fullEmb, err := s.embed.Embed(ctx, job.Description)
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("embed job description: %w", err)
	}
	fullSim := domain.Cosine(profileVec, fullEmb.Vector)

	raw := fullSim
	usedSplit := false
	if section, ok := ExtractRequirementsSection(job.Description, job.Requirements, s.opts.MinSectionChars); ok {
		reqEmb, err := s.embed.Embed(ctx, section)
		if err != nil {
			return domain.MatchResult{}, fmt.Errorf("embed requirements section: %w", err)
		}
		reqSim := domain.Cosine(profileVec, reqEmb.Vector)
		w := s.opts.RequirementsWeight
		raw = w*reqSim + (1-w)*fullSim
		usedSplit = true
	}

	score := s.presentScore(raw)
	return domain.MatchResult{
		JobID:                 job.ID,
		Score:                 score,
		Grade:                 GradeFor(score),
		Status:                domain.MatchComplete,
		UsedRequirementsSplit: usedSplit,
	}, nil
}

// ScoreJobs scores a batch sequentially. One job failing does not abort the
// batch; its result carries status error and sorts after every completed
// result. Completed results come back highest score first.
func (s *Service) ScoreJobs(ctx context.Context, jobs []domain.Job) []domain.MatchResult {
	results := make([]domain.MatchResult, 0, len(jobs))
	for _, job := range jobs {
		res, err := s.Score(ctx, job)
		if err != nil {
			s.logger.Warn("Job scoring failed",
				zap.String("job_id", job.ID),
				zap.Error(err))
			metrics.MatchScoresTotal.WithLabelValues("error").Inc()
			results = append(results, domain.MatchResult{
				JobID:  job.ID,
				Status: domain.MatchError,
				Err:    err,
			})
			continue
		}
		metrics.MatchScoresTotal.WithLabelValues("complete").Inc()
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Status == domain.MatchError) != (results[j].Status == domain.MatchError) {
			return results[j].Status == domain.MatchError
		}
		return results[i].Score > results[j].Score
	})
	return results
}

// presentScore maps a raw cosine onto the presented band. The linear map is
// clamped at both ends so out-of-band similarities never leave the
// [ScoreFloor, ScoreCeiling] range.
func (s *Service) presentScore(raw float64) int {
	frac := (raw - s.opts.RawFloor) / (s.opts.RawCeiling - s.opts.RawFloor)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	span := float64(s.opts.ScoreCeiling - s.opts.ScoreFloor)
	return s.opts.ScoreFloor + int(math.Round(frac*span))
}
