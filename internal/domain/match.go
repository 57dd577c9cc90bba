package domain

// MatchStatus tracks the scoring lifecycle of one job.
type MatchStatus string

const (
	// MatchPending means the job has not been scored yet.
	MatchPending MatchStatus = "pending"
	// MatchComplete means scoring succeeded.
	MatchComplete MatchStatus = "complete"
	// MatchError means the job failed to embed or score. The job keeps
	// this status and no score; it is never defaulted to a mid-range value.
	MatchError MatchStatus = "error"
)

// MatchResult is the ephemeral output of one scoring pass over one job.
type MatchResult struct {
	JobID                 string
	Score                 int // 40..95 when Status == MatchComplete
	Grade                 string
	Status                MatchStatus
	UsedRequirementsSplit bool
	Err                   error // set when Status == MatchError
}
