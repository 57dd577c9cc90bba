package retrieval

import (
	"strings"
	"unicode/utf8"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

// jdFallbackChars bounds the description prefix used when a task produces no
// targeted queries.
const jdFallbackChars = 300

// maxRequirementQueries caps how many requirement lines become queries.
const maxRequirementQueries = 5

// Request carries everything a retrieval pass may draw queries from. Which
// fields are consulted depends on the task.
type Request struct {
	Task            domain.Task
	Job             domain.Job
	Gaps            []string
	MissingKeywords []string
	Questions       []string
	UserMessage     string
}

// BuildQueries derives the task-specific query set. Each task consults only
// the inputs that matter for it; a task that yields nothing falls back to a
// single query over the leading slice of the job description so retrieval
// always has something to search with.
func BuildQueries(req Request) []domain.Query {
	var qs []domain.Query
	add := func(tag domain.SourceTag, texts ...string) {
		for _, t := range texts {
			if t = strings.TrimSpace(t); t != "" {
				qs = append(qs, domain.Query{Text: t, Tag: tag})
			}
		}
	}

	requirements := splitRequirements(req.Job.Requirements)

	switch req.Task {
	case domain.TaskCoverLetter:
		add(domain.TagRequirement, requirements...)
		add(domain.TagGap, req.Gaps...)
		add(domain.TagJobTitle, req.Job.Title)
	case domain.TaskResumeTailoring:
		add(domain.TagRequirement, requirements...)
		add(domain.TagGap, req.Gaps...)
		add(domain.TagMissingKeyword, req.MissingKeywords...)
	case domain.TaskInterviewPrep:
		add(domain.TagQuestion, req.Questions...)
		add(domain.TagRequirement, requirements...)
		add(domain.TagJobTitle, req.Job.Title)
	case domain.TaskChat:
		add(domain.TagUserMessage, req.UserMessage)
		add(domain.TagJobTitle, req.Job.Title)
	}

	if len(qs) == 0 {
		if prefix := descriptionPrefix(req.Job.Description, jdFallbackChars); prefix != "" {
			qs = append(qs, domain.Query{Text: prefix, Tag: domain.TagJDFallback})
		}
	}
	return qs
}

// splitRequirements breaks a requirements block into individual query
// strings, one per non-empty line with list markers stripped, capped at
// maxRequirementQueries. A single-line block stays one query.
func splitRequirements(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, " \t-*•"))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxRequirementQueries {
			break
		}
	}
	return out
}

// descriptionPrefix takes the leading runes of text, cutting back to the
// last word boundary so the query does not end mid-word.
func descriptionPrefix(text string, limit int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndexAny(cut, " \t\n"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
