package domain

// Task identifies the AI task a retrieval pass supports.
type Task string

// Known retrieval tasks.
const (
	TaskCoverLetter     Task = "cover_letter"
	TaskResumeTailoring Task = "resume_tailoring"
	TaskInterviewPrep   Task = "interview_prep"
	TaskChat            Task = "chat"
)

// Valid reports whether t is a known task.
func (t Task) Valid() bool {
	switch t {
	case TaskCoverLetter, TaskResumeTailoring, TaskInterviewPrep, TaskChat:
		return true
	}
	return false
}

// SourceTag records which extraction rule produced a retrieval query. Tags
// survive deduplication so a hit can explain why it was selected.
type SourceTag string

// Known source tags.
const (
	TagRequirement    SourceTag = "requirement"
	TagGap            SourceTag = "gap"
	TagMissingKeyword SourceTag = "missingKeyword"
	TagUserMessage    SourceTag = "userMessage"
	TagJobTitle       SourceTag = "jobTitle"
	TagQuestion       SourceTag = "question"
	TagJDFallback     SourceTag = "jdFallback"
)

// Query is one targeted natural-language search issued against the index.
type Query struct {
	Text string
	Tag  SourceTag
}

// Hit is one deduplicated retrieval result: the record, the single best
// similarity score observed across all queries that matched it, and the
// union of their source tags.
type Hit struct {
	Record Record
	Score  float64
	Tags   []SourceTag
}
