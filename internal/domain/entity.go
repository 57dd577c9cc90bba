package domain

import "time"

// EntityType identifies the kind of content behind an embedding record.
type EntityType string

// Known entity types.
const (
	EntityJob         EntityType = "job"
	EntityStory       EntityType = "story"
	EntityQA          EntityType = "qa"
	EntityNote        EntityType = "note"
	EntityDocument    EntityType = "document"
	EntityCoverLetter EntityType = "cover_letter"
	EntityProfile     EntityType = "profile"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityJob, EntityStory, EntityQA, EntityNote, EntityDocument, EntityCoverLetter, EntityProfile:
		return true
	}
	return false
}

// Record is one embedded unit of content. At most one record exists per
// (Type, ID); a record is replaced wholesale when its content hash changes,
// never mutated in place.
type Record struct {
	Type        EntityType
	ID          string
	Vector      []float32 // L2-normalized
	ContentHash string    // hash of the source text at embedding time
}

// Story is a saved experience story the candidate can draw on.
type Story struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
}

// Text returns the embeddable text of the story.
func (s Story) Text() string {
	if s.Title == "" {
		return s.Content
	}
	return s.Title + "\n" + s.Content
}

// Document is an uploaded supporting document. When UseSummary is set,
// the summary stands in for the full content wherever the document is
// concatenated or embedded.
type Document struct {
	ID         string
	Name       string
	Content    string
	Summary    string
	UseSummary bool
	CreatedAt  time.Time
}

// Text returns the content to embed or concatenate, honoring UseSummary.
func (d Document) Text() string {
	if d.UseSummary && d.Summary != "" {
		return d.Summary
	}
	return d.Content
}

// Job is a tracked job posting. The resume fields are populated by the
// tailoring flow and feed the improvement miner.
type Job struct {
	ID             string
	Title          string
	Company        string
	Description    string
	Requirements   string // requirements block as pasted, when available
	OriginalResume string
	TailoredResume string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
