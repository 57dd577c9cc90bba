// Package store defines the content-store boundary the matching core reads
// from. The store behind it is an external collaborator; the core only
// depends on these read contracts plus the documented obligation to call
// the profile manager's Invalidate on any input change.
package store

import (
	"context"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

// Settings holds the candidate's profile inputs outside of jobs.
type Settings struct {
	ResumeText        string
	AdditionalContext string
}

// SettingsReader reads the candidate's settings.
type SettingsReader interface {
	Settings(ctx context.Context) (Settings, error)
}

// StoryReader reads saved stories.
type StoryReader interface {
	Stories(ctx context.Context) ([]domain.Story, error)
}

// DocumentReader reads uploaded documents.
type DocumentReader interface {
	Documents(ctx context.Context) ([]domain.Document, error)
}

// JobReader reads tracked jobs.
type JobReader interface {
	Jobs(ctx context.Context) ([]domain.Job, error)
	Job(ctx context.Context, id string) (domain.Job, error)
}

// Store is the full read boundary.
type Store interface {
	SettingsReader
	StoryReader
	DocumentReader
	JobReader
}
