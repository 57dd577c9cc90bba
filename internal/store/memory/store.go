// Package memory is the in-process content store backing the service.
// Mutations fire change and deletion hooks so the profile cache and the
// vector index stay consistent without hidden reactive subscriptions.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/store"
)

// Store is a thread-safe in-memory content store.
type Store struct {
	mu        sync.RWMutex
	settings  store.Settings
	stories   map[string]domain.Story
	documents map[string]domain.Document
	jobs      map[string]domain.Job

	onChange []func()
	onDelete []func(t domain.EntityType, id string)
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		stories:   make(map[string]domain.Story),
		documents: make(map[string]domain.Document),
		jobs:      make(map[string]domain.Job),
	}
}

// OnChange registers a hook fired after any profile-relevant mutation
// (settings, stories, documents). The profile manager's Invalidate belongs here.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// OnDelete registers a hook fired after an entity is deleted, so owners of
// derived state (the vector index) can drop their records.
func (s *Store) OnDelete(fn func(t domain.EntityType, id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDelete = append(s.onDelete, fn)
}

// Settings implements store.SettingsReader.
func (s *Store) Settings(_ context.Context) (store.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// SetSettings replaces the candidate settings.
func (s *Store) SetSettings(settings store.Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.fireChange()
}

// Stories implements store.StoryReader. Results are newest first.
func (s *Store) Stories(_ context.Context) ([]domain.Story, error) {
	s.mu.RLock()
	out := make([]domain.Story, 0, len(s.stories))
	for _, st := range s.stories {
		out = append(out, st)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// PutStory inserts or replaces a story.
func (s *Store) PutStory(st domain.Story) {
	s.mu.Lock()
	s.stories[st.ID] = st
	s.mu.Unlock()
	s.fireChange()
}

// DeleteStory removes a story and notifies deletion hooks.
func (s *Store) DeleteStory(id string) {
	s.mu.Lock()
	_, ok := s.stories[id]
	delete(s.stories, id)
	s.mu.Unlock()
	if ok {
		s.fireChange()
		s.fireDelete(domain.EntityStory, id)
	}
}

// Documents implements store.DocumentReader. Results are newest first.
func (s *Store) Documents(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	out := make([]domain.Document, 0, len(s.documents))
	for _, d := range s.documents {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// PutDocument inserts or replaces a document.
func (s *Store) PutDocument(d domain.Document) {
	s.mu.Lock()
	s.documents[d.ID] = d
	s.mu.Unlock()
	s.fireChange()
}

// DeleteDocument removes a document and notifies deletion hooks.
func (s *Store) DeleteDocument(id string) {
	s.mu.Lock()
	_, ok := s.documents[id]
	delete(s.documents, id)
	s.mu.Unlock()
	if ok {
		s.fireChange()
		s.fireDelete(domain.EntityDocument, id)
	}
}

// Jobs implements store.JobReader. Results are most-recently-updated first.
func (s *Store) Jobs(_ context.Context) ([]domain.Job, error) {
	s.mu.RLock()
	out := make([]domain.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Job implements store.JobReader.
func (s *Store) Job(_ context.Context, id string) (domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrJobNotFound
	}
	return j, nil
}

// PutJob inserts or replaces a job. Jobs are not profile inputs, so no
// change hook fires.
func (s *Store) PutJob(j domain.Job) {
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
}

// DeleteJob removes a job and notifies deletion hooks.
func (s *Store) DeleteJob(id string) {
	s.mu.Lock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	s.mu.Unlock()
	if ok {
		s.fireDelete(domain.EntityJob, id)
	}
}

func (s *Store) fireChange() {
	s.mu.RLock()
	hooks := make([]func(), len(s.onChange))
	copy(hooks, s.onChange)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

func (s *Store) fireDelete(t domain.EntityType, id string) {
	s.mu.RLock()
	hooks := make([]func(domain.EntityType, string), len(s.onDelete))
	copy(hooks, s.onDelete)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(t, id)
	}
}
