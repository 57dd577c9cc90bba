// Package indexer keeps the vector index in step with the content store.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/pipeline"
)

// Embedder embeds a batch with per-item failure isolation.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]pipeline.ItemResult, error)
}

// Index is the write surface of the vector index.
type Index interface {
	Upsert(rec domain.Record) error
	Get(t domain.EntityType, id string) (domain.Record, bool)
}

// ContentReader supplies the indexable material.
type ContentReader interface {
	Stories(ctx context.Context) ([]domain.Story, error)
	Documents(ctx context.Context) ([]domain.Document, error)
}

// Report summarizes a sync pass.
type Report struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Service syncs store content into the index.
type Service struct {
	content ContentReader
	embed   Embedder
	index   Index
	logger  *zap.Logger
}

// New creates an indexer.
func New(content ContentReader, embed Embedder, index Index, logger *zap.Logger) *Service {
	return &Service{content: content, embed: embed, index: index, logger: logger}
}

type item struct {
	typ  domain.EntityType
	id   string
	text string
}

// SyncAll brings every story and document into the index. Entries whose
// content hash already matches are skipped without re-embedding; one item
// failing to embed does not abort the pass.
func (s *Service) SyncAll(ctx context.Context) (Report, error) {
	stories, err := s.content.Stories(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read stories: %w", err)
	}
	documents, err := s.content.Documents(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read documents: %w", err)
	}

	items := make([]item, 0, len(stories)+len(documents))
	for _, st := range stories {
		items = append(items, item{typ: domain.EntityStory, id: st.ID, text: st.Text()})
	}
	for _, d := range documents {
		items = append(items, item{typ: domain.EntityDocument, id: d.ID, text: d.Text()})
	}

	var report Report
	stale := make([]item, 0, len(items))
	for _, it := range items {
		if rec, ok := s.index.Get(it.typ, it.id); ok && rec.ContentHash == domain.HashText(it.text) {
			report.Skipped++
			continue
		}
		stale = append(stale, it)
	}
	if len(stale) == 0 {
		return report, nil
	}

	texts := make([]string, len(stale))
	for i, it := range stale {
		texts[i] = it.text
	}
	results, err := s.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("embed batch: %w", err)
	}

	for i, res := range results {
		it := stale[i]
		if res.Err != nil {
			report.Failed++
			s.logger.Warn("Item embedding failed during sync",
				zap.String("type", string(it.typ)),
				zap.String("id", it.id),
				zap.Error(res.Err))
			continue
		}
		rec := domain.Record{
			Type:        it.typ,
			ID:          it.id,
			Vector:      res.Embedding.Vector,
			ContentHash: res.Embedding.Hash,
		}
		if err := s.index.Upsert(rec); err != nil {
			report.Failed++
			s.logger.Warn("Index upsert failed during sync",
				zap.String("type", string(it.typ)),
				zap.String("id", it.id),
				zap.Error(err))
			continue
		}
		report.Indexed++
	}

	s.logger.Info("Index sync complete",
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}
