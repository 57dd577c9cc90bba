// Package retrieval selects the stories and documents most relevant to an
// AI task by fanning targeted queries out over the vector index.
package retrieval

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/index"
	"github.com/rshaham/job-hunt-buddy/internal/metrics"
)

// Options tunes result caps and the similarity cutoff.
type Options struct {
	MaxStories    int
	MaxDocuments  int
	PerQueryLimit int
	MinSimilarity float64
}

// Result is a completed retrieval pass. When UsedSemanticSearch is false the
// selection fell back to recency and scores/tags are absent.
type Result struct {
	Stories            []StoryHit
	Documents          []DocumentHit
	QueriesUsed        []domain.Query
	UsedSemanticSearch bool
}

// StoryHit is a selected story with its retrieval provenance.
type StoryHit struct {
	Story domain.Story
	Score float64
	Tags  []domain.SourceTag
}

// DocumentHit is a selected document with its retrieval provenance.
type DocumentHit struct {
	Document domain.Document
	Score    float64
	Tags     []domain.SourceTag
}

// Service runs multi-query retrieval passes.
type Service struct {
	embed   Embedder
	search  Searcher
	content ContentReader
	opts    Options
	logger  *zap.Logger
}

// New creates a retrieval service.
func New(embed Embedder, search Searcher, content ContentReader, opts Options, logger *zap.Logger) *Service {
	return &Service{embed: embed, search: search, content: content, opts: opts, logger: logger}
}

// Retrieve runs the task's query set concurrently against the index, merges
// hits by entity, and resolves them to their source material. The story and
// document caps apply independently. When the embedding pipeline is not
// ready, or every query fails, the pass degrades to the most recent entries
// instead of returning nothing.
func (s *Service) Retrieve(ctx context.Context, req Request) (Result, error) {
	queries := BuildQueries(req)
	if !s.embed.Ready() || len(queries) == 0 {
		return s.recencyFallback(ctx)
	}

	type queryOutcome struct {
		hits []index.Scored
		tag  domain.SourceTag
		err  error
	}

	outcomes := make([]queryOutcome, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q domain.Query) {
			defer wg.Done()
			emb, err := s.embed.Embed(ctx, q.Text)
			if err != nil {
				outcomes[i] = queryOutcome{tag: q.Tag, err: err}
				return
			}
			hits := s.search.Query(emb.Vector, index.QueryOptions{
				Limit:     s.opts.PerQueryLimit,
				Threshold: s.opts.MinSimilarity,
				Types:     []domain.EntityType{domain.EntityStory, domain.EntityDocument},
			})
			outcomes[i] = queryOutcome{hits: hits, tag: q.Tag}
		}(i, q)
	}
	wg.Wait()

	type mergeKey struct {
		t  domain.EntityType
		id string
	}
	merged := make(map[mergeKey]*domain.Hit)
	failures := 0
	for _, out := range outcomes {
		if out.err != nil {
			failures++
			metrics.RetrievalQueriesTotal.WithLabelValues(string(out.tag), "error").Inc()
			s.logger.Warn("Retrieval query failed",
				zap.String("tag", string(out.tag)),
				zap.Error(out.err))
			continue
		}
		metrics.RetrievalQueriesTotal.WithLabelValues(string(out.tag), "ok").Inc()
		for _, sc := range out.hits {
			k := mergeKey{t: sc.Record.Type, id: sc.Record.ID}
			h, ok := merged[k]
			if !ok {
				merged[k] = &domain.Hit{Record: sc.Record, Score: sc.Score, Tags: []domain.SourceTag{out.tag}}
				continue
			}
			if sc.Score > h.Score {
				h.Score = sc.Score
			}
			h.Tags = appendTag(h.Tags, out.tag)
		}
	}

	if failures == len(queries) {
		s.logger.Warn("All retrieval queries failed, falling back to recency")
		return s.recencyFallback(ctx)
	}

	hits := make([]domain.Hit, 0, len(merged))
	for _, h := range merged {
		hits = append(hits, *h)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Record.Type != hits[j].Record.Type {
			return hits[i].Record.Type < hits[j].Record.Type
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})

	return s.resolve(ctx, hits, queries)
}

// resolve maps ranked hits back to stored stories and documents, applying
// the per-kind caps. Hits whose entity has since been deleted are skipped.
func (s *Service) resolve(ctx context.Context, hits []domain.Hit, queries []domain.Query) (Result, error) {
	stories, err := s.content.Stories(ctx)
	if err != nil {
		return Result{}, err
	}
	documents, err := s.content.Documents(ctx)
	if err != nil {
		return Result{}, err
	}

	storyByID := make(map[string]domain.Story, len(stories))
	for _, st := range stories {
		storyByID[st.ID] = st
	}
	docByID := make(map[string]domain.Document, len(documents))
	for _, d := range documents {
		docByID[d.ID] = d
	}

	res := Result{QueriesUsed: queries, UsedSemanticSearch: true}
	for _, h := range hits {
		switch h.Record.Type {
		case domain.EntityStory:
			if len(res.Stories) >= s.opts.MaxStories {
				continue
			}
			if st, ok := storyByID[h.Record.ID]; ok {
				res.Stories = append(res.Stories, StoryHit{Story: st, Score: h.Score, Tags: h.Tags})
			}
		case domain.EntityDocument:
			if len(res.Documents) >= s.opts.MaxDocuments {
				continue
			}
			if d, ok := docByID[h.Record.ID]; ok {
				res.Documents = append(res.Documents, DocumentHit{Document: d, Score: h.Score, Tags: h.Tags})
			}
		}
	}
	return res, nil
}

// recencyFallback selects the newest stories and documents, capped like a
// semantic pass, so downstream prompts never go out empty-handed.
func (s *Service) recencyFallback(ctx context.Context) (Result, error) {
	metrics.RetrievalFallbackTotal.Inc()

	stories, err := s.content.Stories(ctx)
	if err != nil {
		return Result{}, err
	}
	documents, err := s.content.Documents(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{}
	for _, st := range stories {
		if len(res.Stories) >= s.opts.MaxStories {
			break
		}
		res.Stories = append(res.Stories, StoryHit{Story: st})
	}
	for _, d := range documents {
		if len(res.Documents) >= s.opts.MaxDocuments {
			break
		}
		res.Documents = append(res.Documents, DocumentHit{Document: d})
	}
	return res, nil
}

func appendTag(tags []domain.SourceTag, tag domain.SourceTag) []domain.SourceTag {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
