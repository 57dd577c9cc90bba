// Package index is an in-memory nearest-neighbor store over embedding
// records. It holds no business knowledge of matching or retrieval policy.
package index

import (
	"sort"
	"sync"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

type key struct {
	t  domain.EntityType
	id string
}

type entry struct {
	rec domain.Record
	seq uint64 // insertion order, stable across replacement
}

// QueryOptions narrows a similarity query.
type QueryOptions struct {
	Limit     int                 // max results; <= 0 means unlimited
	Threshold float64             // hard cutoff: records below it are excluded
	Types     []domain.EntityType // allow-list; empty means all types
}

// Scored pairs a record with its cosine similarity to the query vector.
type Scored struct {
	Record domain.Record
	Score  float64
}

// Index is a thread-safe in-memory vector index.
type Index struct {
	mu      sync.RWMutex
	entries map[key]*entry
	nextSeq uint64
}

// New creates an empty index.
func New() *Index {
	return &Index{entries: make(map[key]*entry)}
}

// Upsert stores a record, replacing any existing record for the same
// (type, id) wholesale. Replacement keeps the original insertion position
// so tie-breaking stays stable for the entity's lifetime.
func (ix *Index) Upsert(rec domain.Record) error {
	if !rec.Type.Valid() {
		return domain.ErrInvalidEntityType
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	k := key{t: rec.Type, id: rec.ID}
	if existing, ok := ix.entries[k]; ok {
		ix.entries[k] = &entry{rec: rec, seq: existing.seq}
		return nil
	}
	ix.entries[k] = &entry{rec: rec, seq: ix.nextSeq}
	ix.nextSeq++
	return nil
}

// Remove deletes the record for (t, id), if present.
func (ix *Index) Remove(t domain.EntityType, id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, key{t: t, id: id})
}

// Get returns the stored record for (t, id).
func (ix *Index) Get(t domain.EntityType, id string) (domain.Record, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if e, ok := ix.entries[key{t: t, id: id}]; ok {
		return e.rec, true
	}
	return domain.Record{}, false
}

// Len returns the number of stored records.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Query returns records ranked by cosine similarity to vec, strictly
// descending, ties broken by insertion order. Records below the threshold
// are excluded, not down-ranked.
func (ix *Index) Query(vec []float32, opts QueryOptions) []Scored {
	allowed := typeSet(opts.Types)

	ix.mu.RLock()
	scored := make([]struct {
		Scored
		seq uint64
	}, 0, len(ix.entries))
	for _, e := range ix.entries {
		if allowed != nil {
			if _, ok := allowed[e.rec.Type]; !ok {
				continue
			}
		}
		score := domain.Cosine(vec, e.rec.Vector)
		if score < opts.Threshold {
			continue
		}
		scored = append(scored, struct {
			Scored
			seq uint64
		}{Scored{Record: e.rec, Score: score}, e.seq})
	}
	ix.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].seq < scored[j].seq
	})

	if opts.Limit > 0 && len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}

	out := make([]Scored, len(scored))
	for i, s := range scored {
		out[i] = s.Scored
	}
	return out
}

func typeSet(types []domain.EntityType) map[domain.EntityType]struct{} {
	if len(types) == 0 {
		return nil
	}
	set := make(map[domain.EntityType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}
