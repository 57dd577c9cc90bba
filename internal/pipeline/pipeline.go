// Package pipeline runs the embedding provider on a dedicated worker
// goroutine. All provider calls are serialized through the worker so model
// warmup and inference never block interactive callers directly; requests
// and responses are correlated by ID over channels.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

// Stage identifies an initialization phase for progress reporting.
// Progress events are observational only and never change control flow.
type Stage string

// Initialization stages.
const (
	StageConnect Stage = "connect"
	StageWarmup  Stage = "warmup"
	StageReady   Stage = "ready"
)

// ProgressFunc receives initialization progress events.
type ProgressFunc func(stage Stage)

// warmupProbe is the text embedded once during initialization to verify the
// provider end-to-end before the pipeline is marked ready.
const warmupProbe = "embedding pipeline warmup probe"

// Options configures a Pipeline.
type Options struct {
	ContextTokens int // model context budget, default 512
	CharsPerToken int // truncation estimate, default 3
	OnProgress    ProgressFunc
	Logger        *zap.Logger
}

// ItemResult is the outcome of embedding one batch item. Items succeed or
// fail independently; one failure never aborts its siblings.
type ItemResult struct {
	Embedding domain.Embedding
	Err       error
}

type request struct {
	ctx   context.Context
	id    string
	texts []string
	resp  chan response
}

type response struct {
	id    string
	items []ItemResult
}

// Pipeline owns the embedding provider behind a worker goroutine.
type Pipeline struct {
	provider   domain.Embedder
	maxChars   int
	onProgress ProgressFunc
	logger     *zap.Logger

	requests  chan request
	done      chan struct{}
	closeOnce sync.Once

	initGroup singleflight.Group
	ready     atomic.Bool
}

// New creates a pipeline and starts its worker. The pipeline is not ready
// until Initialize succeeds.
func New(provider domain.Embedder, opts Options) *Pipeline {
	if opts.ContextTokens <= 0 {
		opts.ContextTokens = 512
	}
	if opts.CharsPerToken <= 0 {
		opts.CharsPerToken = 3
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	p := &Pipeline{
		provider:   provider,
		maxChars:   opts.ContextTokens * opts.CharsPerToken,
		onProgress: opts.OnProgress,
		logger:     opts.Logger,
		requests:   make(chan request),
		done:       make(chan struct{}),
	}
	go p.run()
	return p
}

// Initialize prepares the provider. It is idempotent and safe to call
// concurrently: in-flight initialization is shared across callers instead of
// triggering duplicate loads. A failed attempt is terminal for that attempt;
// retrying is the caller's responsibility.
func (p *Pipeline) Initialize(ctx context.Context) error {
	if p.ready.Load() {
		return nil
	}

	_, err, _ := p.initGroup.Do("init", func() (any, error) {
		if p.ready.Load() {
			return nil, nil
		}

		p.progress(StageConnect)
		if hc, ok := p.provider.(domain.HealthChecker); ok {
			if err := hc.HealthCheck(ctx); err != nil {
				return nil, fmt.Errorf("provider health check: %w", err)
			}
		}

		p.progress(StageWarmup)
		items, err := p.submit(ctx, []string{warmupProbe})
		if err != nil {
			return nil, fmt.Errorf("warmup: %w", err)
		}
		if items[0].Err != nil {
			return nil, fmt.Errorf("warmup embed: %w", items[0].Err)
		}

		p.ready.Store(true)
		p.progress(StageReady)
		p.logger.Info("Embedding pipeline ready")
		return nil, nil
	})
	return err
}

// Ready reports whether initialization has completed successfully.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Embed converts text into a normalized vector plus the content hash of the
// original, untruncated text.
func (p *Pipeline) Embed(ctx context.Context, text string) (domain.Embedding, error) {
	if !p.ready.Load() {
		return domain.Embedding{}, domain.ErrPipelineNotReady
	}

	items, err := p.submit(ctx, []string{text})
	if err != nil {
		return domain.Embedding{}, err
	}
	if items[0].Err != nil {
		return domain.Embedding{}, items[0].Err
	}
	return items[0].Embedding, nil
}

// EmbedBatch embeds multiple texts. Items are processed one at a time inside
// the worker to keep peak load bounded; each item succeeds or fails on its own.
func (p *Pipeline) EmbedBatch(ctx context.Context, texts []string) ([]ItemResult, error) {
	if !p.ready.Load() {
		return nil, domain.ErrPipelineNotReady
	}
	if len(texts) == 0 {
		return nil, nil
	}
	return p.submit(ctx, texts)
}

// Close shuts the worker down. In-flight requests receive ErrPipelineClosed.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// submit sends one correlated request to the worker and waits for its response.
// There is no cancellation of work already running inside the worker; ctx
// only abandons the wait.
func (p *Pipeline) submit(ctx context.Context, texts []string) ([]ItemResult, error) {
	select {
	case <-p.done:
		return nil, domain.ErrPipelineClosed
	default:
	}

	req := request{
		ctx:   ctx,
		id:    uuid.NewString(),
		texts: texts,
		resp:  make(chan response, 1),
	}

	select {
	case p.requests <- req:
	case <-ctx.Done():
		return nil, fmt.Errorf("pipeline request: %w", ctx.Err())
	case <-p.done:
		return nil, domain.ErrPipelineClosed
	}

	select {
	case resp := <-req.resp:
		if resp.id != req.id {
			return nil, fmt.Errorf("pipeline correlation mismatch: got %s, want %s", resp.id, req.id)
		}
		return resp.items, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("pipeline response: %w", ctx.Err())
	case <-p.done:
		return nil, domain.ErrPipelineClosed
	}
}

func (p *Pipeline) run() {
	for {
		select {
		case <-p.done:
			return
		case req := <-p.requests:
			items := make([]ItemResult, len(req.texts))
			for i, text := range req.texts {
				items[i] = p.embedOne(req.ctx, text)
			}
			// resp is buffered; the send never blocks even if the caller left.
			req.resp <- response{id: req.id, items: items}
		}
	}
}

func (p *Pipeline) embedOne(ctx context.Context, text string) ItemResult {
	hash := domain.HashText(text)

	result, err := p.provider.Embed(ctx, truncate(text, p.maxChars))
	if err != nil {
		return ItemResult{Err: fmt.Errorf("embed: %w", err)}
	}

	vec := make([]float32, len(result.Vector))
	copy(vec, result.Vector)
	domain.Normalize(vec)

	return ItemResult{Embedding: domain.Embedding{Vector: vec, Hash: hash}}
}

func (p *Pipeline) progress(stage Stage) {
	if p.onProgress != nil {
		p.onProgress(stage)
	}
}

// truncate cuts text to at most maxChars runes. Long input is truncated
// rather than rejected; the content hash is always computed on the full text.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
