package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/config"
	"github.com/rshaham/job-hunt-buddy/internal/db"
	dbRedis "github.com/rshaham/job-hunt-buddy/internal/db/redis"
	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/index"
	logpkg "github.com/rshaham/job-hunt-buddy/internal/logger"
	"github.com/rshaham/job-hunt-buddy/internal/metrics"
	"github.com/rshaham/job-hunt-buddy/internal/pipeline"
	"github.com/rshaham/job-hunt-buddy/internal/repository/embcache"
	"github.com/rshaham/job-hunt-buddy/internal/store/memory"
	"github.com/rshaham/job-hunt-buddy/internal/transport/httpapi"
	openaiEmb "github.com/rshaham/job-hunt-buddy/internal/transport/openai"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/improvements"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/indexer"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/match"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/profile"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/retrieval"
	"github.com/rshaham/job-hunt-buddy/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting matchd",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register core metrics explicitly (no init())
	metrics.RegisterCoreMetrics()

	// Optional embedding-cache backend
	var kv db.KVStore
	if cfg.Cache.Driver == "redis" {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readyCtx := context.Background()
		if err := store.WaitForReady(readyCtx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache")
		kv = store
	}

	// Build embedder chain — composition root
	var provider domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	if kv != nil {
		provider = embcache.New(
			provider, kv, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	pipe := pipeline.New(provider, pipeline.Options{
		ContextTokens: cfg.Embedding.ContextTokens,
		CharsPerToken: cfg.Embedding.CharsPerToken,
		Logger:        logger,
		OnProgress: func(stage pipeline.Stage) {
			logger.Info("Pipeline progress", zap.String("stage", string(stage)))
		},
	})
	defer pipe.Close()

	contentStore := memory.New()
	ix := index.New()

	profileSvc := profile.New(contentStore, pipe, logger)
	matchSvc := match.New(profileSvc, pipe, match.Options{
		RawFloor:           cfg.Scoring.RawFloor,
		RawCeiling:         cfg.Scoring.RawCeiling,
		ScoreFloor:         cfg.Scoring.ScoreFloor,
		ScoreCeiling:       cfg.Scoring.ScoreCeiling,
		RequirementsWeight: cfg.Scoring.RequirementsWeight,
		MinSectionChars:    cfg.Scoring.MinSectionChars,
	}, logger)
	retrievalSvc := retrieval.New(pipe, ix, contentStore, retrieval.Options{
		MaxStories:    cfg.Retrieval.MaxStories,
		MaxDocuments:  cfg.Retrieval.MaxDocuments,
		PerQueryLimit: cfg.Retrieval.PerQueryLimit,
		MinSimilarity: cfg.Retrieval.MinSimilarity,
	}, logger)
	improvementsSvc := improvements.New(contentStore, improvements.Options{
		MaxJobsWindow:     cfg.Improvements.MaxJobsWindow,
		MinChangeChars:    cfg.Improvements.MinChangeChars,
		SimilarityCeiling: cfg.Improvements.SimilarityCeiling,
		MaxResults:        cfg.Improvements.MaxResults,
	}, logger)
	indexerSvc := indexer.New(contentStore, pipe, ix, logger)

	// Store hooks keep derived state consistent with content mutations.
	contentStore.OnChange(profileSvc.Invalidate)
	contentStore.OnDelete(ix.Remove)

	// Warm the pipeline in the background; the API serves (degraded) while
	// the model loads, and the first sync runs once embeddings are available.
	go func() {
		initCtx := context.Background()
		if err := pipe.Initialize(initCtx); err != nil {
			logger.Error("Pipeline initialization failed", zap.Error(err))
			return
		}
		logger.Info("Embedding pipeline ready")
		if _, err := indexerSvc.SyncAll(initCtx); err != nil {
			logger.Warn("Initial index sync failed", zap.Error(err))
		}
	}()

	server := httpapi.NewServer(
		contentStore, matchSvc, retrievalSvc, improvementsSvc, indexerSvc, pipe, logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
