package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docnav/internal/config"
	"github.com/kailas-cloud/docnav/internal/db"
	dbRedis "github.com/kailas-cloud/docnav/internal/db/redis"
	"github.com/kailas-cloud/docnav/internal/domain"
	logpkg "github.com/kailas-cloud/docnav/internal/logger"
	"github.com/kailas-cloud/docnav/internal/metrics"
	documentrepo "github.com/kailas-cloud/docnav/internal/repository/document"
	"github.com/kailas-cloud/docnav/internal/repository/embcache"
	passagerepo "github.com/kailas-cloud/docnav/internal/repository/passage"
	chiTransport "github.com/kailas-cloud/docnav/internal/transport/chi"
	geminiGen "github.com/kailas-cloud/docnav/internal/transport/gemini"
	githubSearch "github.com/kailas-cloud/docnav/internal/transport/github"
	openaiTransport "github.com/kailas-cloud/docnav/internal/transport/openai"
	"github.com/kailas-cloud/docnav/internal/usecase/classify"
	"github.com/kailas-cloud/docnav/internal/usecase/compose"
	embeddinguc "github.com/kailas-cloud/docnav/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/docnav/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docnav/internal/usecase/ingest"
	"github.com/kailas-cloud/docnav/internal/usecase/lookup"
	"github.com/kailas-cloud/docnav/internal/usecase/pipeline"
	"github.com/kailas-cloud/docnav/internal/usecase/resultcache"
	"github.com/kailas-cloud/docnav/internal/usecase/safety"
	"github.com/kailas-cloud/docnav/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:   cfg.Logging.Level,
		Service: "docnav",
		Version: version.Version,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docnav API server",
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Index.Name),
		zap.String("generation_provider", cfg.Generation.Provider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	// Embedder chains share one provider client; only the instruction differs.
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
	})
	queryEmbedder := buildEmbedder(baseEmbedder, cfg, cfg.Embedding.QueryInstruction, store, logger)
	docEmbedder := buildEmbedder(baseEmbedder, cfg, cfg.Embedding.DocumentInstruction, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Repositories
	docRepo := documentrepo.New(store, documentrepo.Config{
		IndexName:          cfg.Index.Name,
		KeyPrefix:          cfg.Index.KeyPrefix,
		Dimensions:         cfg.Embedding.Dimensions,
		HNSWM:              cfg.Index.HNSWM,
		HNSWEFConstruction: cfg.Index.HNSWEFConstruct,
	})
	if err := docRepo.EnsureIndex(ctx); err != nil {
		// Ingestion retries index creation; queries treat a missing index as empty.
		logger.Warn("Index not ready", zap.String("index", cfg.Index.Name), zap.Error(err))
	}
	retriever := passagerepo.New(store, queryEmbedder, cfg.Index.Name)

	// Pipeline stages
	cache := resultcache.New(
		cfg.CacheEnabled(),
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		cfg.Cache.MaxEntries,
	)
	safetySvc := safety.New(cfg.SafetyEnabled())
	lookups := buildLookups(cfg, logger)

	template := compose.NewTemplate()
	var composer compose.Composer = template
	generator, err := buildGenerator(ctx, cfg.Generation)
	if err != nil {
		logger.Fatal("Failed to create answer generator", zap.Error(err))
	}
	if generator != nil {
		composer = compose.NewGenerative(generator, template)
	}

	pipelineSvc := pipeline.New(safetySvc, cache, classify.New(), retriever, lookups, composer).
		WithRetrievalTimeout(time.Duration(cfg.Retrieval.TimeoutSec) * time.Second)
	ingestSvc := ingestuc.New(docRepo, docEmbedder, pipelineSvc).
		WithMaxBatchSize(cfg.Index.MaxBatchSize)

	healthSvc := healthuc.New(healthuc.CheckerFunc(store.Ping)).
		WithCheck(healthuc.ComponentEmbedding, baseEmbedder)
	if hc, ok := generator.(healthuc.Checker); ok {
		healthSvc = healthSvc.WithCheck(healthuc.ComponentGeneration, hc)
	}

	server := chiTransport.NewServer(pipelineSvc, ingestSvc, safetySvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	base domain.Embedder,
	cfg config.Config,
	instruction string,
	store db.KVStore,
	logger *zap.Logger,
) domain.Embedder {
	prefix := fmt.Sprintf("%semb:%s:", cfg.Index.KeyPrefix, cfg.Embedding.Model)
	var embedder domain.Embedder = embcache.New(
		base, store, prefix,
		time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, logger,
	)

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model)

	// Instruction prefix is outermost so the cache key includes it
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// buildLookups wires the auxiliary lookups. GitHub code search is optional.
func buildLookups(cfg config.Config, logger *zap.Logger) *lookup.Runner {
	lookups := []lookup.Lookup{lookup.NewCompatibility(), lookup.NewTroubleshoot()}

	if cfg.CodeExamplesEnabled() {
		ce := cfg.Lookups.CodeExamples
		searcher, err := githubSearch.NewSearcher(githubSearch.Config{
			Token:          ce.GitHubToken,
			BaseURL:        ce.GitHubBaseURL,
			RequestsPerSec: ce.RequestsPerSec,
			Burst:          ce.Burst,
		})
		if err != nil {
			logger.Warn("Code example lookup disabled", zap.Error(err))
		} else {
			lookups = append(lookups, lookup.NewCodeExamples(searcher, ce.MaxResults))
		}
	}

	return lookup.NewRunner(time.Duration(cfg.Lookups.TimeoutSec)*time.Second, lookups...)
}

// buildGenerator returns nil when generation is off.
func buildGenerator(ctx context.Context, cfg config.GenerationConfig) (domain.Generator, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	switch cfg.Provider {
	case config.GenerationOpenAI:
		return openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     timeout,
		}), nil
	case config.GenerationGemini:
		gen, err := geminiGen.NewGenerator(ctx, geminiGen.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   int32(cfg.MaxTokens), //nolint:gosec // bounded by config defaults
			Timeout:     timeout,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, nil
	}
}
