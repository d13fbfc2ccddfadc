package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/ai"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/cache"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/classify"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/config"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/indexing"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/pipeline"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/retry"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/scheduler"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/store"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/twitter"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/workflow"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting article harvester")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	processed := openProcessedSet(cfg)
	defer processed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedSources(ctx, db, cfg.SourceListIDs)

	classifier, err := classify.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load classification rules")
	}

	fetcher := twitter.NewClient(twitter.ClientConfig{
		APIKey:          cfg.APIKey,
		APIHost:         cfg.APIHost,
		Timeout:         cfg.APITimeout,
		RequestInterval: cfg.RequestInterval,
		MaxPages:        cfg.MaxPagesPerList,
		PageDelay:       cfg.PageDelay,
		RetryPolicy: retry.Policy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
			Retryable:   retry.DefaultRetryable,
		},
	})
	defer fetcher.Close()

	summarizer := ai.NewClient(ai.ClientConfig{
		APIKey:     cfg.AIApiKey,
		BaseURL:    cfg.AIBaseURL,
		Model:      cfg.AIModel,
		Timeout:    cfg.AITimeout,
		Categories: classifier.Categories(),
	}, ai.NewBudget(cfg.AIDailyLimit))

	deps := &pipeline.Deps{
		Fetcher:    fetcher,
		Store:      db,
		Processed:  processed,
		Summarizer: summarizer,
		Classifier: classifier,
		Opts: pipeline.Options{
			MinScore:       cfg.MinScore,
			MinWordCount:   cfg.MinWordCount,
			BatchSize:      cfg.BatchSize,
			BatchDelay:     cfg.BatchDelay,
			MaxConcurrency: cfg.MaxConcurrency,
			CacheTTL:       cfg.CacheTTL,
			SummaryLimit:   cfg.SummaryLimit,
			CleanupAge:     cfg.CleanupAge,
		},
	}

	adjuster := indexing.NewAdjuster(db, indexing.Config{
		MinScore:    cfg.MinScore,
		MinWords:    cfg.MinWordCount,
		MinIndexed:  cfg.MinIndexed,
		MaxIndexed:  cfg.MaxIndexed,
		MaxDailyNew: cfg.MaxDailyNew,
		Lookback:    cfg.AdjustInterval,
	})

	engine := workflow.NewEngine()

	ingest := scheduler.New("article-ingest", cfg.SchedulerInterval, func(ctx context.Context) error {
		_, err := engine.Execute(ctx, deps.IngestDefinition(), nil)
		return err
	})
	adjust := scheduler.New("daily-adjustment", cfg.AdjustInterval, func(ctx context.Context) error {
		_, err := engine.Execute(ctx, pipeline.AdjustmentDefinition(adjuster), nil)
		return err
	})

	if cfg.SchedulerEnabled {
		ingest.Start(ctx)
		adjust.Start(ctx)
	} else {
		log.Info().Msg("Scheduler disabled, running a single ingest pass")
		if _, err := engine.Execute(ctx, deps.IngestDefinition(), nil); err != nil {
			log.Error().Err(err).Msg("Ingest run failed")
		}
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	cancel()
	ingest.Stop()
	adjust.Stop()
	log.Info().Msg("Harvester exited")
}

// openProcessedSet prefers Redis and falls back to the in-memory set when
// Redis is unreachable or unconfigured.
func openProcessedSet(cfg *config.Config) cache.ProcessedSet {
	log := logger.Get()

	if cfg.RedisURL == "" {
		log.Info().Msg("No Redis URL configured, using in-memory processed set")
		return cache.NewMemorySet()
	}

	set, err := cache.NewRedisSet(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory processed set")
		return cache.NewMemorySet()
	}
	return set
}

// seedSources registers configured list IDs so the pipeline has sources
// on first boot. IDs already present keep their scan history.
func seedSources(ctx context.Context, db *store.Store, listIDs []string) {
	log := logger.Get()
	for _, id := range listIDs {
		if err := db.UpsertSource(ctx, models.Source{ListID: id, Active: true}); err != nil {
			log.Error().Str("list_id", id).Err(err).Msg("Failed to seed source")
		}
	}
}
