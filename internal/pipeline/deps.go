package pipeline

import (
	"context"
	"time"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/ai"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/cache"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/classify"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/store"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/twitter"
)

// TimelineFetcher is the upstream API surface the pipeline consumes.
type TimelineFetcher interface {
	FetchAllListPages(ctx context.Context, listID string) ([]models.Tweet, error)
	FetchTweet(ctx context.Context, tweetID string) (*models.Tweet, error)
}

// Summarizer generates article enrichments.
type Summarizer interface {
	Analyze(ctx context.Context, title, content string) (*ai.Analysis, error)
}

// ArticleStore is the persistence surface the pipeline needs.
type ArticleStore interface {
	ActiveSourceIDs(ctx context.Context) ([]string, error)
	MarkScanned(ctx context.Context, listID string, articlesFound int) error
	BatchUpsert(ctx context.Context, articles []models.Article, batchSize int, pause time.Duration) (models.BatchResult, error)
	ListNeedingSummary(ctx context.Context, minWords, limit int) ([]models.Article, error)
	SetSummary(ctx context.Context, id string, e store.Enrichment) error
	StripHeavyFields(ctx context.Context, maxScore int, before time.Time) (int64, error)
}

// Options carries the pipeline's tunables.
type Options struct {
	MinScore       int
	MinWordCount   int
	BatchSize      int
	BatchDelay     time.Duration
	MaxConcurrency int
	CacheTTL       time.Duration
	SummaryLimit   int
	CleanupAge     time.Duration
}

// Deps bundles everything the pipeline steps touch.
type Deps struct {
	Fetcher    TimelineFetcher
	Store      ArticleStore
	Processed  cache.ProcessedSet
	Summarizer Summarizer
	Classifier *classify.Classifier
	Opts       Options
}

var _ TimelineFetcher = (*twitter.Client)(nil)
var _ Summarizer = (*ai.Client)(nil)
var _ ArticleStore = (*store.Store)(nil)
