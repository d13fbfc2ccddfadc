// Package indexing decides which articles carry the index flag. Two
// strategies exist: a full rebuild that keeps exactly the top N, and a
// nightly quota pass that promotes and demotes around a floor and ceiling.
package indexing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
)

// Store is the persistence surface the adjuster needs.
type Store interface {
	CountIndexed(ctx context.Context) (int, error)
	ListIndexed(ctx context.Context) ([]models.Article, error)
	ListArchiveCandidates(ctx context.Context, minScore, limit int) ([]models.Article, error)
	ListLowestIndexed(ctx context.Context, limit int) ([]models.Article, error)
	ListRecentCandidates(ctx context.Context, since time.Time, minScore, minWords, limit int) ([]models.Article, error)
	TopScored(ctx context.Context, minScore, minWords, limit int) ([]models.Article, error)
	SetIndexed(ctx context.Context, ids []string, indexed bool) error
	ReplaceIndexedSet(ctx context.Context, ids []string) error
}

// Config bounds the adjuster's decisions.
type Config struct {
	MinScore    int
	MinWords    int
	MinIndexed  int
	MaxIndexed  int
	MaxDailyNew int
	Lookback    time.Duration
}

// Change records one adjustment outcome.
type Change struct {
	Promoted []string
	Demoted  []string
	Total    int
}

type Adjuster struct {
	store Store
	cfg   Config
	log   zerolog.Logger
}

func NewAdjuster(store Store, cfg Config) *Adjuster {
	return &Adjuster{store: store, cfg: cfg, log: logger.With("indexing")}
}

// RebuildTopN makes exactly the best n qualifying articles indexed and
// everything else unindexed. Running it twice in a row is a no-op.
func (a *Adjuster) RebuildTopN(ctx context.Context, n int) (*Change, error) {
	top, err := a.store.TopScored(ctx, a.cfg.MinScore, a.cfg.MinWords, n)
	if err != nil {
		return nil, fmt.Errorf("selecting top articles: %w", err)
	}

	ids := make([]string, len(top))
	for i, art := range top {
		ids[i] = art.ID
	}

	if err := a.store.ReplaceIndexedSet(ctx, ids); err != nil {
		return nil, fmt.Errorf("replacing index set: %w", err)
	}

	a.log.Info().Int("indexed", len(ids)).Int("requested", n).Msg("Index rebuilt")
	return &Change{Promoted: ids, Total: len(ids)}, nil
}

// PromoteRecent indexes up to MaxDailyNew fresh qualifying articles from
// the lookback window. It never demotes.
func (a *Adjuster) PromoteRecent(ctx context.Context) (*Change, error) {
	since := time.Now().UTC().Add(-a.cfg.Lookback)
	candidates, err := a.store.ListRecentCandidates(ctx, since, a.cfg.MinScore, a.cfg.MinWords, a.cfg.MaxDailyNew)
	if err != nil {
		return nil, fmt.Errorf("selecting recent candidates: %w", err)
	}

	ids := make([]string, len(candidates))
	for i, art := range candidates {
		ids[i] = art.ID
	}
	if err := a.store.SetIndexed(ctx, ids, true); err != nil {
		return nil, fmt.Errorf("promoting recent articles: %w", err)
	}

	total, err := a.store.CountIndexed(ctx)
	if err != nil {
		return nil, err
	}

	a.log.Info().Int("promoted", len(ids)).Int("total_indexed", total).Msg("Recent articles promoted")
	return &Change{Promoted: ids, Total: total}, nil
}

// EnforceQuota promotes archive articles until the indexed count reaches
// the floor and demotes the weakest until it is back under the ceiling.
// Articles already indexed are never demoted to make room for promotions.
func (a *Adjuster) EnforceQuota(ctx context.Context) (*Change, error) {
	change := &Change{}

	count, err := a.store.CountIndexed(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting indexed: %w", err)
	}

	if count < a.cfg.MinIndexed {
		need := a.cfg.MinIndexed - count
		candidates, err := a.store.ListArchiveCandidates(ctx, a.cfg.MinScore, need)
		if err != nil {
			return nil, fmt.Errorf("selecting archive candidates: %w", err)
		}
		ids := make([]string, len(candidates))
		for i, art := range candidates {
			ids[i] = art.ID
		}
		if err := a.store.SetIndexed(ctx, ids, true); err != nil {
			return nil, fmt.Errorf("promoting from archive: %w", err)
		}
		change.Promoted = ids
		count += len(ids)

		if count < a.cfg.MinIndexed {
			a.log.Warn().Int("indexed", count).Int("floor", a.cfg.MinIndexed).
				Msg("Archive exhausted below index floor")
		}
	}

	if count > a.cfg.MaxIndexed {
		excess := count - a.cfg.MaxIndexed
		weakest, err := a.store.ListLowestIndexed(ctx, excess)
		if err != nil {
			return nil, fmt.Errorf("selecting weakest indexed: %w", err)
		}
		ids := make([]string, len(weakest))
		for i, art := range weakest {
			ids[i] = art.ID
		}
		if err := a.store.SetIndexed(ctx, ids, false); err != nil {
			return nil, fmt.Errorf("demoting weakest: %w", err)
		}
		change.Demoted = ids
		count -= len(ids)
	}

	change.Total = count
	a.log.Info().Int("promoted", len(change.Promoted)).Int("demoted", len(change.Demoted)).
		Int("total_indexed", count).Msg("Index quota enforced")
	return change, nil
}
