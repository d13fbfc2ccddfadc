package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/scoring"
)

const timeLayout = time.RFC3339Nano

var articleColumns = []string{
	"id", "title", "slug", "article_url",
	"author_handle", "author_name", "author_avatar",
	"tweet_id", "rest_id", "tweet_text", "full_content", "excerpt",
	"image", "images_json", "videos_json",
	"views", "replies", "retweets", "likes", "bookmarks",
	"word_count", "score", "is_indexed", "category",
	"title_english", "summary_en", "summary_zh", "summarized_at",
	"published_at", "created_at", "updated_at",
}

// Insert stores a new article, assigning an ID when absent. A collision on
// (title, article_url) returns ErrDuplicate.
func (s *Store) Insert(ctx context.Context, a *models.Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query, args, err := builder.Insert("articles").
		Columns(articleColumns...).
		Values(articleValues(a)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting article: %w", err)
	}
	return nil
}

// Update rewrites all mutable fields of an existing article.
func (s *Store) Update(ctx context.Context, a *models.Article) error {
	a.UpdatedAt = time.Now().UTC()

	query, args, err := builder.Update("articles").
		SetMap(map[string]any{
			"title":         a.Title,
			"slug":          a.Slug,
			"article_url":   a.ArticleURL,
			"author_handle": a.AuthorHandle,
			"author_name":   a.AuthorName,
			"author_avatar": a.AuthorAvatar,
			"tweet_id":      a.TweetID,
			"rest_id":       a.RestID,
			"tweet_text":    a.TweetText,
			"full_content":  a.FullContent,
			"excerpt":       a.Excerpt,
			"image":         a.Image,
			"images_json":   marshalList(a.Images),
			"videos_json":   marshalList(a.Videos),
			"views":         a.Views,
			"replies":       a.Replies,
			"retweets":      a.Retweets,
			"likes":         a.Likes,
			"bookmarks":     a.Bookmarks,
			"word_count":    a.WordCount,
			"score":         a.Score,
			"is_indexed":    a.Indexed,
			"category":      a.Category,
			"title_english": a.TitleEnglish,
			"summary_en":    a.SummaryEN,
			"summary_zh":    a.SummaryZH,
			"summarized_at": nullableTime(a.SummarizedAt),
			"published_at":  a.PublishedAt.UTC().Format(timeLayout),
			"updated_at":    a.UpdatedAt.Format(timeLayout),
		}).
		Where(sq.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("article %s not found", a.ID)
	}
	return nil
}

// FindByTitleAndURL looks an article up by its natural key. Returns nil
// when absent.
func (s *Store) FindByTitleAndURL(ctx context.Context, title, articleURL string) (*models.Article, error) {
	return s.findOne(ctx, sq.Eq{"title": title, "article_url": articleURL})
}

// GetByID returns the article with the given ID, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return s.findOne(ctx, sq.Eq{"id": id})
}

func (s *Store) findOne(ctx context.Context, pred any) (*models.Article, error) {
	query, args, err := builder.Select(articleColumns...).
		From("articles").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	a, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying article: %w", err)
	}
	return a, nil
}

// BatchUpsert saves harvested articles in batches, pausing between batches.
// Duplicate URLs within the input collapse to the first occurrence. An
// article matching an existing (title, article_url) row updates that row.
func (s *Store) BatchUpsert(ctx context.Context, articles []models.Article, batchSize int, pause time.Duration) (models.BatchResult, error) {
	var result models.BatchResult
	if batchSize < 1 {
		batchSize = 1
	}

	log := logger.With("store")

	seen := make(map[string]bool)
	var deduped []models.Article
	for _, a := range articles {
		if a.ArticleURL != "" && seen[a.ArticleURL] {
			result.Skipped++
			continue
		}
		seen[a.ArticleURL] = true
		deduped = append(deduped, a)
	}

	for start := 0; start < len(deduped); start += batchSize {
		if start > 0 && pause > 0 {
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}

		end := start + batchSize
		if end > len(deduped) {
			end = len(deduped)
		}

		for i := start; i < end; i++ {
			a := deduped[i]

			existing, err := s.FindByTitleAndURL(ctx, a.Title, a.ArticleURL)
			if err != nil {
				return result, err
			}
			if existing != nil {
				a.ID = existing.ID
				a.CreatedAt = existing.CreatedAt
				a.Indexed = existing.Indexed
				if a.SummaryEN == "" {
					a.TitleEnglish = existing.TitleEnglish
					a.SummaryEN = existing.SummaryEN
					a.SummaryZH = existing.SummaryZH
					a.SummarizedAt = existing.SummarizedAt
				}
				// The incoming score was computed before the preserved
				// summary was known; fold the bonus back in.
				if a.HasSummary() {
					a.Score = scoring.Score(scoring.Input{
						Views:      a.Views,
						Likes:      a.Likes,
						Replies:    a.Replies,
						WordCount:  a.WordCount,
						HasSummary: true,
					})
				}
				if err := s.Update(ctx, &a); err != nil {
					return result, err
				}
				result.Updated++
				continue
			}

			switch err := s.Insert(ctx, &a); {
			case err == nil:
				result.Inserted++
			case errors.Is(err, ErrDuplicate):
				log.Debug().Str("url", a.ArticleURL).Msg("Duplicate article, skipping")
				result.Skipped++
			default:
				return result, err
			}
		}
	}

	return result, nil
}

// ListIndexed returns all indexed articles ordered best first.
func (s *Store) ListIndexed(ctx context.Context) ([]models.Article, error) {
	return s.list(ctx, builder.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"is_indexed": true}).
		OrderBy("score DESC", "published_at DESC"))
}

// CountIndexed returns the number of indexed articles.
func (s *Store) CountIndexed(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM articles WHERE is_indexed = 1").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting indexed: %w", err)
	}
	return n, nil
}

// ListArchiveCandidates returns unindexed articles at or above minScore,
// best candidates first.
func (s *Store) ListArchiveCandidates(ctx context.Context, minScore, limit int) ([]models.Article, error) {
	return s.list(ctx, builder.Select(articleColumns...).
		From("articles").
		Where(sq.And{sq.Eq{"is_indexed": false}, sq.GtOrEq{"score": minScore}}).
		OrderBy("score DESC", "published_at DESC").
		Limit(uint64(limit)))
}

// ListLowestIndexed returns indexed articles worst first, for demotion.
func (s *Store) ListLowestIndexed(ctx context.Context, limit int) ([]models.Article, error) {
	return s.list(ctx, builder.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"is_indexed": true}).
		OrderBy("score ASC", "published_at ASC").
		Limit(uint64(limit)))
}

// ListRecentCandidates returns unindexed articles published since the
// cutoff that clear both quality floors, best first.
func (s *Store) ListRecentCandidates(ctx context.Context, since time.Time, minScore, minWords, limit int) ([]models.Article, error) {
	return s.list(ctx, builder.Select(articleColumns...).
		From("articles").
		Where(sq.And{
			sq.Eq{"is_indexed": false},
			sq.GtOrEq{"score": minScore},
			sq.GtOrEq{"word_count": minWords},
			sq.GtOrEq{"published_at": since.UTC().Format(timeLayout)},
		}).
		OrderBy("score DESC", "published_at DESC").
		Limit(uint64(limit)))
}

// TopScored returns the best-scoring articles overall that clear the
// quality floors, regardless of current index state.
func (s *Store) TopScored(ctx context.Context, minScore, minWords, limit int) ([]models.Article, error) {
	return s.list(ctx, builder.Select(articleColumns...).
		From("articles").
		Where(sq.And{
			sq.GtOrEq{"score": minScore},
			sq.GtOrEq{"word_count": minWords},
		}).
		OrderBy("score DESC", "published_at DESC").
		Limit(uint64(limit)))
}

// ListNeedingSummary returns articles with enough content but no summary
// yet, most recent first.
func (s *Store) ListNeedingSummary(ctx context.Context, minWords, limit int) ([]models.Article, error) {
	return s.list(ctx, builder.Select(articleColumns...).
		From("articles").
		Where(sq.And{
			sq.GtOrEq{"word_count": minWords},
			sq.Eq{"summary_en": ""},
		}).
		OrderBy("published_at DESC").
		Limit(uint64(limit)))
}

// SetIndexed flips the index flag on the given articles.
func (s *Store) SetIndexed(ctx context.Context, ids []string, indexed bool) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := builder.Update("articles").
		Set("is_indexed", indexed).
		Set("updated_at", time.Now().UTC().Format(timeLayout)).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building index update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating index flags: %w", err)
	}
	return nil
}

// ReplaceIndexedSet makes exactly the given articles indexed and all
// others unindexed, atomically.
func (s *Store) ReplaceIndexedSet(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeLayout)

	if _, err := tx.ExecContext(ctx,
		"UPDATE articles SET is_indexed = 0, updated_at = ? WHERE is_indexed = 1", now); err != nil {
		return fmt.Errorf("clearing index flags: %w", err)
	}

	if len(ids) > 0 {
		query, args, err := builder.Update("articles").
			Set("is_indexed", true).
			Set("updated_at", now).
			Where(sq.Eq{"id": ids}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building index update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("setting index flags: %w", err)
		}
	}

	return tx.Commit()
}

// Enrichment is everything the summarization pass writes back to a row.
// Category, Slug and Score travel with the summary because the English
// title can change the slug and the summary changes the score.
type Enrichment struct {
	TitleEnglish string
	SummaryEN    string
	SummaryZH    string
	Category     string
	Slug         string
	Score        int
}

// SetSummary records the generated enrichment for an article.
func (s *Store) SetSummary(ctx context.Context, id string, e Enrichment) error {
	now := time.Now().UTC()
	fields := map[string]any{
		"title_english": e.TitleEnglish,
		"summary_en":    e.SummaryEN,
		"summary_zh":    e.SummaryZH,
		"score":         e.Score,
		"summarized_at": now.Format(timeLayout),
		"updated_at":    now.Format(timeLayout),
	}
	if e.Category != "" {
		fields["category"] = e.Category
	}
	if e.Slug != "" {
		fields["slug"] = e.Slug
	}

	query, args, err := builder.Update("articles").
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building summary update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating summary: %w", err)
	}
	return nil
}

// StripHeavyFields blanks the bulky content of stale unindexed articles
// scoring below the floor. Rows are kept so their URLs stay deduplicated
// and tweet ids stay resolvable; only the body, media and summaries go.
// Returns the number of rows stripped.
func (s *Store) StripHeavyFields(ctx context.Context, maxScore int, before time.Time) (int64, error) {
	now := time.Now().UTC()
	query, args, err := builder.Update("articles").
		SetMap(map[string]any{
			"full_content": "",
			"summary_en":   "",
			"summary_zh":   "",
			"image":        "",
			"images_json":  "[]",
			"videos_json":  "[]",
			"updated_at":   now.Format(timeLayout),
		}).
		Where(sq.And{
			sq.Lt{"score": maxScore},
			sq.Eq{"is_indexed": false},
			sq.Lt{"created_at": before.UTC().Format(timeLayout)},
			sq.NotEq{"full_content": ""},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building strip update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("stripping low-score articles: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) list(ctx context.Context, q sq.SelectBuilder) ([]models.Article, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return articles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var (
		a            models.Article
		imagesJSON   string
		videosJSON   string
		summarizedAt sql.NullString
		publishedAt  string
		createdAt    string
		updatedAt    string
	)

	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.ArticleURL,
		&a.AuthorHandle, &a.AuthorName, &a.AuthorAvatar,
		&a.TweetID, &a.RestID, &a.TweetText, &a.FullContent, &a.Excerpt,
		&a.Image, &imagesJSON, &videosJSON,
		&a.Views, &a.Replies, &a.Retweets, &a.Likes, &a.Bookmarks,
		&a.WordCount, &a.Score, &a.Indexed, &a.Category,
		&a.TitleEnglish, &a.SummaryEN, &a.SummaryZH, &summarizedAt,
		&publishedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	_ = json.Unmarshal([]byte(imagesJSON), &a.Images)
	_ = json.Unmarshal([]byte(videosJSON), &a.Videos)

	a.PublishedAt = parseTime(publishedAt)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	if summarizedAt.Valid {
		a.SummarizedAt = parseTime(summarizedAt.String)
	}

	return &a, nil
}

func articleValues(a *models.Article) []any {
	return []any{
		a.ID, a.Title, a.Slug, a.ArticleURL,
		a.AuthorHandle, a.AuthorName, a.AuthorAvatar,
		a.TweetID, a.RestID, a.TweetText, a.FullContent, a.Excerpt,
		a.Image, marshalList(a.Images), marshalList(a.Videos),
		a.Views, a.Replies, a.Retweets, a.Likes, a.Bookmarks,
		a.WordCount, a.Score, a.Indexed, a.Category,
		a.TitleEnglish, a.SummaryEN, a.SummaryZH, nullableTime(a.SummarizedAt),
		a.PublishedAt.UTC().Format(timeLayout),
		a.CreatedAt.Format(timeLayout),
		a.UpdatedAt.Format(timeLayout),
	}
}

func marshalList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
