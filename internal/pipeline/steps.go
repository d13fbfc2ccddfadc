package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/ai"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/classify"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/scoring"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/store"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/utils"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/workflow"
)

// FetchListsStep pulls tweets from every active source list. A source
// that fails is logged and skipped so one bad list cannot starve the rest.
func (d *Deps) FetchListsStep() workflow.Step {
	return workflow.Step{
		Name: "fetch-lists",
		Execute: func(ctx context.Context, _ any, run *workflow.Run) workflow.Result {
			log := logger.With("pipeline")

			ids, err := d.Store.ActiveSourceIDs(ctx)
			if err != nil {
				return workflow.Result{Err: err}
			}
			if len(ids) == 0 {
				return workflow.Result{Skip: true, Message: "no active sources"}
			}

			var tweets []models.Tweet
			for _, listID := range ids {
				pageTweets, err := d.Fetcher.FetchAllListPages(ctx, listID)
				if err != nil {
					log.Warn().Str("list_id", listID).Err(err).Msg("List fetch failed, continuing")
					continue
				}

				withArticle := 0
				for _, t := range pageTweets {
					if t.HasArticle() {
						withArticle++
					}
				}
				if err := d.Store.MarkScanned(ctx, listID, withArticle); err != nil {
					log.Warn().Str("list_id", listID).Err(err).Msg("Failed to record scan")
				}

				tweets = append(tweets, pageTweets...)
			}

			if len(tweets) == 0 {
				return workflow.Result{Skip: true, Message: "no tweets fetched"}
			}

			run.Data["tweets_fetched"] = len(tweets)
			return workflow.Result{Output: tweets}
		},
	}
}

// ExtractArticlesStep keeps article-bearing tweets that have not been
// processed before and fills in missing article bodies with detail
// fetches, bounded by the concurrency limit.
func (d *Deps) ExtractArticlesStep() workflow.Step {
	return workflow.Step{
		Name: "extract-articles",
		Execute: func(ctx context.Context, input any, run *workflow.Run) workflow.Result {
			tweets, ok := input.([]models.Tweet)
			if !ok {
				return workflow.Result{Err: fmt.Errorf("unexpected input %T", input)}
			}

			log := logger.With("pipeline")

			var fresh []models.Tweet
			for _, t := range tweets {
				if !t.HasArticle() {
					continue
				}
				done, err := d.Processed.IsProcessed(ctx, utils.Hash(t.ID))
				if err != nil {
					log.Warn().Str("tweet_id", t.ID).Err(err).Msg("Processed check failed, treating as new")
				}
				if done {
					continue
				}
				fresh = append(fresh, t)
			}

			if len(fresh) == 0 {
				return workflow.Result{Skip: true, Message: "no new articles found"}
			}

			d.hydrateContent(ctx, fresh)

			var harvested []models.HarvestedArticle
			for _, t := range fresh {
				h, err := harvestFromTweet(t)
				if err != nil {
					log.Debug().Str("tweet_id", t.ID).Err(err).Msg("Dropping invalid candidate")
					continue
				}
				harvested = append(harvested, *h)
			}

			if len(harvested) == 0 {
				return workflow.Result{Skip: true, Message: "no valid article candidates"}
			}

			run.Data["articles_extracted"] = len(harvested)
			return workflow.Result{Output: harvested}
		},
	}
}

// hydrateContent fetches tweet detail for candidates whose timeline entry
// carried no article body.
func (d *Deps) hydrateContent(ctx context.Context, tweets []models.Tweet) {
	limit := d.Opts.MaxConcurrency
	if limit < 1 {
		limit = 1
	}

	log := logger.With("pipeline")
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i := range tweets {
		if tweets[i].Article.Content != "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(t *models.Tweet) {
			defer wg.Done()
			defer func() { <-sem }()

			detail, err := d.Fetcher.FetchTweet(ctx, t.ID)
			if err != nil {
				log.Warn().Str("tweet_id", t.ID).Err(err).Msg("Detail fetch failed")
				return
			}
			if detail == nil || !detail.HasArticle() {
				return
			}
			if detail.Article.Content != "" {
				t.Article.Content = detail.Article.Content
				t.Article.Images = detail.Article.Images
				t.Article.Videos = detail.Article.Videos
			}
			if t.Article.CoverImageURL == "" {
				t.Article.CoverImageURL = detail.Article.CoverImageURL
			}
		}(&tweets[i])
	}

	wg.Wait()
}

// SaveArticlesStep scores candidates, drops the ones under the word
// floor, and upserts the rest in batches. Saved tweets are marked
// processed so reruns skip them.
func (d *Deps) SaveArticlesStep() workflow.Step {
	return workflow.Step{
		Name: "save-articles",
		Execute: func(ctx context.Context, input any, run *workflow.Run) workflow.Result {
			harvested, ok := input.([]models.HarvestedArticle)
			if !ok {
				return workflow.Result{Err: fmt.Errorf("unexpected input %T", input)}
			}

			log := logger.With("pipeline")

			var articles []models.Article
			dropped := 0
			for _, h := range harvested {
				a := buildArticle(h, d.Classifier)
				if a.WordCount < d.Opts.MinWordCount {
					log.Debug().Str("title", a.Title).Int("words", a.WordCount).
						Msg("Dropping article under word floor")
					dropped++
					continue
				}
				articles = append(articles, a)
			}

			result, err := d.Store.BatchUpsert(ctx, articles, d.Opts.BatchSize, d.Opts.BatchDelay)
			if err != nil {
				return workflow.Result{Err: err}
			}
			result.Deleted = dropped

			for _, h := range harvested {
				if err := d.Processed.MarkProcessed(ctx, utils.Hash(h.TweetID), d.Opts.CacheTTL); err != nil {
					log.Warn().Str("tweet_id", h.TweetID).Err(err).Msg("Failed to mark processed")
				}
			}

			run.Data["batch_result"] = result
			log.Info().Int("inserted", result.Inserted).Int("updated", result.Updated).
				Int("skipped", result.Skipped).Int("dropped", dropped).Msg("Articles saved")

			if result.Inserted+result.Updated == 0 {
				return workflow.Result{Skip: true, Message: "nothing saved"}
			}
			return workflow.Result{Output: result}
		},
	}
}

// GenerateSummariesStep enriches stored articles that still lack a
// summary. Budget exhaustion ends the pass early without failing it; the
// step is optional so enrichment errors never abort ingestion.
func (d *Deps) GenerateSummariesStep() workflow.Step {
	return workflow.Step{
		Name:     "generate-summaries",
		Optional: true,
		Execute: func(ctx context.Context, input any, run *workflow.Run) workflow.Result {
			log := logger.With("pipeline")

			pending, err := d.Store.ListNeedingSummary(ctx, d.Opts.MinWordCount, d.Opts.SummaryLimit)
			if err != nil {
				return workflow.Result{Err: err}
			}

			generated := 0
			for _, a := range pending {
				analysis, err := d.Summarizer.Analyze(ctx, a.Title, a.FullContent)
				if err != nil {
					if errors.Is(err, ai.ErrBudgetExhausted) {
						log.Warn().Int("generated", generated).Msg("Summary budget exhausted, stopping")
						break
					}
					log.Warn().Str("id", a.ID).Err(err).Msg("Summary generation failed")
					continue
				}
				if analysis.Skipped || !ai.UsableSummary(analysis.SummaryEnglish, a.Title) {
					continue
				}

				enrichment := store.Enrichment{
					TitleEnglish: analysis.TitleEnglish,
					SummaryEN:    analysis.SummaryEnglish,
					SummaryZH:    analysis.SummaryChinese,
					Category:     d.pickCategory(analysis.Categories, a),
					Slug:         utils.ArticleSlug(a.Title, analysis.TitleEnglish, a.TweetID),
					Score: scoring.Score(scoring.Input{
						Views:      a.Views,
						Likes:      a.Likes,
						Replies:    a.Replies,
						WordCount:  a.WordCount,
						HasSummary: true,
					}),
				}
				if err := d.Store.SetSummary(ctx, a.ID, enrichment); err != nil {
					log.Warn().Str("id", a.ID).Err(err).Msg("Failed to store summary")
					continue
				}
				generated++
			}

			run.Data["summaries_generated"] = generated
			return workflow.Result{Output: input}
		},
	}
}

// pickCategory takes the first generated tag that matches the classifier
// vocabulary, falling back to keyword classification over the body.
func (d *Deps) pickCategory(tags []string, a models.Article) string {
	if d.Classifier == nil {
		return classify.DefaultCategory
	}
	for _, tag := range tags {
		for _, known := range d.Classifier.Categories() {
			if strings.EqualFold(tag, known) {
				return known
			}
		}
	}
	category, _ := d.Classifier.Classify(a.Title, a.FullContent)
	return category
}

// CleanupLowScoreStep strips the bulky content from stale unindexed
// articles that never reached indexable quality. Rows stay in place so
// the URL dedupe keeps rejecting re-harvests of the same article.
func (d *Deps) CleanupLowScoreStep() workflow.Step {
	return workflow.Step{
		Name:     "cleanup-low-score",
		Optional: true,
		Execute: func(ctx context.Context, input any, run *workflow.Run) workflow.Result {
			log := logger.With("pipeline")

			before := time.Now().UTC().Add(-d.Opts.CleanupAge)
			n, err := d.Store.StripHeavyFields(ctx, d.Opts.MinScore, before)
			if err != nil {
				return workflow.Result{Err: err}
			}
			if n > 0 {
				log.Info().Int64("stripped", n).Msg("Stripped low-score articles")
			}
			run.Data["articles_stripped"] = n
			return workflow.Result{Output: input}
		},
	}
}
