package twitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/ratelimit"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/retry"
)

// ClientConfig carries the knobs for the timeline API client.
type ClientConfig struct {
	APIKey          string
	APIHost         string
	Timeout         time.Duration
	RequestInterval time.Duration
	MaxPages        int
	PageDelay       time.Duration
	RetryPolicy     retry.Policy
}

// Client fetches list timelines and single tweets from the upstream API.
// All requests pass through a shared rate limiter so concurrent callers
// never exceed the configured request interval.
type Client struct {
	http     *resty.Client
	limiter  *ratelimit.Limiter
	policy   retry.Policy
	maxPages int
	pageWait time.Duration
	log      zerolog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := resty.New().
		SetBaseURL("https://"+cfg.APIHost).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("x-rapidapi-host", cfg.APIHost).
		SetHeader("x-rapidapi-key", cfg.APIKey).
		SetHeader("Accept", "application/json")

	maxPages := cfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	return &Client{
		http:     httpClient,
		limiter:  ratelimit.New(cfg.RequestInterval),
		policy:   cfg.RetryPolicy,
		maxPages: maxPages,
		pageWait: cfg.PageDelay,
		log:      logger.With("twitter"),
	}
}

// Close releases the rate limiter worker.
func (c *Client) Close() {
	c.limiter.Close()
}

// FetchListTimeline fetches one page of a list timeline. An empty cursor
// requests the first page.
func (c *Client) FetchListTimeline(ctx context.Context, listID, cursor string) (*TimelinePage, error) {
	params := map[string]string{"listId": listID}
	if cursor != "" {
		params["cursor"] = cursor
	}

	body, err := c.get(ctx, "/list-timeline", params)
	if err != nil {
		return nil, fmt.Errorf("fetching timeline for list %s: %w", listID, err)
	}
	return ParseTimeline(body)
}

// FetchAllListPages walks a list timeline up to the configured page limit,
// following bottom cursors. A failed page after the first degrades to the
// tweets already collected instead of failing the whole list. Repeated
// cursors terminate the walk.
func (c *Client) FetchAllListPages(ctx context.Context, listID string) ([]models.Tweet, error) {
	var tweets []models.Tweet
	seen := make(map[string]bool)
	cursor := ""

	for page := 1; page <= c.maxPages; page++ {
		if page > 1 && c.pageWait > 0 {
			select {
			case <-time.After(c.pageWait):
			case <-ctx.Done():
				return tweets, ctx.Err()
			}
		}

		result, err := c.FetchListTimeline(ctx, listID, cursor)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			c.log.Warn().Str("list_id", listID).Int("page", page).Err(err).
				Msg("Page fetch failed, keeping earlier pages")
			return tweets, nil
		}

		tweets = append(tweets, result.Tweets...)
		c.log.Debug().Str("list_id", listID).Int("page", page).
			Int("tweets", len(result.Tweets)).Msg("Fetched timeline page")

		if result.NextCursor == "" || seen[result.NextCursor] {
			break
		}
		seen[result.NextCursor] = true
		cursor = result.NextCursor
	}

	return tweets, nil
}

// FetchTweet fetches a single tweet by ID, returning nil when the tweet
// no longer exists.
func (c *Client) FetchTweet(ctx context.Context, tweetID string) (*models.Tweet, error) {
	body, err := c.get(ctx, "/tweet", map[string]string{"pid": tweetID})
	if err != nil {
		if errors.Is(err, retry.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching tweet %s: %w", tweetID, err)
	}
	return ParseTweetDetail(body)
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	var body []byte

	err := c.policy.Do(ctx, func() error {
		return c.limiter.Execute(func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetQueryParams(params).
				Get(path)
			if err != nil {
				return err
			}

			switch code := resp.StatusCode(); {
			case code == 200:
				body = resp.Body()
				return nil
			case code == 401 || code == 403:
				return fmt.Errorf("%w: %s", retry.ErrUnauthorized, resp.Status())
			case code == 404:
				return retry.ErrNotFound
			default:
				return &retry.HTTPError{StatusCode: code, Status: resp.Status()}
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
