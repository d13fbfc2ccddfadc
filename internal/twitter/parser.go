package twitter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
)

// createdAtLayout is the classic Twitter timestamp format, e.g.
// "Wed Oct 10 20:19:24 +0000 2018".
const createdAtLayout = "Mon Jan 2 15:04:05 -0700 2006"

// TimelinePage is one page of a list timeline: the tweets found on it and
// the cursor for the next page, empty when the timeline is exhausted.
type TimelinePage struct {
	Tweets     []models.Tweet
	NextCursor string
}

// ParseTimeline decodes a list-timeline response body. Entries that cannot
// be parsed into a tweet are logged and dropped rather than failing the page.
func ParseTimeline(body []byte) (*TimelinePage, error) {
	var resp timelineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding timeline response: %w", err)
	}

	log := logger.With("twitter")
	page := &TimelinePage{}

	for _, inst := range resp.Data.List.TweetsTimeline.Timeline.Instructions {
		if inst.Type != "TimelineAddEntries" {
			continue
		}
		for _, entry := range inst.Entries {
			switch entry.Content.EntryType {
			case "TimelineTimelineItem":
				ic := entry.Content.ItemContent
				if ic == nil || ic.ItemType != "TimelineTweet" || ic.TweetResults.Result == nil {
					continue
				}
				tweet, err := parseTweet(ic.TweetResults.Result)
				if err != nil {
					log.Debug().Str("entry_id", entry.EntryID).Err(err).Msg("Skipping unparseable timeline entry")
					continue
				}
				page.Tweets = append(page.Tweets, *tweet)
			case "TimelineTimelineCursor":
				if entry.Content.CursorType == "Bottom" {
					page.NextCursor = entry.Content.Value
				}
			}
		}
	}

	return page, nil
}

// ParseTweetDetail decodes a single-tweet response body. Returns nil when
// the payload carries no tweet.
func ParseTweetDetail(body []byte) (*models.Tweet, error) {
	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding tweet detail: %w", err)
	}

	if resp.Result != nil {
		if tr := resp.Result.TweetResult; tr != nil && tr.Result != nil {
			return parseTweet(tr.Result)
		}
		if tr := resp.Result.TweetResults; tr != nil && tr.Result != nil {
			return parseTweet(tr.Result)
		}
	}

	if resp.Data != nil && resp.Data.ThreadedConversation != nil {
		for _, inst := range resp.Data.ThreadedConversation.Instructions {
			if inst.Type != "TimelineAddEntries" {
				continue
			}
			for _, entry := range inst.Entries {
				ic := entry.Content.ItemContent
				if ic == nil || ic.TweetResults.Result == nil {
					continue
				}
				return parseTweet(ic.TweetResults.Result)
			}
		}
	}

	return nil, nil
}

func parseTweet(p *tweetPayload) (*models.Tweet, error) {
	legacy := p.Legacy

	id := p.RestID
	if id == "" && legacy != nil {
		id = legacy.IDStr
	}
	if id == "" {
		id = p.IDStr
	}

	var user *userPayload
	var avatar string
	if p.Core != nil && p.Core.UserResults.Result != nil {
		ur := p.Core.UserResults.Result
		if ur.Legacy != nil {
			user = ur.Legacy
		} else if ur.Core != nil {
			user = ur.Core
		}
		if ur.Avatar != nil {
			avatar = ur.Avatar.ImageURL
		}
	}
	if user == nil {
		user = p.User
	}
	if user == nil && legacy != nil {
		user = legacy.User
	}

	createdAtRaw := p.CreatedAt
	if createdAtRaw == "" && legacy != nil {
		createdAtRaw = legacy.CreatedAt
	}

	var missing []string
	if id == "" {
		missing = append(missing, "id")
	}
	if user == nil || user.ScreenName == "" {
		missing = append(missing, "author handle")
	}
	if createdAtRaw == "" {
		missing = append(missing, "created_at")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("tweet missing required fields: %s", strings.Join(missing, ", "))
	}

	createdAt, err := time.Parse(createdAtLayout, createdAtRaw)
	if err != nil {
		// Some endpoints return RFC 3339 instead.
		createdAt, err = time.Parse(time.RFC3339, createdAtRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAtRaw, err)
		}
	}

	text := p.FullText
	if text == "" && legacy != nil {
		text = legacy.FullText
		if text == "" {
			text = legacy.Text
		}
	}
	if text == "" {
		text = p.Text
	}

	if avatar == "" && user.ProfileImageURL != "" {
		avatar = user.ProfileImageURL
	}

	tweet := &models.Tweet{
		ID:           id,
		AuthorHandle: user.ScreenName,
		AuthorName:   user.Name,
		AuthorAvatar: avatar,
		CreatedAt:    createdAt.UTC(),
		Text:         text,
	}

	if p.Views != nil {
		tweet.Views = int64(p.Views.Count)
	}
	if legacy != nil {
		tweet.Replies = int64(legacy.ReplyCount)
		tweet.Retweets = int64(legacy.RetweetCount)
		tweet.Likes = int64(legacy.FavoriteCount)
		tweet.Bookmarks = int64(legacy.BookmarkCount)
	}

	if ar := articleResultOf(p); ar != nil {
		tweet.Article = parseArticle(ar)
	}

	return tweet, nil
}

func articleResultOf(p *tweetPayload) *articlePayload {
	if p.Article != nil && p.Article.ArticleResults != nil && p.Article.ArticleResults.Result != nil {
		return p.Article.ArticleResults.Result
	}
	if p.ArticleResults != nil && p.ArticleResults.Result != nil {
		return p.ArticleResults.Result
	}
	return nil
}

func parseArticle(a *articlePayload) *models.ArticleRef {
	ref := &models.ArticleRef{
		RestID:      a.RestID,
		Title:       a.Title,
		PreviewText: a.PreviewText,
		URL:         a.URL,
	}
	if ref.RestID == "" {
		ref.RestID = a.ID
	}
	if ref.PreviewText == "" {
		ref.PreviewText = a.Description
	}
	if a.CoverMedia != nil && a.CoverMedia.MediaInfo != nil {
		ref.CoverImageURL = a.CoverMedia.MediaInfo.OriginalImgURL
	}

	blocks := a.ContentState
	if blocks == nil || len(blocks.Blocks) == 0 {
		blocks = a.Content
	}
	if blocks != nil {
		ref.Content = renderBlocks(blocks.Blocks)
		ref.Images, ref.Videos = extractMediaURLs(blocks.Blocks)
	}

	return ref
}

// renderBlocks flattens article blocks into plain text with inline image
// tags so downstream word counting and display both work from one field.
func renderBlocks(blocks []contentBlock) string {
	var parts []string
	for _, b := range blocks {
		if t := strings.TrimSpace(b.Text); t != "" {
			parts = append(parts, t)
		}
		for _, m := range blockMedia(b) {
			if m.Type == "video" {
				continue
			}
			if url := m.bestURL(); url != "" {
				parts = append(parts, fmt.Sprintf(`<img src="%s" alt="Article image" />`, url))
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func extractMediaURLs(blocks []contentBlock) (images, videos []string) {
	seen := make(map[string]bool)
	for _, b := range blocks {
		for _, m := range blockMedia(b) {
			url := m.bestURL()
			if url == "" || seen[url] {
				continue
			}
			seen[url] = true
			if m.Type == "video" {
				videos = append(videos, url)
			} else {
				images = append(images, url)
			}
		}
	}
	return images, videos
}

func blockMedia(b contentBlock) []mediaRef {
	if len(b.Media) > 0 {
		return b.Media
	}
	if b.Entities != nil {
		return b.Entities.Media
	}
	return nil
}
