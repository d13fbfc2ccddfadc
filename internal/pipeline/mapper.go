package pipeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/classify"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/scoring"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/utils"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/wordcount"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const excerptLimit = 280

// harvestFromTweet normalizes a tweet carrying an article into a validated
// harvest candidate.
func harvestFromTweet(t models.Tweet) (*models.HarvestedArticle, error) {
	if !t.HasArticle() {
		return nil, fmt.Errorf("tweet %s carries no article", t.ID)
	}
	art := t.Article

	url := art.URL
	if url == "" {
		url = fmt.Sprintf("https://x.com/%s/article/%s", t.AuthorHandle, t.ID)
	}

	h := &models.HarvestedArticle{
		ArticleURL:   url,
		Title:        art.Title,
		Excerpt:      art.PreviewText,
		AuthorHandle: t.AuthorHandle,
		AuthorName:   t.AuthorName,
		AuthorAvatar: t.AuthorAvatar,
		TweetID:      t.ID,
		RestID:       art.RestID,
		OriginalURL:  art.URL,
		CreatedAt:    t.CreatedAt,
		TweetText:    t.Text,
		FullContent:  art.Content,
		CoverImage:   art.CoverImageURL,
		Images:       art.Images,
		Videos:       art.Videos,
		Views:        t.Views,
		Replies:      t.Replies,
		Retweets:     t.Retweets,
		Likes:        t.Likes,
		Bookmarks:    t.Bookmarks,
	}

	if err := validate.Struct(h); err != nil {
		return nil, fmt.Errorf("tweet %s failed validation: %w", t.ID, err)
	}
	return h, nil
}

// buildArticle expands a harvest candidate into the persisted form: word
// count, quality score, slug, category, and excerpt.
func buildArticle(h models.HarvestedArticle, classifier *classify.Classifier) models.Article {
	words := wordcount.Count(h.FullContent)
	if words == 0 {
		words = wordcount.Count(h.TweetText)
	}

	score := scoring.Score(scoring.Input{
		Views:     h.Views,
		Likes:     h.Likes,
		Replies:   h.Replies,
		WordCount: words,
	})

	excerpt := h.Excerpt
	if excerpt == "" {
		excerpt = h.TweetText
	}
	excerpt = truncateRunes(excerpt, excerptLimit)

	category := classify.DefaultCategory
	if classifier != nil {
		category, _ = classifier.Classify(h.Title, h.FullContent)
	}

	return models.Article{
		Title:        h.Title,
		Slug:         utils.ArticleSlug(h.Title, "", h.TweetID),
		ArticleURL:   h.ArticleURL,
		AuthorHandle: h.AuthorHandle,
		AuthorName:   h.AuthorName,
		AuthorAvatar: h.AuthorAvatar,
		TweetID:      h.TweetID,
		RestID:       h.RestID,
		TweetText:    h.TweetText,
		FullContent:  h.FullContent,
		Excerpt:      excerpt,
		Image:        h.CoverImage,
		Images:       h.Images,
		Videos:       h.Videos,
		Views:        h.Views,
		Replies:      h.Replies,
		Retweets:     h.Retweets,
		Likes:        h.Likes,
		Bookmarks:    h.Bookmarks,
		WordCount:    words,
		Score:        score,
		Category:     category,
		PublishedAt:  h.CreatedAt,
	}
}

// truncateRunes caps s at limit bytes without splitting a multi-byte rune.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
