package models

import "time"

// Tweet is a single feed entry as parsed from the list timeline API. It is
// never persisted directly; tweets that carry an article reference are mapped
// into HarvestedArticle by the extract step.
type Tweet struct {
	ID           string    `json:"id"`
	AuthorHandle string    `json:"author_handle"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Text         string    `json:"text"`

	Views     int64 `json:"views"`
	Replies   int64 `json:"replies"`
	Retweets  int64 `json:"retweets"`
	Likes     int64 `json:"likes"`
	Bookmarks int64 `json:"bookmarks"`

	// Article is set when the tweet embeds a long-form article.
	Article *ArticleRef `json:"article,omitempty"`
}

// HasArticle reports whether the tweet references a long-form article.
func (t Tweet) HasArticle() bool {
	return t.Article != nil
}

// ArticleRef is the embedded long-form content attached to a tweet.
type ArticleRef struct {
	RestID        string   `json:"rest_id"`
	Title         string   `json:"title,omitempty"`
	PreviewText   string   `json:"preview_text,omitempty"`
	URL           string   `json:"url,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	Content       string   `json:"content,omitempty"`
	Images        []string `json:"images,omitempty"`
	Videos        []string `json:"videos,omitempty"`
}
