package models

import "time"

// HarvestedArticle is a validated, normalized article candidate extracted
// from a tweet. Records that fail validation are dropped before persistence.
type HarvestedArticle struct {
	ArticleURL   string    `json:"article_url" validate:"required,url"`
	Title        string    `json:"title" validate:"required"`
	Excerpt      string    `json:"excerpt,omitempty"`
	AuthorHandle string    `json:"author_handle" validate:"required"`
	AuthorName   string    `json:"author_name,omitempty"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	TweetID      string    `json:"tweet_id" validate:"required"`
	RestID       string    `json:"rest_id,omitempty"`
	OriginalURL  string    `json:"original_url,omitempty"`
	CreatedAt    time.Time `json:"created_at" validate:"required"`
	TweetText    string    `json:"tweet_text,omitempty"`
	FullContent  string    `json:"full_content,omitempty"`
	CoverImage   string    `json:"cover_image,omitempty"`
	Images       []string  `json:"images,omitempty"`
	Videos       []string  `json:"videos,omitempty"`

	Views     int64 `json:"views" validate:"gte=0"`
	Replies   int64 `json:"replies" validate:"gte=0"`
	Retweets  int64 `json:"retweets" validate:"gte=0"`
	Likes     int64 `json:"likes" validate:"gte=0"`
	Bookmarks int64 `json:"bookmarks" validate:"gte=0"`
}

// Article is the persisted, scored, indexable form of a harvested record.
// One row per (title, article_url); re-ingesting the same tweet updates it.
type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	ArticleURL   string    `json:"article_url"`
	AuthorHandle string    `json:"author_handle"`
	AuthorName   string    `json:"author_name,omitempty"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	TweetID      string    `json:"tweet_id"`
	RestID       string    `json:"rest_id,omitempty"`
	TweetText    string    `json:"tweet_text,omitempty"`
	FullContent  string    `json:"full_content,omitempty"`
	Excerpt      string    `json:"excerpt,omitempty"`
	Image        string    `json:"image,omitempty"`
	Images       []string  `json:"images,omitempty"`
	Videos       []string  `json:"videos,omitempty"`
	Views        int64     `json:"views"`
	Replies      int64     `json:"replies"`
	Retweets     int64     `json:"retweets"`
	Likes        int64     `json:"likes"`
	Bookmarks    int64     `json:"bookmarks"`
	WordCount    int       `json:"word_count"`
	Score        int       `json:"score"`
	Indexed      bool      `json:"indexed"`
	Category     string    `json:"category,omitempty"`
	TitleEnglish string    `json:"title_english,omitempty"`
	SummaryEN    string    `json:"summary_english,omitempty"`
	SummaryZH    string    `json:"summary_chinese,omitempty"`
	SummarizedAt time.Time `json:"summary_generated_at,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasSummary reports whether a synopsis has been generated for the article.
func (a Article) HasSummary() bool {
	return a.SummaryEN != "" || a.SummaryZH != ""
}

// Source is an active collection of accounts whose timeline is harvested.
type Source struct {
	ListID        string    `json:"list_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Active        bool      `json:"active"`
	LastScannedAt time.Time `json:"last_scanned_at,omitempty"`
	ArticlesFound int       `json:"articles_found"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BatchResult aggregates the outcome of a batch upsert.
type BatchResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Deleted  int `json:"deleted"`
}
