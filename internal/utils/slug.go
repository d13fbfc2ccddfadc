package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify generates a URL-safe slug from a title: lowercase words separated
// by hyphens, accents stripped, limited to 100 characters.
func Slugify(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	decomposed := norm.NFD.String(strings.ToLower(title))

	var b strings.Builder
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// drop accent marks left over from NFD decomposition
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-' || r == '\t' || r == '\n':
			b.WriteByte('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if len(slug) > 100 {
		slug = strings.Trim(slug[:100], "-")
	}
	return slug
}

// ArticleSlug builds a slug preferring the English title when present,
// falling back to the original title. The short tweet-id suffix is always
// appended so the slug stays a permanent lookup key across retitles.
func ArticleSlug(title, titleEnglish, tweetID string) string {
	base := Slugify(titleEnglish)
	if base == "" {
		base = Slugify(title)
	}

	short := ShortID(tweetID)
	if base == "" {
		return "article-" + short
	}
	return base + "--" + short
}

// ShortID returns the first 6 characters of an id with hyphens removed.
// Appended to slugs so renamed articles keep a permanent lookup key.
func ShortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
