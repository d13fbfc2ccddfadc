// Package scoring maps engagement metrics and content length to a single
// 0-100 quality score. Pure functions, no side effects; the persist step
// recomputes the score on every ingest.
package scoring

import (
	"math"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/wordcount"
)

// Metric weights. Views dominate, content length keeps engagement-only
// posts from ranking above real articles.
const (
	weightViews   = 0.35
	weightLikes   = 0.30
	weightReplies = 0.20
	weightWords   = 0.15

	// summaryBonus rewards articles that have both substantial length and a
	// generated synopsis.
	summaryBonus  = 5
	bonusMinWords = 500
)

// Input carries everything the score depends on.
type Input struct {
	Views      int64
	Likes      int64
	Replies    int64
	WordCount  int
	HasSummary bool
}

// Score computes the quality score, clamped to [0,100] and rounded to an
// integer. All-zero input scores 0.
func Score(in Input) int {
	// Saturating log curves: 100K views ~ 60 points, 1M ~ 90.
	viewsScore := logCurve(in.Views, 20)
	// 1K likes ~ 60 points, 10K ~ 80.
	likesScore := logCurve(in.Likes, 25)
	// 50 replies ~ 60 points, 200 ~ 75.
	repliesScore := logCurve(in.Replies, 30)

	wordsScore := wordBand(in.WordCount)

	total := viewsScore*weightViews +
		likesScore*weightLikes +
		repliesScore*weightReplies +
		wordsScore*weightWords

	if in.HasSummary && in.WordCount >= bonusMinWords {
		total += summaryBonus
	}

	return clamp(int(math.Round(total)))
}

// ScoreContent is Score with the word count derived from the content body.
func ScoreContent(views, likes, replies int64, content string, hasSummary bool) int {
	return Score(Input{
		Views:      views,
		Likes:      likes,
		Replies:    replies,
		WordCount:  wordcount.Count(content),
		HasSummary: hasSummary,
	})
}

// Indexable reports whether an article qualifies for the trending set. The
// score threshold and the word-count gate are independent checks; a long
// low-score article fails just like a short high-score one.
func Indexable(score, wordCount, minScore, minWords int) bool {
	return score >= minScore && wordCount >= minWords
}

func logCurve(x int64, k float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Min(math.Log10(float64(x)+1)*k, 100)
}

// wordBand is a piecewise curve over word-count bands: near-zero below 200
// words, rising through the 200-500 and 500-1500 bands, saturating at 100
// past 2000.
func wordBand(words int) float64 {
	w := float64(words)
	switch {
	case words < 200:
		return 0
	case words <= 500:
		return (w - 200) / 300 * 40
	case words <= 1500:
		return 40 + (w-500)/1000*40
	default:
		return 80 + math.Min((w-1500)/500*20, 20)
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
