package scoring

import (
	"strings"
	"testing"
)

func TestScoreZeroInput(t *testing.T) {
	if got := Score(Input{}); got != 0 {
		t.Errorf("Score(zero) = %d, want 0", got)
	}
}

func TestScoreRange(t *testing.T) {
	inputs := []Input{
		{},
		{Views: 1, Likes: 1, Replies: 1, WordCount: 1},
		{Views: 10_000, WordCount: 500},
		{Views: 1e9, Likes: 1e9, Replies: 1e9, WordCount: 100_000, HasSummary: true},
	}
	for _, in := range inputs {
		got := Score(in)
		if got < 0 || got > 100 {
			t.Errorf("Score(%+v) = %d, out of [0,100]", in, got)
		}
	}
}

func TestScoreMonotonic(t *testing.T) {
	base := Input{Views: 1000, Likes: 100, Replies: 10, WordCount: 400}
	baseScore := Score(base)

	variants := []struct {
		name string
		in   Input
	}{
		{"views", Input{Views: 100_000, Likes: 100, Replies: 10, WordCount: 400}},
		{"likes", Input{Views: 1000, Likes: 10_000, Replies: 10, WordCount: 400}},
		{"replies", Input{Views: 1000, Likes: 100, Replies: 500, WordCount: 400}},
		{"words", Input{Views: 1000, Likes: 100, Replies: 10, WordCount: 1400}},
	}
	for _, v := range variants {
		if got := Score(v.in); got < baseScore {
			t.Errorf("%s: Score = %d, want >= %d (non-decreasing in each metric)", v.name, got, baseScore)
		}
	}
}

func TestScoreSummaryBonus(t *testing.T) {
	in := Input{Views: 10_000, Likes: 500, Replies: 20, WordCount: 800}
	without := Score(in)
	in.HasSummary = true
	with := Score(in)
	if with != without+5 {
		t.Errorf("summary bonus: %d -> %d, want +5", without, with)
	}

	// Bonus requires the length gate too.
	short := Input{Views: 10_000, WordCount: 300}
	shortBase := Score(short)
	short.HasSummary = true
	if got := Score(short); got != shortBase {
		t.Errorf("short article got summary bonus: %d -> %d", shortBase, got)
	}
}

func TestScoreContent(t *testing.T) {
	content := strings.Repeat("word ", 500)
	got := ScoreContent(10_000, 0, 0, content, false)
	if got <= 0 {
		t.Errorf("ScoreContent = %d, want > 0", got)
	}
}

func TestIndexable(t *testing.T) {
	tests := []struct {
		name             string
		score, wordCount int
		want             bool
	}{
		{"both pass", 70, 300, true},
		{"score fails", 60, 300, false},
		{"words fail", 70, 100, false},
		{"both fail", 10, 10, false},
		{"boundaries", 65, 200, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Indexable(tt.score, tt.wordCount, 65, 200); got != tt.want {
				t.Errorf("Indexable(%d, %d) = %v, want %v", tt.score, tt.wordCount, got, tt.want)
			}
		})
	}
}
