// Package wordcount counts words in multilingual content. CJK ideographs
// count as one word each; Latin text is segmented per UAX #29 word
// boundaries. Both feed the scoring bands and the summary-length decision.
package wordcount

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// Count returns the word count of text. HTML tags are stripped first.
func Count(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	clean := htmlTagRe.ReplaceAllString(text, " ")

	total := 0
	tokens := words.FromString(clean)
	for tokens.Next() {
		if wordlike(tokens.Value()) {
			total++
		}
	}
	return total
}

// Stats describes the language composition of a text.
type Stats struct {
	Total         int
	CJK           int
	Latin         int
	CJKPercentage int
}

// Analyze returns word counts split by script.
func Analyze(text string) Stats {
	if strings.TrimSpace(text) == "" {
		return Stats{}
	}

	clean := htmlTagRe.ReplaceAllString(text, " ")

	var s Stats
	tokens := words.FromString(clean)
	for tokens.Next() {
		token := tokens.Value()
		if !wordlike(token) {
			continue
		}
		s.Total++
		if isCJK(token) {
			s.CJK++
		} else {
			s.Latin++
		}
	}
	if s.Total > 0 {
		s.CJKPercentage = int(float64(s.CJK)/float64(s.Total)*100 + 0.5)
	}
	return s
}

// Language is the detected primary language of a text.
type Language string

const (
	LangChinese Language = "zh"
	LangEnglish Language = "en"
	LangMixed   Language = "mixed"
	LangUnknown Language = "unknown"
)

// DetectLanguage classifies text by its CJK-to-total word ratio.
func DetectLanguage(text string) Language {
	s := Analyze(text)
	switch {
	case s.Total == 0:
		return LangUnknown
	case s.CJKPercentage > 70:
		return LangChinese
	case s.CJKPercentage < 30:
		return LangEnglish
	default:
		return LangMixed
	}
}

// SummaryRequirement decides whether and how long a synopsis should be.
type SummaryRequirement struct {
	Skip         bool
	TargetLength string
}

// SummaryFor maps a word count to the synopsis policy: articles under 100
// words get no synopsis at all.
func SummaryFor(wordCount int) SummaryRequirement {
	switch {
	case wordCount < 100:
		return SummaryRequirement{Skip: true}
	case wordCount <= 1500:
		return SummaryRequirement{TargetLength: "100-200 words"}
	default:
		return SummaryRequirement{TargetLength: "250-500 words"}
	}
}

// wordlike reports whether a segment carries word content rather than
// whitespace or punctuation.
func wordlike(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isCJK(token string) bool {
	for _, r := range token {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
