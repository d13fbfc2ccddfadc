package ai

import (
	"fmt"
	"strings"
)

func englishAnalysisPrompt(title, content, targetLength string, translateTitle bool, categories []string) string {
	var b strings.Builder
	b.WriteString("Analyze this article and respond in English only.\n\n")
	fmt.Fprintf(&b, "TITLE: %s\n\n", strings.TrimSpace(title))
	fmt.Fprintf(&b, "CONTENT:\n%s\n\n", truncate(content, maxPromptContent))
	b.WriteString("Respond in this exact format:\n")
	if translateTitle {
		b.WriteString("TITLE_ENGLISH: [English translation of the title]\n")
	}
	if len(categories) > 0 {
		fmt.Fprintf(&b, "CATEGORY: [up to 3 comma-separated tags, chosen only from: %s]\n", strings.Join(categories, ", "))
	}
	fmt.Fprintf(&b, "SUMMARY: [%s summary in English covering the main topic, key insights, and conclusion]\n", targetLength)
	b.WriteString("\nDo NOT use placeholder phrases like \"not provided\" or \"not available\". Do NOT add headings, labels, or asterisks inside the summary.")
	return b.String()
}

func translationPrompt(summaryEnglish string) string {
	return fmt.Sprintf("将以下英文摘要翻译成中文，只输出中文翻译，不要有任何英文：\n\n%s", summaryEnglish)
}

// parseAnalysis extracts the labeled fields from a model response. A title
// translation that still contains Chinese falls back to the original title.
func parseAnalysis(text, originalTitle string, translateTitle bool) *Analysis {
	a := &Analysis{TitleEnglish: originalTitle}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "TITLE_ENGLISH:"):
			if translateTitle {
				if t := CleanSummary(strings.TrimPrefix(line, "TITLE_ENGLISH:")); t != "" && !containsHan(t) {
					a.TitleEnglish = t
				}
			}
		case strings.HasPrefix(line, "CATEGORY:"):
			for _, tag := range strings.Split(strings.TrimPrefix(line, "CATEGORY:"), ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					a.Categories = append(a.Categories, tag)
				}
			}
		case strings.HasPrefix(line, "SUMMARY:"):
			a.SummaryEnglish = CleanSummary(strings.TrimPrefix(line, "SUMMARY:"))
		}
	}

	// Multi-line summaries leave the label on its own line or spill past it.
	if a.SummaryEnglish == "" {
		if idx := strings.Index(text, "SUMMARY:"); idx != -1 {
			a.SummaryEnglish = CleanSummary(text[idx+len("SUMMARY:"):])
		}
	}

	return a
}

func containsHan(s string) bool {
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}
