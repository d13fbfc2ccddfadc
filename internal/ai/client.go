package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/wordcount"
)

const maxPromptContent = 8000

// Analysis is the generated enrichment for one article.
type Analysis struct {
	TitleEnglish   string
	SummaryEnglish string
	SummaryChinese string
	Categories     []string
	Skipped        bool
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Categories constrains the CATEGORY line of the analysis response.
	// Empty means the model is not asked to categorize.
	Categories []string
}

// Client talks to an OpenAI-compatible chat completions endpoint to produce
// English summaries, title translations, and Chinese renditions of the
// English summary. Every request consumes one unit of the daily budget.
type Client struct {
	http       *resty.Client
	model      string
	categories []string
	budget     *Budget
	log        zerolog.Logger
}

func NewClient(cfg ClientConfig, budget *Budget) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetRetryCount(0).
			SetAuthToken(cfg.APIKey).
			SetHeader("Content-Type", "application/json"),
		model:      cfg.Model,
		categories: cfg.Categories,
		budget:     budget,
		log:        logger.With("ai"),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze summarizes an article in English and translates the summary to
// Chinese. Articles under the minimum word count are skipped without
// spending budget. The title is translated only when it is not already
// English.
func (c *Client) Analyze(ctx context.Context, title, content string) (*Analysis, error) {
	req := wordcount.SummaryFor(wordcount.Count(content))
	if req.Skip {
		c.log.Debug().Str("title", title).Msg("Content too short, skipping summary")
		return &Analysis{TitleEnglish: title, Skipped: true}, nil
	}

	needsTitleTranslation := wordcount.DetectLanguage(title) != wordcount.LangEnglish

	raw, err := c.complete(ctx, englishAnalysisPrompt(title, content, req.TargetLength, needsTitleTranslation, c.categories), 2000)
	if err != nil {
		return nil, fmt.Errorf("generating analysis: %w", err)
	}

	analysis := parseAnalysis(raw, title, needsTitleTranslation)
	if analysis.SummaryEnglish == "" {
		return nil, fmt.Errorf("response for %q carried no usable summary", title)
	}

	zh, err := c.complete(ctx, translationPrompt(analysis.SummaryEnglish), 2000)
	if err != nil {
		return nil, fmt.Errorf("translating summary: %w", err)
	}
	analysis.SummaryChinese = CleanSummary(zh)

	return analysis, nil
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := c.budget.Reserve(); err != nil {
		return "", err
	}

	var resp chatResponse
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Temperature: 0.3,
			MaxTokens:   maxTokens,
		}).
		SetResult(&resp).
		SetError(&resp).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("chat API error: %s", resp.Error.Message)
	}
	if httpResp.IsError() {
		return "", fmt.Errorf("chat API returned %s", httpResp.Status())
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat response carried no content")
	}
	return resp.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
