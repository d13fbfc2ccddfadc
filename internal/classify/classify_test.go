package classify

import "testing"

func TestClassify(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name    string
		title   string
		content string
		want    string
	}{
		{
			name:    "ai article",
			title:   "Training an LLM from scratch",
			content: "We fine-tuned a transformer model on inference workloads using deep learning.",
			want:    "AI",
		},
		{
			name:    "crypto article",
			title:   "The state of DeFi",
			content: "Ethereum staking and stablecoin flows on blockchain rails.",
			want:    "Crypto",
		},
		{
			name:    "security article",
			title:   "Anatomy of a breach",
			content: "The vulnerability let attackers deploy ransomware after the initial phishing wave.",
			want:    "Security",
		},
		{
			name:    "no match falls back",
			title:   "Musings",
			content: "Some words entirely outside the rule vocabulary.",
			want:    DefaultCategory,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, conf := c.Classify(tc.title, tc.content)
			if got != tc.want {
				t.Errorf("Classify = %q (conf %.2f), want %q", got, conf, tc.want)
			}
			if tc.want != DefaultCategory && conf <= 0 {
				t.Errorf("confidence = %.2f, want > 0", conf)
			}
		})
	}
}

func TestCategoriesNonEmpty(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(c.Categories()) < 10 {
		t.Errorf("rule table unexpectedly small: %d", len(c.Categories()))
	}
}
