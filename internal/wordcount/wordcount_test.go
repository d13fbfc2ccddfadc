package wordcount

import "testing"

func TestCount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"whitespace", "   \n\t", 0},
		{"english", "hello world", 2},
		{"punctuation ignored", "hello, world! again.", 3},
		{"cjk counts per character", "你好世界", 4},
		{"mixed", "hello 世界", 3},
		{"html stripped", "<p>hello <b>world</b></p>", 2},
		{"numbers", "version 2 released", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.input); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	s := Analyze("hello 世界")
	if s.Total != 3 || s.CJK != 2 || s.Latin != 1 {
		t.Errorf("Analyze = %+v, want total 3, cjk 2, latin 1", s)
	}
	if s.CJKPercentage != 67 {
		t.Errorf("CJKPercentage = %d, want 67", s.CJKPercentage)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  Language
	}{
		{"", LangUnknown},
		{"plain english text here", LangEnglish},
		{"这是一段纯中文的内容测试", LangChinese},
		{"half english words 一半中文", LangMixed},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.input); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSummaryFor(t *testing.T) {
	if req := SummaryFor(50); !req.Skip {
		t.Error("expected skip for short article")
	}
	if req := SummaryFor(800); req.Skip || req.TargetLength != "100-200 words" {
		t.Errorf("medium article requirement = %+v", req)
	}
	if req := SummaryFor(2000); req.Skip || req.TargetLength != "250-500 words" {
		t.Errorf("long article requirement = %+v", req)
	}
}
