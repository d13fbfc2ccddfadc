package indexing

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/store"
)

func testConfig() Config {
	return Config{
		MinScore:    65,
		MinWords:    200,
		MinIndexed:  5,
		MaxIndexed:  7,
		MaxDailyNew: 10,
		Lookback:    24 * time.Hour,
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store, n int, score int, indexed bool, publishedAt time.Time) models.Article {
	t.Helper()
	a := models.Article{
		Title:        fmt.Sprintf("Article %d", n),
		Slug:         fmt.Sprintf("article-%d", n),
		ArticleURL:   fmt.Sprintf("https://x.com/u/article/%d", n),
		AuthorHandle: "writer",
		TweetID:      fmt.Sprintf("%d", 1000+n),
		WordCount:    500,
		Score:        score,
		Indexed:      indexed,
		PublishedAt:  publishedAt,
	}
	if err := s.Insert(context.Background(), &a); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return a
}

func TestRebuildTopN(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	adj := NewAdjuster(s, testConfig())

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 8; i++ {
		// Scores 65..100; some rows pre-indexed to prove the rebuild
		// overrides prior state.
		seed(t, s, i, 65+i*5, i%2 == 0, base)
	}

	change, err := adj.RebuildTopN(ctx, 5)
	if err != nil {
		t.Fatalf("RebuildTopN: %v", err)
	}
	if change.Total != 5 {
		t.Errorf("Total = %d, want 5", change.Total)
	}

	count, _ := s.CountIndexed(ctx)
	if count != 5 {
		t.Errorf("CountIndexed = %d, want exactly 5", count)
	}

	indexed, _ := s.ListIndexed(ctx)
	for _, a := range indexed {
		if a.Score < 80 {
			t.Errorf("score %d made the top set, cutoff should be 80", a.Score)
		}
	}

	// Idempotent on rerun.
	change2, err := adj.RebuildTopN(ctx, 5)
	if err != nil {
		t.Fatalf("second RebuildTopN: %v", err)
	}
	if change2.Total != 5 {
		t.Errorf("second Total = %d", change2.Total)
	}
}

func TestRebuildTopNRespectsWordFloor(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	adj := NewAdjuster(s, testConfig())

	a := seed(t, s, 1, 95, false, time.Now().UTC())
	thin := models.Article{
		Title: "Thin", Slug: "thin", ArticleURL: "https://x.com/u/article/thin",
		AuthorHandle: "writer", TweetID: "42", WordCount: 50, Score: 99,
		PublishedAt: time.Now().UTC(),
	}
	if err := s.Insert(ctx, &thin); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	change, err := adj.RebuildTopN(ctx, 5)
	if err != nil {
		t.Fatalf("RebuildTopN: %v", err)
	}
	if len(change.Promoted) != 1 || change.Promoted[0] != a.ID {
		t.Errorf("Promoted = %v, want only the full-length article", change.Promoted)
	}
}

func TestEnforceQuotaPromotesToFloor(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	adj := NewAdjuster(s, testConfig())

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		seed(t, s, i, 80, true, base)
	}
	archiveHigh := seed(t, s, 10, 75, false, base)
	archiveLow := seed(t, s, 11, 68, false, base)
	seed(t, s, 12, 40, false, base) // under the score floor

	change, err := adj.EnforceQuota(ctx)
	if err != nil {
		t.Fatalf("EnforceQuota: %v", err)
	}
	if len(change.Promoted) != 2 {
		t.Fatalf("Promoted = %v, want 2", change.Promoted)
	}
	if change.Promoted[0] != archiveHigh.ID || change.Promoted[1] != archiveLow.ID {
		t.Errorf("promotion order = %v, want best first", change.Promoted)
	}
	if change.Total != 5 {
		t.Errorf("Total = %d, want 5", change.Total)
	}

	// The previously indexed articles stay indexed.
	count, _ := s.CountIndexed(ctx)
	if count != 5 {
		t.Errorf("CountIndexed = %d", count)
	}
}

func TestEnforceQuotaDemotesAboveCeiling(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	adj := NewAdjuster(s, testConfig())

	base := time.Now().UTC()
	var worst models.Article
	for i := 0; i < 9; i++ {
		a := seed(t, s, i, 70+i, true, base)
		if i == 0 {
			worst = a
		}
	}

	change, err := adj.EnforceQuota(ctx)
	if err != nil {
		t.Fatalf("EnforceQuota: %v", err)
	}
	if len(change.Demoted) != 2 {
		t.Fatalf("Demoted = %v, want 2", change.Demoted)
	}
	if change.Demoted[0] != worst.ID {
		t.Errorf("worst article %s not demoted first: %v", worst.ID, change.Demoted)
	}
	if change.Total != 7 {
		t.Errorf("Total = %d, want 7", change.Total)
	}
}

func TestEnforceQuotaArchiveExhausted(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	adj := NewAdjuster(s, testConfig())

	seed(t, s, 1, 80, true, time.Now().UTC())

	change, err := adj.EnforceQuota(ctx)
	if err != nil {
		t.Fatalf("EnforceQuota: %v", err)
	}
	if len(change.Promoted) != 0 {
		t.Errorf("Promoted = %v, archive is empty", change.Promoted)
	}
	if change.Total != 1 {
		t.Errorf("Total = %d, want 1", change.Total)
	}
}

func TestPromoteRecent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	adj := NewAdjuster(s, testConfig())

	fresh := seed(t, s, 1, 80, false, time.Now().UTC().Add(-2*time.Hour))
	seed(t, s, 2, 80, false, time.Now().UTC().Add(-48*time.Hour)) // outside lookback
	seed(t, s, 3, 40, false, time.Now().UTC().Add(-time.Hour))    // under score floor

	change, err := adj.PromoteRecent(ctx)
	if err != nil {
		t.Fatalf("PromoteRecent: %v", err)
	}
	if len(change.Promoted) != 1 || change.Promoted[0] != fresh.ID {
		t.Errorf("Promoted = %v, want only the fresh qualifying article", change.Promoted)
	}
	if len(change.Demoted) != 0 {
		t.Errorf("PromoteRecent demoted articles: %v", change.Demoted)
	}
}
