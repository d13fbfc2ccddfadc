package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/retry"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{
		APIKey:          "test-key",
		APIHost:         "example.test",
		Timeout:         5 * time.Second,
		RequestInterval: time.Millisecond,
		MaxPages:        3,
		RetryPolicy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			MaxDelay:    10 * time.Millisecond,
			Retryable:   retry.DefaultRetryable,
		},
	})
	c.http.SetBaseURL(srv.URL)
	t.Cleanup(c.Close)
	return c
}

func timelineBody(ids []string, cursor string) string {
	var entries []string
	for _, id := range ids {
		entries = append(entries, `{
		  "entryId": "tweet-`+id+`",
		  "content": {
		    "entryType": "TimelineTimelineItem",
		    "itemContent": {
		      "itemType": "TimelineTweet",
		      "tweet_results": {"result": {
		        "rest_id": "`+id+`",
		        "core": {"user_results": {"result": {"legacy": {"screen_name": "u`+id+`"}}}},
		        "legacy": {"created_at": "Wed Oct 10 20:19:24 +0000 2018", "full_text": "t"}
		      }}
		    }
		  }
		}`)
	}
	if cursor != "" {
		entries = append(entries, `{
		  "entryId": "cursor-bottom-1",
		  "content": {"entryType": "TimelineTimelineCursor", "cursorType": "Bottom", "value": "`+cursor+`"}
		}`)
	}
	return `{"data":{"list":{"tweets_timeline":{"timeline":{"instructions":[
	  {"type":"TimelineAddEntries","entries":[` + strings.Join(entries, ",") + `]}
	]}}}}}`
}

func TestFetchAllListPagesFollowsCursors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-rapidapi-key"); got != "test-key" {
			t.Errorf("x-rapidapi-key = %q", got)
		}
		switch r.URL.Query().Get("cursor") {
		case "":
			w.Write([]byte(timelineBody([]string{"1", "2"}, "C1")))
		case "C1":
			w.Write([]byte(timelineBody([]string{"3"}, "")))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))

	tweets, err := client.FetchAllListPages(context.Background(), "777")
	if err != nil {
		t.Fatalf("FetchAllListPages: %v", err)
	}
	if len(tweets) != 3 {
		t.Fatalf("got %d tweets, want 3", len(tweets))
	}
}

func TestFetchAllListPagesStopsOnRepeatedCursor(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(timelineBody([]string{"1"}, "SAME")))
	}))

	tweets, err := client.FetchAllListPages(context.Background(), "777")
	if err != nil {
		t.Fatalf("FetchAllListPages: %v", err)
	}
	// Page 1 returns SAME, page 2 returns SAME again and the walk stops.
	if got := calls.Load(); got != 2 {
		t.Errorf("made %d requests, want 2", got)
	}
	if len(tweets) != 2 {
		t.Errorf("got %d tweets, want 2", len(tweets))
	}
}

func TestFetchAllListPagesDegradesOnLaterPageError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "" {
			w.Write([]byte(timelineBody([]string{"1"}, "C1")))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))

	tweets, err := client.FetchAllListPages(context.Background(), "777")
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(tweets) != 1 {
		t.Errorf("got %d tweets, want 1 from the surviving first page", len(tweets))
	}
}

func TestFetchAllListPagesFirstPageErrorFails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	if _, err := client.FetchAllListPages(context.Background(), "777"); err == nil {
		t.Fatal("expected error on first-page failure")
	}
}

func TestFetchListTimelineRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(timelineBody([]string{"9"}, "")))
	}))

	page, err := client.FetchListTimeline(context.Background(), "777", "")
	if err != nil {
		t.Fatalf("FetchListTimeline: %v", err)
	}
	if len(page.Tweets) != 1 {
		t.Errorf("got %d tweets, want 1", len(page.Tweets))
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("made %d requests, want 2", got)
	}
}

func TestFetchTweetNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	tweet, err := client.FetchTweet(context.Background(), "123")
	if err != nil {
		t.Fatalf("FetchTweet: %v", err)
	}
	if tweet != nil {
		t.Errorf("expected nil for missing tweet, got %+v", tweet)
	}
}

func TestFetchTweet(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pid"); got != "55" {
			t.Errorf("pid = %q", got)
		}
		w.Write([]byte(`{"result":{"tweetResult":{"result":{
		  "rest_id": "55",
		  "core": {"user_results": {"result": {"legacy": {"screen_name": "author"}}}},
		  "legacy": {"created_at": "Mon Jan 6 08:00:00 +0000 2025", "full_text": "hi"}
		}}}}`))
	}))

	tweet, err := client.FetchTweet(context.Background(), "55")
	if err != nil {
		t.Fatalf("FetchTweet: %v", err)
	}
	if tweet == nil || tweet.ID != "55" {
		t.Fatalf("tweet = %+v", tweet)
	}
}
