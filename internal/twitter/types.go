package twitter

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Metric is an engagement count that the API serves either as a JSON number
// or as an abbreviated string like "1.2k" or "3.4M".
type Metric int64

func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Metric(parseAbbreviated(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = Metric(n)
	return nil
}

func parseAbbreviated(s string) int64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'k':
		multiplier, s = 1_000, s[:len(s)-1]
	case 'm':
		multiplier, s = 1_000_000, s[:len(s)-1]
	case 'b':
		multiplier, s = 1_000_000_000, s[:len(s)-1]
	}

	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(v * float64(multiplier))
}

// The timeline payload is a deeply nested instruction/entry tree with many
// optional branches. Each optional branch is an explicit pointer field so the
// parser can report exactly which required pieces were missing instead of
// chasing nil chains inline.

type timelineResponse struct {
	Data struct {
		List struct {
			TweetsTimeline struct {
				Timeline timelinePayload `json:"timeline"`
			} `json:"tweets_timeline"`
		} `json:"list"`
	} `json:"data"`
}

type timelinePayload struct {
	Instructions []instruction `json:"instructions"`
}

type instruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
}

type timelineEntry struct {
	EntryID string       `json:"entryId"`
	Content entryContent `json:"content"`
}

type entryContent struct {
	EntryType   string       `json:"entryType"`
	ItemContent *itemContent `json:"itemContent"`

	// Cursor entries only.
	Value      string `json:"value"`
	CursorType string `json:"cursorType"`
}

type itemContent struct {
	ItemType     string `json:"itemType"`
	TweetResults struct {
		Result *tweetPayload `json:"result"`
	} `json:"tweet_results"`
}

// detailResponse is the single-tweet endpoint payload. The tweet may appear
// under result.tweetResult or inside a threaded-conversation instruction
// tree depending on the upstream API version.
type detailResponse struct {
	Result *struct {
		TweetResult *struct {
			Result *tweetPayload `json:"result"`
		} `json:"tweetResult"`
		TweetResults *struct {
			Result *tweetPayload `json:"result"`
		} `json:"tweet_results"`
	} `json:"result"`
	Data *struct {
		ThreadedConversation *struct {
			Instructions []struct {
				Type    string `json:"type"`
				Entries []struct {
					Content struct {
						ItemContent *itemContent `json:"itemContent"`
					} `json:"content"`
				} `json:"entries"`
			} `json:"instructions"`
		} `json:"threaded_conversation_with_injections_v2"`
	} `json:"data"`
}

type tweetPayload struct {
	IDStr     string `json:"id_str"`
	RestID    string `json:"rest_id"`
	FullText  string `json:"full_text"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`

	Core *struct {
		UserResults struct {
			Result *userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	User   *userPayload   `json:"user"`
	Legacy *legacyPayload `json:"legacy"`

	Views *struct {
		Count Metric `json:"count"`
	} `json:"views"`

	Article *struct {
		ArticleResults *articleResults `json:"article_results"`
	} `json:"article"`
	ArticleResults *articleResults `json:"article_results"`
}

type legacyPayload struct {
	IDStr         string       `json:"id_str"`
	CreatedAt     string       `json:"created_at"`
	FullText      string       `json:"full_text"`
	Text          string       `json:"text"`
	ReplyCount    Metric       `json:"reply_count"`
	RetweetCount  Metric       `json:"retweet_count"`
	FavoriteCount Metric       `json:"favorite_count"`
	BookmarkCount Metric       `json:"bookmark_count"`
	User          *userPayload `json:"user"`
}

type userResult struct {
	Legacy *userPayload `json:"legacy"`
	Core   *userPayload `json:"core"`
	Avatar *struct {
		ImageURL string `json:"image_url"`
	} `json:"avatar"`
}

type userPayload struct {
	ScreenName      string `json:"screen_name"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url_https"`
}

type articleResults struct {
	Result *articlePayload `json:"result"`
}

type articlePayload struct {
	RestID      string `json:"rest_id"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	PreviewText string `json:"preview_text"`
	Description string `json:"description"`
	URL         string `json:"url"`

	CoverMedia *struct {
		MediaInfo *struct {
			OriginalImgURL string `json:"original_img_url"`
		} `json:"media_info"`
	} `json:"cover_media"`

	ContentState *blockContainer `json:"content_state"`
	Content      *blockContainer `json:"content"`
}

type blockContainer struct {
	Blocks []contentBlock `json:"blocks"`
}

type contentBlock struct {
	Text     string         `json:"text"`
	Media    []mediaRef     `json:"media"`
	Entities *blockEntities `json:"entities"`
}

type blockEntities struct {
	Media []mediaRef `json:"media"`
	URLs  []urlRef   `json:"urls"`
}

type mediaRef struct {
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	MediaURL      string `json:"media_url"`
	URL           string `json:"url"`
	ExpandedURL   string `json:"expanded_url"`
}

type urlRef struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
}

func (m mediaRef) bestURL() string {
	switch {
	case m.MediaURLHTTPS != "":
		return m.MediaURLHTTPS
	case m.MediaURL != "":
		return m.MediaURL
	case m.URL != "":
		return m.URL
	default:
		return m.ExpandedURL
	}
}
