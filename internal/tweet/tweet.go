// Package tweet provides the raw post types consumed by the extraction
// engine.
package tweet

import (
	"encoding/json"
	"strconv"
	"time"
)

// FlexInt64 handles JSON fields that can be either string or number.
// Twitter payloads carry both "id" and "id_str" variants depending on the
// API era.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	// Try as number first
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*f = FlexInt64(i)
		return nil
	}

	// Try as string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil // Silently ignore unparseable IDs
		}
		*f = FlexInt64(i)
		return nil
	}

	*f = 0
	return nil
}

// createdAtLayout is the legacy timeline timestamp format,
// e.g. "Wed Aug 27 20:05:00 +0000 2019".
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Tweet represents one retrieved post with the metadata the extraction
// engine consumes. Immutable once retrieved.
type Tweet struct {
	ID        FlexInt64 `json:"id"`
	CreatedAt string    `json:"created_at"`

	// FullText is populated in extended mode; Text in older payloads.
	FullText string `json:"full_text,omitempty"`
	Text     string `json:"text,omitempty"`

	InReplyToStatusID   FlexInt64 `json:"in_reply_to_status_id"`
	InReplyToScreenName string    `json:"in_reply_to_screen_name,omitempty"`
	IsQuoteStatus       bool      `json:"is_quote_status"`

	// RetweetedStatus is present when the post is a reshare. The nested
	// content is never parsed; its presence alone excludes the post.
	RetweetedStatus json.RawMessage `json:"retweeted_status,omitempty"`

	RetweetCount  int64 `json:"retweet_count"`
	FavoriteCount int64 `json:"favorite_count"`

	Entities Entities `json:"entities"`
}

// Entities holds the structured entities attached to a post.
type Entities struct {
	UserMentions []Mention `json:"user_mentions"`
	URLs         []URL     `json:"urls"`
}

// Mention is one mentioned account.
type Mention struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

// URL is one embedded link.
type URL struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url,omitempty"`
}

// Body returns the post's text body regardless of payload era.
func (t *Tweet) Body() string {
	if t.FullText != "" {
		return t.FullText
	}
	return t.Text
}

// Created parses the post's creation timestamp. The legacy timeline format
// is tried first, then RFC 3339 for v2-era payloads.
func (t *Tweet) Created() (time.Time, error) {
	if ts, err := time.Parse(createdAtLayout, t.CreatedAt); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, t.CreatedAt)
}

// IsReply reports whether the post replies to another post.
func (t *Tweet) IsReply() bool {
	return t.InReplyToStatusID != 0 || t.InReplyToScreenName != ""
}

// IsRetweet reports whether the post is a reshare of another post.
func (t *Tweet) IsRetweet() bool {
	return len(t.RetweetedStatus) > 0
}

// FirstMention returns the handle and display name of the first mentioned
// account, which the posting template uses for the team.
func (t *Tweet) FirstMention() (screenName, name string, ok bool) {
	if len(t.Entities.UserMentions) == 0 {
		return "", "", false
	}
	m := t.Entities.UserMentions[0]
	return m.ScreenName, m.Name, true
}

// FirstLink returns the first embedded link (the flight-tracking URL).
func (t *Tweet) FirstLink() (string, bool) {
	if len(t.Entities.URLs) == 0 {
		return "", false
	}
	return t.Entities.URLs[0].URL, true
}

// FeedWrapper represents the live feed message format where the tweet is
// nested inside a "tweet" field with source metadata at the top level.
type FeedWrapper struct {
	Source *FeedSource `json:"source,omitempty"`
	Tweet  *Tweet      `json:"tweet,omitempty"`
}

// FeedSource contains source metadata from the live feed.
type FeedSource struct {
	Name        string `json:"name,omitempty"`
	Application string `json:"application,omitempty"`
}

// ToTweet unwraps the feed message, or returns nil if no tweet is present.
func (w *FeedWrapper) ToTweet() *Tweet {
	return w.Tweet
}
