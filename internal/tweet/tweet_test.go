package tweet

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexInt64(t *testing.T) {
	tests := []struct {
		name string
		json string
		want FlexInt64
	}{
		{"number", `12345`, 12345},
		{"string", `"12345"`, 12345},
		{"large id", `1136270000000000001`, 1136270000000000001},
		{"large id string", `"1136270000000000001"`, 1136270000000000001},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
		{"garbage string", `"abc"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexInt64
			if err := json.Unmarshal([]byte(tt.json), &f); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.json, err)
			}
			if f != tt.want {
				t.Errorf("FlexInt64 = %d, want %d", f, tt.want)
			}
		})
	}
}

func TestTweetDecode(t *testing.T) {
	payload := `{
		"id": "1136270000000000001",
		"created_at": "Wed Jun 05 17:00:00 +0000 2019",
		"full_text": "@Dodgers ✈️JFK - 5:00pm ET",
		"in_reply_to_status_id": null,
		"is_quote_status": false,
		"retweet_count": 12,
		"favorite_count": 48,
		"entities": {
			"user_mentions": [{"screen_name": "Dodgers", "name": "Los Angeles Dodgers"}],
			"urls": [{"url": "https://t.co/abc", "expanded_url": "https://flightaware.com/live/flight/AA100"}]
		}
	}`

	var tw Tweet
	if err := json.Unmarshal([]byte(payload), &tw); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if tw.ID != 1136270000000000001 {
		t.Errorf("ID = %d, want 1136270000000000001", tw.ID)
	}
	if tw.Body() != "@Dodgers ✈️JFK - 5:00pm ET" {
		t.Errorf("Body = %q", tw.Body())
	}
	if tw.IsReply() {
		t.Error("IsReply = true, want false")
	}
	if tw.IsRetweet() {
		t.Error("IsRetweet = true, want false")
	}

	created, err := tw.Created()
	if err != nil {
		t.Fatalf("Created: %v", err)
	}
	want := time.Date(2019, time.June, 5, 17, 0, 0, 0, time.UTC)
	if !created.Equal(want) {
		t.Errorf("Created = %v, want %v", created, want)
	}

	screen, name, ok := tw.FirstMention()
	if !ok || screen != "Dodgers" || name != "Los Angeles Dodgers" {
		t.Errorf("FirstMention = %q, %q, %v", screen, name, ok)
	}
	link, ok := tw.FirstLink()
	if !ok || link != "https://t.co/abc" {
		t.Errorf("FirstLink = %q, %v", link, ok)
	}
}

func TestCreatedRFC3339(t *testing.T) {
	tw := Tweet{CreatedAt: "2021-09-15T08:30:00Z"}
	created, err := tw.Created()
	if err != nil {
		t.Fatalf("Created: %v", err)
	}
	if created.Year() != 2021 || created.Month() != time.September {
		t.Errorf("Created = %v", created)
	}
}

func TestReplyAndRetweetFlags(t *testing.T) {
	reply := Tweet{InReplyToStatusID: 42}
	if !reply.IsReply() {
		t.Error("expected reply by status id")
	}
	replyName := Tweet{InReplyToScreenName: "someone"}
	if !replyName.IsReply() {
		t.Error("expected reply by screen name")
	}

	var rt Tweet
	if err := json.Unmarshal([]byte(`{"id": 1, "retweeted_status": {"id": 2}}`), &rt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rt.IsRetweet() {
		t.Error("expected retweet when retweeted_status present")
	}
}

func TestBodyFallsBackToText(t *testing.T) {
	tw := Tweet{Text: "short form"}
	if tw.Body() != "short form" {
		t.Errorf("Body = %q", tw.Body())
	}
}

func TestFeedWrapper(t *testing.T) {
	payload := `{"source": {"name": "timeline-mirror"}, "tweet": {"id": 7, "full_text": "hi"}}`

	var w FeedWrapper
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	tw := w.ToTweet()
	if tw == nil || tw.ID != 7 {
		t.Fatalf("ToTweet = %+v", tw)
	}

	empty := FeedWrapper{}
	if empty.ToTweet() != nil {
		t.Error("expected nil tweet for empty wrapper")
	}
}
