package flight

import (
	"testing"

	"tweet_flights/internal/tweet"
)

// sampleTweet builds a complete post in the current template: mention,
// tracking link, two airport lines and an aircraft line.
func sampleTweet() *tweet.Tweet {
	return &tweet.Tweet{
		ID:        1432120000000000001,
		CreatedAt: "Wed Aug 25 17:00:00 +0000 2021",
		FullText:  "✈️JFK - 5:00pm ET\nLAX - 8:00pm PT\nN12345|AA100|B737",
		Entities: tweet.Entities{
			UserMentions: []tweet.Mention{{ScreenName: "Dodgers", Name: "Los Angeles Dodgers"}},
			URLs:         []tweet.URL{{URL: "https://t.co/abc", ExpandedURL: "https://flightaware.com/live/flight/AA100"}},
		},
		RetweetCount:  12,
		FavoriteCount: 48,
	}
}

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestAssembleFullTemplate(t *testing.T) {
	rec := Assemble(sampleTweet())

	if rec.TweetID != 1432120000000000001 {
		t.Errorf("TweetID = %d", rec.TweetID)
	}
	if rec.TweetDate != "2021-08-25" {
		t.Errorf("TweetDate = %q, want 2021-08-25", rec.TweetDate)
	}
	if rec.FormatVersion != "v1" {
		t.Errorf("FormatVersion = %q, want v1", rec.FormatVersion)
	}
	if deref(rec.Mention) != "Dodgers" {
		t.Errorf("Mention = %q", deref(rec.Mention))
	}
	if deref(rec.TeamName) != "Los Angeles Dodgers" {
		t.Errorf("TeamName = %q", deref(rec.TeamName))
	}
	if deref(rec.Link) != "https://t.co/abc" {
		t.Errorf("Link = %q", deref(rec.Link))
	}
	if deref(rec.Departure) != "JFK" || deref(rec.DepartureTime) != "5:00pm ET" {
		t.Errorf("Departure = %q %q", deref(rec.Departure), deref(rec.DepartureTime))
	}
	if deref(rec.Arrival) != "LAX" || deref(rec.ArrivalTime) != "8:00pm PT" {
		t.Errorf("Arrival = %q %q", deref(rec.Arrival), deref(rec.ArrivalTime))
	}
	if deref(rec.TailNumber) != "N12345" {
		t.Errorf("TailNumber = %q", deref(rec.TailNumber))
	}
	if deref(rec.FlightNumber) != "AA100" {
		t.Errorf("FlightNumber = %q", deref(rec.FlightNumber))
	}
	if deref(rec.AircraftType) != "B737" {
		t.Errorf("AircraftType = %q", deref(rec.AircraftType))
	}
	if rec.Layover != nil {
		t.Errorf("Layover = %q, want nil", deref(rec.Layover))
	}
	if !rec.Parsed {
		t.Error("Parsed = false, want true")
	}
	if rec.Retweets != 12 || rec.Favorites != 48 {
		t.Errorf("counts = %d/%d", rec.Retweets, rec.Favorites)
	}
}

func TestAssemblePreCutoverHasNoRules(t *testing.T) {
	tw := sampleTweet()
	tw.CreatedAt = "Wed Jun 05 17:00:00 +0000 2019"

	rec := Assemble(tw)

	if rec.FormatVersion != "v2" {
		t.Fatalf("FormatVersion = %q, want v2", rec.FormatVersion)
	}
	// Same text, but no grammars are registered for the old template.
	if rec.Departure != nil || rec.Arrival != nil || rec.TailNumber != nil {
		t.Errorf("expected no extraction for v2, got dep=%q arr=%q tail=%q",
			deref(rec.Departure), deref(rec.Arrival), deref(rec.TailNumber))
	}
	// Metadata still flows through.
	if deref(rec.Mention) != "Dodgers" {
		t.Errorf("Mention = %q", deref(rec.Mention))
	}
	if rec.Parsed {
		t.Error("Parsed = true, want false")
	}
}

func TestAssembleLayover(t *testing.T) {
	tw := sampleTweet()
	// Slots at lines 0, 2, 3: span 3 with the middle slot present.
	tw.FullText = "JFK - 5:00pm ET\nconnecting through the midwest\nORD - 7:15pm CT|1h 40m\nLAX - 11:00pm PT\nN12345|AA100|B737"

	rec := Assemble(tw)

	if deref(rec.Departure) != "JFK" {
		t.Errorf("Departure = %q", deref(rec.Departure))
	}
	if deref(rec.Arrival) != "LAX" {
		t.Errorf("Arrival = %q", deref(rec.Arrival))
	}
	if deref(rec.Layover) != "ORD" || deref(rec.LayoverTime) != "7:15pm CT" {
		t.Errorf("Layover = %q %q", deref(rec.Layover), deref(rec.LayoverTime))
	}
}

func TestAssembleSpanWithoutMiddleSlot(t *testing.T) {
	tw := sampleTweet()
	// Slots at lines 0 and 3 only: span 3 but no slot at line 2.
	tw.FullText = "JFK - 5:00pm ET\nlong day of travel\nwheels up soon\nLAX - 11:00pm PT"

	rec := Assemble(tw)

	if deref(rec.Departure) != "JFK" || deref(rec.Arrival) != "LAX" {
		t.Errorf("endpoints = %q/%q", deref(rec.Departure), deref(rec.Arrival))
	}
	if rec.Layover != nil {
		t.Errorf("Layover = %q, want nil", deref(rec.Layover))
	}
}

func TestAssembleAdjacentSlotsNoLayover(t *testing.T) {
	tw := sampleTweet()
	// Slots at lines 0 and 1: span 1, never a layover.
	tw.FullText = "JFK - 5:00pm ET\nLAX - 8:00pm PT"

	rec := Assemble(tw)

	if rec.Layover != nil {
		t.Errorf("Layover = %q, want nil", deref(rec.Layover))
	}
}

func TestAssembleSingleSlot(t *testing.T) {
	tw := sampleTweet()
	tw.FullText = "JFK - 5:00pm ET"

	rec := Assemble(tw)

	// One slot serves as both endpoints.
	if deref(rec.Departure) != "JFK" || deref(rec.Arrival) != "JFK" {
		t.Errorf("endpoints = %q/%q", deref(rec.Departure), deref(rec.Arrival))
	}
}

func TestAssembleLayoverBeatsAirport(t *testing.T) {
	tw := sampleTweet()
	// A layover line is a syntactic superset of the airport line; the
	// layover grammar is tested first.
	tw.FullText = "JFK - 5:00pm ET|737"

	rec := Assemble(tw)

	if deref(rec.Departure) != "JFK" || deref(rec.DepartureTime) != "5:00pm ET" {
		t.Errorf("slot = %q %q", deref(rec.Departure), deref(rec.DepartureTime))
	}
}

func TestAssembleExclusions(t *testing.T) {
	t.Run("reply", func(t *testing.T) {
		tw := sampleTweet()
		tw.InReplyToStatusID = 99
		rec := Assemble(tw)
		if !rec.IsReply {
			t.Error("IsReply = false")
		}
		if rec.Parsed {
			t.Error("Parsed = true for a reply")
		}
		// Extraction still happens, only the flag is withheld.
		if deref(rec.Departure) != "JFK" {
			t.Errorf("Departure = %q", deref(rec.Departure))
		}
	})

	t.Run("quote", func(t *testing.T) {
		tw := sampleTweet()
		tw.IsQuoteStatus = true
		rec := Assemble(tw)
		if rec.Parsed {
			t.Error("Parsed = true for a quote")
		}
	})

	t.Run("retweet", func(t *testing.T) {
		tw := sampleTweet()
		tw.RetweetedStatus = []byte(`{"id": 2}`)
		rec := Assemble(tw)
		if !rec.IsRetweet || rec.Parsed {
			t.Errorf("IsRetweet = %v, Parsed = %v", rec.IsRetweet, rec.Parsed)
		}
	})
}

func TestAssembleMissingFieldsNotParsed(t *testing.T) {
	tw := sampleTweet()
	tw.Entities.URLs = nil // no tracking link

	rec := Assemble(tw)

	if rec.Link != nil {
		t.Errorf("Link = %q, want nil", deref(rec.Link))
	}
	if rec.Parsed {
		t.Error("Parsed = true without a link")
	}
}

func TestAssembleTotality(t *testing.T) {
	// Assemble never fails, whatever the input looks like.
	tweets := []*tweet.Tweet{
		{},
		{ID: 1},
		{ID: 2, CreatedAt: "not a timestamp", FullText: "\U0001F525\U0001F525"},
		{ID: 3, CreatedAt: "Wed Aug 25 17:00:00 +0000 2021", FullText: "\n\n\n"},
		{ID: 4, CreatedAt: "Wed Aug 25 17:00:00 +0000 2021", FullText: "just words, no template"},
	}

	for _, tw := range tweets {
		rec := Assemble(tw)
		if rec == nil {
			t.Fatalf("Assemble returned nil for tweet %d", tw.ID)
		}
		if rec.Parsed {
			t.Errorf("tweet %d: Parsed = true", tw.ID)
		}
	}
}

func TestAssembleUnparseableTimestamp(t *testing.T) {
	tw := sampleTweet()
	tw.CreatedAt = "sometime last week"

	rec := Assemble(tw)

	// Zero creation time resolves to the template with no rules.
	if rec.FormatVersion != "v2" {
		t.Errorf("FormatVersion = %q, want v2", rec.FormatVersion)
	}
	if !rec.CreatedAt.IsZero() {
		t.Errorf("CreatedAt = %v, want zero", rec.CreatedAt)
	}
	if rec.TweetDate != "" {
		t.Errorf("TweetDate = %q, want empty", rec.TweetDate)
	}
}

func TestAssembleEmojiStripped(t *testing.T) {
	tw := sampleTweet()
	tw.FullText = "✈️ JFK - 5:00pm ET\n\U0001F699 LAX - 8:00pm PT\nN12345|AA100|B737"

	rec := Assemble(tw)

	if deref(rec.Departure) != "JFK" || deref(rec.Arrival) != "LAX" {
		t.Errorf("endpoints = %q/%q", deref(rec.Departure), deref(rec.Arrival))
	}
}

func TestExtractAllDedupe(t *testing.T) {
	a := sampleTweet()
	b := sampleTweet() // identical content
	c := sampleTweet()
	c.ID = 1432120000000000002

	records := ExtractAll([]*tweet.Tweet{a, b, c})

	if len(records) != 2 {
		t.Fatalf("expected 2 records after dedupe, got %d", len(records))
	}
	if records[0].TweetID != 1432120000000000001 || records[1].TweetID != 1432120000000000002 {
		t.Errorf("order not preserved: %d, %d", records[0].TweetID, records[1].TweetID)
	}
}

func TestExtractAllIdempotent(t *testing.T) {
	tweets := []*tweet.Tweet{sampleTweet(), {ID: 9, FullText: "nothing here"}}

	first := ExtractAll(tweets)
	second := ExtractAll(tweets)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key() != second[i].Key() {
			t.Errorf("record %d differs between runs", i)
		}
	}
}
