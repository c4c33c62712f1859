package flight

import (
	"strings"
	"sync"

	"tweet_flights/internal/format"
	"tweet_flights/internal/grammars/aircraft"
	"tweet_flights/internal/grammars/airport"
	"tweet_flights/internal/grammars/layover"
	"tweet_flights/internal/patterns"
	"tweet_flights/internal/registry"
	"tweet_flights/internal/tweet"
)

// slot is an airport/time pair captured at a line position during the scan.
type slot struct {
	code string
	time string
}

// sortOnce ensures grammar priority ordering is applied before the first
// dispatch.
var sortOnce sync.Once

// Assemble scans one tweet's lines and produces its flight record. It is a
// pure function of the tweet: it never fails, degrading to an all-unknown
// record on unrecognized templates.
func Assemble(tw *tweet.Tweet) *Record {
	sortOnce.Do(registry.Default().Sort)

	rec := &Record{
		TweetID:   int64(tw.ID),
		Text:      tw.Body(),
		Retweets:  tw.RetweetCount,
		Favorites: tw.FavoriteCount,
		IsReply:   tw.IsReply(),
		IsQuote:   tw.IsQuoteStatus,
		IsRetweet: tw.IsRetweet(),
	}

	// An unparseable timestamp leaves CreatedAt zero, which resolves to
	// the pre-cutover version and therefore to no extraction rules.
	if created, err := tw.Created(); err == nil {
		rec.CreatedAt = created
		rec.TweetDate = created.Format("2006-01-02")
	}
	rec.FormatVersion = format.Select(rec.CreatedAt)

	if screenName, name, ok := tw.FirstMention(); ok {
		rec.Mention = &screenName
		rec.TeamName = &name
	}
	if link, ok := tw.FirstLink(); ok {
		rec.Link = &link
	}

	// Scanning: classify each line, accumulating airport/time slots keyed
	// by line index and merging aircraft fields unkeyed (the template
	// carries at most one aircraft line).
	slots := make(map[int]slot)
	for i, line := range strings.Split(tw.Body(), "\n") {
		line = patterns.Normalize(line)
		if line == "" {
			continue
		}
		switch m := registry.Default().Classify(rec.FormatVersion, line).(type) {
		case *airport.Result:
			slots[i] = slot{code: m.Code, time: m.Time}
		case *layover.Result:
			slots[i] = slot{code: m.Code, time: m.Time}
		case *aircraft.Result:
			if m.TailNumber != "" {
				rec.TailNumber = strptr(m.TailNumber)
			}
			if m.FlightNumber != "" {
				rec.FlightNumber = strptr(m.FlightNumber)
			}
			if m.AircraftType != "" {
				rec.AircraftType = strptr(m.AircraftType)
			}
		}
	}

	resolveSlots(rec, slots)

	rec.Parsed = rec.Mention != nil && rec.Link != nil &&
		rec.AircraftType != nil && rec.TailNumber != nil &&
		rec.Departure != nil && rec.DepartureTime != nil &&
		rec.Arrival != nil && rec.ArrivalTime != nil &&
		!rec.IsReply && !rec.IsQuote && !rec.IsRetweet

	return rec
}

// resolveSlots maps the positional slots onto departure, arrival and
// layover. Departure is the first captured slot and arrival the last; a
// layover is promoted only when the slots span exactly 3 lines and the
// intermediate slot exists.
func resolveSlots(rec *Record, slots map[int]slot) {
	if len(slots) == 0 {
		return
	}

	minIdx, maxIdx := -1, -1
	for idx := range slots {
		if minIdx == -1 || idx < minIdx {
			minIdx = idx
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	dep := slots[minIdx]
	rec.Departure = strptr(dep.code)
	rec.DepartureTime = strptr(dep.time)

	arr := slots[maxIdx]
	rec.Arrival = strptr(arr.code)
	rec.ArrivalTime = strptr(arr.time)

	if maxIdx-minIdx == 3 {
		if lay, ok := slots[maxIdx-1]; ok {
			rec.Layover = strptr(lay.code)
			rec.LayoverTime = strptr(lay.time)
		}
	}
}

// ExtractAll assembles a record per tweet, preserving input order and
// dropping exact duplicate records. Applying it twice to the same input
// yields identical output.
func ExtractAll(tweets []*tweet.Tweet) []*Record {
	records := make([]*Record, 0, len(tweets))
	seen := make(map[string]bool, len(tweets))
	for _, tw := range tweets {
		rec := Assemble(tw)
		key := rec.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, rec)
	}
	return records
}

func strptr(s string) *string {
	return &s
}
