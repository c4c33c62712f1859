// Package flight assembles structured flight records from raw tweets.
package flight

import (
	"strconv"
	"strings"
	"time"

	"tweet_flights/internal/format"
)

// Unknown is the explicit marker rendered for fields that were not
// extracted. It is distinct from the empty string so downstream filters
// can tell "not present" from "present but blank".
const Unknown = "unknown"

// Record is one extracted flight per tweet. Flight-identifying fields are
// nil when the tweet did not carry them; passthrough metadata is copied
// from the tweet verbatim. Records are immutable once assembled.
type Record struct {
	TweetID   int64     `json:"tweet_id"`
	CreatedAt time.Time `json:"created_at"`
	TweetDate string    `json:"tweet_date"`
	Text      string    `json:"text"`

	Mention  *string `json:"mention,omitempty"`
	TeamName *string `json:"team_name,omitempty"`
	Link     *string `json:"link,omitempty"`

	TailNumber    *string `json:"tail_number,omitempty"`
	FlightNumber  *string `json:"flight_number,omitempty"`
	AircraftType  *string `json:"aircraft_type,omitempty"`
	Departure     *string `json:"departure,omitempty"`
	DepartureTime *string `json:"departure_time,omitempty"`
	Arrival       *string `json:"arrival,omitempty"`
	ArrivalTime   *string `json:"arrival_time,omitempty"`
	Layover       *string `json:"layover,omitempty"`
	LayoverTime   *string `json:"layover_time,omitempty"`

	Retweets  int64 `json:"retweets"`
	Favorites int64 `json:"favorites"`

	FormatVersion format.Version `json:"format_version"`
	IsReply       bool           `json:"is_reply"`
	IsQuote       bool           `json:"is_quote"`
	IsRetweet     bool           `json:"is_retweet"`

	// Parsed is true only when every flight-identifying field was
	// extracted and the tweet is an original post.
	Parsed bool `json:"parsed"`
}

// Value renders an optional field, substituting the Unknown marker for nil.
func Value(p *string) string {
	if p == nil {
		return Unknown
	}
	return *p
}

// Key returns a canonical representation of every field, used to drop
// exact duplicate records.
func (r *Record) Key() string {
	fields := []string{
		strconv.FormatInt(r.TweetID, 10),
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.TweetDate,
		r.Text,
		Value(r.Mention),
		Value(r.TeamName),
		Value(r.Link),
		Value(r.TailNumber),
		Value(r.FlightNumber),
		Value(r.AircraftType),
		Value(r.Departure),
		Value(r.DepartureTime),
		Value(r.Arrival),
		Value(r.ArrivalTime),
		Value(r.Layover),
		Value(r.LayoverTime),
		strconv.FormatInt(r.Retweets, 10),
		strconv.FormatInt(r.Favorites, 10),
		string(r.FormatVersion),
		strconv.FormatBool(r.IsReply),
		strconv.FormatBool(r.IsQuote),
		strconv.FormatBool(r.IsRetweet),
		strconv.FormatBool(r.Parsed),
	}
	return strings.Join(fields, "\x1f")
}

// CSVHeader returns the column names for tabular export, in row order.
func CSVHeader() []string {
	return []string{
		"tweet_id", "created_at", "tweet_date", "text",
		"first_user_mention", "team_name",
		"aircraft_type", "tail_number", "flight_no",
		"departure", "departure_time", "arrival", "arrival_time",
		"layover", "layover_time",
		"flightware_link", "retweets", "favorite_count",
		"format_version", "is_reply", "is_quote", "is_retweet", "parsed",
	}
}

// CSVRow renders the record as a flat row. Missing fields render as the
// Unknown marker, never as the empty string.
func (r *Record) CSVRow() []string {
	var created string
	if !r.CreatedAt.IsZero() {
		created = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		strconv.FormatInt(r.TweetID, 10),
		created,
		r.TweetDate,
		r.Text,
		Value(r.Mention),
		Value(r.TeamName),
		Value(r.AircraftType),
		Value(r.TailNumber),
		Value(r.FlightNumber),
		Value(r.Departure),
		Value(r.DepartureTime),
		Value(r.Arrival),
		Value(r.ArrivalTime),
		Value(r.Layover),
		Value(r.LayoverTime),
		Value(r.Link),
		strconv.FormatInt(r.Retweets, 10),
		strconv.FormatInt(r.Favorites, 10),
		string(r.FormatVersion),
		strconv.FormatBool(r.IsReply),
		strconv.FormatBool(r.IsQuote),
		strconv.FormatBool(r.IsRetweet),
		strconv.FormatBool(r.Parsed),
	}
}
