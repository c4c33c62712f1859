// Package airport provides grok-style pattern definitions for airport/time
// line parsing.
package airport

import "tweet_flights/internal/patterns"

// Formats defines the known airport/time line formats.
var Formats = []patterns.Format{
	// A 3-letter airport code (optionally followed by a spelled-out
	// name), a dash, and a clock time with timezone.
	// Example: "JFK - 5:00pm ET"
	// Groups: code, time
	{
		Name:    "airport_time",
		Pattern: `^(?P<code>{IATA}[^-]*?)\s*-\s*(?P<time>{CLOCK})$`,
		Fields:  []string{"code", "time"},
	},
}
