// Package format resolves which posting-template version applies to a tweet.
package format

import "time"

// Version identifies a generation of the posting account's tweet template.
// The grammar rule set is selected per version; versions with no registered
// rules yield all-unknown records.
type Version string

const (
	// V1 is the current template: one airport/time line per leg followed
	// by a tail|flight|type line.
	V1 Version = "v1"

	// V2 is the pre-cutover template. No archived ground truth exists
	// for it, so no extraction rules are registered.
	V2 Version = "v2"
)

// templateCutover is the instant the account changed its posting template.
var templateCutover = time.Date(2019, time.July, 1, 0, 0, 0, 0, time.UTC)

// Select maps a tweet's creation time to the template version whose grammar
// applies. Posts strictly after the cutover use V1; posts at or before it
// use V2. Total over all timestamps.
func Select(createdAt time.Time) Version {
	if createdAt.After(templateCutover) {
		return V1
	}
	return V2
}
