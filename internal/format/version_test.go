package format

import (
	"testing"
	"time"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		want      Version
	}{
		{"well before cutover", time.Date(2018, time.April, 1, 12, 0, 0, 0, time.UTC), V2},
		{"day before cutover", time.Date(2019, time.June, 30, 23, 59, 59, 0, time.UTC), V2},
		{"exactly at cutover", time.Date(2019, time.July, 1, 0, 0, 0, 0, time.UTC), V2},
		{"second after cutover", time.Date(2019, time.July, 1, 0, 0, 1, 0, time.UTC), V1},
		{"well after cutover", time.Date(2021, time.September, 15, 8, 30, 0, 0, time.UTC), V1},
		{"zero time", time.Time{}, V2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(tt.createdAt); got != tt.want {
				t.Errorf("Select(%v) = %v, want %v", tt.createdAt, got, tt.want)
			}
		})
	}
}

func TestSelectNonUTC(t *testing.T) {
	// 2019-06-30 20:00 -0500 is 2019-07-01 01:00 UTC, after the cutover.
	loc := time.FixedZone("CDT", -5*3600)
	got := Select(time.Date(2019, time.June, 30, 20, 0, 0, 0, loc))
	if got != V1 {
		t.Errorf("Select across zones = %v, want %v", got, V1)
	}
}
