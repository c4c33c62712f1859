// Package export writes extracted flight records to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"tweet_flights/internal/flight"
)

// Split divides records into the three export buckets. A record lands in
// Nones when it has no flight tracking link or no team mention; the rest
// split on whether extraction produced a complete record.
type Split struct {
	Parsed   []*flight.Record
	Unparsed []*flight.Record
	Nones    []*flight.Record
}

// SplitRecords buckets records for export, each bucket sorted by
// creation time ascending.
func SplitRecords(records []*flight.Record) Split {
	var s Split
	for _, rec := range records {
		switch {
		case rec.Link == nil || rec.TeamName == nil:
			s.Nones = append(s.Nones, rec)
		case rec.Parsed:
			s.Parsed = append(s.Parsed, rec)
		default:
			s.Unparsed = append(s.Unparsed, rec)
		}
	}

	for _, bucket := range [][]*flight.Record{s.Parsed, s.Unparsed, s.Nones} {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].CreatedAt.Before(bucket[j].CreatedAt)
		})
	}
	return s
}

// Writer saves record buckets as versioned CSV files in a directory.
type Writer struct {
	Dir     string
	Version string // Dataset version suffix in file names, e.g. "v1".
}

// Save splits the records and writes the three CSV files. Returns the
// paths written.
func (w *Writer) Save(records []*flight.Record) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	s := SplitRecords(records)

	files := []struct {
		name    string
		records []*flight.Record
	}{
		{fmt.Sprintf("parsed_tweets_%s.csv", w.Version), s.Parsed},
		{fmt.Sprintf("unparsed_tweets_%s.csv", w.Version), s.Unparsed},
		{fmt.Sprintf("nones_%s.csv", w.Version), s.Nones},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(w.Dir, f.name)
		if err := writeCSV(path, f.records); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, records []*flight.Record) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fp.Close()

	cw := csv.NewWriter(fp)
	if err := cw.Write(flight.CSVHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.CSVRow()); err != nil {
			return fmt.Errorf("write row for tweet %d: %w", rec.TweetID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
