// Package storage provides persistent storage for extracted flight records.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tweet_flights/internal/flight"
)

// DB wraps a SQLite database connection for local record storage.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database tables and indices.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS flight_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tweet_id INTEGER NOT NULL UNIQUE,
		created_at TEXT,
		tweet_date TEXT,
		mention TEXT,
		team_name TEXT,
		tail_number TEXT,
		flight_number TEXT,
		aircraft_type TEXT,
		departure TEXT,
		departure_time TEXT,
		arrival TEXT,
		arrival_time TEXT,
		layover TEXT,
		layover_time TEXT,
		link TEXT,
		retweets INTEGER NOT NULL DEFAULT 0,
		favorites INTEGER NOT NULL DEFAULT 0,
		format_version TEXT NOT NULL,
		is_reply INTEGER NOT NULL DEFAULT 0,
		is_quote INTEGER NOT NULL DEFAULT 0,
		is_retweet INTEGER NOT NULL DEFAULT 0,
		parsed INTEGER NOT NULL DEFAULT 0,
		raw_text TEXT NOT NULL,
		record_json TEXT NOT NULL,
		stored_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_records_team ON flight_records(team_name);
	CREATE INDEX IF NOT EXISTS idx_records_tail ON flight_records(tail_number);
	CREATE INDEX IF NOT EXISTS idx_records_departure ON flight_records(departure);
	CREATE INDEX IF NOT EXISTS idx_records_arrival ON flight_records(arrival);
	CREATE INDEX IF NOT EXISTS idx_records_parsed ON flight_records(parsed);
	CREATE INDEX IF NOT EXISTS idx_records_date ON flight_records(tweet_date);

	-- FTS5 virtual table for full-text search on raw tweet text.
	CREATE VIRTUAL TABLE IF NOT EXISTS flight_records_fts USING fts5(
		raw_text,
		content='flight_records',
		content_rowid='id'
	);

	-- Triggers to keep FTS index in sync.
	CREATE TRIGGER IF NOT EXISTS flight_records_ai AFTER INSERT ON flight_records BEGIN
		INSERT INTO flight_records_fts(rowid, raw_text) VALUES (new.id, new.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS flight_records_ad AFTER DELETE ON flight_records BEGIN
		INSERT INTO flight_records_fts(flight_records_fts, rowid, raw_text) VALUES('delete', old.id, old.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS flight_records_au AFTER UPDATE ON flight_records BEGIN
		INSERT INTO flight_records_fts(flight_records_fts, rowid, raw_text) VALUES('delete', old.id, old.raw_text);
		INSERT INTO flight_records_fts(rowid, raw_text) VALUES (new.id, new.raw_text);
	END;
	`

	_, err := db.Exec(schema)
	return err
}

// nullable converts an optional record field to a driver value, keeping
// nil distinct from the empty string.
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// Insert stores one record, replacing any previous row for the same tweet
// so repeated extraction runs stay idempotent.
func (d *DB) Insert(rec *flight.Record) error {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	var created any
	if !rec.CreatedAt.IsZero() {
		created = rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	_, err = d.db.Exec(`
		INSERT OR REPLACE INTO flight_records (
			tweet_id, created_at, tweet_date, mention, team_name,
			tail_number, flight_number, aircraft_type,
			departure, departure_time, arrival, arrival_time,
			layover, layover_time, link, retweets, favorites,
			format_version, is_reply, is_quote, is_retweet, parsed,
			raw_text, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.TweetID, created, rec.TweetDate, nullable(rec.Mention), nullable(rec.TeamName),
		nullable(rec.TailNumber), nullable(rec.FlightNumber), nullable(rec.AircraftType),
		nullable(rec.Departure), nullable(rec.DepartureTime), nullable(rec.Arrival), nullable(rec.ArrivalTime),
		nullable(rec.Layover), nullable(rec.LayoverTime), nullable(rec.Link), rec.Retweets, rec.Favorites,
		string(rec.FormatVersion), boolInt(rec.IsReply), boolInt(rec.IsQuote), boolInt(rec.IsRetweet), boolInt(rec.Parsed),
		rec.Text, string(recordJSON),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// InsertAll stores a batch of records.
func (d *DB) InsertAll(records []*flight.Record) error {
	for _, rec := range records {
		if err := d.Insert(rec); err != nil {
			return err
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// QueryParams contains filtering options for querying records.
type QueryParams struct {
	Team       string // Filter by team display name (LIKE match).
	Tail       string // Filter by tail number (exact match).
	Departure  string // Filter by departure airport (exact match).
	Arrival    string // Filter by arrival airport (exact match).
	ParsedOnly bool   // Only fully parsed records.
	FullText   string // FTS5 full-text search on raw tweet text.
	Limit      int    // Max results (default 100; negative for no limit).
	Offset     int    // Pagination offset.
}

// Query retrieves records matching the given parameters, newest first.
func (d *DB) Query(p QueryParams) ([]*flight.Record, error) {
	var conditions []string
	var args []any

	if p.Team != "" {
		conditions = append(conditions, "team_name LIKE ?")
		args = append(args, "%"+p.Team+"%")
	}
	if p.Tail != "" {
		conditions = append(conditions, "tail_number = ?")
		args = append(args, p.Tail)
	}
	if p.Departure != "" {
		conditions = append(conditions, "departure = ?")
		args = append(args, p.Departure)
	}
	if p.Arrival != "" {
		conditions = append(conditions, "arrival = ?")
		args = append(args, p.Arrival)
	}
	if p.ParsedOnly {
		conditions = append(conditions, "parsed = 1")
	}

	var query string
	if p.FullText != "" {
		query = `SELECT r.record_json FROM flight_records r
			JOIN flight_records_fts fts ON r.id = fts.rowid
			WHERE flight_records_fts MATCH ?`
		args = append([]any{p.FullText}, args...)
		if len(conditions) > 0 {
			query += " AND " + strings.Join(conditions, " AND ")
		}
	} else {
		query = `SELECT record_json FROM flight_records`
		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}
	}

	query += " ORDER BY created_at DESC"

	limit := 100
	if p.Limit > 0 {
		limit = p.Limit
	} else if p.Limit < 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded.
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, p.Offset)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*flight.Record
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var rec flight.Record
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Stats holds aggregate statistics about stored records.
type Stats struct {
	TotalRecords int
	ParsedCount  int
	ByVersion    map[string]int
	TopTeams     map[string]int
	TopDeparture map[string]int
	TopArrival   map[string]int
}

// GetStats returns statistics about the stored records.
func (d *DB) GetStats() (*Stats, error) {
	stats := &Stats{
		ByVersion:    make(map[string]int),
		TopTeams:     make(map[string]int),
		TopDeparture: make(map[string]int),
		TopArrival:   make(map[string]int),
	}

	row := d.db.QueryRow("SELECT COUNT(*) FROM flight_records")
	if err := row.Scan(&stats.TotalRecords); err != nil {
		return nil, err
	}

	row = d.db.QueryRow("SELECT COUNT(*) FROM flight_records WHERE parsed = 1")
	if err := row.Scan(&stats.ParsedCount); err != nil {
		return nil, err
	}

	if err := d.countInto(stats.ByVersion, "format_version", 0); err != nil {
		return nil, err
	}
	if err := d.countInto(stats.TopTeams, "team_name", 20); err != nil {
		return nil, err
	}
	if err := d.countInto(stats.TopDeparture, "departure", 20); err != nil {
		return nil, err
	}
	if err := d.countInto(stats.TopArrival, "arrival", 20); err != nil {
		return nil, err
	}

	return stats, nil
}

// countInto fills dst with value counts for a column, skipping NULLs.
func (d *DB) countInto(dst map[string]int, column string, limit int) error {
	query := fmt.Sprintf(
		"SELECT %s, COUNT(*) FROM flight_records WHERE %s IS NOT NULL GROUP BY %s ORDER BY COUNT(*) DESC",
		column, column, column)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.db.Query(query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return err
		}
		dst[value] = count
	}
	return rows.Err()
}
