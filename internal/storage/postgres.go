package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tweet_flights/internal/flight"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool. Postgres holds the
// mutable side of the system: per-handle fetch state and the record set
// served by the REST API.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS flight_records (
		tweet_id        BIGINT PRIMARY KEY,
		created_at      TIMESTAMPTZ,
		tweet_date      DATE,
		mention         TEXT,
		team_name       TEXT,
		tail_number     TEXT,
		flight_number   TEXT,
		aircraft_type   TEXT,
		departure       TEXT,
		departure_time  TEXT,
		arrival         TEXT,
		arrival_time    TEXT,
		layover         TEXT,
		layover_time    TEXT,
		link            TEXT,
		retweets        BIGINT NOT NULL DEFAULT 0,
		favorites       BIGINT NOT NULL DEFAULT 0,
		format_version  TEXT NOT NULL,
		parsed          BOOLEAN NOT NULL DEFAULT FALSE,
		record_json     JSONB NOT NULL,
		stored_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_records_team ON flight_records(team_name);
	CREATE INDEX IF NOT EXISTS idx_records_tail ON flight_records(tail_number);
	CREATE INDEX IF NOT EXISTS idx_records_date ON flight_records(tweet_date);
	CREATE INDEX IF NOT EXISTS idx_records_parsed ON flight_records(parsed);

	-- Per-handle retrieval state for resumable, idempotent fetch runs.
	CREATE TABLE IF NOT EXISTS fetch_state (
		screen_name     TEXT PRIMARY KEY,
		newest_id       BIGINT NOT NULL DEFAULT 0,
		oldest_id       BIGINT NOT NULL DEFAULT 0,
		tweet_count     INTEGER NOT NULL DEFAULT 0,
		fetched_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertRecords stores a batch of records, replacing rows for tweets seen
// before.
func (d *PostgresDB) UpsertRecords(ctx context.Context, records []*flight.Record) error {
	batch := &pgx.Batch{}
	for _, rec := range records {
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", rec.TweetID, err)
		}

		var created any
		if !rec.CreatedAt.IsZero() {
			created = rec.CreatedAt
		}
		var date any
		if rec.TweetDate != "" {
			date = rec.TweetDate
		}

		batch.Queue(`
			INSERT INTO flight_records (
				tweet_id, created_at, tweet_date, mention, team_name,
				tail_number, flight_number, aircraft_type,
				departure, departure_time, arrival, arrival_time,
				layover, layover_time, link, retweets, favorites,
				format_version, parsed, record_json
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			ON CONFLICT (tweet_id) DO UPDATE SET
				record_json = EXCLUDED.record_json,
				parsed = EXCLUDED.parsed,
				retweets = EXCLUDED.retweets,
				favorites = EXCLUDED.favorites,
				stored_at = NOW()
		`,
			rec.TweetID, created, date, rec.Mention, rec.TeamName,
			rec.TailNumber, rec.FlightNumber, rec.AircraftType,
			rec.Departure, rec.DepartureTime, rec.Arrival, rec.ArrivalTime,
			rec.Layover, rec.LayoverTime, rec.Link, rec.Retweets, rec.Favorites,
			string(rec.FormatVersion), rec.Parsed, string(recordJSON),
		)
	}

	results := d.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert record: %w", err)
		}
	}
	return nil
}

// FlightQuery contains filtering options for the API's record lookups.
type FlightQuery struct {
	Team       string
	Tail       string
	Departure  string
	Arrival    string
	ParsedOnly bool
	Limit      int
	Offset     int
}

// QueryFlights retrieves records matching the query, newest first.
func (d *PostgresDB) QueryFlights(ctx context.Context, q FlightQuery) ([]*flight.Record, error) {
	query := `SELECT record_json FROM flight_records WHERE TRUE`
	var args []any

	if q.Team != "" {
		args = append(args, "%"+q.Team+"%")
		query += fmt.Sprintf(" AND team_name ILIKE $%d", len(args))
	}
	if q.Tail != "" {
		args = append(args, q.Tail)
		query += fmt.Sprintf(" AND tail_number = $%d", len(args))
	}
	if q.Departure != "" {
		args = append(args, q.Departure)
		query += fmt.Sprintf(" AND departure = $%d", len(args))
	}
	if q.Arrival != "" {
		args = append(args, q.Arrival)
		query += fmt.Sprintf(" AND arrival = $%d", len(args))
	}
	if q.ParsedOnly {
		query += " AND parsed"
	}

	query += " ORDER BY created_at DESC NULLS LAST"

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, q.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	var records []*flight.Record
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var rec flight.Record
		if err := json.Unmarshal(recordJSON, &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// FetchState tracks retrieval progress for one account handle.
type FetchState struct {
	ScreenName string
	NewestID   int64
	OldestID   int64
	TweetCount int
	FetchedAt  time.Time
}

// GetFetchState returns the stored state for a handle, or nil if the
// handle has never been fetched.
func (d *PostgresDB) GetFetchState(ctx context.Context, screenName string) (*FetchState, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT screen_name, newest_id, oldest_id, tweet_count, fetched_at
		FROM fetch_state WHERE screen_name = $1
	`, screenName)

	var st FetchState
	err := row.Scan(&st.ScreenName, &st.NewestID, &st.OldestID, &st.TweetCount, &st.FetchedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fetch state: %w", err)
	}
	return &st, nil
}

// UpsertFetchState saves retrieval progress for a handle.
func (d *PostgresDB) UpsertFetchState(ctx context.Context, st *FetchState) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO fetch_state (screen_name, newest_id, oldest_id, tweet_count, fetched_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (screen_name) DO UPDATE SET
			newest_id = EXCLUDED.newest_id,
			oldest_id = EXCLUDED.oldest_id,
			tweet_count = EXCLUDED.tweet_count,
			fetched_at = NOW()
	`, st.ScreenName, st.NewestID, st.OldestID, st.TweetCount)
	if err != nil {
		return fmt.Errorf("upsert fetch state: %w", err)
	}
	return nil
}
