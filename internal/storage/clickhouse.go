package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"tweet_flights/internal/flight"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection. ClickHouse is the analytics
// archive: report aggregates (posts per day, top teams and airports) are
// computed here.
type ClickHouseDB struct {
	conn driver.Conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS flight_records (
		tweet_id        UInt64,
		created_at      DateTime64(3),
		team_name       LowCardinality(String),
		mention         LowCardinality(String),
		tail_number     LowCardinality(String),
		flight_number   LowCardinality(String),
		aircraft_type   LowCardinality(String),
		departure       LowCardinality(String),
		arrival         LowCardinality(String),
		layover         LowCardinality(String),
		format_version  LowCardinality(String),
		parsed          UInt8,
		retweets        UInt64,
		favorites       UInt64,
		raw_text        String,
		stored_at       DateTime64(3) DEFAULT now64(3)
	)
	ENGINE = MergeTree()
	PARTITION BY toYYYYMM(created_at)
	ORDER BY (team_name, created_at, tweet_id)
	SETTINGS index_granularity = 8192`

	if err := d.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create clickhouse schema: %w", err)
	}
	return nil
}

// InsertRecords appends a batch of records to the archive. Optional
// fields are archived as the unknown marker so aggregates group them
// under one bucket.
func (d *ClickHouseDB) InsertRecords(ctx context.Context, records []*flight.Record) error {
	batch, err := d.conn.PrepareBatch(ctx, `INSERT INTO flight_records (
		tweet_id, created_at, team_name, mention, tail_number, flight_number,
		aircraft_type, departure, arrival, layover, format_version, parsed,
		retweets, favorites, raw_text
	)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, rec := range records {
		var parsed uint8
		if rec.Parsed {
			parsed = 1
		}
		err := batch.Append(
			uint64(rec.TweetID),
			rec.CreatedAt,
			flight.Value(rec.TeamName),
			flight.Value(rec.Mention),
			flight.Value(rec.TailNumber),
			flight.Value(rec.FlightNumber),
			flight.Value(rec.AircraftType),
			flight.Value(rec.Departure),
			flight.Value(rec.Arrival),
			flight.Value(rec.Layover),
			string(rec.FormatVersion),
			parsed,
			uint64(rec.Retweets),
			uint64(rec.Favorites),
			rec.Text,
		)
		if err != nil {
			return fmt.Errorf("append record %d: %w", rec.TweetID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// DayCount is one day's post volume.
type DayCount struct {
	Date  time.Time
	Count uint64
}

// PostsPerDay returns daily post counts, oldest first. The zero year
// means all years.
func (d *ClickHouseDB) PostsPerDay(ctx context.Context, year int) ([]DayCount, error) {
	query := `SELECT toDate(created_at) AS day, count() AS n
		FROM flight_records`
	var args []any
	if year > 0 {
		query += ` WHERE toYear(created_at) = ?`
		args = append(args, year)
	}
	query += ` GROUP BY day ORDER BY day`

	rows, err := d.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("posts per day: %w", err)
	}
	defer rows.Close()

	var counts []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

// ValueCount is one aggregate bucket.
type ValueCount struct {
	Value string
	Count uint64
}

// TopTeams returns the most-mentioned teams for a year (0 = all years).
func (d *ClickHouseDB) TopTeams(ctx context.Context, year, limit int) ([]ValueCount, error) {
	return d.topColumn(ctx, "team_name", year, limit)
}

// TopDepartures returns the most frequent departure airports.
func (d *ClickHouseDB) TopDepartures(ctx context.Context, year, limit int) ([]ValueCount, error) {
	return d.topColumn(ctx, "departure", year, limit)
}

// TopArrivals returns the most frequent arrival airports.
func (d *ClickHouseDB) TopArrivals(ctx context.Context, year, limit int) ([]ValueCount, error) {
	return d.topColumn(ctx, "arrival", year, limit)
}

func (d *ClickHouseDB) topColumn(ctx context.Context, column string, year, limit int) ([]ValueCount, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`SELECT %s AS v, count() AS n
		FROM flight_records
		WHERE v != '%s'`, column, flight.Unknown)
	var args []any
	if year > 0 {
		query += ` AND toYear(created_at) = ?`
		args = append(args, year)
	}
	query += fmt.Sprintf(` GROUP BY v ORDER BY n DESC LIMIT %d`, limit)

	rows, err := d.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", column, err)
	}
	defer rows.Close()

	var counts []ValueCount
	for rows.Next() {
		var vc ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		counts = append(counts, vc)
	}
	return counts, rows.Err()
}
