package storage

import (
	"context"
	"fmt"
)

// Config holds database connection settings for both ClickHouse and
// PostgreSQL.
type Config struct {
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
}

// DefaultConfig returns a configuration with default local development
// settings.
func DefaultConfig() Config {
	return Config{
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "tweet_flights",
			User:     "default",
			Password: "",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "tweet_flights",
			User:     "tweet_flights",
			Password: "tweet_flights",
		},
	}
}

// Backends wraps both ClickHouse and PostgreSQL connections.
type Backends struct {
	CH *ClickHouseDB // ClickHouse for the analytics archive.
	PG *PostgresDB   // PostgreSQL for fetch state and API queries.
}

// OpenBackends opens connections to both ClickHouse and PostgreSQL.
func OpenBackends(ctx context.Context, cfg Config) (*Backends, error) {
	ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}

	pg, err := OpenPostgres(ctx, cfg.Postgres)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &Backends{CH: ch, PG: pg}, nil
}

// Close closes both database connections.
func (b *Backends) Close() error {
	var errs []error
	if b.CH != nil {
		if err := b.CH.Close(); err != nil {
			errs = append(errs, fmt.Errorf("clickhouse: %w", err))
		}
	}
	if b.PG != nil {
		b.PG.Close()
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// CreateSchemas creates the schemas in both databases.
func (b *Backends) CreateSchemas(ctx context.Context) error {
	if err := b.CH.CreateSchema(ctx); err != nil {
		return fmt.Errorf("clickhouse schema: %w", err)
	}
	if err := b.PG.CreateSchema(ctx); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}
