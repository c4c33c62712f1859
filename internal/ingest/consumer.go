// Package ingest consumes live tweet payloads from NATS and stores the
// extracted flight records.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"tweet_flights/internal/flight"
	"tweet_flights/internal/storage"
	"tweet_flights/internal/tweet"
)

// RecordSink receives assembled records.
type RecordSink interface {
	Store(ctx context.Context, records []*flight.Record) error
}

// SinkFunc adapts a function to the RecordSink interface.
type SinkFunc func(ctx context.Context, records []*flight.Record) error

func (f SinkFunc) Store(ctx context.Context, records []*flight.Record) error {
	return f(ctx, records)
}

// SQLiteSink stores records in a local sqlite database.
func SQLiteSink(db *storage.DB) RecordSink {
	return SinkFunc(func(_ context.Context, records []*flight.Record) error {
		return db.InsertAll(records)
	})
}

// PostgresSink upserts records into Postgres.
func PostgresSink(db *storage.PostgresDB) RecordSink {
	return SinkFunc(func(ctx context.Context, records []*flight.Record) error {
		return db.UpsertRecords(ctx, records)
	})
}

// Config holds NATS consumer configuration.
type Config struct {
	URL     string // NATS server URL, e.g. nats://localhost:4222
	Subject string // Subject carrying tweet JSON payloads.
	Queue   string // Optional queue group for load balancing.
}

// DefaultConfig returns a consumer config for a local NATS server.
func DefaultConfig() Config {
	return Config{
		URL:     nats.DefaultURL,
		Subject: "tweets.flights",
		Queue:   "tweet-flights",
	}
}

// Consumer subscribes to a tweet subject and feeds each payload through
// the extraction pipeline.
type Consumer struct {
	cfg  Config
	sink RecordSink

	conn *nats.Conn
	sub  *nats.Subscription

	received int64
	stored   int64
	skipped  int64
}

// NewConsumer creates a consumer writing extracted records to sink.
func NewConsumer(cfg Config, sink RecordSink) *Consumer {
	return &Consumer{cfg: cfg, sink: sink}
}

// Run connects to NATS and processes messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := nats.Connect(c.cfg.URL,
		nats.Name("tweet-flights-ingest"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", c.cfg.URL, err)
	}
	c.conn = conn
	defer conn.Close()

	msgs := make(chan *nats.Msg, 256)
	if c.cfg.Queue != "" {
		c.sub, err = conn.ChanQueueSubscribe(c.cfg.Subject, c.cfg.Queue, msgs)
	} else {
		c.sub, err = conn.ChanSubscribe(c.cfg.Subject, msgs)
	}
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.cfg.Subject, err)
	}
	defer c.sub.Unsubscribe()

	log.Printf("Ingest consumer listening on %s (queue %q)", c.cfg.Subject, c.cfg.Queue)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Ingest stopping: received=%d stored=%d skipped=%d",
				c.received, c.stored, c.skipped)
			return ctx.Err()
		case <-ticker.C:
			log.Printf("Ingest: received=%d stored=%d skipped=%d",
				c.received, c.stored, c.skipped)
		case msg := <-msgs:
			c.received++
			if err := c.handle(ctx, msg.Data); err != nil {
				c.skipped++
				log.Printf("Ingest: skipping message: %v", err)
			}
		}
	}
}

// handle decodes a single tweet payload and stores the assembled record.
// Payloads may be flat tweet objects or feed wrappers.
func (c *Consumer) handle(ctx context.Context, data []byte) error {
	tw, err := decodeTweet(data)
	if err != nil {
		return err
	}

	rec := flight.Assemble(tw)
	if err := c.sink.Store(ctx, []*flight.Record{rec}); err != nil {
		return fmt.Errorf("store record for tweet %d: %w", tw.ID, err)
	}
	c.stored++
	return nil
}

func decodeTweet(data []byte) (*tweet.Tweet, error) {
	var wrapper tweet.FeedWrapper
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Tweet != nil && wrapper.Tweet.ID != 0 {
		return wrapper.ToTweet(), nil
	}

	var tw tweet.Tweet
	if err := json.Unmarshal(data, &tw); err != nil {
		return nil, fmt.Errorf("decode tweet payload: %w", err)
	}
	if tw.ID == 0 {
		return nil, fmt.Errorf("tweet payload missing id")
	}
	return &tw, nil
}
