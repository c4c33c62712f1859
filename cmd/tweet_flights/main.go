// Command-line entry point for the tweet flight extraction pipeline.
//
// Subcommands:
//
//	fetch    - pull a team account's timeline from the Twitter API into the local cache
//	extract  - run cached or JSONL tweets through the extraction engine
//	ingest   - consume live tweet payloads from NATS and store extracted records
//	serve    - REST API over extracted records in PostgreSQL
//	report   - analytics aggregates from ClickHouse
//	initdb   - create PostgreSQL and ClickHouse schemas
//
// Extract input formats
// ---------------------
// Tweets come in two shapes: flat Twitter API objects and live-feed
// wrappers with the tweet nested under a "tweet" key. Both are accepted,
// from the local fetch cache or from JSONL on stdin or a file.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"tweet_flights/internal/api"
	"tweet_flights/internal/export"
	"tweet_flights/internal/flight"
	"tweet_flights/internal/ingest"
	"tweet_flights/internal/storage"
	"tweet_flights/internal/tweet"
	"tweet_flights/internal/twitter"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "tweet_flights - commands:")
	fmt.Fprintln(w, "  fetch    - download a team account timeline into the cache")
	fmt.Fprintln(w, "  extract  - parse cached or JSONL tweets and output records")
	fmt.Fprintln(w, "  ingest   - consume live tweets from NATS")
	fmt.Fprintln(w, "  serve    - REST API over records in PostgreSQL")
	fmt.Fprintln(w, "  report   - analytics aggregates from ClickHouse")
	fmt.Fprintln(w, "  initdb   - create database schemas")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tweet_flights fetch -screen-name Dodgers [-overwrite] [-cache-dir data]")
	fmt.Fprintln(w, "  tweet_flights extract -screen-name Dodgers [-output out.json] [-csv-dir exports] [-sqlite flights.db] [-pretty] [-stats]")
	fmt.Fprintln(w, "  tweet_flights extract -input tweets.jsonl [...]")
	fmt.Fprintln(w, "  tweet_flights ingest -nats-url nats://localhost:4222 [-sqlite flights.db | -pg]")
	fmt.Fprintln(w, "  tweet_flights serve [-port 8081] [-auth -api-keys k1,k2]")
	fmt.Fprintln(w, "  tweet_flights report [-year 2019] [-top 10] [-load-sqlite flights.db]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - fetch reads the bearer token from TWITTER_BEARER_TOKEN.")
	fmt.Fprintln(w, "  - extract JSONL input takes one tweet object per line (flat or feed-wrapped).")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "fetch":
		runFetch(os.Args[2:])
	case "extract":
		runExtract(os.Args[2:])
	case "ingest":
		runIngest(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "report":
		runReport(os.Args[2:])
	case "initdb":
		runInitDB(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	screenName := fs.String("screen-name", "", "Team account handle to fetch (required)")
	cacheDir := fs.String("cache-dir", "data", "Directory for cached raw tweet payloads")
	overwrite := fs.Bool("overwrite", false, "Refetch even if a cache entry exists")
	baseURL := fs.String("base-url", "", "Override the Twitter API base URL")
	trackState := fs.Bool("pg-state", false, "Record fetch state in PostgreSQL")
	pgCfg := postgresFlags(fs)
	_ = fs.Parse(args)

	if *screenName == "" {
		fmt.Fprintln(os.Stderr, "fetch: -screen-name is required")
		fs.Usage()
		os.Exit(2)
	}

	token := os.Getenv("TWITTER_BEARER_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "fetch: TWITTER_BEARER_TOKEN is not set")
		os.Exit(1)
	}

	ctx := context.Background()
	fetcher := &twitter.Fetcher{
		Client: twitter.NewClient(*baseURL, token),
		Cache:  twitter.NewCache(*cacheDir),
	}

	tweets, err := fetcher.Fetch(ctx, *screenName, *overwrite)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Fetched %d tweets for %s\n", len(tweets), *screenName)

	if *trackState {
		if err := recordFetchState(ctx, *pgCfg, *screenName, tweets); err != nil {
			fmt.Fprintf(os.Stderr, "Recording fetch state failed: %v\n", err)
			os.Exit(1)
		}
	}
}

func recordFetchState(ctx context.Context, cfg storage.PostgresConfig, screenName string, tweets []*tweet.Tweet) error {
	pg, err := storage.OpenPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pg.Close()

	st := &storage.FetchState{ScreenName: screenName, TweetCount: len(tweets)}
	for _, tw := range tweets {
		id := int64(tw.ID)
		if id > st.NewestID {
			st.NewestID = id
		}
		if st.OldestID == 0 || id < st.OldestID {
			st.OldestID = id
		}
	}
	return pg.UpsertFetchState(ctx, st)
}

func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	screenName := fs.String("screen-name", "", "Read tweets from the fetch cache for this handle")
	cacheDir := fs.String("cache-dir", "data", "Directory holding cached raw tweet payloads")
	inPath := fs.String("input", "", "Input JSONL file (default: stdin when no -screen-name)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	csvDir := fs.String("csv-dir", "", "Write parsed/unparsed/nones CSV files to this directory")
	csvVersion := fs.String("csv-version", "v1", "Dataset version suffix for CSV file names")
	sqlitePath := fs.String("sqlite", "", "Store records in this sqlite database")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	_ = fs.Parse(args)

	tweets, err := loadTweets(*screenName, *cacheDir, *inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Loading tweets failed: %v\n", err)
		os.Exit(1)
	}

	records := flight.ExtractAll(tweets)

	if *sqlitePath != "" {
		db, err := storage.Open(*sqlitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Opening sqlite: %v\n", err)
			os.Exit(1)
		}
		if err := db.InsertAll(records); err != nil {
			db.Close()
			fmt.Fprintf(os.Stderr, "Storing records: %v\n", err)
			os.Exit(1)
		}
		db.Close()
	}

	if *csvDir != "" {
		w := &export.Writer{Dir: *csvDir, Version: *csvVersion}
		paths, err := w.Save(records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Writing CSV: %v\n", err)
			os.Exit(1)
		}
		for _, p := range paths {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", p)
		}
	}

	var wout io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		wout = f
	}

	enc, err := marshalJSON(records, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}
	_, _ = wout.Write(enc)
	if wout == os.Stdout {
		_, _ = wout.Write([]byte("\n"))
	}

	if *showStats {
		var parsed, replies, retweets int
		for _, rec := range records {
			if rec.Parsed {
				parsed++
			}
			if rec.IsReply {
				replies++
			}
			if rec.IsRetweet {
				retweets++
			}
		}
		fmt.Fprintf(os.Stderr,
			"stats: tweets=%d records=%d parsed=%d replies=%d retweets=%d\n",
			len(tweets), len(records), parsed, replies, retweets,
		)
	}
}

// loadTweets reads input tweets from the fetch cache, a JSONL file, or stdin.
func loadTweets(screenName, cacheDir, inPath string) ([]*tweet.Tweet, error) {
	if screenName != "" {
		cache := twitter.NewCache(cacheDir)
		tweets, ok, err := cache.Load(screenName)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no cache entry for %s (run fetch first)", screenName)
		}
		return tweets, nil
	}

	var r io.Reader = os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return readJSONL(r)
}

// readJSONL decodes one tweet per line, accepting flat tweet objects and
// live-feed wrappers. Lines that decode to nothing are skipped.
func readJSONL(r io.Reader) ([]*tweet.Tweet, error) {
	scanner := bufio.NewScanner(r)
	// JSON lines can be long; bump buffer (20MB).
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 20*1024*1024)

	var tweets []*tweet.Tweet
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		b := []byte(line)

		var w tweet.FeedWrapper
		if err := json.Unmarshal(b, &w); err == nil && w.Tweet != nil && w.Tweet.ID != 0 {
			tweets = append(tweets, w.ToTweet())
			continue
		}

		var tw tweet.Tweet
		if err := json.Unmarshal(b, &tw); err == nil && tw.ID != 0 {
			tweets = append(tweets, &tw)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return tweets, nil
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	natsURL := fs.String("nats-url", envOrDefault("NATS_URL", "nats://localhost:4222"), "NATS server URL")
	subject := fs.String("subject", "tweets.flights", "NATS subject carrying tweet JSON")
	queue := fs.String("queue", "tweet-flights", "NATS queue group (empty for none)")
	sqlitePath := fs.String("sqlite", "", "Store records in this sqlite database")
	usePG := fs.Bool("pg", false, "Store records in PostgreSQL")
	pgCfg := postgresFlags(fs)
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink ingest.RecordSink
	switch {
	case *usePG:
		pg, err := storage.OpenPostgres(ctx, *pgCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Opening PostgreSQL: %v\n", err)
			os.Exit(1)
		}
		defer pg.Close()
		sink = ingest.PostgresSink(pg)
	case *sqlitePath != "":
		db, err := storage.Open(*sqlitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Opening sqlite: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		sink = ingest.SQLiteSink(db)
	default:
		fmt.Fprintln(os.Stderr, "ingest: one of -sqlite or -pg is required")
		os.Exit(2)
	}

	consumer := ingest.NewConsumer(ingest.Config{
		URL:     *natsURL,
		Subject: *subject,
		Queue:   *queue,
	}, sink)

	if err := consumer.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Ingest error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 8081, "HTTP port for API server")
	authEnabled := fs.Bool("auth", false, "Enable API key authentication")
	apiKeys := fs.String("api-keys", "", "Comma-separated list of valid API keys (when auth enabled)")
	pgCfg := postgresFlags(fs)
	_ = fs.Parse(args)

	ctx := context.Background()
	pg, err := storage.OpenPostgres(ctx, *pgCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Opening PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	var keys []string
	if *apiKeys != "" {
		keys = strings.Split(*apiKeys, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
	}

	server := api.NewServer(pg, api.Config{
		Port:        *port,
		AuthEnabled: *authEnabled,
		APIKeys:     keys,
	})

	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	year := fs.Int("year", 0, "Restrict aggregates to this year (0 for all)")
	top := fs.Int("top", 10, "Number of entries in top lists")
	loadSqlite := fs.String("load-sqlite", "", "Load records from this sqlite database before reporting")
	chCfg := clickhouseFlags(fs)
	_ = fs.Parse(args)

	ctx := context.Background()
	ch, err := storage.OpenClickHouse(ctx, *chCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Opening ClickHouse: %v\n", err)
		os.Exit(1)
	}
	defer ch.Close()

	if *loadSqlite != "" {
		if err := loadIntoClickHouse(ctx, ch, *loadSqlite); err != nil {
			fmt.Fprintf(os.Stderr, "Loading records: %v\n", err)
			os.Exit(1)
		}
	}

	days, err := ch.PostsPerDay(ctx, *year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report failed: %v\n", err)
		os.Exit(1)
	}
	var total uint64
	for _, d := range days {
		total += d.Count
	}
	fmt.Printf("Posts: %d across %d days\n", total, len(days))

	sections := []struct {
		title string
		fn    func(context.Context, int, int) ([]storage.ValueCount, error)
	}{
		{"Top teams", ch.TopTeams},
		{"Top departures", ch.TopDepartures},
		{"Top arrivals", ch.TopArrivals},
	}
	for _, sec := range sections {
		counts, err := sec.fn(ctx, *year, *top)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Report failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s:\n", sec.title)
		for _, vc := range counts {
			fmt.Printf("  %-24s %d\n", vc.Value, vc.Count)
		}
	}
}

func loadIntoClickHouse(ctx context.Context, ch *storage.ClickHouseDB, sqlitePath string) error {
	db, err := storage.Open(sqlitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.Query(storage.QueryParams{Limit: -1})
	if err != nil {
		return err
	}
	if err := ch.InsertRecords(ctx, records); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d records into ClickHouse\n", len(records))
	return nil
}

func runInitDB(args []string) {
	fs := flag.NewFlagSet("initdb", flag.ExitOnError)
	pgCfg := postgresFlags(fs)
	chCfg := clickhouseFlags(fs)
	_ = fs.Parse(args)

	ctx := context.Background()
	backends, err := storage.OpenBackends(ctx, storage.Config{
		ClickHouse: *chCfg,
		Postgres:   *pgCfg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Opening backends: %v\n", err)
		os.Exit(1)
	}
	defer backends.Close()

	if err := backends.CreateSchemas(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Creating schemas: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "Schemas created")
}

func postgresFlags(fs *flag.FlagSet) *storage.PostgresConfig {
	cfg := &storage.PostgresConfig{}
	fs.StringVar(&cfg.Host, "pg-host", envOrDefault("POSTGRES_HOST", "localhost"), "PostgreSQL host")
	fs.IntVar(&cfg.Port, "pg-port", envOrDefaultInt("POSTGRES_PORT", 5432), "PostgreSQL port")
	fs.StringVar(&cfg.User, "pg-user", envOrDefault("POSTGRES_USER", "tweet_flights"), "PostgreSQL user")
	fs.StringVar(&cfg.Password, "pg-password", envOrDefault("POSTGRES_PASSWORD", "tweet_flights"), "PostgreSQL password")
	fs.StringVar(&cfg.Database, "pg-database", envOrDefault("POSTGRES_DATABASE", "tweet_flights"), "PostgreSQL database")
	return cfg
}

func clickhouseFlags(fs *flag.FlagSet) *storage.ClickHouseConfig {
	cfg := &storage.ClickHouseConfig{}
	fs.StringVar(&cfg.Host, "ch-host", envOrDefault("CLICKHOUSE_HOST", "localhost"), "ClickHouse host")
	fs.IntVar(&cfg.Port, "ch-port", envOrDefaultInt("CLICKHOUSE_PORT", 9000), "ClickHouse port")
	fs.StringVar(&cfg.User, "ch-user", envOrDefault("CLICKHOUSE_USER", "default"), "ClickHouse user")
	fs.StringVar(&cfg.Password, "ch-password", envOrDefault("CLICKHOUSE_PASSWORD", ""), "ClickHouse password")
	fs.StringVar(&cfg.Database, "ch-database", envOrDefault("CLICKHOUSE_DATABASE", "tweet_flights"), "ClickHouse database")
	return cfg
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
