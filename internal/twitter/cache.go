package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tweet_flights/internal/tweet"
)

// cacheFile is the raw payload file name under each handle's directory.
// The version suffix tracks the raw payload layout, not the posting
// template.
const cacheFile = "raw_tweets_v1.json"

// Cache persists raw retrieved posts keyed by account handle, so re-runs
// are idempotent and free of API calls.
type Cache struct {
	Dir string
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{Dir: dir}
}

func (c *Cache) path(screenName string) string {
	return filepath.Join(c.Dir, screenName, cacheFile)
}

// Load reads the cached raw posts for a handle. The second return value is
// false when no cache entry exists.
func (c *Cache) Load(screenName string) ([]*tweet.Tweet, bool, error) {
	data, err := os.ReadFile(c.path(screenName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache: %w", err)
	}

	var tweets []*tweet.Tweet
	if err := json.Unmarshal(data, &tweets); err != nil {
		return nil, false, fmt.Errorf("decode cache: %w", err)
	}
	return tweets, true, nil
}

// Save writes the raw posts for a handle, replacing any previous entry.
func (c *Cache) Save(screenName string, tweets []*tweet.Tweet) error {
	dir := filepath.Dir(c.path(screenName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.Marshal(tweets)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(c.path(screenName), data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Fetcher combines the API client with the raw-payload cache.
type Fetcher struct {
	Client *Client
	Cache  *Cache
}

// Fetch returns the posts for a handle, serving from the cache unless
// overwrite is set or no cache entry exists. Fresh pulls are cached before
// returning.
func (f *Fetcher) Fetch(ctx context.Context, screenName string, overwrite bool) ([]*tweet.Tweet, error) {
	if !overwrite {
		if tweets, ok, err := f.Cache.Load(screenName); err != nil {
			return nil, err
		} else if ok {
			return tweets, nil
		}
	}

	tweets, err := f.Client.FetchPosts(ctx, screenName)
	if err != nil {
		return nil, err
	}
	if err := f.Cache.Save(screenName, tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}
