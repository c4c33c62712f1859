// Package twitter retrieves a user's post history from the social-media
// API. The extraction engine treats its output as a finite, already
// materialized collection.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tweet_flights/internal/tweet"
)

const defaultBaseURL = "https://api.twitter.com"

// pageSize is the maximum batch the timeline endpoint returns per request.
const pageSize = 200

// maxPages bounds pagination; the timeline API only serves a user's most
// recent ~3200 posts anyway.
const maxPages = 50

// Client is a minimal timeline API client.
type Client struct {
	baseURL    string
	bearer     string
	httpClient *http.Client
}

// NewClient creates a new API client. If baseURL is empty, the public API
// host is used.
func NewClient(baseURL, bearerToken string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		bearer:  bearerToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchPosts retrieves the full available timeline for a screen name,
// newest first, paginating with max_id until the API returns an empty
// batch.
func (c *Client) FetchPosts(ctx context.Context, screenName string) ([]*tweet.Tweet, error) {
	var all []*tweet.Tweet
	var maxID int64

	for page := 0; page < maxPages; page++ {
		batch, err := c.timelinePage(ctx, screenName, maxID)
		if err != nil {
			return nil, fmt.Errorf("timeline page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)

		// Subsequent requests use max_id to prevent duplicates.
		maxID = int64(batch[len(batch)-1].ID) - 1
	}

	return all, nil
}

// timelinePage fetches one timeline batch. maxID of 0 means "most recent".
func (c *Client) timelinePage(ctx context.Context, screenName string, maxID int64) ([]*tweet.Tweet, error) {
	q := url.Values{}
	q.Set("screen_name", screenName)
	q.Set("count", strconv.Itoa(pageSize))
	q.Set("tweet_mode", "extended")
	if maxID > 0 {
		q.Set("max_id", strconv.FormatInt(maxID, 10))
	}

	endpoint := c.baseURL + "/1.1/statuses/user_timeline.json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Status: resp.StatusCode, Detail: string(body)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var batch []*tweet.Tweet
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal timeline: %w", err)
	}
	return batch, nil
}

// retryAfter reads the backoff hint from a throttled response.
func retryAfter(resp *http.Response) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if s := resp.Header.Get("x-rate-limit-reset"); s != "" {
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			if d := time.Until(time.Unix(epoch, 0)); d > 0 {
				return d
			}
		}
	}
	return 0
}
