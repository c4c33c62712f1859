package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPostsPagination(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query().Get("max_id"))

		if r.URL.Path != "/1.1/statuses/user_timeline.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		switch len(requests) {
		case 1:
			fmt.Fprint(w, `[{"id": 100, "full_text": "newest"}, {"id": 90, "full_text": "older"}]`)
		case 2:
			fmt.Fprint(w, `[{"id": 80, "full_text": "oldest"}]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	tweets, err := c.FetchPosts(context.Background(), "Dodgers")
	if err != nil {
		t.Fatalf("FetchPosts: %v", err)
	}

	if len(tweets) != 3 {
		t.Fatalf("expected 3 tweets, got %d", len(tweets))
	}
	if tweets[0].ID != 100 || tweets[2].ID != 80 {
		t.Errorf("unexpected order: %d ... %d", tweets[0].ID, tweets[2].ID)
	}

	// First page unbounded, then max_id walks below the last seen ID.
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
	if requests[0] != "" {
		t.Errorf("first request max_id = %q, want empty", requests[0])
	}
	if requests[1] != "89" {
		t.Errorf("second request max_id = %q, want 89", requests[1])
	}
	if requests[2] != "79" {
		t.Errorf("third request max_id = %q, want 79", requests[2])
	}
}

func TestFetchPostsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	_, err := c.FetchPosts(context.Background(), "Dodgers")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d", authErr.Status)
	}
}

func TestFetchPostsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	_, err := c.FetchPosts(context.Background(), "Dodgers")

	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rlErr.RetryAfter != 2*time.Minute {
		t.Errorf("RetryAfter = %v, want 2m", rlErr.RetryAfter)
	}
}

func TestFetchPostsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	if _, err := c.FetchPosts(context.Background(), "Dodgers"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
