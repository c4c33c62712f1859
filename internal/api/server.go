// Package api provides REST API endpoints for extracted flight records.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tweet_flights/internal/flight"
	"tweet_flights/internal/storage"
)

// FlightStore defines the record lookups the server needs. Satisfied by
// storage.PostgresDB; mocked in tests.
type FlightStore interface {
	QueryFlights(ctx context.Context, q storage.FlightQuery) ([]*flight.Record, error)
	GetFetchState(ctx context.Context, screenName string) (*storage.FetchState, error)
}

// Config holds configuration for the flight API server.
type Config struct {
	Port        int
	AuthEnabled bool
	APIKeys     []string // List of valid API keys.
}

// Server provides REST API access to extracted flight records.
type Server struct {
	store       FlightStore
	port        int
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).
}

// NewServer creates a new flight API server.
func NewServer(store FlightStore, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}

	return &Server{
		store:       store,
		port:        cfg.Port,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(corsMiddleware)
	if s.authEnabled {
		r.Use(s.authMiddleware)
	}

	r.Mount("/", s.Router())

	addr := ":" + strconv.Itoa(s.port)
	log.Printf("Flight API starting at http://localhost%s", addr)
	if s.authEnabled {
		log.Printf("Authentication: ENABLED (API key required)")
	} else {
		log.Printf("Authentication: DISABLED (open access)")
	}

	return http.ListenAndServe(addr, r)
}

// Router returns the configured chi router for embedding in other servers
// and tests.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/flights", s.handleFlights)
		r.Get("/flights/tail/{tail}", s.handleFlightsByTail)
		r.Get("/teams/{team}/flights", s.handleFlightsByTeam)
		r.Get("/accounts/{handle}/state", s.handleFetchState)
	})

	return r
}

// corsMiddleware allows browser clients on other origins to hit the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		// Fall back to query parameter (for simple testing).
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleFlights serves filtered record queries:
// GET /api/v1/flights?team=&tail=&departure=&arrival=&parsed=true&limit=&offset=
func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	q := storage.FlightQuery{
		Team:      r.URL.Query().Get("team"),
		Tail:      r.URL.Query().Get("tail"),
		Departure: r.URL.Query().Get("departure"),
		Arrival:   r.URL.Query().Get("arrival"),
	}
	q.ParsedOnly = r.URL.Query().Get("parsed") == "true"
	q.Limit = intParam(r, "limit")
	q.Offset = intParam(r, "offset")

	s.serveQuery(w, r, q)
}

// handleFlightsByTail serves GET /api/v1/flights/tail/{tail}.
func (s *Server) handleFlightsByTail(w http.ResponseWriter, r *http.Request) {
	q := storage.FlightQuery{
		Tail:  strings.ToUpper(chi.URLParam(r, "tail")),
		Limit: intParam(r, "limit"),
	}
	s.serveQuery(w, r, q)
}

// handleFlightsByTeam serves GET /api/v1/teams/{team}/flights.
func (s *Server) handleFlightsByTeam(w http.ResponseWriter, r *http.Request) {
	q := storage.FlightQuery{
		Team:  chi.URLParam(r, "team"),
		Limit: intParam(r, "limit"),
	}
	s.serveQuery(w, r, q)
}

func (s *Server) serveQuery(w http.ResponseWriter, r *http.Request, q storage.FlightQuery) {
	records, err := s.store.QueryFlights(r.Context(), q)
	if err != nil {
		log.Printf("query flights: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"flights": records,
	})
}

// handleFetchState serves GET /api/v1/accounts/{handle}/state.
func (s *Server) handleFetchState(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	st, err := s.store.GetFetchState(r.Context(), handle)
	if err != nil {
		log.Printf("get fetch state: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "account never fetched")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"screen_name": st.ScreenName,
		"newest_id":   st.NewestID,
		"oldest_id":   st.OldestID,
		"tweet_count": st.TweetCount,
		"fetched_at":  st.FetchedAt.Format(time.RFC3339),
	})
}

func intParam(r *http.Request, name string) int {
	if s := r.URL.Query().Get(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
