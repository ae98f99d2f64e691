package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/scbrown/cheeky/internal/store"
)

// parseSince extracts a "since" query parameter as a time.Time.
// Accepts RFC3339 timestamps or duration shorthand (e.g., "24h", "7d").
func parseSince(r *http.Request) (time.Time, error) {
	return parseTime(r, "since")
}

// parseBefore extracts the required "before" cutoff for pruning.
func parseBefore(r *http.Request) (time.Time, error) {
	t, err := parseTime(r, "before")
	if err != nil {
		return time.Time{}, err
	}
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("before query parameter is required")
	}
	return t, nil
}

func parseTime(r *http.Request, key string) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// Duration shorthand: "7d", "24h", etc.
	if len(s) > 1 {
		numStr := s[:len(s)-1]
		unit := s[len(s)-1]
		if n, err := strconv.Atoi(numStr); err == nil {
			switch unit {
			case 'h':
				return time.Now().UTC().Add(-time.Duration(n) * time.Hour), nil
			case 'd':
				return time.Now().UTC().Add(-time.Duration(n) * 24 * time.Hour), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s value %q: expected RFC3339 timestamp or duration (e.g., 24h, 7d)", key, s)
}

func parseInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, s, err)
	}
	return n, nil
}

func parseBool(r *http.Request, key string) bool {
	s := r.URL.Query().Get(key)
	return s == "true" || s == "1"
}

func parseListOpts(r *http.Request) (store.ListOpts, error) {
	since, err := parseSince(r)
	if err != nil {
		return store.ListOpts{}, err
	}
	limit, err := parseInt(r, "limit")
	if err != nil {
		return store.ListOpts{}, err
	}
	return store.ListOpts{
		Since:      since,
		Command:    r.URL.Query().Get("command"),
		Source:     r.URL.Query().Get("source"),
		MissesOnly: parseBool(r, "misses"),
		Limit:      limit,
	}, nil
}
