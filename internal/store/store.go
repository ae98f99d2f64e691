// Package store defines the storage interface for explanation history.
package store

import (
	"context"
	"time"

	"github.com/scbrown/cheeky/internal/model"
)

// Store is the persistence interface for explanation history.
type Store interface {
	// Record persists a single explanation request. A missing ID or
	// timestamp is filled in.
	Record(ctx context.Context, e model.HistoryEntry) error

	// List returns history entries matching opts, newest first.
	List(ctx context.Context, opts ListOpts) ([]model.HistoryEntry, error)

	// Stats returns summary statistics about recorded history.
	Stats(ctx context.Context) (Stats, error)

	// Prune deletes entries recorded before the given time and returns how
	// many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// ListOpts controls filtering for List.
type ListOpts struct {
	Since      time.Time // Only entries at or after this time.
	Command    string    // Filter by resolved command name.
	Source     string    // Filter by source ("cli", "http").
	MissesOnly bool      // Only entries that named no known command.
	Limit      int       // Maximum results; 0 means no limit.
}

// NameCount pairs a name (command, flag or input) with its occurrence count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats holds summary statistics about recorded history.
type Stats struct {
	Total          int         `json:"total"`
	Found          int         `json:"found"`
	NotFound       int         `json:"not_found"`
	UniqueCommands int         `json:"unique_commands"`
	TopCommands    []NameCount `json:"top_commands"`
	TopFlags       []NameCount `json:"top_flags"`
	TopMisses      []NameCount `json:"top_misses"`
	Earliest       time.Time   `json:"earliest"`
	Latest         time.Time   `json:"latest"`
	Last24h        int         `json:"last_24h"`
	Last7d         int         `json:"last_7d"`
	Last30d        int         `json:"last_30d"`
}

// TopN is the number of rows in each Stats ranking.
const TopN = 5
