// Package cache tracks repositories that have already been analyzed so
// repeated runs can skip them while their verdict is still fresh.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hal/testhound/internal/log"
)

// Version should be incremented when the on-disk format changes to
// invalidate old stores.
const Version = 1

// DefaultMaxAge is the freshness window: entries older than this are
// reprocessed rather than skipped.
const DefaultMaxAge = 7 * 24 * time.Hour

// Entry records the outcome of one orchestrator pass over a repository.
// A zero PRsFound is still an outcome worth caching: it prevents
// re-scanning unproductive repositories every run.
type Entry struct {
	LastProcessed time.Time `json:"lastProcessed"`
	PRsFound      int       `json:"prsFound"`
	SizeKB        int       `json:"sizeKb"`
}

// store is the serialized form of the cache blob.
type store struct {
	Version     int              `json:"version"`
	LastUpdated time.Time        `json:"lastUpdated"`
	Repos       map[string]Entry `json:"repos"`
}

// Cache is a durable set of processed repository identifiers. It is not
// safe for concurrent use; the single orchestrator flow owns it.
type Cache struct {
	path   string
	maxAge time.Duration
	repos  map[string]Entry
}

// New creates a cache backed by the given file path. The file is not
// read until Load is called.
func New(path string) *Cache {
	return &Cache{
		path:   path,
		maxAge: DefaultMaxAge,
		repos:  make(map[string]Entry),
	}
}

// SetMaxAge overrides the freshness window.
func (c *Cache) SetMaxAge(d time.Duration) {
	if d > 0 {
		c.maxAge = d
	}
}

// Load reads the store from disk. A missing or corrupt store yields an
// empty cache with a warning, never an error: losing the cache only
// costs redundant work.
func (c *Cache) Load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("could not read cache file, starting empty", "path", c.path, "error", err)
		}
		return
	}

	var s store
	if err := json.Unmarshal(data, &s); err != nil {
		log.Warn("cache file is corrupt, starting empty", "path", c.path, "error", err)
		return
	}
	if s.Version != Version {
		log.Debug("cache version mismatch, starting empty", "cached", s.Version, "current", Version)
		return
	}

	if s.Repos != nil {
		c.repos = s.Repos
	}
	log.Info("loaded cache", "repos", len(c.repos), "path", c.path)
}

// Save writes the store to disk. Safe to call repeatedly; the write goes
// through a temp file so a crash mid-write cannot corrupt the store.
func (c *Cache) Save() error {
	s := store{
		Version:     Version,
		LastUpdated: time.Now(),
		Repos:       c.repos,
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}

// IsFresh reports whether the repository was processed within the
// freshness window. Unknown repositories and entries with a zero
// timestamp are not fresh, so anything questionable gets reprocessed.
func (c *Cache) IsFresh(fullName string) bool {
	entry, ok := c.repos[fullName]
	if !ok {
		return false
	}
	if entry.LastProcessed.IsZero() {
		return false
	}
	return time.Since(entry.LastProcessed) < c.maxAge
}

// MarkProcessed upserts the entry for a repository. Called exactly once
// per orchestrator pass, whether or not qualifying PRs were found.
func (c *Cache) MarkProcessed(fullName string, prsFound, sizeKB int) {
	c.repos[fullName] = Entry{
		LastProcessed: time.Now(),
		PRsFound:      prsFound,
		SizeKB:        sizeKB,
	}
}

// Get returns the entry for a repository, if present.
func (c *Cache) Get(fullName string) (Entry, bool) {
	entry, ok := c.repos[fullName]
	return entry, ok
}

// Len returns the number of cached repositories.
func (c *Cache) Len() int {
	return len(c.repos)
}

// Clear removes all entries and deletes the store file.
func (c *Cache) Clear() error {
	c.repos = make(map[string]Entry)
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Stats summarizes the store for the cache subcommand.
type Stats struct {
	Total      int
	Fresh      int
	Expired    int
	TotalFound int
}

// Stats returns counts over the loaded entries.
func (c *Cache) Stats() Stats {
	var s Stats
	s.Total = len(c.repos)
	for name, entry := range c.repos {
		if c.IsFresh(name) {
			s.Fresh++
		} else {
			s.Expired++
		}
		s.TotalFound += entry.PRsFound
	}
	return s
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}
