// Package cache persists previously resolved raw-name results so repeated
// normalization runs are idempotent and cheap.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/svgreve/tussnorm/internal/dictionary"
	"github.com/svgreve/tussnorm/internal/fileutil"
	"github.com/svgreve/tussnorm/internal/match"
)

const fileVersion = "1.0"

// Record is one cached resolution keyed by the normalized raw name.
type Record struct {
	Result     match.Result `json:"result"`
	FirstSeen  time.Time    `json:"first_seen"`
	ResolvedAt time.Time    `json:"resolved_at"`
	LastUsed   time.Time    `json:"last_used"`
	UseCount   int          `json:"use_count"`
}

type metadata struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	TotalEntries int       `json:"total_entries"`
	Version      string    `json:"version"`
}

type fileData struct {
	Metadata metadata          `json:"metadata"`
	Mappings map[string]Record `json:"mappings"`
}

// Stats aggregates the settled state of the whole cache file.
type Stats struct {
	TotalEntries     int
	Exact            int
	Fuzzy            int
	FallbackResolved int
	Unresolved       int
}

// ResultCache is a JSON-file-backed store of normalization results. A corrupt
// or missing file degrades to an empty cache; saving uses the atomic replace
// discipline so a concurrent session never reads a partial write.
type ResultCache struct {
	path string
	data fileData
}

func NewResultCache(path string) *ResultCache {
	cache := &ResultCache{path: path}
	cache.data = cache.load()
	return cache
}

func (c *ResultCache) load() fileData {
	empty := fileData{
		Metadata: metadata{CreatedAt: time.Now(), UpdatedAt: time.Now(), Version: fileVersion},
		Mappings: map[string]Record{},
	}
	contents, err := os.ReadFile(c.path)
	if err != nil {
		return empty
	}
	var data fileData
	if err := json.Unmarshal(contents, &data); err != nil {
		slog.Warn("result cache file is corrupt, starting with an empty cache",
			"path", c.path, "error", err)
		return empty
	}
	if data.Mappings == nil {
		data.Mappings = map[string]Record{}
	}
	return data
}

// Get returns the cached record for rawName or nil. Reads bump the usage
// bookkeeping, persisted on the next Save.
func (c *ResultCache) Get(rawName string) *Record {
	key := dictionary.NormalizeName(rawName)
	record, ok := c.data.Mappings[key]
	if !ok {
		return nil
	}
	record.LastUsed = time.Now()
	record.UseCount++
	c.data.Mappings[key] = record
	return &record
}

// Put stores a resolution for rawName. A placeholder (needs_fallback) never
// overwrites a settled record; a settled record always overwrites a
// placeholder.
func (c *ResultCache) Put(rawName string, result match.Result) {
	key := dictionary.NormalizeName(rawName)
	now := time.Now()

	existing, ok := c.data.Mappings[key]
	if ok && existing.Result.Tier.Settled() && !result.Tier.Settled() {
		return
	}

	record := Record{
		Result:     result,
		FirstSeen:  now,
		ResolvedAt: now,
		LastUsed:   now,
		UseCount:   1,
	}
	if ok {
		record.FirstSeen = existing.FirstSeen
		record.UseCount = existing.UseCount + 1
	}
	c.data.Mappings[key] = record
	c.data.Metadata.UpdatedAt = now
	c.data.Metadata.TotalEntries = len(c.data.Mappings)
}

// IsStale reports whether a record is older than ttl. Settled records are
// reused indefinitely by the coordinator; this is for callers that want their
// own eviction policy.
func (c *ResultCache) IsStale(record Record, ttl time.Duration) bool {
	return time.Since(record.ResolvedAt) > ttl
}

// Save persists the cache with a write-to-temp-then-rename.
func (c *ResultCache) Save() error {
	c.data.Metadata.TotalEntries = len(c.data.Mappings)
	contents, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent > %w", err)
	}
	if err := fileutil.WriteAtomic(c.path, contents, 0644); err != nil {
		return fmt.Errorf("fileutil.WriteAtomic(%s) > %w", c.path, err)
	}
	return nil
}

// Stats tallies the cache contents per tier.
func (c *ResultCache) Stats() Stats {
	stats := Stats{TotalEntries: len(c.data.Mappings)}
	for _, record := range c.data.Mappings {
		switch record.Result.Tier {
		case match.TierExact:
			stats.Exact++
		case match.TierFuzzy:
			stats.Fuzzy++
		case match.TierFallbackResolved:
			stats.FallbackResolved++
		default:
			stats.Unresolved++
		}
	}
	return stats
}
