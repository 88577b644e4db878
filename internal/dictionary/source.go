package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/svgreve/tussnorm/assets"
	"github.com/svgreve/tussnorm/internal/fileutil"
)

const (
	cacheFileName = "dictionary.json"
	etagFileName  = "dictionary.etag"
	userAgent     = "tussnorm/1.0"

	// Source tags reported on snapshots and in Status.
	SourceRemote  = "remote"
	SourceCache   = "cache"
	SourceBundled = "bundled"
)

// ErrNoSources is returned when the remote document, the local cache and the
// bundled snapshot are all unusable. It is the only fatal acquisition error.
var ErrNoSources = errors.New("no usable dictionary source")

type SourceConfig struct {
	RemoteURL      string
	CacheDirectory string
	TTL            time.Duration
	Timeout        time.Duration
}

// Source acquires dictionary snapshots with a remote-cache-bundled fallback
// chain. It fails soft: GetSnapshot only errors when every source is unusable.
type Source struct {
	config     SourceConfig
	httpClient *resty.Client

	current *Snapshot
}

func NewSource(config SourceConfig) *Source {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.TTL == 0 {
		config.TTL = 24 * time.Hour
	}
	client := resty.New()
	client.SetTimeout(config.Timeout)
	client.SetHeader("User-Agent", userAgent)
	return &Source{
		config:     config,
		httpClient: client,
	}
}

func (s *Source) cachePath() string {
	return filepath.Join(s.config.CacheDirectory, cacheFileName)
}

func (s *Source) etagPath() string {
	return filepath.Join(s.config.CacheDirectory, etagFileName)
}

// GetSnapshot returns the current dictionary snapshot, fetching it if the
// cached copy is stale or absent. Staleness of the cache is acceptable when
// the network is unreachable; absence of every source is not.
func (s *Source) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	return s.acquire(ctx, false)
}

// Refresh bypasses the cache freshness check and fetches the remote document,
// still falling back to cache and bundled data if the fetch fails.
func (s *Source) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.acquire(ctx, true)
}

func (s *Source) acquire(ctx context.Context, forceRefresh bool) (*Snapshot, error) {
	if !forceRefresh {
		if snapshot := s.readCache(); snapshot != nil && time.Since(snapshot.FetchedAt) <= s.config.TTL {
			s.current = snapshot
			return snapshot, nil
		}
	}

	if snapshot := s.fetchRemote(ctx); snapshot != nil {
		s.current = snapshot
		return snapshot, nil
	}

	// A 304 response or a network failure both land here. Any cached copy,
	// stale or not, beats the bundled fallback.
	if snapshot := s.readCache(); snapshot != nil {
		s.current = snapshot
		return snapshot, nil
	}

	if snapshot := s.readBundled(); snapshot != nil {
		s.current = snapshot
		return snapshot, nil
	}

	return nil, ErrNoSources
}

// fetchRemote performs a conditional GET against the remote document. It
// returns nil both on failure and on 304 Not Modified; the caller falls back
// to the cache in either case.
func (s *Source) fetchRemote(ctx context.Context) *Snapshot {
	if s.config.RemoteURL == "" {
		return nil
	}

	request := s.httpClient.R().SetContext(ctx)
	if etag := s.readEtag(); etag != "" {
		request.SetHeader("If-None-Match", etag)
	}

	response, err := request.Get(s.config.RemoteURL)
	if err != nil {
		slog.Warn("dictionary remote fetch failed", "url", s.config.RemoteURL, "error", err)
		return nil
	}
	if response.StatusCode() == http.StatusNotModified {
		slog.Debug("dictionary unchanged on remote", "url", s.config.RemoteURL)
		s.touchCache()
		return nil
	}
	if response.StatusCode() != http.StatusOK {
		slog.Warn("dictionary remote fetch returned an error status",
			"url", s.config.RemoteURL, "status", response.StatusCode())
		return nil
	}

	doc, err := ParseDocument(response.Body())
	if err != nil {
		slog.Warn("dictionary remote document is invalid", "url", s.config.RemoteURL, "error", err)
		return nil
	}

	now := time.Now()
	if err := s.writeCache(response.Body()); err != nil {
		slog.Warn("failed to persist dictionary cache", "error", err)
	}
	if etag := response.Header().Get("ETag"); etag != "" {
		if err := s.writeEtag(etag); err != nil {
			slog.Warn("failed to persist dictionary etag", "error", err)
		}
	}
	return NewSnapshot(doc, SourceRemote, now)
}

func (s *Source) readCache() *Snapshot {
	contents, err := os.ReadFile(s.cachePath())
	if err != nil {
		return nil
	}
	doc, err := ParseDocument(contents)
	if err != nil {
		slog.Warn("dictionary cache file is invalid, ignoring it", "path", s.cachePath(), "error", err)
		return nil
	}
	fetchedAt := time.Time{}
	if info, err := os.Stat(s.cachePath()); err == nil {
		fetchedAt = info.ModTime()
	}
	return NewSnapshot(doc, SourceCache, fetchedAt)
}

func (s *Source) readBundled() *Snapshot {
	doc, err := ParseDocument(assets.BundledDictionary)
	if err != nil {
		slog.Warn("bundled dictionary is invalid", "error", err)
		return nil
	}
	return NewSnapshot(doc, SourceBundled, time.Time{})
}

func (s *Source) readEtag() string {
	contents, err := os.ReadFile(s.etagPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(contents))
}

func (s *Source) writeCache(contents []byte) error {
	if err := fileutil.WriteAtomic(s.cachePath(), contents, 0644); err != nil {
		return fmt.Errorf("fileutil.WriteAtomic(%s) > %w", s.cachePath(), err)
	}
	return nil
}

func (s *Source) writeEtag(etag string) error {
	if err := fileutil.WriteAtomic(s.etagPath(), []byte(etag), 0644); err != nil {
		return fmt.Errorf("fileutil.WriteAtomic(%s) > %w", s.etagPath(), err)
	}
	return nil
}

// touchCache refreshes the cache file timestamp after a 304 so the TTL check
// treats the cached copy as validated.
func (s *Source) touchCache() {
	now := time.Now()
	if err := os.Chtimes(s.cachePath(), now, now); err != nil {
		slog.Debug("failed to touch dictionary cache", "error", err)
	}
}

// InvalidateCache removes the cache and etag files so the next acquisition
// must hit the remote source.
func (s *Source) InvalidateCache() error {
	for _, path := range []string{s.cachePath(), s.etagPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("os.Remove(%s) > %w", path, err)
		}
	}
	s.current = nil
	return nil
}

// SourceStatus describes where the current snapshot came from.
type SourceStatus struct {
	Source       string
	Version      string
	CacheAge     time.Duration
	TotalEntries int
	RemoteURL    string
}

// Status reports the state of the most recently acquired snapshot.
func (s *Source) Status() (SourceStatus, error) {
	if s.current == nil {
		return SourceStatus{}, fmt.Errorf("no dictionary loaded yet")
	}
	status := SourceStatus{
		Source:       s.current.SourceTag,
		Version:      s.current.Version,
		TotalEntries: len(s.current.Entries),
		RemoteURL:    s.config.RemoteURL,
	}
	if info, err := os.Stat(s.cachePath()); err == nil {
		status.CacheAge = time.Since(info.ModTime())
	}
	return status, nil
}
