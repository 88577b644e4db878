package main

import (
	"context"
	"fmt"
	"time"

	"github.com/svgreve/tussnorm/internal/cache"
	"github.com/svgreve/tussnorm/internal/config"
	"github.com/svgreve/tussnorm/internal/contrib"
	"github.com/svgreve/tussnorm/internal/dictionary"
	"github.com/svgreve/tussnorm/internal/match"
	"github.com/svgreve/tussnorm/internal/normalizer"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func newDictionarySource(cfg *config.Config) *dictionary.Source {
	return dictionary.NewSource(dictionary.SourceConfig{
		RemoteURL:      cfg.Dictionary.RemoteURL,
		CacheDirectory: cfg.Dictionary.CacheDirectory,
		TTL:            time.Duration(cfg.Dictionary.TTLHours) * time.Hour,
		Timeout:        time.Duration(cfg.Dictionary.TimeoutSeconds) * time.Second,
	})
}

func newNormalizer(ctx context.Context, cfg *config.Config) (*normalizer.Normalizer, error) {
	source := newDictionarySource(cfg)
	snapshot, err := source.GetSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("source.GetSnapshot > %w", err)
	}

	engine := match.NewEngine(snapshot,
		match.WithFuzzyThreshold(cfg.Matching.FuzzyThreshold),
		match.WithShortlistSize(cfg.Matching.ShortlistSize),
	)
	resultCache := cache.NewResultCache(cfg.Cache.Path)
	ledger := contrib.NewLedger(cfg.Contributions.LedgerPath)
	return normalizer.NewNormalizer(engine, resultCache, ledger), nil
}
