// Package normalizer coordinates batch normalization: cache-first lookups,
// tiered matching, and write-through of externally resolved fallbacks.
package normalizer

import (
	"context"
	"fmt"

	"github.com/svgreve/tussnorm/internal/cache"
	"github.com/svgreve/tussnorm/internal/contrib"
	"github.com/svgreve/tussnorm/internal/match"
	"github.com/svgreve/tussnorm/internal/resolver"
)

// FallbackResolvedScore is the conventional confidence recorded for answers
// supplied through the fallback resolver boundary.
const FallbackResolvedScore = 90.0

// RunStatistics tallies one batch for reporting.
type RunStatistics struct {
	Total            int
	CacheHits        int
	Exact            int
	Fuzzy            int
	NeedsFallback    int
	FallbackResolved int
}

// Normalizer is the batch coordinator. It is meant for a single logical
// session processing one batch at a time; the snapshot and engine it holds
// are immutable, only the cache and ledger are mutated.
type Normalizer struct {
	engine *match.Engine
	cache  *cache.ResultCache
	ledger *contrib.Ledger

	stats RunStatistics
}

func NewNormalizer(engine *match.Engine, resultCache *cache.ResultCache, ledger *contrib.Ledger) *Normalizer {
	return &Normalizer{
		engine: engine,
		cache:  resultCache,
		ledger: ledger,
	}
}

// NormalizeOne resolves a single raw name, consulting the cache first. A
// cached needs_fallback record is a placeholder, not an answer: it is
// recomputed and re-offered to the fallback path instead of being reused.
func (n *Normalizer) NormalizeOne(rawName string) match.Result {
	n.stats.Total++

	if record := n.cache.Get(rawName); record != nil && record.Result.Tier.Settled() {
		n.stats.CacheHits++
		result := record.Result
		result.RawName = rawName
		return result
	}

	result := n.engine.Resolve(rawName)
	switch result.Tier {
	case match.TierExact:
		n.stats.Exact++
	case match.TierFuzzy:
		n.stats.Fuzzy++
	default:
		n.stats.NeedsFallback++
	}

	// Placeholders are cached too, so the fallback path can see the best
	// score without recomputing, but they never count as settled.
	n.cache.Put(rawName, result)
	return result
}

// NormalizeBatch resolves every raw name in order and persists the cache
// once at the end. Records that come back needs_fallback stay visibly
// unresolved; the caller completes them through ApplyFallbackResult.
func (n *Normalizer) NormalizeBatch(rawNames []string) ([]match.Result, RunStatistics, error) {
	results := make([]match.Result, 0, len(rawNames))
	for _, rawName := range rawNames {
		results = append(results, n.NormalizeOne(rawName))
	}
	if err := n.cache.Save(); err != nil {
		return results, n.stats, fmt.Errorf("cache.Save > %w", err)
	}
	return results, n.stats, nil
}

// ApplyFallbackResult records an externally supplied resolution for a raw
// name, writing it through the result cache and the contribution ledger.
func (n *Normalizer) ApplyFallbackResult(rawName, canonicalName, code string) (match.Result, error) {
	result := match.Result{
		RawName:       rawName,
		CanonicalName: canonicalName,
		DisplayName:   canonicalName,
		Code:          code,
		Tier:          match.TierFallbackResolved,
		Score:         FallbackResolvedScore,
	}
	n.stats.FallbackResolved++

	n.cache.Put(rawName, result)
	if err := n.cache.Save(); err != nil {
		return result, fmt.Errorf("cache.Save > %w", err)
	}

	n.ledger.Record(rawName, canonicalName, code, FallbackResolvedScore)
	if err := n.ledger.Save(); err != nil {
		return result, fmt.Errorf("ledger.Save > %w", err)
	}
	return result, nil
}

// ResolveFallbacks runs the external resolver over every needs_fallback
// result and applies the answers. Results settle in place; a resolver error
// aborts the loop, leaving the already-applied answers valid in the cache.
func (n *Normalizer) ResolveFallbacks(ctx context.Context, results []match.Result, client resolver.Client) ([]match.Result, error) {
	threshold := n.engine.FuzzyThreshold()
	for i, result := range results {
		if result.Tier != match.TierNeedsFallback {
			continue
		}
		answer, err := client.ResolveName(ctx, resolver.ResolveNameRequest{
			RawName:   result.RawName,
			BestScore: result.Score,
			Threshold: threshold,
		})
		if err != nil {
			return results, fmt.Errorf("client.ResolveName(%s) > %w", result.RawName, err)
		}
		applied, err := n.ApplyFallbackResult(result.RawName, answer.CanonicalName, answer.Code)
		if err != nil {
			return results, fmt.Errorf("n.ApplyFallbackResult(%s) > %w", result.RawName, err)
		}
		results[i] = applied
	}
	return results, nil
}

// Stats returns the per-session tier and cache-hit counters.
func (n *Normalizer) Stats() RunStatistics {
	return n.stats
}

// CacheStats exposes the aggregate state of the underlying result cache.
func (n *Normalizer) CacheStats() cache.Stats {
	return n.cache.Stats()
}
