package normalizer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/svgreve/tussnorm/internal/cache"
	"github.com/svgreve/tussnorm/internal/contrib"
	"github.com/svgreve/tussnorm/internal/match"
	mock_resolver "github.com/svgreve/tussnorm/internal/mocks/resolver"
	"github.com/svgreve/tussnorm/internal/normalizer"
	"github.com/svgreve/tussnorm/internal/resolver"
	"github.com/svgreve/tussnorm/internal/testutil"
)

type fixture struct {
	normalizer *normalizer.Normalizer
	cachePath  string
	ledgerPath string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "mapping_cache.json")
	ledgerPath := filepath.Join(dir, "contributions.yml")
	engine := match.NewEngine(testutil.NewTestSnapshot(t))
	return fixture{
		normalizer: normalizer.NewNormalizer(engine, cache.NewResultCache(cachePath), contrib.NewLedger(ledgerPath)),
		cachePath:  cachePath,
		ledgerPath: ledgerPath,
	}
}

func TestNormalizer_NormalizeBatch(t *testing.T) {
	f := newFixture(t)

	results, stats, err := f.normalizer.NormalizeBatch([]string{
		"USG ABDOME TOTAL",
		"USG ABDME TOTAL",
		"DOSAGEM DE VITAMINA B12",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, match.TierExact, results[0].Tier)
	assert.Equal(t, match.TierFuzzy, results[1].Tier)
	assert.Equal(t, match.TierNeedsFallback, results[2].Tier)

	assert.Equal(t, normalizer.RunStatistics{
		Total:         3,
		Exact:         1,
		Fuzzy:         1,
		NeedsFallback: 1,
	}, stats)
}

func TestNormalizer_SettledResultsAreReusedAcrossSessions(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.normalizer.NormalizeBatch([]string{"USG ABDOME TOTAL"})
	require.NoError(t, err)

	// A second session over the same cache file resolves from the cache.
	engine := match.NewEngine(testutil.NewTestSnapshot(t))
	second := normalizer.NewNormalizer(engine, cache.NewResultCache(f.cachePath), contrib.NewLedger(f.ledgerPath))
	results, stats, err := second.NormalizeBatch([]string{"usg abdome total"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, match.TierExact, results[0].Tier)
	assert.Equal(t, "usg abdome total", results[0].RawName)
	assert.Equal(t, 1, stats.CacheHits)
}

func TestNormalizer_PlaceholdersAreNotCacheHits(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.normalizer.NormalizeBatch([]string{"DOSAGEM DE VITAMINA B12"})
	require.NoError(t, err)

	engine := match.NewEngine(testutil.NewTestSnapshot(t))
	second := normalizer.NewNormalizer(engine, cache.NewResultCache(f.cachePath), contrib.NewLedger(f.ledgerPath))
	results, stats, err := second.NormalizeBatch([]string{"DOSAGEM DE VITAMINA B12"})
	require.NoError(t, err)
	assert.Equal(t, match.TierNeedsFallback, results[0].Tier)
	assert.Zero(t, stats.CacheHits, "a cached placeholder must be recomputed, not reused")
}

func TestNormalizer_ApplyFallbackResult(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.normalizer.NormalizeBatch([]string{"DOSAGEM DE VITAMINA B12"})
	require.NoError(t, err)

	result, err := f.normalizer.ApplyFallbackResult(
		"DOSAGEM DE VITAMINA B12", "Vitamina B12, dosagem", "40302040")
	require.NoError(t, err)
	assert.Equal(t, match.TierFallbackResolved, result.Tier)
	assert.Equal(t, normalizer.FallbackResolvedScore, result.Score)

	// The resolution settles the cache record and lands in the ledger.
	reloaded := cache.NewResultCache(f.cachePath)
	record := reloaded.Get("DOSAGEM DE VITAMINA B12")
	require.NotNil(t, record)
	assert.Equal(t, match.TierFallbackResolved, record.Result.Tier)
	assert.Equal(t, "40302040", record.Result.Code)

	pending := contrib.NewLedger(f.ledgerPath).Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "DOSAGEM DE VITAMINA B12", pending[0].RawName)
	assert.Equal(t, "Vitamina B12, dosagem", pending[0].ProposedCanonicalName)

	// A later run with the same raw name reuses the settled resolution
	// instead of recomputing or re-offering it to the fallback path.
	engine := match.NewEngine(testutil.NewTestSnapshot(t))
	later := normalizer.NewNormalizer(engine, cache.NewResultCache(f.cachePath), contrib.NewLedger(f.ledgerPath))
	results, stats, err := later.NormalizeBatch([]string{"dosagem de vitamina b12"})
	require.NoError(t, err)
	assert.Equal(t, match.TierFallbackResolved, results[0].Tier)
	assert.Equal(t, "40302040", results[0].Code)
	assert.Equal(t, 1, stats.CacheHits)
	assert.Zero(t, stats.NeedsFallback)
}

func TestNormalizer_ResolveFallbacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)

	results, _, err := f.normalizer.NormalizeBatch([]string{
		"USG ABDOME TOTAL",
		"DOSAGEM DE VITAMINA B12",
	})
	require.NoError(t, err)

	client := mock_resolver.NewMockClient(ctrl)
	client.EXPECT().
		ResolveName(gomock.Any(), gomock.Cond(func(params resolver.ResolveNameRequest) bool {
			return params.RawName == "DOSAGEM DE VITAMINA B12" &&
				params.BestScore > 0 &&
				params.Threshold == match.DefaultFuzzyThreshold
		})).
		Return(resolver.ResolveNameResponse{
			CanonicalName: "Vitamina B12, dosagem",
			Code:          "40302040",
		}, nil)

	resolved, err := f.normalizer.ResolveFallbacks(context.Background(), results, client)
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, match.TierExact, resolved[0].Tier, "settled results are not re-resolved")
	assert.Equal(t, match.TierFallbackResolved, resolved[1].Tier)
	assert.Equal(t, "Vitamina B12, dosagem", resolved[1].CanonicalName)

	stats := f.normalizer.Stats()
	assert.Equal(t, 1, stats.FallbackResolved)
}

func TestNormalizer_ResolveFallbacks_ClientErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)

	results, _, err := f.normalizer.NormalizeBatch([]string{"DOSAGEM DE VITAMINA B12"})
	require.NoError(t, err)

	client := mock_resolver.NewMockClient(ctrl)
	client.EXPECT().
		ResolveName(gomock.Any(), gomock.Any()).
		Return(resolver.ResolveNameResponse{}, errors.New("api unavailable"))

	_, err = f.normalizer.ResolveFallbacks(context.Background(), results, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api unavailable")
}

func TestNormalizer_CacheStats(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.normalizer.NormalizeBatch([]string{"USG ABDOME TOTAL", "DOSAGEM DE VITAMINA B12"})
	require.NoError(t, err)

	stats := f.normalizer.CacheStats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.Exact)
	assert.Equal(t, 1, stats.Unresolved)
}
