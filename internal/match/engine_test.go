package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svgreve/tussnorm/internal/match"
	"github.com/svgreve/tussnorm/internal/testutil"
)

func TestEngine_Resolve_Exact(t *testing.T) {
	engine := match.NewEngine(testutil.NewTestSnapshot(t))

	tcs := map[string]struct {
		rawName  string
		wantCode string
	}{
		"alias verbatim":         {rawName: "USG ABDOME TOTAL", wantCode: "40901122"},
		"alias in another case":  {rawName: "usg abdome total", wantCode: "40901122"},
		"standard name accented": {rawName: "Ultrassonografia de Abdome Total", wantCode: "40901122"},
		"display name":           {rawName: "Hemograma completo", wantCode: "40304361"},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			result := engine.Resolve(tc.rawName)
			assert.Equal(t, match.TierExact, result.Tier)
			assert.Equal(t, 100.0, result.Score)
			assert.Equal(t, tc.wantCode, result.Code)
			assert.Equal(t, tc.rawName, result.RawName)
			assert.NotEmpty(t, result.CanonicalName)
			assert.NotEmpty(t, result.DisplayName)
		})
	}
}

func TestEngine_Resolve_Fuzzy(t *testing.T) {
	engine := match.NewEngine(testutil.NewTestSnapshot(t))

	t.Run("abbreviated words", func(t *testing.T) {
		result := engine.Resolve("Usg Abd Total")
		assert.Equal(t, match.TierFuzzy, result.Tier)
		assert.Equal(t, "40901122", result.Code)
		assert.GreaterOrEqual(t, result.Score, match.DefaultFuzzyThreshold)
	})

	// One dropped letter against the alias "USG ABDOME TOTAL".
	result := engine.Resolve("USG ABDME TOTAL")
	assert.Equal(t, match.TierFuzzy, result.Tier)
	assert.Equal(t, "40901122", result.Code)
	assert.Equal(t, "Ultrassonografia de abdome total", result.CanonicalName)
	assert.Equal(t, "USG de abdome total", result.DisplayName)
	assert.GreaterOrEqual(t, result.Score, match.DefaultFuzzyThreshold)
	assert.Less(t, result.Score, 100.0)
	assert.NotEmpty(t, result.Alternatives)
	for _, alternative := range result.Alternatives {
		assert.NotEqual(t, result.Code, alternative.Code)
		assert.LessOrEqual(t, alternative.Score, result.Score)
	}
}

func TestEngine_Resolve_NeedsFallback(t *testing.T) {
	engine := match.NewEngine(testutil.NewTestSnapshot(t))

	result := engine.Resolve("DOSAGEM DE VITAMINA B12")
	assert.Equal(t, match.TierNeedsFallback, result.Tier)
	assert.Empty(t, result.Code)
	assert.Empty(t, result.CanonicalName)
	assert.Greater(t, result.Score, 0.0)
	assert.Less(t, result.Score, match.DefaultFuzzyThreshold)
	assert.False(t, result.Tier.Settled())
}

func TestEngine_Resolve_EmptyName(t *testing.T) {
	engine := match.NewEngine(testutil.NewTestSnapshot(t))

	for _, rawName := range []string{"", "   ", "?!."} {
		result := engine.Resolve(rawName)
		assert.Equal(t, match.TierNeedsFallback, result.Tier, "input %q", rawName)
		assert.Zero(t, result.Score)
	}
}

func TestEngine_Resolve_IsDeterministic(t *testing.T) {
	inputs := []string{"USG ABDOME TOTAL", "USG ABDME TOTAL", "DOSAGEM DE VITAMINA B12"}
	first := match.NewEngine(testutil.NewTestSnapshot(t))
	for range 10 {
		engine := match.NewEngine(testutil.NewTestSnapshot(t))
		for _, input := range inputs {
			assert.Equal(t, first.Resolve(input), engine.Resolve(input), "input %q", input)
		}
	}
}

func TestEngine_Resolve_ThresholdBoundary(t *testing.T) {
	snapshot := testutil.NewTestSnapshot(t)

	strict := match.NewEngine(snapshot, match.WithFuzzyThreshold(99))
	result := strict.Resolve("USG ABDME TOTAL")
	assert.Equal(t, match.TierNeedsFallback, result.Tier)
	assert.Greater(t, result.Score, 0.0, "best score is reported even when rejected")

	// At a threshold equal to the best score the candidate is accepted.
	lenient := match.NewEngine(snapshot, match.WithFuzzyThreshold(result.Score))
	accepted := lenient.Resolve("USG ABDME TOTAL")
	assert.Equal(t, match.TierFuzzy, accepted.Tier)
	assert.Equal(t, result.Score, accepted.Score)
}

func TestEngine_ShortlistSize(t *testing.T) {
	snapshot := testutil.NewTestSnapshot(t)
	engine := match.NewEngine(snapshot, match.WithShortlistSize(2), match.WithFuzzyThreshold(1))

	result := engine.Resolve("USG ABDME TOTAL")
	assert.Equal(t, match.TierFuzzy, result.Tier)
	assert.Len(t, result.Alternatives, 1)
}

func TestTier_Settled(t *testing.T) {
	assert.True(t, match.TierExact.Settled())
	assert.True(t, match.TierFuzzy.Settled())
	assert.True(t, match.TierFallbackResolved.Settled())
	assert.False(t, match.TierNeedsFallback.Settled())
}

func TestEngine_FuzzyThreshold(t *testing.T) {
	snapshot := testutil.NewTestSnapshot(t)
	require.Equal(t, match.DefaultFuzzyThreshold, match.NewEngine(snapshot).FuzzyThreshold())
	require.Equal(t, 90.0, match.NewEngine(snapshot, match.WithFuzzyThreshold(90)).FuzzyThreshold())
}
