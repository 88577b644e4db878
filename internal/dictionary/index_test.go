package dictionary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prefixScorer is a deliberately simple similarity for index tests: 100 for
// equality, 50 when one side is a prefix of the other, 0 otherwise. The real
// composite scorer is covered in its own package.
func prefixScorer(a, b string) float64 {
	switch {
	case a == b:
		return 100
	case len(a) < len(b) && b[:len(a)] == a:
		return 50
	case len(b) < len(a) && a[:len(b)] == b:
		return 50
	default:
		return 0
	}
}

func indexSnapshot(entries ...Entry) *Snapshot {
	return NewSnapshot(Document{
		Meta:    DocumentMeta{Version: "test"},
		Entries: entries,
	}, SourceBundled, time.Now())
}

func TestIndex_ExactLookup(t *testing.T) {
	snapshot := indexSnapshot(
		Entry{
			Code:         "40901122",
			StandardName: "Ultrassonografia de abdome total",
			DisplayName:  "USG de abdome total",
			Aliases:      []string{"USG ABDOME TOTAL"},
		},
		Entry{
			Code:         "40304361",
			StandardName: "Hemograma completo",
		},
	)
	index := NewIndex(snapshot, prefixScorer)

	tcs := map[string]struct {
		query    string
		wantCode string
	}{
		"alias, exact spelling":      {query: "USG ABDOME TOTAL", wantCode: "40901122"},
		"alias, different case":      {query: "usg abdome total", wantCode: "40901122"},
		"alias, extra whitespace":    {query: "  USG   ABDOME  TOTAL ", wantCode: "40901122"},
		"standard name with accents": {query: "ULTRASSONOGRAFIA DE ABDOME TOTAL", wantCode: "40901122"},
		"display name":               {query: "USG DE ABDOME TOTAL", wantCode: "40901122"},
		"second entry standard name": {query: "hemograma completo", wantCode: "40304361"},
		"unknown":                    {query: "RESSONANCIA DE JOELHO", wantCode: ""},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			entry := index.ExactLookup(tc.query)
			if tc.wantCode == "" {
				assert.Nil(t, entry)
				return
			}
			require.NotNil(t, entry)
			assert.Equal(t, tc.wantCode, entry.Code)
		})
	}
}

func TestIndex_AliasConflictLaterEntryWins(t *testing.T) {
	snapshot := indexSnapshot(
		Entry{Code: "111", StandardName: "Primeiro exame", Aliases: []string{"EXAME X"}},
		Entry{Code: "222", StandardName: "Segundo exame", Aliases: []string{"EXAME X"}},
	)
	index := NewIndex(snapshot, prefixScorer)

	entry := index.ExactLookup("EXAME X")
	require.NotNil(t, entry)
	assert.Equal(t, "222", entry.Code)
}

func TestIndex_FuzzyCandidates(t *testing.T) {
	snapshot := indexSnapshot(
		Entry{Code: "333", StandardName: "USG ABDOME TOTAL"},
		Entry{Code: "111", StandardName: "USG ABDOME"},
		Entry{Code: "222", StandardName: "USG PELVICA"},
	)
	index := NewIndex(snapshot, prefixScorer)

	t.Run("ranked best first, one candidate per code", func(t *testing.T) {
		candidates := index.FuzzyCandidates("USG ABDOME", 5)
		require.Len(t, candidates, 3)
		assert.Equal(t, "111", candidates[0].Entry.Code)
		assert.Equal(t, 100.0, candidates[0].Score)
		assert.Equal(t, "333", candidates[1].Entry.Code)
		assert.Equal(t, 50.0, candidates[1].Score)
	})

	t.Run("limit truncates the shortlist", func(t *testing.T) {
		candidates := index.FuzzyCandidates("USG ABDOME", 1)
		require.Len(t, candidates, 1)
		assert.Equal(t, "111", candidates[0].Entry.Code)
	})

	t.Run("deterministic across rebuilds", func(t *testing.T) {
		first := index.FuzzyCandidates("USG", 5)
		for range 10 {
			rebuilt := NewIndex(indexSnapshot(snapshot.Entries...), prefixScorer)
			assert.Equal(t, first, rebuilt.FuzzyCandidates("USG", 5))
		}
	})

	t.Run("score ties break by shorter alias then code", func(t *testing.T) {
		candidates := index.FuzzyCandidates("USG", 5)
		require.Len(t, candidates, 3)
		// All three score 50 as prefix matches; shortest alias first,
		// then code order.
		assert.Equal(t, "111", candidates[0].Entry.Code)
		assert.Equal(t, "222", candidates[1].Entry.Code)
		assert.Equal(t, "333", candidates[2].Entry.Code)
	})

	t.Run("empty query yields nothing", func(t *testing.T) {
		assert.Nil(t, index.FuzzyCandidates("???", 5))
		assert.Nil(t, index.FuzzyCandidates("USG", 0))
	})
}
