package dictionary

import (
	"log/slog"
	"sort"
)

// SimilarityFunc scores two normalized names on a 0-100 scale.
type SimilarityFunc func(a, b string) float64

// Candidate is one fuzzy match with the alias that produced its best score.
type Candidate struct {
	Entry        Entry
	Score        float64
	MatchedAlias string
}

// Index is the in-memory lookup structure built once per snapshot. It maps
// every normalized alias, standard name and display name to its owning entry
// and keeps a sorted alias list so fuzzy scans are deterministic.
type Index struct {
	snapshot *Snapshot
	scorer   SimilarityFunc

	byAlias map[string]int // normalized alias -> index into snapshot.Entries
	aliases []string       // sorted normalized aliases
}

func NewIndex(snapshot *Snapshot, scorer SimilarityFunc) *Index {
	index := &Index{
		snapshot: snapshot,
		scorer:   scorer,
		byAlias:  make(map[string]int),
	}
	for i, entry := range snapshot.Entries {
		names := append([]string{entry.StandardName, entry.DisplayName}, entry.Aliases...)
		for _, name := range names {
			normalized := NormalizeName(name)
			if normalized == "" {
				continue
			}
			if prev, ok := index.byAlias[normalized]; ok {
				if snapshot.Entries[prev].Code != entry.Code {
					// Dictionary data issue, not an engine fault. Later entry wins.
					slog.Warn("alias claimed by multiple dictionary entries",
						"alias", normalized,
						"previous_code", snapshot.Entries[prev].Code,
						"code", entry.Code)
				}
				index.byAlias[normalized] = i
				continue
			}
			index.byAlias[normalized] = i
			index.aliases = append(index.aliases, normalized)
		}
	}
	sort.Strings(index.aliases)
	return index
}

// Snapshot returns the snapshot this index was built from.
func (ix *Index) Snapshot() *Snapshot {
	return ix.snapshot
}

// ExactLookup normalizes the query and returns the entry owning that alias,
// or nil when no alias matches.
func (ix *Index) ExactLookup(rawName string) *Entry {
	i, ok := ix.byAlias[NormalizeName(rawName)]
	if !ok {
		return nil
	}
	entry := ix.snapshot.Entries[i]
	return &entry
}

// FuzzyCandidates scans every alias and returns up to limit entries ranked by
// similarity to the query, best first. Each entry appears at most once, scored
// by its best alias. Ties break by shorter alias, then by code, so the ranking
// is stable for a fixed snapshot.
func (ix *Index) FuzzyCandidates(rawName string, limit int) []Candidate {
	query := NormalizeName(rawName)
	if query == "" || limit <= 0 {
		return nil
	}

	best := make(map[string]Candidate)
	for _, alias := range ix.aliases {
		entry := ix.snapshot.Entries[ix.byAlias[alias]]
		score := ix.scorer(query, alias)
		current, ok := best[entry.Code]
		if !ok || score > current.Score ||
			(score == current.Score && len(alias) < len(current.MatchedAlias)) {
			best[entry.Code] = Candidate{Entry: entry, Score: score, MatchedAlias: alias}
		}
	}

	candidates := make([]Candidate, 0, len(best))
	for _, candidate := range best {
		candidates = append(candidates, candidate)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if len(candidates[i].MatchedAlias) != len(candidates[j].MatchedAlias) {
			return len(candidates[i].MatchedAlias) < len(candidates[j].MatchedAlias)
		}
		return candidates[i].Entry.Code < candidates[j].Entry.Code
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
