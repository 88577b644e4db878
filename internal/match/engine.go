package match

import (
	"github.com/svgreve/tussnorm/internal/dictionary"
)

// Tier is the resolution method that produced a result.
type Tier string

const (
	TierExact            Tier = "exact"
	TierFuzzy            Tier = "fuzzy"
	TierNeedsFallback    Tier = "needs_fallback"
	TierFallbackResolved Tier = "fallback_resolved"
)

// Settled reports whether the tier is a stable answer. A needs_fallback result
// is a placeholder awaiting external resolution, not an error.
func (t Tier) Settled() bool {
	return t == TierExact || t == TierFuzzy || t == TierFallbackResolved
}

// Alternative is a runner-up fuzzy candidate, kept for reporting.
type Alternative struct {
	CanonicalName string  `json:"canonical_name"`
	Code          string  `json:"code"`
	Score         float64 `json:"score"`
}

// Result is the outcome of resolving one raw exam name.
type Result struct {
	RawName       string        `json:"raw_name"`
	CanonicalName string        `json:"canonical_name,omitempty"`
	DisplayName   string        `json:"display_name,omitempty"`
	Code          string        `json:"code,omitempty"`
	Category      string        `json:"category,omitempty"`
	Tier          Tier          `json:"tier"`
	Score         float64       `json:"score"`
	Alternatives  []Alternative `json:"alternatives,omitempty"`
}

const (
	// DefaultFuzzyThreshold is the minimum composite similarity for a fuzzy
	// candidate to be accepted without external fallback.
	DefaultFuzzyThreshold = 80.0
	// DefaultShortlistSize bounds the fuzzy candidate scan result.
	DefaultShortlistSize = 5
)

// Engine runs the tiered resolution: exact alias lookup, fuzzy candidate
// ranking, and the needs-fallback terminal state. For a fixed snapshot the
// same input always yields the same tier, score and code.
type Engine struct {
	index          *dictionary.Index
	fuzzyThreshold float64
	shortlistSize  int
}

type EngineOption func(*Engine)

// WithFuzzyThreshold overrides the fuzzy acceptance threshold (0-100).
func WithFuzzyThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		e.fuzzyThreshold = threshold
	}
}

// WithShortlistSize overrides the number of fuzzy candidates considered.
func WithShortlistSize(size int) EngineOption {
	return func(e *Engine) {
		e.shortlistSize = size
	}
}

func NewEngine(snapshot *dictionary.Snapshot, options ...EngineOption) *Engine {
	engine := &Engine{
		index:          dictionary.NewIndex(snapshot, Similarity),
		fuzzyThreshold: DefaultFuzzyThreshold,
		shortlistSize:  DefaultShortlistSize,
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// Snapshot returns the dictionary snapshot this engine resolves against.
func (e *Engine) Snapshot() *dictionary.Snapshot {
	return e.index.Snapshot()
}

// FuzzyThreshold returns the configured fuzzy acceptance threshold.
func (e *Engine) FuzzyThreshold() float64 {
	return e.fuzzyThreshold
}

// Resolve normalizes rawName and walks the tiers. It never errors: a name
// below the fuzzy threshold comes back as needs_fallback with the best score
// seen, signalling that the caller must supply an external resolution.
func (e *Engine) Resolve(rawName string) Result {
	if entry := e.index.ExactLookup(rawName); entry != nil {
		return Result{
			RawName:       rawName,
			CanonicalName: entry.StandardName,
			DisplayName:   entry.Display(),
			Code:          entry.Code,
			Category:      entry.Category,
			Tier:          TierExact,
			Score:         100,
		}
	}

	candidates := e.index.FuzzyCandidates(rawName, e.shortlistSize)
	if len(candidates) == 0 {
		return Result{RawName: rawName, Tier: TierNeedsFallback}
	}

	best := candidates[0]
	if best.Score >= e.fuzzyThreshold {
		alternatives := make([]Alternative, 0, len(candidates)-1)
		for _, candidate := range candidates[1:] {
			alternatives = append(alternatives, Alternative{
				CanonicalName: candidate.Entry.StandardName,
				Code:          candidate.Entry.Code,
				Score:         candidate.Score,
			})
		}
		return Result{
			RawName:       rawName,
			CanonicalName: best.Entry.StandardName,
			DisplayName:   best.Entry.Display(),
			Code:          best.Entry.Code,
			Category:      best.Entry.Category,
			Tier:          TierFuzzy,
			Score:         best.Score,
			Alternatives:  alternatives,
		}
	}

	return Result{
		RawName: rawName,
		Tier:    TierNeedsFallback,
		Score:   best.Score,
	}
}
