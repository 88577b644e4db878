// Package resolver defines the fallback resolver boundary: the seam where an
// external answerer (interactive prompt, language model call, override table)
// supplies canonical names for records the matching engine could not settle.
package resolver

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/resolver/mock_client.go -package=mock_resolver

// Client resolves a single raw exam name that fell below the fuzzy acceptance
// threshold. The engine does not know or care how the answer is produced.
type Client interface {
	ResolveName(ctx context.Context, params ResolveNameRequest) (ResolveNameResponse, error)
}

// ResolveNameRequest carries the raw name plus the best fuzzy score seen, so
// a human or model answering can judge how far off the dictionary was.
type ResolveNameRequest struct {
	RawName   string  `json:"raw_name"`
	BestScore float64 `json:"best_score"`
	Threshold float64 `json:"threshold"`
}

// ResolveNameResponse is the externally determined canonical name and an
// optional TUSS code.
type ResolveNameResponse struct {
	CanonicalName string `json:"canonical_name"`
	Code          string `json:"code,omitempty"`
}

const (
	DefaultMaxRetryAttempts = 3
)
