package domain

import (
	"context"
	"time"
)

// DateWindow is the date span candidates are requested for
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// CandidateRetriever fetches open receivable/payable records for matching.
//
// Implementations must return candidates in a stable order (e.g. by id):
// equal-score candidates resolve to the first one supplied, so ordering
// decides ties. An empty slice means "no match possible", never an engine
// error.
type CandidateRetriever interface {
	FetchReceivables(ctx context.Context, window DateWindow) ([]MatchCandidate, error)
	FetchPayables(ctx context.Context, window DateWindow) ([]MatchCandidate, error)
}

// MatchScorer computes similarity between transactions and candidates
type MatchScorer interface {
	// Score computes the per-factor breakdown for one transaction/candidate pair
	Score(txn BankTransaction, candidate MatchCandidate) ScoreBreakdown

	// FindBestMatch returns the highest-scoring candidate at or above the
	// scorer's inclusion floor, or nil when no candidate qualifies
	FindBestMatch(txn BankTransaction, candidates []MatchCandidate) (*MatchResult, error)
}

// DiscrepancyDetector classifies leftover anomalies after matching.
// Implementers can swap rule sets without touching the orchestrator.
type DiscrepancyDetector interface {
	Detect(ctx context.Context, txns []BankTransaction, matches []TransactionMatch) ([]Discrepancy, error)
}
