package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchType classifies how a transaction was matched
type MatchType string

// Match types
const (
	MatchReceivable MatchType = "receivable"
	MatchPayable    MatchType = "payable"
	MatchManual     MatchType = "manual"
)

// ScoreWeights holds the relative weight of each scoring factor. Weights sum to 1.
type ScoreWeights struct {
	Amount      float64 `json:"amount"`
	Date        float64 `json:"date"`
	Description float64 `json:"description"`
	Reference   float64 `json:"reference"`
}

// DefaultScoreWeights returns the standard factor weighting
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Amount:      0.40,
		Date:        0.25,
		Description: 0.25,
		Reference:   0.10,
	}
}

// ScoreBreakdown holds the per-factor similarity scores for one
// transaction/candidate pair. All scores are in [0, 1].
type ScoreBreakdown struct {
	AmountScore      float64      `json:"amount_score"`
	DateScore        float64      `json:"date_score"`
	DescriptionScore float64      `json:"description_score"`
	ReferenceScore   float64      `json:"reference_score"`
	Weights          ScoreWeights `json:"weights"`
}

// Total returns the weighted total score, clamped to [0, 1]
func (b ScoreBreakdown) Total() float64 {
	total := b.AmountScore*b.Weights.Amount +
		b.DateScore*b.Weights.Date +
		b.DescriptionScore*b.Weights.Description +
		b.ReferenceScore*b.Weights.Reference

	if total < 0 {
		return 0
	}
	if total > 1 {
		return 1
	}
	return total
}

// MatchResult is the scorer's best-candidate answer for one transaction
type MatchResult struct {
	Candidate  MatchCandidate `json:"candidate"`
	Confidence float64        `json:"confidence"`
	Reason     string         `json:"reason"`
	Breakdown  ScoreBreakdown `json:"score_breakdown"`
}

// TransactionMatch records an accepted match between a bank transaction and an
// invoice. At most one automatic match exists per transaction in a run; manual
// matches may override.
type TransactionMatch struct {
	TransactionID string          `json:"transaction_id"`
	InvoiceID     string          `json:"invoice_id"`
	Confidence    float64         `json:"confidence"`
	MatchType     MatchType       `json:"match_type"`
	MatchedAmount decimal.Decimal `json:"matched_amount"` // always unsigned
	Reason        string          `json:"reason"`
	MatchedAt     time.Time       `json:"matched_at"`
	MatchedBy     string          `json:"matched_by,omitempty"`
}
