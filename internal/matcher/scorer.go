// Package matcher implements the multi-criteria fuzzy scoring that ranks
// candidate invoices against bank transactions.
package matcher

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// Keywords whose presence on both sides signals a strong correlation.
// Each shared keyword adds a small bonus to the description score.
var domainKeywords = []string{
	"ted", "pix", "transferencia", "pagamento", "recebimento",
	"boleto", "fatura", "nota", "fiscal", "nf",
}

const (
	keywordBonus    = 0.05
	keywordBonusCap = 0.20
)

// FuzzyScorer computes a weighted similarity score between one transaction
// and one candidate, combining amount, date, description and reference
// signals
type FuzzyScorer struct {
	cfg          config.MatchingConfig
	weights      domain.ScoreWeights
	toleranceAbs decimal.Decimal
}

// NewFuzzyScorer creates a FuzzyScorer with the given matching configuration
func NewFuzzyScorer(cfg config.MatchingConfig) *FuzzyScorer {
	return &FuzzyScorer{
		cfg:          cfg,
		weights:      domain.DefaultScoreWeights(),
		toleranceAbs: decimal.NewFromFloat(cfg.AmountToleranceAbsolute),
	}
}

// Score computes the per-factor breakdown for one transaction/candidate pair.
// Every component score lies in [0, 1].
func (s *FuzzyScorer) Score(txn domain.BankTransaction, candidate domain.MatchCandidate) domain.ScoreBreakdown {
	return domain.ScoreBreakdown{
		AmountScore:      s.amountScore(txn.AbsAmount(), candidate.Amount),
		DateScore:        s.dateScore(txn.Date, candidate),
		DescriptionScore: s.descriptionScore(txn.Description, candidate.CounterpartyName),
		ReferenceScore:   s.referenceScore(txn, candidate),
		Weights:          s.weights,
	}
}

// FindBestMatch scores every candidate and returns the one with the highest
// total at or above the similarity floor. Equal maximal scores resolve to the
// first candidate in the supplied order; this tie-break is deliberate, so
// candidate ordering must be stable.
func (s *FuzzyScorer) FindBestMatch(txn domain.BankTransaction, candidates []domain.MatchCandidate) (*domain.MatchResult, error) {
	var best *domain.MatchResult
	bestScore := 0.0

	for _, candidate := range candidates {
		breakdown := s.Score(txn, candidate)
		total := breakdown.Total()

		if math.IsNaN(total) || math.IsInf(total, 0) {
			return nil, fmt.Errorf("scoring transaction %s against candidate %s produced an invalid total", txn.ID, candidate.ID)
		}

		if total > bestScore && total >= s.cfg.SimilarityThreshold {
			bestScore = total
			best = &domain.MatchResult{
				Candidate:  candidate,
				Confidence: total,
				Reason:     primaryReason(breakdown),
				Breakdown:  breakdown,
			}
		}
	}

	return best, nil
}

// amountScore compares unsigned amounts: exact equality, then the absolute
// tolerance band, then a linear decay across the percentage tolerance, and
// finally a small residual so weak amounts can still surface through other
// factors
func (s *FuzzyScorer) amountScore(txnAmount, candidateAmount decimal.Decimal) float64 {
	if candidateAmount.IsZero() {
		return 0.0
	}

	absDiff := txnAmount.Sub(candidateAmount).Abs()

	if absDiff.IsZero() {
		return 1.0
	}

	if absDiff.LessThanOrEqual(s.toleranceAbs) {
		return 0.95
	}

	pctDiff, _ := absDiff.Div(candidateAmount).Float64()
	tolerancePct := s.cfg.AmountTolerancePercent / 100

	if tolerancePct > 0 && pctDiff <= tolerancePct {
		return math.Max(0.0, 1.0-(pctDiff/tolerancePct)*0.3)
	}

	return math.Max(0.0, 0.3-math.Min(0.3, pctDiff))
}

// dateScore rewards proximity between the transaction date and the
// candidate's reference date, decaying linearly past a week up to the
// tolerance window. A candidate without a date scores neutral.
func (s *FuzzyScorer) dateScore(txnDate time.Time, candidate domain.MatchCandidate) float64 {
	if !candidate.HasDueDate() {
		return 0.5
	}

	days := daysBetween(txnDate, candidate.DueDate)

	switch {
	case days == 0:
		return 1.0
	case days <= 3:
		return 0.9
	case days <= 7:
		return 0.8
	case days <= s.cfg.DateToleranceAfter:
		return math.Max(0.0, 0.8-float64(days-7)*0.1)
	}

	return math.Max(0.0, 0.2-math.Min(0.2, float64(days)*0.01))
}

// descriptionScore takes the best of five similarity ratios over normalized
// strings, plus a capped bonus for shared domain keywords. A missing
// description on either side scores a low neutral.
func (s *FuzzyScorer) descriptionScore(txnDesc, candidateName string) float64 {
	a := NormalizeText(txnDesc)
	b := NormalizeText(candidateName)

	if a == "" || b == "" {
		return 0.3
	}

	best := Ratio(a, b)
	for _, ratio := range []float64{
		PartialRatio(a, b),
		TokenSortRatio(a, b),
		TokenSetRatio(a, b),
		SequenceRatio(a, b),
	} {
		if ratio > best {
			best = ratio
		}
	}

	return math.Min(1.0, best+keywordBonusFor(a, b))
}

func keywordBonusFor(a, b string) float64 {
	bonus := 0.0
	for _, keyword := range domainKeywords {
		if containsToken(a, keyword) && containsToken(b, keyword) {
			bonus += keywordBonus
		}
	}
	return math.Min(keywordBonusCap, bonus)
}

func containsToken(text, token string) bool {
	for _, t := range strings.Fields(text) {
		if t == token {
			return true
		}
	}
	return false
}

// referenceScore compares reference tokens extracted from the transaction's
// free text against the candidate's structured document number and id. An
// exact normalized token match is decisive; long tokens also match fuzzily.
func (s *FuzzyScorer) referenceScore(txn domain.BankTransaction, candidate domain.MatchCandidate) float64 {
	txnTokens := ExtractReferenceTokens(txn.Description + " " + txn.Reference)

	// The document number is a reference by definition and is taken whole;
	// the ledger id only contributes tokens that look like references.
	var candidateTokens []string
	if tok := FieldReferenceToken(candidate.DocumentNumber); tok != "" {
		candidateTokens = append(candidateTokens, tok)
	}
	candidateTokens = append(candidateTokens, ExtractReferenceTokens(candidate.ID)...)

	if len(txnTokens) == 0 || len(candidateTokens) == 0 {
		return 0.5
	}

	best := 0.0
	for _, t := range txnTokens {
		for _, c := range candidateTokens {
			if t == c {
				return 1.0
			}
			if len(t) >= 4 && len(c) >= 4 {
				if similarity := Ratio(t, c); similarity > 0.8 && similarity > best {
					best = similarity
				}
			}
		}
	}

	return best
}

// daysBetween returns the absolute whole-day difference between two dates,
// ignoring the time-of-day component
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
