package matcher

import "github.com/finautomation/reconciliation-engine/internal/domain"

// Match reason labels, from strongest single factor to weakest combination
const (
	ReasonExactAmount        = "exact_amount"
	ReasonExactDate          = "exact_date"
	ReasonReferenceMatch     = "reference_match"
	ReasonSimilarDescription = "similar_description"
	ReasonSimilarAmount      = "similar_amount"
	ReasonCloseDate          = "close_date"
	ReasonAmountAndDate      = "amount_and_date"
	ReasonAmountAndDesc      = "amount_and_description"
	ReasonDescAndDate        = "description_and_date"
	ReasonCombinedFactors    = "combined_factors"
)

const (
	strongExact = 0.95
	strongNear  = 0.8
	midRange    = 0.7
)

// primaryReason derives the single label that best explains a match. Factors
// are checked in priority order for a strong signal; two mid-range factors
// fall back to a combination label.
func primaryReason(b domain.ScoreBreakdown) string {
	switch {
	case b.AmountScore >= strongExact:
		return ReasonExactAmount
	case b.DateScore >= strongExact:
		return ReasonExactDate
	case b.ReferenceScore >= strongNear:
		return ReasonReferenceMatch
	case b.DescriptionScore >= strongNear:
		return ReasonSimilarDescription
	case b.AmountScore >= strongNear:
		return ReasonSimilarAmount
	case b.DateScore >= strongNear:
		return ReasonCloseDate
	}

	switch {
	case b.AmountScore >= midRange && b.DateScore >= midRange:
		return ReasonAmountAndDate
	case b.AmountScore >= midRange && b.DescriptionScore >= midRange:
		return ReasonAmountAndDesc
	case b.DescriptionScore >= midRange && b.DateScore >= midRange:
		return ReasonDescAndDate
	}

	return ReasonCombinedFactors
}
