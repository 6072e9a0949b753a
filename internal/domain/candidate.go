package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchCandidate is a snapshot of an open receivable or payable record, as seen
// by the matching engine. The record is owned by the external ledger; the engine
// only reads it.
type MatchCandidate struct {
	ID               string          `json:"id"`
	Amount           decimal.Decimal `json:"amount"` // always unsigned
	DueDate          time.Time       `json:"due_date,omitempty"`
	CounterpartyName string          `json:"counterparty_name"`
	DocumentNumber   string          `json:"document_number,omitempty"`
}

// HasDueDate reports whether the candidate carries a usable reference date
func (c MatchCandidate) HasDueDate() bool {
	return !c.DueDate.IsZero()
}
