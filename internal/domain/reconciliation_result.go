package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the date span covered by a statement
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Summary holds the headline totals of a reconciliation run
type Summary struct {
	TotalTransactions int             `json:"total_transactions"`
	MatchedCount      int             `json:"matched_count"`
	UnmatchedCount    int             `json:"unmatched_count"`
	MatchingRate      float64         `json:"matching_rate"` // percentage
	TotalCredits      decimal.Decimal `json:"total_credits"`
	TotalDebits       decimal.Decimal `json:"total_debits"` // unsigned
	MatchedAmount     decimal.Decimal `json:"matched_amount"`
}

// TypeBreakdown summarizes matches on one side of the ledger
type TypeBreakdown struct {
	Matches int             `json:"matches"`
	Amount  decimal.Decimal `json:"amount"`
}

// SideBreakdown splits match totals between receivables and payables
type SideBreakdown struct {
	AccountsReceivable TypeBreakdown `json:"accounts_receivable"`
	AccountsPayable    TypeBreakdown `json:"accounts_payable"`
}

// DiscrepancySummary groups detected discrepancies by type
type DiscrepancySummary struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
	Items  []Discrepancy  `json:"items,omitempty"`
}

// ReconciliationResult is the aggregate outcome of one statement-processing
// run. It is assembled once per run and immutable after construction;
// persistence belongs to an external collaborator.
type ReconciliationResult struct {
	RunID         string             `json:"run_id"`
	BankAccountID string             `json:"bank_account_id"`
	ProcessedAt   time.Time          `json:"processed_at"`
	Period        Period             `json:"period"`
	Summary       Summary            `json:"summary"`
	ByType        SideBreakdown      `json:"by_type"`
	Discrepancies DiscrepancySummary `json:"discrepancies"`
	Matches       []TransactionMatch `json:"matches"`
	Unmatched     []BankTransaction  `json:"unmatched_transactions"`

	// Degraded names report sections that are missing because a collaborator
	// failed (e.g. "candidates", "discrepancies"). Empty for a clean run.
	Degraded []string `json:"degraded,omitempty"`
}
