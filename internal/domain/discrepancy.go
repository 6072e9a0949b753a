package domain

import "github.com/shopspring/decimal"

// DiscrepancyType classifies a detected inconsistency
type DiscrepancyType string

// Discrepancy types
const (
	DiscrepancyAmountMismatch     DiscrepancyType = "amount_mismatch"
	DiscrepancyMissingTransaction DiscrepancyType = "missing_transaction"
	DiscrepancyDuplicate          DiscrepancyType = "duplicate_transaction"
)

// DiscrepancySeverity grades how serious a discrepancy is
type DiscrepancySeverity string

// Severity levels
const (
	SeverityLow    DiscrepancySeverity = "low"
	SeverityMedium DiscrepancySeverity = "medium"
	SeverityHigh   DiscrepancySeverity = "high"
)

// Discrepancy is an inconsistency between the statement and the ledger found
// after matching
type Discrepancy struct {
	ID             string              `json:"id"`
	Type           DiscrepancyType     `json:"type"`
	TransactionID  string              `json:"transaction_id,omitempty"`
	InvoiceID      string              `json:"invoice_id,omitempty"`
	ExpectedAmount *decimal.Decimal    `json:"expected_amount,omitempty"`
	ActualAmount   *decimal.Decimal    `json:"actual_amount,omitempty"`
	Difference     *decimal.Decimal    `json:"difference,omitempty"`
	Severity       DiscrepancySeverity `json:"severity"`
	Resolved       bool                `json:"resolved"`
}
