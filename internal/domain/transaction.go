package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementFormat identifies the source format a transaction was parsed from
type StatementFormat string

// Supported statement formats
const (
	FormatOFX StatementFormat = "ofx"
	FormatCSV StatementFormat = "csv"
	FormatPDF StatementFormat = "pdf"
)

// BankTransaction represents a single transaction from a bank statement.
// It is created by the parser and never mutated afterwards.
type BankTransaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"` // signed: positive = credit, negative = debit
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	AccountID   string          `json:"account_id,omitempty"`
	Source      StatementFormat `json:"source"`
}

// IsCredit reports whether the transaction is a credit (money in)
func (t BankTransaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// AbsAmount returns the unsigned transaction amount
func (t BankTransaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}
