// Package discrepancy ships the default rule set behind the pluggable
// discrepancy-detection contract: amount mismatches on accepted matches,
// open invoices missing from the statement, and duplicated statement lines.
package discrepancy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// candidateWindowDays pads the statement span when asking the ledger for
// open records to check against
const candidateWindowDays = 30

// RuleBasedDetector is the default DiscrepancyDetector implementation
type RuleBasedDetector struct {
	retriever    domain.CandidateRetriever
	toleranceAbs decimal.Decimal
	daysBefore   int
	daysAfter    int
	logger       *slog.Logger
}

// NewRuleBasedDetector creates a RuleBasedDetector. The retriever supplies
// the open-ledger snapshot the statement is checked against.
func NewRuleBasedDetector(r domain.CandidateRetriever, cfg config.MatchingConfig, logger *slog.Logger) *RuleBasedDetector {
	if logger == nil {
		logger = slog.Default()
	}

	return &RuleBasedDetector{
		retriever:    r,
		toleranceAbs: decimal.NewFromFloat(cfg.AmountToleranceAbsolute),
		daysBefore:   cfg.DateToleranceBefore,
		daysAfter:    cfg.DateToleranceAfter,
		logger:       logger,
	}
}

// Detect classifies leftover anomalies for a reconciled batch
func (d *RuleBasedDetector) Detect(ctx context.Context, txns []domain.BankTransaction, matches []domain.TransactionMatch) ([]domain.Discrepancy, error) {
	if len(txns) == 0 {
		return nil, nil
	}

	var discrepancies []domain.Discrepancy

	discrepancies = append(discrepancies, d.detectDuplicates(txns)...)

	candidates, err := d.fetchCandidates(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("fetching ledger snapshot for discrepancy detection: %w", err)
	}

	discrepancies = append(discrepancies, d.detectAmountMismatches(txns, matches, candidates)...)
	discrepancies = append(discrepancies, d.detectMissingTransactions(txns, matches, candidates)...)

	return discrepancies, nil
}

func (d *RuleBasedDetector) fetchCandidates(ctx context.Context, txns []domain.BankTransaction) ([]domain.MatchCandidate, error) {
	window := statementWindow(txns)

	receivables, err := d.retriever.FetchReceivables(ctx, window)
	if err != nil {
		return nil, err
	}

	payables, err := d.retriever.FetchPayables(ctx, window)
	if err != nil {
		return nil, err
	}

	return append(receivables, payables...), nil
}

// detectAmountMismatches flags accepted matches whose transaction amount
// differs from the invoice amount
func (d *RuleBasedDetector) detectAmountMismatches(txns []domain.BankTransaction, matches []domain.TransactionMatch, candidates []domain.MatchCandidate) []domain.Discrepancy {
	byID := make(map[string]domain.MatchCandidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	var out []domain.Discrepancy

	for _, match := range matches {
		candidate, ok := byID[match.InvoiceID]
		if !ok {
			continue
		}

		difference := match.MatchedAmount.Sub(candidate.Amount)
		if difference.IsZero() {
			continue
		}

		severity := domain.SeverityLow
		if difference.Abs().GreaterThan(d.toleranceAbs) {
			severity = domain.SeverityHigh
		}

		expected := candidate.Amount
		actual := match.MatchedAmount

		out = append(out, domain.Discrepancy{
			ID:             uuid.NewString(),
			Type:           domain.DiscrepancyAmountMismatch,
			TransactionID:  match.TransactionID,
			InvoiceID:      match.InvoiceID,
			ExpectedAmount: &expected,
			ActualAmount:   &actual,
			Difference:     &difference,
			Severity:       severity,
		})
	}

	return out
}

// detectMissingTransactions flags open invoices with no statement
// transaction of a compatible amount inside the date-tolerance window
func (d *RuleBasedDetector) detectMissingTransactions(txns []domain.BankTransaction, matches []domain.TransactionMatch, candidates []domain.MatchCandidate) []domain.Discrepancy {
	matchedInvoices := make(map[string]bool, len(matches))
	for _, m := range matches {
		matchedInvoices[m.InvoiceID] = true
	}

	var out []domain.Discrepancy

	for _, candidate := range candidates {
		if matchedInvoices[candidate.ID] || !candidate.HasDueDate() {
			continue
		}

		if d.hasCompatibleTransaction(txns, candidate) {
			continue
		}

		expected := candidate.Amount

		out = append(out, domain.Discrepancy{
			ID:             uuid.NewString(),
			Type:           domain.DiscrepancyMissingTransaction,
			InvoiceID:      candidate.ID,
			ExpectedAmount: &expected,
			Severity:       domain.SeverityMedium,
		})
	}

	return out
}

func (d *RuleBasedDetector) hasCompatibleTransaction(txns []domain.BankTransaction, candidate domain.MatchCandidate) bool {
	earliest := candidate.DueDate.AddDate(0, 0, -d.daysBefore)
	latest := candidate.DueDate.AddDate(0, 0, d.daysAfter)

	for _, txn := range txns {
		if txn.Date.Before(earliest) || txn.Date.After(latest) {
			continue
		}
		if txn.AbsAmount().Sub(candidate.Amount).Abs().LessThanOrEqual(d.toleranceAbs) {
			return true
		}
	}

	return false
}

// detectDuplicates flags statement transactions repeating the date, amount
// and description of an earlier one
func (d *RuleBasedDetector) detectDuplicates(txns []domain.BankTransaction) []domain.Discrepancy {
	seen := make(map[string]string, len(txns)) // key -> first transaction id

	var out []domain.Discrepancy

	for _, txn := range txns {
		key := fmt.Sprintf("%s|%s|%s",
			txn.Date.Format("20060102"),
			txn.Amount.String(),
			strings.ToLower(strings.TrimSpace(txn.Description)),
		)

		if _, dup := seen[key]; dup {
			actual := txn.AbsAmount()

			out = append(out, domain.Discrepancy{
				ID:            uuid.NewString(),
				Type:          domain.DiscrepancyDuplicate,
				TransactionID: txn.ID,
				ActualAmount:  &actual,
				Severity:      domain.SeverityLow,
			})
			continue
		}

		seen[key] = txn.ID
	}

	return out
}

func statementWindow(txns []domain.BankTransaction) domain.DateWindow {
	minDate, maxDate := txns[0].Date, txns[0].Date
	for _, txn := range txns[1:] {
		if txn.Date.Before(minDate) {
			minDate = txn.Date
		}
		if txn.Date.After(maxDate) {
			maxDate = txn.Date
		}
	}

	return domain.DateWindow{
		Start: minDate.AddDate(0, 0, -candidateWindowDays),
		End:   maxDate.AddDate(0, 0, candidateWindowDays),
	}
}
