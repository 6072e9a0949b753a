package report

import (
	"fmt"
	"strings"

	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// TextFormatter renders a human-readable run summary for terminal output
type TextFormatter struct{}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format implements the OutputFormatter interface for plain text
func (f *TextFormatter) Format(result domain.ReconciliationResult) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Reconciliation run %s\n", result.RunID)
	if result.BankAccountID != "" {
		fmt.Fprintf(&b, "Account:        %s\n", result.BankAccountID)
	}
	fmt.Fprintf(&b, "Processed at:   %s\n", result.ProcessedAt.Format("2006-01-02 15:04:05 UTC"))

	if !result.Period.Start.IsZero() {
		fmt.Fprintf(&b, "Period:         %s to %s\n",
			result.Period.Start.Format("2006-01-02"),
			result.Period.End.Format("2006-01-02"))
	}

	s := result.Summary
	fmt.Fprintf(&b, "\nTransactions:   %d\n", s.TotalTransactions)
	fmt.Fprintf(&b, "Matched:        %d (%.1f%%)\n", s.MatchedCount, s.MatchingRate)
	fmt.Fprintf(&b, "Unmatched:      %d\n", s.UnmatchedCount)
	fmt.Fprintf(&b, "Credits:        %s\n", s.TotalCredits.StringFixed(2))
	fmt.Fprintf(&b, "Debits:         %s\n", s.TotalDebits.StringFixed(2))
	fmt.Fprintf(&b, "Matched amount: %s\n", s.MatchedAmount.StringFixed(2))

	fmt.Fprintf(&b, "\nReceivable matches: %d (%s)\n",
		result.ByType.AccountsReceivable.Matches,
		result.ByType.AccountsReceivable.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Payable matches:    %d (%s)\n",
		result.ByType.AccountsPayable.Matches,
		result.ByType.AccountsPayable.Amount.StringFixed(2))

	if result.Discrepancies.Total > 0 {
		fmt.Fprintf(&b, "\nDiscrepancies: %d\n", result.Discrepancies.Total)
		for dtype, count := range result.Discrepancies.ByType {
			fmt.Fprintf(&b, "  %-22s %d\n", dtype, count)
		}
	}

	if len(result.Degraded) > 0 {
		fmt.Fprintf(&b, "\nDegraded sections: %s\n", strings.Join(result.Degraded, ", "))
	}

	return []byte(b.String()), nil
}

func (f *TextFormatter) FileExtension() string {
	return "txt"
}
