package report_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finautomation/reconciliation-engine/internal/domain"
	"github.com/finautomation/reconciliation-engine/internal/report"
)

func sampleResult() domain.ReconciliationResult {
	return domain.ReconciliationResult{
		RunID:         "run-123",
		BankAccountID: "acc-1",
		ProcessedAt:   time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC),
		Period: domain.Period{
			Start: time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		},
		Summary: domain.Summary{
			TotalTransactions: 3,
			MatchedCount:      2,
			UnmatchedCount:    1,
			MatchingRate:      66.7,
			TotalCredits:      decimal.NewFromFloat(1000),
			TotalDebits:       decimal.NewFromFloat(2546.40),
			MatchedAmount:     decimal.NewFromFloat(3500.50),
		},
		Discrepancies: domain.DiscrepancySummary{
			Total:  1,
			ByType: map[string]int{"missing_transaction": 1},
		},
		Degraded: []string{"discrepancies"},
	}
}

func TestJSONFormatter(t *testing.T) {
	output, err := report.NewJSONFormatter(false).Format(sampleResult())
	require.NoError(t, err)

	var decoded domain.ReconciliationResult
	require.NoError(t, json.Unmarshal(output, &decoded))

	assert.Equal(t, "run-123", decoded.RunID)
	assert.Equal(t, 3, decoded.Summary.TotalTransactions)
	assert.True(t, decoded.Summary.MatchedAmount.Equal(decimal.NewFromFloat(3500.50)))
	assert.Equal(t, []string{"discrepancies"}, decoded.Degraded)
}

func TestJSONFormatter_PrettyPrint(t *testing.T) {
	compact, err := report.NewJSONFormatter(false).Format(sampleResult())
	require.NoError(t, err)

	pretty, err := report.NewJSONFormatter(true).Format(sampleResult())
	require.NoError(t, err)

	assert.False(t, strings.Contains(string(compact), "\n  "))
	assert.True(t, strings.Contains(string(pretty), "\n  "))
	assert.Equal(t, "json", report.NewJSONFormatter(true).FileExtension())
}

func TestTextFormatter(t *testing.T) {
	output, err := report.NewTextFormatter().Format(sampleResult())
	require.NoError(t, err)

	text := string(output)
	assert.Contains(t, text, "run-123")
	assert.Contains(t, text, "acc-1")
	assert.Contains(t, text, "2024-02-08 to 2024-02-12")
	assert.Contains(t, text, "Matched:        2 (66.7%)")
	assert.Contains(t, text, "missing_transaction")
	assert.Contains(t, text, "Degraded sections: discrepancies")
	assert.Equal(t, "txt", report.NewTextFormatter().FileExtension())
}
