package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/domain"
	"github.com/finautomation/reconciliation-engine/internal/matcher"
	"github.com/finautomation/reconciliation-engine/internal/parser"
	"github.com/finautomation/reconciliation-engine/internal/retriever"
	"github.com/finautomation/reconciliation-engine/internal/service"
)

const testStatement = `Data,Descricao,Valor,Documento
10/02/2024,PIX RECEBIDO CLIENTE ABC LTDA,"1.000,00",NF-4521
12/02/2024,TED FORNECEDOR DESCONHECIDO,"-2.500,50",
`

func testLedger() *retriever.InMemoryRetriever {
	due := parseDay("2024-02-10")
	return &retriever.InMemoryRetriever{
		Receivables: []domain.MatchCandidate{
			{
				ID:               "ar-1",
				Amount:           decimal.NewFromFloat(1000.00),
				DueDate:          due,
				CounterpartyName: "CLIENTE ABC LTDA",
				DocumentNumber:   "4521",
			},
		},
	}
}

// fakeDetector returns canned discrepancies or a canned error
type fakeDetector struct {
	discrepancies []domain.Discrepancy
	err           error
}

func (f *fakeDetector) Detect(ctx context.Context, txns []domain.BankTransaction, matches []domain.TransactionMatch) ([]domain.Discrepancy, error) {
	return f.discrepancies, f.err
}

// failingRetriever fails every fetch
type failingRetriever struct{}

func (failingRetriever) FetchReceivables(ctx context.Context, w domain.DateWindow) ([]domain.MatchCandidate, error) {
	return nil, errors.New("ledger unreachable")
}

func (failingRetriever) FetchPayables(ctx context.Context, w domain.DateWindow) ([]domain.MatchCandidate, error) {
	return nil, errors.New("ledger unreachable")
}

// failingScorer fails every transaction
type failingScorer struct{}

func (failingScorer) Score(txn domain.BankTransaction, c domain.MatchCandidate) domain.ScoreBreakdown {
	return domain.ScoreBreakdown{}
}

func (failingScorer) FindBestMatch(txn domain.BankTransaction, cs []domain.MatchCandidate) (*domain.MatchResult, error) {
	return nil, errors.New("scorer exploded")
}

func newService(t *testing.T, cfg config.Config, r domain.CandidateRetriever, scorer domain.MatchScorer, detector domain.DiscrepancyDetector) *service.ReconciliationService {
	t.Helper()

	if scorer == nil {
		scorer = matcher.NewFuzzyScorer(cfg.Matching)
	}
	if detector == nil {
		detector = &fakeDetector{}
	}

	return service.NewReconciliationService(
		parser.NewStatementParser(cfg.Files, nil),
		r, scorer, detector, cfg, nil,
	)
}

func TestProcessStatement_AutoMatchesHighConfidenceCredit(t *testing.T) {
	svc := newService(t, config.Default(), testLedger(), nil, nil)

	result, err := svc.ProcessStatement(context.Background(), []byte(testStatement), "extrato.csv", "acc-1")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "acc-1", result.BankAccountID)
	assert.False(t, result.ProcessedAt.IsZero())
	assert.Empty(t, result.Degraded)

	assert.Equal(t, 10, result.Period.Start.Day())
	assert.Equal(t, 12, result.Period.End.Day())

	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, "ar-1", match.InvoiceID)
	assert.Equal(t, domain.MatchReceivable, match.MatchType)
	assert.GreaterOrEqual(t, match.Confidence, 0.95)
	assert.True(t, match.MatchedAmount.Equal(decimal.NewFromFloat(1000.00)))

	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "TED FORNECEDOR DESCONHECIDO", result.Unmatched[0].Description)

	s := result.Summary
	assert.Equal(t, 2, s.TotalTransactions)
	assert.Equal(t, 1, s.MatchedCount)
	assert.Equal(t, 1, s.UnmatchedCount)
	assert.InDelta(t, 50.0, s.MatchingRate, 1e-9)
	assert.True(t, s.TotalCredits.Equal(decimal.NewFromFloat(1000.00)))
	assert.True(t, s.TotalDebits.Equal(decimal.NewFromFloat(2500.50)))
	assert.True(t, s.MatchedAmount.Equal(decimal.NewFromFloat(1000.00)))

	assert.Equal(t, 1, result.ByType.AccountsReceivable.Matches)
	assert.Equal(t, 0, result.ByType.AccountsPayable.Matches)
}

func TestProcessStatement_EmptyStatementYieldsEmptyReport(t *testing.T) {
	svc := newService(t, config.Default(), testLedger(), nil, nil)

	result, err := svc.ProcessStatement(context.Background(), []byte("Data,Valor\n"), "extrato.csv", "acc-1")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 0, result.Summary.TotalTransactions)
	assert.Empty(t, result.Matches)
	assert.Empty(t, result.Unmatched)
}

func TestProcessStatement_ValidationFailureProducesNoReport(t *testing.T) {
	svc := newService(t, config.Default(), testLedger(), nil, nil)

	_, err := svc.ProcessStatement(context.Background(), nil, "extrato.csv", "acc-1")

	var validationErr *parser.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, parser.ValidationEmptyFile, validationErr.Code)
}

func TestProcessStatement_BatchCeiling(t *testing.T) {
	cfg := config.Default()
	cfg.Processing.MaxTransactionsPerBatch = 1

	svc := newService(t, cfg, testLedger(), nil, nil)

	_, err := svc.ProcessStatement(context.Background(), []byte(testStatement), "extrato.csv", "acc-1")
	require.ErrorIs(t, err, service.ErrBatchTooLarge)
}

func TestProcessStatement_RetrieverFailureDegradesReport(t *testing.T) {
	svc := newService(t, config.Default(), failingRetriever{}, nil, nil)

	result, err := svc.ProcessStatement(context.Background(), []byte(testStatement), "extrato.csv", "acc-1")
	require.NoError(t, err)

	assert.Contains(t, result.Degraded, service.DegradedCandidates)
	assert.Empty(t, result.Matches)
	assert.Len(t, result.Unmatched, 2)
}

func TestProcessStatement_DetectorFailureDegradesReport(t *testing.T) {
	detector := &fakeDetector{err: errors.New("rules engine down")}
	svc := newService(t, config.Default(), testLedger(), nil, detector)

	result, err := svc.ProcessStatement(context.Background(), []byte(testStatement), "extrato.csv", "acc-1")
	require.NoError(t, err)

	assert.Contains(t, result.Degraded, service.DegradedDiscrepancies)
	// Matching still ran
	assert.Len(t, result.Matches, 1)
}

func TestProcessStatement_ScorerFailureLeavesTransactionUnmatched(t *testing.T) {
	svc := newService(t, config.Default(), testLedger(), failingScorer{}, nil)

	result, err := svc.ProcessStatement(context.Background(), []byte(testStatement), "extrato.csv", "acc-1")
	require.NoError(t, err)

	assert.Empty(t, result.Matches)
	assert.Len(t, result.Unmatched, 2)
}

func TestProcessStatement_DiscrepanciesSummarized(t *testing.T) {
	expected := decimal.NewFromFloat(2500.00)
	detector := &fakeDetector{
		discrepancies: []domain.Discrepancy{
			{ID: "d1", Type: domain.DiscrepancyMissingTransaction, InvoiceID: "ar-9", ExpectedAmount: &expected, Severity: domain.SeverityMedium},
			{ID: "d2", Type: domain.DiscrepancyDuplicate, TransactionID: "t2", Severity: domain.SeverityLow},
		},
	}

	svc := newService(t, config.Default(), testLedger(), nil, detector)

	result, err := svc.ProcessStatement(context.Background(), []byte(testStatement), "extrato.csv", "acc-1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Discrepancies.Total)
	assert.Equal(t, 1, result.Discrepancies.ByType[string(domain.DiscrepancyMissingTransaction)])
	assert.Equal(t, 1, result.Discrepancies.ByType[string(domain.DiscrepancyDuplicate)])
	assert.Len(t, result.Discrepancies.Items, 2)
}

func TestProcessStatement_ParallelMatchesSequential(t *testing.T) {
	sequential := config.Default()
	sequential.Processing.ParallelProcessing = false

	parallel := config.Default()
	parallel.Processing.ParallelProcessing = true
	parallel.Processing.MaxWorkers = 4

	seqResult, err := newService(t, sequential, testLedger(), nil, nil).
		ProcessStatement(context.Background(), []byte(testStatement), "extrato.csv", "acc-1")
	require.NoError(t, err)

	parResult, err := newService(t, parallel, testLedger(), nil, nil).
		ProcessStatement(context.Background(), []byte(testStatement), "extrato.csv", "acc-1")
	require.NoError(t, err)

	require.Len(t, parResult.Matches, len(seqResult.Matches))
	for i := range seqResult.Matches {
		assert.Equal(t, seqResult.Matches[i].TransactionID, parResult.Matches[i].TransactionID)
		assert.Equal(t, seqResult.Matches[i].InvoiceID, parResult.Matches[i].InvoiceID)
		assert.Equal(t, seqResult.Matches[i].Confidence, parResult.Matches[i].Confidence)
	}
	assert.Equal(t, seqResult.Summary.MatchedCount, parResult.Summary.MatchedCount)
}

func TestProcessStatement_CancelledContextAborts(t *testing.T) {
	svc := newService(t, config.Default(), testLedger(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProcessStatement(ctx, []byte(testStatement), "extrato.csv", "acc-1")
	require.Error(t, err)
}

func TestManualMatch(t *testing.T) {
	svc := newService(t, config.Default(), testLedger(), nil, nil)

	match, err := svc.ManualMatch("txn-1", "ar-1", 0.75, "analyst@example.com")
	require.NoError(t, err)

	assert.Equal(t, domain.MatchManual, match.MatchType)
	assert.Equal(t, "txn-1", match.TransactionID)
	assert.Equal(t, "ar-1", match.InvoiceID)
	assert.Equal(t, 0.75, match.Confidence)
	assert.Equal(t, "analyst@example.com", match.MatchedBy)
	assert.False(t, match.MatchedAt.IsZero())
}

func TestManualMatch_Validation(t *testing.T) {
	svc := newService(t, config.Default(), testLedger(), nil, nil)

	_, err := svc.ManualMatch("", "ar-1", 0.75, "")
	assert.Error(t, err)

	_, err = svc.ManualMatch("txn-1", "", 0.75, "")
	assert.Error(t, err)

	_, err = svc.ManualMatch("txn-1", "ar-1", 1.5, "")
	assert.Error(t, err)

	_, err = svc.ManualMatch("txn-1", "ar-1", -0.1, "")
	assert.Error(t, err)
}

func parseDay(s string) (t time.Time) {
	t, _ = time.Parse("2006-01-02", s)
	return t
}
