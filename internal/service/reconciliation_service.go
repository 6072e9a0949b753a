// Package service orchestrates the reconciliation pipeline: parse the
// statement, fetch candidates, score matches, detect discrepancies, and
// assemble the run report.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/domain"
	"github.com/finautomation/reconciliation-engine/internal/parser"
)

// candidateWindowDays pads the statement period on both sides when fetching
// open records; invoices can settle well before or after their due date
const candidateWindowDays = 30

// Degraded report section names
const (
	DegradedCandidates    = "candidates"
	DegradedDiscrepancies = "discrepancies"
)

// ErrBatchTooLarge is returned when a statement exceeds the configured
// per-batch transaction ceiling
var ErrBatchTooLarge = errors.New("statement exceeds the per-batch transaction ceiling")

// ReconciliationService orchestrates the reconciliation process
type ReconciliationService struct {
	parser    *parser.StatementParser
	retriever domain.CandidateRetriever
	scorer    domain.MatchScorer
	detector  domain.DiscrepancyDetector
	cfg       config.Config
	logger    *slog.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	p *parser.StatementParser,
	retriever domain.CandidateRetriever,
	scorer domain.MatchScorer,
	detector domain.DiscrepancyDetector,
	cfg config.Config,
	logger *slog.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReconciliationService{
		parser:    p,
		retriever: retriever,
		scorer:    scorer,
		detector:  detector,
		cfg:       cfg,
		logger:    logger,
	}
}

// MatchingRules returns the active matching configuration
func (s *ReconciliationService) MatchingRules() config.MatchingConfig {
	return s.cfg.Matching
}

// ProcessStatement runs the full pipeline for one statement file and returns
// the reconciliation report. Parse and validation failures fail the whole run;
// candidate-retrieval and discrepancy-detection failures degrade the report
// instead, naming the missing section.
func (s *ReconciliationService) ProcessStatement(ctx context.Context, content []byte, filename, bankAccountID string) (domain.ReconciliationResult, error) {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "filename", filename)

	txns, err := s.parser.Parse(content, filename)
	if err != nil {
		return domain.ReconciliationResult{}, fmt.Errorf("parsing statement: %w", err)
	}

	result := domain.ReconciliationResult{
		RunID:         runID,
		BankAccountID: bankAccountID,
		ProcessedAt:   time.Now().UTC(),
	}

	if len(txns) == 0 {
		logger.Info("statement has no transactions, returning empty report")
		result.Discrepancies.ByType = map[string]int{}
		return result, nil
	}

	if ceiling := s.cfg.Processing.MaxTransactionsPerBatch; len(txns) > ceiling {
		return domain.ReconciliationResult{}, fmt.Errorf("%w: %d transactions, ceiling is %d", ErrBatchTooLarge, len(txns), ceiling)
	}

	result.Period = statementPeriod(txns)

	receivables, payables, degraded := s.fetchCandidates(ctx, result.Period, logger)
	if degraded {
		result.Degraded = append(result.Degraded, DegradedCandidates)
	}

	matches, err := s.matchTransactions(ctx, txns, receivables, payables, logger)
	if err != nil {
		return domain.ReconciliationResult{}, err
	}

	result.Matches = matches
	result.Unmatched = unmatchedTransactions(txns, matches)

	discrepancies, err := s.detector.Detect(ctx, txns, matches)
	if err != nil {
		logger.Warn("discrepancy detection failed, report degraded", "error", err)
		result.Degraded = append(result.Degraded, DegradedDiscrepancies)
	}

	result.Summary = buildSummary(txns, matches)
	result.ByType = buildSideBreakdown(matches)
	result.Discrepancies = buildDiscrepancySummary(discrepancies)

	logger.Info("statement reconciled",
		"transactions", len(txns),
		"matched", len(matches),
		"discrepancies", result.Discrepancies.Total,
		"matching_rate", result.Summary.MatchingRate,
	)

	return result, nil
}

// ManualMatch records an operator-confirmed match between a transaction and
// an invoice
func (s *ReconciliationService) ManualMatch(transactionID, invoiceID string, confidence float64, matchedBy string) (domain.TransactionMatch, error) {
	if transactionID == "" || invoiceID == "" {
		return domain.TransactionMatch{}, errors.New("transaction_id and invoice_id are required")
	}

	if confidence < 0 || confidence > 1 {
		return domain.TransactionMatch{}, fmt.Errorf("confidence must be in [0, 1], got %v", confidence)
	}

	match := domain.TransactionMatch{
		TransactionID: transactionID,
		InvoiceID:     invoiceID,
		Confidence:    confidence,
		MatchType:     domain.MatchManual,
		Reason:        "manual_confirmation",
		MatchedAt:     time.Now().UTC(),
		MatchedBy:     matchedBy,
	}

	s.logger.Info("manual match recorded",
		"transaction_id", transactionID,
		"invoice_id", invoiceID,
		"matched_by", matchedBy,
	)

	return match, nil
}

// fetchCandidates loads open records around the statement period. A retrieval
// failure yields empty candidate lists and marks the report degraded.
func (s *ReconciliationService) fetchCandidates(ctx context.Context, period domain.Period, logger *slog.Logger) (receivables, payables []domain.MatchCandidate, degraded bool) {
	window := domain.DateWindow{
		Start: period.Start.AddDate(0, 0, -candidateWindowDays),
		End:   period.End.AddDate(0, 0, candidateWindowDays),
	}

	receivables, err := s.retriever.FetchReceivables(ctx, window)
	if err != nil {
		logger.Warn("fetching receivables failed, matching without candidates", "error", err)
		return nil, nil, true
	}

	payables, err = s.retriever.FetchPayables(ctx, window)
	if err != nil {
		logger.Warn("fetching payables failed, matching without candidates", "error", err)
		return nil, nil, true
	}

	logger.Debug("candidates fetched", "receivables", len(receivables), "payables", len(payables))

	return receivables, payables, false
}

// matchTransactions finds the best candidate for every transaction. Credits
// match against receivables, debits against payables. A scorer failure on one
// transaction leaves it unmatched without failing the batch.
func (s *ReconciliationService) matchTransactions(ctx context.Context, txns []domain.BankTransaction, receivables, payables []domain.MatchCandidate, logger *slog.Logger) ([]domain.TransactionMatch, error) {
	var outcomes []*domain.TransactionMatch
	var err error

	if s.cfg.Processing.ParallelProcessing && len(txns) > 1 {
		outcomes, err = s.matchParallel(ctx, txns, receivables, payables, logger)
	} else {
		outcomes, err = s.matchChunk(ctx, txns, receivables, payables, logger)
	}
	if err != nil {
		return nil, err
	}

	matches := make([]domain.TransactionMatch, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome != nil {
			matches = append(matches, *outcome)
		}
	}

	return matches, nil
}

// matchChunk scores a contiguous run of transactions sequentially. The
// returned slice is indexed like txns; nil means unmatched.
func (s *ReconciliationService) matchChunk(ctx context.Context, txns []domain.BankTransaction, receivables, payables []domain.MatchCandidate, logger *slog.Logger) ([]*domain.TransactionMatch, error) {
	outcomes := make([]*domain.TransactionMatch, len(txns))

	for i, txn := range txns {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("matching aborted: %w", err)
		}

		candidates := payables
		matchType := domain.MatchPayable
		if txn.IsCredit() {
			candidates = receivables
			matchType = domain.MatchReceivable
		}

		best, err := s.scorer.FindBestMatch(txn, candidates)
		if err != nil {
			logger.Warn("scoring failed, transaction left unmatched", "transaction_id", txn.ID, "error", err)
			continue
		}

		if best == nil || best.Confidence < s.cfg.Matching.AutoMatchThreshold {
			continue
		}

		outcomes[i] = &domain.TransactionMatch{
			TransactionID: txn.ID,
			InvoiceID:     best.Candidate.ID,
			Confidence:    best.Confidence,
			MatchType:     matchType,
			MatchedAmount: txn.AbsAmount(),
			Reason:        best.Reason,
			MatchedAt:     time.Now().UTC(),
		}
	}

	return outcomes, nil
}

// matchParallel splits the batch into contiguous chunks, one per worker, and
// reassembles the per-chunk outcomes in order. The result is identical to a
// sequential run over the same input.
func (s *ReconciliationService) matchParallel(ctx context.Context, txns []domain.BankTransaction, receivables, payables []domain.MatchCandidate, logger *slog.Logger) ([]*domain.TransactionMatch, error) {
	workers := s.cfg.Processing.MaxWorkers
	if workers > len(txns) {
		workers = len(txns)
	}

	chunkSize := (len(txns) + workers - 1) / workers

	type chunkResult struct {
		start    int
		outcomes []*domain.TransactionMatch
		err      error
	}

	results := make(chan chunkResult, workers)

	var wg sync.WaitGroup
	for start := 0; start < len(txns); start += chunkSize {
		end := start + chunkSize
		if end > len(txns) {
			end = len(txns)
		}

		wg.Add(1)
		go func(start int, chunk []domain.BankTransaction) {
			defer wg.Done()
			outcomes, err := s.matchChunk(ctx, chunk, receivables, payables, logger)
			results <- chunkResult{start: start, outcomes: outcomes, err: err}
		}(start, txns[start:end])
	}

	wg.Wait()
	close(results)

	outcomes := make([]*domain.TransactionMatch, len(txns))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		copy(outcomes[res.start:], res.outcomes)
	}

	return outcomes, nil
}

func unmatchedTransactions(txns []domain.BankTransaction, matches []domain.TransactionMatch) []domain.BankTransaction {
	matchedIDs := make(map[string]bool, len(matches))
	for _, m := range matches {
		matchedIDs[m.TransactionID] = true
	}

	var unmatched []domain.BankTransaction
	for _, txn := range txns {
		if !matchedIDs[txn.ID] {
			unmatched = append(unmatched, txn)
		}
	}

	return unmatched
}

func statementPeriod(txns []domain.BankTransaction) domain.Period {
	start, end := txns[0].Date, txns[0].Date
	for _, txn := range txns[1:] {
		if txn.Date.Before(start) {
			start = txn.Date
		}
		if txn.Date.After(end) {
			end = txn.Date
		}
	}

	return domain.Period{Start: start, End: end}
}

func buildSummary(txns []domain.BankTransaction, matches []domain.TransactionMatch) domain.Summary {
	summary := domain.Summary{
		TotalTransactions: len(txns),
		MatchedCount:      len(matches),
		UnmatchedCount:    len(txns) - len(matches),
		TotalCredits:      decimal.Zero,
		TotalDebits:       decimal.Zero,
		MatchedAmount:     decimal.Zero,
	}

	for _, txn := range txns {
		if txn.IsCredit() {
			summary.TotalCredits = summary.TotalCredits.Add(txn.Amount)
		} else {
			summary.TotalDebits = summary.TotalDebits.Add(txn.AbsAmount())
		}
	}

	for _, m := range matches {
		summary.MatchedAmount = summary.MatchedAmount.Add(m.MatchedAmount)
	}

	if len(txns) > 0 {
		summary.MatchingRate = float64(len(matches)) / float64(len(txns)) * 100
	}

	return summary
}

func buildSideBreakdown(matches []domain.TransactionMatch) domain.SideBreakdown {
	breakdown := domain.SideBreakdown{
		AccountsReceivable: domain.TypeBreakdown{Amount: decimal.Zero},
		AccountsPayable:    domain.TypeBreakdown{Amount: decimal.Zero},
	}

	for _, m := range matches {
		switch m.MatchType {
		case domain.MatchReceivable:
			breakdown.AccountsReceivable.Matches++
			breakdown.AccountsReceivable.Amount = breakdown.AccountsReceivable.Amount.Add(m.MatchedAmount)
		case domain.MatchPayable:
			breakdown.AccountsPayable.Matches++
			breakdown.AccountsPayable.Amount = breakdown.AccountsPayable.Amount.Add(m.MatchedAmount)
		}
	}

	return breakdown
}

func buildDiscrepancySummary(discrepancies []domain.Discrepancy) domain.DiscrepancySummary {
	summary := domain.DiscrepancySummary{
		Total:  len(discrepancies),
		ByType: make(map[string]int),
		Items:  discrepancies,
	}

	for _, d := range discrepancies {
		summary.ByType[string(d.Type)]++
	}

	return summary
}
