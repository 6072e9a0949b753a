// Package parser turns raw statement files (OFX, CSV, PDF) into normalized
// bank transactions.
package parser

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// StatementParser detects a statement's format and yields a normalized,
// deduplicated, date-ordered transaction list
type StatementParser struct {
	maxFileSizeMB int
	extractor     TextExtractor
	logger        *slog.Logger
}

// Option configures a StatementParser
type Option func(*StatementParser)

// WithTextExtractor replaces the built-in PDF text extractor
func WithTextExtractor(e TextExtractor) Option {
	return func(p *StatementParser) {
		p.extractor = e
	}
}

// NewStatementParser creates a StatementParser
func NewStatementParser(cfg config.FileConfig, logger *slog.Logger, opts ...Option) *StatementParser {
	if logger == nil {
		logger = slog.Default()
	}

	p := &StatementParser{
		maxFileSizeMB: cfg.MaxFileSizeMB,
		extractor:     textLayerExtractor{},
		logger:        logger,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse validates the file, detects its format, and extracts transactions.
// Validation and parse failures are whole-file errors; parsing the same file
// twice yields an identical ordered transaction list.
func (p *StatementParser) Parse(content []byte, filename string) ([]domain.BankTransaction, error) {
	info, err := ValidateFile(filename, content, p.maxFileSizeMB)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("statement format detected", "format", info.Format, "size", info.Size)

	var txns []domain.BankTransaction

	switch info.Format {
	case domain.FormatOFX:
		txns, err = p.parseOFX(content)
	case domain.FormatCSV:
		txns, err = p.parseCSV(content)
	case domain.FormatPDF:
		txns, err = p.parsePDF(content)
	default:
		return nil, &ValidationError{
			Code:    ValidationUnsupportedFormat,
			Message: fmt.Sprintf("unsupported format: %s", info.Format),
		}
	}

	if err != nil {
		return nil, err
	}

	txns = dedupeTransactions(txns)

	// Ordering preserved by date ascending; sort is stable so same-day
	// transactions keep their statement order
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})

	p.logger.Info("statement parsed", "format", info.Format, "transactions", len(txns))

	return txns, nil
}

// dedupeTransactions collapses transactions with identical date, amount and
// description prefix, keeping the first occurrence
func dedupeTransactions(txns []domain.BankTransaction) []domain.BankTransaction {
	seen := make(map[string]bool, len(txns))
	out := txns[:0]

	for _, txn := range txns {
		key := dedupeKey(txn)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, txn)
	}

	return out
}

func dedupeKey(txn domain.BankTransaction) string {
	prefix := strings.ToLower(strings.TrimSpace(txn.Description))
	if len(prefix) > 20 {
		prefix = prefix[:20]
	}

	return fmt.Sprintf("%s|%s|%s", txn.Date.Format("20060102"), txn.Amount.String(), prefix)
}
