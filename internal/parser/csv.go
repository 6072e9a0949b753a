package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/finautomation/reconciliation-engine/internal/domain"
	"github.com/finautomation/reconciliation-engine/pkg/fileutil"
)

// Column roles are inferred by matching header names against synonym lists,
// covering the header variants Brazilian banks actually export.
var (
	dateColumnSynonyms      = []string{"data", "date", "dt", "dt_transacao", "dt_movimento"}
	amountColumnSynonyms    = []string{"valor", "amount", "vlr", "vl_transacao", "credito", "debito"}
	descColumnSynonyms      = []string{"descricao", "description", "desc", "historico", "memo", "observacao"}
	referenceColumnSynonyms = []string{"referencia", "reference", "ref", "documento", "doc"}
)

func (p *StatementParser) parseCSV(content []byte) ([]domain.BankTransaction, error) {
	reader := fileutil.NewCSVReader(bytes.NewReader(content))

	header, err := reader.ReadHeader()
	if err != nil {
		return nil, &ParseError{Format: domain.FormatCSV, Err: err}
	}

	columns := mapCSVColumns(header)
	if _, ok := columns["date"]; !ok {
		return nil, &ParseError{Format: domain.FormatCSV, Err: fmt.Errorf("no date-like column in header %v", header)}
	}
	if _, ok := columns["amount"]; !ok {
		return nil, &ParseError{Format: domain.FormatCSV, Err: fmt.Errorf("no amount-like column in header %v", header)}
	}

	maxIndex := -1
	for _, idx := range columns {
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	var txns []domain.BankTransaction
	rowIndex := 0

	rowProcessorFn := func(row []string) error {
		rowIndex++

		// Skip if row doesn't have enough fields
		if len(row) <= maxIndex {
			return nil
		}

		txDate, err := ParseFlexibleDate(row[columns["date"]])
		if err != nil {
			// Log but continue processing other rows
			p.logger.Warn("skipping CSV row with invalid date", "row", rowIndex, "error", err)
			return nil
		}

		amount, err := ParseLocalizedAmount(row[columns["amount"]])
		if err != nil {
			p.logger.Warn("skipping CSV row with invalid amount", "row", rowIndex, "error", err)
			return nil
		}

		description := ""
		if idx, ok := columns["description"]; ok {
			description = strings.TrimSpace(row[idx])
		}
		if description == "" {
			description = fmt.Sprintf("CSV transaction %d", rowIndex)
		}

		reference := ""
		if idx, ok := columns["reference"]; ok {
			reference = strings.TrimSpace(row[idx])
		}

		txns = append(txns, domain.BankTransaction{
			ID:          fmt.Sprintf("csv_%d_%s_%s", rowIndex, txDate.Format("20060102"), amount.Abs().String()),
			Date:        txDate,
			Amount:      amount,
			Description: description,
			Reference:   reference,
			Source:      domain.FormatCSV,
		})

		return nil
	}

	if err := reader.ReadAndProcessByRow(rowProcessorFn); err != nil {
		return nil, &ParseError{Format: domain.FormatCSV, Err: err}
	}

	return txns, nil
}

// mapCSVColumns maps column roles to header indices. The first header whose
// lowercased name contains a synonym wins the role.
func mapCSVColumns(header []string) map[string]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	columns := make(map[string]int)

	assign := func(role string, synonyms []string) {
		for i, col := range normalized {
			for _, syn := range synonyms {
				if strings.Contains(col, syn) {
					columns[role] = i
					return
				}
			}
		}
	}

	assign("date", dateColumnSynonyms)
	assign("amount", amountColumnSynonyms)
	assign("description", descColumnSynonyms)
	assign("reference", referenceColumnSynonyms)

	return columns
}
