package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// TextExtractor pulls the text layer out of a PDF document. The default
// implementation reads uncompressed content streams only; production
// deployments plug in a real extraction service behind this interface.
type TextExtractor interface {
	ExtractText(content []byte) (string, error)
}

// textLayerExtractor is the built-in TextExtractor. It collects the literal
// strings drawn by Tj/TJ operators in uncompressed content streams.
type textLayerExtractor struct{}

var (
	pdfTjRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*Tj`)
	pdfTJRe = regexp.MustCompile(`\[((?:\((?:\\.|[^\\()])*\)|[^\[\]])*)\]\s*TJ`)
	pdfStrRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
)

func (textLayerExtractor) ExtractText(content []byte) (string, error) {
	doc := string(content)

	var lines []string

	for _, m := range pdfTjRe.FindAllStringSubmatch(doc, -1) {
		lines = append(lines, unescapePDFString(m[1]))
	}

	for _, m := range pdfTJRe.FindAllStringSubmatch(doc, -1) {
		var parts []string
		for _, sm := range pdfStrRe.FindAllStringSubmatch(m[1], -1) {
			parts = append(parts, unescapePDFString(sm[1]))
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, ""))
		}
	}

	return strings.Join(lines, "\n"), nil
}

func unescapePDFString(s string) string {
	replacer := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\n`, "\n", `\r`, "\r", `\t`, "\t")
	return replacer.Replace(s)
}

// pdfLineRe matches statement lines of the form "date description amount"
var pdfLineRe = regexp.MustCompile(`^(\d{2}[/.-]\d{2}[/.-]\d{2,4})\s+(.+?)\s+([-+]?[\d.,]+)$`)

// parsePDF extracts transactions from a PDF statement's text layer. A PDF
// whose text layer yields no recognizable transactions is an empty-result
// condition, not a failure.
func (p *StatementParser) parsePDF(content []byte) ([]domain.BankTransaction, error) {
	text, err := p.extractor.ExtractText(content)
	if err != nil {
		return nil, &ParseError{Format: domain.FormatPDF, Err: err}
	}

	var txns []domain.BankTransaction

	for i, line := range strings.Split(text, "\n") {
		m := pdfLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		txDate, err := ParseFlexibleDate(m[1])
		if err != nil {
			continue
		}

		amount, err := ParseLocalizedAmount(m[3])
		if err != nil {
			continue
		}

		description := strings.TrimSpace(m[2])

		txns = append(txns, domain.BankTransaction{
			ID:          fmt.Sprintf("pdf_%03d_%s", i+1, txDate.Format("20060102")),
			Date:        txDate,
			Amount:      amount,
			Description: description,
			Source:      domain.FormatPDF,
		})
	}

	if len(txns) == 0 {
		p.logger.Info("PDF text layer yielded no transactions")
	}

	return txns, nil
}
