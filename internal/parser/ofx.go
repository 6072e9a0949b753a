package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// ofxTransaction collects the tags of one <STMTTRN> block
type ofxTransaction struct {
	fitID    string
	datePost string
	amount   string
	memo     string
	name     string
	checkNum string
}

// parseOFX extracts statement transactions from an OFX document. OFX files in
// the wild are SGML-flavored: tags may carry their value on the same line and
// closing tags are optional, so the document is read as a line-oriented tag
// stream rather than strict XML.
func (p *StatementParser) parseOFX(content []byte) ([]domain.BankTransaction, error) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		txns      []domain.BankTransaction
		current   *ofxTransaction
		accountID string
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		txn, err := p.buildOFXTransaction(*current, accountID)
		if err != nil {
			return err
		}
		txns = append(txns, txn)
		current = nil
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tag, value := splitOFXLine(line)

		switch strings.ToUpper(tag) {
		case "STMTTRN":
			if err := flush(); err != nil {
				return nil, err
			}
			current = &ofxTransaction{}
		case "/STMTTRN", "/BANKTRANLIST":
			if err := flush(); err != nil {
				return nil, err
			}
		case "ACCTID":
			accountID = value
		case "FITID":
			if current != nil {
				current.fitID = value
			}
		case "DTPOSTED":
			if current != nil {
				current.datePost = value
			}
		case "TRNAMT":
			if current != nil {
				current.amount = value
			}
		case "MEMO":
			if current != nil {
				current.memo = value
			}
		case "NAME":
			if current != nil {
				current.name = value
			}
		case "CHECKNUM":
			if current != nil {
				current.checkNum = value
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Format: domain.FormatOFX, Err: err}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	if !bytes.Contains(bytes.ToUpper(content), []byte("<STMTTRN>")) {
		return nil, &ParseError{Format: domain.FormatOFX, Err: fmt.Errorf("no <STMTTRN> blocks found")}
	}

	return txns, nil
}

func (p *StatementParser) buildOFXTransaction(raw ofxTransaction, accountID string) (domain.BankTransaction, error) {
	txDate, err := parseOFXDate(raw.datePost)
	if err != nil {
		return domain.BankTransaction{}, &ParseError{Format: domain.FormatOFX, Err: err}
	}

	amount, err := ParseLocalizedAmount(raw.amount)
	if err != nil {
		return domain.BankTransaction{}, &ParseError{Format: domain.FormatOFX, Err: err}
	}

	description := raw.memo
	if description == "" {
		description = raw.name
	}
	if description == "" {
		description = "OFX transaction"
	}

	reference := raw.checkNum
	if reference == "" {
		reference = raw.fitID
	}

	// The source id alone is not unique across statements; combining it with
	// the posting date guarantees per-batch uniqueness.
	return domain.BankTransaction{
		ID:          fmt.Sprintf("ofx_%s_%s", raw.fitID, txDate.Format("20060102")),
		Date:        txDate,
		Amount:      amount,
		Description: description,
		Reference:   reference,
		AccountID:   accountID,
		Source:      domain.FormatOFX,
	}, nil
}

// splitOFXLine splits "<TAG>value" into its tag and value parts
func splitOFXLine(line string) (tag, value string) {
	if !strings.HasPrefix(line, "<") {
		return "", ""
	}

	end := strings.IndexByte(line, '>')
	if end < 0 {
		return "", ""
	}

	return line[1:end], strings.TrimSpace(line[end+1:])
}

// parseOFXDate parses DTPOSTED values such as "20240110", "20240110120000"
// or "20240110120000[-3:BRT]"; only the date part is significant
func parseOFXDate(s string) (time.Time, error) {
	digits := s
	if idx := strings.IndexAny(digits, "[("); idx >= 0 {
		digits = digits[:idx]
	}
	digits = strings.TrimSpace(digits)

	if len(digits) < 8 {
		return time.Time{}, fmt.Errorf("invalid DTPOSTED value: %q", s)
	}

	return time.Parse("20060102", digits[:8])
}
