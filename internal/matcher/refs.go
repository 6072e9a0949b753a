package matcher

import (
	"regexp"
	"strings"
)

// Reference-like token patterns: long digit runs, LETTERS-DIGITS document
// numbers (NF-123, FAT-456), and slash/dash number pairs (123/456)
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{6,}\b`),
	regexp.MustCompile(`\b[A-Z]{2,3}[-\s]?\d{3,}\b`),
	regexp.MustCompile(`\b\d{3,}[-/]\d{3,}\b`),
}

var letterDigitRe = regexp.MustCompile(`^[A-Z]{2,3}[-\s]?(\d{3,})$`)

var refNormalizeRe = regexp.MustCompile(`[-\s]`)

// ExtractReferenceTokens scans free text for reference-like tokens. For a
// LETTERS-DIGITS token the bare digit tail is also recorded, so "NF-4521"
// can still meet an invoice numbered "4521".
func ExtractReferenceTokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	upper := strings.ToUpper(text)

	var tokens []string
	seen := make(map[string]bool)

	add := func(tok string) {
		tok = refNormalizeRe.ReplaceAllString(tok, "")
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}

	for _, pattern := range referencePatterns {
		for _, match := range pattern.FindAllString(upper, -1) {
			add(match)

			if m := letterDigitRe.FindStringSubmatch(match); m != nil {
				add(m[1])
			}
		}
	}

	return tokens
}

// FieldReferenceToken normalizes a structured reference field (document
// number, ledger id) into a single token. Unlike free text, a structured
// field is a reference by definition, so no pattern gate applies.
func FieldReferenceToken(field string) string {
	tok := refNormalizeRe.ReplaceAllString(strings.ToUpper(strings.TrimSpace(field)), "")
	if tok == "" {
		return ""
	}
	return tok
}
