package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// SupportedFormats lists the statement formats the parser accepts
var SupportedFormats = []string{"ofx", "csv", "pdf"}

// DetectFormat resolves the statement format once, before parsing. The file
// extension wins; without a recognized extension the content is sniffed
// (<OFX> marker, %PDF magic bytes, comma+newline heuristic). CSV is the
// default when nothing else matches.
func DetectFormat(filename string, content []byte) domain.StatementFormat {
	name := strings.ToLower(filename)

	switch {
	case strings.HasSuffix(name, ".ofx"):
		return domain.FormatOFX
	case strings.HasSuffix(name, ".csv"):
		return domain.FormatCSV
	case strings.HasSuffix(name, ".pdf"):
		return domain.FormatPDF
	}

	head := content
	if len(head) > 1000 {
		head = head[:1000]
	}

	switch {
	case bytes.Contains(head, []byte("<OFX>")) || bytes.Contains(head, []byte("OFXHEADER")):
		return domain.FormatOFX
	case bytes.HasPrefix(head, []byte("%PDF")):
		return domain.FormatPDF
	case bytes.ContainsRune(head, ',') && bytes.ContainsRune(head, '\n'):
		return domain.FormatCSV
	}

	return domain.FormatCSV
}

// FileInfo describes a validated statement file
type FileInfo struct {
	Format                domain.StatementFormat `json:"format"`
	Size                  int                    `json:"size"`
	EstimatedTransactions int                    `json:"estimated_transactions"`
}

// ValidateFile runs the file-level checks that precede parsing: empty files,
// files above the size ceiling, and unsupported formats are each rejected
// with a distinct validation code.
func ValidateFile(filename string, content []byte, maxFileSizeMB int) (FileInfo, error) {
	if len(content) == 0 {
		return FileInfo{}, &ValidationError{
			Code:    ValidationEmptyFile,
			Message: "file is empty",
		}
	}

	maxBytes := maxFileSizeMB * 1024 * 1024
	if len(content) > maxBytes {
		return FileInfo{}, &ValidationError{
			Code:    ValidationFileTooLarge,
			Message: fmt.Sprintf("file exceeds the %dMB size limit", maxFileSizeMB),
		}
	}

	if ext := extensionOf(filename); ext != "" && !isSupportedExtension(ext) {
		return FileInfo{}, &ValidationError{
			Code:    ValidationUnsupportedFormat,
			Message: fmt.Sprintf("unsupported format %q, supported formats: %s", ext, strings.Join(SupportedFormats, ", ")),
		}
	}

	format := DetectFormat(filename, content)

	return FileInfo{
		Format:                format,
		Size:                  len(content),
		EstimatedTransactions: estimateTransactionCount(content, format),
	}, nil
}

func extensionOf(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

func isSupportedExtension(ext string) bool {
	for _, s := range SupportedFormats {
		if ext == s {
			return true
		}
	}
	return false
}

// estimateTransactionCount gives a rough transaction count for the validation
// response; it never affects parsing
func estimateTransactionCount(content []byte, format domain.StatementFormat) int {
	switch format {
	case domain.FormatCSV:
		lines := bytes.Count(content, []byte("\n"))
		if lines < 1 {
			return 0
		}
		return lines - 1 // minus header
	case domain.FormatOFX:
		return bytes.Count(bytes.ToUpper(content), []byte("<STMTTRN>"))
	case domain.FormatPDF:
		est := len(content) / 1000
		if est < 10 {
			est = 10
		}
		if est > 100 {
			est = 100
		}
		return est
	}
	return 0
}
