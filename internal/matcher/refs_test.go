package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finautomation/reconciliation-engine/internal/matcher"
)

func TestExtractReferenceTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"long digit run", "PAGAMENTO BOLETO 123456789", []string{"123456789"}},
		{"document number with digit tail", "PIX NF-4521 RECEBIDO", []string{"NF4521", "4521"}},
		{"slash pair", "PAGAMENTO 123/456", []string{"123/456"}},
		{"lowercase input uppercased", "pagamento nf-4521", []string{"NF4521", "4521"}},
		{"no references", "PIX RECEBIDO CLIENTE", nil},
		{"empty", "   ", nil},
		{"short digits ignored", "PARCELA 12 DE 48", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matcher.ExtractReferenceTokens(tt.input))
		})
	}
}

func TestExtractReferenceTokens_Dedupes(t *testing.T) {
	tokens := matcher.ExtractReferenceTokens("NF-4521 NF 4521")
	assert.Equal(t, []string{"NF4521", "4521"}, tokens)
}

func TestFieldReferenceToken(t *testing.T) {
	assert.Equal(t, "4521", matcher.FieldReferenceToken("4521"))
	assert.Equal(t, "NF4521", matcher.FieldReferenceToken("nf-4521"))
	assert.Equal(t, "FAT001", matcher.FieldReferenceToken(" FAT 001 "))
	assert.Equal(t, "", matcher.FieldReferenceToken("  "))
}
