package parser_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/parser"
)

func newTestParser(opts ...parser.Option) *parser.StatementParser {
	return parser.NewStatementParser(config.FileConfig{MaxFileSizeMB: 50}, nil, opts...)
}

const csvStatement = `Data,Descricao,Valor,Documento
10/02/2024,PIX RECEBIDO CLIENTE ABC,"1.000,00",NF-4521
12/02/2024,TED FORNECEDOR XYZ,"-2.500,50",
08/02/2024,TARIFA BANCARIA,"-45,90",
`

func TestParse_CSVStatement(t *testing.T) {
	p := newTestParser()

	txns, err := p.Parse([]byte(csvStatement), "extrato.csv")
	require.NoError(t, err)
	require.Len(t, txns, 3)

	// Sorted by date ascending regardless of statement order
	assert.Equal(t, 8, txns[0].Date.Day())
	assert.Equal(t, 10, txns[1].Date.Day())
	assert.Equal(t, 12, txns[2].Date.Day())

	pix := txns[1]
	assert.Equal(t, "PIX RECEBIDO CLIENTE ABC", pix.Description)
	assert.Equal(t, "NF-4521", pix.Reference)
	assert.True(t, pix.Amount.Equal(mustDecimal(t, "1000.00")))
	assert.True(t, pix.IsCredit())

	ted := txns[2]
	assert.True(t, ted.Amount.Equal(mustDecimal(t, "-2500.50")))
	assert.False(t, ted.IsCredit())
}

func TestParse_CSVSkipsMalformedRows(t *testing.T) {
	content := []byte(strings.Join([]string{
		"Data,Valor,Historico",
		"10/02/2024,\"150,00\",VALID ROW",
		"not-a-date,\"99,00\",BAD DATE",
		"11/02/2024,not-an-amount,BAD AMOUNT",
		"12/02/2024,\"75,00\",ANOTHER VALID ROW",
	}, "\n"))

	p := newTestParser()

	txns, err := p.Parse(content, "extrato.csv")
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestParse_CSVMissingRequiredColumns(t *testing.T) {
	content := []byte("Historico,Documento\nSOMETHING,123\n")

	p := newTestParser()

	_, err := p.Parse(content, "extrato.csv")
	var parseErr *parser.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParse_DeduplicatesRepeatedLines(t *testing.T) {
	content := []byte(strings.Join([]string{
		"Data,Valor,Descricao",
		"10/02/2024,\"150,00\",PAGAMENTO BOLETO 123456",
		"10/02/2024,\"150,00\",PAGAMENTO BOLETO 123456",
		"10/02/2024,\"150,00\",OUTRO PAGAMENTO",
	}, "\n"))

	p := newTestParser()

	txns, err := p.Parse(content, "extrato.csv")
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestParse_IsIdempotent(t *testing.T) {
	p := newTestParser()

	first, err := p.Parse([]byte(csvStatement), "extrato.csv")
	require.NoError(t, err)

	second, err := p.Parse([]byte(csvStatement), "extrato.csv")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParse_EmptyFileRejected(t *testing.T) {
	p := newTestParser()

	_, err := p.Parse(nil, "extrato.csv")

	var validationErr *parser.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, parser.ValidationEmptyFile, validationErr.Code)
}

const ofxStatement = `OFXHEADER:100
DATA:OFXSGML

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<STMTRS>
<BANKACCTFROM>
<ACCTID>12345-6
</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240210120000[-3:BRT]
<TRNAMT>1000.00
<FITID>2024021001
<MEMO>PIX RECEBIDO CLIENTE ABC
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240212
<TRNAMT>-2500.50
<FITID>2024021202
<CHECKNUM>998877
<NAME>TED FORNECEDOR XYZ
</STMTTRN>
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParse_OFXStatement(t *testing.T) {
	p := newTestParser()

	txns, err := p.Parse([]byte(ofxStatement), "extrato.ofx")
	require.NoError(t, err)
	require.Len(t, txns, 2)

	credit := txns[0]
	assert.Equal(t, "ofx_2024021001_20240210", credit.ID)
	assert.True(t, credit.Date.Equal(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, credit.Amount.Equal(mustDecimal(t, "1000.00")))
	assert.Equal(t, "PIX RECEBIDO CLIENTE ABC", credit.Description)
	assert.Equal(t, "2024021001", credit.Reference)
	assert.Equal(t, "12345-6", credit.AccountID)

	debit := txns[1]
	assert.True(t, debit.Amount.Equal(mustDecimal(t, "-2500.50")))
	// NAME is the description fallback, CHECKNUM wins as reference
	assert.Equal(t, "TED FORNECEDOR XYZ", debit.Description)
	assert.Equal(t, "998877", debit.Reference)
}

func TestParse_OFXWithoutTransactionsRejected(t *testing.T) {
	p := newTestParser()

	_, err := p.Parse([]byte("<OFX><BANKTRANLIST></BANKTRANLIST></OFX>\n"), "extrato.ofx")

	var parseErr *parser.ParseError
	require.ErrorAs(t, err, &parseErr)
}

// stubExtractor returns a fixed text layer regardless of the PDF bytes
type stubExtractor struct {
	text string
}

func (s stubExtractor) ExtractText(content []byte) (string, error) {
	return s.text, nil
}

func TestParse_PDFStatement(t *testing.T) {
	text := strings.Join([]string{
		"EXTRATO DE CONTA CORRENTE",
		"10/02/2024 PIX RECEBIDO CLIENTE ABC 1.000,00",
		"12/02/2024 TED FORNECEDOR XYZ -2.500,50",
		"rodape da pagina",
	}, "\n")

	p := newTestParser(parser.WithTextExtractor(stubExtractor{text: text}))

	txns, err := p.Parse([]byte("%PDF-1.4 fake"), "extrato.pdf")
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.True(t, txns[0].Amount.Equal(mustDecimal(t, "1000.00")))
	assert.Equal(t, "PIX RECEBIDO CLIENTE ABC", txns[0].Description)
	assert.True(t, txns[1].Amount.Equal(mustDecimal(t, "-2500.50")))
}

func TestParse_PDFWithoutTransactionsIsEmptyNotError(t *testing.T) {
	p := newTestParser(parser.WithTextExtractor(stubExtractor{text: "no statement lines here"}))

	txns, err := p.Parse([]byte("%PDF-1.4 fake"), "extrato.pdf")
	require.NoError(t, err)
	assert.Empty(t, txns)
}
