// Package retriever provides candidate-retrieval collaborators: an HTTP
// client against the core ledger API and an in-memory implementation for
// offline runs and tests.
package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/domain"
)

const dateParamLayout = "2006-01-02"

// candidateDTO is the wire shape of a receivable/payable record as served by
// the core ledger API
type candidateDTO struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"due_date"`
	CustomerName  string          `json:"customer_name"`
	SupplierName  string          `json:"supplier_name"`
	InvoiceNumber string          `json:"invoice_number"`
}

// HTTPRetriever fetches open receivables/payables from the core ledger API.
// Response order is preserved; the API serves records ordered by id, which
// keeps tie-breaking deterministic.
type HTTPRetriever struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPRetriever creates an HTTPRetriever from config
func NewHTTPRetriever(cfg config.RetrieverConfig, logger *slog.Logger) *HTTPRetriever {
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPRetriever{
		baseURL: cfg.CoreAPIURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// FetchReceivables returns open receivable records inside the window
func (r *HTTPRetriever) FetchReceivables(ctx context.Context, window domain.DateWindow) ([]domain.MatchCandidate, error) {
	return r.fetch(ctx, "/api/v1/accounts-receivable", "active,overdue", window)
}

// FetchPayables returns open payable records inside the window
func (r *HTTPRetriever) FetchPayables(ctx context.Context, window domain.DateWindow) ([]domain.MatchCandidate, error) {
	return r.fetch(ctx, "/api/v1/accounts-payable", "approved,scheduled", window)
}

func (r *HTTPRetriever) fetch(ctx context.Context, path, status string, window domain.DateWindow) ([]domain.MatchCandidate, error) {
	params := url.Values{}
	params.Set("start_date", window.Start.Format(dateParamLayout))
	params.Set("end_date", window.End.Format(dateParamLayout))
	params.Set("status", status)

	endpoint := r.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building candidate request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching candidates: unexpected status %d", resp.StatusCode)
	}

	var dtos []candidateDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decoding candidate response: %w", err)
	}

	candidates := make([]domain.MatchCandidate, 0, len(dtos))
	for _, dto := range dtos {
		candidates = append(candidates, dto.toCandidate())
	}

	r.logger.Debug("candidates fetched", "path", path, "count", len(candidates))

	return candidates, nil
}

func (dto candidateDTO) toCandidate() domain.MatchCandidate {
	name := dto.CustomerName
	if name == "" {
		name = dto.SupplierName
	}

	var dueDate time.Time
	if dto.DueDate != "" {
		if t, err := time.Parse(dateParamLayout, dto.DueDate); err == nil {
			dueDate = t
		}
	}

	return domain.MatchCandidate{
		ID:               dto.ID,
		Amount:           dto.Amount.Abs(),
		DueDate:          dueDate,
		CounterpartyName: name,
		DocumentNumber:   dto.InvoiceNumber,
	}
}
