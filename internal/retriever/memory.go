package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// InMemoryRetriever serves candidates from memory. It backs the CLI's
// offline mode and collaborator fakes in tests.
type InMemoryRetriever struct {
	Receivables []domain.MatchCandidate
	Payables    []domain.MatchCandidate
}

// FetchReceivables returns the receivable candidates inside the window,
// sorted by id for a stable order
func (r *InMemoryRetriever) FetchReceivables(ctx context.Context, window domain.DateWindow) ([]domain.MatchCandidate, error) {
	return filterWindow(r.Receivables, window), nil
}

// FetchPayables returns the payable candidates inside the window, sorted by
// id for a stable order
func (r *InMemoryRetriever) FetchPayables(ctx context.Context, window domain.DateWindow) ([]domain.MatchCandidate, error) {
	return filterWindow(r.Payables, window), nil
}

func filterWindow(candidates []domain.MatchCandidate, window domain.DateWindow) []domain.MatchCandidate {
	out := make([]domain.MatchCandidate, 0, len(candidates))

	for _, c := range candidates {
		// Candidates without a reference date are always offered
		if c.HasDueDate() && (c.DueDate.Before(window.Start) || c.DueDate.After(window.End)) {
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// candidateFile is the JSON shape of an offline candidates file
type candidateFile struct {
	Receivables []candidateDTO `json:"receivables"`
	Payables    []candidateDTO `json:"payables"`
}

// LoadFromFile builds an InMemoryRetriever from a candidates JSON file with
// top-level "receivables" and "payables" lists
func LoadFromFile(path string) (*InMemoryRetriever, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates file: %w", err)
	}

	var file candidateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing candidates file: %w", err)
	}

	r := &InMemoryRetriever{}
	for _, dto := range file.Receivables {
		r.Receivables = append(r.Receivables, dto.toCandidate())
	}
	for _, dto := range file.Payables {
		r.Payables = append(r.Payables, dto.toCandidate())
	}

	return r, nil
}
