package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/finautomation/reconciliation-engine/internal/parser"
	"github.com/finautomation/reconciliation-engine/internal/service"
)

// maxUploadMemoryBytes bounds the in-memory portion of a multipart upload;
// larger files spill to disk
const maxUploadMemoryBytes = 10 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, APIError{Code: code, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewHealthResponse())
}

// handleProcessStatement accepts a multipart statement upload and returns the
// full reconciliation report
func (s *Server) handleProcessStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemoryBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "expected a multipart form upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeBadRequest, `missing "file" form field`)
		return
	}
	defer file.Close()

	if !hasSupportedExtension(header.Filename) {
		s.writeError(w, http.StatusBadRequest, ErrCodeValidation,
			fmt.Sprintf("unsupported file type, supported formats: %s", strings.Join(parser.SupportedFormats, ", ")))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "reading uploaded file failed")
		return
	}

	bankAccountID := r.FormValue("bank_account_id")

	result, err := s.svc.ProcessStatement(r.Context(), content, header.Filename, bankAccountID)
	if err != nil {
		s.writeProcessingError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeProcessingError(w http.ResponseWriter, err error) {
	var validationErr *parser.ValidationError
	var parseErr *parser.ParseError

	switch {
	case errors.As(err, &validationErr):
		s.writeError(w, http.StatusBadRequest, string(validationErr.Code), validationErr.Message)
	case errors.Is(err, service.ErrBatchTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBatchTooLarge, err.Error())
	case errors.As(err, &parseErr):
		s.writeError(w, http.StatusUnprocessableEntity, ErrCodeParse, parseErr.Error())
	default:
		s.logger.Error("statement processing failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "statement processing failed")
	}
}

// handleManualMatch records an operator-confirmed match
func (s *Server) handleManualMatch(w http.ResponseWriter, r *http.Request) {
	var req ManualMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	match, err := s.svc.ManualMatch(req.TransactionID, req.InvoiceID, req.Confidence, req.MatchedBy)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, match)
}

// handleMatchingRules exposes the active matching configuration
func (s *Server) handleMatchingRules(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.MatchingRules())
}

func hasSupportedExtension(filename string) bool {
	name := strings.ToLower(filename)
	for _, format := range parser.SupportedFormats {
		if strings.HasSuffix(name, "."+format) {
			return true
		}
	}
	return false
}
