package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
	"ledger/internal/middleware/trace"
	"ledger/internal/report"
	"ledger/internal/transfer"

	"github.com/shopspring/decimal"
)

// recordPayload is the wire shape of a record. Amounts travel as decimal
// strings to keep them exact.
type recordPayload struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

func toPayload(rec core.Record) recordPayload {
	return recordPayload{
		ID:          rec.ID,
		Amount:      rec.Amount.String(),
		Category:    rec.Category,
		Description: rec.Description,
		Timestamp:   rec.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

type createRecordRequest struct {
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
}

type updateRecordRequest struct {
	Amount      *json.Number `json:"amount"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Timestamp   *string      `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case core.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"request_id", trace.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRecords(w, r)
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := s.listLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	records, err := s.ledger.ListRecords(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		records = report.FilterByCategory(records, category)
	}

	payload := make([]recordPayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, toPayload(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records":    payload,
		"categories": report.Categories(records),
	})
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "amount must be a decimal number")
		return
	}

	rec, err := s.ledger.CreateRecord(r.Context(), amount, req.Category, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateSummary()
	writeJSON(w, http.StatusCreated, toPayload(rec))
}

func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/records/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetRecord(w, r, id)
	case http.MethodPatch, http.MethodPut:
		s.handleUpdateRecord(w, r, id)
	case http.MethodDelete:
		s.handleDeleteRecord(w, r, id)
	default:
		w.Header().Set("Allow", "GET, PATCH, PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request, id int64) {
	rec, err := s.ledger.GetRecord(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(rec))
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var patch core.RecordPatch
	if req.Amount != nil {
		amount, err := decimal.NewFromString(req.Amount.String())
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "amount must be a decimal number")
			return
		}
		patch.Amount = &amount
	}
	patch.Category = req.Category
	patch.Description = req.Description
	if req.Timestamp != nil {
		ts, err := time.Parse(time.RFC3339Nano, *req.Timestamp)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "timestamp must be RFC 3339")
			return
		}
		patch.Timestamp = &ts
	}

	rec, err := s.ledger.UpdateRecord(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateSummary()
	writeJSON(w, http.StatusOK, toPayload(rec))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.ledger.DeleteRecord(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateSummary()
	w.WriteHeader(http.StatusNoContent)
}

type summaryPayload struct {
	TotalRecords int64                `json:"total_records"`
	TotalAmount  string               `json:"total_amount"`
	ByCategory   []categoryTotalEntry `json:"by_category"`
}

type categoryTotalEntry struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sum, found := s.summaryCache.Get(summaryCacheKey)
	if !found {
		var err error
		sum, err = s.ledger.Summary(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.summaryCache.Set(summaryCacheKey, sum)
	}

	payload := summaryPayload{
		TotalRecords: sum.TotalRecords,
		TotalAmount:  sum.TotalAmount.String(),
	}
	for _, ct := range sum.ByCategory {
		payload.ByCategory = append(payload.ByCategory, categoryTotalEntry{
			Category: ct.Category,
			Amount:   ct.Amount.String(),
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	doc, err := s.ledger.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	doc, err := transfer.ParseDocument(r.Body)
	if err != nil {
		// Structural problems abort before anything is written.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.ledger.Import(r.Context(), doc)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateSummary()
	writeJSON(w, http.StatusOK, res)
}
