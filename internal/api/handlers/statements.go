// Package handlers holds the HTTP endpoint implementations.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/finhelm/statement-api/internal/api/middleware"
	"github.com/finhelm/statement-api/internal/domain/statements"
	"github.com/finhelm/statement-api/internal/domain/transaction"
	"github.com/finhelm/statement-api/pkg/money"
)

// StatementsHandler serves the upload, transaction CRUD, workflow and search
// endpoints.
type StatementsHandler struct {
	svc            *statements.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewStatementsHandler(svc *statements.Service, maxUploadBytes int64, logger *slog.Logger) *StatementsHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = statements.DefaultMaxUploadBytes
	}
	return &StatementsHandler{svc: svc, maxUploadBytes: maxUploadBytes, logger: logger}
}

// Upload handles POST /api/upload.
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	result, err := h.svc.Upload(r.Context(), statements.UploadRequest{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
		Year:     r.FormValue("year"),
		Month:    r.FormValue("month"),
	})
	if err != nil {
		h.writeError(w, err, "Failed to process file")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message":            "File processed successfully",
		"transactions":       result.Transactions,
		"year":               result.Year,
		"month":              result.Month,
		"total_transactions": result.Total,
	})
}

// ListYears handles GET /api/years.
func (h *StatementsHandler) ListYears(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"years": h.svc.Years()})
}

// ListMonths handles GET /api/months/{year}. Unknown years answer with an
// empty list rather than a 404 so clients can probe freely.
func (h *StatementsHandler) ListMonths(w http.ResponseWriter, r *http.Request) {
	year := mux.Vars(r)["year"]
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"months": h.svc.Months(year)})
}

// GetTransactions handles GET /api/transactions/{year}/{month}.
func (h *StatementsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bucket := h.svc.List(vars["year"], vars["month"])

	// Clients expect pdf_info as an object, so a bucket that never saw an
	// upload answers with {} rather than null.
	var pdfInfo any = struct{}{}
	if bucket.PDFInfo != nil {
		pdfInfo = bucket.PDFInfo
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"transactions": bucket.Transactions,
		"pdf_info":     pdfInfo,
		"processed":    bucket.Processed,
	})
}

// AddTransaction handles POST /api/transactions/{year}/{month}.
func (h *StatementsHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req struct {
		Date        string `json:"date"`
		Description string `json:"description"`
		Amount      any    `json:"amount"`
		Category    string `json:"category"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.svc.AddManual(r.Context(), vars["year"], vars["month"], statements.ManualInput{
		Date:        req.Date,
		Description: req.Description,
		Amount:      amountText(req.Amount),
		Category:    req.Category,
	})
	if err != nil {
		h.writeError(w, err, "Failed to add transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction added successfully",
		"transaction": tx,
	})
}

// UpdateTransaction handles PUT /api/transactions/{year}/{month}/{id}.
// Absent fields keep their stored values.
func (h *StatementsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req struct {
		Date        *string `json:"date"`
		Description *string `json:"description"`
		Amount      any     `json:"amount"`
		Category    *string `json:"category"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := transaction.Patch{
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != nil {
		d, err := transaction.ParseDate(*req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, statements.ErrInvalidDate.Error())
			return
		}
		patch.Date = &d
	}
	if req.Amount != nil {
		amount, err := money.FromString(amountText(req.Amount))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, statements.ErrInvalidAmount.Error())
			return
		}
		patch.Amount = &amount
	}

	tx, err := h.svc.UpdateTransaction(r.Context(), vars["year"], vars["month"], vars["id"], patch)
	if err != nil {
		h.writeError(w, err, "Failed to update transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction updated successfully",
		"transaction": tx,
	})
}

// DeleteTransaction handles DELETE /api/transactions/{year}/{month}/{id}.
func (h *StatementsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	tx, err := h.svc.DeleteTransaction(r.Context(), vars["year"], vars["month"], vars["id"])
	if err != nil {
		h.writeError(w, err, "Failed to delete transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction deleted successfully",
		"transaction": tx,
	})
}

// MarkProcessed handles POST /api/transactions/{year}/{month}/process.
func (h *StatementsHandler) MarkProcessed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, month := vars["year"], vars["month"]

	if err := h.svc.MarkProcessed(year, month); err != nil {
		switch {
		case errors.Is(err, transaction.ErrYearNotFound):
			middleware.WriteError(w, http.StatusNotFound, fmt.Sprintf("Year %s not found", year))
		case errors.Is(err, transaction.ErrMonthNotFound):
			middleware.WriteError(w, http.StatusNotFound, fmt.Sprintf("Month %s not found in year %s", month, year))
		default:
			h.writeError(w, err, "Failed to mark month as processed")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{"message": "Month marked as processed"})
}

// WorkflowStatus handles GET /api/workflow/status/{year}.
func (h *StatementsHandler) WorkflowStatus(w http.ResponseWriter, r *http.Request) {
	year := mux.Vars(r)["year"]
	middleware.WriteJSON(w, http.StatusOK, h.svc.WorkflowStatus(year))
}

// Search handles GET /api/search.
func (h *StatementsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := query.Get("q")
	if q == "" {
		middleware.WriteJSON(w, http.StatusOK, map[string]any{"results": []statements.Result{}, "count": 0})
		return
	}

	size := 0
	if sizeStr := query.Get("size"); sizeStr != "" {
		size, _ = strconv.Atoi(sizeStr)
	}

	results, err := h.svc.Search(r.Context(), q, size)
	if err != nil {
		h.writeError(w, err, "Search failed")
		return
	}
	if results == nil {
		results = []statements.Result{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// ListArchived handles GET /api/statements/{year}/{month}.
func (h *StatementsHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	files, err := h.svc.ArchivedStatements(r.Context(), vars["year"], vars["month"])
	if err != nil {
		h.writeError(w, err, "Failed to list statements")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"statements": files,
		"count":      len(files),
	})
}

// amountText renders a wire amount, bare number or quoted string, as the
// decimal text the domain layer parses.
func amountText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// writeError maps domain errors onto the API's status codes; anything
// unrecognized logs and answers with the fallback message.
func (h *StatementsHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	var verr *statements.ValidationError
	switch {
	case errors.Is(err, statements.ErrFileTooLarge):
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &verr):
		middleware.WriteError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, transaction.ErrTransactionNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
	default:
		h.logger.Error("request failed", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, fallback)
	}
}
