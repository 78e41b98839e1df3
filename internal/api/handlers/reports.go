package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/finhelm/statement-api/internal/api/middleware"
	"github.com/finhelm/statement-api/internal/domain/reports"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandler serves the summary endpoint and the report downloads.
type ReportsHandler struct {
	gen    *reports.Generator
	logger *slog.Logger
}

func NewReportsHandler(gen *reports.Generator, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{gen: gen, logger: logger}
}

// Summary handles GET /api/summary/{year}.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	year := mux.Vars(r)["year"]
	middleware.WriteJSON(w, http.StatusOK, h.gen.Summary(year))
}

// ExportPDF handles GET /api/export-pdf/{year}.
func (h *ReportsHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	year := mux.Vars(r)["year"]

	b, err := h.gen.RenderPDF(year)
	if err != nil {
		h.logger.Error("pdf export failed", "year", year, "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	writeAttachment(w, "application/pdf", h.gen.PDFDownloadName(), b)
}

// ExportCSV handles GET /api/export-csv/{year}.
func (h *ReportsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	year := mux.Vars(r)["year"]

	b, err := h.gen.RenderCSV(year)
	if err != nil {
		h.logger.Error("csv export failed", "year", year, "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate CSV")
		return
	}

	writeAttachment(w, "text/csv", h.gen.CSVDownloadName(year), b)
}

// ExportExcel handles GET /api/export-excel/{year}.
func (h *ReportsHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	year := mux.Vars(r)["year"]

	b, err := h.gen.RenderExcel(year)
	if err != nil {
		h.logger.Error("excel export failed", "year", year, "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	writeAttachment(w, excelContentType, h.gen.ExcelDownloadName(year), b)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
