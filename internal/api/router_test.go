package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/finhelm/statement-api/internal/domain/extraction"
	"github.com/finhelm/statement-api/internal/domain/reports"
	"github.com/finhelm/statement-api/internal/domain/statements"
	"github.com/finhelm/statement-api/internal/domain/transaction"
)

type stubPage struct {
	tables [][][]string
	text   string
}

func (p stubPage) Tables() [][][]string { return p.tables }
func (p stubPage) Text() string         { return p.text }

type stubSource struct {
	pages []extraction.Page
}

func (s stubSource) PageCount() int { return len(s.pages) }

func (s stubSource) Page(i int) (extraction.Page, error) { return s.pages[i-1], nil }

// newTestRouter wires the router over a statement source stub that yields
// one Amazon expense row, so uploads run without real PDF bytes.
func newTestRouter(t *testing.T, mutate ...func(*Config)) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := transaction.NewMemoryStore()
	search, err := statements.NewSearchIndex()
	require.NoError(t, err)
	svc := statements.NewService(statements.Config{
		Store:     store,
		Extractor: extraction.New(logger),
		Search:    search,
		Logger:    logger,
		OpenSource: func(data []byte) (extraction.Source, error) {
			return stubSource{pages: []extraction.Page{stubPage{
				tables: [][][]string{{
					{"Date", "Description", "Amount"},
					{"03/01/24", "AMAZON MKTPL*AB12", "(45.67)"},
				}},
			}}}, nil
		},
	})
	t.Cleanup(func() { _ = svc.Close() })

	cfg := Config{
		Statements: svc,
		Reports:    reports.NewGenerator(store, logger),
		Logger:     logger,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewRouter(cfg)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func uploadRequest(t *testing.T, filename, year, month string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 stub"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("year", year))
	require.NoError(t, mw.WriteField("month", month))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func postJSON(t *testing.T, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, func(cfg *Config) { cfg.MetricsEnabled = true })

	// A served request populates the HTTP histogram before scraping.
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/years", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "# HELP")
	require.Contains(t, rec.Body.String(), "http_request_duration_seconds")
	require.Contains(t, rec.Body.String(), `path="/api/years"`)
}

func TestUploadFlow(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, uploadRequest(t, "march.pdf", "2024", "03"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "File processed successfully", body["message"])
	require.Equal(t, "2024", body["year"])
	require.Equal(t, "03", body["month"])
	require.EqualValues(t, 1, body["total_transactions"])

	txs := body["transactions"].([]any)
	require.Len(t, txs, 1)
	tx := txs[0].(map[string]any)
	require.Equal(t, "2024_03_march.pdf_0", tx["id"])
	require.Equal(t, "Supplies", tx["category"])
	require.InDelta(t, -45.67, tx["amount"], 0.001)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/years", nil))
	require.JSONEq(t, `{"years": ["2024"]}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/months/2024", nil))
	require.JSONEq(t, `{"months": ["03"]}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/transactions/2024/03", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody(t, rec)
	require.Len(t, listing["transactions"], 1)
	require.Equal(t, false, listing["processed"])
	info := listing["pdf_info"].(map[string]any)
	require.Equal(t, "march.pdf", info["filename"])
	require.EqualValues(t, 1, info["transaction_count"])
}

func TestUploadValidation(t *testing.T) {
	h := newTestRouter(t)

	t.Run("no file part", func(t *testing.T) {
		rec := do(t, h, uploadRequest(t, "", "2024", "03"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error": "No file provided"}`, rec.Body.String())
	})

	t.Run("missing year and month", func(t *testing.T) {
		rec := do(t, h, uploadRequest(t, "march.pdf", "", ""))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error": "Year and month are required"}`, rec.Body.String())
	})

	t.Run("wrong extension", func(t *testing.T) {
		rec := do(t, h, uploadRequest(t, "march.txt", "2024", "03"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error": "Invalid file type. Please upload a PDF file."}`, rec.Body.String())
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := do(t, h, postJSON(t, "/api/upload", `{}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error": "No file provided"}`, rec.Body.String())
	})

	t.Run("body over cap", func(t *testing.T) {
		capped := newTestRouter(t, func(cfg *Config) { cfg.MaxUploadBytes = 64 })

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "huge.pdf")
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte("a"), 4096))
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("year", "2024"))
		require.NoError(t, mw.WriteField("month", "03"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := do(t, capped, req)
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		require.JSONEq(t, `{"error": "File too large"}`, rec.Body.String())
	})
}

func TestUnknownBucketDefaults(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/months/1999", nil))
	require.JSONEq(t, `{"months": []}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/transactions/1999/01", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"transactions": [], "pdf_info": {}, "processed": false}`, rec.Body.String())
}

func TestTransactionCRUD(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, postJSON(t, "/api/transactions/2024/03",
		`{"date": "2024-03-05", "description": "OFFICE CHAIR", "amount": -120.5, "category": "Equipment"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Transaction added successfully", body["message"])
	added := body["transaction"].(map[string]any)
	require.Equal(t, "2024_03_manual_0", added["id"])
	require.Equal(t, "Equipment", added["category"])

	req := httptest.NewRequest(http.MethodPut, "/api/transactions/2024/03/2024_03_manual_0",
		strings.NewReader(`{"category": "Supplies", "amount": "-99.99"}`))
	rec = do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Equal(t, "Transaction updated successfully", body["message"])
	updated := body["transaction"].(map[string]any)
	require.Equal(t, "Supplies", updated["category"])
	require.InDelta(t, -99.99, updated["amount"], 0.001)
	require.Equal(t, "OFFICE CHAIR", updated["description"], "absent fields keep stored values")

	req = httptest.NewRequest(http.MethodDelete, "/api/transactions/2024/03/2024_03_manual_0", nil)
	rec = do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Transaction deleted successfully", decodeBody(t, rec)["message"])

	rec = do(t, h, httptest.NewRequest(http.MethodDelete, "/api/transactions/2024/03/2024_03_manual_0", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error": "Transaction not found"}`, rec.Body.String())
}

func TestAddTransactionValidation(t *testing.T) {
	h := newTestRouter(t)

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"missing fields", `{}`, "Missing required fields: date, description, amount"},
		{"bad date", `{"date": "03/05/2024", "description": "X", "amount": 1}`, "Invalid date"},
		{"bad amount", `{"date": "2024-03-05", "description": "X", "amount": "abc"}`, "Invalid amount"},
		{"bad category", `{"date": "2024-03-05", "description": "X", "amount": 1, "category": "Gadgets"}`, "Invalid category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, postJSON(t, "/api/transactions/2024/03", tc.body))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tc.message, decodeBody(t, rec)["error"])
		})
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/transactions/2024/03/nope",
		strings.NewReader(`{"category": "Supplies"}`))
	rec := do(t, h, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error": "Transaction not found"}`, rec.Body.String())
}

func TestMarkProcessedAndWorkflow(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, postJSON(t, "/api/transactions/2024/03",
		`{"date": "2024-03-05", "description": "OFFICE CHAIR", "amount": -120.5}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, postJSON(t, "/api/transactions/2024/03/process", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message": "Month marked as processed"}`, rec.Body.String())

	rec = do(t, h, postJSON(t, "/api/transactions/1999/01/process", ""))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error": "Year 1999 not found"}`, rec.Body.String())

	rec = do(t, h, postJSON(t, "/api/transactions/2024/09/process", ""))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error": "Month 09 not found in year 2024"}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/workflow/status/2024", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"total_months": 1,
		"processed_months": 1,
		"completed": true,
		"months": {"03": true}
	}`, rec.Body.String())
}

func TestCategoriesEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	cats := body["categories"].([]any)
	require.Len(t, cats, 19)
	require.Equal(t, "Uncategorized", cats[0])
	require.Contains(t, cats, "Supplies")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/categories/suggest?q=sup&limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	suggestions := decodeBody(t, rec)["suggestions"].([]any)
	require.Contains(t, suggestions, "Supplies")
}

func TestSummaryEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, postJSON(t, "/api/transactions/2024/03",
		`{"date": "2024-03-05", "description": "CLIENT PAYMENT", "amount": 1000, "category": "Sales"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, postJSON(t, "/api/transactions/2024/03",
		`{"date": "2024-03-09", "description": "STAPLES", "amount": -45.67, "category": "Supplies"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/summary/2024", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"total_income": 1000,
		"total_expenses": 45.67,
		"category_totals": {"Supplies": 45.67},
		"transaction_count": 2,
		"monthly_totals": {"03": {"income": 1000, "expenses": 45.67, "net": 954.33}}
	}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/summary/1999", nil))
	require.JSONEq(t, `{
		"total_income": 0,
		"total_expenses": 0,
		"category_totals": {},
		"transaction_count": 0,
		"monthly_totals": {}
	}`, rec.Body.String())
}

func TestExportEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, postJSON(t, "/api/transactions/2024/03",
		`{"date": "2024-03-09", "description": "STAPLES", "amount": -45.67, "category": "Supplies"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("pdf", func(t *testing.T) {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/export-pdf/2024", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		disposition := rec.Header().Get("Content-Disposition")
		require.Contains(t, disposition, "attachment")
		require.Contains(t, disposition, "expense-summary-")
		require.Contains(t, disposition, ".pdf")
		require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("csv", func(t *testing.T) {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/export-csv/2024", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		require.Contains(t, rec.Header().Get("Content-Disposition"), "transactions-2024.csv")
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Equal(t, "year,month,id,date,description,amount,category,vendor", lines[0])
		require.Len(t, lines, 2)
	})

	t.Run("excel", func(t *testing.T) {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/export-excel/2024", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, excelContentTypeForTest, rec.Header().Get("Content-Type"))
		require.Contains(t, rec.Header().Get("Content-Disposition"), "transactions-2024.xlsx")
		require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx files are zip archives")
	})
}

const excelContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestSearchEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, uploadRequest(t, "march.pdf", "2024", "03"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/search?q=amazon", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.EqualValues(t, 1, body["count"])
	results := body["results"].([]any)
	doc := results[0].(map[string]any)["document"].(map[string]any)
	require.Equal(t, "2024_03_march.pdf_0", doc["id"])
	require.Equal(t, "Amazon", doc["vendor"])

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/search?q=", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"results": [], "count": 0}`, rec.Body.String())
}

func TestRequestIDAndCORSHeaders(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := do(t, h, req)
	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"), "ids are minted when absent")

	req = httptest.NewRequest(http.MethodGet, "/api/years", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = do(t, h, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadRateLimit(t *testing.T) {
	h := newTestRouter(t, func(cfg *Config) {
		cfg.RateLimitPerSecond = 1
		cfg.RateLimitBurst = 1
	})

	rec := do(t, h, uploadRequest(t, "march.pdf", "2024", "03"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, uploadRequest(t, "march.pdf", "2024", "03"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.JSONEq(t, `{"error": "Too many requests"}`, rec.Body.String())
}
