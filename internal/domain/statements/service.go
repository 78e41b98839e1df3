// Package statements owns the ingestion flow around bank-statement uploads:
// validation, extraction, ID assignment, manual entries, and the month
// processing workflow.
package statements

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finhelm/statement-api/internal/domain/categorization"
	"github.com/finhelm/statement-api/internal/domain/extraction"
	"github.com/finhelm/statement-api/internal/domain/extraction/pdfsource"
	"github.com/finhelm/statement-api/internal/domain/transaction"
	"github.com/finhelm/statement-api/pkg/money"
	"github.com/finhelm/statement-api/pkg/storage"
)

// DefaultMaxUploadBytes caps statement uploads at 16 MiB.
const DefaultMaxUploadBytes = 16 << 20

// UploadRequest carries one statement upload.
type UploadRequest struct {
	Filename string
	Size     int64
	Reader   io.Reader
	Year     string
	Month    string
}

// UploadResult reports what an accepted upload produced.
type UploadResult struct {
	Transactions []transaction.Transaction
	Year         string
	Month        string
	Total        int
}

// ManualInput is a hand-entered transaction. Amount is the raw decimal text
// as submitted. Category is optional; a manual entry is the caller's explicit
// classification, so it defaults to Uncategorized rather than running through
// the categorizer.
type ManualInput struct {
	Date        string
	Description string
	Amount      string
	Category    string
}

// Config wires a Service.
type Config struct {
	Store          transaction.Store
	Extractor      *extraction.Extractor
	Archive        storage.Archive // nil disables archiving
	Search         *SearchIndex    // nil disables search sync
	Logger         *slog.Logger
	MaxUploadBytes int64

	// OpenSource overrides how raw statement bytes become an extraction
	// source. The default parses them as a PDF.
	OpenSource func(data []byte) (extraction.Source, error)
	Now        func() time.Time
}

// Service owns statement ingestion and the bucket lifecycle around it.
type Service struct {
	store     transaction.Store
	extractor *extraction.Extractor
	archive   storage.Archive
	search    *SearchIndex
	logger    *slog.Logger
	tracer    trace.Tracer
	maxBytes  int64
	open      func(data []byte) (extraction.Source, error)
	now       func() time.Time
}

// NewService applies defaults for everything Config leaves unset.
func NewService(cfg Config) *Service {
	s := &Service{
		store:     cfg.Store,
		extractor: cfg.Extractor,
		archive:   cfg.Archive,
		search:    cfg.Search,
		logger:    cfg.Logger,
		tracer:    otel.Tracer("github.com/finhelm/statement-api/internal/domain/statements"),
		maxBytes:  cfg.MaxUploadBytes,
		open:      cfg.OpenSource,
		now:       cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "statements")
	if s.maxBytes <= 0 {
		s.maxBytes = DefaultMaxUploadBytes
	}
	if s.open == nil {
		s.open = func(data []byte) (extraction.Source, error) {
			return pdfsource.NewReader(bytes.NewReader(data), int64(len(data)))
		}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Upload validates the request, extracts transactions from the document, and
// replaces the year/month bucket with the result. The original bytes are
// archived best-effort; an archive failure never fails the upload.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	ctx, span := s.tracer.Start(ctx, "statements.Upload")
	defer span.End()

	uploadsTotal.Inc()

	if err := s.validateUpload(req); err != nil {
		uploadsFailed.Inc()
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(req.Reader, s.maxBytes+1))
	if err != nil {
		uploadsFailed.Inc()
		return nil, fmt.Errorf("reading upload %q: %w", req.Filename, err)
	}
	if int64(len(data)) > s.maxBytes {
		uploadsFailed.Inc()
		return nil, ErrFileTooLarge
	}

	src, err := s.open(data)
	if err != nil {
		uploadsFailed.Inc()
		return nil, fmt.Errorf("opening %q: %w", req.Filename, err)
	}

	start := time.Now()
	records := s.extractor.Extract(ctx, src)
	extractionSeconds.Observe(time.Since(start).Seconds())

	for i := range records {
		records[i].ID = fmt.Sprintf("%s_%s_%s_%d", req.Year, req.Month, req.Filename, i)
	}

	s.store.Put(req.Year, req.Month, records, &transaction.PDFInfo{
		Filename:         req.Filename,
		UploadDate:       s.now().UTC().Truncate(time.Second),
		TransactionCount: len(records),
	})
	s.syncSearch(req.Year, req.Month)

	if s.archive != nil {
		if _, err := s.archive.Save(ctx, req.Year, req.Month, req.Filename, bytes.NewReader(data)); err != nil {
			s.logger.Warn("archiving statement failed",
				"filename", req.Filename, "year", req.Year, "month", req.Month, "error", err)
		}
	}

	span.SetAttributes(
		attribute.String("statement.filename", req.Filename),
		attribute.Int("statement.transactions", len(records)),
	)
	s.logger.Info("statement processed",
		"filename", req.Filename, "year", req.Year, "month", req.Month, "transactions", len(records))

	stored, _ := s.store.Bucket(req.Year, req.Month)
	return &UploadResult{
		Transactions: stored.Transactions,
		Year:         req.Year,
		Month:        req.Month,
		Total:        len(stored.Transactions),
	}, nil
}

func (s *Service) validateUpload(req UploadRequest) error {
	if req.Filename == "" {
		return ErrNoFileSelected
	}
	if req.Year == "" || req.Month == "" {
		return ErrMissingYearMonth
	}
	if !strings.HasSuffix(strings.ToLower(req.Filename), ".pdf") {
		return ErrInvalidFileType
	}
	if req.Size > s.maxBytes {
		return ErrFileTooLarge
	}
	return nil
}

// AddManual appends a hand-entered transaction to a bucket. Date,
// description, and amount are required and reported together when absent.
func (s *Service) AddManual(ctx context.Context, year, month string, in ManualInput) (transaction.Transaction, error) {
	if in.Date == "" || in.Description == "" || in.Amount == "" {
		return transaction.Transaction{}, ErrMissingFields
	}

	date, err := transaction.ParseDate(in.Date)
	if err != nil {
		return transaction.Transaction{}, ErrInvalidDate
	}
	amount, err := money.FromString(in.Amount)
	if err != nil {
		return transaction.Transaction{}, ErrInvalidAmount
	}

	category := in.Category
	if category == "" {
		category = categorization.Uncategorized.String()
	} else if !categorization.Valid(category) {
		return transaction.Transaction{}, ErrInvalidCategory
	}

	stored := s.store.Append(year, month, transaction.Transaction{
		Date:        date,
		Description: in.Description,
		Amount:      amount,
		Category:    category,
	})
	s.syncSearch(year, month)

	s.logger.Info("manual transaction added", "id", stored.ID, "year", year, "month", month)
	return stored, nil
}

// UpdateTransaction applies a partial overwrite. A category change must name
// a member of the enumeration.
func (s *Service) UpdateTransaction(ctx context.Context, year, month, id string, patch transaction.Patch) (transaction.Transaction, error) {
	if patch.Category != nil && !categorization.Valid(*patch.Category) {
		return transaction.Transaction{}, ErrInvalidCategory
	}

	updated, err := s.store.Update(year, month, id, patch)
	if err != nil {
		return transaction.Transaction{}, err
	}
	s.syncSearch(year, month)
	return updated, nil
}

// DeleteTransaction removes one transaction and returns the deleted record.
func (s *Service) DeleteTransaction(ctx context.Context, year, month, id string) (transaction.Transaction, error) {
	deleted, err := s.store.Delete(year, month, id)
	if err != nil {
		return transaction.Transaction{}, err
	}
	s.syncSearch(year, month)
	return deleted, nil
}

// List returns a bucket's contents with empty defaults for unknown buckets.
func (s *Service) List(year, month string) transaction.Bucket {
	b, ok := s.store.Bucket(year, month)
	if !ok || b.Transactions == nil {
		b.Transactions = []transaction.Transaction{}
	}
	return b
}

// Years lists all years with data, sorted.
func (s *Service) Years() []string {
	return s.store.Years()
}

// Months lists a year's months, sorted; an unknown year yields an empty list.
func (s *Service) Months(year string) []string {
	months, _ := s.store.Months(year)
	if months == nil {
		months = []string{}
	}
	return months
}

// MarkProcessed flags a month as reviewed.
func (s *Service) MarkProcessed(year, month string) error {
	return s.store.MarkProcessed(year, month)
}

// WorkflowStatus reports month review progress for a year.
func (s *Service) WorkflowStatus(year string) transaction.WorkflowStatus {
	return s.store.WorkflowStatus(year)
}

// Search queries the transaction index.
func (s *Service) Search(ctx context.Context, query string, size int) ([]Result, error) {
	if s.search == nil {
		return []Result{}, nil
	}
	return s.search.Search(query, size)
}

// ArchivedStatements lists the archived source documents for a bucket.
func (s *Service) ArchivedStatements(ctx context.Context, year, month string) ([]*storage.StatementFile, error) {
	if s.archive == nil {
		return []*storage.StatementFile{}, nil
	}
	return s.archive.List(ctx, year, month)
}

// Close releases the search index.
func (s *Service) Close() error {
	if s.search == nil {
		return nil
	}
	return s.search.Close()
}

func (s *Service) syncSearch(year, month string) {
	if s.search == nil {
		return
	}
	b, _ := s.store.Bucket(year, month)
	if err := s.search.ReplaceBucket(year, month, b.Transactions); err != nil {
		s.logger.Warn("search index sync failed", "year", year, "month", month, "error", err)
	}
}
