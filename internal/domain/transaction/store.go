package transaction

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrYearNotFound reports an operation against a year with no buckets.
	ErrYearNotFound = errors.New("year not found")
	// ErrMonthNotFound reports an operation against a month with no bucket.
	ErrMonthNotFound = errors.New("month not found")
	// ErrTransactionNotFound reports an id miss within a bucket.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Store is the year/month bucket store. Buckets are created lazily on
// first write and never auto-deleted. Implementations must be safe for
// concurrent use.
type Store interface {
	// Bucket returns a snapshot of one month's container.
	Bucket(year, month string) (Bucket, bool)
	// Put replaces the bucket's transactions and ingestion metadata,
	// leaving the processed flag alone. Re-uploading a statement for a
	// period overwrites whatever was there.
	Put(year, month string, txs []Transaction, info *PDFInfo)
	// Append adds a manually entered transaction, assigning it an id from
	// the bucket's monotonic counter so ids are never reused after deletes.
	Append(year, month string, tx Transaction) Transaction
	// Update overwrites the patched fields of one transaction.
	Update(year, month, id string, patch Patch) (Transaction, error)
	// Delete removes and returns one transaction.
	Delete(year, month, id string) (Transaction, error)
	// MarkProcessed flags a month as workflow-complete.
	MarkProcessed(year, month string) error
	// Years lists known years, sorted ascending.
	Years() []string
	// Months lists a year's known months, sorted ascending. The second
	// return reports whether the year exists at all.
	Months(year string) ([]string, bool)
	// WorkflowStatus summarizes a year's month-close progress. Unknown
	// years yield zero counts and no month map.
	WorkflowStatus(year string) WorkflowStatus
}

type bucket struct {
	transactions []Transaction
	pdfInfo      *PDFInfo
	processed    bool
	manualSeq    int
}

// MemoryStore is the in-process Store. A single mutex serializes all
// access; the write paths are small enough that finer locking buys nothing.
type MemoryStore struct {
	mu    sync.Mutex
	years map[string]map[string]*bucket
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{years: make(map[string]map[string]*bucket)}
}

func (s *MemoryStore) Bucket(year, month string) (Bucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bucket(year, month)
	if !ok {
		return Bucket{}, false
	}
	return b.snapshot(), true
}

func (s *MemoryStore) Put(year, month string, txs []Transaction, info *PDFInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.ensureBucket(year, month)
	b.transactions = make([]Transaction, len(txs))
	copy(b.transactions, txs)
	b.pdfInfo = info
}

func (s *MemoryStore) Append(year, month string, tx Transaction) Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.ensureBucket(year, month)
	tx.ID = fmt.Sprintf("%s_%s_manual_%d", year, month, b.manualSeq)
	b.manualSeq++
	b.transactions = append(b.transactions, tx)
	return tx
}

func (s *MemoryStore) Update(year, month, id string, patch Patch) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bucket(year, month)
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	for i := range b.transactions {
		if b.transactions[i].ID != id {
			continue
		}
		tx := &b.transactions[i]
		if patch.Date != nil {
			tx.Date = *patch.Date
		}
		if patch.Description != nil {
			tx.Description = *patch.Description
		}
		if patch.Amount != nil {
			tx.Amount = *patch.Amount
		}
		if patch.Category != nil {
			tx.Category = *patch.Category
		}
		return *tx, nil
	}
	return Transaction{}, ErrTransactionNotFound
}

func (s *MemoryStore) Delete(year, month, id string) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bucket(year, month)
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	for i := range b.transactions {
		if b.transactions[i].ID != id {
			continue
		}
		tx := b.transactions[i]
		b.transactions = append(b.transactions[:i], b.transactions[i+1:]...)
		return tx, nil
	}
	return Transaction{}, ErrTransactionNotFound
}

func (s *MemoryStore) MarkProcessed(year, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	months, ok := s.years[year]
	if !ok {
		return fmt.Errorf("year %s: %w", year, ErrYearNotFound)
	}
	b, ok := months[month]
	if !ok {
		return fmt.Errorf("month %s in year %s: %w", month, year, ErrMonthNotFound)
	}
	b.processed = true
	return nil
}

func (s *MemoryStore) Years() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	years := make([]string, 0, len(s.years))
	for year := range s.years {
		years = append(years, year)
	}
	sort.Strings(years)
	return years
}

func (s *MemoryStore) Months(year string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byMonth, ok := s.years[year]
	if !ok {
		return nil, false
	}
	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)
	return months, true
}

func (s *MemoryStore) WorkflowStatus(year string) WorkflowStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	byMonth, ok := s.years[year]
	if !ok {
		return WorkflowStatus{}
	}

	status := WorkflowStatus{
		TotalMonths: len(byMonth),
		Months:      make(map[string]bool, len(byMonth)),
	}
	for month, b := range byMonth {
		status.Months[month] = b.processed
		if b.processed {
			status.ProcessedMonths++
		}
	}
	status.Completed = status.TotalMonths > 0 && status.ProcessedMonths == status.TotalMonths
	return status
}

func (s *MemoryStore) bucket(year, month string) (*bucket, bool) {
	byMonth, ok := s.years[year]
	if !ok {
		return nil, false
	}
	b, ok := byMonth[month]
	return b, ok
}

func (s *MemoryStore) ensureBucket(year, month string) *bucket {
	byMonth, ok := s.years[year]
	if !ok {
		byMonth = make(map[string]*bucket)
		s.years[year] = byMonth
	}
	b, ok := byMonth[month]
	if !ok {
		b = &bucket{}
		byMonth[month] = b
	}
	return b
}

func (b *bucket) snapshot() Bucket {
	txs := make([]Transaction, len(b.transactions))
	copy(txs, b.transactions)

	var info *PDFInfo
	if b.pdfInfo != nil {
		clone := *b.pdfInfo
		info = &clone
	}
	return Bucket{Transactions: txs, PDFInfo: info, Processed: b.processed}
}
