// Package storage archives uploaded statement PDFs on the local filesystem,
// keyed by statement year and month.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports an archive lookup for a statement that is not there.
var ErrNotFound = errors.New("statement not found")

// StatementFile contains metadata about an archived statement document.
type StatementFile struct {
	ID          uuid.UUID `json:"id"`
	Year        string    `json:"year"`
	Month       string    `json:"month"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // stored filename within the bucket directory
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Archive keeps the original statement documents alongside the extracted
// transactions, so a month can be re-checked against its source later.
type Archive interface {
	// Save stores a statement under its year/month bucket and returns its metadata.
	Save(ctx context.Context, year, month, filename string, r io.Reader) (*StatementFile, error)

	// List returns the archived statements for one bucket, oldest first.
	List(ctx context.Context, year, month string) ([]*StatementFile, error)

	// Open retrieves an archived statement by ID.
	Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *StatementFile, error)

	// Info returns metadata without opening the document.
	Info(ctx context.Context, fileID uuid.UUID) (*StatementFile, error)

	// Delete removes a statement and its metadata.
	Delete(ctx context.Context, fileID uuid.UUID) error
}

// Config holds archive configuration.
type Config struct {
	Enabled bool
	Dir     string
}

// New builds an archive from configuration. A disabled archive is nil, which
// callers treat as "keep nothing".
func New(cfg *Config) (Archive, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return NewLocalArchive(cfg.Dir)
}
