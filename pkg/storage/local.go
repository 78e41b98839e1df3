package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalArchive implements Archive on the local filesystem. Layout:
//
//	{base}/{year}/{month}/{id prefix}_{sanitized name}
//	{base}/{year}/{month}/.meta/{id}.json
type LocalArchive struct {
	baseDir string
}

// NewLocalArchive creates the archive root if needed.
func NewLocalArchive(baseDir string) (*LocalArchive, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &LocalArchive{baseDir: baseDir}, nil
}

// Save stores a statement under its year/month bucket and returns its metadata.
func (a *LocalArchive) Save(ctx context.Context, year, month, filename string, r io.Reader) (*StatementFile, error) {
	fileID := uuid.New()

	dir := filepath.Join(a.baseDir, year, month)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bucket directory: %w", err)
	}

	storedName := fmt.Sprintf("%s_%s", fileID.String()[:8], sanitizeFilename(filename))
	path := filepath.Join(dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing archive file: %w", err)
	}

	info := &StatementFile{
		ID:          fileID,
		Year:        year,
		Month:       month,
		Name:        filename,
		Size:        size,
		ContentType: "application/pdf",
		Path:        storedName,
		UploadedAt:  time.Now().UTC(),
	}

	if err := a.saveMetadata(dir, info); err != nil {
		os.Remove(path)
		return nil, err
	}

	return info, nil
}

// List returns the archived statements for one bucket, oldest first.
func (a *LocalArchive) List(ctx context.Context, year, month string) ([]*StatementFile, error) {
	metaDir := filepath.Join(a.baseDir, year, month, ".meta")
	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return []*StatementFile{}, nil
	}

	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("listing archive metadata: %w", err)
	}

	files := make([]*StatementFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := a.readMetadata(filepath.Join(metaDir, entry.Name()))
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].Name < files[j].Name
		}
		return files[i].UploadedAt.Before(files[j].UploadedAt)
	})
	return files, nil
}

// Open retrieves an archived statement by ID.
func (a *LocalArchive) Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *StatementFile, error) {
	info, err := a.Info(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(a.baseDir, info.Year, info.Month, info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("opening archived statement: %w", err)
	}
	return f, info, nil
}

// Info returns metadata without opening the document.
func (a *LocalArchive) Info(ctx context.Context, fileID uuid.UUID) (*StatementFile, error) {
	metaPath, err := a.findMetadata(fileID)
	if err != nil {
		return nil, err
	}
	return a.readMetadata(metaPath)
}

// Delete removes a statement and its metadata.
func (a *LocalArchive) Delete(ctx context.Context, fileID uuid.UUID) error {
	info, err := a.Info(ctx, fileID)
	if err != nil {
		return err
	}

	path := filepath.Join(a.baseDir, info.Year, info.Month, info.Path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting archived statement: %w", err)
	}

	metaPath := filepath.Join(a.baseDir, info.Year, info.Month, ".meta", fileID.String()+".json")
	os.Remove(metaPath)
	return nil
}

// findMetadata locates a statement's sidecar without knowing its bucket.
func (a *LocalArchive) findMetadata(fileID uuid.UUID) (string, error) {
	pattern := filepath.Join(a.baseDir, "*", "*", ".meta", fileID.String()+".json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("searching archive metadata: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("statement %s: %w", fileID, ErrNotFound)
	}
	return matches[0], nil
}

func (a *LocalArchive) readMetadata(metaPath string) (*StatementFile, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("statement metadata %s: %w", metaPath, ErrNotFound)
		}
		return nil, fmt.Errorf("reading archive metadata: %w", err)
	}

	var info StatementFile
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing archive metadata: %w", err)
	}
	return &info, nil
}

func (a *LocalArchive) saveMetadata(bucketDir string, info *StatementFile) error {
	metaDir := filepath.Join(bucketDir, ".meta")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling archive metadata: %w", err)
	}

	metaPath := filepath.Join(metaDir, info.ID.String()+".json")
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("writing archive metadata: %w", err)
	}
	return nil
}

// sanitizeFilename removes path separators and other unsafe characters so an
// uploaded name cannot escape the bucket directory.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
