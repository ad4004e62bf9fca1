package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxdash/dashboard/internal/model"
)

// backupLayout is the timestamp format of backup file names,
// e.g. accounts_backup_20250131_142501.json.
const backupLayout = "20060102_150405"

// FileStore implements Store on a JSON file. Writes go to a temporary file
// in the same directory and are renamed over the target, so readers never
// see a half-written document.
type FileStore struct {
	path         string
	backupOnSave bool
	now          func() time.Time

	mu sync.Mutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithBackupOnSave copies the previous document to a timestamped backup
// before every save.
func WithBackupOnSave(enabled bool) FileOption {
	return func(s *FileStore) { s.backupOnSave = enabled }
}

// WithClock overrides the clock used for backup names.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) { s.now = now }
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) (*model.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyDataset(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	ds, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return ds, nil
}

func (s *FileStore) Save(ctx context.Context, ds *model.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if s.backupOnSave {
		if _, err := s.backupLocked(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return s.writeAtomic(data)
}

// Backup copies the current document next to it under a timestamped name
// and returns the backup path.
func (s *FileStore) Backup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backupLocked()
}

func (s *FileStore) backupLocked() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", s.path, err)
	}
	base := filepath.Base(s.path)
	name := fmt.Sprintf("%s_backup_%s%s",
		base[:len(base)-len(filepath.Ext(base))],
		s.now().Format(backupLayout),
		filepath.Ext(base))
	dst := filepath.Join(filepath.Dir(s.path), name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return dst, nil
}

func (s *FileStore) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".accounts-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
