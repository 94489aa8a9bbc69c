package inventory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("inventory file missing, seeding defaults", zap.String("path", s.path))
		d := DefaultDocument()
		if err := s.Save(ctx, d); err != nil {
			return Document{}, err
		}
		return d, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("read inventory: %w", err)
	}

	return decodeOrReset(ctx, s.log, s.path, data, s.Save)
}

// Save replaces the file through a temp file and rename so readers never see
// a partial document.
func (s *FileStore) Save(ctx context.Context, d Document) error {
	data, err := encodeDocument(d)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".inventory-*.json")
	if err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := os.Rename(f.Name(), s.path); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	return nil
}
