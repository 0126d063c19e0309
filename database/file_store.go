package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/aoterocom/MarketForge/models"
)

// FileModelStore keeps one file per key in a directory; the file time is the persisted-at time.
type FileModelStore struct {
	dir string
	now func() time.Time
}

func NewFileModelStore(dir string) (*FileModelStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating model directory %s: %w", dir, err)
	}
	return &FileModelStore{dir: dir, now: time.Now}, nil
}

func (fms *FileModelStore) path(key models.ModelKey) string {
	return filepath.Join(fms.dir, key.String()+".gob")
}

// Save writes to a temporary file and renames it so readers never see a partial model.
func (fms *FileModelStore) Save(key models.ModelKey, payload []byte) error {
	tmp, err := os.CreateTemp(fms.dir, key.String()+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fms.path(key))
}

func (fms *FileModelStore) Load(key models.ModelKey) ([]byte, error) {
	payload, err := os.ReadFile(fms.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", models.ErrModelNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	return payload, nil
}

func (fms *FileModelStore) Age(key models.ModelKey) (time.Duration, error) {
	info, err := os.Stat(fms.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", models.ErrModelNotFound, key)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	return fms.now().Sub(info.ModTime()), nil
}
