// Package storage persists the forecast collection. The core's contract is
// read-everything / write-everything: Load the collection, change it in
// memory, SaveAll. Callers serialize concurrent read-modify-write sequences.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RiskForecast/internal/storage/codec"
	"github.com/Alias1177/RiskForecast/models"
)

// FileStore keeps all forecasts in one JSON file.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore returns a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: log.With().Str("component", "file_store").Str("path", path).Logger(),
	}
}

// Load reads all forecasts. A missing file is an empty collection.
func (s *FileStore) Load(ctx context.Context) ([]models.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug().Msg("Forecast file not found, starting empty")
		return []models.Forecast{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read forecasts: %w", err)
	}

	forecasts, err := codec.DecodeAll(data)
	if err != nil {
		return nil, err
	}
	if forecasts == nil {
		forecasts = []models.Forecast{}
	}
	s.logger.Debug().Int("count", len(forecasts)).Msg("Forecasts loaded")
	return forecasts, nil
}

// SaveAll replaces the file contents. The new file is written next to the old
// one and renamed over it, so readers never see a partial file.
func (s *FileStore) SaveAll(ctx context.Context, forecasts []models.Forecast) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := codec.EncodeAll(forecasts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write forecasts: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync forecasts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace forecast file: %w", err)
	}

	s.logger.Debug().Int("count", len(forecasts)).Msg("Forecasts saved")
	return nil
}

// Close is a no-op; the file is not held open.
func (s *FileStore) Close() error {
	return nil
}
