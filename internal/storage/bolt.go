package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"

	"github.com/Alias1177/RiskForecast/internal/storage/codec"
	"github.com/Alias1177/RiskForecast/models"
)

var bucketForecasts = []byte("forecasts")

// BoltStore keeps forecasts in an embedded bbolt database. Keys are positions,
// so iteration order is creation order.
type BoltStore struct {
	db     *bbolt.DB
	logger zerolog.Logger
}

// NewBoltStore opens (or creates) the database file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketForecasts)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{
		db:     db,
		logger: log.With().Str("component", "bolt_store").Str("path", path).Logger(),
	}, nil
}

// Load reads all forecasts in position order.
func (s *BoltStore) Load(ctx context.Context) ([]models.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	forecasts := []models.Forecast{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketForecasts)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			f, err := codec.Decode(v)
			if err != nil {
				return fmt.Errorf("position %d: %w", binary.BigEndian.Uint64(k), err)
			}
			forecasts = append(forecasts, f)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load forecasts: %w", err)
	}

	s.logger.Debug().Int("count", len(forecasts)).Msg("Forecasts loaded")
	return forecasts, nil
}

// SaveAll replaces the whole bucket in a single transaction.
func (s *BoltStore) SaveAll(ctx context.Context, forecasts []models.Forecast) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketForecasts) != nil {
			if err := tx.DeleteBucket(bucketForecasts); err != nil {
				return err
			}
		}
		bucket, err := tx.CreateBucket(bucketForecasts)
		if err != nil {
			return err
		}
		for i, f := range forecasts {
			data, err := codec.Encode(f)
			if err != nil {
				return err
			}
			if err := bucket.Put(positionKey(i), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save forecasts: %w", err)
	}

	s.logger.Debug().Int("count", len(forecasts)).Msg("Forecasts saved")
	return nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}
