package storage

import (
	"context"
	"errors"
	"time"

	"github.com/goldstore/storefront/pkg/db/models"
	"go.uber.org/multierr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// SQL stores snapshots as rows of the kv_entries table.
type SQL struct {
	db     *gorm.DB
	pinger pinger
	now    func() time.Time
}

// NewSQL returns a gorm-backed Storage. pinger may be nil.
func NewSQL(db *gorm.DB, p pinger) *SQL {
	return &SQL{db: db, pinger: p, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: string(value), UpdatedAt: s.now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQL) Delete(ctx context.Context, keys ...string) error {
	var errs error
	for _, key := range keys {
		err := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.KVEntry{}).Error
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (s *SQL) Ping(ctx context.Context) error {
	if s.pinger != nil {
		return s.pinger.Ping(ctx)
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
