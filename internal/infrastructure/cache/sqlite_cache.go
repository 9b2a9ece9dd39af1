package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	"academictoken/internal/ports"
)

// SQLiteCache keeps cache entries in the engine_kv table. Writes join the
// transaction carried by ctx so invalidations commit with the change that
// caused them.
type SQLiteCache struct {
	db  *gorm.DB
	now func() time.Time
}

var _ ports.Cache = (*SQLiteCache)(nil)

func NewSQLiteCache(db *gorm.DB) *SQLiteCache {
	return &SQLiteCache{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (c *SQLiteCache) conn(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return c.db.WithContext(ctx), nil
	}
	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return "", false, err
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", false, errors.New("key is required")
	}

	var row model.EngineKV
	if err := db.Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query cache by key")
	}

	if row.ExpiresAt != nil {
		expiresAt, err := time.Parse(time.RFC3339Nano, *row.ExpiresAt)
		if err != nil {
			return "", false, errs.Wrapf(err, "parse expiry of cache key %q", trimmedKey)
		}
		if !c.now().Before(expiresAt) {
			return "", false, nil
		}
	}

	return row.Value, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	now := c.now()
	row := model.EngineKV{
		Key:       trimmedKey,
		Value:     value,
		UpdatedAt: now.Format(time.RFC3339Nano),
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl).Format(time.RFC3339Nano)
		row.ExpiresAt = &expiresAt
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"expires_at": row.ExpiresAt,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert cache key")
	}

	return nil
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	if err := db.Where("key = ?", trimmedKey).Delete(&model.EngineKV{}).Error; err != nil {
		return errs.Wrap(err, "delete cache key")
	}
	return nil
}

// DeletePrefix removes every key starting with prefix and returns the count.
func (c *SQLiteCache) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}

	if strings.TrimSpace(prefix) == "" {
		return 0, errors.New("prefix is required")
	}

	// substr avoids LIKE wildcards hiding in ids.
	result := db.Where("substr(key, 1, ?) = ?", len(prefix), prefix).Delete(&model.EngineKV{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "delete cache prefix")
	}
	return result.RowsAffected, nil
}
