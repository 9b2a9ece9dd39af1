package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"academictoken/internal/errs"
	"academictoken/internal/ports"
)

// AcademicRepository implements ports.AcademicRepository with gorm. It works
// on SQLite and PostgreSQL alike.
type AcademicRepository struct {
	db *gorm.DB
}

var _ ports.AcademicRepository = (*AcademicRepository)(nil)

func NewAcademicRepository(db *gorm.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

func (r *AcademicRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	return dbFromContext(ctx, r.db)
}

func dbFromContext(ctx context.Context, db *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

var timeNow = func() time.Time { return time.Now().UTC() }

// paginate orders by column and applies the keyset cursor. The caller owns
// the limit so it can ask for one extra row.
func paginate(query *gorm.DB, column string, page ports.Page) *gorm.DB {
	if page.StartAfter != "" {
		query = query.Where(column+" > ?", page.StartAfter)
	}
	query = query.Order(column + " asc")
	if page.Limit > 0 {
		query = query.Limit(page.Limit)
	}
	return query
}

// exists reports whether any row of model matches the condition.
func exists(db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func encodeJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errs.Wrap(err, "encode json column")
	}
	return datatypes.JSON(raw), nil
}

func decodeStrings(raw datatypes.JSON) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errs.Wrap(err, "decode json list column")
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errs.Wrapf(err, "parse time %q", raw)
	}
	return t, nil
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseTime(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// notFound maps gorm's missing-row error onto a domain sentinel.
func notFound(err error, sentinel error, op string, kv ...string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.E(sentinel, kv...)
	}
	return errs.Storage(err, op)
}
