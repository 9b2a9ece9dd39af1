package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	domaincontent "academictoken/internal/domain/content"
	"academictoken/internal/errs"
	"academictoken/internal/ports"
)

const documentBucket = "documents"

// BoltStore caches syllabus documents in a bbolt file keyed by locator.
type BoltStore struct {
	db *bbolt.DB
}

var _ ports.ContentStore = (*BoltStore)(nil)

// Open opens or creates the store at path.
func Open(path string, timeout time.Duration) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("content store path is required")
	}
	if timeout <= 0 {
		timeout = time.Second
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Wrapf(err, "create content store directory %q", dir)
		}
	}

	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errs.Wrap(err, "open content store")
	}

	store := &BoltStore{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores doc under its locator, replacing any earlier version.
func (s *BoltStore) Put(ctx context.Context, doc domaincontent.Document) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	if strings.TrimSpace(doc.Locator) == "" {
		return false, domaincontent.ErrLocatorRequired
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return false, errs.Wrap(err, "marshal content document")
	}

	replaced := false
	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		if bucket == nil {
			return errors.New("content bucket is missing")
		}
		replaced = bucket.Get([]byte(doc.Locator)) != nil
		return bucket.Put([]byte(doc.Locator), payload)
	})
	if err != nil {
		return false, errs.Storage(err, "put content document")
	}
	return replaced, nil
}

func (s *BoltStore) Get(ctx context.Context, locator string) (domaincontent.Document, error) {
	if err := s.ready(ctx); err != nil {
		return domaincontent.Document{}, err
	}
	if strings.TrimSpace(locator) == "" {
		return domaincontent.Document{}, domaincontent.ErrLocatorRequired
	}

	var doc domaincontent.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		if bucket == nil {
			return errors.New("content bucket is missing")
		}
		payload := bucket.Get([]byte(locator))
		if payload == nil {
			return errs.E(domaincontent.ErrNotFound, "locator", locator)
		}
		if err := json.Unmarshal(payload, &doc); err != nil {
			return fmt.Errorf("unmarshal content document: %w", err)
		}
		return nil
	})
	if err != nil {
		return domaincontent.Document{}, errs.Storage(err, "get content document")
	}
	return doc, nil
}

func (s *BoltStore) Exists(ctx context.Context, locator string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	if strings.TrimSpace(locator) == "" {
		return false, nil
	}

	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		if bucket == nil {
			return errors.New("content bucket is missing")
		}
		found = bucket.Get([]byte(locator)) != nil
		return nil
	})
	if err != nil {
		return false, errs.Storage(err, "check content document")
	}
	return found, nil
}

// List returns up to limit locators sorted after startAfter.
func (s *BoltStore) List(ctx context.Context, startAfter string, limit int) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	locators := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		if bucket == nil {
			return errors.New("content bucket is missing")
		}

		c := bucket.Cursor()
		k, _ := c.First()
		if startAfter != "" {
			k, _ = c.Seek([]byte(startAfter))
			if k != nil && bytes.Equal(k, []byte(startAfter)) {
				k, _ = c.Next()
			}
		}
		for ; k != nil; k, _ = c.Next() {
			if limit > 0 && len(locators) >= limit {
				break
			}
			locators = append(locators, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, errs.Storage(err, "list content documents")
	}
	return locators, nil
}

func (s *BoltStore) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s == nil || s.db == nil {
		return errors.New("content store is not configured")
	}
	return nil
}

func (s *BoltStore) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(documentBucket)); err != nil {
			return fmt.Errorf("create content bucket: %w", err)
		}
		return nil
	})
}
