package ports

import (
	"context"

	"academictoken/internal/domain/content"
)

// ContentStore is the local cache of syllabus documents keyed by locator.
type ContentStore interface {
	Put(ctx context.Context, doc content.Document) (replaced bool, err error)
	Get(ctx context.Context, locator string) (content.Document, error)
	Exists(ctx context.Context, locator string) (bool, error)
	List(ctx context.Context, startAfter string, limit int) ([]string, error)
}
