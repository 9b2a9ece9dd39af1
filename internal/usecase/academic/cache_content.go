package academic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"academictoken/internal/domain/content"
	"academictoken/internal/errs"
)

const defaultMaxContentBytes = 1 << 20

type CacheContentResult struct {
	Document content.Document
	Replaced bool
}

// CacheContent decodes a fetched document and stores it under its locator.
// Re-caching a locator replaces the previous version.
func (s *Service) CacheContent(ctx context.Context, input CacheContentInput) (_ CacheContentResult, err error) {
	if ctx == nil {
		return CacheContentResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return CacheContentResult{}, errs.Wrap(err, "check context")
	}
	if s.content == nil {
		return CacheContentResult{}, errContentStoreRequired
	}
	ctx, span := startSpan(ctx, "cache_content", attribute.String("locator", input.Locator))
	defer func() { endSpan(span, err) }()

	locator, err := requireID(input.Locator, content.ErrLocatorRequired)
	if err != nil {
		return CacheContentResult{}, err
	}
	limit := s.opts.MaxContentBytes
	if limit <= 0 {
		limit = defaultMaxContentBytes
	}
	if len(input.Raw) > limit {
		return CacheContentResult{}, errs.E(content.ErrTooLarge,
			"locator", locator,
			"size", fmt.Sprint(len(input.Raw)),
			"limit", fmt.Sprint(limit),
		)
	}

	format, err := detectFormat(input.Format, locator)
	if err != nil {
		return CacheContentResult{}, errs.E(err, "locator", locator)
	}
	doc, err := decodeDocument(format, input.Raw)
	if err != nil {
		return CacheContentResult{}, errs.E(err, "locator", locator)
	}
	if !doc.Analyzable() {
		return CacheContentResult{}, errs.E(content.ErrEmptyDocument, "locator", locator)
	}

	doc.Locator = locator
	doc.Hash = content.HashBytes(input.Raw)
	doc.Size = len(input.Raw)
	doc.CachedAt = s.now()
	if lang := strings.TrimSpace(input.Language); lang != "" {
		doc.Language = lang
	}

	replaced, err := s.content.Put(ctx, doc)
	if err != nil {
		return CacheContentResult{}, errs.Storage(err, "store content")
	}

	s.emit(ctx, "content_cached", map[string]string{
		"locator":  locator,
		"hash":     doc.Hash,
		"format":   string(doc.Format),
		"replaced": fmt.Sprint(replaced),
	})
	return CacheContentResult{Document: doc, Replaced: replaced}, nil
}
