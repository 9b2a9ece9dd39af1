package academic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/content"
	"academictoken/internal/errs"
)

// RegisterSubject stores an immutable subject. When the subject names a cached
// document the stored hash binds it to that document version.
func (s *Service) RegisterSubject(ctx context.Context, input RegisterSubjectInput) (_ domain.SubjectInfo, err error) {
	if err := s.ready(ctx); err != nil {
		return domain.SubjectInfo{}, err
	}
	ctx, span := startSpan(ctx, "register_subject", attribute.String("subject_id", input.ID))
	defer func() { endSpan(span, err) }()

	level, err := domain.ParseLevel(input.Level)
	if err != nil {
		return domain.SubjectInfo{}, errs.E(err, "field", "level")
	}

	subject := domain.SubjectInfo{
		ID:             strings.TrimSpace(input.ID),
		Title:          strings.TrimSpace(input.Title),
		Institution:    strings.TrimSpace(input.Institution),
		Credits:        input.Credits,
		ContentLocator: strings.TrimSpace(input.ContentLocator),
		ContentHash:    strings.TrimSpace(input.ContentHash),
		Metadata: domain.Metadata{
			Level:         level,
			Department:    strings.TrimSpace(input.Department),
			WorkloadHours: input.WorkloadHours,
			Semester:      strings.TrimSpace(input.Semester),
			Language:      strings.TrimSpace(input.Language),
		},
	}
	if err := subject.Validate(); err != nil {
		return domain.SubjectInfo{}, errs.E(err, "subject_id", subject.ID)
	}

	if err := s.bindContentHash(ctx, &subject); err != nil {
		return domain.SubjectInfo{}, err
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateSubject(txCtx, subject)
	}); err != nil {
		return domain.SubjectInfo{}, err
	}

	s.emit(ctx, "subject_registered", map[string]string{
		"subject_id":  subject.ID,
		"institution": subject.Institution,
		"credits":     fmt.Sprint(subject.Credits),
	})
	return subject, nil
}

// bindContentHash fills an empty hash from the cached document and rejects a
// hash that disagrees with it. Uncached locators are accepted as given.
func (s *Service) bindContentHash(ctx context.Context, subject *domain.SubjectInfo) error {
	if subject.ContentLocator == "" || s.content == nil {
		return nil
	}

	doc, err := s.content.Get(ctx, subject.ContentLocator)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return nil
		}
		return errs.Storage(err, "read cached content")
	}

	if subject.ContentHash == "" {
		subject.ContentHash = doc.Hash
		return nil
	}
	if subject.ContentHash != doc.Hash {
		return errs.E(domain.ErrContentHashMismatch,
			"subject_id", subject.ID,
			"content_locator", subject.ContentLocator,
		)
	}
	return nil
}
