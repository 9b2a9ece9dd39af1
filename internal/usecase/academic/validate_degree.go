package academic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"academictoken/internal/bootstrap/logging"
	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/curriculum"
	"academictoken/internal/errs"
)

const defaultDegreeCacheTTL = 24 * time.Hour

type DegreeValidation struct {
	curriculum.ValidationResult
	Cached bool
}

// ValidateDegree checks a student's history against a curriculum. Results are
// cached per student, curriculum and satisfied-requirement set, and a cached
// result is only reused while the student record is at the same revision.
func (s *Service) ValidateDegree(ctx context.Context, input ValidateDegreeInput) (_ DegreeValidation, err error) {
	if err := s.ready(ctx); err != nil {
		return DegreeValidation{}, err
	}
	ctx, span := startSpan(ctx, "validate_degree",
		attribute.String("student_id", input.StudentID),
		attribute.String("curriculum_id", input.CurriculumID),
	)
	defer func() { endSpan(span, err) }()

	studentID, err := requireID(input.StudentID, domain.ErrStudentIDRequired)
	if err != nil {
		return DegreeValidation{}, err
	}
	curriculumID, err := requireID(input.CurriculumID, curriculum.ErrIDRequired)
	if err != nil {
		return DegreeValidation{}, err
	}

	record, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return DegreeValidation{}, err
	}
	req, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return DegreeValidation{}, err
	}

	satisfied := normalizeIDs(input.Satisfied)
	key := degreeCacheKey(studentID, curriculumID, satisfied)
	if !input.Refresh {
		if cached, ok := s.cachedValidation(ctx, key, record.Revision); ok {
			return DegreeValidation{ValidationResult: cached, Cached: true}, nil
		}
	}

	flags := make(map[string]bool, len(satisfied))
	for _, descriptor := range satisfied {
		flags[descriptor] = true
	}
	result := curriculum.Validate(record, req, flags, s.now())

	raw, err := json.Marshal(result)
	if err != nil {
		return DegreeValidation{}, errs.Wrap(err, "encode degree validation")
	}
	ttl := s.opts.DegreeCacheTTL
	if ttl <= 0 {
		ttl = defaultDegreeCacheTTL
	}
	s.setCacheBestEffort(ctx, key, string(raw), ttl)

	s.emit(ctx, "degree_validated", map[string]string{
		"student_id":       studentID,
		"curriculum_id":    curriculumID,
		"is_valid":         fmt.Sprint(result.IsValid),
		"validation_score": fmt.Sprint(result.ValidationScore),
	})
	return DegreeValidation{ValidationResult: result}, nil
}

func (s *Service) cachedValidation(ctx context.Context, key string, revision int64) (curriculum.ValidationResult, bool) {
	if s.cache == nil {
		return curriculum.ValidationResult{}, false
	}
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "read degree cache failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		return curriculum.ValidationResult{}, false
	}
	if !found {
		return curriculum.ValidationResult{}, false
	}

	var result curriculum.ValidationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logging.Warn(ctx, "decode degree cache failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		return curriculum.ValidationResult{}, false
	}
	if result.StudentRevision != revision {
		return curriculum.ValidationResult{}, false
	}
	return result, true
}

// degreeCacheKey is degree:<student>:<curriculum>:<digest of satisfied set>.
func degreeCacheKey(studentID, curriculumID string, satisfied []string) string {
	sum := sha256.Sum256([]byte(strings.Join(sortedCopy(satisfied), "\n")))
	return degreeCachePrefix(studentID) + curriculumID + ":" + hex.EncodeToString(sum[:8])
}
