package academic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.opentelemetry.io/otel/attribute"

	"academictoken/internal/domain/curriculum"
	"academictoken/internal/errs"
)

var errCatalogInvalid = errs.New(errs.KindInvalidInput, "invalid curriculum catalog")

// curriculumCatalog is the TOML layout accepted by ImportCurricula:
//
//	[[curriculum]]
//	id = "cs-bsc"
//	minimum_credits = 120
//	required_subjects = ["cs101", "cs102"]
//	minimum_gpa = 700
type curriculumCatalog struct {
	Curricula []catalogEntry `toml:"curriculum"`
}

type catalogEntry struct {
	ID                     string   `toml:"id"`
	Name                   string   `toml:"name"`
	MinimumCredits         int      `toml:"minimum_credits"`
	RequiredSubjects       []string `toml:"required_subjects"`
	MinimumGPA             *int     `toml:"minimum_gpa"`
	AdditionalRequirements []string `toml:"additional_requirements"`
}

// RegisterCurriculum stores degree requirements. Replace overwrites an
// existing curriculum with the same id.
func (s *Service) RegisterCurriculum(ctx context.Context, input RegisterCurriculumInput) (_ curriculum.Requirements, err error) {
	if err := s.ready(ctx); err != nil {
		return curriculum.Requirements{}, err
	}
	ctx, span := startSpan(ctx, "register_curriculum", attribute.String("curriculum_id", input.ID))
	defer func() { endSpan(span, err) }()

	req, err := s.registerCurriculum(ctx, input)
	if err != nil {
		return curriculum.Requirements{}, err
	}

	s.emit(ctx, "curriculum_registered", map[string]string{
		"curriculum_id":     req.ID,
		"minimum_credits":   fmt.Sprint(req.MinimumCredits),
		"required_subjects": fmt.Sprint(len(req.RequiredSubjects)),
	})
	return req, nil
}

// ImportCurricula registers every curriculum of a TOML catalog. Entries
// commit independently.
func (s *Service) ImportCurricula(ctx context.Context, input ImportCurriculaInput) (_ []BatchItemResult, err error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "import_curricula")
	defer func() { endSpan(span, err) }()

	var catalog curriculumCatalog
	if err := toml.Unmarshal(input.Raw, &catalog); err != nil {
		return nil, errs.E(errCatalogInvalid, "cause", err.Error())
	}
	if len(catalog.Curricula) == 0 {
		return nil, errs.E(errCatalogInvalid, "cause", "no [[curriculum]] entries")
	}

	results := make([]BatchItemResult, 0, len(catalog.Curricula))
	succeeded := 0
	for i, entry := range catalog.Curricula {
		result := BatchItemResult{Index: i, ID: strings.TrimSpace(entry.ID)}
		if _, err := s.registerCurriculum(ctx, RegisterCurriculumInput{
			ID:                     entry.ID,
			Name:                   entry.Name,
			MinimumCredits:         entry.MinimumCredits,
			RequiredSubjects:       entry.RequiredSubjects,
			MinimumGPA:             entry.MinimumGPA,
			AdditionalRequirements: entry.AdditionalRequirements,
			Replace:                input.Replace,
		}); err != nil {
			result.Err = err
		} else {
			succeeded++
		}
		results = append(results, result)
	}

	s.emit(ctx, "curricula_imported", map[string]string{
		"items":     fmt.Sprint(len(results)),
		"succeeded": fmt.Sprint(succeeded),
	})
	return results, nil
}

func (s *Service) registerCurriculum(ctx context.Context, input RegisterCurriculumInput) (curriculum.Requirements, error) {
	req := curriculum.Requirements{
		ID:                     strings.TrimSpace(input.ID),
		Name:                   strings.TrimSpace(input.Name),
		MinimumCredits:         input.MinimumCredits,
		RequiredSubjects:       normalizeIDs(input.RequiredSubjects),
		MinimumGPA:             input.MinimumGPA,
		AdditionalRequirements: normalizeIDs(input.AdditionalRequirements),
	}
	if err := req.Validate(); err != nil {
		return curriculum.Requirements{}, errs.E(err, "curriculum_id", req.ID)
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if input.Replace {
			_, err := s.repo.GetCurriculum(txCtx, req.ID)
			switch {
			case err == nil:
				return s.repo.UpdateCurriculum(txCtx, req)
			case !errors.Is(err, curriculum.ErrNotFound):
				return err
			}
		}
		return s.repo.CreateCurriculum(txCtx, req)
	}); err != nil {
		return curriculum.Requirements{}, err
	}
	return req, nil
}
