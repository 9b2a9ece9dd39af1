package academic

import (
	"context"
	"errors"
	"strings"

	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/content"
	"academictoken/internal/domain/curriculum"
	"academictoken/internal/domain/engine"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/domain/prerequisite"
	"academictoken/internal/domain/transfer"
	"academictoken/internal/errs"
	"academictoken/internal/ports"
)

// queryReady is ready without the unit of work; queries never open one.
func (s *Service) queryReady(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errRepositoryRequired
	}
	return nil
}

// fetchPage asks for one row more than the clamped limit to learn whether a
// next page exists.
func fetchPage[T any](req PageRequest, list func(ports.Page) ([]T, error), cursor func(T) string) (PageResult[T], error) {
	page := ports.Page{Limit: req.Limit, StartAfter: strings.TrimSpace(req.StartAfter)}.Clamp()
	items, err := list(ports.Page{Limit: page.Limit + 1, StartAfter: page.StartAfter})
	if err != nil {
		return PageResult[T]{}, err
	}

	out := PageResult[T]{Items: items}
	if len(items) > page.Limit {
		out.Items = items[:page.Limit]
		out.NextCursor = cursor(out.Items[len(out.Items)-1])
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out, nil
}

func (s *Service) GetSubject(ctx context.Context, subjectID string) (domain.SubjectInfo, error) {
	if err := s.queryReady(ctx); err != nil {
		return domain.SubjectInfo{}, err
	}
	return s.repo.GetSubject(ctx, strings.TrimSpace(subjectID))
}

func (s *Service) ListSubjectsByInstitution(ctx context.Context, institution string, req PageRequest) (PageResult[domain.SubjectInfo], error) {
	if err := s.queryReady(ctx); err != nil {
		return PageResult[domain.SubjectInfo]{}, err
	}
	institution = strings.TrimSpace(institution)
	if institution == "" {
		return PageResult[domain.SubjectInfo]{}, domain.ErrInstitutionRequired
	}
	return fetchPage(req, func(p ports.Page) ([]domain.SubjectInfo, error) {
		return s.repo.ListSubjectsByInstitution(ctx, institution, p)
	}, func(v domain.SubjectInfo) string { return v.ID })
}

// GetPrerequisites returns the subject's groups in declaration order.
func (s *Service) GetPrerequisites(ctx context.Context, subjectID string) ([]prerequisite.Group, error) {
	if err := s.queryReady(ctx); err != nil {
		return nil, err
	}
	subjectID = strings.TrimSpace(subjectID)
	if _, err := s.repo.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.repo.ListPrerequisites(ctx, subjectID)
}

func (s *Service) GetStudentRecord(ctx context.Context, studentID string) (domain.StudentRecord, error) {
	if err := s.queryReady(ctx); err != nil {
		return domain.StudentRecord{}, err
	}
	return s.repo.GetStudent(ctx, strings.TrimSpace(studentID))
}

func (s *Service) GetVerification(ctx context.Context, verificationID string) (prerequisite.Verification, error) {
	if err := s.queryReady(ctx); err != nil {
		return prerequisite.Verification{}, err
	}
	return s.repo.GetVerification(ctx, strings.TrimSpace(verificationID))
}

func (s *Service) ListVerificationsByStudent(ctx context.Context, studentID string, req PageRequest) (PageResult[prerequisite.Verification], error) {
	if err := s.queryReady(ctx); err != nil {
		return PageResult[prerequisite.Verification]{}, err
	}
	studentID = strings.TrimSpace(studentID)
	return fetchPage(req, func(p ports.Page) ([]prerequisite.Verification, error) {
		return s.repo.ListVerificationsByStudent(ctx, studentID, p)
	}, func(v prerequisite.Verification) string { return v.ID })
}

func (s *Service) GetEquivalence(ctx context.Context, equivalenceID string) (equivalence.Equivalence, error) {
	if err := s.queryReady(ctx); err != nil {
		return equivalence.Equivalence{}, err
	}
	return s.repo.GetEquivalence(ctx, strings.TrimSpace(equivalenceID))
}

func (s *Service) GetEquivalenceByPair(ctx context.Context, sourceSubjectID string, targetSubjectID string) (equivalence.Equivalence, error) {
	if err := s.queryReady(ctx); err != nil {
		return equivalence.Equivalence{}, err
	}
	return s.repo.GetEquivalenceByPair(ctx, strings.TrimSpace(sourceSubjectID), strings.TrimSpace(targetSubjectID))
}

// ListEquivalencesByInstitution lists equivalences whose source or target
// subject belongs to institution.
func (s *Service) ListEquivalencesByInstitution(ctx context.Context, institution string, req PageRequest) (PageResult[equivalence.Equivalence], error) {
	if err := s.queryReady(ctx); err != nil {
		return PageResult[equivalence.Equivalence]{}, err
	}
	institution = strings.TrimSpace(institution)
	if institution == "" {
		return PageResult[equivalence.Equivalence]{}, domain.ErrInstitutionRequired
	}
	return fetchPage(req, func(p ports.Page) ([]equivalence.Equivalence, error) {
		return s.repo.ListEquivalencesByInstitution(ctx, institution, p)
	}, func(v equivalence.Equivalence) string { return v.ID })
}

func (s *Service) ListEquivalencesByStatus(ctx context.Context, status equivalence.Status, req PageRequest) (PageResult[equivalence.Equivalence], error) {
	if err := s.queryReady(ctx); err != nil {
		return PageResult[equivalence.Equivalence]{}, err
	}
	return fetchPage(req, func(p ports.Page) ([]equivalence.Equivalence, error) {
		return s.repo.ListEquivalencesByStatus(ctx, status, p)
	}, func(v equivalence.Equivalence) string { return v.ID })
}

func (s *Service) GetAnalysis(ctx context.Context, equivalenceID string) (equivalence.AnalysisResult, error) {
	if err := s.queryReady(ctx); err != nil {
		return equivalence.AnalysisResult{}, err
	}
	return s.repo.GetAnalysis(ctx, strings.TrimSpace(equivalenceID))
}

func (s *Service) GetTransferRequest(ctx context.Context, transferID string) (transfer.Request, error) {
	if err := s.queryReady(ctx); err != nil {
		return transfer.Request{}, err
	}
	return s.repo.GetTransfer(ctx, strings.TrimSpace(transferID))
}

func (s *Service) ListTransfersByStudent(ctx context.Context, studentID string, req PageRequest) (PageResult[transfer.Request], error) {
	if err := s.queryReady(ctx); err != nil {
		return PageResult[transfer.Request]{}, err
	}
	studentID = strings.TrimSpace(studentID)
	return fetchPage(req, func(p ports.Page) ([]transfer.Request, error) {
		return s.repo.ListTransfersByStudent(ctx, studentID, p)
	}, func(v transfer.Request) string { return v.ID })
}

// GetTransferHistory returns the ids of the student's granted transfers in
// processing order.
func (s *Service) GetTransferHistory(ctx context.Context, studentID string) ([]string, error) {
	if err := s.queryReady(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListTransferHistory(ctx, strings.TrimSpace(studentID))
}

func (s *Service) GetCurriculum(ctx context.Context, curriculumID string) (curriculum.Requirements, error) {
	if err := s.queryReady(ctx); err != nil {
		return curriculum.Requirements{}, err
	}
	return s.repo.GetCurriculum(ctx, strings.TrimSpace(curriculumID))
}

func (s *Service) ListCurricula(ctx context.Context, req PageRequest) (PageResult[curriculum.Requirements], error) {
	if err := s.queryReady(ctx); err != nil {
		return PageResult[curriculum.Requirements]{}, err
	}
	return fetchPage(req, func(p ports.Page) ([]curriculum.Requirements, error) {
		return s.repo.ListCurricula(ctx, p)
	}, func(v curriculum.Requirements) string { return v.ID })
}

func (s *Service) GetContent(ctx context.Context, locator string) (content.Document, error) {
	if ctx == nil {
		return content.Document{}, errors.New("context is required")
	}
	if s.content == nil {
		return content.Document{}, errContentStoreRequired
	}
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return content.Document{}, content.ErrLocatorRequired
	}
	return s.content.Get(ctx, locator)
}

func (s *Service) GetEngineState(ctx context.Context) (engine.State, error) {
	if ctx == nil {
		return engine.State{}, errors.New("context is required")
	}
	if s.state == nil {
		return engine.State{}, errStateRequired
	}
	return s.state.GetState(ctx)
}
