package academic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"academictoken/internal/errs"
	"academictoken/internal/ports"
)

var (
	errRepositoryRequired   = errors.New("academic repository is required")
	errStateRequired        = errors.New("engine state repository is required")
	errUnitOfWorkRequired   = errors.New("academic unit of work is required")
	errContentStoreRequired = errors.New("content store is required")

	errEquivalenceIDRequired = errs.New(errs.KindInvalidInput, "equivalence id is required")
	errTransferIDRequired    = errs.New(errs.KindInvalidInput, "transfer id is required")
)

// Options tune service behaviour that comes from configuration.
type Options struct {
	DegreeCacheTTL  time.Duration
	MaxContentBytes int
}

type Service struct {
	repo    ports.AcademicRepository
	state   ports.EngineStateRepository
	uow     ports.UnitOfWork
	cache   ports.Cache
	content ports.ContentStore
	events  ports.EventSink
	opts    Options
	now     func() time.Time
	newID   func() string
}

// NewService wires academic usecases. cache and events are optional.
func NewService(
	repo ports.AcademicRepository,
	state ports.EngineStateRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	content ports.ContentStore,
	events ports.EventSink,
	opts Options,
) *Service {
	return &Service{
		repo:    repo,
		state:   state,
		uow:     uow,
		cache:   cache,
		content: content,
		events:  events,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errRepositoryRequired
	}
	if s.state == nil {
		return errStateRequired
	}
	if s.uow == nil {
		return errUnitOfWorkRequired
	}
	return nil
}

// BatchItemResult reports the outcome of one item of a batch command.
type BatchItemResult struct {
	Index int
	ID    string
	Err   error
}

// PageRequest is the cursor a list query starts from.
type PageRequest struct {
	Limit      int
	StartAfter string
}

// PageResult carries one page and the cursor for the next one, empty on the last page.
type PageResult[T any] struct {
	Items      []T
	NextCursor string
}

type RegisterSubjectInput struct {
	ID             string
	Title          string
	Institution    string
	Credits        int
	ContentLocator string
	ContentHash    string
	Level          string
	Department     string
	WorkloadHours  int
	Semester       string
	Language       string
}

type PrerequisiteGroupInput struct {
	ID                       string
	GroupType                string
	MinimumCredits           int
	MinimumCompletedSubjects int
	SubjectIDs               []string
	Logic                    string
	Priority                 int
	Confidence               int
	ContentLocator           string
}

type RegisterPrerequisitesInput struct {
	SubjectID string
	Groups    []PrerequisiteGroupInput
}

type BatchRegisterPrerequisitesInput struct {
	Caller string
	Items  []RegisterPrerequisitesInput
}

type CompletedSubjectInput struct {
	SubjectID      string
	Credits        int
	CompletionDate time.Time
	Grade          int
	CredentialRef  string
	ContentLocator string
}

type UpdateStudentRecordInput struct {
	StudentID string
	Subjects  []CompletedSubjectInput
}

type VerifyEnrollmentInput struct {
	StudentID string
	SubjectID string
}

type CacheContentInput struct {
	Locator  string
	Format   string
	Language string
	Raw      []byte
}

type AnalyzePrerequisiteRelationshipInput struct {
	SubjectID   string
	CandidateID string
}

type RegisterEquivalenceInput struct {
	SourceSubjectID string
	TargetSubjectID string
	Method          string
	Notes           string
}

type BatchRegisterEquivalencesInput struct {
	Caller string
	Items  []RegisterEquivalenceInput
}

// AnalyzeEquivalenceInput drives one analysis. Deadline is the caller's
// cut-off; a zero value means no deadline.
type AnalyzeEquivalenceInput struct {
	EquivalenceID   string
	ForceReanalysis bool
	Deadline        time.Time
}

type ApproveEquivalenceInput struct {
	Caller               string
	EquivalenceID        string
	Approve              bool
	Type                 string
	SimilarityPercentage *int
	Method               string
	Notes                string
}

type SubmitTransferRequestInput struct {
	StudentID         string
	SourceInstitution string
	TargetInstitution string
	SubjectIDs        []string
	EquivalenceIDs    []string
	Notes             string
}

type ProcessTransferRequestInput struct {
	Caller               string
	TransferID           string
	ApprovedEquivalences []string
}

type InitEngineInput struct {
	Owner                 string
	Approvers             []string
	AutoApprovalThreshold *int
}

type UpdateConfigInput struct {
	Caller                string
	Owner                 *string
	Approvers             *[]string
	AutoApprovalThreshold *int
}

type RegisterCurriculumInput struct {
	ID                     string
	Name                   string
	MinimumCredits         int
	RequiredSubjects       []string
	MinimumGPA             *int
	AdditionalRequirements []string
	Replace                bool
}

type ImportCurriculaInput struct {
	Raw     []byte
	Replace bool
}

type ValidateDegreeInput struct {
	StudentID    string
	CurriculumID string
	Satisfied    []string
	Refresh      bool
}
