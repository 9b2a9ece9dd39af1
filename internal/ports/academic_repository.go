package ports

import (
	"context"
	"time"

	"academictoken/internal/domain/academic"
	"academictoken/internal/domain/curriculum"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/domain/prerequisite"
	"academictoken/internal/domain/transfer"
)

type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject academic.SubjectInfo) error
	GetSubject(ctx context.Context, subjectID string) (academic.SubjectInfo, error)
	ListSubjectsByInstitution(ctx context.Context, institution string, page Page) ([]academic.SubjectInfo, error)
	ReplacePrerequisites(ctx context.Context, subjectID string, groups []prerequisite.Group) error
	ListPrerequisites(ctx context.Context, subjectID string) ([]prerequisite.Group, error)
}

type StudentRepository interface {
	GetStudent(ctx context.Context, studentID string) (academic.StudentRecord, error)
	SaveStudent(ctx context.Context, record academic.StudentRecord) error
}

type VerificationRepository interface {
	CreateVerification(ctx context.Context, v prerequisite.Verification) error
	GetVerification(ctx context.Context, verificationID string) (prerequisite.Verification, error)
	ListVerificationsByStudent(ctx context.Context, studentID string, page Page) ([]prerequisite.Verification, error)
}

type EquivalenceRepository interface {
	CreateEquivalence(ctx context.Context, eq equivalence.Equivalence) error
	GetEquivalence(ctx context.Context, equivalenceID string) (equivalence.Equivalence, error)
	GetEquivalenceByPair(ctx context.Context, sourceSubjectID string, targetSubjectID string) (equivalence.Equivalence, error)
	UpdateEquivalence(ctx context.Context, eq equivalence.Equivalence) error
	ListEquivalencesByInstitution(ctx context.Context, institution string, page Page) ([]equivalence.Equivalence, error)
	ListEquivalencesByStatus(ctx context.Context, status equivalence.Status, page Page) ([]equivalence.Equivalence, error)
	SaveAnalysis(ctx context.Context, result equivalence.AnalysisResult) error
	GetAnalysis(ctx context.Context, equivalenceID string) (equivalence.AnalysisResult, error)
}

type TransferRepository interface {
	CreateTransfer(ctx context.Context, req transfer.Request) error
	GetTransfer(ctx context.Context, transferID string) (transfer.Request, error)
	UpdateTransfer(ctx context.Context, req transfer.Request) error
	ListTransfersByStudent(ctx context.Context, studentID string, page Page) ([]transfer.Request, error)
	AppendTransferHistory(ctx context.Context, studentID string, transferID string, at time.Time) error
	ListTransferHistory(ctx context.Context, studentID string) ([]string, error)
}

type CurriculumRepository interface {
	CreateCurriculum(ctx context.Context, req curriculum.Requirements) error
	UpdateCurriculum(ctx context.Context, req curriculum.Requirements) error
	GetCurriculum(ctx context.Context, curriculumID string) (curriculum.Requirements, error)
	ListCurricula(ctx context.Context, page Page) ([]curriculum.Requirements, error)
}

// RecordCounts sizes every keyed collection for stats and dumps.
type RecordCounts struct {
	Subjects           int64
	PrerequisiteGroups int64
	Students           int64
	Verifications      int64
	Equivalences       int64
	Analyses           int64
	Transfers          int64
	Curricula          int64
	EquivalenceStatus  map[string]int64
	TransferStatus     map[string]int64
}

type StatsRepository interface {
	CountRecords(ctx context.Context) (RecordCounts, error)
}

// AcademicRepository is the persistent store behind every academic usecase.
type AcademicRepository interface {
	SubjectRepository
	StudentRepository
	VerificationRepository
	EquivalenceRepository
	TransferRepository
	CurriculumRepository
	StatsRepository
}
