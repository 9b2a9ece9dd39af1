package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"academictoken/internal/bootstrap/logging"
	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/content"
	"academictoken/internal/domain/curriculum"
	"academictoken/internal/domain/engine"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/domain/prerequisite"
	"academictoken/internal/domain/transfer"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

// Reader is the query side of the academic service.
type Reader interface {
	GetSubject(ctx context.Context, subjectID string) (domain.SubjectInfo, error)
	ListSubjectsByInstitution(ctx context.Context, institution string, req academic.PageRequest) (academic.PageResult[domain.SubjectInfo], error)
	GetPrerequisites(ctx context.Context, subjectID string) ([]prerequisite.Group, error)
	GetStudentRecord(ctx context.Context, studentID string) (domain.StudentRecord, error)
	GetVerification(ctx context.Context, verificationID string) (prerequisite.Verification, error)
	ListVerificationsByStudent(ctx context.Context, studentID string, req academic.PageRequest) (academic.PageResult[prerequisite.Verification], error)
	GetEquivalence(ctx context.Context, equivalenceID string) (equivalence.Equivalence, error)
	GetEquivalenceByPair(ctx context.Context, sourceSubjectID string, targetSubjectID string) (equivalence.Equivalence, error)
	ListEquivalencesByInstitution(ctx context.Context, institution string, req academic.PageRequest) (academic.PageResult[equivalence.Equivalence], error)
	ListEquivalencesByStatus(ctx context.Context, status equivalence.Status, req academic.PageRequest) (academic.PageResult[equivalence.Equivalence], error)
	GetAnalysis(ctx context.Context, equivalenceID string) (equivalence.AnalysisResult, error)
	GetTransferRequest(ctx context.Context, transferID string) (transfer.Request, error)
	ListTransfersByStudent(ctx context.Context, studentID string, req academic.PageRequest) (academic.PageResult[transfer.Request], error)
	GetTransferHistory(ctx context.Context, studentID string) ([]string, error)
	GetCurriculum(ctx context.Context, curriculumID string) (curriculum.Requirements, error)
	ListCurricula(ctx context.Context, req academic.PageRequest) (academic.PageResult[curriculum.Requirements], error)
	GetContent(ctx context.Context, locator string) (content.Document, error)
	GetEngineState(ctx context.Context) (engine.State, error)
	Stats(ctx context.Context) (academic.Stats, error)
}

var _ Reader = (*academic.Service)(nil)

type handler struct {
	reader Reader
}

// NewRouter exposes the read-only query surface as JSON.
func NewRouter(reader Reader) http.Handler {
	h := handler{reader: reader}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/engine", h.engineState)
		api.Get("/stats", h.stats)

		api.Get("/subjects/{subject_id}", h.subject)
		api.Get("/subjects/{subject_id}/prerequisites", h.prerequisites)
		api.Get("/institutions/{institution}/subjects", h.subjectsByInstitution)
		api.Get("/institutions/{institution}/equivalences", h.equivalencesByInstitution)

		api.Get("/students/{student_id}", h.student)
		api.Get("/students/{student_id}/verifications", h.verificationsByStudent)
		api.Get("/students/{student_id}/transfers", h.transfersByStudent)
		api.Get("/students/{student_id}/transfer-history", h.transferHistory)
		api.Get("/verifications/{verification_id}", h.verification)

		api.Get("/equivalences", h.equivalences)
		api.Get("/equivalences/{equivalence_id}", h.equivalenceByID)
		api.Get("/equivalences/{equivalence_id}/analysis", h.analysis)

		api.Get("/transfers/{transfer_id}", h.transferByID)

		api.Get("/curricula", h.curricula)
		api.Get("/curricula/{curriculum_id}", h.curriculumByID)

		api.Get("/content", h.contentByLocator)
	})
	return r
}

func (h handler) engineState(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetEngineState(r.Context())
	respond(w, r, v, err)
}

func (h handler) stats(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.Stats(r.Context())
	respond(w, r, v, err)
}

func (h handler) subject(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetSubject(r.Context(), chi.URLParam(r, "subject_id"))
	respond(w, r, v, err)
}

func (h handler) prerequisites(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetPrerequisites(r.Context(), chi.URLParam(r, "subject_id"))
	respond(w, r, v, err)
}

func (h handler) subjectsByInstitution(w http.ResponseWriter, r *http.Request) {
	req, ok := pageRequest(w, r)
	if !ok {
		return
	}
	v, err := h.reader.ListSubjectsByInstitution(r.Context(), chi.URLParam(r, "institution"), req)
	respond(w, r, v, err)
}

func (h handler) equivalencesByInstitution(w http.ResponseWriter, r *http.Request) {
	req, ok := pageRequest(w, r)
	if !ok {
		return
	}
	v, err := h.reader.ListEquivalencesByInstitution(r.Context(), chi.URLParam(r, "institution"), req)
	respond(w, r, v, err)
}

func (h handler) student(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetStudentRecord(r.Context(), chi.URLParam(r, "student_id"))
	respond(w, r, v, err)
}

func (h handler) verificationsByStudent(w http.ResponseWriter, r *http.Request) {
	req, ok := pageRequest(w, r)
	if !ok {
		return
	}
	v, err := h.reader.ListVerificationsByStudent(r.Context(), chi.URLParam(r, "student_id"), req)
	respond(w, r, v, err)
}

func (h handler) transfersByStudent(w http.ResponseWriter, r *http.Request) {
	req, ok := pageRequest(w, r)
	if !ok {
		return
	}
	v, err := h.reader.ListTransfersByStudent(r.Context(), chi.URLParam(r, "student_id"), req)
	respond(w, r, v, err)
}

func (h handler) transferHistory(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetTransferHistory(r.Context(), chi.URLParam(r, "student_id"))
	respond(w, r, v, err)
}

func (h handler) verification(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetVerification(r.Context(), chi.URLParam(r, "verification_id"))
	respond(w, r, v, err)
}

// equivalences looks up one pair when source and target are given, and
// otherwise lists by status.
func (h handler) equivalences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source, target := strings.TrimSpace(q.Get("source")), strings.TrimSpace(q.Get("target"))
	if source != "" || target != "" {
		v, err := h.reader.GetEquivalenceByPair(r.Context(), source, target)
		respond(w, r, v, err)
		return
	}

	status := equivalence.Status(strings.TrimSpace(q.Get("status")))
	if status == "" {
		status = equivalence.StatusUnderReview
	}
	req, ok := pageRequest(w, r)
	if !ok {
		return
	}
	v, err := h.reader.ListEquivalencesByStatus(r.Context(), status, req)
	respond(w, r, v, err)
}

func (h handler) equivalenceByID(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetEquivalence(r.Context(), chi.URLParam(r, "equivalence_id"))
	respond(w, r, v, err)
}

func (h handler) analysis(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetAnalysis(r.Context(), chi.URLParam(r, "equivalence_id"))
	respond(w, r, v, err)
}

func (h handler) transferByID(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetTransferRequest(r.Context(), chi.URLParam(r, "transfer_id"))
	respond(w, r, v, err)
}

func (h handler) curricula(w http.ResponseWriter, r *http.Request) {
	req, ok := pageRequest(w, r)
	if !ok {
		return
	}
	v, err := h.reader.ListCurricula(r.Context(), req)
	respond(w, r, v, err)
}

func (h handler) curriculumByID(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetCurriculum(r.Context(), chi.URLParam(r, "curriculum_id"))
	respond(w, r, v, err)
}

// contentByLocator takes the locator as a query parameter since locators carry slashes.
func (h handler) contentByLocator(w http.ResponseWriter, r *http.Request) {
	v, err := h.reader.GetContent(r.Context(), r.URL.Query().Get("locator"))
	respond(w, r, v, err)
}

func pageRequest(w http.ResponseWriter, r *http.Request) (academic.PageRequest, bool) {
	q := r.URL.Query()
	req := academic.PageRequest{StartAfter: strings.TrimSpace(q.Get("start_after"))}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, r, errs.E(errInvalidLimit, "limit", raw))
			return academic.PageRequest{}, false
		}
		req.Limit = limit
	}
	return req, true
}

var errInvalidLimit = errs.New(errs.KindInvalidInput, "limit must be a non-negative integer")

// respond writes v on success and a mapped error otherwise.
func respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type errorBody struct {
	Error    string            `json:"error"`
	Kind     errs.Kind         `json:"kind"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logging.Error(r.Context(), "http query failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", errs.Loggable(err)),
		)
	}

	body := errorBody{Error: err.Error(), Kind: kind}
	var coded *errs.Error
	if errors.As(err, &coded) {
		body.Error = coded.Message
		body.Metadata = coded.Metadata
	}
	writeJSON(w, status, body)
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInvalidInput, errs.KindInsufficientData:
		return http.StatusBadRequest
	case errs.KindUnauthorized:
		return http.StatusForbidden
	case errs.KindAlreadyExists, errs.KindAlreadyCompleted, errs.KindAlreadyAnalyzed, errs.KindAlreadyIssued:
		return http.StatusConflict
	case errs.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
