package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"academictoken/internal/domain/academic"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	"academictoken/internal/ports"
)

type subjectSnapshot struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Institution    string `json:"institution"`
	Credits        int    `json:"credits"`
	ContentLocator string `json:"content_locator,omitempty"`
	ContentHash    string `json:"content_hash,omitempty"`
	Level          string `json:"level"`
	Department     string `json:"department,omitempty"`
	WorkloadHours  int    `json:"workload_hours,omitempty"`
	Semester       string `json:"semester,omitempty"`
	Language       string `json:"language,omitempty"`
}

func snapshotOf(s academic.SubjectInfo) subjectSnapshot {
	return subjectSnapshot{
		ID:             s.ID,
		Title:          s.Title,
		Institution:    s.Institution,
		Credits:        s.Credits,
		ContentLocator: s.ContentLocator,
		ContentHash:    s.ContentHash,
		Level:          string(s.Metadata.Level),
		Department:     s.Metadata.Department,
		WorkloadHours:  s.Metadata.WorkloadHours,
		Semester:       s.Metadata.Semester,
		Language:       s.Metadata.Language,
	}
}

func (s subjectSnapshot) subject() academic.SubjectInfo {
	return academic.SubjectInfo{
		ID:             s.ID,
		Title:          s.Title,
		Institution:    s.Institution,
		Credits:        s.Credits,
		ContentLocator: s.ContentLocator,
		ContentHash:    s.ContentHash,
		Metadata: academic.Metadata{
			Level:         academic.Level(s.Level),
			Department:    s.Department,
			WorkloadHours: s.WorkloadHours,
			Semester:      s.Semester,
			Language:      s.Language,
		},
	}
}

func (r *AcademicRepository) CreateEquivalence(ctx context.Context, eq equivalence.Equivalence) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	taken, err := exists(db, &model.Equivalence{}, "source_subject_id = ? AND target_subject_id = ?", eq.Source.ID, eq.Target.ID)
	if err != nil {
		return errs.Storage(err, "check equivalence pair")
	}
	if taken {
		return errs.E(equivalence.ErrDuplicatePair, "source_subject_id", eq.Source.ID, "target_subject_id", eq.Target.ID)
	}

	row, err := equivalenceRow(eq)
	if err != nil {
		return err
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Storage(err, "create equivalence")
	}
	return nil
}

func (r *AcademicRepository) UpdateEquivalence(ctx context.Context, eq equivalence.Equivalence) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row, err := equivalenceRow(eq)
	if err != nil {
		return err
	}
	result := db.Model(&model.Equivalence{}).
		Where("equivalence_id = ?", eq.ID).
		Updates(map[string]any{
			"equivalence_type":      row.EquivalenceType,
			"similarity_percentage": row.SimilarityPercentage,
			"status":                row.Status,
			"analysis_method":       row.AnalysisMethod,
			"approved_at":           row.ApprovedAt,
			"approved_by":           row.ApprovedBy,
			"notes":                 row.Notes,
			"confidence_score":      row.ConfidenceScore,
		})
	if result.Error != nil {
		return errs.Storage(result.Error, "update equivalence")
	}
	if result.RowsAffected == 0 {
		return errs.E(equivalence.ErrNotFound, "equivalence_id", eq.ID)
	}
	return nil
}

func (r *AcademicRepository) GetEquivalence(ctx context.Context, equivalenceID string) (equivalence.Equivalence, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return equivalence.Equivalence{}, err
	}

	var row model.Equivalence
	if err := db.Where("equivalence_id = ?", equivalenceID).Take(&row).Error; err != nil {
		return equivalence.Equivalence{}, notFound(err, equivalence.ErrNotFound, "query equivalence", "equivalence_id", equivalenceID)
	}
	return mapEquivalence(row)
}

func (r *AcademicRepository) GetEquivalenceByPair(ctx context.Context, sourceSubjectID string, targetSubjectID string) (equivalence.Equivalence, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return equivalence.Equivalence{}, err
	}

	var row model.Equivalence
	if err := db.
		Where("source_subject_id = ? AND target_subject_id = ?", sourceSubjectID, targetSubjectID).
		Take(&row).Error; err != nil {
		return equivalence.Equivalence{}, notFound(err, equivalence.ErrNotFound, "query equivalence pair",
			"source_subject_id", sourceSubjectID, "target_subject_id", targetSubjectID)
	}
	return mapEquivalence(row)
}

// ListEquivalencesByInstitution returns records where the institution is on
// either side of the pair.
func (r *AcademicRepository) ListEquivalencesByInstitution(ctx context.Context, institution string, page ports.Page) ([]equivalence.Equivalence, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Equivalence{}).
		Where("source_institution = ? OR target_institution = ?", institution, institution)
	return findEquivalences(paginate(query, "equivalence_id", page))
}

func (r *AcademicRepository) ListEquivalencesByStatus(ctx context.Context, status equivalence.Status, page ports.Page) ([]equivalence.Equivalence, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Equivalence{}).Where("status = ?", string(status))
	return findEquivalences(paginate(query, "equivalence_id", page))
}

func (r *AcademicRepository) SaveAnalysis(ctx context.Context, result equivalence.AnalysisResult) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	raw, err := encodeJSON(result)
	if err != nil {
		return err
	}
	row := model.Analysis{
		EquivalenceID:   result.EquivalenceID,
		Mode:            string(result.Mode),
		OverallScore:    result.OverallScore,
		RecommendedType: string(result.RecommendedType),
		ConfidenceScore: result.ConfidenceScore,
		Result:          raw,
		AnalyzedAt:      formatTime(result.AnalyzedAt),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "equivalence_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mode", "overall_score", "recommended_type", "confidence_score", "result", "analyzed_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Storage(err, "upsert analysis")
	}
	return nil
}

func (r *AcademicRepository) GetAnalysis(ctx context.Context, equivalenceID string) (equivalence.AnalysisResult, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return equivalence.AnalysisResult{}, err
	}

	var row model.Analysis
	if err := db.Where("equivalence_id = ?", equivalenceID).Take(&row).Error; err != nil {
		return equivalence.AnalysisResult{}, notFound(err, equivalence.ErrAnalysisNotFound, "query analysis", "equivalence_id", equivalenceID)
	}

	var result equivalence.AnalysisResult
	if err := json.Unmarshal(row.Result, &result); err != nil {
		return equivalence.AnalysisResult{}, errs.Wrap(err, "decode analysis result")
	}
	return result, nil
}

func findEquivalences(query *gorm.DB) ([]equivalence.Equivalence, error) {
	var rows []model.Equivalence
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query equivalences")
	}

	items := make([]equivalence.Equivalence, 0, len(rows))
	for _, row := range rows {
		item, err := mapEquivalence(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func equivalenceRow(eq equivalence.Equivalence) (model.Equivalence, error) {
	source, err := encodeJSON(snapshotOf(eq.Source))
	if err != nil {
		return model.Equivalence{}, err
	}
	target, err := encodeJSON(snapshotOf(eq.Target))
	if err != nil {
		return model.Equivalence{}, err
	}

	return model.Equivalence{
		EquivalenceID:        eq.ID,
		SourceSubjectID:      eq.Source.ID,
		TargetSubjectID:      eq.Target.ID,
		SourceInstitution:    eq.Source.Institution,
		TargetInstitution:    eq.Target.Institution,
		Source:               source,
		Target:               target,
		EquivalenceType:      string(eq.Type),
		SimilarityPercentage: eq.SimilarityPercentage,
		Status:               string(eq.Status),
		AnalysisMethod:       string(eq.Method),
		CreatedAt:            formatTime(eq.CreatedAt),
		ApprovedAt:           formatOptionalTime(eq.ApprovedAt),
		ApprovedBy:           eq.ApprovedBy,
		Notes:                eq.Notes,
		ConfidenceScore:      eq.ConfidenceScore,
	}, nil
}

func mapEquivalence(row model.Equivalence) (equivalence.Equivalence, error) {
	var source, target subjectSnapshot
	if err := json.Unmarshal(row.Source, &source); err != nil {
		return equivalence.Equivalence{}, errs.Wrap(err, "decode source subject")
	}
	if err := json.Unmarshal(row.Target, &target); err != nil {
		return equivalence.Equivalence{}, errs.Wrap(err, "decode target subject")
	}
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return equivalence.Equivalence{}, err
	}
	approvedAt, err := parseOptionalTime(row.ApprovedAt)
	if err != nil {
		return equivalence.Equivalence{}, err
	}

	return equivalence.Equivalence{
		ID:                   row.EquivalenceID,
		Source:               source.subject(),
		Target:               target.subject(),
		Type:                 equivalence.Type(row.EquivalenceType),
		SimilarityPercentage: row.SimilarityPercentage,
		Status:               equivalence.Status(row.Status),
		Method:               equivalence.Method(row.AnalysisMethod),
		CreatedAt:            createdAt,
		ApprovedAt:           approvedAt,
		ApprovedBy:           row.ApprovedBy,
		Notes:                row.Notes,
		ConfidenceScore:      row.ConfidenceScore,
	}, nil
}
