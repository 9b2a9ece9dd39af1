package repository

import (
	"context"

	"academictoken/internal/domain/curriculum"
	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	"academictoken/internal/ports"
)

func (r *AcademicRepository) CreateCurriculum(ctx context.Context, req curriculum.Requirements) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	taken, err := exists(db, &model.Curriculum{}, "curriculum_id = ?", req.ID)
	if err != nil {
		return errs.Storage(err, "check curriculum")
	}
	if taken {
		return errs.E(curriculum.ErrExists, "curriculum_id", req.ID)
	}

	row, err := curriculumRow(req)
	if err != nil {
		return err
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Storage(err, "create curriculum")
	}
	return nil
}

func (r *AcademicRepository) UpdateCurriculum(ctx context.Context, req curriculum.Requirements) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row, err := curriculumRow(req)
	if err != nil {
		return err
	}
	result := db.Model(&model.Curriculum{}).
		Where("curriculum_id = ?", req.ID).
		Updates(map[string]any{
			"name":                    row.Name,
			"minimum_credits":         row.MinimumCredits,
			"required_subjects":       row.RequiredSubjects,
			"minimum_gpa":             row.MinimumGPA,
			"additional_requirements": row.AdditionalRequirements,
			"updated_at":              row.UpdatedAt,
		})
	if result.Error != nil {
		return errs.Storage(result.Error, "update curriculum")
	}
	if result.RowsAffected == 0 {
		return errs.E(curriculum.ErrNotFound, "curriculum_id", req.ID)
	}
	return nil
}

func (r *AcademicRepository) GetCurriculum(ctx context.Context, curriculumID string) (curriculum.Requirements, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return curriculum.Requirements{}, err
	}

	var row model.Curriculum
	if err := db.Where("curriculum_id = ?", curriculumID).Take(&row).Error; err != nil {
		return curriculum.Requirements{}, notFound(err, curriculum.ErrNotFound, "query curriculum", "curriculum_id", curriculumID)
	}
	return mapCurriculum(row)
}

func (r *AcademicRepository) ListCurricula(ctx context.Context, page ports.Page) ([]curriculum.Requirements, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Curriculum
	if err := paginate(db.Model(&model.Curriculum{}), "curriculum_id", page).Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query curricula")
	}

	items := make([]curriculum.Requirements, 0, len(rows))
	for _, row := range rows {
		item, err := mapCurriculum(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func curriculumRow(req curriculum.Requirements) (model.Curriculum, error) {
	required, err := encodeJSON(req.RequiredSubjects)
	if err != nil {
		return model.Curriculum{}, err
	}
	additional, err := encodeJSON(req.AdditionalRequirements)
	if err != nil {
		return model.Curriculum{}, err
	}

	return model.Curriculum{
		CurriculumID:           req.ID,
		Name:                   req.Name,
		MinimumCredits:         req.MinimumCredits,
		RequiredSubjects:       required,
		MinimumGPA:             req.MinimumGPA,
		AdditionalRequirements: additional,
		UpdatedAt:              formatTime(timeNow()),
	}, nil
}

func mapCurriculum(row model.Curriculum) (curriculum.Requirements, error) {
	required, err := decodeStrings(row.RequiredSubjects)
	if err != nil {
		return curriculum.Requirements{}, err
	}
	additional, err := decodeStrings(row.AdditionalRequirements)
	if err != nil {
		return curriculum.Requirements{}, err
	}

	return curriculum.Requirements{
		ID:                     row.CurriculumID,
		Name:                   row.Name,
		MinimumCredits:         row.MinimumCredits,
		RequiredSubjects:       required,
		MinimumGPA:             row.MinimumGPA,
		AdditionalRequirements: additional,
	}, nil
}
