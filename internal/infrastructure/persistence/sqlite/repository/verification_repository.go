package repository

import (
	"context"

	"academictoken/internal/domain/prerequisite"
	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	"academictoken/internal/ports"
)

func (r *AcademicRepository) CreateVerification(ctx context.Context, v prerequisite.Verification) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	missing, err := encodeJSON(v.MissingPrerequisites)
	if err != nil {
		return err
	}
	satisfied, err := encodeJSON(v.SatisfiedGroups)
	if err != nil {
		return err
	}
	unsatisfied, err := encodeJSON(v.UnsatisfiedGroups)
	if err != nil {
		return err
	}

	row := model.Verification{
		VerificationID:       v.ID,
		StudentID:            v.StudentID,
		SubjectID:            v.SubjectID,
		Eligible:             v.Eligible,
		MissingPrerequisites: missing,
		SatisfiedGroups:      satisfied,
		UnsatisfiedGroups:    unsatisfied,
		VerifiedAt:           formatTime(v.VerifiedAt),
		Rationale:            v.Rationale,
		UsedContent:          v.UsedContent,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Storage(err, "create verification")
	}
	return nil
}

func (r *AcademicRepository) GetVerification(ctx context.Context, verificationID string) (prerequisite.Verification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return prerequisite.Verification{}, err
	}

	var row model.Verification
	if err := db.Where("verification_id = ?", verificationID).Take(&row).Error; err != nil {
		return prerequisite.Verification{}, notFound(err, prerequisite.ErrVerificationNotFound, "query verification", "verification_id", verificationID)
	}
	return mapVerification(row)
}

func (r *AcademicRepository) ListVerificationsByStudent(ctx context.Context, studentID string, page ports.Page) ([]prerequisite.Verification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Verification
	query := db.Model(&model.Verification{}).Where("student_id = ?", studentID)
	if err := paginate(query, "verification_id", page).Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query verifications")
	}

	items := make([]prerequisite.Verification, 0, len(rows))
	for _, row := range rows {
		item, err := mapVerification(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func mapVerification(row model.Verification) (prerequisite.Verification, error) {
	missing, err := decodeStrings(row.MissingPrerequisites)
	if err != nil {
		return prerequisite.Verification{}, err
	}
	satisfied, err := decodeStrings(row.SatisfiedGroups)
	if err != nil {
		return prerequisite.Verification{}, err
	}
	unsatisfied, err := decodeStrings(row.UnsatisfiedGroups)
	if err != nil {
		return prerequisite.Verification{}, err
	}
	verifiedAt, err := parseTime(row.VerifiedAt)
	if err != nil {
		return prerequisite.Verification{}, err
	}

	return prerequisite.Verification{
		ID:                   row.VerificationID,
		StudentID:            row.StudentID,
		SubjectID:            row.SubjectID,
		Eligible:             row.Eligible,
		MissingPrerequisites: missing,
		SatisfiedGroups:      satisfied,
		UnsatisfiedGroups:    unsatisfied,
		VerifiedAt:           verifiedAt,
		Rationale:            row.Rationale,
		UsedContent:          row.UsedContent,
	}, nil
}
