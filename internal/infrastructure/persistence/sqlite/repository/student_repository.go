package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"academictoken/internal/domain/academic"
	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
)

func (r *AcademicRepository) GetStudent(ctx context.Context, studentID string) (academic.StudentRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return academic.StudentRecord{}, err
	}

	var row model.Student
	if err := db.Where("student_id = ?", studentID).Take(&row).Error; err != nil {
		return academic.StudentRecord{}, notFound(err, academic.ErrStudentNotFound, "query student", "student_id", studentID)
	}

	var rows []model.CompletedSubject
	if err := db.Where("student_id = ?", studentID).Order("position asc").Find(&rows).Error; err != nil {
		return academic.StudentRecord{}, errs.Storage(err, "query completed subjects")
	}

	record := academic.StudentRecord{
		StudentID:         row.StudentID,
		CompletedSubjects: make([]academic.CompletedSubject, 0, len(rows)),
		TotalCredits:      row.TotalCredits,
		Revision:          row.Revision,
	}
	for _, c := range rows {
		completedAt, err := parseTime(c.CompletionDate)
		if err != nil {
			return academic.StudentRecord{}, err
		}
		record.CompletedSubjects = append(record.CompletedSubjects, academic.CompletedSubject{
			SubjectID:      c.SubjectID,
			Credits:        c.Credits,
			CompletionDate: completedAt,
			Grade:          c.Grade,
			CredentialRef:  c.CredentialRef,
			ContentLocator: c.ContentLocator,
		})
	}
	return record, nil
}

// SaveStudent upserts the record header and inserts history entries that are
// not stored yet. Stored entries are never rewritten.
func (r *AcademicRepository) SaveStudent(ctx context.Context, record academic.StudentRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Student{
		StudentID:    record.StudentID,
		TotalCredits: record.TotalCredits,
		Revision:     record.Revision,
		UpdatedAt:    formatTime(timeNow()),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_credits": row.TotalCredits,
			"revision":      row.Revision,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Storage(err, "upsert student")
	}

	if len(record.CompletedSubjects) == 0 {
		return nil
	}

	rows := make([]model.CompletedSubject, 0, len(record.CompletedSubjects))
	for i, c := range record.CompletedSubjects {
		rows = append(rows, model.CompletedSubject{
			StudentID:      record.StudentID,
			SubjectID:      c.SubjectID,
			Position:       i,
			Credits:        c.Credits,
			CompletionDate: formatTime(c.CompletionDate),
			Grade:          c.Grade,
			CredentialRef:  c.CredentialRef,
			ContentLocator: c.ContentLocator,
		})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return errs.Storage(err, "insert completed subjects")
	}
	return nil
}
