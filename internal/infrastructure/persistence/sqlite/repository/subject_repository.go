package repository

import (
	"context"

	"gorm.io/gorm"

	"academictoken/internal/domain/academic"
	"academictoken/internal/domain/prerequisite"
	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	"academictoken/internal/ports"
)

func (r *AcademicRepository) CreateSubject(ctx context.Context, subject academic.SubjectInfo) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	taken, err := exists(db, &model.Subject{}, "subject_id = ?", subject.ID)
	if err != nil {
		return errs.Storage(err, "check subject")
	}
	if taken {
		return errs.E(academic.ErrSubjectExists, "subject_id", subject.ID)
	}

	row := model.Subject{
		SubjectID:      subject.ID,
		Title:          subject.Title,
		Institution:    subject.Institution,
		Credits:        subject.Credits,
		ContentLocator: subject.ContentLocator,
		ContentHash:    subject.ContentHash,
		Level:          string(subject.Metadata.Level),
		Department:     subject.Metadata.Department,
		WorkloadHours:  subject.Metadata.WorkloadHours,
		Semester:       subject.Metadata.Semester,
		Language:       subject.Metadata.Language,
		CreatedAt:      formatTime(timeNow()),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Storage(err, "create subject")
	}
	return nil
}

func (r *AcademicRepository) GetSubject(ctx context.Context, subjectID string) (academic.SubjectInfo, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return academic.SubjectInfo{}, err
	}

	var row model.Subject
	if err := db.Where("subject_id = ?", subjectID).Take(&row).Error; err != nil {
		return academic.SubjectInfo{}, notFound(err, academic.ErrSubjectNotFound, "query subject", "subject_id", subjectID)
	}
	return mapSubject(row), nil
}

func (r *AcademicRepository) ListSubjectsByInstitution(ctx context.Context, institution string, page ports.Page) ([]academic.SubjectInfo, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Subject
	query := db.Model(&model.Subject{}).Where("institution = ?", institution)
	if err := paginate(query, "subject_id", page).Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query subjects")
	}

	items := make([]academic.SubjectInfo, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSubject(row))
	}
	return items, nil
}

// ReplacePrerequisites swaps the whole group set of a subject.
func (r *AcademicRepository) ReplacePrerequisites(ctx context.Context, subjectID string, groups []prerequisite.Group) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("subject_id = ?", subjectID).Delete(&model.PrerequisiteGroup{}).Error; err != nil {
		return errs.Storage(err, "delete prerequisite groups")
	}
	if len(groups) == 0 {
		return nil
	}

	rows := make([]model.PrerequisiteGroup, 0, len(groups))
	for i, g := range groups {
		ids, err := encodeJSON(g.SubjectIDs)
		if err != nil {
			return err
		}
		rows = append(rows, model.PrerequisiteGroup{
			SubjectID:                subjectID,
			GroupID:                  g.ID,
			Position:                 i,
			GroupType:                string(g.GroupType),
			MinimumCredits:           g.MinimumCredits,
			MinimumCompletedSubjects: g.MinimumCompletedSubjects,
			SubjectIDs:               ids,
			Logic:                    string(g.Logic),
			Priority:                 g.Priority,
			Confidence:               g.Confidence,
			ContentLocator:           g.ContentLocator,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Storage(err, "insert prerequisite groups")
	}
	return nil
}

func (r *AcademicRepository) ListPrerequisites(ctx context.Context, subjectID string) ([]prerequisite.Group, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return listPrerequisites(db, subjectID)
}

func listPrerequisites(db *gorm.DB, subjectID string) ([]prerequisite.Group, error) {
	var rows []model.PrerequisiteGroup
	if err := db.Where("subject_id = ?", subjectID).Order("position asc").Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query prerequisite groups")
	}

	groups := make([]prerequisite.Group, 0, len(rows))
	for _, row := range rows {
		ids, err := decodeStrings(row.SubjectIDs)
		if err != nil {
			return nil, err
		}
		groups = append(groups, prerequisite.Group{
			ID:                       row.GroupID,
			SubjectID:                row.SubjectID,
			GroupType:                prerequisite.GroupType(row.GroupType),
			MinimumCredits:           row.MinimumCredits,
			MinimumCompletedSubjects: row.MinimumCompletedSubjects,
			SubjectIDs:               ids,
			Logic:                    prerequisite.Logic(row.Logic),
			Priority:                 row.Priority,
			Confidence:               row.Confidence,
			ContentLocator:           row.ContentLocator,
			Position:                 row.Position,
		})
	}
	return groups, nil
}

func mapSubject(row model.Subject) academic.SubjectInfo {
	return academic.SubjectInfo{
		ID:             row.SubjectID,
		Title:          row.Title,
		Institution:    row.Institution,
		Credits:        row.Credits,
		ContentLocator: row.ContentLocator,
		ContentHash:    row.ContentHash,
		Metadata: academic.Metadata{
			Level:         academic.Level(row.Level),
			Department:    row.Department,
			WorkloadHours: row.WorkloadHours,
			Semester:      row.Semester,
			Language:      row.Language,
		},
	}
}
