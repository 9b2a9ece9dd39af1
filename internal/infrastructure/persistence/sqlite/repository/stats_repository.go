package repository

import (
	"context"

	"gorm.io/gorm"

	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	"academictoken/internal/ports"
)

type statusCount struct {
	Status string
	Total  int64
}

func (r *AcademicRepository) CountRecords(ctx context.Context) (ports.RecordCounts, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.RecordCounts{}, err
	}

	var counts ports.RecordCounts
	targets := []struct {
		model any
		dst   *int64
	}{
		{&model.Subject{}, &counts.Subjects},
		{&model.PrerequisiteGroup{}, &counts.PrerequisiteGroups},
		{&model.Student{}, &counts.Students},
		{&model.Verification{}, &counts.Verifications},
		{&model.Equivalence{}, &counts.Equivalences},
		{&model.Analysis{}, &counts.Analyses},
		{&model.TransferRequest{}, &counts.Transfers},
		{&model.Curriculum{}, &counts.Curricula},
	}
	for _, target := range targets {
		if err := db.Model(target.model).Count(target.dst).Error; err != nil {
			return ports.RecordCounts{}, errs.Storage(err, "count records")
		}
	}

	if counts.EquivalenceStatus, err = countByStatus(db, &model.Equivalence{}); err != nil {
		return ports.RecordCounts{}, err
	}
	if counts.TransferStatus, err = countByStatus(db, &model.TransferRequest{}); err != nil {
		return ports.RecordCounts{}, err
	}
	return counts, nil
}

func countByStatus(db *gorm.DB, table any) (map[string]int64, error) {
	var rows []statusCount
	if err := db.Model(table).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, errs.Storage(err, "count by status")
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
