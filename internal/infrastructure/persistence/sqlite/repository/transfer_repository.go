package repository

import (
	"context"
	"time"

	"academictoken/internal/domain/transfer"
	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	"academictoken/internal/ports"
)

func (r *AcademicRepository) CreateTransfer(ctx context.Context, req transfer.Request) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row, err := transferRow(req)
	if err != nil {
		return err
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Storage(err, "create transfer request")
	}
	return nil
}

func (r *AcademicRepository) UpdateTransfer(ctx context.Context, req transfer.Request) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row, err := transferRow(req)
	if err != nil {
		return err
	}
	result := db.Model(&model.TransferRequest{}).
		Where("transfer_id = ?", req.ID).
		Updates(map[string]any{
			"approved_equivalences": row.ApprovedEquivalences,
			"status":                row.Status,
			"processed_at":          row.ProcessedAt,
			"processed_by":          row.ProcessedBy,
			"notes":                 row.Notes,
		})
	if result.Error != nil {
		return errs.Storage(result.Error, "update transfer request")
	}
	if result.RowsAffected == 0 {
		return errs.E(transfer.ErrNotFound, "transfer_id", req.ID)
	}
	return nil
}

func (r *AcademicRepository) GetTransfer(ctx context.Context, transferID string) (transfer.Request, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return transfer.Request{}, err
	}

	var row model.TransferRequest
	if err := db.Where("transfer_id = ?", transferID).Take(&row).Error; err != nil {
		return transfer.Request{}, notFound(err, transfer.ErrNotFound, "query transfer request", "transfer_id", transferID)
	}
	return mapTransfer(row)
}

func (r *AcademicRepository) ListTransfersByStudent(ctx context.Context, studentID string, page ports.Page) ([]transfer.Request, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.TransferRequest
	query := db.Model(&model.TransferRequest{}).Where("student_id = ?", studentID)
	if err := paginate(query, "transfer_id", page).Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query transfer requests")
	}

	items := make([]transfer.Request, 0, len(rows))
	for _, row := range rows {
		item, err := mapTransfer(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *AcademicRepository) AppendTransferHistory(ctx context.Context, studentID string, transferID string, at time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.TransferHistory{
		StudentID:  studentID,
		TransferID: transferID,
		RecordedAt: formatTime(at),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Storage(err, "append transfer history")
	}
	return nil
}

func (r *AcademicRepository) ListTransferHistory(ctx context.Context, studentID string) ([]string, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.TransferHistory
	if err := db.Where("student_id = ?", studentID).Order("entry_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query transfer history")
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TransferID)
	}
	return ids, nil
}

func transferRow(req transfer.Request) (model.TransferRequest, error) {
	subjects, err := encodeJSON(req.SubjectIDs)
	if err != nil {
		return model.TransferRequest{}, err
	}
	requested, err := encodeJSON(req.RequestedEquivalences)
	if err != nil {
		return model.TransferRequest{}, err
	}
	approved, err := encodeJSON(req.ApprovedEquivalences)
	if err != nil {
		return model.TransferRequest{}, err
	}

	return model.TransferRequest{
		TransferID:            req.ID,
		StudentID:             req.StudentID,
		SourceInstitution:     req.SourceInstitution,
		TargetInstitution:     req.TargetInstitution,
		SubjectIDs:            subjects,
		RequestedEquivalences: requested,
		ApprovedEquivalences:  approved,
		Status:                string(req.Status),
		SubmittedAt:           formatTime(req.SubmittedAt),
		ProcessedAt:           formatOptionalTime(req.ProcessedAt),
		ProcessedBy:           req.ProcessedBy,
		Notes:                 req.Notes,
	}, nil
}

func mapTransfer(row model.TransferRequest) (transfer.Request, error) {
	subjects, err := decodeStrings(row.SubjectIDs)
	if err != nil {
		return transfer.Request{}, err
	}
	requested, err := decodeStrings(row.RequestedEquivalences)
	if err != nil {
		return transfer.Request{}, err
	}
	approved, err := decodeStrings(row.ApprovedEquivalences)
	if err != nil {
		return transfer.Request{}, err
	}
	submittedAt, err := parseTime(row.SubmittedAt)
	if err != nil {
		return transfer.Request{}, err
	}
	processedAt, err := parseOptionalTime(row.ProcessedAt)
	if err != nil {
		return transfer.Request{}, err
	}

	return transfer.Request{
		ID:                    row.TransferID,
		StudentID:             row.StudentID,
		SourceInstitution:     row.SourceInstitution,
		TargetInstitution:     row.TargetInstitution,
		SubjectIDs:            subjects,
		RequestedEquivalences: requested,
		ApprovedEquivalences:  approved,
		Status:                transfer.Status(row.Status),
		SubmittedAt:           submittedAt,
		ProcessedAt:           processedAt,
		ProcessedBy:           row.ProcessedBy,
		Notes:                 row.Notes,
	}, nil
}
