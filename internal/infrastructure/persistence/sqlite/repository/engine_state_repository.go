package repository

import (
	"context"

	"gorm.io/gorm"

	"academictoken/internal/domain/engine"
	"academictoken/internal/errs"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	"academictoken/internal/ports"
)

// EngineStateRepository stores the single engine state row.
type EngineStateRepository struct {
	db *gorm.DB
}

var _ ports.EngineStateRepository = (*EngineStateRepository)(nil)

func NewEngineStateRepository(db *gorm.DB) *EngineStateRepository {
	return &EngineStateRepository{db: db}
}

func (r *EngineStateRepository) CreateState(ctx context.Context, state engine.State) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	taken, err := exists(db, &model.EngineState{}, "id = ?", model.EngineStateRowID)
	if err != nil {
		return errs.Storage(err, "check engine state")
	}
	if taken {
		return engine.ErrAlreadyInitialized
	}

	row, err := engineStateRow(state)
	if err != nil {
		return err
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Storage(err, "create engine state")
	}
	return nil
}

func (r *EngineStateRepository) GetState(ctx context.Context) (engine.State, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return engine.State{}, err
	}

	var row model.EngineState
	if err := db.Where("id = ?", model.EngineStateRowID).Take(&row).Error; err != nil {
		return engine.State{}, notFound(err, engine.ErrNotInitialized, "query engine state")
	}

	approvers, err := decodeStrings(row.Approvers)
	if err != nil {
		return engine.State{}, err
	}
	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return engine.State{}, err
	}

	return engine.State{
		Owner:                 row.Owner,
		Approvers:             approvers,
		AutoApprovalThreshold: row.AutoApprovalThreshold,
		TotalEquivalences:     row.TotalEquivalences,
		TotalAnalyses:         row.TotalAnalyses,
		TotalVerifications:    row.TotalVerifications,
		TotalTransfers:        row.TotalTransfers,
		UpdatedAt:             updatedAt,
	}, nil
}

func (r *EngineStateRepository) SaveState(ctx context.Context, state engine.State) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row, err := engineStateRow(state)
	if err != nil {
		return err
	}
	result := db.Model(&model.EngineState{}).
		Where("id = ?", model.EngineStateRowID).
		Updates(map[string]any{
			"owner":                   row.Owner,
			"approvers":               row.Approvers,
			"auto_approval_threshold": row.AutoApprovalThreshold,
			"total_equivalences":      row.TotalEquivalences,
			"total_analyses":          row.TotalAnalyses,
			"total_verifications":     row.TotalVerifications,
			"total_transfers":         row.TotalTransfers,
			"updated_at":              row.UpdatedAt,
		})
	if result.Error != nil {
		return errs.Storage(result.Error, "update engine state")
	}
	if result.RowsAffected == 0 {
		return engine.ErrNotInitialized
	}
	return nil
}

func engineStateRow(state engine.State) (model.EngineState, error) {
	approvers, err := encodeJSON(state.Approvers)
	if err != nil {
		return model.EngineState{}, err
	}
	return model.EngineState{
		ID:                    model.EngineStateRowID,
		Owner:                 state.Owner,
		Approvers:             approvers,
		AutoApprovalThreshold: state.AutoApprovalThreshold,
		TotalEquivalences:     state.TotalEquivalences,
		TotalAnalyses:         state.TotalAnalyses,
		TotalVerifications:    state.TotalVerifications,
		TotalTransfers:        state.TotalTransfers,
		UpdatedAt:             formatTime(state.UpdatedAt),
	}, nil
}
