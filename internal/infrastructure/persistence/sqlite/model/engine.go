package model

import "gorm.io/datatypes"

// EngineStateRowID is the primary key of the single engine state row.
const EngineStateRowID = 1

type EngineState struct {
	ID                    uint           `gorm:"column:id;primaryKey"`
	Owner                 string         `gorm:"column:owner;type:text;not null"`
	Approvers             datatypes.JSON `gorm:"column:approvers;not null"`
	AutoApprovalThreshold int            `gorm:"column:auto_approval_threshold;not null"`
	TotalEquivalences     int64          `gorm:"column:total_equivalences;not null;default:0"`
	TotalAnalyses         int64          `gorm:"column:total_analyses;not null;default:0"`
	TotalVerifications    int64          `gorm:"column:total_verifications;not null;default:0"`
	TotalTransfers        int64          `gorm:"column:total_transfers;not null;default:0"`
	UpdatedAt             string         `gorm:"column:updated_at;type:text;not null"`
}

func (EngineState) TableName() string {
	return "engine_state"
}

type EngineKV struct {
	Key       string  `gorm:"column:key;type:text;primaryKey"`
	Value     string  `gorm:"column:value;type:text;not null"`
	ExpiresAt *string `gorm:"column:expires_at;type:text"`
	UpdatedAt string  `gorm:"column:updated_at;type:text;not null"`
}

func (EngineKV) TableName() string {
	return "engine_kv"
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&Subject{},
		&PrerequisiteGroup{},
		&Student{},
		&CompletedSubject{},
		&Verification{},
		&Equivalence{},
		&Analysis{},
		&TransferRequest{},
		&TransferHistory{},
		&Curriculum{},
		&EngineState{},
		&EngineKV{},
	}
}
