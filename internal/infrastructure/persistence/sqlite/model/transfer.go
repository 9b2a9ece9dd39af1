package model

import "gorm.io/datatypes"

type TransferRequest struct {
	TransferID            string         `gorm:"column:transfer_id;type:text;primaryKey"`
	StudentID             string         `gorm:"column:student_id;type:text;not null;index:idx_transfers_student"`
	SourceInstitution     string         `gorm:"column:source_institution;type:text;not null"`
	TargetInstitution     string         `gorm:"column:target_institution;type:text;not null"`
	SubjectIDs            datatypes.JSON `gorm:"column:subject_ids;not null"`
	RequestedEquivalences datatypes.JSON `gorm:"column:requested_equivalences;not null"`
	ApprovedEquivalences  datatypes.JSON `gorm:"column:approved_equivalences;not null"`
	Status                string         `gorm:"column:status;type:text;not null"`
	SubmittedAt           string         `gorm:"column:submitted_at;type:text;not null"`
	ProcessedAt           *string        `gorm:"column:processed_at;type:text"`
	ProcessedBy           string         `gorm:"column:processed_by;type:text;not null;default:''"`
	Notes                 string         `gorm:"column:notes;type:text;not null;default:''"`
}

func (TransferRequest) TableName() string {
	return "transfer_requests"
}

// TransferHistory is the append-only student -> transfer index.
type TransferHistory struct {
	EntryID    uint64 `gorm:"column:entry_id;primaryKey;autoIncrement"`
	StudentID  string `gorm:"column:student_id;type:text;not null;index:idx_transfer_history_student"`
	TransferID string `gorm:"column:transfer_id;type:text;not null"`
	RecordedAt string `gorm:"column:recorded_at;type:text;not null"`
}

func (TransferHistory) TableName() string {
	return "transfer_history"
}
