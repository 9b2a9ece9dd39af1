package model

import "gorm.io/datatypes"

type Verification struct {
	VerificationID       string         `gorm:"column:verification_id;type:text;primaryKey"`
	StudentID            string         `gorm:"column:student_id;type:text;not null;index:idx_verifications_student"`
	SubjectID            string         `gorm:"column:subject_id;type:text;not null"`
	Eligible             bool           `gorm:"column:eligible;not null"`
	MissingPrerequisites datatypes.JSON `gorm:"column:missing_prerequisites;not null"`
	SatisfiedGroups      datatypes.JSON `gorm:"column:satisfied_groups;not null"`
	UnsatisfiedGroups    datatypes.JSON `gorm:"column:unsatisfied_groups;not null"`
	VerifiedAt           string         `gorm:"column:verified_at;type:text;not null"`
	Rationale            string         `gorm:"column:rationale;type:text;not null"`
	UsedContent          bool           `gorm:"column:used_content;not null"`
}

func (Verification) TableName() string {
	return "verifications"
}
