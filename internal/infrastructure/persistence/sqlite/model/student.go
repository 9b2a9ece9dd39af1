package model

type Student struct {
	StudentID    string `gorm:"column:student_id;type:text;primaryKey"`
	TotalCredits int    `gorm:"column:total_credits;not null;default:0"`
	Revision     int64  `gorm:"column:revision;not null;default:0"`
	UpdatedAt    string `gorm:"column:updated_at;type:text;not null"`
}

func (Student) TableName() string {
	return "students"
}

type CompletedSubject struct {
	StudentID      string `gorm:"column:student_id;type:text;primaryKey"`
	SubjectID      string `gorm:"column:subject_id;type:text;primaryKey"`
	Position       int    `gorm:"column:position;not null"`
	Credits        int    `gorm:"column:credits;not null"`
	CompletionDate string `gorm:"column:completion_date;type:text;not null"`
	Grade          int    `gorm:"column:grade;not null"`
	CredentialRef  string `gorm:"column:credential_ref;type:text;not null;default:''"`
	ContentLocator string `gorm:"column:content_locator;type:text;not null;default:''"`
}

func (CompletedSubject) TableName() string {
	return "completed_subjects"
}
