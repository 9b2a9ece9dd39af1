package model

import "gorm.io/datatypes"

type Curriculum struct {
	CurriculumID           string         `gorm:"column:curriculum_id;type:text;primaryKey"`
	Name                   string         `gorm:"column:name;type:text;not null;default:''"`
	MinimumCredits         int            `gorm:"column:minimum_credits;not null"`
	RequiredSubjects       datatypes.JSON `gorm:"column:required_subjects;not null"`
	MinimumGPA             *int           `gorm:"column:minimum_gpa"`
	AdditionalRequirements datatypes.JSON `gorm:"column:additional_requirements;not null"`
	UpdatedAt              string         `gorm:"column:updated_at;type:text;not null"`
}

func (Curriculum) TableName() string {
	return "curricula"
}
