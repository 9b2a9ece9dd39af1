package model

import "gorm.io/datatypes"

type Subject struct {
	SubjectID      string `gorm:"column:subject_id;type:text;primaryKey"`
	Title          string `gorm:"column:title;type:text;not null"`
	Institution    string `gorm:"column:institution;type:text;not null;index:idx_subjects_institution"`
	Credits        int    `gorm:"column:credits;not null"`
	ContentLocator string `gorm:"column:content_locator;type:text;not null;default:''"`
	ContentHash    string `gorm:"column:content_hash;type:text;not null;default:''"`
	Level          string `gorm:"column:level;type:text;not null"`
	Department     string `gorm:"column:department;type:text;not null;default:''"`
	WorkloadHours  int    `gorm:"column:workload_hours;not null;default:0"`
	Semester       string `gorm:"column:semester;type:text;not null;default:''"`
	Language       string `gorm:"column:language;type:text;not null;default:''"`
	CreatedAt      string `gorm:"column:created_at;type:text;not null"`
}

func (Subject) TableName() string {
	return "subjects"
}

type PrerequisiteGroup struct {
	SubjectID                string         `gorm:"column:subject_id;type:text;primaryKey"`
	GroupID                  string         `gorm:"column:group_id;type:text;primaryKey"`
	Position                 int            `gorm:"column:position;not null"`
	GroupType                string         `gorm:"column:group_type;type:text;not null"`
	MinimumCredits           int            `gorm:"column:minimum_credits;not null;default:0"`
	MinimumCompletedSubjects int            `gorm:"column:minimum_completed_subjects;not null;default:0"`
	SubjectIDs               datatypes.JSON `gorm:"column:subject_ids;not null"`
	Logic                    string         `gorm:"column:logic;type:text;not null"`
	Priority                 int            `gorm:"column:priority;not null;default:0"`
	Confidence               int            `gorm:"column:confidence;not null;default:0"`
	ContentLocator           string         `gorm:"column:content_locator;type:text;not null;default:''"`
}

func (PrerequisiteGroup) TableName() string {
	return "prerequisite_groups"
}
