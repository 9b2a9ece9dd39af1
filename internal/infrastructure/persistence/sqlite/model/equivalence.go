package model

import "gorm.io/datatypes"

// Equivalence keeps JSON copies of both subjects as they were at registration.
type Equivalence struct {
	EquivalenceID        string         `gorm:"column:equivalence_id;type:text;primaryKey"`
	SourceSubjectID      string         `gorm:"column:source_subject_id;type:text;not null;uniqueIndex:idx_equivalences_pair,priority:1"`
	TargetSubjectID      string         `gorm:"column:target_subject_id;type:text;not null;uniqueIndex:idx_equivalences_pair,priority:2"`
	SourceInstitution    string         `gorm:"column:source_institution;type:text;not null;index:idx_equivalences_source_institution"`
	TargetInstitution    string         `gorm:"column:target_institution;type:text;not null;index:idx_equivalences_target_institution"`
	Source               datatypes.JSON `gorm:"column:source;not null"`
	Target               datatypes.JSON `gorm:"column:target;not null"`
	EquivalenceType      string         `gorm:"column:equivalence_type;type:text;not null"`
	SimilarityPercentage int            `gorm:"column:similarity_percentage;not null;default:0"`
	Status               string         `gorm:"column:status;type:text;not null;index:idx_equivalences_status"`
	AnalysisMethod       string         `gorm:"column:analysis_method;type:text;not null"`
	CreatedAt            string         `gorm:"column:created_at;type:text;not null"`
	ApprovedAt           *string        `gorm:"column:approved_at;type:text"`
	ApprovedBy           string         `gorm:"column:approved_by;type:text;not null;default:''"`
	Notes                string         `gorm:"column:notes;type:text;not null;default:''"`
	ConfidenceScore      int            `gorm:"column:confidence_score;not null;default:0"`
}

func (Equivalence) TableName() string {
	return "equivalences"
}

type Analysis struct {
	EquivalenceID   string         `gorm:"column:equivalence_id;type:text;primaryKey"`
	Mode            string         `gorm:"column:mode;type:text;not null"`
	OverallScore    int            `gorm:"column:overall_score;not null"`
	RecommendedType string         `gorm:"column:recommended_type;type:text;not null"`
	ConfidenceScore int            `gorm:"column:confidence_score;not null"`
	Result          datatypes.JSON `gorm:"column:result;not null"`
	AnalyzedAt      string         `gorm:"column:analyzed_at;type:text;not null"`
}

func (Analysis) TableName() string {
	return "analyses"
}
