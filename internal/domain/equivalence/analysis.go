package equivalence

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"academictoken/internal/domain/academic"
	"academictoken/internal/domain/content"
)

type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeEnhanced Mode = "enhanced"
)

// Factors holds the per-factor scores, each on a 0..100 scale. The enhanced
// factors stay zero in basic mode.
type Factors struct {
	Content      int `json:"content_similarity"`
	Structural   int `json:"structural_similarity"`
	Credit       int `json:"credit_compatibility"`
	Level        int `json:"level_compatibility"`
	Language     int `json:"language_compatibility,omitempty"`
	Depth        int `json:"content_depth,omitempty"`
	Prerequisite int `json:"prerequisite_alignment,omitempty"`
	Outcomes     int `json:"learning_outcome_alignment,omitempty"`
	Workload     int `json:"workload_compatibility,omitempty"`
	Bibliography int `json:"bibliography_overlap,omitempty"`
}

type QualityMetrics struct {
	OverallQuality   int `json:"overall_quality"`
	Completeness     int `json:"completeness"`
	Confidence       int `json:"confidence"`
	DataAvailability int `json:"data_availability"`
	LanguageQuality  int `json:"language_quality"`
}

type AnalysisResult struct {
	EquivalenceID   string         `json:"equivalence_id"`
	Mode            Mode           `json:"mode"`
	Factors         Factors        `json:"factors"`
	OverallScore    int            `json:"overall_score"`
	RecommendedType Type           `json:"recommended_type"`
	ConfidenceScore int            `json:"confidence_score"`
	Quality         QualityMetrics `json:"quality"`
	Recommendations []string       `json:"recommendations"`
	AnalyzedAt      time.Time      `json:"analyzed_at"`
}

// Weights are percentages and sum to 100 in each mode.
type Weights struct {
	Content      int
	Structural   int
	Credit       int
	Level        int
	Language     int
	Depth        int
	Prerequisite int
	Outcomes     int
	Workload     int
	Bibliography int
}

var (
	BasicWeights = Weights{Content: 40, Structural: 20, Credit: 25, Level: 15}

	EnhancedWeights = Weights{
		Content:      25,
		Structural:   10,
		Credit:       15,
		Level:        10,
		Language:     10,
		Depth:        5,
		Prerequisite: 5,
		Outcomes:     10,
		Workload:     5,
		Bibliography: 5,
	}
)

func WeightsFor(mode Mode) (Weights, error) {
	switch mode {
	case ModeBasic:
		return BasicWeights, nil
	case ModeEnhanced:
		return EnhancedWeights, nil
	default:
		return Weights{}, fmt.Errorf("%w: unknown mode %q", ErrScoringFailed, mode)
	}
}

// Overall folds factors into the weighted mean, rounded half up.
func Overall(f Factors, w Weights) int {
	sum := w.Content*f.Content +
		w.Structural*f.Structural +
		w.Credit*f.Credit +
		w.Level*f.Level +
		w.Language*f.Language +
		w.Depth*f.Depth +
		w.Prerequisite*f.Prerequisite +
		w.Outcomes*f.Outcomes +
		w.Workload*f.Workload +
		w.Bibliography*f.Bibliography
	return (sum + 50) / 100
}

// Recommend maps an overall score onto an equivalence type.
func Recommend(score int) Type {
	switch {
	case score >= 90:
		return TypeFull
	case score >= 60:
		return TypePartial
	case score >= 30:
		return TypeConditional
	default:
		return TypeNone
	}
}

// Analyze scores two subjects using their cached documents.
func Analyze(source, target academic.SubjectInfo, sourceDoc, targetDoc content.Document, mode Mode, now time.Time) (AnalysisResult, error) {
	if source.ID == target.ID {
		return AnalysisResult{}, ErrSelfEquivalence
	}
	if source.ContentHash != "" && sourceDoc.Hash != source.ContentHash {
		return AnalysisResult{}, fmt.Errorf("%w: subject %s", ErrContentHashChanged, source.ID)
	}
	if target.ContentHash != "" && targetDoc.Hash != target.ContentHash {
		return AnalysisResult{}, fmt.Errorf("%w: subject %s", ErrContentHashChanged, target.ID)
	}
	if !sourceDoc.Analyzable() || !targetDoc.Analyzable() {
		return AnalysisResult{}, ErrInsufficientData
	}

	weights, err := WeightsFor(mode)
	if err != nil {
		return AnalysisResult{}, err
	}

	f := Factors{
		Content:    content.Dice(content.Tokens(sourceDoc.Text()), content.Tokens(targetDoc.Text())),
		Structural: structuralScore(sourceDoc, targetDoc),
		Credit:     content.Ratio(source.Credits, target.Credits),
		Level:      levelScore(source.Metadata.Level, target.Metadata.Level),
	}
	measured := []bool{true, true, true, source.Metadata.Level.Rank() > 0 && target.Metadata.Level.Rank() > 0}

	srcLang, tgtLang := languageOf(source, sourceDoc), languageOf(target, targetDoc)
	srcHours, tgtHours := workloadOf(source, sourceDoc), workloadOf(target, targetDoc)

	if mode == ModeEnhanced {
		f.Language = LanguageScore(srcLang, tgtLang)
		f.Depth = content.Ratio(depthOf(sourceDoc), depthOf(targetDoc))
		f.Prerequisite = prerequisiteScore(sourceDoc.Prerequisites, targetDoc.Prerequisites)
		f.Outcomes = content.Dice(content.Tokens(sourceDoc.LearningOutcomes...), content.Tokens(targetDoc.LearningOutcomes...))
		f.Workload = content.Ratio(srcHours, tgtHours)
		f.Bibliography = content.Dice(content.Normalized(sourceDoc.Bibliography), content.Normalized(targetDoc.Bibliography))
		measured = append(measured,
			srcLang != "" && tgtLang != "",
			true,
			true,
			len(sourceDoc.LearningOutcomes) > 0 && len(targetDoc.LearningOutcomes) > 0,
			srcHours > 0 && tgtHours > 0,
			len(sourceDoc.Bibliography) > 0 && len(targetDoc.Bibliography) > 0,
		)
	}

	overall := Overall(f, weights)
	availability := roundShare(sourceDoc.FieldsPresent()+targetDoc.FieldsPresent(), 2*content.FieldCount)
	confidence := (overall*availability + 50) / 100

	computed := 0
	for _, ok := range measured {
		if ok {
			computed++
		}
	}
	completeness := roundShare(computed, len(measured))

	languageQuality := f.Language
	if mode == ModeBasic {
		languageQuality = LanguageScore(srcLang, tgtLang)
	}

	return AnalysisResult{
		Mode:            mode,
		Factors:         f,
		OverallScore:    overall,
		RecommendedType: Recommend(overall),
		ConfidenceScore: confidence,
		Quality: QualityMetrics{
			OverallQuality:   (completeness + availability + confidence + 1) / 3,
			Completeness:     completeness,
			Confidence:       confidence,
			DataAvailability: availability,
			LanguageQuality:  languageQuality,
		},
		Recommendations: recommendations(mode, f, availability),
		AnalyzedAt:      now,
	}, nil
}

func structuralScore(a, b content.Document) int {
	if len(a.Topics) > 0 && len(b.Topics) > 0 {
		return content.Dice(content.Normalized(a.Topics), content.Normalized(b.Topics))
	}
	return content.Dice(content.Normalized(a.SectionKinds()), content.Normalized(b.SectionKinds()))
}

func levelScore(a, b academic.Level) int {
	ra, rb := a.Rank(), b.Rank()
	if ra == 0 || rb == 0 {
		return 0
	}
	switch d := ra - rb; {
	case d == 0:
		return 100
	case d == 1 || d == -1:
		return 50
	default:
		return 0
	}
}

// LanguageScore rates how well two BCP 47 tags match. Unknown tags score 50.
func LanguageScore(a, b string) int {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 50
	}
	ta, err := language.Parse(a)
	if err != nil {
		return 50
	}
	tb, err := language.Parse(b)
	if err != nil {
		return 50
	}

	_, _, conf := language.NewMatcher([]language.Tag{ta}).Match(tb)
	switch conf {
	case language.Exact:
		return 100
	case language.High:
		return 75
	case language.Low:
		return 50
	default:
		return 0
	}
}

func languageOf(s academic.SubjectInfo, d content.Document) string {
	if strings.TrimSpace(d.Language) != "" {
		return d.Language
	}
	return s.Metadata.Language
}

func workloadOf(s academic.SubjectInfo, d content.Document) int {
	if d.WorkloadHours > 0 {
		return d.WorkloadHours
	}
	return s.Metadata.WorkloadHours
}

func depthOf(d content.Document) int {
	return len(d.Topics) + len(d.LearningOutcomes) + d.WordCount()/100
}

func prerequisiteScore(a, b []string) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	return content.Dice(content.Tokens(a...), content.Tokens(b...))
}

func roundShare(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

func recommendations(mode Mode, f Factors, availability int) []string {
	out := []string{}
	if f.Credit < 70 {
		out = append(out, "credit loads differ; consider a partial credit transfer")
	}
	if f.Level < 50 {
		out = append(out, "academic levels differ by more than one step")
	}
	if availability < 60 {
		out = append(out, "cache richer syllabus content before relying on this score")
	}
	if mode != ModeEnhanced {
		return out
	}
	if f.Language < 50 {
		out = append(out, "languages differ; review translated learning outcomes")
	}
	if f.Outcomes < 50 {
		out = append(out, "learning outcomes diverge; compare assessment criteria")
	}
	if f.Workload < 50 {
		out = append(out, "verify workload hours manually")
	}
	if f.Bibliography < 30 {
		out = append(out, "bibliographies barely overlap; check reference material")
	}
	return out
}
