package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	case "text", "txt", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// Sections is the language-dependent part of a syllabus.
type Sections struct {
	Title            string   `json:"title,omitempty" yaml:"title,omitempty"`
	Summary          string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Topics           []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	LearningOutcomes []string `json:"learning_outcomes,omitempty" yaml:"learning_outcomes,omitempty"`
}

// Document is a cached syllabus or curriculum document.
type Document struct {
	Locator  string `json:"locator"`
	Hash     string `json:"hash"`
	Format   Format `json:"format"`
	Language string `json:"language,omitempty"`
	Sections
	Bibliography  []string            `json:"bibliography,omitempty"`
	Prerequisites []string            `json:"prerequisites,omitempty"`
	WorkloadHours int                 `json:"workload_hours,omitempty"`
	Translations  map[string]Sections `json:"translations,omitempty"`
	CachedAt      time.Time           `json:"cached_at"`
	Size          int                 `json:"size"`
}

// HashBytes returns the hex sha256 digest used to bind subjects to documents.
func HashBytes(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Analyzable reports whether the document carries enough text to compare.
func (d Document) Analyzable() bool {
	return strings.TrimSpace(d.Summary) != "" || len(d.Topics) > 0 || len(d.LearningOutcomes) > 0
}

// Text joins the comparable sections.
func (d Document) Text() string {
	parts := make([]string, 0, 1+len(d.Topics)+len(d.LearningOutcomes))
	parts = append(parts, d.Summary)
	parts = append(parts, d.Topics...)
	parts = append(parts, d.LearningOutcomes...)
	return strings.Join(parts, " ")
}

func (d Document) WordCount() int {
	return len(strings.Fields(d.Text()))
}

// FieldsPresent counts populated optional fields out of FieldCount.
func (d Document) FieldsPresent() int {
	present := 0
	for _, ok := range []bool{
		strings.TrimSpace(d.Summary) != "",
		len(d.Topics) > 0,
		len(d.LearningOutcomes) > 0,
		len(d.Bibliography) > 0,
		len(d.Prerequisites) > 0,
		d.WorkloadHours > 0,
		strings.TrimSpace(d.Language) != "",
	} {
		if ok {
			present++
		}
	}
	return present
}

const FieldCount = 7

// SectionKinds lists which comparable sections are populated.
func (d Document) SectionKinds() []string {
	kinds := make([]string, 0, 5)
	if strings.TrimSpace(d.Summary) != "" {
		kinds = append(kinds, "summary")
	}
	if len(d.Topics) > 0 {
		kinds = append(kinds, "topics")
	}
	if len(d.LearningOutcomes) > 0 {
		kinds = append(kinds, "outcomes")
	}
	if len(d.Bibliography) > 0 {
		kinds = append(kinds, "bibliography")
	}
	if len(d.Prerequisites) > 0 {
		kinds = append(kinds, "prerequisites")
	}
	return kinds
}

// Localized returns the sections in lang when a translation exists.
func (d Document) Localized(lang string) Sections {
	if lang == "" || strings.EqualFold(lang, d.Language) {
		return d.Sections
	}
	if s, ok := d.Translations[strings.ToLower(lang)]; ok {
		return s
	}
	return d.Sections
}
