package academic

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"academictoken/internal/domain/content"
	"academictoken/internal/errs"
)

type syllabusFile struct {
	content.Sections `yaml:",inline"`
	Language         string                      `yaml:"language"`
	Bibliography     []string                    `yaml:"bibliography"`
	Prerequisites    []string                    `yaml:"prerequisites"`
	WorkloadHours    int                         `yaml:"workload_hours"`
	Translations     map[string]content.Sections `yaml:"translations"`
}

// detectFormat picks the declared format, falling back to the locator's extension.
func detectFormat(declared string, locator string) (content.Format, error) {
	if strings.TrimSpace(declared) != "" {
		return content.ParseFormat(declared)
	}
	ext := strings.TrimPrefix(path.Ext(locator), ".")
	switch strings.ToLower(ext) {
	case "yaml", "yml", "json", "html", "htm":
		return content.ParseFormat(ext)
	default:
		return content.FormatText, nil
	}
}

func decodeDocument(format content.Format, raw []byte) (content.Document, error) {
	var (
		doc content.Document
		err error
	)
	switch format {
	case content.FormatYAML, content.FormatJSON:
		doc, err = decodeStructured(raw)
	case content.FormatHTML:
		doc, err = decodeHTML(raw)
	case content.FormatText:
		doc = decodeText(raw)
	default:
		return content.Document{}, fmt.Errorf("%w: %q", content.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return content.Document{}, err
	}
	doc.Format = format
	return doc, nil
}

// decodeStructured reads YAML, which also accepts JSON documents.
func decodeStructured(raw []byte) (content.Document, error) {
	var file syllabusFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return content.Document{}, errs.E(content.ErrUnsupportedFormat, "cause", err.Error())
	}

	translations := make(map[string]content.Sections, len(file.Translations))
	for lang, sections := range file.Translations {
		translations[strings.ToLower(strings.TrimSpace(lang))] = sections
	}

	return content.Document{
		Language:      strings.TrimSpace(file.Language),
		Sections:      file.Sections,
		Bibliography:  file.Bibliography,
		Prerequisites: file.Prerequisites,
		WorkloadHours: file.WorkloadHours,
		Translations:  translations,
	}, nil
}

// decodeHTML maps h2 sections onto document fields by heading keyword.
func decodeHTML(raw []byte) (content.Document, error) {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return content.Document{}, errs.E(content.ErrUnsupportedFormat, "cause", err.Error())
	}

	doc := content.Document{
		Language: strings.TrimSpace(page.Find("html").AttrOr("lang", "")),
	}
	doc.Title = collapse(page.Find("h1").First().Text())
	if doc.Title == "" {
		doc.Title = collapse(page.Find("title").First().Text())
	}
	doc.Summary = collapse(page.Find(`meta[name="description"]`).AttrOr("content", ""))
	if doc.Summary == "" {
		doc.Summary = collapse(page.Find("p").First().Text())
	}
	if hours, err := strconv.Atoi(strings.TrimSpace(page.Find(`meta[name="workload-hours"]`).AttrOr("content", ""))); err == nil {
		doc.WorkloadHours = hours
	}

	page.Find("h2").Each(func(_ int, heading *goquery.Selection) {
		var items []string
		heading.NextUntil("h2").Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := collapse(li.Text()); text != "" {
				items = append(items, text)
			}
		})

		title := strings.ToLower(heading.Text())
		switch {
		case strings.Contains(title, "prerequisite"):
			doc.Prerequisites = append(doc.Prerequisites, items...)
		case strings.Contains(title, "outcome"):
			doc.LearningOutcomes = append(doc.LearningOutcomes, items...)
		case strings.Contains(title, "bibliograph"), strings.Contains(title, "reading"):
			doc.Bibliography = append(doc.Bibliography, items...)
		case strings.Contains(title, "topic"), strings.Contains(title, "content"):
			doc.Topics = append(doc.Topics, items...)
		}
	})
	return doc, nil
}

// decodeText treats the first line as the title, "- " lines as topics and
// everything else as summary.
func decodeText(raw []byte) content.Document {
	var (
		doc     content.Document
		summary []string
	)
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), len(raw)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case doc.Title == "":
			doc.Title = line
		case strings.HasPrefix(line, "- "):
			doc.Topics = append(doc.Topics, strings.TrimSpace(strings.TrimPrefix(line, "- ")))
		default:
			summary = append(summary, line)
		}
	}
	doc.Summary = strings.Join(summary, " ")
	return doc
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
