// Package rendering turns candidate content into PDF documents and extracts text back out.
package rendering

import (
	"embed"
	"strings"
	"text/template"

	"github.com/jonathan/resume-optimizer/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateData represents the data structure passed to the LaTeX template.
// Every string is already escaped.
type TemplateData struct {
	Name           string
	Headline       string
	ContactLine    string
	Summary        string
	Experience     []ExperienceSection
	Education      []EducationSection
	Skills         []SkillLine
	Projects       []ProjectLine
	Certifications string
}

// ExperienceSection represents one role.
type ExperienceSection struct {
	Title    string
	Company  string
	Location string
	Dates    string // e.g., "01/2020 -- Present"
	Bullets  []string
}

// EducationSection represents one degree.
type EducationSection struct {
	Institution string
	Degree      string
	Dates       string
	Details     string
}

// SkillLine is a category with its comma-joined items.
type SkillLine struct {
	Category string
	Items    string
}

// ProjectLine is a single project entry.
type ProjectLine struct {
	Name        string
	Description string
	URL         string
}

// RenderLaTeX renders structured resume data into LaTeX source using the embedded template.
func RenderLaTeX(data types.ResumeData) (string, error) {
	tmpl, err := parseTemplate()
	if err != nil {
		return "", err
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, buildTemplateData(data)); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	return result.String(), nil
}

// parseTemplate parses the LaTeX template. It uses [[ ]] delimiters so LaTeX
// braces never collide with template actions.
func parseTemplate() (*template.Template, error) {
	content, err := templateFS.ReadFile("templates/resume.tex.tmpl")
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to read embedded LaTeX template",
			Cause:   err,
		}
	}

	tmpl, err := template.New("resume").Delims("[[", "]]").Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}

	return tmpl, nil
}

// buildTemplateData escapes and flattens resume data for the template.
func buildTemplateData(d types.ResumeData) TemplateData {
	out := TemplateData{
		Name:        EscapeLaTeX(d.Name),
		Headline:    EscapeLaTeX(d.Headline),
		ContactLine: contactLine(d.Contact),
		Summary:     EscapeLaTeX(d.Summary),
	}

	for _, e := range d.Experience {
		bullets := make([]string, 0, len(e.Bullets))
		for _, b := range e.Bullets {
			if strings.TrimSpace(b) == "" {
				continue
			}
			bullets = append(bullets, EscapeLaTeX(b))
		}
		out.Experience = append(out.Experience, ExperienceSection{
			Title:    EscapeLaTeX(e.Title),
			Company:  EscapeLaTeX(e.Company),
			Location: EscapeLaTeX(e.Location),
			Dates:    formatDateRange(e.Start, e.End),
			Bullets:  bullets,
		})
	}

	for _, e := range d.Education {
		degree := e.Degree
		if e.Field != "" {
			if degree != "" {
				degree += ", "
			}
			degree += e.Field
		}
		out.Education = append(out.Education, EducationSection{
			Institution: EscapeLaTeX(e.Institution),
			Degree:      EscapeLaTeX(degree),
			Dates:       formatDateRange(e.Start, e.End),
			Details:     EscapeLaTeX(e.Details),
		})
	}

	for _, s := range d.Skills {
		if len(s.Items) == 0 {
			continue
		}
		out.Skills = append(out.Skills, SkillLine{
			Category: EscapeLaTeX(s.Category),
			Items:    EscapeLaTeX(strings.Join(s.Items, ", ")),
		})
	}

	for _, p := range d.Projects {
		out.Projects = append(out.Projects, ProjectLine{
			Name:        EscapeLaTeX(p.Name),
			Description: EscapeLaTeX(p.Description),
			URL:         escapeURL(p.URL),
		})
	}

	if len(d.Certifications) > 0 {
		out.Certifications = EscapeLaTeX(strings.Join(d.Certifications, "; "))
	}

	return out
}

func contactLine(c types.Contact) string {
	var parts []string
	for _, v := range []string{c.Email, c.Phone, c.Location} {
		if v != "" {
			parts = append(parts, EscapeLaTeX(v))
		}
	}
	for _, l := range c.Links {
		if l.URL == "" {
			continue
		}
		label := l.Label
		if label == "" {
			label = l.URL
		}
		parts = append(parts, `\href{`+escapeURL(l.URL)+`}{`+EscapeLaTeX(label)+`}`)
	}
	return strings.Join(parts, ` $|$ `)
}

// formatDateRange renders "start -- end", mapping "present" to "Present".
func formatDateRange(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if strings.EqualFold(end, "present") {
		end = "Present"
	}
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return EscapeLaTeX(end)
	case end == "":
		return EscapeLaTeX(start)
	default:
		return EscapeLaTeX(start) + " -- " + EscapeLaTeX(end)
	}
}

// escapeURL escapes the characters hyperref cannot take verbatim inside \url and \href.
func escapeURL(u string) string {
	r := strings.NewReplacer(`%`, `\%`, `#`, `\#`, `{`, ``, `}`, ``, `\`, ``)
	return r.Replace(strings.TrimSpace(u))
}
