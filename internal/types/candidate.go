// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// ContentKind names the representation held by a candidate.
type ContentKind string

const (
	// ContentMarkup is an HTML body fragment.
	ContentMarkup ContentKind = "markup"
	// ContentStructured is a ResumeData value rendered through a template.
	ContentStructured ContentKind = "structured"
)

// Content is the candidate's document body. Exactly one variant is set per candidate:
// Markup or Structured.
type Content interface {
	Kind() ContentKind
	// Raw returns the textual form fed back to the rewriter on the next iteration.
	Raw() string
	isContent()
}

// Markup holds an HTML fragment meant for the <body> of the rendered document.
type Markup struct {
	HTML string
}

// Kind implements Content.
func (Markup) Kind() ContentKind { return ContentMarkup }

// Raw implements Content.
func (m Markup) Raw() string { return m.HTML }

func (Markup) isContent() {}

// Structured holds resume data rendered through a fixed template.
type Structured struct {
	Data ResumeData
}

// Kind implements Content.
func (Structured) Kind() ContentKind { return ContentStructured }

// Raw implements Content.
func (s Structured) Raw() string {
	b, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", s.Data)
	}
	return string(b)
}

func (Structured) isContent() {}

// Candidate is one iteration's rewrite attempt. The render fields are empty until
// the render step attaches them through WithRender.
type Candidate struct {
	Content        Content
	Iteration      int
	Changes        []string
	SourceChecksum string

	Text           string
	PDF            []byte
	PageCount      int
	RenderWarnings []string
}

// Raw returns the candidate content as text, or "" when no content is set.
func (c *Candidate) Raw() string {
	if c == nil || c.Content == nil {
		return ""
	}
	return c.Content.Raw()
}

// Rendered reports whether the candidate carries extracted text from a rendered document.
func (c *Candidate) Rendered() bool {
	return c != nil && c.Text != ""
}

// HTML returns the markup body and true when the candidate holds markup.
func (c *Candidate) HTML() (string, bool) {
	if c == nil {
		return "", false
	}
	m, ok := c.Content.(Markup)
	return m.HTML, ok
}

// EvaluationText returns the best available text for content evaluators: the
// extracted document text, then the raw content.
func (c *Candidate) EvaluationText() string {
	if c.Rendered() {
		return c.Text
	}
	if raw := c.Raw(); raw != "" {
		return raw
	}
	return "(no content)"
}

// WithRender returns a copy of the candidate with render output attached.
func (c *Candidate) WithRender(text string, pdf []byte, pageCount int, warnings []string) *Candidate {
	out := *c
	out.Changes = append([]string(nil), c.Changes...)
	out.Text = text
	out.PDF = pdf
	out.PageCount = pageCount
	out.RenderWarnings = append([]string(nil), warnings...)
	return &out
}

// ResumeData is the structured form of a resume.
type ResumeData struct {
	Name           string       `json:"name" validate:"required"`
	Headline       string       `json:"headline,omitempty"`
	Contact        Contact      `json:"contact"`
	Summary        string       `json:"summary,omitempty"`
	Experience     []Experience `json:"experience" validate:"dive"`
	Education      []Education  `json:"education,omitempty" validate:"dive"`
	Skills         []SkillGroup `json:"skills,omitempty"`
	Projects       []Project    `json:"projects,omitempty"`
	Certifications []string     `json:"certifications,omitempty"`
}

// Contact holds the applicant's contact details.
type Contact struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Links    []Link `json:"links,omitempty"`
}

// Link is a labelled URL such as a LinkedIn or GitHub profile.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Experience is a single role.
type Experience struct {
	Company  string   `json:"company" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Location string   `json:"location,omitempty"`
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
	Bullets  []string `json:"bullets"`
}

// Education is a single degree or program.
type Education struct {
	Institution string `json:"institution" validate:"required"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Details     string `json:"details,omitempty"`
}

// SkillGroup is a labelled list of skills.
type SkillGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// Project is a notable project with an optional link.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}
