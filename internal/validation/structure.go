package validation

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// ValidateHTML reports whether an HTML resume body has the expected structure,
// with one human-readable issue per problem found.
func ValidateHTML(body string) (bool, []string) {
	v := CheckStructure(body)
	return v.Empty(), v.Messages()
}

// CheckStructure inspects an HTML body for a name header, section headers and scripts.
func CheckStructure(body string) *types.Violations {
	result := &types.Violations{}
	add := func(kind, details string) {
		result.Violations = append(result.Violations, types.Violation{Type: kind, Severity: "error", Details: details})
	}

	if strings.TrimSpace(body) == "" {
		add(types.ViolationEmpty, "Resume content is empty")
		return result
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		add(types.ViolationEmpty, fmt.Sprintf("Resume HTML could not be parsed: %v", err))
		return result
	}

	if doc.Find("script").Length() > 0 {
		add(types.ViolationScript, "Contains <script> tag")
	}

	if strings.TrimSpace(doc.Find("body").Text()) == "" {
		add(types.ViolationEmpty, "Resume content is empty")
		return result
	}

	if doc.Find("h1, .name").Length() == 0 {
		add(types.ViolationMissingName, "Missing name header (h1)")
	}

	if doc.Find("h2, h3, .section-title").Length() == 0 {
		add(types.ViolationMissingSections, "Missing section headers (h2/h3)")
	}

	return result
}

var dataValidator = validator.New()

// CheckData inspects structured resume data for required fields and at least one section.
func CheckData(data types.ResumeData) *types.Violations {
	result := &types.Violations{}

	if err := dataValidator.Struct(data); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				result.Violations = append(result.Violations, types.Violation{
					Type:     types.ViolationMissingField,
					Severity: "error",
					Details:  fmt.Sprintf("Missing required field: %s", fe.Namespace()),
				})
			}
		}
	}

	if len(data.Experience) == 0 && len(data.Education) == 0 && len(data.Skills) == 0 && len(data.Projects) == 0 {
		result.Violations = append(result.Violations, types.Violation{
			Type:     types.ViolationMissingSections,
			Severity: "error",
			Details:  "Resume has no experience, education, skills or projects",
		})
	}

	return result
}

// plainText returns the visible text of an HTML body, or the input when it cannot be parsed.
func plainText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	doc.Find("script, style").Remove()
	doc.Find("h1, h2, h3, h4, p, li, div, br").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return doc.Text()
}
