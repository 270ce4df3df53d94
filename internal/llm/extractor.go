// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "JobPosting", "CandidateName")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "string | null"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// JobPostingSchema returns the extraction schema for job postings.
func JobPostingSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobPosting",
		Description: `You are an expert job posting parser. Extract the structured details of the posting below.
Keep requirement wording close to the original text.
EXCLUDE: Application form fields, EEO statements, legal disclaimers, benefits boilerplate.`,
		Fields: []SchemaField{
			{
				Name:        "title",
				Type:        "\"string\"",
				Description: "Job title exactly as posted",
				Required:    true,
			},
			{
				Name:        "company",
				Type:        "\"string\"",
				Description: "Hiring company name",
				Required:    true,
			},
			{
				Name:        "requirements",
				Type:        "[\"string\"]",
				Description: "Required and preferred qualifications, one per item",
				Required:    true,
			},
			{
				Name:        "keywords",
				Type:        "[\"string\"]",
				Description: "Technologies, tools, methodologies and domain terms an ATS would match on",
				Required:    true,
			},
			{
				Name:        "description",
				Type:        "\"string\"",
				Description: "Short summary of the role and its responsibilities",
				Required:    true,
			},
		},
	}
}

// CandidateNameSchema returns the extraction schema for the applicant's name.
func CandidateNameSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "CandidateName",
		Description: `Extract the applicant's name from the top of this resume.
Use null for a part you cannot find. Do not guess from email addresses.`,
		Fields: []SchemaField{
			{
				Name:        "first_name",
				Type:        "\"string\" | null",
				Description: "Given name",
				Required:    true,
			},
			{
				Name:        "last_name",
				Type:        "\"string\" | null",
				Description: "Family name",
				Required:    true,
			},
		},
	}
}
