package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mitchellh/mapstructure"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

// Supported parameter types.
const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// ToolParam describes one argument of a tool.
type ToolParam struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// ToolHandler executes a tool call. Returned errors are reported back to the
// model as {"error": ...} rather than aborting the conversation.
type ToolHandler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Tool is a function the model may call mid-generation.
type Tool struct {
	Name        string
	Description string
	Params      []ToolParam
	Handler     ToolHandler
}

func (t Tool) declaration() *genai.FunctionDeclaration {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(t.Params)),
	}
	for _, p := range t.Params {
		schema.Properties[p.Name] = &genai.Schema{
			Type:        schemaType(p.Type),
			Description: p.Description,
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return &genai.FunctionDeclaration{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

func schemaType(p ParamType) genai.Type {
	switch p {
	case ParamInteger:
		return genai.TypeInteger
	case ParamNumber:
		return genai.TypeNumber
	case ParamBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// DecodeArgs decodes tool call arguments into out, a pointer to a struct whose
// fields carry json tags. Numbers arrive as float64 and are converted.
func DecodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to build argument decoder: %w", err)
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}
