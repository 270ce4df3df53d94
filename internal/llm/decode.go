package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-optimizer/internal/schemas"
)

var validate = validator.New()

// Decode parses model output into T. The raw text is cleaned of code fences,
// checked against the named embedded schema when schemaName is non-empty, then
// unmarshalled and checked with validator struct tags. Every failure is a *ParseError.
func Decode[T any](raw string, schemaName string) (T, error) {
	var out T
	target := fmt.Sprintf("%T", out)
	if schemaName != "" {
		target = schemaName
	}

	cleaned := CleanJSONBlock(raw)
	if strings.TrimSpace(cleaned) == "" {
		return out, &ParseError{Target: target, Raw: raw, Cause: ErrEmptyResponse}
	}

	if schemaName != "" {
		if err := schemas.Validate(schemaName, cleaned); err != nil {
			return out, &ParseError{Target: target, Raw: raw, Cause: err}
		}
	}

	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, &ParseError{Target: target, Raw: raw, Cause: err}
	}

	if err := validate.Struct(out); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); !ok {
			return out, &ParseError{Target: target, Raw: raw, Cause: err}
		}
	}

	return out, nil
}
