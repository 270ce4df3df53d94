// Package prompts holds the optimizer, evaluator and parsing prompts. Each file
// is a JSON object of named templates embedded at compile time; callers address
// a template through a typed Key and fill its {{.Name}} placeholders with Vars.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// File names an embedded prompt file.
type File string

const (
	OptimizerFile  File = "optimizer.json"
	EvaluatorsFile File = "evaluators.json"
	ParsingFile    File = "parsing.json"
)

// Files lists every embedded prompt file.
var Files = []File{OptimizerFile, EvaluatorsFile, ParsingFile}

// Key addresses one template inside a prompt file.
type Key struct {
	File File
	Name string
}

func (k Key) String() string {
	return string(k.File) + "/" + k.Name
}

// Rewriter prompts.
var (
	SystemBase       = Key{OptimizerFile, "system-base"}
	OutputMarkup     = Key{OptimizerFile, "output-markup"}
	OutputStructured = Key{OptimizerFile, "output-structured"}
	RulesStrict      = Key{OptimizerFile, "rules-strict"}
	RulesLenient     = Key{OptimizerFile, "rules-lenient"}
	GuideMarkup      = Key{OptimizerFile, "guide-markup"}
	GuideStructured  = Key{OptimizerFile, "guide-structured"}
	OptimizeUser     = Key{OptimizerFile, "user-prompt"}
	Refinement       = Key{OptimizerFile, "refinement"}
	Feedback         = Key{OptimizerFile, "feedback"}
	ReturnMarkup     = Key{OptimizerFile, "return-markup"}
	ReturnStructured = Key{OptimizerFile, "return-structured"}
)

// Evaluator prompts.
var (
	ReviewSystem         = Key{EvaluatorsFile, "review-system"}
	ReviewUser           = Key{EvaluatorsFile, "review-user"}
	AIDetectionSystem    = Key{EvaluatorsFile, "ai-detection-system"}
	AIDetectionUser      = Key{EvaluatorsFile, "ai-detection-user"}
	HallucinationStrict  = Key{EvaluatorsFile, "hallucination-strict"}
	HallucinationLenient = Key{EvaluatorsFile, "hallucination-lenient"}
	HallucinationUser    = Key{EvaluatorsFile, "hallucination-user"}
)

// Parsing prompts.
var (
	ParseJobPosting = Key{ParsingFile, "parse-job-posting"}
	ExtractName     = Key{ParsingFile, "extract-name"}
)

// Keys returns every key the application addresses.
func Keys() []Key {
	return []Key{
		SystemBase, OutputMarkup, OutputStructured, RulesStrict, RulesLenient,
		GuideMarkup, GuideStructured, OptimizeUser, Refinement, Feedback,
		ReturnMarkup, ReturnStructured,
		ReviewSystem, ReviewUser, AIDetectionSystem, AIDetectionUser,
		HallucinationStrict, HallucinationLenient, HallucinationUser,
		ParseJobPosting, ExtractName,
	}
}

// Vars fills a template's placeholders by name.
type Vars map[string]string

// MissingVarsError is returned by Render when a placeholder has no value.
type MissingVarsError struct {
	Key     Key
	Missing []string
}

func (e *MissingVarsError) Error() string {
	return fmt.Sprintf("prompt %s: missing values for %s", e.Key, strings.Join(e.Missing, ", "))
}

//go:embed *.json
var promptFiles embed.FS

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// library is every prompt file, parsed on first use.
var library = sync.OnceValues(func() (map[File]map[string]string, error) {
	out := make(map[File]map[string]string, len(Files))
	for _, f := range Files {
		data, err := promptFiles.ReadFile(string(f))
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", f, err)
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", f, err)
		}
		out[f] = templates
	}
	return out, nil
})

func file(f File) (map[string]string, error) {
	lib, err := library()
	if err != nil {
		return nil, err
	}
	templates, ok := lib[f]
	if !ok {
		return nil, fmt.Errorf("unknown prompt file %q", f)
	}
	return templates, nil
}

// Get returns the raw template for key.
func Get(key Key) (string, error) {
	templates, err := file(key.File)
	if err != nil {
		return "", err
	}
	t, ok := templates[key.Name]
	if !ok {
		return "", fmt.Errorf("prompt %s not found", key)
	}
	return t, nil
}

// MustGet is Get for prompts that ship with the binary.
func MustGet(key Key) string {
	t, err := Get(key)
	if err != nil {
		panic(err)
	}
	return t
}

// Render fills every placeholder of key's template. A placeholder without a
// value in vars is a *MissingVarsError; extra vars are ignored.
func Render(key Key, vars Vars) (string, error) {
	t, err := Get(key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(t) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingVarsError{Key: key, Missing: missing}
	}
	return Format(t, vars), nil
}

// MustRender is Render for callers that always supply the template's values.
func MustRender(key Key, vars Vars) string {
	out, err := Render(key, vars)
	if err != nil {
		panic(err)
	}
	return out
}

// Format substitutes {{.Name}} placeholders in one pass, so a value that itself
// contains a placeholder is inserted verbatim. Unknown names are left in place.
func Format(template string, vars Vars) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := vars[placeholder.FindStringSubmatch(m)[1]]; ok {
			return v
		}
		return m
	})
}

// Placeholders returns the distinct placeholder names in template, sorted.
func Placeholders(template string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// List returns the template names in f, sorted.
func List(f File) ([]string, error) {
	templates, err := file(f)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Today is the date injected into system prompts, e.g. "March 2026".
func Today(now time.Time) string {
	return now.Format("January 2006")
}
