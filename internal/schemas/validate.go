// Package schemas holds the JSON contracts for structured documents: the
// skeleton structures embedded into extraction prompts and the JSON
// Schemas used to check the shape of parsed LLM output.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed structures/*.json schema/*.schema.json
var schemaFiles embed.FS

// Structure kinds understood by this package. Document types map directly;
// the two analysis kinds cover the ATS and cover-letter-tone calls.
const (
	KindResume              = "resume"
	KindCoverLetter         = "cover_letter"
	KindJobDescription      = "job_description"
	KindAnalysis            = "analysis"
	KindCoverLetterAnalysis = "coverletter_analysis"
)

// fileStem maps a kind to its embedded file name stem.
var fileStem = map[string]string{
	KindResume:              "resume",
	KindCoverLetter:         "coverletter",
	KindJobDescription:      "jobdescription",
	KindAnalysis:            "analysis",
	KindCoverLetterAnalysis: "coverletter_analysis",
}

// Structure returns the JSON skeleton embedded into prompts for the given
// kind. The skeleton shows the LLM the exact structure to reproduce.
func Structure(kind string) (string, error) {
	stem, ok := fileStem[kind]
	if !ok {
		return "", fmt.Errorf("no structure for kind %q", kind)
	}
	data, err := schemaFiles.ReadFile("structures/" + stem + ".json")
	if err != nil {
		return "", fmt.Errorf("failed to read structure for %s: %w", kind, err)
	}
	return string(data), nil
}

// MustStructure is Structure for kinds that are known at compile time.
func MustStructure(kind string) string {
	s, err := Structure(kind)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks a parsed payload against the JSON Schema for the given
// kind. A nil return means the payload has the expected shape.
func Validate(kind string, payload map[string]any) error {
	stem, ok := fileStem[kind]
	if !ok {
		return fmt.Errorf("no schema for kind %q", kind)
	}
	data, err := schemaFiles.ReadFile("schema/" + stem + ".schema.json")
	if err != nil {
		return fmt.Errorf("failed to read schema for %s: %w", kind, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(string(data))
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", kind, err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
