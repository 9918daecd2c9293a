// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateDocument validates a Go value (map, struct or decoded JSON) against a JSON schema.
func ValidateDocument(schema string, document interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

// ValidateJSON validates raw JSON bytes against a JSON schema.
func ValidateJSON(schema string, raw []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

var (
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	emailFindPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern     = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	phoneFindPattern = regexp.MustCompile(`\+?\d[\d\s\-\(\)/]{7,}\d`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ExtractEmail returns the first well-formed email address found in text.
func ExtractEmail(text string) (string, bool) {
	found := emailFindPattern.FindString(text)
	if found == "" {
		return "", false
	}
	found = strings.TrimRight(found, ".")
	return found, ValidateEmail(found)
}

// ExtractPhone returns the first phone-number-like sequence found in text.
// Dates (YYYY-MM-DD) are skipped.
func ExtractPhone(text string) (string, bool) {
	for _, candidate := range phoneFindPattern.FindAllString(text, -1) {
		candidate = strings.TrimSpace(candidate)
		if isoDate.MatchString(candidate) {
			continue
		}
		cleaned := strings.ReplaceAll(candidate, "/", " ")
		if ValidatePhone(cleaned) {
			return cleaned, true
		}
	}
	return "", false
}

var isoDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
