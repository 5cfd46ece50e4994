// Package schemas validates upstream NHTSA response payloads against embedded
// JSON Schemas before they are decoded into records. Validation guards the
// decoder against shape drift in the upstream API; it is intentionally loose
// about fields the core never reads.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.json
var schemaFS embed.FS

// Known schema names.
const (
	ComplaintsResponse  = "complaints_response"
	RecallsResponse     = "recalls_response"
	SafetyIssueResponse = "safety_issue_response"
	VINDecodeResponse   = "vin_decode_response"
)

// ValidationError reports a payload that failed schema validation.
type ValidationError struct {
	Schema string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload failed %s schema: %s", e.Schema, strings.Join(e.Errors, "; "))
}

// Validate checks a raw JSON payload against the named embedded schema.
// A payload that does not parse as JSON at all is also a validation error.
func Validate(name string, payload []byte) error {
	raw, err := schemaFS.ReadFile(name + ".json")
	if err != nil {
		return fmt.Errorf("unknown schema %q: %w", name, err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(raw)
	docLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return &ValidationError{Schema: name, Errors: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return &ValidationError{Schema: name, Errors: msgs}
}
