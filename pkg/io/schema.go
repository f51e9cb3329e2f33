package io

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://github.com/doyel/gantt/dataset.schema.json"

//go:embed schema/dataset.schema.json
var datasetSchema []byte

// Schema returns the JSON Schema datasets are validated against.
func Schema() []byte { return bytes.Clone(datasetSchema) }

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(datasetSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// SchemaViolation is one failed schema assertion.
type SchemaViolation struct {
	Path    string
	Message string
}

func (v SchemaViolation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// SchemaError lists every violation found in a document.
type SchemaError struct {
	Violations []SchemaViolation
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// validateSchema checks a generic JSON value (as produced by
// json.Unmarshal into any) against the dataset schema.
func validateSchema(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		se := &SchemaError{}
		collectViolations(se, ve)
		return se
	}
	return nil
}

func collectViolations(se *SchemaError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		se.Violations = append(se.Violations, SchemaViolation{
			Path:    pointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(se, cause)
	}
}

// pointerToPath turns "/resources/0/tasks/1/end" into "resources[0].tasks[1].end".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, seg := range strings.Split(ptr, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if isIndex(seg) {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
