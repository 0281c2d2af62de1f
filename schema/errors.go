package schema

import (
	"errors"
	"fmt"
	"maps"

	gojson "github.com/goccy/go-json"
)

var (
	// ErrKeyConflict is matched by every KeyConflictError
	ErrKeyConflict = errors.New("schema: key already registered")
	// ErrSchemaMissing is returned when a validator is built without a schema
	ErrSchemaMissing = errors.New("schema: invalid schema")
	// ErrCompilation is matched by every CompilationError
	ErrCompilation = errors.New("schema: compilation failed")
	// ErrInvalidKey is returned for an empty registry key
	ErrInvalidKey = errors.New("schema: key cannot be empty")
	// ErrNilSchema is returned when registering a nil schema
	ErrNilSchema = errors.New("schema: schema cannot be nil")
)

// KeyConflictError is returned when a schema key is already registered
type KeyConflictError struct {
	Key string
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("schema key '%s' already exists on this registry", e.Key)
}

func (e *KeyConflictError) Unwrap() error {
	return ErrKeyConflict
}

// CompilationError is returned when a schema document is not a valid schema
type CompilationError struct {
	Identity Identity
	Err      error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("schema compilation failed for %s: %v", e.Identity, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *CompilationError) Is(target error) bool {
	return target == ErrCompilation
}

// Diagnostics describes the violation behind a ValidationError
type Diagnostics struct {
	SchemaID      string
	SchemaVersion string
	// Keyword is the constraint that failed.
	Keyword string
	// Path is the JSON Pointer of the offending value, empty at the top level.
	Path         string
	SchemaPath   string
	Schema       any
	ParentSchema map[string]any
	Params       map[string]any
	Data         any
}

// ValidationError is returned when data fails its schema, and when a
// validator is built without one. It is immutable: the diagnostics are
// fixed at construction and only copies are handed out.
type ValidationError struct {
	message string
	diag    *Diagnostics
	cause   error
}

func (e *ValidationError) Error() string {
	return e.message
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

// Diagnostics returns a copy of the violation details. The boolean is false
// for errors that carry none, such as a missing schema.
func (e *ValidationError) Diagnostics() (Diagnostics, bool) {
	if e.diag == nil {
		return Diagnostics{}, false
	}
	d := *e.diag
	d.ParentSchema = maps.Clone(e.diag.ParentSchema)
	d.Params = maps.Clone(e.diag.Params)
	return d, true
}

// Keyword returns the failed keyword, or an empty string
func (e *ValidationError) Keyword() string {
	if e.diag == nil {
		return ""
	}
	return e.diag.Keyword
}

// Path returns the JSON Pointer of the offending value
func (e *ValidationError) Path() string {
	if e.diag == nil {
		return ""
	}
	return e.diag.Path
}

// MarshalJSON keeps diagnostics out of serialized errors.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}{
		Name:    "ValidationError",
		Message: e.message,
	})
}
