package schema

import (
	"log/slog"

	"github.com/glimte/objectmodel/engine"
)

// Builder compiles schemas into validators
type Builder struct {
	engine *engine.Engine
	logger *slog.Logger
}

// BuilderOption configures the builder
type BuilderOption func(*Builder)

// WithBuilderLogger sets the logger
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a builder compiling through e
func NewBuilder(e *engine.Engine, opts ...BuilderOption) *Builder {
	b := &Builder{
		engine: e,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build compiles s into a reusable validator. A nil schema fails with a
// *ValidationError matching ErrSchemaMissing before anything is compiled; a
// document that is not a valid schema fails with a *CompilationError.
func (b *Builder) Build(s Schema) (*Validator, error) {
	if s == nil {
		return nil, &ValidationError{message: "invalid schema", cause: ErrSchemaMissing}
	}

	identity := s.Identity()
	compiled, err := b.engine.Compile(s)
	if err != nil {
		return nil, &CompilationError{Identity: identity, Err: err}
	}

	b.logger.Debug("Validator built", "schema", identity.String())

	return &Validator{
		schema:   s,
		identity: identity,
		compiled: compiled,
	}, nil
}

// Validator checks data against one compiled schema. It holds no mutable
// state and may be used concurrently.
type Validator struct {
	schema   Schema
	identity Identity
	compiled *engine.Compiled
}

// Validate returns nil when data satisfies the schema. Otherwise it returns a
// *ValidationError describing the first violation the engine reported.
func (v *Validator) Validate(data any) error {
	f := v.compiled.Check(data)
	if f == nil {
		return nil
	}
	return newValidationError(failureMessage(f), &v.identity, f)
}

// Valid reports whether data satisfies the schema
func (v *Validator) Valid(data any) bool {
	return v.Validate(data) == nil
}

// Schema returns the document the validator was built from
func (v *Validator) Schema() Schema {
	return v.schema
}

// Identity returns the schema identity used in error messages
func (v *Validator) Identity() Identity {
	return v.identity
}
