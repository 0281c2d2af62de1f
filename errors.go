package objectmodel

import (
	"github.com/glimte/objectmodel/engine"
	"github.com/glimte/objectmodel/schema"
)

// Errors returned by a Model. Match them with errors.Is and errors.As.
var (
	ErrKeyConflict     = schema.ErrKeyConflict
	ErrSchemaMissing   = schema.ErrSchemaMissing
	ErrCompilation     = schema.ErrCompilation
	ErrTypeConflict    = engine.ErrTypeConflict
	ErrKeywordConflict = engine.ErrKeywordConflict
	ErrInvalidType     = engine.ErrInvalidType
)

type (
	KeyConflictError     = schema.KeyConflictError
	ValidationError      = schema.ValidationError
	CompilationError     = schema.CompilationError
	Diagnostics          = schema.Diagnostics
	TypeConflictError    = engine.TypeConflictError
	KeywordConflictError = engine.KeywordConflictError
)
