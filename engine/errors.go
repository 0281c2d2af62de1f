package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeConflict is returned when a nominal type name is registered twice.
	ErrTypeConflict = errors.New("engine: type already registered")
	// ErrKeywordConflict is returned when a custom keyword name is registered twice.
	ErrKeywordConflict = errors.New("engine: keyword already registered")
	// ErrInvalidType is returned for an empty type name or a nil matcher.
	ErrInvalidType = errors.New("engine: invalid type registration")
	// ErrInvalidKeyword is returned for an incomplete keyword definition.
	ErrInvalidKeyword = errors.New("engine: invalid keyword registration")
)

// TypeConflictError reports a duplicate nominal type registration.
type TypeConflictError struct {
	Name    string
	Builtin bool
}

func (e *TypeConflictError) Error() string {
	if e.Builtin {
		return fmt.Sprintf("engine: type %q is built in and cannot be replaced", e.Name)
	}
	return fmt.Sprintf("engine: type %q already registered", e.Name)
}

func (e *TypeConflictError) Unwrap() error {
	return ErrTypeConflict
}

// KeywordConflictError reports a duplicate custom keyword registration.
type KeywordConflictError struct {
	Name string
}

func (e *KeywordConflictError) Error() string {
	return fmt.Sprintf("engine: keyword %q already registered", e.Name)
}

func (e *KeywordConflictError) Unwrap() error {
	return ErrKeywordConflict
}

// KeywordValueError is returned while compiling a schema whose custom keyword
// value cannot be used, such as an `is` naming an unknown type.
type KeywordValueError struct {
	Keyword string
	Value   any
	Err     error
}

func (e *KeywordValueError) Error() string {
	return fmt.Sprintf("engine: invalid %q keyword value %v: %v", e.Keyword, e.Value, e.Err)
}

func (e *KeywordValueError) Unwrap() error {
	return e.Err
}
