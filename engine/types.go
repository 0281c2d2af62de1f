package engine

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
)

// TypeMatcher reports whether a value is an instance of a nominal type.
type TypeMatcher interface {
	MatchType(v any) bool
}

// TypeMatcherFunc is a function adapter for TypeMatcher
type TypeMatcherFunc func(v any) bool

func (f TypeMatcherFunc) MatchType(v any) bool {
	return f(v)
}

// nominalType matches values whose dynamic type is t, a pointer to t, a type
// implementing t (when t is an interface) or a struct embedding t at any depth.
type nominalType struct {
	t reflect.Type
}

func (n nominalType) MatchType(v any) bool {
	if v == nil {
		return false
	}
	return conforms(reflect.TypeOf(v), n.t, make(map[reflect.Type]bool))
}

func (n nominalType) String() string {
	return n.t.String()
}

// scalar reports whether values of the type reach the engine as bare JSON
// numbers, strings or booleans, which keep no link to the caller's value.
func (n nominalType) scalar() bool {
	t := n.t
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return isPrimitiveKind(t.Kind())
}

func conforms(vt, t reflect.Type, seen map[reflect.Type]bool) bool {
	if vt == t {
		return true
	}
	if t.Kind() == reflect.Interface && vt.Implements(t) {
		return true
	}
	if vt.Kind() == reflect.Pointer {
		if vt.Elem() == t {
			return true
		}
		vt = vt.Elem()
	}
	if vt.Kind() != reflect.Struct || seen[vt] {
		return false
	}
	seen[vt] = true

	for i := 0; i < vt.NumField(); i++ {
		f := vt.Field(i)
		if f.Anonymous && conforms(f.Type, t, seen) {
			return true
		}
	}
	return false
}

// TypeOf returns a matcher for the nominal type T. Types whose underlying
// kind is a number, string or boolean cannot be registered.
func TypeOf[T any]() TypeMatcher {
	return nominalType{t: reflect.TypeFor[T]()}
}

// TypeOfValue returns a matcher for the dynamic type of v. Pointers are
// dereferenced so that both T and *T values match. Values of scalar kind are
// rejected.
func TypeOfValue(v any) (TypeMatcher, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: value cannot be nil", ErrInvalidType)
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	n := nominalType{t: t}
	if n.scalar() {
		return nil, fmt.Errorf("%w: %s has scalar kind %s", ErrInvalidType, t, t.Kind())
	}
	return n, nil
}

// matches evaluates m against v, treating a panicking matcher as a mismatch.
func matches(m TypeMatcher, v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return m.MatchType(v)
}

var (
	timeType   = reflect.TypeFor[time.Time]()
	regexpType = reflect.TypeFor[regexp.Regexp]()
	bufferType = reflect.TypeFor[bytes.Buffer]()
	byteSlice  = reflect.TypeFor[[]byte]()
	numberType = reflect.TypeFor[gojson.Number]()
)

func isPrimitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isNumberKind(k reflect.Kind) bool {
	return isPrimitiveKind(k) && k != reflect.Bool && k != reflect.String
}

func kindMatcher(fn func(t reflect.Type) bool) TypeMatcher {
	return TypeMatcherFunc(func(v any) bool {
		if v == nil {
			return false
		}
		return fn(reflect.TypeOf(v))
	})
}

func builtinTypes() map[string]TypeMatcher {
	return map[string]TypeMatcher{
		"Object": kindMatcher(func(t reflect.Type) bool {
			return !isPrimitiveKind(t.Kind())
		}),
		"Array": kindMatcher(func(t reflect.Type) bool {
			k := t.Kind()
			return (k == reflect.Slice || k == reflect.Array) && t != byteSlice
		}),
		"Function": kindMatcher(func(t reflect.Type) bool {
			return t.Kind() == reflect.Func
		}),
		"Number": kindMatcher(func(t reflect.Type) bool {
			return t == numberType || isNumberKind(t.Kind())
		}),
		"String": kindMatcher(func(t reflect.Type) bool {
			return t != numberType && t.Kind() == reflect.String
		}),
		"Date":    nominalType{t: timeType},
		"RegExp":  nominalType{t: regexpType},
		"Buffer":  TypeMatcherFunc(matchBuffer),
		"Promise": kindMatcher(func(t reflect.Type) bool {
			return t.Kind() == reflect.Chan
		}),
	}
}

func matchBuffer(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return t == byteSlice || conforms(t, bufferType, make(map[reflect.Type]bool))
}

// TypeRegistry maps nominal type names to matchers. Built-in names are
// reserved; every other name may be registered exactly once.
type TypeRegistry struct {
	builtins map[string]TypeMatcher
	types    map[string]TypeMatcher
	mu       sync.RWMutex
}

// NewTypeRegistry creates a registry preloaded with the built-in types
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		builtins: builtinTypes(),
		types:    make(map[string]TypeMatcher),
	}
}

// Register adds a named matcher
func (r *TypeRegistry) Register(name string, m TypeMatcher) error {
	if name == "" {
		return fmt.Errorf("%w: type name cannot be empty", ErrInvalidType)
	}
	if m == nil {
		return fmt.Errorf("%w: matcher for %q cannot be nil", ErrInvalidType, name)
	}
	if n, ok := m.(nominalType); ok && n.scalar() {
		return fmt.Errorf("%w: %q names %s, whose values are validated as plain JSON scalars", ErrInvalidType, name, n.t)
	}

	if _, exists := r.builtins[name]; exists {
		return &TypeConflictError{Name: name, Builtin: true}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return &TypeConflictError{Name: name}
	}
	r.types[name] = m
	return nil
}

// Get retrieves the matcher for a type name
func (r *TypeRegistry) Get(name string) (TypeMatcher, bool) {
	if m, ok := r.builtins[name]; ok {
		return m, true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.types[name]
	return m, ok
}

// IsRegistered checks if a type name is known
func (r *TypeRegistry) IsRegistered(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// ListTypes returns all known type names, built-ins included, sorted
func (r *TypeRegistry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builtins)+len(r.types))
	for name := range r.builtins {
		names = append(names, name)
	}
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
