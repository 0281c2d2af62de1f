package schema

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry maps schema keys to schema documents. Registration is
// append-only: a key, once taken, keeps its schema for the registry's
// lifetime.
type Registry struct {
	schemas map[string]Schema
	logger  *slog.Logger
	mu      sync.RWMutex
}

// RegistryOption configures the registry
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas: make(map[string]Schema),
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AddSchema registers a schema under key. A taken key leaves the registry
// untouched and returns a *KeyConflictError.
func (r *Registry) AddSchema(key string, s Schema) error {
	if key == "" {
		return ErrInvalidKey
	}
	if s == nil {
		return ErrNilSchema
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[key]; exists {
		return &KeyConflictError{Key: key}
	}
	r.schemas[key] = s

	r.logger.Debug("Schema registered", "key", key, "title", s.Title(), "version", s.Version())
	return nil
}

// AddSchemas registers every entry in key order. It stops at the first
// error; entries registered before it stay registered.
func (r *Registry) AddSchemas(schemas map[string]Schema) error {
	keys := make([]string, 0, len(schemas))
	for key := range schemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := r.AddSchema(key, schemas[key]); err != nil {
			return err
		}
	}
	return nil
}

// GetSchema retrieves a schema by key
func (r *Registry) GetSchema(key string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[key]
	return s, ok
}

// Keys returns the registered keys, sorted
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.schemas))
	for key := range r.schemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Enumerate maps every registered key to itself
func (r *Registry) Enumerate() map[string]string {
	keys := r.Keys()
	enum := make(map[string]string, len(keys))
	for _, key := range keys {
		enum[key] = key
	}
	return enum
}

// Len returns the number of registered schemas
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.schemas)
}
