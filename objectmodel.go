// Copyright 2024 Mmate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package objectmodel

import (
	"log/slog"

	"github.com/glimte/objectmodel/engine"
	"github.com/glimte/objectmodel/schema"
)

// Model provides the main entry point for objectmodel. It ties a schema
// registry to the engine its validators are compiled with. Applications
// create one at startup and share it.
type Model struct {
	engine   *engine.Engine
	registry *schema.Registry
	builder  *schema.Builder
}

type modelConfig struct {
	logger *slog.Logger
	engine *engine.Engine
}

// Option configures a Model
type Option func(*modelConfig)

// WithLogger sets the logger used by the model and its components
func WithLogger(logger *slog.Logger) Option {
	return func(c *modelConfig) {
		c.logger = logger
	}
}

// WithEngine uses an existing engine, sharing its types and keywords
func WithEngine(e *engine.Engine) Option {
	return func(c *modelConfig) {
		c.engine = e
	}
}

// New creates a model with an empty registry
func New(options ...Option) *Model {
	cfg := &modelConfig{
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range options {
		opt(cfg)
	}

	if cfg.engine == nil {
		cfg.engine = engine.New(engine.WithLogger(cfg.logger))
	}

	return &Model{
		engine:   cfg.engine,
		registry: schema.NewRegistry(schema.WithRegistryLogger(cfg.logger)),
		builder:  schema.NewBuilder(cfg.engine, schema.WithBuilderLogger(cfg.logger)),
	}
}

// Schema returns every registered key mapped to itself, computed from the
// current registry state.
func (m *Model) Schema() map[string]string {
	return m.registry.Enumerate()
}

// BuildValidator compiles s into a reusable validator
func (m *Model) BuildValidator(s schema.Schema) (*schema.Validator, error) {
	return m.builder.Build(s)
}

// ValidatorFor builds a validator for the schema registered under key. An
// unknown key fails like a missing schema.
func (m *Model) ValidatorFor(key string) (*schema.Validator, error) {
	s, _ := m.registry.GetSchema(key)
	return m.builder.Build(s)
}

// AddSchema registers a schema under key
func (m *Model) AddSchema(key string, s schema.Schema) error {
	return m.registry.AddSchema(key, s)
}

// AddSchemas registers several schemas in key order
func (m *Model) AddSchemas(schemas map[string]schema.Schema) error {
	return m.registry.AddSchemas(schemas)
}

// GetSchema retrieves a schema by key
func (m *Model) GetSchema(key string) (schema.Schema, bool) {
	return m.registry.GetSchema(key)
}

// RegisterType adds a nominal type usable by the `is` keyword
func (m *Model) RegisterType(name string, t engine.TypeMatcher) error {
	return m.engine.RegisterType(name, t)
}

// RegisterTypes adds several nominal types in name order
func (m *Model) RegisterTypes(types map[string]engine.TypeMatcher) error {
	return m.engine.RegisterTypes(types)
}

// RegisterKeyword adds a custom keyword
func (m *Model) RegisterKeyword(k engine.Keyword) error {
	return m.engine.RegisterKeyword(k)
}

// Registry returns the schema registry
func (m *Model) Registry() *schema.Registry {
	return m.registry
}

// Engine returns the constraint engine
func (m *Model) Engine() *engine.Engine {
	return m.engine
}
