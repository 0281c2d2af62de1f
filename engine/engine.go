package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const resourceBase = "https://objectmodel.local/schemas/"

// Engine owns one constraint compiler together with the keyword and type
// extensions shared by every schema compiled through it.
type Engine struct {
	compiler *jsonschema.Compiler
	types    *TypeRegistry
	keywords map[string]Keyword
	printer  *message.Printer
	logger   *slog.Logger

	// live maps the address of every object or array currently being
	// validated to the caller value it was projected from.
	live sync.Map

	// mu guards compiler and keywords; the compiler is not safe for
	// concurrent use.
	mu sync.Mutex
}

// Option configures the engine
type Option func(*engineConfig)

type engineConfig struct {
	logger *slog.Logger
	draft  *jsonschema.Draft
	lang   language.Tag
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithDraft sets the JSON Schema draft used for documents without $schema
func WithDraft(draft *jsonschema.Draft) Option {
	return func(c *engineConfig) {
		c.draft = draft
	}
}

// WithLanguage sets the language of engine messages
func WithLanguage(tag language.Tag) Option {
	return func(c *engineConfig) {
		c.lang = tag
	}
}

// New creates an engine with the built-in `is` keyword installed
func New(opts ...Option) *Engine {
	cfg := &engineConfig{
		logger: slog.New(slog.DiscardHandler),
		draft:  jsonschema.Draft7,
		lang:   language.English,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(cfg.draft)
	compiler.AssertVocabs()

	e := &Engine{
		compiler: compiler,
		types:    NewTypeRegistry(),
		keywords: make(map[string]Keyword),
		printer:  message.NewPrinter(cfg.lang),
		logger:   cfg.logger,
	}

	vocab, err := e.vocabulary(isKeyword, isMetaSchema, e.compileInstanceOf)
	if err != nil {
		// the meta-schema is static, so this only fails on a programming error
		panic(fmt.Sprintf("engine: building %q vocabulary: %v", isKeyword, err))
	}
	compiler.RegisterVocabulary(vocab)

	return e
}

// Types returns the nominal type registry
func (e *Engine) Types() *TypeRegistry {
	return e.types
}

// RegisterType adds a nominal type usable by the `is` keyword. A name can be
// registered only once.
func (e *Engine) RegisterType(name string, m TypeMatcher) error {
	if err := e.types.Register(name, m); err != nil {
		return err
	}
	e.logger.Debug("Type registered", "type", name)
	return nil
}

// RegisterTypes registers every entry in name order. It stops at the first
// failure; entries registered before it remain registered.
func (e *Engine) RegisterTypes(types map[string]TypeMatcher) error {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.RegisterType(name, types[name]); err != nil {
			return err
		}
	}
	return nil
}

// Compile compiles a schema document. Errors come straight from the
// underlying compiler (or from a custom keyword's compile function).
func (e *Engine) Compile(doc map[string]any) (*Compiled, error) {
	if doc == nil {
		return nil, errors.New("engine: schema document cannot be nil")
	}

	normalized, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, errors.New("engine: schema document must be an object")
	}
	location := resourceBase + uuid.NewString() + ".json"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.compiler.AddResource(location, normalized); err != nil {
		return nil, err
	}
	sch, err := e.compiler.Compile(location)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Schema compiled", "location", location)

	return &Compiled{
		engine:   e,
		schema:   sch,
		doc:      normalized,
		location: location,
	}, nil
}

// original returns the caller value a projected object or array came from,
// or v itself.
func (e *Engine) original(v any) any {
	key, ok := address(v)
	if !ok {
		return v
	}
	if orig, ok := e.live.Load(key); ok {
		return orig
	}
	return v
}

func (e *Engine) attach(p *projection) {
	for key, orig := range p.refs {
		e.live.Store(key, orig)
	}
}

func (e *Engine) detach(p *projection) {
	for key := range p.refs {
		e.live.Delete(key)
	}
}

// Compiled is a schema ready for validation. It is immutable and safe for
// concurrent use.
type Compiled struct {
	engine   *Engine
	schema   *jsonschema.Schema
	doc      map[string]any
	location string
}

// Check validates data and returns the first violation reported by the
// engine, or nil when data is valid.
func (c *Compiled) Check(data any) *Failure {
	p := newProjection()
	instance := p.project(data)

	c.engine.attach(p)
	defer c.engine.detach(p)

	err := c.schema.Validate(instance)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Failure{
			Message:  err.Error(),
			Data:     data,
			Instance: instance,
		}
	}
	return c.failure(firstLeaf(ve), data, instance, p)
}
