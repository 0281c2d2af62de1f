package engine

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/message"
)

const (
	isKeyword     = "is"
	vocabularyURL = "https://objectmodel.local/vocab/"
)

// isMetaSchema constrains how the `is` keyword may be written.
var isMetaSchema = map[string]any{
	"anyOf": []any{
		map[string]any{"type": "string", "minLength": 1},
		map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "string", "minLength": 1},
		},
	},
}

// draft7Keywords cannot be taken by custom keywords.
var draft7Keywords = map[string]bool{
	"$id": true, "$schema": true, "$ref": true, "$comment": true, "definitions": true,
	"title": true, "description": true, "default": true, "readOnly": true, "examples": true,
	"multipleOf": true, "maximum": true, "exclusiveMaximum": true, "minimum": true, "exclusiveMinimum": true,
	"maxLength": true, "minLength": true, "pattern": true, "additionalItems": true, "items": true,
	"maxItems": true, "minItems": true, "uniqueItems": true, "contains": true, "maxProperties": true,
	"minProperties": true, "required": true, "additionalProperties": true, "properties": true,
	"patternProperties": true, "dependencies": true, "propertyNames": true, "const": true, "enum": true,
	"type": true, "format": true, "contentMediaType": true, "contentEncoding": true, "if": true,
	"then": true, "else": true, "allOf": true, "anyOf": true, "oneOf": true, "not": true,
}

// Predicate reports whether data satisfies a compiled keyword value.
type Predicate func(data any) bool

// Keyword defines a custom schema keyword.
type Keyword struct {
	// Name is the keyword as it appears in schema documents.
	Name string
	// MetaSchema optionally constrains the keyword's value in schema documents.
	MetaSchema map[string]any
	// Compile turns the keyword's value into a predicate. It runs once per
	// compiled schema.
	Compile func(value any) (Predicate, error)
}

// RegisterKeyword installs a custom keyword for every schema compiled
// afterwards. A name can be registered only once.
func (e *Engine) RegisterKeyword(k Keyword) error {
	if k.Name == "" {
		return fmt.Errorf("%w: keyword name cannot be empty", ErrInvalidKeyword)
	}
	if k.Compile == nil {
		return fmt.Errorf("%w: keyword %q has no compile function", ErrInvalidKeyword, k.Name)
	}
	if k.Name == isKeyword || draft7Keywords[k.Name] {
		return &KeywordConflictError{Name: k.Name}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.keywords[k.Name]; exists {
		return &KeywordConflictError{Name: k.Name}
	}

	vocab, err := e.vocabulary(k.Name, k.MetaSchema, func(value any) (jsonschema.SchemaExt, error) {
		pred, err := k.Compile(value)
		if err != nil {
			return nil, err
		}
		if pred == nil {
			return nil, fmt.Errorf("compile returned no predicate")
		}
		return &predicateExt{engine: e, keyword: k.Name, value: value, pred: pred}, nil
	})
	if err != nil {
		return err
	}

	e.compiler.RegisterVocabulary(vocab)
	e.keywords[k.Name] = k
	e.logger.Debug("Keyword registered", "keyword", k.Name)
	return nil
}

// vocabulary wraps one keyword into an engine vocabulary whose meta-schema
// checks the keyword value when a schema is compiled.
func (e *Engine) vocabulary(name string, meta map[string]any, compile func(value any) (jsonschema.SchemaExt, error)) (*jsonschema.Vocabulary, error) {
	if meta == nil {
		meta = map[string]any{}
	}
	url := vocabularyURL + name + ".json"

	mc := jsonschema.NewCompiler()
	mc.DefaultDraft(jsonschema.Draft7)
	doc := map[string]any{
		"properties": map[string]any{name: meta},
	}
	if err := mc.AddResource(url, normalize(doc)); err != nil {
		return nil, fmt.Errorf("%w: meta-schema for %q: %v", ErrInvalidKeyword, name, err)
	}
	metaSchema, err := mc.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: meta-schema for %q: %v", ErrInvalidKeyword, name, err)
	}

	return &jsonschema.Vocabulary{
		URL:    url,
		Schema: metaSchema,
		Compile: func(_ *jsonschema.CompilerContext, obj map[string]any) (jsonschema.SchemaExt, error) {
			value, ok := obj[name]
			if !ok {
				return nil, nil
			}
			ext, err := compile(value)
			if err != nil {
				return nil, &KeywordValueError{Keyword: name, Value: value, Err: err}
			}
			return ext, nil
		},
	}, nil
}

// compileInstanceOf resolves the type names of an `is` keyword. Unknown names
// fail compilation.
func (e *Engine) compileInstanceOf(value any) (jsonschema.SchemaExt, error) {
	var names []string
	switch v := value.(type) {
	case string:
		names = []string{v}
	case []any:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("type names must be strings, got %T", item)
			}
			names = append(names, name)
		}
	default:
		return nil, fmt.Errorf("expected a type name or a list of type names, got %T", value)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one type name is required")
	}

	matchers := make([]TypeMatcher, 0, len(names))
	for _, name := range names {
		m, ok := e.types.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", name)
		}
		matchers = append(matchers, m)
	}

	return &instanceOf{engine: e, names: names, matchers: matchers}, nil
}

type instanceOf struct {
	engine   *Engine
	names    []string
	matchers []TypeMatcher
}

func (x *instanceOf) Validate(ctx *jsonschema.ValidatorContext, v any) {
	orig := x.engine.original(v)
	for _, m := range x.matchers {
		if matches(m, orig) {
			return
		}
	}
	ctx.AddError(&InstanceOf{Want: x.names, Got: TypeName(orig)})
}

type predicateExt struct {
	engine  *Engine
	keyword string
	value   any
	pred    Predicate
}

func (x *predicateExt) Validate(ctx *jsonschema.ValidatorContext, v any) {
	if !x.holds(x.engine.original(v)) {
		ctx.AddError(&KeywordFailed{Keyword: x.keyword, Value: x.value})
	}
}

// holds treats a panicking predicate as a failed check.
func (x *predicateExt) holds(v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return x.pred(v)
}

// InstanceOf is reported when a value matches none of the types named by
// an `is` keyword.
type InstanceOf struct {
	Want []string
	Got  string
}

func (*InstanceOf) KeywordPath() []string {
	return []string{isKeyword}
}

func (k *InstanceOf) LocalizedString(p *message.Printer) string {
	return p.Sprintf("should be an instance of %s", strings.Join(k.Want, " or "))
}

// KeywordFailed is reported when a custom keyword predicate rejects a value.
type KeywordFailed struct {
	Keyword string
	Value   any
}

func (k *KeywordFailed) KeywordPath() []string {
	return []string{k.Keyword}
}

func (k *KeywordFailed) LocalizedString(p *message.Printer) string {
	return p.Sprintf("should pass %q keyword validation", k.Keyword)
}
