package engine

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// Failure is the raw description of one constraint violation.
type Failure struct {
	// Keyword names the constraint that failed (type, required, is...).
	Keyword string
	// DataPath is the JSON Pointer of the offending value, empty at the top level.
	DataPath string
	// SchemaPath is the JSON Pointer of the schema node holding Keyword.
	SchemaPath string
	// Schema is the value of Keyword in ParentSchema.
	Schema any
	// ParentSchema is the schema node holding Keyword.
	ParentSchema map[string]any
	// Params carries keyword specific details.
	Params map[string]any
	// Data is the offending value as the caller supplied it, when it can be
	// recovered, otherwise its JSON projection.
	Data any
	// Instance is the JSON projection of the offending value.
	Instance any
	// Message is the engine's description of the violation.
	Message string
}

// firstLeaf follows the first cause down to the earliest reported violation.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func (c *Compiled) failure(leaf *jsonschema.ValidationError, data, instance any, p *projection) *Failure {
	f := &Failure{
		DataPath: pointer(leaf.InstanceLocation),
		Params:   paramsOf(leaf.ErrorKind),
		Message:  leaf.ErrorKind.LocalizedString(c.engine.printer),
	}
	if kp := leaf.ErrorKind.KeywordPath(); len(kp) > 0 {
		f.Keyword = kp[0]
	}

	f.Instance, f.Data = p.resolve(instance, data, leaf.InstanceLocation)

	if base, fragment, _ := strings.Cut(leaf.SchemaURL, "#"); base == c.location {
		f.SchemaPath = fragment
		if parent, ok := walk(c.doc, splitPointer(fragment)).(map[string]any); ok {
			f.ParentSchema = parent
			f.Schema = parent[f.Keyword]
		}
	}
	return f
}

// paramsOf extracts keyword parameters from an error kind.
func paramsOf(k jsonschema.ErrorKind) map[string]any {
	switch k := k.(type) {
	case *kind.Type:
		return map[string]any{"type": strings.Join(k.Want, ","), "got": k.Got}
	case *kind.Required:
		params := map[string]any{"missing": k.Missing}
		if len(k.Missing) > 0 {
			params["missingProperty"] = k.Missing[0]
		}
		return params
	case *kind.AdditionalProperties:
		params := map[string]any{"properties": k.Properties}
		if len(k.Properties) > 0 {
			params["additionalProperty"] = k.Properties[0]
		}
		return params
	case *kind.MinProperties:
		return map[string]any{"limit": k.Want, "got": k.Got}
	case *InstanceOf:
		return map[string]any{"allowed": k.Want, "got": k.Got}
	case *KeywordFailed:
		return map[string]any{"keyword": k.Keyword, "value": k.Value}
	}

	// other kinds expose their details as exported fields
	params := map[string]any{}
	raw, err := gojson.Marshal(k)
	if err != nil {
		return params
	}
	_ = gojson.Unmarshal(raw, &params)
	return params
}

// resolve walks path through the projected instance and returns the
// projected value found there along with the caller's original value.
func (p *projection) resolve(instance, data any, path []string) (any, any) {
	if len(path) == 0 {
		return instance, data
	}

	cur := instance
	var parent any
	for _, tok := range path {
		parent = cur
		cur = child(cur, tok)
	}

	if key, ok := address(cur); ok {
		if orig, ok := p.refs[key]; ok {
			return cur, orig
		}
	}
	if key, ok := address(parent); ok {
		if container, ok := p.refs[key]; ok {
			if orig, ok := member(container, path[len(path)-1]); ok {
				return cur, orig
			}
		}
	}
	return cur, cur
}

func child(v any, tok string) any {
	switch c := v.(type) {
	case map[string]any:
		return c[tok]
	case []any:
		i, err := strconv.Atoi(tok)
		if err != nil || i < 0 || i >= len(c) {
			return nil
		}
		return c[i]
	}
	return nil
}

// member indexes into a caller map or slice.
func member(container any, tok string) (any, bool) {
	rv := reflect.ValueOf(container)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(tok).Convert(kt))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(tok)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

func walk(v any, tokens []string) any {
	for _, tok := range tokens {
		v = child(v, tok)
		if v == nil {
			return nil
		}
	}
	return v
}

// pointer renders tokens as a JSON Pointer.
func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		b.WriteString(strings.ReplaceAll(tok, "/", "~1"))
	}
	return b.String()
}

func splitPointer(ptr string) []string {
	if unescaped, err := url.PathUnescape(ptr); err == nil {
		ptr = unescaped
	}
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	tokens := strings.Split(ptr, "/")
	for i, tok := range tokens {
		tok = strings.ReplaceAll(tok, "~1", "/")
		tokens[i] = strings.ReplaceAll(tok, "~0", "~")
	}
	return tokens
}

// TypeName names the runtime type of v: the JSON type for primitives and the
// Go type for everything else.
func TypeName(v any) string {
	if v == nil {
		return "null"
	}
	if _, ok := v.(gojson.Number); ok {
		return "number"
	}
	t := reflect.TypeOf(v)
	switch k := t.Kind(); {
	case k == reflect.Bool:
		return "boolean"
	case k == reflect.String:
		return "string"
	case isNumberKind(k):
		return "number"
	case k == reflect.Func:
		return "function"
	}
	return t.String()
}

// JSONType names the JSON type of a projected value.
func JSONType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case gojson.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return TypeName(v)
}
