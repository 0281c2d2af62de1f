package schema

import (
	"errors"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/objectmodel/engine"
)

func build(t *testing.T, s Schema) *Validator {
	t.Helper()
	v, err := NewBuilder(engine.New()).Build(s)
	require.NoError(t, err)
	return v
}

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve
}

func TestBuild(t *testing.T) {
	t.Run("nil schema fails before compiling", func(t *testing.T) {
		v, err := NewBuilder(engine.New()).Build(nil)

		assert.Nil(t, v)
		assert.ErrorIs(t, err, ErrSchemaMissing)
		ve := validationError(t, err)
		assert.Equal(t, "invalid schema", ve.Error())
		_, ok := ve.Diagnostics()
		assert.False(t, ok)
	})

	t.Run("invalid documents fail compilation", func(t *testing.T) {
		_, err := NewBuilder(engine.New()).Build(Schema{"title": "broken", "type": 7})

		assert.ErrorIs(t, err, ErrCompilation)
		var ce *CompilationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "broken", ce.Identity.ID)
		assert.Contains(t, ce.Error(), "[broken]")
	})

	t.Run("validators expose their schema and identity", func(t *testing.T) {
		s := Schema{"title": "person", "version": "1.2"}
		v := build(t, s)

		assert.Equal(t, s, v.Schema())
		assert.Equal(t, Identity{ID: "person", Version: "v1.2"}, v.Identity())
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid data passes", func(t *testing.T) {
		v := build(t, Schema{"type": "object", "required": []any{"a"}})

		assert.NoError(t, v.Validate(map[string]any{"a": 1}))
		assert.True(t, v.Valid(map[string]any{"a": 1}))
	})

	t.Run("required failure at the top level", func(t *testing.T) {
		v := build(t, Schema{"title": "thing", "version": "1", "type": "object", "required": []any{"a"}})

		err := v.Validate(map[string]any{})
		ve := validationError(t, err)
		assert.Regexp(t, "^\\[thing:v1\\] `required` .* at top-level$", ve.Error())
		assert.Equal(t, "required", ve.Keyword())
		assert.Equal(t, "", ve.Path())
		assert.False(t, v.Valid(map[string]any{}))
	})

	t.Run("type failure names the found type", func(t *testing.T) {
		v := build(t, Schema{
			"title": "thing",
			"type":  "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "string"},
			},
		})

		ve := validationError(t, v.Validate(map[string]any{"a": 42}))
		assert.Regexp(t, "^\\[thing\\] `type` .* at /a but found number$", ve.Error())

		d, ok := ve.Diagnostics()
		require.True(t, ok)
		assert.Equal(t, "thing", d.SchemaID)
		assert.Equal(t, "", d.SchemaVersion)
		assert.Equal(t, "/a", d.Path)
		assert.Equal(t, 42, d.Data)
	})

	t.Run("minProperties lists the missing properties", func(t *testing.T) {
		v := build(t, Schema{
			"title":         "pair",
			"type":          "object",
			"minProperties": 2,
			"properties": map[string]any{
				"a": map[string]any{},
				"b": map[string]any{},
			},
		})

		ve := validationError(t, v.Validate(map[string]any{"a": 1}))
		assert.Contains(t, ve.Error(), "`minProperties`")
		assert.Contains(t, ve.Error(), " at top-level but found only 1 properties (missing [\"b\"])")
	})

	t.Run("is failure names allowed and actual types", func(t *testing.T) {
		v := build(t, Schema{"title": "blob", "is": "Buffer"})

		assert.NoError(t, v.Validate([]byte("hello")))

		ve := validationError(t, v.Validate(5))
		assert.Contains(t, ve.Error(), "[blob] `is`")
		assert.Contains(t, ve.Error(), "Buffer")
		assert.Contains(t, ve.Error(), "at top-level (required type in [Buffer] but got `number`)")
	})

	t.Run("additionalProperties names the extra property", func(t *testing.T) {
		v := build(t, Schema{
			"type":                 "object",
			"properties":           map[string]any{"a": map[string]any{}},
			"additionalProperties": false,
		})

		ve := validationError(t, v.Validate(map[string]any{"a": 1, "z": 2}))
		assert.Contains(t, ve.Error(), "[anonymous] `additionalProperties`")
		assert.Contains(t, ve.Error(), "but found `z`")
	})

	t.Run("validation is repeatable", func(t *testing.T) {
		v := build(t, Schema{"type": "object", "required": []any{"a"}})

		first := v.Validate(map[string]any{})
		second := v.Validate(map[string]any{})
		require.Error(t, first)
		assert.Equal(t, first.Error(), second.Error())
		assert.NoError(t, v.Validate(map[string]any{"a": true}))
	})

	t.Run("self-referencing data is validated", func(t *testing.T) {
		v := build(t, Schema{"title": "node", "type": "object", "required": []any{"id"}})

		m := map[string]any{"id": 1}
		m["self"] = m
		assert.NoError(t, v.Validate(m))

		delete(m, "id")
		ve := validationError(t, v.Validate(m))
		assert.Equal(t, "required", ve.Keyword())

		s := []any{nil}
		s[0] = s
		assert.Error(t, v.Validate(s))
	})

	t.Run("validation leaves schema and data untouched", func(t *testing.T) {
		s := Schema{
			"type":     "object",
			"required": []any{"a"},
			"properties": map[string]any{
				"a": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			},
		}
		v := build(t, s)
		data := map[string]any{"a": []int{1, 2, 3}}

		for i := 0; i < 3; i++ {
			assert.NoError(t, v.Validate(data))
		}
		assert.Equal(t, map[string]any{"a": []int{1, 2, 3}}, data)
		assert.Equal(t, []any{"a"}, s["required"])
		assert.Len(t, s["properties"].(map[string]any)["a"], 2)
	})
}

func TestValidationError(t *testing.T) {
	v := build(t, Schema{
		"title": "thing",
		"type":  "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
		},
	})
	ve := validationError(t, v.Validate(map[string]any{"a": 42}))

	t.Run("diagnostics are copies", func(t *testing.T) {
		d, ok := ve.Diagnostics()
		require.True(t, ok)
		d.Params["got"] = "tampered"
		d.ParentSchema["type"] = "tampered"
		d.Keyword = "tampered"

		again, _ := ve.Diagnostics()
		assert.NotEqual(t, "tampered", again.Params["got"])
		assert.Equal(t, "string", again.ParentSchema["type"])
		assert.Equal(t, "type", again.Keyword)
	})

	t.Run("serialization hides diagnostics", func(t *testing.T) {
		raw, err := gojson.Marshal(ve)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, gojson.Unmarshal(raw, &out))
		assert.Equal(t, map[string]any{"name": "ValidationError", "message": ve.Error()}, out)
	})

	t.Run("has no cause", func(t *testing.T) {
		assert.Nil(t, errors.Unwrap(ve))
	})
}

func TestNewValidationError(t *testing.T) {
	t.Run("without identity or failure the message is unchanged", func(t *testing.T) {
		e := newValidationError("boom", nil, nil)
		assert.Equal(t, "boom", e.Error())
		_, ok := e.Diagnostics()
		assert.False(t, ok)
	})

	t.Run("identity only adds the prefix", func(t *testing.T) {
		e := newValidationError("boom", &Identity{ID: "x", Version: "v2"}, nil)
		assert.Equal(t, "[x:v2] boom", e.Error())
		d, ok := e.Diagnostics()
		require.True(t, ok)
		assert.Equal(t, "v2", d.SchemaVersion)
	})

	t.Run("unknown keywords get no detail", func(t *testing.T) {
		e := newValidationError("`maxLength` too long", &Identity{ID: "x"}, &engine.Failure{
			Keyword:  "maxLength",
			DataPath: "/name",
		})
		assert.Equal(t, "[x] `maxLength` too long at /name", e.Error())
	})

	t.Run("minProperties without declared properties reports none missing", func(t *testing.T) {
		e := newValidationError("`minProperties` m", nil, &engine.Failure{
			Keyword:  "minProperties",
			Instance: map[string]any{},
		})
		assert.Equal(t, "`minProperties` m at top-level but found only 0 properties (missing [])", e.Error())
	})
}
