package objectmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/objectmodel/engine"
	"github.com/glimte/objectmodel/schema"
)

type account struct {
	ID      string `json:"id"`
	Balance int    `json:"balance"`
}

type celsius float64

type premiumAccount struct {
	account
	Tier string `json:"tier"`
}

func TestNew(t *testing.T) {
	t.Run("creates a model with an empty registry", func(t *testing.T) {
		m := New()

		assert.NotNil(t, m.Engine())
		assert.NotNil(t, m.Registry())
		assert.Empty(t, m.Schema())
	})

	t.Run("shares an existing engine", func(t *testing.T) {
		e := engine.New()
		require.NoError(t, e.RegisterType("Account", engine.TypeOf[account]()))

		m := New(WithEngine(e))
		assert.Same(t, e, m.Engine())

		_, err := m.BuildValidator(schema.Schema{"is": "Account"})
		assert.NoError(t, err)
	})
}

func TestModel(t *testing.T) {
	m := New()
	require.NoError(t, m.RegisterType("Account", engine.TypeOf[account]()))
	require.NoError(t, m.AddSchemas(map[string]schema.Schema{
		"account": {
			"title":    "account",
			"version":  "1",
			"type":     "object",
			"required": []any{"id"},
			"properties": map[string]any{
				"balance": map[string]any{"type": "integer", "minimum": 0},
			},
		},
		"holder": {
			"title": "holder",
			"type":  "object",
			"properties": map[string]any{
				"account": map[string]any{"is": "Account"},
			},
		},
	}))

	t.Run("Schema enumerates registered keys", func(t *testing.T) {
		assert.Equal(t, map[string]string{"account": "account", "holder": "holder"}, m.Schema())
	})

	t.Run("AddSchema keeps the first registration", func(t *testing.T) {
		err := m.AddSchema("account", schema.Schema{"title": "other"})
		assert.ErrorIs(t, err, ErrKeyConflict)

		var conflict *KeyConflictError
		require.ErrorAs(t, err, &conflict)
		s, ok := m.GetSchema("account")
		require.True(t, ok)
		assert.Equal(t, "account", s.Title())
	})

	t.Run("ValidatorFor validates structs", func(t *testing.T) {
		v, err := m.ValidatorFor("account")
		require.NoError(t, err)

		assert.NoError(t, v.Validate(account{ID: "a-1", Balance: 10}))

		err = v.Validate(account{ID: "a-1", Balance: -1})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "minimum", ve.Keyword())
		assert.Equal(t, "/balance", ve.Path())
		assert.Contains(t, ve.Error(), "[account:v1]")
	})

	t.Run("ValidatorFor fails for unknown keys", func(t *testing.T) {
		_, err := m.ValidatorFor("missing")
		assert.ErrorIs(t, err, ErrSchemaMissing)
	})

	t.Run("is keyword accepts embedding types", func(t *testing.T) {
		v, err := m.ValidatorFor("holder")
		require.NoError(t, err)

		assert.NoError(t, v.Validate(map[string]any{"account": premiumAccount{Tier: "gold"}}))

		err = v.Validate(map[string]any{"account": "a-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at /account (required type in [Account] but got `string`)")
	})

	t.Run("type conflicts are reported", func(t *testing.T) {
		err := m.RegisterType("Account", engine.TypeOf[premiumAccount]())
		assert.ErrorIs(t, err, ErrTypeConflict)

		err = m.RegisterTypes(map[string]engine.TypeMatcher{"Date": engine.TypeOf[account]()})
		var conflict *TypeConflictError
		require.ErrorAs(t, err, &conflict)
		assert.True(t, conflict.Builtin)
	})

	t.Run("scalar types are refused at registration", func(t *testing.T) {
		err := m.RegisterType("Celsius", engine.TypeOf[celsius]())
		assert.ErrorIs(t, err, ErrInvalidType)

		_, err = m.BuildValidator(schema.Schema{"is": "Celsius"})
		assert.ErrorIs(t, err, ErrCompilation)
	})

	t.Run("custom keywords apply to later validators", func(t *testing.T) {
		require.NoError(t, m.RegisterKeyword(engine.Keyword{
			Name: "nonEmptyID",
			Compile: func(any) (engine.Predicate, error) {
				return func(data any) bool {
					a, ok := data.(account)
					return !ok || a.ID != ""
				}, nil
			},
		}))

		v, err := m.BuildValidator(schema.Schema{"nonEmptyID": true})
		require.NoError(t, err)
		assert.NoError(t, v.Validate(account{ID: "x"}))
		assert.Error(t, v.Validate(account{}))

		assert.ErrorIs(t, m.RegisterKeyword(engine.Keyword{
			Name:    "nonEmptyID",
			Compile: func(any) (engine.Predicate, error) { return nil, nil },
		}), ErrKeywordConflict)
	})
}
