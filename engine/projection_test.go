package engine

import (
	"math"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjection(t *testing.T) {
	t.Run("primitives become JSON values", func(t *testing.T) {
		p := newProjection()
		assert.Nil(t, p.project(nil))
		assert.Equal(t, true, p.project(true))
		assert.Equal(t, "x", p.project("x"))
		assert.Equal(t, gojson.Number("7"), p.project(int8(7)))
		assert.Equal(t, gojson.Number("7"), p.project(uint(7)))
		assert.Equal(t, gojson.Number("2.5"), p.project(float32(2.5)))
	})

	t.Run("containers are copied", func(t *testing.T) {
		p := newProjection()
		in := map[string][]int{"a": {1, 2}}

		out, ok := p.project(in).(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []any{gojson.Number("1"), gojson.Number("2")}, out["a"])
		assert.Len(t, p.refs, 2)
	})

	t.Run("values without a JSON shape become empty objects", func(t *testing.T) {
		p := newProjection()
		for _, v := range []any{[]byte("x"), func() {}, make(chan int), time.Now(), math.NaN(), map[int]string{1: "a"}} {
			out, ok := p.project(v).(map[string]any)
			require.True(t, ok, "%T", v)
			assert.Empty(t, out)
		}
		assert.Len(t, p.refs, 6)
	})

	t.Run("every projected container has its own address", func(t *testing.T) {
		p := newProjection()
		p.project([]any{[]int{}, []string{}, map[string]int{}, map[string]int{}})
		assert.Len(t, p.refs, 5)
	})

	t.Run("self-referencing containers end in an empty object", func(t *testing.T) {
		m := map[string]any{"id": 1}
		m["self"] = m
		s := []any{"head", nil}
		s[1] = s

		p := newProjection()
		out := p.project(map[string]any{"m": m, "s": s}).(map[string]any)

		pm := out["m"].(map[string]any)
		assert.Equal(t, gojson.Number("1"), pm["id"])
		assert.Equal(t, map[string]any{}, pm["self"])

		ps := out["s"].([]any)
		assert.Equal(t, "head", ps[0])
		assert.Equal(t, map[string]any{}, ps[1])
		assert.Empty(t, p.active)
	})

	t.Run("shared containers are projected at every occurrence", func(t *testing.T) {
		shared := map[string]any{"n": 1}
		p := newProjection()
		out := p.project([]any{shared, shared}).([]any)

		assert.Equal(t, map[string]any{"n": gojson.Number("1")}, out[0])
		assert.Equal(t, map[string]any{"n": gojson.Number("1")}, out[1])
	})

	t.Run("tracked containers resolve to the caller value", func(t *testing.T) {
		p := newProjection()
		d := dog{Breed: "beagle"}
		instance := p.project(map[string]any{"pets": []any{d}})
		data := map[string]any{"pets": []any{d}}

		projected, orig := p.resolve(instance, data, []string{"pets", "0"})
		assert.Equal(t, d, orig)
		assert.Equal(t, "beagle", projected.(map[string]any)["breed"])
	})
}

func TestPointers(t *testing.T) {
	assert.Equal(t, "", pointer(nil))
	assert.Equal(t, "/a/0/b~1c/d~0e", pointer([]string{"a", "0", "b/c", "d~e"}))
	assert.Equal(t, []string{"a", "0", "b/c", "d~e"}, splitPointer("/a/0/b~1c/d~0e"))
	assert.Nil(t, splitPointer(""))
	assert.Equal(t, []string{"properties", "a b"}, splitPointer("/properties/a%20b"))
}
