package engine

import (
	"bytes"
	"math"
	"reflect"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// projection converts caller data into the JSON data model understood by the
// constraint engine. Every object and array it produces is freshly allocated,
// so its address identifies the caller value it was projected from. Values
// with no JSON shape (byte slices, functions, channels, time values...) become
// empty objects, and so does a container met again while it is still being
// projected.
type projection struct {
	refs   map[uintptr]any
	active map[visit]bool
}

// visit identifies a caller map, slice or pointer on the current path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

func newProjection() *projection {
	return &projection{
		refs:   make(map[uintptr]any),
		active: make(map[visit]bool),
	}
}

// normalize projects a document without tracking originals.
func normalize(v any) any {
	return newProjection().project(v)
}

func (p *projection) project(v any) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case gojson.Number:
		return tv
	case bool:
		return tv
	case string:
		return tv
	}
	return p.projectValue(reflect.ValueOf(v), v)
}

func (p *projection) projectValue(rv reflect.Value, orig any) any {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return gojson.Number(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return gojson.Number(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return p.opaque(orig)
		}
		return gojson.Number(strconv.FormatFloat(f, 'g', -1, 64))
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return p.project(rv.Elem().Interface())
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			return p.projectStruct(orig)
		}
		key, ok := p.enter(rv)
		if !ok {
			return p.opaque(orig)
		}
		defer p.leave(key)
		return p.projectValue(rv.Elem(), orig)
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return p.opaque(orig)
		}
		key, ok := p.enter(rv)
		if !ok {
			return p.opaque(orig)
		}
		defer p.leave(key)

		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = p.project(iter.Value().Interface())
		}
		p.track(out, orig)
		return out
	case reflect.Slice, reflect.Array:
		if rv.Type() == byteSlice {
			return p.opaque(orig)
		}
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return nil
			}
			key, ok := p.enter(rv)
			if !ok {
				return p.opaque(orig)
			}
			defer p.leave(key)
		}

		// capacity of at least one keeps the backing array address unique
		out := make([]any, rv.Len(), max(rv.Len(), 1))
		for i := range out {
			out[i] = p.project(rv.Index(i).Interface())
		}
		p.track(out, orig)
		return out
	case reflect.Struct:
		return p.projectStruct(orig)
	}
	return p.opaque(orig)
}

// projectStruct takes the JSON shape of a struct as its encoder defines it.
// Structs encoding to anything but an object (time.Time, for one) are opaque.
func (p *projection) projectStruct(orig any) any {
	raw, err := gojson.Marshal(orig)
	if err != nil {
		return p.opaque(orig)
	}
	var decoded any
	dec := gojson.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return p.opaque(orig)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return p.opaque(orig)
	}
	out := normalize(obj).(map[string]any)
	p.track(out, orig)
	return out
}

// enter marks a caller container as being projected. It reports false when
// the container is already on the path, that is when the value contains itself.
func (p *projection) enter(rv reflect.Value) (visit, bool) {
	key := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		key.len = rv.Len()
	}
	if p.active[key] {
		return key, false
	}
	p.active[key] = true
	return key, true
}

func (p *projection) leave(key visit) {
	delete(p.active, key)
}

func (p *projection) opaque(orig any) any {
	out := make(map[string]any)
	p.track(out, orig)
	return out
}

func (p *projection) track(projected, orig any) {
	if key, ok := address(projected); ok {
		p.refs[key] = orig
	}
}

// address identifies a projected object or array.
func address(v any) (uintptr, bool) {
	switch v.(type) {
	case map[string]any, []any:
		rv := reflect.ValueOf(v)
		if p := rv.Pointer(); p != 0 {
			return p, true
		}
	}
	return 0, false
}
