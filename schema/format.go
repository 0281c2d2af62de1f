package schema

import (
	"fmt"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/glimte/objectmodel/engine"
)

const topLevel = "top-level"

// augmenter appends keyword specific detail to a validation message.
type augmenter func(d *Diagnostics, instance any) string

var augmenters = map[string]augmenter{
	"additionalProperties": func(d *Diagnostics, _ any) string {
		return fmt.Sprintf(" but found `%v`", d.Params["additionalProperty"])
	},
	"is": func(d *Diagnostics, _ any) string {
		return fmt.Sprintf(" (required type in [%s] but got `%s`)", allowedTypes(d), engine.TypeName(d.Data))
	},
	"minProperties": func(d *Diagnostics, instance any) string {
		present := objectKeys(instance)
		missing, _ := gojson.Marshal(missingProperties(d.ParentSchema, present))
		return fmt.Sprintf(" but found only %d properties (missing %s)", len(present), missing)
	},
	"type": func(_ *Diagnostics, instance any) string {
		return " but found " + engine.JSONType(instance)
	},
}

// newValidationError builds the error in one pass: base message, then the
// schema identity prefix, then the data path, then keyword detail.
func newValidationError(base string, id *Identity, f *engine.Failure) *ValidationError {
	e := &ValidationError{message: base}

	d := &Diagnostics{}
	if id != nil {
		e.message = fmt.Sprintf("%s %s", id, e.message)
		d.SchemaID = id.ID
		d.SchemaVersion = id.Version
	}

	if f == nil {
		if id != nil {
			e.diag = d
		}
		return e
	}

	path := f.DataPath
	if path == "" {
		path = topLevel
	}
	e.message += " at " + path

	d.Keyword = f.Keyword
	d.Path = f.DataPath
	d.SchemaPath = f.SchemaPath
	d.Schema = f.Schema
	d.ParentSchema = f.ParentSchema
	d.Params = f.Params
	d.Data = f.Data
	e.diag = d

	if augment, ok := augmenters[f.Keyword]; ok {
		e.message += augment(d, f.Instance)
	}
	return e
}

// failureMessage is the base message for an engine failure.
func failureMessage(f *engine.Failure) string {
	if f.Keyword == "" {
		return f.Message
	}
	return fmt.Sprintf("`%s` %s", f.Keyword, f.Message)
}

func allowedTypes(d *Diagnostics) string {
	if allowed, ok := d.Params["allowed"].([]string); ok {
		return strings.Join(allowed, ",")
	}
	switch s := d.Schema.(type) {
	case string:
		return s
	case []any:
		names := make([]string, 0, len(s))
		for _, n := range s {
			names = append(names, fmt.Sprint(n))
		}
		return strings.Join(names, ",")
	}
	return fmt.Sprint(d.Schema)
}

func objectKeys(v any) []string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// missingProperties lists the properties declared by parent that are absent
// from present, sorted.
func missingProperties(parent map[string]any, present []string) []string {
	missing := []string{}
	props, ok := parent["properties"].(map[string]any)
	if !ok {
		return missing
	}

	have := make(map[string]bool, len(present))
	for _, k := range present {
		have[k] = true
	}
	for name := range props {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
