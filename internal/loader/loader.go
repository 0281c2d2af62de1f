package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/glimte/objectmodel/schema"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML
	ErrUnsupportedFormat = errors.New("loader: unsupported file format")
	// ErrDuplicateKey is returned when two files map to the same schema key
	ErrDuplicateKey = errors.New("loader: duplicate schema key")
	// ErrNotObject is returned when a schema file does not hold an object
	ErrNotObject = errors.New("loader: schema document is not an object")
)

// LoadSchemas reads every JSON and YAML file in dir. The schema key is the
// file name without its extension.
func LoadSchemas(dir string) (map[string]schema.Schema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	schemas := make(map[string]schema.Schema, len(names))
	for _, name := range names {
		key := strings.TrimSuffix(name, filepath.Ext(name))
		if _, exists := schemas[key]; exists {
			return nil, fmt.Errorf("%w: %s (%s)", ErrDuplicateKey, key, name)
		}

		doc, err := LoadDocument(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotObject, name)
		}
		schemas[key] = schema.Schema(obj)
	}

	return schemas, nil
}

// LoadDocument decodes a JSON or YAML file into the JSON data model.
func LoadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON(data, path)
	case ".yaml", ".yml":
		return decodeYAML(data, path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func decodeJSON(data []byte, path string) (any, error) {
	var doc any
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return doc, nil
}

// decodeYAML re-encodes YAML as JSON so both formats decode to the same
// value types.
func decodeYAML(data []byte, path string) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	raw, err := gojson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s to JSON: %w", path, err)
	}
	return decodeJSON(raw, path)
}
