package schema

import (
	"fmt"
	"strings"
)

// Schema is a JSON Schema document as decoded by the caller. The registry
// stores it verbatim and never modifies it.
type Schema map[string]any

// Title returns the document title, falling back to its $id
func (s Schema) Title() string {
	if title, ok := s["title"].(string); ok && title != "" {
		return title
	}
	if id, ok := s["$id"].(string); ok {
		return id
	}
	return ""
}

// Version returns the document version as written, or an empty string
func (s Schema) Version() string {
	v, ok := s["version"]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprint(v), "v")
}

// Identity returns the identity used to prefix validation errors
func (s Schema) Identity() Identity {
	id := Identity{ID: s.Title()}
	if id.ID == "" {
		id.ID = "anonymous"
	}
	if v := s.Version(); v != "" {
		id.Version = "v" + v
	}
	return id
}

// Identity names a schema in error messages
type Identity struct {
	ID      string
	Version string
}

// String renders the identity as [id:version]
func (i Identity) String() string {
	if i.Version == "" {
		return fmt.Sprintf("[%s]", i.ID)
	}
	return fmt.Sprintf("[%s:%s]", i.ID, i.Version)
}
