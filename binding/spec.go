package binding

import (
	"fmt"
	"reflect"
)

// Field declares that the property Key is bound to the field identified by ID.
type Field struct {
	ID       string
	Key      string
	Type     reflect.Type
	Accessor Accessor
}

// Spec is the immutable set of field bindings declared on a type, together
// with the name of the source backing them.
type Spec struct {
	// Name identifies the bound type in error messages.
	Name   string
	Source string
	Fields []Field
}

// NewSpec validates fields and returns a Spec holding a copy of them.
// Field IDs must be unique and neither IDs nor keys may be empty.
func NewSpec(name, source string, fields ...Field) (Spec, error) {
	if source == "" {
		return Spec{}, fmt.Errorf("binding %s: empty source name", name)
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.ID == "" {
			return Spec{}, fmt.Errorf("binding %s: field with empty identifier", name)
		}
		if f.Key == "" {
			return Spec{}, fmt.Errorf("binding %s: field %s has an empty property key", name, f.ID)
		}
		if _, ok := seen[f.ID]; ok {
			return Spec{}, fmt.Errorf("binding %s: duplicate field %s", name, f.ID)
		}
		seen[f.ID] = struct{}{}
	}

	return Spec{
		Name:   name,
		Source: source,
		Fields: append([]Field(nil), fields...),
	}, nil
}
