package main

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/propbind/propbind/binding"
)

// typeNames maps the type names accepted on the command line to Go types.
var typeNames = map[string]reflect.Type{
	"bool":     reflect.TypeOf(false),
	"int8":     reflect.TypeOf(int8(0)),
	"int16":    reflect.TypeOf(int16(0)),
	"int32":    reflect.TypeOf(int32(0)),
	"int":      reflect.TypeOf(0),
	"int64":    reflect.TypeOf(int64(0)),
	"float32":  reflect.TypeOf(float32(0)),
	"float64":  reflect.TypeOf(float64(0)),
	"string":   reflect.TypeOf(""),
	"duration": reflect.TypeOf(time.Duration(0)),
}

func knownTypes() []string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseField parses a field declaration of the form [ID=]KEY:TYPE. A type
// name that is not known is kept with a nil type, which resolves to a
// missing converter.
func parseField(decl string) (binding.Field, error) {
	id, rest, hasID := strings.Cut(decl, "=")
	if !hasID {
		rest = decl
	}

	key, typeName, ok := strings.Cut(rest, ":")
	if !ok || key == "" || typeName == "" {
		return binding.Field{}, fmt.Errorf("invalid field %q: expected [ID=]KEY:TYPE", decl)
	}
	if !hasID {
		id = key
	}
	if id == "" {
		return binding.Field{}, fmt.Errorf("invalid field %q: empty identifier", decl)
	}

	return binding.Field{ID: id, Key: key, Type: typeNames[typeName]}, nil
}

func parseFields(decls []string) ([]binding.Field, error) {
	fields := make([]binding.Field, 0, len(decls))
	for _, decl := range decls {
		f, err := parseField(decl)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}
