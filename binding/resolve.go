package binding

import (
	"reflect"

	"github.com/propbind/propbind/convert"
	"github.com/propbind/propbind/source"
)

// Result is the outcome of resolving one field: either a value ready to be
// assigned or an error.
type Result struct {
	Field Field
	Value any
	Err   error
}

// Resolution holds one Result per field of a Spec, in declaration order.
// It is read-only once built and safe for concurrent use.
type Resolution struct {
	spec    Spec
	results []Result
	index   map[string]int
}

// Resolve looks up each field's property in src and converts it with the
// converter registry finds for the field's type. It never omits a field:
// a missing converter or value is recorded as that field's error.
//
// Resolve has no side effects; the same inputs produce the same Resolution.
func Resolve(spec Spec, src *source.Source, registry *convert.Registry) Resolution {
	r := Resolution{
		spec:    spec,
		results: make([]Result, 0, len(spec.Fields)),
		index:   make(map[string]int, len(spec.Fields)),
	}
	for _, f := range spec.Fields {
		r.index[f.ID] = len(r.results)
		r.results = append(r.results, resolveField(spec.Name, f, src, registry))
	}
	return r
}

func resolveField(typeName string, f Field, src *source.Source, registry *convert.Registry) Result {
	fieldErr := func(err error) Result {
		return Result{Field: f, Err: &FieldError{Type: typeName, Field: f.ID, Key: f.Key, FieldType: f.Type, Err: err}}
	}

	c, ok := registry.Find(f.Type)
	if !ok {
		return fieldErr(ErrNoConverter)
	}
	raw, ok := src.Lookup(f.Key)
	if !ok {
		return fieldErr(ErrNoValue)
	}

	v, err := c.Convert(raw)
	if err != nil {
		return fieldErr(err)
	}

	// Converters produce the canonical type of a kind; named types need an
	// explicit conversion before assignment.
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Type() != f.Type && rv.Kind() == f.Type.Kind() && rv.Type().ConvertibleTo(f.Type) {
		v = rv.Convert(f.Type).Interface()
	}
	return Result{Field: f, Value: v}
}

// Spec returns the spec the resolution was built from.
func (r Resolution) Spec() Spec {
	return r.spec
}

// Len returns the number of results.
func (r Resolution) Len() int {
	return len(r.results)
}

// Results returns the results in declaration order.
func (r Resolution) Results() []Result {
	return append([]Result(nil), r.results...)
}

// Lookup returns the result for the field identified by id.
func (r Resolution) Lookup(id string) (Result, bool) {
	i, ok := r.index[id]
	if !ok {
		return Result{}, false
	}
	return r.results[i], true
}

// Map returns the results keyed by field identifier.
func (r Resolution) Map() map[string]Result {
	m := make(map[string]Result, len(r.results))
	for _, res := range r.results {
		m[res.Field.ID] = res
	}
	return m
}

// Errors returns the errors of all unresolved fields in declaration order.
func (r Resolution) Errors() []error {
	var errs []error
	for _, res := range r.results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errs
}
