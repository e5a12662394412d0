package convert

import (
	"reflect"
	"sync"
)

// Registry is an ordered set of converters. The zero value is an empty
// registry ready for use.
type Registry struct {
	mu         sync.RWMutex
	converters []Converter
}

// NewRegistry returns a registry holding cs in the given order.
func NewRegistry(cs ...Converter) *Registry {
	r := &Registry{}
	for _, c := range cs {
		r.Register(c)
	}
	return r
}

// Default returns a new registry holding the built-in converters.
func Default() *Registry {
	return NewRegistry(Builtins()...)
}

// Register appends c to the registry. A nil converter is ignored.
func (r *Registry) Register(c Converter) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters = append(r.converters, c)
}

// Find returns the first registered converter that accepts t. It returns
// false when t is nil or no converter accepts it.
func (r *Registry) Find(t reflect.Type) (Converter, bool) {
	if t == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.converters {
		if c.Accepts(t) {
			return c, true
		}
	}
	return nil, false
}

// Len returns the number of registered converters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.converters)
}
