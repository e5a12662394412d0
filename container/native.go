package container

import (
	"fmt"
	"io"
	"reflect"

	"github.com/propbind/propbind/binding"
)

// nativeTarget is the container's own lifecycle for T, before any property
// binding is layered on top of it.
type nativeTarget[T any] struct {
	c      *Container
	points []binding.InjectionPoint
}

func (n *nativeTarget[T]) Produce() (*T, error) {
	return new(T), nil
}

// Inject fills every `inject` field from the values given to Provide.
func (n *nativeTarget[T]) Inject(instance *T) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for _, p := range n.points {
		v, ok := n.c.lookupProvided(p.Type)
		if !ok {
			return fmt.Errorf("%w for field %s of type %v", ErrNoProvider, p.Field, p.Type)
		}
		sf, _ := t.FieldByName(p.Field)
		h, err := binding.StructField(sf.Index...).Acquire(instance)
		if err != nil {
			return err
		}
		err = h.Set(v)
		h.Release()
		if err != nil {
			return fmt.Errorf("inject field %s: %w", p.Field, err)
		}
	}
	return nil
}

func (n *nativeTarget[T]) PostConstruct(instance *T) error {
	if pc, ok := any(instance).(interface{ PostConstruct() error }); ok {
		return pc.PostConstruct()
	}
	return nil
}

func (n *nativeTarget[T]) PreDestroy(instance *T) error {
	if pd, ok := any(instance).(interface{ PreDestroy() error }); ok {
		return pd.PreDestroy()
	}
	return nil
}

func (n *nativeTarget[T]) Dispose(instance *T) error {
	if c, ok := any(instance).(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (n *nativeTarget[T]) InjectionPoints() []binding.InjectionPoint {
	return append([]binding.InjectionPoint(nil), n.points...)
}
