package binding

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// InjectionPoint describes a dependency the host injects into an instance.
type InjectionPoint struct {
	Field string
	Type  reflect.Type
}

// Target is the host's lifecycle for instances of T.
type Target[T any] interface {
	Produce() (T, error)
	Inject(instance T) error
	PostConstruct(instance T) error
	PreDestroy(instance T) error
	Dispose(instance T) error
	InjectionPoints() []InjectionPoint
}

// ErrorReporter is the host's channel for definition errors of a type.
type ErrorReporter interface {
	AddDefinitionError(err error)
}

// Decorator wraps a native Target and assigns resolved property values after
// the native injection step. All other lifecycle calls are delegated.
type Decorator[T any] struct {
	native   Target[T]
	resolved Resolution
	reporter ErrorReporter
	logger   *slog.Logger
}

var _ Target[any] = (*Decorator[any])(nil)

// NewDecorator returns a Decorator applying resolved to every instance
// injected through native. Field errors go to reporter; a nil reporter
// logs them instead.
func NewDecorator[T any](native Target[T], resolved Resolution, reporter ErrorReporter, logger *slog.Logger) *Decorator[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = logReporter{logger: logger}
	}
	return &Decorator[T]{
		native:   native,
		resolved: resolved,
		reporter: reporter,
		logger:   logger,
	}
}

// Inject runs the native injection, then assigns every resolved value.
//
// Missing converters, missing values and failed assignments are reported
// and do not stop the remaining fields. Conversion failures are reported
// too and are returned joined, failing this construction.
func (d *Decorator[T]) Inject(instance T) error {
	if err := d.native.Inject(instance); err != nil {
		return err
	}

	var failed []error
	for _, res := range d.resolved.results {
		if res.Err != nil {
			d.reporter.AddDefinitionError(res.Err)
			if errors.Is(res.Err, ErrConversion) {
				failed = append(failed, res.Err)
			}
			continue
		}
		if err := assign(res.Field.Accessor, instance, res.Value); err != nil {
			d.reporter.AddDefinitionError(&FieldError{
				Type:      d.resolved.spec.Name,
				Field:     res.Field.ID,
				Key:       res.Field.Key,
				FieldType: res.Field.Type,
				Err:       err,
			})
			continue
		}
		d.logger.Debug("bound property", "type", d.resolved.spec.Name, "field", res.Field.ID, "key", res.Field.Key)
	}
	return errors.Join(failed...)
}

// assign writes value through a handle that is released on every path.
func assign(acc Accessor, instance, value any) (err error) {
	if acc == nil {
		return ErrNoAccessor
	}
	h, err := acc.Acquire(instance)
	if err != nil {
		return err
	}
	defer h.Release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assignment panicked: %v", r)
		}
	}()
	return h.Set(value)
}

func (d *Decorator[T]) Produce() (T, error) {
	return d.native.Produce()
}

func (d *Decorator[T]) PostConstruct(instance T) error {
	return d.native.PostConstruct(instance)
}

func (d *Decorator[T]) PreDestroy(instance T) error {
	return d.native.PreDestroy(instance)
}

func (d *Decorator[T]) Dispose(instance T) error {
	return d.native.Dispose(instance)
}

func (d *Decorator[T]) InjectionPoints() []InjectionPoint {
	return d.native.InjectionPoints()
}

// Resolution returns the values the decorator assigns.
func (d *Decorator[T]) Resolution() Resolution {
	return d.resolved
}

type logReporter struct {
	logger *slog.Logger
}

func (r logReporter) AddDefinitionError(err error) {
	r.logger.Error("binding definition error", "error", err)
}
