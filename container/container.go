package container

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/propbind/propbind/binding"
	"github.com/propbind/propbind/convert"
)

// Tag names understood by the container.
const (
	PropertyTag = "property"
	InjectTag   = "inject"
)

var (
	ErrNotRegistered = errors.New("type not registered")
	ErrNotStruct     = errors.New("only struct types can be registered")
	ErrNoProvider    = errors.New("no provided value")
)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Container registers struct types, binds their properties and builds
// instances of them.
type Container struct {
	loader   binding.SourceLoader
	registry *convert.Registry
	logger   *slog.Logger

	mu       sync.RWMutex
	types    map[reflect.Type]*registration
	order    []reflect.Type
	provided map[reflect.Type]any
}

type registration struct {
	id     uuid.UUID
	name   string
	target any
	sink   *errorSink
}

// New returns an empty Container.
func New(loader binding.SourceLoader, registry *convert.Registry, opts ...Option) *Container {
	c := &Container{
		loader:   loader,
		registry: registry,
		logger:   slog.Default(),
		types:    make(map[reflect.Type]*registration),
		provided: make(map[reflect.Type]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provide makes v available to fields tagged `inject:""` whose type is the
// dynamic type of v.
func (c *Container) Provide(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provided[reflect.TypeOf(v)] = v
}

func (c *Container) lookupProvided(t reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.provided[t]
	return v, ok
}

// Register adds T to the container. Fields of T tagged `property:"key"` are
// bound from the properties file called file; resources holds bundled files
// and may be nil. A type without property tags is registered unbound.
//
// When the properties file cannot be found the error is recorded for T and
// returned; instances of T can still be requested but Get reports the error.
func Register[T any](c *Container, file string, resources fs.FS) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %v", ErrNotStruct, t)
	}

	reg := &registration{id: uuid.New(), name: t.String(), sink: &errorSink{}}
	logger := c.logger.With("type", reg.name, "registration", reg.id.String())

	native := &nativeTarget[T]{c: c, points: injectionPoints(t)}
	reg.target = binding.Target[*T](native)

	fields := propertyFields(t)
	var setupErr error
	if len(fields) > 0 {
		spec, err := binding.NewSpec(reg.name, file, fields...)
		if err != nil {
			return err
		}
		target, err := binding.Setup(binding.SetupParams[*T]{
			Spec:      spec,
			Resources: resources,
			Loader:    c.loader,
			Registry:  c.registry,
			Native:    native,
			Reporter:  reg.sink,
			Logger:    logger,
		})
		reg.target = target
		setupErr = err
	}

	c.mu.Lock()
	if _, ok := c.types[t]; !ok {
		c.order = append(c.order, t)
	}
	c.types[t] = reg
	c.mu.Unlock()

	logger.Debug("registered type", "properties", len(fields), "source", file)
	return setupErr
}

// Get builds a new instance of T: produce, inject (including property
// binding) and post-construct. When T has definition errors all of them
// are returned together.
func Get[T any](c *Container) (*T, error) {
	reg, target, err := lookup[T](c)
	if err != nil {
		return nil, err
	}

	instance, err := target.Produce()
	if err != nil {
		return nil, fmt.Errorf("failed to produce %s: %w", reg.name, err)
	}
	if err := target.Inject(instance); err != nil {
		return nil, fmt.Errorf("failed to inject %s: %w", reg.name, err)
	}
	if errs := reg.sink.errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%s has definition errors: %w", reg.name, errors.Join(errs...))
	}
	if err := target.PostConstruct(instance); err != nil {
		return nil, fmt.Errorf("post-construct %s: %w", reg.name, err)
	}
	return instance, nil
}

// Destroy runs the pre-destroy and dispose steps for instance.
func Destroy[T any](c *Container, instance *T) error {
	reg, target, err := lookup[T](c)
	if err != nil {
		return err
	}
	if err := target.PreDestroy(instance); err != nil {
		return fmt.Errorf("pre-destroy %s: %w", reg.name, err)
	}
	if err := target.Dispose(instance); err != nil {
		return fmt.Errorf("dispose %s: %w", reg.name, err)
	}
	return nil
}

// InjectionPoints lists the `inject` fields of T.
func InjectionPoints[T any](c *Container) ([]binding.InjectionPoint, error) {
	_, target, err := lookup[T](c)
	if err != nil {
		return nil, err
	}
	return target.InjectionPoints(), nil
}

// Errors returns the definition errors of every registered type, joined.
func (c *Container) Errors() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	for _, t := range c.order {
		errs = append(errs, c.types[t].sink.errors()...)
	}
	return errors.Join(errs...)
}

func lookup[T any](c *Container) (*registration, binding.Target[*T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	c.mu.RLock()
	reg, ok := c.types[t]
	c.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotRegistered, t)
	}
	return reg, reg.target.(binding.Target[*T]), nil
}

// propertyFields builds one binding field per `property` tag of t.
func propertyFields(t reflect.Type) []binding.Field {
	var fields []binding.Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		key, ok := sf.Tag.Lookup(PropertyTag)
		if !ok || key == "" || key == "-" {
			continue
		}
		fields = append(fields, binding.Field{
			ID:       sf.Name,
			Key:      key,
			Type:     sf.Type,
			Accessor: binding.StructField(sf.Index...),
		})
	}
	return fields
}

func injectionPoints(t reflect.Type) []binding.InjectionPoint {
	var points []binding.InjectionPoint
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if _, ok := sf.Tag.Lookup(InjectTag); ok {
			points = append(points, binding.InjectionPoint{Field: sf.Name, Type: sf.Type})
		}
	}
	return points
}

// errorSink collects definition errors of one type, dropping repeats of the
// same message.
type errorSink struct {
	mu   sync.Mutex
	seen map[string]struct{}
	errs []error
}

func (s *errorSink) AddDefinitionError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[err.Error()]; ok {
		return
	}
	s.seen[err.Error()] = struct{}{}
	s.errs = append(s.errs, err)
}

func (s *errorSink) errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}
