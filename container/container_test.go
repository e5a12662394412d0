package container

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/propbind/propbind/binding"
	"github.com/propbind/propbind/convert"
	"github.com/propbind/propbind/source"
)

var resources = fstest.MapFS{
	"example.properties": &fstest.MapFile{Data: []byte("author=peter\ncountry=germany\nage=42\ntimeout=5s\n")},
	"broken.properties":  &fstest.MapFile{Data: []byte("age=forty\n")},
}

type Author struct {
	Name    string        `property:"author"`
	country string        `property:"country"`
	Age     int           `property:"age"`
	Timeout time.Duration `property:"timeout"`
	Plain   string
}

func (a *Author) Country() string { return a.country }

type Misconfigured struct {
	Name    string    `property:"author"`
	Missing int       `property:"missing"`
	Home    *Author   `property:"country"`
	When    time.Time `property:"timeout"`
}

type Broken struct {
	Age int `property:"age"`
}

type Orphan struct {
	Name string `property:"author"`
}

type clock struct{ now string }

type lifecycle struct {
	Name   string `property:"author"`
	Clock  *clock `inject:""`
	events []string
}

func (l *lifecycle) PostConstruct() error {
	l.events = append(l.events, "postConstruct:"+l.Name+":"+l.Clock.now)
	return nil
}

func (l *lifecycle) PreDestroy() error {
	l.events = append(l.events, "preDestroy")
	return nil
}

func (l *lifecycle) Close() error {
	l.events = append(l.events, "close")
	return nil
}

func newContainer(t *testing.T) *Container {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader, err := source.NewLoader(source.Config{BaseDir: t.TempDir(), UseCache: true}, source.WithLogger(logger))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(loader, convert.Default(), WithLogger(logger))
}

func TestGet_BindsProperties(t *testing.T) {
	c := newContainer(t)
	if err := Register[Author](c, "example.properties", resources); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := Get[Author](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Name != "peter" {
		t.Errorf("Name = %q, want peter", a.Name)
	}
	if a.Country() != "germany" {
		t.Errorf("country = %q, want germany", a.Country())
	}
	if a.Age != 42 {
		t.Errorf("Age = %d, want 42", a.Age)
	}
	if a.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", a.Timeout)
	}
	if a.Plain != "" {
		t.Errorf("Plain = %q, untagged fields must stay untouched", a.Plain)
	}
	if err := c.Errors(); err != nil {
		t.Errorf("unexpected definition errors: %v", err)
	}
}

func TestGet_ReportsAllDefinitionErrors(t *testing.T) {
	c := newContainer(t)
	if err := Register[Misconfigured](c, "example.properties", resources); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := Get[Misconfigured](c)
	if err == nil {
		t.Fatal("expected definition errors")
	}
	if !errors.Is(err, binding.ErrNoValue) {
		t.Errorf("error %v does not include ErrNoValue", err)
	}
	if !errors.Is(err, binding.ErrNoConverter) {
		t.Errorf("error %v does not include ErrNoConverter", err)
	}

	// A second construction reports the same errors without duplicating them.
	if _, err := Get[Misconfigured](c); err == nil {
		t.Fatal("expected definition errors")
	}
	joined, ok := c.Errors().(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("Errors() = %v, want joined errors", c.Errors())
	}
	if got := len(joined.Unwrap()); got != 3 {
		t.Errorf("got %d definition errors, want 3: %v", got, c.Errors())
	}
}

func TestGet_ConversionFailure(t *testing.T) {
	c := newContainer(t)
	if err := Register[Broken](c, "broken.properties", resources); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Get[Broken](c); !errors.Is(err, convert.ErrConversion) {
		t.Fatalf("Get() error = %v, want ErrConversion", err)
	}
}

func TestRegister_MissingSource(t *testing.T) {
	c := newContainer(t)
	err := Register[Orphan](c, "missing.properties", resources)
	if !errors.Is(err, source.ErrSourceNotFound) {
		t.Fatalf("Register() error = %v, want ErrSourceNotFound", err)
	}

	if _, err := Get[Orphan](c); !errors.Is(err, source.ErrSourceNotFound) {
		t.Errorf("Get() error = %v, want ErrSourceNotFound", err)
	}

	// Other types are unaffected.
	if err := Register[Author](c, "example.properties", resources); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Get[Author](c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegister_Invalid(t *testing.T) {
	c := newContainer(t)
	if err := Register[int](c, "example.properties", resources); !errors.Is(err, ErrNotStruct) {
		t.Errorf("Register[int]() error = %v, want ErrNotStruct", err)
	}
	if err := Register[Author](c, "", resources); err == nil {
		t.Error("expected error for empty source name")
	}
	if _, err := Get[Broken](c); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Get() error = %v, want ErrNotRegistered", err)
	}
}

func TestLifecycle(t *testing.T) {
	c := newContainer(t)
	c.Provide(&clock{now: "noon"})
	if err := Register[lifecycle](c, "example.properties", resources); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points, err := InjectionPoints[lifecycle](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 || points[0].Field != "Clock" {
		t.Errorf("InjectionPoints() = %v, want [Clock]", points)
	}

	l, err := Get[lifecycle](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Destroy(c, l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"postConstruct:peter:noon", "preDestroy", "close"}
	if diff := cmp.Diff(want, l.events); diff != "" {
		t.Errorf("lifecycle events mismatch (-want +got):\n%s", diff)
	}
}

func TestInject_MissingProvider(t *testing.T) {
	c := newContainer(t)
	if err := Register[lifecycle](c, "example.properties", resources); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Get[lifecycle](c); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("Get() error = %v, want ErrNoProvider", err)
	}
}
