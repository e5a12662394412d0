package source

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

const exampleProperties = "author=peter\ncountry=germany\n"

// countingFS records every Open call made against it.
type countingFS struct {
	fsys  fs.FS
	opens atomic.Int32
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.fsys.Open(name)
}

func newCountingFS(files map[string]string) *countingFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return &countingFS{fsys: m}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoader_Order(t *testing.T) {
	tests := []struct {
		name             string
		preferFilesystem bool
		resources        map[string]string
		filesystem       map[string]string
		wantAuthor       string
		wantResOpens     int32
		wantFileOpens    int32
	}{
		{
			name:          "resource first, resource exists",
			resources:     map[string]string{"example.properties": "author=resource\n"},
			filesystem:    map[string]string{},
			wantAuthor:    "resource",
			wantResOpens:  1,
			wantFileOpens: 0,
		},
		{
			name:          "resource first, falls back to filesystem",
			resources:     map[string]string{},
			filesystem:    map[string]string{"example.properties": "author=file\n"},
			wantAuthor:    "file",
			wantResOpens:  1,
			wantFileOpens: 1,
		},
		{
			name:             "filesystem first, filesystem exists",
			preferFilesystem: true,
			resources:        map[string]string{"example.properties": "author=resource\n"},
			filesystem:       map[string]string{"example.properties": "author=file\n"},
			wantAuthor:       "file",
			wantResOpens:     0,
			wantFileOpens:    1,
		},
		{
			name:             "filesystem first, falls back to resource",
			preferFilesystem: true,
			resources:        map[string]string{"example.properties": "author=resource\n"},
			filesystem:       map[string]string{},
			wantAuthor:       "resource",
			wantResOpens:     1,
			wantFileOpens:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newCountingFS(tt.resources)
			file := newCountingFS(tt.filesystem)
			l, err := NewLoader(Config{PreferFilesystem: tt.preferFilesystem}, WithFilesystem(file), WithLogger(quietLogger()))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			s, err := l.Load("example.properties", res)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got, _ := s.Lookup("author"); got != tt.wantAuthor {
				t.Errorf("author = %q, want %q", got, tt.wantAuthor)
			}
			if got := res.opens.Load(); got != tt.wantResOpens {
				t.Errorf("resource opens = %d, want %d", got, tt.wantResOpens)
			}
			if got := file.opens.Load(); got != tt.wantFileOpens {
				t.Errorf("filesystem opens = %d, want %d", got, tt.wantFileOpens)
			}
		})
	}
}

func TestLoader_NotFound(t *testing.T) {
	for _, prefer := range []bool{false, true} {
		l, err := NewLoader(Config{PreferFilesystem: prefer}, WithFilesystem(newCountingFS(nil)), WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = l.Load("missing.properties", nil)
		if !errors.Is(err, ErrSourceNotFound) {
			t.Fatalf("preferFilesystem=%v: expected ErrSourceNotFound, got %v", prefer, err)
		}
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.Name != "missing.properties" {
			t.Errorf("preferFilesystem=%v: expected NotFoundError for missing.properties, got %v", prefer, err)
		}
	}
}

func TestLoader_BaseDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "conf"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "conf", "example.properties"), []byte(exampleProperties), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := NewLoader(Config{BaseDir: tmpDir}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := l.Load("conf/example.properties", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := map[string]string{"author": "peter", "country": "germany"}
	if diff := cmp.Diff(expected, s.Map()); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	// Absolute names ignore the base directory.
	abs, err := l.Load(filepath.Join(tmpDir, "conf", "example.properties"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(expected, abs.Map()); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	// A directory is not a properties file.
	if _, err := l.Load("conf", nil); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound for a directory, got %v", err)
	}
}

func TestLoader_CacheReusesSource(t *testing.T) {
	res := newCountingFS(map[string]string{"example.properties": exampleProperties})
	l, err := NewLoader(Config{UseCache: true}, WithFilesystem(newCountingFS(nil)), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := l.Load("example.properties", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.Load("example.properties", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("second load did not return the cached source")
	}
	if got := res.opens.Load(); got != 1 {
		t.Errorf("resource opens = %d, want 1", got)
	}
	if !l.Cached("example.properties") {
		t.Error("Cached(example.properties) = false, want true")
	}
}

func TestLoader_WithoutCacheReadsEveryTime(t *testing.T) {
	res := newCountingFS(map[string]string{"example.properties": exampleProperties})
	l, err := NewLoader(Config{}, WithFilesystem(newCountingFS(nil)), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := l.Load("example.properties", res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := res.opens.Load(); got != 3 {
		t.Errorf("resource opens = %d, want 3", got)
	}
	if l.Cached("example.properties") {
		t.Error("Cached() = true with caching disabled")
	}
}

func TestLoader_FailedLoadIsNotCached(t *testing.T) {
	tmpDir := t.TempDir()
	l, err := NewLoader(Config{BaseDir: tmpDir, UseCache: true}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := l.Load("late.properties", nil); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
	if l.Cached("late.properties") {
		t.Fatal("failed load was cached")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "late.properties"), []byte(exampleProperties), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := l.Load("late.properties", nil)
	if err != nil {
		t.Fatalf("unexpected error after file appeared: %v", err)
	}
	if got, _ := s.Lookup("author"); got != "peter" {
		t.Errorf("author = %q, want peter", got)
	}
	if !l.Cached("late.properties") {
		t.Error("successful load was not cached")
	}
}

func TestLoader_MalformedIsNotCached(t *testing.T) {
	res := newCountingFS(map[string]string{"bad.properties": "bad=\\uZZZZ\n"})
	l, err := NewLoader(Config{UseCache: true}, WithFilesystem(newCountingFS(nil)), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := l.Load("bad.properties", res); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if l.Cached("bad.properties") {
		t.Error("malformed source was cached")
	}
}

func TestLoader_BoundedCache(t *testing.T) {
	res := newCountingFS(map[string]string{
		"a.properties": "a=1\n",
		"b.properties": "b=2\n",
	})
	l, err := NewLoader(Config{UseCache: true, CacheSize: 1}, WithFilesystem(newCountingFS(nil)), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"a.properties", "b.properties"} {
		if _, err := l.Load(name, res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if l.Cached("a.properties") {
		t.Error("a.properties should have been evicted")
	}
	if !l.Cached("b.properties") {
		t.Error("b.properties should be cached")
	}
}

func TestNewLoader_InvalidCacheSize(t *testing.T) {
	if _, err := NewLoader(Config{UseCache: true, CacheSize: -1}); err == nil {
		t.Fatal("expected error for negative cache size")
	}
}

func TestLoader_ConcurrentLoads(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := newCountingFS(map[string]string{"example.properties": exampleProperties})
	l, err := NewLoader(Config{UseCache: true}, WithFilesystem(newCountingFS(nil)), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const callers = 16
	results := make([]*Source, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = l.Load("example.properties", res)
		}(i)
	}
	close(start)
	wg.Wait()

	expected := map[string]string{"author": "peter", "country": "germany"}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if diff := cmp.Diff(expected, results[i].Map()); diff != "" {
			t.Errorf("caller %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	if got := l.cache.len(); got != 1 {
		t.Errorf("cache entries = %d, want 1", got)
	}
	cached, _ := l.cache.get("example.properties")
	if diff := cmp.Diff(expected, cached.Map()); diff != "" {
		t.Errorf("cached source mismatch (-want +got):\n%s", diff)
	}
}
