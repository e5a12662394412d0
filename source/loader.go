package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Config controls where the Loader looks for sources and whether it caches
// them. It is read once when the Loader is created.
type Config struct {
	// BaseDir is the directory relative source names are resolved against
	// on the filesystem. Empty means the current working directory.
	BaseDir string
	// PreferFilesystem tries the filesystem before bundled resources.
	PreferFilesystem bool
	// UseCache keeps successfully loaded sources by name.
	UseCache bool
	// CacheSize bounds the cache. Zero keeps every source.
	CacheSize int
}

// Option configures optional Loader collaborators.
type Option func(*Loader)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFilesystem replaces the directory backend with fsys. BaseDir is
// ignored when it is set.
func WithFilesystem(fsys fs.FS) Option {
	return func(l *Loader) {
		l.fsys = fsys
	}
}

// Loader resolves source names to parsed Sources.
type Loader struct {
	cfg    Config
	fsys   fs.FS
	cache  sourceCache
	group  singleflight.Group
	logger *slog.Logger
}

// NewLoader returns a Loader for cfg.
func NewLoader(cfg Config, opts ...Option) (*Loader, error) {
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("invalid cache size %d", cfg.CacheSize)
	}

	l := &Loader{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}

	if cfg.UseCache {
		if cfg.CacheSize > 0 {
			c, err := newLRUCache(cfg.CacheSize)
			if err != nil {
				return nil, fmt.Errorf("failed to create cache: %w", err)
			}
			l.cache = c
		} else {
			l.cache = newMapCache()
		}
	}
	return l, nil
}

// Config returns the configuration the loader was created with.
func (l *Loader) Config() Config {
	return l.cfg
}

// Load returns the source called name. Bundled resources are looked up in
// resources, which may be nil when the caller has none.
//
// A cached source is returned without touching storage. Otherwise the
// preferred backend is tried first and the other one second; the first that
// opens the file wins. When neither does, the returned error matches
// ErrSourceNotFound. Failed loads are never cached.
func (l *Loader) Load(name string, resources fs.FS) (*Source, error) {
	if l.cache == nil {
		return l.read(name, resources)
	}

	if s, ok := l.cache.get(name); ok {
		l.logger.Debug("properties served from cache", "name", name)
		return s, nil
	}

	v, err, _ := l.group.Do(name, func() (any, error) {
		if s, ok := l.cache.get(name); ok {
			return s, nil
		}
		s, err := l.read(name, resources)
		if err != nil {
			return nil, err
		}
		l.cache.add(name, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Source), nil
}

// Cached reports whether a source called name is held in the cache.
func (l *Loader) Cached(name string) bool {
	if l.cache == nil {
		return false
	}
	_, ok := l.cache.get(name)
	return ok
}

type backend struct {
	kind string
	open func(name string) (io.ReadCloser, error)
}

func (l *Loader) backends(resources fs.FS) []backend {
	res := backend{kind: "resource", open: func(name string) (io.ReadCloser, error) {
		return openFS(resources, name)
	}}
	file := backend{kind: "filesystem", open: l.openFile}

	if l.cfg.PreferFilesystem {
		return []backend{file, res}
	}
	return []backend{res, file}
}

func (l *Loader) read(name string, resources fs.FS) (*Source, error) {
	for _, b := range l.backends(resources) {
		rc, err := b.open(name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				l.logger.Warn("failed to open properties", "name", name, "backend", b.kind, "error", err)
			}
			continue
		}

		s, err := Parse(name, rc)
		rc.Close()
		if err != nil {
			l.logger.Error("failed to parse properties", "name", name, "backend", b.kind, "error", err)
			return nil, err
		}

		l.logger.Debug("loaded properties", "name", name, "backend", b.kind, "count", s.Len())
		if l.logger.Enabled(context.Background(), slog.LevelDebug) {
			for _, key := range s.Keys() {
				value, _ := s.Lookup(key)
				l.logger.Debug("property", "name", name, "key", key, "value", value)
			}
		}
		return s, nil
	}
	return nil, &NotFoundError{Name: name}
}

func (l *Loader) openFile(name string) (io.ReadCloser, error) {
	if l.fsys != nil {
		return openFS(l.fsys, name)
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.cfg.BaseDir, name)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, fs.ErrNotExist)
	}
	return os.Open(path)
}

func openFS(fsys fs.FS, name string) (io.ReadCloser, error) {
	if fsys == nil {
		return nil, fs.ErrNotExist
	}
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		f.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return f, nil
}
