package binding

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/propbind/propbind/convert"
	"github.com/propbind/propbind/source"
)

// SourceLoader loads a named source; *source.Loader implements it.
type SourceLoader interface {
	Load(name string, resources fs.FS) (*source.Source, error)
}

// SetupParams collects the collaborators of Setup.
type SetupParams[T any] struct {
	Spec Spec
	// Resources holds bundled sources for the bound type. May be nil.
	Resources fs.FS
	Loader    SourceLoader
	Registry  *convert.Registry
	Native    Target[T]
	Reporter  ErrorReporter
	Logger    *slog.Logger
}

// Setup prepares property binding for one type. It loads the spec's source,
// resolves every field once and returns a Decorator around the native target.
//
// When the source cannot be loaded the error is reported, Setup returns it
// together with the undecorated native target and no instance is bound.
func Setup[T any](p SetupParams[T]) (Target[T], error) {
	if p.Native == nil {
		return nil, errors.New("binding setup: nil native target")
	}
	if p.Loader == nil || p.Registry == nil {
		return p.Native, errors.New("binding setup: loader and registry are required")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	src, err := p.Loader.Load(p.Spec.Source, p.Resources)
	if err != nil {
		err = fmt.Errorf("binding %s: %w", p.Spec.Name, err)
		if p.Reporter != nil {
			p.Reporter.AddDefinitionError(err)
		}
		logger.Error("failed to load properties", "type", p.Spec.Name, "source", p.Spec.Source, "error", err)
		return p.Native, err
	}

	resolved := Resolve(p.Spec, src, p.Registry)
	logger.Debug("resolved properties", "type", p.Spec.Name, "source", src.Name(),
		"fields", resolved.Len(), "errors", len(resolved.Errors()))
	return NewDecorator(p.Native, resolved, p.Reporter, logger), nil
}
