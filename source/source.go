package source

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/magiconair/properties"
)

// ErrParse is returned when a source stream is not a valid properties file.
var ErrParse = errors.New("malformed properties")

// Source is a named, immutable set of string properties.
type Source struct {
	name   string
	values map[string]string
}

// New returns a Source holding a copy of values.
func New(name string, values map[string]string) *Source {
	s := &Source{name: name, values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Parse reads a properties stream. Comment lines start with '#' or '!',
// keys and values are separated by '=' or ':', and both are trimmed of
// surrounding whitespace. The stream is decoded as UTF-8.
func Parse(name string, r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrParse, name, err)
	}

	s := &Source{name: name, values: make(map[string]string, p.Len())}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		s.values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return s, nil
}

// Name returns the name the source was loaded under.
func (s *Source) Name() string {
	return s.name
}

// Lookup returns the raw value stored under key.
func (s *Source) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns all keys in lexicographic order.
func (s *Source) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of properties.
func (s *Source) Len() int {
	return len(s.values)
}

// Map returns a copy of the properties.
func (s *Source) Map() map[string]string {
	m := make(map[string]string, len(s.values))
	for k, v := range s.values {
		m[k] = v
	}
	return m
}
