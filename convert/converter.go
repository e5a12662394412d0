package convert

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ErrConversion is returned when a raw value cannot be parsed as the target type.
var ErrConversion = errors.New("conversion failed")

// Converter tests whether it can produce values of a type and converts raw
// property strings into such values. Implementations must be stateless.
type Converter interface {
	// Accepts reports whether Convert produces values usable for t.
	Accepts(t reflect.Type) bool
	// Convert parses raw into a typed value.
	Convert(raw string) (any, error)
}

// kindConverter accepts every type of a single reflect.Kind.
type kindConverter struct {
	name  string
	kind  reflect.Kind
	parse func(raw string) (any, error)
}

func (c kindConverter) Accepts(t reflect.Type) bool {
	return t != nil && t.Kind() == c.kind
}

func (c kindConverter) Convert(raw string) (any, error) {
	v, err := c.parse(raw)
	if err != nil {
		return nil, conversionError(raw, c.name, err)
	}
	return v, nil
}

func (c kindConverter) String() string {
	return c.name
}

type durationConverter struct{}

var durationType = reflect.TypeOf(time.Duration(0))

func (durationConverter) Accepts(t reflect.Type) bool {
	return t == durationType
}

func (durationConverter) Convert(raw string) (any, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, conversionError(raw, "duration", err)
	}
	return d, nil
}

func (durationConverter) String() string {
	return "duration"
}

func conversionError(raw, target string, err error) error {
	return fmt.Errorf("%w: %q as %s: %v", ErrConversion, raw, target, err)
}

func parseInt(bits int, cast func(int64) any) func(string) (any, error) {
	return func(raw string) (any, error) {
		n, err := strconv.ParseInt(raw, 10, bits)
		if err != nil {
			return nil, err
		}
		return cast(n), nil
	}
}

func parseFloat(bits int, cast func(float64) any) func(string) (any, error) {
	return func(raw string) (any, error) {
		f, err := strconv.ParseFloat(raw, bits)
		if err != nil {
			return nil, err
		}
		return cast(f), nil
	}
}

// Built-in converters.
var (
	Boolean Converter = kindConverter{name: "bool", kind: reflect.Bool, parse: func(raw string) (any, error) {
		return strconv.ParseBool(raw)
	}}
	Byte    Converter = kindConverter{name: "int8", kind: reflect.Int8, parse: parseInt(8, func(n int64) any { return int8(n) })}
	Short   Converter = kindConverter{name: "int16", kind: reflect.Int16, parse: parseInt(16, func(n int64) any { return int16(n) })}
	Integer Converter = kindConverter{name: "int32", kind: reflect.Int32, parse: parseInt(32, func(n int64) any { return int32(n) })}
	Int     Converter = kindConverter{name: "int", kind: reflect.Int, parse: parseInt(strconv.IntSize, func(n int64) any { return int(n) })}
	Long    Converter = kindConverter{name: "int64", kind: reflect.Int64, parse: parseInt(64, func(n int64) any { return n })}
	Float   Converter = kindConverter{name: "float32", kind: reflect.Float32, parse: parseFloat(32, func(f float64) any { return float32(f) })}
	Double  Converter = kindConverter{name: "float64", kind: reflect.Float64, parse: parseFloat(64, func(f float64) any { return f })}
	String  Converter = kindConverter{name: "string", kind: reflect.String, parse: func(raw string) (any, error) {
		return raw, nil
	}}

	// Duration parses time.ParseDuration strings such as "1m30s".
	Duration Converter = durationConverter{}
)

// Builtins returns the built-in converters in their registration order.
func Builtins() []Converter {
	return []Converter{Boolean, Byte, Short, Integer, Int, Duration, Long, Float, Double, String}
}
