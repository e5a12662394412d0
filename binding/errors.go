package binding

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/propbind/propbind/convert"
)

// Sentinel errors for use with errors.Is.
var (
	ErrNoConverter = errors.New("no value converter found")
	ErrNoValue     = errors.New("no value found")
	ErrConversion  = convert.ErrConversion
	ErrNoAccessor  = errors.New("field has no accessor")
	ErrReleased    = errors.New("field handle already released")
)

// FieldError reports a field that could not be bound.
type FieldError struct {
	Type      string
	Field     string
	Key       string
	FieldType reflect.Type
	Err       error
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNoConverter):
		return fmt.Sprintf("for field %s of type %v in %s no value converter was found", e.Field, e.FieldType, e.Type)
	case errors.Is(e.Err, ErrNoValue):
		return fmt.Sprintf("for field %s of type %v in %s no value was defined for key %q", e.Field, e.FieldType, e.Type, e.Key)
	default:
		return fmt.Sprintf("for field %s of type %v in %s: %v", e.Field, e.FieldType, e.Type, e.Err)
	}
}

func (e *FieldError) Unwrap() error { return e.Err }
