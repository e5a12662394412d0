package binding

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Accessor gives scoped write access to one field of an instance.
type Accessor interface {
	// Acquire opens the field of instance for writing. The returned Handle
	// must be released once the write is done.
	Acquire(instance any) (Handle, error)
}

// Handle writes a single field. After Release the handle rejects writes and
// any relaxed visibility is dropped.
type Handle interface {
	Set(value any) error
	Release()
}

// StructField returns an Accessor for the struct field at index, as reported
// by reflect.StructField.Index. Instances must be non-nil pointers to the
// struct. Unexported fields are writable only while the handle is held.
func StructField(index ...int) Accessor {
	return structField{index: append([]int(nil), index...)}
}

type structField struct {
	index []int
}

func (a structField) Acquire(instance any) (Handle, error) {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, fmt.Errorf("cannot bind fields of %T: not a non-nil pointer", instance)
	}
	if v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot bind fields of %T: not a pointer to a struct", instance)
	}

	f := v
	for _, i := range a.index {
		if f.Kind() == reflect.Pointer {
			if f.IsNil() {
				return nil, fmt.Errorf("field %v of %T: nil pointer on the path", a.index, instance)
			}
			f = f.Elem()
		}
		if f.Kind() != reflect.Struct || i < 0 || i >= f.NumField() {
			return nil, fmt.Errorf("field %v of %T does not exist", a.index, instance)
		}
		f = f.Field(i)
	}
	if len(a.index) == 0 {
		return nil, fmt.Errorf("empty field index for %T", instance)
	}
	if f.CanSet() {
		return &structHandle{field: f}, nil
	}
	if !f.CanAddr() {
		return nil, fmt.Errorf("field %v of %T is not addressable", a.index, instance)
	}
	relaxed := reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	return &structHandle{field: relaxed, relaxed: true}, nil
}

type structHandle struct {
	field    reflect.Value
	relaxed  bool
	released bool
}

func (h *structHandle) Set(value any) error {
	if h.released {
		return ErrReleased
	}

	rv := reflect.ValueOf(value)
	ft := h.field.Type()
	switch {
	case !rv.IsValid():
		h.field.Set(reflect.Zero(ft))
		return nil
	case rv.Type().AssignableTo(ft):
	case rv.Kind() == ft.Kind() && rv.Type().ConvertibleTo(ft):
		rv = rv.Convert(ft)
	default:
		return fmt.Errorf("cannot assign %T to field of type %v", value, ft)
	}
	h.field.Set(rv)
	return nil
}

func (h *structHandle) Release() {
	h.released = true
	h.relaxed = false
	h.field = reflect.Value{}
}
