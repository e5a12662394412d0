// Package convert turns raw property strings into typed Go values.
//
// A Registry holds an ordered list of converters. Find walks the list in
// registration order and returns the first converter that accepts the
// requested type:
//
//	reg := convert.Default()
//	c, ok := reg.Find(reflect.TypeOf(int32(0)))
//	if ok {
//	    v, err := c.Convert("42") // int32(42)
//	}
//
// Built-in converters accept by reflect.Kind, so named types such as
// `type Port int32` are accepted as well; the converted value has the
// canonical type of the kind and callers convert it to the named type.
// Duration is the exception: it accepts exactly time.Duration and is
// registered ahead of Long so that it wins for that type.
//
// New converters are appended with Register, typically during process
// start before any lookups happen.
package convert
