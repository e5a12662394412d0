// Package container is a small host for property binding. It registers
// struct types, binds their `property` fields from a properties file and
// builds instances through a lifecycle of produce, inject, post-construct,
// pre-destroy and dispose.
//
//	type Author struct {
//	    Name    string `property:"author"`
//	    Country string `property:"country"`
//	}
//
//	c := container.New(loader, convert.Default())
//	if err := container.Register[Author](c, "example.properties", nil); err != nil {
//	    return err
//	}
//	a, err := container.Get[Author](c)
//
// Fields tagged `inject:""` are filled from values handed to Provide before
// properties are bound. Types may implement PostConstruct() error,
// PreDestroy() error and io.Closer to hook into the lifecycle.
//
// Definition errors are collected per type; Get returns every error of its
// type at once and Errors returns those of all types.
package container
