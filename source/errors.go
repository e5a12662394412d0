package source

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound is matched by errors returned when no backend holds the
// requested source.
var ErrSourceNotFound = errors.New("properties file not found")

// NotFoundError reports a source that neither backend could open.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("properties file [%s] not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrSourceNotFound
}
