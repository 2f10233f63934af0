package model

import "fmt"

// NotFoundError is returned only where the caller has to know that a
// referenced entity is missing; most mutations treat a missing id as a no-op.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Key)
}
