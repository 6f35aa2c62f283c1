package store

import (
	"fmt"
)

// CorruptStateError is returned when a state file exists but cannot be
// decoded into the expected shape. Callers must not overwrite the file.
type CorruptStateError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptStateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt state file %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt state file %s: %s", e.Path, e.Reason)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

func corrupt(path, reason string, err error) error {
	return &CorruptStateError{Path: path, Reason: reason, Err: err}
}
