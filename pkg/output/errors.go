package output

import (
	"errors"
	"fmt"
)

// ErrMisuse reports a builder call the target cannot represent.
var ErrMisuse = errors.New("output: misuse")

// MisuseError details an ErrMisuse.
type MisuseError struct {
	Backend string
	Op      string
	Detail  string
}

func (e *MisuseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("output: %s backend cannot %s", e.Backend, e.Op)
	}
	return fmt.Sprintf("output: %s backend cannot %s: %s", e.Backend, e.Op, e.Detail)
}

// Is matches ErrMisuse.
func (e *MisuseError) Is(target error) bool {
	return target == ErrMisuse
}

// Misuse builds a MisuseError.
func Misuse(backend, op, detail string) error {
	return &MisuseError{Backend: backend, Op: op, Detail: detail}
}
