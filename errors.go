package invoicegen

import (
	"errors"
	"fmt"
)

// Sentinel errors for invoice generation failures.
var (
	ErrNoOrders        = errors.New("invoicegen: no orders to generate")
	ErrNoSurface       = errors.New("invoicegen: output target unavailable")
	ErrInvalidTemplate = errors.New("invoicegen: invalid template")
)

// Error records the generator operation that failed and why.
type Error struct {
	Op  string // operation name, e.g. "Generate", "SetTemplate"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invoicegen.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("invoicegen.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
