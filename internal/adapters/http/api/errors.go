package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrDecode           = errors.New("decode request")
	ErrStore            = errors.New("store failure")
	ErrPanic            = errors.New("panic")
	ErrMissingFields    = errors.New("All fields are required.") //nolint:revive,stylecheck // client-facing text
	ErrMethodNotAllowed = errors.New("Method not allowed")       //nolint:revive,stylecheck // client-facing text
)

// Body decoding failures. Their text is what clients see.
var (
	ErrEmptyBody    = errors.New("Unexpected end of JSON input") //nolint:revive,stylecheck // client-facing text
	ErrNullBody     = errors.New("request body must be a JSON object")
	ErrTrailingData = errors.New("unexpected data after JSON body")
)

// unknownErrorMessage is reported when a recovered panic carries no error.
const unknownErrorMessage = "Unknown error"

// kindError tags a cause with the operation and a sentinel kind. errors.Is
// matches both the kind and anything in the cause chain.
type kindError struct {
	op   string
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *kindError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &kindError{op: op, kind: kind, err: err}
}

// publicMessage is the text shown to clients: the innermost cause's own
// message, so store and decoder errors come through unchanged.
func publicMessage(err error) string {
	var ke *kindError
	for errors.As(err, &ke) {
		if ke.err == nil {
			return ke.kind.Error()
		}
		err = ke.err
	}
	if err == nil {
		return unknownErrorMessage
	}
	return err.Error()
}
