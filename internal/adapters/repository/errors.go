package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for store errors.
var (
	ErrStore   = errors.New("store error")
	ErrClosed  = errors.New("store closed")
	ErrConfig  = errors.New("invalid store config")
	ErrUnknown = errors.New("unknown store kind")
)

// StoreError is a failure reported by the backing database. Error returns
// the database's own message so it can be shown to clients unchanged.
type StoreError struct {
	Op      string // list, create, update, delete, ping
	Code    string // backend error code when known (SQLSTATE, PostgREST code)
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrStore.Error()
}

// Unwrap exposes the cause and the ErrStore kind to errors.Is.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStore}
	}
	return []error{ErrStore, e.Err}
}

func newStoreError(op, code, message string, cause error) *StoreError {
	return &StoreError{Op: op, Code: code, Message: message, Err: cause}
}

func closedError(op string) *StoreError {
	return newStoreError(op, "", fmt.Sprintf("%s: %s", op, ErrClosed), ErrClosed)
}
