package datastore

import (
	"errors"
	"fmt"
)

// ErrCorruptSnapshot marks a record file that exists but cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// StoreIOError reports a failed read or write of persisted state.
type StoreIOError struct {
	Op   string // read, decode, write, rename, ...
	Key  string
	Path string
	Err  error
	Hint string // how the operator can recover, if known
}

func (e *StoreIOError) Error() string {
	msg := fmt.Sprintf("snapshot store %s failed for key %s (%s): %v", e.Op, e.Key, e.Path, e.Err)
	if e.Hint != "" {
		msg += "; " + e.Hint
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *StoreIOError) Unwrap() error {
	return e.Err
}

func newStoreIOError(op, key, path string, err error) *StoreIOError {
	return &StoreIOError{Op: op, Key: key, Path: path, Err: err}
}
