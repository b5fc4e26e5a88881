package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Authentication failure taxonomy. ErrNoSuchUser and ErrBadCredentials are
// kept distinct internally but handlers surface both as the same generic
// message so a login attempt cannot probe which emails have accounts.
var (
	ErrNoSuchUser      = errors.New("no user found with that email")
	ErrBadCredentials  = errors.New("password incorrect")
	ErrDuplicateEmail  = errors.New("user with that email already exists")
	ErrUnauthenticated = errors.New("not authenticated")
)

// ValidationError reports every signup rule the input violated, not just the
// first one, so the form can show the complete list.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// StorageError wraps a failure from a backing store. It is logged and shown
// to the caller as an opaque failure, never retried here.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
