package prefserr

import (
	"context"
	"errors"
	"fmt"
)

// Class identifies one of the error taxonomy buckets callers can match
// against with errors.Is.
type Class string

const (
	ClassInvalidArgument Class = "invalid_argument"
	ClassNotSupported    Class = "not_supported"
	ClassBackupParse     Class = "backup_parse"
	ClassIo              Class = "io"
	ClassCancellation    Class = "cancellation"
)

// Error wraps an underlying cause with the taxonomy class it belongs to.
// Callers should use errors.Is/errors.As against the Class sentinels
// below rather than switching on Error.Class directly.
type Error struct {
	Class Class
	Op    string
	Key   string
	Err   error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%q): %v", e.Class, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Class, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotSupported) match any *Error of that class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class && t.Err == nil
}

// Sentinels usable with errors.Is(err, prefserr.ErrX).
var (
	ErrInvalidArgument = &Error{Class: ClassInvalidArgument}
	ErrNotSupported    = &Error{Class: ClassNotSupported}
	ErrBackupParse     = &Error{Class: ClassBackupParse}
	ErrIo              = &Error{Class: ClassIo}
	ErrCancellation    = &Error{Class: ClassCancellation}
)

func InvalidArgument(op, key string, err error) error {
	return &Error{Class: ClassInvalidArgument, Op: op, Key: key, Err: err}
}

func NotSupported(op, key string, err error) error {
	return &Error{Class: ClassNotSupported, Op: op, Key: key, Err: err}
}

func BackupParse(op string, err error) error {
	return &Error{Class: ClassBackupParse, Op: op, Err: err}
}

func Io(op, key string, err error) error {
	return &Error{Class: ClassIo, Op: op, Key: key, Err: err}
}

// Cancellation wraps a context cancellation/deadline error, propagating
// it unchanged in meaning rather than recovering from it internally.
func Cancellation(op string, err error) error {
	return &Error{Class: ClassCancellation, Op: op, Err: err}
}

// FromContext returns a Cancellation error if ctx is done, else nil.
func FromContext(op string, ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return Cancellation(op, err)
	}
	return nil
}

// IsCancellation reports whether err is (or wraps) a context cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrCancellation)
}
