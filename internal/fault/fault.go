// Package fault classifies failures of directory operations so callers can
// tell the user which logical step failed and whether a retry makes sense.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies the step of an operation that failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation means the caller supplied bad input; no remote call
	// was made.
	KindValidation
	// KindPrecondition means the operation was invoked before its required
	// precondition held (for example, no business profile exists yet).
	KindPrecondition
	// KindFetch covers record-store read failures.
	KindFetch
	// KindSave covers profile upsert failures.
	KindSave
	// KindUpload covers object-store upload failures.
	KindUpload
	// KindRecordInsert covers image-row insert failures after a successful
	// upload; the uploaded object is orphaned.
	KindRecordInsert
	// KindRemoval covers object-store removal failures.
	KindRemoval
	// KindRecordDelete covers image-row delete failures after the object is
	// already gone; the row now references a missing object.
	KindRecordDelete
	// KindCascade covers failures during profile cascade deletion.
	KindCascade
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindFetch:
		return "fetch"
	case KindSave:
		return "save"
	case KindUpload:
		return "upload"
	case KindRecordInsert:
		return "record_insert"
	case KindRemoval:
		return "removal"
	case KindRecordDelete:
		return "record_delete"
	case KindCascade:
		return "cascade"
	default:
		return "unknown"
	}
}

// Error is a classified operation failure.
type Error struct {
	Kind Kind
	// Op names the failing operation, e.g. "gallery.AddImage".
	Op string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err as a classified failure of op.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates a classified failure with a formatted message and no cause.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
