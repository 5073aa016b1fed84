// Package kryptorerr defines the tagged error kinds shared across the
// core: every failure path classifies its error at the point it is
// raised, never by inspecting it later at a catch site.
package kryptorerr

import "fmt"

// Kind classifies a core error for the batch driver and for the
// human-facing message the CLI prints.
type Kind int

const (
	// Validation means a path, option, or key-material precondition
	// failed before any file was touched.
	Validation Kind = iota
	// TamperOrWrongKey means an AEAD tag rejected, or the header
	// parsed but a later stage detected corruption consistent with
	// either a bad key or tampering. The two causes are never
	// distinguished in the message shown to a user.
	TamperOrWrongKey
	// UnsupportedFormat means the magic or format version did not
	// match what this build understands.
	UnsupportedFormat
	// IO means a filesystem operation failed.
	IO
	// Cancelled means cooperative cancellation was observed between
	// chunks.
	Cancelled
	// Internal means a primitive adapter failure not attributable to
	// the input; this should be rare.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "ValidationError"
	case TamperOrWrongKey:
		return "TamperOrWrongKey"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case IO:
		return "IoError"
	case Cancelled:
		return "Cancelled"
	case Internal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// Error is a domain error tagged with a Kind, wrapping an underlying
// cause where one exists.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged error for op with no underlying cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf("%s", msg)}
}

// Wrap tags err with kind at op. Wrapping a nil error returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, and
// false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return 0, false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// UserMessage returns the human-facing message policy from §7: a
// single undifferentiated message for TamperOrWrongKey, and the plain
// error text otherwise.
func UserMessage(err error) string {
	if kind, ok := KindOf(err); ok && kind == TamperOrWrongKey {
		return "incorrect password/key, or this file has been tampered with"
	}
	return err.Error()
}
