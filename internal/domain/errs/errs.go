package errs

import "errors"

type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindInvalid         Kind = "INVALID"
	KindUnavailable     Kind = "UNAVAILABLE"
	KindInternal        Kind = "INTERNAL"
)

// Error is a caller-facing domain error. Sentinels are compared by identity,
// so wrap them with fmt.Errorf("%w") instead of copying.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the domain message for err, hiding internal details.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}

var (
	ErrUnauthenticated = New(KindUnauthenticated, "unauthenticated")
	ErrForbidden       = New(KindForbidden, "forbidden")
	ErrNotApproved     = New(KindForbidden, "account is not approved")
	ErrInvalidInput    = New(KindInvalid, "invalid input")
)
