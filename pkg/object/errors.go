package object

import "fmt"

// ErrorKind tags an Error with the class of failure.
type ErrorKind uint8

const (
	KindIO ErrorKind = iota + 1
	KindMalformedObject
	KindUnknownObject
	KindUnknownReference
	KindAmbiguousReference
	KindMissingData
	KindRepoNotFound
	KindEncoding
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindMalformedObject:
		return "malformed object"
	case KindUnknownObject:
		return "unknown object"
	case KindUnknownReference:
		return "unknown reference"
	case KindAmbiguousReference:
		return "ambiguous reference"
	case KindMissingData:
		return "missing data"
	case KindRepoNotFound:
		return "repository not found"
	case KindEncoding:
		return "encoding error"
	default:
		return fmt.Sprintf("error kind %d", uint8(k))
	}
}

// Error is the single error type surfaced by the object layer and the
// resolver built on it. Msg is human-readable; Err, when set, is the
// underlying cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the kind-only sentinels below, so callers can write
// errors.Is(err, object.ErrAmbiguousReference).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrIO                 = &Error{Kind: KindIO}
	ErrMalformedObject    = &Error{Kind: KindMalformedObject}
	ErrUnknownObject      = &Error{Kind: KindUnknownObject}
	ErrUnknownReference   = &Error{Kind: KindUnknownReference}
	ErrAmbiguousReference = &Error{Kind: KindAmbiguousReference}
	ErrMissingData        = &Error{Kind: KindMissingData}
	ErrRepoNotFound       = &Error{Kind: KindRepoNotFound}
	ErrEncoding           = &Error{Kind: KindEncoding}
)

// Errorf builds an Error of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error of the given kind around cause.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}
