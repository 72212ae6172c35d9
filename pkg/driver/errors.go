package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// ErrorKind classifies driver errors. Every failing operation returns a
// single *Error carrying its kind plus enough context to diagnose the
// failure without re-running.
type ErrorKind int

// Error kinds.
const (
	ErrKindUnknown ErrorKind = iota
	// ErrKindDataTypeNotSupported: a bind or fetch met a type with no
	// conversion rule.
	ErrKindDataTypeNotSupported
	// ErrKindOutOfRange: a numeric or temporal conversion would overflow
	// or lose required precision.
	ErrKindOutOfRange
	// ErrKindNullValue: a non-nullable read on a null cell.
	ErrKindNullValue
	// ErrKindInvalidOperation: the operation is illegal for the
	// statement's kind or current state.
	ErrKindInvalidOperation
	// ErrKindBindModeConflict: positional and named binds mixed within
	// one execution.
	ErrKindBindModeConflict
	// ErrKindBufferShapeMismatch: the native tag and the payload variant
	// disagree. Unreachable in correct code; report it if seen.
	ErrKindBufferShapeMismatch
	// ErrKindStatementClosed: operation attempted after Close.
	ErrKindStatementClosed
	// ErrKindNativeLayer: the native call layer failed; Native carries
	// its detail.
	ErrKindNativeLayer
	// ErrKindCancelled: the round trip was interrupted.
	ErrKindCancelled
	// ErrKindTimeout: the round trip exceeded the configured call
	// timeout.
	ErrKindTimeout
	// ErrKindNoMoreData: the result set is exhausted.
	ErrKindNoMoreData
	// ErrKindInvalidBindIndex: bind position out of range (one-based).
	ErrKindInvalidBindIndex
	// ErrKindInvalidBindName: bind name not present in the SQL.
	ErrKindInvalidBindName
	// ErrKindInvalidColumnIndex: column position out of range
	// (zero-based).
	ErrKindInvalidColumnIndex
	// ErrKindInvalidColumnName: column name not in the result set.
	ErrKindInvalidColumnName
	// ErrKindUninitializedBind: a bind value read before any bind or
	// execute initialized it.
	ErrKindUninitializedBind
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindDataTypeNotSupported:
		return "data type not supported"
	case ErrKindOutOfRange:
		return "out of range"
	case ErrKindNullValue:
		return "null value"
	case ErrKindInvalidOperation:
		return "invalid operation"
	case ErrKindBindModeConflict:
		return "bind mode conflict"
	case ErrKindBufferShapeMismatch:
		return "buffer shape mismatch"
	case ErrKindStatementClosed:
		return "statement closed"
	case ErrKindNativeLayer:
		return "native layer error"
	case ErrKindCancelled:
		return "cancelled"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindNoMoreData:
		return "no more data"
	case ErrKindInvalidBindIndex:
		return "invalid bind index"
	case ErrKindInvalidBindName:
		return "invalid bind name"
	case ErrKindInvalidColumnIndex:
		return "invalid column index"
	case ErrKindInvalidColumnName:
		return "invalid column name"
	case ErrKindUninitializedBind:
		return "uninitialized bind value"
	default:
		return "unknown"
	}
}

// Error is the driver's error value.
type Error struct {
	Kind    ErrorKind
	Message string
	// Native holds the native layer's detail for ErrKindNativeLayer.
	Native *dpi.ErrorInfo
	// Column names the result column involved, when known.
	Column string
	wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Column != "" {
		return fmt.Sprintf("%s (column %s)", msg, e.Column)
	}
	return msg
}

// Unwrap supports errors.Is and errors.As chains.
func (e *Error) Unwrap() error {
	if e.wrapped != nil {
		return e.wrapped
	}
	if e.Native != nil {
		return e.Native
	}
	return nil
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is or wraps a driver *Error of the given
// kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ErrNoMoreData reports an exhausted result set. Compare with
// errors.Is.
var ErrNoMoreData = &Error{Kind: ErrKindNoMoreData, Message: "no more rows to fetch"}

// Is lets ErrNoMoreData match any exhausted-result error regardless of
// its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// wrapNative converts a failed native call into a driver error,
// classifying cancellation and timeout separately so callers can react
// without string matching.
func wrapNative(err error, action string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: ErrKindCancelled, Message: action + " cancelled", wrapped: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrKindTimeout, Message: action + " timed out", wrapped: err}
	}
	var info *dpi.ErrorInfo
	if errors.As(err, &info) {
		return &Error{
			Kind:    ErrKindNativeLayer,
			Message: fmt.Sprintf("%s failed: %s", action, info.Error()),
			Native:  info,
			wrapped: err,
		}
	}
	return &Error{Kind: ErrKindNativeLayer, Message: action + " failed", wrapped: err}
}
