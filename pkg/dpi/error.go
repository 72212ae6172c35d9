package dpi

import "fmt"

// ErrorInfo is the structured error detail retrieved from the native
// layer after a failed call. It satisfies the error interface so
// implementations can return it directly.
type ErrorInfo struct {
	// Code is the engine error number (ORA-nnnnn), zero for errors
	// raised by the client layer itself.
	Code int32
	// Offset is the byte offset into the SQL text for parse errors.
	Offset uint32
	Message string
	// FnName is the native layer function that failed.
	FnName string
	// Action describes what the native layer was doing when it failed.
	Action string
	// IsRecoverable reports whether the session may survive the error.
	IsRecoverable bool
	// IsWarning marks conditions reported without failing the call.
	IsWarning bool
}

// Error implements the error interface.
func (e *ErrorInfo) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("ORA-%05d: %s", e.Code, e.Message)
	}
	return e.Message
}
