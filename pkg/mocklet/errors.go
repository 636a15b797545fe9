package mocklet

// Error codes surfaced in structured error bodies.
const (
	// CodeRouteNotFound marks the 404 produced when no route matches.
	// Adapters rely on this exact value to distinguish "no route" from
	// an application-level 404 returned by a matched route.
	CodeRouteNotFound = "ROUTE_NOT_FOUND"
)

// Error is a coded error. When a generator or plugin fails with an
// *Error, the code is copied into the 500 response body.
type Error struct {
	Code    string
	Message string
}

// NewError creates a coded error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string { return e.Message }

// ErrorCode implements the coder interface so wrapped errors still
// surface their code.
func (e *Error) ErrorCode() string { return e.Code }

// coder is satisfied by errors that carry a structured code.
type coder interface {
	ErrorCode() string
}
