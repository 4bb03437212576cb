package lobby

// Code classifies a failed operation so the HTTP boundary can map it to a
// status without string matching.
type Code int

const (
	CodeNotFound Code = iota + 1
	CodeForbidden
	CodeConflict
	CodeBadRequest
)

// Error is a domain failure: a stable classification plus the player-facing
// message returned in the response envelope.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func notFound(msg string) *Error   { return &Error{Code: CodeNotFound, Message: msg} }
func forbidden(msg string) *Error  { return &Error{Code: CodeForbidden, Message: msg} }
func conflict(msg string) *Error   { return &Error{Code: CodeConflict, Message: msg} }
func badRequest(msg string) *Error { return &Error{Code: CodeBadRequest, Message: msg} }
