package domain

import "fmt"

// ErrorKind classifies every failure the core can return. The transport layer
// maps kinds to HTTP statuses; callers branch on the kind, never on message text.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindVersionConflict    ErrorKind = "version_conflict"
	KindPermissionDenied   ErrorKind = "permission_denied"
	KindNotAuthenticated   ErrorKind = "not_authenticated"
	KindInvariantViolation ErrorKind = "invariant_violation"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
)

// Error is the single error type returned by commands and repositories.
// It carries a machine-readable kind, a human-readable message, structured
// context (offending ids and the like) and the correlation id of the request
// that produced it.
type Error struct {
	Kind          ErrorKind
	Message       string
	Context       map[string]string
	CorrelationID string
	// Cause holds the underlying infrastructure error, if any.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same kind, so call sites can use
// errors.Is(err, domain.ErrNotFound) without caring about message or context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel targets for errors.Is checks. Never returned directly.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrVersionConflict    = &Error{Kind: KindVersionConflict}
	ErrPermissionDenied   = &Error{Kind: KindPermissionDenied}
	ErrNotAuthenticated   = &Error{Kind: KindNotAuthenticated}
	ErrInvariantViolation = &Error{Kind: KindInvariantViolation}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
)

// NewNotFound reports that an aggregate id has no events or was deleted.
func NewNotFound(correlationID, message string, ctx map[string]string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Context: ctx, CorrelationID: correlationID}
}

// NewVersionConflict reports a lost optimistic-concurrency race. The caller may
// reload and retry; the core never retries on its own.
func NewVersionConflict(correlationID, message string, ctx map[string]string) *Error {
	return &Error{Kind: KindVersionConflict, Message: message, Context: ctx, CorrelationID: correlationID}
}

// NewPermissionDenied reports that the actor lacks the required role or
// relationship to the target aggregate.
func NewPermissionDenied(correlationID, message string, ctx map[string]string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message, Context: ctx, CorrelationID: correlationID}
}

// NewNotAuthenticated reports that no usable actor identity is present.
func NewNotAuthenticated(correlationID, message string) *Error {
	return &Error{Kind: KindNotAuthenticated, Message: message, CorrelationID: correlationID}
}

// NewInvariantViolation reports a violated domain invariant (occupied pin,
// duplicate identity kind, qualification already held, ...).
func NewInvariantViolation(correlationID, message string, ctx map[string]string) *Error {
	return &Error{Kind: KindInvariantViolation, Message: message, Context: ctx, CorrelationID: correlationID}
}

// NewStorageUnavailable wraps an infrastructure failure the core surfaces but
// does not interpret.
func NewStorageUnavailable(correlationID string, cause error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: "event store unavailable", CorrelationID: correlationID, Cause: cause}
}
