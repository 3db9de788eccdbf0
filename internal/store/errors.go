package store

import (
	"errors"
	"fmt"
)

// Kind classifies a store failure. Every error returned through UserStore
// falls into exactly one kind.
type Kind int

const (
	// KindBackend covers engine, connectivity and serialization failures.
	KindBackend Kind = iota
	// KindNotFound means the operation targeted a username that does not exist.
	KindNotFound
	// KindConflict means a create targeted a username that already exists.
	KindConflict
)

// String returns the lowercase name of the kind, used as a metrics label.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "backend"
	}
}

// Sentinels for errors.Is. A *Error matches the sentinel of its kind.
var (
	// ErrNotFound is matched by errors for usernames that do not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is matched by errors for usernames that already exist.
	ErrDuplicate = errors.New("entity already exists")

	// ErrBackend is matched by every other store failure.
	ErrBackend = errors.New("backend failure")
)

// Backend names used as message prefixes.
const (
	EngineSQLite   = "SQLite"
	EnginePostgres = "PostgreSQL"
	EngineMySQL    = "MySQL"
	EngineRedis    = "Redis"
	EngineMongo    = "MongoDB"
)

// Error is the normalized error crossing the UserStore boundary.
// Message follows fixed templates so that callers that only see text can
// still tell the kinds apart.
type Error struct {
	Kind    Kind
	Message string
	Err     error // Original engine error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped engine error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrDuplicate:
		return e.Kind == KindConflict
	case ErrBackend:
		return e.Kind == KindBackend
	}
	return false
}

// NotFound returns the error for a username that does not exist.
func NotFound(username string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("User not found: %s", username),
	}
}

// Conflict returns the error for a username that already exists.
func Conflict(username string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("User already exists: %s", username),
	}
}

// Backend wraps an engine error with the engine name and the failed operation,
// e.g. "SQLite error: create user alice: disk I/O error".
func Backend(engine, op string, err error) *Error {
	msg := fmt.Sprintf("%s error: %s", engine, op)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{
		Kind:    KindBackend,
		Message: msg,
		Err:     err,
	}
}

// KindOf classifies any error. Errors that are not a *Error, or that wrap
// neither ErrNotFound nor ErrDuplicate, are KindBackend.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindConflict
	}
	return KindBackend
}

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return err != nil && KindOf(err) == KindConflict
}
