package apperror

import "errors"

// Kind classifies an application error per the recovery policy it demands:
// validation and import errors are terminal for the attempted operation,
// persistence and sync errors are recoverable by retry and must never crash.
type Kind int

const (
	KindValidation Kind = iota
	KindPersistence
	KindSync
	KindImport
	KindNotFound
)

// AppError carries a human-readable message alongside its Kind.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation reports a rejected request. The operation must not have
// mutated any state.
func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// Persistence wraps a failed local write. In-memory state may be ahead of
// durable state until a later write retries.
func Persistence(message string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

// Sync wraps a failed remote read or write. Local operation continues.
func Sync(message string, err error) *AppError {
	return &AppError{Kind: KindSync, Message: message, Err: err}
}

// Import reports a rejected backup or bulk-import payload.
func Import(message string) *AppError {
	return &AppError{Kind: KindImport, Message: message}
}

// NotFound reports a missing entity by description.
func NotFound(what string) *AppError {
	return &AppError{Kind: KindNotFound, Message: what + " not found"}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsValidation is a shorthand for IsKind(err, KindValidation).
func IsValidation(err error) bool {
	return IsKind(err, KindValidation)
}
