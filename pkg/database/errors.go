package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors for the store layer. Callers check them with errors.Is;
// each maps to a distinct HTTP status in the route layer so "not found" and
// "server error" are never collapsed into the same signal.
var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateKey is returned on unique index violations
	// (e.g. registering an already-taken username).
	ErrDuplicateKey = errors.New("store: duplicate key")

	// ErrTimeout is returned when an operation exceeds the store timeout.
	ErrTimeout = errors.New("store: operation timed out")

	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = errors.New("store: unavailable")
)

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }
func IsTimeout(err error) bool      { return errors.Is(err, ErrTimeout) }
func IsUnavailable(err error) bool  { return errors.Is(err, ErrUnavailable) }

// MapError translates a raw driver error into one of the sentinel errors,
// wrapping the cause so it stays inspectable via errors.Unwrap.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	// Already mapped — do not double-wrap.
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return &StoreError{Sentinel: ErrNotFound, Cause: err}
	case mongo.IsDuplicateKeyError(err):
		return &StoreError{Sentinel: ErrDuplicateKey, Cause: err}
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return &StoreError{Sentinel: ErrTimeout, Cause: err}
	case errors.Is(err, context.Canceled):
		return &StoreError{Sentinel: ErrTimeout, Cause: err}
	case mongo.IsNetworkError(err):
		return &StoreError{Sentinel: ErrUnavailable, Cause: err}
	}

	// Anything else from the driver means the store misbehaved.
	return &StoreError{Sentinel: ErrUnavailable, Cause: err}
}

// StoreError pairs a sentinel with the original driver error so callers can
// use errors.Is(err, database.ErrTimeout) or dig into the raw cause.
type StoreError struct {
	Sentinel error
	Cause    error
}

func (e *StoreError) Error() string {
	return e.Sentinel.Error() + ": " + e.Cause.Error()
}

func (e *StoreError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *StoreError) Unwrap() error        { return e.Cause }
