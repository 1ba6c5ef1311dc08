package signature

import (
	"errors"
	"fmt"
)

// Conversion errors. Every failure returned by this package matches exactly one of them.
var (
	// ErrEncoding is returned when an encoding name cannot be resolved.
	ErrEncoding = errors.New("unknown encoding")
	// ErrTypeMismatch is returned when a record value has the wrong structural type.
	ErrTypeMismatch = errors.New("wrong argument type")
	// ErrTimeType is returned when the time value is not a time.Time.
	ErrTimeType = errors.New("expected Time object")
	// ErrRepository is matched by every *RepositoryError.
	ErrRepository = errors.New("repository error")
)

// RepositoryError wraps a failure reported by the git engine while building a signature.
type RepositoryError struct {
	Err error
	Op  string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the engine error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRepository.
func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepository
}

// Kind names the error class of err for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrTimeType):
		return "time_type"
	case errors.Is(err, ErrRepository):
		return "repository"
	default:
		return "unknown"
	}
}

func mismatch(field string, got any, want string) error {
	return fmt.Errorf("%w: %s is %T, expected %s", ErrTypeMismatch, field, got, want)
}
