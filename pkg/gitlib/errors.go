package gitlib

import (
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrorCode mirrors the libgit2 return codes.
type ErrorCode int

// libgit2 return codes used by the signature functions.
const (
	ErrorCodeOK        ErrorCode = 0
	ErrorCodeGeneric   ErrorCode = -1
	ErrorCodeNotFound  ErrorCode = -3
	ErrorCodeExists    ErrorCode = -4
	ErrorCodeAmbiguous ErrorCode = -5
	ErrorCodeInvalid   ErrorCode = -12
)

// ErrorClass mirrors the libgit2 error classes.
type ErrorClass int

// libgit2 error classes used by the signature functions.
const (
	ErrorClassNone       ErrorClass = 0
	ErrorClassNoMemory   ErrorClass = 1
	ErrorClassOS         ErrorClass = 2
	ErrorClassInvalid    ErrorClass = 3
	ErrorClassReference  ErrorClass = 4
	ErrorClassRepository ErrorClass = 6
	ErrorClassConfig     ErrorClass = 7
	ErrorClassObject     ErrorClass = 11
)

// Error is a failure reported by the underlying git engine.
type Error struct {
	Message string
	Code    ErrorCode
	Class   ErrorClass
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}

	return other.Code == e.Code && (other.Class == ErrorClassNone || other.Class == e.Class)
}

// Sentinels for errors.Is matching against engine failures.
var (
	ErrNotFound = &Error{Code: ErrorCodeNotFound, Message: "not found"}
	ErrInvalid  = &Error{Code: ErrorCodeGeneric, Class: ErrorClassInvalid, Message: "invalid argument"}
)

func invalidf(format string, args ...any) *Error {
	return &Error{
		Code:    ErrorCodeGeneric,
		Class:   ErrorClassInvalid,
		Message: fmt.Sprintf(format, args...),
	}
}

// fromGit2go converts a git2go error into an *Error, keeping the libgit2 message.
func fromGit2go(err error) error {
	if err == nil {
		return nil
	}

	var gitErr *git2go.GitError
	if !errors.As(err, &gitErr) {
		return err
	}

	return &Error{
		Message: gitErr.Message,
		Code:    ErrorCode(gitErr.Code),
		Class:   ErrorClass(gitErr.Class),
	}
}
