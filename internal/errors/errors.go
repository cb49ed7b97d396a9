package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

var (
	// ErrUnauthenticated is returned when an operation has no caller identity
	ErrUnauthenticated = stderrors.New("not authenticated")
	// ErrNotFound is returned when a habit or record id does not resolve for the caller
	ErrNotFound = stderrors.New("not found")
	// ErrInvalidInput is returned for malformed dates, ids or habit attributes
	ErrInvalidInput = stderrors.New("invalid input")
)

// CadenceViolationError is returned when a habit is completed before its next eligible date
type CadenceViolationError struct {
	Cadence      constants.Cadence
	NextEligible time.Time
}

func (e *CadenceViolationError) Error() string {
	return fmt.Sprintf("this %s habit can't be completed again until %s",
		e.Cadence, e.NextEligible.Format(constants.DateFormat))
}

// NextEligibleDate returns the next eligible date in YYYY-MM-DD format
func (e *CadenceViolationError) NextEligibleDate() string {
	return e.NextEligible.Format(constants.DateFormat)
}

// AsCadenceViolation unwraps err into a *CadenceViolationError if it is one
func AsCadenceViolation(err error) (*CadenceViolationError, bool) {
	var cv *CadenceViolationError
	if stderrors.As(err, &cv) {
		return cv, true
	}
	return nil, false
}

// Invalidf wraps ErrInvalidInput with a formatted detail message
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail message
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Is and As re-export the standard library helpers so callers need one import
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
