package pipeline

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoRoots is returned when Run is called without any path.
var ErrNoRoots = errors.New("no paths given")

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

const rootHint = "Pass a job directory, a folder of jobs, or JENKINS_HOME."

// ValidateRoots checks that every root is an existing directory before
// anything is scanned.
func ValidateRoots(roots []string) error {
	if len(roots) == 0 {
		return &UserError{Message: "No paths to check", Hint: rootHint, Err: ErrNoRoots}
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return &UserError{
				Message: fmt.Sprintf("Cannot read %s", root),
				Hint:    rootHint,
				Err:     err,
			}
		}
		if !info.IsDir() {
			return &UserError{
				Message: fmt.Sprintf("%s is not a directory", root),
				Hint:    rootHint,
			}
		}
	}
	return nil
}
