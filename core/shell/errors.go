package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch is matched by every LexError.
	ErrNoMatch = errors.New("no token matches")
	// ErrSyntax is matched by every SyntaxError.
	ErrSyntax = errors.New("syntax error")
	// ErrNotFound is returned when a program can't be located on the PATH.
	ErrNotFound = errors.New("command not found")
)

// LexError is returned when no recognizer matches at the scan position.
type LexError struct {
	Remaining string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("no token matches at %q", e.Remaining)
}

func (e *LexError) Is(target error) bool { return target == ErrNoMatch }

// SyntaxError is returned when a token sequence isn't a valid command.
type SyntaxError struct {
	Reason string
}

func (e *SyntaxError) Error() string {
	return "syntax error: " + e.Reason
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

func syntaxErrorf(format string, args ...interface{}) error {
	return &SyntaxError{Reason: fmt.Sprintf(format, args...)}
}

// RedirectionError is returned when a redirection target can't be opened.
type RedirectionError struct {
	Filename string
	Err      error
}

func (e *RedirectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *RedirectionError) Unwrap() error { return e.Err }

// SpawnError is returned when a pipeline stage could not be started.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	if errors.Is(e.Err, ErrNotFound) {
		return fmt.Sprintf("%s: command not found", e.Program)
	}
	return fmt.Sprintf("%s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
