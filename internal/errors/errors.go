// Package errors provides sentinel errors and custom error types for guw.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for each failure category
var (
	// ErrValidation indicates a malformed configuration
	ErrValidation = errors.New("invalid configuration")

	// ErrInvalidTransition indicates an illegal feature status change
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrState indicates an operation that violates feature business rules
	ErrState = errors.New("invalid feature state")

	// ErrRebaseConflict indicates that a rebase operation encountered a conflict
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrBackend indicates a failure of the underlying git repository or network
	ErrBackend = errors.New("backend failure")

	// ErrPush indicates that the local chain is valid but remotes are stale
	ErrPush = errors.New("push failed")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")
)

// Exit codes returned by the guw binary, one per category
const (
	ExitOK         = 0
	ExitGeneric    = 1
	ExitValidation = 2
	ExitState      = 3
	ExitConflict   = 4
	ExitBackend    = 5
	ExitPush       = 6
)

// Violation is a single broken configuration invariant
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError collects every violation found in a configuration
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	switch len(e.Violations) {
	case 0:
		return ErrValidation.Error()
	case 1:
		return fmt.Sprintf("invalid configuration: %s", e.Violations[0])
	}
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, "  - "+v.String())
	}
	return fmt.Sprintf("invalid configuration (%d problems):\n%s", len(e.Violations), strings.Join(lines, "\n"))
}

// Is returns true if the target error is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add appends a violation
func (e *ValidationError) Add(field, format string, args ...interface{}) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ErrOrNil returns the error if any violation was recorded, nil otherwise
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// NewValidationError creates a ValidationError with a single violation
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	e := &ValidationError{}
	e.Add(field, format, args...)
	return e
}

// InvalidTransitionError represents an illegal status change
type InvalidTransitionError struct {
	Feature string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	if e.Feature == "" {
		return fmt.Sprintf("cannot move status from %s to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot move feature %s from %s to %s", e.Feature, e.From, e.To)
}

// Is returns true if the target error is ErrInvalidTransition
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewInvalidTransitionError creates a new InvalidTransitionError
func NewInvalidTransitionError(feature, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Feature: feature, From: from, To: to}
}

// StateError represents a structural operation rejected by business rules
type StateError struct {
	Feature string
	Reason  string
}

func (e *StateError) Error() string {
	if e.Feature == "" {
		return e.Reason
	}
	return fmt.Sprintf("feature %s: %s", e.Feature, e.Reason)
}

// Is returns true if the target error is ErrState
func (e *StateError) Is(target error) bool {
	return target == ErrState
}

// NewStateError creates a new StateError
func NewStateError(feature, format string, args ...interface{}) *StateError {
	return &StateError{Feature: feature, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError represents a rebase that stopped on conflicting changes
type ConflictError struct {
	Branch string
	Commit string
	Files  []string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("rebase conflict on branch %s", e.Branch)
	if e.Commit != "" {
		msg += fmt.Sprintf(" at commit %s", ShortSHA(e.Commit))
	}
	if len(e.Files) > 0 {
		msg += fmt.Sprintf(" (%s)", strings.Join(e.Files, ", "))
	}
	return msg
}

// Is returns true if the target error is ErrRebaseConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrRebaseConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(branch, commit string, files []string) *ConflictError {
	return &ConflictError{Branch: branch, Commit: commit, Files: files}
}

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound or ErrBackend
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound || target == ErrBackend
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrBackend
func (e *GitCommandError) Is(target error) bool {
	return target == ErrBackend
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// BackendError wraps any other repository failure so it classifies as ErrBackend
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrBackend
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// NewBackendError creates a new BackendError
func NewBackendError(op string, err error) *BackendError {
	return &BackendError{Op: op, Err: err}
}

// PushFailure is a single branch that could not be pushed
type PushFailure struct {
	Remote string
	Branch string
	Err    error
}

// PushError reports pushes that failed after a fully successful local run
type PushError struct {
	Failures []PushFailure
}

func (e *PushError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s/%s: %v", f.Remote, f.Branch, f.Err))
	}
	return fmt.Sprintf("local branches are up to date but %d push(es) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Is returns true if the target error is ErrPush
func (e *PushError) Is(target error) bool {
	return target == ErrPush
}

// ExitCode maps an error to the process exit status for its category
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrValidation):
		return ExitValidation
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrState):
		return ExitState
	case errors.Is(err, ErrRebaseConflict):
		return ExitConflict
	case errors.Is(err, ErrPush):
		return ExitPush
	case errors.Is(err, ErrBackend):
		return ExitBackend
	default:
		return ExitGeneric
	}
}

// ShortSHA truncates a commit id for display
func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
