package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	guwerrors "guw.dev/guw/internal/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, guwerrors.ExitOK},
		{"plain", errors.New("boom"), guwerrors.ExitGeneric},
		{"validation", guwerrors.NewValidationError("features", "duplicate"), guwerrors.ExitValidation},
		{"transition", guwerrors.NewInvalidTransitionError("f1", "integrated", "pending"), guwerrors.ExitState},
		{"state", guwerrors.NewStateError("f1", "is merging"), guwerrors.ExitState},
		{"conflict", fmt.Errorf("step 2: %w", guwerrors.NewConflictError("f2", "abc", nil)), guwerrors.ExitConflict},
		{"git", guwerrors.NewGitCommandError("git", []string{"fetch"}, "", "denied", errors.New("exit 128")), guwerrors.ExitBackend},
		{"backend", guwerrors.NewBackendError("resolve", errors.New("nope")), guwerrors.ExitBackend},
		{"missing branch", guwerrors.NewBranchNotFoundError("f1"), guwerrors.ExitBackend},
		{"push", &guwerrors.PushError{Failures: []guwerrors.PushFailure{{Remote: "origin", Branch: "f1", Err: errors.New("rejected")}}}, guwerrors.ExitPush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, guwerrors.ExitCode(tt.err))
		})
	}
}

func TestValidationErrorCollectsViolations(t *testing.T) {
	verr := &guwerrors.ValidationError{}
	require.NoError(t, verr.ErrOrNil())

	verr.Add("features[1]", "duplicate feature name %q", "f1")
	verr.Add("source.remote", "unknown remote %q", "up")

	err := verr.ErrOrNil()
	require.Error(t, err)
	require.ErrorIs(t, err, guwerrors.ErrValidation)
	require.Contains(t, err.Error(), "2 problems")
	require.Contains(t, err.Error(), `unknown remote "up"`)
}

func TestConflictErrorMessage(t *testing.T) {
	err := guwerrors.NewConflictError("feature2", "0123456789abcdef", []string{"a.txt", "b.txt"})
	require.Equal(t, "rebase conflict on branch feature2 at commit 0123456 (a.txt, b.txt)", err.Error())

	var conflict *guwerrors.ConflictError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &conflict))
	require.Equal(t, "feature2", conflict.Branch)
}
