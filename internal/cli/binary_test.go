package cli_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/status"
	"guw.dev/guw/testhelpers"
)

// getGuwBinary returns the path to the shared guw binary
func getGuwBinary(t *testing.T) string {
	t.Helper()
	binaryPath, err := testhelpers.GetSharedBinaryPath()
	if err != nil {
		t.Fatalf("failed to build guw binary: %v", err)
	}
	return binaryPath
}

func guwCommand(t *testing.T, binary string, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Env = append(os.Environ(),
		"GUW_LOG_FILE="+filepath.Join(t.TempDir(), "guw.log"),
		"GUW_SNAPSHOT_DIR="+t.TempDir(),
		"GUW_NON_INTERACTIVE=1",
	)
	return cmd
}

func TestBinary(t *testing.T) {
	binary := getGuwBinary(t)

	t.Run("local sync exits cleanly and pushes nothing", func(t *testing.T) {
		scene, path := forkScene(t)

		output, err := guwCommand(t, binary, "sync", "--local", "-c", path).CombinedOutput()
		require.NoError(t, err, string(output))
		require.Contains(t, string(output), "Nothing was pushed")
		testhelpers.ExpectRemoteBranches(t, scene, "origin", []string{"main", "feature1", "feature2", "feature3"})
	})

	t.Run("exit code follows the error category", func(t *testing.T) {
		scene, path := forkScene(t)
		cfg := scene.ForkConfig()
		cfg.Features[2].Status = status.Merging
		require.NoError(t, cfg.Save(path))

		output, err := guwCommand(t, binary, "sync", "-c", path).CombinedOutput()
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), string(output))
		require.Equal(t, guwerrors.ExitValidation, exitErr.ExitCode())
		require.Contains(t, string(output), "error:")
	})
}
