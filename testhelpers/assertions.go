// Package testhelpers provides testing utilities for guw: git scenes with
// bare remotes, an in-memory backend and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectRemoteBranches asserts that a bare remote has exactly the expected branches
func ExpectRemoteBranches(t *testing.T, s *Scene, remote string, expected []string) {
	t.Helper()

	actual := s.RemoteBranches(remote)
	sort.Strings(actual)
	expected = append([]string(nil), expected...)
	sort.Strings(expected)
	require.Equal(t, expected, actual, "Branches of %s do not match", remote)
}

// ExpectCommits asserts the commit subjects of a branch on a bare remote, oldest first
func ExpectCommits(t *testing.T, s *Scene, remote, branch string, expected []string) {
	t.Helper()
	require.Equal(t, expected, s.RemoteCommitMessages(remote, branch), "Commits of %s/%s do not match", remote, branch)
}
