package testhelpers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"guw.dev/guw/testhelpers"
)

func TestForkScene(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.ForkSceneSetup)

	testhelpers.ExpectRemoteBranches(t, scene, "origin", []string{"main", "feature1", "feature2", "feature3"})
	testhelpers.ExpectRemoteBranches(t, scene, "upstream", []string{"master"})
	testhelpers.ExpectCommits(t, scene, "origin", "feature3", []string{"init", "Add file1.txt", "Add file2.txt", "Add file3.txt"})
	testhelpers.ExpectCommits(t, scene, "upstream", "master", []string{"init", "Upstream change", "Merge feature1"})

	cfg := scene.ForkConfig()
	require.NoError(t, cfg.Validate())
	require.Empty(t, scene.RemoteRevision("origin", "final"))
}

func TestFakeBackendRebaseIsContentAddressed(t *testing.T) {
	fake := testhelpers.NewFakeBackend()
	base := fake.Chain("", "init")
	tip := fake.Chain(base, "a", "b")
	fake.SetBranch("topic", tip)

	rebased, err := fake.Rebase(context.Background(), "topic", base, base)
	require.NoError(t, err)
	require.Equal(t, tip, rebased)

	onto := fake.Chain(base, "c")
	fake.SetBranch("other", tip)
	moved, err := fake.Rebase(context.Background(), "other", onto, base)
	require.NoError(t, err)
	require.Equal(t, []string{"init", "c", "a", "b"}, fake.Patches(moved))
}
