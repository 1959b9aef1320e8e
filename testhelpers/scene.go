package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/status"
)

const (
	testUserName  = "Test User"
	testUserEmail = "test@example.com"
)

// gitEnv isolates test git commands from the user's configuration
func gitEnv() []string {
	return append(os.Environ(),
		"GIT_CONFIG_GLOBAL=/dev/null",
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME="+testUserName,
		"GIT_AUTHOR_EMAIL="+testUserEmail,
		"GIT_COMMITTER_NAME="+testUserName,
		"GIT_COMMITTER_EMAIL="+testUserEmail,
	)
}

// SetGitEnv applies the same isolation to the test process, so code under test
// that shells out to git has an identity and ignores the user's configuration.
func SetGitEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GIT_CONFIG_GLOBAL", "/dev/null")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", testUserName)
	t.Setenv("GIT_AUTHOR_EMAIL", testUserEmail)
	t.Setenv("GIT_COMMITTER_NAME", testUserName)
	t.Setenv("GIT_COMMITTER_EMAIL", testUserEmail)
}

// Scene is a temporary directory with an authoring repository and bare remotes
type Scene struct {
	T   *testing.T
	Dir string
	// Repo is where test history is authored before being published
	Repo *GitRepo
	// Remotes maps remote names to bare repository paths
	Remotes map[string]string
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a scene. Cleanup is handled by t.TempDir.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()
	SetGitEnv(t)

	dir := t.TempDir()
	repo, err := NewGitRepo(filepath.Join(dir, "author"))
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{T: t, Dir: dir, Repo: repo, Remotes: map[string]string{}}
	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return scene
}

// AddRemote creates a bare repository and registers it as a remote of Repo
func (s *Scene) AddRemote(name string) (string, error) {
	bare := filepath.Join(s.Dir, name+".git")
	cmd := exec.Command("git", "init", "--bare", "-b", "main", bare)
	cmd.Env = gitEnv()
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to create bare repo: %s: %w", output, err)
	}
	if err := s.Repo.runGitCommand("remote", "add", name, bare); err != nil {
		return "", err
	}
	s.Remotes[name] = bare
	return bare, nil
}

// Publish pushes branches of Repo to a remote
func (s *Scene) Publish(remote string, branches ...string) error {
	for _, branch := range branches {
		if err := s.Repo.PushBranch(remote, branch); err != nil {
			return err
		}
	}
	return nil
}

// RemoteRevision returns a branch tip on a bare remote, or "" when it does not exist
func (s *Scene) RemoteRevision(remote, branch string) string {
	sha, err := gitOutput(s.Remotes[remote], "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	if err != nil {
		return ""
	}
	return sha
}

// RemoteBranches lists the branches of a bare remote
func (s *Scene) RemoteBranches(remote string) []string {
	output, err := gitOutput(s.Remotes[remote], "for-each-ref", "refs/heads/", "--format=%(refname:short)")
	if err != nil {
		s.T.Fatalf("failed to list branches of %s: %v", remote, err)
	}
	return splitLines(output)
}

// RemoteCommitMessages returns the subjects of a branch on a bare remote, oldest first
func (s *Scene) RemoteCommitMessages(remote, branch string) []string {
	messages, err := commitMessages(s.Remotes[remote], "refs/heads/"+branch)
	if err != nil {
		s.T.Fatalf("failed to read %s/%s: %v", remote, branch, err)
	}
	return messages
}

// ForkSceneSetup builds a fork of an upstream project. origin carries main
// and a chain feature1 <- feature2 <- feature3, each adding its own file.
// upstream/master has moved on and integrated feature1 as a different commit.
func ForkSceneSetup(s *Scene) error {
	for _, name := range []string{"origin", "upstream"} {
		if _, err := s.AddRemote(name); err != nil {
			return err
		}
	}

	r := s.Repo
	steps := []func() error{
		func() error { return r.CreateChangeAndCommit("README", "fork\n", "init") },
		func() error { return r.CreateAndCheckoutBranch("feature1") },
		func() error { return r.CreateChangeAndCommit("file1.txt", "one\n", "Add file1.txt") },
		func() error { return r.CreateAndCheckoutBranch("feature2") },
		func() error { return r.CreateChangeAndCommit("file2.txt", "two\n", "Add file2.txt") },
		func() error { return r.CreateAndCheckoutBranch("feature3") },
		func() error { return r.CreateChangeAndCommit("file3.txt", "three\n", "Add file3.txt") },
		func() error { return s.Publish("origin", "main", "feature1", "feature2", "feature3") },
		func() error { return r.CheckoutBranch("main") },
		func() error { return r.CreateAndCheckoutBranch("master") },
		func() error { return r.CreateChangeAndCommit("upstream.txt", "upstream\n", "Upstream change") },
		func() error { return r.CreateChangeAndCommit("file1.txt", "one\n", "Merge feature1") },
		func() error { return s.Publish("upstream", "master") },
		func() error { return r.CheckoutBranch("main") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// ForkConfig is the config matching ForkSceneSetup: feature1 integrated,
// feature2 merging and feature3 pending
func (s *Scene) ForkConfig() *config.Config {
	return &config.Config{
		Remotes: []config.Remote{
			{Name: "origin", URL: s.Remotes["origin"]},
			{Name: "upstream", URL: s.Remotes["upstream"]},
		},
		Source:   config.BranchRef{Remote: "origin", Branch: "main"},
		Target:   config.BranchRef{Remote: "origin", Branch: "final"},
		Upstream: &config.BranchRef{Remote: "upstream", Branch: "master"},
		Features: []config.Feature{
			{Remote: "origin", Name: "feature1", Status: status.Integrated},
			{Remote: "origin", Name: "feature2", Status: status.Merging, PR: "https://example.com/pr/2"},
			{Remote: "origin", Name: "feature3", Status: status.Pending, Summary: "Add file3.txt"},
		},
	}
}
