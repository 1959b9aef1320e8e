package testhelpers

import (
	"context"
	"crypto/sha1" //nolint:gosec // content addressing for fake commits
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"guw.dev/guw/internal/engine"
	guwerrors "guw.dev/guw/internal/errors"
)

// FakeCommit is a commit in the in-memory repository. Its id is derived from
// its parent and patch, so replaying the same patch on the same parent always
// produces the same commit.
type FakeCommit struct {
	ID     string
	Parent string
	Patch  string
}

// FakeBackend is an in-memory engine.Backend. Remote servers, remote-tracking
// refs and local branches are kept separately so fetch and push behave like
// their git counterparts.
type FakeBackend struct {
	mu sync.Mutex

	commits  map[string]FakeCommit
	branches map[string]string
	tracking map[string]string
	servers  map[string]map[string]string

	head     string
	current  string
	rebasing bool

	// Conflicts makes Rebase stop on the named local branches
	Conflicts map[string]bool
	// RebaseErrors makes Rebase fail with a plain error on the named local branches
	RebaseErrors map[string]error
	// RevisionErrors makes Revision fail for the named refs
	RevisionErrors map[string]error
	// MoveErrors makes the next CreateOrMoveBranch of the named branch fail, once
	MoveErrors map[string]error
	// BeforeRebase runs at the start of every Rebase, outside the lock
	BeforeRebase func(ctx context.Context, branch string)
	// PushErrors makes Push fail, keyed by remote/branch
	PushErrors map[string]error
	// FetchErrors makes Fetch fail, keyed by remote
	FetchErrors map[string]error
	// Now is used to name backup branches
	Now time.Time

	// Fetched records fetched remotes
	Fetched []string
	// Pushed records successful pushes as remote/branch
	Pushed []string
}

var _ engine.Backend = (*FakeBackend)(nil)

// NewFakeBackend creates an empty fake repository
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		commits:        map[string]FakeCommit{},
		branches:       map[string]string{},
		tracking:       map[string]string{},
		servers:        map[string]map[string]string{},
		Conflicts:      map[string]bool{},
		RebaseErrors:   map[string]error{},
		MoveErrors:     map[string]error{},
		RevisionErrors: map[string]error{},
		PushErrors:     map[string]error{},
		FetchErrors:    map[string]error{},
		Now:            time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Commit creates a commit with the given patch on top of parent ("" for a root commit)
func (b *FakeBackend) Commit(parent, patch string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commit(parent, patch)
}

func (b *FakeBackend) commit(parent, patch string) string {
	sum := sha1.Sum([]byte(parent + "\x00" + patch)) //nolint:gosec
	id := hex.EncodeToString(sum[:])
	b.commits[id] = FakeCommit{ID: id, Parent: parent, Patch: patch}
	return id
}

// Chain stacks patches on top of parent and returns the tip
func (b *FakeBackend) Chain(parent string, patches ...string) string {
	tip := parent
	for _, p := range patches {
		tip = b.Commit(tip, p)
	}
	return tip
}

// Publish sets a branch on a remote server. It becomes visible locally after Fetch.
func (b *FakeBackend) Publish(remote, branch, sha string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.servers[remote] == nil {
		b.servers[remote] = map[string]string{}
	}
	b.servers[remote][branch] = sha
}

// ServerBranch returns a branch tip on a remote server
func (b *FakeBackend) ServerBranch(remote, branch string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sha, ok := b.servers[remote][branch]
	return sha, ok
}

// ServerBranches returns the branch names on a remote server, sorted
func (b *FakeBackend) ServerBranches(remote string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.servers[remote]))
	for name := range b.servers[remote] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocalBranches returns a copy of the local branch tips
func (b *FakeBackend) LocalBranches() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.branches))
	for k, v := range b.branches {
		out[k] = v
	}
	return out
}

// SetBranch points a local branch at a commit without any checks
func (b *FakeBackend) SetBranch(name, sha string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.branches[name] = sha
}

// Patches returns the patches from root to the given commit
func (b *FakeBackend) Patches(sha string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for id := sha; id != ""; id = b.commits[id].Parent {
		out = append([]string{b.commits[id].Patch}, out...)
	}
	return out
}

func (b *FakeBackend) Fetch(_ context.Context, remote string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.FetchErrors[remote]; err != nil {
		return err
	}
	server, ok := b.servers[remote]
	if !ok {
		return fmt.Errorf("remote %s does not exist", remote)
	}
	prefix := remote + "/"
	for ref := range b.tracking {
		if strings.HasPrefix(ref, prefix) {
			delete(b.tracking, ref)
		}
	}
	for branch, sha := range server {
		b.tracking[prefix+branch] = sha
	}
	b.Fetched = append(b.Fetched, remote)
	return nil
}

func (b *FakeBackend) BranchExists(name string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.branches[name]
	return ok, nil
}

func (b *FakeBackend) Revision(ref string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.RevisionErrors[ref]; err != nil {
		return "", err
	}
	return b.revision(ref)
}

func (b *FakeBackend) revision(ref string) (string, error) {
	if sha, ok := b.branches[ref]; ok {
		return sha, nil
	}
	if sha, ok := b.tracking[ref]; ok {
		return sha, nil
	}
	if _, ok := b.commits[ref]; ok {
		return ref, nil
	}
	return "", guwerrors.NewBranchNotFoundError(ref)
}

func (b *FakeBackend) IsAncestor(ancestor, descendant string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id := descendant; id != ""; id = b.commits[id].Parent {
		if id == ancestor {
			return true, nil
		}
	}
	return false, nil
}

func (b *FakeBackend) Checkout(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	sha, ok := b.branches[name]
	if !ok {
		return guwerrors.NewBranchNotFoundError(name)
	}
	b.current, b.head = name, sha
	return nil
}

func (b *FakeBackend) Detach(_ context.Context, commit string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	sha, err := b.revision(commit)
	if err != nil {
		return err
	}
	b.current, b.head = "", sha
	return nil
}

func (b *FakeBackend) CurrentBranch() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, nil
}

func (b *FakeBackend) CurrentHead() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != "" {
		return b.branches[b.current], nil
	}
	return b.head, nil
}

func (b *FakeBackend) Rebase(ctx context.Context, branch, onto, from string) (string, error) {
	if b.BeforeRebase != nil {
		b.BeforeRebase(ctx, branch)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tip, ok := b.branches[branch]
	if !ok {
		return "", guwerrors.NewBranchNotFoundError(branch)
	}
	if err := b.RebaseErrors[branch]; err != nil {
		return "", guwerrors.NewBackendError("rebase "+branch, err)
	}

	var patches []string
	for id := tip; id != "" && id != from; id = b.commits[id].Parent {
		patches = append([]string{b.commits[id].Patch}, patches...)
	}

	b.current = branch
	if b.Conflicts[branch] {
		b.rebasing = true
		b.head = onto
		return "", guwerrors.NewConflictError(branch, tip, []string{"conflict.txt"})
	}

	cur := onto
	for _, p := range patches {
		cur = b.commit(cur, p)
	}
	b.branches[branch] = cur
	b.head = cur
	return cur, nil
}

func (b *FakeBackend) IsRebaseInProgress(context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rebasing
}

func (b *FakeBackend) AbortRebase(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.rebasing {
		return fmt.Errorf("no rebase in progress")
	}
	b.rebasing = false
	b.head = b.branches[b.current]
	return nil
}

func (b *FakeBackend) CreateOrMoveBranch(name, commit string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name == b.current {
		return fmt.Errorf("cannot force update the checked out branch %s", name)
	}
	if err := b.MoveErrors[name]; err != nil {
		delete(b.MoveErrors, name)
		return guwerrors.NewBackendError("branch -f "+name, err)
	}
	sha, err := b.revision(commit)
	if err != nil {
		return err
	}
	b.branches[name] = sha
	return nil
}

func (b *FakeBackend) DeleteBranch(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name == b.current {
		return fmt.Errorf("cannot delete the checked out branch %s", name)
	}
	if _, ok := b.branches[name]; !ok {
		return guwerrors.NewBranchNotFoundError(name)
	}
	delete(b.branches, name)
	return nil
}

func (b *FakeBackend) Push(_ context.Context, remote, branch string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.PushErrors[remote+"/"+branch]; err != nil {
		return err
	}
	sha, ok := b.branches[branch]
	if !ok {
		return guwerrors.NewBranchNotFoundError(branch)
	}
	if b.servers[remote] == nil {
		return fmt.Errorf("remote %s does not exist", remote)
	}
	// lease: the server must still match what we last fetched
	if lease, fetched := b.tracking[remote+"/"+branch]; fetched && b.servers[remote][branch] != lease {
		return fmt.Errorf("stale info pushing %s to %s", branch, remote)
	}
	b.servers[remote][branch] = sha
	b.tracking[remote+"/"+branch] = sha
	b.Pushed = append(b.Pushed, remote+"/"+branch)
	return nil
}

func (b *FakeBackend) BackupBranch(name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sha, ok := b.branches[name]
	if !ok {
		return "", guwerrors.NewBranchNotFoundError(name)
	}
	backup := fmt.Sprintf("%s-%s", name, b.Now.Format("2006-01-02"))
	if _, taken := b.branches[backup]; taken {
		backup = fmt.Sprintf("%s-%s", name, b.Now.Format("2006-01-02-150405"))
	}
	b.branches[backup] = sha
	return backup, nil
}

// FakeWorkspace wraps a FakeBackend as an engine.Workspace
type FakeWorkspace struct {
	Fake   *FakeBackend
	Path   string
	Kept   bool
	Closed bool
}

func (w *FakeWorkspace) Backend() engine.Backend { return w.Fake }

func (w *FakeWorkspace) Dir() string { return w.Path }

func (w *FakeWorkspace) Keep() { w.Kept = true }

func (w *FakeWorkspace) Close() error {
	w.Closed = true
	return nil
}
