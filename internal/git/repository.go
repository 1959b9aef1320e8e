package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	guwerrors "guw.dev/guw/internal/errors"
)

// Repository wraps a go-git repository. go-git indexes packfiles when the
// repository is opened, so Reopen must be called after git fetches new packs.
type Repository struct {
	mu   sync.Mutex
	repo *git.Repository
	path string
}

// OpenRepository opens the git repository at path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	r := &Repository{path: absPath}
	if err := r.Reopen(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reopen discards go-git's cached view of the object database
func (r *Repository) Reopen() error {
	repo, err := git.PlainOpenWithOptions(r.path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}
	r.mu.Lock()
	r.repo = repo
	r.mu.Unlock()
	return nil
}

// Root returns the working tree root
func (r *Repository) Root() string {
	return r.path
}

// resolveRefHash resolves a local branch, a remote-tracking ref (remote/branch),
// a full ref name or a commit id
func (r *Repository) resolveRefHash(ref string) (plumbing.Hash, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref),
		plumbing.ReferenceName("refs/remotes/" + ref),
		plumbing.ReferenceName(ref),
	}
	for _, name := range candidates {
		if reference, err := r.repo.Reference(name, true); err == nil {
			return reference.Hash(), nil
		}
	}

	if plumbing.IsHash(ref) {
		hash := plumbing.NewHash(ref)
		if _, err := r.repo.CommitObject(hash); err == nil {
			return hash, nil
		}
	}

	return plumbing.ZeroHash, guwerrors.NewBranchNotFoundError(ref)
}

// Revision resolves a ref to a commit id
func (r *Repository) Revision(ref string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := r.resolveRefHash(ref)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// BranchExists reports whether a local branch exists
func (r *Repository) BranchExists(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, guwerrors.NewBackendError("read branch "+name, err)
	}
	return true, nil
}

// CurrentBranch returns the checked out branch or "" when HEAD is detached
func (r *Repository) CurrentBranch() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", guwerrors.NewBackendError("read HEAD", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", nil
	}
	// unborn branch, e.g. a clone of a remote whose HEAD points nowhere
	if _, err := r.repo.Reference(head.Target(), false); err != nil {
		return "", nil
	}
	return head.Target().Short(), nil
}

// Head returns the commit HEAD points at
func (r *Repository) Head() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", guwerrors.NewBranchNotFoundError("HEAD")
	}
	if err != nil {
		return "", guwerrors.NewBackendError("read HEAD", err)
	}
	return head.Hash().String(), nil
}

// SetBranch points a local branch at a commit
func (r *Repository) SetBranch(name, commit string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := r.resolveRefHash(commit)
	if err != nil {
		return err
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return guwerrors.NewBackendError("update branch "+name, err)
	}
	return nil
}

// RemoveBranch deletes a local branch
func (r *Repository) RemoveBranch(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(refName, false); err != nil {
		return guwerrors.NewBranchNotFoundError(name)
	}
	if err := r.repo.Storer.RemoveReference(refName); err != nil {
		return guwerrors.NewBackendError("delete branch "+name, err)
	}
	return nil
}

// IsAncestor checks if the first ref is an ancestor of the second ref
func (r *Repository) IsAncestor(ancestor, descendant string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ancestorHash, err := r.resolveRefHash(ancestor)
	if err != nil {
		return false, err
	}
	descendantHash, err := r.resolveRefHash(descendant)
	if err != nil {
		return false, err
	}
	if ancestorHash == descendantHash {
		return true, nil
	}

	ancestorCommit, err := r.repo.CommitObject(ancestorHash)
	if err != nil {
		return false, guwerrors.NewBackendError("read commit "+ancestor, err)
	}
	descendantCommit, err := r.repo.CommitObject(descendantHash)
	if err != nil {
		return false, guwerrors.NewBackendError("read commit "+descendant, err)
	}
	return ancestorCommit.IsAncestor(descendantCommit)
}

// RemoteURL returns the first URL of a remote, or "" if the remote does not exist
func (r *Repository) RemoteURL(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remote, err := r.repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", nil
	}
	if err != nil {
		return "", guwerrors.NewBackendError("read remote "+name, err)
	}
	if urls := remote.Config().URLs; len(urls) > 0 {
		return urls[0], nil
	}
	return "", nil
}

// EnsureRemote creates a remote, or repoints it when its URL changed
func (r *Repository) EnsureRemote(name, url string) error {
	current, err := r.RemoteURL(name)
	if err != nil {
		return err
	}
	if current == url {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current != "" {
		if err := r.repo.DeleteRemote(name); err != nil {
			return guwerrors.NewBackendError("remove remote "+name, err)
		}
	}
	_, err = r.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name:  name,
		URLs:  []string{url},
		Fetch: []gitconfig.RefSpec{gitconfig.RefSpec(fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", name))},
	})
	if err != nil {
		return guwerrors.NewBackendError("add remote "+name, err)
	}
	return nil
}

// RebaseHead returns the commit a stopped rebase was replaying
func (r *Repository) RebaseHead() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range []plumbing.ReferenceName{"REBASE_HEAD", "refs/rebase-merge/head", "refs/rebase-apply/head"} {
		if ref, err := r.repo.Reference(name, true); err == nil {
			return ref.Hash().String(), nil
		}
	}
	return "", fmt.Errorf("rebase head not found")
}
