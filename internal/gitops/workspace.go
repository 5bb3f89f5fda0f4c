// Package gitops manages scratch working copies used to push generated sites.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.trai.ch/zerr"

	"llmdeploy/internal/models"
)

const remoteName = "origin"

// Author signs commits created in a working copy.
type Author struct {
	Name  string
	Email string
}

// Workspace owns a scratch root. Every checkout gets its own empty directory
// under root/owner, so concurrent checkouts of one repository never share files.
type Workspace struct {
	root   string
	author Author
	logger *slog.Logger
}

// NewWorkspace returns a workspace rooted at root. An empty root uses the OS temp dir.
func NewWorkspace(root string, author Author, logger *slog.Logger) *Workspace {
	if root == "" {
		root = filepath.Join(os.TempDir(), "llmdeploy")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{root: root, author: author, logger: logger}
}

// Root returns the scratch root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Checkout is one local working copy bound to a remote.
type Checkout struct {
	Dir    string
	repo   *git.Repository
	branch plumbing.ReferenceName
	auth   transport.AuthMethod
	author Author
}

// Init creates a fresh repository for id on branch. Callers Close the checkout when done.
func (w *Workspace) Init(id models.RepositoryIdentity, remoteURL, branch string, auth transport.AuthMethod) (*Checkout, error) {
	dir, err := w.fresh(id)
	if err != nil {
		return nil, err
	}

	ref := plumbing.NewBranchReferenceName(branch)
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: ref},
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, zerr.With(zerr.Wrap(err, "init working copy"), "dir", dir)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: remoteName, URLs: []string{remoteURL}}); err != nil {
		_ = os.RemoveAll(dir)
		return nil, zerr.Wrap(err, "add remote")
	}

	w.logger.Debug("initialized working copy", "repo", id.FullName(), "dir", dir, "branch", branch)
	return &Checkout{Dir: dir, repo: repo, branch: ref, auth: auth, author: w.author}, nil
}

// Clone fetches remoteURL into a fresh directory for id. Callers Close the checkout when done.
func (w *Workspace) Clone(ctx context.Context, id models.RepositoryIdentity, remoteURL string, auth transport.AuthMethod) (*Checkout, error) {
	dir, err := w.fresh(id)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:        remoteURL,
		Auth:       auth,
		RemoteName: remoteName,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, zerr.With(zerr.Wrap(err, "clone repository"), "repo", id.FullName())
	}
	head, err := repo.Head()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, zerr.Wrap(err, "resolve cloned HEAD")
	}

	w.logger.Debug("cloned working copy", "repo", id.FullName(), "dir", dir, "branch", head.Name().Short())
	return &Checkout{Dir: dir, repo: repo, branch: head.Name(), auth: auth, author: w.author}, nil
}

func (w *Workspace) fresh(id models.RepositoryIdentity) (string, error) {
	parent := filepath.Join(w.root, id.Owner)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", zerr.With(zerr.Wrap(err, "create workspace root"), "dir", parent)
	}
	dir, err := os.MkdirTemp(parent, id.Name+"-*")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "create working copy"), "dir", parent)
	}
	return dir, nil
}

// Close removes the working copy from disk.
func (c *Checkout) Close() error {
	if c == nil || c.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(c.Dir); err != nil {
		return zerr.With(zerr.Wrap(err, "remove working copy"), "dir", c.Dir)
	}
	return nil
}

// Branch returns the short name of the checked-out branch.
func (c *Checkout) Branch() string {
	return c.branch.Short()
}

// WriteFiles writes and stages every entry. Files not listed are left untouched.
func (c *Checkout) WriteFiles(files models.FileSet) error {
	wt, err := c.repo.Worktree()
	if err != nil {
		return zerr.Wrap(err, "open worktree")
	}
	for _, path := range files.Paths() {
		local := filepath.FromSlash(path)
		if !filepath.IsLocal(local) {
			return zerr.With(errors.New("file path escapes working copy"), "path", path)
		}
		full := filepath.Join(c.Dir, local)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return zerr.With(zerr.Wrap(err, "create parent dir"), "path", path)
		}
		if err := os.WriteFile(full, []byte(files[path]), 0o644); err != nil {
			return zerr.With(zerr.Wrap(err, "write file"), "path", path)
		}
		if _, err := wt.Add(filepath.ToSlash(local)); err != nil {
			return zerr.With(zerr.Wrap(err, "stage file"), "path", path)
		}
	}
	return nil
}

// Commit records the staged tree and returns the new commit hash.
func (c *Checkout) Commit(message string) (string, error) {
	wt, err := c.repo.Worktree()
	if err != nil {
		return "", zerr.Wrap(err, "open worktree")
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.author.Name,
			Email: c.author.Email,
			When:  time.Now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return "", zerr.Wrap(err, "commit")
	}
	return hash.String(), nil
}

// Push sends the checked-out branch to the remote. force replaces remote history.
func (c *Checkout) Push(ctx context.Context, force bool) error {
	spec := fmt.Sprintf("%s:%s", c.branch, c.branch)
	if force {
		spec = "+" + spec
	}
	err := c.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(spec)},
		Auth:       c.auth,
		Force:      force,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "push"), "branch", c.branch.Short())
	}
	return nil
}

// Head returns the hash of the checked-out commit.
func (c *Checkout) Head() (string, error) {
	ref, err := c.repo.Head()
	if err != nil {
		return "", zerr.Wrap(err, "resolve HEAD")
	}
	return ref.Hash().String(), nil
}
