package gitops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmdeploy/internal/models"
)

func newBareRemote(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "remote.git")
	_, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
		Bare:        true,
	})
	require.NoError(t, err)
	return dir
}

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return NewWorkspace(t.TempDir(), Author{Name: "bot", Email: "bot@example.test"}, nil)
}

func cloneFiles(t *testing.T, remote string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainClone(dir, false, &git.CloneOptions{URL: remote})
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	return dir, head.Hash().String()
}

func TestInitCommitForcePush(t *testing.T) {
	remote := newBareRemote(t)
	ws := newTestWorkspace(t)
	id := models.RepositoryIdentity{Owner: "octo", Name: "hello-world"}

	co, err := ws.Init(id, remote, "main", nil)
	require.NoError(t, err)
	assert.Equal(t, "main", co.Branch())

	require.NoError(t, co.WriteFiles(models.FileSet{
		"index.html":     "<h1>hi</h1>",
		"README.md":      "# hello",
		"assets/app.css": "body{}",
	}))
	hash, err := co.Commit("Initial commit")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NoError(t, co.Push(context.Background(), true))

	dir, head := cloneFiles(t, remote)
	assert.Equal(t, hash, head)
	data, err := os.ReadFile(filepath.Join(dir, "assets", "app.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
}

func TestForcePushReplacesExistingHistory(t *testing.T) {
	remote := newBareRemote(t)
	ws := newTestWorkspace(t)
	id := models.RepositoryIdentity{Owner: "octo", Name: "site"}

	first, err := ws.Init(id, remote, "main", nil)
	require.NoError(t, err)
	require.NoError(t, first.WriteFiles(models.FileSet{"old.txt": "old"}))
	_, err = first.Commit("first")
	require.NoError(t, err)
	require.NoError(t, first.Push(context.Background(), true))

	second, err := ws.Init(id, remote, "main", nil)
	require.NoError(t, err)
	require.NoError(t, second.WriteFiles(models.FileSet{"index.html": "new"}))
	hash, err := second.Commit("second")
	require.NoError(t, err)
	require.NoError(t, second.Push(context.Background(), true))

	dir, head := cloneFiles(t, remote)
	assert.Equal(t, hash, head)
	assert.NoFileExists(t, filepath.Join(dir, "old.txt"))
}

func TestCloneUpdateLeavesUnlistedFiles(t *testing.T) {
	remote := newBareRemote(t)
	ws := newTestWorkspace(t)
	id := models.RepositoryIdentity{Owner: "octo", Name: "site"}

	co, err := ws.Init(id, remote, "main", nil)
	require.NoError(t, err)
	require.NoError(t, co.WriteFiles(models.FileSet{"index.html": "v1", "README.md": "readme"}))
	_, err = co.Commit("v1")
	require.NoError(t, err)
	require.NoError(t, co.Push(context.Background(), true))

	updated, err := ws.Clone(context.Background(), id, remote, nil)
	require.NoError(t, err)
	assert.Equal(t, "main", updated.Branch())
	require.NoError(t, updated.WriteFiles(models.FileSet{"index.html": "v2"}))
	hash, err := updated.Commit("Round 2 update")
	require.NoError(t, err)
	require.NoError(t, updated.Push(context.Background(), false))

	dir, head := cloneFiles(t, remote)
	assert.Equal(t, hash, head)
	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(index))
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "readme", string(readme))
}

func TestConcurrentCheckoutsAreIsolated(t *testing.T) {
	ws := newTestWorkspace(t)
	id := models.RepositoryIdentity{Owner: "octo", Name: "shared"}

	first, err := ws.Init(id, "https://example.test/octo/shared.git", "main", nil)
	require.NoError(t, err)
	second, err := ws.Init(id, "https://example.test/octo/shared.git", "main", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir, second.Dir)
	assert.Equal(t, filepath.Join(ws.Root(), "octo"), filepath.Dir(first.Dir))
	assert.Equal(t, filepath.Join(ws.Root(), "octo"), filepath.Dir(second.Dir))

	require.NoError(t, first.WriteFiles(models.FileSet{"index.html": "first"}))
	assert.NoFileExists(t, filepath.Join(second.Dir, "index.html"))

	require.NoError(t, first.Close())
	assert.NoDirExists(t, first.Dir)
	assert.DirExists(t, second.Dir)
	require.NoError(t, second.WriteFiles(models.FileSet{"index.html": "second"}))
	require.NoError(t, second.Close())
}

func TestCloseNilCheckout(t *testing.T) {
	var co *Checkout
	assert.NoError(t, co.Close())
}

func TestWriteFilesRejectsEscapingPaths(t *testing.T) {
	ws := newTestWorkspace(t)
	co, err := ws.Init(models.RepositoryIdentity{Owner: "octo", Name: "esc"}, "https://example.test/x.git", "main", nil)
	require.NoError(t, err)

	for _, path := range []string{"../outside.txt", "/etc/passwd"} {
		err := co.WriteFiles(models.FileSet{path: "x"})
		assert.Error(t, err, path)
	}
}
