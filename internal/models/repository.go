package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// RepositoryIdentity addresses one remote repository.
type RepositoryIdentity struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// FullName returns "owner/name".
func (r RepositoryIdentity) FullName() string {
	return r.Owner + "/" + r.Name
}

// HTMLURL is the browsable repository address.
func (r RepositoryIdentity) HTMLURL() string {
	return "https://github.com/" + r.FullName()
}

// PagesURL is derived from the identity alone and does not confirm the site is live.
func (r RepositoryIdentity) PagesURL() string {
	return fmt.Sprintf("https://%s.github.io/%s/", r.Owner, r.Name)
}

// CanonicalName maps a free-form task name to a repository name.
// It never fails and CanonicalName(CanonicalName(s)) == CanonicalName(s).
func CanonicalName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	dash := false
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// FileSet maps slash-separated relative paths to file contents.
type FileSet map[string]string

// Paths returns the file paths in sorted order.
func (f FileSet) Paths() []string {
	paths := make([]string, 0, len(f))
	for path := range f {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Fingerprint is a stable 64-bit digest of paths and contents.
func (f FileSet) Fingerprint() string {
	h := xxhash.New()
	for _, path := range f.Paths() {
		_, _ = h.WriteString(path)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(f[path])
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// DeploymentResult describes a published repository revision.
type DeploymentResult struct {
	RepositoryURL string `json:"repo_url"`
	CommitHash    string `json:"commit_sha"`
	PagesURL      string `json:"pages_url"`
}
