// Package github makes a GitHub repository match a generated file set and confirms
// the Pages site is serving it.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gh "github.com/google/go-github/v66/github"
	"go.trai.ch/zerr"

	"llmdeploy/internal/gitops"
	"llmdeploy/internal/models"
	"llmdeploy/internal/retry"
)

const (
	DefaultBranch        = "main"
	DefaultGitURL        = "https://github.com"
	DefaultPollInterval  = 5 * time.Second
	DefaultMaxChecks     = 15
	DefaultBuiltSettle   = 10 * time.Second
	DefaultTimeoutSettle = 15 * time.Second
	DefaultPushAttempts  = 3
	DefaultPushBackoff   = 2 * time.Second

	initialCommitMessage = "Initial commit"
	updateCommitMessage  = "Round 2 update"
	pagesBuiltStatus     = "built"
	tokenUsername        = "x-access-token"
)

// Options configures a Client. Zero durations and counts take the defaults above.
type Options struct {
	Owner      string
	OwnerIsOrg bool
	Token      string
	// APIURL overrides the REST base URL, e.g. for GitHub Enterprise.
	APIURL string
	// GitURL is the base for clone and push URLs.
	GitURL     string
	Branch     string
	HTTPClient *http.Client

	PollInterval  time.Duration
	MaxChecks     int
	BuiltSettle   time.Duration
	TimeoutSettle time.Duration
	PushAttempts  int
	PushBackoff   time.Duration

	// RemoteURL, when set, replaces the URL derived from GitURL.
	RemoteURL func(id models.RepositoryIdentity) string
}

func (o *Options) defaults() {
	if o.Branch == "" {
		o.Branch = DefaultBranch
	}
	if o.GitURL == "" {
		o.GitURL = DefaultGitURL
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxChecks <= 0 {
		o.MaxChecks = DefaultMaxChecks
	}
	if o.BuiltSettle <= 0 {
		o.BuiltSettle = DefaultBuiltSettle
	}
	if o.TimeoutSettle <= 0 {
		o.TimeoutSettle = DefaultTimeoutSettle
	}
	if o.PushAttempts <= 0 {
		o.PushAttempts = DefaultPushAttempts
	}
	if o.PushBackoff <= 0 {
		o.PushBackoff = DefaultPushBackoff
	}
}

// Client owns all interaction with the hosting platform.
type Client struct {
	api       *gh.Client
	workspace *gitops.Workspace
	opts      Options
	logger    *slog.Logger
}

// New builds a Client. The workspace provides scratch working copies.
func New(opts Options, workspace *gitops.Workspace, logger *slog.Logger) (*Client, error) {
	opts.defaults()
	if strings.TrimSpace(opts.Owner) == "" {
		return nil, fmt.Errorf("github owner is required")
	}
	if workspace == nil {
		return nil, fmt.Errorf("workspace is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	api := gh.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		api = api.WithAuthToken(opts.Token)
	}
	if opts.APIURL != "" {
		base, err := url.Parse(strings.TrimRight(opts.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		api.BaseURL = base
	}

	return &Client{
		api:       api,
		workspace: workspace,
		opts:      opts,
		logger:    logger.With("component", "github"),
	}, nil
}

// Owner returns the configured repository owner.
func (c *Client) Owner() string {
	return c.opts.Owner
}

// EnsureRepository returns the identity of name under the owner, creating a public,
// empty repository when it does not exist yet.
func (c *Client) EnsureRepository(ctx context.Context, name string) (models.RepositoryIdentity, error) {
	id := models.RepositoryIdentity{Owner: c.opts.Owner, Name: name}

	repo, resp, err := c.api.Repositories.Get(ctx, id.Owner, id.Name)
	if err == nil {
		c.logger.Info("reusing existing repository", "repo", id.FullName(), "url", repo.GetHTMLURL())
		return identityFrom(repo, id), nil
	}
	if !isStatus(resp, http.StatusNotFound) {
		return models.RepositoryIdentity{}, zerr.With(zerr.Wrap(err, "look up repository"), "repo", id.FullName())
	}

	org := ""
	if c.opts.OwnerIsOrg {
		org = c.opts.Owner
	}
	created, _, err := c.api.Repositories.Create(ctx, org, &gh.Repository{
		Name:     gh.String(name),
		Private:  gh.Bool(false),
		AutoInit: gh.Bool(false),
	})
	if err != nil {
		return models.RepositoryIdentity{}, zerr.With(zerr.Wrap(err, "create repository"), "repo", id.FullName())
	}
	c.logger.Info("created repository", "repo", id.FullName(), "url", created.GetHTMLURL())
	return identityFrom(created, id), nil
}

func identityFrom(repo *gh.Repository, fallback models.RepositoryIdentity) models.RepositoryIdentity {
	id := fallback
	if login := repo.GetOwner().GetLogin(); login != "" {
		id.Owner = login
	}
	if name := repo.GetName(); name != "" {
		id.Name = name
	}
	return id
}

// Publish writes files into a fresh repository and force-pushes a single commit
// to the fixed branch.
func (c *Client) Publish(ctx context.Context, id models.RepositoryIdentity, files models.FileSet) (models.DeploymentResult, error) {
	co, err := c.workspace.Init(id, c.remoteURL(id), c.opts.Branch, c.auth())
	if err != nil {
		return models.DeploymentResult{}, err
	}
	defer c.release(co)
	if err := co.WriteFiles(files); err != nil {
		return models.DeploymentResult{}, err
	}
	hash, err := co.Commit(initialCommitMessage)
	if err != nil {
		return models.DeploymentResult{}, err
	}
	if err := c.push(ctx, id, co, true); err != nil {
		return models.DeploymentResult{}, err
	}

	c.logger.Info("published repository", "repo", id.FullName(), "commit", hash, "files", len(files))
	return resultFor(id, hash), nil
}

// Update clones the repository, overwrites only the listed files, commits and
// pushes to the checked-out branch without forcing.
func (c *Client) Update(ctx context.Context, id models.RepositoryIdentity, files models.FileSet) (models.DeploymentResult, error) {
	co, err := c.workspace.Clone(ctx, id, c.remoteURL(id), c.auth())
	if err != nil {
		return models.DeploymentResult{}, err
	}
	defer c.release(co)
	if err := co.WriteFiles(files); err != nil {
		return models.DeploymentResult{}, err
	}
	hash, err := co.Commit(updateCommitMessage)
	if err != nil {
		return models.DeploymentResult{}, err
	}
	if err := c.push(ctx, id, co, false); err != nil {
		return models.DeploymentResult{}, err
	}

	c.logger.Info("updated repository", "repo", id.FullName(), "commit", hash, "branch", co.Branch(), "files", len(files))
	return resultFor(id, hash), nil
}

func (c *Client) push(ctx context.Context, id models.RepositoryIdentity, co *gitops.Checkout, force bool) error {
	_, err := retry.Do(ctx, retry.Policy{
		MaxAttempts: c.opts.PushAttempts,
		Backoff:     retry.Linear(c.opts.PushBackoff),
		Hooks: retry.Hooks{
			BeforeAttempt: func(attempt int) {
				c.logger.Debug("pushing", "repo", id.FullName(), "attempt", attempt, "force", force)
			},
			OnFailure: func(attempt int, err error) {
				c.logger.Warn("push failed", "repo", id.FullName(), "attempt", attempt, "error", err)
			},
		},
	}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, co.Push(ctx, force)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "push branch"), "repo", id.FullName())
	}
	return nil
}

func (c *Client) release(co *gitops.Checkout) {
	if err := co.Close(); err != nil {
		c.logger.Warn("working copy cleanup failed", "dir", co.Dir, "error", err)
	}
}

func resultFor(id models.RepositoryIdentity, hash string) models.DeploymentResult {
	return models.DeploymentResult{
		RepositoryURL: id.HTMLURL(),
		CommitHash:    hash,
		PagesURL:      id.PagesURL(),
	}
}

// ActivateStaticHosting enables Pages for the branch root. Failures are logged only:
// Pages may already be active or activate on its own.
func (c *Client) ActivateStaticHosting(ctx context.Context, id models.RepositoryIdentity) {
	_, resp, err := c.api.Repositories.EnablePages(ctx, id.Owner, id.Name, &gh.Pages{
		Source: &gh.PagesSource{
			Branch: gh.String(c.opts.Branch),
			Path:   gh.String("/"),
		},
	})
	switch {
	case err == nil:
		c.logger.Info("enabled pages", "repo", id.FullName(), "branch", c.opts.Branch)
	case isStatus(resp, http.StatusConflict):
		c.logger.Info("pages already enabled", "repo", id.FullName())
	default:
		c.logger.Warn("enable pages failed", "repo", id.FullName(), "error", err)
	}
}

// AwaitLiveDeployment polls the latest Pages build up to maxChecks times. When commit
// is set only a build of that commit counts. It reports false when no matching build
// completed; callers treat that as a warning.
func (c *Client) AwaitLiveDeployment(ctx context.Context, id models.RepositoryIdentity, commit string, maxChecks int) bool {
	if maxChecks <= 0 {
		maxChecks = c.opts.MaxChecks
	}

	for check := 1; check <= maxChecks; check++ {
		build, _, err := c.api.Repositories.GetLatestPagesBuild(ctx, id.Owner, id.Name)
		switch {
		case err != nil:
			c.logger.Debug("pages build status unavailable", "repo", id.FullName(), "check", check, "error", err)
		case build.GetStatus() != pagesBuiltStatus:
			c.logger.Debug("pages build pending", "repo", id.FullName(), "check", check, "status", build.GetStatus())
		case commit != "" && build.GetCommit() != "" && build.GetCommit() != commit:
			c.logger.Debug("pages built an older commit", "repo", id.FullName(), "check", check, "built", build.GetCommit(), "want", commit)
		default:
			c.logger.Info("pages built", "repo", id.FullName(), "check", check, "commit", build.GetCommit())
			if err := retry.Sleep(ctx, c.opts.BuiltSettle); err != nil {
				return false
			}
			return true
		}
		if err := retry.Sleep(ctx, c.opts.PollInterval); err != nil {
			return false
		}
	}

	c.logger.Warn("pages build not confirmed", "repo", id.FullName(), "checks", maxChecks)
	_ = retry.Sleep(ctx, c.opts.TimeoutSettle)
	return false
}

// LatestCommitHash returns the newest commit on the branch.
func (c *Client) LatestCommitHash(ctx context.Context, id models.RepositoryIdentity) (string, error) {
	commits, resp, err := c.api.Repositories.ListCommits(ctx, id.Owner, id.Name, &gh.CommitsListOptions{
		SHA:         c.opts.Branch,
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		if isStatus(resp, http.StatusConflict) {
			return "", zerr.With(zerr.Wrap(models.ErrRepositoryEmpty, "list commits"), "repo", id.FullName())
		}
		return "", zerr.With(zerr.Wrap(err, "list commits"), "repo", id.FullName())
	}
	if len(commits) == 0 || commits[0].GetSHA() == "" {
		return "", zerr.With(zerr.Wrap(models.ErrRepositoryEmpty, "no commits on branch"), "repo", id.FullName())
	}
	return commits[0].GetSHA(), nil
}

// FetchFile returns the content of path on the default branch. ok is false when the
// file does not exist.
func (c *Client) FetchFile(ctx context.Context, id models.RepositoryIdentity, path string) (content string, ok bool, err error) {
	file, _, resp, err := c.api.Repositories.GetContents(ctx, id.Owner, id.Name, path, nil)
	if err != nil {
		if isStatus(resp, http.StatusNotFound) {
			return "", false, nil
		}
		return "", false, zerr.With(zerr.Wrap(err, "get contents"), "path", path)
	}
	if file == nil {
		return "", false, zerr.With(errors.New("path is a directory"), "path", path)
	}
	content, err = file.GetContent()
	if err != nil {
		return "", false, zerr.With(zerr.Wrap(err, "decode contents"), "path", path)
	}
	return content, true, nil
}

func (c *Client) remoteURL(id models.RepositoryIdentity) string {
	if c.opts.RemoteURL != nil {
		return c.opts.RemoteURL(id)
	}
	return fmt.Sprintf("%s/%s/%s.git", strings.TrimRight(c.opts.GitURL, "/"), id.Owner, id.Name)
}

func (c *Client) auth() transport.AuthMethod {
	if c.opts.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: tokenUsername, Password: c.opts.Token}
}

func isStatus(resp *gh.Response, status int) bool {
	return resp != nil && resp.Response != nil && resp.StatusCode == status
}
