package deploy

import (
	"context"

	"llmdeploy/internal/models"
)

// Publisher makes a remote repository match a file set and confirms it is served.
//
//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks -source=ports.go
type Publisher interface {
	Owner() string
	EnsureRepository(ctx context.Context, name string) (models.RepositoryIdentity, error)
	Publish(ctx context.Context, id models.RepositoryIdentity, files models.FileSet) (models.DeploymentResult, error)
	Update(ctx context.Context, id models.RepositoryIdentity, files models.FileSet) (models.DeploymentResult, error)
	ActivateStaticHosting(ctx context.Context, id models.RepositoryIdentity)
	AwaitLiveDeployment(ctx context.Context, id models.RepositoryIdentity, commit string, maxChecks int) bool
	LatestCommitHash(ctx context.Context, id models.RepositoryIdentity) (string, error)
	FetchFile(ctx context.Context, id models.RepositoryIdentity, path string) (string, bool, error)
}

// Generator produces the file set for a task. existing is the currently
// published index page on revisions, empty otherwise.
type Generator interface {
	Generate(ctx context.Context, req models.TaskRequest, id models.RepositoryIdentity, existing string) (models.FileSet, error)
}

// Notifier reports a finished deployment.
type Notifier interface {
	Notify(ctx context.Context, url string, payload models.EvaluationPayload) error
}
