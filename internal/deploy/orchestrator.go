// Package deploy drives a task from admission to a live, reported deployment.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/zerr"

	"llmdeploy/internal/models"
	"llmdeploy/internal/retry"
	"llmdeploy/internal/tracking"
)

const (
	DefaultRound1Settle = 10 * time.Second
	DefaultRound2Settle = 20 * time.Second

	indexPath = "index.html"
)

// Outcome is the admission result returned to the caller.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeDuplicate Outcome = "duplicate"
)

// Options tunes the pipeline. Zero values take the defaults.
type Options struct {
	Round1Settle time.Duration
	Round2Settle time.Duration
	// MaxChecks is passed to AwaitLiveDeployment; 0 uses the publisher's default.
	MaxChecks     int
	MaxConcurrent int64
}

// Orchestrator admits tasks and runs their deployment pipeline in the background.
type Orchestrator struct {
	publisher Publisher
	generator Generator
	notifier  Notifier
	store     tracking.Store
	exec      *Executor
	opts      Options
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	// admit serializes the duplicate check with the processing mark.
	admit sync.Mutex
}

// New builds an Orchestrator with its own executor.
func New(publisher Publisher, generator Generator, notifier Notifier, store tracking.Store, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.Round1Settle <= 0 {
		opts.Round1Settle = DefaultRound1Settle
	}
	if opts.Round2Settle <= 0 {
		opts.Round2Settle = DefaultRound2Settle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		publisher: publisher,
		generator: generator,
		notifier:  notifier,
		store:     store,
		exec:      NewExecutor(opts.MaxConcurrent, logger),
		opts:      opts,
		logger:    logger.With("component", "orchestrator"),
		tracer:    otel.Tracer("llmdeploy/internal/deploy"),
		now:       time.Now,
	}
}

// Submit resolves the repository name, rejects duplicates and starts the
// pipeline. It returns before any remote call is made.
func (o *Orchestrator) Submit(ctx context.Context, req models.TaskRequest) (Outcome, models.TrackingKey, error) {
	if !models.IsValidRound(req.Round) {
		return "", models.TrackingKey{}, zerr.With(zerr.Wrap(models.ErrValidation, "round must be 1 or 2"), "round", int(req.Round))
	}
	taskName, err := o.resolveTaskName(ctx, req)
	if err != nil {
		return "", models.TrackingKey{}, err
	}
	name := models.CanonicalName(taskName)
	if name == "" {
		return "", models.TrackingKey{}, zerr.With(zerr.Wrap(models.ErrValidation, "task name has no usable characters"), "task", taskName)
	}
	key := models.TrackingKey{Name: name, Round: req.Round}

	o.admit.Lock()
	defer o.admit.Unlock()
	exists, err := o.store.Has(ctx, key)
	if err != nil {
		return "", key, zerr.Wrap(err, "check tracking")
	}
	if exists {
		o.logger.Info("duplicate task", "key", key.String(), "requester", req.RequesterID)
		return OutcomeDuplicate, key, nil
	}
	if err := o.store.Set(ctx, key, models.TrackingEntry{Status: models.StatusProcessing, UpdatedAt: o.now()}); err != nil {
		return "", key, zerr.Wrap(err, "mark processing")
	}

	o.logger.Info("task accepted", "key", key.String(), "requester", req.RequesterID)
	o.exec.Go(ctx, key.String(), func(ctx context.Context) error {
		return o.run(ctx, req, taskName, key)
	})
	return OutcomeAccepted, key, nil
}

func (o *Orchestrator) resolveTaskName(ctx context.Context, req models.TaskRequest) (string, error) {
	taskName := strings.TrimSpace(req.TaskName)
	if req.Round == models.RoundCreate {
		if taskName == "" {
			return "", zerr.Wrap(models.ErrValidation, "task is required for round 1")
		}
		if err := o.store.SetLastTaskName(ctx, req.RequesterID, taskName); err != nil {
			return "", zerr.Wrap(err, "record task name")
		}
		return taskName, nil
	}
	if taskName != "" {
		return taskName, nil
	}
	last, ok, err := o.store.LastTaskName(ctx, req.RequesterID)
	if err != nil {
		return "", zerr.Wrap(err, "lookup task name")
	}
	if !ok {
		return "", zerr.With(fmt.Errorf("%w: %w", models.ErrValidation, models.ErrUnresolvedTaskName), "requester", req.RequesterID)
	}
	return last, nil
}

// Status returns the tracking entry for key.
func (o *Orchestrator) Status(ctx context.Context, key models.TrackingKey) (models.TrackingEntry, bool, error) {
	return o.store.Get(ctx, key)
}

// Wait blocks until all background pipelines finish.
func (o *Orchestrator) Wait() error {
	return o.exec.Wait()
}

// run is the background unit. Its error is recorded, never returned to a client.
func (o *Orchestrator) run(ctx context.Context, req models.TaskRequest, taskName string, key models.TrackingKey) error {
	ctx, span := o.tracer.Start(ctx, fmt.Sprintf("deploy.round%d", key.Round),
		trace.WithAttributes(attribute.String("repo.name", key.Name), attribute.Int("round", int(key.Round))))
	defer span.End()

	start := o.now()
	result, fingerprint, err := o.deploy(ctx, req, key)
	if err == nil {
		err = o.notifier.Notify(ctx, req.EvaluationURL, models.NewEvaluationPayload(req, taskName, result))
	}

	entry := models.TrackingEntry{Fingerprint: fingerprint, UpdatedAt: o.now()}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		entry.Status = models.StatusFailed
		entry.Error = err.Error()
		o.logger.Error("task failed", "key", key.String(), "err", err)
	} else {
		entry.Status = models.StatusCompleted
		entry.Result = &result
		o.logger.Info("task completed", "key", key.String(), "pages_url", result.PagesURL,
			"commit", result.CommitHash, "elapsed", o.now().Sub(start))
	}
	if serr := o.store.Set(ctx, key, entry); serr != nil {
		o.logger.Error("record outcome", "key", key.String(), "err", serr)
	}
	return err
}

func (o *Orchestrator) deploy(ctx context.Context, req models.TaskRequest, key models.TrackingKey) (models.DeploymentResult, string, error) {
	id := models.RepositoryIdentity{Owner: o.publisher.Owner(), Name: key.Name}
	if key.Round == models.RoundCreate {
		return o.create(ctx, req, id)
	}
	return o.revise(ctx, req, id)
}

func (o *Orchestrator) create(ctx context.Context, req models.TaskRequest, id models.RepositoryIdentity) (models.DeploymentResult, string, error) {
	files, err := o.files(ctx, req, id, "")
	if err != nil {
		return models.DeploymentResult{}, "", err
	}
	fingerprint := files.Fingerprint()

	id, err = o.publisher.EnsureRepository(ctx, id.Name)
	if err != nil {
		return models.DeploymentResult{}, fingerprint, err
	}
	result, err := o.publisher.Publish(ctx, id, files)
	if err != nil {
		return models.DeploymentResult{}, fingerprint, err
	}
	o.publisher.ActivateStaticHosting(ctx, id)
	o.confirm(ctx, id, result)
	if err := o.settle(ctx, o.opts.Round1Settle); err != nil {
		return models.DeploymentResult{}, fingerprint, err
	}
	return result, fingerprint, nil
}

func (o *Orchestrator) revise(ctx context.Context, req models.TaskRequest, id models.RepositoryIdentity) (models.DeploymentResult, string, error) {
	var existing string
	if len(req.Files) == 0 {
		content, ok, err := o.publisher.FetchFile(ctx, id, indexPath)
		switch {
		case err != nil:
			o.logger.Warn("fetch current page", "repo", id.FullName(), "err", err)
		case ok:
			existing = content
		}
	}
	files, err := o.files(ctx, req, id, existing)
	if err != nil {
		return models.DeploymentResult{}, "", err
	}
	fingerprint := files.Fingerprint()

	result, err := o.publisher.Update(ctx, id, files)
	if err != nil {
		return models.DeploymentResult{}, fingerprint, err
	}
	o.confirm(ctx, id, result)
	if err := o.settle(ctx, o.opts.Round2Settle); err != nil {
		return models.DeploymentResult{}, fingerprint, err
	}
	return result, fingerprint, nil
}

func (o *Orchestrator) files(ctx context.Context, req models.TaskRequest, id models.RepositoryIdentity, existing string) (models.FileSet, error) {
	if len(req.Files) > 0 {
		return req.Files, nil
	}
	ctx, span := o.tracer.Start(ctx, "generate")
	defer span.End()
	files, err := o.generator.Generate(ctx, req, id, existing)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return files, nil
}

// confirm polls the build and cross-checks the remote branch head. Neither
// outcome is fatal.
func (o *Orchestrator) confirm(ctx context.Context, id models.RepositoryIdentity, result models.DeploymentResult) {
	ctx, span := o.tracer.Start(ctx, "await_live")
	defer span.End()
	live := o.publisher.AwaitLiveDeployment(ctx, id, result.CommitHash, o.opts.MaxChecks)
	span.SetAttributes(attribute.Bool("live", live))
	if !live {
		o.logger.Warn("deployment not confirmed, continuing", "repo", id.FullName(), "commit", result.CommitHash)
	}
	remote, err := o.publisher.LatestCommitHash(ctx, id)
	if err != nil {
		o.logger.Warn("read remote head", "repo", id.FullName(), "err", err)
		return
	}
	if remote != result.CommitHash {
		o.logger.Warn("remote head differs from pushed commit", "repo", id.FullName(), "pushed", result.CommitHash, "remote", remote)
	}
}

func (o *Orchestrator) settle(ctx context.Context, d time.Duration) error {
	o.logger.Debug("settling", "wait", d)
	return retry.Sleep(ctx, d)
}
