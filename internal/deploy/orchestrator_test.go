package deploy_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"llmdeploy/internal/deploy"
	"llmdeploy/internal/deploy/mocks"
	"llmdeploy/internal/models"
	"llmdeploy/internal/tracking"
)

type fixture struct {
	orch      *deploy.Orchestrator
	publisher *mocks.MockPublisher
	generator *mocks.MockGenerator
	notifier  *mocks.MockNotifier
	store     *tracking.MemoryStore
}

func newFixture(t *testing.T, opts deploy.Options) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		publisher: mocks.NewMockPublisher(ctrl),
		generator: mocks.NewMockGenerator(ctrl),
		notifier:  mocks.NewMockNotifier(ctrl),
		store:     tracking.NewMemoryStore(),
	}
	f.publisher.EXPECT().Owner().Return("acme").AnyTimes()
	f.orch = deploy.New(f.publisher, f.generator, f.notifier, f.store, opts, nil)
	return f
}

var (
	helloID    = models.RepositoryIdentity{Owner: "acme", Name: "hello-world"}
	helloFiles = models.FileSet{"index.html": "<html>hi</html>", "LICENSE": "MIT", "README.md": "# hello-world"}
)

func helloRequest() models.TaskRequest {
	return models.TaskRequest{
		RequesterID:   "student@example.test",
		TaskName:      "Hello World!",
		Round:         models.RoundCreate,
		Nonce:         "n-1",
		Brief:         "Say hello.",
		Checks:        []string{"x"},
		EvaluationURL: "https://example.test/cb",
	}
}

func resultFor(id models.RepositoryIdentity, commit string) models.DeploymentResult {
	return models.DeploymentResult{
		RepositoryURL: id.HTMLURL(),
		CommitHash:    commit,
		PagesURL:      id.PagesURL(),
	}
}

// expectCreate registers the round 1 pipeline and captures the callback payload.
func (f *fixture) expectCreate(commit string, payload *models.EvaluationPayload) {
	result := resultFor(helloID, commit)
	gomock.InOrder(
		f.generator.EXPECT().Generate(gomock.Any(), gomock.Any(), helloID, "").Return(helloFiles, nil),
		f.publisher.EXPECT().EnsureRepository(gomock.Any(), "hello-world").Return(helloID, nil),
		f.publisher.EXPECT().Publish(gomock.Any(), helloID, helloFiles).Return(result, nil),
		f.publisher.EXPECT().ActivateStaticHosting(gomock.Any(), helloID),
		f.publisher.EXPECT().AwaitLiveDeployment(gomock.Any(), helloID, commit, 0).Return(true),
		f.publisher.EXPECT().LatestCommitHash(gomock.Any(), helloID).Return(commit, nil),
		f.notifier.EXPECT().Notify(gomock.Any(), "https://example.test/cb", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, p models.EvaluationPayload) error {
				*payload = p
				return nil
			}),
	)
}

func TestSubmitRoundOneEndToEnd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, deploy.Options{})
		var payload models.EvaluationPayload
		f.expectCreate("c0ffee", &payload)

		start := time.Now()
		outcome, key, err := f.orch.Submit(context.Background(), helloRequest())
		require.NoError(t, err)
		assert.Equal(t, deploy.OutcomeAccepted, outcome)
		assert.Equal(t, models.TrackingKey{Name: "hello-world", Round: models.RoundCreate}, key)

		synctest.Wait()
		entry, ok, err := f.orch.Status(context.Background(), key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.StatusProcessing, entry.Status)

		require.NoError(t, f.orch.Wait())
		assert.Equal(t, deploy.DefaultRound1Settle, time.Since(start))

		assert.Equal(t, "https://acme.github.io/hello-world/", payload.PagesURL)
		assert.Equal(t, "c0ffee", payload.CommitHash)
		assert.Equal(t, "student@example.test", payload.RequesterID)
		assert.Equal(t, "Hello World!", payload.TaskName)
		assert.Equal(t, models.RoundCreate, payload.Round)
		assert.Equal(t, "n-1", payload.Nonce)

		entry, ok, err = f.orch.Status(context.Background(), key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.StatusCompleted, entry.Status)
		require.NotNil(t, entry.Result)
		assert.Equal(t, payload.DeploymentResult, *entry.Result)
		assert.Equal(t, helloFiles.Fingerprint(), entry.Fingerprint)

		name, ok, err := f.store.LastTaskName(context.Background(), "student@example.test")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Hello World!", name)
	})
}

func TestSubmitDuplicateDoesNoWork(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, deploy.Options{})
		var payload models.EvaluationPayload
		f.expectCreate("c1", &payload)

		outcome, _, err := f.orch.Submit(context.Background(), helloRequest())
		require.NoError(t, err)
		assert.Equal(t, deploy.OutcomeAccepted, outcome)

		// Same canonical name, different spelling.
		again := helloRequest()
		again.TaskName = "hello   world"
		outcome, key, err := f.orch.Submit(context.Background(), again)
		require.NoError(t, err)
		assert.Equal(t, deploy.OutcomeDuplicate, outcome)
		assert.Equal(t, "hello-world", key.Name)

		require.NoError(t, f.orch.Wait())

		// Still a duplicate once the first run has completed.
		outcome, _, err = f.orch.Submit(context.Background(), helloRequest())
		require.NoError(t, err)
		assert.Equal(t, deploy.OutcomeDuplicate, outcome)
		require.NoError(t, f.orch.Wait())
	})
}

func TestSubmitRoundOneRequiresTaskName(t *testing.T) {
	f := newFixture(t, deploy.Options{})
	req := helloRequest()
	req.TaskName = "   "

	_, _, err := f.orch.Submit(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, ok, err := f.store.LastTaskName(context.Background(), req.RequesterID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitRejectsUnusableName(t *testing.T) {
	f := newFixture(t, deploy.Options{})

	req := helloRequest()
	req.TaskName = "!!!"
	_, _, err := f.orch.Submit(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSubmitRejectsUnknownRound(t *testing.T) {
	f := newFixture(t, deploy.Options{})

	req := helloRequest()
	req.Round = 3
	_, _, err := f.orch.Submit(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "round must be 1 or 2")

	_, ok, err := f.store.LastTaskName(context.Background(), req.RequesterID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitRoundTwoResolvesPreviousTask(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, deploy.Options{})
		var first models.EvaluationPayload
		f.expectCreate("c1", &first)

		_, _, err := f.orch.Submit(context.Background(), helloRequest())
		require.NoError(t, err)
		require.NoError(t, f.orch.Wait())

		revised := models.FileSet{"index.html": "<html>v2</html>", "README.md": "# hello-world v2"}
		result := resultFor(helloID, "c2")
		var second models.EvaluationPayload
		gomock.InOrder(
			f.publisher.EXPECT().FetchFile(gomock.Any(), helloID, "index.html").Return("<html>hi</html>", true, nil),
			f.generator.EXPECT().Generate(gomock.Any(), gomock.Any(), helloID, "<html>hi</html>").Return(revised, nil),
			f.publisher.EXPECT().Update(gomock.Any(), helloID, revised).Return(result, nil),
			f.publisher.EXPECT().AwaitLiveDeployment(gomock.Any(), helloID, "c2", 0).Return(false),
			f.publisher.EXPECT().LatestCommitHash(gomock.Any(), helloID).Return("c2", nil),
			f.notifier.EXPECT().Notify(gomock.Any(), "https://example.test/cb", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, p models.EvaluationPayload) error {
					second = p
					return nil
				}),
		)

		req := helloRequest()
		req.Round = models.RoundUpdate
		req.TaskName = ""
		req.Nonce = "n-2"
		start := time.Now()
		outcome, key, err := f.orch.Submit(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, deploy.OutcomeAccepted, outcome)
		assert.Equal(t, models.TrackingKey{Name: "hello-world", Round: models.RoundUpdate}, key)

		require.NoError(t, f.orch.Wait())
		assert.Equal(t, deploy.DefaultRound2Settle, time.Since(start))
		assert.Equal(t, "c2", second.CommitHash)
		assert.Equal(t, models.RoundUpdate, second.Round)
		assert.Equal(t, "n-2", second.Nonce)
		assert.Equal(t, "Hello World!", second.TaskName)
	})
}

func TestSubmitRoundTwoWithoutHistory(t *testing.T) {
	f := newFixture(t, deploy.Options{})
	req := helloRequest()
	req.Round = models.RoundUpdate
	req.TaskName = ""

	_, _, err := f.orch.Submit(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnresolvedTaskName)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestPublishFailureIsRecorded(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, deploy.Options{})
		boom := errors.New("push rejected")
		f.generator.EXPECT().Generate(gomock.Any(), gomock.Any(), helloID, "").Return(helloFiles, nil)
		f.publisher.EXPECT().EnsureRepository(gomock.Any(), "hello-world").Return(helloID, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), helloID, helloFiles).Return(models.DeploymentResult{}, boom)

		_, key, err := f.orch.Submit(context.Background(), helloRequest())
		require.NoError(t, err)

		err = f.orch.Wait()
		assert.ErrorIs(t, err, boom)

		entry, ok, err := f.orch.Status(context.Background(), key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.StatusFailed, entry.Status)
		assert.Contains(t, entry.Error, "push rejected")
		assert.Nil(t, entry.Result)
	})
}

func TestNotifyFailureMarksFailed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, deploy.Options{Round1Settle: time.Second})
		result := resultFor(helloID, "c1")
		f.generator.EXPECT().Generate(gomock.Any(), gomock.Any(), helloID, "").Return(helloFiles, nil)
		f.publisher.EXPECT().EnsureRepository(gomock.Any(), "hello-world").Return(helloID, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), helloID, helloFiles).Return(result, nil)
		f.publisher.EXPECT().ActivateStaticHosting(gomock.Any(), helloID)
		f.publisher.EXPECT().AwaitLiveDeployment(gomock.Any(), helloID, "c1", 0).Return(true)
		f.publisher.EXPECT().LatestCommitHash(gomock.Any(), helloID).Return("", models.ErrRepositoryEmpty)
		f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.ErrNotifyStatus)

		start := time.Now()
		_, key, err := f.orch.Submit(context.Background(), helloRequest())
		require.NoError(t, err)
		assert.ErrorIs(t, f.orch.Wait(), models.ErrNotifyStatus)
		assert.Equal(t, time.Second, time.Since(start))

		entry, _, err := f.orch.Status(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, entry.Status)
	})
}

func TestSuppliedFilesSkipGenerator(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, deploy.Options{})
		req := helloRequest()
		req.Files = models.FileSet{"index.html": "<html>own</html>"}
		result := resultFor(helloID, "c1")

		f.publisher.EXPECT().EnsureRepository(gomock.Any(), "hello-world").Return(helloID, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), helloID, req.Files).Return(result, nil)
		f.publisher.EXPECT().ActivateStaticHosting(gomock.Any(), helloID)
		f.publisher.EXPECT().AwaitLiveDeployment(gomock.Any(), helloID, "c1", 0).Return(true)
		f.publisher.EXPECT().LatestCommitHash(gomock.Any(), helloID).Return("c1", nil)
		f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, _, err := f.orch.Submit(context.Background(), req)
		require.NoError(t, err)
		require.NoError(t, f.orch.Wait())
	})
}

func TestBoundedExecutorRunsTasksInTurn(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, deploy.Options{MaxConcurrent: 1})
		f.publisher.EXPECT().EnsureRepository(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, name string) (models.RepositoryIdentity, error) {
				return models.RepositoryIdentity{Owner: "acme", Name: name}, nil
			}).Times(2)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, id models.RepositoryIdentity, _ models.FileSet) (models.DeploymentResult, error) {
				return resultFor(id, "c-"+id.Name), nil
			}).Times(2)
		f.publisher.EXPECT().ActivateStaticHosting(gomock.Any(), gomock.Any()).Times(2)
		f.publisher.EXPECT().AwaitLiveDeployment(gomock.Any(), gomock.Any(), gomock.Any(), 0).Return(true).Times(2)
		f.publisher.EXPECT().LatestCommitHash(gomock.Any(), gomock.Any()).Return("", nil).Times(2)
		f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

		start := time.Now()
		for _, name := range []string{"first", "second"} {
			req := helloRequest()
			req.TaskName = name
			req.Files = models.FileSet{"index.html": name}
			outcome, _, err := f.orch.Submit(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, deploy.OutcomeAccepted, outcome)
		}
		// Admission returned immediately even though only one slot exists.
		assert.Equal(t, time.Duration(0), time.Since(start))

		require.NoError(t, f.orch.Wait())
		assert.Equal(t, 2*deploy.DefaultRound1Settle, time.Since(start))
	})
}

func TestSubmitDetachesFromRequestContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, deploy.Options{})
		var payload models.EvaluationPayload
		f.expectCreate("c1", &payload)

		ctx, cancel := context.WithCancel(context.Background())
		_, key, err := f.orch.Submit(ctx, helloRequest())
		require.NoError(t, err)
		cancel()

		require.NoError(t, f.orch.Wait())
		entry, _, err := f.orch.Status(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, entry.Status)
	})
}
